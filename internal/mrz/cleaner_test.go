package mrz_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medflow/mrz-scanner/internal/mrz"
)

// ============================================================================
// CLEAN
// ============================================================================

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean",
			raw:  specimenTD3,
			want: specimenTD3,
		},
		{
			name: "noise, blanks and blank lines",
			raw:  "scan: P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\r\n\n L898902C36UTO 7408122F1204159ZE184226B<<<<<10\n",
			want: specimenTD3,
		},
		{
			name: "misread separators",
			raw:  "P<UTOERIKSSON«<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<K<<<10",
			want: specimenTD3,
		},
		{
			name: "stuttered separators",
			raw:  "P<UTOERIKSSON<<ANNA<MARIA<K<K<" + strings.Repeat("<", 14) + "\n" + specimenTD3Row1,
			want: specimenTD3,
		},
		{
			name: "mixed separators",
			raw:  "P<UTOERIKSSON<<ANNA<MARIA<K<S<" + strings.Repeat("<", 14) + "\n" + specimenTD3Row1,
			want: specimenTD3,
		},
		{
			name: "separator exposed by dropped character",
			raw:  "P<UTOERIKSSON<<ANNA<MARIA<Kx<" + strings.Repeat("<", 16) + "\n" + specimenTD3Row1,
			want: specimenTD3,
		},
		{
			name: "PK prefix",
			raw:  "PKUTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\nL898902C36UTO7408122F1204159ZE184226B<<<<<10",
			want: specimenTD3,
		},
		{
			name: "stray punctuation",
			raw:  "I<UTOD231458907<<<<<<<<<<<<<<<.\n7408122F1204159UTO<<<<<<<<<<<6\nERIKSSON<<ANNA<MARIA<<<<<<<<<<",
			want: specimenTD1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mrz.Clean(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		specimenTD3,
		specimenTD1,
		specimenMRVB,
		"scan: P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\r\n\n L898902C36UTO 7408122F1204159ZE184226B<<<<<10\n",
		specimenTD3 + "<<<XYZ",
		"P<UTOERIKSSON<<ANNA<MARIA<K<K<<<<<<<<<<<<<<<\n" + specimenTD3Row1,
		"P<UTOERIKSSON<<ANNA<MARIA<K<S<<<<<<<<<<<<<<<\n" + specimenTD3Row1,
		"P<UTOERIKSSON<<ANNA<MARIA<S<K<K<S<<<<<<<<<<<\n" + specimenTD3Row1,
		"P<UTOERIKSSON<<ANNA<MARIA<Ky<C<<<<<<<<<<<<<<\n" + specimenTD3Row1,
		"I<UTOD231458907<<<<<<<<<<<<<<<\n" + strings.Repeat("7", 62) + "\n<<<",
	}

	for _, in := range inputs {
		once, err := mrz.Clean(in)
		require.NoError(t, err)
		twice, err := mrz.Clean(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestClean_TruncatesTrailingGarbage(t *testing.T) {
	got, err := mrz.Clean(specimenTD3 + "<<<XYZ")
	require.NoError(t, err)
	assert.Len(t, got, 88)

	rec, err := mrz.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, mrz.FormatPassport, rec.Format())
	assert.True(t, rec.Base().ValidComposite)

	got, err = mrz.Clean(specimenTD1 + "ABC")
	require.NoError(t, err)
	assert.Len(t, got, 91)
}

func TestClean_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"single line", "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<"},
		{"four lines", specimenTD1 + "\nI<UTO<<<"},
		{"no filler", "PASSPORT\nUTOPIA"},
		{"no document marker", "123<<<\n456<<<"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mrz.Clean(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, mrz.ErrMalformedInput))
			assert.True(t, mrz.Retryable(err))
		})
	}
}

// ============================================================================
// PARSE AND CLEAN
// ============================================================================

func TestCleaner_ParseAndClean_Acceptance(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		accepted bool
	}{
		{
			name:     "all checks hold",
			text:     specimenTD3,
			accepted: true,
		},
		{
			name:     "individual checks hold, composite fails",
			text:     strings.TrimSuffix(specimenTD3, "0") + "5",
			accepted: true,
		},
		{
			name: "individual checks fail, composite holds",
			text: "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
				"L898902C33UTO7408127F1204151ZE184226B<<<<<16",
			accepted: true,
		},
		{
			name: "everything fails",
			text: "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
				"L898902C33UTO7408127F1204151ZE184226B<<<<<17",
			accepted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mrz.NewCleaner()
			rec, err := c.ParseAndClean(tt.text)
			if tt.accepted {
				require.NoError(t, err)
				require.NotNil(t, rec)
				assert.Empty(t, c.Previous())
				return
			}

			require.Error(t, err)
			assert.Nil(t, rec)
			assert.True(t, errors.Is(err, mrz.ErrAcceptance))
			assert.True(t, mrz.Retryable(err))

			var rejected *mrz.AcceptanceError
			require.True(t, errors.As(err, &rejected))
			assert.False(t, rejected.Repeated)
			assert.Equal(t, "L898902C3", rejected.Record.Base().DocumentNumber)
			assert.Equal(t, tt.text, c.Previous())
		})
	}
}

func TestCleaner_ParseAndClean_RepeatedRejection(t *testing.T) {
	bad := "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L898902C33UTO7408127F1204151ZE184226B<<<<<17"

	c := mrz.NewCleaner()
	_, err := c.ParseAndClean(bad)
	var first *mrz.AcceptanceError
	require.True(t, errors.As(err, &first))
	assert.False(t, first.Repeated)

	_, err = c.ParseAndClean(bad)
	var second *mrz.AcceptanceError
	require.True(t, errors.As(err, &second))
	assert.True(t, second.Repeated)
	assert.Equal(t, bad, c.Previous())
}

func TestCleaner_ParseAndClean_RestoresLetters(t *testing.T) {
	text := strings.Replace(specimenTD3, "ERIKSSON<<ANNA", "ER1K55ON<<ANN4", 1)
	text = strings.Replace(text, "P<UTO", "P<UT0", 1)

	rec, err := mrz.NewCleaner().ParseAndClean(text)
	require.NoError(t, err)

	b := rec.Base()
	assert.Equal(t, "ERIKSSON", b.Surname)
	assert.Equal(t, "ANN4 MARIA", b.GivenNames)
	assert.Equal(t, "UTO", b.IssuingCountry)
	assert.Equal(t, "UTO", b.Nationality)
}

func TestCleaner_ParseAndClean_StructuralErrors(t *testing.T) {
	_, err := mrz.NewCleaner().ParseAndClean(strings.Replace(specimenTD3, "2F12", "2Q12", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, mrz.ErrInvalidSexChar))
	assert.False(t, mrz.Retryable(err))
}
