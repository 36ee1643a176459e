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
// PARSING
// ============================================================================

func TestParse_Passport(t *testing.T) {
	rec, err := mrz.Parse(specimenTD3)
	require.NoError(t, err)

	mrp, ok := rec.(*mrz.MRP)
	require.True(t, ok)
	assert.Equal(t, mrz.FormatPassport, mrp.Format())
	assert.Equal(t, mrz.DocumentCodePassport, mrp.DocumentCode)
	assert.Equal(t, "P", mrp.Code1)
	assert.Equal(t, "<", mrp.Code2)
	assert.Equal(t, "UTO", mrp.IssuingCountry)
	assert.Equal(t, "L898902C3", mrp.DocumentNumber)
	assert.Equal(t, "ERIKSSON", mrp.Surname)
	assert.Equal(t, "ANNA MARIA", mrp.GivenNames)
	assert.Equal(t, "UTO", mrp.Nationality)
	assert.True(t, mrp.DateOfBirth.Equal(mrz.NewDate(74, 8, 12)))
	assert.True(t, mrp.ExpirationDate.Equal(mrz.NewDate(12, 4, 15)))
	assert.Equal(t, mrz.SexFemale, mrp.Sex)
	assert.Equal(t, "ZE184226B", mrp.PersonalNumber)

	assert.True(t, mrp.ValidDocumentNumber)
	assert.True(t, mrp.ValidDateOfBirth)
	assert.True(t, mrp.ValidExpirationDate)
	assert.True(t, mrp.ValidPersonalNumber)
	assert.True(t, mrp.ValidComposite)
	assert.Empty(t, mrp.Warnings)
}

func TestParse_TD1(t *testing.T) {
	rec, err := mrz.Parse(specimenTD1)
	require.NoError(t, err)

	td1, ok := rec.(*mrz.TD1)
	require.True(t, ok)
	assert.Equal(t, mrz.DocumentCodeTypeI, td1.DocumentCode)
	assert.Equal(t, "D23145890", td1.DocumentNumber)
	assert.Equal(t, "ERIKSSON", td1.Surname)
	assert.Equal(t, "ANNA MARIA", td1.GivenNames)
	assert.Equal(t, "UTO", td1.Nationality)
	assert.Empty(t, td1.Optional)
	assert.Empty(t, td1.Optional2)
	assert.True(t, td1.ValidDocumentNumber)
	assert.True(t, td1.ValidDateOfBirth)
	assert.True(t, td1.ValidExpirationDate)
	assert.True(t, td1.ValidComposite)
}

func TestParse_TD2(t *testing.T) {
	rec, err := mrz.Parse(specimenTD2)
	require.NoError(t, err)

	td2, ok := rec.(*mrz.TD2)
	require.True(t, ok)
	assert.Equal(t, "D23145890", td2.DocumentNumber)
	assert.Equal(t, "ERIKSSON", td2.Surname)
	assert.True(t, td2.ValidDocumentNumber)
	assert.True(t, td2.ValidComposite)
}

func TestParse_Visas(t *testing.T) {
	rec, err := mrz.Parse(specimenMRVA)
	require.NoError(t, err)
	visaA, ok := rec.(*mrz.MRVA)
	require.True(t, ok)
	assert.Equal(t, mrz.DocumentCodeTypeV, visaA.DocumentCode)
	assert.Equal(t, "L8988901C", visaA.DocumentNumber)
	assert.Equal(t, "XXX", visaA.Nationality)
	assert.Equal(t, "6ZE184226B", visaA.Optional)
	assert.True(t, visaA.ValidDocumentNumber)
	assert.True(t, visaA.ValidDateOfBirth)
	assert.True(t, visaA.ValidExpirationDate)
	assert.False(t, visaA.ValidComposite)

	rec, err = mrz.Parse(specimenMRVB)
	require.NoError(t, err)
	visaB, ok := rec.(*mrz.MRVB)
	require.True(t, ok)
	assert.Equal(t, "ERIKSSON", visaB.Surname)
	assert.Empty(t, visaB.Optional)
	assert.False(t, visaB.ValidComposite)
}

func TestParse_RepairedDocumentNumberFeedsComposite(t *testing.T) {
	text := "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"XO01234560UTO7408122F1204159ZE184226B<<<<<12"

	rec, err := mrz.Parse(text)
	require.NoError(t, err)
	b := rec.Base()
	assert.Equal(t, "X0O123456", b.DocumentNumber)
	assert.True(t, b.ValidDocumentNumber)
	assert.True(t, b.ValidComposite)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"unknown format", "P<UTO\nABC", mrz.ErrUnknownFormat},
		{"invalid character", strings.Replace(specimenTD3, "ERIKSSON", "ERIkSSON", 1), mrz.ErrInvalidCharacter},
		{"invalid sex", strings.Replace(specimenTD3, "2F12", "2Q12", 1), mrz.ErrInvalidSexChar},
		{"unsupported document code", "X" + specimenTD3[1:], mrz.ErrUnsupportedDocumentCode},
		{"banned IV code", "IV" + specimenTD2[2:], mrz.ErrUnsupportedDocumentCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mrz.Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFromMrz_FormatMismatch(t *testing.T) {
	rec := mrz.FormatTD2.NewRecord()
	err := rec.FromMrz(specimenTD3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mrz.ErrFormatMismatch))
}

// ============================================================================
// SERIALIZATION
// ============================================================================

func TestToMrz_RoundTrip(t *testing.T) {
	for _, text := range []string{specimenTD3, specimenTD1, specimenTD2, specimenMRVA, specimenMRVB} {
		t.Run(strings.SplitN(text, "\n", 2)[0], func(t *testing.T) {
			rec, err := mrz.Parse(text)
			require.NoError(t, err)

			out, err := rec.ToMrz()
			require.NoError(t, err)
			assert.Equal(t, text, out)

			again, err := mrz.Parse(out)
			require.NoError(t, err)
			assert.Equal(t, rec, again)
		})
	}
}

func TestToMrz_RecomputesCheckDigits(t *testing.T) {
	text := strings.Replace(specimenTD3, "7408122F", "7408125F", 1)
	rec, err := mrz.Parse(text)
	require.NoError(t, err)
	assert.False(t, rec.Base().ValidDateOfBirth)

	out, err := rec.ToMrz()
	require.NoError(t, err)
	assert.Equal(t, specimenTD3, out)
}

func TestToMrz_FromFields(t *testing.T) {
	rec := mrz.FormatPassport.NewRecord()
	b := rec.Base()
	b.Code1 = "P"
	b.Code2 = "<"
	b.IssuingCountry = "D"
	b.DocumentNumber = "C01X00T47"
	b.SetName("Mustermann", "Erika")
	b.Nationality = "D"
	b.DateOfBirth = mrz.NewDate(64, 8, 12)
	b.ExpirationDate = mrz.NewDate(27, 10, 31)
	b.Sex = mrz.SexFemale

	out, err := rec.ToMrz()
	require.NoError(t, err)

	rows := strings.Split(out, "\n")
	require.Len(t, rows, 2)
	assert.Equal(t, "P<D<<MUSTERMANN<<ERIKA<<<<<<<<<<<<<<<<<<<<<<", rows[0])
	assert.True(t, strings.HasPrefix(rows[1], "C01X00T478D<<"))

	parsed, err := mrz.Parse(out)
	require.NoError(t, err)
	assert.True(t, mrz.Accepted(parsed.Base()))
	assert.Equal(t, "MUSTERMANN", parsed.Base().Surname)
	assert.Equal(t, "ERIKA", parsed.Base().GivenNames)
}

func TestRecord_String(t *testing.T) {
	rec, err := mrz.Parse(specimenTD3)
	require.NoError(t, err)

	s := rec.String()
	assert.True(t, strings.HasPrefix(s, "MRP{MrzRecord{code=Passport[P<]"), s)
	assert.Contains(t, s, "personalNumber=ZE184226B")
}
