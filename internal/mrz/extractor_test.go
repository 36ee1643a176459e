package mrz_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medflow/mrz-scanner/internal/mrz"
)

func newExtractor(t *testing.T, text string) *mrz.Extractor {
	t.Helper()
	x, err := mrz.NewExtractor(text)
	require.NoError(t, err)
	return x
}

func row(x *mrz.Extractor, i int) string {
	return strings.Split(x.Text(), "\n")[i]
}

// ============================================================================
// STRING FIELDS
// ============================================================================

func TestExtractor_StringFields(t *testing.T) {
	x := newExtractor(t, specimenTD3)
	name := mrz.Range{Column: 5, ColumnTo: 44, Row: 0}

	assert.Equal(t, "UTO", x.RawValue(mrz.Range{Column: 2, ColumnTo: 5, Row: 0}))
	assert.Equal(t, "L898902C36UTO", x.RawValue(
		mrz.Range{Column: 0, ColumnTo: 10, Row: 1},
		mrz.Range{Column: 10, ColumnTo: 13, Row: 1},
	))

	s, err := x.ParseString(name)
	require.NoError(t, err)
	assert.Equal(t, "ERIKSSON, ANNA MARIA", s)

	s, err = x.ParseNameString(name)
	require.NoError(t, err)
	assert.Equal(t, "ERIKSSONANNA MARIA", s)

	s, err = x.ParseNameStringWithSeparators(name)
	require.NoError(t, err)
	assert.Equal(t, "ERIKSSON, ANNA MARIA", s)

	s, err = x.ParseDocuString(name)
	require.NoError(t, err)
	assert.Equal(t, "ERIKSSON-ANNA MARIA", s)

	s, err = x.ParseString(mrz.Range{Column: 28, ColumnTo: 42, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, "ZE184226B", s)
}

func TestExtractor_ParseNumberString(t *testing.T) {
	x := newExtractor(t, strings.Replace(specimenTD3, "L898902C3", "L8989O2C3", 1))

	s, err := x.ParseNumberString(mrz.Range{Column: 0, ColumnTo: 9, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, "L898902C3", s)
}

func TestExtractor_ParseName(t *testing.T) {
	tests := []struct {
		name        string
		row0        string
		wantSurname string
		wantGiven   string
	}{
		{"surname and given names", "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<", "ERIKSSON", "ANNA MARIA"},
		{"trailing K misread", "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<K", "ERIKSSON", "ANNA MARIA"},
		{"trailing S misread", "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<S", "ERIKSSON", "ANNA MARIA"},
		{"no separator", "P<UTOERIKSSON<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<", "", "ERIKSSON"},
		{"compound surname", "P<UTOVAN<DER<BERG<<JAN<<<<<<<<<<<<<<<<<<<<<<", "VAN DER BERG", "JAN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Len(t, tt.row0, 44)
			x := newExtractor(t, tt.row0+"\n"+strings.Split(specimenTD3, "\n")[1])

			surname, given, err := x.ParseName(mrz.Range{Column: 5, ColumnTo: 44, Row: 0})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSurname, surname)
			assert.Equal(t, tt.wantGiven, given)
		})
	}
}

func TestExtractor_InvalidCharacter(t *testing.T) {
	x := newExtractor(t, strings.Replace(specimenTD3, "L898902C3", "L8l8902C3", 1))

	_, err := x.ParseString(mrz.Range{Column: 0, ColumnTo: 9, Row: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mrz.ErrInvalidCharacter))

	var invalid *mrz.InvalidCharacterError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, 1, invalid.Row)
	assert.Equal(t, 2, invalid.Column)
	assert.Equal(t, 'l', invalid.Char)
}

// ============================================================================
// DATES AND SEX
// ============================================================================

func TestExtractor_ParseDate(t *testing.T) {
	x := newExtractor(t, specimenTD3)

	d, err := x.ParseDate(mrz.Range{Column: 13, ColumnTo: 19, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, mrz.Date{Year: 74, Month: 8, Day: 12, Raw: "740812"}, d)
	assert.Empty(t, x.Warnings())

	_, err = x.ParseDate(mrz.Range{Column: 13, ColumnTo: 18, Row: 1})
	assert.True(t, errors.Is(err, mrz.ErrInvalidArgument))
}

func TestExtractor_ParseDate_OutOfRangeIsWarned(t *testing.T) {
	x := newExtractor(t, strings.Replace(specimenTD3, "7408122F", "7413122F", 1))

	d, err := x.ParseDate(mrz.Range{Column: 13, ColumnTo: 19, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, 13, d.Month)
	assert.False(t, d.IsValid())
	assert.Len(t, x.Warnings(), 1)
}

func TestExtractor_ParseDate_NonDigits(t *testing.T) {
	x := newExtractor(t, strings.Replace(specimenTD3, "7408122F", "74O8122F", 1))

	d, err := x.ParseDate(mrz.Range{Column: 13, ColumnTo: 19, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, -1, d.Month)
	assert.Equal(t, 74, d.Year)
	assert.Equal(t, 12, d.Day)
	assert.False(t, d.IsValid())
	assert.Len(t, x.Warnings(), 1)

	x = newExtractor(t, strings.Replace(specimenTD3, "7408122F", "74#8122F", 1))
	_, err = x.ParseDate(mrz.Range{Column: 13, ColumnTo: 19, Row: 1})
	assert.True(t, errors.Is(err, mrz.ErrInvalidCharacter))
}

func TestExtractor_ParseSex(t *testing.T) {
	x := newExtractor(t, specimenTD3)
	sex, err := x.ParseSex(20, 1)
	require.NoError(t, err)
	assert.Equal(t, mrz.SexFemale, sex)

	x = newExtractor(t, strings.Replace(specimenTD3, "2F12", "2Q12", 1))
	_, err = x.ParseSex(20, 1)
	assert.True(t, errors.Is(err, mrz.ErrInvalidSexChar))
}

// ============================================================================
// CHECK DIGITS
// ============================================================================

func TestExtractor_CheckDigit(t *testing.T) {
	x := newExtractor(t, specimenTD3)

	assert.True(t, x.CheckDigit(9, 1, mrz.Range{Column: 0, ColumnTo: 9, Row: 1}, mrz.FieldPassportNumber))
	assert.True(t, x.CheckDigit(19, 1, mrz.Range{Column: 13, ColumnTo: 19, Row: 1}, "date of birth"))
	assert.True(t, x.CheckDigit(42, 1, mrz.Range{Column: 28, ColumnTo: 42, Row: 1}, "personal number"))
	assert.True(t, x.CheckDigitWithoutFiller(42, 1, mrz.Range{Column: 28, ColumnTo: 42, Row: 1}, "personal number"))
	assert.False(t, x.CheckDigit(27, 1, mrz.Range{Column: 13, ColumnTo: 19, Row: 1}, "date of birth"))

	composite := x.RawValue(
		mrz.Range{Column: 0, ColumnTo: 10, Row: 1},
		mrz.Range{Column: 13, ColumnTo: 20, Row: 1},
		mrz.Range{Column: 21, ColumnTo: 43, Row: 1},
	)
	assert.True(t, x.CheckDigitValue(43, 1, composite, "mrz"))
}

func TestExtractor_CheckDigit_RepairsSingleZero(t *testing.T) {
	text := strings.Replace(specimenTD3, "L898902C3", "L8989O2C3", 1)
	doc := mrz.Range{Column: 0, ColumnTo: 9, Row: 1}

	x := newExtractor(t, text)
	assert.True(t, x.CheckDigit(9, 1, doc, mrz.FieldPassportNumber))
	assert.Equal(t, "L898902C3", x.RawValue(doc))
	assert.True(t, strings.HasPrefix(row(x, 1), "L898902C36UTO"))
}

func TestExtractor_CheckDigit_RepairsJointAssignment(t *testing.T) {
	// X0O123456 has check digit 0; OCR swapped the two ambiguous cells.
	text := "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"XO01234560UTO7408122F1204159ZE184226B<<<<<12"
	doc := mrz.Range{Column: 0, ColumnTo: 9, Row: 1}

	x := newExtractor(t, text)
	assert.True(t, x.CheckDigit(9, 1, doc, mrz.FieldDocumentNumber))
	assert.Equal(t, "X0O123456", x.RawValue(doc))
}

func TestExtractor_CheckDigit_RepairOnlyForDocumentNumbers(t *testing.T) {
	text := strings.Replace(specimenTD3, "L898902C3", "L8989O2C3", 1)
	doc := mrz.Range{Column: 0, ColumnTo: 9, Row: 1}

	x := newExtractor(t, text)
	assert.False(t, x.CheckDigit(9, 1, doc, "personal number"))
	assert.Equal(t, "L8989O2C3", x.RawValue(doc))
}

func TestExtractor_CheckDigit_NoRepairFound(t *testing.T) {
	text := strings.Replace(specimenTD3, "L898902C36", "L898902C33", 1)
	doc := mrz.Range{Column: 0, ColumnTo: 9, Row: 1}

	x := newExtractor(t, text)
	assert.False(t, x.CheckDigit(9, 1, doc, mrz.FieldPassportNumber))
	assert.Equal(t, "L898902C3", x.RawValue(doc))
}
