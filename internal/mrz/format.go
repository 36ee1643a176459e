package mrz

import (
	"fmt"
	"strings"
)

// Variant names one of the supported physical layouts.
type Variant string

const (
	VariantPassport Variant = "MRP"
	VariantTD1      Variant = "MRTD-TD1"
	VariantTD2      Variant = "MRTD-TD2"
	VariantVisaA    Variant = "MRV-A"
	VariantVisaB    Variant = "MRV-B"
)

// dummyRowWidth is a row width produced by certain malformed captures that is
// left alone by the padding repair in Detect.
const dummyRowWidth = 44

// Format describes the dimensions of an MRZ layout. Formats compare
// structurally.
type Format struct {
	Rows    int     `json:"rows"`
	Columns int     `json:"columns"`
	Variant Variant `json:"variant"`
}

var (
	FormatTD1      = Format{Rows: 3, Columns: 30, Variant: VariantTD1}
	FormatTD2      = Format{Rows: 2, Columns: 36, Variant: VariantTD2}
	FormatPassport = Format{Rows: 2, Columns: 44, Variant: VariantPassport}
	FormatVisaA    = Format{Rows: 2, Columns: 44, Variant: VariantVisaA}
	FormatVisaB    = Format{Rows: 2, Columns: 36, Variant: VariantVisaB}
)

// registry is consulted in order; the first match wins.
var registry = []Format{FormatTD1, FormatTD2, FormatPassport, FormatVisaA, FormatVisaB}

func (f Format) String() string {
	return fmt.Sprintf("%s(%dx%d)", f.Variant, f.Rows, f.Columns)
}

// IsVisa reports whether the layout belongs to a machine readable visa.
func (f Format) IsVisa() bool {
	return f.Variant == VariantVisaA || f.Variant == VariantVisaB
}

// HasComposite reports whether the layout carries a composite check digit.
func (f Format) HasComposite() bool {
	return !f.IsVisa()
}

// Matches reports whether rows have this format's dimensions. Two-row
// layouts also look at row 0: visas start with V and the others must not,
// since each visa shares its dimensions with a non-visa layout.
func (f Format) Matches(rows []string) bool {
	if len(rows) == 0 || f.Rows != len(rows) || f.Columns != len(rows[0]) {
		return false
	}
	visa := strings.HasPrefix(rows[0], "V")
	switch {
	case f.IsVisa():
		return visa
	case f.Rows == 2:
		return !visa
	default:
		return true
	}
}

// NewRecord returns an empty record of the variant's type.
func (f Format) NewRecord(opts ...Option) Record {
	o := newOptions(opts)
	switch f.Variant {
	case VariantTD1:
		return &TD1{Common: newCommon(f, o)}
	case VariantTD2:
		return &TD2{Common: newCommon(f, o)}
	case VariantVisaA:
		return &MRVA{Common: newVisaCommon(f, o)}
	case VariantVisaB:
		return &MRVB{Common: newVisaCommon(f, o)}
	default:
		return &MRP{Common: newCommon(f, o)}
	}
}

// LookupFormat returns the registered format of a variant.
func LookupFormat(v Variant) (Format, bool) {
	for _, f := range registry {
		if f.Variant == v {
			return f, true
		}
	}
	return Format{}, false
}

// Detect returns the format of cleaned MRZ text.
func Detect(text string) (Format, error) {
	f, _, err := detect(text)
	return f, err
}

// detect also returns the text after the padding repair so that extraction
// works on the same rows the format was matched against.
func detect(text string) (Format, string, error) {
	rows := strings.Split(text, "\n")
	cols := len(rows[0])

	repaired := text
	for _, row := range rows {
		if len(row) != cols && len(row) != dummyRowWidth {
			repaired += string(Filler)
		}
	}
	rows = strings.Split(repaired, "\n")

	for _, f := range registry {
		if f.Matches(rows) {
			return f, repaired, nil
		}
	}
	return Format{}, repaired, &UnknownFormatError{Columns: cols, Rows: len(rows)}
}
