package mrz

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Field names that enable the 0/O repair in CheckDigit.
const (
	FieldDocumentNumber = "document number"
	FieldPassportNumber = "passport number"
)

// OCR misreads of a trailing filler that name parsing tolerates.
var (
	nameJunkSuffixes          = []string{"<", "<<S", "<<E", "<<C", "<<K", "<<KK"}
	separatedNameJunkSuffixes = []string{"<", "<<S", "<<E", "<<C", "<<CC", "<<K", "<<KK", "<<KKK", "<<KKKK", "<<KKKKK"}
)

var letterToDigit = strings.NewReplacer("O", "0", "I", "1", "B", "8", "S", "5", "Z", "2")

// Extractor reads fields out of one MRZ text by range. It owns a mutable copy
// of the rows: a successful document number repair in CheckDigit is written
// back and seen by every later read.
type Extractor struct {
	rows     [][]byte
	format   Format
	log      zerolog.Logger
	warnings []string
	repaired bool
}

// NewExtractor detects the format of text and prepares it for extraction.
func NewExtractor(text string, opts ...Option) (*Extractor, error) {
	return newExtractor(text, newOptions(opts))
}

func newExtractor(text string, o options) (*Extractor, error) {
	f, repaired, err := detect(text)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(repaired, "\n")
	rows := make([][]byte, len(lines))
	for i, l := range lines {
		rows[i] = []byte(l)
	}
	return &Extractor{rows: rows, format: f, log: o.log}, nil
}

// Format returns the detected format.
func (x *Extractor) Format() Format {
	return x.format
}

// Text returns the working text including any repairs.
func (x *Extractor) Text() string {
	lines := make([]string, len(x.rows))
	for i, r := range x.rows {
		lines[i] = string(r)
	}
	return strings.Join(lines, "\n")
}

// Warnings returns the non-fatal problems noticed so far.
func (x *Extractor) Warnings() []string {
	return x.warnings
}

// Repaired reports whether CheckDigit corrected the working text.
func (x *Extractor) Repaired() bool {
	return x.repaired
}

func (x *Extractor) warn(msg string) {
	x.log.Warn().Msg(msg)
	x.warnings = append(x.warnings, msg)
}

// bounds clamps r to the row it addresses.
func (x *Extractor) bounds(r Range) (row []byte, from, to int) {
	if r.Row < 0 || r.Row >= len(x.rows) {
		return nil, 0, 0
	}
	row = x.rows[r.Row]
	from = min(max(r.Column, 0), len(row))
	to = min(max(r.ColumnTo, from), len(row))
	return row, from, to
}

func (x *Extractor) cell(col, row int) byte {
	if row < 0 || row >= len(x.rows) || col < 0 || col >= len(x.rows[row]) {
		return 0
	}
	return x.rows[row][col]
}

// RawValue concatenates the text of the given ranges.
func (x *Extractor) RawValue(ranges ...Range) string {
	var sb strings.Builder
	for _, r := range ranges {
		row, from, to := x.bounds(r)
		sb.Write(row[from:to])
	}
	return sb.String()
}

// CheckValidCharacters fails with an *InvalidCharacterError on the first
// character outside [0-9A-Z<].
func (x *Extractor) CheckValidCharacters(r Range) error {
	row, from, to := x.bounds(r)
	for i := from; i < to; i++ {
		if !isValidChar(row[i]) {
			return &InvalidCharacterError{Row: r.Row, Column: i, Char: rune(row[i])}
		}
	}
	return nil
}

// ParseString strips trailing fillers and renders << as ", " and < as " ".
func (x *Extractor) ParseString(r Range) (string, error) {
	if err := x.CheckValidCharacters(r); err != nil {
		return "", err
	}
	return renderFillers(strings.TrimRight(x.RawValue(r), "<"), ", "), nil
}

// ParseNumberString is ParseString after undoing letter-for-digit OCR
// confusions (O→0, I→1, B→8, S→5, Z→2).
func (x *Extractor) ParseNumberString(r Range) (string, error) {
	if err := x.CheckValidCharacters(r); err != nil {
		return "", err
	}
	s := letterToDigit.Replace(x.RawValue(r))
	return renderFillers(strings.TrimRight(s, "<"), ", "), nil
}

// ParseNameString strips trailing fillers and their common misreads, drops
// << and renders < as " ".
func (x *Extractor) ParseNameString(r Range) (string, error) {
	if err := x.CheckValidCharacters(r); err != nil {
		return "", err
	}
	return renderFillers(stripJunk(x.RawValue(r), nameJunkSuffixes), ""), nil
}

// ParseNameStringWithSeparators is ParseNameString with a wider set of
// tolerated misreads and << rendered as ", ".
func (x *Extractor) ParseNameStringWithSeparators(r Range) (string, error) {
	if err := x.CheckValidCharacters(r); err != nil {
		return "", err
	}
	return renderFillers(stripJunk(x.RawValue(r), separatedNameJunkSuffixes), ", "), nil
}

// ParseDocuString renders << as "-".
func (x *Extractor) ParseDocuString(r Range) (string, error) {
	if err := x.CheckValidCharacters(r); err != nil {
		return "", err
	}
	return renderFillers(strings.TrimRight(x.RawValue(r), "<"), "-"), nil
}

// ParseName splits a SURNAME<<GIVEN<NAMES field. A field without << is read
// as given names only.
func (x *Extractor) ParseName(r Range) (surname, givenNames string, err error) {
	if err := x.CheckValidCharacters(r); err != nil {
		return "", "", err
	}
	str := stripJunk(x.RawValue(r), nameJunkSuffixes)
	names := strings.Split(str, "<<")
	first := rng(r.Column, r.Column+len(names[0]), r.Row)

	if len(names) == 1 {
		givenNames, err = x.ParseNameString(first)
		return "", givenNames, err
	}
	if surname, err = x.ParseNameString(first); err != nil {
		return "", "", err
	}
	givenNames, err = x.ParseNameString(rng(r.Column+len(names[0])+2, r.Column+len(str), r.Row))
	return surname, givenNames, err
}

// CheckDigit verifies the check digit at (col, row) against field. For
// document and passport numbers a mismatch triggers a search over every 0/O
// assignment in the field; the first assignment that verifies is written back
// into the working text.
func (x *Extractor) CheckDigit(col, row int, field Range, fieldName string) bool {
	value := x.RawValue(field)
	if x.CheckDigitValue(col, row, value, fieldName) {
		return true
	}
	if fieldName != FieldDocumentNumber && fieldName != FieldPassportNumber {
		return false
	}

	fixed, ok := repairZeroO(value, x.expectedDigit(col, row))
	if !ok {
		return false
	}
	buf, from, _ := x.bounds(field)
	copy(buf[from:], fixed)
	x.repaired = true
	x.log.Info().Str("field", fieldName).Msg("check digit matched after 0/O correction")
	return true
}

// CheckDigitWithoutFiller verifies the check digit over field with every
// filler removed.
func (x *Extractor) CheckDigitWithoutFiller(col, row int, field Range, fieldName string) bool {
	return x.CheckDigitValue(col, row, strings.ReplaceAll(x.RawValue(field), "<", ""), fieldName)
}

// CheckDigitValue verifies the check digit at (col, row) against an already
// assembled value, such as the composite of several ranges. It never
// repairs.
func (x *Extractor) CheckDigitValue(col, row int, value, fieldName string) bool {
	want := x.expectedDigit(col, row)
	digit, err := ComputeCheckDigit(value)
	if err != nil {
		x.log.Debug().Err(err).Str("field", fieldName).Msg("check digit not computable")
		return false
	}
	if byte('0'+digit) != want {
		x.log.Debug().
			Str("field", fieldName).
			Int("expected", digit).
			Str("got", string(rune(want))).
			Msg("check digit verification failed")
		return false
	}
	return true
}

// expectedDigit reads a stored check digit; filler and O count as 0.
func (x *Extractor) expectedDigit(col, row int) byte {
	c := x.cell(col, row)
	if c == Filler || c == 'O' {
		return '0'
	}
	return c
}

// repairZeroO tries every assignment of {0, O} to the positions of value
// holding either character and returns the first one whose check digit is
// want.
func repairZeroO(value string, want byte) (string, bool) {
	var positions []int
	for i := 0; i < len(value); i++ {
		if value[i] == '0' || value[i] == 'O' {
			positions = append(positions, i)
		}
	}
	if len(positions) == 0 {
		return "", false
	}

	candidate := []byte(value)
	for mask := 0; mask < 1<<len(positions); mask++ {
		for bit, pos := range positions {
			if mask&(1<<bit) != 0 {
				candidate[pos] = 'O'
			} else {
				candidate[pos] = '0'
			}
		}
		digit, err := ComputeCheckDigit(string(candidate))
		if err == nil && byte('0'+digit) == want {
			return string(candidate), true
		}
	}
	return "", false
}

// ParseDate reads a YYMMDD range. Out of range components are reported as
// warnings and left for Date.IsValid to reject.
func (x *Extractor) ParseDate(r Range) (Date, error) {
	if r.Len() != 6 {
		return Date{}, invalidArgument("parameter range: invalid value %s: must be 6 characters long", r)
	}
	if err := x.CheckValidCharacters(r); err != nil {
		return Date{}, err
	}
	d := Date{
		Year:  x.parseInt(rng(r.Column, r.Column+2, r.Row)),
		Month: x.parseInt(rng(r.Column+2, r.Column+4, r.Row)),
		Day:   x.parseInt(rng(r.Column+4, r.Column+6, r.Row)),
		Raw:   x.RawValue(r),
	}
	for _, p := range d.problems() {
		x.warn(p)
	}
	return d, nil
}

func (x *Extractor) parseInt(r Range) int {
	n, err := strconv.ParseUint(x.RawValue(r), 10, 8)
	if err != nil {
		return -1
	}
	return int(n)
}

// ParseSex reads the sex cell at (col, row).
func (x *Extractor) ParseSex(col, row int) (Sex, error) {
	return ParseSex(x.cell(col, row))
}

func stripJunk(s string, suffixes []string) string {
	for hasAnySuffix(s, suffixes) {
		s = s[:len(s)-1]
	}
	return s
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func renderFillers(s, double string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "<<", double), "<", " ")
}
