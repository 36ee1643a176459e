package mrz

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Record is a parsed MRZ. The concrete types are *MRP, *TD1, *TD2, *MRVA and
// *MRVB.
type Record interface {
	// Format is the layout the record reads and writes.
	Format() Format
	// FromMrz populates the record from MRZ text of the record's format.
	FromMrz(text string) error
	// ToMrz renders the record with freshly computed check digits. Rows are
	// separated by a newline, without a trailing one.
	ToMrz() (string, error)
	// Base exposes the fields shared by all layouts.
	Base() *Common
	fmt.Stringer
}

// Common holds the fields every layout carries.
type Common struct {
	format Format
	log    zerolog.Logger

	DocumentCode DocumentCode `json:"documentCode"`
	// Code1 and Code2 are the first two characters of the MRZ.
	Code1          string `json:"code1"`
	Code2          string `json:"code2"`
	IssuingCountry string `json:"issuingCountry"`
	DocumentNumber string `json:"documentNumber"`
	Surname        string `json:"surname"`
	GivenNames     string `json:"givenNames"`
	DateOfBirth    Date   `json:"dateOfBirth"`
	Sex            Sex    `json:"sex"`
	ExpirationDate Date   `json:"expirationDate"`
	Nationality    string `json:"nationality"`

	ValidDocumentNumber bool `json:"validDocumentNumber"`
	ValidDateOfBirth    bool `json:"validDateOfBirth"`
	ValidExpirationDate bool `json:"validExpirationDate"`
	// ValidComposite is always false for visas, which have no composite
	// check digit.
	ValidComposite bool `json:"validComposite"`

	// Repaired is set when a 0/O confusion in the document number was
	// corrected to make its check digit match.
	Repaired bool     `json:"repaired,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func newCommon(f Format, o options) Common {
	return Common{
		format:         f,
		log:            o.log.With().Str("format", f.String()).Logger(),
		DocumentCode:   DocumentCodePassport,
		DateOfBirth:    NewDate(70, 1, 1),
		Sex:            SexUnspecified,
		ExpirationDate: NewDate(70, 1, 1),
	}
}

func newVisaCommon(f Format, o options) Common {
	c := newCommon(f, o)
	c.DocumentCode = DocumentCodeTypeV
	c.Code1 = "V"
	c.Code2 = string(Filler)
	return c
}

// Format returns the record's layout.
func (c *Common) Format() Format {
	return c.format
}

// Base returns c.
func (c *Common) Base() *Common {
	return c
}

// SetName sets surname and given names together.
func (c *Common) SetName(surname, givenNames string) {
	c.Surname = surname
	c.GivenNames = givenNames
}

func (c *Common) String() string {
	return fmt.Sprintf("MrzRecord{code=%s[%s%s], issuingCountry=%s, documentNumber=%s, surname=%s, givenNames=%s, dateOfBirth=%s, sex=%s, expirationDate=%s, nationality=%s}",
		c.DocumentCode, c.Code1, c.Code2, c.IssuingCountry, c.DocumentNumber, c.Surname, c.GivenNames,
		c.DateOfBirth, c.Sex.Label(), c.ExpirationDate, c.Nationality)
}

// extract prepares text for reading and fills in the leading document code
// and issuing country.
func (c *Common) extract(text string) (*Extractor, error) {
	x, err := newExtractor(text, options{log: c.log})
	if err != nil {
		return nil, err
	}
	if x.Format() != c.format {
		return nil, &ParseError{Err: ErrFormatMismatch, Message: "invalid format: " + x.Format().String(), Format: &c.format}
	}

	if c.DocumentCode, err = ParseDocumentCode(x.Text()); err != nil {
		return nil, err
	}
	c.Code1 = x.RawValue(rng(0, 1, 0))
	c.Code2 = x.RawValue(rng(1, 2, 0))
	if c.IssuingCountry, err = x.ParseString(rng(2, 5, 0)); err != nil {
		return nil, err
	}
	return x, nil
}

func (c *Common) finish(x *Extractor) {
	c.Repaired = x.Repaired()
	c.Warnings = x.Warnings()
}

func (c *Common) readName(x *Extractor, r Range) error {
	surname, given, err := x.ParseName(r)
	if err != nil {
		return err
	}
	c.SetName(surname, given)
	return nil
}

// readDate parses a date range and verifies its check digit at
// (r.ColumnTo, r.Row).
func readDate(x *Extractor, r Range, fieldName string) (Date, bool, error) {
	d, err := x.ParseDate(r)
	if err != nil {
		return Date{}, false, err
	}
	return d, x.CheckDigit(r.ColumnTo, r.Row, r, fieldName) && d.IsValid(), nil
}

// readDataRow reads the second row shared by the passport, TD2 and visa
// layouts: document number, nationality, birth date, sex and expiry.
func (c *Common) readDataRow(x *Extractor, docField string) error {
	var err error
	doc := rng(0, 9, 1)
	c.ValidDocumentNumber = x.CheckDigit(9, 1, doc, docField)
	if c.DocumentNumber, err = x.ParseString(doc); err != nil {
		return err
	}
	if c.Nationality, err = x.ParseString(rng(10, 13, 1)); err != nil {
		return err
	}
	if c.DateOfBirth, c.ValidDateOfBirth, err = readDate(x, rng(13, 19, 1), "date of birth"); err != nil {
		return err
	}
	if c.Sex, err = x.ParseSex(20, 1); err != nil {
		return err
	}
	if c.ExpirationDate, c.ValidExpirationDate, err = readDate(x, rng(21, 27, 1), "expiration date"); err != nil {
		return err
	}
	return nil
}

func (c *Common) header() string {
	return ToMrz(c.Code1, 1) + ToMrz(c.Code2, 1) + ToMrz(c.IssuingCountry, 3)
}

// dataRow renders the fields read by readDataRow. The returned parts are the
// check digit protected groups that feed the composite.
func (c *Common) dataRow() (doc, nationality, dob, sex, expiry string, err error) {
	if doc, err = withCheckDigit(ToMrz(c.DocumentNumber, 9)); err != nil {
		return
	}
	if dob, err = withCheckDigit(c.DateOfBirth.ToMrz()); err != nil {
		return
	}
	if expiry, err = withCheckDigit(c.ExpirationDate.ToMrz()); err != nil {
		return
	}
	return doc, ToMrz(c.Nationality, 3), dob, c.Sex.ToMrz(), expiry, nil
}
