package mrz

import "fmt"

// MRVA is a type A machine readable visa (2x44).
type MRVA struct {
	Common
	Optional string `json:"optional"`
}

func (r *MRVA) FromMrz(text string) error {
	return readVisa(&r.Common, &r.Optional, text, 44)
}

func (r *MRVA) ToMrz() (string, error) {
	return writeVisa(&r.Common, r.Optional, 44)
}

func (r *MRVA) String() string {
	return fmt.Sprintf("MRV-A{%s, optional=%s}", r.Common.String(), r.Optional)
}

// MRVB is a type B machine readable visa (2x36).
type MRVB struct {
	Common
	Optional string `json:"optional"`
}

func (r *MRVB) FromMrz(text string) error {
	return readVisa(&r.Common, &r.Optional, text, 36)
}

func (r *MRVB) ToMrz() (string, error) {
	return writeVisa(&r.Common, r.Optional, 36)
}

func (r *MRVB) String() string {
	return fmt.Sprintf("MRV-B{%s, optional=%s}", r.Common.String(), r.Optional)
}

// readVisa reads either visa layout; they differ only in width. Visas carry
// no composite check digit.
func readVisa(c *Common, optional *string, text string, width int) error {
	x, err := c.extract(text)
	if err != nil {
		return err
	}
	if err := c.readName(x, rng(5, width, 0)); err != nil {
		return err
	}
	if err := c.readDataRow(x, FieldPassportNumber); err != nil {
		return err
	}
	if *optional, err = x.ParseString(rng(28, width, 1)); err != nil {
		return err
	}
	c.ValidComposite = false
	c.finish(x)
	return nil
}

func writeVisa(c *Common, optional string, width int) (string, error) {
	name, err := NameToMrz(c.Surname, c.GivenNames, width-5)
	if err != nil {
		return "", err
	}
	doc, nationality, dob, sex, expiry, err := c.dataRow()
	if err != nil {
		return "", err
	}
	return c.header() + name + "\n" +
		doc + nationality + dob + sex + expiry + ToMrz(optional, width-28), nil
}
