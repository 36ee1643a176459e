package mrz

import "fmt"

// MRP is a machine readable passport (TD3, 2x44).
type MRP struct {
	Common
	// PersonalNumber is at the discretion of the issuing state.
	PersonalNumber      string `json:"personalNumber"`
	ValidPersonalNumber bool   `json:"validPersonalNumber"`
}

func (r *MRP) FromMrz(text string) error {
	x, err := r.extract(text)
	if err != nil {
		return err
	}
	if err := r.readName(x, rng(5, 44, 0)); err != nil {
		return err
	}
	if err := r.readDataRow(x, FieldPassportNumber); err != nil {
		return err
	}

	personal := rng(28, 42, 1)
	if r.PersonalNumber, err = x.ParseString(personal); err != nil {
		return err
	}
	r.ValidPersonalNumber = x.CheckDigit(42, 1, personal, "personal number")
	r.ValidComposite = x.CheckDigitValue(43, 1, x.RawValue(rng(0, 10, 1), rng(13, 20, 1), rng(21, 43, 1)), "mrz")
	r.finish(x)
	return nil
}

func (r *MRP) ToMrz() (string, error) {
	name, err := NameToMrz(r.Surname, r.GivenNames, 39)
	if err != nil {
		return "", err
	}
	doc, nationality, dob, sex, expiry, err := r.dataRow()
	if err != nil {
		return "", err
	}
	personal, err := withCheckDigit(ToMrz(r.PersonalNumber, 14))
	if err != nil {
		return "", err
	}
	composite, err := CheckDigitChar(doc + dob + expiry + personal)
	if err != nil {
		return "", err
	}
	return r.header() + name + "\n" +
		doc + nationality + dob + sex + expiry + personal + composite, nil
}

func (r *MRP) String() string {
	return fmt.Sprintf("MRP{%s, personalNumber=%s}", r.Common.String(), r.PersonalNumber)
}
