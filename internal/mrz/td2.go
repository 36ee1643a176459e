package mrz

import "fmt"

// TD2 is a two row travel document (2x36).
type TD2 struct {
	Common
	Optional string `json:"optional"`
}

func (r *TD2) FromMrz(text string) error {
	x, err := r.extract(text)
	if err != nil {
		return err
	}
	if err := r.readName(x, rng(5, 36, 0)); err != nil {
		return err
	}
	if err := r.readDataRow(x, FieldDocumentNumber); err != nil {
		return err
	}
	if r.Optional, err = x.ParseString(rng(28, 35, 1)); err != nil {
		return err
	}
	r.ValidComposite = x.CheckDigitValue(35, 1, x.RawValue(rng(0, 10, 1), rng(13, 20, 1), rng(21, 35, 1)), "mrz")
	r.finish(x)
	return nil
}

func (r *TD2) ToMrz() (string, error) {
	name, err := NameToMrz(r.Surname, r.GivenNames, 31)
	if err != nil {
		return "", err
	}
	doc, nationality, dob, sex, expiry, err := r.dataRow()
	if err != nil {
		return "", err
	}
	optional := ToMrz(r.Optional, 7)
	composite, err := CheckDigitChar(doc + dob + expiry + optional)
	if err != nil {
		return "", err
	}
	return r.header() + name + "\n" +
		doc + nationality + dob + sex + expiry + optional + composite, nil
}

func (r *TD2) String() string {
	return fmt.Sprintf("MRTD-TD2{%s, optional=%s}", r.Common.String(), r.Optional)
}
