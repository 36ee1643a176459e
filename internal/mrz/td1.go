package mrz

import "fmt"

// TD1 is a three row identity card (3x30).
type TD1 struct {
	Common
	// Optional follows the document number on row 0; Optional2 sits at the
	// end of row 1.
	Optional  string `json:"optional"`
	Optional2 string `json:"optional2"`
}

func (r *TD1) FromMrz(text string) error {
	x, err := r.extract(text)
	if err != nil {
		return err
	}

	doc := rng(5, 14, 0)
	r.ValidDocumentNumber = x.CheckDigit(14, 0, doc, FieldDocumentNumber)
	if r.DocumentNumber, err = x.ParseString(doc); err != nil {
		return err
	}
	if r.Optional, err = x.ParseString(rng(15, 30, 0)); err != nil {
		return err
	}
	if r.DateOfBirth, r.ValidDateOfBirth, err = readDate(x, rng(0, 6, 1), "date of birth"); err != nil {
		return err
	}
	if r.Sex, err = x.ParseSex(7, 1); err != nil {
		return err
	}
	if r.ExpirationDate, r.ValidExpirationDate, err = readDate(x, rng(8, 14, 1), "expiration date"); err != nil {
		return err
	}
	if r.Nationality, err = x.ParseString(rng(15, 18, 1)); err != nil {
		return err
	}
	if r.Optional2, err = x.ParseString(rng(18, 29, 1)); err != nil {
		return err
	}
	r.ValidComposite = x.CheckDigitValue(29, 1, x.RawValue(rng(5, 30, 0), rng(0, 7, 1), rng(8, 15, 1), rng(18, 29, 1)), "mrz")
	if err := r.readName(x, rng(0, 30, 2)); err != nil {
		return err
	}
	r.finish(x)
	return nil
}

func (r *TD1) ToMrz() (string, error) {
	doc, err := withCheckDigit(ToMrz(r.DocumentNumber, 9))
	if err != nil {
		return "", err
	}
	doc += ToMrz(r.Optional, 15)
	dob, err := withCheckDigit(r.DateOfBirth.ToMrz())
	if err != nil {
		return "", err
	}
	expiry, err := withCheckDigit(r.ExpirationDate.ToMrz())
	if err != nil {
		return "", err
	}
	optional2 := ToMrz(r.Optional2, 11)
	composite, err := CheckDigitChar(doc + dob + expiry + optional2)
	if err != nil {
		return "", err
	}
	name, err := NameToMrz(r.Surname, r.GivenNames, 30)
	if err != nil {
		return "", err
	}
	return r.header() + doc + "\n" +
		dob + r.Sex.ToMrz() + expiry + ToMrz(r.Nationality, 3) + optional2 + composite + "\n" +
		name, nil
}

func (r *TD1) String() string {
	return fmt.Sprintf("MRTD-TD1{%s, optional=%s, optional2=%s}", r.Common.String(), r.Optional, r.Optional2)
}
