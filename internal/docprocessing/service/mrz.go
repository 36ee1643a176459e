package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/internal/mrz"
	"github.com/medflow/mrz-scanner/pkg/errors"
)

// ParseRequest is a one-shot parse of OCR or MRZ text
type ParseRequest struct {
	Text string `json:"text" validate:"required,max=4096"`
}

// SerializeRequest describes a record to render as MRZ text. Dates are
// YYMMDD. Code defaults to the usual code of the format.
type SerializeRequest struct {
	Format         string `json:"format" validate:"required,oneof=MRP MRTD-TD1 MRTD-TD2 MRV-A MRV-B"`
	Code           string `json:"code" validate:"omitempty,min=1,max=2"`
	IssuingCountry string `json:"issuing_country" validate:"required,max=3"`
	DocumentNumber string `json:"document_number" validate:"required,max=9"`
	Surname        string `json:"surname" validate:"required,max=64"`
	GivenNames     string `json:"given_names" validate:"max=64"`
	DateOfBirth    string `json:"date_of_birth" validate:"required,len=6,numeric"`
	Sex            string `json:"sex" validate:"omitempty,oneof=M F X"`
	ExpirationDate string `json:"expiration_date" validate:"required,len=6,numeric"`
	Nationality    string `json:"nationality" validate:"required,max=3"`
	PersonalNumber string `json:"personal_number" validate:"max=14"`
	Optional       string `json:"optional" validate:"max=16"`
	Optional2      string `json:"optional2" validate:"max=11"`
}

// CheckDigitRequest asks for the check digit of an MRZ field
type CheckDigitRequest struct {
	Value string `json:"value" validate:"required,max=44,mrztext"`
}

// CheckDigitResult is the check digit of Value
type CheckDigitResult struct {
	Value      string `json:"value"`
	CheckDigit int    `json:"check_digit"`
}

// SerializeResult is a rendered record
type SerializeResult struct {
	Format mrz.Format `json:"format"`
	MRZ    string     `json:"mrz"`
	Record mrz.Record `json:"record"`
}

var defaultCodes = map[mrz.Variant]string{
	mrz.VariantPassport: "P",
	mrz.VariantTD1:      "I",
	mrz.VariantTD2:      "I",
	mrz.VariantVisaA:    "V",
	mrz.VariantVisaB:    "V",
}

// fieldWidths are the widths of the variant specific fields. A format
// without an entry has no such field.
var fieldWidths = map[mrz.Variant]map[string]int{
	mrz.VariantPassport: {"personal_number": 14},
	mrz.VariantTD1:      {"optional": 15, "optional2": 11},
	mrz.VariantTD2:      {"optional": 7},
	mrz.VariantVisaA:    {"optional": 16},
	mrz.VariantVisaB:    {"optional": 8},
}

// checkFieldWidths rejects variant specific fields that the format would
// otherwise drop or truncate.
func checkFieldWidths(v mrz.Variant, req SerializeRequest) error {
	fields := map[string]string{
		"personal_number": req.PersonalNumber,
		"optional":        req.Optional,
		"optional2":       req.Optional2,
	}
	details := make(map[string]string)
	for field, value := range fields {
		if value == "" {
			continue
		}
		width, ok := fieldWidths[v][field]
		switch {
		case !ok:
			details[field] = "not used by " + string(v)
		case len(mrz.ToMrz(value, -1)) > width:
			details[field] = fmt.Sprintf("at most %d characters for %s", width, v)
		}
	}
	if len(details) > 0 {
		return errors.BadRequest("fields do not fit format " + string(v)).WithDetails(details)
	}
	return nil
}

// ParseMRZ cleans, parses and accepts text outside of any scan session. A
// record that fails the check digit rule is returned with Accepted unset so
// the caller can see which digits failed.
func (s *Service) ParseMRZ(ctx context.Context, req ParseRequest) (*domain.ParseOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, err := mrz.Clean(req.Text)
	if err != nil {
		return nil, mapMRZError(err)
	}

	rec, err := mrz.NewCleaner(mrz.WithLogger(s.log)).ParseAndClean(cleaned)
	var acceptance *mrz.AcceptanceError
	switch {
	case errors.As(err, &acceptance):
		return &domain.ParseOutcome{
			Format:  acceptance.Record.Format(),
			Cleaned: cleaned,
			Record:  acceptance.Record,
		}, nil
	case err != nil:
		return nil, mapMRZError(err)
	}

	result, err := domain.NewScannerResult(rec, s.now())
	if err != nil {
		return nil, mapMRZError(err)
	}
	return &domain.ParseOutcome{
		Accepted: true,
		Format:   rec.Format(),
		Cleaned:  cleaned,
		Record:   rec,
		Result:   result,
	}, nil
}

// SerializeMRZ renders a record with freshly computed check digits
func (s *Service) SerializeMRZ(ctx context.Context, req SerializeRequest) (*SerializeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, ok := mrz.LookupFormat(mrz.Variant(req.Format))
	if !ok {
		return nil, errors.BadRequest("unknown format: " + req.Format)
	}

	if err := checkFieldWidths(format.Variant, req); err != nil {
		return nil, err
	}

	code := strings.ToUpper(req.Code)
	if code == "" {
		code = defaultCodes[format.Variant]
	}
	if format.IsVisa() != strings.HasPrefix(code, "V") {
		return nil, errors.BadRequest("document code " + code + " does not match format " + req.Format)
	}
	docCode, err := mrz.ParseDocumentCode(code)
	if err != nil {
		return nil, mapMRZError(err)
	}

	dob, err := mrz.ParseDateText(req.DateOfBirth)
	if err != nil {
		return nil, mapMRZError(err)
	}
	expiry, err := mrz.ParseDateText(req.ExpirationDate)
	if err != nil {
		return nil, mapMRZError(err)
	}

	rec := format.NewRecord(mrz.WithLogger(s.log))
	b := rec.Base()
	b.DocumentCode = docCode
	b.Code1 = code[:1]
	b.Code2 = string(mrz.Filler)
	if len(code) > 1 {
		b.Code2 = code[1:2]
	}
	b.IssuingCountry = req.IssuingCountry
	b.DocumentNumber = req.DocumentNumber
	b.SetName(req.Surname, req.GivenNames)
	b.DateOfBirth = dob
	b.ExpirationDate = expiry
	b.Sex = mrz.Sex(req.Sex)
	b.Nationality = req.Nationality

	switch r := rec.(type) {
	case *mrz.MRP:
		r.PersonalNumber = req.PersonalNumber
	case *mrz.TD1:
		r.Optional = req.Optional
		r.Optional2 = req.Optional2
	case *mrz.TD2:
		r.Optional = req.Optional
	case *mrz.MRVA:
		r.Optional = req.Optional
	case *mrz.MRVB:
		r.Optional = req.Optional
	}

	text, err := rec.ToMrz()
	if err != nil {
		return nil, mapMRZError(err)
	}
	return &SerializeResult{Format: format, MRZ: text, Record: rec}, nil
}

// CheckDigit computes the check digit of a single field
func (s *Service) CheckDigit(_ context.Context, req CheckDigitRequest) (*CheckDigitResult, error) {
	d, err := mrz.ComputeCheckDigit(req.Value)
	if err != nil {
		return nil, mapMRZError(err)
	}
	return &CheckDigitResult{Value: req.Value, CheckDigit: d}, nil
}
