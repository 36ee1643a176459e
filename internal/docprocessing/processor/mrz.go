package processor

import (
	"context"
	"time"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/internal/mrz"
	"github.com/medflow/mrz-scanner/pkg/logger"
)

// MRZProcessor reads the Machine Readable Zone text a recognizer produced
// for a frame. Supported layouts are those of ICAO 9303: passports (TD3),
// identity cards (TD1), travel documents (TD2) and both visa layouts.
//
// NOTE: This processor works on recognized text, not on raw images. Turning
// a camera frame into text is the capture client's job.
type MRZProcessor struct {
	gate *Gate
	log  *logger.Logger
	now  func() time.Time
}

// NewMRZProcessor creates a processor. gate may be nil.
func NewMRZProcessor(gate *Gate, log *logger.Logger) *MRZProcessor {
	return &MRZProcessor{gate: gate, log: log, now: time.Now}
}

func (p *MRZProcessor) Name() string {
	return "mrz"
}

// Process cleans the frame text, applies the gate and hands the result to
// the session's cleaner for parsing and acceptance. Errors from the mrz
// package are returned unchanged so callers can classify them.
func (p *MRZProcessor) Process(ctx context.Context, cleaner *mrz.Cleaner, session *domain.ScanSession, frame domain.Frame) (*domain.ExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := p.now()

	cleaned, err := cleaner.Clean(frame.Text)
	if err != nil {
		return nil, err
	}

	at := frame.CapturedAt
	if at.IsZero() {
		at = start
	}
	if err := p.gate.Check(cleaned, frame.FullText, session.StartedAt, at); err != nil {
		return nil, err
	}

	rec, err := cleaner.ParseAndClean(cleaned)
	if err != nil {
		return nil, err
	}

	scanner, err := domain.NewScannerResult(rec, start)
	if err != nil {
		return nil, err
	}

	docType := domain.DocumentTypeFor(rec.Format().Variant)
	if scanner.Repaired {
		p.log.Info().
			Str("session_id", session.ID).
			Str("format", scanner.Format).
			Msg("document number repaired")
	}

	return &domain.ExtractionResult{
		DocumentType:     docType,
		Fields:           extractFields(rec, docType),
		Scanner:          scanner,
		Warnings:         rec.Base().Warnings,
		ProcessingTimeMs: p.now().Sub(start).Milliseconds(),
	}, nil
}

// extractFields lists the populated fields of an accepted record. Only
// check digit protected fields can be verified.
func extractFields(rec mrz.Record, docType domain.DocumentType) []domain.ExtractionField {
	b := rec.Base()
	var fields []domain.ExtractionField
	add := func(key, value string, verified bool) {
		if value == "" {
			return
		}
		fields = append(fields, domain.ExtractionField{Key: key, Value: value, Verified: verified, Source: docType})
	}

	add("document_number", b.DocumentNumber, b.ValidDocumentNumber)
	add("surname", b.Surname, false)
	add("given_names", b.GivenNames, false)
	add("date_of_birth", b.DateOfBirth.ToMrz(), b.ValidDateOfBirth)
	add("sex", string(b.Sex), false)
	add("expiration_date", b.ExpirationDate.ToMrz(), b.ValidExpirationDate)
	add("nationality", b.Nationality, false)
	add("issuing_country", b.IssuingCountry, false)

	switch r := rec.(type) {
	case *mrz.MRP:
		add("personal_number", r.PersonalNumber, r.ValidPersonalNumber)
	case *mrz.TD1:
		add("optional", r.Optional, false)
		add("optional2", r.Optional2, false)
	case *mrz.TD2:
		add("optional", r.Optional, false)
	case *mrz.MRVA:
		add("optional", r.Optional, false)
	case *mrz.MRVB:
		add("optional", r.Optional, false)
	}
	return fields
}
