package domain

import (
	"time"

	"github.com/lib/pq"

	"github.com/medflow/mrz-scanner/internal/mrz"
)

// DocumentType is the kind of document a scan produced, derived from the
// detected MRZ layout
type DocumentType string

const (
	DocumentTypePassport       DocumentType = "passport"
	DocumentTypeIDCard         DocumentType = "id_card"
	DocumentTypeTravelDocument DocumentType = "travel_document"
	DocumentTypeVisaA          DocumentType = "visa_a"
	DocumentTypeVisaB          DocumentType = "visa_b"
)

// DocumentTypeFor maps an MRZ layout to its document type
func DocumentTypeFor(v mrz.Variant) DocumentType {
	switch v {
	case mrz.VariantTD1:
		return DocumentTypeIDCard
	case mrz.VariantTD2:
		return DocumentTypeTravelDocument
	case mrz.VariantVisaA:
		return DocumentTypeVisaA
	case mrz.VariantVisaB:
		return DocumentTypeVisaB
	default:
		return DocumentTypePassport
	}
}

// SessionStatus represents the state of a scan session
type SessionStatus string

const (
	StatusScanning  SessionStatus = "scanning"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
	StatusExpired   SessionStatus = "expired"
)

// Terminal reports whether the session no longer accepts frames
func (s SessionStatus) Terminal() bool {
	return s != StatusScanning
}

// ScanSession tracks one document capture from the first frame until a
// record is accepted, the document is rejected or the time budget runs out.
type ScanSession struct {
	ID               string         `json:"id"`
	UserID           string         `json:"user_id,omitempty"`
	Status           SessionStatus  `json:"status"`
	StartedAt        time.Time      `json:"started_at"`
	ConsentTimestamp time.Time      `json:"consent_timestamp"`
	FinishedAt       *time.Time     `json:"finished_at,omitempty"`
	Frames           int            `json:"frames"`
	Result           *ScannerResult `json:"result,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// Frame is the recognizer output for one camera frame. Text holds the MRZ
// candidate lines, FullText everything recognised on the frame.
type Frame struct {
	Text       string
	FullText   string
	CapturedAt time.Time
}

// ScannerResult is the payload handed to the capture front-end once a record
// is accepted. Dates are d/m/yyyy, Sex is Male, Female or Unspecified, and MRZ
// is the record re-serialized with fresh check digits.
type ScannerResult struct {
	Code           string   `json:"code"`
	Code1          string   `json:"code1"`
	Code2          string   `json:"code2"`
	DateOfBirth    string   `json:"dateOfBirth"`
	DocumentNumber string   `json:"documentNumber"`
	ExpirationDate string   `json:"expirationDate"`
	Format         string   `json:"format"`
	GivenNames     string   `json:"givenNames"`
	IssuingCountry string   `json:"issuingCountry"`
	Nationality    string   `json:"nationality"`
	Sex            string   `json:"sex"`
	Surname        string   `json:"surname"`
	MRZ            string   `json:"mrz"`
	ValidComposite bool     `json:"validComposite"`
	Repaired       bool     `json:"repaired,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

// NewScannerResult renders an accepted record relative to now
func NewScannerResult(rec mrz.Record, now time.Time) (*ScannerResult, error) {
	text, err := rec.ToMrz()
	if err != nil {
		return nil, err
	}
	b := rec.Base()
	return &ScannerResult{
		Code:           string(b.DocumentCode),
		Code1:          b.Code1,
		Code2:          b.Code2,
		DateOfBirth:    b.DateOfBirth.Normal(now),
		DocumentNumber: b.DocumentNumber,
		ExpirationDate: b.ExpirationDate.Normal(now),
		Format:         string(rec.Format().Variant),
		GivenNames:     b.GivenNames,
		IssuingCountry: b.IssuingCountry,
		Nationality:    b.Nationality,
		Sex:            b.Sex.Label(),
		Surname:        b.Surname,
		MRZ:            text,
		ValidComposite: b.ValidComposite,
		Repaired:       b.Repaired,
		Warnings:       b.Warnings,
	}, nil
}

// FrameOutcome is returned for every submitted frame
type FrameOutcome struct {
	SessionID string         `json:"session_id"`
	Status    SessionStatus  `json:"status"`
	Frames    int            `json:"frames"`
	Accepted  bool           `json:"accepted"`
	Retry     bool           `json:"retry"`
	Reason    string         `json:"reason,omitempty"`
	Result    *ScannerResult `json:"result,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ExtractionField represents a single extracted field. Verified is set when
// the field's own check digit holds.
type ExtractionField struct {
	Key      string       `json:"key"`
	Value    string       `json:"value"`
	Verified bool         `json:"verified"`
	Source   DocumentType `json:"source"`
}

// ExtractionResult represents the result from processing a single frame
type ExtractionResult struct {
	DocumentType     DocumentType      `json:"document_type"`
	Fields           []ExtractionField `json:"fields"`
	Scanner          *ScannerResult    `json:"scanner_result"`
	Warnings         []string          `json:"warnings,omitempty"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
}

// FieldKeys lists the keys of the extracted fields
func (r *ExtractionResult) FieldKeys() []string {
	keys := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		keys[i] = f.Key
	}
	return keys
}

// ParseOutcome is the result of a one-shot parse. Record carries the
// per-field validity flags whether or not the record was accepted.
type ParseOutcome struct {
	Accepted bool           `json:"accepted"`
	Format   mrz.Format     `json:"format"`
	Cleaned  string         `json:"cleaned"`
	Record   mrz.Record     `json:"record"`
	Result   *ScannerResult `json:"result,omitempty"`
}

// AuditOutcome is the final state recorded for a scan session
type AuditOutcome string

const (
	AuditAccepted AuditOutcome = "accepted"
	AuditFailed   AuditOutcome = "failed"
	AuditExpired  AuditOutcome = "expired"
)

// ProcessingAuditEntry records a scan session for DSGVO compliance. It holds
// a keyed fingerprint of the document number, never the number itself.
type ProcessingAuditEntry struct {
	ID                   string         `db:"id" json:"id"`
	SessionID            string         `db:"session_id" json:"session_id"`
	DocumentType         string         `db:"document_type" json:"document_type"`
	Format               string         `db:"format" json:"format"`
	Outcome              AuditOutcome   `db:"outcome" json:"outcome"`
	DocumentFingerprint  string         `db:"document_fingerprint" json:"document_fingerprint,omitempty"`
	ConsentTimestamp     time.Time      `db:"consent_timestamp" json:"consent_timestamp"`
	ConsentGivenBy       string         `db:"consent_given_by" json:"consent_given_by"`
	FieldsExtracted      pq.StringArray `db:"fields_extracted" json:"fields_extracted"`
	FramesAnalyzed       int            `db:"frames_analyzed" json:"frames_analyzed"`
	Repaired             bool           `db:"repaired" json:"repaired"`
	ProcessingDurationMs int64          `db:"processing_duration_ms" json:"processing_duration_ms"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
}
