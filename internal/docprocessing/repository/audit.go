package repository

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/pkg/database"
)

// Schema creates the audit table. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS document_processing_audit (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		document_type VARCHAR(32) NOT NULL DEFAULT '',
		format VARCHAR(16) NOT NULL DEFAULT '',
		outcome VARCHAR(16) NOT NULL,
		document_fingerprint VARCHAR(64) NOT NULL DEFAULT '',
		consent_timestamp TIMESTAMPTZ NOT NULL,
		consent_given_by VARCHAR(255) NOT NULL DEFAULT '',
		fields_extracted TEXT[] NOT NULL DEFAULT '{}',
		frames_analyzed INTEGER NOT NULL DEFAULT 0,
		repaired BOOLEAN NOT NULL DEFAULT FALSE,
		processing_duration_ms BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT document_processing_audit_session_id_key UNIQUE (session_id),
		CONSTRAINT document_processing_audit_document_type_valid CHECK (
			document_type IN ('', 'passport', 'id_card', 'travel_document', 'visa_a', 'visa_b')),
		CONSTRAINT document_processing_audit_outcome_valid CHECK (
			outcome IN ('accepted', 'failed', 'expired'))
	)`,
	`CREATE INDEX IF NOT EXISTS document_processing_audit_created_at_idx
		ON document_processing_audit (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS document_processing_audit_fingerprint_idx
		ON document_processing_audit (document_fingerprint)`,
}

// AuditRepository handles scan audit persistence
type AuditRepository struct {
	db  *database.DB
	key []byte
}

// NewAuditRepository creates a new audit repository. fingerprintKey keys the
// BLAKE2b fingerprint and must be at most 64 bytes.
func NewAuditRepository(db *database.DB, fingerprintKey string) (*AuditRepository, error) {
	if len(fingerprintKey) > blake2b.Size {
		return nil, fmt.Errorf("fingerprint key longer than %d bytes", blake2b.Size)
	}
	return &AuditRepository{db: db, key: []byte(fingerprintKey)}, nil
}

// Fingerprint returns the keyed hash of a document number. The same document
// maps to the same fingerprint, so repeated scans can be correlated without
// storing the number.
func (r *AuditRepository) Fingerprint(documentNumber string) string {
	h, err := blake2b.New256(r.key)
	if err != nil {
		// key length is checked in NewAuditRepository
		panic(err)
	}
	h.Write([]byte(documentNumber))
	return hex.EncodeToString(h.Sum(nil))
}

// Create inserts an audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *domain.ProcessingAuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.FieldsExtracted == nil {
		entry.FieldsExtracted = []string{}
	}

	query := `
		INSERT INTO document_processing_audit (id, session_id, document_type, format, outcome,
		                                       document_fingerprint, consent_timestamp, consent_given_by,
		                                       fields_extracted, frames_analyzed, repaired, processing_duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		entry.ID,
		entry.SessionID,
		entry.DocumentType,
		entry.Format,
		entry.Outcome,
		entry.DocumentFingerprint,
		entry.ConsentTimestamp,
		entry.ConsentGivenBy,
		entry.FieldsExtracted,
		entry.FramesAnalyzed,
		entry.Repaired,
		entry.ProcessingDurationMs,
	).Scan(&entry.CreatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// List returns audit entries, newest first, with the total count
func (r *AuditRepository) List(ctx context.Context, page, perPage int) ([]domain.ProcessingAuditEntry, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM document_processing_audit`); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := `
		SELECT id, session_id, document_type, format, outcome, document_fingerprint,
		       consent_timestamp, consent_given_by, fields_extracted, frames_analyzed,
		       repaired, processing_duration_ms, created_at
		FROM document_processing_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	entries := []domain.ProcessingAuditEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, perPage, (page-1)*perPage); err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, total, nil
}
