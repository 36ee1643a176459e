package database

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/medflow/mrz-scanner/pkg/errors"
)

func TestMapPQError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantNil    bool
		wantStatus int
		wantErr    error
		wantDetail string
	}{
		{
			name:    "not a pq error",
			err:     fmt.Errorf("boom"),
			wantNil: true,
		},
		{
			name:       "duplicate session",
			err:        &pq.Error{Code: "23505", Constraint: "scan_audit_session_id_key"},
			wantStatus: http.StatusConflict,
			wantErr:    apperrors.ErrConflict,
		},
		{
			name:       "wrapped unique violation",
			err:        fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}),
			wantStatus: http.StatusConflict,
			wantErr:    apperrors.ErrConflict,
		},
		{
			name:       "document type check",
			err:        &pq.Error{Code: "23514", Constraint: "scan_audit_document_type_valid"},
			wantStatus: http.StatusBadRequest,
			wantErr:    apperrors.ErrValidation,
			wantDetail: "document_type",
		},
		{
			name:       "unknown check",
			err:        &pq.Error{Code: "23514", Constraint: "other"},
			wantStatus: http.StatusBadRequest,
			wantErr:    apperrors.ErrBadRequest,
		},
		{
			name:       "not null",
			err:        &pq.Error{Code: "23502", Column: "format"},
			wantStatus: http.StatusBadRequest,
			wantErr:    apperrors.ErrValidation,
			wantDetail: "format",
		},
		{
			name:    "unmapped code",
			err:     &pq.Error{Code: "40001"},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPQError(tt.err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.ErrorIs(t, got, tt.wantErr)
			if tt.wantDetail != "" {
				assert.Contains(t, got.Details, tt.wantDetail)
			}
		})
	}
}
