package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medflow/mrz-scanner/pkg/permissions"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name     string
		perms    []string
		required string
		want     bool
	}{
		{"nothing required", nil, "", true},
		{"exact", []string{"documents.scan"}, permissions.DocumentsScan, true},
		{"full access", []string{"*"}, permissions.DocumentsAuditRead, true},
		{"resource wildcard", []string{"documents.*"}, permissions.DocumentsAuditRead, true},
		{"nested wildcard", []string{"documents.audit.*"}, permissions.DocumentsAuditRead, true},
		{"wildcard does not cover sibling", []string{"documents.audit.*"}, permissions.DocumentsScan, false},
		{"prefix is not a wildcard", []string{"documents"}, permissions.DocumentsScan, false},
		{"other resource", []string{"inventory.*"}, permissions.DocumentsScan, false},
		{"no permissions", nil, permissions.DocumentsScan, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, permissions.HasPermission(tt.perms, tt.required))
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	perms := []string{"documents.scan"}
	assert.True(t, permissions.HasAnyPermission(perms, []string{permissions.DocumentsAuditRead, permissions.DocumentsScan}))
	assert.False(t, permissions.HasAnyPermission(perms, []string{permissions.DocumentsAuditRead}))
	assert.False(t, permissions.HasAnyPermission(perms, nil))
}
