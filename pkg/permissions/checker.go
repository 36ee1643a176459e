// Package permissions checks the permission strings carried in access tokens
// against the permission an endpoint requires.
//
// Permission Format:
//   - "*" - Full access (all permissions)
//   - "resource.*" - All actions on a resource (e.g., "documents.*")
//   - "resource.action" - Specific action (e.g., "documents.scan")
//   - "resource.subresource.action" - Nested permission (e.g., "documents.audit.read")
package permissions

import (
	"strings"
)

// Permissions used by the scanner service
const (
	DocumentsScan      = "documents.scan"
	DocumentsAuditRead = "documents.audit.read"
)

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "documents.*" matches "documents.scan", "documents.audit.read", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range userPerms {
		if p == "*" || p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}
