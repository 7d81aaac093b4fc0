// Package policy is the read-only query surface over the permission graph.
//
// The graph is User -> Role -> Permission -> Resource. Traversals are indexed
// lookups over join collections, never live pointers, so stores can back the
// same queries with maps or SQL join tables.
package policy

import (
	"context"
	"regexp"

	dErrors "access-gate/pkg/domain-errors"
)

// AdminRole grants total bypass in the decision engine. It is a role, not a
// permission: it never appears in the permission catalog.
const AdminRole = "ADMIN"

// permissionNamePattern is the closed grammar for permission names. Malformed
// names are rejected at creation, never coerced.
var permissionNamePattern = regexp.MustCompile(`^(READ|WRITE|DELETE|EDIT)_[A-Z_]+$`)

// Store answers permission-graph queries. Implementations must be read-only:
// all mutation goes through the directory service.
type Store interface {
	// RoleGrants reports whether at least one of the named roles has an
	// edge to a permission with the given name.
	RoleGrants(ctx context.Context, roleNames []string, permission string) (bool, error)
}

// IsAdmin reports whether the role set includes the hard-coded bypass role.
func IsAdmin(roleNames []string) bool {
	for _, name := range roleNames {
		if name == AdminRole {
			return true
		}
	}
	return false
}

// ValidatePermissionName enforces the ACTION_RESOURCE grammar
// (ACTION one of READ, WRITE, DELETE, EDIT).
func ValidatePermissionName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "permission name is required")
	}
	if !permissionNamePattern.MatchString(name) {
		return dErrors.Newf(dErrors.CodeBadRequest,
			"invalid permission name %q: expected ACTION_RESOURCE (e.g. READ_DASHBOARD)", name)
	}
	return nil
}
