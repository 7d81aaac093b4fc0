// Package decision is the access-control state machine. It evaluates one
// request against an ordered rule chain and emits exactly one verdict and
// exactly one audit record per evaluation.
package decision

import "access-gate/pkg/requestcontext"

// Status is the terminal verdict of one evaluation.
type Status string

const (
	StatusAuthorized Status = "AUTHORIZED"
	StatusRefused    Status = "REFUSED"
	// StatusSuspicious allows the request to proceed. It is a soft signal
	// recorded for review, never a block.
	StatusSuspicious Status = "SUSPICIOUS"
)

// Reason strings are stable: they are persisted in audit records and
// surfaced to clients in error details.
const (
	ReasonPublicPath    = "public path"
	ReasonAuthRequired  = "authentication required"
	ReasonAdministrator = "administrator"
	ReasonNewOrigin     = "new origin address"
	ReasonFlaggedOrigin = "flagged origin address"
	ReasonGranted       = "access granted"
)

// MissingPermissionReason names the permission the identity lacks.
func MissingPermissionReason(permission string) string {
	return "permission required: " + permission
}

// MissingRoleReason names the role the identity lacks.
func MissingRoleReason(role string) string {
	return "role required: " + role
}

// Request is one evaluation input. Identity is nil for unauthenticated
// requests.
type Request struct {
	Method   string
	Path     string
	Identity *requestcontext.Identity
	ClientIP string
	// UserAgent is carried into the audit record only; it never
	// influences the verdict.
	UserAgent string
	// RequiredRole is an optional call-site role requirement, evaluated
	// before the path's permission requirement.
	RequiredRole string
}

// Decision is the verdict produced for one request.
type Decision struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Status != StatusRefused
}
