package decision

import (
	"context"

	"access-gate/internal/audit"
	"access-gate/internal/iptracker"
	"access-gate/internal/pathclass"
	"access-gate/internal/permcache"
)

// Classifier maps a request path to its public/protected classification.
type Classifier interface {
	Classify(method, path string) pathclass.Classification
}

// PolicyReader answers permission-graph queries. Read-only by contract.
type PolicyReader interface {
	RoleGrants(ctx context.Context, roleNames []string, permission string) (bool, error)
}

// PermissionCache memoizes permission-check results per identity.
type PermissionCache interface {
	Get(key permcache.Key) (granted, ok bool)
	Put(key permcache.Key, granted bool)
}

// OriginObserver classifies the request origin address for an identity,
// recording it as known as a side effect of the check.
type OriginObserver interface {
	Observe(ctx context.Context, identityID, address string) (iptracker.Result, error)
}

// Recorder appends one attempt to the audit trail.
type Recorder interface {
	Record(ctx context.Context, attempt audit.Attempt) error
}
