package iptracker

import "context"

// Record is one tracked origin address with its administrative flag and the
// identities observed using it. The identity link set grows monotonically.
type Record struct {
	ID          string   `json:"id"`
	Address     string   `json:"address"`
	Suspicious  bool     `json:"isSuspicious"`
	IdentityIDs []string `json:"users"`
}

// Store is the full surface used by the administrative IP endpoints. The
// decision engine only needs Checker; Redis deployments back the hot path
// with Redis while CRUD stays on the primary store.
type Store interface {
	Checker

	// Upsert creates or updates a record, merging identity links.
	Upsert(ctx context.Context, rec Record) error
	// Remove deletes an address and all its identity links.
	Remove(ctx context.Context, address string) error
	// List returns all tracked addresses ordered by address.
	List(ctx context.Context) ([]Record, error)
	// AddressesFor returns the addresses known for one identity, ordered
	// by address.
	AddressesFor(ctx context.Context, identityID string) ([]Record, error)
}
