package audit

import (
	"context"
	"time"
)

// Store persists access attempts. Implementations must make Append atomic:
// a half-written record is a correctness bug. Appends for different requests
// are independent and need no mutual ordering.
type Store interface {
	Append(ctx context.Context, attempt Attempt) error
	// Query returns one window of the filtered trail in descending
	// timestamp order. limit and offset are assumed pre-clamped by the
	// service.
	Query(ctx context.Context, filter Filter, limit, offset int) (Page, error)
	// CountSince counts attempts with the given status (or all statuses
	// when empty) observed at or after since (or ever, when zero).
	CountSince(ctx context.Context, status Status, since time.Time) (int, error)
}
