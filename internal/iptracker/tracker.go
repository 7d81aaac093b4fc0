// Package iptracker maintains the set of origin addresses previously seen
// for each identity and classifies each request's address as known or novel.
//
// Novelty is a one-shot signal: the first observation of an (identity,
// address) pair both flags it and immediately records the address as known,
// so the same pair is never flagged again.
package iptracker

import "context"

// Result is the outcome of observing one origin address for an identity.
type Result struct {
	// Known is true when the identity has used this address before.
	Known bool
	// Flagged mirrors the address's global suspicious flag, set by
	// administrative action and consumed read-only here.
	Flagged bool
}

// Checker is the hot-path surface the decision engine depends on.
type Checker interface {
	// LinkIfNew atomically records the address as known for the identity,
	// reporting whether the link already existed. Idempotent: concurrent
	// duplicate writes carry identical payloads, so last-write-wins is
	// acceptable.
	LinkIfNew(ctx context.Context, identityID, address string) (alreadyKnown bool, err error)
	// IsFlagged reports the address's global suspicious flag.
	IsFlagged(ctx context.Context, address string) (bool, error)
}

// Tracker implements the check-and-record contract over a Checker.
type Tracker struct {
	store Checker
}

func New(store Checker) *Tracker {
	return &Tracker{store: store}
}

// Observe records the address as known for the identity and reports whether
// it was already known. Recording is an unconditional side effect of the
// check.
func (t *Tracker) Observe(ctx context.Context, identityID, address string) (Result, error) {
	if address == "" {
		// No origin to judge; treat as known so a proxy misconfiguration
		// cannot flood the audit log with suspicion.
		return Result{Known: true}, nil
	}

	known, err := t.store.LinkIfNew(ctx, identityID, address)
	if err != nil {
		return Result{}, err
	}
	flagged, err := t.store.IsFlagged(ctx, address)
	if err != nil {
		return Result{}, err
	}
	return Result{Known: known, Flagged: flagged}, nil
}
