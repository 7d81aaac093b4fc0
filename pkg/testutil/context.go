package testutil

import (
	"net/http"
	"time"

	"access-gate/pkg/requestcontext"
)

// WithIdentity attaches an authenticated identity to the request context,
// simulating what the session middleware does for a valid bearer token.
func WithIdentity(req *http.Request, identity *requestcontext.Identity) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), identity)
	return req.WithContext(ctx)
}

// WithPinnedTime pins the request clock so assertions on timestamps are
// deterministic.
func WithPinnedTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}
