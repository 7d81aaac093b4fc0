// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets domain code consume identity and origin data without
// pulling in transport concerns, and makes services trivially testable by
// injecting values with the With* helpers.
package requestcontext

import (
	"context"
	"time"
)

// Identity is the authenticated caller as produced by the session layer.
// A nil *Identity on the context means the request is unauthenticated.
type Identity struct {
	ID       string
	Username string
	Roles    []string
}

// HasRole reports whether the identity holds the named role.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type (
	identityKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// WithIdentity attaches the authenticated identity to the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the authenticated identity, or nil when the request
// is unauthenticated.
func IdentityFrom(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

// WithClientIP attaches the request origin address to the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the request origin address, or "" if not set.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// WithUserAgent attaches the parsed user agent description to the context.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, ua)
}

// UserAgent returns the user agent description, or "" if not set.
func UserAgent(ctx context.Context) string {
	ua, _ := ctx.Value(userAgentKey{}).(string)
	return ua
}

// WithRequestID attaches the correlation ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID, or "" if not set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTime pins the request time, letting tests control clocks.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the pinned request time, falling back to the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
