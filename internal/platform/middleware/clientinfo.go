package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"access-gate/pkg/requestcontext"
)

// ClientInfo extracts the origin address and a normalized user-agent
// description and attaches both to the request context. The IP reputation
// tracker and the audit trail both consume these values.
func ClientInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientIP(r.Context(), clientIP(r))
		ctx = requestcontext.WithUserAgent(ctx, describeUserAgent(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP resolves the origin address, preferring proxy headers over the
// socket peer. The first entry of X-Forwarded-For is the original client.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// describeUserAgent condenses a raw User-Agent header into "browser/version
// (os)" for audit readability. Unknown agents pass through truncated.
func describeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		if len(raw) > 120 {
			raw = raw[:120]
		}
		return raw
	}
	desc := name + "/" + version
	if os := ua.OS(); os != "" {
		desc += " (" + os + ")"
	}
	if ua.Bot() {
		desc += " [bot]"
	}
	return desc
}
