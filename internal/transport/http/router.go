// Package httptransport assembles the HTTP surface: middleware chain, module
// handlers, and the operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"access-gate/internal/decision"
	"access-gate/internal/platform/middleware"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/platform/httputil"
)

// Registerer is implemented by module handlers that mount their own routes.
type Registerer interface {
	Register(r chi.Router)
}

// Deps carries everything the router needs. Handlers mount in order.
type Deps struct {
	Logger            *slog.Logger
	Engine            *decision.Engine
	TokenValidator    middleware.TokenValidator
	Handlers          []Registerer
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Health            func() error
}

// NewRouter builds the full middleware chain. Order matters: request identity
// and origin data must be on the context before the engine evaluates, and the
// engine must run before any module handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientInfo)
	r.Use(httprate.LimitByIP(deps.RateLimitRequests, deps.RateLimitWindow))
	r.Use(middleware.LoadIdentity(deps.TokenValidator, deps.Logger))
	r.Use(AccessControl(deps.Engine, deps.Logger))

	r.Get("/health", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/access/decision", handleDecision)

	for _, h := range deps.Handlers {
		h.Register(r)
	}

	return r
}

// handleDecision serves GET /access/decision: the verdict the middleware
// attached to this very request.
func handleDecision(w http.ResponseWriter, r *http.Request) {
	verdict, ok := DecisionFrom(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "access decision is not available"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verdict)
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}
}
