package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"access-gate/pkg/platform/httputil"
	"access-gate/pkg/requestcontext"
)

// PermissionProber answers explicit permission probes for an identity.
type PermissionProber interface {
	HasPermission(ctx context.Context, identity *requestcontext.Identity, permission string) (bool, error)
}

// CacheClearer invalidates memoized permission checks on logout.
type CacheClearer interface {
	Clear()
}

// Handler serves the session endpoints.
type Handler struct {
	prober PermissionProber
	cache  CacheClearer
	logger *slog.Logger
}

func NewHandler(prober PermissionProber, cache CacheClearer, logger *slog.Logger) *Handler {
	return &Handler{
		prober: prober,
		cache:  cache,
		logger: logger,
	}
}

// Register mounts session endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/check-permission", h.HandleCheckPermission)
	r.Post("/auth/logout", h.HandleLogout)
}

// CheckPermissionRequest is the body of POST /auth/check-permission.
type CheckPermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
}

// CheckPermissionResponse reports the probe result at a point in time.
type CheckPermissionResponse struct {
	HasPermission bool      `json:"hasPermission"`
	Timestamp     time.Time `json:"timestamp"`
}

// HandleCheckPermission handles POST /auth/check-permission requests.
func (h *Handler) HandleCheckPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[CheckPermissionRequest](w, r, h.logger)
	if !ok {
		return
	}

	granted, err := h.prober.HasPermission(ctx, requestcontext.IdentityFrom(ctx), req.Permission)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, CheckPermissionResponse{
		HasPermission: granted,
		Timestamp:     requestcontext.Now(ctx),
	})
}

// HandleLogout handles POST /auth/logout requests. The permission cache is
// cleared so revoked grants stop applying immediately rather than at TTL
// expiry.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.cache.Clear()
	if identity := requestcontext.IdentityFrom(ctx); identity != nil {
		h.logger.InfoContext(ctx, "session closed",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", identity.ID,
		)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}
