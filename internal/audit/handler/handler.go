package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"access-gate/internal/audit"
	"access-gate/pkg/platform/httputil"
	"access-gate/pkg/requestcontext"
)

// Service defines the interface for audit trail queries.
type Service interface {
	Query(ctx context.Context, filter audit.Filter, limit, offset int) (audit.QueryResult, error)
}

// Handler wires audit endpoints to the audit service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/access/attempts", h.HandleList)
}

// HandleList handles GET /access/attempts requests. Unknown query values are
// treated as absent rather than rejected.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := audit.Filter{
		IdentityID:       q.Get("userId"),
		Status:           audit.Status(q.Get("status")),
		IPAddress:        q.Get("ip"),
		ResourceContains: q.Get("resource"),
	}
	limit := atoiOr(q.Get("limit"), 0)
	offset := atoiOr(q.Get("offset"), 0)

	result, err := h.service.Query(ctx, filter, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
