package stats

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"access-gate/pkg/platform/httputil"
	"access-gate/pkg/requestcontext"
)

// Handler serves the stats endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the stats endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats/summary", h.HandleSummary)
	r.Get("/stats/activity", h.HandleActivity)
}

// HandleSummary handles GET /stats/summary requests.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "summary gather failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// HandleActivity handles GET /stats/activity requests.
func (h *Handler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activity, err := h.service.RecentActivity(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "activity query failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, activity)
}
