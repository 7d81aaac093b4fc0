// Package httputil centralizes JSON encoding, request decoding, and domain
// error translation so handlers stay thin.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/requestcontext"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorBody is the JSON error envelope returned by every endpoint.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON encodes v with the given status. Encoding failures are swallowed
// because the header is already committed.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates err into the JSON error envelope. Non-domain errors
// fail closed as 500 internal without leaking the underlying message.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{
			Code:    string(dErrors.CodeInternal),
			Message: "internal error",
		})
		return
	}
	WriteJSON(w, dErrors.ToHTTPStatus(de.Code), ErrorBody{
		Code:    string(de.Code),
		Message: de.Message,
		Details: de.Details,
	})
}

// DecodeAndPrepare decodes the JSON body into T and runs struct validation.
// On failure it writes a 400 response and returns ok=false; handlers should
// simply return.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := validate.Struct(&req); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request validation failed"))
		return nil, false
	}
	return &req, true
}
