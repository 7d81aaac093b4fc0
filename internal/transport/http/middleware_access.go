package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"access-gate/internal/decision"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/platform/httputil"
	"access-gate/pkg/requestcontext"
)

type decisionKey struct{}

// DecisionFrom returns the verdict the access-control middleware attached to
// the request, or ok=false when the request never passed through it.
func DecisionFrom(ctx context.Context) (decision.Decision, bool) {
	verdict, ok := ctx.Value(decisionKey{}).(decision.Decision)
	return verdict, ok
}

// AccessControl evaluates every request through the decision engine. Allowed
// requests proceed with the verdict attached to the context; refused ones are
// answered here and never reach the next handler.
func AccessControl(engine *decision.Engine, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			verdict, err := engine.Evaluate(ctx, decision.Request{
				Method:    r.Method,
				Path:      r.URL.Path,
				Identity:  requestcontext.IdentityFrom(ctx),
				ClientIP:  requestcontext.ClientIP(ctx),
				UserAgent: requestcontext.UserAgent(ctx),
			})
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			if !verdict.Allowed() {
				httputil.WriteError(w, refusalError(verdict))
				return
			}

			if verdict.Status == decision.StatusSuspicious {
				logger.WarnContext(ctx, "suspicious request allowed",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"reason", verdict.Reason,
				)
			}

			ctx = context.WithValue(ctx, decisionKey{}, verdict)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// refusalError maps a refusal onto the error envelope: missing authentication
// is 401, everything else the engine refuses is 403 with the reason attached.
func refusalError(verdict decision.Decision) error {
	if verdict.Reason == decision.ReasonAuthRequired {
		return dErrors.New(dErrors.CodeUnauthorized, decision.ReasonAuthRequired)
	}
	return dErrors.New(dErrors.CodeForbidden, "access denied").
		WithDetail("reason", verdict.Reason)
}
