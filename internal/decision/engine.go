package decision

import (
	"context"
	"log/slog"
	"time"

	"access-gate/internal/audit"
	"access-gate/internal/decision/metrics"
	"access-gate/internal/permcache"
	"access-gate/internal/policy"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/requestcontext"
)

// Engine applies the rule chain. It is stateless beyond the shared permission
// cache and safe for concurrent use.
//
// An infrastructure failure during evaluation is returned as a system error,
// never as a refusal: a store outage must stay distinguishable from a policy
// denial. Failed evaluations are reported through the logger, not the audit
// trail, so a trail outage cannot recurse.
type Engine struct {
	classifier   Classifier
	policy       PolicyReader
	cache        PermissionCache
	origins      OriginObserver
	recorder     Recorder
	logger       *slog.Logger
	metrics      *metrics.Metrics
	storeTimeout time.Duration
}

// NewEngine constructs the engine with its dependencies. metrics may be nil.
func NewEngine(
	classifier Classifier,
	policyReader PolicyReader,
	cache PermissionCache,
	origins OriginObserver,
	recorder Recorder,
	logger *slog.Logger,
	m *metrics.Metrics,
	storeTimeout time.Duration,
) *Engine {
	return &Engine{
		classifier:   classifier,
		policy:       policyReader,
		cache:        cache,
		origins:      origins,
		recorder:     recorder,
		logger:       logger.With(slog.String("component", "decision")),
		metrics:      m,
		storeTimeout: storeTimeout,
	}
}

// Evaluate runs the rule chain for one request. Every returned Decision has
// been appended to the audit trail; a nil error therefore guarantees exactly
// one trail record for this evaluation.
func (e *Engine) Evaluate(ctx context.Context, req Request) (Decision, error) {
	start := time.Now()

	verdict, err := e.applyRules(ctx, req)
	if err != nil {
		e.metrics.IncrementError()
		e.logger.ErrorContext(ctx, "evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"path", req.Path,
			"error", err,
		)
		return Decision{}, err
	}

	if err := e.recorder.Record(ctx, e.buildAttempt(req, verdict)); err != nil {
		e.metrics.IncrementError()
		return Decision{}, err
	}

	e.metrics.IncrementOutcome(string(verdict.Status))
	e.metrics.ObserveEvaluateLatency(time.Since(start))
	return verdict, nil
}

// HasPermission answers an explicit permission probe for an authenticated
// identity, through the same cache the rule chain uses. Administrators hold
// every permission.
func (e *Engine) HasPermission(ctx context.Context, identity *requestcontext.Identity, permission string) (bool, error) {
	if identity == nil {
		return false, dErrors.New(dErrors.CodeUnauthorized, ReasonAuthRequired)
	}
	if err := policy.ValidatePermissionName(permission); err != nil {
		return false, err
	}
	if policy.IsAdmin(identity.Roles) {
		return true, nil
	}
	return e.checkPermission(ctx, identity, permission)
}

// applyRules evaluates the chain in strict order; the first matching rule is
// terminal.
func (e *Engine) applyRules(ctx context.Context, req Request) (Decision, error) {
	// Rule 1: public paths are authorized without touching the policy store.
	cls := e.classifier.Classify(req.Method, req.Path)
	if cls.IsPublic {
		return Decision{Status: StatusAuthorized, Reason: ReasonPublicPath}, nil
	}

	// Rule 2: no identity on a protected path.
	if req.Identity == nil {
		return Decision{Status: StatusRefused, Reason: ReasonAuthRequired}, nil
	}

	// Rule 3: administrator bypass, including the origin check.
	if policy.IsAdmin(req.Identity.Roles) {
		return Decision{Status: StatusAuthorized, Reason: ReasonAdministrator}, nil
	}

	// Rule 4: call-site role requirement.
	if req.RequiredRole != "" && !req.Identity.HasRole(req.RequiredRole) {
		return Decision{Status: StatusRefused, Reason: MissingRoleReason(req.RequiredRole)}, nil
	}

	// Rule 5: path permission requirement, cache first.
	if cls.RequiredPermission != "" {
		granted, err := e.checkPermission(ctx, req.Identity, cls.RequiredPermission)
		if err != nil {
			return Decision{}, err
		}
		if !granted {
			return Decision{Status: StatusRefused, Reason: MissingPermissionReason(cls.RequiredPermission)}, nil
		}
	}

	// Rule 6: origin novelty and the administrative flag. Both allow the
	// request to proceed.
	storeCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	origin, err := e.origins.Observe(storeCtx, req.Identity.ID, req.ClientIP)
	if err != nil {
		return Decision{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "origin check failed")
	}
	if !origin.Known {
		return Decision{Status: StatusSuspicious, Reason: ReasonNewOrigin}, nil
	}
	if origin.Flagged {
		return Decision{Status: StatusSuspicious, Reason: ReasonFlaggedOrigin}, nil
	}

	// Rule 7: nothing denied.
	return Decision{Status: StatusAuthorized, Reason: ReasonGranted}, nil
}

func (e *Engine) checkPermission(ctx context.Context, identity *requestcontext.Identity, permission string) (bool, error) {
	key := permcache.Key{IdentityID: identity.ID, Permission: permission}
	if granted, ok := e.cache.Get(key); ok {
		e.metrics.IncrementCacheLookup("hit")
		return granted, nil
	}
	e.metrics.IncrementCacheLookup("miss")

	storeCtx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	granted, err := e.policy.RoleGrants(storeCtx, identity.Roles, permission)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "permission lookup failed")
	}
	e.cache.Put(key, granted)
	return granted, nil
}

func (e *Engine) buildAttempt(req Request, verdict Decision) audit.Attempt {
	attempt := audit.Attempt{
		ResourcePath: req.Path,
		IPAddress:    req.ClientIP,
		UserAgent:    req.UserAgent,
		Status:       audit.Status(verdict.Status),
		Reason:       verdict.Reason,
	}
	if req.Identity != nil {
		attempt.IdentityID = req.Identity.ID
		attempt.Username = req.Identity.Username
	}
	return attempt
}
