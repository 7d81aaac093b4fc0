package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"access-gate/internal/audit"
	"access-gate/internal/decision"
	"access-gate/internal/iptracker"
	"access-gate/internal/pathclass"
	"access-gate/internal/permcache"
	"access-gate/internal/session"
	"access-gate/pkg/platform/httputil"
	"access-gate/pkg/requestcontext"
)

// grantTable is a policy reader backed by a role->permissions map.
type grantTable struct {
	grants map[string][]string
	err    error
}

func (g grantTable) RoleGrants(_ context.Context, roleNames []string, permission string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	for _, role := range roleNames {
		for _, granted := range g.grants[role] {
			if granted == permission {
				return true, nil
			}
		}
	}
	return false, nil
}

// echoHandler mounts a protected route that reports the verdict attached to
// the request context.
type echoHandler struct{}

func (echoHandler) Register(r chi.Router) {
	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
		verdict, ok := DecisionFrom(r.Context())
		if !ok {
			http.Error(w, "no verdict", http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, verdict)
	})
}

type RouterSuite struct {
	suite.Suite
	policy     *grantTable
	trailStore *audit.InMemoryStore
	ipStore    *iptracker.InMemoryStore
	tokens     *session.TokenService
	router     http.Handler
	ctx        context.Context
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.policy = &grantTable{grants: map[string][]string{
		"ANALYST": {"READ_DASHBOARD"},
	}}
	s.trailStore = audit.NewInMemoryStore()
	s.ipStore = iptracker.NewInMemoryStore()
	s.tokens = session.NewTokenService("test-signing-key", "access-gate-test")
	s.ctx = context.Background()

	engine := decision.NewEngine(
		pathclass.MustNew(pathclass.DefaultPermissionTable()),
		s.policy,
		permcache.New(64, time.Minute),
		iptracker.New(s.ipStore),
		audit.NewService(s.trailStore, logger, 2*time.Second),
		logger,
		nil,
		2*time.Second,
	)

	s.router = NewRouter(Deps{
		Logger:            logger,
		Engine:            engine,
		TokenValidator:    s.tokens,
		Handlers:          []Registerer{echoHandler{}},
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
	})
}

func (s *RouterSuite) bearerFor(identity requestcontext.Identity) string {
	token, err := s.tokens.GenerateAccessToken(identity, time.Hour)
	s.Require().NoError(err)
	return "Bearer " + token
}

// markKnown pre-links the httptest origin so the novelty rule does not fire.
func (s *RouterSuite) markKnown(identityID string) {
	_, err := s.ipStore.LinkIfNew(s.ctx, identityID, "192.0.2.1")
	s.Require().NoError(err)
}

func (s *RouterSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RouterSuite) decodeError(rec *httptest.ResponseRecorder) httputil.ErrorBody {
	var body httputil.ErrorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *RouterSuite) TestHealthIsPublic() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok"}`, rec.Body.String())
}

func (s *RouterSuite) TestHealthDegraded() {
	deps := Deps{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		Health:            func() error { return errors.New("postgres unreachable") },
	}
	rec := httptest.NewRecorder()
	handleHealth(deps.Health)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"status":"degraded","error":"postgres unreachable"}`, rec.Body.String())
}

func (s *RouterSuite) TestUnauthenticatedProtectedPath() {
	rec := s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	s.Equal(http.StatusUnauthorized, rec.Code)
	body := s.decodeError(rec)
	s.Equal("unauthorized", body.Code)
	s.Equal("authentication required", body.Message)
}

func (s *RouterSuite) TestRefusalIncludesReason() {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", s.bearerFor(requestcontext.Identity{
		ID: "user-1", Username: "casey", Roles: []string{"VIEWER"},
	}))
	rec := s.do(req)

	s.Equal(http.StatusForbidden, rec.Code)
	body := s.decodeError(rec)
	s.Equal("forbidden", body.Code)
	s.Equal("permission required: READ_DASHBOARD", body.Details["reason"])
}

func (s *RouterSuite) TestAuthorizedRequestReachesHandler() {
	s.markKnown("user-1")
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", s.bearerFor(requestcontext.Identity{
		ID: "user-1", Username: "casey", Roles: []string{"ANALYST"},
	}))
	rec := s.do(req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"AUTHORIZED","reason":"access granted"}`, rec.Body.String())
}

func (s *RouterSuite) TestNewOriginIsAllowedButSuspicious() {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", s.bearerFor(requestcontext.Identity{
		ID: "user-1", Username: "casey", Roles: []string{"ANALYST"},
	}))
	rec := s.do(req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"SUSPICIOUS","reason":"new origin address"}`, rec.Body.String())
}

func (s *RouterSuite) TestDecisionEndpoint() {
	req := httptest.NewRequest(http.MethodGet, "/access/decision", nil)
	req.Header.Set("Authorization", s.bearerFor(requestcontext.Identity{
		ID: "admin-1", Username: "root", Roles: []string{"ADMIN"},
	}))
	rec := s.do(req)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"AUTHORIZED","reason":"administrator"}`, rec.Body.String())
}

func (s *RouterSuite) TestPolicyOutageIsServerError() {
	s.policy.err = errors.New("connection refused")
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", s.bearerFor(requestcontext.Identity{
		ID: "user-1", Username: "casey", Roles: []string{"ANALYST"},
	}))
	rec := s.do(req)

	s.Equal(http.StatusInternalServerError, rec.Code)
	body := s.decodeError(rec)
	s.Equal("unavailable", body.Code)
}

func (s *RouterSuite) TestInvalidTokenFallsBackToUnauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := s.do(req)

	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterSuite) TestEveryDecisionIsAudited() {
	s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	s.do(httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	result, err := s.trailStore.Query(s.ctx, audit.Filter{}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(result.Records, 2)
	// Newest first: the refusal, then the public pass.
	s.Equal(audit.StatusRefused, result.Records[0].Status)
	s.Equal("/dashboard", result.Records[0].ResourcePath)
	s.Equal(audit.StatusAuthorized, result.Records[1].Status)
	s.Equal("public path", result.Records[1].Reason)
}

func TestRateLimitByIP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	trail := audit.NewService(audit.NewInMemoryStore(), logger, 2*time.Second)
	engine := decision.NewEngine(
		pathclass.MustNew(pathclass.DefaultPermissionTable()),
		grantTable{},
		permcache.New(8, time.Minute),
		iptracker.New(iptracker.NewInMemoryStore()),
		trail,
		logger,
		nil,
		2*time.Second,
	)
	router := NewRouter(Deps{
		Logger:            logger,
		Engine:            engine,
		TokenValidator:    session.NewTokenService("k", "test"),
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the limit, got %d", rec.Code)
	}
}
