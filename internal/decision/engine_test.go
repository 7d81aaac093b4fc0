package decision

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"access-gate/internal/audit"
	"access-gate/internal/decision/mocks"
	"access-gate/internal/iptracker"
	"access-gate/internal/pathclass"
	"access-gate/internal/permcache"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/requestcontext"
)

// The suite wires real collaborators everywhere the rules depend on their
// semantics (classifier, cache, origin tracker, trail) and mocks only the
// policy store and the failure injection points.

type EngineSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockPolicy *mocks.MockPolicyReader
	ipStore    *iptracker.InMemoryStore
	trail      *audit.InMemoryStore
	engine     *Engine
	ctx        context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockPolicy = mocks.NewMockPolicyReader(s.ctrl)
	s.ipStore = iptracker.NewInMemoryStore()
	s.trail = audit.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.engine = NewEngine(
		pathclass.MustNew(pathclass.DefaultPermissionTable()),
		s.mockPolicy,
		permcache.New(64, 5*time.Minute),
		iptracker.New(s.ipStore),
		audit.NewService(s.trail, logger, 2*time.Second),
		logger,
		nil,
		2*time.Second,
	)
	s.ctx = context.Background()
}

func (s *EngineSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *EngineSuite) user(roles ...string) *requestcontext.Identity {
	return &requestcontext.Identity{ID: "user-1", Username: "alice", Roles: roles}
}

func (s *EngineSuite) trailRecords() []audit.Attempt {
	page, err := s.trail.Query(s.ctx, audit.Filter{}, 100, 0)
	s.Require().NoError(err)
	return page.Records
}

// markKnown seeds the origin store so the novelty rule passes.
func (s *EngineSuite) markKnown(identityID, address string) {
	_, err := s.ipStore.LinkIfNew(s.ctx, identityID, address)
	s.Require().NoError(err)
}

func (s *EngineSuite) TestPublicPath() {
	d, err := s.engine.Evaluate(s.ctx, Request{Method: "GET", Path: "/health"})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusAuthorized, Reason: ReasonPublicPath}, d)

	records := s.trailRecords()
	s.Require().Len(records, 1)
	s.Equal(audit.StatusAuthorized, records[0].Status)
	s.Empty(records[0].IdentityID)
}

func (s *EngineSuite) TestUnauthenticated() {
	d, err := s.engine.Evaluate(s.ctx, Request{Method: "GET", Path: "/users", ClientIP: "10.0.0.1"})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusRefused, Reason: ReasonAuthRequired}, d)
	s.False(d.Allowed())

	records := s.trailRecords()
	s.Require().Len(records, 1)
	s.Empty(records[0].IdentityID)
	s.Equal("10.0.0.1", records[0].IPAddress)
}

func (s *EngineSuite) TestAdminBypass() {
	// No policy or origin expectations: the bypass is total.
	d, err := s.engine.Evaluate(s.ctx, Request{
		Method:   "GET",
		Path:     "/users",
		Identity: s.user("ADMIN"),
		ClientIP: "203.0.113.5",
	})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusAuthorized, Reason: ReasonAdministrator}, d)
	s.Len(s.trailRecords(), 1)
}

func (s *EngineSuite) TestMissingPermission() {
	s.mockPolicy.EXPECT().
		RoleGrants(gomock.Any(), []string{"USER"}, "READ_USERS").
		Return(false, nil)

	d, err := s.engine.Evaluate(s.ctx, Request{
		Method:   "GET",
		Path:     "/users",
		Identity: s.user("USER"),
		ClientIP: "10.0.0.1",
	})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusRefused, Reason: "permission required: READ_USERS"}, d)
}

func (s *EngineSuite) TestMissingRole() {
	d, err := s.engine.Evaluate(s.ctx, Request{
		Method:       "GET",
		Path:         "/users",
		Identity:     s.user("USER"),
		RequiredRole: "AUDITOR",
	})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusRefused, Reason: "role required: AUDITOR"}, d)
}

// TestFirstUseThenKnown walks the one-shot novelty signal: the first sighting
// of an (identity, address) pair flags it, every later sighting is clean.
func (s *EngineSuite) TestFirstUseThenKnown() {
	s.mockPolicy.EXPECT().
		RoleGrants(gomock.Any(), []string{"USER"}, "READ_DASHBOARD").
		Return(true, nil).
		Times(1) // second evaluation must hit the cache

	req := Request{
		Method:   "GET",
		Path:     "/dashboard",
		Identity: s.user("USER"),
		ClientIP: "203.0.113.5",
	}

	d, err := s.engine.Evaluate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusSuspicious, Reason: ReasonNewOrigin}, d)
	s.True(d.Allowed())

	d, err = s.engine.Evaluate(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusAuthorized, Reason: ReasonGranted}, d)

	records := s.trailRecords()
	s.Require().Len(records, 2)
	s.Equal(audit.StatusAuthorized, records[0].Status)
	s.Equal(audit.StatusSuspicious, records[1].Status)
}

func (s *EngineSuite) TestFlaggedOrigin() {
	s.mockPolicy.EXPECT().
		RoleGrants(gomock.Any(), gomock.Any(), "READ_DASHBOARD").
		Return(true, nil)

	s.markKnown("user-1", "198.51.100.7")
	s.Require().NoError(s.ipStore.Upsert(s.ctx, iptracker.Record{
		Address:    "198.51.100.7",
		Suspicious: true,
	}))

	d, err := s.engine.Evaluate(s.ctx, Request{
		Method:   "GET",
		Path:     "/dashboard",
		Identity: s.user("USER"),
		ClientIP: "198.51.100.7",
	})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusSuspicious, Reason: ReasonFlaggedOrigin}, d)
	s.True(d.Allowed())
}

func (s *EngineSuite) TestNoPermissionMappingRequiresAuthOnly() {
	s.markKnown("user-1", "10.0.0.1")

	d, err := s.engine.Evaluate(s.ctx, Request{
		Method:   "GET",
		Path:     "/unmapped/path",
		Identity: s.user("USER"),
		ClientIP: "10.0.0.1",
	})
	s.Require().NoError(err)
	s.Equal(Decision{Status: StatusAuthorized, Reason: ReasonGranted}, d)
}

// TestPolicyOutageIsSystemError verifies an infrastructure failure surfaces
// as a system error, not a refusal, and writes nothing to the trail.
func (s *EngineSuite) TestPolicyOutageIsSystemError() {
	s.mockPolicy.EXPECT().
		RoleGrants(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused"))

	_, err := s.engine.Evaluate(s.ctx, Request{
		Method:   "GET",
		Path:     "/users",
		Identity: s.user("USER"),
		ClientIP: "10.0.0.1",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.False(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Empty(s.trailRecords())
}

// TestTrailOutageFailsEvaluation verifies the append is part of the
// evaluation contract: if it cannot complete, no verdict is returned.
func (s *EngineSuite) TestTrailOutageFailsEvaluation() {
	recorder := mocks.NewMockRecorder(s.ctrl)
	recorder.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		Return(dErrors.New(dErrors.CodeUnavailable, "audit append failed"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(
		pathclass.MustNew(pathclass.DefaultPermissionTable()),
		s.mockPolicy,
		permcache.New(64, 5*time.Minute),
		iptracker.New(s.ipStore),
		recorder,
		logger,
		nil,
		2*time.Second,
	)

	_, err := engine.Evaluate(s.ctx, Request{Method: "GET", Path: "/health"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *EngineSuite) TestHasPermission() {
	s.Run("unauthenticated probe is unauthorized", func() {
		_, err := s.engine.HasPermission(s.ctx, nil, "READ_USERS")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("malformed name is rejected", func() {
		_, err := s.engine.HasPermission(s.ctx, s.user("USER"), "readDashboard")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("administrator holds every permission", func() {
		granted, err := s.engine.HasPermission(s.ctx, s.user("ADMIN"), "DELETE_USERS")
		s.Require().NoError(err)
		s.True(granted)
	})

	s.Run("probe shares the rule-chain cache", func() {
		s.mockPolicy.EXPECT().
			RoleGrants(gomock.Any(), []string{"USER"}, "READ_GRAPH").
			Return(true, nil).
			Times(1)

		granted, err := s.engine.HasPermission(s.ctx, s.user("USER"), "READ_GRAPH")
		s.Require().NoError(err)
		s.True(granted)

		granted, err = s.engine.HasPermission(s.ctx, s.user("USER"), "READ_GRAPH")
		s.Require().NoError(err)
		s.True(granted)
	})
}
