package stats

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"access-gate/internal/audit"
	"access-gate/internal/directory"
	"access-gate/pkg/requestcontext"
)

type StatsServiceSuite struct {
	suite.Suite
	dirService *directory.Service
	trailStore *audit.InMemoryStore
	trail      *audit.Service
	service    *Service
	ctx        context.Context
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

func (s *StatsServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.dirService = directory.NewService(directory.NewInMemoryStore(), logger, 2*time.Second)
	s.trailStore = audit.NewInMemoryStore()
	s.trail = audit.NewService(s.trailStore, logger, 2*time.Second)
	s.service = NewService(s.dirService, s.trail)
	s.ctx = context.Background()
}

func (s *StatsServiceSuite) record(at time.Time, status audit.Status) {
	ctx := requestcontext.WithTime(s.ctx, at)
	s.Require().NoError(s.trail.Record(ctx, audit.Attempt{
		Username:     "alice",
		ResourcePath: "/dashboard",
		Status:       status,
	}))
}

func (s *StatsServiceSuite) TestSummary() {
	_, err := s.dirService.CreateUser(s.ctx, directory.CreateUserInput{Username: "alice"})
	s.Require().NoError(err)
	_, err = s.dirService.CreateRole(s.ctx, directory.CreateRoleInput{Name: "USER"})
	s.Require().NoError(err)
	_, err = s.dirService.CreateResource(s.ctx, directory.CreateResourceInput{Path: "/dashboard"})
	s.Require().NoError(err)

	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	s.record(now.Add(-48*time.Hour), audit.StatusRefused) // outside the window
	s.record(now.Add(-2*time.Hour), audit.StatusRefused)
	s.record(now.Add(-time.Hour), audit.StatusAuthorized)

	summary, err := s.service.Summary(requestcontext.WithTime(s.ctx, now))
	s.Require().NoError(err)
	s.Equal(1, summary.Users)
	s.Equal(1, summary.Roles)
	s.Equal(1, summary.Resources)
	s.Equal(2, summary.RecentAttempts)
	s.Equal(1, summary.FailedAttempts)
	s.Equal(2, summary.TotalRefused)
	s.Equal(now, summary.LastUpdate)
}

func (s *StatsServiceSuite) TestRecentActivityWindow() {
	base := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		s.record(base.Add(time.Duration(i)*time.Minute), audit.StatusAuthorized)
	}

	activity, err := s.service.RecentActivity(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(activity, 10)
	// Newest first.
	s.Equal(base.Add(14*time.Minute), activity[0].Timestamp)
	s.Equal("alice", activity[0].Username)
}
