// Package stats serves the dashboard counters and the recent-activity feed.
package stats

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"access-gate/internal/audit"
	"access-gate/internal/directory"
	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/requestcontext"
)

const activityLimit = 10

// Summary is the dashboard counter block. RecentAttempts and FailedAttempts
// cover the trailing 24 hours; TotalRefused covers the whole trail.
type Summary struct {
	Users          int       `json:"users"`
	Roles          int       `json:"roles"`
	Resources      int       `json:"resources"`
	RecentAttempts int       `json:"recentActivity"`
	FailedAttempts int       `json:"failedAttempts"`
	TotalRefused   int       `json:"totalFailed"`
	LastUpdate     time.Time `json:"lastUpdate"`
}

// Activity is one recent-attempt entry in the dashboard feed.
type Activity struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Status       string    `json:"status"`
	IP           string    `json:"ip,omitempty"`
	Username     string    `json:"username,omitempty"`
	ResourcePath string    `json:"resourcePath,omitempty"`
}

// Service gathers the counters from the directory and the audit trail.
type Service struct {
	directory *directory.Service
	trail     *audit.Service
}

func NewService(directoryService *directory.Service, trail *audit.Service) *Service {
	return &Service{
		directory: directoryService,
		trail:     trail,
	}
}

// Summary gathers the counter block. The source queries run concurrently;
// the first failure aborts the whole gather.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	now := requestcontext.Now(ctx)
	dayAgo := now.Add(-24 * time.Hour)

	var summary Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.directory.ListUsers(gctx)
		if err != nil {
			return err
		}
		summary.Users = len(users)
		return nil
	})
	g.Go(func() error {
		roles, err := s.directory.ListRoles(gctx)
		if err != nil {
			return err
		}
		summary.Roles = len(roles)
		return nil
	})
	g.Go(func() error {
		resources, err := s.directory.ListResources(gctx)
		if err != nil {
			return err
		}
		summary.Resources = len(resources)
		return nil
	})
	g.Go(func() error {
		count, err := s.trail.CountSince(gctx, "", dayAgo)
		if err != nil {
			return err
		}
		summary.RecentAttempts = count
		return nil
	})
	g.Go(func() error {
		count, err := s.trail.CountSince(gctx, audit.StatusRefused, dayAgo)
		if err != nil {
			return err
		}
		summary.FailedAttempts = count
		return nil
	})
	g.Go(func() error {
		count, err := s.trail.CountSince(gctx, audit.StatusRefused, time.Time{})
		if err != nil {
			return err
		}
		summary.TotalRefused = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "gather summary")
	}
	summary.LastUpdate = now
	return summary, nil
}

// RecentActivity returns the most recent attempts, newest first.
func (s *Service) RecentActivity(ctx context.Context) ([]Activity, error) {
	result, err := s.trail.Query(ctx, audit.Filter{}, activityLimit, 0)
	if err != nil {
		return nil, err
	}

	out := make([]Activity, 0, len(result.Records))
	for _, rec := range result.Records {
		out = append(out, Activity{
			ID:           rec.ID,
			Timestamp:    rec.Timestamp,
			Status:       string(rec.Status),
			IP:           rec.IPAddress,
			Username:     rec.Username,
			ResourcePath: rec.ResourcePath,
		})
	}
	return out, nil
}
