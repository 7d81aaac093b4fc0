package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	base  time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
	s.base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) appendN(n int, mutate func(i int, a *Attempt)) {
	for i := 0; i < n; i++ {
		a := Attempt{
			ID:           uuid.NewString(),
			Timestamp:    s.base.Add(time.Duration(i) * time.Second),
			IdentityID:   "user-1",
			Username:     "alice",
			ResourcePath: fmt.Sprintf("/dashboard/%d", i),
			IPAddress:    "10.0.0.1",
			Status:       StatusAuthorized,
			Reason:       "access granted",
		}
		if mutate != nil {
			mutate(i, &a)
		}
		s.Require().NoError(s.store.Append(s.ctx, a))
	}
}

// TestOrderingAndWindow verifies descending timestamp order and windowing.
func (s *MemoryStoreSuite) TestOrderingAndWindow() {
	s.appendN(5, nil)

	page, err := s.store.Query(s.ctx, Filter{}, 2, 1)
	s.Require().NoError(err)
	s.Equal(5, page.Total)
	s.Require().Len(page.Records, 2)
	s.Equal("/dashboard/3", page.Records[0].ResourcePath)
	s.Equal("/dashboard/2", page.Records[1].ResourcePath)
}

// TestFilterCompleteness verifies total reflects the filter, not the window.
func (s *MemoryStoreSuite) TestFilterCompleteness() {
	s.appendN(6, func(i int, a *Attempt) {
		if i%2 == 0 {
			a.Status = StatusRefused
		}
	})

	page, err := s.store.Query(s.ctx, Filter{Status: StatusRefused}, 2, 0)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Require().Len(page.Records, 2)
	for _, rec := range page.Records {
		s.Equal(StatusRefused, rec.Status)
	}
}

// TestFilterFields verifies each filter dimension narrows independently.
func (s *MemoryStoreSuite) TestFilterFields() {
	s.appendN(4, func(i int, a *Attempt) {
		if i == 2 {
			a.IdentityID = "user-2"
			a.IPAddress = "192.168.1.9"
			a.ResourcePath = "/settings/profile"
		}
	})

	s.Run("by identity", func() {
		page, err := s.store.Query(s.ctx, Filter{IdentityID: "user-2"}, 10, 0)
		s.Require().NoError(err)
		s.Equal(1, page.Total)
	})

	s.Run("by address", func() {
		page, err := s.store.Query(s.ctx, Filter{IPAddress: "192.168.1.9"}, 10, 0)
		s.Require().NoError(err)
		s.Equal(1, page.Total)
	})

	s.Run("by resource substring", func() {
		page, err := s.store.Query(s.ctx, Filter{ResourceContains: "settings"}, 10, 0)
		s.Require().NoError(err)
		s.Require().Len(page.Records, 1)
		s.Equal("/settings/profile", page.Records[0].ResourcePath)
	})
}

// TestOffsetBeyondTotal verifies an out-of-range offset yields an empty page.
func (s *MemoryStoreSuite) TestOffsetBeyondTotal() {
	s.appendN(3, nil)

	page, err := s.store.Query(s.ctx, Filter{}, 10, 50)
	s.Require().NoError(err)
	s.Equal(3, page.Total)
	s.Empty(page.Records)
	s.NotNil(page.Records)
}

// TestTimestampClamp verifies a backwards clock never breaks ordering.
func (s *MemoryStoreSuite) TestTimestampClamp() {
	s.Require().NoError(s.store.Append(s.ctx, Attempt{ID: "a", Timestamp: s.base}))
	s.Require().NoError(s.store.Append(s.ctx, Attempt{ID: "b", Timestamp: s.base.Add(-time.Minute)}))

	page, err := s.store.Query(s.ctx, Filter{}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(page.Records, 2)
	s.Equal("b", page.Records[0].ID)
	s.False(page.Records[0].Timestamp.Before(page.Records[1].Timestamp))
}

// TestCountSince verifies status and cutoff narrowing.
func (s *MemoryStoreSuite) TestCountSince() {
	s.appendN(6, func(i int, a *Attempt) {
		if i >= 4 {
			a.Status = StatusSuspicious
		}
	})

	count, err := s.store.CountSince(s.ctx, StatusSuspicious, time.Time{})
	s.Require().NoError(err)
	s.Equal(2, count)

	count, err = s.store.CountSince(s.ctx, "", s.base.Add(3*time.Second))
	s.Require().NoError(err)
	s.Equal(3, count)
}
