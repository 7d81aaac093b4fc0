package audit

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps the trail in an append-ordered slice. It enforces the
// per-store guarantee that timestamps never decrease, which keeps descending
// iteration equivalent to reverse insertion order.
type InMemoryStore struct {
	mu       sync.RWMutex
	attempts []Attempt
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.attempts); n > 0 && attempt.Timestamp.Before(s.attempts[n-1].Timestamp) {
		attempt.Timestamp = s.attempts[n-1].Timestamp
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, filter Filter, limit, offset int) (Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Walk newest-first; insertion order is timestamp order.
	var matched []Attempt
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if filter.Matches(s.attempts[i]) {
			matched = append(matched, s.attempts[i])
		}
	}

	total := len(matched)
	if offset >= total {
		return Page{Records: []Attempt{}, Total: total}, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	records := make([]Attempt, end-offset)
	copy(records, matched[offset:end])
	return Page{Records: records, Total: total}, nil
}

func (s *InMemoryStore) CountSince(_ context.Context, status Status, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, a := range s.attempts {
		if status != "" && a.Status != status {
			continue
		}
		if !since.IsZero() && a.Timestamp.Before(since) {
			continue
		}
		count++
	}
	return count, nil
}
