package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dErrors "access-gate/pkg/domain-errors"
	"access-gate/pkg/requestcontext"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Service owns record identity and query clamping so stores stay dumb.
type Service struct {
	store        Store
	logger       *slog.Logger
	storeTimeout time.Duration
}

func NewService(store Store, logger *slog.Logger, storeTimeout time.Duration) *Service {
	return &Service{
		store:        store,
		logger:       logger.With(slog.String("component", "audit")),
		storeTimeout: storeTimeout,
	}
}

// Record appends one attempt, assigning its ID and timestamp. A begun append
// outlives the caller's request: once a decision has been made, its record
// must not vanish because the client hung up.
func (s *Service) Record(ctx context.Context, attempt Attempt) error {
	attempt.ID = uuid.NewString()
	attempt.Timestamp = requestcontext.Now(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	if err := s.store.Append(ctx, attempt); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			slog.String("status", string(attempt.Status)),
			slog.String("resource", attempt.ResourcePath),
			slog.String("error", err.Error()),
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "audit append failed")
	}
	return nil
}

// QueryResult is one page plus the cursors needed to fetch the next one.
type QueryResult struct {
	Records []Attempt
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// Query returns one window of the filtered trail, newest first. Out-of-range
// paging inputs are clamped, never rejected.
func (s *Service) Query(ctx context.Context, filter Filter, limit, offset int) (QueryResult, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	page, err := s.store.Query(ctx, filter, limit, offset)
	if err != nil {
		return QueryResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit query failed")
	}
	return QueryResult{
		Records: page.Records,
		Total:   page.Total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(page.Records) < page.Total,
	}, nil
}

// CountSince counts attempts with the given status observed since the cutoff.
func (s *Service) CountSince(ctx context.Context, status Status, since time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	count, err := s.store.CountSince(ctx, status, since)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "audit count failed")
	}
	return count, nil
}
