package iptracker

import "context"

// MirroredStore pairs the primary store with the shared Redis hot path.
// Decision reads (LinkIfNew, IsFlagged) answer from Redis, which every
// instance shares; CRUD reads stay on the primary store, and every mutation
// is mirrored into Redis so administrative flag changes reach the next
// decision immediately.
type MirroredStore struct {
	primary Store
	hot     *RedisChecker
}

var _ Store = (*MirroredStore)(nil)

func NewMirroredStore(primary Store, hot *RedisChecker) *MirroredStore {
	return &MirroredStore{primary: primary, hot: hot}
}

// LinkIfNew answers from the shared Redis set and records the link in the
// primary store so per-identity listings stay complete.
func (s *MirroredStore) LinkIfNew(ctx context.Context, identityID, address string) (bool, error) {
	known, err := s.hot.LinkIfNew(ctx, identityID, address)
	if err != nil {
		return false, err
	}
	if _, err := s.primary.LinkIfNew(ctx, identityID, address); err != nil {
		return false, err
	}
	return known, nil
}

func (s *MirroredStore) IsFlagged(ctx context.Context, address string) (bool, error) {
	return s.hot.IsFlagged(ctx, address)
}

// Upsert writes the primary record, then mirrors the flag and identity links
// into Redis.
func (s *MirroredStore) Upsert(ctx context.Context, rec Record) error {
	if err := s.primary.Upsert(ctx, rec); err != nil {
		return err
	}
	for _, identityID := range rec.IdentityIDs {
		if _, err := s.hot.LinkIfNew(ctx, identityID, rec.Address); err != nil {
			return err
		}
	}
	return s.hot.Flag(ctx, rec.Address, rec.Suspicious)
}

// Remove deletes the record from both sides. The linked identities are read
// before the primary delete so their Redis known sets can be cleaned up.
func (s *MirroredStore) Remove(ctx context.Context, address string) error {
	identityIDs, err := s.linkedIdentities(ctx, address)
	if err != nil {
		return err
	}
	if err := s.primary.Remove(ctx, address); err != nil {
		return err
	}
	return s.hot.Forget(ctx, address, identityIDs)
}

func (s *MirroredStore) List(ctx context.Context) ([]Record, error) {
	return s.primary.List(ctx)
}

func (s *MirroredStore) AddressesFor(ctx context.Context, identityID string) ([]Record, error) {
	return s.primary.AddressesFor(ctx, identityID)
}

func (s *MirroredStore) linkedIdentities(ctx context.Context, address string) ([]string, error) {
	records, err := s.primary.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Address == address {
			return rec.IdentityIDs, nil
		}
	}
	return nil, nil
}
