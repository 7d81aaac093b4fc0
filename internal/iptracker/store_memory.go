package iptracker

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"access-gate/pkg/platform/sentinel"
)

// InMemoryStore keeps the address graph in maps. It favors clarity over
// performance and backs deployments without Redis or Postgres configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord // keyed by address
}

type memoryRecord struct {
	id         string
	suspicious bool
	identities map[string]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*memoryRecord)}
}

func (s *InMemoryStore) LinkIfNew(_ context.Context, identityID, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records[address]
	if rec == nil {
		rec = &memoryRecord{id: uuid.NewString(), identities: make(map[string]struct{})}
		s.records[address] = rec
	}
	if _, known := rec.identities[identityID]; known {
		return true, nil
	}
	rec.identities[identityID] = struct{}{}
	return false, nil
}

func (s *InMemoryStore) IsFlagged(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec := s.records[address]
	return rec != nil && rec.suspicious, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.records[rec.Address]
	if existing == nil {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		existing = &memoryRecord{id: id, identities: make(map[string]struct{})}
		s.records[rec.Address] = existing
	}
	existing.suspicious = rec.Suspicious
	for _, identityID := range rec.IdentityIDs {
		existing.identities[identityID] = struct{}{}
	}
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[address]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.records, address)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for address, rec := range s.records {
		out = append(out, rec.toRecord(address))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (s *InMemoryStore) AddressesFor(_ context.Context, identityID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for address, rec := range s.records {
		if _, ok := rec.identities[identityID]; ok {
			out = append(out, rec.toRecord(address))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (r *memoryRecord) toRecord(address string) Record {
	identities := make([]string, 0, len(r.identities))
	for id := range r.identities {
		identities = append(identities, id)
	}
	sort.Strings(identities)
	return Record{ID: r.id, Address: address, Suspicious: r.suspicious, IdentityIDs: identities}
}
