package store

import (
	"context"
	"sync"

	"prison-records/internal/models"
)

// MemoryStore keeps records in a slice guarded by a mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.Prisoner
	lastSNo int
	opts    Options
}

// NewMemoryStore seeds the store with initial records, which keep their
// own ids and serial numbers.
func NewMemoryStore(opts Options, initial ...models.Prisoner) *MemoryStore {
	s := &MemoryStore{opts: opts.withDefaults()}
	s.records = append(s.records, initial...)
	s.lastSNo = Snapshot(initial).MaxSNo()
	return s
}

func (s *MemoryStore) snapshot() Snapshot {
	out := make(Snapshot, len(s.records))
	copy(out, s.records)
	return out
}

func (s *MemoryStore) All(ctx context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Prisoner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i], nil
		}
	}
	return models.Prisoner{}, ErrNotFound
}

func (s *MemoryStore) Add(ctx context.Context, in models.PrisonerInput) (models.Prisoner, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSNo++
	p := s.opts.newRecord(in, s.lastSNo)
	s.records = append(s.records, p)
	return p, s.snapshot(), nil
}

func (s *MemoryStore) AppendBatch(ctx context.Context, recs []models.Prisoner) ([]models.Prisoner, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := s.opts.assign(recs, s.lastSNo)
	s.lastSNo += len(added)
	s.records = append(s.records, added...)
	return added, s.snapshot(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, in models.PrisonerInput) (models.Prisoner, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		s.records[i].Apply(in.Normalize(), s.opts.today())
		return s.records[i], s.snapshot(), nil
	}
	return models.Prisoner{}, nil, ErrNotFound
}
