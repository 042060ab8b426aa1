package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rezonia/invoice-composer/internal/model"
)

// ErrNotFound is returned when a record id is unknown
var ErrNotFound = errors.New("invoice not found")

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.Record
	order   []string
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*model.Record)}
}

// Save implements form.Store
func (s *MemoryStore) Save(ctx context.Context, rec *model.Record) (model.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return model.SaveResult{}, model.ErrTransportFailure(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID()]; ok {
		return model.SaveResult{Success: false, Message: DuplicateMessage}, nil
	}
	s.records[rec.ID()] = rec
	s.order = append(s.order, rec.ID())
	return model.SaveResult{Success: true}, nil
}

// Get returns a saved record
func (s *MemoryStore) Get(_ context.Context, id string) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

// List returns all records in save order
func (s *MemoryStore) List() []*model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Record, len(s.order))
	for i, id := range s.order {
		out[i] = s.records[id]
	}
	return out
}
