package memory

import (
	"context"
	"sort"
	"sync"

	"medivault/internal/record"
	id "medivault/pkg/domain"
	"medivault/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.RecordID]record.Record
}

func New() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.RecordID]record.Record)}
}

func (s *InMemoryStore) Save(_ context.Context, rec record.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, recordID id.RecordID) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordID]
	if !ok {
		return record.Record{}, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemoryStore) List(_ context.Context) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) ScanByRetention(_ context.Context) ([]record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []record.Record
	for _, rec := range s.records {
		if rec.RetentionDeadline != nil {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RetentionDeadline.Before(*out[j].RetentionDeadline)
	})
	return out, nil
}
