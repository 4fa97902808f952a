package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"medivault/internal/audit"
	"medivault/pkg/requestcontext"
)

// InMemoryStore keeps the trail in process memory. Appends take the write
// lock so concurrent callers never interleave partial writes, and the
// (timestamp, sequence) pair gives entries a total order even when two
// appends land on the same clock tick.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
	nextSeq int64
	lastTS  time.Time
}

func New() *InMemoryStore {
	return &InMemoryStore{nextSeq: 1}
}

func (s *InMemoryStore) Append(ctx context.Context, entry audit.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	// Timestamps must be monotonic within the store so the trail's order
	// matches insertion order.
	if entry.Timestamp.Before(s.lastTS) {
		entry.Timestamp = s.lastTS
	}
	s.lastTS = entry.Timestamp

	entry.Seq = s.nextSeq
	s.nextSeq++
	s.entries = append(s.entries, entry)
	return entry.Seq, nil
}

func (s *InMemoryStore) Query(_ context.Context, filter audit.Filter) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []audit.Entry
	for _, e := range s.entries {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].Seq > matched[j].Seq
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Len reports the number of stored entries. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
