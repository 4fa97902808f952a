package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medivault/internal/audit"
	id "medivault/pkg/domain"
	"medivault/pkg/testutil"
)

func TestAppendAssignsSequences(t *testing.T) {
	store := New()
	ctx := testutil.ContextAt(testutil.FixedDate)

	first, err := store.Append(ctx, audit.Entry{Action: audit.ActionLogin})
	require.NoError(t, err)
	second, err := store.Append(ctx, audit.Entry{Action: audit.ActionRecordViewed})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}

func TestQueryReturnsNewestFirst(t *testing.T) {
	store := New()
	base := testutil.FixedDate

	for i := 0; i < 3; i++ {
		_, err := store.Append(context.Background(), audit.Entry{
			Action:    audit.ActionRecordViewed,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := store.Query(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	assert.True(t, entries[1].Timestamp.After(entries[2].Timestamp))
}

func TestQueryBreaksTimestampTiesBySequence(t *testing.T) {
	store := New()
	ctx := testutil.ContextAt(testutil.FixedDate)

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, audit.Entry{Action: audit.ActionRecordViewed})
		require.NoError(t, err)
	}

	entries, err := store.Query(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].Seq)
	assert.Equal(t, int64(2), entries[1].Seq)
	assert.Equal(t, int64(1), entries[2].Seq)
}

func TestMonotonicTimestamps(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Append(ctx, audit.Entry{
		Action:    audit.ActionLogin,
		Timestamp: testutil.FixedDate,
	})
	require.NoError(t, err)

	// An entry carrying an earlier clock is clamped forward so trail order
	// matches insertion order.
	_, err = store.Append(ctx, audit.Entry{
		Action:    audit.ActionRecordViewed,
		Timestamp: testutil.FixedDate.Add(-time.Hour),
	})
	require.NoError(t, err)

	entries, err := store.Query(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, audit.ActionRecordViewed, entries[0].Action)
	assert.Equal(t, entries[0].Timestamp, entries[1].Timestamp)
}

func TestQueryFilters(t *testing.T) {
	store := New()
	ctx := testutil.ContextAt(testutil.FixedDate)

	actor := id.NewActorID()
	target := id.NewRecordID()

	_, err := store.Append(ctx, audit.Entry{ActorID: actor, Action: audit.ActionLogin})
	require.NoError(t, err)
	_, err = store.Append(ctx, audit.Entry{ActorID: actor, Action: audit.ActionRecordViewed, TargetID: &target})
	require.NoError(t, err)
	_, err = store.Append(ctx, audit.Entry{ActorID: id.NewActorID(), Action: audit.ActionRecordViewed})
	require.NoError(t, err)

	t.Run("by actor", func(t *testing.T) {
		entries, err := store.Query(ctx, audit.Filter{ActorID: &actor})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("by action", func(t *testing.T) {
		action := audit.ActionLogin
		entries, err := store.Query(ctx, audit.Filter{Action: &action})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("by target", func(t *testing.T) {
		entries, err := store.Query(ctx, audit.Filter{TargetID: &target})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionRecordViewed, entries[0].Action)
	})

	t.Run("with limit", func(t *testing.T) {
		entries, err := store.Query(ctx, audit.Filter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("by time window", func(t *testing.T) {
		until := testutil.FixedDate.Add(-time.Hour)
		entries, err := store.Query(ctx, audit.Filter{Until: &until})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestConcurrentAppends(t *testing.T) {
	store := New()
	ctx := testutil.ContextAt(testutil.FixedDate)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_, err := store.Append(ctx, audit.Entry{Action: audit.ActionRecordViewed})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	entries, err := store.Query(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, writers*perWriter)

	// Every sequence number is assigned exactly once.
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		assert.False(t, seen[e.Seq], "duplicate seq %d", e.Seq)
		seen[e.Seq] = true
	}
}
