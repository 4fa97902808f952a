package consent

import (
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medivault/pkg/domain"
	"medivault/pkg/testutil"
)

// newRedisStore connects to the Redis named by MEDIVAULT_TEST_REDIS_URL, or
// skips. The in-memory store covers the gate's behavior; this suite only
// checks the Redis serialization round trip.
func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	url := os.Getenv("MEDIVAULT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("MEDIVAULT_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Minute)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := t.Context()
	sessionID := id.NewSessionID()

	decision, err := store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, StateNotDecided, decision.State)

	want := Decision{State: StateAccepted, DecidedAt: testutil.FixedDate}
	require.NoError(t, store.Put(ctx, sessionID, want))

	got, err := store.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, want.State, got.State)
	assert.True(t, want.DecidedAt.Equal(got.DecidedAt))
}
