package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "medivault/pkg/domain"
	"medivault/pkg/platform/sentinel"
)

// RedisStore keeps consent decisions in Redis so they survive process
// restarts and are shared across instances. Keys are session-scoped and expire
// with the session TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, sessionTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: sessionTTL}
}

func consentKey(sessionID id.SessionID) string {
	return "consent:session:" + sessionID.String()
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID) (Decision, error) {
	values, err := s.client.HGetAll(ctx, consentKey(sessionID)).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("get consent decision: %w: %v", sentinel.ErrUnavailable, err)
	}
	if len(values) == 0 {
		return Decision{State: StateNotDecided}, nil
	}
	decidedAt, err := time.Parse(time.RFC3339Nano, values["decided_at"])
	if err != nil {
		return Decision{}, fmt.Errorf("corrupt consent timestamp for session %s: %w", sessionID, err)
	}
	return Decision{State: State(values["state"]), DecidedAt: decidedAt}, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID id.SessionID, decision Decision) error {
	key := consentKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		"state", string(decision.State),
		"decided_at", decision.DecidedAt.Format(time.RFC3339Nano),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put consent decision: %w: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
