package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingKeyPrefix = "pending_signup:"

// PendingRedisStore keeps pending signups in Redis with a TTL, so abandoned
// checkouts clean themselves up.
type PendingRedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPendingRedisStore(rdb *redis.Client, ttl time.Duration) *PendingRedisStore {
	return &PendingRedisStore{rdb: rdb, ttl: ttl}
}

func (s *PendingRedisStore) Put(ctx context.Context, p PendingUser) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, pendingKeyPrefix+p.TransactionID, raw, s.ttl).Err()
}

// Take fetches and deletes the pending signup in one round trip, so a
// redelivered payment callback cannot complete the same signup twice.
func (s *PendingRedisStore) Take(ctx context.Context, transactionID string) (PendingUser, bool, error) {
	raw, err := s.rdb.GetDel(ctx, pendingKeyPrefix+transactionID).Result()
	if errors.Is(err, redis.Nil) {
		return PendingUser{}, false, nil
	}
	if err != nil {
		return PendingUser{}, false, err
	}
	var p PendingUser
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return PendingUser{}, false, fmt.Errorf("users: corrupt pending signup %s: %w", transactionID, err)
	}
	return p, true, nil
}
