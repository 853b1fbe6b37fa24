package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// stateTTL is how long a pending authorization redirect stays valid.
const stateTTL = 10 * time.Minute

// StateStore keeps the per-user OAuth CSRF state between the authorization
// redirect and the provider callback.
type StateStore interface {
	Set(ctx context.Context, userID int64, state string) error
	// Consume returns the stored state and deletes it, so a state token is
	// single-use. Returns "" when nothing is stored.
	Consume(ctx context.Context, userID int64) (string, error)
}

type redisStateStore struct {
	rdb *redis.Client
}

func NewStateStore(rdb *redis.Client) StateStore {
	return &redisStateStore{rdb: rdb}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("oauth:state:%d", userID)
}

func (s *redisStateStore) Set(ctx context.Context, userID int64, state string) error {
	err := s.rdb.Set(ctx, stateKey(userID), state, stateTTL).Err()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *redisStateStore) Consume(ctx context.Context, userID int64) (string, error) {
	state, err := s.rdb.GetDel(ctx, stateKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}
	return state, nil
}
