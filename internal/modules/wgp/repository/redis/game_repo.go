// Package redis stores Wolf Goat Pig snapshots in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

const keyPrefix = "wgp:game:"

// GameRepository implements domain.GameRepository using Redis
type GameRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGameRepository creates a new Redis snapshot repository. A zero ttl keeps
// snapshots for two days, long enough for a round to be finished the next morning.
func NewGameRepository(rdb *redis.Client, ttl time.Duration) *GameRepository {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &GameRepository{rdb: rdb, ttl: ttl}
}

func key(gameID string) string {
	return keyPrefix + gameID
}

// Save writes the snapshot and refreshes its expiry
func (r *GameRepository) Save(ctx context.Context, state *domain.RoundState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	pipe := r.rdb.Pipeline()
	pipe.Set(ctx, key(state.GameID), data, r.ttl)
	pipe.HSet(ctx, key(state.GameID)+":meta",
		"hole", state.Hole.Number,
		"phase", string(state.Phase),
		"complete", state.Complete(),
	)
	pipe.Expire(ctx, key(state.GameID)+":meta", r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Get loads a snapshot
func (r *GameRepository) Get(ctx context.Context, gameID string) (*domain.RoundState, error) {
	data, err := r.rdb.Get(ctx, key(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
		}
		return nil, err
	}

	var state domain.RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", gameID, err)
	}
	return &state, nil
}

// Delete drops a snapshot
func (r *GameRepository) Delete(ctx context.Context, gameID string) error {
	return r.rdb.Del(ctx, key(gameID), key(gameID)+":meta").Err()
}
