// Package memory provides in-process repositories for Wolf Goat Pig sessions.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

// GameRepository implements domain.GameRepository in memory. Snapshots are stored
// encoded so callers never share state with the store.
type GameRepository struct {
	games map[string][]byte // gameID -> JSON snapshot
	mu    sync.RWMutex
}

// NewGameRepository creates a new memory snapshot repository
func NewGameRepository() *GameRepository {
	return &GameRepository{
		games: make(map[string][]byte),
	}
}

func (r *GameRepository) Save(ctx context.Context, state *domain.RoundState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[state.GameID] = data
	return nil
}

func (r *GameRepository) Get(ctx context.Context, gameID string) (*domain.RoundState, error) {
	r.mu.RLock()
	data, ok := r.games[gameID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
	}

	var state domain.RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *GameRepository) Delete(ctx context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
	return nil
}
