package domain

import (
	"context"
	"time"
)

// GameRepository stores live round snapshots
type GameRepository interface {
	// Save writes the snapshot of a round
	Save(ctx context.Context, state *RoundState) error

	// Get loads a snapshot; returns ErrGameNotFound if absent
	Get(ctx context.Context, gameID string) (*RoundState, error)

	// Delete drops a snapshot
	Delete(ctx context.Context, gameID string) error
}

// HistoryRepository keeps the durable record of games and settled holes
type HistoryRepository interface {
	CreateGame(ctx context.Context, rec *GameRecord) error
	CompleteGame(ctx context.Context, gameID string, at time.Time) error
	SaveHoleResult(ctx context.Context, rec *HoleResultRecord) error
	ListHoleResults(ctx context.Context, gameID string) ([]*HoleResultRecord, error)
}
