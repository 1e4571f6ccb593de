package service

import (
	"context"
	"encoding/json"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

// GameCode is the game name used in gateway envelopes and service registration
const GameCode = "wolf_goat_pig"

// CreateGameReq seats the players of a new round
type CreateGameReq struct {
	Players []domain.Player `json:"players"`
	Options domain.Options  `json:"options"`
}

// WGPService is the game service as seen by transports. It is served in-process by the
// local adapter or remotely over gRPC.
type WGPService interface {
	CreateGame(ctx context.Context, req *CreateGameReq) (*domain.View, error)
	GetGame(ctx context.Context, gameID string) (*domain.View, error)

	// Dispatch applies one action from the closed command set
	Dispatch(ctx context.Context, gameID string, cmdType domain.CommandType, payload json.RawMessage) (*domain.View, error)

	// History returns the settled holes in order
	History(ctx context.Context, gameID string) ([]*domain.HoleResult, error)
}
