package domain

import (
	"context"

	wgp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

// Seat binds a connection to one player of one game
type Seat struct {
	GameID   string       `json:"game_id"`
	PlayerID wgp.PlayerID `json:"player_id"`
}

// GatewayUseCase defines the interface for gateway business logic
type GatewayUseCase interface {
	// HandleMessage handles an envelope sent from a seat and returns the reply
	HandleMessage(ctx context.Context, seat Seat, message []byte) ([]byte, error)
}

// GatewayBroadcaster defines the interface for pushing messages to connections
type GatewayBroadcaster interface {
	// SendToSeat sends a message to one seat
	SendToSeat(seat Seat, message []byte)

	// BroadcastToGame sends a message to every seat of a game
	BroadcastToGame(gameID string, message []byte)
}
