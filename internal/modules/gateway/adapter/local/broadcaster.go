// Package local connects the in-process game service to the websocket manager.
package local

import (
	"encoding/json"

	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	wgp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

// Broadcaster receives game events and pushes them to the game's seats
type Broadcaster struct {
	gateway domain.GatewayBroadcaster
}

var _ wgp.Broadcaster = (*Broadcaster)(nil)

func NewBroadcaster(gateway domain.GatewayBroadcaster) *Broadcaster {
	return &Broadcaster{gateway: gateway}
}

// BroadcastGame marshals the event once and fans it out to every seat of gameID
func (b *Broadcaster) BroadcastGame(gameID string, event interface{}) {
	msg, err := json.Marshal(event)
	if err != nil {
		logger.ErrorGlobal().Err(err).Str("game_id", gameID).Msg("failed to marshal game event")
		return
	}
	b.gateway.BroadcastToGame(gameID, msg)
}
