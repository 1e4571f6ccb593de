package base

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	gatewaygrpc "github.com/stuagano/wolf-goat-pig/internal/modules/gateway/adapter/grpc"
	wgp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

const broadcastTimeout = 5 * time.Second

var _ wgp.Broadcaster = (*BaseClient)(nil)

// BroadcastGame pushes a game event to every gateway instance. Seats of one game
// may be spread over several gateways, so each instance gets a copy.
// It returns once every gateway has answered or timed out. The use case publishes
// under the game lock, so events of one game reach each gateway in order and
// before the command's reply.
func (c *BaseClient) BroadcastGame(gameID string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.ErrorGlobal().Err(err).Str("game_id", gameID).Msg("failed to marshal game event")
		return
	}

	addrs, err := c.GetServiceAddrs(discovery.GatewayService)
	if err != nil {
		logger.ErrorGlobal().Err(err).Msg("failed to discover gateways for broadcast")
		return
	}

	req := &gatewaygrpc.BroadcastReq{GameID: gameID, Event: payload}
	var wg sync.WaitGroup
	wg.Add(len(addrs))
	for _, addr := range addrs {
		addr := addr
		c.SubmitTask(func() {
			defer wg.Done()
			conn, err := c.GetConnDirect(addr)
			if err != nil {
				logger.ErrorGlobal().Str("addr", addr).Err(err).Msg("failed to dial gateway for broadcast")
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
			defer cancel()
			if _, err := gatewaygrpc.Broadcast(ctx, conn, req); err != nil {
				logger.ErrorGlobal().Str("addr", addr).Str("game_id", gameID).Err(err).Msg("broadcast RPC failed")
			}
		})
	}
	wg.Wait()
}
