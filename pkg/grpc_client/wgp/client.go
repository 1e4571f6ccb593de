// Package wgp provides the gRPC client for the game service.
package wgp

import (
	"context"
	"encoding/json"

	wgpgrpc "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/grpc"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/discovery"
	baseClient "github.com/stuagano/wolf-goat-pig/pkg/grpc_client/base"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// Client implements service.WGPService over gRPC. It does not cache stubs, so
// every call is load balanced across game service instances.
type Client struct {
	*baseClient.BaseClient
}

var _ service.WGPService = (*Client)(nil)

// NewClient creates a game service client on top of the base client
func NewClient(base *baseClient.BaseClient) *Client {
	return &Client{BaseClient: base}
}

func (c *Client) stub() (*wgpgrpc.GameServiceClient, error) {
	conn, err := c.GetConn(discovery.GameService)
	if err != nil {
		return nil, err
	}
	return wgpgrpc.NewGameServiceClient(conn), nil
}

func (c *Client) CreateGame(ctx context.Context, req *service.CreateGameReq) (*domain.View, error) {
	stub, err := c.stub()
	if err != nil {
		return nil, err
	}
	rsp, err := stub.CreateGame(baseClient.WithRequestID(ctx), req)
	if err != nil {
		return nil, err
	}
	return rsp.Game, nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*domain.View, error) {
	stub, err := c.stub()
	if err != nil {
		return nil, err
	}
	rsp, err := stub.GetGame(baseClient.WithRequestID(ctx), &wgpgrpc.GetGameReq{GameID: gameID})
	if err != nil {
		return nil, err
	}
	return rsp.Game, nil
}

func (c *Client) Dispatch(ctx context.Context, gameID string, cmdType domain.CommandType, payload json.RawMessage) (*domain.View, error) {
	stub, err := c.stub()
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx).Str("game_id", gameID).Str("command", string(cmdType)).Msg("calling RPC Dispatch")
	rsp, err := stub.Dispatch(baseClient.WithRequestID(ctx), &wgpgrpc.DispatchReq{GameID: gameID, Type: cmdType, Payload: payload})
	if err != nil {
		return nil, err
	}
	return rsp.Game, nil
}

func (c *Client) History(ctx context.Context, gameID string) ([]*domain.HoleResult, error) {
	stub, err := c.stub()
	if err != nil {
		return nil, err
	}
	rsp, err := stub.History(baseClient.WithRequestID(ctx), &wgpgrpc.HistoryReq{GameID: gameID})
	if err != nil {
		return nil, err
	}
	return rsp.Holes, nil
}
