package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// GameServiceClient is the client stub for the game service
type GameServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGameServiceClient creates a stub over cc. Stubs are cheap; create one per call
// when cc comes from a load-balanced pool.
func NewGameServiceClient(cc grpc.ClientConnInterface) *GameServiceClient {
	return &GameServiceClient{cc: cc}
}

func (c *GameServiceClient) CreateGame(ctx context.Context, in *service.CreateGameReq, opts ...grpc.CallOption) (*GameRsp, error) {
	out := new(GameRsp)
	if err := c.invoke(ctx, "CreateGame", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameServiceClient) GetGame(ctx context.Context, in *GetGameReq, opts ...grpc.CallOption) (*GameRsp, error) {
	out := new(GameRsp)
	if err := c.invoke(ctx, "GetGame", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameServiceClient) Dispatch(ctx context.Context, in *DispatchReq, opts ...grpc.CallOption) (*GameRsp, error) {
	out := new(GameRsp)
	if err := c.invoke(ctx, "Dispatch", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameServiceClient) History(ctx context.Context, in *HistoryReq, opts ...grpc.CallOption) (*HistoryRsp, error) {
	out := new(HistoryRsp)
	if err := c.invoke(ctx, "History", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GameServiceClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	var trailer metadata.MD
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName), grpc.Trailer(&trailer)}, opts...)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return fromStatus(method, err, trailer)
	}
	return nil
}

// fromStatus rebuilds the game error named by the trailer, falling back to the raw status
func fromStatus(method string, err error, trailer metadata.MD) error {
	if codes := trailer.Get(ErrorCodeKey); len(codes) > 0 && codes[0] != "" {
		return service.ErrorFromCode(service.ErrorCode(codes[0]), status.Convert(err).Message())
	}
	return fmt.Errorf("rpc %s failed: %w", method, err)
}
