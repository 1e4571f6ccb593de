package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "wgp.GameService"

// ErrorCodeKey is the trailer that carries a service.ErrorCode next to a failed status
const ErrorCodeKey = "wgp-error"

type GetGameReq struct {
	GameID string `json:"game_id"`
}

type DispatchReq struct {
	GameID  string             `json:"game_id"`
	Type    domain.CommandType `json:"type"`
	Payload json.RawMessage    `json:"payload,omitempty"`
}

type HistoryReq struct {
	GameID string `json:"game_id"`
}

type GameRsp struct {
	Game *domain.View `json:"game"`
}

type HistoryRsp struct {
	Holes []*domain.HoleResult `json:"holes"`
}

// GameServiceServer is the server API for the game service
type GameServiceServer interface {
	CreateGame(context.Context, *service.CreateGameReq) (*GameRsp, error)
	GetGame(context.Context, *GetGameReq) (*GameRsp, error)
	Dispatch(context.Context, *DispatchReq) (*GameRsp, error)
	History(context.Context, *HistoryReq) (*HistoryRsp, error)
}

// RegisterGameServiceServer registers srv on s
func RegisterGameServiceServer(s grpc.ServiceRegistrar, srv GameServiceServer) {
	s.RegisterService(&GameServiceDesc, srv)
}

// GameServiceDesc describes the game service for grpc.Server
var GameServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GameServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateGame", GameServiceServer.CreateGame),
		unary("GetGame", GameServiceServer.GetGame),
		unary("Dispatch", GameServiceServer.Dispatch),
		unary("History", GameServiceServer.History),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wgp/game_service",
}

func unary[Req, Rsp any](method string, call func(GameServiceServer, context.Context, *Req) (*Rsp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GameServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(GameServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
