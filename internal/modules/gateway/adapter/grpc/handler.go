// Package grpc receives pushes from game service instances in the split deployment.
package grpc

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"

	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	wgpgrpc "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/adapter/grpc"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

// ServiceName is the fully qualified gRPC service name of the gateway
const ServiceName = "wgp.GatewayService"

// BroadcastReq carries an already encoded game event
type BroadcastReq struct {
	GameID string          `json:"game_id"`
	Event  json.RawMessage `json:"event"`
}

type BroadcastRsp struct {
	Delivered bool `json:"delivered"`
}

// GatewayServiceServer is the server API of the gateway
type GatewayServiceServer interface {
	Broadcast(context.Context, *BroadcastReq) (*BroadcastRsp, error)
}

// GatewayServiceDesc describes the gateway service for grpc.Server
var GatewayServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GatewayServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Broadcast",
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				in := new(BroadcastReq)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(GatewayServiceServer).Broadcast(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Broadcast"}
				handler := func(ctx context.Context, req interface{}) (interface{}, error) {
					return srv.(GatewayServiceServer).Broadcast(ctx, req.(*BroadcastReq))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wgp/gateway_service",
}

// Handler implements the gRPC server for the gateway
type Handler struct {
	wsManager domain.GatewayBroadcaster
}

// NewHandler creates a new gRPC gateway handler
func NewHandler(wsManager domain.GatewayBroadcaster) *Handler {
	return &Handler{wsManager: wsManager}
}

// Register adds the gateway service to s
func Register(s *grpc.Server, h *Handler) {
	s.RegisterService(&GatewayServiceDesc, h)
}

// Broadcast pushes the event to every seat of the game connected to this instance
func (h *Handler) Broadcast(ctx context.Context, req *BroadcastReq) (*BroadcastRsp, error) {
	if req.GameID == "" || len(req.Event) == 0 {
		return &BroadcastRsp{}, nil
	}
	h.wsManager.BroadcastToGame(req.GameID, req.Event)
	logger.Debug(ctx).Str("game_id", req.GameID).Msg("broadcast delivered")
	return &BroadcastRsp{Delivered: true}, nil
}

// Broadcast calls the gateway's Broadcast RPC over cc
func Broadcast(ctx context.Context, cc grpc.ClientConnInterface, req *BroadcastReq) (*BroadcastRsp, error) {
	out := new(BroadcastRsp)
	err := cc.Invoke(ctx, "/"+ServiceName+"/Broadcast", req, out, grpc.CallContentSubtype(wgpgrpc.CodecName))
	if err != nil {
		return nil, err
	}
	return out, nil
}
