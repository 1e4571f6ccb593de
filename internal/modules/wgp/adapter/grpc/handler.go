package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/usecase"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// Handler implements the gRPC server for the game service
type Handler struct {
	gameUC *usecase.GameUseCase
}

var _ GameServiceServer = (*Handler)(nil)

// NewHandler creates a new gRPC handler
func NewHandler(gameUC *usecase.GameUseCase) *Handler {
	return &Handler{gameUC: gameUC}
}

func (h *Handler) CreateGame(ctx context.Context, req *service.CreateGameReq) (*GameRsp, error) {
	view, err := h.gameUC.CreateGame(ctx, req)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &GameRsp{Game: view}, nil
}

func (h *Handler) GetGame(ctx context.Context, req *GetGameReq) (*GameRsp, error) {
	view, err := h.gameUC.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &GameRsp{Game: view}, nil
}

func (h *Handler) Dispatch(ctx context.Context, req *DispatchReq) (*GameRsp, error) {
	view, err := h.gameUC.Dispatch(ctx, req.GameID, req.Type, req.Payload)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &GameRsp{Game: view}, nil
}

func (h *Handler) History(ctx context.Context, req *HistoryReq) (*HistoryRsp, error) {
	holes, err := h.gameUC.History(ctx, req.GameID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return &HistoryRsp{Holes: holes}, nil
}

// toStatus turns a game error into a gRPC status and attaches its code as a trailer
func toStatus(ctx context.Context, err error) error {
	code := service.CodeOf(err)
	if terr := grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeKey, string(code))); terr != nil {
		logger.Warn(ctx).Err(terr).Msg("failed to set error trailer")
	}
	if code == service.CodeInternal || code == service.CodeSettlementImbalance {
		logger.Error(ctx).Err(err).Msg("game rpc failed")
	}
	return status.Error(grpcCode(code), err.Error())
}

func grpcCode(code service.ErrorCode) codes.Code {
	switch code {
	case service.CodeGameNotFound:
		return codes.NotFound
	case service.CodeUnknownCommand, service.CodeInvalidPayload:
		return codes.InvalidArgument
	case service.CodeInternal, service.CodeSettlementImbalance:
		return codes.Internal
	default:
		return codes.FailedPrecondition
	}
}

// RequestIDInterceptor restores the caller's request id into the handler context
func RequestIDInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("request_id"); len(ids) > 0 && ids[0] != "" {
			ctx = logger.WithRequestID(ctx, ids[0])
		}
	}
	return handler(ctx, req)
}

// NewServer builds a grpc.Server with the game service registered
func NewServer(gameUC *usecase.GameUseCase) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(RequestIDInterceptor))
	RegisterGameServiceServer(s, NewHandler(gameUC))

	// Enable reflection for debugging
	reflection.Register(s)
	return s
}

// Serve runs the game service on lis until the server stops
func Serve(lis net.Listener, gameUC *usecase.GameUseCase) *grpc.Server {
	s := NewServer(gameUC)
	go func() {
		logger.InfoGlobal().Str("address", lis.Addr().String()).Msg("game gRPC server listening")
		if err := s.Serve(lis); err != nil {
			logger.ErrorGlobal().Err(err).Msg("gRPC server stopped")
		}
	}()
	return s
}
