// Package local serves the game service in-process for the monolith.
package local

import (
	"context"
	"encoding/json"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/usecase"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// Handler is the local adapter for the game use case.
// It implements service.WGPService.
type Handler struct {
	gameUC *usecase.GameUseCase
}

var _ service.WGPService = (*Handler)(nil)

// NewHandler creates a new local handler
func NewHandler(gameUC *usecase.GameUseCase) *Handler {
	return &Handler{gameUC: gameUC}
}

func (h *Handler) CreateGame(ctx context.Context, req *service.CreateGameReq) (*domain.View, error) {
	return h.gameUC.CreateGame(ctx, req)
}

func (h *Handler) GetGame(ctx context.Context, gameID string) (*domain.View, error) {
	return h.gameUC.GetGame(ctx, gameID)
}

func (h *Handler) Dispatch(ctx context.Context, gameID string, cmdType domain.CommandType, payload json.RawMessage) (*domain.View, error) {
	return h.gameUC.Dispatch(ctx, gameID, cmdType, payload)
}

func (h *Handler) History(ctx context.Context, gameID string) ([]*domain.HoleResult, error) {
	return h.gameUC.History(ctx, gameID)
}
