// Package usecase turns websocket envelopes into game service calls.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	wgp "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// Read-only commands answered by the gateway itself
const (
	CommandGetState = "get_state"
	CommandHistory  = "get_history"
	CommandError    = "error"
)

// ErrBadEnvelope is returned for messages that cannot be routed
var ErrBadEnvelope = errors.New("bad envelope")

// Envelope is the message format in both directions
type Envelope struct {
	Game    string          `json:"game"`
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the body of an error reply
type ErrorData struct {
	Request string            `json:"request"`
	Error   string            `json:"error"`
	Code    service.ErrorCode `json:"code,omitempty"`
}

// GatewayUseCase handles gateway logic
type GatewayUseCase struct {
	wgpSvc service.WGPService
}

var _ domain.GatewayUseCase = (*GatewayUseCase)(nil)

// NewGatewayUseCase creates a new gateway use case
func NewGatewayUseCase(wgpSvc service.WGPService) *GatewayUseCase {
	return &GatewayUseCase{wgpSvc: wgpSvc}
}

// HandleMessage routes one envelope for the seat's game. Game rule violations come
// back as an error envelope; only unroutable messages return an error.
func (uc *GatewayUseCase) HandleMessage(ctx context.Context, seat domain.Seat, message []byte) ([]byte, error) {
	var req Envelope
	if err := json.Unmarshal(message, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if req.Game == "" || req.Command == "" {
		return nil, fmt.Errorf("%w: missing game or command", ErrBadEnvelope)
	}
	if req.Game != service.GameCode {
		return nil, fmt.Errorf("%w: unknown game %s", ErrBadEnvelope, req.Game)
	}

	var (
		data interface{}
		err  error
	)
	switch req.Command {
	case CommandGetState:
		data, err = uc.wgpSvc.GetGame(ctx, seat.GameID)
	case CommandHistory:
		data, err = uc.wgpSvc.History(ctx, seat.GameID)
	default:
		data, err = uc.wgpSvc.Dispatch(ctx, seat.GameID, wgp.CommandType(req.Command), req.Data)
	}
	if err != nil {
		code := service.CodeOf(err)
		logger.Warn(ctx).
			Str("game_id", seat.GameID).
			Str("player_id", string(seat.PlayerID)).
			Str("command", req.Command).
			Str("error_code", string(code)).
			Err(err).
			Msg("game command rejected")
		return reply(CommandError, ErrorData{Request: req.Command, Error: err.Error(), Code: code})
	}
	return reply(req.Command, data)
}

func reply(command string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s reply: %w", command, err)
	}
	return json.Marshal(Envelope{Game: service.GameCode, Command: command, Data: raw})
}
