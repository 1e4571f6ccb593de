package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/usecase"
	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/ws"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// SeatParser verifies seat tokens
type SeatParser interface {
	ParseSeat(token string) (domain.Seat, error)
}

// Handler handles websocket upgrades for seated players
type Handler struct {
	useCase domain.GatewayUseCase
	manager *ws.Manager
	seats   SeatParser
}

// NewHandler creates a new HTTP handler
func NewHandler(useCase domain.GatewayUseCase, manager *ws.Manager, seats SeatParser) *Handler {
	return &Handler{
		useCase: useCase,
		manager: manager,
		seats:   seats,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // scorecards are served from anywhere
	},
}

// RegisterRoutes mounts the websocket endpoint
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws", func(c *gin.Context) {
		h.HandleWebSocket(c.Writer, c.Request)
	})
}

// HandleWebSocket upgrades a request carrying a seat token
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WebSocketContext(r)
	requestID := logger.GetRequestID(ctx)

	token := r.URL.Query().Get("token")
	if token == "" {
		logger.Warn(ctx).Str("remote_addr", r.RemoteAddr).Msg("missing seat token")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	seat, err := h.seats.ParseSeat(token)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("remote_addr", r.RemoteAddr).Msg("seat token rejected")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("websocket upgrade failed")
		return
	}

	logger.Info(ctx).
		Str("game_id", seat.GameID).
		Str("player_id", string(seat.PlayerID)).
		Msg("seat connected")

	client := h.manager.Register(conn, seat)

	go client.WritePump()
	go client.ReadPump(func(seat domain.Seat, message []byte) {
		msgCtx := logger.WithRequestID(context.Background(), logger.GenerateRequestID())
		msgCtx = logger.WithFields(msgCtx, map[string]interface{}{
			"game_id":       seat.GameID,
			"player_id":     string(seat.PlayerID),
			"ws_request_id": requestID,
		})

		response, err := h.useCase.HandleMessage(msgCtx, seat, message)
		if err != nil {
			logger.Warn(msgCtx).Err(err).Msg("unroutable message")
			data, _ := json.Marshal(usecase.ErrorData{Error: err.Error()})
			response, _ = json.Marshal(usecase.Envelope{Game: service.GameCode, Command: usecase.CommandError, Data: data})
		}
		h.manager.SendToSeat(seat, response)
	})
}
