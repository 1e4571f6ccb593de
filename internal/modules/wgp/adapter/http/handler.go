package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// SeatIssuer issues the token a player uses to open a game connection
type SeatIssuer interface {
	IssueSeat(gameID string, playerID domain.PlayerID) (string, error)
}

// Handler handles REST requests for games
type Handler struct {
	svc    service.WGPService
	issuer SeatIssuer
}

// NewHandler creates a new HTTP handler. issuer may be nil, in which case no seat
// tokens are returned.
func NewHandler(svc service.WGPService, issuer SeatIssuer) *Handler {
	return &Handler{svc: svc, issuer: issuer}
}

// RegisterRoutes registers the game routes on the given group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	games := router.Group("/games")
	games.POST("", h.CreateGame)
	games.GET("/:id", h.GetGame)
	games.GET("/:id/history", h.History)
	games.POST("/:id/actions", h.Dispatch)
}

// DTOs
type playerRequest struct {
	ID       domain.PlayerID `json:"id" binding:"required"`
	Name     string          `json:"name"`
	Handicap float64         `json:"handicap" binding:"gte=0,lte=54"`
}

type createGameRequest struct {
	Players []playerRequest `json:"players" binding:"required,min=4,max=6,dive"`
	Options domain.Options  `json:"options"`
}

type createGameResponse struct {
	Game  *domain.View               `json:"game"`
	Seats map[domain.PlayerID]string `json:"seats,omitempty"`
}

type actionRequest struct {
	Type    domain.CommandType `json:"type" binding:"required"`
	Payload json.RawMessage    `json:"payload"`
}

type errorResponse struct {
	Error string            `json:"error"`
	Code  service.ErrorCode `json:"code,omitempty"`
}

// CreateGame seats a new game and returns its snapshot with one seat token per player
func (h *Handler) CreateGame(c *gin.Context) {
	ctx := c.Request.Context()
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx).Err(err).Msg("CreateGame: invalid request body")
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	players := make([]domain.Player, len(req.Players))
	for i, p := range req.Players {
		name := p.Name
		if name == "" {
			name = string(p.ID)
		}
		players[i] = domain.Player{ID: p.ID, Name: name, Handicap: p.Handicap}
	}

	view, err := h.svc.CreateGame(ctx, &service.CreateGameReq{Players: players, Options: req.Options})
	if err != nil {
		h.fail(c, err)
		return
	}

	rsp := createGameResponse{Game: view}
	if h.issuer != nil {
		rsp.Seats = make(map[domain.PlayerID]string, len(players))
		for _, p := range players {
			token, err := h.issuer.IssueSeat(view.GameID, p.ID)
			if err != nil {
				logger.Error(ctx).Err(err).Str("game_id", view.GameID).Msg("CreateGame: failed to issue seat")
				c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to issue seat tokens", Code: service.CodeInternal})
				return
			}
			rsp.Seats[p.ID] = token
		}
	}
	c.JSON(http.StatusCreated, rsp)
}

// GetGame returns the current snapshot
func (h *Handler) GetGame(c *gin.Context) {
	view, err := h.svc.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// History returns the settled holes of a game
func (h *Handler) History(c *gin.Context) {
	results, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": c.Param("id"), "holes": results})
}

// Dispatch applies one game action
func (h *Handler) Dispatch(c *gin.Context) {
	ctx := c.Request.Context()
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn(ctx).Err(err).Msg("Dispatch: invalid request body")
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	view, err := h.svc.Dispatch(ctx, c.Param("id"), req.Type, req.Payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := service.CodeOf(err)
	status := StatusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context()).Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}

// StatusFor maps a game error code to an HTTP status
func StatusFor(code service.ErrorCode) int {
	switch code {
	case service.CodeOK:
		return http.StatusOK
	case service.CodeGameNotFound:
		return http.StatusNotFound
	case service.CodeIncompleteScores:
		return http.StatusUnprocessableEntity
	case service.CodeUnknownCommand, service.CodeInvalidPayload:
		return http.StatusBadRequest
	case service.CodeInvalidState,
		service.CodeInvalidComposition,
		service.CodeDuplicateToss,
		service.CodeAlreadyDoubled,
		service.CodeFloatAlreadyUsed,
		service.CodeWagerFrozen:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
