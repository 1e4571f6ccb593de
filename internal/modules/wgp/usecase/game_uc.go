// Package usecase runs Wolf Goat Pig sessions on top of the rules engine.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

// Event commands pushed to seated players
const (
	EventGameCreated = "game_created"
	EventGameState   = "game_state"
	EventHoleSettled = "hole_settled"
	EventRoundOver   = "round_complete"
)

// GameEvent is the push sent after every accepted command
type GameEvent struct {
	Game    string       `json:"game"`
	Command string       `json:"command"`
	GameID  string       `json:"game_id"`
	Action  string       `json:"action,omitempty"`
	Data    *domain.View `json:"data"`
}

// GameUseCase serialises commands per game and persists each accepted one
type GameUseCase struct {
	games       domain.GameRepository
	history     domain.HistoryRepository
	broadcaster domain.Broadcaster
	course      domain.Course

	locks map[string]*gameLock // gameID -> session lock, dropped when nobody holds it
	mu    sync.Mutex
	bmu   sync.RWMutex
}

var _ service.WGPService = (*GameUseCase)(nil)

// NewGameUseCase creates the session use case. history may be nil when no database is configured.
func NewGameUseCase(games domain.GameRepository, history domain.HistoryRepository, course domain.Course) *GameUseCase {
	return &GameUseCase{
		games:   games,
		history: history,
		course:  course,
		locks:   make(map[string]*gameLock),
	}
}

// SetBroadcaster sets the push channel; the gateway is usually built after the use case
func (uc *GameUseCase) SetBroadcaster(b domain.Broadcaster) {
	uc.bmu.Lock()
	defer uc.bmu.Unlock()
	uc.broadcaster = b
}

type gameLock struct {
	sync.Mutex
	refs int
}

// lock takes the game's session lock and returns its release func
func (uc *GameUseCase) lock(gameID string) (unlock func()) {
	uc.mu.Lock()
	l, ok := uc.locks[gameID]
	if !ok {
		l = &gameLock{}
		uc.locks[gameID] = l
	}
	l.refs++
	uc.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		uc.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(uc.locks, gameID)
		}
		uc.mu.Unlock()
	}
}

// CreateGame seats the players and starts hole 1
func (uc *GameUseCase) CreateGame(ctx context.Context, req *service.CreateGameReq) (*domain.View, error) {
	gameID := domain.NewGameID()
	state, err := domain.NewRound(gameID, req.Players, uc.course, req.Options)
	if err != nil {
		logger.Warn(ctx).Err(err).Int("players", len(req.Players)).Msg("create game rejected")
		return nil, err
	}

	unlock := uc.lock(gameID)
	defer unlock()

	if err := uc.games.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	if uc.history != nil {
		rec, err := domain.NewGameRecord(state)
		if err == nil {
			err = uc.history.CreateGame(ctx, rec)
		}
		if err != nil {
			logger.Error(ctx).Err(err).Str("game_id", gameID).Msg("failed to record game")
		}
	}

	view := domain.NewView(state)
	logger.Info(ctx).
		Str("game_id", gameID).
		Int("players", len(state.Players)).
		Bool("double_point_day", req.Options.DoublePointDay).
		Msg("game created")
	uc.publish(EventGameCreated, "", view)
	return view, nil
}

// GetGame returns the current snapshot view
func (uc *GameUseCase) GetGame(ctx context.Context, gameID string) (*domain.View, error) {
	state, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return domain.NewView(state), nil
}

// Dispatch decodes and applies one command
func (uc *GameUseCase) Dispatch(ctx context.Context, gameID string, cmdType domain.CommandType, payload json.RawMessage) (*domain.View, error) {
	cmd, err := domain.DecodeCommand(cmdType, payload)
	if err != nil {
		return nil, err
	}
	return uc.Execute(ctx, gameID, cmd)
}

// Execute applies a command under the game's lock. A rejected command leaves the
// stored snapshot untouched.
func (uc *GameUseCase) Execute(ctx context.Context, gameID string, cmd domain.Command) (*domain.View, error) {
	ctx = logger.WithGame(ctx, gameID)
	unlock := uc.lock(gameID)
	defer unlock()

	state, err := uc.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	next, err := apply(state, cmd)
	if err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("command", string(cmd.Type())).
			Int("hole", state.Hole.Number).
			Msg("command rejected")
		return nil, err
	}

	if err := uc.games.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	settled := next.History[len(state.History):]
	uc.recordHistory(ctx, gameID, settled, !state.Complete() && next.Complete())

	view := domain.NewView(next)
	logger.Info(ctx).
		Str("command", string(cmd.Type())).
		Int("hole", next.Hole.Number).
		Int("wager", view.Wager.Current).
		Msg(next.Message)

	event := EventGameState
	switch {
	case next.Complete() && !state.Complete():
		event = EventRoundOver
	case len(settled) > 0:
		event = EventHoleSettled
	}
	uc.publish(event, string(cmd.Type()), view)
	return view, nil
}

// apply runs the command and turns a settlement imbalance into an error so one bad
// hole cannot take the process down. The snapshot is not saved in that case.
func apply(state *domain.RoundState, cmd domain.Command) (next *domain.RoundState, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, ok := rec.(domain.ZeroSumViolation)
			if !ok {
				panic(rec)
			}
			logger.ErrorGlobal().
				Str("game_id", state.GameID).
				Int("hole", v.Hole).
				Int("sum", v.Sum).
				Int("pending", v.Pending).
				Msg("settlement did not balance")
			next, err = state, fmt.Errorf("settlement aborted: %w", v)
		}
	}()
	return domain.Apply(state, cmd)
}

func (uc *GameUseCase) recordHistory(ctx context.Context, gameID string, settled []domain.HoleResult, complete bool) {
	if uc.history == nil {
		return
	}
	for i := range settled {
		rec, err := domain.NewHoleResultRecord(gameID, &settled[i])
		if err == nil {
			err = uc.history.SaveHoleResult(ctx, rec)
		}
		if err != nil {
			logger.Error(ctx).Err(err).Int("hole", settled[i].Hole).Msg("failed to record hole result")
		}
	}
	if complete {
		if err := uc.history.CompleteGame(ctx, gameID, time.Now()); err != nil {
			logger.Error(ctx).Err(err).Msg("failed to complete game")
		}
	}
}

// History returns the settled holes. Database rows are used when they cover every
// hole in the snapshot; history writes are best-effort, so a gap falls back to the snapshot.
func (uc *GameUseCase) History(ctx context.Context, gameID string) ([]*domain.HoleResult, error) {
	state, err := uc.games.Get(ctx, gameID)
	if err != nil && (uc.history == nil || !errors.Is(err, domain.ErrGameNotFound)) {
		return nil, err
	}

	if uc.history != nil {
		recs, herr := uc.history.ListHoleResults(ctx, gameID)
		if herr != nil {
			return nil, herr
		}
		if len(recs) > 0 && (state == nil || len(recs) >= len(state.History)) {
			out := make([]*domain.HoleResult, 0, len(recs))
			for _, rec := range recs {
				res, err := rec.HoleResult()
				if err != nil {
					return nil, fmt.Errorf("decode hole %d: %w", rec.Hole, err)
				}
				out = append(out, res)
			}
			return out, nil
		}
		if state == nil {
			return nil, err
		}
		if len(recs) > 0 {
			logger.Warn(ctx).Str("game_id", gameID).
				Int("recorded", len(recs)).
				Int("settled", len(state.History)).
				Msg("hole history incomplete, serving snapshot")
		}
	}

	out := make([]*domain.HoleResult, len(state.History))
	for i := range state.History {
		out[i] = &state.History[i]
	}
	return out, nil
}

func (uc *GameUseCase) publish(command, action string, view *domain.View) {
	uc.bmu.RLock()
	b := uc.broadcaster
	uc.bmu.RUnlock()
	if b == nil {
		return
	}
	b.BroadcastGame(view.GameID, &GameEvent{
		Game:    service.GameCode,
		Command: command,
		GameID:  view.GameID,
		Action:  action,
		Data:    view,
	})
}
