package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
	"github.com/stuagano/wolf-goat-pig/pkg/service"
)

const replyTimeout = 10 * time.Second

// Config holds the robot configuration
type Config struct {
	Host      string
	Games     int
	SoloRatio float64
}

type envelope struct {
	Game    string          `json:"game"`
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type errorData struct {
	Request string            `json:"request"`
	Error   string            `json:"error"`
	Code    service.ErrorCode `json:"code"`
}

type createGameResponse struct {
	Game  *domain.View               `json:"game"`
	Seats map[domain.PlayerID]string `json:"seats"`
}

// seat is one player's websocket connection
type seat struct {
	player  domain.PlayerID
	conn    *websocket.Conn
	replies chan envelope
	pushes  atomic.Int64
	writeMu sync.Mutex
}

// Robot plays one full round with four seats
type Robot struct {
	ID    int
	cfg   Config
	rnd   *rand.Rand
	seats map[domain.PlayerID]*seat
	ctx   context.Context
}

var pushCommands = map[string]bool{
	"game_created":   true,
	"game_state":     true,
	"hole_settled":   true,
	"round_complete": true,
}

func main() {
	host := flag.String("host", "localhost:8081", "Gateway host address")
	games := flag.Int("games", 10, "Number of concurrent games")
	solo := flag.Float64("solo", 0.25, "Chance that a captain goes solo")
	flag.Parse()

	cfg := Config{Host: *host, Games: *games, SoloRatio: *solo}
	logger.Init(logger.Config{Level: "info", Format: "console"})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx).Int("games", cfg.Games).Str("host", cfg.Host).Msg("🤖 Starting Test Robot")

	var (
		wg     sync.WaitGroup
		failed atomic.Int64
	)
	start := time.Now()
	for i := 0; i < cfg.Games; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			r := &Robot{
				ID:  id,
				cfg: cfg,
				rnd: rand.New(rand.NewSource(time.Now().UnixNano() + int64(id))),
				ctx: logger.WithRequestID(ctx, fmt.Sprintf("robot-%d", id)),
			}
			if err := r.Run(); err != nil {
				failed.Add(1)
				logger.Error(r.ctx).Int("robot_id", id).Err(err).Msg("Robot failed")
			}
		}(i + 1)
		time.Sleep(20 * time.Millisecond)
	}
	wg.Wait()

	logger.Info(ctx).
		Int("games", cfg.Games).
		Int64("failed", failed.Load()).
		Dur("elapsed", time.Since(start)).
		Msg("🏁 Robots finished")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

// Run creates a game, seats four players and plays all eighteen holes
func (r *Robot) Run() error {
	game, err := r.createGame()
	if err != nil {
		return err
	}
	r.ctx = logger.WithGame(r.ctx, game.Game.GameID)
	defer r.closeSeats()

	r.seats = make(map[domain.PlayerID]*seat, len(game.Seats))
	for player, tok := range game.Seats {
		s, err := r.connect(player, tok)
		if err != nil {
			return fmt.Errorf("connect %s: %w", player, err)
		}
		r.seats[player] = s
	}

	view := game.Game
	for !view.Complete {
		next, err := r.playHole(view)
		if err != nil {
			return fmt.Errorf("hole %d: %w", view.Hole, err)
		}
		view = next
	}

	var total float64
	for _, pts := range view.Scores {
		total += pts
	}
	if total != 0 {
		return fmt.Errorf("final scores do not sum to zero: %v", view.Scores)
	}

	anySeat := r.seats[view.Captain]
	reply, err := anySeat.send(envelope{Game: service.GameCode, Command: "get_history"})
	if err != nil {
		return err
	}
	var holes []*domain.HoleResult
	if err := json.Unmarshal(reply.Data, &holes); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	if len(holes) != domain.HolesPerRound {
		return fmt.Errorf("history has %d holes", len(holes))
	}

	pushes := int64(0)
	for _, s := range r.seats {
		pushes += s.pushes.Load()
	}
	logger.Info(r.ctx).
		Interface("scores", view.Scores).
		Int64("pushes", pushes).
		Msg("✅ Round complete")
	return nil
}

func (r *Robot) playHole(view *domain.View) (*domain.View, error) {
	captain := view.Captain
	var err error

	if r.rnd.Float64() < r.cfg.SoloRatio {
		view, err = r.act(captain, domain.CmdGoSolo, domain.GoSolo{CaptainID: captain})
		if err != nil {
			return view, err
		}
	} else {
		partner := r.pickPartner(view)
		if _, err = r.act(captain, domain.CmdRequestPartner, domain.RequestPartner{CaptainID: captain, PartnerID: partner}); err != nil {
			return view, err
		}
		// the partner answers from their own seat
		if view, err = r.act(partner, domain.CmdAcceptPartner, domain.AcceptPartner{PartnerID: partner}); err != nil {
			return view, err
		}
	}

	for _, p := range view.Players {
		score := 3 + r.rnd.Intn(5)
		if view, err = r.act(p.ID, domain.CmdRecordNetScore, domain.RecordNetScore{PlayerID: p.ID, Score: score}); err != nil {
			return view, err
		}
	}
	if view, err = r.act(captain, domain.CmdCalculateHolePoints, nil); err != nil {
		return view, err
	}
	if view.Complete {
		return view, nil
	}
	return r.act(captain, domain.CmdNextHole, nil)
}

func (r *Robot) pickPartner(view *domain.View) domain.PlayerID {
	var candidates []domain.PlayerID
	for _, p := range view.Players {
		if p.ID != view.Captain {
			candidates = append(candidates, p.ID)
		}
	}
	return candidates[r.rnd.Intn(len(candidates))]
}

// act sends a command from a player's seat and returns the new snapshot
func (r *Robot) act(player domain.PlayerID, cmd domain.CommandType, payload interface{}) (*domain.View, error) {
	s, ok := r.seats[player]
	if !ok {
		return nil, fmt.Errorf("no seat for %s", player)
	}
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}

	reply, err := s.send(envelope{Game: service.GameCode, Command: string(cmd), Data: data})
	if err != nil {
		return nil, err
	}
	var view domain.View
	if err := json.Unmarshal(reply.Data, &view); err != nil {
		return nil, fmt.Errorf("decode %s reply: %w", cmd, err)
	}
	logger.Debug(r.ctx).Str("player_id", string(player)).Str("command", string(cmd)).Int("hole", view.Hole).Msg("command accepted")
	return &view, nil
}

func (r *Robot) createGame() (*createGameResponse, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"players": []map[string]interface{}{
			{"id": "p1", "name": "Robot 1", "handicap": r.rnd.Intn(20)},
			{"id": "p2", "name": "Robot 2", "handicap": r.rnd.Intn(20)},
			{"id": "p3", "name": "Robot 3", "handicap": r.rnd.Intn(20)},
			{"id": "p4", "name": "Robot 4", "handicap": r.rnd.Intn(20)},
		},
	})
	req, err := http.NewRequestWithContext(r.ctx, http.MethodPost, fmt.Sprintf("http://%s/api/games", r.cfg.Host), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(logger.RequestIDHeader, logger.GetRequestID(r.ctx))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create game: status %d", resp.StatusCode)
	}

	var out createGameResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode create game: %w", err)
	}
	if out.Game == nil || len(out.Seats) == 0 {
		return nil, errors.New("create game returned no seats")
	}
	return &out, nil
}

func (r *Robot) connect(player domain.PlayerID, tok string) (*seat, error) {
	u := url.URL{Scheme: "ws", Host: r.cfg.Host, Path: "/ws", RawQuery: url.Values{"token": {tok}}.Encode()}
	conn, _, err := websocket.DefaultDialer.DialContext(r.ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	s := &seat{player: player, conn: conn, replies: make(chan envelope, 16)}
	go s.readLoop()
	return s, nil
}

func (r *Robot) closeSeats() {
	for _, s := range r.seats {
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
}

func (s *seat) readLoop() {
	defer close(s.replies)
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			continue
		}
		if pushCommands[env.Command] {
			s.pushes.Add(1)
			continue
		}
		s.replies <- env
	}
}

// send writes one envelope and waits for the matching reply
func (s *seat) send(env envelope) (envelope, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.WriteJSON(env); err != nil {
		return envelope{}, err
	}
	timeout := time.After(replyTimeout)
	for {
		select {
		case reply, ok := <-s.replies:
			if !ok {
				return envelope{}, errors.New("connection closed")
			}
			if reply.Command == "error" {
				var e errorData
				_ = json.Unmarshal(reply.Data, &e)
				return envelope{}, service.ErrorFromCode(e.Code, e.Error)
			}
			if reply.Command == env.Command {
				return reply, nil
			}
		case <-timeout:
			return envelope{}, fmt.Errorf("no reply to %s", env.Command)
		}
	}
}
