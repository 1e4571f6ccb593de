package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	MinPlayers = 4
	MaxPlayers = 6
)

// Options are per-game settings fixed at creation
type Options struct {
	DoublePointDay bool `json:"double_point_day"`
}

// AardvarkRequest is an Aardvark waiting for a team's answer
type AardvarkRequest struct {
	Aardvark PlayerID `json:"aardvark"`
	Team     TeamTag  `json:"team"`
}

// HoleState is the mutable state of the hole in play
type HoleState struct {
	Number          int                   `json:"number"`
	Order           []PlayerID            `json:"order"`
	Formation       TeamFormation         `json:"-"`
	Wager           WagerState            `json:"wager"`
	Scores          map[PlayerID]NetScore `json:"scores"`
	TeeShotsHit     bool                  `json:"tee_shots_hit"`
	AardvarkRequest *AardvarkRequest      `json:"aardvark_request,omitempty"`
	Goat            PlayerID              `json:"goat,omitempty"`
	SpotChosen      bool                  `json:"spot_chosen"`
	AutoOption      PlayerID              `json:"auto_option,omitempty"`
	Tunkarri        PlayerID              `json:"tunkarri,omitempty"`
	Settled         bool                  `json:"settled"`
}

// HoleResult is the immutable record of a settled hole
type HoleResult struct {
	Hole             int                   `json:"hole"`
	Phase            GamePhase             `json:"phase"`
	Order            []PlayerID            `json:"order"`
	Formation        TeamFormation         `json:"-"`
	Sides            []Side                `json:"sides"`
	Wager            WagerState            `json:"wager"`
	FinalWager       int                   `json:"final_wager"`
	Scores           map[PlayerID]NetScore `json:"scores"`
	PointsDelta      map[PlayerID]int      `json:"points_delta"`
	Winner           TeamTag               `json:"winner,omitempty"`
	Halved           bool                  `json:"halved"`
	Conceded         bool                  `json:"conceded"`
	PendingRemainder *ChadEntry            `json:"pending_remainder,omitempty"`
	Released         []ChadRelease         `json:"released,omitempty"`
	Message          string                `json:"message"`
}

// CarryOver reports whether the next hole inherits this hole's wager
func (h HoleResult) CarryOver() bool {
	return h.Halved
}

// RoundState is the complete state of one game; it is the persisted snapshot
type RoundState struct {
	GameID      string            `json:"game_id"`
	Players     []Player          `json:"players"`
	BaseOrder   []PlayerID        `json:"base_order"`
	Course      Course            `json:"course"`
	Options     Options           `json:"options"`
	Phase       GamePhase         `json:"phase"`
	Hole        HoleState         `json:"hole"`
	History     []HoleResult      `json:"history"`
	Chads       []ChadEntry       `json:"chads,omitempty"`
	OptionOff   map[PlayerID]bool `json:"option_off,omitempty"`
	SpotHistory []int             `json:"spot_history,omitempty"`
	Message     string            `json:"message"`
}

// NewRound seats the players in hitting order and starts hole 1
func NewRound(gameID string, players []Player, course Course, opts Options) (*RoundState, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, invalidComposition("wolf goat pig needs %d to %d players, got %d", MinPlayers, MaxPlayers, len(players))
	}
	r := &RoundState{
		GameID:  gameID,
		Course:  course,
		Options: opts,
	}
	seen := make(map[PlayerID]bool)
	for _, p := range players {
		if p.ID == "" || p.ID == InvisibleAardvark {
			return nil, invalidComposition("invalid player id %q", p.ID)
		}
		if seen[p.ID] {
			return nil, invalidComposition("player %s seated twice", p.ID)
		}
		if !ValidHandicap(p.Handicap) {
			return nil, invalidComposition("player %s handicap %v outside 0 to %d", p.ID, p.Handicap, MaxHandicap)
		}
		seen[p.ID] = true
		r.Players = append(r.Players, Player{ID: p.ID, Name: p.Name, Handicap: p.Handicap})
		r.BaseOrder = append(r.BaseOrder, p.ID)
	}
	r.startHole(1)
	r.Message = fmt.Sprintf("Hole 1: %s is captain", r.Captain())
	return r, nil
}

// Clone returns a deep copy of the state
func (r *RoundState) Clone() *RoundState {
	data, err := json.Marshal(r)
	if err != nil {
		panic(fmt.Sprintf("round state not serialisable: %v", err))
	}
	var out RoundState
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("round state not deserialisable: %v", err))
	}
	return &out
}

// Captain is the first player in this hole's hitting order
func (r *RoundState) Captain() PlayerID {
	return r.Hole.Order[0]
}

// Player returns a seated player by id
func (r *RoundState) Player(id PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// Complete reports whether hole 18 has been settled
func (r *RoundState) Complete() bool {
	return r.Hole.Number == HolesPerRound && r.Hole.Settled
}

// Standings returns cumulative points by player
func (r *RoundState) Standings() map[PlayerID]int {
	out := make(map[PlayerID]int, len(r.Players))
	for _, p := range r.Players {
		out[p.ID] = p.Points
	}
	return out
}

// BiggestLosers returns the players tied at the lowest negative total
func (r *RoundState) BiggestLosers() []PlayerID {
	low := 0
	for _, p := range r.Players {
		if p.Points < low {
			low = p.Points
		}
	}
	if low == 0 {
		return nil
	}
	var out []PlayerID
	for _, id := range r.BaseOrder {
		if r.Player(id).Points == low {
			out = append(out, id)
		}
	}
	return out
}

// Goat returns the player furthest down; ties go to the earliest in the rotation
func (r *RoundState) Goat() PlayerID {
	goat := r.BaseOrder[0]
	for _, id := range r.BaseOrder[1:] {
		if r.Player(id).Points < r.Player(goat).Points {
			goat = id
		}
	}
	return goat
}

// SoloWarnings lists four-man players who have not gone solo by hole 16
func (r *RoundState) SoloWarnings() []PlayerID {
	if len(r.Players) != 4 || r.Hole.Number < 16 {
		return nil
	}
	var out []PlayerID
	for _, p := range r.Players {
		if p.SoloCount == 0 {
			out = append(out, p.ID)
		}
	}
	return out
}

// Aardvarks are the players hitting fifth and sixth, or the sentinel in four-man games
func (r *RoundState) Aardvarks() []PlayerID {
	if len(r.Players) == 4 {
		return []PlayerID{InvisibleAardvark}
	}
	return slices.Clone(r.Hole.Order[4:])
}

func (r *RoundState) defaultBase() int {
	if r.Options.DoublePointDay {
		return 2
	}
	return 1
}

func (r *RoundState) lastResult() *HoleResult {
	if len(r.History) == 0 {
		return nil
	}
	return &r.History[len(r.History)-1]
}

func (r *RoundState) startHole(number int) {
	n := len(r.Players)
	r.Phase = PhaseFor(number, n)

	wager := NewWagerState(r.defaultBase())
	if prev := r.lastResult(); prev != nil && prev.Halved {
		wager.ApplyCarryOver(prev.FinalWager, prev.Wager.CarriedBase)
	}
	if r.Phase == PhaseVinnie {
		wager.ApplyVinnie()
	}

	r.Hole = HoleState{
		Number:    number,
		Order:     slices.Clone(r.BaseOrder),
		Formation: Pending{CaptainID: r.BaseOrder[0]},
		Wager:     wager,
		Scores:    make(map[PlayerID]NetScore),
	}
	if r.Phase == PhaseHoepfinger {
		r.Hole.Goat = r.Goat()
	}
	r.applyAutoOption()
}

func (r *RoundState) applyAutoOption() {
	captain := r.Captain()
	if r.OptionOff[captain] || !slices.Contains(r.BiggestLosers(), captain) {
		return
	}
	if slices.Contains(r.Hole.Wager.Options, captain) {
		return
	}
	r.Hole.Wager.Options = append(r.Hole.Wager.Options, captain)
	r.Hole.AutoOption = captain
}

// AdvanceHole rotates the hitting order and starts the next hole
func (r *RoundState) AdvanceHole() error {
	if !r.Hole.Settled {
		return invalidState("hole %d has not been settled", r.Hole.Number)
	}
	if r.Hole.Number >= HolesPerRound {
		return invalidState("round complete after hole %d", r.Hole.Number)
	}
	if r.Phase == PhaseHoepfinger && !r.Hole.SpotChosen {
		r.SpotHistory = append(r.SpotHistory, -1)
	}

	r.BaseOrder = append(slices.Clone(r.BaseOrder[1:]), r.BaseOrder[0])
	r.startHole(r.Hole.Number + 1)

	r.Message = fmt.Sprintf("Hole %d: %s is captain", r.Hole.Number, r.Captain())
	if r.Hole.Wager.CarryOver {
		r.Message += fmt.Sprintf("; carry-over base %d", r.Hole.Wager.BaseWager)
	}
	return nil
}

// readyForScores checks the hole has final teams and nothing awaiting an answer
func (r *RoundState) readyForScores() error {
	h := &r.Hole
	if h.Settled {
		return invalidState("hole %d already settled", h.Number)
	}
	if !IsFinal(h.Formation) {
		return invalidState("teams are not final (%s)", h.Formation.Kind())
	}
	if h.AardvarkRequest != nil {
		return invalidState("aardvark %s is waiting on %s", h.AardvarkRequest.Aardvark, h.AardvarkRequest.Team)
	}
	if h.Wager.PendingDouble != nil {
		return invalidState("double from %s is waiting for an answer", h.Wager.PendingDouble.By)
	}
	return nil
}

// RecordNetScore records a net score and freezes the wager
func (r *RoundState) RecordNetScore(id PlayerID, score NetScore) error {
	if r.Player(id) == nil {
		return invalidState("unknown player %s", id)
	}
	if err := r.readyForScores(); err != nil {
		return err
	}
	r.Hole.Scores[id] = score
	r.Hole.TeeShotsHit = true
	r.Hole.Wager.Freeze()
	return nil
}

// RecordGrossScore converts a gross score with the player's handicap strokes
func (r *RoundState) RecordGrossScore(id PlayerID, gross int) error {
	p := r.Player(id)
	if p == nil {
		return invalidState("unknown player %s", id)
	}
	if gross < 1 {
		return invalidState("gross score must be at least 1, got %d", gross)
	}
	info, ok := r.Course.Hole(r.Hole.Number)
	if !ok {
		return invalidState("no course data for hole %d", r.Hole.Number)
	}
	return r.RecordNetScore(id, NetFromGross(gross, p.Handicap, info))
}

// CalculateHolePoints settles the hole from the recorded scores
func (r *RoundState) CalculateHolePoints() (*HoleResult, error) {
	if err := r.readyForScores(); err != nil {
		return nil, err
	}
	if err := ValidateFormation(r.Hole.Formation, r.BaseOrder); err != nil {
		return nil, err
	}
	s, err := Settle(r.settlementInput(nil))
	if err != nil {
		return nil, err
	}
	return r.commit(s, false), nil
}

func (r *RoundState) settlementInput(c *Concession) SettlementInput {
	return SettlementInput{
		Hole:        r.Hole.Number,
		Players:     len(r.Players),
		Sides:       Sides(r.Hole.Formation),
		Wager:       r.Hole.Wager,
		Scores:      r.Hole.Scores,
		Standings:   r.Standings(),
		ThreeForTwo: r.threeForTwo(),
		Concession:  c,
	}
}

func (r *RoundState) threeForTwo() []PlayerID {
	var out []PlayerID
	if r.Hole.Wager.Duncan {
		out = append(out, r.Captain())
	}
	if r.Hole.Wager.Tunkarri && r.Hole.Tunkarri != "" {
		out = append(out, r.Hole.Tunkarri)
	}
	return out
}

func (r *RoundState) soloPlayer() PlayerID {
	switch f := r.Hole.Formation.(type) {
	case Solo:
		return f.SoloPlayer
	case AardvarkExtended:
		if f.SoloBase && len(f.Team1) == 1 {
			return f.Team1[0]
		}
	}
	return ""
}

func (r *RoundState) commit(s *Settlement, conceded bool) *HoleResult {
	h := &r.Hole
	for id, d := range s.Deltas {
		r.Player(id).Points += d
	}
	if s.Pending != nil {
		r.Chads = append(r.Chads, *s.Pending)
	}
	released, remaining := ReleaseChads(r.Chads, r.Standings())
	for _, rel := range released {
		r.Player(rel.Player).Points += rel.Quarters
	}
	r.Chads = remaining
	r.assertBalanced(h.Number)

	if solo := r.soloPlayer(); solo != "" {
		r.Player(solo).SoloCount++
	}

	h.Wager.Freeze()
	h.Settled = true

	result := HoleResult{
		Hole:             h.Number,
		Phase:            r.Phase,
		Order:            slices.Clone(h.Order),
		Formation:        h.Formation,
		Sides:            Sides(h.Formation),
		Wager:            h.Wager,
		FinalWager:       s.FinalWager,
		Scores:           h.Scores,
		PointsDelta:      s.Deltas,
		Winner:           s.Winner,
		Halved:           s.Halved,
		Conceded:         conceded,
		PendingRemainder: s.Pending,
		Released:         released,
		Message:          s.Message,
	}
	r.History = append(r.History, result)
	r.Message = s.Message
	if r.Complete() {
		r.Message += "; round complete"
	}
	return &r.History[len(r.History)-1]
}

// MarshalJSON writes the formation with its kind tag
func (h HoleState) MarshalJSON() ([]byte, error) {
	type alias HoleState
	return json.Marshal(struct {
		alias
		Formation formationJSON `json:"formation"`
	}{alias(h), encodeFormation(h.Formation)})
}

func (h *HoleState) UnmarshalJSON(data []byte) error {
	type alias HoleState
	aux := struct {
		*alias
		Formation formationJSON `json:"formation"`
	}{alias: (*alias)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f, err := decodeFormation(aux.Formation)
	if err != nil {
		return err
	}
	h.Formation = f
	return nil
}

// MarshalJSON writes the formation with its kind tag
func (h HoleResult) MarshalJSON() ([]byte, error) {
	type alias HoleResult
	return json.Marshal(struct {
		alias
		Formation formationJSON `json:"formation"`
	}{alias(h), encodeFormation(h.Formation)})
}

func (h *HoleResult) UnmarshalJSON(data []byte) error {
	type alias HoleResult
	aux := struct {
		*alias
		Formation formationJSON `json:"formation"`
	}{alias: (*alias)(h)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f, err := decodeFormation(aux.Formation)
	if err != nil {
		return err
	}
	h.Formation = f
	return nil
}

// assertBalanced checks the round total: points plus held remainders always net to zero
func (r *RoundState) assertBalanced(hole int) {
	total := 0
	for _, p := range r.Players {
		total += p.Points
	}
	held := HeldQuarters(r.Chads)
	if total+held != 0 {
		panic(ZeroSumViolation{Hole: hole, Sum: total, Pending: held})
	}
}
