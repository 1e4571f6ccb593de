package domain

// View is the public game-state snapshot returned after every action
type View struct {
	GameID       string                `json:"game_id"`
	Hole         int                   `json:"hole"`
	Phase        GamePhase             `json:"phase"`
	Captain      PlayerID              `json:"captain"`
	Order        []PlayerID            `json:"hitting_order"`
	Players      []Player              `json:"players"`
	Formation    FormationView         `json:"formation"`
	Wager        WagerView             `json:"wager"`
	Scores       map[PlayerID]float64  `json:"scores"`
	Goat         PlayerID              `json:"goat,omitempty"`
	Aardvark     *AardvarkRequest      `json:"aardvark_request,omitempty"`
	Settled      bool                  `json:"settled"`
	Complete     bool                  `json:"complete"`
	HeldQuarters int                   `json:"held_quarters"`
	LastResult   *HoleResult           `json:"last_result,omitempty"`
	Warnings     []string              `json:"warnings,omitempty"`
	Message      string                `json:"message"`
}

// FormationView flattens a formation for clients
type FormationView struct {
	Kind      FormationKind  `json:"kind"`
	Captain   PlayerID       `json:"captain"`
	Requested PlayerID       `json:"requested,omitempty"`
	Sides     []Side         `json:"sides,omitempty"`
	Aardvarks []AardvarkSeat `json:"aardvarks,omitempty"`
}

// WagerView is the wager with its derived values
type WagerView struct {
	WagerState
	Current int `json:"current"`
}

// NewView builds the public snapshot of a round
func NewView(r *RoundState) *View {
	h := r.Hole
	v := &View{
		GameID:       r.GameID,
		Hole:         h.Number,
		Phase:        r.Phase,
		Captain:      r.Captain(),
		Order:        h.Order,
		Players:      r.Players,
		Wager:        WagerView{WagerState: h.Wager, Current: h.Wager.CurrentWager()},
		Scores:       make(map[PlayerID]float64, len(h.Scores)),
		Goat:         h.Goat,
		Aardvark:     h.AardvarkRequest,
		Settled:      h.Settled,
		Complete:     r.Complete(),
		HeldQuarters: HeldQuarters(r.Chads),
		Message:      r.Message,
	}
	for id, s := range h.Scores {
		v.Scores[id] = s.Float()
	}

	fv := FormationView{Kind: h.Formation.Kind(), Captain: h.Formation.Captain()}
	switch f := h.Formation.(type) {
	case PendingRequest:
		fv.Requested = f.RequestedID
	case AardvarkExtended:
		fv.Aardvarks = f.Seats
	}
	if IsFinal(h.Formation) {
		fv.Sides = Sides(h.Formation)
	}
	v.Formation = fv

	if last := r.lastResult(); last != nil {
		v.LastResult = last
	}
	for _, id := range r.SoloWarnings() {
		v.Warnings = append(v.Warnings, string(id)+" has not gone solo yet")
	}
	return v
}
