package domain

import (
	"fmt"
	"slices"
)

// RequestPartnership asks a player to partner the captain
func (r *RoundState) RequestPartnership(captain, partner PlayerID) error {
	h := &r.Hole
	switch f := h.Formation.(type) {
	case PendingRequest:
		return invalidState("request to %s is already pending", f.RequestedID)
	case Pending:
		if captain != f.CaptainID {
			return invalidState("%s is not the captain; %s is", captain, f.CaptainID)
		}
	default:
		return invalidState("teams already final (%s)", f.Kind())
	}
	if partner == captain {
		return invalidState("captain %s cannot partner themselves", captain)
	}
	if partner == InvisibleAardvark {
		return invalidComposition("captain may not partner the invisible aardvark")
	}
	if r.Player(partner) == nil {
		return invalidComposition("unknown player %s", partner)
	}
	h.Formation = PendingRequest{CaptainID: captain, RequestedID: partner}
	return nil
}

// RespondToPartnership answers a pending request. A refusal leaves the captain
// on their own and doubles the wager.
func (r *RoundState) RespondToPartnership(partner PlayerID, accept bool) error {
	h := &r.Hole
	req, ok := h.Formation.(PendingRequest)
	if !ok || req.RequestedID != partner {
		return invalidState("no partnership request pending for %s", partner)
	}
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	if accept {
		team1 := []PlayerID{req.CaptainID, partner}
		h.Formation = Partners{
			CaptainID: req.CaptainID,
			Team1:     team1,
			Team2:     r.others(team1...),
		}
		return nil
	}
	h.Formation = Solo{SoloPlayer: req.CaptainID, Opponents: r.others(req.CaptainID)}
	h.Wager.OnYourOwn = true
	return nil
}

// DeclareSolo puts the captain alone against the field. A Duncan is a solo
// declared before the tee shot and pays 3 for 2.
func (r *RoundState) DeclareSolo(captain PlayerID, duncan bool) error {
	h := &r.Hole
	switch f := h.Formation.(type) {
	case Pending:
		if captain != f.CaptainID {
			return invalidState("%s is not the captain; %s is", captain, f.CaptainID)
		}
	case PendingRequest:
		return invalidState("request to %s is pending", f.RequestedID)
	default:
		return invalidState("teams already final (%s)", f.Kind())
	}
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	if duncan && h.TeeShotsHit {
		return invalidState("a duncan must be called before the tee shot")
	}
	h.Formation = Solo{SoloPlayer: captain, Opponents: r.others(captain)}
	h.Wager.OnYourOwn = true
	h.Wager.Duncan = duncan
	return nil
}

// InvokeBigDick lets the clear points leader take on the whole group on the last hole,
// risking their entire total.
func (r *RoundState) InvokeBigDick(id PlayerID) error {
	h := &r.Hole
	if h.Number != HolesPerRound {
		return invalidState("the big dick is only available on hole %d", HolesPerRound)
	}
	if _, ok := h.Formation.(Pending); !ok {
		return invalidState("teams already chosen (%s)", h.Formation.Kind())
	}
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	if h.Wager.JoesSpecial > 0 || h.Wager.FloatInvoker != "" {
		return invalidState("the hole wager is already set")
	}
	p := r.Player(id)
	if p == nil {
		return invalidState("unknown player %s", id)
	}
	for _, other := range r.Players {
		if other.ID != id && other.Points >= p.Points {
			return invalidState("%s is not the outright leader", id)
		}
	}
	if p.Points <= 0 {
		return invalidState("%s has no points to risk", id)
	}
	h.Formation = Solo{SoloPlayer: id, Opponents: r.others(id)}
	h.Wager.BigDick = true
	h.Wager.BaseWager = p.Points
	h.Wager.Options = nil
	h.AutoOption = ""
	return nil
}

// AardvarkRequestTeam asks to join a team. Asking for the aardvark team forms or joins
// the third team directly.
func (r *RoundState) AardvarkRequestTeam(aardvark PlayerID, team TeamTag) error {
	h := &r.Hole
	if err := r.checkAardvark(aardvark); err != nil {
		return err
	}
	if h.AardvarkRequest != nil {
		return invalidState("aardvark %s is already waiting on %s", h.AardvarkRequest.Aardvark, h.AardvarkRequest.Team)
	}
	if !team.valid() {
		return invalidComposition("unknown team %q", team)
	}
	if team == TeamAardvark {
		if aardvark == InvisibleAardvark {
			return invalidComposition("the invisible aardvark cannot form its own team")
		}
		if h.Tunkarri != "" {
			return invalidComposition("%s is playing a tunkarri alone", h.Tunkarri)
		}
		return r.placeAardvark(aardvark, TeamAardvark, false)
	}
	h.AardvarkRequest = &AardvarkRequest{Aardvark: aardvark, Team: team}
	return nil
}

// RespondToAardvark answers a pending Aardvark request. A refusal tosses the Aardvark
// onto the other team and doubles the wager.
func (r *RoundState) RespondToAardvark(team TeamTag, accept bool) error {
	h := &r.Hole
	req := h.AardvarkRequest
	if req == nil || req.Team != team {
		return invalidState("no aardvark request pending for %s", team)
	}
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	if accept {
		if err := r.placeAardvark(req.Aardvark, team, false); err != nil {
			return err
		}
		h.AardvarkRequest = nil
		return nil
	}
	onto := team.Other()
	if err := r.placeAardvark(req.Aardvark, onto, true); err != nil {
		return err
	}
	if err := h.Wager.RecordToss(Toss{Aardvark: req.Aardvark, By: team, Onto: onto}); err != nil {
		return err
	}
	h.AardvarkRequest = nil
	return nil
}

// PingPongAardvark lets the team that received a tossed Aardvark toss it back,
// doubling again. An Aardvark can be ping-ponged once.
func (r *RoundState) PingPongAardvark(team TeamTag, aardvark PlayerID) error {
	h := &r.Hole
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	tosses := h.Wager.tossesOf(aardvark)
	if len(tosses) == 0 {
		return invalidState("aardvark %s has not been tossed", aardvark)
	}
	last := tosses[len(tosses)-1]
	if len(tosses) > 1 || last.By == team {
		return fmt.Errorf("%w: %s was already tossed by %s", ErrDuplicateToss, aardvark, last.By)
	}
	if last.Onto != team {
		return invalidState("aardvark %s is on %s, not %s", aardvark, last.Onto, team)
	}
	onto := last.By
	if err := r.placeAardvark(aardvark, onto, true); err != nil {
		return err
	}
	return h.Wager.RecordToss(Toss{Aardvark: aardvark, By: team, Onto: onto})
}

// InvokeTunkarri sends an Aardvark out alone before the tee shot at 3 for 2
func (r *RoundState) InvokeTunkarri(aardvark PlayerID) error {
	h := &r.Hole
	if aardvark == InvisibleAardvark || len(r.Players) == 4 {
		return invalidComposition("tunkarri needs a real aardvark")
	}
	if err := r.checkAardvark(aardvark); err != nil {
		return err
	}
	if h.TeeShotsHit {
		return invalidState("a tunkarri must be called before the tee shot")
	}
	if h.AardvarkRequest != nil {
		return invalidState("aardvark %s is waiting on %s", h.AardvarkRequest.Aardvark, h.AardvarkRequest.Team)
	}
	if ext, ok := h.Formation.(AardvarkExtended); ok && len(ext.Team3) > 0 {
		return invalidComposition("tunkarri requires playing alone; aardvark team already has %v", ext.Team3)
	}
	if err := r.placeAardvark(aardvark, TeamAardvark, false); err != nil {
		return err
	}
	h.Wager.Tunkarri = true
	h.Tunkarri = aardvark
	return nil
}

// checkAardvark verifies an Aardvark may act on the current hole
func (r *RoundState) checkAardvark(aardvark PlayerID) error {
	h := &r.Hole
	if !IsFinal(h.Formation) {
		return invalidState("captain has not finalized teams (%s)", h.Formation.Kind())
	}
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	if !slices.Contains(r.Aardvarks(), aardvark) {
		return invalidComposition("%s is not an aardvark on hole %d", aardvark, h.Number)
	}
	if ext, ok := h.Formation.(AardvarkExtended); ok {
		for _, s := range ext.Seats {
			if s.ID == aardvark {
				return invalidState("aardvark %s already placed on %s", aardvark, s.Team)
			}
		}
	}
	// an unseated aardvark on team1 was picked as the captain's partner
	var team1 []PlayerID
	switch f := h.Formation.(type) {
	case Partners:
		team1 = f.Team1
	case AardvarkExtended:
		team1 = f.Team1
	}
	if slices.Contains(team1, aardvark) {
		return invalidState("%s is partnering the captain", aardvark)
	}
	return nil
}

// placeAardvark moves an Aardvark onto a team, extending the formation
func (r *RoundState) placeAardvark(aardvark PlayerID, team TeamTag, tossed bool) error {
	h := &r.Hole
	if aardvark == InvisibleAardvark && team == TeamOne {
		return invalidComposition("the captain may not be paired with the invisible aardvark")
	}

	ext := extend(h.Formation)
	drop := func(ids []PlayerID) []PlayerID {
		return slices.DeleteFunc(ids, func(id PlayerID) bool { return id == aardvark })
	}
	ext.Team1 = drop(ext.Team1)
	ext.Team2 = drop(ext.Team2)
	ext.Team3 = drop(ext.Team3)
	if aardvark != InvisibleAardvark {
		switch team {
		case TeamOne:
			ext.Team1 = append(ext.Team1, aardvark)
		case TeamTwo:
			ext.Team2 = append(ext.Team2, aardvark)
		case TeamAardvark:
			ext.Team3 = append(ext.Team3, aardvark)
		}
	}

	seat := AardvarkSeat{ID: aardvark, Team: team, Tossed: tossed}
	placed := false
	for i := range ext.Seats {
		if ext.Seats[i].ID == aardvark {
			seat.PingPonged = ext.Seats[i].Tossed && tossed
			ext.Seats[i] = seat
			placed = true
		}
	}
	if !placed {
		ext.Seats = append(ext.Seats, seat)
	}

	if len(Sides(ext)) < 2 {
		return invalidComposition("placing %s on %s leaves a single team", aardvark, team)
	}
	h.Formation = ext
	return nil
}

func extend(f TeamFormation) AardvarkExtended {
	switch v := f.(type) {
	case Partners:
		return AardvarkExtended{CaptainID: v.CaptainID, Team1: slices.Clone(v.Team1), Team2: slices.Clone(v.Team2)}
	case Solo:
		return AardvarkExtended{CaptainID: v.SoloPlayer, SoloBase: true, Team1: []PlayerID{v.SoloPlayer}, Team2: slices.Clone(v.Opponents)}
	case AardvarkExtended:
		v.Team1 = slices.Clone(v.Team1)
		v.Team2 = slices.Clone(v.Team2)
		v.Team3 = slices.Clone(v.Team3)
		v.Seats = slices.Clone(v.Seats)
		return v
	}
	return AardvarkExtended{CaptainID: f.Captain()}
}

// others returns this hole's hitting order without the given players
func (r *RoundState) others(exclude ...PlayerID) []PlayerID {
	var out []PlayerID
	for _, id := range r.Hole.Order {
		if !slices.Contains(exclude, id) {
			out = append(out, id)
		}
	}
	return out
}
