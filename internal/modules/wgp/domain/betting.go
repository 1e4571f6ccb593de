package domain

import (
	"slices"
)

// OfferDouble offers a double from one team to another. With two teams the target
// may be left empty.
func (r *RoundState) OfferDouble(by, target TeamTag) error {
	h := &r.Hole
	if !IsFinal(h.Formation) {
		return invalidState("teams are not final (%s)", h.Formation.Kind())
	}
	sides := Sides(h.Formation)
	if target == "" && len(sides) == 2 {
		target = by.Other()
	}
	if _, ok := findSide(sides, by); !ok {
		return invalidState("no team %s on hole %d", by, h.Number)
	}
	if _, ok := findSide(sides, target); !ok || target == by {
		return invalidState("cannot offer a double from %s to %q", by, target)
	}
	return h.Wager.OfferDouble(by, target)
}

// RespondToDouble accepts the pending double, or concedes the hole at the
// wager standing before the offer.
func (r *RoundState) RespondToDouble(accept bool) (*HoleResult, error) {
	h := &r.Hole
	offer := h.Wager.PendingDouble
	if offer == nil {
		return nil, invalidState("no double offer pending")
	}
	if accept {
		return nil, h.Wager.AcceptDouble()
	}
	h.Wager.PendingDouble = nil
	s, err := Settle(r.settlementInput(&Concession{Winner: offer.By, Loser: offer.Target}))
	if err != nil {
		return nil, err
	}
	return r.commit(s, true), nil
}

// InvokeFloat doubles the hole once per round for the captain
func (r *RoundState) InvokeFloat(captain PlayerID) error {
	if captain != r.Captain() {
		return invalidState("%s is not the captain; %s is", captain, r.Captain())
	}
	return r.Hole.Wager.ApplyFloat(r.Player(captain))
}

// ApplyOption doubles the hole for one of the biggest losers
func (r *RoundState) ApplyOption(id PlayerID) error {
	if r.Player(id) == nil {
		return invalidState("unknown player %s", id)
	}
	if err := r.Hole.Wager.checkOpen(); err != nil {
		return err
	}
	if !slices.Contains(r.BiggestLosers(), id) {
		return invalidState("%s is not the biggest loser", id)
	}
	return r.Hole.Wager.ApplyOption(id)
}

// ToggleOption turns a player's automatic option on or off for the rest of the
// round, updating the current hole.
func (r *RoundState) ToggleOption(id PlayerID, enabled bool) error {
	h := &r.Hole
	if r.Player(id) == nil {
		return invalidState("unknown player %s", id)
	}
	if err := h.Wager.checkOpen(); err != nil {
		return err
	}
	if enabled {
		delete(r.OptionOff, id)
		if id == r.Captain() {
			r.applyAutoOption()
		}
		return nil
	}
	if r.OptionOff == nil {
		r.OptionOff = make(map[PlayerID]bool)
	}
	r.OptionOff[id] = true
	if h.AutoOption == id {
		h.AutoOption = ""
	}
	return h.Wager.WithdrawOption(id)
}

// SetJoesSpecial lets the Goat set the Hoepfinger base
func (r *RoundState) SetJoesSpecial(goat PlayerID, value int) error {
	h := &r.Hole
	if r.Phase != PhaseHoepfinger {
		return invalidState("joe's special is only available in hoepfinger, hole %d is %s", h.Number, r.Phase)
	}
	if goat != h.Goat {
		return invalidState("%s is not the goat; %s is", goat, h.Goat)
	}
	if h.TeeShotsHit {
		return invalidState("joe's special must be set before the tee shots")
	}
	return h.Wager.SetJoesSpecial(value)
}

// SelectHoepfingerSpot moves the Goat to a hitting position for this hole
func (r *RoundState) SelectHoepfingerSpot(goat PlayerID, position int) error {
	h := &r.Hole
	if r.Phase != PhaseHoepfinger {
		return invalidState("spot selection is only available in hoepfinger")
	}
	if goat != h.Goat {
		return invalidState("%s is not the goat; %s is", goat, h.Goat)
	}
	if h.SpotChosen {
		return invalidState("%s already chose a spot this hole", goat)
	}
	if _, ok := h.Formation.(Pending); !ok || h.TeeShotsHit {
		return invalidState("spot must be chosen before teams are formed")
	}
	if position < 0 || position >= len(h.Order) {
		return invalidState("position %d out of range", position)
	}
	if n := len(r.SpotHistory); len(r.Players) == 6 && n >= 2 &&
		r.SpotHistory[n-1] == position && r.SpotHistory[n-2] == position {
		return invalidState("position %d chosen on the last two holes", position)
	}

	if h.AutoOption != "" {
		h.Wager.Options = slices.DeleteFunc(h.Wager.Options, func(id PlayerID) bool { return id == h.AutoOption })
		h.AutoOption = ""
	}
	order := slices.DeleteFunc(slices.Clone(h.Order), func(id PlayerID) bool { return id == goat })
	h.Order = slices.Insert(order, position, goat)
	h.Formation = Pending{CaptainID: h.Order[0]}
	h.SpotChosen = true
	r.SpotHistory = append(r.SpotHistory, position)
	r.applyAutoOption()
	return nil
}

// TeeShotsComplete marks every captain's tee shot as hit, unlocking doubles
func (r *RoundState) TeeShotsComplete() error {
	h := &r.Hole
	if h.TeeShotsHit {
		return invalidState("tee shots already recorded for hole %d", h.Number)
	}
	h.TeeShotsHit = true
	h.Wager.DoublesLocked = false
	return nil
}
