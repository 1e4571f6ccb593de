package domain

import (
	"fmt"
	"slices"
)

// Toss records an Aardvark being forced from one team onto another
type Toss struct {
	Aardvark PlayerID `json:"aardvark"`
	By       TeamTag  `json:"by"`
	Onto     TeamTag  `json:"onto"`
}

// DoubleOffer is a double waiting for the target team's answer
type DoubleOffer struct {
	By       TeamTag `json:"by"`
	Target   TeamTag `json:"target"`
	Redouble bool    `json:"redouble"`
}

// WagerState is the multiplier chain of a single hole, in quarters
type WagerState struct {
	BaseWager     int          `json:"base_wager"`
	CarriedBase   int          `json:"carried_base,omitempty"` // value a halved hole carried in, before Vinnie
	CarryOver     bool         `json:"carry_over"`
	Vinnie        bool         `json:"vinnie"`
	JoesSpecial   int          `json:"joes_special,omitempty"`
	OnYourOwn     bool         `json:"on_your_own"`
	Doubled       bool         `json:"doubled"`
	Redoubled     bool         `json:"redoubled"`
	DoubledBy     TeamTag      `json:"doubled_by,omitempty"`
	FloatInvoker  PlayerID     `json:"float_invoked_by,omitempty"`
	Options       []PlayerID   `json:"options,omitempty"`
	Duncan        bool         `json:"duncan"`
	Tunkarri      bool         `json:"tunkarri"`
	BigDick       bool         `json:"big_dick"`
	Tosses        []Toss       `json:"tosses,omitempty"`
	DoublesLocked bool         `json:"doubles_locked"`
	Frozen        bool         `json:"frozen"`
	PendingDouble *DoubleOffer `json:"pending_double,omitempty"`
}

// joesSpecialCap is the largest Joe's Special value; a natural base above it wins
const joesSpecialCap = 8

// NewWagerState returns the per-hole default wager
func NewWagerState(base int) WagerState {
	return WagerState{BaseWager: base}
}

// EffectiveBase is the base after any Joe's Special override
func (w WagerState) EffectiveBase() int {
	if w.JoesSpecial > 0 && w.BaseWager <= joesSpecialCap {
		return w.JoesSpecial
	}
	return w.BaseWager
}

func (w WagerState) multiplier() int {
	m := 1
	if w.OnYourOwn {
		m *= 2
	}
	if w.Doubled {
		m *= 2
	}
	if w.Redoubled {
		m *= 2
	}
	if w.FloatInvoker != "" {
		m *= 2
	}
	for range w.Options {
		m *= 2
	}
	return m
}

// UntossedWager is the wager before any Aardvark toss doubling
func (w WagerState) UntossedWager() int {
	return w.EffectiveBase() * w.multiplier()
}

// CurrentWager is the base times every active multiplier
func (w WagerState) CurrentWager() int {
	return w.UntossedWager() << len(w.Tosses)
}

// ThreeForTwo reports whether the solo payout ratio is 3:2
func (w WagerState) ThreeForTwo() bool {
	return w.Duncan || w.Tunkarri
}

// Exposure is what each losing player of a side pays.
//
// In four and five man games the side that received the most recent toss risks one
// doubling less than the side that tossed. In six man games a toss only doubles the
// stake of the two teams it involved.
func (w WagerState) Exposure(side TeamTag, players int) int {
	if len(w.Tosses) == 0 {
		return w.CurrentWager()
	}
	if players >= 6 {
		exposure := w.UntossedWager()
		for _, t := range w.Tosses {
			if t.By == side || t.Onto == side {
				exposure *= 2
			}
		}
		return exposure
	}
	full := w.CurrentWager()
	if w.Tosses[len(w.Tosses)-1].Onto == side {
		return full / 2
	}
	return full
}

// TossedAardvarks returns the Aardvarks that have been tossed this hole
func (w WagerState) TossedAardvarks() []PlayerID {
	var ids []PlayerID
	for _, t := range w.Tosses {
		if !slices.Contains(ids, t.Aardvark) {
			ids = append(ids, t.Aardvark)
		}
	}
	return ids
}

func (w WagerState) tossesOf(id PlayerID) []Toss {
	var out []Toss
	for _, t := range w.Tosses {
		if t.Aardvark == id {
			out = append(out, t)
		}
	}
	return out
}

func (w *WagerState) checkOpen() error {
	if w.Frozen {
		return fmt.Errorf("%w: scores have been entered", ErrWagerFrozen)
	}
	return nil
}

// ApplyDouble doubles the hole once
func (w *WagerState) ApplyDouble(by TeamTag) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.Doubled {
		return fmt.Errorf("%w: doubled by %s", ErrAlreadyDoubled, w.DoubledBy)
	}
	w.Doubled = true
	w.DoubledBy = by
	return nil
}

// ApplyRedouble doubles an already doubled hole once more
func (w *WagerState) ApplyRedouble(by TeamTag) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if !w.Doubled {
		return invalidState("cannot redouble a hole that has not been doubled")
	}
	if w.Redoubled {
		return fmt.Errorf("%w: hole already redoubled", ErrAlreadyDoubled)
	}
	w.Redoubled = true
	w.DoubledBy = by
	return nil
}

// OfferDouble records a double offer from one team to another
func (w *WagerState) OfferDouble(by, target TeamTag) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.DoublesLocked {
		return invalidState("doubles are locked until every captain has hit a tee shot")
	}
	if w.PendingDouble != nil {
		return invalidState("a double from %s is waiting for an answer", w.PendingDouble.By)
	}
	if w.Redoubled {
		return fmt.Errorf("%w: hole already redoubled", ErrAlreadyDoubled)
	}
	if w.Doubled && w.DoubledBy == by {
		return fmt.Errorf("%w: %s already doubled; only the other side may redouble", ErrAlreadyDoubled, by)
	}
	w.PendingDouble = &DoubleOffer{By: by, Target: target, Redouble: w.Doubled}
	return nil
}

// AcceptDouble applies the pending offer
func (w *WagerState) AcceptDouble() error {
	offer := w.PendingDouble
	if offer == nil {
		return invalidState("no double offer pending")
	}
	var err error
	if offer.Redouble {
		err = w.ApplyRedouble(offer.By)
	} else {
		err = w.ApplyDouble(offer.By)
	}
	if err != nil {
		return err
	}
	w.PendingDouble = nil
	return nil
}

// ApplyFloat doubles the hole and burns the captain's float for the round
func (w *WagerState) ApplyFloat(captain *Player) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if captain.FloatUsed {
		return fmt.Errorf("%w: player %s", ErrFloatAlreadyUsed, captain.ID)
	}
	captain.FloatUsed = true
	w.FloatInvoker = captain.ID
	return nil
}

// ApplyOption doubles the hole for a trailing player
func (w *WagerState) ApplyOption(id PlayerID) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if slices.Contains(w.Options, id) {
		return invalidState("option already invoked by %s", id)
	}
	w.Options = append(w.Options, id)
	return nil
}

// WithdrawOption removes an option invocation
func (w *WagerState) WithdrawOption(id PlayerID) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.Options = slices.DeleteFunc(w.Options, func(p PlayerID) bool { return p == id })
	return nil
}

// ApplyCarryOver sets the base after a halved hole. A hole that was itself carried
// passes its carried value on unchanged.
func (w *WagerState) ApplyCarryOver(previousWager int, previousCarried int) {
	if previousCarried > 0 {
		w.BaseWager = previousCarried
	} else {
		w.BaseWager = previousWager * 2
	}
	w.CarriedBase = w.BaseWager
	w.CarryOver = true
}

// ApplyVinnie doubles the base for Vinnie's Variation
func (w *WagerState) ApplyVinnie() {
	w.BaseWager *= 2
	w.Vinnie = true
}

// SetJoesSpecial overrides the base during Hoepfinger and locks doubles
func (w *WagerState) SetJoesSpecial(value int) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	switch value {
	case 2, 4, 8:
	default:
		return invalidState("joe's special must be 2, 4 or 8, got %d", value)
	}
	if w.JoesSpecial > 0 {
		return invalidState("joe's special already set to %d", w.JoesSpecial)
	}
	w.JoesSpecial = value
	w.DoublesLocked = true
	return nil
}

// RecordToss doubles the hole for an Aardvark toss
func (w *WagerState) RecordToss(t Toss) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	w.Tosses = append(w.Tosses, t)
	return nil
}

// Freeze closes the wager to further betting
func (w *WagerState) Freeze() {
	w.Frozen = true
}
