package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentWager(t *testing.T) {
	tests := []struct {
		name  string
		wager WagerState
		want  int
	}{
		{"base", WagerState{BaseWager: 1}, 1},
		{"on your own", WagerState{BaseWager: 1, OnYourOwn: true}, 2},
		{"doubled and redoubled", WagerState{BaseWager: 1, Doubled: true, Redoubled: true}, 4},
		{"float and two options", WagerState{BaseWager: 2, FloatInvoker: "p1", Options: []PlayerID{"p2", "p3"}}, 16},
		{"one toss", WagerState{BaseWager: 1, Tosses: []Toss{{Aardvark: "p5", By: TeamOne, Onto: TeamTwo}}}, 2},
		{"joe's special with double", WagerState{BaseWager: 1, JoesSpecial: 4, Doubled: true}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.wager.CurrentWager())
		})
	}
}

func TestDoubleOffers(t *testing.T) {
	w := NewWagerState(1)
	require.NoError(t, w.OfferDouble(TeamOne, TeamTwo))
	assert.ErrorIs(t, w.OfferDouble(TeamTwo, TeamOne), ErrInvalidState)
	require.NoError(t, w.AcceptDouble())
	assert.Nil(t, w.PendingDouble)
	assert.Equal(t, TeamOne, w.DoubledBy)

	assert.ErrorIs(t, w.ApplyDouble(TeamTwo), ErrAlreadyDoubled)
	assert.ErrorIs(t, w.OfferDouble(TeamOne, TeamTwo), ErrAlreadyDoubled)

	require.NoError(t, w.OfferDouble(TeamTwo, TeamOne))
	assert.True(t, w.PendingDouble.Redouble)
	require.NoError(t, w.AcceptDouble())
	assert.Equal(t, 4, w.CurrentWager())
	assert.ErrorIs(t, w.ApplyRedouble(TeamOne), ErrAlreadyDoubled)

	assert.ErrorIs(t, w.AcceptDouble(), ErrInvalidState)
}

func TestRedoubleNeedsDouble(t *testing.T) {
	w := NewWagerState(1)
	assert.ErrorIs(t, w.ApplyRedouble(TeamOne), ErrInvalidState)
}

func TestFrozenWagerRejectsChanges(t *testing.T) {
	w := NewWagerState(1)
	w.Freeze()
	p := &Player{ID: "p1"}

	assert.ErrorIs(t, w.ApplyDouble(TeamOne), ErrWagerFrozen)
	assert.ErrorIs(t, w.OfferDouble(TeamOne, TeamTwo), ErrWagerFrozen)
	assert.ErrorIs(t, w.ApplyFloat(p), ErrWagerFrozen)
	assert.ErrorIs(t, w.ApplyOption("p1"), ErrWagerFrozen)
	assert.ErrorIs(t, w.SetJoesSpecial(4), ErrWagerFrozen)
	assert.ErrorIs(t, w.RecordToss(Toss{Aardvark: "p5", By: TeamOne, Onto: TeamTwo}), ErrWagerFrozen)
	assert.False(t, p.FloatUsed)
	assert.Equal(t, 1, w.CurrentWager())
}

func TestApplyFloat(t *testing.T) {
	w := NewWagerState(1)
	p := &Player{ID: "p1"}
	require.NoError(t, w.ApplyFloat(p))
	assert.True(t, p.FloatUsed)
	assert.Equal(t, 2, w.CurrentWager())

	next := NewWagerState(1)
	assert.ErrorIs(t, next.ApplyFloat(p), ErrFloatAlreadyUsed)
}

func TestOptions(t *testing.T) {
	w := NewWagerState(1)
	require.NoError(t, w.ApplyOption("p1"))
	assert.ErrorIs(t, w.ApplyOption("p1"), ErrInvalidState)
	require.NoError(t, w.ApplyOption("p2"))
	assert.Equal(t, 4, w.CurrentWager())

	require.NoError(t, w.WithdrawOption("p1"))
	assert.Equal(t, []PlayerID{"p2"}, w.Options)
}

func TestApplyCarryOver(t *testing.T) {
	tests := []struct {
		name            string
		previousWager   int
		previousCarried int
		wantBase        int
	}{
		{"first halve doubles the final wager", 2, 0, 4},
		{"second halve keeps the carried base", 8, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWagerState(1)
			w.ApplyCarryOver(tt.previousWager, tt.previousCarried)
			assert.True(t, w.CarryOver)
			assert.Equal(t, tt.wantBase, w.BaseWager)
			assert.Equal(t, tt.wantBase, w.CarriedBase)
		})
	}
}

func TestVinnieAfterCarryOver(t *testing.T) {
	w := NewWagerState(1)
	w.ApplyCarryOver(1, 0)
	w.ApplyVinnie()
	assert.Equal(t, 4, w.CurrentWager())
	assert.Equal(t, 2, w.CarriedBase)
}

func TestSetJoesSpecial(t *testing.T) {
	w := NewWagerState(1)
	assert.ErrorIs(t, w.SetJoesSpecial(16), ErrInvalidState)
	require.NoError(t, w.SetJoesSpecial(2))
	assert.True(t, w.DoublesLocked)
	assert.ErrorIs(t, w.SetJoesSpecial(4), ErrInvalidState)
	assert.ErrorIs(t, w.OfferDouble(TeamOne, TeamTwo), ErrInvalidState)
}

func TestExposure(t *testing.T) {
	toss := func(by, onto TeamTag) Toss { return Toss{Aardvark: "x", By: by, Onto: onto} }
	tests := []struct {
		name    string
		tosses  []Toss
		players int
		side    TeamTag
		want    int
	}{
		{"no toss", nil, 5, TeamTwo, 1},
		{"tossing side pays full", []Toss{toss(TeamOne, TeamTwo)}, 5, TeamOne, 2},
		{"receiving side pays half", []Toss{toss(TeamOne, TeamTwo)}, 5, TeamTwo, 1},
		{"after a ping pong the first tosser receives", []Toss{toss(TeamOne, TeamTwo), toss(TeamTwo, TeamOne)}, 5, TeamOne, 2},
		{"after a ping pong the second tosser pays full", []Toss{toss(TeamOne, TeamTwo), toss(TeamTwo, TeamOne)}, 5, TeamTwo, 4},
		{"six man uninvolved side", []Toss{toss(TeamOne, TeamTwo)}, 6, TeamAardvark, 1},
		{"six man involved side", []Toss{toss(TeamOne, TeamTwo)}, 6, TeamTwo, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WagerState{BaseWager: 1, Tosses: tt.tosses}
			assert.Equal(t, tt.want, w.Exposure(tt.side, tt.players))
		})
	}
}
