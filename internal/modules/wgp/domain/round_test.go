package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCourse() Course {
	c := Course{Name: "Test Links"}
	for i := 1; i <= HolesPerRound; i++ {
		c.Holes = append(c.Holes, HoleInfo{Number: i, Par: 4, StrokeIndex: i})
	}
	return c
}

func newTestRound(t *testing.T, n int) *RoundState {
	t.Helper()
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: PlayerID(fmt.Sprintf("p%d", i+1)), Name: fmt.Sprintf("Player %d", i+1)}
	}
	r, err := NewRound("g1", players, testCourse(), Options{})
	require.NoError(t, err)
	return r
}

func mustApply(t *testing.T, r *RoundState, cmds ...Command) *RoundState {
	t.Helper()
	for _, cmd := range cmds {
		next, err := Apply(r, cmd)
		require.NoError(t, err, "command %s", cmd.Type())
		r = next
	}
	return r
}

func scoreAll(r *RoundState, scores map[PlayerID]int) []Command {
	var cmds []Command
	for _, id := range r.Hole.Order {
		cmds = append(cmds, RecordNetScore{PlayerID: id, Score: scores[id]})
	}
	return cmds
}

func TestNewRoundValidation(t *testing.T) {
	tests := []struct {
		name    string
		players []Player
	}{
		{"too few", []Player{{ID: "a"}, {ID: "b"}, {ID: "c"}}},
		{"too many", []Player{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}, {ID: "f"}, {ID: "g"}}},
		{"duplicate", []Player{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "a"}}},
		{"sentinel id", []Player{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: InvisibleAardvark}}},
		{"nan handicap", []Player{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d", Handicap: math.NaN()}}},
		{"infinite handicap", []Player{{ID: "a"}, {ID: "b", Handicap: math.Inf(1)}, {ID: "c"}, {ID: "d"}}},
		{"handicap too high", []Player{{ID: "a", Handicap: 60}, {ID: "b"}, {ID: "c"}, {ID: "d"}}},
		{"negative handicap", []Player{{ID: "a"}, {ID: "b"}, {ID: "c", Handicap: -2}, {ID: "d"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRound("g", tt.players, Course{}, Options{})
			assert.ErrorIs(t, err, ErrInvalidTeamComposition)
		})
	}
}

func TestNewRoundDoublePointDay(t *testing.T) {
	players := []Player{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	r, err := NewRound("g", players, Course{}, Options{DoublePointDay: true})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())
}

func TestPartnersHole(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p3"},
		AcceptPartner{PartnerID: "p3"},
	)
	assert.Equal(t, Partners{CaptainID: "p1", Team1: []PlayerID{"p1", "p3"}, Team2: []PlayerID{"p2", "p4"}}, r.Hole.Formation)

	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 4, "p2": 5, "p3": 4, "p4": 5})...)
	r = mustApply(t, r, CalculateHolePoints{})

	require.Len(t, r.History, 1)
	assert.Equal(t, map[PlayerID]int{"p1": 1, "p2": -1, "p3": 1, "p4": -1}, r.History[0].PointsDelta)
	assert.Equal(t, 1, r.Player("p1").Points)
	assert.Equal(t, -1, r.Player("p4").Points)
	assert.True(t, r.Hole.Settled)
}

func TestDeclinedPartnerGoesSolo(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		DeclinePartner{PartnerID: "p2"},
	)
	assert.Equal(t, Solo{SoloPlayer: "p1", Opponents: []PlayerID{"p2", "p3", "p4"}}, r.Hole.Formation)
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())

	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 4, "p2": 5, "p3": 5, "p4": 6})...)
	r = mustApply(t, r, CalculateHolePoints{})
	assert.Equal(t, map[PlayerID]int{"p1": 6, "p2": -2, "p3": -2, "p4": -2}, r.History[0].PointsDelta)
	assert.Equal(t, 1, r.Player("p1").SoloCount)
}

func TestAdvanceHoleRotates(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r, GoSolo{CaptainID: "p1"})
	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 3, "p2": 4, "p3": 4, "p4": 4})...)
	r = mustApply(t, r, CalculateHolePoints{}, NextHole{})

	assert.Equal(t, 2, r.Hole.Number)
	assert.Equal(t, []PlayerID{"p2", "p3", "p4", "p1"}, r.BaseOrder)
	assert.Equal(t, PlayerID("p2"), r.Captain())
	assert.Equal(t, Pending{CaptainID: "p2"}, r.Hole.Formation)
	assert.Empty(t, r.Hole.Scores)
	assert.False(t, r.Hole.Settled)
}

func TestAdvanceHoleRequiresSettlement(t *testing.T) {
	r := newTestRound(t, 4)
	_, err := Apply(r, NextHole{})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRoundEndsAfterEighteen(t *testing.T) {
	r := newTestRound(t, 4)
	for hole := 1; hole <= HolesPerRound; hole++ {
		r = mustApply(t, r, GoSolo{CaptainID: r.Captain()})
		scores := map[PlayerID]int{}
		for _, id := range r.Hole.Order {
			scores[id] = 5
		}
		scores[r.Captain()] = 4
		r = mustApply(t, r, scoreAll(r, scores)...)
		r = mustApply(t, r, CalculateHolePoints{})
		if hole < HolesPerRound {
			r = mustApply(t, r, NextHole{})
		}
	}

	assert.True(t, r.Complete())
	assert.Len(t, r.History, HolesPerRound)
	_, err := Apply(r, NextHole{})
	assert.ErrorIs(t, err, ErrInvalidState)

	total := 0
	for _, p := range r.Players {
		total += p.Points
	}
	assert.Zero(t, total+HeldQuarters(r.Chads))
}

func TestRejectedCommandsLeaveStateUnchanged(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r, InvokeFloat{CaptainID: "p1"})

	tests := []struct {
		name string
		cmd  Command
		want error
	}{
		{"partner request by non captain", RequestPartner{CaptainID: "p2", PartnerID: "p3"}, ErrInvalidState},
		{"partner with self", RequestPartner{CaptainID: "p1", PartnerID: "p1"}, ErrInvalidState},
		{"partner with invisible aardvark", RequestPartner{CaptainID: "p1", PartnerID: InvisibleAardvark}, ErrInvalidTeamComposition},
		{"accept without request", AcceptPartner{PartnerID: "p2"}, ErrInvalidState},
		{"second float", InvokeFloat{CaptainID: "p1"}, ErrFloatAlreadyUsed},
		{"float by non captain", InvokeFloat{CaptainID: "p2"}, ErrInvalidState},
		{"score before teams", RecordNetScore{PlayerID: "p1", Score: 4}, ErrInvalidState},
		{"calculate before teams", CalculateHolePoints{}, ErrInvalidState},
		{"advance before settlement", NextHole{}, ErrInvalidState},
		{"ping pong without toss", PingPongAardvark{Team: TeamOne, AardvarkID: InvisibleAardvark}, ErrInvalidState},
		{"joe's special outside hoepfinger", SetJoesSpecial{PlayerID: "p1", Value: 4}, ErrInvalidState},
		{"double before teams", OfferDouble{Team: TeamOne}, ErrInvalidState},
		{"option for player who is not losing", ApplyOption{PlayerID: "p2"}, ErrInvalidState},
		{"big dick before the last hole", InvokeBigDick{PlayerID: "p1"}, ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := json.Marshal(r)
			require.NoError(t, err)

			next, err := Apply(r, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
			assert.Same(t, r, next)

			after, err := json.Marshal(r)
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestFloatOncePerRound(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r, InvokeFloat{CaptainID: "p1"})
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())
	assert.True(t, r.Player("p1").FloatUsed)

	for hole := 1; hole <= 4; hole++ {
		r = mustApply(t, r, GoSolo{CaptainID: r.Captain()})
		r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 4, "p2": 4, "p3": 4, "p4": 4})...)
		r = mustApply(t, r, CalculateHolePoints{}, NextHole{})
	}

	require.Equal(t, PlayerID("p1"), r.Captain())
	_, err := Apply(r, InvokeFloat{CaptainID: "p1"})
	assert.ErrorIs(t, err, ErrFloatAlreadyUsed)
}

func TestCarryOverDoesNotCompound(t *testing.T) {
	r := newTestRound(t, 4)
	halve := func(r *RoundState) *RoundState {
		r = mustApply(t, r, RequestPartner{CaptainID: r.Captain(), PartnerID: r.Hole.Order[1]}, AcceptPartner{PartnerID: r.Hole.Order[1]})
		r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 4, "p2": 4, "p3": 4, "p4": 4})...)
		return mustApply(t, r, CalculateHolePoints{}, NextHole{})
	}

	r = halve(r)
	assert.True(t, r.History[0].CarryOver())
	assert.True(t, r.Hole.Wager.CarryOver)
	assert.Equal(t, 2, r.Hole.Wager.BaseWager)

	r = halve(r)
	assert.Equal(t, 2, r.Hole.Wager.BaseWager, "second halve keeps the carried value")

	r = mustApply(t, r, GoSolo{CaptainID: r.Captain()})
	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 5, "p2": 5, "p3": 3, "p4": 5})...)
	r = mustApply(t, r, CalculateHolePoints{}, NextHole{})
	assert.Equal(t, 1, r.Hole.Wager.BaseWager)
	assert.False(t, r.Hole.Wager.CarryOver)
}

func TestAardvarkTossAndPingPong(t *testing.T) {
	r := newTestRound(t, 5)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		AardvarkRequestTeam{AardvarkID: "p5", Team: TeamOne},
		RespondToAardvark{Team: TeamOne, Accept: false},
	)
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())
	team, _ := TeamOf(r.Hole.Formation, "p5")
	assert.Equal(t, TeamTwo, team)

	r = mustApply(t, r, PingPongAardvark{Team: TeamTwo, AardvarkID: "p5"})
	assert.Equal(t, 4, r.Hole.Wager.CurrentWager())
	assert.Equal(t, []Side{
		{Tag: TeamOne, Members: []PlayerID{"p1", "p2", "p5"}},
		{Tag: TeamTwo, Members: []PlayerID{"p3", "p4"}},
	}, Sides(r.Hole.Formation))

	_, err := Apply(r, PingPongAardvark{Team: TeamOne, AardvarkID: "p5"})
	assert.ErrorIs(t, err, ErrDuplicateToss)
	_, err = Apply(r, PingPongAardvark{Team: TeamTwo, AardvarkID: "p5"})
	assert.ErrorIs(t, err, ErrDuplicateToss)
	assert.Equal(t, []PlayerID{"p5"}, r.Hole.Wager.TossedAardvarks())
}

func TestAardvarkJoinsOnAccept(t *testing.T) {
	r := newTestRound(t, 5)
	r = mustApply(t, r,
		GoSolo{CaptainID: "p1"},
		AardvarkRequestTeam{AardvarkID: "p5", Team: TeamOne},
		RespondToAardvark{Team: TeamOne, Accept: true},
	)
	ext, ok := r.Hole.Formation.(AardvarkExtended)
	require.True(t, ok)
	assert.True(t, ext.SoloBase)
	assert.Equal(t, []PlayerID{"p1", "p5"}, ext.Team1)
	assert.Equal(t, []PlayerID{"p2", "p3", "p4"}, ext.Team2)
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())

	_, err := Apply(r, AardvarkRequestTeam{AardvarkID: "p5", Team: TeamTwo})
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = Apply(r, AardvarkRequestTeam{AardvarkID: "p2", Team: TeamOne})
	assert.ErrorIs(t, err, ErrInvalidTeamComposition)
}

func TestSixManThirdTeam(t *testing.T) {
	r := newTestRound(t, 6)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		AardvarkRequestTeam{AardvarkID: "p5", Team: TeamAardvark},
		AardvarkRequestTeam{AardvarkID: "p6", Team: TeamAardvark},
	)
	assert.Equal(t, []Side{
		{Tag: TeamOne, Members: []PlayerID{"p1", "p2"}},
		{Tag: TeamTwo, Members: []PlayerID{"p3", "p4"}},
		{Tag: TeamAardvark, Members: []PlayerID{"p5", "p6"}},
	}, Sides(r.Hole.Formation))

	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 5, "p2": 5, "p3": 5, "p4": 6, "p5": 4, "p6": 6})...)
	r = mustApply(t, r, CalculateHolePoints{})
	assert.Equal(t, map[PlayerID]int{"p1": -1, "p2": -1, "p3": -1, "p4": -1, "p5": 2, "p6": 2}, r.History[0].PointsDelta)
}

func TestTunkarri(t *testing.T) {
	r := newTestRound(t, 5)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		InvokeTunkarri{AardvarkID: "p5"},
	)
	assert.True(t, r.Hole.Wager.Tunkarri)

	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 5, "p2": 5, "p3": 5, "p4": 6, "p5": 3})...)
	r = mustApply(t, r, CalculateHolePoints{})
	// four losers at 1 quarter each pay 3 for 2: six quarters, odd halves charged by standing order
	assert.Equal(t, 6, r.History[0].PointsDelta["p5"])
	assert.Equal(t, 0, r.Player("p1").Points+r.Player("p2").Points+r.Player("p3").Points+r.Player("p4").Points+r.Player("p5").Points)
}

func TestInvisibleAardvark(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		AardvarkRequestTeam{AardvarkID: InvisibleAardvark, Team: TeamOne},
	)

	_, err := Apply(r, RespondToAardvark{Team: TeamOne, Accept: true})
	assert.ErrorIs(t, err, ErrInvalidTeamComposition)

	r = mustApply(t, r, RespondToAardvark{Team: TeamOne, Accept: false})
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())
	assert.Equal(t, []Side{
		{Tag: TeamOne, Members: []PlayerID{"p1", "p2"}},
		{Tag: TeamTwo, Members: []PlayerID{"p3", "p4"}},
	}, Sides(r.Hole.Formation))

	_, err = Apply(r, PingPongAardvark{Team: TeamTwo, AardvarkID: InvisibleAardvark})
	assert.ErrorIs(t, err, ErrInvalidTeamComposition)

	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 4, "p2": 5, "p3": 5, "p4": 5})...)
	r = mustApply(t, r, CalculateHolePoints{})
	assert.Equal(t, map[PlayerID]int{"p1": 1, "p2": 1, "p3": -1, "p4": -1}, r.History[0].PointsDelta)
	assert.NotContains(t, r.History[0].PointsDelta, InvisibleAardvark)
}

func TestDeclinedDoubleConcedes(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		OfferDouble{Team: TeamOne},
	)
	_, err := Apply(r, OfferDouble{Team: TeamTwo})
	assert.ErrorIs(t, err, ErrInvalidState)

	r = mustApply(t, r, DeclineDouble{})
	assert.True(t, r.Hole.Settled)
	assert.True(t, r.History[0].Conceded)
	assert.Equal(t, map[PlayerID]int{"p1": 1, "p2": 1, "p3": -1, "p4": -1}, r.History[0].PointsDelta)
}

func TestDoubleAndRedouble(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		OfferDouble{Team: TeamOne},
		AcceptDouble{},
	)
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())

	_, err := Apply(r, OfferDouble{Team: TeamOne})
	assert.ErrorIs(t, err, ErrAlreadyDoubled)

	r = mustApply(t, r, OfferDouble{Team: TeamTwo}, AcceptDouble{})
	assert.Equal(t, 4, r.Hole.Wager.CurrentWager())

	_, err = Apply(r, OfferDouble{Team: TeamOne})
	assert.ErrorIs(t, err, ErrAlreadyDoubled)
}

func TestWagerFrozenAfterScores(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		RecordNetScore{PlayerID: "p1", Score: 4},
	)
	for _, cmd := range []Command{
		OfferDouble{Team: TeamOne},
		InvokeFloat{CaptainID: "p1"},
		ToggleOption{PlayerID: "p1", Enabled: false},
		AardvarkRequestTeam{AardvarkID: InvisibleAardvark, Team: TeamTwo},
	} {
		_, err := Apply(r, cmd)
		assert.ErrorIs(t, err, ErrWagerFrozen, "command %s", cmd.Type())
	}
}

func TestIncompleteScoresRejected(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r, GoSolo{CaptainID: "p1"}, RecordNetScore{PlayerID: "p1", Score: 4})
	_, err := Apply(r, CalculateHolePoints{})
	assert.ErrorIs(t, err, ErrIncompleteScores)
}

func TestHangingChadReleasedWhenTieBreaks(t *testing.T) {
	r := newTestRound(t, 5)

	// hole 1: three winners split two quarters while all level, so both are held
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
		AardvarkRequestTeam{AardvarkID: "p5", Team: TeamOne},
		RespondToAardvark{Team: TeamOne, Accept: true},
	)
	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 4, "p2": 4, "p5": 4, "p3": 5, "p4": 5})...)
	r = mustApply(t, r, CalculateHolePoints{}, NextHole{})
	require.Equal(t, []ChadEntry{{Hole: 1, Players: []PlayerID{"p1", "p2", "p5"}, Quarters: 2}}, r.Chads)

	// hole 2: p2 and p3 lose to p4, p5, p1; p2 drops below p1 and p5
	r = mustApply(t, r,
		RequestPartner{CaptainID: "p2", PartnerID: "p3"},
		AcceptPartner{PartnerID: "p3"},
	)
	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p2": 5, "p3": 5, "p4": 4, "p5": 5, "p1": 5})...)
	r = mustApply(t, r, CalculateHolePoints{})

	assert.Empty(t, r.Chads)
	assert.Equal(t, []ChadRelease{{FromHole: 1, Player: "p2", Quarters: 2}}, r.History[1].Released)
	assert.Equal(t, map[PlayerID]int{"p1": 0, "p2": 1, "p3": -2, "p4": 1, "p5": 0}, r.Standings())
}

func TestVinnieAndHoepfingerPhases(t *testing.T) {
	r := newTestRound(t, 4)
	r.startHole(13)
	assert.Equal(t, PhaseVinnie, r.Phase)
	assert.Equal(t, 2, r.Hole.Wager.BaseWager)

	r.startHole(17)
	assert.Equal(t, PhaseHoepfinger, r.Phase)
	assert.Equal(t, 1, r.Hole.Wager.BaseWager)

	r5 := newTestRound(t, 5)
	r5.startHole(13)
	assert.Equal(t, PhaseRegular, r5.Phase)

	assert.Equal(t, 17, HoepfingerStart(4))
	assert.Equal(t, 16, HoepfingerStart(5))
	assert.Equal(t, 13, HoepfingerStart(6))
}

func TestJoesSpecial(t *testing.T) {
	r := newTestRound(t, 4)
	r.Player("p3").Points = -4
	r.Player("p1").Points = 4
	r.startHole(17)
	require.Equal(t, PlayerID("p3"), r.Hole.Goat)

	_, err := Apply(r, SetJoesSpecial{PlayerID: "p1", Value: 4})
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = Apply(r, SetJoesSpecial{PlayerID: "p3", Value: 3})
	assert.ErrorIs(t, err, ErrInvalidState)

	r = mustApply(t, r,
		SetJoesSpecial{PlayerID: "p3", Value: 4},
		RequestPartner{CaptainID: "p1", PartnerID: "p2"},
		AcceptPartner{PartnerID: "p2"},
	)
	assert.Equal(t, 4, r.Hole.Wager.CurrentWager())

	_, err = Apply(r, OfferDouble{Team: TeamTwo})
	assert.ErrorIs(t, err, ErrInvalidState)

	r = mustApply(t, r, TeeShotsComplete{}, OfferDouble{Team: TeamTwo}, AcceptDouble{})
	assert.Equal(t, 8, r.Hole.Wager.CurrentWager())
}

func TestJoesSpecialNaturalValueWins(t *testing.T) {
	tests := []struct {
		base, joes, want int
	}{
		{base: 1, joes: 8, want: 8},
		{base: 8, joes: 2, want: 2},
		{base: 16, joes: 2, want: 16},
	}
	for _, tt := range tests {
		w := NewWagerState(tt.base)
		require.NoError(t, w.SetJoesSpecial(tt.joes))
		assert.Equal(t, tt.want, w.CurrentWager(), "base %d joe's %d", tt.base, tt.joes)
	}
}

func TestHoepfingerSpotSelection(t *testing.T) {
	r := newTestRound(t, 4)
	r.Player("p3").Points = -2
	r.Player("p1").Points = 2
	r.startHole(17)

	_, err := Apply(r, SelectHoepfingerSpot{PlayerID: "p1", Position: 0})
	assert.ErrorIs(t, err, ErrInvalidState)

	r = mustApply(t, r, SelectHoepfingerSpot{PlayerID: "p3", Position: 0})
	assert.Equal(t, []PlayerID{"p3", "p1", "p2", "p4"}, r.Hole.Order)
	assert.Equal(t, PlayerID("p3"), r.Captain())
	assert.Equal(t, Pending{CaptainID: "p3"}, r.Hole.Formation)
	assert.Equal(t, []PlayerID{"p3"}, r.Hole.Wager.Options, "the goat captain gets the option")

	_, err = Apply(r, SelectHoepfingerSpot{PlayerID: "p3", Position: 2})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSixManSpotNotThreeTimesRunning(t *testing.T) {
	r := newTestRound(t, 6)
	r.startHole(15)
	r.SpotHistory = []int{2, 2}
	goat := r.Hole.Goat

	_, err := Apply(r, SelectHoepfingerSpot{PlayerID: goat, Position: 2})
	assert.ErrorIs(t, err, ErrInvalidState)

	r = mustApply(t, r, SelectHoepfingerSpot{PlayerID: goat, Position: 1})
	assert.Equal(t, goat, r.Hole.Order[1])
	assert.Equal(t, []int{2, 2, 1}, r.SpotHistory)
}

func TestAutoOptionAndToggle(t *testing.T) {
	r := newTestRound(t, 4)
	r.Player("p1").Points = -3
	r.Player("p2").Points = 3
	r.startHole(2)

	assert.Equal(t, []PlayerID{"p1"}, r.Hole.Wager.Options)
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())

	r = mustApply(t, r, ToggleOption{PlayerID: "p1", Enabled: false})
	assert.Empty(t, r.Hole.Wager.Options)
	assert.Equal(t, 1, r.Hole.Wager.CurrentWager())
	assert.True(t, r.OptionOff["p1"])

	r = mustApply(t, r, ToggleOption{PlayerID: "p1", Enabled: true})
	assert.Equal(t, 2, r.Hole.Wager.CurrentWager())
}

func TestSoloWarnings(t *testing.T) {
	r := newTestRound(t, 4)
	r.Player("p2").SoloCount = 1
	r.startHole(15)
	assert.Empty(t, r.SoloWarnings())

	r.startHole(16)
	assert.Equal(t, []PlayerID{"p1", "p3", "p4"}, r.SoloWarnings())
	assert.Len(t, NewView(r).Warnings, 3)
}

func TestBigDick(t *testing.T) {
	r := newTestRound(t, 4)
	r.Player("p2").Points = 6
	r.Player("p1").Points = -6
	r.startHole(18)

	_, err := Apply(r, InvokeBigDick{PlayerID: "p1"})
	assert.ErrorIs(t, err, ErrInvalidState)

	require.Equal(t, []PlayerID{"p1"}, r.Hole.Wager.Options)

	r = mustApply(t, r, InvokeBigDick{PlayerID: "p2"})
	assert.Empty(t, r.Hole.Wager.Options)
	assert.Equal(t, Solo{SoloPlayer: "p2", Opponents: []PlayerID{"p1", "p3", "p4"}}, r.Hole.Formation)
	assert.Equal(t, 6, r.Hole.Wager.CurrentWager())
}

func TestRecordGrossScoreUsesHandicap(t *testing.T) {
	players := []Player{{ID: "a", Handicap: 1}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	r, err := NewRound("g", players, testCourse(), Options{})
	require.NoError(t, err)

	r = mustApply(t, r, GoSolo{CaptainID: "a"}, RecordGrossScore{PlayerID: "a", Gross: 5})
	assert.Equal(t, Strokes(4), r.Hole.Scores["a"])

	_, err = Apply(r, RecordGrossScore{PlayerID: "b", Gross: 0})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSnapshotSurvivesJSON(t *testing.T) {
	r := newTestRound(t, 5)
	r = mustApply(t, r,
		GoSolo{CaptainID: "p1"},
		AardvarkRequestTeam{AardvarkID: "p5", Team: TeamOne},
		RespondToAardvark{Team: TeamOne, Accept: false},
	)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var back RoundState
	require.NoError(t, json.Unmarshal(data, &back))

	assert.Equal(t, r.Hole.Formation, back.Hole.Formation)
	assert.Equal(t, r.Hole.Wager, back.Hole.Wager)
	assert.Equal(t, r.BaseOrder, back.BaseOrder)
}

func TestSettlementRejectsUnbalancedRound(t *testing.T) {
	r := newTestRound(t, 4)
	r = mustApply(t, r, GoSolo{CaptainID: "p1"})
	r = mustApply(t, r, scoreAll(r, map[PlayerID]int{"p1": 5, "p2": 4, "p3": 5, "p4": 5})...)
	r.Chads = []ChadEntry{{Hole: 1, Players: []PlayerID{"p3", "p4"}, Quarters: 3}}

	assert.PanicsWithValue(t, ZeroSumViolation{Hole: 1, Sum: 0, Pending: 3}, func() {
		_, _ = Apply(r, CalculateHolePoints{})
	})
}
