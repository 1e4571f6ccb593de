package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrokesReceived(t *testing.T) {
	tests := []struct {
		name        string
		handicap    float64
		strokeIndex int
		want        NetScore
	}{
		{"scratch", 0, 1, 0},
		{"inside the allowance", 10, 10, Strokes(1)},
		{"outside the allowance", 10, 11, 0},
		{"half stroke lands on the next index", 10.5, 11, ScoreUnit / 2},
		{"creecher halves the easy holes", 18, 14, ScoreUnit / 2},
		{"second lap", 20, 2, Strokes(2)},
		{"second lap on an easy hole", 20, 15, ScoreUnit / 2},
		{"missing stroke index", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StrokesReceived(tt.handicap, HoleInfo{Number: 1, Par: 4, StrokeIndex: tt.strokeIndex})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandicapEighths(t *testing.T) {
	assert.Equal(t, 84, HandicapEighths(10.5))
	assert.Equal(t, 0, HandicapEighths(-3))
	assert.Equal(t, 0, HandicapEighths(math.NaN()))
	assert.Equal(t, MaxHandicap*ScoreUnit, HandicapEighths(math.Inf(1)))

	assert.True(t, ValidHandicap(0))
	assert.True(t, ValidHandicap(MaxHandicap))
	assert.False(t, ValidHandicap(MaxHandicap+0.5))
	assert.False(t, ValidHandicap(math.NaN()))
}

func TestNetFromGross(t *testing.T) {
	hole := HoleInfo{Number: 14, Par: 4, StrokeIndex: 14}
	net := NetFromGross(5, 18, hole)
	assert.Equal(t, 4.5, net.Float())
	assert.Equal(t, "4.5", net.String())
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		hole, players int
		want          GamePhase
	}{
		{1, 4, PhaseRegular},
		{13, 4, PhaseVinnie},
		{16, 4, PhaseVinnie},
		{17, 4, PhaseHoepfinger},
		{13, 5, PhaseRegular},
		{16, 5, PhaseHoepfinger},
		{12, 6, PhaseRegular},
		{13, 6, PhaseHoepfinger},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhaseFor(tt.hole, tt.players), "hole %d with %d players", tt.hole, tt.players)
	}
}
