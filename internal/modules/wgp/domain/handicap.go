package domain

import (
	"math"
	"strconv"
)

// ScoreUnit is the number of NetScore units in one stroke.
const ScoreUnit = 8

// NetScore is a net score held in eighths of a stroke so half strokes stay exact.
type NetScore int

// Strokes converts whole strokes to a NetScore
func Strokes(n int) NetScore {
	return NetScore(n * ScoreUnit)
}

// Float returns the score in strokes
func (s NetScore) Float() float64 {
	return float64(s) / ScoreUnit
}

func (s NetScore) String() string {
	return strconv.FormatFloat(s.Float(), 'f', -1, 64)
}

// HoleInfo is the course data for a single hole
type HoleInfo struct {
	Number      int `json:"number" yaml:"number"`
	Par         int `json:"par" yaml:"par"`
	StrokeIndex int `json:"stroke_index" yaml:"stroke_index"`
	Yards       int `json:"yards,omitempty" yaml:"yards"`
}

// Course is the par and stroke-index table a round is played on
type Course struct {
	Name  string     `json:"name" yaml:"name"`
	Holes []HoleInfo `json:"holes" yaml:"holes"`
}

// Hole returns the info for hole number n
func (c Course) Hole(n int) (HoleInfo, bool) {
	for _, h := range c.Holes {
		if h.Number == n {
			return h, true
		}
	}
	return HoleInfo{}, false
}

// creecherIndex is the first stroke index of the six easiest holes, where strokes count half.
const creecherIndex = 13

// MaxHandicap is the highest handicap a player may be seated with
const MaxHandicap = 54

// ValidHandicap reports whether h is a finite handicap between 0 and MaxHandicap
func ValidHandicap(h float64) bool {
	return !math.IsNaN(h) && h >= 0 && h <= MaxHandicap
}

// HandicapEighths rounds a handicap to the nearest eighth of a stroke
func HandicapEighths(handicap float64) int {
	if math.IsNaN(handicap) || handicap <= 0 {
		return 0
	}
	return int(math.Round(math.Min(handicap, MaxHandicap) * ScoreUnit))
}

// StrokesReceived returns the strokes a player with the given handicap receives on a hole.
//
// Whole strokes are dealt out in stroke-index order, one lap of eighteen holes at a time.
// Any fraction of a stroke lands on the next hole in index order after the whole strokes run out.
// Strokes landing on the six easiest holes count half (the Creecher Feature).
func StrokesReceived(handicap float64, hole HoleInfo) NetScore {
	eighths := HandicapEighths(handicap)
	if eighths == 0 || hole.StrokeIndex < 1 {
		return 0
	}

	whole := eighths / ScoreUnit
	frac := eighths % ScoreUnit

	received := (whole / HolesPerRound) * ScoreUnit
	rem := whole % HolesPerRound
	if hole.StrokeIndex <= rem {
		received += ScoreUnit
	}
	if frac > 0 && hole.StrokeIndex == rem+1 {
		received += frac
	}

	if hole.StrokeIndex >= creecherIndex {
		received /= 2
	}
	return NetScore(received)
}

// NetFromGross applies handicap strokes to a gross score
func NetFromGross(gross int, handicap float64, hole HoleInfo) NetScore {
	return Strokes(gross) - StrokesReceived(handicap, hole)
}
