package domain

// PlayerID identifies a player within a game
type PlayerID string

// InvisibleAardvark is the sentinel that fills the Aardvark seat in four-man games.
// It never holds a score and never receives points.
const InvisibleAardvark PlayerID = "invisible_aardvark"

// Player represents a golfer seated in a game
type Player struct {
	ID        PlayerID `json:"id"`
	Name      string   `json:"name"`
	Handicap  float64  `json:"handicap"`
	Points    int      `json:"points"` // quarters
	FloatUsed bool     `json:"float_used"`
	SoloCount int      `json:"solo_count"`
}
