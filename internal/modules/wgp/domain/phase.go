package domain

// HolesPerRound is the number of holes in a round
const HolesPerRound = 18

// GamePhase is derived from the hole number and the player count
type GamePhase string

const (
	PhaseRegular    GamePhase = "regular"
	PhaseVinnie     GamePhase = "vinnie_variation"
	PhaseHoepfinger GamePhase = "hoepfinger"
)

const vinnieStart = 13

// HoepfingerStart returns the first Hoepfinger hole for a player count
func HoepfingerStart(players int) int {
	switch players {
	case 4:
		return 17
	case 5:
		return 16
	case 6:
		return 13
	default:
		return HolesPerRound + 1
	}
}

// PhaseFor returns the phase of a hole
func PhaseFor(hole, players int) GamePhase {
	if hole >= HoepfingerStart(players) {
		return PhaseHoepfinger
	}
	if players == 4 && hole >= vinnieStart {
		return PhaseVinnie
	}
	return PhaseRegular
}
