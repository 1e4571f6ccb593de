package domain

// ChadEntry holds a Karl Marx remainder that could not be awarded because the
// lowest winners were tied (a hanging chad).
type ChadEntry struct {
	Hole     int        `json:"hole"`
	Players  []PlayerID `json:"players"`
	Quarters int        `json:"quarters"`
}

// ChadRelease is a held remainder paid out once the tie broke
type ChadRelease struct {
	FromHole int      `json:"from_hole"`
	Player   PlayerID `json:"player"`
	Quarters int      `json:"quarters"`
}

// ReleaseChads pays out every open entry whose tied players now have a unique lowest
// total. Entries are checked oldest first and each payout counts toward the standings
// used for the entries after it. standings is updated in place.
func ReleaseChads(open []ChadEntry, standings map[PlayerID]int) (released []ChadRelease, remaining []ChadEntry) {
	for _, entry := range open {
		tied := lowestStanding(entry.Players, standings)
		if len(tied) != 1 {
			remaining = append(remaining, entry)
			continue
		}
		standings[tied[0]] += entry.Quarters
		released = append(released, ChadRelease{FromHole: entry.Hole, Player: tied[0], Quarters: entry.Quarters})
	}
	return released, remaining
}

// HeldQuarters is the total of all open entries
func HeldQuarters(open []ChadEntry) int {
	total := 0
	for _, e := range open {
		total += e.Quarters
	}
	return total
}
