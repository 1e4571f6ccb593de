package domain

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Concession settles a hole without scores, e.g. when a double is declined
type Concession struct {
	Winner TeamTag `json:"winner"`
	Loser  TeamTag `json:"loser"`
}

// SettlementInput is everything the settlement engine reads
type SettlementInput struct {
	Hole        int
	Players     int // seated players, drives the toss exposure rule
	Sides       []Side
	Wager       WagerState
	Scores      map[PlayerID]NetScore
	Standings   map[PlayerID]int // cumulative points before the hole
	ThreeForTwo []PlayerID       // players whose solo win pays 3:2
	Concession  *Concession
}

// Settlement is the outcome of one hole
type Settlement struct {
	Winner     TeamTag          `json:"winner,omitempty"`
	Halved     bool             `json:"halved"`
	FinalWager int              `json:"final_wager"`
	Total      int              `json:"total"`
	Deltas     map[PlayerID]int `json:"deltas"`
	Pending    *ChadEntry       `json:"pending,omitempty"`
	Message    string           `json:"message"`
}

// Settle computes the zero-sum point distribution for a hole.
// It panics with ZeroSumViolation if the distribution does not balance.
func Settle(in SettlementInput) (*Settlement, error) {
	if len(in.Sides) < 2 {
		return nil, invalidComposition("settlement needs at least two teams, got %d", len(in.Sides))
	}

	s := &Settlement{
		FinalWager: in.Wager.CurrentWager(),
		Deltas:     make(map[PlayerID]int),
	}
	for _, side := range in.Sides {
		for _, id := range side.Members {
			s.Deltas[id] = 0
		}
	}

	var winner Side
	var losers []Side
	if in.Concession != nil {
		w, ok := findSide(in.Sides, in.Concession.Winner)
		if !ok {
			return nil, invalidState("conceding to unknown team %s", in.Concession.Winner)
		}
		l, ok := findSide(in.Sides, in.Concession.Loser)
		if !ok {
			return nil, invalidState("unknown conceding team %s", in.Concession.Loser)
		}
		winner, losers = w, []Side{l}
	} else {
		if err := checkScores(in.Sides, in.Scores); err != nil {
			return nil, err
		}
		best := make([]NetScore, len(in.Sides))
		low := NetScore(0)
		for i, side := range in.Sides {
			best[i] = bestBall(side, in.Scores)
			if i == 0 || best[i] < low {
				low = best[i]
			}
		}
		var atLow []int
		for i, b := range best {
			if b == low {
				atLow = append(atLow, i)
			}
		}
		if len(atLow) > 1 {
			s.Halved = true
			s.Message = fmt.Sprintf("Hole %d halved at %s; wager of %d carries over", in.Hole, low, s.FinalWager)
			assertZeroSum(in.Hole, s)
			return s, nil
		}
		winner = in.Sides[atLow[0]]
		for i, side := range in.Sides {
			if i != atLow[0] {
				losers = append(losers, side)
			}
		}
	}
	s.Winner = winner.Tag

	threeForTwo := len(winner.Members) == 1 && slices.Contains(in.ThreeForTwo, winner.Members[0])
	payments := lossPayments(in, losers, threeForTwo)

	for id, paid := range payments {
		s.Deltas[id] -= paid
		s.Total += paid
	}

	perWinner := s.Total / len(winner.Members)
	remainder := s.Total % len(winner.Members)
	for _, id := range winner.Members {
		s.Deltas[id] += perWinner
	}

	if remainder > 0 {
		tied := lowestStanding(winner.Members, in.Standings)
		if len(tied) == 1 {
			s.Deltas[tied[0]] += remainder
		} else {
			s.Pending = &ChadEntry{Hole: in.Hole, Players: tied, Quarters: remainder}
		}
	}

	s.Message = describe(in, s, winner, threeForTwo)
	assertZeroSum(in.Hole, s)
	return s, nil
}

// lossPayments returns what each losing player pays.
// A 3:2 solo win scales the total by 3/2; odd quarters that cannot be split evenly are
// charged to the losers with the highest standings.
func lossPayments(in SettlementInput, losers []Side, threeForTwo bool) map[PlayerID]int {
	payments := make(map[PlayerID]int)
	if !threeForTwo {
		for _, side := range losers {
			exposure := in.Wager.Exposure(side.Tag, in.Players)
			for _, id := range side.Members {
				payments[id] = exposure
			}
		}
		return payments
	}

	var order []PlayerID
	halves := 0
	paid := 0
	for _, side := range losers {
		exposure := in.Wager.Exposure(side.Tag, in.Players)
		for _, id := range side.Members {
			payments[id] = exposure * 3 / 2
			paid += payments[id]
			halves += exposure * 3
			order = append(order, id)
		}
	}
	leftover := halves/2 - paid

	sort.SliceStable(order, func(i, j int) bool {
		return in.Standings[order[i]] > in.Standings[order[j]]
	})
	for i := 0; i < leftover; i++ {
		payments[order[i%len(order)]]++
	}
	return payments
}

func findSide(sides []Side, tag TeamTag) (Side, bool) {
	for _, s := range sides {
		if s.Tag == tag {
			return s, true
		}
	}
	return Side{}, false
}

func checkScores(sides []Side, scores map[PlayerID]NetScore) error {
	var missing []string
	for _, side := range sides {
		for _, id := range side.Members {
			if _, ok := scores[id]; !ok {
				missing = append(missing, string(id))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: no score for %s", ErrIncompleteScores, strings.Join(missing, ", "))
	}
	return nil
}

func bestBall(side Side, scores map[PlayerID]NetScore) NetScore {
	best := scores[side.Members[0]]
	for _, id := range side.Members[1:] {
		if sc := scores[id]; sc < best {
			best = sc
		}
	}
	return best
}

// lowestStanding returns the winners tied at the lowest cumulative total, in seat order
func lowestStanding(ids []PlayerID, standings map[PlayerID]int) []PlayerID {
	low := standings[ids[0]]
	for _, id := range ids[1:] {
		if standings[id] < low {
			low = standings[id]
		}
	}
	var tied []PlayerID
	for _, id := range ids {
		if standings[id] == low {
			tied = append(tied, id)
		}
	}
	return tied
}

func assertZeroSum(hole int, s *Settlement) {
	sum := 0
	for _, d := range s.Deltas {
		sum += d
	}
	pending := 0
	if s.Pending != nil {
		pending = s.Pending.Quarters
	}
	if sum+pending != 0 {
		panic(ZeroSumViolation{Hole: hole, Sum: sum, Pending: pending})
	}
}

func describe(in SettlementInput, s *Settlement, winner Side, threeForTwo bool) string {
	names := make([]string, len(winner.Members))
	for i, id := range winner.Members {
		names[i] = string(id)
	}
	var b strings.Builder
	if in.Concession != nil {
		fmt.Fprintf(&b, "Hole %d conceded to %s", in.Hole, strings.Join(names, " & "))
	} else {
		fmt.Fprintf(&b, "Hole %d won by %s", in.Hole, strings.Join(names, " & "))
	}
	fmt.Fprintf(&b, " for %d quarters", s.Total)
	if threeForTwo {
		b.WriteString(" at 3 for 2")
	}
	if s.Pending != nil {
		fmt.Fprintf(&b, "; %d quarter(s) held for the hanging chad", s.Pending.Quarters)
	}
	return b.String()
}
