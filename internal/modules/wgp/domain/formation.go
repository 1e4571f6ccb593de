package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// TeamTag names a side of a finalized formation
type TeamTag string

const (
	TeamOne      TeamTag = "team1"    // captain's side, or the solo player
	TeamTwo      TeamTag = "team2"    // the other side
	TeamAardvark TeamTag = "aardvark" // third team formed by an Aardvark playing alone
)

// Other returns the opposing tag of a two-team split
func (t TeamTag) Other() TeamTag {
	switch t {
	case TeamOne:
		return TeamTwo
	case TeamTwo:
		return TeamOne
	default:
		return t
	}
}

func (t TeamTag) valid() bool {
	return t == TeamOne || t == TeamTwo || t == TeamAardvark
}

// FormationKind tags a TeamFormation variant
type FormationKind string

const (
	FormationPending        FormationKind = "pending"
	FormationPendingRequest FormationKind = "pending_request"
	FormationPartners       FormationKind = "partners"
	FormationSolo           FormationKind = "solo"
	FormationAardvark       FormationKind = "aardvark_extended"
)

// TeamFormation is the team partition of a hole.
// Only the variants declared in this package implement it.
type TeamFormation interface {
	Kind() FormationKind
	Captain() PlayerID
	isFormation()
}

// Pending is the start of every hole: a captain and no teams
type Pending struct {
	CaptainID PlayerID
}

// PendingRequest waits for the requested partner to answer
type PendingRequest struct {
	CaptainID   PlayerID
	RequestedID PlayerID
}

// Partners is a finalized two-team split; Team1 holds the captain
type Partners struct {
	CaptainID PlayerID
	Team1     []PlayerID
	Team2     []PlayerID
}

// Solo is a finalized one-against-the-rest split
type Solo struct {
	SoloPlayer PlayerID
	Opponents  []PlayerID
}

// AardvarkSeat records where an Aardvark ended up and how it got there
type AardvarkSeat struct {
	ID         PlayerID `json:"id"`
	Team       TeamTag  `json:"team"`
	Tossed     bool     `json:"tossed"`
	PingPonged bool     `json:"ping_ponged"`
}

// AardvarkExtended is a Partners or Solo split after Aardvark placement.
// Team1 and Team2 keep the meaning of the base split; Team3 is the Aardvark team.
type AardvarkExtended struct {
	CaptainID PlayerID
	SoloBase  bool
	Team1     []PlayerID
	Team2     []PlayerID
	Team3     []PlayerID
	Seats     []AardvarkSeat
}

func (f Pending) Kind() FormationKind          { return FormationPending }
func (f PendingRequest) Kind() FormationKind   { return FormationPendingRequest }
func (f Partners) Kind() FormationKind         { return FormationPartners }
func (f Solo) Kind() FormationKind             { return FormationSolo }
func (f AardvarkExtended) Kind() FormationKind { return FormationAardvark }

func (f Pending) Captain() PlayerID          { return f.CaptainID }
func (f PendingRequest) Captain() PlayerID   { return f.CaptainID }
func (f Partners) Captain() PlayerID         { return f.CaptainID }
func (f Solo) Captain() PlayerID             { return f.SoloPlayer }
func (f AardvarkExtended) Captain() PlayerID { return f.CaptainID }

func (Pending) isFormation()          {}
func (PendingRequest) isFormation()   {}
func (Partners) isFormation()         {}
func (Solo) isFormation()             {}
func (AardvarkExtended) isFormation() {}

// Side is one team of a finalized formation, real players only
type Side struct {
	Tag     TeamTag    `json:"tag"`
	Members []PlayerID `json:"members"`
}

// IsFinal reports whether teams are committed for the hole
func IsFinal(f TeamFormation) bool {
	switch f.(type) {
	case Partners, Solo, AardvarkExtended:
		return true
	default:
		return false
	}
}

// Sides flattens a finalized formation. Empty sides are dropped.
func Sides(f TeamFormation) []Side {
	var sides []Side
	add := func(tag TeamTag, members []PlayerID) {
		if len(members) > 0 {
			sides = append(sides, Side{Tag: tag, Members: slices.Clone(members)})
		}
	}
	switch v := f.(type) {
	case Partners:
		add(TeamOne, v.Team1)
		add(TeamTwo, v.Team2)
	case Solo:
		add(TeamOne, []PlayerID{v.SoloPlayer})
		add(TeamTwo, v.Opponents)
	case AardvarkExtended:
		add(TeamOne, v.Team1)
		add(TeamTwo, v.Team2)
		add(TeamAardvark, v.Team3)
	}
	return sides
}

// TeamOf returns the tag of the side holding a player
func TeamOf(f TeamFormation, id PlayerID) (TeamTag, bool) {
	if ext, ok := f.(AardvarkExtended); ok {
		for _, s := range ext.Seats {
			if s.ID == id {
				return s.Team, true
			}
		}
	}
	for _, s := range Sides(f) {
		if slices.Contains(s.Members, id) {
			return s.Tag, true
		}
	}
	return "", false
}

// ValidateFormation checks a finalized formation against the active players of the hole
func ValidateFormation(f TeamFormation, active []PlayerID) error {
	if !IsFinal(f) {
		return invalidState("teams are not final (%s)", f.Kind())
	}

	switch v := f.(type) {
	case Partners:
		if len(v.Team1) < 2 || len(v.Team2) == 0 {
			return invalidComposition("partners need a team of two or more and an opposing team, got %d v %d", len(v.Team1), len(v.Team2))
		}
		if !slices.Contains(v.Team1, v.CaptainID) {
			return invalidComposition("captain %s is not on team1", v.CaptainID)
		}
	case Solo:
		if len(v.Opponents) != len(active)-1 {
			return invalidComposition("solo must be 1 v %d, got 1 v %d", len(active)-1, len(v.Opponents))
		}
	case AardvarkExtended:
		if len(Sides(v)) < 2 {
			return invalidComposition("aardvark placement left fewer than two teams")
		}
	}

	seen := make(map[PlayerID]bool, len(active))
	for _, side := range Sides(f) {
		for _, id := range side.Members {
			if id == InvisibleAardvark {
				return invalidComposition("invisible aardvark listed as a team member")
			}
			if seen[id] {
				return invalidComposition("player %s appears on more than one team", id)
			}
			seen[id] = true
		}
	}
	for _, id := range active {
		if !seen[id] {
			return invalidComposition("player %s is not on any team", id)
		}
	}
	if len(seen) != len(active) {
		return invalidComposition("teams hold %d players, hole has %d", len(seen), len(active))
	}
	return nil
}

// formationJSON is the tagged wire form of a TeamFormation
type formationJSON struct {
	Kind      FormationKind  `json:"kind"`
	Captain   PlayerID       `json:"captain"`
	Requested PlayerID       `json:"requested,omitempty"`
	SoloBase  bool           `json:"solo_base,omitempty"`
	Team1     []PlayerID     `json:"team1,omitempty"`
	Team2     []PlayerID     `json:"team2,omitempty"`
	Team3     []PlayerID     `json:"team3,omitempty"`
	Seats     []AardvarkSeat `json:"aardvark_seats,omitempty"`
}

func encodeFormation(f TeamFormation) formationJSON {
	switch v := f.(type) {
	case Pending:
		return formationJSON{Kind: FormationPending, Captain: v.CaptainID}
	case PendingRequest:
		return formationJSON{Kind: FormationPendingRequest, Captain: v.CaptainID, Requested: v.RequestedID}
	case Partners:
		return formationJSON{Kind: FormationPartners, Captain: v.CaptainID, Team1: v.Team1, Team2: v.Team2}
	case Solo:
		return formationJSON{Kind: FormationSolo, Captain: v.SoloPlayer, Team1: []PlayerID{v.SoloPlayer}, Team2: v.Opponents}
	case AardvarkExtended:
		return formationJSON{
			Kind:     FormationAardvark,
			Captain:  v.CaptainID,
			SoloBase: v.SoloBase,
			Team1:    v.Team1,
			Team2:    v.Team2,
			Team3:    v.Team3,
			Seats:    v.Seats,
		}
	}
	return formationJSON{}
}

func decodeFormation(j formationJSON) (TeamFormation, error) {
	switch j.Kind {
	case FormationPending:
		return Pending{CaptainID: j.Captain}, nil
	case FormationPendingRequest:
		return PendingRequest{CaptainID: j.Captain, RequestedID: j.Requested}, nil
	case FormationPartners:
		return Partners{CaptainID: j.Captain, Team1: j.Team1, Team2: j.Team2}, nil
	case FormationSolo:
		return Solo{SoloPlayer: j.Captain, Opponents: j.Team2}, nil
	case FormationAardvark:
		return AardvarkExtended{
			CaptainID: j.Captain,
			SoloBase:  j.SoloBase,
			Team1:     j.Team1,
			Team2:     j.Team2,
			Team3:     j.Team3,
			Seats:     j.Seats,
		}, nil
	}
	return nil, fmt.Errorf("unknown formation kind %q", j.Kind)
}

// MarshalFormation encodes a formation with its kind tag
func MarshalFormation(f TeamFormation) ([]byte, error) {
	return json.Marshal(encodeFormation(f))
}

// UnmarshalFormation decodes a formation written by MarshalFormation
func UnmarshalFormation(data []byte) (TeamFormation, error) {
	var j formationJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return decodeFormation(j)
}
