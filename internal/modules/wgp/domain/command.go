package domain

import (
	"encoding/json"
	"fmt"
)

// CommandType is the wire name of a game action
type CommandType string

const (
	CmdRequestPartner       CommandType = "request_partner"
	CmdAcceptPartner        CommandType = "accept_partner"
	CmdDeclinePartner       CommandType = "decline_partner"
	CmdGoSolo               CommandType = "go_solo"
	CmdOfferDouble          CommandType = "offer_double"
	CmdAcceptDouble         CommandType = "accept_double"
	CmdDeclineDouble        CommandType = "decline_double"
	CmdInvokeFloat          CommandType = "invoke_float"
	CmdToggleOption         CommandType = "toggle_option"
	CmdRecordNetScore       CommandType = "record_net_score"
	CmdCalculateHolePoints  CommandType = "calculate_hole_points"
	CmdNextHole             CommandType = "next_hole"
	CmdAardvarkRequestTeam  CommandType = "aardvark_request_team"
	CmdRespondToAardvark    CommandType = "respond_to_aardvark"
	CmdPingPongAardvark     CommandType = "ping_pong_aardvark"
	CmdApplyOption          CommandType = "apply_option"
	CmdRecordGrossScore     CommandType = "record_gross_score"
	CmdSetJoesSpecial       CommandType = "set_joes_special"
	CmdSelectHoepfingerSpot CommandType = "select_hoepfinger_spot"
	CmdTeeShotsComplete     CommandType = "tee_shots_complete"
	CmdInvokeTunkarri       CommandType = "invoke_tunkarri"
	CmdInvokeBigDick        CommandType = "invoke_big_dick"
)

// Command is a single game action. The set is closed: only this package implements it.
type Command interface {
	Type() CommandType
	apply(r *RoundState) error
}

type RequestPartner struct {
	CaptainID PlayerID `json:"captain_id"`
	PartnerID PlayerID `json:"partner_id"`
}

type AcceptPartner struct {
	PartnerID PlayerID `json:"partner_id"`
}

type DeclinePartner struct {
	PartnerID PlayerID `json:"partner_id"`
}

type GoSolo struct {
	CaptainID PlayerID `json:"captain_id"`
	Duncan    bool     `json:"duncan"`
}

type OfferDouble struct {
	Team   TeamTag `json:"team"`
	Target TeamTag `json:"target,omitempty"`
}

type AcceptDouble struct{}

type DeclineDouble struct{}

type InvokeFloat struct {
	CaptainID PlayerID `json:"captain_id"`
}

type ToggleOption struct {
	PlayerID PlayerID `json:"player_id"`
	Enabled  bool     `json:"enabled"`
}

type ApplyOption struct {
	PlayerID PlayerID `json:"player_id"`
}

// RecordNetScore records a net score in whole strokes
type RecordNetScore struct {
	PlayerID PlayerID `json:"player_id"`
	Score    int      `json:"score"`
}

// RecordGrossScore records a gross score; handicap strokes come from the course table
type RecordGrossScore struct {
	PlayerID PlayerID `json:"player_id"`
	Gross    int      `json:"gross"`
}

type CalculateHolePoints struct{}

type NextHole struct{}

type AardvarkRequestTeam struct {
	AardvarkID PlayerID `json:"aardvark_id"`
	Team       TeamTag  `json:"team"`
}

type RespondToAardvark struct {
	Team   TeamTag `json:"team"`
	Accept bool    `json:"accept"`
}

type PingPongAardvark struct {
	Team       TeamTag  `json:"team"`
	AardvarkID PlayerID `json:"aardvark_id"`
}

type SetJoesSpecial struct {
	PlayerID PlayerID `json:"player_id"`
	Value    int      `json:"value"`
}

type SelectHoepfingerSpot struct {
	PlayerID PlayerID `json:"player_id"`
	Position int      `json:"position"`
}

type TeeShotsComplete struct{}

type InvokeTunkarri struct {
	AardvarkID PlayerID `json:"aardvark_id"`
}

type InvokeBigDick struct {
	PlayerID PlayerID `json:"player_id"`
}

func (RequestPartner) Type() CommandType       { return CmdRequestPartner }
func (AcceptPartner) Type() CommandType        { return CmdAcceptPartner }
func (DeclinePartner) Type() CommandType       { return CmdDeclinePartner }
func (GoSolo) Type() CommandType               { return CmdGoSolo }
func (OfferDouble) Type() CommandType          { return CmdOfferDouble }
func (AcceptDouble) Type() CommandType         { return CmdAcceptDouble }
func (DeclineDouble) Type() CommandType        { return CmdDeclineDouble }
func (InvokeFloat) Type() CommandType          { return CmdInvokeFloat }
func (ToggleOption) Type() CommandType         { return CmdToggleOption }
func (ApplyOption) Type() CommandType          { return CmdApplyOption }
func (RecordNetScore) Type() CommandType       { return CmdRecordNetScore }
func (RecordGrossScore) Type() CommandType     { return CmdRecordGrossScore }
func (CalculateHolePoints) Type() CommandType  { return CmdCalculateHolePoints }
func (NextHole) Type() CommandType             { return CmdNextHole }
func (AardvarkRequestTeam) Type() CommandType  { return CmdAardvarkRequestTeam }
func (RespondToAardvark) Type() CommandType    { return CmdRespondToAardvark }
func (PingPongAardvark) Type() CommandType     { return CmdPingPongAardvark }
func (SetJoesSpecial) Type() CommandType       { return CmdSetJoesSpecial }
func (SelectHoepfingerSpot) Type() CommandType { return CmdSelectHoepfingerSpot }
func (TeeShotsComplete) Type() CommandType     { return CmdTeeShotsComplete }
func (InvokeTunkarri) Type() CommandType       { return CmdInvokeTunkarri }
func (InvokeBigDick) Type() CommandType        { return CmdInvokeBigDick }

func (c RequestPartner) apply(r *RoundState) error {
	return r.RequestPartnership(c.CaptainID, c.PartnerID)
}

func (c AcceptPartner) apply(r *RoundState) error {
	return r.RespondToPartnership(c.PartnerID, true)
}

func (c DeclinePartner) apply(r *RoundState) error {
	return r.RespondToPartnership(c.PartnerID, false)
}

func (c GoSolo) apply(r *RoundState) error {
	return r.DeclareSolo(c.CaptainID, c.Duncan)
}

func (c OfferDouble) apply(r *RoundState) error {
	return r.OfferDouble(c.Team, c.Target)
}

func (AcceptDouble) apply(r *RoundState) error {
	_, err := r.RespondToDouble(true)
	return err
}

func (DeclineDouble) apply(r *RoundState) error {
	_, err := r.RespondToDouble(false)
	return err
}

func (c InvokeFloat) apply(r *RoundState) error {
	return r.InvokeFloat(c.CaptainID)
}

func (c ToggleOption) apply(r *RoundState) error {
	return r.ToggleOption(c.PlayerID, c.Enabled)
}

func (c ApplyOption) apply(r *RoundState) error {
	return r.ApplyOption(c.PlayerID)
}

func (c RecordNetScore) apply(r *RoundState) error {
	return r.RecordNetScore(c.PlayerID, Strokes(c.Score))
}

func (c RecordGrossScore) apply(r *RoundState) error {
	return r.RecordGrossScore(c.PlayerID, c.Gross)
}

func (CalculateHolePoints) apply(r *RoundState) error {
	_, err := r.CalculateHolePoints()
	return err
}

func (NextHole) apply(r *RoundState) error {
	return r.AdvanceHole()
}

func (c AardvarkRequestTeam) apply(r *RoundState) error {
	return r.AardvarkRequestTeam(c.AardvarkID, c.Team)
}

func (c RespondToAardvark) apply(r *RoundState) error {
	return r.RespondToAardvark(c.Team, c.Accept)
}

func (c PingPongAardvark) apply(r *RoundState) error {
	return r.PingPongAardvark(c.Team, c.AardvarkID)
}

func (c SetJoesSpecial) apply(r *RoundState) error {
	return r.SetJoesSpecial(c.PlayerID, c.Value)
}

func (c SelectHoepfingerSpot) apply(r *RoundState) error {
	return r.SelectHoepfingerSpot(c.PlayerID, c.Position)
}

func (TeeShotsComplete) apply(r *RoundState) error {
	return r.TeeShotsComplete()
}

func (c InvokeTunkarri) apply(r *RoundState) error {
	return r.InvokeTunkarri(c.AardvarkID)
}

func (c InvokeBigDick) apply(r *RoundState) error {
	return r.InvokeBigDick(c.PlayerID)
}

var decoders = map[CommandType]func() Command{
	CmdRequestPartner:       func() Command { return &RequestPartner{} },
	CmdAcceptPartner:        func() Command { return &AcceptPartner{} },
	CmdDeclinePartner:       func() Command { return &DeclinePartner{} },
	CmdGoSolo:               func() Command { return &GoSolo{} },
	CmdOfferDouble:          func() Command { return &OfferDouble{} },
	CmdAcceptDouble:         func() Command { return &AcceptDouble{} },
	CmdDeclineDouble:        func() Command { return &DeclineDouble{} },
	CmdInvokeFloat:          func() Command { return &InvokeFloat{} },
	CmdToggleOption:         func() Command { return &ToggleOption{} },
	CmdApplyOption:          func() Command { return &ApplyOption{} },
	CmdRecordNetScore:       func() Command { return &RecordNetScore{} },
	CmdRecordGrossScore:     func() Command { return &RecordGrossScore{} },
	CmdCalculateHolePoints:  func() Command { return &CalculateHolePoints{} },
	CmdNextHole:             func() Command { return &NextHole{} },
	CmdAardvarkRequestTeam:  func() Command { return &AardvarkRequestTeam{} },
	CmdRespondToAardvark:    func() Command { return &RespondToAardvark{} },
	CmdPingPongAardvark:     func() Command { return &PingPongAardvark{} },
	CmdSetJoesSpecial:       func() Command { return &SetJoesSpecial{} },
	CmdSelectHoepfingerSpot: func() Command { return &SelectHoepfingerSpot{} },
	CmdTeeShotsComplete:     func() Command { return &TeeShotsComplete{} },
	CmdInvokeTunkarri:       func() Command { return &InvokeTunkarri{} },
	CmdInvokeBigDick:        func() Command { return &InvokeBigDick{} },
}

// DecodeCommand builds a command from its wire name and JSON payload
func DecodeCommand(t CommandType, payload json.RawMessage) (Command, error) {
	newCmd, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, t)
	}
	cmd := newCmd()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, cmd); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
		}
	}
	return cmd, nil
}

// Apply runs a command against a copy of the state. On error the original is
// returned untouched, so a rejected command never leaves a partial change behind.
func Apply(state *RoundState, cmd Command) (*RoundState, error) {
	next := state.Clone()
	if err := cmd.apply(next); err != nil {
		return state, err
	}
	return next, nil
}
