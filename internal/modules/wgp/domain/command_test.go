package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		typ     CommandType
		payload string
		want    Command
	}{
		{"request partner", CmdRequestPartner, `{"captain_id":"p1","partner_id":"p2"}`, &RequestPartner{CaptainID: "p1", PartnerID: "p2"}},
		{"go solo with duncan", CmdGoSolo, `{"captain_id":"p1","duncan":true}`, &GoSolo{CaptainID: "p1", Duncan: true}},
		{"net score", CmdRecordNetScore, `{"player_id":"p3","score":5}`, &RecordNetScore{PlayerID: "p3", Score: 5}},
		{"toss", CmdRespondToAardvark, `{"team":"team2","accept":false}`, &RespondToAardvark{Team: TeamTwo}},
		{"no payload", CmdCalculateHolePoints, ``, &CalculateHolePoints{}},
		{"null payload", CmdNextHole, `null`, &NextHole{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand(tt.typ, json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, tt.typ, cmd.Type())
		})
	}
}

func TestDecodeCommandErrors(t *testing.T) {
	_, err := DecodeCommand("mulligan", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = DecodeCommand(CmdRecordNetScore, json.RawMessage(`{"score":"five"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestDecodedCommandsApply(t *testing.T) {
	r := newTestRound(t, 4)
	cmd, err := DecodeCommand(CmdGoSolo, json.RawMessage(`{"captain_id":"p1"}`))
	require.NoError(t, err)

	next, err := Apply(r, cmd)
	require.NoError(t, err)
	assert.Equal(t, FormationSolo, next.Hole.Formation.Kind())
	assert.Equal(t, FormationPending, r.Hole.Formation.Kind())
}
