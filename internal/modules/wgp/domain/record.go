package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// GameStatus is the lifecycle status of a persisted game
type GameStatus int

const (
	GameStatusPlaying  GameStatus = 0
	GameStatusComplete GameStatus = 1
)

// GameRecord is the persisted summary of a game
type GameRecord struct {
	GameID      string         `gorm:"primaryKey;type:varchar(64)" json:"game_id"`
	PlayerCount int            `gorm:"not null" json:"player_count"`
	Players     datatypes.JSON `gorm:"not null" json:"players"`
	Course      string         `gorm:"type:varchar(128)" json:"course"`
	Status      GameStatus     `gorm:"type:int;not null;default:0;index:idx_games_status" json:"status"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_games_created_at" json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at"`
}

// TableName overrides the table name
func (GameRecord) TableName() string {
	return "games"
}

// HoleResultRecord is one settled hole in the history table
type HoleResultRecord struct {
	ID          string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	GameID      string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_hole_results_game_hole" json:"game_id"`
	Hole        int            `gorm:"not null;uniqueIndex:idx_hole_results_game_hole" json:"hole"`
	Phase       string         `gorm:"type:varchar(32);not null" json:"phase"`
	FinalWager  int            `gorm:"not null" json:"final_wager"`
	Halved      bool           `gorm:"not null;default:false" json:"halved"`
	Conceded    bool           `gorm:"not null;default:false" json:"conceded"`
	HeldChad    int            `gorm:"not null;default:0" json:"held_chad"`
	Result      datatypes.JSON `gorm:"not null" json:"result"`
	Message     string         `gorm:"type:varchar(512)" json:"message"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

// TableName overrides the table name
func (HoleResultRecord) TableName() string {
	return "hole_results"
}

// NewGameRecord builds the summary row for a new round
func NewGameRecord(r *RoundState) (*GameRecord, error) {
	players, err := json.Marshal(r.Players)
	if err != nil {
		return nil, err
	}
	return &GameRecord{
		GameID:      r.GameID,
		PlayerCount: len(r.Players),
		Players:     datatypes.JSON(players),
		Course:      r.Course.Name,
		Status:      GameStatusPlaying,
		CreatedAt:   time.Now(),
	}, nil
}

// NewHoleResultRecord builds the history row for a settled hole
func NewHoleResultRecord(gameID string, res *HoleResult) (*HoleResultRecord, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	held := 0
	if res.PendingRemainder != nil {
		held = res.PendingRemainder.Quarters
	}
	return &HoleResultRecord{
		ID:         NewRecordID(),
		GameID:     gameID,
		Hole:       res.Hole,
		Phase:      string(res.Phase),
		FinalWager: res.FinalWager,
		Halved:     res.Halved,
		Conceded:   res.Conceded,
		HeldChad:   held,
		Result:     datatypes.JSON(data),
		Message:    res.Message,
		CreatedAt:  time.Now(),
	}, nil
}

// HoleResult decodes the stored result
func (rec *HoleResultRecord) HoleResult() (*HoleResult, error) {
	var res HoleResult
	if err := json.Unmarshal(rec.Result, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
