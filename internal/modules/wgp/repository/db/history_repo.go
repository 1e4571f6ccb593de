package db

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stuagano/wolf-goat-pig/internal/modules/wgp/domain"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AutoMigrate creates or updates the history tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.GameRecord{}, &domain.HoleResultRecord{})
}

func (r *HistoryRepository) CreateGame(ctx context.Context, rec *domain.GameRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *HistoryRepository) CompleteGame(ctx context.Context, gameID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.GameRecord{}).
		Where("game_id = ?", gameID).
		Updates(map[string]interface{}{
			"status":       domain.GameStatusComplete,
			"completed_at": at,
		}).Error
}

// SaveHoleResult writes a settled hole. Writing the same hole twice keeps the first row.
func (r *HistoryRepository) SaveHoleResult(ctx context.Context, rec *domain.HoleResultRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec).Error
}

func (r *HistoryRepository) ListHoleResults(ctx context.Context, gameID string) ([]*domain.HoleResultRecord, error) {
	var recs []*domain.HoleResultRecord
	err := r.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("hole ASC").
		Find(&recs).Error
	return recs, err
}

// GetGame loads the summary row of a game
func (r *HistoryRepository) GetGame(ctx context.Context, gameID string) (*domain.GameRecord, error) {
	var rec domain.GameRecord
	if err := r.db.WithContext(ctx).Where("game_id = ?", gameID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
