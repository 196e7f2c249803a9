package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/models"
)

// ActivityLogRepository is the append-only store behind search and admin analytics.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry models.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	PopularTerms(ctx context.Context, limit int) ([]models.TermCount, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the relational activity store.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Append(ctx context.Context, entry models.ActivityLog) error {
	entry.ID = 0
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *activityLogRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Order("timestamp DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.ActivityLog
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *activityLogRepository) PopularTerms(ctx context.Context, limit int) ([]models.TermCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("term, COUNT(*) AS count").
		Where("action = ?", models.ActionSearch).
		Where("term <> ''").
		Group("term").
		Order("count DESC, term ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var terms []models.TermCount
	if err := query.Scan(&terms).Error; err != nil {
		return nil, err
	}
	return terms, nil
}
