package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/models"
)

// AnalyticsRepository supplies the aggregates behind the analytics panels.
type AnalyticsRepository interface {
	ZoneStats(ctx context.Context) ([]models.ZoneStat, error)
	SchoolCoverage(ctx context.Context) ([]models.SchoolCoverage, error)
	CCAParticipation(ctx context.Context) ([]models.CCAParticipation, error)
	UniqueOfferingsByZone(ctx context.Context, kind OfferingKind) (map[string]int64, error)
	CountSchools(ctx context.Context) (int64, error)
}

// OfferingKind selects an association table for per-zone distinct counts.
type OfferingKind string

const (
	OfferingSubjects OfferingKind = "subjects"
	OfferingCCAs     OfferingKind = "ccas"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository constructs the analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) ZoneStats(ctx context.Context) ([]models.ZoneStat, error) {
	var stats []models.ZoneStat
	err := r.db.WithContext(ctx).
		Table("schools").
		Select("zone_code, COUNT(*) AS total_schools, COUNT(DISTINCT type_code) AS school_types, AVG(LENGTH(address)) AS avg_address_length").
		Group("zone_code").
		Order("zone_code ASC").
		Scan(&stats).Error
	return stats, err
}

func (r *analyticsRepository) SchoolCoverage(ctx context.Context) ([]models.SchoolCoverage, error) {
	var rows []models.SchoolCoverage
	err := r.db.WithContext(ctx).
		Table("schools s").
		Select(`s.school_id, s.school_name, s.zone_code,
			(SELECT COUNT(*) FROM school_subjects ss WHERE ss.school_id = s.school_id) AS subject_count,
			(SELECT COUNT(*) FROM school_ccas sca WHERE sca.school_id = s.school_id) AS cca_count,
			(SELECT COUNT(*) FROM school_programmes sp WHERE sp.school_id = s.school_id) AS programme_count,
			(SELECT COUNT(*) FROM school_distinctives sd WHERE sd.school_id = s.school_id) AS distinctive_count`).
		Order("s.school_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) CCAParticipation(ctx context.Context) ([]models.CCAParticipation, error) {
	var rows []models.CCAParticipation
	err := r.db.WithContext(ctx).
		Table("school_ccas sca").
		Select("c.cca_generic_name, COUNT(DISTINCT sca.school_id) AS school_count, COUNT(*) AS total_offerings").
		Joins("JOIN ccas c ON c.cca_id = sca.cca_id").
		Group("c.cca_generic_name").
		Order("school_count DESC, c.cca_generic_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *analyticsRepository) UniqueOfferingsByZone(ctx context.Context, kind OfferingKind) (map[string]int64, error) {
	var table, column string
	switch kind {
	case OfferingSubjects:
		table, column = "school_subjects", "subject_id"
	case OfferingCCAs:
		table, column = "school_ccas", "cca_id"
	default:
		return nil, fmt.Errorf("unknown offering kind %q", kind)
	}

	var rows []struct {
		ZoneCode string `gorm:"column:zone_code"`
		Total    int64  `gorm:"column:total"`
	}
	err := r.db.WithContext(ctx).
		Table("schools s").
		Select(fmt.Sprintf("s.zone_code, COUNT(DISTINCT o.%s) AS total", column)).
		Joins(fmt.Sprintf("JOIN %s o ON o.school_id = s.school_id", table)).
		Group("s.zone_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ZoneCode] = row.Total
	}
	return counts, nil
}

func (r *analyticsRepository) CountSchools(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.School{}).Count(&total).Error
	return total, err
}
