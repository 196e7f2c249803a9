package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/observability"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

// Analytics panel cache keys.
const (
	cacheKeySchoolsByZone    = "analytics:schools-by-zone"
	cacheKeySubjectCount     = "analytics:schools-subject-count"
	cacheKeyAboveAverage     = "analytics:above-average-subjects"
	cacheKeyCCAParticipation = "analytics:cca-participation"
	cacheKeyCompleteness     = "analytics:data-completeness"
	cacheKeyZoneComparison   = "analytics:zone-comparison"
)

var analyticsCacheKeys = []string{
	cacheKeySchoolsByZone,
	cacheKeySubjectCount,
	cacheKeyAboveAverage,
	cacheKeyCCAParticipation,
	cacheKeyCompleteness,
	cacheKeyZoneComparison,
}

// Subject diversity thresholds.
const (
	highDiversitySubjects   = 20
	mediumDiversitySubjects = 10
)

// AnalyticsService computes the aggregate panels of the analytics dashboard.
type AnalyticsService interface {
	SchoolsByZone(ctx context.Context) (dto.AnalyticsResponse[dto.ZoneDistributionItem], error)
	SubjectCounts(ctx context.Context) (dto.AnalyticsResponse[dto.SubjectCountItem], error)
	AboveAverageSubjects(ctx context.Context) (dto.AnalyticsResponse[dto.AboveAverageItem], error)
	CCAParticipation(ctx context.Context) (dto.AnalyticsResponse[dto.CCAParticipationItem], error)
	DataCompleteness(ctx context.Context) (dto.AnalyticsResponse[dto.CompletenessItem], error)
	ZoneComparison(ctx context.Context) (dto.AnalyticsResponse[dto.ZoneComparisonItem], error)
	CacheInvalidator
}

// CacheInvalidator drops cached aggregates after the directory changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

type analyticsService struct {
	repo     repository.AnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs the analytics service. cache may be nil.
func NewAnalyticsService(repo repository.AnalyticsRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AnalyticsService {
	return &analyticsService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "analytics_service").Logger(),
		now:      time.Now,
	}
}

// cachedPanel serves a panel from Redis when present, otherwise computes and stores it.
func cachedPanel[T any](ctx context.Context, s *analyticsService, key string, compute func(context.Context) ([]T, interface{}, error)) (dto.AnalyticsResponse[T], error) {
	tracer := otel.Tracer("github.com/noah-isme/eduquery-api/internal/service/analytics")
	ctx, span := tracer.Start(ctx, "analytics.aggregate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("analytics.cache_key", key)),
	)
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var response dto.AnalyticsResponse[T]
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("analytics.cache_hit", true))
				observability.AnalyticsCacheLookups().WithLabelValues(key, "hit").Inc()
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read analytics cache")
			span.RecordError(err)
		}
		observability.AnalyticsCacheLookups().WithLabelValues(key, "miss").Inc()
	}

	items, summary, err := compute(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregate_failed")
		return dto.AnalyticsResponse[T]{}, err
	}
	if items == nil {
		items = []T{}
	}

	response := dto.AnalyticsResponse[T]{
		Success:     true,
		Data:        items,
		Summary:     summary,
		GeneratedAt: s.now().UTC(),
	}
	span.SetAttributes(attribute.Int("analytics.rows", len(items)))

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("failed to store analytics cache")
				span.RecordError(err)
			}
		}
	}

	return response, nil
}

func (s *analyticsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, analyticsCacheKeys...).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate analytics cache")
	}
}

func (s *analyticsService) SchoolsByZone(ctx context.Context) (dto.AnalyticsResponse[dto.ZoneDistributionItem], error) {
	return cachedPanel(ctx, s, cacheKeySchoolsByZone, func(ctx context.Context) ([]dto.ZoneDistributionItem, interface{}, error) {
		stats, err := s.repo.ZoneStats(ctx)
		if err != nil {
			return nil, nil, err
		}
		items := make([]dto.ZoneDistributionItem, 0, len(stats))
		for _, stat := range stats {
			items = append(items, dto.ZoneDistributionItem{
				ZoneCode:         stat.ZoneCode,
				TotalSchools:     stat.TotalSchools,
				SchoolTypes:      stat.SchoolTypes,
				AvgAddressLength: round2(stat.AvgAddressLength),
			})
		}
		return items, nil, nil
	})
}

func (s *analyticsService) SubjectCounts(ctx context.Context) (dto.AnalyticsResponse[dto.SubjectCountItem], error) {
	return cachedPanel(ctx, s, cacheKeySubjectCount, func(ctx context.Context) ([]dto.SubjectCountItem, interface{}, error) {
		coverage, err := s.repo.SchoolCoverage(ctx)
		if err != nil {
			return nil, nil, err
		}
		sortBySubjects(coverage)

		items := make([]dto.SubjectCountItem, 0, len(coverage))
		for _, row := range coverage {
			items = append(items, dto.SubjectCountItem{
				SchoolID:         row.SchoolID,
				SchoolName:       row.SchoolName,
				ZoneCode:         row.ZoneCode,
				SubjectCount:     row.SubjectCount,
				SubjectDiversity: SubjectDiversity(row.SubjectCount),
			})
		}
		summary := dto.SubjectCountSummary{
			TotalSchools: len(coverage),
			AvgSubjects:  round2(meanSubjects(coverage)),
		}
		return items, summary, nil
	})
}

func (s *analyticsService) AboveAverageSubjects(ctx context.Context) (dto.AnalyticsResponse[dto.AboveAverageItem], error) {
	return cachedPanel(ctx, s, cacheKeyAboveAverage, func(ctx context.Context) ([]dto.AboveAverageItem, interface{}, error) {
		coverage, err := s.repo.SchoolCoverage(ctx)
		if err != nil {
			return nil, nil, err
		}
		sortBySubjects(coverage)
		mean := meanSubjects(coverage)

		items := make([]dto.AboveAverageItem, 0)
		for _, row := range coverage {
			if float64(row.SubjectCount) <= mean {
				continue
			}
			items = append(items, dto.AboveAverageItem{
				SchoolID:      row.SchoolID,
				SchoolName:    row.SchoolName,
				ZoneCode:      row.ZoneCode,
				SubjectCount:  row.SubjectCount,
				SystemAverage: round2(mean),
				Difference:    round2(float64(row.SubjectCount) - mean),
			})
		}
		return items, nil, nil
	})
}

func (s *analyticsService) CCAParticipation(ctx context.Context) (dto.AnalyticsResponse[dto.CCAParticipationItem], error) {
	return cachedPanel(ctx, s, cacheKeyCCAParticipation, func(ctx context.Context) ([]dto.CCAParticipationItem, interface{}, error) {
		total, err := s.repo.CountSchools(ctx)
		if err != nil {
			return nil, nil, err
		}
		rows, err := s.repo.CCAParticipation(ctx)
		if err != nil {
			return nil, nil, err
		}

		items := make([]dto.CCAParticipationItem, 0, len(rows))
		for _, row := range rows {
			items = append(items, dto.CCAParticipationItem{
				CCAGenericName:      row.CCAGenericName,
				SchoolCount:         row.SchoolCount,
				TotalOfferings:      row.TotalOfferings,
				PercentageOfSchools: percentage(row.SchoolCount, total),
			})
		}
		return items, nil, nil
	})
}

func (s *analyticsService) DataCompleteness(ctx context.Context) (dto.AnalyticsResponse[dto.CompletenessItem], error) {
	return cachedPanel(ctx, s, cacheKeyCompleteness, func(ctx context.Context) ([]dto.CompletenessItem, interface{}, error) {
		coverage, err := s.repo.SchoolCoverage(ctx)
		if err != nil {
			return nil, nil, err
		}

		items := make([]dto.CompletenessItem, 0, len(coverage))
		var summary dto.CompletenessSummary
		for _, row := range coverage {
			score := CompletenessScore(row)
			status := CompletenessStatus(score)
			switch status {
			case dto.CompletenessComplete:
				summary.CompleteSchools++
			case dto.CompletenessGood:
				summary.GoodSchools++
			case dto.CompletenessFair:
				summary.FairSchools++
			default:
				summary.IncompleteSchools++
			}
			items = append(items, dto.CompletenessItem{
				SchoolID:           row.SchoolID,
				SchoolName:         row.SchoolName,
				SubjectCount:       row.SubjectCount,
				CCACount:           row.CCACount,
				ProgrammeCount:     row.ProgrammeCount,
				DistinctiveCount:   row.DistinctiveCount,
				CompletenessScore:  score,
				CompletenessStatus: status,
			})
		}

		sort.SliceStable(items, func(i, j int) bool {
			if items[i].CompletenessScore != items[j].CompletenessScore {
				return items[i].CompletenessScore > items[j].CompletenessScore
			}
			return items[i].SchoolName < items[j].SchoolName
		})
		return items, summary, nil
	})
}

func (s *analyticsService) ZoneComparison(ctx context.Context) (dto.AnalyticsResponse[dto.ZoneComparisonItem], error) {
	return cachedPanel(ctx, s, cacheKeyZoneComparison, func(ctx context.Context) ([]dto.ZoneComparisonItem, interface{}, error) {
		stats, err := s.repo.ZoneStats(ctx)
		if err != nil {
			return nil, nil, err
		}
		coverage, err := s.repo.SchoolCoverage(ctx)
		if err != nil {
			return nil, nil, err
		}
		uniqueSubjects, err := s.repo.UniqueOfferingsByZone(ctx, repository.OfferingSubjects)
		if err != nil {
			return nil, nil, err
		}
		uniqueCCAs, err := s.repo.UniqueOfferingsByZone(ctx, repository.OfferingCCAs)
		if err != nil {
			return nil, nil, err
		}

		subjectTotals := make(map[string]int64)
		ccaTotals := make(map[string]int64)
		for _, row := range coverage {
			subjectTotals[row.ZoneCode] += row.SubjectCount
			ccaTotals[row.ZoneCode] += row.CCACount
		}

		items := make([]dto.ZoneComparisonItem, 0, len(stats))
		for _, stat := range stats {
			items = append(items, dto.ZoneComparisonItem{
				ZoneCode:             stat.ZoneCode,
				TotalSchools:         stat.TotalSchools,
				SchoolTypes:          stat.SchoolTypes,
				UniqueSubjects:       uniqueSubjects[stat.ZoneCode],
				UniqueCCAs:           uniqueCCAs[stat.ZoneCode],
				AvgSubjectsPerSchool: ratio(subjectTotals[stat.ZoneCode], stat.TotalSchools),
				AvgCCAsPerSchool:     ratio(ccaTotals[stat.ZoneCode], stat.TotalSchools),
			})
		}
		return items, nil, nil
	})
}

// SubjectDiversity classifies a school by the number of subjects it offers.
func SubjectDiversity(subjects int64) string {
	switch {
	case subjects >= highDiversitySubjects:
		return dto.DiversityHigh
	case subjects >= mediumDiversitySubjects:
		return dto.DiversityMedium
	default:
		return dto.DiversityLow
	}
}

// CompletenessScore awards 25 points per offering category with at least one record.
func CompletenessScore(row models.SchoolCoverage) int {
	score := 0
	for _, count := range []int64{row.SubjectCount, row.CCACount, row.ProgrammeCount, row.DistinctiveCount} {
		if count > 0 {
			score += 25
		}
	}
	return score
}

// CompletenessStatus labels a completeness score.
func CompletenessStatus(score int) string {
	switch {
	case score >= 100:
		return dto.CompletenessComplete
	case score >= 75:
		return dto.CompletenessGood
	case score >= 50:
		return dto.CompletenessFair
	default:
		return dto.CompletenessIncomplete
	}
}

func sortBySubjects(rows []models.SchoolCoverage) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SubjectCount != rows[j].SubjectCount {
			return rows[i].SubjectCount > rows[j].SubjectCount
		}
		return rows[i].SchoolName < rows[j].SchoolName
	})
}

func meanSubjects(rows []models.SchoolCoverage) float64 {
	if len(rows) == 0 {
		return 0
	}
	var total int64
	for _, row := range rows {
		total += row.SubjectCount
	}
	return float64(total) / float64(len(rows))
}

func percentage(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func ratio(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(part) / float64(total))
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
