package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
	"github.com/noah-isme/eduquery-api/internal/search"
)

// SearchService runs multi-field advanced searches.
type SearchService interface {
	Advanced(ctx context.Context, criteria search.Criteria, actor ActivityActor) (dto.AdvancedSearchResponse, error)
}

type searchService struct {
	repo      repository.SchoolRepository
	validator *validator.Validate
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewSearchService constructs the advanced search service.
func NewSearchService(repo repository.SchoolRepository, validate *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) SearchService {
	return &searchService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		logger:    logger.With().Str("component", "search_service").Logger(),
	}
}

func (s *searchService) Advanced(ctx context.Context, criteria search.Criteria, actor ActivityActor) (dto.AdvancedSearchResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/eduquery-api/internal/service/search")
	ctx, span := tracer.Start(ctx, "schools.advanced_search")
	defer span.End()

	criteria.Normalize()
	if criteria.IsEmpty() {
		return dto.AdvancedSearchResponse{}, search.ErrEmptyCriteria
	}
	if err := s.validator.Struct(criteria); err != nil {
		return dto.AdvancedSearchResponse{}, err
	}

	echoed := criteria.Map()
	span.SetAttributes(attribute.Int("search.criteria_count", len(echoed)))

	schools, err := s.repo.Advanced(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "advanced_search_failed")
		return dto.AdvancedSearchResponse{}, err
	}
	span.SetAttributes(attribute.Int("search.results", len(schools)))
	observeSearch("advanced", len(schools))

	data := map[string]interface{}{
		"criteria_count": len(echoed),
		"results_count":  len(schools),
	}
	if actor.Username != "" {
		data["username"] = actor.Username
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{Action: models.ActionAdvancedSearch, Data: data})

	results := dto.NewSchoolResponses(schools)
	return dto.AdvancedSearchResponse{
		Success:  true,
		Count:    len(results),
		Results:  results,
		Criteria: echoed,
	}, nil
}
