package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

const (
	// MaxActivityLogs caps the activity records served to administrators.
	MaxActivityLogs = 200
	// PopularSearchLimit is the number of top search terms reported.
	PopularSearchLimit = 10
)

// ActivityActor represents the authenticated account performing an action.
type ActivityActor struct {
	ID       uint
	Username string
	Role     string
}

// ActivityEvent is an entry to append to the activity store.
type ActivityEvent struct {
	Action string
	Term   string
	Data   map[string]interface{}
}

// ActivityRecorder appends activity records.
type ActivityRecorder interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivityService records activity and serves it back to administrators.
type ActivityService interface {
	ActivityRecorder
	Recent(ctx context.Context, limit int) ([]dto.ActivityLogResponse, error)
	PopularSearches(ctx context.Context, limit int) ([]dto.PopularSearchResponse, error)
}

// ActivityPublisher mirrors activity records to a message bus.
type ActivityPublisher interface {
	Publish(subject string, data []byte) error
}

type activityService struct {
	repo      repository.ActivityLogRepository
	publisher ActivityPublisher
	subject   string
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewActivityService constructs the activity service. natsConn may be nil.
func NewActivityService(repo repository.ActivityLogRepository, natsConn *nats.Conn, subject string, logger zerolog.Logger) ActivityService {
	var publisher ActivityPublisher
	if natsConn != nil {
		publisher = natsConn
	}
	return newActivityService(repo, publisher, subject, logger)
}

func newActivityService(repo repository.ActivityLogRepository, publisher ActivityPublisher, subject string, logger zerolog.Logger) *activityService {
	if strings.TrimSpace(subject) == "" {
		subject = "eduquery.activity"
	}
	return &activityService{
		repo:      repo,
		publisher: publisher,
		subject:   subject,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_service").Logger(),
		now:       time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, event ActivityEvent) error {
	action := strings.ToLower(strings.TrimSpace(event.Action))
	if action == "" {
		return fmt.Errorf("action is required")
	}

	entry := models.ActivityLog{
		Action:    action,
		Term:      plainText(s.sanitizer, event.Term),
		Data:      sanitizeActivityData(event.Data),
		Timestamp: s.now().UTC(),
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist activity")
		return err
	}

	s.publish(entry)
	return nil
}

func (s *activityService) publish(entry models.ActivityLog) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(dto.ActivityLogResponse{
		Timestamp: entry.Timestamp,
		Action:    entry.Action,
		Data:      entry.Data,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode activity event")
		return
	}
	if err := s.publisher.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish activity event")
	}
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]dto.ActivityLogResponse, error) {
	if limit <= 0 || limit > MaxActivityLogs {
		limit = MaxActivityLogs
	}
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewActivityLogResponses(entries), nil
}

func (s *activityService) PopularSearches(ctx context.Context, limit int) ([]dto.PopularSearchResponse, error) {
	if limit <= 0 {
		limit = PopularSearchLimit
	}
	terms, err := s.repo.PopularTerms(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.NewPopularSearchResponses(terms), nil
}

func sanitizeActivityData(data map[string]interface{}) datatypes.JSONMap {
	sanitized := datatypes.JSONMap{}
	for key, value := range data {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "password") || strings.Contains(lower, "token") {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

// recordActivity appends an event and only logs failures, so the log store never fails a request.
func recordActivity(ctx context.Context, recorder ActivityRecorder, logger zerolog.Logger, event ActivityEvent) {
	if recorder == nil {
		return
	}
	if err := recorder.Record(ctx, event); err != nil {
		logger.Warn().Err(err).Str("action", event.Action).Msg("activity not recorded")
	}
}
