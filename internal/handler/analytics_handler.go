package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/service"
	"github.com/noah-isme/eduquery-api/internal/utils"
)

// AnalyticsHandler serves the dashboard analytics panels.
type AnalyticsHandler struct {
	analytics service.AnalyticsService
	activity  service.ActivityService
	logger    zerolog.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(analytics service.AnalyticsService, activity service.ActivityService, logger zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		activity:  activity,
		logger:    logger.With().Str("component", "analytics_handler").Logger(),
	}
}

// Register attaches the aggregate panels. The router is expected to be behind JWTProtected.
func (h *AnalyticsHandler) Register(router fiber.Router) {
	router.Get("/schools-by-zone", panel(h, "schools-by-zone", h.analytics.SchoolsByZone))
	router.Get("/schools-subject-count", panel(h, "schools-subject-count", h.analytics.SubjectCounts))
	router.Get("/above-average-subjects", panel(h, "above-average-subjects", h.analytics.AboveAverageSubjects))
	router.Get("/cca-participation", panel(h, "cca-participation", h.analytics.CCAParticipation))
	router.Get("/data-completeness", panel(h, "data-completeness", h.analytics.DataCompleteness))
	router.Get("/zone-comparison", panel(h, "zone-comparison", h.analytics.ZoneComparison))
}

// RegisterAdmin attaches the activity views behind guards, which should require the admin role.
func (h *AnalyticsHandler) RegisterAdmin(router fiber.Router, guards ...fiber.Handler) {
	guarded := func(final fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), final)
	}
	router.Get("/popular", guarded(h.popular)...)
	router.Get("/logs", guarded(h.logs)...)
}

func panel[T any](h *AnalyticsHandler, name string, load func(context.Context) (T, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result, err := load(c.UserContext())
		if err != nil {
			requestLogger(h.logger, c).Error().Err(err).Str("panel", name).Msg("failed to compute analytics")
			return utils.SendInternalError(c, "failed to load analytics", err)
		}
		return c.JSON(result)
	}
}

func (h *AnalyticsHandler) popular(c *fiber.Ctx) error {
	terms, err := h.activity.PopularSearches(c.UserContext(), service.PopularSearchLimit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load popular searches")
		return utils.SendInternalError(c, "failed to load popular searches", err)
	}
	return c.JSON(terms)
}

func (h *AnalyticsHandler) logs(c *fiber.Ctx) error {
	entries, err := h.activity.Recent(c.UserContext(), service.MaxActivityLogs)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity logs")
		return utils.SendInternalError(c, "failed to load activity logs", err)
	}
	return c.JSON(entries)
}
