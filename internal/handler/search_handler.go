package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/search"
	"github.com/noah-isme/eduquery-api/internal/service"
	"github.com/noah-isme/eduquery-api/internal/utils"
)

// SearchHandler exposes the multi-field advanced search.
type SearchHandler struct {
	service service.SearchService
	logger  zerolog.Logger
}

// NewSearchHandler constructs the handler.
func NewSearchHandler(svc service.SearchService, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger.With().Str("component", "search_handler").Logger(),
	}
}

// Register attaches the advanced search route.
func (h *SearchHandler) Register(router fiber.Router) {
	router.Post("/advanced", h.advanced)
}

func (h *SearchHandler) advanced(c *fiber.Ctx) error {
	var criteria search.Criteria
	if err := c.BodyParser(&criteria); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Advanced(c.UserContext(), criteria, activityActorFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, search.ErrEmptyCriteria):
			return utils.SendError(c, fiber.StatusBadRequest, "Please fill at least one search field")
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusBadRequest, "invalid search criteria", validationDetails(err))
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("advanced search failed")
			return utils.SendInternalError(c, "failed to search schools", err)
		}
	}

	return c.JSON(result)
}
