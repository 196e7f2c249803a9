package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/middleware"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/service"
	"github.com/noah-isme/eduquery-api/internal/utils"
)

// SchoolHandler exposes the name lookups and admin mutations under /api/schools.
type SchoolHandler struct {
	schools service.SchoolService
	imports service.ImportService
	logger  zerolog.Logger
}

// NewSchoolHandler constructs the handler.
func NewSchoolHandler(schools service.SchoolService, imports service.ImportService, logger zerolog.Logger) *SchoolHandler {
	return &SchoolHandler{
		schools: schools,
		imports: imports,
		logger:  logger.With().Str("component", "school_handler").Logger(),
	}
}

// Register attaches school routes. The router is expected to be behind JWTProtected.
func (h *SchoolHandler) Register(router fiber.Router) {
	adminOnly := middleware.AuthOptions{Role: models.RoleAdmin}

	router.Get("", h.searchByName)
	router.Get("/stats", h.stats)
	router.Get("/subjects", h.subjects)
	router.Get("/ccas", h.ccas)
	router.Get("/programmes", h.programmes)
	router.Get("/distinctives", h.distinctives)
	router.Post("", middleware.WithAuth(h.create, adminOnly))
	router.Post("/import", middleware.WithAuth(h.importCSV, adminOnly))
	router.Put("/:id", middleware.WithAuth(h.update, adminOnly))
	router.Delete("/:id", middleware.WithAuth(h.delete, adminOnly))
}

func (h *SchoolHandler) searchByName(c *fiber.Ctx) error {
	results, err := h.schools.SearchByName(c.UserContext(), c.Query("name"), activityActorFromContext(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to search schools")
		return utils.SendInternalError(c, "failed to search schools", err)
	}
	return c.JSON(results)
}

func (h *SchoolHandler) stats(c *fiber.Ctx) error {
	stats, err := h.schools.Stats(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to count schools")
		return utils.SendInternalError(c, "failed to load statistics", err)
	}
	return utils.SendSuccess(c, "school statistics", stats)
}

func (h *SchoolHandler) subjects(c *fiber.Ctx) error {
	rows, err := h.schools.Subjects(c.UserContext(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list subjects")
		return utils.SendInternalError(c, "failed to list subjects", err)
	}
	return c.JSON(rows)
}

func (h *SchoolHandler) ccas(c *fiber.Ctx) error {
	rows, err := h.schools.CCAs(c.UserContext(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list ccas")
		return utils.SendInternalError(c, "failed to list CCAs", err)
	}
	return c.JSON(rows)
}

func (h *SchoolHandler) programmes(c *fiber.Ctx) error {
	rows, err := h.schools.Programmes(c.UserContext(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list programmes")
		return utils.SendInternalError(c, "failed to list programmes", err)
	}
	return c.JSON(rows)
}

func (h *SchoolHandler) distinctives(c *fiber.Ctx) error {
	rows, err := h.schools.Distinctives(c.UserContext(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list distinctive programmes")
		return utils.SendInternalError(c, "failed to list distinctive programmes", err)
	}
	return c.JSON(rows)
}

func (h *SchoolHandler) create(c *fiber.Ctx) error {
	var payload dto.SchoolRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	school, err := h.schools.Create(c.UserContext(), payload, activityActorFromContext(c))
	if err != nil {
		if isValidationError(err) {
			return utils.Fail(c, fiber.StatusBadRequest, "missing or invalid school fields", validationDetails(err))
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create school")
		return utils.SendInternalError(c, "failed to create school", err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "school created", school)
}

func (h *SchoolHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	var payload dto.SchoolRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	school, err := h.schools.Update(c.UserContext(), id, payload, activityActorFromContext(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusBadRequest, "missing or invalid school fields", validationDetails(err))
		case errors.Is(err, service.ErrSchoolNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Uint("school_id", id).Msg("failed to update school")
			return utils.SendInternalError(c, "failed to update school", err)
		}
	}

	return utils.SendSuccess(c, "school updated", school)
}

func (h *SchoolHandler) delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid school id")
	}

	removed, err := h.schools.Delete(c.UserContext(), id, activityActorFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrSchoolNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "school not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Uint("school_id", id).Msg("failed to delete school")
		return utils.SendInternalError(c, "failed to delete school", err)
	}

	return utils.SendSuccess(c, "school deleted", removed)
}

func (h *SchoolHandler) importCSV(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}
	if file.Size > service.MaxImportSize {
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "import file too large")
	}

	handle, err := file.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
	}
	defer handle.Close()

	result, err := h.imports.Import(c.UserContext(), handle, activityActorFromContext(c))
	if err != nil {
		var rowErr *service.ImportRowError
		switch {
		case errors.Is(err, service.ErrImportTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrImportType):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case errors.As(err, &rowErr), errors.Is(err, service.ErrImportEmpty), errors.Is(err, service.ErrImportColumns):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to import schools")
			return utils.SendInternalError(c, "failed to import schools", err)
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "schools imported", result)
}
