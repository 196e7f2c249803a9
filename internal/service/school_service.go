package service

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/observability"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

// ErrSchoolNotFound indicates the requested school does not exist.
var ErrSchoolNotFound = errors.New("school not found")

// DefaultNameSearchLimit caps simple name searches.
const DefaultNameSearchLimit = 20

// SchoolService serves the name lookups and admin mutations of the directory.
type SchoolService interface {
	SearchByName(ctx context.Context, name string, actor ActivityActor) ([]dto.SchoolResponse, error)
	Stats(ctx context.Context) (dto.SchoolStatsResponse, error)
	Subjects(ctx context.Context, name string) ([]dto.SubjectLookupRow, error)
	CCAs(ctx context.Context, name string) ([]dto.CCALookupRow, error)
	Programmes(ctx context.Context, name string) ([]dto.ProgrammeLookupRow, error)
	Distinctives(ctx context.Context, name string) ([]dto.DistinctiveLookupRow, error)
	Create(ctx context.Context, req dto.SchoolRequest, actor ActivityActor) (dto.SchoolResponse, error)
	Update(ctx context.Context, id uint, req dto.SchoolRequest, actor ActivityActor) (dto.SchoolResponse, error)
	Delete(ctx context.Context, id uint, actor ActivityActor) (dto.SchoolDeletedResponse, error)
}

type schoolService struct {
	repo      repository.SchoolRepository
	validator *validator.Validate
	activity  ActivityRecorder
	cache     CacheInvalidator
	sanitizer *bluemonday.Policy
	nameLimit int
	logger    zerolog.Logger
}

// NewSchoolService constructs the school service. activity and cache may be nil.
func NewSchoolService(repo repository.SchoolRepository, validate *validator.Validate, activity ActivityRecorder, cache CacheInvalidator, nameLimit int, logger zerolog.Logger) SchoolService {
	if nameLimit <= 0 {
		nameLimit = DefaultNameSearchLimit
	}
	return &schoolService{
		repo:      repo,
		validator: validate,
		activity:  activity,
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
		nameLimit: nameLimit,
		logger:    logger.With().Str("component", "school_service").Logger(),
	}
}

func (s *schoolService) SearchByName(ctx context.Context, name string, actor ActivityActor) ([]dto.SchoolResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/eduquery-api/internal/service/school")
	ctx, span := tracer.Start(ctx, "schools.search_by_name")
	defer span.End()

	name = strings.TrimSpace(name)
	schools, err := s.repo.SearchByName(ctx, name, s.nameLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search_failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.results", len(schools)))
	observeSearch("name", len(schools))

	data := map[string]interface{}{
		"query":         name,
		"results_count": len(schools),
	}
	if actor.Username != "" {
		data["username"] = actor.Username
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{Action: models.ActionSearch, Term: strings.ToLower(name), Data: data})

	return dto.NewSchoolResponses(schools), nil
}

func (s *schoolService) Stats(ctx context.Context) (dto.SchoolStatsResponse, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return dto.SchoolStatsResponse{}, err
	}
	return dto.SchoolStatsResponse{TotalSchools: total}, nil
}

func (s *schoolService) Subjects(ctx context.Context, name string) ([]dto.SubjectLookupRow, error) {
	offerings, err := s.repo.ListSubjects(ctx, name)
	if err != nil {
		return nil, err
	}
	observeSearch("subjects", len(offerings))
	return dto.NewSubjectLookupRows(offerings), nil
}

func (s *schoolService) CCAs(ctx context.Context, name string) ([]dto.CCALookupRow, error) {
	offerings, err := s.repo.ListCCAs(ctx, name)
	if err != nil {
		return nil, err
	}
	observeSearch("ccas", len(offerings))
	return dto.NewCCALookupRows(offerings), nil
}

func (s *schoolService) Programmes(ctx context.Context, name string) ([]dto.ProgrammeLookupRow, error) {
	offerings, err := s.repo.ListProgrammes(ctx, name)
	if err != nil {
		return nil, err
	}
	observeSearch("programmes", len(offerings))
	return dto.NewProgrammeLookupRows(offerings), nil
}

func (s *schoolService) Distinctives(ctx context.Context, name string) ([]dto.DistinctiveLookupRow, error) {
	offerings, err := s.repo.ListDistinctives(ctx, name)
	if err != nil {
		return nil, err
	}
	observeSearch("distinctives", len(offerings))
	return dto.NewDistinctiveLookupRows(offerings), nil
}

func (s *schoolService) Create(ctx context.Context, req dto.SchoolRequest, actor ActivityActor) (dto.SchoolResponse, error) {
	req = cleanSchoolRequest(s.sanitizer, req)
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolResponse{}, err
	}

	school := models.School{
		SchoolName:    req.SchoolName,
		Address:       req.Address,
		PostalCode:    req.PostalCode,
		ZoneCode:      req.ZoneCode,
		MainlevelCode: req.MainlevelCode,
		PrincipalName: req.PrincipalName,
	}
	applyOptionalFields(&school, req)

	if err := s.repo.Create(ctx, &school); err != nil {
		return dto.SchoolResponse{}, err
	}

	s.afterMutation(ctx, models.ActionSchoolCreated, school, actor)
	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Update(ctx context.Context, id uint, req dto.SchoolRequest, actor ActivityActor) (dto.SchoolResponse, error) {
	req = cleanSchoolRequest(s.sanitizer, req)
	if err := s.validator.Struct(req); err != nil {
		return dto.SchoolResponse{}, err
	}

	updates := map[string]interface{}{
		"school_name":    req.SchoolName,
		"address":        req.Address,
		"postal_code":    req.PostalCode,
		"zone_code":      req.ZoneCode,
		"mainlevel_code": req.MainlevelCode,
		"principal_name": req.PrincipalName,
	}
	for column, value := range optionalColumns(req) {
		updates[column] = value
	}

	school, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolResponse{}, err
	}

	s.afterMutation(ctx, models.ActionSchoolUpdated, school, actor)
	return dto.NewSchoolResponse(school), nil
}

func (s *schoolService) Delete(ctx context.Context, id uint, actor ActivityActor) (dto.SchoolDeletedResponse, error) {
	school, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SchoolDeletedResponse{}, ErrSchoolNotFound
		}
		return dto.SchoolDeletedResponse{}, err
	}

	s.afterMutation(ctx, models.ActionSchoolDeleted, school, actor)
	return dto.SchoolDeletedResponse{SchoolID: school.SchoolID, SchoolName: school.SchoolName}, nil
}

func (s *schoolService) afterMutation(ctx context.Context, action string, school models.School, actor ActivityActor) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		Action: action,
		Data: map[string]interface{}{
			"school_id":      school.SchoolID,
			"school_name":    school.SchoolName,
			"admin_username": actor.Username,
		},
	})
}

// cleanSchoolRequest trims every field and strips markup from free text.
func cleanSchoolRequest(sanitizer *bluemonday.Policy, req dto.SchoolRequest) dto.SchoolRequest {
	text := func(value string) string {
		return plainText(sanitizer, value)
	}

	req.SchoolName = text(req.SchoolName)
	req.Address = text(req.Address)
	req.PostalCode = strings.TrimSpace(req.PostalCode)
	req.ZoneCode = strings.ToUpper(strings.TrimSpace(req.ZoneCode))
	req.MainlevelCode = strings.ToUpper(strings.TrimSpace(req.MainlevelCode))
	req.PrincipalName = text(req.PrincipalName)

	for _, field := range []**string{
		&req.VPName, &req.EmailAddress, &req.FaxNo, &req.TypeCode, &req.NatureCode,
		&req.SessionCode, &req.DGPCode, &req.MothertongueCode, &req.BusDesc, &req.MRTDesc,
		&req.AutonomousInd, &req.GiftedInd, &req.IPInd, &req.SAPInd,
	} {
		if *field == nil {
			continue
		}
		cleaned := text(**field)
		*field = &cleaned
	}
	return req
}

// plainText strips markup and returns the remaining text unescaped.
func plainText(sanitizer *bluemonday.Policy, value string) string {
	return strings.TrimSpace(html.UnescapeString(sanitizer.Sanitize(strings.TrimSpace(value))))
}

func optionalColumns(req dto.SchoolRequest) map[string]string {
	columns := make(map[string]string)
	set := func(column string, value *string) {
		if value != nil {
			columns[column] = *value
		}
	}
	set("vp_name", req.VPName)
	set("email_address", req.EmailAddress)
	set("fax_no", req.FaxNo)
	set("type_code", req.TypeCode)
	set("nature_code", req.NatureCode)
	set("session_code", req.SessionCode)
	set("dgp_code", req.DGPCode)
	set("mothertongue_code", req.MothertongueCode)
	set("bus_desc", req.BusDesc)
	set("mrt_desc", req.MRTDesc)
	set("autonomous_ind", req.AutonomousInd)
	set("gifted_ind", req.GiftedInd)
	set("ip_ind", req.IPInd)
	set("sap_ind", req.SAPInd)
	return columns
}

func applyOptionalFields(school *models.School, req dto.SchoolRequest) {
	columns := optionalColumns(req)
	school.VPName = columns["vp_name"]
	school.EmailAddress = columns["email_address"]
	school.FaxNo = columns["fax_no"]
	school.TypeCode = columns["type_code"]
	school.NatureCode = columns["nature_code"]
	school.SessionCode = columns["session_code"]
	school.DGPCode = columns["dgp_code"]
	school.MothertongueCode = columns["mothertongue_code"]
	school.BusDesc = columns["bus_desc"]
	school.MRTDesc = columns["mrt_desc"]
	school.AutonomousInd = columns["autonomous_ind"]
	school.GiftedInd = columns["gifted_ind"]
	school.IPInd = columns["ip_ind"]
	school.SAPInd = columns["sap_ind"]
}

func observeSearch(kind string, results int) {
	observability.Searches().WithLabelValues(kind).Inc()
	observability.SearchResults().WithLabelValues(kind).Observe(float64(results))
}
