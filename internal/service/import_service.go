package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/observability"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

// MaxImportSize bounds the CSV upload accepted by the import endpoint.
const MaxImportSize = 2 << 20

var (
	// ErrImportTooLarge is returned when the upload exceeds MaxImportSize.
	ErrImportTooLarge = errors.New("import file too large")
	// ErrImportType is returned when the upload is not CSV text.
	ErrImportType = errors.New("import file must be CSV")
	// ErrImportEmpty is returned when the file carries no data rows.
	ErrImportEmpty = errors.New("import file has no rows")
	// ErrImportColumns is returned when the header lacks a required column.
	ErrImportColumns = errors.New("import file is missing a required column")
)

var requiredImportColumns = []string{"school_name", "address", "postal_code", "zone_code", "mainlevel_code", "principal_name"}

// ImportRowError reports the first invalid row of an import.
type ImportRowError struct {
	Row int
	Err error
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error { return e.Err }

// ImportService bulk-loads schools from CSV.
type ImportService interface {
	Import(ctx context.Context, r io.Reader, actor ActivityActor) (dto.SchoolImportResponse, error)
}

type importService struct {
	repo      repository.SchoolRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	activity  ActivityRecorder
	cache     CacheInvalidator
	logger    zerolog.Logger
}

// NewImportService constructs the import service. Rows are validated like single creates.
func NewImportService(repo repository.SchoolRepository, validate *validator.Validate, activity ActivityRecorder, cache CacheInvalidator, logger zerolog.Logger) ImportService {
	return &importService{
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		activity:  activity,
		cache:     cache,
		logger:    logger.With().Str("component", "import_service").Logger(),
	}
}

func (s *importService) Import(ctx context.Context, r io.Reader, actor ActivityActor) (dto.SchoolImportResponse, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(r, MaxImportSize+1)); err != nil {
		return dto.SchoolImportResponse{}, err
	}
	if buf.Len() > MaxImportSize {
		observability.ImportRejected().WithLabelValues("size").Inc()
		return dto.SchoolImportResponse{}, ErrImportTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	if !mime.Is("text/csv") && !mime.Is("text/plain") {
		observability.ImportRejected().WithLabelValues("type").Inc()
		return dto.SchoolImportResponse{}, ErrImportType
	}

	schools, err := s.parse(buf)
	if err != nil {
		observability.ImportRejected().WithLabelValues("content").Inc()
		return dto.SchoolImportResponse{}, err
	}

	if err := s.repo.CreateBatch(ctx, schools); err != nil {
		return dto.SchoolImportResponse{}, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	recordActivity(ctx, s.activity, s.logger, ActivityEvent{
		Action: models.ActionSchoolImport,
		Data: map[string]interface{}{
			"results_count":  len(schools),
			"admin_username": actor.Username,
		},
	})

	return dto.SchoolImportResponse{Imported: len(schools)}, nil
}

func (s *importService) parse(r io.Reader) ([]models.School, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrImportEmpty
		}
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))] = i
	}
	for _, column := range requiredImportColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrImportColumns, column)
		}
	}

	schools := make([]models.School, 0)
	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ImportRowError{Row: row, Err: err}
		}

		req := cleanSchoolRequest(s.sanitizer, requestFromRecord(index, record))
		if err := s.validator.Struct(req); err != nil {
			return nil, &ImportRowError{Row: row, Err: err}
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
		schools = append(schools, school)
	}

	if len(schools) == 0 {
		return nil, ErrImportEmpty
	}
	return schools, nil
}

func requestFromRecord(index map[string]int, record []string) dto.SchoolRequest {
	value := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	optional := func(column string) *string {
		if _, ok := index[column]; !ok {
			return nil
		}
		v := value(column)
		return &v
	}

	return dto.SchoolRequest{
		SchoolName:       value("school_name"),
		Address:          value("address"),
		PostalCode:       value("postal_code"),
		ZoneCode:         value("zone_code"),
		MainlevelCode:    value("mainlevel_code"),
		PrincipalName:    value("principal_name"),
		VPName:           optional("vp_name"),
		EmailAddress:     optional("email_address"),
		FaxNo:            optional("fax_no"),
		TypeCode:         optional("type_code"),
		NatureCode:       optional("nature_code"),
		SessionCode:      optional("session_code"),
		DGPCode:          optional("dgp_code"),
		MothertongueCode: optional("mothertongue_code"),
		BusDesc:          optional("bus_desc"),
		MRTDesc:          optional("mrt_desc"),
		AutonomousInd:    optional("autonomous_ind"),
		GiftedInd:        optional("gifted_ind"),
		IPInd:            optional("ip_ind"),
		SAPInd:           optional("sap_ind"),
	}
}
