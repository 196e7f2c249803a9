package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/handler"
)

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func requireContract(t *testing.T, schema *jsonschema.Schema, resp *http.Response) {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestAdvancedSearchContract(t *testing.T) {
	schema := compileSchema(t, "advanced_search.schema.json")
	svc := &mockSearchService{response: dto.AdvancedSearchResponse{
		Success:  true,
		Count:    1,
		Results:  []dto.SchoolResponse{{SchoolID: 2, SchoolName: "Admiralty Secondary School", ZoneCode: "NORTH", MainlevelCode: "SECONDARY"}},
		Criteria: map[string]string{"zone_code": "NORTH"},
	}}

	requireContract(t, schema, postSearch(t, newSearchApp(svc), `{"zone_code":"NORTH"}`))
}

func TestSubjectLookupContract(t *testing.T) {
	schema := compileSchema(t, "subject_lookup.schema.json")

	for _, svc := range []*mockSchoolService{
		{},
		{subjects: []dto.SubjectLookupRow{{SchoolName: "Raffles Institution", SubjectDesc: "PHYSICS"}}},
	} {
		app := newSchoolApp(svc, &mockImportService{}, "user")
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/schools/subjects?name=raffles", nil))
		require.NoError(t, err)
		requireContract(t, schema, resp)
	}
}

func TestSubjectCountContract(t *testing.T) {
	schema := compileSchema(t, "subject_count.schema.json")
	app := newAnalyticsApp(stubAnalyticsService{generatedAt: time.Now().UTC()}, &stubActivityService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/analytics/schools-subject-count", nil))
	require.NoError(t, err)
	requireContract(t, schema, resp)
}

func TestLoginContract(t *testing.T) {
	schema := compileSchema(t, "login.schema.json")
	svc := &mockAuthService{response: dto.LoginResponse{
		Token:       "header.payload.signature",
		User:        dto.UserResponse{ID: 1, Username: "viewer", Role: "user"},
		RedirectURL: "/dashboard",
	}}

	app := fiber.New()
	app.Post("/login", handler.NewAuthHandler(svc, zerolog.Nop()).Login)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"viewer","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	requireContract(t, schema, resp)
}
