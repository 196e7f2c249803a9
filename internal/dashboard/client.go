package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/middleware"
	"github.com/noah-isme/eduquery-api/internal/render"
	"github.com/noah-isme/eduquery-api/internal/search"
)

var (
	// ErrSessionExpired is returned before any network call when the session is missing or expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrEmptyCriteria is returned before any network call when an advanced search has no field.
	ErrEmptyCriteria = errors.New("please fill at least one search field")
	// ErrUnauthorized maps an HTTP 401 from the API.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden maps an HTTP 403 from the API.
	ErrForbidden = errors.New("forbidden")
	// ErrConnection wraps transport failures.
	ErrConnection = errors.New("connection error")
	// ErrInvalidLogin is returned when the API rejects the credentials.
	ErrInvalidLogin = errors.New("invalid username or password")
	// ErrTooManyRequests maps an HTTP 429 from the API.
	ErrTooManyRequests = errors.New("too many requests")
)

type clientIPKey struct{}

// WithClientIP records the browser address so the API rate limits each browser
// separately instead of the dashboard's loopback address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// APIError is a non-auth error response. Message is shown to the user verbatim.
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" && e.Detail != e.Message {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// AnalyticsPanel is one decoded analytics response.
type AnalyticsPanel struct {
	Records  []render.Record
	Summary  render.Record
	CacheHit bool
}

// AdvancedResult is a decoded advanced search response.
type AdvancedResult struct {
	Count    int
	Records  []render.Record
	Criteria map[string]string
}

// Client calls the EduQuery API on behalf of a dashboard session.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// NewClient constructs an API client. httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		now:     time.Now,
	}
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, username, password string) (Session, string, error) {
	payload := dto.LoginRequest{Username: username, Password: password}

	var response dto.LoginResponse
	err := c.do(ctx, nil, http.MethodPost, "/login", payload, &response)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return Session{}, "", ErrInvalidLogin
		}
		return Session{}, "", err
	}

	session, err := ParseSession(response.Token)
	if err != nil {
		return Session{}, "", err
	}
	return session, response.RedirectURL, nil
}

// SearchByName runs the capped name search.
func (c *Client) SearchByName(ctx context.Context, session Session, name string) ([]render.Record, error) {
	return c.records(ctx, &session, "/api/schools?name="+url.QueryEscape(name))
}

// Lookup runs one of the joined lookups.
func (c *Client) Lookup(ctx context.Context, session Session, view render.View, name string) ([]render.Record, error) {
	switch view {
	case render.ViewSubjects, render.ViewCCAs, render.ViewProgrammes, render.ViewDistinctives:
	default:
		return nil, fmt.Errorf("unknown lookup %q", view)
	}
	return c.records(ctx, &session, fmt.Sprintf("/api/schools/%s?name=%s", view, url.QueryEscape(name)))
}

// Stats returns the total number of schools.
func (c *Client) Stats(ctx context.Context, session Session) (int64, error) {
	var envelope struct {
		Data dto.SchoolStatsResponse `json:"data"`
	}
	if err := c.do(ctx, &session, http.MethodGet, "/api/schools/stats", nil, &envelope); err != nil {
		return 0, err
	}
	return envelope.Data.TotalSchools, nil
}

// AdvancedSearch runs a multi-field search. The endpoint is public, so no session is required.
func (c *Client) AdvancedSearch(ctx context.Context, criteria search.Criteria) (AdvancedResult, error) {
	criteria.Normalize()
	if criteria.IsEmpty() {
		return AdvancedResult{}, ErrEmptyCriteria
	}

	var envelope struct {
		Count    int               `json:"count"`
		Results  json.RawMessage   `json:"results"`
		Criteria map[string]string `json:"criteria"`
	}
	if err := c.do(ctx, nil, http.MethodPost, "/api/search/advanced", criteria, &envelope); err != nil {
		return AdvancedResult{}, err
	}

	records, err := render.DecodeRecords(envelope.Results)
	if err != nil {
		return AdvancedResult{}, err
	}
	return AdvancedResult{Count: envelope.Count, Records: records, Criteria: envelope.Criteria}, nil
}

// CreateSchool adds a school.
func (c *Client) CreateSchool(ctx context.Context, session Session, req dto.SchoolRequest) error {
	return c.do(ctx, &session, http.MethodPost, "/api/schools", req, nil)
}

// UpdateSchool replaces a school.
func (c *Client) UpdateSchool(ctx context.Context, session Session, id uint, req dto.SchoolRequest) error {
	return c.do(ctx, &session, http.MethodPut, "/api/schools/"+strconv.FormatUint(uint64(id), 10), req, nil)
}

// DeleteSchool removes a school.
func (c *Client) DeleteSchool(ctx context.Context, session Session, id uint) error {
	return c.do(ctx, &session, http.MethodDelete, "/api/schools/"+strconv.FormatUint(uint64(id), 10), nil, nil)
}

// Analytics loads one aggregate panel, e.g. "schools-by-zone".
func (c *Client) Analytics(ctx context.Context, session Session, panel string) (AnalyticsPanel, error) {
	var envelope struct {
		Data     json.RawMessage `json:"data"`
		Summary  json.RawMessage `json:"summary"`
		CacheHit bool            `json:"cache_hit"`
	}
	if err := c.do(ctx, &session, http.MethodGet, "/api/analytics/"+panel, nil, &envelope); err != nil {
		return AnalyticsPanel{}, err
	}

	records, err := render.DecodeRecords(envelope.Data)
	if err != nil {
		return AnalyticsPanel{}, err
	}
	result := AnalyticsPanel{Records: records, CacheHit: envelope.CacheHit}
	if len(envelope.Summary) > 0 {
		summary, err := render.DecodeRecords(envelope.Summary)
		if err != nil {
			return AnalyticsPanel{}, err
		}
		if len(summary) == 1 {
			result.Summary = summary[0]
		}
	}
	return result, nil
}

// PopularSearches loads the most frequent search terms. Admin only.
func (c *Client) PopularSearches(ctx context.Context, session Session) ([]render.Record, error) {
	return c.records(ctx, &session, "/api/analytics/popular")
}

// ActivityLogs loads recent activity, newest first. Admin only.
func (c *Client) ActivityLogs(ctx context.Context, session Session) ([]render.Record, error) {
	return c.records(ctx, &session, "/api/analytics/logs")
}

func (c *Client) records(ctx context.Context, session *Session, path string) ([]render.Record, error) {
	var raw json.RawMessage
	if err := c.do(ctx, session, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return render.DecodeRecords(raw)
}

// do performs one call. A non-nil session marks the call as protected.
func (c *Client) do(ctx context.Context, session *Session, method, path string, payload, target interface{}) error {
	if session != nil && !session.Valid(c.now()) {
		return ErrSessionExpired
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		req.Header.Set(middleware.CorrelationHeader, correlation)
	}
	if ip := clientIPFromContext(ctx); ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrTooManyRequests
	case resp.StatusCode >= http.StatusBadRequest:
		return decodeAPIError(resp.StatusCode, raw)
	}

	if target == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(raw, &body)

	apiErr := &APIError{Status: status, Message: body.Message, Detail: body.Error}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
