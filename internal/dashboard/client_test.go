package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduquery-api/internal/middleware"
	"github.com/noah-isme/eduquery-api/internal/render"
	"github.com/noah-isme/eduquery-api/internal/search"
)

type fakeAPI struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClientChecksExpiryBeforeCalling(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { writeJSON(w, 200, `[]`) })
	client := NewClient(api.server.URL, nil)

	expired, err := ParseSession(signedToken(t, 1, "tester", "user", time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	_, err = client.SearchByName(context.Background(), expired, "alpha")
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Zero(t, api.calls.Load())
}

func TestClientRejectsEmptyCriteriaWithoutCalling(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { writeJSON(w, 200, `{}`) })
	client := NewClient(api.server.URL, nil)

	_, err := client.AdvancedSearch(context.Background(), search.Criteria{SchoolName: "   "})
	require.ErrorIs(t, err, ErrEmptyCriteria)
	require.Zero(t, api.calls.Load())
}

func TestClientMapsStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", 401, `{"success":false,"message":"invalid token"}`, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrUnauthorized)
		}},
		{"forbidden", 403, `{"success":false,"message":"admin access required"}`, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrForbidden)
		}},
		{"throttled", 429, `{"success":false,"message":"too many requests, try again later"}`, func(t *testing.T, err error) {
			require.ErrorIs(t, err, ErrTooManyRequests)
		}},
		{"server", 500, `{"success":false,"message":"failed to search schools","error":"relation \"schools\" does not exist"}`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, 500, apiErr.Status)
			require.Equal(t, `failed to search schools: relation "schools" does not exist`, apiErr.Error())
		}},
		{"bare", 502, `gateway`, func(t *testing.T, err error) {
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, "Bad Gateway", apiErr.Error())
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) { writeJSON(w, tc.status, tc.body) })
			client := NewClient(api.server.URL, nil)

			_, err := client.SearchByName(context.Background(), testSession(t, "user"), "x")
			tc.check(t, err)
		})
	}
}

func TestClientConnectionError(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {})
	url := api.server.URL
	api.server.Close()

	_, err := NewClient(url, nil).SearchByName(context.Background(), testSession(t, "user"), "x")
	require.ErrorIs(t, err, ErrConnection)
}

func TestClientSendsBearerAndDecodesRecords(t *testing.T) {
	session := testSession(t, "user")
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+session.Token, r.Header.Get("Authorization"))
		require.Equal(t, "/api/schools/ccas", r.URL.Path)
		require.Equal(t, "north & south", r.URL.Query().Get("name"))
		writeJSON(w, 200, `[{"school_name":"No match","cca_generic_name":"N/A"}]`)
	})

	records, err := NewClient(api.server.URL, nil).Lookup(context.Background(), session, render.ViewCCAs, "north & south")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, []string{"school_name", "cca_generic_name"}, records[0].Keys())
}

func TestClientAdvancedSearchIsPublic(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		var criteria map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&criteria))
		require.Equal(t, map[string]string{"zone_code": "NORTH"}, criteria)
		writeJSON(w, 200, `{"success":true,"count":1,"results":[{"school_id":3,"school_name":"Alpha"}],"criteria":{"zone_code":"NORTH"}}`)
	})

	result, err := NewClient(api.server.URL, nil).AdvancedSearch(context.Background(), search.Criteria{ZoneCode: " NORTH "})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	require.Len(t, result.Records, 1)
	require.Equal(t, "NORTH", result.Criteria["zone_code"])
}

func TestClientAnalyticsSummary(t *testing.T) {
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"success":true,"data":[{"school_id":1,"subject_count":22}],"summary":{"total_schools":1,"avg_subjects":22},"cache_hit":true}`)
	})

	panel, err := NewClient(api.server.URL, nil).Analytics(context.Background(), testSession(t, "user"), "schools-subject-count")
	require.NoError(t, err)
	require.True(t, panel.CacheHit)
	require.Len(t, panel.Records, 1)
	require.Equal(t, []string{"total_schools", "avg_subjects"}, panel.Summary.Keys())
}

func TestClientLogin(t *testing.T) {
	token := signedToken(t, 9, "admin", "admin", time.Now().Add(time.Hour))
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			writeJSON(w, 401, `{"message":"Invalid username or password"}`)
			return
		}
		writeJSON(w, 200, `{"token":"`+token+`","user":{"id":9,"username":"admin","role":"admin","is_admin":true},"redirectUrl":"/dashboard"}`)
	})
	client := NewClient(api.server.URL, nil)

	session, redirect, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	require.Equal(t, "/dashboard", redirect)
	require.Equal(t, uint(9), session.User.ID)
	require.True(t, session.Admin())

	_, _, err = client.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidLogin)
}

func TestClientForwardsCorrelationID(t *testing.T) {
	var seen atomic.Value
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get(middleware.CorrelationHeader))
		writeJSON(w, 200, `{"success":true,"count":0,"results":[],"criteria":{"zone_code":"EAST"}}`)
	})
	client := NewClient(api.server.URL, nil)

	ctx := middleware.ContextWithCorrelation(context.Background(), "corr-42")
	_, err := client.AdvancedSearch(ctx, search.Criteria{ZoneCode: "EAST"})
	require.NoError(t, err)
	require.Equal(t, "corr-42", seen.Load())
}

func TestClientForwardsBrowserAddress(t *testing.T) {
	var seen atomic.Value
	api := newFakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("X-Forwarded-For"))
		writeJSON(w, 429, `{"success":false,"message":"too many requests, try again later"}`)
	})
	client := NewClient(api.server.URL, nil)

	ctx := WithClientIP(context.Background(), "203.0.113.9")
	_, _, err := client.Login(ctx, "viewer", "wrong")
	require.ErrorIs(t, err, ErrTooManyRequests)
	require.Equal(t, "203.0.113.9", seen.Load())

	_, _, err = client.Login(context.Background(), "viewer", "wrong")
	require.ErrorIs(t, err, ErrTooManyRequests)
	require.Equal(t, "", seen.Load())
}
