package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

func testAPI(t *testing.T) *httptest.Server {
	t.Helper()

	svc, _, _ := testService(t)
	handler := NewHandler(svc, logger.NewNoopLogger())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func TestHandleListCollections(t *testing.T) {
	srv := testAPI(t)

	resp, err := http.Get(srv.URL + "/api/collections")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Collections []string `json:"collections"`
	}
	decode(t, resp, &body)
	assert.Contains(t, body.Collections, "books")
	assert.Contains(t, body.Collections, "reference-notes")
}

func TestEntryEndpoints(t *testing.T) {
	srv := testAPI(t)

	save := map[string]any{
		"frontmatter": map[string]any{"title": "활자의 바다", "publishDate": "2024-03-15"},
		"body":        "첫 문단.",
	}
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/collections/books/sea-of-letters", save)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/collections/books/sea-of-letters")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entry map[string]any
	decode(t, resp, &entry)
	assert.Equal(t, "활자의 바다", entry["title"])
	assert.Equal(t, "첫 문단.", entry["description"])

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/collections/books/sea-of-letters", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEntryErrorMapping(t *testing.T) {
	srv := testAPI(t)

	cases := []struct {
		name string
		url  string
		want int
	}{
		{"missing entry", "/api/collections/books/missing", http.StatusNotFound},
		{"unknown collection", "/api/collections/widgets/slug", http.StatusNotFound},
		{"missing singleton", "/api/singletons/settings", http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tc.url)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestPreviewEndpoint(t *testing.T) {
	srv := testAPI(t)

	req := map[string]any{
		"files": map[string]string{
			"news/draft.mdoc": "---\ntitle: 봄 소식\npublishedAt: \"2024-04-01\"\n---\n\n본문.",
		},
		"collection": "news",
		"slug":       "draft",
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/preview", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entry map[string]any
	decode(t, resp, &entry)
	assert.Equal(t, "봄 소식", entry["title"])
}

func TestScheduleEndpoints(t *testing.T) {
	srv := testAPI(t)

	create := map[string]any{
		"publish_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		"message":    "publish: catalog",
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", create)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sched PublishSchedule
	decode(t, resp, &sched)
	assert.Len(t, sched.ShortID, 8)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/schedules/%s", srv.URL, sched.ID), nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/api/schedules")
	require.NoError(t, err)
	var list []*PublishSchedule
	decode(t, resp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, ScheduleCancelled, list[0].Status)
}

func TestCreateSchedulePastRejected(t *testing.T) {
	srv := testAPI(t)

	create := map[string]any{
		"publish_at": time.Now().Add(-time.Hour).Format(time.RFC3339),
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/schedules", create)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
