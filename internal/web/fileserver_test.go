package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dawnlightpress/pages/pkg/dp/config"
	"github.com/dawnlightpress/pages/pkg/dp/i18n"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>home</h1>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "books", "sea-of-letters"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "books", "index.html"), []byte("<h1>books</h1>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "books", "sea-of-letters", "index.html"), []byte("<h1>book</h1>"), 0644))

	cfg := &config.Config{}
	cfg.Site.OutputDir = root

	catalog := i18n.New([]string{"ko", "en"}, "ko")
	fsrv, err := NewFileServer(os.DirFS("../.."), cfg, catalog, logger.NewNoopLogger())
	require.NoError(t, err)

	r := chi.NewRouter()
	fsrv.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestFileServerCleanURLs(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/", "/books", "/books/", "/books/sea-of-letters"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestFileServerNotFoundLocalized(t *testing.T) {
	srv := testServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/books/missing", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "en-US")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body := make([]byte, 4096)
	n, _ := resp.Body.Read(body)
	html := string(body[:n])
	require.Contains(t, html, "The requested book could not be found.")
	require.Contains(t, html, "Back to books")
}

func TestFileServerTraversalGuard(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/../../etc/passwd")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NotEqual(t, http.StatusOK, resp.StatusCode)
}
