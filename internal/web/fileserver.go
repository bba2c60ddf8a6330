package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dawnlightpress/pages/internal/feat/site"
	"github.com/dawnlightpress/pages/pkg/dp/config"
	"github.com/dawnlightpress/pages/pkg/dp/i18n"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
	"github.com/dawnlightpress/pages/pkg/dp/middleware"
)

// FileServer serves the generated site from the output directory with
// clean URLs: "/books" resolves to books/index.html. Unknown paths get a
// localized not-found page instead of the stock 404.
type FileServer struct {
	root    string
	catalog *i18n.Catalog
	pages   *template.Template
	log     logger.Logger
}

func NewFileServer(assetsFS fs.FS, cfg *config.Config, catalog *i18n.Catalog, log logger.Logger) (*FileServer, error) {
	pages, err := site.ParseTemplates(assetsFS)
	if err != nil {
		return nil, fmt.Errorf("cannot parse page templates: %w", err)
	}

	return &FileServer{
		root:    cfg.Site.OutputDir,
		catalog: catalog,
		pages:   pages,
		log:     log,
	}, nil
}

func (s *FileServer) RegisterRoutes(r chi.Router) {
	s.log.Infof("Registering preview file server: / -> %s", s.root)
	r.Use(middleware.Locale(s.catalog.Match))
	r.Get("/*", s.serve)
}

func (s *FileServer) serve(w http.ResponseWriter, r *http.Request) {
	target, ok := s.resolve(r.URL.Path)
	if !ok {
		s.notFound(w, r)
		return
	}
	http.ServeFile(w, r, target)
}

// resolve maps a request path to a file under the output root. The
// cleaned path must stay inside the root; anything that escapes is
// treated as missing.
func (s *FileServer) resolve(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if strings.Contains(clean, "..") {
		return "", false
	}

	target := filepath.Join(s.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	info, err := os.Stat(target)
	if err == nil && !info.IsDir() {
		return target, true
	}

	index := filepath.Join(target, "index.html")
	if info, err := os.Stat(index); err == nil && !info.IsDir() {
		return index, true
	}

	return "", false
}

func (s *FileServer) notFound(w http.ResponseWriter, r *http.Request) {
	locale := middleware.GetLocale(r.Context())
	messageKey, backKey, backHref := notFoundKeys(r.URL.Path)

	data := map[string]string{
		"Title":     s.catalog.T(locale, "not_found.title"),
		"Message":   s.catalog.T(locale, messageKey),
		"BackHref":  backHref,
		"BackLabel": s.catalog.T(locale, backKey),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, "<!doctype html>\n<html lang=%q><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n", locale, template.HTMLEscapeString(data["Title"]))
	if err := s.pages.ExecuteTemplate(w, "not_found", data); err != nil {
		s.log.Errorf("Error rendering not-found page: %v", err)
	}
	fmt.Fprint(w, "\n</body></html>\n")
}

func notFoundKeys(urlPath string) (messageKey, backKey, backHref string) {
	switch {
	case strings.HasPrefix(urlPath, "/books/"):
		return "not_found.book", "back.books", "/books"
	case strings.HasPrefix(urlPath, "/authors/"):
		return "not_found.author", "back.authors", "/authors"
	case strings.HasPrefix(urlPath, "/news/"):
		return "not_found.news", "back.news", "/news"
	case strings.HasPrefix(urlPath, "/dataroom/"), strings.HasPrefix(urlPath, "/reference-notes/"):
		return "not_found.item", "back.home", "/"
	default:
		return "not_found.item", "back.home", "/"
	}
}
