package site

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"

	"github.com/dawnlightpress/pages/internal/feat/content"
	"github.com/dawnlightpress/pages/pkg/dp/config"
	"github.com/dawnlightpress/pages/pkg/dp/i18n"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// rootMarker is the injection point in the shell template. External
// tooling that customizes the shell must keep it intact.
const rootMarker = `<div id="root"></div>`

// Generator runs one static generation pass: enumerate routes, fetch,
// render, write. A failing route is logged and skipped; it never aborts
// the run.
type Generator struct {
	cfg       *config.Config
	svc       *content.Service
	log       logger.Logger
	processor *Processor
	pages     *template.Template
	assetsFS  fs.FS
	minifier  *minify.M
}

// GenerateResult summarizes one pass.
type GenerateResult struct {
	RunID          uuid.UUID
	TotalRoutes    int
	PagesGenerated int
	Paths          []string
	Errors         []string
}

func NewGenerator(assetsFS fs.FS, cfg *config.Config, svc *content.Service, log logger.Logger) (*Generator, error) {
	pages, err := ParseTemplates(assetsFS)
	if err != nil {
		return nil, fmt.Errorf("cannot parse page templates: %w", err)
	}

	g := &Generator{
		cfg:       cfg,
		svc:       svc,
		log:       log,
		processor: NewProcessor(),
		pages:     pages,
		assetsFS:  assetsFS,
	}

	if cfg.Site.Minify {
		m := minify.New()
		m.AddFunc("text/html", mhtml.Minify)
		g.minifier = m
	}
	return g, nil
}

// Generate runs a full pass and writes HTML, sitemap.xml,
// search-index.json and manifest.json under the output directory.
func (g *Generator) Generate(ctx context.Context) (*GenerateResult, error) {
	routes, err := g.enumerateRoutes(ctx)
	if err != nil {
		return nil, err
	}
	return g.generate(ctx, routes)
}

func (g *Generator) generate(ctx context.Context, routes []Route) (*GenerateResult, error) {
	result := &GenerateResult{RunID: uuid.New()}
	result.TotalRoutes = len(routes)

	shell, err := g.loadShell()
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(routes)+3)
	for _, route := range routes {
		outPath, err := g.generateRoute(ctx, shell, route)
		if err != nil {
			g.log.Error("Route generation failed", "path", route.Path, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", route.Path, err))
			continue
		}
		result.PagesGenerated++
		result.Paths = append(result.Paths, route.Path)
		written = append(written, outPath)
	}

	sitemapPath, err := g.writeSitemap(result.Paths)
	if err != nil {
		return nil, fmt.Errorf("cannot write sitemap: %w", err)
	}
	written = append(written, sitemapPath)

	indexPath, err := g.writeSearchIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot write search index: %w", err)
	}
	written = append(written, indexPath)

	notFoundPaths, err := g.writeNotFoundPages(shell)
	if err != nil {
		return nil, fmt.Errorf("cannot write not-found pages: %w", err)
	}
	written = append(written, notFoundPaths...)

	if err := g.writeManifest(result.RunID, written); err != nil {
		return nil, fmt.Errorf("cannot write manifest: %w", err)
	}

	g.log.Info("Generation complete",
		"run", result.RunID.String(),
		"routes", result.TotalRoutes,
		"pages", result.PagesGenerated,
		"errors", len(result.Errors))
	return result, nil
}

// loadShell reads the page shell from the configured template path,
// falling back to the embedded default.
func (g *Generator) loadShell() (string, error) {
	if g.cfg.Site.TemplatePath == "" {
		embedded, err := fs.ReadFile(g.assetsFS, "assets/templates/site/shell.html")
		if err != nil {
			return "", fmt.Errorf("cannot read embedded shell: %w", err)
		}
		return string(embedded), nil
	}

	raw, err := os.ReadFile(g.cfg.Site.TemplatePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot read template %s: %w", g.cfg.Site.TemplatePath, err)
		}
		embedded, err := fs.ReadFile(g.assetsFS, "assets/templates/site/shell.html")
		if err != nil {
			return "", fmt.Errorf("cannot read embedded shell: %w", err)
		}
		raw = embedded
	}

	shell := string(raw)
	if !strings.Contains(shell, rootMarker) {
		return "", fmt.Errorf("template is missing the %s marker", rootMarker)
	}
	return shell, nil
}

func (g *Generator) generateRoute(ctx context.Context, shell string, route Route) (string, error) {
	page, err := route.Fetch(ctx)
	if err != nil {
		return "", err
	}

	var rendered strings.Builder
	if err := g.pages.ExecuteTemplate(&rendered, route.Kind, page.View); err != nil {
		return "", fmt.Errorf("cannot render %s page: %w", route.Kind, err)
	}

	// json.Marshal escapes '<' by default, which keeps the payload from
	// terminating the script tag early.
	serialized, err := json.Marshal(map[string]any{
		"path": route.Path,
		"data": page.Data,
	})
	if err != nil {
		return "", fmt.Errorf("cannot serialize hydration payload: %w", err)
	}
	scriptTag := `<script>window.__PRELOADED_DATA__ = ` + string(serialized) + `</script>`

	html := strings.Replace(shell, rootMarker,
		`<div id="root">`+rendered.String()+`</div>`+scriptTag, 1)

	if g.minifier != nil {
		minified, err := g.minifier.String("text/html", html)
		if err != nil {
			g.log.Warn("Cannot minify page, writing unminified", "path", route.Path, "error", err)
		} else {
			html = minified
		}
	}

	outPath := g.outputPath(route.Path)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", fmt.Errorf("cannot create output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("cannot write page: %w", err)
	}
	return outPath, nil
}

// writeNotFoundPages emits a 404 page per locale: the default locale at
// the root, others under their locale prefix. Static hosts serve these
// for unresolved paths.
func (g *Generator) writeNotFoundPages(shell string) ([]string, error) {
	catalog := i18n.New(g.cfg.Site.Locales, g.cfg.Site.DefaultLocale)

	var written []string
	for _, locale := range catalog.Locales() {
		data := map[string]string{
			"Title":     catalog.T(locale, "not_found.title"),
			"Message":   catalog.T(locale, "not_found.item"),
			"BackHref":  "/",
			"BackLabel": catalog.T(locale, "back.home"),
		}

		var rendered strings.Builder
		if err := g.pages.ExecuteTemplate(&rendered, "not_found", data); err != nil {
			return nil, fmt.Errorf("cannot render not-found page: %w", err)
		}
		html := strings.Replace(shell, rootMarker, `<div id="root">`+rendered.String()+`</div>`, 1)

		name := "404.html"
		if locale != catalog.DefaultLocale() {
			name = filepath.Join(locale, "404.html")
		}
		outPath := filepath.Join(g.cfg.Site.OutputDir, name)
		if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(outPath, []byte(html), 0644); err != nil {
			return nil, err
		}
		written = append(written, outPath)
	}
	return written, nil
}

func (g *Generator) outputPath(routePath string) string {
	if routePath == "/" {
		return filepath.Join(g.cfg.Site.OutputDir, "index.html")
	}
	return filepath.Join(g.cfg.Site.OutputDir, filepath.FromSlash(strings.TrimPrefix(routePath, "/")), "index.html")
}

// markdown renders a body field to HTML for templating. Conversion
// failures degrade to empty output rather than failing the page.
func (g *Generator) markdown(md string) template.HTML {
	if md == "" {
		return ""
	}
	html, err := g.processor.ToHTML(md)
	if err != nil {
		g.log.Warn("Cannot convert markdown", "error", err)
		return ""
	}
	return template.HTML(html)
}
