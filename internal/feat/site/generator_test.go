package site

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawnlightpress/pages/internal/feat/content"
	"github.com/dawnlightpress/pages/pkg/dp/config"
	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

func writeTestFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func testGenerator(t *testing.T, minifyOutput bool) (*Generator, string) {
	t.Helper()

	contentRoot := t.TempDir()
	writeTestFile(t, contentRoot, "books/sea-of-letters.mdoc",
		"---\ntitle: 편지의 바다\npublishDate: 2024-03-15\nauthors:\n  - kim-jiyoung\nbuyLinks:\n  - storeName: kyobo\n    url: https://kyobo.example/1\n---\n\nA novel told in **letters**.")
	writeTestFile(t, contentRoot, "authors/kim-jiyoung.mdoc",
		"---\nname: 김지영\n---\n\nNovelist and essayist.")
	writeTestFile(t, contentRoot, "news/spring-catalog.mdoc",
		"---\ntitle: Spring Catalog\ntype: release\npublishedAt: 2024-04-01\nrelatedBooks:\n  - sea-of-letters\n---\n\nOur spring titles are out.")
	writeTestFile(t, contentRoot, "homepage.yaml",
		"heroSection:\n  title: 동틀녘 출판사\n  subtitle: 조용한 책을 만듭니다")
	writeTestFile(t, contentRoot, "about/content.mdoc", "---\n---\nWe publish quiet books.")
	writeTestFile(t, contentRoot, "legal.yaml", "privacyPolicy: We keep no data.")

	outDir := t.TempDir()
	cfg := &config.Config{}
	cfg.Content.Root = contentRoot
	cfg.Site.OutputDir = outDir
	cfg.Site.TemplatePath = filepath.Join(outDir, "index.html")
	cfg.Site.BaseURL = "https://dongtl.com"
	cfg.Site.Minify = minifyOutput

	log := logger.NewNoopLogger()
	svc := content.NewService(content.NewFSStore(contentRoot, log), log)

	gen, err := NewGenerator(os.DirFS("../../.."), cfg, svc, log)
	require.NoError(t, err)
	return gen, outDir
}

func readOutput(t *testing.T, outDir, rel string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(raw)
}

func TestGenerate(t *testing.T) {
	gen, outDir := testGenerator(t, false)

	result, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, result.TotalRoutes, result.PagesGenerated)

	// root route lands at the output root, everything else in a subdir
	home := readOutput(t, outDir, "index.html")
	assert.Contains(t, home, "동틀녘 출판사")
	assert.Contains(t, home, "window.__PRELOADED_DATA__")

	bookPage := readOutput(t, outDir, "books/sea-of-letters/index.html")
	assert.Contains(t, bookPage, "편지의 바다")
	assert.Contains(t, bookPage, "교보문고")
	assert.Contains(t, bookPage, "<strong>letters</strong>")

	newsPage := readOutput(t, outDir, "news/spring-catalog/index.html")
	assert.Contains(t, newsPage, "New Release")
	assert.Contains(t, newsPage, "편지의 바다") // resolved related book

	sitemap := readOutput(t, outDir, "sitemap.xml")
	assert.Contains(t, sitemap, "<loc>https://dongtl.com/</loc>")
	assert.Contains(t, sitemap, "<loc>https://dongtl.com/books/sea-of-letters</loc>")

	var manifest Manifest
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, outDir, "manifest.json")), &manifest))
	assert.Equal(t, result.RunID.String(), manifest.RunID)
	sitemapEntry := manifest.Files["sitemap.xml"]
	assert.Len(t, sitemapEntry.Hash, 64)
	assert.Equal(t, int64(len(sitemap)), sitemapEntry.Size)

	notFound := readOutput(t, outDir, "404.html")
	assert.Contains(t, notFound, "페이지를 찾을 수 없습니다")
}

func TestBookCardSummaryTruncated(t *testing.T) {
	gen, outDir := testGenerator(t, false)

	long := strings.Repeat("바다", 90)
	writeTestFile(t, gen.cfg.Content.Root, "books/long-summary.mdoc",
		"---\ntitle: 긴 요약\npublishDate: 2024-05-01\nsummary:\n  - type: paragraph\n    children:\n      - text: "+long+"\n---\n\nBody.")

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)

	booksPage := readOutput(t, outDir, "books/index.html")
	assert.Contains(t, booksPage, strings.Repeat("바다", 80)+"…")
	assert.NotContains(t, booksPage, long)
}

func TestGenerateWritesLocalizedNotFound(t *testing.T) {
	gen, outDir := testGenerator(t, false)
	gen.cfg.Site.Locales = []string{"ko", "en"}
	gen.cfg.Site.DefaultLocale = "ko"

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)

	assert.Contains(t, readOutput(t, outDir, "404.html"), "페이지를 찾을 수 없습니다")
	assert.Contains(t, readOutput(t, outDir, "en/404.html"), "Page not found")
}

func TestGenerateEscapesScriptPayload(t *testing.T) {
	gen, outDir := testGenerator(t, false)

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)

	page := readOutput(t, outDir, "books/sea-of-letters/index.html")
	start := strings.Index(page, "window.__PRELOADED_DATA__")
	require.GreaterOrEqual(t, start, 0)
	payload := page[start:]
	end := strings.Index(payload, "</script>")
	require.GreaterOrEqual(t, end, 0)

	// the serialized JSON itself must not contain a raw '<'
	assert.NotContains(t, payload[:end], "<")
}

func TestGenerateFailingRouteContinues(t *testing.T) {
	gen, outDir := testGenerator(t, false)
	ctx := context.Background()

	routes, err := gen.enumerateRoutes(ctx)
	require.NoError(t, err)

	broken := Route{
		Path: "/broken",
		Kind: "page",
		Fetch: func(ctx context.Context) (*pageResult, error) {
			return nil, errors.New("fetcher exploded")
		},
	}
	routes = append([]Route{broken}, routes...)

	result, err := gen.generate(ctx, routes)
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "/broken")
	assert.Equal(t, result.TotalRoutes-1, result.PagesGenerated)

	// every other route still produced output
	assert.FileExists(t, filepath.Join(outDir, "index.html"))
	assert.FileExists(t, filepath.Join(outDir, "books", "sea-of-letters", "index.html"))
	assert.NoFileExists(t, filepath.Join(outDir, "broken", "index.html"))

	// the sitemap lists only the successes
	sitemap := readOutput(t, outDir, "sitemap.xml")
	assert.NotContains(t, sitemap, "/broken")
	assert.Contains(t, sitemap, "https://dongtl.com/books/sea-of-letters")
}

func TestGenerateUsesCustomShell(t *testing.T) {
	gen, outDir := testGenerator(t, false)
	shell := "<html><body><header>CUSTOM SHELL</header><div id=\"root\"></div></body></html>"
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "index.html"), []byte(shell), 0644))

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)

	page := readOutput(t, outDir, "books/sea-of-letters/index.html")
	assert.Contains(t, page, "CUSTOM SHELL")
}

func TestGenerateMinified(t *testing.T) {
	gen, outDir := testGenerator(t, true)

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)

	page := readOutput(t, outDir, "index.html")
	assert.Contains(t, page, "동틀녘 출판사")
	assert.NotContains(t, page, "\n  ")
}

func TestSearchIndex(t *testing.T) {
	gen, outDir := testGenerator(t, false)

	_, err := gen.Generate(context.Background())
	require.NoError(t, err)

	var items []SearchItem
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, outDir, "search-index.json")), &items))
	require.NotEmpty(t, items)

	var book *SearchItem
	for i := range items {
		if items[i].ID == "book:sea-of-letters" {
			book = &items[i]
		}
	}
	require.NotNil(t, book)
	assert.Equal(t, "편지의 바다", book.Title)
	assert.Equal(t, "/books/sea-of-letters", book.Href)
	assert.Equal(t, "김지영", book.Meta)
	assert.NotContains(t, book.SearchText, " ")
}

func TestBuildSearchText(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"lowercases and strips spaces", []string{"Old Harbor", "Essays"}, "oldharboressays"},
		{"drops empty parts", []string{"", "편지의 바다", ""}, "편지의바다"},
		{"all empty", []string{"", ""}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildSearchText(tt.parts...))
		})
	}
}
