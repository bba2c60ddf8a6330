package site

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// writeSitemap emits sitemap.xml for the successfully generated routes,
// in generation order.
func (g *Generator) writeSitemap(paths []string) (string, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	base := strings.TrimSuffix(g.cfg.Site.BaseURL, "/")

	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, 0, len(paths)),
	}
	for _, path := range paths {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:     base + path,
			LastMod: now,
		})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("cannot marshal sitemap: %w", err)
	}

	outPath := filepath.Join(g.cfg.Site.OutputDir, "sitemap.xml")
	if err := os.MkdirAll(g.cfg.Site.OutputDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, []byte(xml.Header+string(body)+"\n"), 0644); err != nil {
		return "", err
	}
	return outPath, nil
}
