package site

import (
	"fmt"
	"html/template"
	"io/fs"
	"time"
)

// ParseTemplates parses the page templates with the shared helper set.
func ParseTemplates(assetsFS fs.FS) (*template.Template, error) {
	return template.New("pages.html").Funcs(funcMap()).ParseFS(assetsFS, "assets/templates/site/pages.html")
}

// funcMap returns the helpers available to the page templates.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": formatDate,
		"truncate":   truncate,
	}
}

// formatDate renders a normalized ISO date in Korean long form. Anything
// that doesn't parse is passed through unchanged.
func formatDate(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return fmt.Sprintf("%d년 %d월 %d일", t.Year(), int(t.Month()), t.Day())
}

func truncate(n int, s string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
