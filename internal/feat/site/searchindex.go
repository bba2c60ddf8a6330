package site

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dawnlightpress/pages/internal/feat/content"
)

// SearchItem is one entry of the client-side search index.
type SearchItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Href        string `json:"href"`
	Description string `json:"description,omitempty"`
	Meta        string `json:"meta,omitempty"`
	Date        string `json:"date,omitempty"`
	Image       string `json:"image,omitempty"`
	SearchText  string `json:"searchText"`
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// buildSearchText lowercases and strips all whitespace so substring
// matching works for Korean queries typed without spaces.
func buildSearchText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	joined := strings.ToLower(strings.Join(kept, " "))
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(joined, ""))
}

// writeSearchIndex emits search-index.json covering books, authors,
// news, and dataroom items.
func (g *Generator) writeSearchIndex(ctx context.Context) (string, error) {
	books, err := g.svc.GetAllBooks(ctx)
	if err != nil {
		return "", err
	}
	authors, err := g.svc.GetAllAuthors(ctx)
	if err != nil {
		return "", err
	}
	news, err := g.svc.GetAllNews(ctx)
	if err != nil {
		return "", err
	}
	dataroom, err := g.svc.GetAllDataRoom(ctx)
	if err != nil {
		return "", err
	}

	authorNames := make(map[string]string, len(authors))
	for _, author := range authors {
		name := entryString(author.Entry, "name")
		if name == "" {
			name = author.Slug
		}
		authorNames[author.Slug] = name
	}

	items := make([]SearchItem, 0, len(books)+len(authors)+len(news)+len(dataroom))

	for _, book := range books {
		title := entryString(book.Entry, "title")
		if title == "" {
			title = book.Slug
		}
		description := entryString(book.Entry, "summary")
		if description == "" {
			description = content.FirstParagraphText(book.Entry["summary"])
		}
		if description == "" {
			description = content.FirstParagraphText(book.Entry["description"])
		}

		var names []string
		for _, slug := range entryStrings(book.Entry, "authors") {
			if name, ok := authorNames[slug]; ok {
				names = append(names, name)
			} else {
				names = append(names, slug)
			}
		}
		meta := strings.Join(names, ", ")

		items = append(items, SearchItem{
			ID:          "book:" + book.Slug,
			Type:        "book",
			Title:       title,
			Href:        "/books/" + book.Slug,
			Description: description,
			Meta:        meta,
			Date:        entryString(book.Entry, "publishDate"),
			Image:       entryString(book.Entry, "coverImage"),
			SearchText:  buildSearchText(title, meta, description),
		})
	}

	for _, author := range authors {
		title := authorNames[author.Slug]
		description := entryString(author.Entry, "shortBio")
		if description == "" {
			description = content.FirstParagraphText(author.Entry["bio"])
		}
		items = append(items, SearchItem{
			ID:          "author:" + author.Slug,
			Type:        "author",
			Title:       title,
			Href:        "/authors/" + author.Slug,
			Description: description,
			Image:       entryString(author.Entry, "photo"),
			SearchText:  buildSearchText(title, description),
		})
	}

	for _, item := range news {
		title := entryString(item.Entry, "title")
		if title == "" {
			title = item.Slug
		}
		description := entryString(item.Entry, "excerpt")
		if description == "" {
			description = content.FirstParagraphText(item.Entry["content"])
		}
		category := content.NewsTypeLabel(entryString(item.Entry, "type"))
		items = append(items, SearchItem{
			ID:          "news:" + item.Slug,
			Type:        "news",
			Title:       title,
			Href:        "/news/" + item.Slug,
			Description: description,
			Meta:        category,
			Date:        entryString(item.Entry, "publishedAt"),
			SearchText:  buildSearchText(title, description, category),
		})
	}

	for _, item := range dataroom {
		title := entryString(item.Entry, "title")
		if title == "" {
			title = item.Slug
		}
		description := content.FirstParagraphText(item.Entry["description"])
		items = append(items, SearchItem{
			ID:          "dataroom:" + item.Slug,
			Type:        "dataroom",
			Title:       title,
			Href:        "/dataroom/" + item.Slug,
			Description: description,
			Date:        entryString(item.Entry, "publishedAt"),
			SearchText:  buildSearchText(title, description),
		})
	}

	body, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("cannot marshal search index: %w", err)
	}

	outPath := filepath.Join(g.cfg.Site.OutputDir, "search-index.json")
	if err := os.MkdirAll(g.cfg.Site.OutputDir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, body, 0644); err != nil {
		return "", err
	}
	return outPath, nil
}
