package site

import (
	"html/template"

	"github.com/dawnlightpress/pages/internal/feat/content"
)

// View models are the strict shapes the page templates render. The
// untyped entry bags coming out of the content store stop here: only
// these converters may reach into them.

type BookView struct {
	Slug          string
	Title         string
	OriginalTitle string
	CoverImage    string
	Translator    string
	Format        string
	ISBN          string
	PublishDate   string
	PreviewLink   string
	Categories    []string
	SeriesName    string
	SeriesVolume  string
	Summary       string
	AuthorNames   []string
	BuyLinks      []content.PurchaseLink
	Description   template.HTML
}

type AuthorView struct {
	Slug     string
	Name     string
	Photo    string
	ShortBio string
	Bio      template.HTML
	Books    []BookView
}

type NewsView struct {
	Slug         string
	Title        string
	TypeLabel    string
	PublishedAt  string
	Excerpt      string
	Body         template.HTML
	RelatedBooks []BookView
}

// ItemView covers the dataroom and reference-note collections, which
// share a title/date/body shape.
type ItemView struct {
	Slug        string
	Title       string
	PublishedAt string
	Body        template.HTML
}

type PageView struct {
	Title string
	Body  template.HTML
}

type HomeView struct {
	HeroTitle    string
	HeroSubtitle string
	LatestBooks  []BookView
	LatestNews   []NewsView
}

func entryString(entry map[string]any, key string) string {
	if entry == nil {
		return ""
	}
	s, _ := entry[key].(string)
	return s
}

func entryStrings(entry map[string]any, key string) []string {
	items, ok := entry[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (g *Generator) bookView(slug string, entry map[string]any) BookView {
	view := BookView{
		Slug:          slug,
		Title:         entryString(entry, "title"),
		OriginalTitle: entryString(entry, "originalTitle"),
		CoverImage:    entryString(entry, "coverImage"),
		Translator:    entryString(entry, "translator"),
		Format:        entryString(entry, "format"),
		ISBN:          entryString(entry, "isbn"),
		PublishDate:   entryString(entry, "publishDate"),
		PreviewLink:   entryString(entry, "previewLink"),
		Categories:    entryStrings(entry, "categories"),
		Summary:       content.FirstParagraphText(entry["summary"]),
		BuyLinks:      content.MapPurchaseLinks(entry["buyLinks"]),
		Description:   g.markdown(entryString(entry, "description")),
	}
	if view.Title == "" {
		view.Title = slug
	}

	if series, ok := entry["series"].(map[string]any); ok {
		view.SeriesName = entryString(series, "name")
		view.SeriesVolume = entryString(series, "volume")
	}
	if resolved, ok := entry["resolvedAuthors"].([]map[string]any); ok {
		for _, author := range resolved {
			name := entryString(author, "name")
			if name == "" {
				name = entryString(author, "slug")
			}
			view.AuthorNames = append(view.AuthorNames, name)
		}
	}
	return view
}

func (g *Generator) bookViews(records []content.Record) []BookView {
	views := make([]BookView, 0, len(records))
	for _, record := range records {
		views = append(views, g.bookView(record.Slug, record.Entry))
	}
	return views
}

func (g *Generator) authorView(slug string, entry map[string]any) AuthorView {
	view := AuthorView{
		Slug:     slug,
		Name:     entryString(entry, "name"),
		Photo:    entryString(entry, "photo"),
		ShortBio: entryString(entry, "shortBio"),
		Bio:      g.markdown(entryString(entry, "bio")),
	}
	if view.Name == "" {
		view.Name = slug
	}
	if books, ok := entry["books"].([]content.Record); ok {
		view.Books = g.bookViews(books)
	}
	return view
}

func (g *Generator) newsView(slug string, entry map[string]any) NewsView {
	view := NewsView{
		Slug:        slug,
		Title:       entryString(entry, "title"),
		TypeLabel:   content.NewsTypeLabel(entryString(entry, "type")),
		PublishedAt: entryString(entry, "publishedAt"),
		Excerpt:     entryString(entry, "excerpt"),
		Body:        g.markdown(entryString(entry, "content")),
	}
	if view.Title == "" {
		view.Title = slug
	}
	if view.Excerpt == "" {
		view.Excerpt = content.FirstParagraphText(entry["content"])
	}
	if resolved, ok := entry["resolvedRelatedBooks"].([]map[string]any); ok {
		for _, book := range resolved {
			view.RelatedBooks = append(view.RelatedBooks, g.bookView(entryString(book, "slug"), book))
		}
	}
	return view
}

func (g *Generator) itemView(slug string, entry map[string]any, bodyField string) ItemView {
	view := ItemView{
		Slug:        slug,
		Title:       entryString(entry, "title"),
		PublishedAt: entryString(entry, "publishedAt"),
		Body:        g.markdown(entryString(entry, bodyField)),
	}
	if view.Title == "" {
		view.Title = slug
	}
	return view
}

func (g *Generator) pageView(title string, entry map[string]any, bodyField string) PageView {
	return PageView{
		Title: title,
		Body:  g.markdown(entryString(entry, bodyField)),
	}
}

func (g *Generator) homeView(homepage map[string]any, latestBooks, latestNews []content.Record) HomeView {
	view := HomeView{
		LatestBooks: g.bookViews(latestBooks),
	}
	for _, item := range latestNews {
		view.LatestNews = append(view.LatestNews, g.newsView(item.Slug, item.Entry))
	}
	if hero, ok := homepage["heroSection"].(map[string]any); ok {
		view.HeroTitle = entryString(hero, "title")
		view.HeroSubtitle = entryString(hero, "subtitle")
	}
	return view
}
