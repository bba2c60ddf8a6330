package site

import (
	"context"
	"fmt"
)

// pageResult carries one route's output: Data is serialized into the
// hydration payload verbatim, View is what the kind's template renders.
type pageResult struct {
	Data any
	View any
}

// Route ties a path to its data fetcher. Descriptors live for one
// generation pass.
type Route struct {
	Path  string
	Kind  string
	Fetch func(ctx context.Context) (*pageResult, error)
}

// enumerateRoutes builds the full route list: the static pages plus one
// route per collection item as of right now. The snapshot is
// point-in-time; content changed mid-run is not picked up.
func (g *Generator) enumerateRoutes(ctx context.Context) ([]Route, error) {
	routes := []Route{
		{Path: "/", Kind: "home", Fetch: g.fetchHome},
		{Path: "/books", Kind: "books", Fetch: g.fetchBookList},
		{Path: "/authors", Kind: "authors", Fetch: g.fetchAuthorList},
		{Path: "/news", Kind: "news", Fetch: g.fetchNewsList},
		{Path: "/dataroom", Kind: "dataroom", Fetch: g.fetchDataRoomList},
		{Path: "/reference-notes", Kind: "notes", Fetch: g.fetchReferenceNoteList},
		{Path: "/about", Kind: "page", Fetch: g.fetchAbout},
		{Path: "/contact", Kind: "page", Fetch: g.fetchContact},
		{Path: "/privacy", Kind: "page", Fetch: g.fetchPrivacy},
	}

	books, err := g.svc.GetAllBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate book routes: %w", err)
	}
	for _, book := range books {
		slug := book.Slug
		routes = append(routes, Route{
			Path: "/books/" + slug,
			Kind: "book",
			Fetch: func(ctx context.Context) (*pageResult, error) {
				return g.fetchBook(ctx, slug)
			},
		})
	}

	authors, err := g.svc.GetAllAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate author routes: %w", err)
	}
	for _, author := range authors {
		slug := author.Slug
		routes = append(routes, Route{
			Path: "/authors/" + slug,
			Kind: "author",
			Fetch: func(ctx context.Context) (*pageResult, error) {
				return g.fetchAuthor(ctx, slug)
			},
		})
	}

	news, err := g.svc.GetAllNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate news routes: %w", err)
	}
	for _, item := range news {
		slug := item.Slug
		routes = append(routes, Route{
			Path: "/news/" + slug,
			Kind: "news_item",
			Fetch: func(ctx context.Context) (*pageResult, error) {
				return g.fetchNewsItem(ctx, slug)
			},
		})
	}

	dataroom, err := g.svc.GetAllDataRoom(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate dataroom routes: %w", err)
	}
	for _, item := range dataroom {
		slug := item.Slug
		routes = append(routes, Route{
			Path: "/dataroom/" + slug,
			Kind: "dataroom_item",
			Fetch: func(ctx context.Context) (*pageResult, error) {
				return g.fetchDataRoomItem(ctx, slug)
			},
		})
	}

	notes, err := g.svc.GetAllReferenceNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate reference-note routes: %w", err)
	}
	for _, item := range notes {
		slug := item.Slug
		routes = append(routes, Route{
			Path: "/reference-notes/" + slug,
			Kind: "note_item",
			Fetch: func(ctx context.Context) (*pageResult, error) {
				return g.fetchReferenceNote(ctx, slug)
			},
		})
	}

	return routes, nil
}

func (g *Generator) fetchHome(ctx context.Context) (*pageResult, error) {
	homepage, err := g.svc.GetHomepage(ctx)
	if err != nil {
		return nil, err
	}
	latestBooks, err := g.svc.GetLatestBooks(ctx, 4)
	if err != nil {
		return nil, err
	}
	latestNews, err := g.svc.GetLatestNews(ctx, 3)
	if err != nil {
		return nil, err
	}

	var hero any
	if homepage != nil {
		hero = homepage["heroSection"]
	}
	return &pageResult{
		Data: map[string]any{
			"hero":        hero,
			"latestBooks": latestBooks,
			"latestNews":  latestNews,
		},
		View: g.homeView(homepage, latestBooks, latestNews),
	}, nil
}

func (g *Generator) fetchBookList(ctx context.Context) (*pageResult, error) {
	books, err := g.svc.GetAllBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &pageResult{Data: books, View: g.bookViews(books)}, nil
}

func (g *Generator) fetchAuthorList(ctx context.Context) (*pageResult, error) {
	authors, err := g.svc.GetAllAuthors(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]AuthorView, 0, len(authors))
	for _, author := range authors {
		views = append(views, g.authorView(author.Slug, author.Entry))
	}
	return &pageResult{Data: authors, View: views}, nil
}

func (g *Generator) fetchNewsList(ctx context.Context) (*pageResult, error) {
	news, err := g.svc.GetAllNews(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]NewsView, 0, len(news))
	for _, item := range news {
		views = append(views, g.newsView(item.Slug, item.Entry))
	}
	return &pageResult{Data: news, View: views}, nil
}

func (g *Generator) fetchDataRoomList(ctx context.Context) (*pageResult, error) {
	items, err := g.svc.GetAllDataRoom(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, g.itemView(item.Slug, item.Entry, "description"))
	}
	return &pageResult{Data: items, View: views}, nil
}

func (g *Generator) fetchReferenceNoteList(ctx context.Context) (*pageResult, error) {
	items, err := g.svc.GetAllReferenceNotes(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, g.itemView(item.Slug, item.Entry, "content"))
	}
	return &pageResult{Data: items, View: views}, nil
}

func (g *Generator) fetchAbout(ctx context.Context) (*pageResult, error) {
	about, err := g.svc.GetAbout(ctx)
	if err != nil {
		return nil, err
	}
	return &pageResult{Data: about, View: g.pageView("About", about, "content")}, nil
}

func (g *Generator) fetchContact(ctx context.Context) (*pageResult, error) {
	contact, err := g.svc.GetContact(ctx)
	if err != nil {
		return nil, err
	}
	return &pageResult{Data: contact, View: g.pageView("Contact", contact, "content")}, nil
}

func (g *Generator) fetchPrivacy(ctx context.Context) (*pageResult, error) {
	legal, err := g.svc.GetLegal(ctx)
	if err != nil {
		return nil, err
	}
	return &pageResult{Data: legal, View: g.pageView("Privacy Policy", legal, "privacyPolicy")}, nil
}

func (g *Generator) fetchBook(ctx context.Context, slug string) (*pageResult, error) {
	book, err := g.svc.GetBookWithAuthors(ctx, slug)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("book %s not found", slug)
	}
	return &pageResult{Data: book, View: g.bookView(slug, book)}, nil
}

func (g *Generator) fetchAuthor(ctx context.Context, slug string) (*pageResult, error) {
	author, err := g.svc.GetAuthorWithBooks(ctx, slug)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, fmt.Errorf("author %s not found", slug)
	}
	return &pageResult{Data: author, View: g.authorView(slug, author)}, nil
}

func (g *Generator) fetchNewsItem(ctx context.Context, slug string) (*pageResult, error) {
	item, err := g.svc.GetNewsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("news item %s not found", slug)
	}
	return &pageResult{Data: item, View: g.newsView(slug, item)}, nil
}

func (g *Generator) fetchDataRoomItem(ctx context.Context, slug string) (*pageResult, error) {
	item, err := g.svc.GetDataRoomBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("dataroom item %s not found", slug)
	}
	return &pageResult{Data: item, View: g.itemView(slug, item, "description")}, nil
}

func (g *Generator) fetchReferenceNote(ctx context.Context, slug string) (*pageResult, error) {
	item, err := g.svc.GetReferenceNoteBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("reference note %s not found", slug)
	}
	return &pageResult{Data: item, View: g.itemView(slug, item, "content")}, nil
}
