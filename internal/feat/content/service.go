package content

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// Service exposes the typed fetcher surface page renderers consume. All
// not-found cases come back as nil or empty, never as an error; errors
// are reserved for store I/O faults.
type Service struct {
	store Store
	log   logger.Logger
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// GetAllBooks returns all books sorted descending by publish date.
// Books without a parseable date sort oldest.
func (s *Service) GetAllBooks(ctx context.Context) ([]Record, error) {
	books, err := s.store.All(ctx, ColBooks)
	if err != nil {
		return nil, err
	}
	sortByDateDesc(books, "publishDate")
	return books, nil
}

func (s *Service) GetBookBySlug(ctx context.Context, slug string) (map[string]any, error) {
	return s.store.Read(ctx, ColBooks, slug)
}

// GetBookWithAuthors reads a book and inlines its authors under
// resolvedAuthors. Author slugs that resolve to nothing are silently
// dropped: an invalid reference degrades the page, it does not fail it.
func (s *Service) GetBookWithAuthors(ctx context.Context, slug string) (map[string]any, error) {
	book, err := s.store.Read(ctx, ColBooks, slug)
	if err != nil || book == nil {
		return nil, err
	}

	resolved, err := s.resolveRefs(ctx, ColAuthors, stringSlice(book["authors"]))
	if err != nil {
		return nil, err
	}

	out := cloneEntry(book)
	out["resolvedAuthors"] = resolved
	return out, nil
}

func (s *Service) GetAllAuthors(ctx context.Context) ([]Record, error) {
	return s.store.All(ctx, ColAuthors)
}

// GetAuthorWithBooks computes the inverse relationship by scanning the
// books collection; no back-reference is stored on the author record.
func (s *Service) GetAuthorWithBooks(ctx context.Context, slug string) (map[string]any, error) {
	author, err := s.store.Read(ctx, ColAuthors, slug)
	if err != nil || author == nil {
		return nil, err
	}

	books, err := s.store.All(ctx, ColBooks)
	if err != nil {
		return nil, err
	}

	var authored []Record
	for _, book := range books {
		if containsString(stringSlice(book.Entry["authors"]), slug) {
			authored = append(authored, book)
		}
	}
	sortByDateDesc(authored, "publishDate")
	if authored == nil {
		authored = []Record{}
	}

	out := cloneEntry(author)
	out["books"] = authored
	return out, nil
}

// GetAllNews returns published news sorted newest first. Entries without
// a publishedAt field are drafts and excluded. A store fault degrades to
// an empty list.
func (s *Service) GetAllNews(ctx context.Context) ([]Record, error) {
	return s.publishedSorted(ctx, ColNews)
}

// GetNewsBySlug inlines related books under resolvedRelatedBooks with the
// same silent-drop policy as author resolution.
func (s *Service) GetNewsBySlug(ctx context.Context, slug string) (map[string]any, error) {
	item, err := s.store.Read(ctx, ColNews, slug)
	if err != nil || item == nil {
		return nil, err
	}

	resolved, err := s.resolveRefs(ctx, ColBooks, stringSlice(item["relatedBooks"]))
	if err != nil {
		return nil, err
	}

	out := cloneEntry(item)
	out["resolvedRelatedBooks"] = resolved
	return out, nil
}

func (s *Service) GetAllDataRoom(ctx context.Context) ([]Record, error) {
	return s.publishedSorted(ctx, ColDataRoom)
}

func (s *Service) GetDataRoomBySlug(ctx context.Context, slug string) (map[string]any, error) {
	return s.store.Read(ctx, ColDataRoom, slug)
}

func (s *Service) GetAllReferenceNotes(ctx context.Context) ([]Record, error) {
	return s.publishedSorted(ctx, ColReferenceNotes)
}

func (s *Service) GetReferenceNoteBySlug(ctx context.Context, slug string) (map[string]any, error) {
	return s.store.Read(ctx, ColReferenceNotes, slug)
}

func (s *Service) GetSettings(ctx context.Context) (map[string]any, error) {
	return s.store.ReadSingleton(ctx, SingSettings)
}

func (s *Service) GetHomepage(ctx context.Context) (map[string]any, error) {
	return s.store.ReadSingleton(ctx, SingHomepage)
}

func (s *Service) GetAbout(ctx context.Context) (map[string]any, error) {
	return s.store.ReadSingleton(ctx, SingAbout)
}

func (s *Service) GetContact(ctx context.Context) (map[string]any, error) {
	return s.store.ReadSingleton(ctx, SingContact)
}

func (s *Service) GetLegal(ctx context.Context) (map[string]any, error) {
	return s.store.ReadSingleton(ctx, SingLegal)
}

func (s *Service) GetLatestBooks(ctx context.Context, limit int) ([]Record, error) {
	books, err := s.GetAllBooks(ctx)
	if err != nil {
		return nil, err
	}
	return headRecords(books, limit), nil
}

func (s *Service) GetLatestNews(ctx context.Context, limit int) ([]Record, error) {
	news, err := s.GetAllNews(ctx)
	if err != nil {
		return nil, err
	}
	return headRecords(news, limit), nil
}

// headRecords takes the first limit records; a non-positive limit yields
// nothing rather than a panic.
func headRecords(records []Record, limit int) []Record {
	if limit <= 0 {
		return nil
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

// resolveRefs reads each referenced slug concurrently (references are
// independent and order-insensitive) and joins before returning,
// preserving reference order. Dangling slugs are dropped without a
// placeholder.
func (s *Service) resolveRefs(ctx context.Context, collection string, slugs []string) ([]map[string]any, error) {
	found := make([]map[string]any, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	for i, refSlug := range slugs {
		g.Go(func() error {
			entry, err := s.store.Read(gctx, collection, refSlug)
			if err != nil {
				return err
			}
			if entry == nil {
				s.log.Debug("Dropping dangling reference", "collection", collection, "slug", refSlug)
				return nil
			}
			record := cloneEntry(entry)
			record["slug"] = refSlug
			found[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resolved := make([]map[string]any, 0, len(found))
	for _, record := range found {
		if record != nil {
			resolved = append(resolved, record)
		}
	}
	return resolved, nil
}

// publishedSorted is the shared list behavior for date-stamped
// collections: drop entries without publishedAt, sort newest first,
// degrade to empty on store faults.
func (s *Service) publishedSorted(ctx context.Context, collection string) ([]Record, error) {
	items, err := s.store.All(ctx, collection)
	if err != nil {
		s.log.Warn("Cannot fetch collection", "collection", collection, "error", err)
		return []Record{}, nil
	}

	published := make([]Record, 0, len(items))
	for _, item := range items {
		if v, ok := item.Entry["publishedAt"].(string); ok && v != "" {
			published = append(published, item)
		}
	}
	sortByDateDesc(published, "publishedAt")
	return published, nil
}

func sortByDateDesc(records []Record, field string) {
	sort.SliceStable(records, func(i, j int) bool {
		return parseEntryDate(records[i].Entry[field]).After(parseEntryDate(records[j].Entry[field]))
	})
}

// stringSlice coerces a reference field into its slugs, skipping empty
// and non-string members.
func stringSlice(value any) []string {
	items, ok := value.([]any)
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

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func cloneEntry(entry map[string]any) map[string]any {
	out := make(map[string]any, len(entry)+1)
	for k, v := range entry {
		out[k] = v
	}
	return out
}
