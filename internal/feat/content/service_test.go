package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

func testService(t *testing.T) *Service {
	t.Helper()
	store := NewFSStore(testContentRoot(t), logger.NewNoopLogger())
	return NewService(store, logger.NewNoopLogger())
}

func TestGetAllBooksSorted(t *testing.T) {
	svc := testService(t)

	books, err := svc.GetAllBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "sea-of-letters", books[0].Slug)
	assert.Equal(t, "old-harbor", books[1].Slug)
}

func TestGetBookBySlugMissing(t *testing.T) {
	svc := testService(t)

	book, err := svc.GetBookBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, book)
}

// One valid and one dangling author reference: the resolved list holds
// exactly the valid entry, no placeholder, no error.
func TestGetBookWithAuthorsDanglingRef(t *testing.T) {
	svc := testService(t)

	book, err := svc.GetBookWithAuthors(context.Background(), "old-harbor")
	require.NoError(t, err)
	require.NotNil(t, book)

	// the raw reference field stays untouched
	assert.Equal(t, []any{"kim-jiyoung", "missing-author"}, book["authors"])

	resolved, ok := book["resolvedAuthors"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, resolved, 1)
	assert.Equal(t, "kim-jiyoung", resolved[0]["slug"])
	assert.Equal(t, "김지영", resolved[0]["name"])
}

func TestGetAuthorWithBooks(t *testing.T) {
	svc := testService(t)

	author, err := svc.GetAuthorWithBooks(context.Background(), "kim-jiyoung")
	require.NoError(t, err)
	require.NotNil(t, author)

	books, ok := author["books"].([]Record)
	require.True(t, ok)
	require.Len(t, books, 2)
	// newest first
	assert.Equal(t, "sea-of-letters", books[0].Slug)
}

func TestGetAuthorWithBooksMissingAuthor(t *testing.T) {
	svc := testService(t)

	author, err := svc.GetAuthorWithBooks(context.Background(), "no-such-author")
	require.NoError(t, err)
	assert.Nil(t, author)
}

func TestGetAllNewsFiltersDrafts(t *testing.T) {
	root := testContentRoot(t)
	writeContentFile(t, root, "news/draft-item.mdoc",
		"---\ntitle: Draft\ntype: notice\n---\n\nNot yet published.")

	svc := NewService(NewFSStore(root, logger.NewNoopLogger()), logger.NewNoopLogger())

	news, err := svc.GetAllNews(context.Background())
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "spring-catalog", news[0].Slug)
}

func TestGetNewsBySlugResolvesBooks(t *testing.T) {
	svc := testService(t)

	item, err := svc.GetNewsBySlug(context.Background(), "spring-catalog")
	require.NoError(t, err)
	require.NotNil(t, item)

	resolved, ok := item["resolvedRelatedBooks"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, resolved, 1)
	assert.Equal(t, "sea-of-letters", resolved[0]["slug"])
	assert.Equal(t, "편지의 바다", resolved[0]["title"])
}

func TestGetLatestBooksLimit(t *testing.T) {
	svc := testService(t)

	books, err := svc.GetLatestBooks(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "sea-of-letters", books[0].Slug)

	// limit beyond the collection size returns everything
	books, err = svc.GetLatestBooks(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// non-positive limits yield nothing
	for _, limit := range []int{0, -1} {
		books, err = svc.GetLatestBooks(context.Background(), limit)
		require.NoError(t, err)
		assert.Empty(t, books)

		news, err := svc.GetLatestNews(context.Background(), limit)
		require.NoError(t, err)
		assert.Empty(t, news)
	}
}

func TestSingletonFetchers(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	settings, err := svc.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "Dawnlight Press", settings["siteName"])

	legal, err := svc.GetLegal(ctx)
	require.NoError(t, err)
	require.NotNil(t, legal)
	assert.Equal(t, "We keep no data.", legal["privacyPolicy"])

	contact, err := svc.GetContact(ctx)
	require.NoError(t, err)
	assert.Nil(t, contact)
}

func TestServiceAgainstDegradedStore(t *testing.T) {
	store := NewFSStore("/nonexistent/content/root", logger.NewNoopLogger())
	svc := NewService(store, logger.NewNoopLogger())
	ctx := context.Background()

	books, err := svc.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	book, err := svc.GetBookWithAuthors(ctx, "anything")
	require.NoError(t, err)
	assert.Nil(t, book)

	news, err := svc.GetAllNews(ctx)
	require.NoError(t, err)
	assert.Empty(t, news)
}
