package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

func writeContentFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func testContentRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeContentFile(t, root, "books/sea-of-letters.mdoc",
		"---\ntitle: 편지의 바다\npublishDate: 2024-03-15\nauthors:\n  - kim-jiyoung\n---\n\nA novel told in letters.")
	writeContentFile(t, root, "books/old-harbor.mdoc",
		"---\ntitle: Old Harbor\npublishDate: 2021-09-01\nauthors:\n  - kim-jiyoung\n  - missing-author\n---\n\nEssays about a fading port town.")
	writeContentFile(t, root, "authors/kim-jiyoung.mdoc",
		"---\nname: 김지영\n---\n\nNovelist and essayist.")
	writeContentFile(t, root, "news/spring-catalog.mdoc",
		"---\ntitle: Spring Catalog\ntype: release\npublishedAt: 2024-04-01\nrelatedBooks:\n  - sea-of-letters\n---\n\nOur spring titles are out.")
	writeContentFile(t, root, "settings.yaml",
		"siteName: Dawnlight Press\nfooterText: All rights reserved")
	writeContentFile(t, root, "about/content.mdoc",
		"---\n---\nWe publish quiet books.")
	writeContentFile(t, root, "about/mission.yaml",
		"heading: Our Mission")
	writeContentFile(t, root, "legal.yaml",
		"privacyPolicy: We keep no data.")

	return root
}

// Both backends must answer identically, so run the full suite against each.
func storesUnderTest(t *testing.T) map[string]Store {
	root := testContentRoot(t)
	log := logger.NewNoopLogger()
	return map[string]Store{
		"fs":       NewFSStore(root, log),
		"snapshot": SnapshotFromDir(root, log),
	}
}

func TestStoreAll(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			records, err := store.All(context.Background(), ColBooks)
			require.NoError(t, err)
			require.Len(t, records, 2)

			slugs := []string{records[0].Slug, records[1].Slug}
			assert.Contains(t, slugs, "sea-of-letters")
			assert.Contains(t, slugs, "old-harbor")
		})
	}
}

func TestStoreAllUnknownCollection(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			records, err := store.All(context.Background(), "no-such-collection")
			require.NoError(t, err)
			assert.Empty(t, records)
		})
	}
}

func TestStoreReadMissingSlug(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := store.Read(context.Background(), ColBooks, "never-written")
			require.NoError(t, err)
			assert.Nil(t, entry)
		})
	}
}

// read(s) must deep-equal the record for s found via all(): some callers
// resolve relationships by individual reads while others scan the list.
func TestStoreConsistency(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			records, err := store.All(ctx, ColBooks)
			require.NoError(t, err)
			require.NotEmpty(t, records)

			for _, record := range records {
				entry, err := store.Read(ctx, ColBooks, record.Slug)
				require.NoError(t, err)
				assert.Equal(t, record.Entry, entry, "slug %s", record.Slug)
			}
		})
	}
}

func TestStoreSingletonDirectYAML(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := store.ReadSingleton(context.Background(), SingSettings)
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, "Dawnlight Press", entry["siteName"])
		})
	}
}

func TestStoreSingletonFieldDir(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := store.ReadSingleton(context.Background(), SingAbout)
			require.NoError(t, err)
			require.NotNil(t, entry)

			// content.mdoc parses to exactly its own field, so it unwraps.
			assert.Equal(t, "We publish quiet books.", entry["content"])
			// mission.yaml holds several fields, so it stays nested.
			mission, ok := entry["mission"].(map[string]any)
			require.True(t, ok, "mission should be a nested map, got %T", entry["mission"])
			assert.Equal(t, "Our Mission", mission["heading"])
		})
	}
}

func TestStoreSingletonBodyField(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := store.ReadSingleton(context.Background(), SingLegal)
			require.NoError(t, err)
			require.NotNil(t, entry)
			assert.Equal(t, "We keep no data.", entry["privacyPolicy"])
		})
	}
}

func TestStoreSingletonMissing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			entry, err := store.ReadSingleton(context.Background(), SingContact)
			require.NoError(t, err)
			assert.Nil(t, entry)
		})
	}
}

func TestFSStoreDegradedRoot(t *testing.T) {
	store := NewFSStore(filepath.Join(t.TempDir(), "does-not-exist"), logger.NewNoopLogger())
	ctx := context.Background()

	records, err := store.All(ctx, ColBooks)
	require.NoError(t, err)
	assert.Empty(t, records)

	entry, err := store.Read(ctx, ColBooks, "anything")
	require.NoError(t, err)
	assert.Nil(t, entry)

	single, err := store.ReadSingleton(ctx, SingSettings)
	require.NoError(t, err)
	assert.Nil(t, single)
}

func TestSnapshotStoreDegradedRoot(t *testing.T) {
	store := SnapshotFromDir(filepath.Join(t.TempDir(), "does-not-exist"), logger.NewNoopLogger())

	records, err := store.All(context.Background(), ColBooks)
	require.NoError(t, err)
	assert.Empty(t, records)
}
