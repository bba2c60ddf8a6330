package content

import (
	"context"
)

// Collection and singleton names as they appear on disk under the
// content root.
const (
	ColBooks          = "books"
	ColAuthors        = "authors"
	ColNews           = "news"
	ColDataRoom       = "dataroom"
	ColReferenceNotes = "reference-notes"

	SingSettings = "settings"
	SingHomepage = "homepage"
	SingAbout    = "about"
	SingContact  = "contact"
	SingLegal    = "legal"
)

// CollectionSpec ties a collection directory to the entry field its file
// bodies land in.
type CollectionSpec struct {
	Name      string
	BodyField string
}

// SingletonSpec is the same for singletons.
type SingletonSpec struct {
	Name      string
	BodyField string
}

var collectionSpecs = []CollectionSpec{
	{Name: ColBooks, BodyField: "description"},
	{Name: ColAuthors, BodyField: "bio"},
	{Name: ColNews, BodyField: "content"},
	{Name: ColDataRoom, BodyField: "description"},
	{Name: ColReferenceNotes, BodyField: "content"},
}

var singletonSpecs = []SingletonSpec{
	{Name: SingSettings, BodyField: "content"},
	{Name: SingHomepage, BodyField: "content"},
	{Name: SingAbout, BodyField: "content"},
	{Name: SingContact, BodyField: "content"},
	{Name: SingLegal, BodyField: "privacyPolicy"},
}

// CollectionSpecs returns the known collections. The slice is shared;
// callers must not mutate it.
func CollectionSpecs() []CollectionSpec {
	return collectionSpecs
}

func collectionSpec(name string) (CollectionSpec, bool) {
	for _, spec := range collectionSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return CollectionSpec{}, false
}

func singletonSpec(name string) (SingletonSpec, bool) {
	for _, spec := range singletonSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return SingletonSpec{}, false
}

// Record is one collection item: a filename-derived slug plus the parsed,
// untyped entry fields.
type Record struct {
	Slug  string         `json:"slug"`
	Entry map[string]any `json:"entry"`
}

// Store is the collection/singleton surface both backends implement.
// Reads for unknown names or slugs return nil, never an error; errors are
// reserved for genuine I/O faults.
type Store interface {
	All(ctx context.Context, collection string) ([]Record, error)
	Read(ctx context.Context, collection, slug string) (map[string]any, error)
	ReadSingleton(ctx context.Context, name string) (map[string]any, error)
}

var contentExtensions = []string{".mdoc", ".yaml", ".yml"}

func hasContentExtension(name string) bool {
	for _, ext := range contentExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

func trimContentExtension(name string) string {
	for _, ext := range contentExtensions {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}
