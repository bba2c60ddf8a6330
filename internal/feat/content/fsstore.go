package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// FSStore reads content straight from a content root on every call. No
// caching: each read reflects the files as they are now.
type FSStore struct {
	root     string
	log      logger.Logger
	degraded bool
}

// NewFSStore returns a filesystem-backed store. A missing or unreadable
// content root does not fail construction: the store degrades to empty
// results so one broken content path cannot take down unrelated sections.
func NewFSStore(root string, log logger.Logger) *FSStore {
	s := &FSStore{
		root: root,
		log:  log,
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		log.Warn("Content root unavailable, store degraded", "root", root)
		s.degraded = true
	}
	return s
}

func (s *FSStore) All(ctx context.Context, collection string) ([]Record, error) {
	spec, ok := collectionSpec(collection)
	if !ok || s.degraded {
		return []Record{}, nil
	}

	dir := filepath.Join(s.root, spec.Name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("cannot read collection directory %s: %w", dir, err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !hasContentExtension(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read content file %s: %w", path, err)
		}

		records = append(records, Record{
			Slug:  trimContentExtension(entry.Name()),
			Entry: ParseFile(path, string(raw), spec.BodyField),
		})
	}
	return records, nil
}

func (s *FSStore) Read(ctx context.Context, collection, slug string) (map[string]any, error) {
	spec, ok := collectionSpec(collection)
	if !ok || s.degraded {
		return nil, nil
	}
	base := filepath.Join(s.root, spec.Name, slug)
	return s.readCandidates(base, spec.BodyField, contentExtensions)
}

func (s *FSStore) ReadSingleton(ctx context.Context, name string) (map[string]any, error) {
	spec, ok := singletonSpec(name)
	if !ok || s.degraded {
		return nil, nil
	}

	base := filepath.Join(s.root, spec.Name)

	// A directory of per-field files wins over a single file: singletons
	// whose fields are individually editable are stored that way.
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		merged, err := s.readFieldDir(base)
		if err != nil {
			return nil, err
		}
		if len(merged) > 0 {
			return merged, nil
		}
	}

	// Structured singletons live in YAML, so prefer it over .mdoc here.
	return s.readCandidates(base, spec.BodyField, []string{".yaml", ".yml", ".mdoc"})
}

// readCandidates tries each extension in order and parses the first file
// that exists. Nothing found means nil, not an error.
func (s *FSStore) readCandidates(base, bodyField string, extensions []string) (map[string]any, error) {
	for _, ext := range extensions {
		path := base + ext
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("cannot read content file %s: %w", path, err)
		}
		return ParseFile(path, string(raw), bodyField), nil
	}
	return nil, nil
}

// readFieldDir merges a directory of per-field files into one entry.
// Each filename (sans extension) becomes a field; a parsed file holding
// exactly its own field is unwrapped to the field value.
func (s *FSStore) readFieldDir(dir string) (map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read singleton directory %s: %w", dir, err)
	}

	merged := map[string]any{}
	for _, entry := range entries {
		if entry.IsDir() || !hasContentExtension(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read content file %s: %w", path, err)
		}

		key := trimContentExtension(entry.Name())
		parsed := ParseFile(path, string(raw), key)
		if value, ok := parsed[key]; ok && len(parsed) == 1 {
			merged[key] = value
		} else {
			merged[key] = parsed
		}
	}
	return merged, nil
}
