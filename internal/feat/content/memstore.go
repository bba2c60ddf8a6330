package content

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// SnapshotStore serves content from a one-time in-memory snapshot of
// every raw file under a content root. The snapshot is read-only after
// construction, so concurrent reads need no locking. Files are parsed on
// demand per call. Used by the preview endpoint so edits held in memory
// can be rendered without touching disk.
type SnapshotStore struct {
	files map[string]string // slash-separated path relative to root -> raw contents
	log   logger.Logger
}

// NewSnapshotStore builds a store over an explicit path->raw map.
func NewSnapshotStore(files map[string]string, log logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		files: files,
		log:   log,
	}
}

// SnapshotFromDir eagerly loads every content file under root into
// memory. An unavailable root yields an empty snapshot and a warning,
// mirroring the filesystem store's degraded mode.
func SnapshotFromDir(root string, log logger.Logger) *SnapshotStore {
	files := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !hasContentExtension(d.Name()) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(raw)
		return nil
	})
	if err != nil {
		log.Warn("Cannot snapshot content root, store degraded", "root", root, "error", err)
		files = map[string]string{}
	}

	return NewSnapshotStore(files, log)
}

func (s *SnapshotStore) All(ctx context.Context, collection string) ([]Record, error) {
	spec, ok := collectionSpec(collection)
	if !ok {
		return []Record{}, nil
	}

	prefix := spec.Name + "/"
	var records []Record
	for _, path := range s.sortedPaths() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		records = append(records, Record{
			Slug:  trimContentExtension(rest),
			Entry: ParseFile(path, s.files[path], spec.BodyField),
		})
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func (s *SnapshotStore) Read(ctx context.Context, collection, slug string) (map[string]any, error) {
	spec, ok := collectionSpec(collection)
	if !ok {
		return nil, nil
	}
	return s.readCandidates(spec.Name+"/"+slug, spec.BodyField, contentExtensions), nil
}

func (s *SnapshotStore) ReadSingleton(ctx context.Context, name string) (map[string]any, error) {
	spec, ok := singletonSpec(name)
	if !ok {
		return nil, nil
	}

	if merged := s.readFieldDir(spec.Name + "/"); len(merged) > 0 {
		return merged, nil
	}
	return s.readCandidates(spec.Name, spec.BodyField, []string{".yaml", ".yml", ".mdoc"}), nil
}

func (s *SnapshotStore) readCandidates(base, bodyField string, extensions []string) map[string]any {
	for _, ext := range extensions {
		if raw, ok := s.files[base+ext]; ok {
			return ParseFile(base+ext, raw, bodyField)
		}
	}
	return nil
}

func (s *SnapshotStore) readFieldDir(prefix string) map[string]any {
	merged := map[string]any{}
	for _, path := range s.sortedPaths() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		if strings.Contains(rest, "/") {
			continue
		}
		key := trimContentExtension(rest)
		parsed := ParseFile(path, s.files[path], key)
		if value, ok := parsed[key]; ok && len(parsed) == 1 {
			merged[key] = value
		} else {
			merged[key] = parsed
		}
	}
	return merged
}

// sortedPaths keeps enumeration deterministic, matching directory order
// of the filesystem store.
func (s *SnapshotStore) sortedPaths() []string {
	paths := make([]string, 0, len(s.files))
	for path := range s.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
