package site

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Manifest records what a generation run produced, with a content
// fingerprint per file so a publisher can skip unchanged output.
type Manifest struct {
	RunID       string                   `json:"runId"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Files       map[string]ManifestEntry `json:"files"`
}

// ManifestEntry fingerprints one output file.
type ManifestEntry struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

func (g *Generator) writeManifest(runID uuid.UUID, written []string) error {
	manifest := Manifest{
		RunID:       runID.String(),
		GeneratedAt: time.Now().UTC(),
		Files:       make(map[string]ManifestEntry, len(written)),
	}

	for _, path := range written {
		entry, err := fingerprintFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(g.cfg.Site.OutputDir, path)
		if err != nil {
			rel = path
		}
		manifest.Files[filepath.ToSlash(rel)] = entry
	}

	body, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(g.cfg.Site.OutputDir, "manifest.json"), body, 0644)
}

func fingerprintFile(path string) (ManifestEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ManifestEntry{}, fmt.Errorf("cannot fingerprint %s: %w", path, err)
	}
	sum := blake2b.Sum256(raw)
	return ManifestEntry{
		Hash: hex.EncodeToString(sum[:]),
		Size: int64(len(raw)),
	}, nil
}
