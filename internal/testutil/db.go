package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// NewDB opens an in-memory SQLite database with every migration applied
// and closes it when the test finishes.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("cannot open database: %v", err)
	}
	// each in-memory connection is its own database; keep the pool at one
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := applyMigrations(db); err != nil {
		t.Fatalf("cannot apply migrations: %v", err)
	}

	return db
}

func applyMigrations(db *sql.DB) error {
	dir := findMigrationsDir()
	if dir == "" {
		return fmt.Errorf("migrations directory not found")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("cannot read migration %s: %w", name, err)
		}

		up := upSection(string(content))
		if up == "" {
			continue
		}
		if _, err := db.Exec(up); err != nil {
			return fmt.Errorf("cannot execute migration %s: %w", name, err)
		}
	}

	return nil
}

func findMigrationsDir() string {
	candidates := []string{
		"assets/migrations/sqlite",
		"../assets/migrations/sqlite",
		"../../assets/migrations/sqlite",
		"../../../assets/migrations/sqlite",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func upSection(content string) string {
	var lines []string
	inUp := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "+migrate Up") {
			inUp = true
			continue
		}
		if strings.Contains(trimmed, "+migrate Down") {
			break
		}
		if inUp {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
