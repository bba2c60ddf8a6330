package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/dawnlightpress/pages/pkg/dp/logger"
)

// Migration is a single versioned schema change. Files are named
// <datetime>-<name>.sql and carry "-- +migrate Up" / "-- +migrate Down"
// sections.
type Migration struct {
	Datetime string
	Name     string
	Up       string
	Down     string
}

// Migrator applies pending migrations from an embedded filesystem,
// tracking applied ones in a migrations table.
type Migrator struct {
	db       *sql.DB
	log      logger.Logger
	assetsFS embed.FS
	path     string
}

func New(assetsFS embed.FS, log logger.Logger) *Migrator {
	return &Migrator{
		assetsFS: assetsFS,
		path:     "assets/migrations/sqlite",
		log:      log,
	}
}

func (m *Migrator) SetDB(db *sql.DB) {
	m.db = db
}

// SetPath overrides the default embedded migration directory.
func (m *Migrator) SetPath(path string) {
	m.path = path
}

// Run applies pending migrations in datetime order, one transaction per
// migration.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("cannot create migrations table: %w", err)
	}

	available, err := m.loadFileMigrations()
	if err != nil {
		return fmt.Errorf("cannot load file migrations: %w", err)
	}

	applied, err := m.loadAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("cannot load applied migrations: %w", err)
	}

	var pending []Migration
	for _, mig := range available {
		if _, ok := applied[mig.Datetime+mig.Name]; !ok {
			pending = append(pending, mig)
		}
	}

	if len(pending) == 0 {
		m.log.Info("No pending migrations")
		return nil
	}

	m.log.Infof("Running %d pending migration(s)", len(pending))

	for _, mig := range pending {
		if err := m.apply(ctx, mig); err != nil {
			return fmt.Errorf("migration %s-%s failed: %w", mig.Datetime, mig.Name, err)
		}
		m.log.Infof("Applied migration: %s-%s", mig.Datetime, mig.Name)
	}

	return nil
}

func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		id TEXT PRIMARY KEY,
		datetime TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := m.db.ExecContext(ctx, query)
	return err
}

func (m *Migrator) loadFileMigrations() ([]Migration, error) {
	var migrations []Migration

	err := fs.WalkDir(m.assetsFS, m.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".sql") {
			return nil
		}

		filename := filepath.Base(path)
		parts := strings.SplitN(filename, "-", 2)
		if len(parts) < 2 {
			return fmt.Errorf("invalid migration filename: %s", filename)
		}

		content, err := m.assetsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read migration file %s: %w", path, err)
		}

		up, down := splitSections(string(content))

		migrations = append(migrations, Migration{
			Datetime: parts[0],
			Name:     strings.TrimSuffix(parts[1], ".sql"),
			Up:       up,
			Down:     down,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Datetime < migrations[j].Datetime
	})

	return migrations, nil
}

func splitSections(content string) (up, down string) {
	sections := strings.Split(content, "-- +migrate ")
	for _, section := range sections {
		switch {
		case strings.HasPrefix(section, "Up"):
			up = strings.TrimPrefix(section, "Up\n")
		case strings.HasPrefix(section, "Down"):
			down = strings.TrimPrefix(section, "Down\n")
		}
	}
	return up, down
}

func (m *Migrator) loadAppliedMigrations(ctx context.Context) (map[string]struct{}, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT datetime, name FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var datetime, name string
		if err := rows.Scan(&datetime, &name); err != nil {
			return nil, err
		}
		applied[datetime+name] = struct{}{}
	}
	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	if mig.Up == "" {
		return fmt.Errorf("no Up section found in migration %s-%s", mig.Datetime, mig.Name)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, mig.Up); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO migrations (id, datetime, name, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
		uuid.New().String(), mig.Datetime, mig.Name); err != nil {
		return err
	}

	return tx.Commit()
}
