package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DBProvider hands out the live database handle. The connection only
// exists after the database component has started, so the store resolves
// it per call instead of capturing it at construction.
type DBProvider interface {
	GetDB() *sql.DB
}

// Store persists publish schedules and build-run history in SQLite.
type Store struct {
	db DBProvider
}

func NewStore(db DBProvider) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSchedule(ctx context.Context, schedule *PublishSchedule) error {
	_, err := s.db.GetDB().ExecContext(ctx, `
		INSERT INTO publish_schedules (id, short_id, publish_at, commit_message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		schedule.ID.String(), schedule.ShortID, schedule.PublishAt.UTC(), schedule.CommitMessage, schedule.Status)
	if err != nil {
		return fmt.Errorf("cannot insert schedule: %w", err)
	}
	return nil
}

func (s *Store) ListSchedules(ctx context.Context) ([]*PublishSchedule, error) {
	rows, err := s.db.GetDB().QueryContext(ctx, `
		SELECT id, short_id, publish_at, commit_message, status, error, created_at, updated_at
		FROM publish_schedules ORDER BY publish_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("cannot list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*PublishSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

// DueSchedules returns pending schedules whose publish time has passed.
func (s *Store) DueSchedules(ctx context.Context, now time.Time) ([]*PublishSchedule, error) {
	rows, err := s.db.GetDB().QueryContext(ctx, `
		SELECT id, short_id, publish_at, commit_message, status, error, created_at, updated_at
		FROM publish_schedules
		WHERE status = ? AND publish_at <= ?
		ORDER BY publish_at`,
		SchedulePending, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("cannot query due schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*PublishSchedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (s *Store) UpdateScheduleStatus(ctx context.Context, id uuid.UUID, status, errorMsg string) error {
	res, err := s.db.GetDB().ExecContext(ctx, `
		UPDATE publish_schedules SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, errorMsg, id.String())
	if err != nil {
		return fmt.Errorf("cannot update schedule: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanSchedule(rows *sql.Rows) (*PublishSchedule, error) {
	var (
		schedule PublishSchedule
		id       string
	)
	if err := rows.Scan(&id, &schedule.ShortID, &schedule.PublishAt, &schedule.CommitMessage,
		&schedule.Status, &schedule.Error, &schedule.CreatedAt, &schedule.UpdatedAt); err != nil {
		return nil, fmt.Errorf("cannot scan schedule: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("cannot parse schedule id: %w", err)
	}
	schedule.ID = parsed
	return &schedule, nil
}

func (s *Store) CreateBuildRun(ctx context.Context, run *BuildRun) error {
	_, err := s.db.GetDB().ExecContext(ctx, `
		INSERT INTO build_runs (id, short_id, triggered_by, status, started_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(), run.ShortID, run.TriggeredBy, run.Status, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("cannot insert build run: %w", err)
	}
	return nil
}

func (s *Store) FinishBuildRun(ctx context.Context, run *BuildRun) error {
	errorsJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("cannot marshal build errors: %w", err)
	}
	if run.Errors == nil {
		errorsJSON = []byte("[]")
	}

	_, err = s.db.GetDB().ExecContext(ctx, `
		UPDATE build_runs
		SET status = ?, total_routes = ?, pages_generated = ?, errors = ?, commit_hash = ?, finished_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		run.Status, run.TotalRoutes, run.PagesGenerated, string(errorsJSON), run.CommitHash, run.ID.String())
	if err != nil {
		return fmt.Errorf("cannot finish build run: %w", err)
	}
	return nil
}

func (s *Store) ListBuildRuns(ctx context.Context, limit int) ([]*BuildRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.GetDB().QueryContext(ctx, `
		SELECT id, short_id, triggered_by, status, total_routes, pages_generated, errors, commit_hash, started_at, finished_at
		FROM build_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("cannot list build runs: %w", err)
	}
	defer rows.Close()

	var runs []*BuildRun
	for rows.Next() {
		var (
			run        BuildRun
			id         string
			errorsJSON string
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&id, &run.ShortID, &run.TriggeredBy, &run.Status, &run.TotalRoutes,
			&run.PagesGenerated, &errorsJSON, &run.CommitHash, &run.StartedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("cannot scan build run: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("cannot parse build run id: %w", err)
		}
		run.ID = parsed
		if err := json.Unmarshal([]byte(errorsJSON), &run.Errors); err != nil {
			run.Errors = nil
		}
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
