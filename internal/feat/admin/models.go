package admin

import (
	"time"

	"github.com/google/uuid"
)

// Schedule statuses.
const (
	SchedulePending   = "pending"
	ScheduleDone      = "done"
	ScheduleFailed    = "failed"
	ScheduleCancelled = "cancelled"
)

// Build statuses and triggers.
const (
	BuildRunning   = "running"
	BuildSucceeded = "succeeded"
	BuildFailed    = "failed"

	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// PublishSchedule is a stored request to build and publish the site at a
// given time.
type PublishSchedule struct {
	ID            uuid.UUID `json:"id"`
	ShortID       string    `json:"short_id"`
	PublishAt     time.Time `json:"publish_at"`
	CommitMessage string    `json:"commit_message"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BuildRun records one generation pass for the build history view.
type BuildRun struct {
	ID             uuid.UUID  `json:"id"`
	ShortID        string     `json:"short_id"`
	TriggeredBy    string     `json:"triggered_by"`
	Status         string     `json:"status"`
	TotalRoutes    int        `json:"total_routes"`
	PagesGenerated int        `json:"pages_generated"`
	Errors         []string   `json:"errors"`
	CommitHash     string     `json:"commit_hash,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

func newShortID(id uuid.UUID) string {
	return id.String()[:8]
}
