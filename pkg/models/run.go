package models

import "time"

// RunStatus is the lifecycle state of a scrape run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunConfig is the configuration snapshot persisted with every run so a past
// run remains self-describing.
type RunConfig struct {
	Sources               []string `json:"sources"`
	IncludeProductAnalyst bool     `json:"includeProductAnalyst"`
	MaxJobs               int      `json:"maxJobs"`
	Locations             []string `json:"locations"`
	TargetRoles           []string `json:"targetRoles"`
	TimePeriodDays        int      `json:"timePeriod"`
}

// ScrapeRun is one discovery session across a chosen set of sources.
type ScrapeRun struct {
	ID                    int        `json:"id"`
	Status                RunStatus  `json:"status"`
	StartedAt             time.Time  `json:"startedAt"`
	CompletedAt           *time.Time `json:"completedAt"`
	JobsFound             int        `json:"jobsFound"`
	Sources               []string   `json:"sources"`
	Error                 *string    `json:"error"`
	IncludeProductAnalyst bool       `json:"includeProductAnalyst"`
	MaxJobs               int        `json:"maxJobs"`
	Locations             []string   `json:"locations"`
	TargetRoles           []string   `json:"targetRoles"`
	TimePeriodDays        int        `json:"timePeriod"`
}

// RunUpdate carries the mutable fields of a run. Nil fields are left as-is.
type RunUpdate struct {
	Status      *RunStatus
	CompletedAt *time.Time
	JobsFound   *int
	Error       *string
}

// Stats is the dashboard aggregate exposed by the read API.
type Stats struct {
	TotalJobs int      `json:"totalJobs"`
	NewJobs   int      `json:"newJobs"`
	TotalRuns int      `json:"totalRuns"`
	Sources   []string `json:"sources"`
}
