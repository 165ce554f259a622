package models

import "time"

// JobStatus tracks where a discovered job sits in the user's workflow.
type JobStatus string

const (
	JobStatusDiscovered JobStatus = "discovered"
	JobStatusInterested JobStatus = "interested"
	JobStatusApplied    JobStatus = "applied"
	JobStatusRejected   JobStatus = "rejected"
)

// ValidJobStatus reports whether s is one of the known workflow statuses.
func ValidJobStatus(s string) bool {
	switch JobStatus(s) {
	case JobStatusDiscovered, JobStatusInterested, JobStatusApplied, JobStatusRejected:
		return true
	}
	return false
}

// Job is a persisted job listing discovered by a scrape run.
type Job struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Source          string    `json:"source"`
	URL             string    `json:"url"`
	PostedDate      *string   `json:"postedDate"`
	RelevanceReason string    `json:"relevanceReason"`
	ScrapedAt       time.Time `json:"scrapedAt"`
	RunID           *int      `json:"runId"`
	Salary          *string   `json:"salary"`
	Description     *string   `json:"description"`
	IsNew           bool      `json:"isNew"`
	Status          JobStatus `json:"status"`
}

// JobSeed is the insert shape for a job candidate. The orchestrator stamps
// RunID just before persistence; adapters leave it nil.
type JobSeed struct {
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Location        string  `json:"location"`
	Source          string  `json:"source"`
	URL             string  `json:"url"`
	PostedDate      *string `json:"postedDate,omitempty"`
	RelevanceReason string  `json:"relevanceReason"`
	RunID           *int    `json:"runId,omitempty"`
	Salary          *string `json:"salary,omitempty"`
	Description     *string `json:"description,omitempty"`
}

// JobUpdate carries the mutable fields of a job for partial updates.
type JobUpdate struct {
	IsNew  *bool   `json:"isNew,omitempty"`
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=discovered interested applied rejected"`
}

// JobFilter narrows job listing queries.
type JobFilter struct {
	Source string
	Search string
	RunID  *int
	Limit  int
	Offset int
}

// OptionalString returns a pointer to s, or nil when s is empty. Provider
// fields are frequently blank and the storage columns are nullable.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
