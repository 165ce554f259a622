// Package storage defines the persistence gateway consumed by the discovery
// pipeline and the read API, together with its Postgres and in-memory
// implementations.
package storage

import (
	"context"

	"jobradar/pkg/models"
)

// DuplicateChecker is the slice of the gateway the source adapters need:
// URL-based duplicate detection at discovery time.
type DuplicateChecker interface {
	IsDuplicateJob(ctx context.Context, url string) (bool, error)
}

// Storage is the persistence gateway contract. Any backend that satisfies it
// can serve the pipeline and the API.
type Storage interface {
	DuplicateChecker

	GetJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error)
	GetJobByID(ctx context.Context, id int) (*models.Job, error)
	// CreateJobs bulk-inserts the given candidates and returns the rows that
	// were actually inserted. It is a no-op on empty input. Candidates whose
	// URL already exists are dropped, not errors.
	CreateJobs(ctx context.Context, seeds []models.JobSeed) ([]models.Job, error)
	MarkJobsSeen(ctx context.Context, ids []int) error
	UpdateJob(ctx context.Context, id int, update models.JobUpdate) (*models.Job, error)

	GetScrapeRuns(ctx context.Context) ([]models.ScrapeRun, error)
	GetScrapeRunByID(ctx context.Context, id int) (*models.ScrapeRun, error)
	GetLatestRun(ctx context.Context) (*models.ScrapeRun, error)
	CreateScrapeRun(ctx context.Context, cfg models.RunConfig) (*models.ScrapeRun, error)
	UpdateScrapeRun(ctx context.Context, id int, update models.RunUpdate) (*models.ScrapeRun, error)
	// DeleteScrapeRun removes the run's jobs first, then the run row.
	DeleteScrapeRun(ctx context.Context, id int) error

	GetStats(ctx context.Context) (*models.Stats, error)

	Close()
}

// clampLimit bounds a caller-supplied page size to 1..100.
func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > 100 {
		return 100
	}
	return limit
}
