package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jobradar/pkg/models"
)

// MemoryStorage is an in-memory implementation of the Storage gateway. It
// backs the test suite and local development without a database.
type MemoryStorage struct {
	mu        sync.RWMutex
	jobs      map[int]*models.Job
	runs      map[int]*models.ScrapeRun
	nextJobID int
	nextRunID int
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		jobs:      make(map[int]*models.Job),
		runs:      make(map[int]*models.ScrapeRun),
		nextJobID: 1,
		nextRunID: 1,
	}
}

// GetJobs returns jobs matching the filter, newest first.
func (s *MemoryStorage) GetJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		if filter.Source != "" && filter.Source != "all" && !strings.EqualFold(job.Source, filter.Source) {
			continue
		}
		if filter.RunID != nil && (job.RunID == nil || *job.RunID != *filter.RunID) {
			continue
		}
		if filter.Search != "" && !matchesSearch(job, filter.Search) {
			continue
		}
		matched = append(matched, *job)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].ScrapedAt.Equal(matched[j].ScrapedAt) {
			return matched[i].ScrapedAt.After(matched[j].ScrapedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.Limit > 0 {
		limit := clampLimit(filter.Limit)
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		if offset >= len(matched) {
			return []models.Job{}, nil
		}
		end := offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[offset:end]
	}

	return matched, nil
}

func matchesSearch(job *models.Job, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(job.Title), needle) ||
		strings.Contains(strings.ToLower(job.Company), needle) ||
		strings.Contains(strings.ToLower(job.Location), needle)
}

// GetJobByID returns the job, or nil when absent.
func (s *MemoryStorage) GetJobByID(ctx context.Context, id int) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

// CreateJobs inserts the candidates, skipping any whose URL already exists.
func (s *MemoryStorage) CreateJobs(ctx context.Context, seeds []models.JobSeed) ([]models.Job, error) {
	if len(seeds) == 0 {
		return []models.Job{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := make([]models.Job, 0, len(seeds))
	for _, seed := range seeds {
		if s.urlExistsLocked(seed.URL) {
			continue
		}

		job := models.Job{
			ID:              s.nextJobID,
			Title:           seed.Title,
			Company:         seed.Company,
			Location:        seed.Location,
			Source:          seed.Source,
			URL:             seed.URL,
			PostedDate:      seed.PostedDate,
			RelevanceReason: seed.RelevanceReason,
			ScrapedAt:       time.Now(),
			RunID:           seed.RunID,
			Salary:          seed.Salary,
			Description:     seed.Description,
			IsNew:           true,
			Status:          models.JobStatusDiscovered,
		}
		s.nextJobID++
		s.jobs[job.ID] = &job
		inserted = append(inserted, job)
	}

	return inserted, nil
}

// MarkJobsSeen clears the freshness flag for each id.
func (s *MemoryStorage) MarkJobsSeen(ctx context.Context, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if job, ok := s.jobs[id]; ok {
			job.IsNew = false
		}
	}
	return nil
}

// UpdateJob applies the partial update and returns the result, or nil when
// the job is absent.
func (s *MemoryStorage) UpdateJob(ctx context.Context, id int, update models.JobUpdate) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}

	if update.IsNew != nil {
		job.IsNew = *update.IsNew
	}
	if update.Status != nil {
		job.Status = models.JobStatus(*update.Status)
	}

	copied := *job
	return &copied, nil
}

// IsDuplicateJob reports whether any stored job has the given URL.
func (s *MemoryStorage) IsDuplicateJob(ctx context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.urlExistsLocked(url), nil
}

func (s *MemoryStorage) urlExistsLocked(url string) bool {
	for _, job := range s.jobs {
		if job.URL == url {
			return true
		}
	}
	return false
}

// GetScrapeRuns returns all runs, newest first.
func (s *MemoryStorage) GetScrapeRuns(ctx context.Context) ([]models.ScrapeRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]models.ScrapeRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, *run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})

	return runs, nil
}

// GetScrapeRunByID returns the run, or nil when absent.
func (s *MemoryStorage) GetScrapeRunByID(ctx context.Context, id int) (*models.ScrapeRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}

// GetLatestRun returns the most recently started run, or nil.
func (s *MemoryStorage) GetLatestRun(ctx context.Context) (*models.ScrapeRun, error) {
	runs, err := s.GetScrapeRuns(ctx)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// CreateScrapeRun creates a pending run from the configuration snapshot.
func (s *MemoryStorage) CreateScrapeRun(ctx context.Context, cfg models.RunConfig) (*models.ScrapeRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := models.ScrapeRun{
		ID:                    s.nextRunID,
		Status:                models.RunStatusPending,
		StartedAt:             time.Now(),
		Sources:               cfg.Sources,
		IncludeProductAnalyst: cfg.IncludeProductAnalyst,
		MaxJobs:               cfg.MaxJobs,
		Locations:             cfg.Locations,
		TargetRoles:           cfg.TargetRoles,
		TimePeriodDays:        cfg.TimePeriodDays,
	}
	s.nextRunID++
	s.runs[run.ID] = &run

	copied := run
	return &copied, nil
}

// UpdateScrapeRun applies the partial update and returns the result, or nil
// when the run is absent.
func (s *MemoryStorage) UpdateScrapeRun(ctx context.Context, id int, update models.RunUpdate) (*models.ScrapeRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}

	if update.Status != nil {
		run.Status = *update.Status
	}
	if update.CompletedAt != nil {
		run.CompletedAt = update.CompletedAt
	}
	if update.JobsFound != nil {
		run.JobsFound = *update.JobsFound
	}
	if update.Error != nil {
		run.Error = update.Error
	}

	copied := *run
	return &copied, nil
}

// DeleteScrapeRun removes the run's jobs first, then the run itself.
func (s *MemoryStorage) DeleteScrapeRun(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for jobID, job := range s.jobs {
		if job.RunID != nil && *job.RunID == id {
			delete(s.jobs, jobID)
		}
	}
	delete(s.runs, id)
	return nil
}

// GetStats computes the dashboard aggregate.
func (s *MemoryStorage) GetStats(ctx context.Context) (*models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.Stats{
		TotalJobs: len(s.jobs),
		TotalRuns: len(s.runs),
		Sources:   []string{},
	}

	seen := make(map[string]bool)
	for _, job := range s.jobs {
		if job.IsNew {
			stats.NewJobs++
		}
		if !seen[job.Source] {
			seen[job.Source] = true
			stats.Sources = append(stats.Sources, job.Source)
		}
	}
	sort.Strings(stats.Sources)

	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStorage) Close() {}
