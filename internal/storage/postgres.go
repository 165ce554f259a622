package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobradar/pkg/models"
)

const jobColumns = `id, title, company, location, source, url, posted_date,
	relevance_reason, scraped_at, run_id, salary, description, is_new, status`

const runColumns = `id, status, started_at, completed_at, jobs_found, sources,
	error, include_product_analyst, max_jobs, locations, target_roles, time_period`

// PostgresStorage implements the Storage gateway on a pgx connection pool.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates and verifies a pgxpool-backed store.
func NewPostgresStorage(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// GetJobs returns jobs matching the filter, newest first.
func (s *PostgresStorage) GetJobs(ctx context.Context, filter models.JobFilter) ([]models.Job, error) {
	var conditions []string
	var args []interface{}

	if filter.Source != "" && filter.Source != "all" {
		args = append(args, filter.Source)
		conditions = append(conditions, fmt.Sprintf("source ILIKE $%d", len(args)))
	}
	if filter.RunID != nil {
		args = append(args, *filter.RunID)
		conditions = append(conditions, fmt.Sprintf("run_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions,
			fmt.Sprintf("(title ILIKE $%d OR company ILIKE $%d OR location ILIKE $%d)", n, n, n))
	}

	query := "SELECT " + jobColumns + " FROM jobs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scraped_at DESC, id DESC"

	if filter.Limit > 0 {
		args = append(args, clampLimit(filter.Limit))
		query += fmt.Sprintf(" LIMIT $%d", len(args))

		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	return scanJobs(rows)
}

// GetJobByID returns the job, or nil when absent.
func (s *PostgresStorage) GetJobByID(ctx context.Context, id int) (*models.Job, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = $1", id)

	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query job %d: %w", id, err)
	}
	return job, nil
}

// CreateJobs bulk-inserts candidates. The unique index on url drops racing
// duplicates; only rows that actually landed are returned.
func (s *PostgresStorage) CreateJobs(ctx context.Context, seeds []models.JobSeed) ([]models.Job, error) {
	if len(seeds) == 0 {
		return []models.Job{}, nil
	}

	batch := &pgx.Batch{}
	for _, seed := range seeds {
		batch.Queue(`INSERT INTO jobs
			(title, company, location, source, url, posted_date, relevance_reason, run_id, salary, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (url) DO NOTHING
			RETURNING `+jobColumns,
			seed.Title, seed.Company, seed.Location, seed.Source, seed.URL,
			seed.PostedDate, seed.RelevanceReason, seed.RunID, seed.Salary, seed.Description)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := make([]models.Job, 0, len(seeds))
	for range seeds {
		rows, err := results.Query()
		if err != nil {
			return nil, fmt.Errorf("insert job: %w", err)
		}

		jobs, err := scanJobs(rows)
		if err != nil {
			return nil, fmt.Errorf("insert job: %w", err)
		}
		// Zero rows means the url conflicted with an existing job
		inserted = append(inserted, jobs...)
	}

	return inserted, nil
}

// MarkJobsSeen clears the freshness flag for each id.
func (s *PostgresStorage) MarkJobsSeen(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := s.pool.Exec(ctx, "UPDATE jobs SET is_new = FALSE WHERE id = ANY($1)", ids)
	if err != nil {
		return fmt.Errorf("mark jobs seen: %w", err)
	}
	return nil
}

// UpdateJob applies the partial update and returns the result, or nil when
// the job is absent.
func (s *PostgresStorage) UpdateJob(ctx context.Context, id int, update models.JobUpdate) (*models.Job, error) {
	var sets []string
	var args []interface{}

	if update.IsNew != nil {
		args = append(args, *update.IsNew)
		sets = append(sets, fmt.Sprintf("is_new = $%d", len(args)))
	}
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(sets) == 0 {
		return s.GetJobByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE jobs SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), jobColumns)

	job, err := scanJob(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update job %d: %w", id, err)
	}
	return job, nil
}

// IsDuplicateJob reports whether any stored job has the given URL.
func (s *PostgresStorage) IsDuplicateJob(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM jobs WHERE url = $1)", url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return exists, nil
}

// GetScrapeRuns returns all runs, newest first.
func (s *PostgresStorage) GetScrapeRuns(ctx context.Context) ([]models.ScrapeRun, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+runColumns+" FROM scrape_runs ORDER BY started_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.ScrapeRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetScrapeRunByID returns the run, or nil when absent.
func (s *PostgresStorage) GetScrapeRunByID(ctx context.Context, id int) (*models.ScrapeRun, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, "SELECT "+runColumns+" FROM scrape_runs WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query run %d: %w", id, err)
	}
	return run, nil
}

// GetLatestRun returns the most recently started run, or nil.
func (s *PostgresStorage) GetLatestRun(ctx context.Context) (*models.ScrapeRun, error) {
	run, err := scanRun(s.pool.QueryRow(ctx,
		"SELECT "+runColumns+" FROM scrape_runs ORDER BY started_at DESC, id DESC LIMIT 1"))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	return run, nil
}

// CreateScrapeRun creates a pending run from the configuration snapshot.
func (s *PostgresStorage) CreateScrapeRun(ctx context.Context, cfg models.RunConfig) (*models.ScrapeRun, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, `INSERT INTO scrape_runs
		(sources, include_product_analyst, max_jobs, locations, target_roles, time_period)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+runColumns,
		cfg.Sources, cfg.IncludeProductAnalyst, cfg.MaxJobs, cfg.Locations,
		cfg.TargetRoles, cfg.TimePeriodDays))
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// UpdateScrapeRun applies the partial update and returns the result, or nil
// when the run is absent.
func (s *PostgresStorage) UpdateScrapeRun(ctx context.Context, id int, update models.RunUpdate) (*models.ScrapeRun, error) {
	var sets []string
	var args []interface{}

	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.CompletedAt != nil {
		args = append(args, *update.CompletedAt)
		sets = append(sets, fmt.Sprintf("completed_at = $%d", len(args)))
	}
	if update.JobsFound != nil {
		args = append(args, *update.JobsFound)
		sets = append(sets, fmt.Sprintf("jobs_found = $%d", len(args)))
	}
	if update.Error != nil {
		args = append(args, *update.Error)
		sets = append(sets, fmt.Sprintf("error = $%d", len(args)))
	}

	if len(sets) == 0 {
		return s.GetScrapeRunByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE scrape_runs SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), runColumns)

	run, err := scanRun(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update run %d: %w", id, err)
	}
	return run, nil
}

// DeleteScrapeRun removes the run's jobs first, then the run row. Ordering
// matters: deleting the run first would orphan the foreign keys.
func (s *PostgresStorage) DeleteScrapeRun(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete run %d: %w", id, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM jobs WHERE run_id = $1", id); err != nil {
		return fmt.Errorf("delete jobs for run %d: %w", id, err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM scrape_runs WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete run %d: %w", id, err)
	}

	return tx.Commit(ctx)
}

// GetStats computes the dashboard aggregate.
func (s *PostgresStorage) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{Sources: []string{}}

	err := s.pool.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM jobs),
		(SELECT COUNT(*) FROM jobs WHERE is_new),
		(SELECT COUNT(*) FROM scrape_runs)`).
		Scan(&stats.TotalJobs, &stats.NewJobs, &stats.TotalRuns)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	rows, err := s.pool.Query(ctx, "SELECT DISTINCT source FROM jobs ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		stats.Sources = append(stats.Sources, source)
	}

	return stats, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStorage) Close() {
	s.pool.Close()
}

// scanJob scans a single job row.
func scanJob(row pgx.Row) (*models.Job, error) {
	var job models.Job
	err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Location, &job.Source,
		&job.URL, &job.PostedDate, &job.RelevanceReason, &job.ScrapedAt,
		&job.RunID, &job.Salary, &job.Description, &job.IsNew, &job.Status)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// scanJobs drains a job result set.
func scanJobs(rows pgx.Rows) ([]models.Job, error) {
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// scanRun scans a single run row.
func scanRun(row pgx.Row) (*models.ScrapeRun, error) {
	var run models.ScrapeRun
	err := row.Scan(&run.ID, &run.Status, &run.StartedAt, &run.CompletedAt,
		&run.JobsFound, &run.Sources, &run.Error, &run.IncludeProductAnalyst,
		&run.MaxJobs, &run.Locations, &run.TargetRoles, &run.TimePeriodDays)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
