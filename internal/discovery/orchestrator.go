package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jobradar/internal/config"
	"jobradar/internal/discovery/sources"
	"jobradar/internal/logging"
	"jobradar/internal/logging/types"
	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
	"jobradar/pkg/utils"
)

// Orchestrator coordinates one scrape run: it fans the selected source
// adapters out concurrently, merges their candidates, caps the batch, and
// persists both the jobs and the run's final state.
type Orchestrator struct {
	config *config.Config
	store  storage.Storage
	runner apify.Runner
	cache  *utils.RedisClient
	logger types.Logger
}

// NewOrchestrator creates an orchestrator. cache may be nil when Redis is
// disabled; it is only used to invalidate the stats cache after a run.
func NewOrchestrator(cfg *config.Config, store storage.Storage, runner apify.Runner, cache *utils.RedisClient) *Orchestrator {
	return &Orchestrator{
		config: cfg,
		store:  store,
		runner: runner,
		cache:  cache,
		logger: logging.GetGlobalLogger(),
	}
}

// CreateRun persists a pending run carrying the request's configuration
// snapshot. The run is created synchronously so the API can hand its id back
// before any scraping starts.
func (o *Orchestrator) CreateRun(ctx context.Context, cfg models.RunConfig) (*models.ScrapeRun, error) {
	run, err := o.store.CreateScrapeRun(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create scrape run: %w", err)
	}

	o.logger.Info("Scrape run created", map[string]interface{}{
		"run_id":  run.ID,
		"sources": run.Sources,
	})
	return run, nil
}

// ExecuteRun runs the discovery pipeline for an existing run and returns the
// number of jobs persisted. Individual source failures are tolerated; the
// run only fails when every source erred and nothing was saved, or when the
// orchestration itself faults.
func (o *Orchestrator) ExecuteRun(ctx context.Context, runID int) (int, error) {
	run, err := o.store.GetScrapeRunByID(ctx, runID)
	if err != nil {
		return 0, fmt.Errorf("load run %d: %w", runID, err)
	}
	if run == nil {
		return 0, fmt.Errorf("run %d not found", runID)
	}

	if _, err := o.setStatus(ctx, runID, models.RunStatusRunning); err != nil {
		return 0, err
	}

	jobsFound, err := o.execute(ctx, run)
	if err != nil {
		o.failRun(runID, err)
		return 0, err
	}

	return jobsFound, nil
}

func (o *Orchestrator) execute(ctx context.Context, run *models.ScrapeRun) (int, error) {
	startTime := time.Now()

	matcher := NewMatcher(run.TargetRoles, run.Locations, run.IncludeProductAnalyst)
	adapters := o.buildSources(run.Sources, matcher)

	params := sources.SearchParams{
		TargetRoles:           run.TargetRoles,
		Locations:             run.Locations,
		TimePeriodDays:        run.TimePeriodDays,
		IncludeProductAnalyst: run.IncludeProductAnalyst,
		ItemsPerSearch:        o.config.Discovery.ItemsPerSearch,
		ItemsPerBatchTask:     o.config.Discovery.ItemsPerBatchTask,
	}

	var (
		mu       sync.Mutex
		allSeeds []models.JobSeed
		errs     []string
	)

	var wg sync.WaitGroup
	for _, src := range adapters {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			seeds, err := src.Discover(ctx, params)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.Error("Source discovery failed", map[string]interface{}{
					"run_id": run.ID,
					"source": src.Name(),
					"error":  err.Error(),
				})
				errs = append(errs, err.Error())
				return
			}
			allSeeds = append(allSeeds, seeds...)
		}(src)
	}
	wg.Wait()

	// Cap the merged batch, then stamp ownership
	if len(allSeeds) > run.MaxJobs {
		allSeeds = allSeeds[:run.MaxJobs]
	}
	for i := range allSeeds {
		runID := run.ID
		allSeeds[i].RunID = &runID
	}

	saved, err := o.store.CreateJobs(ctx, allSeeds)
	if err != nil {
		return 0, fmt.Errorf("persist jobs for run %d: %w", run.ID, err)
	}

	status := models.RunStatusCompleted
	if len(errs) > 0 && len(allSeeds) == 0 {
		status = models.RunStatusFailed
	}

	completedAt := time.Now()
	jobsFound := len(saved)
	update := models.RunUpdate{
		Status:      &status,
		CompletedAt: &completedAt,
		JobsFound:   &jobsFound,
	}
	if len(errs) > 0 {
		joined := strings.Join(errs, "; ")
		update.Error = &joined
	}

	if _, err := o.store.UpdateScrapeRun(ctx, run.ID, update); err != nil {
		return 0, fmt.Errorf("finalize run %d: %w", run.ID, err)
	}

	o.invalidateStats(ctx)

	o.logger.Info("Scrape run finished", map[string]interface{}{
		"run_id":          run.ID,
		"status":          status,
		"jobs_found":      jobsFound,
		"source_errors":   len(errs),
		"processing_time": time.Since(startTime).String(),
	})

	return jobsFound, nil
}

// buildSources maps the run's source names to adapters. Unknown names are
// skipped rather than failing the run.
func (o *Orchestrator) buildSources(names []string, matcher *Matcher) []sources.Source {
	var adapters []sources.Source
	for _, name := range names {
		switch strings.ToLower(name) {
		case "linkedin":
			adapters = append(adapters, sources.NewLinkedInSource(o.runner, o.config.Apify.Actors.LinkedIn, matcher, o.store))
		case "indeed":
			adapters = append(adapters, sources.NewIndeedSource(o.runner, o.config.Apify.Actors.Indeed, matcher, o.store))
		case "wellfound":
			adapters = append(adapters, sources.NewWellfoundSource(o.runner, o.config.Apify.Actors.Wellfound, matcher, o.store))
		case "naukri":
			adapters = append(adapters, sources.NewNaukriSource(o.runner, o.config.Apify.Actors.Naukri, matcher, o.store))
		default:
			o.logger.Warn("Unknown source requested, skipping", map[string]interface{}{
				"source": name,
			})
		}
	}
	return adapters
}

func (o *Orchestrator) setStatus(ctx context.Context, runID int, status models.RunStatus) (*models.ScrapeRun, error) {
	run, err := o.store.UpdateScrapeRun(ctx, runID, models.RunUpdate{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("update run %d status: %w", runID, err)
	}
	return run, nil
}

// failRun records an orchestration fault on the run. A fresh context is used
// because the task context may already be cancelled.
func (o *Orchestrator) failRun(runID int, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := models.RunStatusFailed
	completedAt := time.Now()
	message := cause.Error()
	_, err := o.store.UpdateScrapeRun(ctx, runID, models.RunUpdate{
		Status:      &status,
		CompletedAt: &completedAt,
		Error:       &message,
	})
	if err != nil {
		o.logger.Error("Failed to mark run as failed", map[string]interface{}{
			"run_id": runID,
			"error":  err.Error(),
		})
	}
}

func (o *Orchestrator) invalidateStats(ctx context.Context) {
	if o.cache == nil {
		return
	}
	o.cache.InvalidateStats(ctx)
}
