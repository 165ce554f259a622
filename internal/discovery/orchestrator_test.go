package discovery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar/internal/config"
	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// stubRunner serves canned dataset items per actor id.
type stubRunner struct {
	items map[string][]apify.Record
	errs  map[string]error
	calls int
}

func (s *stubRunner) RunActor(ctx context.Context, actorID string, input interface{}) ([]apify.Record, error) {
	s.calls++
	if err, ok := s.errs[actorID]; ok {
		return nil, err
	}
	return s.items[actorID], nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Apify.Actors.LinkedIn = "actor-linkedin"
	cfg.Apify.Actors.Indeed = "actor-indeed"
	cfg.Apify.Actors.Wellfound = "actor-wellfound"
	cfg.Apify.Actors.Naukri = "actor-naukri"
	cfg.Discovery.ItemsPerSearch = 15
	cfg.Discovery.ItemsPerBatchTask = 100
	return cfg
}

func linkedinRecord(title, url string) apify.Record {
	return apify.Record{
		"title":       title,
		"companyName": "Acme",
		"location":    "Bangalore, India",
		"jobUrl":      url,
	}
}

func createRun(t *testing.T, o *Orchestrator, cfg models.RunConfig) *models.ScrapeRun {
	t.Helper()
	run, err := o.CreateRun(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusPending, run.Status)
	return run
}

func TestExecuteRunLinkedInEndToEnd(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	// Two URLs already known: the adapter must drop them as duplicates
	_, err := store.CreateJobs(ctx, []models.JobSeed{
		{Title: "APM", Company: "Old", Location: "Pune", Source: "LinkedIn", URL: "https://jobs/dup-1", RelevanceReason: "x"},
		{Title: "APM", Company: "Old", Location: "Pune", Source: "LinkedIn", URL: "https://jobs/dup-2", RelevanceReason: "x"},
	})
	require.NoError(t, err)

	runner := &stubRunner{items: map[string][]apify.Record{
		"actor-linkedin": {
			linkedinRecord("APM - Growth", "https://jobs/1"),
			linkedinRecord("APM - Platform", "https://jobs/2"),
			linkedinRecord("APM - Payments", "https://jobs/3"),
			linkedinRecord("APM - Core", "https://jobs/4"),
			linkedinRecord("APM - Dup", "https://jobs/dup-1"),
			linkedinRecord("APM - Dup2", "https://jobs/dup-2"),
			linkedinRecord("", "https://jobs/no-title"),
		},
	}}

	o := NewOrchestrator(testConfig(), store, runner, nil)
	run := createRun(t, o, models.RunConfig{
		Sources:        []string{"linkedin"},
		MaxJobs:        5,
		Locations:      []string{"India"},
		TargetRoles:    []string{"APM"},
		TimePeriodDays: 7,
	})

	jobsFound, err := o.ExecuteRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, jobsFound)

	final, err := store.GetScrapeRunByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, final.Status)
	assert.Equal(t, 4, final.JobsFound)
	assert.NotNil(t, final.CompletedAt)
	assert.Nil(t, final.Error)

	jobs, err := store.GetJobs(ctx, models.JobFilter{RunID: &run.ID})
	require.NoError(t, err)
	assert.Len(t, jobs, 4)
	for _, job := range jobs {
		assert.True(t, job.IsNew)
		assert.Equal(t, models.JobStatusDiscovered, job.Status)
		require.NotNil(t, job.RunID)
		assert.Equal(t, run.ID, *job.RunID)
	}
}

func TestExecuteRunPartialFailureStillCompletes(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	runner := &stubRunner{
		items: map[string][]apify.Record{
			"actor-linkedin": {linkedinRecord("Junior PM", "https://jobs/ok")},
		},
		errs: map[string]error{
			"actor-wellfound": errors.New("actor run finished with status FAILED"),
		},
	}

	o := NewOrchestrator(testConfig(), store, runner, nil)
	run := createRun(t, o, models.RunConfig{
		Sources:        []string{"linkedin", "wellfound"},
		MaxJobs:        40,
		Locations:      []string{"India"},
		TargetRoles:    []string{"Junior PM"},
		TimePeriodDays: 7,
	})

	jobsFound, err := o.ExecuteRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, jobsFound)

	final, _ := store.GetScrapeRunByID(ctx, run.ID)
	assert.Equal(t, models.RunStatusCompleted, final.Status)
	assert.Equal(t, 1, final.JobsFound)
	require.NotNil(t, final.Error)
	assert.Contains(t, *final.Error, "FAILED")
}

func TestExecuteRunAllSourcesFailed(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	runner := &stubRunner{errs: map[string]error{
		"actor-linkedin":  errors.New("boom"),
		"actor-wellfound": errors.New("bust"),
	}}

	o := NewOrchestrator(testConfig(), store, runner, nil)
	run := createRun(t, o, models.RunConfig{
		Sources:        []string{"linkedin", "wellfound"},
		MaxJobs:        40,
		Locations:      []string{"India"},
		TargetRoles:    []string{"APM"},
		TimePeriodDays: 7,
	})

	jobsFound, err := o.ExecuteRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, jobsFound)

	final, _ := store.GetScrapeRunByID(ctx, run.ID)
	assert.Equal(t, models.RunStatusFailed, final.Status)
	assert.Equal(t, 0, final.JobsFound)
	require.NotNil(t, final.Error)
}

func TestExecuteRunCapsMergedBatch(t *testing.T) {
	store := storage.NewMemoryStorage()
	ctx := context.Background()

	var records []apify.Record
	for i := 0; i < 10; i++ {
		records = append(records, linkedinRecord(fmt.Sprintf("APM %d", i), fmt.Sprintf("https://jobs/%d", i)))
	}
	runner := &stubRunner{items: map[string][]apify.Record{"actor-linkedin": records}}

	o := NewOrchestrator(testConfig(), store, runner, nil)
	run := createRun(t, o, models.RunConfig{
		Sources:        []string{"linkedin"},
		MaxJobs:        3,
		Locations:      []string{"India"},
		TargetRoles:    []string{"APM"},
		TimePeriodDays: 7,
	})

	jobsFound, err := o.ExecuteRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, jobsFound)

	jobs, _ := store.GetJobs(ctx, models.JobFilter{RunID: &run.ID})
	assert.Len(t, jobs, 3)
}

func TestExecuteRunUnknownRun(t *testing.T) {
	store := storage.NewMemoryStorage()
	o := NewOrchestrator(testConfig(), store, &stubRunner{}, nil)

	_, err := o.ExecuteRun(context.Background(), 999)
	assert.Error(t, err)
}
