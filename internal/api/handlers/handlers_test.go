package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar/internal/background"
	"jobradar/internal/config"
	"jobradar/internal/discovery"
	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

type staticRunner struct {
	items []apify.Record
}

func (r *staticRunner) RunActor(ctx context.Context, actorID string, input interface{}) ([]apify.Record, error) {
	return r.items, nil
}

func seedStore(t *testing.T) storage.Storage {
	t.Helper()
	store := storage.NewMemoryStorage()
	_, err := store.CreateJobs(context.Background(), []models.JobSeed{
		{Title: "APM - Growth", Company: "Flipkart", Location: "Bangalore", Source: "LinkedIn", URL: "https://jobs/1", RelevanceReason: "x"},
		{Title: "Junior PM", Company: "Razorpay", Location: "Mumbai", Source: "Indeed", URL: "https://jobs/2", RelevanceReason: "x"},
	})
	require.NoError(t, err)
	return store
}

func doRequest(handler echo.HandlerFunc, req *http.Request, pathParams map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range pathParams {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
	_ = handler(c)
	return rec
}

func TestListJobsHandler(t *testing.T) {
	store := seedStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?source=linkedin", nil)
	rec := doRequest(ListJobsHandler(store), req, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var jobs []models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "APM - Growth", jobs[0].Title)
}

func TestListJobsHandlerRejectsBadRunID(t *testing.T) {
	store := seedStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs?runId=abc", nil)
	rec := doRequest(ListJobsHandler(store), req, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobHandlerNotFound(t *testing.T) {
	store := seedStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/999", nil)
	rec := doRequest(GetJobHandler(store), req, map[string]string{"id": "999"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateJobHandler(t *testing.T) {
	store := seedStore(t)

	body := strings.NewReader(`{"status":"interested"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/jobs/1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(UpdateJobHandler(store, nil), req, map[string]string{"id": "1"})

	require.Equal(t, http.StatusOK, rec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, models.JobStatusInterested, job.Status)
}

func TestUpdateJobHandlerRejectsUnknownStatus(t *testing.T) {
	store := seedStore(t)

	body := strings.NewReader(`{"status":"archived"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/jobs/1", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(UpdateJobHandler(store, nil), req, map[string]string{"id": "1"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkSeenHandler(t *testing.T) {
	store := seedStore(t)

	body := strings.NewReader(`{"ids":[1,2]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/mark-seen", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(MarkSeenHandler(store, nil), req, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	job, err := store.GetJobByID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, job.IsNew)
}

func TestStatsHandler(t *testing.T) {
	store := seedStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rec := doRequest(StatsHandler(store, nil), req, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalJobs)
	assert.Equal(t, 2, stats.NewJobs)
	assert.ElementsMatch(t, []string{"LinkedIn", "Indeed"}, stats.Sources)
}

func TestExportHandlerCSV(t *testing.T) {
	store := seedStore(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export?format=csv", nil)
	rec := doRequest(ExportHandler(store), req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "pm-jobs.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Title,Company,Location,Source,URL,Posted Date,Relevance,Salary", lines[0])
}

func TestDiscoverHandlerAcceptsAndQueues(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := &config.Config{}
	cfg.BackgroundTasks.TaskTimeout = time.Minute

	taskManager := background.NewTaskManager(cfg)
	require.NoError(t, taskManager.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = taskManager.Stop(ctx)
	}()

	orchestrator := discovery.NewOrchestrator(cfg, store, &staticRunner{}, nil)

	body := strings.NewReader(`{"sources":["linkedin"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discover", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(DiscoverHandler(orchestrator, taskManager), req, nil)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp models.DiscoveryAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.RunID)
	assert.NotEmpty(t, resp.ProcessID)

	run, err := store.GetScrapeRunByID(context.Background(), resp.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	// Defaults fill in when the request only names sources
	assert.Equal(t, 40, run.MaxJobs)
	assert.Equal(t, []string{"India", "Remote"}, run.Locations)
}

func TestDiscoverHandlerRejectsUnknownSource(t *testing.T) {
	store := storage.NewMemoryStorage()
	cfg := &config.Config{}

	taskManager := background.NewTaskManager(cfg)
	require.NoError(t, taskManager.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = taskManager.Stop(ctx)
	}()

	orchestrator := discovery.NewOrchestrator(cfg, store, &staticRunner{}, nil)

	body := strings.NewReader(`{"sources":["monster"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/discover", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := doRequest(DiscoverHandler(orchestrator, taskManager), req, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	runs, err := store.GetScrapeRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}
