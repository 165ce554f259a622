package sources

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// stubMatcher accepts titles containing "pm" and rejects locations
// containing "reject".
type stubMatcher struct{}

func (stubMatcher) IsRelevantTitle(title string) bool {
	return strings.Contains(strings.ToLower(title), "pm")
}

func (stubMatcher) IsRelevantLocation(location string) bool {
	return !strings.Contains(strings.ToLower(location), "reject")
}

func (stubMatcher) RelevanceReason(title, location, source string) string {
	return "matched | Found on " + source
}

// captureRunner records the actor input and returns canned items.
type captureRunner struct {
	actorID string
	input   interface{}
	items   []apify.Record
}

func (r *captureRunner) RunActor(ctx context.Context, actorID string, input interface{}) ([]apify.Record, error) {
	r.actorID = actorID
	r.input = input
	return r.items, nil
}

func inputJSON(t *testing.T, input interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(input)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestFirstString(t *testing.T) {
	record := apify.Record{
		"title":  "",
		"name":   "APM",
		"count":  3,
		"nested": map[string]interface{}{"x": "y"},
	}

	assert.Equal(t, "APM", firstString(record, "title", "name"))
	assert.Equal(t, "", firstString(record, "missing", "count"))
}

func TestPlaceholderLabel(t *testing.T) {
	record := apify.Record{
		"placeholders": []interface{}{
			map[string]interface{}{"type": "experience", "label": "0-2 Yrs"},
			map[string]interface{}{"type": "location", "label": "Bengaluru"},
		},
	}

	assert.Equal(t, "Bengaluru", placeholderLabel(record, "location"))
	assert.Equal(t, "", placeholderLabel(record, "salary"))
	assert.Equal(t, "", placeholderLabel(apify.Record{}, "location"))
}

func TestSearchQueriesIncludesAnalystVariants(t *testing.T) {
	params := SearchParams{TargetRoles: []string{"APM"}, IncludeProductAnalyst: true}
	assert.Equal(t, []string{"APM", "product analyst", "product associate"}, params.SearchQueries())

	params.IncludeProductAnalyst = false
	assert.Equal(t, []string{"APM"}, params.SearchQueries())
}

func TestLinkedInDiscoverBuildsSearchURLs(t *testing.T) {
	runner := &captureRunner{}
	src := NewLinkedInSource(runner, "actor-li", stubMatcher{}, storage.NewMemoryStorage())

	_, err := src.Discover(context.Background(), SearchParams{
		TargetRoles:       []string{"Junior PM"},
		Locations:         []string{"India", "Remote"},
		TimePeriodDays:    7,
		ItemsPerBatchTask: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, "actor-li", runner.actorID)

	input := inputJSON(t, runner.input)
	urls, ok := input["urls"].([]interface{})
	require.True(t, ok)
	require.Len(t, urls, 2)
	assert.Contains(t, urls[0], "keywords=Junior+PM")
	assert.Contains(t, urls[0], "f_TPR=r604800")
	assert.Equal(t, float64(100), input["count"])
}

func TestLinkedInDiscoverMapsAndFilters(t *testing.T) {
	runner := &captureRunner{items: []apify.Record{
		{"title": "APM - Growth", "companyName": "Acme", "location": "Bangalore", "jobUrl": "https://jobs/1",
			"description": strings.Repeat("x", 600)},
		{"title": "", "companyName": "Acme", "jobUrl": "https://jobs/no-title"},
		{"title": "APM - No URL", "companyName": "Acme"},
		{"title": "Chef", "companyName": "Acme", "jobUrl": "https://jobs/not-pm"},
		{"title": "APM - Batch Dup", "companyName": "Acme", "jobUrl": "https://jobs/1"},
	}}
	src := NewLinkedInSource(runner, "actor-li", stubMatcher{}, storage.NewMemoryStorage())

	seeds, err := src.Discover(context.Background(), SearchParams{
		TargetRoles:    []string{"APM"},
		Locations:      []string{"India"},
		TimePeriodDays: 7,
	})
	require.NoError(t, err)
	require.Len(t, seeds, 1)

	seed := seeds[0]
	assert.Equal(t, "APM - Growth", seed.Title)
	assert.Equal(t, "LinkedIn", seed.Source)
	assert.Nil(t, seed.RunID)
	require.NotNil(t, seed.Description)
	assert.Len(t, *seed.Description, 500)
}

func TestLinkedInDiscoverSkipsLocationFilter(t *testing.T) {
	// Search URLs already constrain location for LinkedIn, so a location the
	// matcher would reject must still pass
	runner := &captureRunner{items: []apify.Record{
		{"title": "APM", "companyName": "Acme", "location": "reject-me", "jobUrl": "https://jobs/1"},
	}}
	src := NewLinkedInSource(runner, "actor-li", stubMatcher{}, storage.NewMemoryStorage())

	seeds, err := src.Discover(context.Background(), SearchParams{
		TargetRoles: []string{"APM"}, Locations: []string{"India"}, TimePeriodDays: 7,
	})
	require.NoError(t, err)
	assert.Len(t, seeds, 1)
}

func TestWellfoundDiscoverAppliesLocationFilter(t *testing.T) {
	runner := &captureRunner{items: []apify.Record{
		{"title": "APM", "companyName": "Acme", "location": "reject-me", "url": "https://jobs/1"},
		{"title": "APM", "companyName": "Acme", "location": "Bangalore", "url": "https://jobs/2"},
	}}
	src := NewWellfoundSource(runner, "actor-wf", stubMatcher{}, storage.NewMemoryStorage())

	seeds, err := src.Discover(context.Background(), SearchParams{
		TargetRoles: []string{"APM"},
		Locations:   []string{"India", "Remote"},
	})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "https://jobs/2", seeds[0].URL)

	input := inputJSON(t, runner.input)
	assert.Equal(t, "India", input["location"])
	assert.Equal(t, true, input["remote"])
	assert.Equal(t, "product-manager", input["job_title"])
}

func TestNaukriDiscoverBuildsListingURLs(t *testing.T) {
	runner := &captureRunner{}
	src := NewNaukriSource(runner, "actor-nk", stubMatcher{}, storage.NewMemoryStorage())

	_, err := src.Discover(context.Background(), SearchParams{
		TargetRoles:    []string{"Junior PM"},
		Locations:      []string{"India", "Remote", "New Delhi"},
		TimePeriodDays: 7,
	})
	require.NoError(t, err)

	input := inputJSON(t, runner.input)
	startURLs, ok := input["startUrls"].([]interface{})
	require.True(t, ok)
	// Remote is skipped, India uses the country-wide listing, New Delhi slugs
	require.Len(t, startURLs, 2)

	first := startURLs[0].(map[string]interface{})
	assert.Equal(t, "https://www.naukri.com/junior-pm-jobs?jobAge=7", first["url"])
	second := startURLs[1].(map[string]interface{})
	assert.Equal(t, "https://www.naukri.com/junior-pm-jobs-in-new-delhi?jobAge=7", second["url"])
}

func TestNaukriDiscoverReadsPlaceholders(t *testing.T) {
	runner := &captureRunner{items: []apify.Record{
		{
			"title":       "APM",
			"companyName": "Acme",
			"url":         "https://jobs/1",
			"placeholders": []interface{}{
				map[string]interface{}{"type": "location", "label": "Bengaluru"},
				map[string]interface{}{"type": "salary", "label": "12-18 LPA"},
				map[string]interface{}{"type": "experience", "label": "0-2 Yrs"},
			},
		},
	}}
	src := NewNaukriSource(runner, "actor-nk", stubMatcher{}, storage.NewMemoryStorage())

	seeds, err := src.Discover(context.Background(), SearchParams{
		TargetRoles: []string{"APM"}, Locations: []string{"India"}, TimePeriodDays: 7,
	})
	require.NoError(t, err)
	require.Len(t, seeds, 1)

	seed := seeds[0]
	assert.Equal(t, "Bengaluru", seed.Location)
	require.NotNil(t, seed.Salary)
	assert.Equal(t, "12-18 LPA", *seed.Salary)
	assert.True(t, strings.HasSuffix(seed.RelevanceReason, "| 0-2 Yrs"))
}

func TestIndeedDiscoverDropsStoredDuplicates(t *testing.T) {
	store := storage.NewMemoryStorage()
	_, err := store.CreateJobs(context.Background(), []models.JobSeed{
		{Title: "APM", Company: "Old", Location: "Pune", Source: "Indeed", URL: "https://jobs/known", RelevanceReason: "x"},
	})
	require.NoError(t, err)

	runner := &captureRunner{items: []apify.Record{
		{"positionName": "APM", "company": "Acme", "location": "Bangalore", "url": "https://jobs/known"},
		{"positionName": "APM", "company": "Acme", "location": "Bangalore", "url": "https://jobs/new"},
	}}
	src := NewIndeedSource(runner, "actor-in", stubMatcher{}, store)

	seeds, err := src.Discover(context.Background(), SearchParams{
		TargetRoles: []string{"APM"},
		Locations:   []string{"India"},
	})
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "https://jobs/new", seeds[0].URL)
}
