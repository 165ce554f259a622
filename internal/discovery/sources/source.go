// Package sources holds one adapter per job board. Each adapter builds the
// actor input for its board, runs it through the provider, and maps the
// loosely-typed dataset items into job candidates.
package sources

import (
	"context"
	"strings"

	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// maxDescriptionLen caps stored descriptions; boards return full postings.
const maxDescriptionLen = 500

// Matcher is the relevance contract adapters filter with. The discovery
// package provides the implementation.
type Matcher interface {
	IsRelevantTitle(title string) bool
	IsRelevantLocation(location string) bool
	RelevanceReason(title, location, source string) string
}

// SearchParams carries one run's search configuration into an adapter.
type SearchParams struct {
	TargetRoles           []string
	Locations             []string
	TimePeriodDays        int
	IncludeProductAnalyst bool
	ItemsPerSearch        int
	ItemsPerBatchTask     int
}

// SearchQueries returns the role queries for this run, extended with the
// product analyst variants when those are included.
func (p SearchParams) SearchQueries() []string {
	queries := append([]string{}, p.TargetRoles...)
	if p.IncludeProductAnalyst {
		queries = append(queries, "product analyst", "product associate")
	}
	return queries
}

// Source is one job board adapter. Discover returns relevant, non-duplicate
// candidates; a failed board returns an error and contributes nothing.
type Source interface {
	Name() string
	Discover(ctx context.Context, params SearchParams) ([]models.JobSeed, error)
}

// mapper collects candidates from dataset items, applying the shared
// relevance, duplicate, and within-batch URL checks.
type mapper struct {
	matcher  Matcher
	dupes    storage.DuplicateChecker
	seen     map[string]bool
	seeds    []models.JobSeed
	filterBy bool
}

func newMapper(matcher Matcher, dupes storage.DuplicateChecker, filterLocation bool) *mapper {
	return &mapper{
		matcher:  matcher,
		dupes:    dupes,
		seen:     make(map[string]bool),
		filterBy: filterLocation,
	}
}

// add runs the candidate through the filters and keeps it if they all pass.
// A title or URL the board did not provide discards the item outright.
func (m *mapper) add(ctx context.Context, seed models.JobSeed) error {
	if seed.Title == "" || seed.URL == "" {
		return nil
	}
	if !m.matcher.IsRelevantTitle(seed.Title) {
		return nil
	}
	if m.filterBy && !m.matcher.IsRelevantLocation(seed.Location) {
		return nil
	}
	if m.seen[seed.URL] {
		return nil
	}

	isDuplicate, err := m.dupes.IsDuplicateJob(ctx, seed.URL)
	if err != nil {
		return err
	}
	if isDuplicate {
		return nil
	}

	m.seen[seed.URL] = true
	m.seeds = append(m.seeds, seed)
	return nil
}

func (m *mapper) results() []models.JobSeed {
	if m.seeds == nil {
		return []models.JobSeed{}
	}
	return m.seeds
}

// firstString returns the first non-empty string value among the named
// record fields. Boards disagree on field names, so adapters list candidates
// in preference order.
func firstString(record apify.Record, keys ...string) string {
	for _, key := range keys {
		if value, ok := record[key].(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// placeholderLabel digs a label out of Naukri's placeholders array, e.g.
// the entry with type "location" or "salary".
func placeholderLabel(record apify.Record, placeholderType string) string {
	raw, ok := record["placeholders"].([]interface{})
	if !ok {
		return ""
	}
	for _, entry := range raw {
		placeholder, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		if t, _ := placeholder["type"].(string); t == placeholderType {
			label, _ := placeholder["label"].(string)
			return label
		}
	}
	return ""
}

func truncateDescription(s string) string {
	if len(s) > maxDescriptionLen {
		return s[:maxDescriptionLen]
	}
	return s
}

func hasRemoteTarget(locations []string) bool {
	for _, loc := range locations {
		lower := strings.ToLower(loc)
		if strings.Contains(lower, "remote") || strings.Contains(lower, "global") {
			return true
		}
	}
	return false
}
