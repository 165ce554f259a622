package sources

import (
	"context"
	"fmt"

	"jobradar/internal/logging"
	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// IndeedSource discovers jobs via an Indeed search actor. It submits one
// actor run per search query; a failed query is logged and skipped so the
// remaining queries still contribute.
type IndeedSource struct {
	runner  apify.Runner
	actorID string
	matcher Matcher
	dupes   storage.DuplicateChecker
}

func NewIndeedSource(runner apify.Runner, actorID string, matcher Matcher, dupes storage.DuplicateChecker) *IndeedSource {
	return &IndeedSource{runner: runner, actorID: actorID, matcher: matcher, dupes: dupes}
}

func (s *IndeedSource) Name() string { return "Indeed" }

func (s *IndeedSource) Discover(ctx context.Context, params SearchParams) ([]models.JobSeed, error) {
	logger := logging.GetGlobalLogger()

	primaryLoc := "India"
	if len(params.Locations) > 0 {
		primaryLoc = params.Locations[0]
	}

	perSearch := params.ItemsPerSearch
	if perSearch <= 0 {
		perSearch = 15
	}

	m := newMapper(s.matcher, s.dupes, true)

	for _, query := range params.SearchQueries() {
		items, err := s.runner.RunActor(ctx, s.actorID, map[string]interface{}{
			"position":             query,
			"country":              "IN",
			"location":             primaryLoc,
			"maxItemsPerSearch":    perSearch,
			"parseCompanyDetails":  false,
			"saveOnlyUniqueItems":  true,
			"followApplyRedirects": false,
		})
		if err != nil {
			logger.Error("Indeed query failed", map[string]interface{}{
				"query": query,
				"error": err.Error(),
			})
			continue
		}

		for _, item := range items {
			title := firstString(item, "positionName", "title")
			location := firstString(item, "location", "jobLocation")
			if location == "" {
				location = primaryLoc
			}
			company := firstString(item, "company", "companyName")
			if company == "" {
				company = "Unknown"
			}

			seed := models.JobSeed{
				Title:           title,
				Company:         company,
				Location:        location,
				Source:          s.Name(),
				URL:             firstString(item, "url", "externalApplyLink"),
				PostedDate:      models.OptionalString(firstString(item, "postedAt", "scrapedAt")),
				RelevanceReason: s.matcher.RelevanceReason(title, location, s.Name()),
				Salary:          models.OptionalString(firstString(item, "salary")),
				Description:     models.OptionalString(truncateDescription(firstString(item, "description"))),
			}

			if err := m.add(ctx, seed); err != nil {
				return nil, fmt.Errorf("indeed duplicate check: %w", err)
			}
		}
	}

	return m.results(), nil
}
