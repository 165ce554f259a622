package sources

import (
	"context"
	"fmt"
	"net/url"

	"jobradar/internal/logging"
	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// LinkedInSource discovers jobs via a LinkedIn search actor. It submits one
// batch run covering every query/location pair.
type LinkedInSource struct {
	runner  apify.Runner
	actorID string
	matcher Matcher
	dupes   storage.DuplicateChecker
}

func NewLinkedInSource(runner apify.Runner, actorID string, matcher Matcher, dupes storage.DuplicateChecker) *LinkedInSource {
	return &LinkedInSource{runner: runner, actorID: actorID, matcher: matcher, dupes: dupes}
}

func (s *LinkedInSource) Name() string { return "LinkedIn" }

// Discover builds a search URL per query/location pair and runs them as one
// actor batch. LinkedIn search results already honor the location filter, so
// only the title filter is applied to the items.
func (s *LinkedInSource) Discover(ctx context.Context, params SearchParams) ([]models.JobSeed, error) {
	logger := logging.GetGlobalLogger()

	// f_TPR=r<seconds> is LinkedIn's posted-within filter
	timeParam := params.TimePeriodDays * 86400

	var searchURLs []string
	for _, query := range params.SearchQueries() {
		for _, loc := range params.Locations {
			searchURLs = append(searchURLs, fmt.Sprintf(
				"https://www.linkedin.com/jobs/search/?keywords=%s&location=%s&f_TPR=r%d",
				url.QueryEscape(query), url.QueryEscape(loc), timeParam))
		}
	}

	count := params.ItemsPerBatchTask
	if count <= 0 {
		count = 100
	}

	items, err := s.runner.RunActor(ctx, s.actorID, map[string]interface{}{
		"urls":          searchURLs,
		"scrapeCompany": false,
		"count":         count,
	})
	if err != nil {
		return nil, fmt.Errorf("linkedin actor: %w", err)
	}

	logger.Debug("LinkedIn actor returned items", map[string]interface{}{
		"items":    len(items),
		"searches": len(searchURLs),
	})

	m := newMapper(s.matcher, s.dupes, false)
	for _, item := range items {
		title := firstString(item, "title", "jobTitle", "positionName")
		location := firstString(item, "location", "place", "jobLocation")
		if location == "" {
			location = "India"
		}
		company := firstString(item, "companyName", "company", "companyTitle")
		if company == "" {
			company = "Unknown"
		}

		seed := models.JobSeed{
			Title:           title,
			Company:         company,
			Location:        location,
			Source:          s.Name(),
			URL:             firstString(item, "jobUrl", "url", "link", "applyUrl"),
			PostedDate:      models.OptionalString(firstString(item, "postedAt", "publishedAt", "postedTime", "listedAt")),
			RelevanceReason: s.matcher.RelevanceReason(title, location, s.Name()),
			Salary:          models.OptionalString(firstString(item, "salary", "salaryInfo")),
			Description:     models.OptionalString(truncateDescription(firstString(item, "description", "descriptionText"))),
		}

		if err := m.add(ctx, seed); err != nil {
			return nil, err
		}
	}

	return m.results(), nil
}
