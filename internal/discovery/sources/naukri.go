package sources

import (
	"context"
	"fmt"
	"strings"

	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// NaukriSource discovers jobs via a Naukri crawl actor driven by listing
// URLs. Remote target locations are skipped when building URLs because the
// board is India-centric and has no remote landing pages.
type NaukriSource struct {
	runner  apify.Runner
	actorID string
	matcher Matcher
	dupes   storage.DuplicateChecker
}

func NewNaukriSource(runner apify.Runner, actorID string, matcher Matcher, dupes storage.DuplicateChecker) *NaukriSource {
	return &NaukriSource{runner: runner, actorID: actorID, matcher: matcher, dupes: dupes}
}

func (s *NaukriSource) Name() string { return "Naukri" }

func (s *NaukriSource) Discover(ctx context.Context, params SearchParams) ([]models.JobSeed, error) {
	var searchURLs []string
	for _, query := range params.SearchQueries() {
		for _, loc := range params.Locations {
			lowerLoc := strings.ToLower(loc)
			if strings.Contains(lowerLoc, "remote") || strings.Contains(lowerLoc, "global") {
				continue
			}

			slugQuery := strings.ReplaceAll(strings.ToLower(query), " ", "-")
			if lowerLoc == "india" {
				searchURLs = append(searchURLs, fmt.Sprintf(
					"https://www.naukri.com/%s-jobs?jobAge=%d", slugQuery, params.TimePeriodDays))
			} else {
				slugLoc := strings.ReplaceAll(lowerLoc, " ", "-")
				searchURLs = append(searchURLs, fmt.Sprintf(
					"https://www.naukri.com/%s-jobs-in-%s?jobAge=%d", slugQuery, slugLoc, params.TimePeriodDays))
			}
		}
	}
	if len(searchURLs) == 0 && params.IncludeProductAnalyst {
		searchURLs = append(searchURLs, fmt.Sprintf(
			"https://www.naukri.com/product-analyst-jobs?jobAge=%d", params.TimePeriodDays))
	}

	startURLs := make([]map[string]interface{}, 0, len(searchURLs))
	for _, u := range searchURLs {
		startURLs = append(startURLs, map[string]interface{}{"url": u})
	}

	items, err := s.runner.RunActor(ctx, s.actorID, map[string]interface{}{
		"startUrls":      startURLs,
		"maxItems":       30,
		"maxConcurrency": 5,
	})
	if err != nil {
		return nil, fmt.Errorf("naukri actor: %w", err)
	}

	// Listing URLs already constrain location, so only the title filter runs
	m := newMapper(s.matcher, s.dupes, false)
	for _, item := range items {
		title := firstString(item, "title", "jobTitle", "designation")
		company := firstString(item, "companyName", "company")
		if company == "" {
			company = "Unknown"
		}

		location := firstString(item, "location")
		if location == "" {
			location = placeholderLabel(item, "location")
		}
		if location == "" {
			location = firstString(item, "jobLocation")
		}
		if location == "" {
			location = "India"
		}

		salary := firstString(item, "salary", "salaryLabel")
		if salary == "" {
			salary = placeholderLabel(item, "salary")
		}

		experience := firstString(item, "experience")
		if experience == "" {
			experience = placeholderLabel(item, "experience")
		}

		reason := s.matcher.RelevanceReason(title, location, s.Name())
		if experience != "" {
			reason += " | " + experience
		}

		seed := models.JobSeed{
			Title:           title,
			Company:         company,
			Location:        location,
			Source:          s.Name(),
			URL:             firstString(item, "url", "jdURL", "applyUrl"),
			PostedDate:      models.OptionalString(firstString(item, "postedDate", "footerPlaceholderLabel", "createdDate")),
			RelevanceReason: reason,
			Salary:          models.OptionalString(salary),
			Description:     models.OptionalString(truncateDescription(firstString(item, "description", "jobDescription", "snippet"))),
		}

		if err := m.add(ctx, seed); err != nil {
			return nil, err
		}
	}

	return m.results(), nil
}
