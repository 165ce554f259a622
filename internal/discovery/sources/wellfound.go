package sources

import (
	"context"
	"fmt"
	"strings"

	"jobradar/internal/provider/apify"
	"jobradar/internal/storage"
	"jobradar/pkg/models"
)

// WellfoundSource discovers startup jobs via a Wellfound actor. The actor
// takes a slugged role plus a single location, so the first non-remote
// target location is used and remote intent becomes a boolean flag.
type WellfoundSource struct {
	runner  apify.Runner
	actorID string
	matcher Matcher
	dupes   storage.DuplicateChecker
}

func NewWellfoundSource(runner apify.Runner, actorID string, matcher Matcher, dupes storage.DuplicateChecker) *WellfoundSource {
	return &WellfoundSource{runner: runner, actorID: actorID, matcher: matcher, dupes: dupes}
}

func (s *WellfoundSource) Name() string { return "Wellfound" }

func (s *WellfoundSource) Discover(ctx context.Context, params SearchParams) ([]models.JobSeed, error) {
	primaryLoc := "worldwide"
	for _, loc := range params.Locations {
		if !strings.Contains(strings.ToLower(loc), "remote") {
			primaryLoc = loc
			break
		}
	}

	items, err := s.runner.RunActor(ctx, s.actorID, map[string]interface{}{
		"job_title": "product-manager",
		"location":  primaryLoc,
		"remote":    hasRemoteTarget(params.Locations),
		"max_items": 30,
	})
	if err != nil {
		return nil, fmt.Errorf("wellfound actor: %w", err)
	}

	m := newMapper(s.matcher, s.dupes, true)
	for _, item := range items {
		title := firstString(item, "title", "jobTitle", "role")
		location := firstString(item, "location", "jobLocation")
		if location == "" {
			location = "India / Remote"
		}
		company := firstString(item, "companyName", "company", "startup")
		if company == "" {
			company = "Unknown"
		}

		seed := models.JobSeed{
			Title:           title,
			Company:         company,
			Location:        location,
			Source:          s.Name(),
			URL:             firstString(item, "url", "jobUrl", "applyUrl"),
			PostedDate:      models.OptionalString(firstString(item, "postedAt", "publishedAt", "createdAt")),
			RelevanceReason: s.matcher.RelevanceReason(title, location, s.Name()),
			Salary:          models.OptionalString(firstString(item, "compensation", "salary", "salaryRange")),
			Description:     models.OptionalString(truncateDescription(firstString(item, "description", "jobDescription"))),
		}

		if err := m.add(ctx, seed); err != nil {
			return nil, err
		}
	}

	return m.results(), nil
}
