// Package discovery implements the job discovery pipeline: source adapters
// map provider records to job candidates, the matcher decides relevance, and
// the orchestrator runs sources concurrently and persists the results.
package discovery

import (
	"fmt"
	"strings"
)

// indiaCities are the city names accepted as India matches when the target
// locations include "India". Listings rarely say the country outright.
var indiaCities = []string{
	"bangalore", "bengaluru", "mumbai", "delhi", "hyderabad", "pune",
	"chennai", "kolkata", "gurgaon", "gurugram", "noida", "ahmedabad",
	"jaipur", "kochi", "chandigarh", "thiruvananthapuram",
}

// remotePhrases are the substrings that mark a listing as remote-friendly.
var remotePhrases = []string{"remote", "anywhere", "work from home", "wfh"}

// Matcher decides whether a listing's title and location fit the run's
// configuration, and explains why a kept listing was kept.
type Matcher struct {
	targetRoles           []string
	targetLocations       []string
	includeProductAnalyst bool
}

// NewMatcher creates a matcher for one run's configuration.
func NewMatcher(targetRoles, targetLocations []string, includeProductAnalyst bool) *Matcher {
	return &Matcher{
		targetRoles:           targetRoles,
		targetLocations:       targetLocations,
		includeProductAnalyst: includeProductAnalyst,
	}
}

// IsRelevantTitle reports whether the title contains any target role. When
// product analyst roles are included, "product analyst" and
// "product associate" count as well.
func (m *Matcher) IsRelevantTitle(title string) bool {
	lower := strings.ToLower(title)

	for _, role := range m.targetRoles {
		if strings.Contains(lower, strings.ToLower(role)) {
			return true
		}
	}

	if m.includeProductAnalyst {
		if strings.Contains(lower, "product analyst") || strings.Contains(lower, "product associate") {
			return true
		}
	}

	return false
}

// IsRelevantLocation reports whether the location fits any target location.
// An "India" target also matches major Indian city names, and a "Remote" or
// "Global" target also matches the common remote phrasings.
func (m *Matcher) IsRelevantLocation(location string) bool {
	lower := strings.ToLower(location)

	if m.targetsInclude("india") && containsAny(lower, indiaCities) {
		return true
	}

	for _, target := range m.targetLocations {
		if strings.Contains(lower, strings.ToLower(target)) {
			return true
		}
	}

	if m.targetsInclude("remote") || m.targetsInclude("global") {
		if containsAny(lower, remotePhrases) {
			return true
		}
	}

	return false
}

// RelevanceReason explains a kept listing as "role | location | source",
// e.g. "APM role | India location | Found on LinkedIn".
func (m *Matcher) RelevanceReason(title, location, source string) string {
	var reasons []string
	lowerTitle := strings.ToLower(title)
	lowerLoc := strings.ToLower(location)

	matchedRole := ""
	for _, role := range m.targetRoles {
		if strings.Contains(lowerTitle, strings.ToLower(role)) {
			matchedRole = role
			break
		}
	}
	switch {
	case matchedRole != "":
		reasons = append(reasons, matchedRole+" role")
	case strings.Contains(lowerTitle, "product analyst") || strings.Contains(lowerTitle, "product associate"):
		reasons = append(reasons, "Product Analyst / Associate role")
	default:
		reasons = append(reasons, "Matches target roles")
	}

	matchedLoc := ""
	for _, target := range m.targetLocations {
		if strings.Contains(lowerLoc, strings.ToLower(target)) {
			matchedLoc = target
			break
		}
	}
	switch {
	case matchedLoc != "":
		reasons = append(reasons, matchedLoc+" location")
	case strings.Contains(lowerLoc, "remote") || strings.Contains(lowerLoc, "anywhere") || strings.Contains(lowerLoc, "work from home"):
		reasons = append(reasons, "Remote/global position")
	case m.targetsInclude("india") && containsAny(lowerLoc, indiaCities):
		reasons = append(reasons, "India-based location")
	}

	reasons = append(reasons, fmt.Sprintf("Found on %s", source))
	return strings.Join(reasons, " | ")
}

// targetsInclude reports whether any target location contains the substring.
func (m *Matcher) targetsInclude(substr string) bool {
	for _, target := range m.targetLocations {
		if strings.Contains(strings.ToLower(target), substr) {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
