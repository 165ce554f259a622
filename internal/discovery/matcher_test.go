package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var defaultRoles = []string{"APM", "Junior PM", "Assistant PM", "Entry-Level PM"}

func TestIsRelevantTitle(t *testing.T) {
	tests := []struct {
		name           string
		title          string
		includeAnalyst bool
		want           bool
	}{
		{"exact role", "APM - Payments", false, true},
		{"case insensitive", "junior pm (growth)", false, true},
		{"role embedded in title", "Hiring: Assistant PM for platform team", false, true},
		{"unrelated title", "Senior Software Engineer", false, false},
		{"analyst excluded by default", "Product Analyst", false, false},
		{"analyst included when opted in", "Product Analyst", true, true},
		{"associate included when opted in", "Product Associate - Risk", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(defaultRoles, []string{"India", "Remote"}, tt.includeAnalyst)
			assert.Equal(t, tt.want, m.IsRelevantTitle(tt.title))
		})
	}
}

func TestIsRelevantLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		targets  []string
		want     bool
	}{
		{"india city via india target", "Bangalore, Karnataka, India", []string{"India"}, true},
		{"bengaluru spelling", "Bengaluru Urban", []string{"India"}, true},
		{"remote phrase via remote target", "Remote (Global)", []string{"Remote"}, true},
		{"wfh phrase", "WFH - anywhere", []string{"Remote"}, true},
		{"literal target substring", "Greater Mumbai Area", []string{"Mumbai"}, true},
		{"no match", "Berlin, Germany", []string{"India", "Remote"}, false},
		{"city without india target", "Pune, Maharashtra", []string{"Remote"}, false},
		{"remote phrase without remote target", "Work from home", []string{"India"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(defaultRoles, tt.targets, false)
			assert.Equal(t, tt.want, m.IsRelevantLocation(tt.location))
		})
	}
}

func TestRelevanceReason(t *testing.T) {
	m := NewMatcher(defaultRoles, []string{"India", "Remote"}, false)

	reason := m.RelevanceReason("APM - Growth", "Work from home", "LinkedIn")
	assert.Equal(t, "APM role | Remote/global position | Found on LinkedIn", reason)

	reason = m.RelevanceReason("Junior PM", "Bangalore", "Naukri")
	assert.Equal(t, "Junior PM role | India-based location | Found on Naukri", reason)

	// Literal target match names the target, not the heuristic
	reason = m.RelevanceReason("Assistant PM", "Mumbai, India", "Indeed")
	assert.Equal(t, "Assistant PM role | India location | Found on Indeed", reason)
}

func TestRelevanceReasonAnalystFallback(t *testing.T) {
	m := NewMatcher(defaultRoles, []string{"India"}, true)

	reason := m.RelevanceReason("Product Analyst", "Hyderabad", "Indeed")
	assert.Equal(t, "Product Analyst / Associate role | India-based location | Found on Indeed", reason)
}
