package models

// DiscoveryRequest is the payload for triggering a discovery run.
type DiscoveryRequest struct {
	Sources               []string `json:"sources" validate:"required,min=1,dive,oneof=linkedin indeed wellfound naukri"`
	IncludeProductAnalyst bool     `json:"includeProductAnalyst"`
	MaxJobs               int      `json:"maxJobs" validate:"omitempty,min=1,max=100"`
	Locations             []string `json:"locations" validate:"omitempty,min=1,dive,min=1"`
	TargetRoles           []string `json:"targetRoles" validate:"omitempty,min=1,dive,min=1"`
	TimePeriodDays        int      `json:"timePeriod" validate:"omitempty,min=1"`
}

// ApplyDefaults fills the optional fields the dashboard leaves blank.
func (r *DiscoveryRequest) ApplyDefaults() {
	if r.MaxJobs == 0 {
		r.MaxJobs = 40
	}
	if len(r.Locations) == 0 {
		r.Locations = []string{"India", "Remote"}
	}
	if len(r.TargetRoles) == 0 {
		r.TargetRoles = []string{"APM", "Junior PM", "Assistant PM", "Entry-Level PM"}
	}
	if r.TimePeriodDays == 0 {
		r.TimePeriodDays = 7
	}
}

// RunConfig converts the request into the persisted configuration snapshot.
func (r *DiscoveryRequest) RunConfig() RunConfig {
	return RunConfig{
		Sources:               r.Sources,
		IncludeProductAnalyst: r.IncludeProductAnalyst,
		MaxJobs:               r.MaxJobs,
		Locations:             r.Locations,
		TargetRoles:           r.TargetRoles,
		TimePeriodDays:        r.TimePeriodDays,
	}
}

// MarkSeenRequest is the payload for clearing freshness flags.
type MarkSeenRequest struct {
	IDs []int `json:"ids" validate:"required"`
}
