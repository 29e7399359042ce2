package gating

import (
	"github.com/phrazzld/drill-api/internal/domain"
)

// Params defines the configurable thresholds of the mastery gating state
// machine. Requirements are fixed into aggregates at creation; the state
// machine falls back to them when a stored aggregate carries none.
type Params struct {
	Requirements domain.MasteryRequirements
}

// RequirementFor returns the configured perfect-completion requirement for
// the given level, or 0 for an unknown level.
func (p *Params) RequirementFor(level domain.MasteryLevel) int {
	switch level {
	case domain.MasteryLevelCrawl:
		return p.Requirements.Crawl
	case domain.MasteryLevelWalk:
		return p.Requirements.Walk
	case domain.MasteryLevelRunGuided:
		return p.Requirements.RunGuided
	case domain.MasteryLevelRunIndependent:
		return p.Requirements.RunIndependent
	default:
		return 0
	}
}

// NewDefaultParams creates Params with the standard perfect-completion
// requirements (3/3/2/1).
func NewDefaultParams() *Params {
	return &Params{Requirements: domain.DefaultMasteryRequirements()}
}

// NewParams creates Params with custom requirements. Non-positive values
// fall back to the defaults.
func NewParams(req domain.MasteryRequirements) *Params {
	params := NewDefaultParams()

	if req.Crawl > 0 {
		params.Requirements.Crawl = req.Crawl
	}
	if req.Walk > 0 {
		params.Requirements.Walk = req.Walk
	}
	if req.RunGuided > 0 {
		params.Requirements.RunGuided = req.RunGuided
	}
	if req.RunIndependent > 0 {
		params.Requirements.RunIndependent = req.RunIndependent
	}

	return params
}
