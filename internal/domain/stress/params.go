package stress

import (
	"github.com/phrazzld/drill-api/internal/domain"
)

// Params defines all configurable parameters for the stress scoring
// algorithms. Keeping every weight and threshold here means the scoring
// functions stay pure and the engine carries no hidden global state.
type Params struct {
	// Time-pressure contribution tiers. The elapsed/target ratio selects
	// the tier: up to MidProgressThreshold adds LowTierScore, up to
	// HighProgressThreshold adds MidTierScore, beyond it HighTierScore.
	MidProgressThreshold  float64
	HighProgressThreshold float64
	LowTierScore          float64
	MidTierScore          float64
	HighTierScore         float64

	// Per-condition weights.
	SimultaneousTaskWeight float64 // per simultaneous task
	IncidentScore          float64 // flat per production incident
	StakeholderScore       float64 // extra when stakeholder pressure is on
	InterruptionWeight     float64 // per interruption/hour
	NoDocumentationScore   float64
	LimitedAttemptsScore   float64
	LimitedAttemptsCutoff  int // attempts at or below this count as constrained

	// Telemetry-derived contributions.
	ErrorWeight         float64 // per error
	TaskRemainingWeight float64 // per unfinished task

	// Fatigue accumulation.
	FatiguePerMinute    float64
	FatigueStressFactor float64 // max fatigue contributed by full stress

	// Focus loss.
	FocusFatigueFactor float64
	FocusStressFactor  float64

	// Performance rating decision table bounds.
	FailedCompletionRate   float64
	PoorCompletionRate     float64
	ExcellentTimeRatio     float64
	GoodTimeRatio          float64
	GoodMaxErrors          int
	AdequateCompletionRate float64
	AdequateTimeRatio      float64

	// Adaptability scoring.
	RatingBonus      map[domain.PerformanceRating]float64
	StressMultiplier map[domain.StressLevel]float64
	ErrorPenalty     float64 // per error under pressure
}

// ParamsConfig allows overriding selected defaults when creating Params.
// Zero values keep the default.
type ParamsConfig struct {
	ErrorWeight         float64
	TaskRemainingWeight float64
	FatiguePerMinute    float64
	FatigueStressFactor float64
	FocusFatigueFactor  float64
	FocusStressFactor   float64
	ErrorPenalty        float64
}

// NewDefaultParams creates a new Params instance with the standard weights.
func NewDefaultParams() *Params {
	return &Params{
		MidProgressThreshold:  0.5,
		HighProgressThreshold: 0.75,
		LowTierScore:          10,
		MidTierScore:          20,
		HighTierScore:         30,

		SimultaneousTaskWeight: 15,
		IncidentScore:          40,
		StakeholderScore:       20,
		InterruptionWeight:     5,
		NoDocumentationScore:   15,
		LimitedAttemptsScore:   15,
		LimitedAttemptsCutoff:  2,

		ErrorWeight:         10,
		TaskRemainingWeight: 5,

		FatiguePerMinute:    2,
		FatigueStressFactor: 20,

		FocusFatigueFactor: 0.5,
		FocusStressFactor:  0.3,

		FailedCompletionRate:   0.5,
		PoorCompletionRate:     0.75,
		ExcellentTimeRatio:     0.8,
		GoodTimeRatio:          1.0,
		GoodMaxErrors:          1,
		AdequateCompletionRate: 0.9,
		AdequateTimeRatio:      1.2,

		RatingBonus: map[domain.PerformanceRating]float64{
			domain.PerformanceExcellent: 30,
			domain.PerformanceGood:      20,
			domain.PerformanceAdequate:  10,
			domain.PerformancePoor:      0,
			domain.PerformanceFailed:    -20,
		},

		StressMultiplier: map[domain.StressLevel]float64{
			domain.StressLevelNone:    0.5,
			domain.StressLevelLow:     0.75,
			domain.StressLevelMedium:  1.0,
			domain.StressLevelHigh:    1.25,
			domain.StressLevelExtreme: 1.5,
		},

		ErrorPenalty: 5,
	}
}

// NewParams creates a new Params instance with custom configuration applied
// over the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.ErrorWeight > 0 {
		params.ErrorWeight = config.ErrorWeight
	}
	if config.TaskRemainingWeight > 0 {
		params.TaskRemainingWeight = config.TaskRemainingWeight
	}
	if config.FatiguePerMinute > 0 {
		params.FatiguePerMinute = config.FatiguePerMinute
	}
	if config.FatigueStressFactor > 0 {
		params.FatigueStressFactor = config.FatigueStressFactor
	}
	if config.FocusFatigueFactor > 0 {
		params.FocusFatigueFactor = config.FocusFatigueFactor
	}
	if config.FocusStressFactor > 0 {
		params.FocusStressFactor = config.FocusStressFactor
	}
	if config.ErrorPenalty > 0 {
		params.ErrorPenalty = config.ErrorPenalty
	}

	return params
}
