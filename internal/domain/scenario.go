package domain

// StressLevel grades how much simulated pressure a scenario applies.
type StressLevel string

// Stress levels in ascending order of pressure.
const (
	StressLevelNone    StressLevel = "none"
	StressLevelLow     StressLevel = "low"
	StressLevelMedium  StressLevel = "medium"
	StressLevelHigh    StressLevel = "high"
	StressLevelExtreme StressLevel = "extreme"
)

// StressLevelOrder is the fixed tolerance ladder. Tolerance comparisons are
// ordinal comparisons over this slice.
var StressLevelOrder = []StressLevel{
	StressLevelNone,
	StressLevelLow,
	StressLevelMedium,
	StressLevelHigh,
	StressLevelExtreme,
}

// IsValid reports whether the level is one of the five known tiers.
func (l StressLevel) IsValid() bool {
	switch l {
	case StressLevelNone, StressLevelLow, StressLevelMedium, StressLevelHigh, StressLevelExtreme:
		return true
	default:
		return false
	}
}

// Ordinal returns the level's position on the tolerance ladder, or -1 for an
// unknown level.
func (l StressLevel) Ordinal() int {
	for i, level := range StressLevelOrder {
		if level == l {
			return i
		}
	}
	return -1
}

// ConditionType discriminates the heterogeneous pressure conditions a
// scenario can bundle.
type ConditionType string

// Known condition types.
const (
	ConditionTimePressure       ConditionType = "time-pressure"
	ConditionMultiTasking       ConditionType = "multi-tasking"
	ConditionInterruption       ConditionType = "interruption"
	ConditionProductionIncident ConditionType = "production-incident"
	ConditionResourceConstraint ConditionType = "resource-constraint"
)

// Condition is a single simulated pressure source inside a scenario. The
// Type field selects which of the type-specific parameter groups applies;
// the rest are zero. Conditions cross the persistence boundary as plain
// structured records, so one struct with a discriminator is used instead of
// an interface hierarchy.
type Condition struct {
	ID          string        `json:"id"`
	Type        ConditionType `json:"type"`
	Description string        `json:"description"`
	Enabled     bool          `json:"enabled"`
	Severity    string        `json:"severity"`

	// time-pressure
	TargetTimeSeconds       int `json:"target_time_seconds,omitempty"`
	PenaltyPerSecondOver    int `json:"penalty_per_second_over,omitempty"`
	WarningThresholdPercent int `json:"warning_threshold_percent,omitempty"`

	// multi-tasking
	SimultaneousTasks         int  `json:"simultaneous_tasks,omitempty"`
	TaskSwitchPenalty         int  `json:"task_switch_penalty,omitempty"`
	RequiresParallelExecution bool `json:"requires_parallel_execution,omitempty"`

	// interruption
	InterruptionFrequency int      `json:"interruption_frequency,omitempty"`
	InterruptionTypes     []string `json:"interruption_types,omitempty"`
	MustRespond           bool     `json:"must_respond,omitempty"`
	ResponseTimeSeconds   int      `json:"response_time_seconds,omitempty"`

	// production-incident
	AffectedUsers       int  `json:"affected_users,omitempty"`
	RevenueImpact       int  `json:"revenue_impact,omitempty"`
	StakeholderPressure bool `json:"stakeholder_pressure,omitempty"`
	TimeToResolve       int  `json:"time_to_resolve,omitempty"`

	// resource-constraint
	LimitedHints    int      `json:"limited_hints,omitempty"`
	LimitedAttempts int      `json:"limited_attempts,omitempty"`
	NoDocumentation bool     `json:"no_documentation,omitempty"`
	LimitedTools    []string `json:"limited_tools,omitempty"`
}

// StressScenario is an authored, immutable bundle of pressure conditions
// with a target duration and success criteria.
type StressScenario struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	StressLevel     StressLevel `json:"stress_level"`
	Conditions      []Condition `json:"conditions"`
	Duration        int         `json:"duration"` // seconds
	SuccessCriteria []string    `json:"success_criteria"`
	FailurePenalty  int         `json:"failure_penalty"`
	BonusReward     int         `json:"bonus_reward"`
}

// Validate checks if the StressScenario has valid data.
func (s *StressScenario) Validate() error {
	if s.ID == "" {
		return ErrEmptyScenarioID
	}

	if !s.StressLevel.IsValid() {
		return ErrInvalidStressLevel
	}

	if s.Duration <= 0 {
		return NewValidationError("duration", "must be positive", ErrValidation)
	}

	if len(s.SuccessCriteria) == 0 {
		return NewValidationError("success_criteria", "cannot be empty", ErrValidation)
	}

	return nil
}
