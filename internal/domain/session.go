package domain

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceRating grades how well a learner performed in a stress session.
type PerformanceRating string

// Possible performance ratings.
const (
	PerformanceExcellent PerformanceRating = "excellent"
	PerformanceGood      PerformanceRating = "good"
	PerformanceAdequate  PerformanceRating = "adequate"
	PerformancePoor      PerformanceRating = "poor"
	PerformanceFailed    PerformanceRating = "failed"
)

// IsValid reports whether the rating is one of the five known grades.
func (r PerformanceRating) IsValid() bool {
	switch r {
	case PerformanceExcellent, PerformanceGood, PerformanceAdequate, PerformancePoor, PerformanceFailed:
		return true
	default:
		return false
	}
}

// StressTrainingSession is one run of a learner through a stress scenario.
// Telemetry fields mutate on every tick while the session is active; the
// record freezes once CompletedAt is set.
type StressTrainingSession struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Scenario  StressScenario `json:"scenario"`
	StartedAt time.Time      `json:"started_at"`

	// CompletedAt is nil while the session is active.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Performance under stress.
	TasksCompleted   int  `json:"tasks_completed"`
	TotalTasks       int  `json:"total_tasks"`
	ErrorsCount      int  `json:"errors_count"`
	TimeToCompletion int  `json:"time_to_completion"` // seconds
	Succeeded        bool `json:"succeeded"`

	// Simulated physiological telemetry, recomputed every tick.
	StressScore  float64 `json:"stress_score"`  // 0-100, rises with pressure
	FatigueLevel float64 `json:"fatigue_level"` // 0-100, rises with time and stress
	FocusLevel   float64 `json:"focus_level"`   // 100-0, falls with fatigue and stress

	// Results, populated on completion.
	PerformanceRating PerformanceRating `json:"performance_rating,omitempty"`
	AdaptabilityScore float64           `json:"adaptability_score"`
}

// NewStressTrainingSession creates an active session for the given scenario
// with telemetry at its rest state: no tasks done, no errors, zero stress and
// fatigue, full focus. Total task count comes from the scenario's success
// criteria.
func NewStressTrainingSession(
	userID uuid.UUID,
	scenario StressScenario,
	startedAt time.Time,
) (*StressTrainingSession, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	return &StressTrainingSession{
		ID:         uuid.New(),
		UserID:     userID,
		Scenario:   scenario,
		StartedAt:  startedAt,
		TotalTasks: len(scenario.SuccessCriteria),
		FocusLevel: 100,
	}, nil
}

// Active reports whether the session is still running.
func (s *StressTrainingSession) Active() bool {
	return s.CompletedAt == nil
}

// Accuracy returns the session's accuracy percentage:
// (tasksCompleted - errors) / totalTasks * 100, floored at zero. A session
// with no tasks has zero accuracy.
func (s *StressTrainingSession) Accuracy() float64 {
	if s.TotalTasks <= 0 {
		return 0
	}
	accuracy := float64(s.TasksCompleted-s.ErrorsCount) / float64(s.TotalTasks) * 100
	if accuracy < 0 {
		return 0
	}
	return accuracy
}

// Clone returns a deep-enough copy for handing snapshots across goroutine
// boundaries. The scenario is authored immutable content, so its slices are
// shared.
func (s *StressTrainingSession) Clone() *StressTrainingSession {
	clone := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
