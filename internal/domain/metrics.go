package domain

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceDegradation compares a learner's accuracy under normal
// conditions against their accuracy under stress.
type PerformanceDegradation struct {
	NormalAccuracy   float64 `json:"normal_accuracy"`   // % when not stressed
	StressedAccuracy float64 `json:"stressed_accuracy"` // % under stress
	DegradationRate  float64 `json:"degradation_rate"`  // % performance drop
}

// StressMetrics is the cumulative per-user aggregate folded from completed
// stress sessions. TotalSessions is the running-mean denominator; it is
// incremented only after the averages have been updated with the
// pre-increment count.
type StressMetrics struct {
	UserID                   uuid.UUID              `json:"user_id"`
	TotalSessions            int                    `json:"total_sessions"`
	SessionsByStressLevel    map[StressLevel]int    `json:"sessions_by_stress_level"`
	AverageStressScore       float64                `json:"average_stress_score"`
	AverageAdaptabilityScore float64                `json:"average_adaptability_score"`
	StressToleranceLevel     StressLevel            `json:"stress_tolerance_level"`
	PerformanceDegradation   PerformanceDegradation `json:"performance_degradation"`
	LastUpdated              time.Time              `json:"last_updated"`
}

// NewStressMetrics creates the initial aggregate for a user. Tolerance
// starts at low, which is also its floor: tolerance never demotes.
func NewStressMetrics(userID uuid.UUID) (*StressMetrics, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	return &StressMetrics{
		UserID: userID,
		SessionsByStressLevel: map[StressLevel]int{
			StressLevelNone:    0,
			StressLevelLow:     0,
			StressLevelMedium:  0,
			StressLevelHigh:    0,
			StressLevelExtreme: 0,
		},
		StressToleranceLevel: StressLevelLow,
		LastUpdated:          time.Now().UTC(),
	}, nil
}

// Validate checks if the StressMetrics has valid data.
func (m *StressMetrics) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrEmptyUserID
	}

	if m.TotalSessions < 0 {
		return NewValidationError("total_sessions", "cannot be negative", ErrValidation)
	}

	if !m.StressToleranceLevel.IsValid() {
		return ErrInvalidStressLevel
	}

	return nil
}

// Clone returns a deep copy of the aggregate.
func (m *StressMetrics) Clone() *StressMetrics {
	clone := *m
	clone.SessionsByStressLevel = make(map[StressLevel]int, len(m.SessionsByStressLevel))
	for level, count := range m.SessionsByStressLevel {
		clone.SessionsByStressLevel[level] = count
	}
	return &clone
}

// DrillAttempt is a baseline (non-stress) practice attempt. The most recent
// attempts feed the normal-accuracy side of performance degradation.
type DrillAttempt struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	DrillID         string    `json:"drill_id"`
	Accuracy        float64   `json:"accuracy"` // percentage
	DurationSeconds int       `json:"duration_seconds"`
	Passed          bool      `json:"passed"`
	AttemptedAt     time.Time `json:"attempted_at"`
}

// NewDrillAttempt creates a drill attempt record with accuracy clamped into
// [0,100].
func NewDrillAttempt(
	userID uuid.UUID,
	drillID string,
	accuracy float64,
	durationSeconds int,
	passed bool,
) (*DrillAttempt, error) {
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	if drillID == "" {
		return nil, NewValidationError("drill_id", "cannot be empty", ErrValidation)
	}

	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 100 {
		accuracy = 100
	}

	if durationSeconds < 0 {
		durationSeconds = 0
	}

	return &DrillAttempt{
		ID:              uuid.New(),
		UserID:          userID,
		DrillID:         drillID,
		Accuracy:        accuracy,
		DurationSeconds: durationSeconds,
		Passed:          passed,
		AttemptedAt:     time.Now().UTC(),
	}, nil
}
