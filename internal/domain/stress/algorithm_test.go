package stress

import (
	"testing"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePressureCondition(targetSeconds int) domain.Condition {
	return domain.Condition{
		ID:                "tp",
		Type:              domain.ConditionTimePressure,
		Enabled:           true,
		TargetTimeSeconds: targetSeconds,
	}
}

func TestStressScoreTimePressureTiers(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	testCases := []struct {
		name           string
		elapsedSeconds int
		expected       float64
	}{
		{
			name:           "below half the target is the low tier",
			elapsedSeconds: 200,
			expected:       10,
		},
		{
			name:           "past half the target is the mid tier",
			elapsedSeconds: 400,
			expected:       20,
		},
		{
			name:           "past three quarters of the target is the high tier",
			elapsedSeconds: 500,
			expected:       30,
		},
		{
			name:           "past the target stays at the high tier",
			elapsedSeconds: 900,
			expected:       30,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			score := service.StressScore(
				[]domain.Condition{timePressureCondition(600)},
				tc.elapsedSeconds,
				0,
				0,
			)
			assert.InDelta(t, tc.expected, score, 0.0001)
		})
	}
}

func TestStressScoreTimePressureWithoutTarget(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	// A condition without a target time always contributes the high tier.
	score := service.StressScore([]domain.Condition{timePressureCondition(0)}, 1, 0, 0)
	assert.InDelta(t, 30.0, score, 0.0001)
}

func TestStressScoreConditionContributions(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	testCases := []struct {
		name      string
		condition domain.Condition
		expected  float64
	}{
		{
			name: "multi-tasking weighs each simultaneous task",
			condition: domain.Condition{
				Type:              domain.ConditionMultiTasking,
				SimultaneousTasks: 2,
			},
			expected: 30,
		},
		{
			name: "production incident without stakeholder pressure",
			condition: domain.Condition{
				Type: domain.ConditionProductionIncident,
			},
			expected: 40,
		},
		{
			name: "production incident with stakeholder pressure",
			condition: domain.Condition{
				Type:                domain.ConditionProductionIncident,
				StakeholderPressure: true,
			},
			expected: 60,
		},
		{
			name: "interruptions weigh per occurrence",
			condition: domain.Condition{
				Type:                  domain.ConditionInterruption,
				InterruptionFrequency: 4,
			},
			expected: 20,
		},
		{
			name: "resource constraint with missing documentation only",
			condition: domain.Condition{
				Type:            domain.ConditionResourceConstraint,
				NoDocumentation: true,
				LimitedAttempts: 3,
			},
			expected: 15,
		},
		{
			name: "resource constraint with missing docs and tight attempts",
			condition: domain.Condition{
				Type:            domain.ConditionResourceConstraint,
				NoDocumentation: true,
				LimitedAttempts: 2,
			},
			expected: 30,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			score := service.StressScore([]domain.Condition{tc.condition}, 0, 0, 0)
			assert.InDelta(t, tc.expected, score, 0.0001)
		})
	}
}

func TestStressScoreTelemetryContributions(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	// Errors and unfinished tasks contribute even with no conditions.
	score := service.StressScore(nil, 0, 2, 3)
	assert.InDelta(t, 35.0, score, 0.0001) // 2*10 + 3*5

	// Negative telemetry is treated as zero.
	score = service.StressScore(nil, -10, -2, -3)
	assert.InDelta(t, 0.0, score, 0.0001)
}

func TestStressScoreClampedAt100(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	conditions := []domain.Condition{
		{Type: domain.ConditionProductionIncident, StakeholderPressure: true},
		{Type: domain.ConditionMultiTasking, SimultaneousTasks: 5},
	}
	score := service.StressScore(conditions, 0, 10, 10)
	assert.InDelta(t, 100.0, score, 0.0001)
}

func TestFatigueLevel(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	// Ten minutes at stress 50: 10*2 base + 50/100*20 stress share.
	fatigue := service.FatigueLevel(600, 50)
	assert.InDelta(t, 30.0, fatigue, 0.0001)

	// Fatigue is capped at 100 no matter how long the session runs.
	fatigue = service.FatigueLevel(100*60, 100)
	assert.InDelta(t, 100.0, fatigue, 0.0001)

	// Negative elapsed time is treated as zero.
	fatigue = service.FatigueLevel(-60, 0)
	assert.InDelta(t, 0.0, fatigue, 0.0001)
}

func TestFocusLevel(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	focus := service.FocusLevel(40, 50)
	assert.InDelta(t, 65.0, focus, 0.0001) // 100 - (40*0.5 + 50*0.3)

	// Focus never goes negative.
	focus = service.FocusLevel(100, 100)
	assert.InDelta(t, 20.0, focus, 0.0001)

	focus = service.FocusLevel(200, 200) // clamped inputs
	assert.InDelta(t, 20.0, focus, 0.0001)
}

func TestRatePerformance(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	testCases := []struct {
		name             string
		tasksCompleted   int
		totalTasks       int
		timeToCompletion int
		targetTime       int
		errorsCount      int
		expected         domain.PerformanceRating
	}{
		{
			name:           "below half completion is failed",
			tasksCompleted: 1, totalTasks: 4,
			timeToCompletion: 100, targetTime: 600,
			expected: domain.PerformanceFailed,
		},
		{
			name:           "below three quarters completion is poor",
			tasksCompleted: 2, totalTasks: 4,
			timeToCompletion: 100, targetTime: 600,
			expected: domain.PerformancePoor,
		},
		{
			name:           "full completion well under budget with no errors is excellent",
			tasksCompleted: 4, totalTasks: 4,
			timeToCompletion: 400, targetTime: 600,
			expected: domain.PerformanceExcellent,
		},
		{
			name:           "full completion under budget with one error is good",
			tasksCompleted: 4, totalTasks: 4,
			timeToCompletion: 550, targetTime: 600, errorsCount: 1,
			expected: domain.PerformanceGood,
		},
		{
			name:           "a single error disqualifies excellent even when fast",
			tasksCompleted: 4, totalTasks: 4,
			timeToCompletion: 400, targetTime: 600, errorsCount: 1,
			expected: domain.PerformanceGood,
		},
		{
			name:           "near-full completion slightly over budget is adequate",
			tasksCompleted: 9, totalTasks: 10,
			timeToCompletion: 700, targetTime: 600,
			expected: domain.PerformanceAdequate,
		},
		{
			name:           "decent completion far over budget falls through to poor",
			tasksCompleted: 4, totalTasks: 5,
			timeToCompletion: 1000, targetTime: 600,
			expected: domain.PerformancePoor,
		},
		{
			name:           "no tasks at all is failed",
			tasksCompleted: 0, totalTasks: 0,
			timeToCompletion: 0, targetTime: 600,
			expected: domain.PerformanceFailed,
		},
		{
			name:           "zero target time can never beat the clock",
			tasksCompleted: 4, totalTasks: 4,
			timeToCompletion: 1, targetTime: 0,
			expected: domain.PerformancePoor,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rating := service.RatePerformance(
				tc.tasksCompleted,
				tc.totalTasks,
				tc.timeToCompletion,
				tc.targetTime,
				tc.errorsCount,
			)
			assert.Equal(t, tc.expected, rating)
		})
	}
}

func TestAdaptabilityScore(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()

	testCases := []struct {
		name        string
		rating      domain.PerformanceRating
		stressLevel domain.StressLevel
		errors      int
		focusLevel  float64
		expected    float64
	}{
		{
			name:   "excellent at high stress clamps at 100",
			rating: domain.PerformanceExcellent, stressLevel: domain.StressLevelHigh,
			focusLevel: 70,
			expected:   100, // (70+30)*1.25 clamped
		},
		{
			name:   "good at medium stress with errors",
			rating: domain.PerformanceGood, stressLevel: domain.StressLevelMedium,
			errors: 2, focusLevel: 50,
			expected: 60, // (50+20)*1.0 - 10
		},
		{
			name:   "failed run at no stress floors at 0",
			rating: domain.PerformanceFailed, stressLevel: domain.StressLevelNone,
			focusLevel: 10,
			expected:   0, // (10-20)*0.5 clamped
		},
		{
			name:   "poor at low stress",
			rating: domain.PerformancePoor, stressLevel: domain.StressLevelLow,
			focusLevel: 60,
			expected:   45, // (60+0)*0.75
		},
		{
			name:   "unknown stress level keeps a neutral multiplier",
			rating: domain.PerformanceAdequate, stressLevel: domain.StressLevel("weird"),
			focusLevel: 40,
			expected:   50, // (40+10)*1.0
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			score := service.AdaptabilityScore(tc.rating, tc.stressLevel, tc.errors, tc.focusLevel)
			assert.InDelta(t, tc.expected, score, 0.0001)
		})
	}
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{ErrorWeight: 25, ErrorPenalty: 1})
	require.NotNil(t, params)
	assert.InDelta(t, 25.0, params.ErrorWeight, 0.0001)
	assert.InDelta(t, 1.0, params.ErrorPenalty, 0.0001)

	// Zero values keep the defaults.
	assert.InDelta(t, 5.0, params.TaskRemainingWeight, 0.0001)
	assert.InDelta(t, 2.0, params.FatiguePerMinute, 0.0001)
}
