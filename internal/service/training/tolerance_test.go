package training

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsForUser(t *testing.T) *domain.StressMetrics {
	t.Helper()
	m, err := domain.NewStressMetrics(uuid.New())
	require.NoError(t, err)
	return m
}

func completedSessionAt(level domain.StressLevel, succeeded bool) *domain.StressTrainingSession {
	completedAt := time.Now().UTC()
	return &domain.StressTrainingSession{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Scenario: domain.StressScenario{
			ID:              "scenario-1",
			StressLevel:     level,
			Duration:        600,
			SuccessCriteria: []string{"done"},
		},
		CompletedAt:    &completedAt,
		TasksCompleted: 1,
		TotalTasks:     1,
		Succeeded:      succeeded,
	}
}

func TestRunningAverage(t *testing.T) {
	t.Parallel()

	// First observation: the pre-increment count is zero, so the average is
	// just the new value.
	assert.InDelta(t, 80.0, runningAverage(0, 80, 0), 0.0001)

	// (80*1 + 60) / 2
	assert.InDelta(t, 70.0, runningAverage(80, 60, 1), 0.0001)

	// (70*2 + 100) / 3
	assert.InDelta(t, 80.0, runningAverage(70, 100, 2), 0.0001)
}

func TestToleranceCandidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		counts       map[domain.StressLevel]int
		sessionLevel domain.StressLevel
		succeeded    bool
		expected     domain.StressLevel
	}{
		{
			name:         "no history floors at low",
			counts:       map[domain.StressLevel]int{},
			sessionLevel: domain.StressLevelMedium,
			succeeded:    true,
			expected:     domain.StressLevelLow,
		},
		{
			name:         "enough medium history plus a medium success qualifies medium",
			counts:       map[domain.StressLevel]int{domain.StressLevelMedium: 3},
			sessionLevel: domain.StressLevelMedium,
			succeeded:    true,
			expected:     domain.StressLevelMedium,
		},
		{
			name:         "a failed session never qualifies",
			counts:       map[domain.StressLevel]int{domain.StressLevelHigh: 5},
			sessionLevel: domain.StressLevelHigh,
			succeeded:    false,
			expected:     domain.StressLevelLow,
		},
		{
			name:         "history at one tier does not qualify a session at another",
			counts:       map[domain.StressLevel]int{domain.StressLevelHigh: 5},
			sessionLevel: domain.StressLevelMedium,
			succeeded:    true,
			expected:     domain.StressLevelLow,
		},
		{
			name:         "extreme history with an extreme success qualifies extreme",
			counts:       map[domain.StressLevel]int{domain.StressLevelExtreme: 3},
			sessionLevel: domain.StressLevelExtreme,
			succeeded:    true,
			expected:     domain.StressLevelExtreme,
		},
		{
			name:         "history just below the threshold does not qualify",
			counts:       map[domain.StressLevel]int{domain.StressLevelMedium: 2},
			sessionLevel: domain.StressLevelMedium,
			succeeded:    true,
			expected:     domain.StressLevelLow,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			metrics := newMetricsForUser(t)
			for level, count := range tc.counts {
				metrics.SessionsByStressLevel[level] = count
			}
			session := completedSessionAt(tc.sessionLevel, tc.succeeded)

			candidate := toleranceCandidate(metrics, session, 3)
			assert.Equal(t, tc.expected, candidate)
		})
	}
}

func TestCanAttemptLevel(t *testing.T) {
	t.Parallel()

	assert.True(t, canAttemptLevel(domain.StressLevelMedium, domain.StressLevelLow))
	assert.True(t, canAttemptLevel(domain.StressLevelMedium, domain.StressLevelMedium))
	assert.False(t, canAttemptLevel(domain.StressLevelMedium, domain.StressLevelHigh))
	assert.True(t, canAttemptLevel(domain.StressLevelExtreme, domain.StressLevelExtreme))
	assert.True(t, canAttemptLevel(domain.StressLevelLow, domain.StressLevelNone))
}

func TestDegradationRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 25.0, degradationRate(80, 60), 0.0001)
	assert.InDelta(t, 0.0, degradationRate(0, 60), 0.0001)
	assert.InDelta(t, -25.0, degradationRate(80, 100), 0.0001) // better under stress
}

func TestFoldSessionUpdatesRunningMeansWithPreIncrementCount(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	metrics := newMetricsForUser(t)
	metrics.TotalSessions = 1
	metrics.AverageStressScore = 40
	metrics.AverageAdaptabilityScore = 60
	metrics.PerformanceDegradation.StressedAccuracy = 80
	metrics.SessionsByStressLevel[domain.StressLevelLow] = 1

	session := completedSessionAt(domain.StressLevelLow, true)
	session.StressScore = 60
	session.AdaptabilityScore = 80
	// Accuracy: (1-0)/1*100 = 100

	updated := foldSession(metrics, session, 90, 3, now)

	assert.Equal(t, 2, updated.TotalSessions)
	assert.Equal(t, 2, updated.SessionsByStressLevel[domain.StressLevelLow])
	assert.InDelta(t, 50.0, updated.AverageStressScore, 0.0001)       // (40+60)/2
	assert.InDelta(t, 70.0, updated.AverageAdaptabilityScore, 0.0001) // (60+80)/2
	assert.InDelta(t, 90.0, updated.PerformanceDegradation.StressedAccuracy, 0.0001)
	assert.InDelta(t, 90.0, updated.PerformanceDegradation.NormalAccuracy, 0.0001)
	assert.InDelta(t, 0.0, updated.PerformanceDegradation.DegradationRate, 0.0001)
	assert.Equal(t, now, updated.LastUpdated)

	// The input aggregate is untouched.
	assert.Equal(t, 1, metrics.TotalSessions)
	assert.InDelta(t, 40.0, metrics.AverageStressScore, 0.0001)
}

func TestFoldSessionPromotesToleranceOnHistoricalCounts(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	metrics := newMetricsForUser(t)
	metrics.TotalSessions = 3
	metrics.SessionsByStressLevel[domain.StressLevelMedium] = 3

	// The fourth successful medium session promotes tolerance to medium.
	session := completedSessionAt(domain.StressLevelMedium, true)
	updated := foldSession(metrics, session, 0, 3, now)
	assert.Equal(t, domain.StressLevelMedium, updated.StressToleranceLevel)
}

func TestFoldSessionSessionDoesNotCountTowardItsOwnPromotion(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	metrics := newMetricsForUser(t)
	metrics.TotalSessions = 2
	metrics.SessionsByStressLevel[domain.StressLevelMedium] = 2

	// Only two historical medium sessions: the one being folded is not part
	// of its own qualifying evidence.
	session := completedSessionAt(domain.StressLevelMedium, true)
	updated := foldSession(metrics, session, 0, 3, now)
	assert.Equal(t, domain.StressLevelLow, updated.StressToleranceLevel)
	assert.Equal(t, 3, updated.SessionsByStressLevel[domain.StressLevelMedium])
}

func TestFoldSessionNeverDemotesTolerance(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	metrics := newMetricsForUser(t)
	metrics.TotalSessions = 10
	metrics.StressToleranceLevel = domain.StressLevelHigh

	// A failed low session yields a low candidate, but tolerance holds.
	session := completedSessionAt(domain.StressLevelLow, false)
	updated := foldSession(metrics, session, 0, 3, now)
	assert.Equal(t, domain.StressLevelHigh, updated.StressToleranceLevel)
}

func TestBaselineAccuracy(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, baselineAccuracy(nil), 0.0001)

	attempts := []*domain.DrillAttempt{
		{Accuracy: 80},
		{Accuracy: 90},
		{Accuracy: 100},
	}
	assert.InDelta(t, 90.0, baselineAccuracy(attempts), 0.0001)
}
