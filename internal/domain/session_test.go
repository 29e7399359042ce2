package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validScenario() StressScenario {
	return StressScenario{
		ID:          "scenario-1",
		Title:       "Deploy under pressure",
		StressLevel: StressLevelLow,
		Duration:    600,
		SuccessCriteria: []string{
			"deployed",
			"healthy",
			"on time",
		},
	}
}

func TestNewStressTrainingSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	startedAt := time.Now().UTC()

	session, err := NewStressTrainingSession(userID, validScenario(), startedAt)
	require.NoError(t, err)

	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, startedAt, session.StartedAt)
	assert.True(t, session.Active())

	// Telemetry starts at rest.
	assert.Equal(t, 3, session.TotalTasks)
	assert.Equal(t, 0, session.TasksCompleted)
	assert.Equal(t, 0, session.ErrorsCount)
	assert.InDelta(t, 0.0, session.StressScore, 0.0001)
	assert.InDelta(t, 0.0, session.FatigueLevel, 0.0001)
	assert.InDelta(t, 100.0, session.FocusLevel, 0.0001)
}

func TestNewStressTrainingSessionValidation(t *testing.T) {
	t.Parallel()
	startedAt := time.Now().UTC()

	_, err := NewStressTrainingSession(uuid.Nil, validScenario(), startedAt)
	assert.ErrorIs(t, err, ErrEmptyUserID)

	scenario := validScenario()
	scenario.ID = ""
	_, err = NewStressTrainingSession(uuid.New(), scenario, startedAt)
	assert.ErrorIs(t, err, ErrEmptyScenarioID)

	scenario = validScenario()
	scenario.Duration = 0
	_, err = NewStressTrainingSession(uuid.New(), scenario, startedAt)
	assert.ErrorIs(t, err, ErrValidation)

	scenario = validScenario()
	scenario.SuccessCriteria = nil
	_, err = NewStressTrainingSession(uuid.New(), scenario, startedAt)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSessionAccuracy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		tasksCompleted int
		totalTasks     int
		errorsCount    int
		expected       float64
	}{
		{name: "clean full completion", tasksCompleted: 4, totalTasks: 4, expected: 100},
		{name: "partial completion with errors", tasksCompleted: 3, totalTasks: 4, errorsCount: 1, expected: 50},
		{name: "errors exceed completions floors at zero", tasksCompleted: 1, totalTasks: 4, errorsCount: 3, expected: 0},
		{name: "no tasks means zero accuracy", tasksCompleted: 0, totalTasks: 0, expected: 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			session := &StressTrainingSession{
				TasksCompleted: tc.tasksCompleted,
				TotalTasks:     tc.totalTasks,
				ErrorsCount:    tc.errorsCount,
			}
			assert.InDelta(t, tc.expected, session.Accuracy(), 0.0001)
		})
	}
}

func TestSessionClone(t *testing.T) {
	t.Parallel()

	session, err := NewStressTrainingSession(uuid.New(), validScenario(), time.Now().UTC())
	require.NoError(t, err)

	completedAt := time.Now().UTC()
	session.CompletedAt = &completedAt

	clone := session.Clone()
	later := completedAt.Add(time.Hour)
	clone.CompletedAt = &later
	clone.TasksCompleted = 5

	assert.Equal(t, completedAt, *session.CompletedAt)
	assert.Equal(t, 0, session.TasksCompleted)
}
