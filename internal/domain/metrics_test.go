package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStressMetrics(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	m, err := NewStressMetrics(userID)
	require.NoError(t, err)

	assert.Equal(t, userID, m.UserID)
	assert.Equal(t, 0, m.TotalSessions)
	assert.Equal(t, StressLevelLow, m.StressToleranceLevel)

	// Every tier is pre-seeded so folding never touches a missing key.
	for _, level := range StressLevelOrder {
		count, ok := m.SessionsByStressLevel[level]
		assert.True(t, ok, "missing tier %s", level)
		assert.Equal(t, 0, count)
	}
}

func TestNewStressMetricsRequiresUser(t *testing.T) {
	t.Parallel()
	_, err := NewStressMetrics(uuid.Nil)
	assert.ErrorIs(t, err, ErrEmptyUserID)
}

func TestStressMetricsClone(t *testing.T) {
	t.Parallel()

	m, err := NewStressMetrics(uuid.New())
	require.NoError(t, err)

	clone := m.Clone()
	clone.SessionsByStressLevel[StressLevelHigh] = 5
	clone.TotalSessions = 5

	assert.Equal(t, 0, m.SessionsByStressLevel[StressLevelHigh])
	assert.Equal(t, 0, m.TotalSessions)
}

func TestNewDrillAttempt(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	attempt, err := NewDrillAttempt(userID, "drill-1", 87.5, 120, true)
	require.NoError(t, err)
	assert.Equal(t, userID, attempt.UserID)
	assert.Equal(t, "drill-1", attempt.DrillID)
	assert.InDelta(t, 87.5, attempt.Accuracy, 0.0001)
	assert.Equal(t, 120, attempt.DurationSeconds)
	assert.True(t, attempt.Passed)

	// Accuracy clamps into [0,100] and negative durations reset to zero.
	attempt, err = NewDrillAttempt(userID, "drill-1", 150, -10, false)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, attempt.Accuracy, 0.0001)
	assert.Equal(t, 0, attempt.DurationSeconds)

	attempt, err = NewDrillAttempt(userID, "drill-1", -5, 0, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, attempt.Accuracy, 0.0001)

	_, err = NewDrillAttempt(uuid.Nil, "drill-1", 50, 0, false)
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, err = NewDrillAttempt(userID, "", 50, 0, false)
	assert.ErrorIs(t, err, ErrValidation)
}
