// Package training provides the stress training session engine. It owns the
// lifecycle of stress sessions (start, tick, metric updates, completion),
// folds completed sessions into per-user stress metrics, and gates scenario
// access by stress tolerance.
//
// Active sessions live in an in-memory registry and are persisted only at
// completion; session rows are append-only.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// StressTrainingService provides methods for running stress training
// sessions and querying stress metrics.
type StressTrainingService interface {
	// StartSession begins a stress session for the given scenario.
	//
	// Returns:
	//   - (*domain.StressTrainingSession, nil): The new active session
	//   - (nil, ErrSessionActive): If the user already has an active session
	//   - (nil, ErrScenarioNotFound): If the scenario ID is unknown
	//   - (nil, ErrStressLevelLocked): If the scenario's stress level exceeds
	//     the user's tolerance
	StartSession(ctx context.Context, userID uuid.UUID, scenarioID string) (*domain.StressTrainingSession, error)

	// CurrentSession returns a snapshot of the user's active session.
	// Returns ErrNoActiveSession if none is running.
	CurrentSession(ctx context.Context, userID uuid.UUID) (*domain.StressTrainingSession, error)

	// UpdateSessionMetrics replaces the task and error counters of the
	// user's active session and returns the refreshed snapshot.
	// Returns ErrNoActiveSession if none is running.
	UpdateSessionMetrics(ctx context.Context, userID uuid.UUID, tasksCompleted, errorsCount int) (*domain.StressTrainingSession, error)

	// CompleteSession finishes the user's active session: it freezes the
	// telemetry, grades the run, persists the session, and folds it into the
	// user's stress metrics.
	// Returns ErrNoActiveSession if none is running.
	CompleteSession(ctx context.Context, userID uuid.UUID, success bool) (*domain.StressTrainingSession, error)

	// Advance recomputes stress, fatigue, and focus for every active
	// session as of the given time. Called periodically by the ticker.
	Advance(ctx context.Context, now time.Time)

	// GetMetrics returns the user's cumulative stress metrics. A user with
	// no completed sessions gets the initial aggregate rather than an error.
	GetMetrics(ctx context.Context, userID uuid.UUID) (*domain.StressMetrics, error)

	// CanAttemptStressLevel reports whether the user's tolerance admits
	// scenarios at the given stress level.
	CanAttemptStressLevel(ctx context.Context, userID uuid.UUID, level domain.StressLevel) (bool, error)

	// RecordDrillAttempt stores a baseline (non-stress) drill attempt.
	// These attempts feed the normal-accuracy side of performance
	// degradation.
	RecordDrillAttempt(
		ctx context.Context,
		userID uuid.UUID,
		drillID string,
		accuracy float64,
		durationSeconds int,
		passed bool,
	) (*domain.DrillAttempt, error)
}

// Common error types for StressTrainingService
var (
	// ErrSessionActive indicates the user already has a running session.
	ErrSessionActive = errors.New("user already has an active session")

	// ErrNoActiveSession indicates no session is running for the user.
	ErrNoActiveSession = errors.New("no active session")

	// ErrScenarioNotFound indicates the requested scenario does not exist.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrStressLevelLocked indicates the scenario's stress level exceeds the
	// user's current tolerance.
	ErrStressLevelLocked = errors.New("stress level exceeds current tolerance")
)

// ServiceError wraps errors from the stress training service with additional
// context. This allows consumers to differentiate between different types of
// service errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
