// Package mastery provides the lesson mastery progression service. It wraps
// the gating state machine with persistence and event emission: attempts are
// applied to the stored aggregate and the resulting transitions are saved
// and published.
package mastery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/gating"
)

// MasteryService provides methods for recording practice attempts and
// querying mastery progression.
type MasteryService interface {
	// RecordAttempt records one practice attempt at the given level for a
	// user's lesson. On first contact with a lesson a fresh aggregate is
	// created with only the crawl level unlocked.
	//
	// Returns:
	//   - (*gating.AttemptResult, nil): The transitions caused by the attempt
	//   - (nil, nil): If the level is locked; the attempt is ignored
	//   - (nil, error): Validation or persistence failure
	RecordAttempt(
		ctx context.Context,
		userID uuid.UUID,
		lessonID string,
		level domain.MasteryLevel,
		perfect bool,
		timeSpentSeconds float64,
	) (*gating.AttemptResult, error)

	// GetMastery retrieves the mastery aggregate for a user's lesson.
	// A lesson never attempted returns a fresh aggregate rather than an error,
	// so clients can render initial state without a write.
	GetMastery(ctx context.Context, userID uuid.UUID, lessonID string) (*domain.LessonMastery, error)

	// ListMastery retrieves all of the user's mastery records.
	ListMastery(ctx context.Context, userID uuid.UUID) ([]*domain.LessonMastery, error)

	// GetLevelProgress retrieves the per-level progress for a user's lesson.
	GetLevelProgress(ctx context.Context, userID uuid.UUID, lessonID string, level domain.MasteryLevel) (*domain.MasteryProgress, error)

	// CanAccessLevel reports whether the given level is unlocked for practice.
	CanAccessLevel(ctx context.Context, userID uuid.UUID, lessonID string, level domain.MasteryLevel) (bool, error)

	// IsLevelMastered reports whether the given level has been mastered.
	IsLevelMastered(ctx context.Context, userID uuid.UUID, lessonID string, level domain.MasteryLevel) (bool, error)
}

// ServiceError wraps errors from the mastery service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_attempt")
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

// NewRecordAttemptError returns a new ServiceError for the record_attempt operation.
func NewRecordAttemptError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "record_attempt",
		Message:   message,
		Err:       err,
	}
}

// NewGetMasteryError returns a new ServiceError for the get_mastery operation.
func NewGetMasteryError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_mastery",
		Message:   message,
		Err:       err,
	}
}
