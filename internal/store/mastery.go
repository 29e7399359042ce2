package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// LessonMasteryStore defines the interface for lesson mastery persistence.
type LessonMasteryStore interface {
	// Get retrieves the mastery record for a user and lesson.
	// Returns ErrLessonMasteryNotFound if no record exists.
	Get(ctx context.Context, userID uuid.UUID, lessonID string) (*domain.LessonMastery, error)

	// Save persists the full mastery aggregate, inserting it on first save
	// and replacing the stored state on subsequent saves.
	// Returns validation errors if the aggregate is invalid.
	Save(ctx context.Context, mastery *domain.LessonMastery) error

	// ListByUser retrieves all mastery records for a user, ordered by lesson ID.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.LessonMastery, error)

	// WithTx returns a new LessonMasteryStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through store.RunInTransaction.
	WithTx(tx *sql.Tx) LessonMasteryStore
}
