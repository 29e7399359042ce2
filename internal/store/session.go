package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// StressSessionStore defines the interface for completed stress training
// session persistence. Sessions are append-only: in-flight sessions live in
// memory and only reach the store once completed.
type StressSessionStore interface {
	// Create saves a completed session to the store.
	// Returns validation errors if the session data is invalid.
	Create(ctx context.Context, session *domain.StressTrainingSession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StressTrainingSession, error)

	// ListByUser retrieves up to limit sessions for a user, most recent first.
	// A non-positive limit returns all of the user's sessions.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.StressTrainingSession, error)

	// WithTx returns a new StressSessionStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) StressSessionStore
}
