package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// DrillAttemptStore defines the interface for unstressed drill attempt
// persistence. Drill attempts form the baseline accuracy sample used to
// compute performance degradation under stress.
type DrillAttemptStore interface {
	// Create saves a drill attempt to the store.
	// Returns validation errors if the attempt data is invalid.
	Create(ctx context.Context, attempt *domain.DrillAttempt) error

	// ListRecent retrieves the user's most recent attempts, newest first,
	// capped at limit. A non-positive limit returns all attempts.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.DrillAttempt, error)

	// WithTx returns a new DrillAttemptStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) DrillAttemptStore
}
