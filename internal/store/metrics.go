package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// StressMetricsStore defines the interface for per-user stress metrics
// persistence. Each user has at most one current metrics row; every save
// also appends a snapshot to a history table for later trend analysis.
type StressMetricsStore interface {
	// Get retrieves the current metrics for a user.
	// Returns ErrStressMetricsNotFound if no metrics exist yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.StressMetrics, error)

	// Save upserts the current metrics row and appends a history snapshot.
	// Returns validation errors if the metrics are invalid.
	Save(ctx context.Context, metrics *domain.StressMetrics) error

	// WithTx returns a new StressMetricsStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) StressMetricsStore
}
