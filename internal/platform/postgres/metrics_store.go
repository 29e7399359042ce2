package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// PostgresStressMetricsStore implements the store.StressMetricsStore interface
// using a PostgreSQL database as the storage backend. The current metrics for
// a user live in a single upserted row; every save also appends a snapshot to
// stress_metrics_history so tolerance and degradation trends can be replayed.
type PostgresStressMetricsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStressMetricsStore creates a new PostgreSQL implementation of the
// StressMetricsStore interface. If logger is nil, a default logger will be used.
func NewPostgresStressMetricsStore(db store.DBTX, logger *slog.Logger) *PostgresStressMetricsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStressMetricsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stress_metrics_store")),
	}
}

// Ensure PostgresStressMetricsStore implements store.StressMetricsStore interface
var _ store.StressMetricsStore = (*PostgresStressMetricsStore)(nil)

// Get implements store.StressMetricsStore.Get
// Returns store.ErrStressMetricsNotFound if no metrics exist yet.
func (s *PostgresStressMetricsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StressMetrics, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT data
		FROM stress_metrics
		WHERE user_id = $1
	`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStressMetricsNotFound
		}
		log.Error("failed to get stress metrics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	var metrics domain.StressMetrics
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("%w: malformed metrics data: %v", store.ErrInvalidEntity, err)
	}

	return &metrics, nil
}

// Save implements store.StressMetricsStore.Save
// It upserts the current row and appends a history snapshot.
func (s *PostgresStressMetricsStore) Save(ctx context.Context, metrics *domain.StressMetrics) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := metrics.Validate(); err != nil {
		log.Warn("stress metrics validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", metrics.UserID.String()))
		return err
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		log.Error("failed to encode stress metrics data",
			slog.String("error", err.Error()),
			slog.String("user_id", metrics.UserID.String()))
		return err
	}

	// The upsert and the history append must land together. When the store
	// holds the root connection, wrap both writes in a transaction; when it
	// already runs inside one (via WithTx), write directly.
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).(*PostgresStressMetricsStore).write(ctx, metrics, data)
		})
	}
	return s.write(ctx, metrics, data)
}

// write performs the current-row upsert and history append on the store's
// current DBTX.
func (s *PostgresStressMetricsStore) write(ctx context.Context, metrics *domain.StressMetrics, data []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	upsert := `
		INSERT INTO stress_metrics (user_id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, upsert, metrics.UserID, data, metrics.LastUpdated); err != nil {
		log.Error("failed to save stress metrics",
			slog.String("error", err.Error()),
			slog.String("user_id", metrics.UserID.String()))
		return err
	}

	history := `
		INSERT INTO stress_metrics_history (id, user_id, data, recorded_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, history, uuid.New(), metrics.UserID, data, metrics.LastUpdated); err != nil {
		log.Error("failed to append stress metrics history",
			slog.String("error", err.Error()),
			slog.String("user_id", metrics.UserID.String()))
		return err
	}

	log.Debug("stress metrics saved",
		slog.String("user_id", metrics.UserID.String()),
		slog.String("tolerance_level", string(metrics.StressToleranceLevel)),
		slog.Int("total_sessions", metrics.TotalSessions))
	return nil
}

// WithTx implements store.StressMetricsStore.WithTx
func (s *PostgresStressMetricsStore) WithTx(tx *sql.Tx) store.StressMetricsStore {
	return &PostgresStressMetricsStore{
		db:     tx,
		logger: s.logger,
	}
}
