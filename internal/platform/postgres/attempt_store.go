package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// PostgresDrillAttemptStore implements the store.DrillAttemptStore interface
// using a PostgreSQL database as the storage backend. Attempts are small,
// flat records, so they map to plain columns rather than JSONB.
type PostgresDrillAttemptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDrillAttemptStore creates a new PostgreSQL implementation of the
// DrillAttemptStore interface. If logger is nil, a default logger will be used.
func NewPostgresDrillAttemptStore(db store.DBTX, logger *slog.Logger) *PostgresDrillAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDrillAttemptStore{
		db:     db,
		logger: logger.With(slog.String("component", "drill_attempt_store")),
	}
}

// Ensure PostgresDrillAttemptStore implements store.DrillAttemptStore interface
var _ store.DrillAttemptStore = (*PostgresDrillAttemptStore)(nil)

// Create implements store.DrillAttemptStore.Create
func (s *PostgresDrillAttemptStore) Create(ctx context.Context, attempt *domain.DrillAttempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO drill_attempts
			(id, user_id, drill_id, accuracy, duration_seconds, passed, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		attempt.ID,
		attempt.UserID,
		attempt.DrillID,
		attempt.Accuracy,
		attempt.DurationSeconds,
		attempt.Passed,
		attempt.AttemptedAt,
	)
	if err != nil {
		log.Error("failed to create drill attempt",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()),
			slog.String("user_id", attempt.UserID.String()))
		return err
	}

	log.Debug("drill attempt saved",
		slog.String("attempt_id", attempt.ID.String()),
		slog.String("user_id", attempt.UserID.String()),
		slog.String("drill_id", attempt.DrillID))
	return nil
}

// ListRecent implements store.DrillAttemptStore.ListRecent
func (s *PostgresDrillAttemptStore) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.DrillAttempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, drill_id, accuracy, duration_seconds, passed, attempted_at
		FROM drill_attempts
		WHERE user_id = $1
		ORDER BY attempted_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list drill attempts",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.DrillAttempt
	for rows.Next() {
		var attempt domain.DrillAttempt
		if err := rows.Scan(
			&attempt.ID,
			&attempt.UserID,
			&attempt.DrillID,
			&attempt.Accuracy,
			&attempt.DurationSeconds,
			&attempt.Passed,
			&attempt.AttemptedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// WithTx implements store.DrillAttemptStore.WithTx
func (s *PostgresDrillAttemptStore) WithTx(tx *sql.Tx) store.DrillAttemptStore {
	return &PostgresDrillAttemptStore{
		db:     tx,
		logger: s.logger,
	}
}
