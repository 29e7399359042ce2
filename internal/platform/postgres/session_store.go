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

// PostgresStressSessionStore implements the store.StressSessionStore interface
// using a PostgreSQL database as the storage backend. Completed sessions are
// append-only rows with the full session stored as a JSONB document plus a
// few scalar columns for querying.
type PostgresStressSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStressSessionStore creates a new PostgreSQL implementation of the
// StressSessionStore interface. If logger is nil, a default logger will be used.
func NewPostgresStressSessionStore(db store.DBTX, logger *slog.Logger) *PostgresStressSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStressSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "stress_session_store")),
	}
}

// Ensure PostgresStressSessionStore implements store.StressSessionStore interface
var _ store.StressSessionStore = (*PostgresStressSessionStore)(nil)

// Create implements store.StressSessionStore.Create
func (s *PostgresStressSessionStore) Create(ctx context.Context, session *domain.StressTrainingSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	data, err := json.Marshal(session)
	if err != nil {
		log.Error("failed to encode session data",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	query := `
		INSERT INTO stress_sessions
			(id, user_id, scenario_id, stress_level, started_at, completed_at, succeeded, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.Scenario.ID,
		session.Scenario.StressLevel,
		session.StartedAt,
		session.CompletedAt,
		session.Succeeded,
		data,
	)
	if err != nil {
		log.Error("failed to create stress session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("user_id", session.UserID.String()))
		return err
	}

	log.Info("stress session saved",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.String("scenario_id", session.Scenario.ID),
		slog.Bool("succeeded", session.Succeeded))
	return nil
}

// GetByID implements store.StressSessionStore.GetByID
// Returns store.ErrSessionNotFound if the session does not exist.
func (s *PostgresStressSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StressTrainingSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT data
		FROM stress_sessions
		WHERE id = $1
	`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get stress session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	var session domain.StressTrainingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: malformed session data: %v", store.ErrInvalidEntity, err)
	}

	return &session, nil
}

// ListByUser implements store.StressSessionStore.ListByUser
func (s *PostgresStressSessionStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.StressTrainingSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT data
		FROM stress_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list stress sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.StressTrainingSession
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}

		var session domain.StressTrainingSession
		if err := json.Unmarshal(data, &session); err != nil {
			return nil, fmt.Errorf("%w: malformed session data: %v", store.ErrInvalidEntity, err)
		}
		result = append(result, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// WithTx implements store.StressSessionStore.WithTx
func (s *PostgresStressSessionStore) WithTx(tx *sql.Tx) store.StressSessionStore {
	return &PostgresStressSessionStore{
		db:     tx,
		logger: s.logger,
	}
}
