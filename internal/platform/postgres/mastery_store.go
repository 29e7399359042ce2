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

// PostgresLessonMasteryStore implements the store.LessonMasteryStore interface
// using a PostgreSQL database as the storage backend. The mastery aggregate is
// stored as a JSONB document keyed by (user_id, lesson_id), which keeps the
// per-level progress structure intact without a wide column mapping.
type PostgresLessonMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLessonMasteryStore creates a new PostgreSQL implementation of the
// LessonMasteryStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresLessonMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresLessonMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLessonMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "lesson_mastery_store")),
	}
}

// Ensure PostgresLessonMasteryStore implements store.LessonMasteryStore interface
var _ store.LessonMasteryStore = (*PostgresLessonMasteryStore)(nil)

// Get implements store.LessonMasteryStore.Get
// Returns store.ErrLessonMasteryNotFound if no record exists.
func (s *PostgresLessonMasteryStore) Get(ctx context.Context, userID uuid.UUID, lessonID string) (*domain.LessonMastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT data
		FROM lesson_mastery
		WHERE user_id = $1 AND lesson_id = $2
	`

	var data []byte
	err := s.db.QueryRowContext(ctx, query, userID, lessonID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("lesson mastery not found",
				slog.String("user_id", userID.String()),
				slog.String("lesson_id", lessonID))
			return nil, store.ErrLessonMasteryNotFound
		}
		log.Error("failed to get lesson mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID))
		return nil, err
	}

	var mastery domain.LessonMastery
	if err := json.Unmarshal(data, &mastery); err != nil {
		log.Error("failed to decode lesson mastery data",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID))
		return nil, fmt.Errorf("%w: malformed mastery data: %v", store.ErrInvalidEntity, err)
	}

	return &mastery, nil
}

// Save implements store.LessonMasteryStore.Save
// It upserts the full aggregate keyed by (user_id, lesson_id).
func (s *PostgresLessonMasteryStore) Save(ctx context.Context, mastery *domain.LessonMastery) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := mastery.Validate(); err != nil {
		log.Warn("lesson mastery validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", mastery.UserID.String()),
			slog.String("lesson_id", mastery.LessonID))
		return err
	}

	data, err := json.Marshal(mastery)
	if err != nil {
		log.Error("failed to encode lesson mastery data",
			slog.String("error", err.Error()),
			slog.String("user_id", mastery.UserID.String()),
			slog.String("lesson_id", mastery.LessonID))
		return err
	}

	query := `
		INSERT INTO lesson_mastery (user_id, lesson_id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(
		ctx,
		query,
		mastery.UserID,
		mastery.LessonID,
		data,
		mastery.CreatedAt,
		mastery.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save lesson mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", mastery.UserID.String()),
			slog.String("lesson_id", mastery.LessonID))
		return err
	}

	log.Debug("lesson mastery saved",
		slog.String("user_id", mastery.UserID.String()),
		slog.String("lesson_id", mastery.LessonID),
		slog.String("current_level", string(mastery.CurrentLevel)))
	return nil
}

// ListByUser implements store.LessonMasteryStore.ListByUser
func (s *PostgresLessonMasteryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.LessonMastery, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT data
		FROM lesson_mastery
		WHERE user_id = $1
		ORDER BY lesson_id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list lesson mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var result []*domain.LessonMastery
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			log.Error("failed to scan lesson mastery row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}

		var mastery domain.LessonMastery
		if err := json.Unmarshal(data, &mastery); err != nil {
			return nil, fmt.Errorf("%w: malformed mastery data: %v", store.ErrInvalidEntity, err)
		}
		result = append(result, &mastery)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// WithTx implements store.LessonMasteryStore.WithTx
// It returns a new store instance bound to the given transaction.
func (s *PostgresLessonMasteryStore) WithTx(tx *sql.Tx) store.LessonMasteryStore {
	return &PostgresLessonMasteryStore{
		db:     tx,
		logger: s.logger,
	}
}
