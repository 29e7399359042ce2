package mastery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/gating"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// Verify interface compliance at compile time
var _ MasteryService = (*masteryServiceImpl)(nil)

// masteryServiceImpl implements the MasteryService interface.
type masteryServiceImpl struct {
	masteryStore  store.LessonMasteryStore
	gatingService gating.Service
	requirements  domain.MasteryRequirements
	emitter       events.EventEmitter
	logger        *slog.Logger
	now           func() time.Time
}

// NewMasteryService creates a new MasteryService implementation.
// The emitter may be nil, in which case no events are published.
func NewMasteryService(
	masteryStore store.LessonMasteryStore,
	gatingService gating.Service,
	requirements domain.MasteryRequirements,
	emitter events.EventEmitter,
	logger *slog.Logger,
) MasteryService {
	if masteryStore == nil {
		panic("masteryStore cannot be nil")
	}
	if gatingService == nil {
		panic("gatingService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &masteryServiceImpl{
		masteryStore:  masteryStore,
		gatingService: gatingService,
		requirements:  requirements,
		emitter:       emitter,
		logger:        logger.With(slog.String("component", "mastery_service")),
		now:           time.Now,
	}
}

// RecordAttempt implements MasteryService.RecordAttempt.
func (s *masteryServiceImpl) RecordAttempt(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
	level domain.MasteryLevel,
	perfect bool,
	timeSpentSeconds float64,
) (*gating.AttemptResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("recording practice attempt",
		slog.String("user_id", userID.String()),
		slog.String("lesson_id", lessonID),
		slog.String("level", string(level)),
		slog.Bool("perfect", perfect))

	if !level.IsValid() {
		return nil, NewRecordAttemptError("invalid mastery level", domain.ErrInvalidMasteryLevel)
	}

	mastery, err := s.loadOrCreate(ctx, userID, lessonID)
	if err != nil {
		return nil, NewRecordAttemptError("failed to load mastery", err)
	}

	wasMastered := mastery.Progress(level) != nil && mastery.Progress(level).Mastered()

	updated, result, err := s.gatingService.ApplyAttempt(mastery, level, perfect, timeSpentSeconds, s.now())
	if err != nil {
		return nil, NewRecordAttemptError("failed to apply attempt", err)
	}

	if updated == nil {
		// Level is locked: the attempt does not count.
		log.Warn("attempt against locked level ignored",
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID),
			slog.String("level", string(level)))
		return nil, nil
	}

	if err := s.masteryStore.Save(ctx, updated); err != nil {
		log.Error("failed to save mastery",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID))
		return nil, NewRecordAttemptError("failed to save mastery", err)
	}

	// Events fire only on the first crossing; LevelMastered itself keeps
	// reporting true on attempts beyond the threshold.
	if result.LevelMastered && !wasMastered {
		log.Info("level mastered",
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID),
			slog.String("level", string(level)),
			slog.Bool("next_level_unlocked", result.NextLevelUnlocked),
			slog.Bool("fully_mastered", result.FullyMastered))
		s.emitMasteryEvents(ctx, userID, lessonID, level, result)
	}

	return result, nil
}

// GetMastery implements MasteryService.GetMastery.
func (s *masteryServiceImpl) GetMastery(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
) (*domain.LessonMastery, error) {
	mastery, err := s.loadOrCreate(ctx, userID, lessonID)
	if err != nil {
		return nil, NewGetMasteryError("failed to load mastery", err)
	}
	return mastery, nil
}

// ListMastery implements MasteryService.ListMastery.
func (s *masteryServiceImpl) ListMastery(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.LessonMastery, error) {
	records, err := s.masteryStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewGetMasteryError("failed to list mastery", err)
	}
	return records, nil
}

// GetLevelProgress implements MasteryService.GetLevelProgress.
func (s *masteryServiceImpl) GetLevelProgress(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
	level domain.MasteryLevel,
) (*domain.MasteryProgress, error) {
	if !level.IsValid() {
		return nil, NewGetMasteryError("invalid mastery level", domain.ErrInvalidMasteryLevel)
	}

	mastery, err := s.loadOrCreate(ctx, userID, lessonID)
	if err != nil {
		return nil, NewGetMasteryError("failed to load mastery", err)
	}

	return mastery.Progress(level), nil
}

// CanAccessLevel implements MasteryService.CanAccessLevel.
func (s *masteryServiceImpl) CanAccessLevel(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
	level domain.MasteryLevel,
) (bool, error) {
	progress, err := s.GetLevelProgress(ctx, userID, lessonID, level)
	if err != nil {
		return false, err
	}
	return progress.Unlocked, nil
}

// IsLevelMastered implements MasteryService.IsLevelMastered.
func (s *masteryServiceImpl) IsLevelMastered(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
	level domain.MasteryLevel,
) (bool, error) {
	progress, err := s.GetLevelProgress(ctx, userID, lessonID, level)
	if err != nil {
		return false, err
	}
	return progress.Mastered(), nil
}

// loadOrCreate fetches the user's mastery for a lesson, creating a fresh
// in-memory aggregate on first contact. The fresh aggregate is not persisted
// until an attempt is recorded against it.
func (s *masteryServiceImpl) loadOrCreate(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
) (*domain.LessonMastery, error) {
	if userID == uuid.Nil {
		return nil, domain.ErrEmptyUserID
	}
	if lessonID == "" {
		return nil, domain.ErrEmptyLessonID
	}

	mastery, err := s.masteryStore.Get(ctx, userID, lessonID)
	if err != nil {
		if errors.Is(err, store.ErrLessonMasteryNotFound) {
			return domain.NewLessonMastery(userID, lessonID, s.requirements)
		}
		return nil, fmt.Errorf("failed to get lesson mastery: %w", err)
	}

	return mastery, nil
}

// emitMasteryEvents publishes level-mastered (and lesson-mastered) events.
// Emission failures are logged and swallowed; progression must not depend on
// event consumers.
func (s *masteryServiceImpl) emitMasteryEvents(
	ctx context.Context,
	userID uuid.UUID,
	lessonID string,
	level domain.MasteryLevel,
	result *gating.AttemptResult,
) {
	if s.emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := events.LevelMasteredPayload{
		UserID:            userID,
		LessonID:          lessonID,
		Level:             level,
		NextLevelUnlocked: result.NextLevelUnlocked,
	}

	eventType := events.EventTypeLevelMastered
	if result.FullyMastered {
		eventType = events.EventTypeLessonMastered
	}

	event, err := events.NewTrainingEvent(eventType, payload)
	if err != nil {
		log.Error("failed to build mastery event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit mastery event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
	}
}
