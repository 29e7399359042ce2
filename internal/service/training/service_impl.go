package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/stress"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/store"
)

// ScenarioLookup resolves a scenario ID to its authored definition.
type ScenarioLookup func(id string) (domain.StressScenario, bool)

// Config carries the engine's tunable parameters.
type Config struct {
	// PromotionSessionThreshold is how many historical sessions at a tier a
	// user needs before that tier can become their tolerance.
	PromotionSessionThreshold int

	// BaselineWindow is how many recent drill attempts feed the
	// normal-accuracy baseline.
	BaselineWindow int
}

// DefaultConfig returns the standard engine parameters.
func DefaultConfig() Config {
	return Config{
		PromotionSessionThreshold: 3,
		BaselineWindow:            10,
	}
}

// Verify interface compliance at compile time
var _ StressTrainingService = (*stressTrainingServiceImpl)(nil)

// stressTrainingServiceImpl implements the StressTrainingService interface.
// Active sessions live in the registry keyed by user ID; one active session
// per user.
type stressTrainingServiceImpl struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.StressTrainingSession

	scoring      stress.Service
	sessionStore store.StressSessionStore
	metricsStore store.StressMetricsStore
	attemptStore store.DrillAttemptStore
	scenarios    ScenarioLookup
	emitter      events.EventEmitter
	cfg          Config
	logger       *slog.Logger
	now          func() time.Time
}

// NewStressTrainingService creates a new StressTrainingService implementation.
// The emitter may be nil, in which case no events are published.
func NewStressTrainingService(
	scoring stress.Service,
	sessionStore store.StressSessionStore,
	metricsStore store.StressMetricsStore,
	attemptStore store.DrillAttemptStore,
	scenarios ScenarioLookup,
	emitter events.EventEmitter,
	cfg Config,
	logger *slog.Logger,
) StressTrainingService {
	if scoring == nil {
		panic("scoring cannot be nil")
	}
	if sessionStore == nil {
		panic("sessionStore cannot be nil")
	}
	if metricsStore == nil {
		panic("metricsStore cannot be nil")
	}
	if attemptStore == nil {
		panic("attemptStore cannot be nil")
	}
	if scenarios == nil {
		panic("scenarios cannot be nil")
	}
	if cfg.PromotionSessionThreshold <= 0 {
		cfg.PromotionSessionThreshold = DefaultConfig().PromotionSessionThreshold
	}
	if cfg.BaselineWindow <= 0 {
		cfg.BaselineWindow = DefaultConfig().BaselineWindow
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &stressTrainingServiceImpl{
		sessions:     make(map[uuid.UUID]*domain.StressTrainingSession),
		scoring:      scoring,
		sessionStore: sessionStore,
		metricsStore: metricsStore,
		attemptStore: attemptStore,
		scenarios:    scenarios,
		emitter:      emitter,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "stress_training_service")),
		now:          time.Now,
	}
}

// StartSession implements StressTrainingService.StartSession.
func (s *stressTrainingServiceImpl) StartSession(
	ctx context.Context,
	userID uuid.UUID,
	scenarioID string,
) (*domain.StressTrainingSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	scenario, ok := s.scenarios(scenarioID)
	if !ok {
		return nil, ErrScenarioNotFound
	}

	allowed, err := s.CanAttemptStressLevel(ctx, userID, scenario.StressLevel)
	if err != nil {
		return nil, NewServiceError("start_session", "failed to check stress tolerance", err)
	}
	if !allowed {
		log.Warn("scenario locked by stress tolerance",
			slog.String("user_id", userID.String()),
			slog.String("scenario_id", scenarioID),
			slog.String("stress_level", string(scenario.StressLevel)))
		return nil, ErrStressLevelLocked
	}

	session, err := domain.NewStressTrainingSession(userID, scenario, s.now())
	if err != nil {
		return nil, NewServiceError("start_session", "invalid session", err)
	}

	s.mu.Lock()
	if existing, active := s.sessions[userID]; active {
		s.mu.Unlock()
		log.Warn("session already active",
			slog.String("user_id", userID.String()),
			slog.String("session_id", existing.ID.String()))
		return nil, ErrSessionActive
	}
	s.sessions[userID] = session
	snapshot := session.Clone()
	s.mu.Unlock()

	log.Info("stress session started",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("scenario_id", scenarioID),
		slog.String("stress_level", string(scenario.StressLevel)))

	return snapshot, nil
}

// CurrentSession implements StressTrainingService.CurrentSession.
func (s *stressTrainingServiceImpl) CurrentSession(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.StressTrainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return session.Clone(), nil
}

// UpdateSessionMetrics implements StressTrainingService.UpdateSessionMetrics.
func (s *stressTrainingServiceImpl) UpdateSessionMetrics(
	ctx context.Context,
	userID uuid.UUID,
	tasksCompleted, errorsCount int,
) (*domain.StressTrainingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}

	if tasksCompleted < 0 {
		tasksCompleted = 0
	}
	if errorsCount < 0 {
		errorsCount = 0
	}

	session.TasksCompleted = tasksCompleted
	session.ErrorsCount = errorsCount

	return session.Clone(), nil
}

// CompleteSession implements StressTrainingService.CompleteSession.
// The session stays active if persisting it fails, so completion can be
// retried. Metrics-fold failures after a persisted session are logged but do
// not fail the call.
func (s *stressTrainingServiceImpl) CompleteSession(
	ctx context.Context,
	userID uuid.UUID,
	success bool,
) (*domain.StressTrainingSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}

	completedAt := now
	elapsed := int(completedAt.Sub(session.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	// Final telemetry refresh as of the completion instant.
	s.refreshTelemetry(session, elapsed)

	session.CompletedAt = &completedAt
	session.TimeToCompletion = elapsed
	session.Succeeded = success
	session.PerformanceRating = s.scoring.RatePerformance(
		session.TasksCompleted,
		session.TotalTasks,
		session.TimeToCompletion,
		session.Scenario.Duration,
		session.ErrorsCount,
	)
	session.AdaptabilityScore = s.scoring.AdaptabilityScore(
		session.PerformanceRating,
		session.Scenario.StressLevel,
		session.ErrorsCount,
		session.FocusLevel,
	)
	completed := session.Clone()
	s.mu.Unlock()

	if err := s.sessionStore.Create(ctx, completed); err != nil {
		// Roll the in-memory session back to active so completion can be
		// retried.
		s.mu.Lock()
		session.CompletedAt = nil
		s.mu.Unlock()
		log.Error("failed to persist completed session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", session.ID.String()))
		return nil, NewServiceError("complete_session", "failed to persist session", err)
	}

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()

	log.Info("stress session completed",
		slog.String("user_id", userID.String()),
		slog.String("session_id", completed.ID.String()),
		slog.Bool("succeeded", success),
		slog.String("performance_rating", string(completed.PerformanceRating)),
		slog.Float64("adaptability_score", completed.AdaptabilityScore))

	if err := s.foldIntoMetrics(ctx, completed, now); err != nil {
		log.Error("failed to update stress metrics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", completed.ID.String()))
	}

	s.emitSessionCompleted(ctx, completed)

	return completed, nil
}

// Advance implements StressTrainingService.Advance.
func (s *stressTrainingServiceImpl) Advance(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range s.sessions {
		// A session being completed stays in the registry until it is
		// persisted; its telemetry is already frozen and must not move.
		if !session.Active() {
			continue
		}
		elapsed := int(now.Sub(session.StartedAt).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}
		s.refreshTelemetry(session, elapsed)
	}
}

// GetMetrics implements StressTrainingService.GetMetrics.
func (s *stressTrainingServiceImpl) GetMetrics(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.StressMetrics, error) {
	metrics, err := s.metricsStore.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrStressMetricsNotFound) {
			return domain.NewStressMetrics(userID)
		}
		return nil, NewServiceError("get_metrics", "failed to load stress metrics", err)
	}
	return metrics, nil
}

// CanAttemptStressLevel implements StressTrainingService.CanAttemptStressLevel.
func (s *stressTrainingServiceImpl) CanAttemptStressLevel(
	ctx context.Context,
	userID uuid.UUID,
	level domain.StressLevel,
) (bool, error) {
	if !level.IsValid() {
		return false, domain.ErrInvalidStressLevel
	}

	metrics, err := s.GetMetrics(ctx, userID)
	if err != nil {
		return false, err
	}

	return canAttemptLevel(metrics.StressToleranceLevel, level), nil
}

// RecordDrillAttempt implements StressTrainingService.RecordDrillAttempt.
func (s *stressTrainingServiceImpl) RecordDrillAttempt(
	ctx context.Context,
	userID uuid.UUID,
	drillID string,
	accuracy float64,
	durationSeconds int,
	passed bool,
) (*domain.DrillAttempt, error) {
	attempt, err := domain.NewDrillAttempt(userID, drillID, accuracy, durationSeconds, passed)
	if err != nil {
		return nil, NewServiceError("record_drill_attempt", "invalid drill attempt", err)
	}

	if err := s.attemptStore.Create(ctx, attempt); err != nil {
		return nil, NewServiceError("record_drill_attempt", "failed to save drill attempt", err)
	}

	return attempt, nil
}

// refreshTelemetry recomputes the simulated physiological state of a session
// for the given elapsed time. Caller must hold s.mu.
func (s *stressTrainingServiceImpl) refreshTelemetry(session *domain.StressTrainingSession, elapsedSeconds int) {
	tasksRemaining := session.TotalTasks - session.TasksCompleted
	session.StressScore = s.scoring.StressScore(
		session.Scenario.Conditions,
		elapsedSeconds,
		session.ErrorsCount,
		tasksRemaining,
	)
	session.FatigueLevel = s.scoring.FatigueLevel(elapsedSeconds, session.StressScore)
	session.FocusLevel = s.scoring.FocusLevel(session.FatigueLevel, session.StressScore)
}

// foldIntoMetrics folds a persisted completed session into the user's stress
// metrics, fetching the drill-attempt baseline first.
func (s *stressTrainingServiceImpl) foldIntoMetrics(
	ctx context.Context,
	session *domain.StressTrainingSession,
	now time.Time,
) error {
	metrics, err := s.GetMetrics(ctx, session.UserID)
	if err != nil {
		return err
	}

	attempts, err := s.attemptStore.ListRecent(ctx, session.UserID, s.cfg.BaselineWindow)
	if err != nil {
		return fmt.Errorf("failed to load drill attempt baseline: %w", err)
	}

	updated := foldSession(metrics, session, baselineAccuracy(attempts), s.cfg.PromotionSessionThreshold, now)

	if err := s.metricsStore.Save(ctx, updated); err != nil {
		return fmt.Errorf("failed to save stress metrics: %w", err)
	}

	return nil
}

// emitSessionCompleted publishes a session-completed event. Emission failures
// are logged and swallowed.
func (s *stressTrainingServiceImpl) emitSessionCompleted(
	ctx context.Context,
	session *domain.StressTrainingSession,
) {
	if s.emitter == nil {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	payload := events.SessionCompletedPayload{
		SessionID:         session.ID,
		UserID:            session.UserID,
		ScenarioID:        session.Scenario.ID,
		StressLevel:       session.Scenario.StressLevel,
		Succeeded:         session.Succeeded,
		PerformanceRating: session.PerformanceRating,
		AdaptabilityScore: session.AdaptabilityScore,
	}

	event, err := events.NewTrainingEvent(events.EventTypeSessionCompleted, payload)
	if err != nil {
		log.Error("failed to build session event", slog.String("error", err.Error()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit session event", slog.String("error", err.Error()))
	}
}
