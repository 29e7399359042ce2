package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/redact"
	"github.com/phrazzld/drill-api/internal/service/training"
)

// StressSessionResponse represents a stress training session
type StressSessionResponse struct {
	ID                string                `json:"id"`
	UserID            string                `json:"user_id"`
	Scenario          domain.StressScenario `json:"scenario"`
	StartedAt         time.Time             `json:"started_at"`
	CompletedAt       *time.Time            `json:"completed_at,omitempty"`
	TasksCompleted    int                   `json:"tasks_completed"`
	TotalTasks        int                   `json:"total_tasks"`
	ErrorsCount       int                   `json:"errors_count"`
	TimeToCompletion  int                   `json:"time_to_completion"`
	Succeeded         bool                  `json:"succeeded"`
	StressScore       float64               `json:"stress_score"`
	FatigueLevel      float64               `json:"fatigue_level"`
	FocusLevel        float64               `json:"focus_level"`
	PerformanceRating string                `json:"performance_rating,omitempty"`
	AdaptabilityScore float64               `json:"adaptability_score"`
}

// StressMetricsResponse represents a user's cumulative stress metrics
type StressMetricsResponse struct {
	UserID                   string         `json:"user_id"`
	TotalSessions            int            `json:"total_sessions"`
	SessionsByStressLevel    map[string]int `json:"sessions_by_stress_level"`
	AverageStressScore       float64        `json:"average_stress_score"`
	AverageAdaptabilityScore float64        `json:"average_adaptability_score"`
	StressToleranceLevel     string         `json:"stress_tolerance_level"`
	NormalAccuracy           float64        `json:"normal_accuracy"`
	StressedAccuracy         float64        `json:"stressed_accuracy"`
	DegradationRate          float64        `json:"degradation_rate"`
	LastUpdated              time.Time      `json:"last_updated"`
}

// DrillAttemptResponse represents a recorded baseline drill attempt
type DrillAttemptResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	DrillID         string    `json:"drill_id"`
	Accuracy        float64   `json:"accuracy"`
	DurationSeconds int       `json:"duration_seconds"`
	Passed          bool      `json:"passed"`
	AttemptedAt     time.Time `json:"attempted_at"`
}

// ScenarioLister returns the authored scenario catalog, optionally filtered
// by stress level.
type ScenarioLister interface {
	All() []domain.StressScenario
	ByStressLevel(level domain.StressLevel) []domain.StressScenario
}

// StressHandler handles stress training HTTP requests
type StressHandler struct {
	trainingService training.StressTrainingService
	scenarios       ScenarioLister
	logger          *slog.Logger
}

// NewStressHandler creates a new StressHandler
func NewStressHandler(
	trainingService training.StressTrainingService,
	scenarios ScenarioLister,
	logger *slog.Logger,
) *StressHandler {
	if trainingService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("trainingService cannot be nil for StressHandler")
	}
	if scenarios == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scenarios cannot be nil for StressHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StressHandler")
	}

	return &StressHandler{
		trainingService: trainingService,
		scenarios:       scenarios,
		logger:          logger.With(slog.String("component", "stress_handler")),
	}
}

// StartSession handles POST /stress/sessions requests
// It starts a stress session for the requested scenario, provided the user
// has no active session and their tolerance admits the scenario's level.
func (h *StressHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	session, err := h.trainingService.StartSession(r.Context(), userID, req.ScenarioID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to start session"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("successfully started session",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("scenario_id", req.ScenarioID))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetCurrentSession handles GET /stress/sessions/current requests
// It returns a snapshot of the active session, or 204 if none is running.
func (h *StressHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	session, err := h.trainingService.CurrentSession(r.Context(), userID)
	if errors.Is(err, training.ErrNoActiveSession) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get current session"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// UpdateSessionMetrics handles PUT /stress/sessions/current/metrics requests
// It replaces the task and error counters of the active session.
func (h *StressHandler) UpdateSessionMetrics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req UpdateSessionMetricsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	session, err := h.trainingService.UpdateSessionMetrics(r.Context(), userID, req.TasksCompleted, req.ErrorsCount)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to update session metrics"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// CompleteSession handles POST /stress/sessions/current/complete requests
// It finishes the active session and returns the graded record, or 204 if no
// session is running.
func (h *StressHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CompleteSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	session, err := h.trainingService.CompleteSession(r.Context(), userID, req.Success)
	if errors.Is(err, training.ErrNoActiveSession) {
		log.Debug("no active session to complete", slog.String("user_id", userID.String()))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to complete session"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("successfully completed session",
		slog.String("user_id", userID.String()),
		slog.String("session_id", session.ID.String()),
		slog.String("rating", string(session.PerformanceRating)))
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// GetMetrics handles GET /stress/metrics requests
// A user with no completed sessions gets the initial aggregate.
func (h *StressHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	metrics, err := h.trainingService.GetMetrics(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get stress metrics"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, metricsToResponse(metrics))
}

// CanAttemptLevel handles GET /stress/levels/{level}/access requests
func (h *StressHandler) CanAttemptLevel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	level := domain.StressLevel(chi.URLParam(r, "level"))
	if !level.IsValid() {
		log.Warn("invalid stress level in URL path", slog.String("level", string(level)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid stress level")
		return
	}

	canAttempt, err := h.trainingService.CanAttemptStressLevel(r.Context(), userID, level)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to check stress level access"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StressAccessResponse{CanAttempt: canAttempt})
}

// ListScenarios handles GET /stress/scenarios requests
// An optional level query parameter filters the catalog by stress level.
func (h *StressHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	levelParam := r.URL.Query().Get("level")
	if levelParam == "" {
		shared.RespondWithJSON(w, r, http.StatusOK, h.scenarios.All())
		return
	}

	level := domain.StressLevel(levelParam)
	if !level.IsValid() {
		log.Warn("invalid stress level in query", slog.String("level", levelParam))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid stress level")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, h.scenarios.ByStressLevel(level))
}

// RecordDrillAttempt handles POST /drills/attempts requests
// It stores a baseline drill attempt used for the normal-accuracy side of
// performance degradation.
func (h *StressHandler) RecordDrillAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req RecordDrillAttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	attempt, err := h.trainingService.RecordDrillAttempt(
		r.Context(),
		userID,
		req.DrillID,
		req.Accuracy,
		req.DurationSeconds,
		req.Passed,
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to record drill attempt"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("successfully recorded drill attempt",
		slog.String("user_id", userID.String()),
		slog.String("drill_id", req.DrillID))
	shared.RespondWithJSON(w, r, http.StatusCreated, drillAttemptToResponse(attempt))
}

// sessionToResponse converts a domain.StressTrainingSession to a StressSessionResponse
func sessionToResponse(s *domain.StressTrainingSession) StressSessionResponse {
	return StressSessionResponse{
		ID:                s.ID.String(),
		UserID:            s.UserID.String(),
		Scenario:          s.Scenario,
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
		TasksCompleted:    s.TasksCompleted,
		TotalTasks:        s.TotalTasks,
		ErrorsCount:       s.ErrorsCount,
		TimeToCompletion:  s.TimeToCompletion,
		Succeeded:         s.Succeeded,
		StressScore:       s.StressScore,
		FatigueLevel:      s.FatigueLevel,
		FocusLevel:        s.FocusLevel,
		PerformanceRating: string(s.PerformanceRating),
		AdaptabilityScore: s.AdaptabilityScore,
	}
}

// metricsToResponse converts a domain.StressMetrics to a StressMetricsResponse
func metricsToResponse(m *domain.StressMetrics) StressMetricsResponse {
	byLevel := make(map[string]int, len(m.SessionsByStressLevel))
	for level, count := range m.SessionsByStressLevel {
		byLevel[string(level)] = count
	}

	return StressMetricsResponse{
		UserID:                   m.UserID.String(),
		TotalSessions:            m.TotalSessions,
		SessionsByStressLevel:    byLevel,
		AverageStressScore:       m.AverageStressScore,
		AverageAdaptabilityScore: m.AverageAdaptabilityScore,
		StressToleranceLevel:     string(m.StressToleranceLevel),
		NormalAccuracy:           m.PerformanceDegradation.NormalAccuracy,
		StressedAccuracy:         m.PerformanceDegradation.StressedAccuracy,
		DegradationRate:          m.PerformanceDegradation.DegradationRate,
		LastUpdated:              m.LastUpdated,
	}
}

// drillAttemptToResponse converts a domain.DrillAttempt to a DrillAttemptResponse
func drillAttemptToResponse(a *domain.DrillAttempt) DrillAttemptResponse {
	return DrillAttemptResponse{
		ID:              a.ID.String(),
		UserID:          a.UserID.String(),
		DrillID:         a.DrillID,
		Accuracy:        a.Accuracy,
		DurationSeconds: a.DurationSeconds,
		Passed:          a.Passed,
		AttemptedAt:     a.AttemptedAt,
	}
}
