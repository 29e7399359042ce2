package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/gating"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/redact"
	"github.com/phrazzld/drill-api/internal/service/mastery"
)

// AttemptResultResponse represents the transitions caused by a recorded attempt
type AttemptResultResponse struct {
	LevelMastered     bool `json:"level_mastered"`
	NextLevelUnlocked bool `json:"next_level_unlocked"`
	FullyMastered     bool `json:"fully_mastered"`
}

// MasteryProgressResponse represents progress at a single mastery level
type MasteryProgressResponse struct {
	Attempts                   int        `json:"attempts"`
	PerfectCompletions         int        `json:"perfect_completions"`
	RequiredPerfectCompletions int        `json:"required_perfect_completions"`
	Unlocked                   bool       `json:"unlocked"`
	Mastered                   bool       `json:"mastered"`
	AverageTime                float64    `json:"average_time"`
	LastAttemptAt              *time.Time `json:"last_attempt_at,omitempty"`
}

// LessonMasteryResponse represents the full mastery state of a lesson
type LessonMasteryResponse struct {
	UserID         string                  `json:"user_id"`
	LessonID       string                  `json:"lesson_id"`
	Crawl          MasteryProgressResponse `json:"crawl"`
	Walk           MasteryProgressResponse `json:"walk"`
	RunGuided      MasteryProgressResponse `json:"run_guided"`
	RunIndependent MasteryProgressResponse `json:"run_independent"`
	CurrentLevel   string                  `json:"current_level"`
	FullyMastered  bool                    `json:"fully_mastered"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// MasteryHandler handles lesson mastery HTTP requests
type MasteryHandler struct {
	masteryService mastery.MasteryService
	logger         *slog.Logger
}

// NewMasteryHandler creates a new MasteryHandler
func NewMasteryHandler(
	masteryService mastery.MasteryService,
	logger *slog.Logger,
) *MasteryHandler {
	if masteryService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("masteryService cannot be nil for MasteryHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MasteryHandler")
	}

	return &MasteryHandler{
		masteryService: masteryService,
		logger:         logger.With(slog.String("component", "mastery_handler")),
	}
}

// RecordAttempt handles POST /lessons/{lessonID}/attempts requests
// It records one practice attempt at a lesson level and returns the
// transitions it caused. Attempts against a locked level are ignored and
// answered with 204 No Content.
func (h *MasteryHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	lessonID := chi.URLParam(r, "lessonID")
	if lessonID == "" {
		log.Warn("lesson ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Lesson ID is required")
		return
	}

	var req RecordAttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.masteryService.RecordAttempt(
		r.Context(),
		userID,
		lessonID,
		domain.MasteryLevel(req.Level),
		req.Perfect,
		req.TimeSpentSeconds,
	)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to record attempt"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	// Locked level: the attempt was ignored.
	if result == nil {
		log.Debug("attempt against locked level ignored",
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID),
			slog.String("level", req.Level))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	log.Debug("successfully recorded attempt",
		slog.String("user_id", userID.String()),
		slog.String("lesson_id", lessonID),
		slog.String("level", req.Level),
		slog.Bool("level_mastered", result.LevelMastered))
	shared.RespondWithJSON(w, r, http.StatusOK, attemptResultToResponse(result))
}

// GetMastery handles GET /lessons/{lessonID}/mastery requests
// A lesson never attempted returns the fresh initial state.
func (h *MasteryHandler) GetMastery(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	lessonID := chi.URLParam(r, "lessonID")
	if lessonID == "" {
		log.Warn("lesson ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Lesson ID is required")
		return
	}

	m, err := h.masteryService.GetMastery(r.Context(), userID, lessonID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get lesson mastery"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, masteryToResponse(m))
}

// GetLevelProgress handles GET /lessons/{lessonID}/levels/{level} requests
func (h *MasteryHandler) GetLevelProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	lessonID := chi.URLParam(r, "lessonID")
	level, ok := parseMasteryLevel(w, r, log)
	if !ok {
		return
	}

	progress, err := h.masteryService.GetLevelProgress(r.Context(), userID, lessonID, level)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to get level progress"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(progress))
}

// CanAccessLevel handles GET /lessons/{lessonID}/levels/{level}/access requests
func (h *MasteryHandler) CanAccessLevel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	lessonID := chi.URLParam(r, "lessonID")
	level, ok := parseMasteryLevel(w, r, log)
	if !ok {
		return
	}

	canAccess, err := h.masteryService.CanAccessLevel(r.Context(), userID, lessonID, level)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to check level access"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AccessResponse{CanAccess: canAccess})
}

// ListMastery handles GET /lessons/mastery requests
// It returns every mastery record the user has accumulated.
func (h *MasteryHandler) ListMastery(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	records, err := h.masteryService.ListMastery(r.Context(), userID)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to list lesson mastery"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	responses := make([]LessonMasteryResponse, 0, len(records))
	for _, m := range records {
		responses = append(responses, masteryToResponse(m))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// parseMasteryLevel extracts and validates the {level} URL parameter. On
// failure it writes the error response and returns ok=false.
func parseMasteryLevel(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (domain.MasteryLevel, bool) {
	level := domain.MasteryLevel(chi.URLParam(r, "level"))
	if !level.IsValid() {
		log.Warn("invalid mastery level in URL path", slog.String("level", string(level)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid mastery level")
		return "", false
	}
	return level, true
}

// attemptResultToResponse converts a gating.AttemptResult to an AttemptResultResponse
func attemptResultToResponse(result *gating.AttemptResult) AttemptResultResponse {
	return AttemptResultResponse{
		LevelMastered:     result.LevelMastered,
		NextLevelUnlocked: result.NextLevelUnlocked,
		FullyMastered:     result.FullyMastered,
	}
}

// progressToResponse converts a domain.MasteryProgress to a MasteryProgressResponse
func progressToResponse(p *domain.MasteryProgress) MasteryProgressResponse {
	return MasteryProgressResponse{
		Attempts:                   p.Attempts,
		PerfectCompletions:         p.PerfectCompletions,
		RequiredPerfectCompletions: p.RequiredPerfectCompletions,
		Unlocked:                   p.Unlocked,
		Mastered:                   p.Mastered(),
		AverageTime:                p.AverageTime,
		LastAttemptAt:              p.LastAttemptAt,
	}
}

// masteryToResponse converts a domain.LessonMastery to a LessonMasteryResponse
func masteryToResponse(m *domain.LessonMastery) LessonMasteryResponse {
	return LessonMasteryResponse{
		UserID:         m.UserID.String(),
		LessonID:       m.LessonID,
		Crawl:          progressToResponse(&m.Crawl),
		Walk:           progressToResponse(&m.Walk),
		RunGuided:      progressToResponse(&m.RunGuided),
		RunIndependent: progressToResponse(&m.RunIndependent),
		CurrentLevel:   string(m.CurrentLevel),
		FullyMastered:  m.FullyMastered,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
