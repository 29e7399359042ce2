package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/service/training"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTrainingService implements training.StressTrainingService with
// function fields.
type mockTrainingService struct {
	startSessionFn          func(ctx context.Context, userID uuid.UUID, scenarioID string) (*domain.StressTrainingSession, error)
	currentSessionFn        func(ctx context.Context, userID uuid.UUID) (*domain.StressTrainingSession, error)
	updateSessionMetricsFn  func(ctx context.Context, userID uuid.UUID, tasksCompleted, errorsCount int) (*domain.StressTrainingSession, error)
	completeSessionFn       func(ctx context.Context, userID uuid.UUID, success bool) (*domain.StressTrainingSession, error)
	getMetricsFn            func(ctx context.Context, userID uuid.UUID) (*domain.StressMetrics, error)
	canAttemptStressLevelFn func(ctx context.Context, userID uuid.UUID, level domain.StressLevel) (bool, error)
	recordDrillAttemptFn    func(ctx context.Context, userID uuid.UUID, drillID string, accuracy float64, durationSeconds int, passed bool) (*domain.DrillAttempt, error)
}

func (m *mockTrainingService) StartSession(ctx context.Context, userID uuid.UUID, scenarioID string) (*domain.StressTrainingSession, error) {
	return m.startSessionFn(ctx, userID, scenarioID)
}

func (m *mockTrainingService) CurrentSession(ctx context.Context, userID uuid.UUID) (*domain.StressTrainingSession, error) {
	return m.currentSessionFn(ctx, userID)
}

func (m *mockTrainingService) UpdateSessionMetrics(ctx context.Context, userID uuid.UUID, tasksCompleted, errorsCount int) (*domain.StressTrainingSession, error) {
	return m.updateSessionMetricsFn(ctx, userID, tasksCompleted, errorsCount)
}

func (m *mockTrainingService) CompleteSession(ctx context.Context, userID uuid.UUID, success bool) (*domain.StressTrainingSession, error) {
	return m.completeSessionFn(ctx, userID, success)
}

func (m *mockTrainingService) Advance(ctx context.Context, now time.Time) {}

func (m *mockTrainingService) GetMetrics(ctx context.Context, userID uuid.UUID) (*domain.StressMetrics, error) {
	return m.getMetricsFn(ctx, userID)
}

func (m *mockTrainingService) CanAttemptStressLevel(ctx context.Context, userID uuid.UUID, level domain.StressLevel) (bool, error) {
	return m.canAttemptStressLevelFn(ctx, userID, level)
}

func (m *mockTrainingService) RecordDrillAttempt(ctx context.Context, userID uuid.UUID, drillID string, accuracy float64, durationSeconds int, passed bool) (*domain.DrillAttempt, error) {
	return m.recordDrillAttemptFn(ctx, userID, drillID, accuracy, durationSeconds, passed)
}

// fakeScenarioLister serves a fixed scenario set.
type fakeScenarioLister struct {
	scenarios []domain.StressScenario
}

func (f *fakeScenarioLister) All() []domain.StressScenario {
	return f.scenarios
}

func (f *fakeScenarioLister) ByStressLevel(level domain.StressLevel) []domain.StressScenario {
	var out []domain.StressScenario
	for _, s := range f.scenarios {
		if s.StressLevel == level {
			out = append(out, s)
		}
	}
	return out
}

func handlerTestScenario(id string, level domain.StressLevel) domain.StressScenario {
	return domain.StressScenario{
		ID:              id,
		Title:           "Scenario " + id,
		StressLevel:     level,
		Duration:        600,
		SuccessCriteria: []string{"finish the refactor", "tests stay green"},
	}
}

func newStressRouter(t *testing.T, service training.StressTrainingService, lister ScenarioLister, userID uuid.UUID) http.Handler {
	t.Helper()

	if lister == nil {
		lister = &fakeScenarioLister{scenarios: []domain.StressScenario{
			handlerTestScenario("low-1", domain.StressLevelLow),
			handlerTestScenario("high-1", domain.StressLevelHigh),
		}}
	}
	handler := NewStressHandler(service, lister, slog.Default())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if userID != uuid.Nil {
				req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/stress/sessions", handler.StartSession)
	r.Get("/stress/sessions/current", handler.GetCurrentSession)
	r.Put("/stress/sessions/current/metrics", handler.UpdateSessionMetrics)
	r.Post("/stress/sessions/current/complete", handler.CompleteSession)
	r.Get("/stress/metrics", handler.GetMetrics)
	r.Get("/stress/levels/{level}/access", handler.CanAttemptLevel)
	r.Get("/stress/scenarios", handler.ListScenarios)
	r.Post("/drills/attempts", handler.RecordDrillAttempt)
	return r
}

func TestStartSessionHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	session, err := domain.NewStressTrainingSession(userID, handlerTestScenario("low-1", domain.StressLevelLow), time.Now().UTC())
	require.NoError(t, err)

	service := &mockTrainingService{
		startSessionFn: func(ctx context.Context, gotUserID uuid.UUID, scenarioID string) (*domain.StressTrainingSession, error) {
			assert.Equal(t, userID, gotUserID)
			assert.Equal(t, "low-1", scenarioID)
			return session, nil
		},
	}
	router := newStressRouter(t, service, nil, userID)

	req := httptest.NewRequest(http.MethodPost, "/stress/sessions", strings.NewReader(`{"scenario_id":"low-1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp StressSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, session.ID.String(), resp.ID)
	assert.Equal(t, "low-1", resp.Scenario.ID)
	assert.Equal(t, 2, resp.TotalTasks)
	assert.InDelta(t, 100, resp.FocusLevel, 0.0001)
	assert.Nil(t, resp.CompletedAt)
}

func TestStartSessionHandlerErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "already active",
			serviceErr: training.ErrSessionActive,
			wantStatus: http.StatusConflict,
			wantBody:   "A session is already active",
		},
		{
			name:       "unknown scenario",
			serviceErr: training.ErrScenarioNotFound,
			wantStatus: http.StatusNotFound,
			wantBody:   "Scenario not found",
		},
		{
			name:       "tolerance too low",
			serviceErr: training.ErrStressLevelLocked,
			wantStatus: http.StatusForbidden,
			wantBody:   "Stress level exceeds your current tolerance",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service := &mockTrainingService{
				startSessionFn: func(ctx context.Context, userID uuid.UUID, scenarioID string) (*domain.StressTrainingSession, error) {
					return nil, tc.serviceErr
				},
			}
			router := newStressRouter(t, service, nil, uuid.New())

			req := httptest.NewRequest(http.MethodPost, "/stress/sessions", strings.NewReader(`{"scenario_id":"low-1"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestStartSessionHandlerValidation(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/stress/sessions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCurrentSessionHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	session, err := domain.NewStressTrainingSession(userID, handlerTestScenario("low-1", domain.StressLevelLow), time.Now().UTC())
	require.NoError(t, err)
	session.TasksCompleted = 1

	service := &mockTrainingService{
		currentSessionFn: func(ctx context.Context, gotUserID uuid.UUID) (*domain.StressTrainingSession, error) {
			return session, nil
		},
	}
	router := newStressRouter(t, service, nil, userID)

	req := httptest.NewRequest(http.MethodGet, "/stress/sessions/current", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StressSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TasksCompleted)
}

func TestGetCurrentSessionHandlerNoneActive(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{
		currentSessionFn: func(ctx context.Context, userID uuid.UUID) (*domain.StressTrainingSession, error) {
			return nil, training.ErrNoActiveSession
		},
	}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/stress/sessions/current", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestUpdateSessionMetricsHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	session, err := domain.NewStressTrainingSession(userID, handlerTestScenario("low-1", domain.StressLevelLow), time.Now().UTC())
	require.NoError(t, err)
	session.TasksCompleted = 2
	session.ErrorsCount = 1

	service := &mockTrainingService{
		updateSessionMetricsFn: func(ctx context.Context, gotUserID uuid.UUID, tasksCompleted, errorsCount int) (*domain.StressTrainingSession, error) {
			assert.Equal(t, 2, tasksCompleted)
			assert.Equal(t, 1, errorsCount)
			return session, nil
		},
	}
	router := newStressRouter(t, service, nil, userID)

	body := `{"tasks_completed":2,"errors_count":1}`
	req := httptest.NewRequest(http.MethodPut, "/stress/sessions/current/metrics", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StressSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TasksCompleted)
	assert.Equal(t, 1, resp.ErrorsCount)
}

func TestCompleteSessionHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	completedAt := time.Now().UTC()
	session, err := domain.NewStressTrainingSession(userID, handlerTestScenario("low-1", domain.StressLevelLow), completedAt.Add(-10*time.Minute))
	require.NoError(t, err)
	session.CompletedAt = &completedAt
	session.Succeeded = true
	session.PerformanceRating = domain.PerformanceGood
	session.AdaptabilityScore = 72.5

	service := &mockTrainingService{
		completeSessionFn: func(ctx context.Context, gotUserID uuid.UUID, success bool) (*domain.StressTrainingSession, error) {
			assert.True(t, success)
			return session, nil
		},
	}
	router := newStressRouter(t, service, nil, userID)

	req := httptest.NewRequest(http.MethodPost, "/stress/sessions/current/complete", strings.NewReader(`{"success":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StressSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.CompletedAt)
	assert.True(t, resp.Succeeded)
	assert.Equal(t, "good", resp.PerformanceRating)
	assert.InDelta(t, 72.5, resp.AdaptabilityScore, 0.0001)
}

func TestCompleteSessionHandlerNoneActive(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{
		completeSessionFn: func(ctx context.Context, userID uuid.UUID, success bool) (*domain.StressTrainingSession, error) {
			return nil, training.ErrNoActiveSession
		},
	}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/stress/sessions/current/complete", strings.NewReader(`{"success":true}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetMetricsHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	metrics, err := domain.NewStressMetrics(userID)
	require.NoError(t, err)
	metrics.TotalSessions = 4
	metrics.SessionsByStressLevel[domain.StressLevelLow] = 4
	metrics.AverageStressScore = 35
	metrics.AverageAdaptabilityScore = 60
	metrics.StressToleranceLevel = domain.StressLevelMedium
	metrics.PerformanceDegradation = domain.PerformanceDegradation{
		NormalAccuracy:   90,
		StressedAccuracy: 72,
		DegradationRate:  20,
	}

	service := &mockTrainingService{
		getMetricsFn: func(ctx context.Context, gotUserID uuid.UUID) (*domain.StressMetrics, error) {
			return metrics, nil
		},
	}
	router := newStressRouter(t, service, nil, userID)

	req := httptest.NewRequest(http.MethodGet, "/stress/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StressMetricsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, userID.String(), resp.UserID)
	assert.Equal(t, 4, resp.TotalSessions)
	assert.Equal(t, 4, resp.SessionsByStressLevel["low"])
	assert.Equal(t, "medium", resp.StressToleranceLevel)
	assert.InDelta(t, 90, resp.NormalAccuracy, 0.0001)
	assert.InDelta(t, 72, resp.StressedAccuracy, 0.0001)
	assert.InDelta(t, 20, resp.DegradationRate, 0.0001)
}

func TestCanAttemptLevelHandler(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{
		canAttemptStressLevelFn: func(ctx context.Context, userID uuid.UUID, level domain.StressLevel) (bool, error) {
			return level == domain.StressLevelLow, nil
		},
	}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/stress/levels/low/access", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StressAccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.CanAttempt)

	req = httptest.NewRequest(http.MethodGet, "/stress/levels/extreme/access", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.CanAttempt)
}

func TestCanAttemptLevelHandlerInvalidLevel(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/stress/levels/brutal/access", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListScenariosHandler(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/stress/scenarios", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var all []domain.StressScenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	req = httptest.NewRequest(http.MethodGet, "/stress/scenarios?level=high", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var filtered []domain.StressScenario
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "high-1", filtered[0].ID)
}

func TestListScenariosHandlerInvalidLevel(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{}
	router := newStressRouter(t, service, nil, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/stress/scenarios?level=brutal", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordDrillAttemptHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	attempt, err := domain.NewDrillAttempt(userID, "drill-7", 85, 120, true)
	require.NoError(t, err)

	service := &mockTrainingService{
		recordDrillAttemptFn: func(ctx context.Context, gotUserID uuid.UUID, drillID string, accuracy float64, durationSeconds int, passed bool) (*domain.DrillAttempt, error) {
			assert.Equal(t, "drill-7", drillID)
			assert.InDelta(t, 85, accuracy, 0.0001)
			assert.Equal(t, 120, durationSeconds)
			assert.True(t, passed)
			return attempt, nil
		},
	}
	router := newStressRouter(t, service, nil, userID)

	body := `{"drill_id":"drill-7","accuracy":85,"duration_seconds":120,"passed":true}`
	req := httptest.NewRequest(http.MethodPost, "/drills/attempts", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp DrillAttemptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "drill-7", resp.DrillID)
	assert.InDelta(t, 85, resp.Accuracy, 0.0001)
	assert.True(t, resp.Passed)
}

func TestRecordDrillAttemptHandlerValidation(t *testing.T) {
	t.Parallel()

	service := &mockTrainingService{}
	router := newStressRouter(t, service, nil, uuid.New())

	testCases := []struct {
		name string
		body string
	}{
		{name: "accuracy above range", body: `{"drill_id":"drill-7","accuracy":120,"duration_seconds":60,"passed":true}`},
		{name: "missing drill id", body: `{"accuracy":80,"duration_seconds":60,"passed":true}`},
		{name: "negative duration", body: `{"drill_id":"drill-7","accuracy":80,"duration_seconds":-1,"passed":true}`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/drills/attempts", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
