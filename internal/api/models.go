package api

// Common request/response structures

// RecordAttemptRequest defines the payload for recording a practice attempt
// against a lesson level.
type RecordAttemptRequest struct {
	Level            string  `json:"level"              validate:"required,oneof=crawl walk run-guided run-independent"`
	Perfect          bool    `json:"perfect"`
	TimeSpentSeconds float64 `json:"time_spent_seconds" validate:"gte=0"`
}

// StartSessionRequest defines the payload for starting a stress training
// session.
type StartSessionRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// UpdateSessionMetricsRequest defines the payload for updating the task and
// error counters of the active session.
type UpdateSessionMetricsRequest struct {
	TasksCompleted int `json:"tasks_completed" validate:"gte=0"`
	ErrorsCount    int `json:"errors_count"    validate:"gte=0"`
}

// CompleteSessionRequest defines the payload for completing the active
// session.
type CompleteSessionRequest struct {
	Success bool `json:"success"`
}

// RecordDrillAttemptRequest defines the payload for recording a baseline
// (non-stress) drill attempt.
type RecordDrillAttemptRequest struct {
	DrillID         string  `json:"drill_id"         validate:"required"`
	Accuracy        float64 `json:"accuracy"         validate:"gte=0,lte=100"`
	DurationSeconds int     `json:"duration_seconds" validate:"gte=0"`
	Passed          bool    `json:"passed"`
}

// AccessResponse reports whether the authenticated user may practice at the
// requested level.
type AccessResponse struct {
	CanAccess bool `json:"can_access"`
}

// StressAccessResponse reports whether the authenticated user's tolerance
// admits scenarios at the requested stress level.
type StressAccessResponse struct {
	CanAttempt bool `json:"can_attempt"`
}
