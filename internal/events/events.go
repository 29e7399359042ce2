package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
)

// Event types emitted by the training engine.
const (
	// EventTypeSessionCompleted fires when a stress training session finishes.
	EventTypeSessionCompleted = "session_completed"

	// EventTypeLevelMastered fires when a user masters a mastery level
	// within a lesson.
	EventTypeLevelMastered = "level_mastered"

	// EventTypeLessonMastered fires when a user masters the final level and
	// completes the whole lesson.
	EventTypeLessonMastered = "lesson_mastered"
)

// TrainingEvent represents a notable state transition in the training engine.
// It carries the information consumers need without direct dependencies on
// the service packages that produce it.
type TrainingEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened, one of the EventType constants
	Type string `json:"type"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TrainingEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTrainingEvent creates a new TrainingEvent with the specified type and payload.
func NewTrainingEvent(eventType string, payload interface{}) (*TrainingEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TrainingEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// SessionCompletedPayload is the payload for EventTypeSessionCompleted.
type SessionCompletedPayload struct {
	SessionID         uuid.UUID                `json:"session_id"`
	UserID            uuid.UUID                `json:"user_id"`
	ScenarioID        string                   `json:"scenario_id"`
	StressLevel       domain.StressLevel       `json:"stress_level"`
	Succeeded         bool                     `json:"succeeded"`
	PerformanceRating domain.PerformanceRating `json:"performance_rating"`
	AdaptabilityScore float64                  `json:"adaptability_score"`
}

// LevelMasteredPayload is the payload for EventTypeLevelMastered and
// EventTypeLessonMastered.
type LevelMasteredPayload struct {
	UserID            uuid.UUID           `json:"user_id"`
	LessonID          string              `json:"lesson_id"`
	Level             domain.MasteryLevel `json:"level"`
	NextLevelUnlocked bool                `json:"next_level_unlocked"`
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TrainingEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TrainingEvent) error
}
