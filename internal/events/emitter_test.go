package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*TrainingEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *TrainingEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func TestEmitEventDispatchesToAllHandlers(t *testing.T) {
	t.Parallel()
	emitter := NewInMemoryEventEmitter(slog.Default())

	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewTrainingEvent(EventTypeLevelMastered, LevelMasteredPayload{LessonID: "lesson-1"})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestEmitEventWithNoHandlersIsANoOp(t *testing.T) {
	t.Parallel()
	emitter := NewInMemoryEventEmitter(slog.Default())

	event, err := NewTrainingEvent(EventTypeSessionCompleted, SessionCompletedPayload{})
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()
	emitter := NewInMemoryEventEmitter(slog.Default())

	failErr := errors.New("handler down")
	failing := &recordingHandler{err: failErr}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewTrainingEvent(EventTypeLessonMastered, LevelMasteredPayload{})
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, failErr)

	// The healthy handler still saw the event.
	assert.Len(t, healthy.events, 1)
}

func TestTrainingEventPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	payload := LevelMasteredPayload{
		LessonID:          "lesson-1",
		Level:             "walk",
		NextLevelUnlocked: true,
	}
	event, err := NewTrainingEvent(EventTypeLevelMastered, payload)
	require.NoError(t, err)
	assert.NotEqual(t, event.ID.String(), "00000000-0000-0000-0000-000000000000")

	var decoded LevelMasteredPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}
