// Package gating implements the mastery gating state machine. Each lesson
// tracks four progressive levels (crawl, walk, run-guided, run-independent);
// a level accepts attempts only while unlocked, and unlocking the next level
// requires a fixed number of perfect completions at the current one.
//
// The package is pure: ApplyAttempt never mutates its input aggregate and
// performs no I/O, which keeps the transition logic independently testable.
package gating

import (
	"math"
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// AttemptResult describes the state transitions caused by a single recorded
// attempt.
type AttemptResult struct {
	// LevelMastered is true when the practiced level has reached its
	// required perfect-completion count, including attempts after the
	// threshold was already met.
	LevelMastered bool

	// NextLevelUnlocked is true only when this attempt first mastered the
	// level and unlocked the next one. Always false for run-independent,
	// which has no successor.
	NextLevelUnlocked bool

	// FullyMastered is true when the whole lesson is mastered, meaning the
	// run-independent level has reached its requirement.
	FullyMastered bool
}

// Service defines the mastery gating operations.
type Service interface {
	// ApplyAttempt records one practice attempt at the given level and
	// returns the updated aggregate plus the transitions it caused.
	//
	// If the level is locked the attempt is a no-op: both return values are
	// nil and the error is nil. The caller decides how to surface that.
	// The input aggregate is never mutated.
	ApplyAttempt(mastery *domain.LessonMastery, level domain.MasteryLevel, perfect bool, timeSpentSeconds float64, now time.Time) (*domain.LessonMastery, *AttemptResult, error)
}

type defaultService struct {
	params *Params
}

var _ Service = (*defaultService)(nil)

// NewDefaultService creates a gating service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a gating service with the given parameters.
// Panics if params is nil.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		panic("params cannot be nil")
	}
	return &defaultService{params: params}
}

func (s *defaultService) ApplyAttempt(mastery *domain.LessonMastery, level domain.MasteryLevel, perfect bool, timeSpentSeconds float64, now time.Time) (*domain.LessonMastery, *AttemptResult, error) {
	if mastery == nil {
		return nil, nil, domain.NewValidationError("mastery", "lesson mastery cannot be nil", domain.ErrValidation)
	}
	if !level.IsValid() {
		return nil, nil, domain.ErrInvalidMasteryLevel
	}

	current := mastery.Progress(level)
	if current == nil {
		return nil, nil, domain.ErrInvalidMasteryLevel
	}
	if !current.Unlocked {
		// Attempts against a locked level are silently ignored.
		return nil, nil, nil
	}

	// Defend against garbage timings from the client.
	if timeSpentSeconds < 0 || math.IsNaN(timeSpentSeconds) {
		timeSpentSeconds = 0
	}

	updated := mastery.Clone()
	progress := updated.Progress(level)

	// Rows written before requirements were configurable can carry a zero
	// requirement; repair it from params so Mastered() stays meaningful.
	if progress.RequiredPerfectCompletions <= 0 {
		progress.RequiredPerfectCompletions = s.params.RequirementFor(level)
	}

	wasMastered := progress.Mastered()

	// Running mean over all attempts at this level, using the pre-increment
	// attempt count as the weight.
	progress.AverageTime = (progress.AverageTime*float64(progress.Attempts) + timeSpentSeconds) / float64(progress.Attempts+1)
	progress.Attempts++
	if perfect {
		progress.PerfectCompletions++
	}
	attemptedAt := now
	progress.LastAttemptAt = &attemptedAt

	result := &AttemptResult{}

	if progress.Mastered() {
		// LevelMastered reports the mastered predicate on every attempt;
		// only the unlock cascade is gated on the first crossing.
		result.LevelMastered = true

		next, hasNext := level.Next()
		if hasNext {
			if !wasMastered {
				updated.Progress(next).Unlocked = true
				result.NextLevelUnlocked = true
			}
		} else {
			updated.FullyMastered = true
			result.FullyMastered = true
		}
	}

	updated.CurrentLevel = updated.HighestUnlockedLevel()
	updated.UpdatedAt = now

	return updated, result, nil
}
