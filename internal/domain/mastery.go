package domain

import (
	"time"

	"github.com/google/uuid"
)

// MasteryLevel represents one of the four ordered proficiency stages a
// learner moves through for each lesson.
type MasteryLevel string

// Mastery levels in progression order.
const (
	MasteryLevelCrawl          MasteryLevel = "crawl"
	MasteryLevelWalk           MasteryLevel = "walk"
	MasteryLevelRunGuided      MasteryLevel = "run-guided"
	MasteryLevelRunIndependent MasteryLevel = "run-independent"
)

// MasteryLevelOrder is the fixed progression order. Unlock cascades follow
// this slice; no level may be skipped.
var MasteryLevelOrder = []MasteryLevel{
	MasteryLevelCrawl,
	MasteryLevelWalk,
	MasteryLevelRunGuided,
	MasteryLevelRunIndependent,
}

// IsValid reports whether the level is one of the four known stages.
func (l MasteryLevel) IsValid() bool {
	switch l {
	case MasteryLevelCrawl, MasteryLevelWalk, MasteryLevelRunGuided, MasteryLevelRunIndependent:
		return true
	default:
		return false
	}
}

// Ordinal returns the level's position in the progression order, or -1 for
// an unknown level.
func (l MasteryLevel) Ordinal() int {
	for i, level := range MasteryLevelOrder {
		if level == l {
			return i
		}
	}
	return -1
}

// Next returns the level that follows l in the progression order. The second
// return value is false when l is the final level or unknown.
func (l MasteryLevel) Next() (MasteryLevel, bool) {
	ord := l.Ordinal()
	if ord < 0 || ord >= len(MasteryLevelOrder)-1 {
		return "", false
	}
	return MasteryLevelOrder[ord+1], true
}

// MasteryProgress tracks a learner's progress at a single mastery level of a
// single lesson. AverageTime is a running mean over all attempts, including
// imperfect ones.
type MasteryProgress struct {
	Attempts                   int        `json:"attempts"`
	PerfectCompletions         int        `json:"perfect_completions"`
	RequiredPerfectCompletions int        `json:"required_perfect_completions"`
	Unlocked                   bool       `json:"unlocked"`
	AverageTime                float64    `json:"average_time"` // seconds
	LastAttemptAt              *time.Time `json:"last_attempt_at,omitempty"`
}

// Mastered reports whether enough perfect completions have accumulated.
func (p *MasteryProgress) Mastered() bool {
	return p.PerfectCompletions >= p.RequiredPerfectCompletions
}

// MasteryRequirements holds the perfect-completion count each level demands.
// The values are fixed into the aggregate at creation and never changed
// afterwards.
type MasteryRequirements struct {
	Crawl          int
	Walk           int
	RunGuided      int
	RunIndependent int
}

// DefaultMasteryRequirements returns the standard requirements: three perfect
// completions for crawl and walk, two for run-guided, one for run-independent.
func DefaultMasteryRequirements() MasteryRequirements {
	return MasteryRequirements{Crawl: 3, Walk: 3, RunGuided: 2, RunIndependent: 1}
}

// LessonMastery is the per-user, per-lesson aggregate owning the four level
// progress records. It is created at first lesson access, mutated only by the
// gating state machine, and always persisted whole.
type LessonMastery struct {
	UserID         uuid.UUID       `json:"user_id"`
	LessonID       string          `json:"lesson_id"`
	Crawl          MasteryProgress `json:"crawl"`
	Walk           MasteryProgress `json:"walk"`
	RunGuided      MasteryProgress `json:"run_guided"`
	RunIndependent MasteryProgress `json:"run_independent"`
	CurrentLevel   MasteryLevel    `json:"current_level"`
	FullyMastered  bool            `json:"fully_mastered"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewLessonMastery creates a fresh aggregate with crawl unlocked and all
// other levels locked.
func NewLessonMastery(
	userID uuid.UUID,
	lessonID string,
	req MasteryRequirements,
) (*LessonMastery, error) {
	now := time.Now().UTC()
	m := &LessonMastery{
		UserID:   userID,
		LessonID: lessonID,
		Crawl: MasteryProgress{
			Unlocked:                   true,
			RequiredPerfectCompletions: req.Crawl,
		},
		Walk: MasteryProgress{
			RequiredPerfectCompletions: req.Walk,
		},
		RunGuided: MasteryProgress{
			RequiredPerfectCompletions: req.RunGuided,
		},
		RunIndependent: MasteryProgress{
			RequiredPerfectCompletions: req.RunIndependent,
		},
		CurrentLevel:  MasteryLevelCrawl,
		FullyMastered: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return m, nil
}

// Validate checks if the LessonMastery has valid data.
// Returns an error if any field fails validation.
func (m *LessonMastery) Validate() error {
	if m.UserID == uuid.Nil {
		return ErrEmptyUserID
	}

	if m.LessonID == "" {
		return ErrEmptyLessonID
	}

	if !m.CurrentLevel.IsValid() {
		return ErrInvalidMasteryLevel
	}

	for _, level := range MasteryLevelOrder {
		p := m.Progress(level)
		if p.Attempts < 0 || p.PerfectCompletions < 0 {
			return NewValidationError(string(level), "attempt counts cannot be negative", ErrValidation)
		}
		if p.PerfectCompletions > p.Attempts {
			return NewValidationError(
				string(level),
				"perfect completions cannot exceed attempts",
				ErrValidation,
			)
		}
		if p.RequiredPerfectCompletions < 1 {
			return NewValidationError(
				string(level),
				"required perfect completions must be at least 1",
				ErrValidation,
			)
		}
	}

	return nil
}

// Progress returns a pointer to the progress record for the given level, or
// nil for an unknown level. The pointer addresses the embedded record, so
// callers mutating it mutate the aggregate.
func (m *LessonMastery) Progress(level MasteryLevel) *MasteryProgress {
	switch level {
	case MasteryLevelCrawl:
		return &m.Crawl
	case MasteryLevelWalk:
		return &m.Walk
	case MasteryLevelRunGuided:
		return &m.RunGuided
	case MasteryLevelRunIndependent:
		return &m.RunIndependent
	default:
		return nil
	}
}

// HighestUnlockedLevel walks the progression order from the top and returns
// the furthest level the learner has unlocked. Crawl is always unlocked on a
// valid aggregate, so the fallback is crawl.
func (m *LessonMastery) HighestUnlockedLevel() MasteryLevel {
	for i := len(MasteryLevelOrder) - 1; i >= 0; i-- {
		level := MasteryLevelOrder[i]
		if m.Progress(level).Unlocked {
			return level
		}
	}
	return MasteryLevelCrawl
}

// Clone returns a deep copy of the aggregate. MasteryProgress values are
// copied by value; LastAttemptAt pointers are duplicated.
func (m *LessonMastery) Clone() *LessonMastery {
	clone := *m
	clone.Crawl = cloneProgress(m.Crawl)
	clone.Walk = cloneProgress(m.Walk)
	clone.RunGuided = cloneProgress(m.RunGuided)
	clone.RunIndependent = cloneProgress(m.RunIndependent)
	return &clone
}

func cloneProgress(p MasteryProgress) MasteryProgress {
	if p.LastAttemptAt != nil {
		t := *p.LastAttemptAt
		p.LastAttemptAt = &t
	}
	return p
}
