// Package stress implements the pure scoring primitives of the
// stress-adaptive training simulation: stress score, fatigue, focus,
// performance rating, and adaptability. All functions are total and
// deterministic; time enters only as explicit elapsed-seconds parameters.
package stress

import (
	"github.com/phrazzld/drill-api/internal/domain"
)

// Service defines the interface for stress scoring operations.
type Service interface {
	// StressScore computes the current 0-100 stress score from scenario
	// conditions and session telemetry.
	StressScore(
		conditions []domain.Condition,
		elapsedSeconds int,
		errorsCount int,
		tasksRemaining int,
	) float64

	// FatigueLevel computes the 0-100 fatigue level from elapsed time and
	// stress score.
	FatigueLevel(elapsedSeconds int, stressScore float64) float64

	// FocusLevel computes the remaining 0-100 focus from fatigue and stress.
	FocusLevel(fatigueLevel, stressScore float64) float64

	// RatePerformance grades a finished session from its completion stats.
	RatePerformance(
		tasksCompleted int,
		totalTasks int,
		timeToCompletion int,
		targetTime int,
		errorsCount int,
	) domain.PerformanceRating

	// AdaptabilityScore computes the 0-100 adaptability score for a
	// completed session.
	AdaptabilityScore(
		rating domain.PerformanceRating,
		stressLevel domain.StressLevel,
		errorsUnderPressure int,
		focusLevel float64,
	) float64
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scoring service with default parameters.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new scoring service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{params: params}
}

func (s *defaultService) StressScore(
	conditions []domain.Condition,
	elapsedSeconds int,
	errorsCount int,
	tasksRemaining int,
) float64 {
	return calculateStressScore(conditions, elapsedSeconds, errorsCount, tasksRemaining, s.params)
}

func (s *defaultService) FatigueLevel(elapsedSeconds int, stressScore float64) float64 {
	return calculateFatigueLevel(elapsedSeconds, stressScore, s.params)
}

func (s *defaultService) FocusLevel(fatigueLevel, stressScore float64) float64 {
	return calculateFocusLevel(fatigueLevel, stressScore, s.params)
}

func (s *defaultService) RatePerformance(
	tasksCompleted int,
	totalTasks int,
	timeToCompletion int,
	targetTime int,
	errorsCount int,
) domain.PerformanceRating {
	return calculatePerformanceRating(
		tasksCompleted,
		totalTasks,
		timeToCompletion,
		targetTime,
		errorsCount,
		s.params,
	)
}

func (s *defaultService) AdaptabilityScore(
	rating domain.PerformanceRating,
	stressLevel domain.StressLevel,
	errorsUnderPressure int,
	focusLevel float64,
) float64 {
	return calculateAdaptabilityScore(rating, stressLevel, errorsUnderPressure, focusLevel, s.params)
}
