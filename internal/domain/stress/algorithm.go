package stress

import (
	"math"

	"github.com/phrazzld/drill-api/internal/domain"
)

// calculateStressScore computes the current stress score from the scenario's
// conditions and the session telemetry.
//
// Each condition contributes according to its type:
//   - time-pressure: a tiered contribution driven by elapsed/target ratio
//   - multi-tasking: a fixed weight per simultaneous task
//   - production-incident: a flat score, plus extra under stakeholder pressure
//   - interruption: a weight per interruption/hour
//   - resource-constraint: missing documentation and tightly limited attempts
//     each add a fixed score
//
// Errors and unfinished tasks add their own weighted contributions, so the
// result is monotonic non-decreasing in errorsCount and tasksRemaining. The
// final score is clamped to [0,100]. Negative inputs are treated as zero so
// the function stays total.
func calculateStressScore(
	conditions []domain.Condition,
	elapsedSeconds int,
	errorsCount int,
	tasksRemaining int,
	params *Params,
) float64 {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	if errorsCount < 0 {
		errorsCount = 0
	}
	if tasksRemaining < 0 {
		tasksRemaining = 0
	}

	var score float64

	for _, condition := range conditions {
		switch condition.Type {
		case domain.ConditionTimePressure:
			score += timePressureScore(condition, elapsedSeconds, params)

		case domain.ConditionMultiTasking:
			score += float64(condition.SimultaneousTasks) * params.SimultaneousTaskWeight

		case domain.ConditionProductionIncident:
			score += params.IncidentScore
			if condition.StakeholderPressure {
				score += params.StakeholderScore
			}

		case domain.ConditionInterruption:
			score += float64(condition.InterruptionFrequency) * params.InterruptionWeight

		case domain.ConditionResourceConstraint:
			if condition.NoDocumentation {
				score += params.NoDocumentationScore
			}
			if condition.LimitedAttempts <= params.LimitedAttemptsCutoff {
				score += params.LimitedAttemptsScore
			}
		}
	}

	score += float64(errorsCount) * params.ErrorWeight
	score += float64(tasksRemaining) * params.TaskRemainingWeight

	return clamp(score, 0, 100)
}

// timePressureScore returns the tiered contribution of a time-pressure
// condition. Crossing half the target time raises the contribution, and
// crossing three quarters raises it again. A condition without a target time
// contributes the highest tier, since any elapsed time is already "over".
func timePressureScore(condition domain.Condition, elapsedSeconds int, params *Params) float64 {
	if condition.TargetTimeSeconds <= 0 {
		return params.HighTierScore
	}

	progress := float64(elapsedSeconds) / float64(condition.TargetTimeSeconds)
	switch {
	case progress > params.HighProgressThreshold:
		return params.HighTierScore
	case progress > params.MidProgressThreshold:
		return params.MidTierScore
	default:
		return params.LowTierScore
	}
}

// calculateFatigueLevel computes fatigue from elapsed time and the current
// stress score: a steady rate per minute plus a stress-proportional share.
// Monotonic non-decreasing in both inputs; capped at 100.
func calculateFatigueLevel(elapsedSeconds int, stressScore float64, params *Params) float64 {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	stressScore = clamp(stressScore, 0, 100)

	baseFatigue := float64(elapsedSeconds) / 60 * params.FatiguePerMinute
	stressFatigue := stressScore / 100 * params.FatigueStressFactor

	return math.Min(100, baseFatigue+stressFatigue)
}

// calculateFocusLevel computes remaining focus from fatigue and stress.
// Monotonic non-increasing in both inputs; floored at 0.
func calculateFocusLevel(fatigueLevel, stressScore float64, params *Params) float64 {
	fatigueLevel = clamp(fatigueLevel, 0, 100)
	stressScore = clamp(stressScore, 0, 100)

	focusLoss := fatigueLevel*params.FocusFatigueFactor + stressScore*params.FocusStressFactor
	return math.Max(0, 100-focusLoss)
}

// calculatePerformanceRating grades a finished session via a fixed decision
// table over completion rate and time ratio:
//
//	completion < 0.5                                 -> failed
//	completion < 0.75                                -> poor
//	full completion, time < 0.8 target, zero errors  -> excellent
//	full completion, time < target, at most 1 error  -> good
//	completion >= 0.9, time < 1.2 target             -> adequate
//	everything else                                  -> poor
//
// The trailing default is deliberate: tuples the table does not single out
// (for example 80% completion over budget) grade as poor. It must stay an
// explicit fallthrough rather than grow new tiers.
func calculatePerformanceRating(
	tasksCompleted int,
	totalTasks int,
	timeToCompletion int,
	targetTime int,
	errorsCount int,
	params *Params,
) domain.PerformanceRating {
	if totalTasks <= 0 {
		return domain.PerformanceFailed
	}
	if tasksCompleted < 0 {
		tasksCompleted = 0
	}
	if errorsCount < 0 {
		errorsCount = 0
	}

	completionRate := float64(tasksCompleted) / float64(totalTasks)

	var timeRatio float64
	if targetTime > 0 {
		timeRatio = float64(timeToCompletion) / float64(targetTime)
	} else {
		timeRatio = math.Inf(1)
	}

	if completionRate < params.FailedCompletionRate {
		return domain.PerformanceFailed
	}
	if completionRate < params.PoorCompletionRate {
		return domain.PerformancePoor
	}

	if completionRate >= 1 && timeRatio < params.ExcellentTimeRatio && errorsCount == 0 {
		return domain.PerformanceExcellent
	}
	if completionRate >= 1 && timeRatio < params.GoodTimeRatio && errorsCount <= params.GoodMaxErrors {
		return domain.PerformanceGood
	}
	if completionRate >= params.AdequateCompletionRate && timeRatio < params.AdequateTimeRatio {
		return domain.PerformanceAdequate
	}

	return domain.PerformancePoor
}

// calculateAdaptabilityScore computes how well performance held up under
// pressure. The final focus level is the base; the performance rating adds a
// fixed bonus (or penalty for a failed run); the scenario's stress level
// scales the sum, so holding steady at high stress is worth more than at
// none; each error under pressure subtracts a fixed penalty. Clamped to
// [0,100].
func calculateAdaptabilityScore(
	rating domain.PerformanceRating,
	stressLevel domain.StressLevel,
	errorsUnderPressure int,
	focusLevel float64,
	params *Params,
) float64 {
	if errorsUnderPressure < 0 {
		errorsUnderPressure = 0
	}

	score := clamp(focusLevel, 0, 100)
	score += params.RatingBonus[rating]

	multiplier, ok := params.StressMultiplier[stressLevel]
	if !ok {
		multiplier = 1.0
	}
	score *= multiplier

	score -= float64(errorsUnderPressure) * params.ErrorPenalty

	return clamp(score, 0, 100)
}

// clamp bounds v into [lo, hi]. NaN collapses to lo so the scoring pipeline
// can never emit NaN.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
