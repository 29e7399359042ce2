package training

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// runningAverage folds a new value into an average whose weight is the
// pre-increment observation count.
func runningAverage(currentAvg, newValue float64, count int) float64 {
	return (currentAvg*float64(count) + newValue) / float64(count+1)
}

// toleranceCandidate derives the tolerance tier supported by the metrics
// history and the just-completed session. A tier qualifies only when the
// user has at least sessionThreshold historical sessions at that tier and
// the completed session itself was a success at that tier. Tiers are checked
// from the top down; low is the floor.
//
// The counts consulted are the pre-fold (historical) counts: the completed
// session itself is not part of its own qualifying evidence.
func toleranceCandidate(
	metrics *domain.StressMetrics,
	session *domain.StressTrainingSession,
	sessionThreshold int,
) domain.StressLevel {
	counts := metrics.SessionsByStressLevel
	level := session.Scenario.StressLevel

	for _, tier := range []domain.StressLevel{
		domain.StressLevelExtreme,
		domain.StressLevelHigh,
		domain.StressLevelMedium,
	} {
		if counts[tier] >= sessionThreshold && level == tier && session.Succeeded {
			return tier
		}
	}
	return domain.StressLevelLow
}

// maxStressLevel returns the higher of two tiers on the tolerance ladder.
// Tolerance never demotes, so folds take the max of old and candidate.
func maxStressLevel(a, b domain.StressLevel) domain.StressLevel {
	if b.Ordinal() > a.Ordinal() {
		return b
	}
	return a
}

// canAttemptLevel reports whether a tolerance admits the requested stress
// level: ordinal(requested) <= ordinal(tolerance).
func canAttemptLevel(tolerance, requested domain.StressLevel) bool {
	return requested.Ordinal() <= tolerance.Ordinal()
}

// degradationRate computes the percentage drop from normal to stressed
// accuracy, or zero when there is no baseline.
func degradationRate(normalAccuracy, stressedAccuracy float64) float64 {
	if normalAccuracy <= 0 {
		return 0
	}
	return (normalAccuracy - stressedAccuracy) / normalAccuracy * 100
}

// foldSession folds a completed session into the metrics aggregate and
// returns a new aggregate; the input is not mutated. normalAccuracy is the
// caller-supplied baseline from recent non-stress drill attempts.
//
// All running means use the pre-increment TotalSessions as their weight;
// the counter increments happen after the averages are updated.
func foldSession(
	metrics *domain.StressMetrics,
	session *domain.StressTrainingSession,
	normalAccuracy float64,
	sessionThreshold int,
	now time.Time,
) *domain.StressMetrics {
	updated := metrics.Clone()

	count := metrics.TotalSessions
	updated.AverageStressScore = runningAverage(metrics.AverageStressScore, session.StressScore, count)
	updated.AverageAdaptabilityScore = runningAverage(
		metrics.AverageAdaptabilityScore,
		session.AdaptabilityScore,
		count,
	)

	stressedAccuracy := runningAverage(
		metrics.PerformanceDegradation.StressedAccuracy,
		session.Accuracy(),
		count,
	)
	updated.PerformanceDegradation = domain.PerformanceDegradation{
		NormalAccuracy:   normalAccuracy,
		StressedAccuracy: stressedAccuracy,
		DegradationRate:  degradationRate(normalAccuracy, stressedAccuracy),
	}

	// Tolerance is derived from the pre-fold counts, then clamped so it
	// never moves down the ladder.
	candidate := toleranceCandidate(metrics, session, sessionThreshold)
	updated.StressToleranceLevel = maxStressLevel(metrics.StressToleranceLevel, candidate)

	updated.SessionsByStressLevel[session.Scenario.StressLevel]++
	updated.TotalSessions = count + 1
	updated.LastUpdated = now

	return updated
}

// baselineAccuracy averages the accuracy of recent drill attempts. An empty
// sample yields zero, which disables degradation reporting.
func baselineAccuracy(attempts []*domain.DrillAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Accuracy
	}
	return sum / float64(len(attempts))
}
