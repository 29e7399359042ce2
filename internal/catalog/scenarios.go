// Package catalog holds the authored stress training scenarios. Scenarios are
// compiled into the binary; they change rarely and versioning them with the
// code keeps IDs stable across deployments.
package catalog

import (
	"github.com/phrazzld/drill-api/internal/domain"
)

// scenarios is the full authored set, in ascending-ish stress order.
var scenarios = []domain.StressScenario{
	{
		ID:          "time-pressure-1",
		Title:       "Quick Deploy Under Deadline",
		Description: "Deploy a Docker container within tight deadline. Customer demo in 30 minutes.",
		StressLevel: domain.StressLevelLow,
		Conditions: []domain.Condition{
			{
				ID:                      "tp-1",
				Type:                    domain.ConditionTimePressure,
				Description:             "Deploy within 10 minutes",
				Enabled:                 true,
				Severity:                "low",
				TargetTimeSeconds:       600,
				PenaltyPerSecondOver:    1,
				WarningThresholdPercent: 75,
			},
		},
		Duration: 600,
		SuccessCriteria: []string{
			"Container deployed successfully",
			"Service responding to health checks",
			"Completed within time limit",
		},
		FailurePenalty: 50,
		BonusReward:    100,
	},
	{
		ID:          "multi-task-1",
		Title:       "Parallel Deployment Crisis",
		Description: "Two services need deployment simultaneously. Different teams waiting.",
		StressLevel: domain.StressLevelMedium,
		Conditions: []domain.Condition{
			{
				ID:                        "mt-1",
				Type:                      domain.ConditionMultiTasking,
				Description:               "Deploy 2 services in parallel",
				Enabled:                   true,
				Severity:                  "medium",
				SimultaneousTasks:         2,
				TaskSwitchPenalty:         30,
				RequiresParallelExecution: true,
			},
			{
				ID:                      "tp-2",
				Type:                    domain.ConditionTimePressure,
				Description:             "Complete both within 15 minutes",
				Enabled:                 true,
				Severity:                "medium",
				TargetTimeSeconds:       900,
				PenaltyPerSecondOver:    2,
				WarningThresholdPercent: 70,
			},
		},
		Duration: 900,
		SuccessCriteria: []string{
			"Both services deployed",
			"No cross-contamination of configs",
			"Both passing health checks",
			"Completed within time limit",
		},
		FailurePenalty: 100,
		BonusReward:    200,
	},
	{
		ID:          "constrained-1",
		Title:       "Limited Access Deployment",
		Description: "Deploy to production with limited permissions and no documentation.",
		StressLevel: domain.StressLevelMedium,
		Conditions: []domain.Condition{
			{
				ID:              "rc-1",
				Type:            domain.ConditionResourceConstraint,
				Description:     "Limited resources available",
				Enabled:         true,
				Severity:        "medium",
				LimitedHints:    1,
				LimitedAttempts: 2,
				NoDocumentation: true,
				LimitedTools:    []string{"docker", "git"},
			},
			{
				ID:                      "tp-5",
				Type:                    domain.ConditionTimePressure,
				Description:             "Deploy within 12 minutes",
				Enabled:                 true,
				Severity:                "medium",
				TargetTimeSeconds:       720,
				PenaltyPerSecondOver:    3,
				WarningThresholdPercent: 70,
			},
		},
		Duration: 720,
		SuccessCriteria: []string{
			"Deployment successful",
			"Worked within constraints",
			"No excessive retries",
		},
		FailurePenalty: 100,
		BonusReward:    250,
	},
	{
		ID:          "incident-1",
		Title:       "Production Outage Response",
		Description: "Service down! 5,000 users affected. CEO is asking for updates.",
		StressLevel: domain.StressLevelHigh,
		Conditions: []domain.Condition{
			{
				ID:                  "pi-1",
				Type:                domain.ConditionProductionIncident,
				Description:         "Critical production outage",
				Enabled:             true,
				Severity:            "critical",
				AffectedUsers:       5000,
				RevenueImpact:       1000,
				StakeholderPressure: true,
				TimeToResolve:       15,
			},
			{
				ID:                      "tp-3",
				Type:                    domain.ConditionTimePressure,
				Description:             "Restore service in 15 minutes",
				Enabled:                 true,
				Severity:                "high",
				TargetTimeSeconds:       900,
				PenaltyPerSecondOver:    5,
				WarningThresholdPercent: 60,
			},
		},
		Duration: 900,
		SuccessCriteria: []string{
			"Service restored",
			"Root cause identified",
			"Rollback executed if needed",
			"Incident documented",
		},
		FailurePenalty: 200,
		BonusReward:    300,
	},
	{
		ID:          "interrupt-1",
		Title:       "Deploy While On-Call",
		Description: "Deploy new feature while handling incoming alerts and questions.",
		StressLevel: domain.StressLevelHigh,
		Conditions: []domain.Condition{
			{
				ID:                    "int-1",
				Type:                  domain.ConditionInterruption,
				Description:           "Handle frequent interruptions",
				Enabled:               true,
				Severity:              "high",
				InterruptionFrequency: 4,
				InterruptionTypes:     []string{"alert", "question", "incident"},
				MustRespond:           true,
				ResponseTimeSeconds:   60,
			},
			{
				ID:                      "tp-6",
				Type:                    domain.ConditionTimePressure,
				Description:             "Complete deployment in 18 minutes",
				Enabled:                 true,
				Severity:                "medium",
				TargetTimeSeconds:       1080,
				PenaltyPerSecondOver:    3,
				WarningThresholdPercent: 65,
			},
		},
		Duration: 1080,
		SuccessCriteria: []string{
			"Deployment completed",
			"All interruptions handled",
			"No missed alerts",
			"Context maintained between interruptions",
		},
		FailurePenalty: 150,
		BonusReward:    350,
	},
	{
		ID:          "chaos-1",
		Title:       "Black Friday Chaos",
		Description: "Multiple services failing during peak traffic. All hands on deck!",
		StressLevel: domain.StressLevelExtreme,
		Conditions: []domain.Condition{
			{
				ID:                        "mt-2",
				Type:                      domain.ConditionMultiTasking,
				Description:               "Handle 3 simultaneous incidents",
				Enabled:                   true,
				Severity:                  "high",
				SimultaneousTasks:         3,
				TaskSwitchPenalty:         60,
				RequiresParallelExecution: true,
			},
			{
				ID:                  "pi-2",
				Type:                domain.ConditionProductionIncident,
				Description:         "Critical outage during peak sales",
				Enabled:             true,
				Severity:            "outage",
				AffectedUsers:       50000,
				RevenueImpact:       10000,
				StakeholderPressure: true,
				TimeToResolve:       20,
			},
			{
				ID:                      "tp-4",
				Type:                    domain.ConditionTimePressure,
				Description:             "Resolve all within 20 minutes",
				Enabled:                 true,
				Severity:                "extreme",
				TargetTimeSeconds:       1200,
				PenaltyPerSecondOver:    10,
				WarningThresholdPercent: 50,
			},
		},
		Duration: 1200,
		SuccessCriteria: []string{
			"All critical services restored",
			"Traffic stabilized",
			"No data loss",
			"Stakeholders updated",
			"Post-incident plan created",
		},
		FailurePenalty: 500,
		BonusReward:    1000,
	},
}

// All returns a copy of every authored scenario.
func All() []domain.StressScenario {
	out := make([]domain.StressScenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// ByID looks up a scenario by its stable ID. The second return value is
// false when no scenario matches.
func ByID(id string) (domain.StressScenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return domain.StressScenario{}, false
}

// ByStressLevel returns all scenarios at the given stress level.
func ByStressLevel(level domain.StressLevel) []domain.StressScenario {
	var out []domain.StressScenario
	for _, s := range scenarios {
		if s.StressLevel == level {
			out = append(out, s)
		}
	}
	return out
}

// Catalog adapts the package-level lookups to an injectable value for
// consumers that take the catalog as a dependency.
type Catalog struct{}

// All returns a copy of every authored scenario.
func (Catalog) All() []domain.StressScenario {
	return All()
}

// ByID looks up a scenario by its stable ID.
func (Catalog) ByID(id string) (domain.StressScenario, bool) {
	return ByID(id)
}

// ByStressLevel returns all scenarios at the given stress level.
func (Catalog) ByStressLevel(level domain.StressLevel) []domain.StressScenario {
	return ByStressLevel(level)
}
