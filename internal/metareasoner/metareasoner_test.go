package metareasoner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeMetricsClampsToUnitRange(t *testing.T) {
	m := ComputeMetrics(10000, 500, 1, 50000, 10, 3)
	assert.Equal(t, 1.0, m.InferenceRate)
	assert.Equal(t, 1.0, m.ContradictionRate)
	assert.Equal(t, 1.0, m.ResourceUtilization)
	assert.Equal(t, 0.0, m.QuestionResponseTime)
}

func TestDetectIssuesFlagsHighContradictionRate(t *testing.T) {
	m := Metrics{ContradictionRate: 0.5}
	issues := DetectIssues(m, 10)
	assert.Contains(t, issues, IssueHighContradictions)
}

func TestDetectIssuesRequiresBacklogForLowInferenceRate(t *testing.T) {
	m := Metrics{InferenceRate: 0.01}
	assert.NotContains(t, DetectIssues(m, 10), IssueLowInferenceRate)
	assert.Contains(t, DetectIssues(m, 200), IssueLowInferenceRate)
}

func TestAdaptRaisesInferenceThresholdOnContradictions(t *testing.T) {
	start := Thresholds{InferenceThreshold: 0.3, BudgetThreshold: 0.05, MaxPathLength: 15}
	got := Adapt(start, []Issue{IssueHighContradictions})
	assert.InDelta(t, 0.33, got.InferenceThreshold, 1e-9)
}

func TestAdaptLowersInferenceThresholdOnLowRate(t *testing.T) {
	start := Thresholds{InferenceThreshold: 0.3, BudgetThreshold: 0.05, MaxPathLength: 15}
	got := Adapt(start, []Issue{IssueLowInferenceRate})
	assert.Less(t, got.InferenceThreshold, start.InferenceThreshold)
}

func TestAdaptShrinksMaxPathLengthOnHighUtilizationDownToFloor(t *testing.T) {
	start := Thresholds{MaxPathLength: 6}
	got := Adapt(start, []Issue{IssueHighResourceUtilization})
	assert.Equal(t, 5, got.MaxPathLength)
	got2 := Adapt(got, []Issue{IssueHighResourceUtilization})
	assert.Equal(t, 5, got2.MaxPathLength, "must not shrink below the floor")
}

func TestResolveFocusPrefersContradictionOverQuestion(t *testing.T) {
	focus := ResolveFocus([]Issue{IssueSlowQuestionResponse, IssueHighContradictions})
	assert.Equal(t, FocusContradictionResolution, focus)
}

func TestResolveFocusDefaultsWhenNoIssues(t *testing.T) {
	assert.Equal(t, FocusDefault, ResolveFocus(nil))
}

func TestAdjustResourceFractionsSumsToOne(t *testing.T) {
	f := AdjustResourceFractions(DefaultResourceFractions(), FocusContradictionResolution, 0.2)
	assert.InDelta(t, 1.0, f.Derivation+f.Memory+f.Temporal, 1e-9)
	assert.Greater(t, f.Memory, DefaultResourceFractions().Memory)
}

func TestAdjustResourceFractionsNoopOnDefaultFocus(t *testing.T) {
	f := AdjustResourceFractions(DefaultResourceFractions(), FocusDefault, 0.2)
	assert.Equal(t, DefaultResourceFractions(), f)
}

func TestRulePriorityFloorsAtOneBelowAttemptThreshold(t *testing.T) {
	assert.Equal(t, 1.0, RulePriority(5, 0.0))
	assert.InDelta(t, 0.9, RulePriority(10, 0.4), 1e-9)
}
