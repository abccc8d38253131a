// Package metareasoner implements the kernel's self-monitoring and
// parameter adaptation (spec §4.6).
package metareasoner

import "math"

// Focus is the meta-reasoner's current attention mode (spec §4.6).
type Focus string

const (
	FocusDefault                  Focus = "default"
	FocusQuestionAnswering        Focus = "question-answering"
	FocusContradictionResolution  Focus = "contradiction-resolution"
)

// Issue names a detected operating condition (spec §4.6).
type Issue string

const (
	IssueHighContradictions      Issue = "high-contradictions"
	IssueLowInferenceRate        Issue = "low-inference-rate"
	IssueHighResourceUtilization Issue = "high-resource-utilization"
	IssueSlowQuestionResponse    Issue = "slow-question-response"
)

// Metrics are the normalized, per-interval measurements spec §4.6 computes
// on every maintenance tick.
type Metrics struct {
	InferenceRate        float64
	ContradictionRate    float64
	ResourceUtilization  float64
	QuestionResponseTime float64
}

// ComputeMetrics normalizes raw counters into the [0,1] metrics spec §4.6
// defines. deltaSeconds is the elapsed time since the previous tick.
func ComputeMetrics(firings, contradictions int, deltaSeconds float64, queueLen int, meanResponseSeconds, questionTimeoutSeconds float64) Metrics {
	if deltaSeconds <= 0 {
		deltaSeconds = 1
	}
	m := Metrics{
		InferenceRate:       math.Min(1, (float64(firings)/deltaSeconds)/200),
		ContradictionRate:   math.Min(1, (float64(contradictions)/deltaSeconds)/5),
		ResourceUtilization: math.Min(1, float64(queueLen)/2000),
	}
	if questionTimeoutSeconds > 0 {
		m.QuestionResponseTime = math.Max(0, 1-meanResponseSeconds/questionTimeoutSeconds)
	} else {
		m.QuestionResponseTime = 1
	}
	return m
}

// DetectIssues reports every condition spec §4.6 flags for the given
// metrics and queue length.
func DetectIssues(m Metrics, queueLen int) []Issue {
	var issues []Issue
	if m.ContradictionRate > 0.3 {
		issues = append(issues, IssueHighContradictions)
	}
	if m.InferenceRate < 0.1 && queueLen > 100 {
		issues = append(issues, IssueLowInferenceRate)
	}
	if m.ResourceUtilization > 0.8 {
		issues = append(issues, IssueHighResourceUtilization)
	}
	if m.QuestionResponseTime < 0.4 {
		issues = append(issues, IssueSlowQuestionResponse)
	}
	return issues
}

// Thresholds are the operating parameters the meta-reasoner adapts.
type Thresholds struct {
	InferenceThreshold float64
	BudgetThreshold    float64
	MaxPathLength      int
}

// AdaptationRate is the fixed step size spec §4.6 uses for every adjustment.
const AdaptationRate = 0.1

// Adapt applies spec §4.6's adaptation rules for every detected issue,
// returning the updated thresholds.
func Adapt(t Thresholds, issues []Issue) Thresholds {
	for _, issue := range issues {
		switch issue {
		case IssueHighContradictions:
			t.InferenceThreshold = math.Min(0.6, t.InferenceThreshold*(1+AdaptationRate))
		case IssueLowInferenceRate:
			t.InferenceThreshold = math.Max(0.05, t.InferenceThreshold*(1-AdaptationRate))
			t.BudgetThreshold = math.Max(0.01, t.BudgetThreshold*(1-0.05))
		case IssueHighResourceUtilization:
			t.BudgetThreshold = math.Min(0.25, t.BudgetThreshold*(1+0.2))
			if t.MaxPathLength-1 > 5 {
				t.MaxPathLength--
			} else {
				t.MaxPathLength = 5
			}
		}
	}
	return t
}

// ResolveFocus picks whichever condition currently dominates, per spec
// §4.6. Ties prefer contradiction-resolution over question-answering over
// default, matching the priority order contradictions are handled in.
func ResolveFocus(issues []Issue) Focus {
	hasContradiction, hasSlowQuestion := false, false
	for _, issue := range issues {
		switch issue {
		case IssueHighContradictions:
			hasContradiction = true
		case IssueSlowQuestionResponse:
			hasSlowQuestion = true
		}
	}
	switch {
	case hasContradiction:
		return FocusContradictionResolution
	case hasSlowQuestion:
		return FocusQuestionAnswering
	default:
		return FocusDefault
	}
}

// ResourceFractions are the normalized allocation fractions spec §4.6 keeps
// smoothly tracking the current bottleneck.
type ResourceFractions struct {
	Derivation float64
	Memory     float64
	Temporal   float64
}

// DefaultResourceFractions is the steady-state split.
func DefaultResourceFractions() ResourceFractions {
	return ResourceFractions{Derivation: 0.5, Memory: 0.3, Temporal: 0.2}
}

// AdjustResourceFractions nudges fractions toward favoring whichever
// component the current focus implicates, renormalizing to sum to 1.
func AdjustResourceFractions(f ResourceFractions, focus Focus, rate float64) ResourceFractions {
	target := f
	switch focus {
	case FocusContradictionResolution:
		target.Memory += rate
	case FocusQuestionAnswering:
		target.Derivation += rate
	default:
		return f
	}
	total := target.Derivation + target.Memory + target.Temporal
	return ResourceFractions{
		Derivation: target.Derivation / total,
		Memory:     target.Memory / total,
		Temporal:   target.Temporal / total,
	}
}

// RulePriority is spec §4.6's rule-priority formula, duplicated here (the
// derive package owns the canonical version on Rule itself) so the
// meta-reasoner can recommend a priority for a rule it only knows by name
// and aggregate success rate.
func RulePriority(attempts int, successRate float64) float64 {
	if attempts < 10 {
		return 1.0
	}
	return 0.5 + successRate
}
