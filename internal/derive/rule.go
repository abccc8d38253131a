// Package derive implements the kernel's rule-based derivation engine:
// inheritance/similarity/implication/equivalence and temporal composition
// (spec §4.3).
package derive

import (
	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/config"
	"github.com/automenta/hypernars1-sub000/internal/events"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// Conclusion is a new (or strengthened) hyperedge a rule wants asserted.
type Conclusion struct {
	Type      string
	Args      []string
	Truth     truth.Value
	Budget    budget.Value
	Premises  []string
	DerivedBy string
}

// Activation is a request to enqueue conditional propagation toward an
// existing edge without asserting a new belief (the Implication rule's
// "enqueue activation of B", spec §4.3).
type Activation struct {
	Target string
	Budget budget.Value
}

// Context is everything a rule needs to inspect the graph and propose
// conclusions. Rules never mutate the store directly — the engine applies
// Conclusions on the rule's behalf so contradiction detection and event
// emission stay centralized in the kernel.
type Context struct {
	Store  *term.Store
	Config *config.Config
	Event  *events.Event
	Edge   *term.Hyperedge
	Now    int64
}

// Result is what a rule produces when applied to an event.
type Result struct {
	Conclusions []Conclusion
	Activations []Activation
	// Success mirrors spec §4.3's productivity accounting: true if the
	// firing yielded a novel edge or strengthened an existing belief's
	// expectation by more than epsilon.
	Success bool
	Cost    float64
	Value   float64
}

// Rule is a single derivation rule keyed by the trigger edge type it
// listens for (spec §4.3's table).
type Rule struct {
	Name          string
	TriggerType   string
	BasePriority  float64
	Enabled       bool
	Attempts      int
	Successes     int
	Apply         func(ctx Context) Result
}

// Priority returns the rule's effective priority. Per spec §4.6, once a
// rule has at least 10 attempts its priority is read from observed success
// rate (0.5 + successRate); until then it defaults to 1.0, scaled by the
// rule's configured base priority.
func (r *Rule) Priority() float64 {
	if r.Attempts >= 10 {
		return r.BasePriority * (0.5 + r.SuccessRate())
	}
	return r.BasePriority
}

// SuccessRate is successes/attempts, or 0 with no attempts yet.
func (r *Rule) SuccessRate() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Attempts)
}

// RecordAttempt updates the rule's productivity counters and applies the
// enable/disable hysteresis of spec §4.3: disable below 0.1 success rate
// after >=20 attempts, re-enable once it climbs back above 0.4.
func (r *Rule) RecordAttempt(success bool) {
	r.Attempts++
	if success {
		r.Successes++
	}
	if r.Attempts >= 20 {
		rate := r.SuccessRate()
		if r.Enabled && rate < 0.1 {
			r.Enabled = false
		} else if !r.Enabled && rate > 0.4 {
			r.Enabled = true
		}
	}
}
