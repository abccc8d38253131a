package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/config"
	"github.com/automenta/hypernars1-sub000/internal/events"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

func newStoreWithEdges(t *testing.T, cfg *config.Config, specs ...[3]string) *term.Store {
	t.Helper()
	s := term.NewStore(cfg.BeliefCapacity)
	for _, spec := range specs {
		s.AddHyperedge(spec[0], []string{spec[1], spec[2]}, term.AddOptions{
			Truth:  &truth.Value{F: 1.0, C: 0.9},
			Budget: &budget.Value{Priority: 0.8, Durability: 0.8, Quality: 0.8},
		})
	}
	return s
}

func TestInheritanceTransitivityFires(t *testing.T) {
	cfg := config.Default()
	s := newStoreWithEdges(t, cfg,
		[3]string{term.TypeInheritance, "A", "B"},
		[3]string{term.TypeInheritance, "B", "C"},
	)
	ab, _ := s.Get(term.ID(term.TypeInheritance, []string{"A", "B"}))

	e := NewEngine()
	ctx := Context{Store: s, Config: cfg, Edge: ab, Event: &events.Event{Budget: budget.Full()}}
	results := e.Fire(ctx)

	found := false
	for _, r := range results {
		for _, c := range r.Conclusions {
			if c.Type == term.TypeInheritance && c.Args[0] == "A" && c.Args[1] == "C" {
				found = true
				assert.InDelta(t, 1.0, c.Truth.F, 1e-9)
			}
		}
	}
	assert.True(t, found, "expected Inheritance(A,C) to be derived")
}

func TestSimilarityAnalogyFires(t *testing.T) {
	cfg := config.Default()
	s := newStoreWithEdges(t, cfg,
		[3]string{term.TypeSimilarity, "X", "Y"},
		[3]string{term.TypeInheritance, "X", "P"},
	)
	xy, _ := s.Get(term.ID(term.TypeSimilarity, []string{"X", "Y"}))

	e := NewEngine()
	ctx := Context{Store: s, Config: cfg, Edge: xy, Event: &events.Event{Budget: budget.Full()}}
	results := e.Fire(ctx)

	found := false
	for _, r := range results {
		for _, c := range r.Conclusions {
			if c.Type == term.TypeInheritance && c.Args[0] == "Y" && c.Args[1] == "P" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected Inheritance(Y,P) to be derived")
}

func TestEquivalenceExpandsToBothImplications(t *testing.T) {
	cfg := config.Default()
	s := term.NewStore(cfg.BeliefCapacity)
	s.AddHyperedge(term.TypeEquivalence, []string{"A", "B"}, term.AddOptions{})
	eq, _ := s.Get(term.ID(term.TypeEquivalence, []string{"A", "B"}))

	e := NewEngine()
	ctx := Context{Store: s, Config: cfg, Edge: eq, Event: &events.Event{Budget: budget.Full()}}
	results := e.Fire(ctx)

	var forward, backward bool
	for _, r := range results {
		for _, c := range r.Conclusions {
			if c.Type == term.TypeImplication && c.Args[0] == "A" && c.Args[1] == "B" {
				forward = true
			}
			if c.Type == term.TypeImplication && c.Args[0] == "B" && c.Args[1] == "A" {
				backward = true
			}
		}
	}
	assert.True(t, forward)
	assert.True(t, backward)
}

func TestRuleDisabledBelowSuccessThresholdAfter20Attempts(t *testing.T) {
	r := &Rule{Name: "x", Enabled: true, BasePriority: 1.0, Apply: func(Context) Result { return Result{Success: false} }}
	for i := 0; i < 20; i++ {
		r.RecordAttempt(false)
	}
	assert.False(t, r.Enabled)
}

func TestRuleReenabledAboveRecoveryThreshold(t *testing.T) {
	r := &Rule{Name: "x", Enabled: false, Attempts: 20, Successes: 0, BasePriority: 1.0}
	for i := 0; i < 30; i++ {
		r.RecordAttempt(true)
	}
	assert.True(t, r.Enabled)
}
