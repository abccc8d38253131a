package derive

import (
	"github.com/automenta/hypernars1-sub000/internal/temporal"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

func builtinRules() []*Rule {
	return []*Rule{
		inheritanceTransitivityRule(),
		similarityAnalogyRule(),
		implicationPropagationRule(),
		equivalenceRule(),
		temporalCompositionRule(),
	}
}

// typedNeighbors returns every edge of typ whose first argument is arg,
// excluding self.
func typedNeighbors(s *term.Store, typ, arg, excludeID string) []*term.Hyperedge {
	var out []*term.Hyperedge
	for _, id := range s.Index.ByArg(arg) {
		if id == excludeID {
			continue
		}
		e, ok := s.Get(id)
		if !ok || e.Type != typ || len(e.Args) < 1 || e.Args[0] != arg {
			continue
		}
		out = append(out, e)
	}
	return out
}

// inheritanceTransitivityRule: Inheritance(A,B) + Inheritance(B,C) -> Inheritance(A,C), deduction.
func inheritanceTransitivityRule() *Rule {
	return &Rule{
		Name:         "inheritance-transitivity",
		TriggerType:  term.TypeInheritance,
		BasePriority: 1.0,
		Enabled:      true,
		Apply: func(ctx Context) Result {
			if len(ctx.Edge.Args) != 2 {
				return Result{}
			}
			a, b := ctx.Edge.Args[0], ctx.Edge.Args[1]
			abTruth := ctx.Edge.GetTruth()
			res := Result{}
			for _, bc := range typedNeighbors(ctx.Store, term.TypeInheritance, b, ctx.Edge.ID) {
				c := bc.Args[1]
				if c == a {
					continue
				}
				ac := truth.Deduction(abTruth, bc.GetTruth())
				res.Conclusions = append(res.Conclusions, Conclusion{
					Type:      term.TypeInheritance,
					Args:      []string{a, c},
					Truth:     ac,
					Budget:    ctx.Event.Budget,
					Premises:  []string{ctx.Edge.ID, bc.ID},
					DerivedBy: "inheritance-transitivity",
				})
				res.Success = true
			}
			return res
		},
	}
}

// similarityAnalogyRule: Similarity(X,Y) + Inheritance(X,P) -> Inheritance(Y,P), analogy.
func similarityAnalogyRule() *Rule {
	return &Rule{
		Name:         "similarity-analogy",
		TriggerType:  term.TypeSimilarity,
		BasePriority: 0.9,
		Enabled:      true,
		Apply: func(ctx Context) Result {
			if len(ctx.Edge.Args) != 2 {
				return Result{}
			}
			x, y := ctx.Edge.Args[0], ctx.Edge.Args[1]
			xyTruth := ctx.Edge.GetTruth()
			res := Result{}
			for _, xp := range typedNeighbors(ctx.Store, term.TypeInheritance, x, "") {
				p := xp.Args[1]
				yp := truth.Analogy(xyTruth, xp.GetTruth())
				res.Conclusions = append(res.Conclusions, Conclusion{
					Type:      term.TypeInheritance,
					Args:      []string{y, p},
					Truth:     yp,
					Budget:    ctx.Event.Budget,
					Premises:  []string{ctx.Edge.ID, xp.ID},
					DerivedBy: "similarity-analogy",
				})
				res.Success = true
			}
			return res
		},
	}
}

// implicationPropagationRule: Implication(A,B), A active -> enqueue
// activation of B. The rule does not assert a new belief; it requests
// conditional propagation, which the kernel turns into a queued event with
// deduction-derived budget.
func implicationPropagationRule() *Rule {
	return &Rule{
		Name:         "implication-propagation",
		TriggerType:  term.TypeImplication,
		BasePriority: 0.85,
		Enabled:      true,
		Apply: func(ctx Context) Result {
			if len(ctx.Edge.Args) != 2 {
				return Result{}
			}
			a, b := ctx.Edge.Args[0], ctx.Edge.Args[1]
			aEdge, ok := ctx.Store.Get(a)
			if !ok || aEdge.GetTruth().Expectation() <= 0.5 {
				return Result{}
			}
			conditioned := truth.Deduction(aEdge.GetTruth(), ctx.Edge.GetTruth())
			return Result{
				Activations: []Activation{{
					Target: b,
					Budget: ctx.Event.Budget.Scale(conditioned.Expectation()),
				}},
				Success: true,
			}
		},
	}
}

// equivalenceRule: Equivalence(A,B) -> Implication(A,B) and Implication(B,A),
// identity-preserving (same truth as the equivalence belief on both sides).
func equivalenceRule() *Rule {
	return &Rule{
		Name:         "equivalence-expansion",
		TriggerType:  term.TypeEquivalence,
		BasePriority: 0.8,
		Enabled:      true,
		Apply: func(ctx Context) Result {
			if len(ctx.Edge.Args) != 2 {
				return Result{}
			}
			a, b := ctx.Edge.Args[0], ctx.Edge.Args[1]
			t := ctx.Edge.GetTruth()
			return Result{
				Conclusions: []Conclusion{
					{Type: term.TypeImplication, Args: []string{a, b}, Truth: t, Budget: ctx.Event.Budget, Premises: []string{ctx.Edge.ID}, DerivedBy: "equivalence-expansion"},
					{Type: term.TypeImplication, Args: []string{b, a}, Truth: t, Budget: ctx.Event.Budget, Premises: []string{ctx.Edge.ID}, DerivedBy: "equivalence-expansion"},
				},
				Success: true,
			}
		},
	}
}

// temporalCompositionRule: TemporalRelation(A,B,r1) + TemporalRelation(B,C,r2)
// -> TemporalRelation(A,C,r') for every r' in compose(r1,r2), deduction
// scaled by 0.7 (spec §4.3). Ambiguous compositions assert every candidate
// at further-reduced confidence.
func temporalCompositionRule() *Rule {
	return &Rule{
		Name:         "temporal-composition",
		TriggerType:  term.TypeTemporalRelation,
		BasePriority: 0.75,
		Enabled:      true,
		Apply: func(ctx Context) Result {
			if len(ctx.Edge.Args) != 3 {
				return Result{}
			}
			a, b, r1 := ctx.Edge.Args[0], ctx.Edge.Args[1], temporal.Relation(ctx.Edge.Args[2])
			abTruth := ctx.Edge.GetTruth()
			res := Result{}
			for _, bcID := range ctx.Store.Index.ByArg(b) {
				bc, ok := ctx.Store.Get(bcID)
				if !ok || bc.Type != term.TypeTemporalRelation || len(bc.Args) != 3 || bc.Args[0] != b {
					continue
				}
				c := bc.Args[1]
				if c == a {
					continue
				}
				r2 := temporal.Relation(bc.Args[2])
				candidates := temporal.Compose(r1, r2)
				if len(candidates) == 0 {
					continue
				}
				perCandidateDiscount := 1.0 / float64(len(candidates))
				base := truth.Deduction(abTruth, bc.GetTruth()).Scale(0.7)
				for _, rprime := range candidates {
					ac := base.Scale(perCandidateDiscount)
					res.Conclusions = append(res.Conclusions, Conclusion{
						Type:      term.TypeTemporalRelation,
						Args:      []string{a, c, string(rprime)},
						Truth:     ac,
						Budget:    ctx.Event.Budget,
						Premises:  []string{ctx.Edge.ID, bc.ID},
						DerivedBy: "temporal-composition",
					})
				}
				res.Success = true
			}
			return res
		},
	}
}
