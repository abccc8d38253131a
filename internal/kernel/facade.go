package kernel

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/kerrors"
	"github.com/automenta/hypernars1-sub000/internal/parser"
	"github.com/automenta/hypernars1-sub000/internal/question"
	"github.com/automenta/hypernars1-sub000/internal/temporal"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// assertNode mirrors parser.Assert but routes every nested assertion
// through addHyperedgeLocked so each sub-term gets its own contradiction
// check, event emission, and propagation event (spec §4.1, §4.8).
func (k *Kernel) assertNode(n *parser.Node, opts term.AddOptions) string {
	if n.Type == "Atom" {
		return k.addHyperedgeLocked(term.TypeTerm, []string{n.Name}, opts)
	}
	args := make([]string, len(n.Args))
	for i, c := range n.Args {
		args[i] = k.assertNode(c, term.AddOptions{})
	}
	return k.addHyperedgeLocked(n.Type, args, opts)
}

// resolvePatternToken renders a parsed node into the raw token question.Unify
// compares against edge arguments, without asserting anything — variables
// and the wildcard pass through as literal tokens (spec §4.7).
func resolvePatternToken(n *parser.Node) string {
	if n.Type == "Atom" {
		return n.Name
	}
	args := make([]string, len(n.Args))
	for i, c := range n.Args {
		args[i] = resolvePatternToken(c)
	}
	return term.ID(n.Type, args)
}

func nodeToPattern(n *parser.Node) question.Pattern {
	args := make([]string, len(n.Args))
	for i, c := range n.Args {
		args[i] = resolvePatternToken(c)
	}
	return question.Pattern{Type: n.Type, Args: args}
}

// NAL parses and asserts one belief-language statement (spec §4.8, §6
// `nal`). It returns the top-level hyperedge's ID.
func (k *Kernel) NAL(src string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	stmt, err := parser.NewParser(src).ParseStatement()
	if err != nil {
		k.logf("warn", "rejected NAL statement %q: %v", src, err)
		return "", fmt.Errorf("parse statement: %w", err)
	}
	if stmt.IsQuestion {
		k.logf("warn", "rejected NAL statement %q: is a question", src)
		return "", fmt.Errorf("%w: statement is a question, use NALQ", kerrors.ErrInvalidInput)
	}
	opts := term.AddOptions{Truth: stmt.Truth, Budget: stmt.Budget, Timestamp: k.clock()}
	return k.assertNode(stmt.Expr, opts), nil
}

// AskOptions carries the optional tuning spec §6's `ask`/`nalq` accept.
type AskOptions struct {
	TimeoutMS int
	Urgency   float64
}

// NALQ parses a question-terminated statement and registers it as a
// pending question (spec §4.8, §6 `nalq`).
func (k *Kernel) NALQ(src string, opts AskOptions) (*question.Pending, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	stmt, err := parser.NewParser(src).ParseStatement()
	if err != nil {
		k.logf("warn", "rejected NALQ statement %q: %v", src, err)
		return nil, fmt.Errorf("parse statement: %w", err)
	}
	if !stmt.IsQuestion {
		k.logf("warn", "rejected NALQ statement %q: not a question", src)
		return nil, fmt.Errorf("%w: statement is not a question, use NAL", kerrors.ErrInvalidInput)
	}
	return k.askLocked(nodeToPattern(stmt.Expr), opts), nil
}

// Ask registers pattern as a pending question directly, without parsing
// belief-language source (spec §6 `ask`).
func (k *Kernel) Ask(pattern question.Pattern, opts AskOptions) *question.Pending {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.askLocked(pattern, opts)
}

func (k *Kernel) askLocked(pattern question.Pattern, opts AskOptions) *question.Pending {
	timeoutMS := opts.TimeoutMS
	if timeoutMS <= 0 {
		timeoutMS = k.Config.QuestionTimeoutMS
	}
	urgency := budget.Clamp01(opts.Urgency)
	scaledMS := float64(timeoutMS) * (1.5 - urgency)
	timeoutNS := int64(scaledMS) * int64(time.Millisecond)

	pq := k.Questions.Ask(pattern, k.clock(), timeoutNS)
	k.Questions.FullScan(k.Store, pq)
	k.Memory.PushContext(pq.ID)
	return pq
}

// QueryResult is one match returned by Query (spec §6 `query`).
type QueryResult struct {
	ID          string
	Bindings    map[string]string
	Expectation float64
	Truth       truth.Value
}

// Query matches pattern against every edge of its type, optionally
// widening via the semantic index when nothing matches exactly, and
// returns the top `limit` results by expectation (spec §6 `query`).
func (k *Kernel) Query(pattern question.Pattern, limit int, minExpectation float64) []QueryResult {
	k.mu.RLock()
	defer k.mu.RUnlock()

	out := k.queryExact(pattern, minExpectation)
	if len(out) == 0 && k.Semantic != nil {
		out = k.querySemantic(pattern, minExpectation)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Expectation > out[j].Expectation })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (k *Kernel) queryExact(pattern question.Pattern, minExpectation float64) []QueryResult {
	var out []QueryResult
	for _, id := range k.Store.IDsByType(pattern.Type) {
		edge, ok := k.Store.Get(id)
		if !ok {
			continue
		}
		bindings, ok := question.Unify(pattern, edge.Type, edge.Args)
		if !ok {
			continue
		}
		tv := edge.GetTruth()
		exp := tv.Expectation()
		if exp < minExpectation {
			continue
		}
		out = append(out, QueryResult{ID: id, Bindings: bindings, Expectation: exp, Truth: tv})
	}
	return out
}

func (k *Kernel) querySemantic(pattern question.Pattern, minExpectation float64) []QueryResult {
	matches, err := k.Semantic.SimilarTerms(context.Background(), renderPatternQuery(pattern), 5)
	if err != nil {
		return nil
	}
	var out []QueryResult
	for _, m := range matches {
		edge, ok := k.Store.Get(m.ID)
		if !ok || edge.Type != pattern.Type {
			continue
		}
		tv := edge.GetTruth()
		exp := tv.Expectation()
		if exp < minExpectation {
			continue
		}
		out = append(out, QueryResult{ID: edge.ID, Bindings: map[string]string{}, Expectation: exp, Truth: tv})
	}
	return out
}

func renderPatternQuery(p question.Pattern) string {
	s := p.Type + "("
	for i, a := range p.Args {
		if i > 0 {
			s += ","
		}
		s += a
	}
	return s + ")"
}

// BeliefView is one belief's externally visible fields (spec §6
// `getBeliefs`).
type BeliefView struct {
	Truth       truth.Value
	Budget      budget.Value
	Expectation float64
}

// GetBeliefs returns every belief held on id, strongest first.
func (k *Kernel) GetBeliefs(id string) []BeliefView {
	k.mu.RLock()
	defer k.mu.RUnlock()
	edge, ok := k.Store.Get(id)
	if !ok {
		return nil
	}
	out := make([]BeliefView, len(edge.Beliefs))
	for i, b := range edge.Beliefs {
		out[i] = BeliefView{Truth: b.Truth, Budget: b.Budget, Expectation: b.Truth.Expectation()}
	}
	return out
}

// Revise applies a direct belief update to an existing edge (spec §6
// `revise`), returning false if the edge does not exist.
func (k *Kernel) Revise(id string, t *truth.Value, b *budget.Value) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	res, ok := k.Store.Revise(id, t, b)
	if !ok {
		return false
	}
	if res.NeedsUpdate {
		k.emit(EventRevision, map[string]any{"id": id})
		for _, rec := range k.Contradictions.Detect(res.Edge) {
			k.contradictionsSinceTick++
			k.emit(EventContradictionDetected, map[string]any{"id": rec.ID, "edge": rec.HyperedgeID})
		}
	}
	return true
}

// RemoveHyperedge deletes id from the store and every index (spec §6
// `removeHyperedge`).
func (k *Kernel) RemoveHyperedge(id string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	ok := k.Store.Remove(id)
	if ok {
		delete(k.activations, id)
	}
	return ok
}

// Structural helpers (spec §6): thin convenience constructors over
// AddHyperedge using default truth/budget, the way a direct assertion of
// "cat --> animal" carries no annotation.

func (k *Kernel) Term(name string) string {
	return k.AddHyperedge(term.TypeTerm, []string{name}, term.AddOptions{})
}

func (k *Kernel) Inheritance(sub, sup string) string {
	return k.AddHyperedge(term.TypeInheritance, []string{sub, sup}, term.AddOptions{})
}

func (k *Kernel) Similarity(a, b string) string {
	return k.AddHyperedge(term.TypeSimilarity, []string{a, b}, term.AddOptions{})
}

func (k *Kernel) Implication(antecedent, consequent string) string {
	return k.AddHyperedge(term.TypeImplication, []string{antecedent, consequent}, term.AddOptions{})
}

func (k *Kernel) Equivalence(a, b string) string {
	return k.AddHyperedge(term.TypeEquivalence, []string{a, b}, term.AddOptions{})
}

func (k *Kernel) Instance(instance, concept string) string {
	return k.AddHyperedge(term.TypeInstance, []string{instance, concept}, term.AddOptions{})
}

func (k *Kernel) Property(subject, property string) string {
	return k.AddHyperedge(term.TypeProperty, []string{subject, property}, term.AddOptions{})
}

func (k *Kernel) Conjunction(args ...string) string {
	return k.AddHyperedge(term.TypeConjunction, args, term.AddOptions{})
}

func (k *Kernel) Disjunction(args ...string) string {
	return k.AddHyperedge(term.TypeDisjunction, args, term.AddOptions{})
}

func (k *Kernel) Product(args ...string) string {
	return k.AddHyperedge(term.TypeProduct, args, term.AddOptions{})
}

// Temporal helpers (spec §6): interval, relate, constraint, predict,
// getContext.

// Interval records termID's [start,end] span as a TimeInterval edge, the
// unit Relate consults (spec §3 TimeInterval).
func (k *Kernel) Interval(termID string, start, end int64) string {
	id := k.AddHyperedge(term.TypeTimeInterval, []string{termID, strconv.FormatInt(start, 10), strconv.FormatInt(end, 10)}, term.AddOptions{})
	k.mu.Lock()
	k.Store.Index.SetTemporalInterval(id, start, end)
	k.mu.Unlock()
	return id
}

func (k *Kernel) findInterval(termID string) string {
	for _, id := range k.Store.Index.ByType(term.TypeTimeInterval) {
		if edge, ok := k.Store.Get(id); ok && len(edge.Args) > 0 && edge.Args[0] == termID {
			return id
		}
	}
	return ""
}

// Relate computes the Allen relation between two terms' recorded
// intervals, asserting it as a TemporalRelation edge (spec §4.3 Allen
// interval algebra).
func (k *Kernel) Relate(aTerm, bTerm string) (temporal.Relation, bool) {
	k.mu.Lock()
	aID, bID := k.findInterval(aTerm), k.findInterval(bTerm)
	if aID == "" || bID == "" {
		k.mu.Unlock()
		return "", false
	}
	s1, e1, ok1 := k.Store.Index.TemporalInterval(aID)
	s2, e2, ok2 := k.Store.Index.TemporalInterval(bID)
	k.mu.Unlock()
	if !ok1 || !ok2 {
		return "", false
	}
	rel := temporal.Relate(s1, e1, s2, e2)
	k.AddHyperedge(term.TypeTemporalRelation, []string{aTerm, bTerm, string(rel)}, term.AddOptions{})
	return rel, true
}

// Constraint asserts a qualitative TemporalRelation directly, for terms
// whose exact intervals are unknown — the temporal-composition rule can
// still chain it with other constraints via Allen composition.
func (k *Kernel) Constraint(aTerm, bTerm string, rel temporal.Relation, tv *truth.Value) string {
	return k.AddHyperedge(term.TypeTemporalRelation, []string{aTerm, bTerm, string(rel)}, term.AddOptions{Truth: tv})
}

// Predict walks forward from termID along "before"/"meets" TemporalRelation
// edges up to horizon hops (or the configured temporal horizon), returning
// the terms it expects to follow.
func (k *Kernel) Predict(termID string, horizon int) []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if horizon <= 0 {
		horizon = k.Config.TemporalHorizon
	}
	seen := map[string]bool{termID: true}
	frontier := []string{termID}
	var out []string
	for h := 0; h < horizon && len(frontier) > 0; h++ {
		var next []string
		for _, cur := range frontier {
			for _, id := range k.Store.Index.ByType(term.TypeTemporalRelation) {
				edge, ok := k.Store.Get(id)
				if !ok || len(edge.Args) < 3 || edge.Args[0] != cur {
					continue
				}
				rel := edge.Args[2]
				if rel != string(temporal.Before) && rel != string(temporal.Meets) {
					continue
				}
				if target := edge.Args[1]; !seen[target] {
					seen[target] = true
					out = append(out, target)
					next = append(next, target)
				}
			}
		}
		frontier = next
	}
	return out
}

// GetContext returns every term ID reachable from termID within radius
// hops of the argument-adjacency graph, used to inspect what a term's
// reasoning neighborhood currently contains (spec §6 `getContext`).
func (k *Kernel) GetContext(termID string, radius int) []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if radius <= 0 {
		radius = 1
	}
	seen := map[string]bool{termID: true}
	frontier := []string{termID}
	var out []string
	for h := 0; h < radius && len(frontier) > 0; h++ {
		var next []string
		for _, cur := range frontier {
			for _, nb := range k.Store.Index.Neighbors(cur) {
				if !seen[nb] {
					seen[nb] = true
					out = append(out, nb)
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}
	return out
}
