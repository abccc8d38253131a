// Package term implements the kernel's content-addressed hypergraph: terms,
// hyperedges, and their beliefs (spec §3, §4.1).
package term

import (
	"fmt"
	"strings"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// Structural and temporal compound types named in spec §3.
const (
	TypeTerm            = "Term"
	TypeVariable        = "Variable"
	TypeInheritance     = "Inheritance"
	TypeSimilarity      = "Similarity"
	TypeInstance        = "Instance"
	TypeProperty        = "Property"
	TypeImplication     = "Implication"
	TypeEquivalence     = "Equivalence"
	TypeConjunction     = "Conjunction"
	TypeDisjunction     = "Disjunction"
	TypeProduct         = "Product"
	TypeNegation        = "Negation"
	TypeTimeInterval    = "TimeInterval"
	TypeTemporalRelation = "TemporalRelation"
	TypeQuestion        = "Question"
)

// IsVariable reports whether an atom token is a variable (leading $ or ?).
func IsVariable(token string) bool {
	return strings.HasPrefix(token, "$") || strings.HasPrefix(token, "?")
}

// ID computes the content address of a (type, args) pair. An atomic Term
// has its name as its single arg and its ID is that bare name; every other
// type renders as
// Type(arg1,arg2,...). The function is pure: identical inputs always yield
// the identical ID (spec §3 invariant).
func ID(typ string, args []string) string {
	if typ == TypeTerm && len(args) == 1 {
		return args[0]
	}
	return fmt.Sprintf("%s(%s)", typ, strings.Join(args, ","))
}

// Atom builds the ID for a bare atomic term, e.g. "cat" or "$x".
func Atom(name string) string {
	return ID(TypeTerm, []string{name})
}

// Belief is one piece of evidence attached to a hyperedge (spec §3/§4.1).
type Belief struct {
	Truth      truth.Value
	Budget     budget.Value
	Premises   []string
	DerivedBy  string
	Context    string
	Timestamp  int64 // unix nanos; monotonic within a kernel instance
}

// samePremises reports whether two premise sets are identical regardless of
// order, used to decide whether a new belief merges in place (spec §3
// invariant, Open Question (i) resolved to "merge in place").
func samePremises(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		// Direct assertions (no premises) are independent observations,
		// never deduplicated against each other — only derived beliefs
		// sharing provenance merge in place.
		return false
	}
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, p := range a {
		seen[p]++
	}
	for _, p := range b {
		seen[p]--
	}
	for _, c := range seen {
		if c != 0 {
			return false
		}
	}
	return true
}

// Hyperedge is a typed relation over term arguments carrying an ordered,
// capacity-bounded list of beliefs (spec §3).
type Hyperedge struct {
	ID      string
	Type    string
	Args    []string
	Beliefs []*Belief
}

// GetStrongestBelief returns the head of the belief list, or nil if the
// edge carries no beliefs.
func (h *Hyperedge) GetStrongestBelief() *Belief {
	if len(h.Beliefs) == 0 {
		return nil
	}
	return h.Beliefs[0]
}

// GetTruth returns the strongest belief's truth, or the unknown truth value
// if the edge has no beliefs (spec §3).
func (h *Hyperedge) GetTruth() truth.Value {
	if b := h.GetStrongestBelief(); b != nil {
		return b.Truth
	}
	return truth.Unknown()
}

// sortAndTruncate keeps Beliefs sorted by budget priority descending and
// truncates to capacity, evicting the lowest-priority beliefs (spec §3
// invariant).
func (h *Hyperedge) sortAndTruncate(capacity int) {
	// insertion sort: belief lists are short (<= capacity), so this stays
	// linear-ish in practice and avoids pulling in sort for one call site.
	for i := 1; i < len(h.Beliefs); i++ {
		j := i
		for j > 0 && h.Beliefs[j-1].Budget.Priority < h.Beliefs[j].Budget.Priority {
			h.Beliefs[j-1], h.Beliefs[j] = h.Beliefs[j], h.Beliefs[j-1]
			j--
		}
	}
	if capacity > 0 && len(h.Beliefs) > capacity {
		h.Beliefs = h.Beliefs[:capacity]
	}
}

// ReviseResult reports whether a revision changed the edge's belief set and,
// if so, which belief is now the head of propagation interest.
type ReviseResult struct {
	NeedsUpdate bool
	NewBelief   *Belief
}

// Revise merges a newly observed belief into the edge's belief table,
// following spec §4.1: an incoming belief with an identical premise set to
// an existing one replaces it in place (via truth revision); otherwise it is
// appended, the list is re-sorted by priority, and truncated to capacity.
func (h *Hyperedge) Revise(nb *Belief, capacity int) ReviseResult {
	for i, existing := range h.Beliefs {
		if samePremises(existing.Premises, nb.Premises) {
			merged := *existing
			merged.Truth = truth.Revise(existing.Truth, nb.Truth, existing.Budget.Priority, nb.Budget.Priority)
			merged.Budget = existing.Budget.Merge(nb.Budget)
			merged.Timestamp = nb.Timestamp
			if nb.DerivedBy != "" {
				merged.DerivedBy = nb.DerivedBy
			}
			h.Beliefs[i] = &merged
			h.sortAndTruncate(capacity)
			return ReviseResult{NeedsUpdate: true, NewBelief: &merged}
		}
	}
	h.Beliefs = append(h.Beliefs, nb)
	h.sortAndTruncate(capacity)
	return ReviseResult{NeedsUpdate: true, NewBelief: nb}
}

// ArgTokens returns every atomic token referenced by the edge's arguments,
// used to populate the byArg index (spec §3 Indexes).
func (h *Hyperedge) ArgTokens() []string {
	return h.Args
}
