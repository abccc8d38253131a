// Package temporal implements Allen's interval algebra: the 13 qualitative
// relations on time intervals and their composition table (spec §4.3).
package temporal

import "sort"

// Relation is one of Allen's 13 interval relations.
type Relation string

const (
	Before       Relation = "before"
	After        Relation = "after"
	Meets        Relation = "meets"
	MetBy        Relation = "metBy"
	Overlaps     Relation = "overlaps"
	OverlappedBy Relation = "overlappedBy"
	Starts       Relation = "starts"
	StartedBy    Relation = "startedBy"
	During       Relation = "during"
	Contains     Relation = "contains"
	Finishes     Relation = "finishes"
	FinishedBy   Relation = "finishedBy"
	Equals       Relation = "equals"
)

// inverses maps every relation to its inverse (spec §4.3).
var inverses = map[Relation]Relation{
	Before: After, After: Before,
	Meets: MetBy, MetBy: Meets,
	Overlaps: OverlappedBy, OverlappedBy: Overlaps,
	Starts: StartedBy, StartedBy: Starts,
	During: Contains, Contains: During,
	Finishes: FinishedBy, FinishedBy: Finishes,
	Equals: Equals,
}

// Inverse returns r's inverse relation.
func Inverse(r Relation) Relation {
	if inv, ok := inverses[r]; ok {
		return inv
	}
	return r
}

// baseRelations are the seven relations spec §4.3 singles out as primitive;
// the other six relations are their inverses.
var baseRelations = map[Relation]bool{
	Before: true, Meets: true, Overlaps: true, Starts: true,
	During: true, Finishes: true, Equals: true,
}

var allRelations = []Relation{
	Before, After, Meets, MetBy, Overlaps, OverlappedBy,
	Starts, StartedBy, During, Contains, Finishes, FinishedBy, Equals,
}

var relationOrder = func() map[Relation]int {
	m := make(map[Relation]int, len(allRelations))
	for i, r := range allRelations {
		m[r] = i
	}
	return m
}()

const (
	refStart = int64(0)
	refEnd   = int64(100)
	refSpan  = refEnd - refStart
)

// genLens are the interval lengths used to construct representative
// endpoint triples when deriving the composition table below: enough
// variety to surface every qualitatively distinct outcome a composition can
// have (e.g. before∘during admits five different relations depending on
// relative sizes) while staying well inside refSpan.
var genLens = []int64{1, 3, 11, 40}

// candidatesAsLeft returns endpoint pairs (s,e) such that
// Relate(s, e, rs, re) == rel: every qualitatively distinct way an interval
// can stand in relation rel to the reference interval [rs,re]. Each branch
// mirrors the matching case in Relate below, just solved for the unknown
// endpoints instead of testing given ones.
func candidatesAsLeft(rel Relation, rs, re int64) [][2]int64 {
	var out [][2]int64
	switch rel {
	case Equals:
		out = append(out, [2]int64{rs, re})
	case Before:
		for _, l := range genLens {
			out = append(out, [2]int64{rs - 2 - l, rs - 2})
		}
	case After:
		for _, l := range genLens {
			out = append(out, [2]int64{re + 2, re + 2 + l})
		}
	case Meets:
		for _, l := range genLens {
			out = append(out, [2]int64{rs - l, rs})
		}
	case MetBy:
		for _, l := range genLens {
			out = append(out, [2]int64{re, re + l})
		}
	case Starts:
		for _, l := range genLens {
			if l < refSpan {
				out = append(out, [2]int64{rs, rs + l})
			}
		}
	case StartedBy:
		for _, l := range genLens {
			out = append(out, [2]int64{rs, re + l})
		}
	case Finishes:
		for _, l := range genLens {
			if l < refSpan {
				out = append(out, [2]int64{rs + l, re})
			}
		}
	case FinishedBy:
		for _, l := range genLens {
			out = append(out, [2]int64{rs - l, re})
		}
	case During:
		for _, l1 := range genLens {
			for _, l2 := range genLens {
				if l1+l2 < refSpan {
					out = append(out, [2]int64{rs + l1, re - l2})
				}
			}
		}
	case Contains:
		for _, l1 := range genLens {
			for _, l2 := range genLens {
				out = append(out, [2]int64{rs - l1, re + l2})
			}
		}
	case Overlaps:
		for _, l1 := range genLens {
			for _, l2 := range genLens {
				if l2 < refSpan {
					out = append(out, [2]int64{rs - l1, rs + l2})
				}
			}
		}
	case OverlappedBy:
		for _, l1 := range genLens {
			for _, l2 := range genLens {
				if l1 < refSpan {
					out = append(out, [2]int64{rs + l1, re + l2})
				}
			}
		}
	}
	return out
}

// candidatesAsRight returns endpoint pairs (s,e) such that
// Relate(rs, re, s, e) == rel. That condition is equivalent to
// Relate(s, e, rs, re) == Inverse(rel), so it is built by reusing
// candidatesAsLeft rather than duplicating the case analysis a second time
// with the operand order flipped.
func candidatesAsRight(rel Relation, rs, re int64) [][2]int64 {
	return candidatesAsLeft(Inverse(rel), rs, re)
}

// composeTable is derived once, at package init, by constructing
// representative intervals A, B, C with Relate(A,B)==r1 and Relate(B,C)==r2
// for every pair of relations, then collecting every Relate(A,C) that
// results. This is the same case-enumeration method used to derive Allen's
// original composition table, run directly against Relate instead of
// transcribed by hand — a hand-typed 13×13 table is exactly the kind of
// thing that silently drifts from Relate's own definition, and the earlier
// recursive inverse-reduction approach never reached a base-case lookup at
// all when exactly one side was a non-base relation.
var composeTable = buildComposeTable()

func buildComposeTable() map[[2]Relation][]Relation {
	table := make(map[[2]Relation][]Relation, len(allRelations)*len(allRelations))
	for _, r1 := range allRelations {
		lefts := candidatesAsLeft(r1, refStart, refEnd)
		for _, r2 := range allRelations {
			rights := candidatesAsRight(r2, refStart, refEnd)
			seen := make(map[Relation]bool)
			var result []Relation
			for _, a := range lefts {
				for _, c := range rights {
					rel := Relate(a[0], a[1], c[0], c[1])
					if !seen[rel] {
						seen[rel] = true
						result = append(result, rel)
					}
				}
			}
			sort.Slice(result, func(i, j int) bool { return relationOrder[result[i]] < relationOrder[result[j]] })
			table[[2]Relation{r1, r2}] = result
		}
	}
	return table
}

// Compose returns every relation consistent with r1 ∘ r2, per spec §4.3.
func Compose(r1, r2 Relation) []Relation {
	rs := composeTable[[2]Relation{r1, r2}]
	out := make([]Relation, len(rs))
	copy(out, rs)
	return out
}

// Relate computes the exact Allen relation between two closed intervals
// [s1,e1] and [s2,e2].
func Relate(s1, e1, s2, e2 int64) Relation {
	switch {
	case s1 == s2 && e1 == e2:
		return Equals
	case e1 < s2:
		return Before
	case e2 < s1:
		return After
	case e1 == s2:
		return Meets
	case e2 == s1:
		return MetBy
	case s1 == s2 && e1 < e2:
		return Starts
	case s1 == s2 && e1 > e2:
		return StartedBy
	case e1 == e2 && s1 > s2:
		return Finishes
	case e1 == e2 && s1 < s2:
		return FinishedBy
	case s1 > s2 && e1 < e2:
		return During
	case s1 < s2 && e1 > e2:
		return Contains
	case s1 < s2 && s2 < e1 && e1 < e2:
		return Overlaps
	default:
		return OverlappedBy
	}
}
