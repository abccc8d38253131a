// Package truth implements the kernel's uncertainty arithmetic: the
// frequency/confidence/priority/doubt truth tuple and its revision and
// derivation operators.
package truth

import "math"

// Value is the (frequency, confidence, priority, doubt) truth tuple of
// spec §3. All four components are clamped to [0,1].
type Value struct {
	F float64
	C float64
	P float64
	D float64
}

// Unknown is the default truth assigned to an edge with no beliefs.
func Unknown() Value {
	return Value{F: 0.5, C: 0.1}
}

// Certain returns the default truth assigned on first assertion (f=1.0, c=0.9).
func Certain() Value {
	return Value{F: 1.0, C: 0.9}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Expectation is the NARS-standard expectation, scaled by (1-doubt):
// c*(f-0.5)+0.5, then *(1-d).
func (v Value) Expectation() float64 {
	e := v.C*(v.F-0.5) + 0.5
	return clamp01(e) * (1 - v.D)
}

// Revise combines two beliefs about the same proposition. Frequency is the
// priority-weighted average of the two frequencies; confidence follows the
// standard NARS "both agree" combination; doubt accumulates with observed
// disagreement.
func Revise(t1, t2 Value, w1, w2 float64) Value {
	if w1+w2 == 0 {
		w1, w2 = 1, 1
	}
	f := (t1.F*w1 + t2.F*w2) / (w1 + w2)
	c := 1 - (1-t1.C)*(1-t2.C)
	p := math.Max(t1.P, t2.P)
	d := clamp01(t1.D + math.Abs(t1.F-t2.F))
	return Value{F: clamp01(f), C: clamp01(c), P: clamp01(p), D: d}
}

// Deduction implements the deduction truth function: f=f1*f2, c=c1*c2.
func Deduction(t1, t2 Value) Value {
	return Value{F: clamp01(t1.F * t2.F), C: clamp01(t1.C * t2.C), P: math.Max(t1.P, t2.P)}
}

// Analogy implements the analogy truth function: f=f1*f2, c=c1*c2*f2.
func Analogy(t1, t2 Value) Value {
	return Value{F: clamp01(t1.F * t2.F), C: clamp01(t1.C * t2.C * t2.F), P: math.Max(t1.P, t2.P)}
}

// Abduction is a variant of analogy weighted by t1's frequency instead of t2's.
func Abduction(t1, t2 Value) Value {
	return Value{F: clamp01(t1.F * t2.F), C: clamp01(t1.C * t2.C * t1.F), P: math.Max(t1.P, t2.P)}
}

// Induction is a variant of deduction that discounts confidence by the
// complement of the first term's frequency, reflecting weaker generalization
// from a single observed instance.
func Induction(t1, t2 Value) Value {
	return Value{F: clamp01(t1.F * t2.F), C: clamp01(t1.C * t2.C * (1 - (1 - t1.F))), P: math.Max(t1.P, t2.P)}
}

// Negate inverts frequency, leaving confidence/priority/doubt untouched.
func Negate(t Value) Value {
	t.F = 1 - t.F
	return t
}

// Scale attenuates confidence by k, used when a rule fires with reduced
// certainty (e.g. temporal composition ambiguity, §4.3).
func (v Value) Scale(k float64) Value {
	v.C = clamp01(v.C * k)
	return v
}

// Equivalent reports whether two truth values are within epsilon on both
// frequency and confidence.
func (v Value) Equivalent(o Value, eps float64) bool {
	return math.Abs(v.F-o.F) <= eps && math.Abs(v.C-o.C) <= eps
}
