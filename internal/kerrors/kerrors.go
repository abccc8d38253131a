// Package kerrors defines the kernel's error taxonomy (spec §7).
package kerrors

import "errors"

// Sentinel errors identifying the taxonomy's categories. Wrap with
// fmt.Errorf("...: %w", Sentinel) at the point of detection so callers can
// still errors.Is against the category.
var (
	// ErrInvalidInput covers parser/API misuse: a bad statement, an
	// unknown operator, a malformed pattern.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout covers an expired question deadline (spec §4.7, §6).
	ErrTimeout = errors.New("timeout")

	// ErrCorruptState covers a snapshot that fails to validate or rebuild
	// (spec §6 persistence format).
	ErrCorruptState = errors.New("corrupt state")
)

// ResourceExhausted is not an error per spec §7: it is the structural
// "no work" / pruning outcome of a step or queue operation, represented by
// an ordinary bool/struct return rather than an error value. No sentinel is
// defined for it; see kernel.Step's return value instead.
