package kernel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/automenta/hypernars1-sub000/internal/kerrors"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// ExplainOptions selects the rendering spec §6 `explain` produces.
type ExplainOptions struct {
	Format string // story | detailed | concise | technical | justification | json
	Depth  int
}

// derivationNode is one hyperedge in a walked premise tree.
type derivationNode struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Args      []string         `json:"args"`
	Truth     truth.Value      `json:"truth"`
	DerivedBy string           `json:"derivedBy,omitempty"`
	Premises  []derivationNode `json:"premises,omitempty"`
}

func (k *Kernel) buildDerivationTree(id string, depth int, visited map[string]bool) derivationNode {
	node := derivationNode{ID: id}
	edge, ok := k.Store.Get(id)
	if !ok {
		return node
	}
	node.Type = edge.Type
	node.Args = edge.Args
	node.Truth = edge.GetTruth()
	if visited[id] || depth <= 0 {
		return node
	}
	visited[id] = true
	b := edge.GetStrongestBelief()
	if b == nil {
		return node
	}
	node.DerivedBy = b.DerivedBy
	for _, p := range b.Premises {
		node.Premises = append(node.Premises, k.buildDerivationTree(p, depth-1, visited))
	}
	return node
}

// Explain renders id's belief and derivation history in one of six formats
// (spec §6 `explain`).
func (k *Kernel) Explain(id string, opts ExplainOptions) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if _, ok := k.Store.Get(id); !ok {
		return "", fmt.Errorf("%w: no such hyperedge %q", kerrors.ErrInvalidInput, id)
	}
	depth := opts.Depth
	if depth <= 0 {
		depth = 5
	}
	tree := k.buildDerivationTree(id, depth, make(map[string]bool))

	switch opts.Format {
	case "", "story":
		return explainStory(tree), nil
	case "detailed":
		return explainDetailed(tree, 0), nil
	case "concise":
		return explainConcise(tree), nil
	case "technical":
		return explainTechnical(tree, 0), nil
	case "justification":
		var lines []string
		explainJustification(tree, &lines, 1)
		return strings.Join(lines, "\n"), nil
	case "json":
		blob, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal explanation: %w", err)
		}
		return string(blob), nil
	default:
		return "", fmt.Errorf("%w: unknown explain format %q", kerrors.ErrInvalidInput, opts.Format)
	}
}

func label(n derivationNode) string {
	if len(n.Args) == 0 {
		return n.ID
	}
	return n.Type + "(" + strings.Join(n.Args, ", ") + ")"
}

func explainConcise(n derivationNode) string {
	return fmt.Sprintf("%s [f=%.2f c=%.2f]", label(n), n.Truth.F, n.Truth.C)
}

func explainStory(n derivationNode) string {
	if len(n.Premises) == 0 {
		return fmt.Sprintf("%s holds with frequency %.2f and confidence %.2f, asserted directly.",
			label(n), n.Truth.F, n.Truth.C)
	}
	var reasons []string
	for _, p := range n.Premises {
		reasons = append(reasons, label(p))
	}
	return fmt.Sprintf("%s holds with frequency %.2f and confidence %.2f, believed because %s.",
		label(n), n.Truth.F, n.Truth.C, strings.Join(reasons, " and "))
}

func explainDetailed(n derivationNode, indent int) string {
	pad := strings.Repeat("  ", indent)
	line := fmt.Sprintf("%s%s  f=%.3f c=%.3f", pad, label(n), n.Truth.F, n.Truth.C)
	if n.DerivedBy != "" {
		line += "  via " + n.DerivedBy
	}
	out := []string{line}
	for _, p := range n.Premises {
		out = append(out, explainDetailed(p, indent+1))
	}
	return strings.Join(out, "\n")
}

func explainTechnical(n derivationNode, indent int) string {
	pad := strings.Repeat("  ", indent)
	line := fmt.Sprintf("%s%s type=%s args=%v truth={f:%.4f c:%.4f exp:%.4f} derivedBy=%q",
		pad, n.ID, n.Type, n.Args, n.Truth.F, n.Truth.C, n.Truth.Expectation(), n.DerivedBy)
	out := []string{line}
	for _, p := range n.Premises {
		out = append(out, explainTechnical(p, indent+1))
	}
	return strings.Join(out, "\n")
}

func explainJustification(n derivationNode, lines *[]string, step int) int {
	for _, p := range n.Premises {
		step = explainJustification(p, lines, step)
	}
	rule := n.DerivedBy
	if rule == "" {
		rule = "direct assertion"
	}
	*lines = append(*lines, fmt.Sprintf("%d. %s (f=%.2f, c=%.2f) — %s", step, label(n), n.Truth.F, n.Truth.C, rule))
	return step + 1
}
