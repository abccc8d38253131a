package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automenta/hypernars1-sub000/internal/term"
)

func TestParseSimpleInheritanceWithTruth(t *testing.T) {
	stmt, err := NewParser("cat --> animal. %0.9;0.8%").ParseStatement()
	require.NoError(t, err)
	assert.False(t, stmt.IsQuestion)
	assert.Equal(t, term.TypeInheritance, stmt.Expr.Type)
	require.NotNil(t, stmt.Truth)
	assert.InDelta(t, 0.9, stmt.Truth.F, 1e-9)
	assert.InDelta(t, 0.8, stmt.Truth.C, 1e-9)
}

func TestParseQuestionTerminal(t *testing.T) {
	stmt, err := NewParser("cat --> animal?").ParseStatement()
	require.NoError(t, err)
	assert.True(t, stmt.IsQuestion)
}

func TestParseVariablePattern(t *testing.T) {
	stmt, err := NewParser("$x --> animal?").ParseStatement()
	require.NoError(t, err)
	assert.Equal(t, "$x", stmt.Expr.Args[0].Name)
}

func TestParseWildcardIsLiteralAtom(t *testing.T) {
	stmt, err := NewParser("* --> animal?").ParseStatement()
	require.NoError(t, err)
	assert.Equal(t, "*", stmt.Expr.Args[0].Name)
}

func TestParseConjunctionFlattensSameOperator(t *testing.T) {
	stmt, err := NewParser("a && b && c.").ParseStatement()
	require.NoError(t, err)
	assert.Equal(t, term.TypeConjunction, stmt.Expr.Type)
	assert.Len(t, stmt.Expr.Args, 3)
}

func TestParseImplicationBindsLooserThanInheritance(t *testing.T) {
	stmt, err := NewParser("a --> b ==> c --> d.").ParseStatement()
	require.NoError(t, err)
	assert.Equal(t, term.TypeImplication, stmt.Expr.Type)
	assert.Equal(t, term.TypeInheritance, stmt.Expr.Args[0].Type)
	assert.Equal(t, term.TypeInheritance, stmt.Expr.Args[1].Type)
}

func TestParseNegationPrefix(t *testing.T) {
	stmt, err := NewParser("!(a --> b).").ParseStatement()
	require.NoError(t, err)
	assert.Equal(t, term.TypeNegation, stmt.Expr.Type)
	assert.Equal(t, term.TypeInheritance, stmt.Expr.Args[0].Type)
}

func TestParseExplicitCallForms(t *testing.T) {
	stmt, err := NewParser("Product(a,b,c).").ParseStatement()
	require.NoError(t, err)
	assert.Equal(t, term.TypeProduct, stmt.Expr.Type)
	assert.Len(t, stmt.Expr.Args, 3)
}

func TestParseBudgetAnnotation(t *testing.T) {
	stmt, err := NewParser("a --> b. %0.9;0.8% $0.8;0.6;0.9$").ParseStatement()
	require.NoError(t, err)
	require.NotNil(t, stmt.Budget)
	assert.InDelta(t, 0.8, stmt.Budget.Priority, 1e-9)
	assert.InDelta(t, 0.6, stmt.Budget.Durability, 1e-9)
	assert.InDelta(t, 0.9, stmt.Budget.Quality, 1e-9)
}

func TestParseAndAssertCreatesNestedEdges(t *testing.T) {
	s := term.NewStore(8)
	_, id, err := ParseAndAssert(s, "cat --> animal. %1.0;0.9%")
	require.NoError(t, err)

	edge, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, term.TypeInheritance, edge.Type)
	assert.Equal(t, []string{"cat", "animal"}, edge.Args)

	_, ok = s.Get(term.Atom("cat"))
	assert.True(t, ok, "asserting a compound term must also create its leaf terms")
}

func TestParseMissingTerminatorIsError(t *testing.T) {
	_, err := NewParser("cat --> animal").ParseStatement()
	assert.Error(t, err)
}
