package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/automenta/hypernars1-sub000/internal/budget"
	"github.com/automenta/hypernars1-sub000/internal/term"
	"github.com/automenta/hypernars1-sub000/internal/truth"
)

// Node is one AST node of a parsed belief-language expression.
type Node struct {
	Type string // term.Type* constant, or "Atom"
	Name string // populated only when Type == "Atom"
	Args []*Node
}

func atomNode(name string) *Node { return &Node{Type: "Atom", Name: name} }

// Statement is a fully parsed input line: an expression plus its terminal
// punctuation and any truth/budget annotations (spec §4.8).
type Statement struct {
	Expr       *Node
	IsQuestion bool
	Truth      *truth.Value
	Budget     *budget.Value
}

// Parser is a recursive-descent parser over the belief language's operator
// grammar: ==>/<=> bind loosest (precedence 1), &&/|| next (precedence 2),
// -->/<-> bind tightest among binary operators (precedence 3), then prefix
// negation, then atoms and parenthesized groups (spec §4.8).
type Parser struct {
	lex  *Lexer
	cur  Token
	err  error
}

// NewParser creates a parser over src.
func NewParser(src string) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	tok, err := p.lex.Next()
	if err != nil {
		p.err = err
		return
	}
	p.cur = tok
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.err != nil {
		return Token{}, p.err
	}
	if p.cur.Kind != k {
		return Token{}, fmt.Errorf("expected %s at position %d", what, p.cur.Pos)
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// ParseStatement parses one full statement, including its terminal
// punctuation and optional annotations.
func (p *Parser) ParseStatement() (*Statement, error) {
	expr, err := p.parseImplication()
	if err != nil {
		return nil, err
	}

	stmt := &Statement{Expr: expr}
	switch p.cur.Kind {
	case TDot:
		p.advance()
	case TQuestionMark:
		stmt.IsQuestion = true
		p.advance()
		return stmt, p.err
	default:
		return nil, fmt.Errorf("expected '.' or '?' to terminate statement at position %d", p.cur.Pos)
	}

	for p.cur.Kind == TTruth || p.cur.Kind == TBudget {
		switch p.cur.Kind {
		case TTruth:
			tv, err := parseTruth(p.cur.Text)
			if err != nil {
				return nil, err
			}
			stmt.Truth = &tv
		case TBudget:
			bv, err := parseBudget(p.cur.Text)
			if err != nil {
				return nil, err
			}
			stmt.Budget = &bv
		}
		p.advance()
	}
	if p.err != nil {
		return nil, p.err
	}
	return stmt, nil
}

func parseTruth(raw string) (truth.Value, error) {
	parts := strings.Split(raw, ";")
	if len(parts) != 2 {
		return truth.Value{}, fmt.Errorf("truth annotation %q must have form f;c", raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return truth.Value{}, fmt.Errorf("invalid frequency in %q: %w", raw, err)
	}
	c, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return truth.Value{}, fmt.Errorf("invalid confidence in %q: %w", raw, err)
	}
	return truth.Value{F: f, C: c}, nil
}

func parseBudget(raw string) (budget.Value, error) {
	parts := strings.Split(raw, ";")
	if len(parts) != 3 {
		return budget.Value{}, fmt.Errorf("budget annotation %q must have form p;d;q", raw)
	}
	vals := make([]float64, 3)
	for i, s := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return budget.Value{}, fmt.Errorf("invalid budget component in %q: %w", raw, err)
		}
		vals[i] = v
	}
	return budget.Value{Priority: vals[0], Durability: vals[1], Quality: vals[2]}, nil
}

// parseImplication handles ==> and <=> (precedence 1, lowest).
func (p *Parser) parseImplication() (*Node, error) {
	left, err := p.parseBoolean()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TImplies || p.cur.Kind == TEquiv {
		typ := term.TypeImplication
		if p.cur.Kind == TEquiv {
			typ = term.TypeEquivalence
		}
		p.advance()
		right, err := p.parseBoolean()
		if err != nil {
			return nil, err
		}
		left = &Node{Type: typ, Args: []*Node{left, right}}
	}
	return left, p.err
}

// parseBoolean handles && and || (precedence 2).
func (p *Parser) parseBoolean() (*Node, error) {
	left, err := p.parseRelation()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TAnd || p.cur.Kind == TOr {
		typ := term.TypeConjunction
		if p.cur.Kind == TOr {
			typ = term.TypeDisjunction
		}
		p.advance()
		right, err := p.parseRelation()
		if err != nil {
			return nil, err
		}
		if left.Type == typ {
			left.Args = append(left.Args, right)
		} else {
			left = &Node{Type: typ, Args: []*Node{left, right}}
		}
	}
	return left, p.err
}

// parseRelation handles --> and <-> (precedence 3, tightest binary).
func (p *Parser) parseRelation() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == TInherit || p.cur.Kind == TSimilar {
		typ := term.TypeInheritance
		if p.cur.Kind == TSimilar {
			typ = term.TypeSimilarity
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Node{Type: typ, Args: []*Node{left, right}}
	}
	return left, p.err
}

// parseUnary handles prefix negation.
func (p *Parser) parseUnary() (*Node, error) {
	if p.cur.Kind == TNot {
		p.advance()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Type: term.TypeNegation, Args: []*Node{inner}}, nil
	}
	return p.parsePrimary()
}

var callTypes = map[string]string{
	"Instance": term.TypeInstance,
	"Property": term.TypeProperty,
	"Product":  term.TypeProduct,
}

// parsePrimary handles atoms/variables, parenthesized groups, and explicit
// call-form structural terms (Instance(...), Property(...), Product(...)).
func (p *Parser) parsePrimary() (*Node, error) {
	if p.err != nil {
		return nil, p.err
	}
	switch p.cur.Kind {
	case TLParen:
		p.advance()
		inner, err := p.parseImplication()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case TIdent:
		name := p.cur.Text
		p.advance()
		if typ, ok := callTypes[name]; ok && p.cur.Kind == TLParen {
			return p.parseCallArgs(typ)
		}
		return atomNode(name), nil
	default:
		return nil, fmt.Errorf("expected atom, variable, or '(' at position %d", p.cur.Pos)
	}
}

func (p *Parser) parseCallArgs(typ string) (*Node, error) {
	if _, err := p.expect(TLParen, "'('"); err != nil {
		return nil, err
	}
	n := &Node{Type: typ}
	for {
		arg, err := p.parseImplication()
		if err != nil {
			return nil, err
		}
		n.Args = append(n.Args, arg)
		if p.cur.Kind == TComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TRParen, "')'"); err != nil {
		return nil, err
	}
	return n, nil
}

// Assert walks node bottom-up, asserting every nested compound term into s
// and returning the resulting top-level edge ID. Leaf opts (truth, budget,
// etc.) apply only to the top-level term; nested sub-terms are asserted
// with defaults, matching how a belief about "cat --> animal" only directly
// evidences the Inheritance edge, not "cat" or "animal" themselves.
func Assert(s *term.Store, n *Node, opts term.AddOptions) string {
	if n.Type == "Atom" {
		r := s.AddHyperedge(term.TypeTerm, []string{n.Name}, opts)
		return r.ID
	}
	args := make([]string, len(n.Args))
	for i, child := range n.Args {
		args[i] = Assert(s, child, term.AddOptions{})
	}
	r := s.AddHyperedge(n.Type, args, opts)
	return r.ID
}

// ParseAndAssert parses a single statement and, for assertions, immediately
// asserts it into s. Questions are not asserted here — the caller is
// expected to hand stmt.Expr to the question handler instead.
func ParseAndAssert(s *term.Store, src string) (*Statement, string, error) {
	stmt, err := NewParser(src).ParseStatement()
	if err != nil {
		return nil, "", err
	}
	if stmt.IsQuestion {
		return stmt, "", nil
	}
	opts := term.AddOptions{Truth: stmt.Truth, Budget: stmt.Budget}
	id := Assert(s, stmt.Expr, opts)
	return stmt, id, nil
}
