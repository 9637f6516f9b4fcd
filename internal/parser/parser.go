// Package parser implements LightBASIC's recursive-descent statement
// grammar and precedence-climbing expression grammar: a hand-rolled
// cur/peek token pair, expect-or-fail-fast token consumption, and a
// module/function scope flag gating which declarations and statements
// are legal at a given nesting depth. The parser fails fast on the
// first error via the diagnostic engine's Fatalf; there is no
// resynchronization.
package parser

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/lexer"
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/token"
	"github.com/lightbasic/lbc/internal/types"
)

// Scope gates which declarations and statements are legal at the
// current nesting depth; nested function declarations are rejected.
type Scope int

const (
	ScopeRoot Scope = iota
	ScopeFunction
)

// Parser holds the lexer, the shared diagnostic engine and type
// context for one module, and the small amount of state the grammar
// needs: a two-token lookahead window, the current scope, and a stack
// of open loop frames consulted by EXIT/CONTINUE.
type Parser struct {
	lex   *lexer.Lexer
	diags *diag.Engine
	types *types.Context
	arena *ast.Arena

	cur, peek token.Token

	scope     Scope
	loopStack []ast.LoopFrameKind
}

// New creates a Parser reading from src, reporting to diags and
// interning types through tc. The arena owns every AST node the parser
// allocates.
func New(src string, diags *diag.Engine, tc *types.Context, arena *ast.Arena) *Parser {
	p := &Parser{
		lex:   lexer.New(src),
		diags: diags,
		types: tc,
		arena: arena,
		scope: ScopeRoot,
	}
	p.cur = p.lex.NextToken()
	p.peek = p.lex.NextToken()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

// expect consumes the current token if it has kind k, else reports
// ExpectedToken and panics via Fatalf.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.diags.Fatalf(diag.ExpectedToken, p.cur.Range, k.String())
	}
	t := p.cur
	p.next()
	return t
}

func (p *Parser) unexpected(expected string) {
	p.diags.Fatalf(diag.UnexpectedToken, p.cur.Range, expected, p.cur.Kind.String())
}

// atStatementEnd reports whether the current token ends a statement:
// EndOfStmt or EndOfFile.
func (p *Parser) atStatementEnd() bool {
	return p.cur.Kind == token.EndOfStmt || p.cur.Kind == token.EndOfFile
}

// skipStmtEnd consumes one or more EndOfStmt separators.
func (p *Parser) skipStmtEnd() {
	for p.cur.Kind == token.EndOfStmt {
		p.next()
	}
}

// Parse runs the parser to completion, fail-fast: a syntax error
// panics with *diag.FatalError, which the caller recovers with
// diag.RecoverFatal at the phase boundary.
func Parse(fileID string, src string, diags *diag.Engine, tc *types.Context, arena *ast.Arena) *ast.Module {
	p := New(src, diags, tc, arena)
	return p.parseModule(fileID)
}

// parseModule consumes `{ Statement EndOfStmt }* EndOfFile`. A module
// with no explicit top-level `FUNCTION MAIN` gets ImplicitMain set so
// the semantic analyzer synthesizes one wrapping the loose top-level
// statements.
func (p *Parser) parseModule(fileID string) *ast.Module {
	begin := p.cur.Pos()
	p.skipStmtEnd()

	var stmts []ast.Stmt
	hasExplicitMain := false
	for p.cur.Kind != token.EndOfFile {
		s := p.parseStatement()
		if s != nil {
			stmts = append(stmts, s)
			if fn, ok := s.(*ast.FunctionStmt); ok && fn.Decl.Name == "MAIN" {
				hasExplicitMain = true
			}
		}
		p.skipStmtEnd()
	}

	rng := token.Range{Begin: begin, End: p.cur.Range.End}
	mod := ast.NewModule(p.arena, rng, fileID, !hasExplicitMain)
	mod.Statements = stmts
	return mod
}

// parseTypeExpr consumes a type-expression: a built-in type keyword or
// a UDT identifier, followed by zero or more `PTR` tokens denoting
// dereference levels.
func (p *Parser) parseTypeExpr() ast.TypeNode {
	begin := p.cur.Pos()
	var kind token.Kind
	var name string

	switch {
	case p.cur.Kind.IsTypeKeyword():
		kind = p.cur.Kind
		p.next()
	case p.cur.Kind == token.Identifier:
		kind = token.Identifier
		name = p.cur.Text
		p.next()
	default:
		p.unexpected("a type")
	}

	ptrLevel := 0
	for p.cur.Kind == token.TyPtr {
		ptrLevel++
		p.next()
	}

	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewTypeExpr(p.arena, rng, kind, name, ptrLevel)
}

// parseAttributeList consumes `[ name = value, ... ]`, attached to
// the declaration that follows. Returns nil if no attribute list is
// present.
func (p *Parser) parseAttributeList() []ast.Attribute {
	if p.cur.Kind != token.LBracket {
		return nil
	}
	p.next()

	var attrs []ast.Attribute
	for {
		var name string
		switch p.cur.Kind {
		case token.Identifier, token.AliasKw:
			// ALIAS is a reserved word (it also appears inline in DECLARE
			// signatures) but is still the most common attribute name.
			name = p.cur.Text
			p.next()
		default:
			p.unexpected("an attribute name")
		}
		value := ""
		if p.cur.Kind == token.Assign {
			p.next()
			switch p.cur.Kind {
			case token.StringLiteral:
				value = p.cur.Literal.Str
			case token.Identifier:
				value = p.cur.Text
			default:
				p.unexpected("an attribute value")
			}
			p.next()
		}
		attrs = append(attrs, ast.Attribute{Name: name, Value: value})
		if p.cur.Kind != token.Comma {
			break
		}
		p.next()
	}
	p.expect(token.RBracket)
	return attrs
}

// newChildScope returns a fresh SymbolTable for a nested block. The
// parser never wires block scopes to a parent — name resolution walks
// the analyzer's explicit scope stack instead.
func (p *Parser) newChildScope(parent *symbols.SymbolTable) *symbols.SymbolTable {
	return symbols.NewChild(parent)
}
