package parser

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/token"
)

// parseExpression implements precedence climbing over the operator
// table: parse a factor, then fold in binary operators of rising
// precedence. minPrec is the lowest operator precedence this call is
// willing to fold into its result.
func (p *Parser) parseExpression(minPrec int) ast.Expr {
	lhs := p.parseFactor()
	return p.climb(lhs, minPrec)
}

// climb continues precedence climbing from an already-parsed lhs.
// Splitting this out of parseExpression lets statement parsing peek at
// a bare factor, check for a statement-level `=` (AssignStmt), and
// only then resume climbing for the ExprStmt case — the
// assignment-vs-equality disambiguation.
func (p *Parser) climb(lhs ast.Expr, minPrec int) ast.Expr {
	for {
		info, ok := lookupBinaryOp(p.cur.Kind)
		if !ok || info.Prec < minPrec {
			return lhs
		}
		p.next()

		rhs := p.parseFactor()
		for {
			nextInfo, ok := lookupBinaryOp(p.cur.Kind)
			if !ok || nextInfo.Prec <= info.Prec {
				break
			}
			rhs = p.climb(rhs, nextInfo.Prec)
		}

		rng := token.Range{Begin: lhs.Range().Begin, End: p.cur.Range.Begin}
		lhs = ast.NewBinaryExpr(p.arena, rng, info.Op, lhs, rhs)
	}
}

// parseFactor consumes `primary | Unary factor`. Unary Minus is
// rewritten to Negate and prefix Star to Deref — the binary tokens are
// reused in prefix position.
func (p *Parser) parseFactor() ast.Expr {
	begin := p.cur.Pos()
	switch p.cur.Kind {
	case token.Minus:
		p.next()
		x := p.parseFactor()
		return ast.NewUnaryExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, ast.OpNegate, x)
	case token.Not:
		p.next()
		x := p.parseFactor()
		return ast.NewUnaryExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, ast.OpNot, x)
	case token.Star:
		p.next()
		x := p.parseFactor()
		return ast.NewDerefExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, x)
	case token.AddressOf:
		p.next()
		x := p.parseFactor()
		return ast.NewAddressOfExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, x)
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

// parsePostfix consumes zero or more trailing `.member` accesses and
// at most one trailing explicit `AS type` cast. The cast's target type
// is resolved later, in the type pass, like every other TypeExpr.
func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
	for p.cur.Kind == token.Dot {
		begin := x.Range().Begin
		p.next()
		member := p.expect(token.Identifier).Text
		rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
		x = ast.NewMemberExpr(p.arena, rng, x, member)
	}
	if p.cur.Kind == token.AsKw {
		begin := x.Range().Begin
		p.next()
		typeExpr := p.parseTypeExpr()
		rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
		x = ast.NewCastExpr(p.arena, rng, x, typeExpr, false)
	}
	return x
}

// parsePrimary consumes `Literal | Identifier | Call | Paren | IfExpr`.
func (p *Parser) parsePrimary() ast.Expr {
	begin := p.cur.Pos()
	switch p.cur.Kind {
	case token.IntegerLiteral, token.FloatingPointLiteral, token.StringLiteral, token.BooleanLiteral:
		lit := p.cur.Literal
		p.next()
		return ast.NewLiteralExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, lit)

	case token.Iif:
		p.next()
		p.expect(token.LParen)
		cond := p.parseExpression(1)
		p.expect(token.Comma)
		then := p.parseExpression(1)
		p.expect(token.Comma)
		els := p.parseExpression(1)
		p.expect(token.RParen)
		return ast.NewIfExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, cond, then, els)

	case token.LParen:
		p.next()
		x := p.parseExpression(1)
		p.expect(token.RParen)
		return x

	case token.Identifier:
		name := p.cur.Text
		p.next()
		if p.cur.Kind == token.LParen {
			return p.parseCallExpr(begin, ast.NewIdentExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, name))
		}
		return ast.NewIdentExpr(p.arena, token.Range{Begin: begin, End: p.cur.Range.Begin}, name)

	default:
		p.unexpected("an expression")
		return nil
	}
}

// parseCallExpr consumes the `(args...)` suffix of a call whose callee
// has already been parsed — an identifier followed by `(` is always a
// call.
func (p *Parser) parseCallExpr(begin token.Position, callee ast.Expr) ast.Expr {
	p.expect(token.LParen)
	var args []ast.Expr
	for p.cur.Kind != token.RParen {
		args = append(args, p.parseExpression(1))
		if p.cur.Kind == token.Comma {
			p.next()
		}
	}
	p.expect(token.RParen)
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewCallExpr(p.arena, rng, callee, args, false)
}

// parseCallWithoutParens consumes the statement-position, parenthesis-
// free call form: `ident arg1, arg2, ...`
// where the identifier is not itself followed by `(`. It reports no
// diagnostic itself: its caller, parseExprOrAssignStmt, reports
// AmbiguousCallWithoutParens when the token after the identifier is
// `-`, `*` or `@`, and takes this path only when that token can start
// a factor.
func (p *Parser) parseCallWithoutParens(begin token.Position, callee ast.Expr) ast.Expr {
	var args []ast.Expr
	args = append(args, p.parseExpression(1))
	for p.cur.Kind == token.Comma {
		p.next()
		args = append(args, p.parseExpression(1))
	}
	rng := token.Range{Begin: begin, End: p.cur.Range.Begin}
	return ast.NewCallExpr(p.arena, rng, callee, args, true)
}
