package sema

import (
	"math"

	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/token"
	"github.com/lightbasic/lbc/internal/types"
)

// foldUnary constant-folds NOT/unary-minus over a literal operand.
// Anything else is returned unchanged.
func (a *Analyzer) foldUnary(n *ast.UnaryExpr) ast.Expr {
	lit, ok := n.X.(*ast.LiteralExpr)
	if !ok {
		return n
	}

	switch n.Op {
	case ast.OpNegate:
		switch lit.LitKind {
		case ast.LitInteger:
			return intLiteral(a.arena, n.Range(), -int64(lit.U64), n.GetType())
		case ast.LitFloat:
			return floatLiteral(a.arena, n.Range(), -lit.F64, n.GetType())
		}
	case ast.OpNot:
		if lit.LitKind == ast.LitBool {
			return boolLiteral(a.arena, n.Range(), !lit.Bool, n.GetType())
		}
	}
	return n
}

// foldBinary constant-folds a binary operation over two literal
// operands. Non-literal operands (or a division by a literal zero,
// left for codegen/runtime to trap) are returned unchanged.
func (a *Analyzer) foldBinary(n *ast.BinaryExpr) ast.Expr {
	lhs, lok := n.LHS.(*ast.LiteralExpr)
	rhs, rok := n.RHS.(*ast.LiteralExpr)
	if !lok || !rok {
		return n
	}

	switch {
	case lhs.LitKind == ast.LitBool && rhs.LitKind == ast.LitBool:
		return a.foldBoolBinary(n, lhs, rhs)
	case lhs.LitKind == ast.LitFloat || rhs.LitKind == ast.LitFloat:
		return a.foldFloatBinary(n, lhs, rhs)
	case lhs.LitKind == ast.LitInteger && rhs.LitKind == ast.LitInteger:
		return a.foldIntBinary(n, lhs, rhs)
	}
	return n
}

func (a *Analyzer) foldIntBinary(n *ast.BinaryExpr, lhs, rhs *ast.LiteralExpr) ast.Expr {
	l, r := int64(lhs.U64), int64(rhs.U64)
	rng, rt := n.Range(), n.GetType()

	switch n.Op {
	case ast.OpAdd:
		return intLiteral(a.arena, rng, l+r, rt)
	case ast.OpSub:
		return intLiteral(a.arena, rng, l-r, rt)
	case ast.OpMul:
		return intLiteral(a.arena, rng, l*r, rt)
	case ast.OpDiv:
		if r == 0 {
			return n
		}
		return intLiteral(a.arena, rng, l/r, rt)
	case ast.OpMod:
		if r == 0 {
			return n
		}
		return intLiteral(a.arena, rng, l%r, rt)
	case ast.OpEqual:
		return boolLiteral(a.arena, rng, l == r, rt)
	case ast.OpNotEqual:
		return boolLiteral(a.arena, rng, l != r, rt)
	case ast.OpLess:
		return boolLiteral(a.arena, rng, l < r, rt)
	case ast.OpLessEqual:
		return boolLiteral(a.arena, rng, l <= r, rt)
	case ast.OpGreater:
		return boolLiteral(a.arena, rng, l > r, rt)
	case ast.OpGreaterEqual:
		return boolLiteral(a.arena, rng, l >= r, rt)
	}
	return n
}

func (a *Analyzer) foldFloatBinary(n *ast.BinaryExpr, lhs, rhs *ast.LiteralExpr) ast.Expr {
	l, r := literalAsFloat64(lhs), literalAsFloat64(rhs)
	rng, rt := n.Range(), n.GetType()

	switch n.Op {
	case ast.OpAdd:
		return floatLiteral(a.arena, rng, l+r, rt)
	case ast.OpSub:
		return floatLiteral(a.arena, rng, l-r, rt)
	case ast.OpMul:
		return floatLiteral(a.arena, rng, l*r, rt)
	case ast.OpDiv:
		if r == 0 {
			return n
		}
		return floatLiteral(a.arena, rng, l/r, rt)
	case ast.OpMod:
		if r == 0 {
			return n
		}
		return floatLiteral(a.arena, rng, math.Mod(l, r), rt)
	case ast.OpEqual:
		return boolLiteral(a.arena, rng, l == r, rt)
	case ast.OpNotEqual:
		return boolLiteral(a.arena, rng, l != r, rt)
	case ast.OpLess:
		return boolLiteral(a.arena, rng, l < r, rt)
	case ast.OpLessEqual:
		return boolLiteral(a.arena, rng, l <= r, rt)
	case ast.OpGreater:
		return boolLiteral(a.arena, rng, l > r, rt)
	case ast.OpGreaterEqual:
		return boolLiteral(a.arena, rng, l >= r, rt)
	}
	return n
}

func (a *Analyzer) foldBoolBinary(n *ast.BinaryExpr, lhs, rhs *ast.LiteralExpr) ast.Expr {
	l, r := lhs.Bool, rhs.Bool
	rng, rt := n.Range(), n.GetType()

	switch n.Op {
	case ast.OpAnd:
		return boolLiteral(a.arena, rng, l && r, rt)
	case ast.OpOr:
		return boolLiteral(a.arena, rng, l || r, rt)
	case ast.OpEqual:
		return boolLiteral(a.arena, rng, l == r, rt)
	case ast.OpNotEqual:
		return boolLiteral(a.arena, rng, l != r, rt)
	}
	return n
}

// foldCast constant-folds an explicit `literal AS type` cast. An
// unfoldable cast (non-literal operand, or a target the literal folder
// doesn't know how to produce) is returned unchanged.
func (a *Analyzer) foldCast(n *ast.CastExpr) ast.Expr {
	lit, ok := n.X.(*ast.LiteralExpr)
	if !ok {
		return n
	}
	if folded := foldLiteralCast(a.arena, lit, n.GetType()); folded != nil {
		return folded
	}
	return n
}

// tryFoldCast folds an implicit CAST wrapper built by coerce's Upcast
// branch when its operand is a literal, so a widening conversion over
// a constant never survives into codegen as a runtime CAST node.
func (a *Analyzer) tryFoldCast(cast *ast.CastExpr) ast.Expr {
	lit, ok := cast.X.(*ast.LiteralExpr)
	if !ok {
		return cast
	}
	if folded := foldLiteralCast(a.arena, lit, cast.GetType()); folded != nil {
		return folded
	}
	return cast
}

// foldIif implements the two constant-shape IIF folds: IIF(cond, 1, 0)
// collapses to `cond AS targetType` and IIF(cond, 0, 1) to
// `(NOT cond) AS targetType`. Any other THEN/ELSE pair is left as a
// real ternary for codegen to branch on.
func (a *Analyzer) foldIif(n *ast.IfExpr) ast.Expr {
	thenLit, tok := n.Then.(*ast.LiteralExpr)
	elseLit, eok := n.Else.(*ast.LiteralExpr)
	if !tok || !eok || thenLit.LitKind != ast.LitInteger || elseLit.LitKind != ast.LitInteger {
		return n
	}

	target := n.GetType()
	switch {
	case thenLit.U64 == 1 && elseLit.U64 == 0:
		return a.foldIifOperand(n.Cond, target)
	case thenLit.U64 == 0 && elseLit.U64 == 1:
		notCond := ast.NewUnaryExpr(a.arena, n.Cond.Range(), ast.OpNot, n.Cond)
		notCond.SetType(a.types.Boolean())
		return a.foldIifOperand(a.foldUnary(notCond), target)
	}
	return n
}

// foldIifOperand wraps cond in an implicit cast to target, folding it
// away immediately when cond is itself a literal boolean.
func (a *Analyzer) foldIifOperand(cond ast.Expr, target types.Type) ast.Expr {
	if lit, ok := cond.(*ast.LiteralExpr); ok && lit.LitKind == ast.LitBool {
		if folded := foldLiteralCast(a.arena, lit, target); folded != nil {
			return folded
		}
	}
	return ast.NewImplicitCastExpr(a.arena, cond.Range(), cond, target)
}

// literalFitsType reports whether lit's value is representable in
// target without loss, letting coerce's Downcast branch fold silently
// instead of warning when the narrowing is provably safe.
func literalFitsType(lit *ast.LiteralExpr, target types.Type) bool {
	it, ok := target.(*types.IntegralType)
	if !ok || lit.LitKind != ast.LitInteger {
		return false
	}

	v := int64(lit.U64)
	bits := uint(it.Bits)
	if it.Signed {
		lo, hi := -(int64(1) << (bits - 1)), (int64(1)<<(bits-1))-1
		return v >= lo && v <= hi
	}
	if v < 0 {
		return false
	}
	hi := uint64(1)<<bits - 1
	return uint64(v) <= hi
}

// foldLiteralCast builds the literal a cast to target would evaluate
// to, or nil if target isn't a literal-representable scalar type.
func foldLiteralCast(arena *ast.Arena, lit *ast.LiteralExpr, target types.Type) *ast.LiteralExpr {
	switch target.(type) {
	case *types.IntegralType:
		switch lit.LitKind {
		case ast.LitInteger:
			return intLiteral(arena, lit.Range(), int64(lit.U64), target)
		case ast.LitFloat:
			return intLiteral(arena, lit.Range(), int64(lit.F64), target)
		case ast.LitBool:
			v := int64(0)
			if lit.Bool {
				v = 1
			}
			return intLiteral(arena, lit.Range(), v, target)
		}
	case *types.FloatingPointType:
		switch lit.LitKind {
		case ast.LitInteger:
			return floatLiteral(arena, lit.Range(), float64(int64(lit.U64)), target)
		case ast.LitFloat:
			return floatLiteral(arena, lit.Range(), lit.F64, target)
		}
	case *types.BooleanType:
		if lit.LitKind == ast.LitInteger {
			return boolLiteral(arena, lit.Range(), lit.U64 != 0, target)
		}
	}
	return nil
}

func literalAsFloat64(lit *ast.LiteralExpr) float64 {
	if lit.LitKind == ast.LitFloat {
		return lit.F64
	}
	return float64(int64(lit.U64))
}

func intLiteral(arena *ast.Arena, rng token.Range, value int64, t types.Type) *ast.LiteralExpr {
	e := ast.NewLiteralExpr(arena, rng, token.Literal{Kind: token.LitUint64, U64: uint64(value)})
	e.SetType(t)
	return e
}

func floatLiteral(arena *ast.Arena, rng token.Range, value float64, t types.Type) *ast.LiteralExpr {
	e := ast.NewLiteralExpr(arena, rng, token.Literal{Kind: token.LitFloat64, F64: value})
	e.SetType(t)
	return e
}

func boolLiteral(arena *ast.Arena, rng token.Range, value bool, t types.Type) *ast.LiteralExpr {
	e := ast.NewLiteralExpr(arena, rng, token.Literal{Kind: token.LitBool, Bool: value})
	e.SetType(t)
	return e
}
