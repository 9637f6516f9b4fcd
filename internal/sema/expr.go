package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/types"
)

// analyzeExpr resolves e's type (and value-category flags, for the
// node kinds that carry them), replaces it with a folded constant when
// constant folding applies, and — if target is non-nil — coerces the
// result to target. Only
// UnaryExpr, BinaryExpr, CastExpr, and IfExpr ever get folded away;
// every other kind keeps its identity and is mutated in place.
func (a *Analyzer) analyzeExpr(e ast.Expr, target types.Type) ast.Expr {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		a.analyzeLiteral(n)
	case *ast.IdentExpr:
		a.analyzeIdent(n)
	case *ast.CallExpr:
		a.analyzeCall(n)
	case *ast.UnaryExpr:
		e = a.analyzeUnary(n)
	case *ast.BinaryExpr:
		e = a.analyzeBinary(n)
	case *ast.AssignExpr:
		a.analyzeAssignExpr(n)
	case *ast.CastExpr:
		e = a.analyzeCast(n)
	case *ast.IfExpr:
		e = a.analyzeIfExpr(n)
	case *ast.DerefExpr:
		a.analyzeDeref(n)
	case *ast.AddressOfExpr:
		a.analyzeAddressOf(n)
	case *ast.MemberExpr:
		a.analyzeMember(n)
	default:
		a.diags.Fatalf(diag.InternalUnreachable, e.Range(), "analyzeExpr")
		return e
	}

	if target == nil {
		return e
	}
	return a.coerce(e, target)
}

func (a *Analyzer) analyzeLiteral(n *ast.LiteralExpr) {
	switch n.LitKind {
	case ast.LitInteger:
		n.SetType(a.types.Integral(32, true))
	case ast.LitFloat:
		n.SetType(a.types.FloatingPoint(64))
	case ast.LitString:
		n.SetType(a.types.ZString())
	case ast.LitBool:
		n.SetType(a.types.Boolean())
	case ast.LitNull:
		n.SetType(a.types.Null())
	}
}

func (a *Analyzer) analyzeIdent(n *ast.IdentExpr) {
	sym, ok := a.lookup(n.Name)
	if !ok {
		a.diags.ReportError(diag.UndefinedIdentifier, n.Range(), n.Name)
		n.SetType(a.types.Void())
		return
	}
	n.Symbol = sym
	n.SetType(sym.Type)
	n.SetValueCategory(symbolValueCategory(sym))
}

func (a *Analyzer) analyzeUnary(n *ast.UnaryExpr) ast.Expr {
	n.X = a.analyzeExpr(n.X, nil)
	xt := exprType(n.X)

	switch n.Op {
	case ast.OpNegate:
		if !isNumeric(xt) {
			a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), xt.String(), "a numeric type")
		}
		n.SetType(xt)
	case ast.OpNot:
		n.X = a.coerce(n.X, a.types.Boolean())
		n.SetType(a.types.Boolean())
	}
	return a.foldUnary(n)
}

func (a *Analyzer) analyzeBinary(n *ast.BinaryExpr) ast.Expr {
	n.LHS = a.analyzeExpr(n.LHS, nil)
	n.RHS = a.analyzeExpr(n.RHS, nil)

	if n.Op.Classify() == ast.KindLogical {
		n.LHS = a.coerce(n.LHS, a.types.Boolean())
		n.RHS = a.coerce(n.RHS, a.types.Boolean())
		n.SetType(a.types.Boolean())
		return a.foldBinary(n)
	}

	if (n.Op == ast.OpAdd || n.Op == ast.OpSub) && a.isPointerArith(n) {
		return n
	}

	lt, rt := exprType(n.LHS), exprType(n.RHS)
	common, ok := types.CommonType(lt, rt)
	if !ok {
		a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), rt.String(), lt.String())
	}
	n.LHS = a.coerce(n.LHS, common)
	n.RHS = a.coerce(n.RHS, common)
	if n.Op.Classify() == ast.KindComparison {
		n.SetType(a.types.Boolean())
	} else {
		n.SetType(common)
	}
	return a.foldBinary(n)
}

// isPointerArith recognizes and resolves `ptr +/- int` and
// `ptr - ptr`: the front end resolves these to a pointer or integral
// result plus a PointerElemSize scale factor, leaving the actual
// scaled add/subtract to codegen. Reports false (and leaves n
// untouched) when neither operand is a pointer, so the caller falls
// through to ordinary arithmetic.
func (a *Analyzer) isPointerArith(n *ast.BinaryExpr) bool {
	lpt, lok := exprType(n.LHS).(*types.PointerType)
	rpt, rok := exprType(n.RHS).(*types.PointerType)

	switch {
	case lok && rok:
		if n.Op != ast.OpSub {
			a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), lpt.String(), rpt.String())
		}
		if lpt != rpt {
			a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), lpt.String(), rpt.String())
		}
		n.PointerElemSize = lpt.Base.Size()
		n.SetType(a.types.Integral(64, true))
		return true

	case lok && !rok:
		n.RHS = a.coerce(n.RHS, a.types.Integral(64, true))
		n.PointerElemSize = lpt.Base.Size()
		n.SetType(lpt)
		return true

	case rok && !lok:
		if n.Op != ast.OpAdd {
			a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), exprType(n.LHS).String(), rpt.String())
		}
		n.LHS = a.coerce(n.LHS, a.types.Integral(64, true))
		n.PointerElemSize = rpt.Base.Size()
		n.SetType(rpt)
		return true

	default:
		return false
	}
}

func (a *Analyzer) analyzeAssignExpr(n *ast.AssignExpr) {
	n.LHS = a.analyzeExpr(n.LHS, nil)
	lhsTyped, ok := n.LHS.(ast.TypedExpr)
	if !ok || !lhsTyped.ValueCategory().Has(ast.VCAssignable) {
		a.diags.ReportError(diag.AssignToNonAssignable, n.LHS.Range(), exprDesc(n.LHS))
	}
	target := exprType(n.LHS)
	n.RHS = a.analyzeExpr(n.RHS, target)
	n.SetType(target)
}

// analyzeCast handles an explicit `expr AS type` only — an implicit
// cast synthesized by coerce already carries its resolved Type and
// never flows back through this dispatcher.
func (a *Analyzer) analyzeCast(n *ast.CastExpr) ast.Expr {
	n.X = a.analyzeExpr(n.X, nil)
	target := a.resolveTypeExpr(n.TypeExpr)
	n.SetType(target)

	from := exprType(n.X)
	if types.Compare(from, target) == types.Incompatible && types.Compare(target, from) == types.Incompatible {
		a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), from.String(), target.String())
	}
	return a.foldCast(n)
}

func (a *Analyzer) analyzeIfExpr(n *ast.IfExpr) ast.Expr {
	n.Cond = a.analyzeExpr(n.Cond, a.types.Boolean())
	n.Then = a.analyzeExpr(n.Then, nil)
	n.Else = a.analyzeExpr(n.Else, nil)

	tt, et := exprType(n.Then), exprType(n.Else)
	common, ok := types.CommonType(tt, et)
	if !ok {
		a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), et.String(), tt.String())
	}
	n.Then = a.coerce(n.Then, common)
	n.Else = a.coerce(n.Else, common)
	n.SetType(common)

	return a.foldIif(n)
}

func (a *Analyzer) analyzeDeref(n *ast.DerefExpr) {
	n.X = a.analyzeExpr(n.X, nil)
	pt, ok := exprType(n.X).(*types.PointerType)
	if !ok {
		a.diags.ReportError(diag.InvalidDereference, n.Range(), exprType(n.X).String())
		n.SetType(a.types.Void())
		return
	}
	n.SetType(pt.Base)
	n.SetValueCategory(ast.VCAddressable | ast.VCAssignable | ast.VCDereferenceable)
}

func (a *Analyzer) analyzeAddressOf(n *ast.AddressOfExpr) {
	n.X = a.analyzeExpr(n.X, nil)
	xTyped, ok := n.X.(ast.TypedExpr)
	if !ok || !xTyped.ValueCategory().Has(ast.VCAddressable) {
		a.diags.ReportError(diag.InvalidAddressOf, n.Range())
		n.SetType(a.types.Pointer(a.types.Any()))
		return
	}
	n.SetType(a.types.Pointer(exprType(n.X)))
}

func (a *Analyzer) analyzeMember(n *ast.MemberExpr) {
	n.X = a.analyzeExpr(n.X, nil)

	ut, addressable := a.resolveUDTBase(exprType(n.X))
	if ut == nil {
		a.diags.ReportError(diag.InvalidMemberAccess, n.Range(), exprType(n.X).String(), n.MemberName)
		n.SetType(a.types.Void())
		return
	}
	member, found := ut.Member(n.MemberName)
	if !found {
		a.diags.ReportError(diag.InvalidMemberAccess, n.Range(), ut.String(), n.MemberName)
		n.SetType(a.types.Void())
		return
	}

	n.Member = &member
	n.SetType(member.Type)
	if addressable {
		n.SetValueCategory(ast.VCAddressable | ast.VCAssignable)
	}
}

// resolveUDTBase unwraps a plain UDT value or an auto-dereferenced
// pointer-to-UDT base expression (`ptr.field`, the common BASIC/Pascal
// convenience) for MemberExpr analysis. addressable reports whether
// the resulting field access is itself an lvalue.
func (a *Analyzer) resolveUDTBase(t types.Type) (*types.UDTType, bool) {
	switch bt := t.(type) {
	case *types.UDTType:
		return bt, true
	case *types.PointerType:
		if u, ok := bt.Base.(*types.UDTType); ok {
			return u, true
		}
	}
	return nil, false
}

func (a *Analyzer) analyzeCall(n *ast.CallExpr) {
	n.Callee = a.analyzeExpr(n.Callee, nil)
	ft, ok := exprType(n.Callee).(*types.FunctionType)
	if !ok {
		a.diags.ReportError(diag.NotAFunctionType, n.Range(), calleeName(n.Callee))
		n.SetType(a.types.Void())
		for i, arg := range n.Args {
			n.Args[i] = a.analyzeExpr(arg, nil)
		}
		return
	}

	if (ft.Variadic && len(n.Args) < len(ft.Params)) || (!ft.Variadic && len(n.Args) != len(ft.Params)) {
		a.diags.ReportError(diag.ArgumentCountMismatch, n.Range(), calleeName(n.Callee), len(ft.Params), len(n.Args))
	}

	for i, arg := range n.Args {
		if i < len(ft.Params) {
			n.Args[i] = a.analyzeExpr(arg, ft.Params[i])
		} else {
			n.Args[i] = a.promoteVariadic(a.analyzeExpr(arg, nil))
		}
	}
	n.SetType(ft.Return)
}

// promoteVariadic applies the C ABI's default argument promotions to a
// variadic call's trailing arguments: every integral narrower than 32
// bits widens to the 32-bit integral of the same signedness (INTEGER or
// UINTEGER), every float narrower than DOUBLE widens to DOUBLE.
func (a *Analyzer) promoteVariadic(e ast.Expr) ast.Expr {
	switch t := exprType(e).(type) {
	case *types.IntegralType:
		if t.Bits < 32 {
			return a.coerce(e, a.types.Integral(32, t.Signed))
		}
	case *types.FloatingPointType:
		if t.Bits < 64 {
			return a.coerce(e, a.types.FloatingPoint(64))
		}
	}
	return e
}

// coerce implements the coercion algorithm: Equal is a no-op, Upcast
// wraps an implicit CAST (folding it away if the operand
// is a literal), Downcast folds silently when a literal operand
// provably fits the target and otherwise warns before wrapping an
// implicit CAST, and anything else is an IncompatibleTypes error.
func (a *Analyzer) coerce(e ast.Expr, target types.Type) ast.Expr {
	te, ok := e.(ast.TypedExpr)
	if !ok {
		a.diags.Fatalf(diag.InternalUnreachable, e.Range(), "coerce: non-typed expr")
		return e
	}
	from := te.GetType()
	if from == target {
		return e
	}

	switch types.Compare(from, target) {
	case types.Equal:
		return e
	case types.Upcast:
		return a.tryFoldCast(ast.NewImplicitCastExpr(a.arena, e.Range(), e, target))
	case types.Downcast:
		if lit, isLit := e.(*ast.LiteralExpr); isLit && literalFitsType(lit, target) {
			if folded := foldLiteralCast(a.arena, lit, target); folded != nil {
				return folded
			}
		}
		a.diags.Warn(diag.NarrowingConversion, e.Range(), from.String(), target.String())
		return a.tryFoldCast(ast.NewImplicitCastExpr(a.arena, e.Range(), e, target))
	default:
		a.diags.Fatalf(diag.IncompatibleTypes, e.Range(), from.String(), target.String())
	}
	return e
}

func isNumeric(t types.Type) bool {
	switch t.(type) {
	case *types.IntegralType, *types.FloatingPointType:
		return true
	}
	return false
}

func exprType(e ast.Expr) types.Type {
	te, ok := e.(ast.TypedExpr)
	if !ok {
		return nil
	}
	return te.GetType()
}

func calleeName(e ast.Expr) string {
	if id, ok := e.(*ast.IdentExpr); ok {
		return id.Name
	}
	return "expression"
}

func exprDesc(e ast.Expr) string {
	return calleeName(e)
}
