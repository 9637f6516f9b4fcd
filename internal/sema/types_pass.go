package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/token"
	"github.com/lightbasic/lbc/internal/types"
)

// typePass, the analyzer's first phase, resolves every TypeExpr
// reachable from the module to a canonical types.Type. A TypeExpr
// naming a UDT
// resolves through types.Context.UDT, which lazily creates a
// member-less forward instance if the TYPE declaration itself hasn't
// been visited yet — pointer identity is stable regardless of visit
// order, so this phase needs no ordering relative to the UDT declarer
// pass that follows it.
func (a *Analyzer) typePass(mod *ast.Module) {
	for _, s := range mod.Statements {
		a.walkTypeExprsInStmt(s)
	}
}

func (a *Analyzer) walkTypeExprsInStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		a.resolveTypeExpr(n.TypeExpr)
	case *ast.FuncDecl:
		a.resolveFuncSignature(n)
	case *ast.FunctionStmt:
		a.resolveFuncSignature(n.Decl)
		if n.Decl.Body != nil {
			a.walkTypeExprsInStmtList(n.Decl.Body)
		}
	case *ast.TypeDecl:
		for _, m := range n.Members {
			a.resolveTypeExpr(m.TypeExpr)
		}
	case *ast.IfStmt:
		for _, b := range n.Blocks {
			for _, d := range b.LocalDecls {
				a.resolveTypeExpr(d.TypeExpr)
			}
			a.walkTypeExprsInStmtList(b.Body)
		}
	case *ast.ForStmt:
		if n.IteratorDecl != nil {
			a.resolveTypeExpr(n.IteratorDecl.TypeExpr)
		}
		a.walkTypeExprsInStmtList(n.Body)
	case *ast.DoLoopStmt:
		a.walkTypeExprsInStmtList(n.Body)
	case *ast.ImportStmt, *ast.ExprStmt, *ast.AssignStmt, *ast.ReturnStmt, *ast.ContinuationStmt:
		// no TypeExpr children of their own
	default:
		a.diags.Fatalf(diag.InternalUnreachable, s.Range(), "walkTypeExprsInStmt")
	}
}

func (a *Analyzer) walkTypeExprsInStmtList(list *ast.StmtList) {
	if list == nil {
		return
	}
	for _, s := range list.Stmts {
		a.walkTypeExprsInStmt(s)
	}
}

func (a *Analyzer) resolveFuncSignature(d *ast.FuncDecl) {
	for _, p := range d.Params {
		a.resolveTypeExpr(p.TypeExpr)
	}
	if d.ReturnType != nil {
		a.resolveTypeExpr(d.ReturnType)
	}
}

// resolveTypeExpr resolves one TypeExpr to its canonical type,
// applying PtrLevel indirections. Returns nil for a nil node (a SUB's
// absent return type, or an iterator VarDecl the parser left untyped).
func (a *Analyzer) resolveTypeExpr(node ast.TypeNode) types.Type {
	if node == nil {
		return nil
	}
	te, ok := node.(*ast.TypeExpr)
	if !ok {
		a.diags.Fatalf(diag.InternalUnreachable, node.Range(), "resolveTypeExpr: non-TypeExpr TypeNode")
		return nil
	}

	base := a.resolveBaseType(te)
	t := base
	for i := 0; i < te.PtrLevel; i++ {
		t = a.types.Pointer(t)
	}
	te.Resolved = t
	return t
}

func (a *Analyzer) resolveBaseType(te *ast.TypeExpr) types.Type {
	switch te.TokenKind {
	case token.TyVoid:
		return a.types.Void()
	case token.TyAny:
		return a.types.Any()
	case token.TyBoolean:
		return a.types.Boolean()
	case token.TyByte:
		return a.types.Integral(8, true)
	case token.TyUByte:
		return a.types.Integral(8, false)
	case token.TyShort:
		return a.types.Integral(16, true)
	case token.TyUShort:
		return a.types.Integral(16, false)
	case token.TyInteger:
		return a.types.Integral(32, true)
	case token.TyUInteger:
		return a.types.Integral(32, false)
	case token.TyLong:
		return a.types.Integral(64, true)
	case token.TyULong:
		return a.types.Integral(64, false)
	case token.TySingle:
		return a.types.FloatingPoint(32)
	case token.TyDouble:
		return a.types.FloatingPoint(64)
	case token.TyZString:
		return a.types.ZString()
	case token.Identifier:
		return a.types.UDT(te.Name)
	default:
		a.diags.Fatalf(diag.InternalUnreachable, te.Range(), "type token "+te.TokenKind.String())
		return a.types.Void()
	}
}
