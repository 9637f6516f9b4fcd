package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/symbols"
)

// analyzeForStmt analyzes a FOR statement: the iterator's type drives
// TO/STEP coercion, the iterator loses its addressable/assignable
// flags for the duration of the body, and the iteration direction is
// inferred from literal bounds/step where possible, falling back to
// DirUnknown for a runtime branch in codegen.
func (a *Analyzer) analyzeForStmt(n *ast.ForStmt) {
	n.From = a.analyzeExpr(n.From, nil)
	iterType := exprType(n.From)

	sym := &symbols.Symbol{Type: iterType, Flags: symbols.Addressable | symbols.Assignable}
	n.IteratorDecl.Symbol = sym

	n.To = a.analyzeExpr(n.To, iterType)
	if n.Step != nil {
		n.Step = a.analyzeExpr(n.Step, iterType)
		if stepLit, ok := n.Step.(*ast.LiteralExpr); ok && literalAsInt64(stepLit) == 0 {
			a.diags.Warn(diag.ZeroStepInFor, n.Step.Range())
		}
	}

	n.Direction = inferForDirection(n)
	if n.Direction == ast.DirSkip {
		a.diags.Warn(diag.UnreachableForBody, n.Range())
	}

	sym.ClearAddressable()

	a.pushLoop(ast.FrameFor, n)
	a.pushScope(n.Symbols)
	if err := n.Symbols.Insert(n.IteratorDecl.Name, sym); err != nil {
		a.diags.ReportError(diag.Redefinition, n.IteratorDecl.Range(), n.IteratorDecl.Name)
	}
	a.analyzeStmtList(n.Body)
	a.popScope()
	a.popLoop()
}

// inferForDirection decides Increment/Decrement/Skip/Unknown from the
// FROM/TO/STEP expressions, literal values only — a non-literal bound
// leaves the direction for codegen to branch on at run time.
func inferForDirection(n *ast.ForStmt) ast.ForDirection {
	fromLit, fromOK := n.From.(*ast.LiteralExpr)
	toLit, toOK := n.To.(*ast.LiteralExpr)
	if !fromOK || !toOK {
		return ast.DirUnknown
	}

	from, to := literalAsInt64(fromLit), literalAsInt64(toLit)
	boundsDir := ast.DirIncrement
	if from > to {
		boundsDir = ast.DirDecrement
	}

	if n.Step == nil {
		return boundsDir
	}
	stepLit, ok := n.Step.(*ast.LiteralExpr)
	if !ok {
		return ast.DirUnknown
	}

	switch step := literalAsInt64(stepLit); {
	case step == 0:
		return ast.DirIncrement
	case step < 0 && boundsDir == ast.DirIncrement:
		return ast.DirSkip
	case step > 0 && boundsDir == ast.DirDecrement:
		return ast.DirSkip
	default:
		return boundsDir
	}
}

func literalAsInt64(lit *ast.LiteralExpr) int64 {
	if lit.LitKind == ast.LitFloat {
		return int64(lit.F64)
	}
	return int64(lit.U64)
}
