package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/types"
)

// bodyPass is the analyzer's final phase: finalize global-variable
// initializers (so every function body sees their final,
// possibly-inferred types regardless of declaration order), then
// traverse each function body
// and the implicit-main body with a per-function symbol-table stack
// and a control-flow stack.
func (a *Analyzer) bodyPass(mod *ast.Module) {
	a.pushScope(mod.Symbols)

	for _, s := range mod.Statements {
		if d, ok := s.(*ast.VarDecl); ok {
			a.analyzeVarDecl(d)
		}
	}

	for _, s := range mod.Statements {
		if fs, ok := s.(*ast.FunctionStmt); ok {
			a.analyzeFunctionBody(fs.Decl)
		}
	}

	if mod.ImplicitMain && a.implicitMain != nil {
		a.analyzeFunctionBody(a.implicitMain)
	}

	a.popScope()
}

func (a *Analyzer) analyzeFunctionBody(d *ast.FuncDecl) {
	if d.Body == nil {
		return // DECLARE-only forward signature has no body to analyze
	}

	prevFunc := a.currentFunc
	a.currentFunc = d

	if d.BodySymbols == nil {
		d.BodySymbols = symbols.New()
	}
	a.pushScope(d.BodySymbols)
	for _, p := range d.Params {
		pt := a.resolveTypeExpr(p.TypeExpr)
		sym := &symbols.Symbol{Type: pt, Flags: symbols.Addressable | symbols.Assignable}
		if err := d.BodySymbols.Insert(p.Name, sym); err != nil {
			a.diags.ReportError(diag.Redefinition, p.Range(), p.Name)
			continue
		}
		p.Symbol = sym
	}

	a.pushScope(d.Body.Symbols)
	a.analyzeStmtList(d.Body)
	a.popScope()
	a.popScope()

	a.currentFunc = prevFunc
}

func (a *Analyzer) analyzeStmtList(list *ast.StmtList) {
	for _, s := range list.Stmts {
		a.analyzeStmt(s)
	}
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		a.analyzeVarDecl(n)
	case *ast.ExprStmt:
		n.X = a.analyzeExpr(n.X, nil)
	case *ast.AssignStmt:
		a.analyzeAssignStmt(n)
	case *ast.IfStmt:
		a.analyzeIfStmt(n)
	case *ast.ForStmt:
		a.analyzeForStmt(n)
	case *ast.DoLoopStmt:
		a.analyzeDoLoopStmt(n)
	case *ast.ReturnStmt:
		a.analyzeReturnStmt(n)
	case *ast.ContinuationStmt:
		a.analyzeContinuationStmt(n)
	case *ast.FuncDecl, *ast.TypeDecl, *ast.ImportStmt:
		a.diags.ReportError(diag.IllegalTopLevelStatement, s.Range(), stmtKindName(s))
	default:
		a.diags.Fatalf(diag.InternalUnreachable, s.Range(), "analyzeStmt")
	}
}

// analyzeVarDecl handles both a top-level global (its Symbol was
// already inserted by the function-declarer pass, so only its
// initializer and possibly-inferred type are finalized here) and a
// local declaration inside a body (whose Symbol is created fresh in
// the innermost scope).
func (a *Analyzer) analyzeVarDecl(d *ast.VarDecl) {
	var declaredType types.Type
	if d.TypeExpr != nil {
		declaredType = a.resolveTypeExpr(d.TypeExpr)
	}

	var initType types.Type
	if d.Init != nil {
		d.Init = a.analyzeExpr(d.Init, declaredType)
		initType = exprType(d.Init)
	}

	finalType := declaredType
	if finalType == nil {
		finalType = initType
	}

	if d.Symbol != nil {
		d.Symbol.Type = finalType
		return
	}

	sym := &symbols.Symbol{Type: finalType, Flags: symbols.Addressable | symbols.Assignable}
	if err := a.currentScope().Insert(d.Name, sym); err != nil {
		a.diags.ReportError(diag.Redefinition, d.Range(), d.Name)
		return
	}
	d.Symbol = sym
}

func (a *Analyzer) analyzeAssignStmt(n *ast.AssignStmt) {
	n.LHS = a.analyzeExpr(n.LHS, nil)
	lhsTyped, ok := n.LHS.(ast.TypedExpr)
	if !ok || !lhsTyped.ValueCategory().Has(ast.VCAssignable) {
		a.diags.ReportError(diag.AssignToNonAssignable, n.LHS.Range(), exprDesc(n.LHS))
	}
	n.RHS = a.analyzeExpr(n.RHS, exprType(n.LHS))
}

func (a *Analyzer) analyzeIfStmt(n *ast.IfStmt) {
	for i := range n.Blocks {
		b := &n.Blocks[i]
		a.pushScope(b.Symbols)
		for _, d := range b.LocalDecls {
			a.analyzeVarDecl(d)
		}
		if b.Condition != nil {
			b.Condition = a.analyzeExpr(b.Condition, a.types.Boolean())
		}
		a.analyzeStmtList(b.Body)
		a.popScope()
	}
}

func (a *Analyzer) analyzeDoLoopStmt(n *ast.DoLoopStmt) {
	if n.PreCondition != nil {
		n.PreCondition = a.analyzeExpr(n.PreCondition, a.types.Boolean())
	}

	a.pushLoop(ast.FrameDo, n)
	a.pushScope(n.Body.Symbols)
	a.analyzeStmtList(n.Body)
	a.popScope()
	a.popLoop()

	if n.PostCondition != nil {
		n.PostCondition = a.analyzeExpr(n.PostCondition, a.types.Boolean())
	}
}

func (a *Analyzer) analyzeReturnStmt(n *ast.ReturnStmt) {
	if a.currentFunc == nil {
		a.diags.ReportError(diag.UnexpectedReturn, n.Range())
		if n.Value != nil {
			n.Value = a.analyzeExpr(n.Value, nil)
		}
		return
	}

	isImplicitMain := a.implicitMain != nil && a.currentFunc == a.implicitMain
	retType := types.Type(a.types.Void())
	if a.currentFunc.ReturnType != nil {
		retType = a.resolveTypeExpr(a.currentFunc.ReturnType)
	} else if isImplicitMain {
		// A top-level RETURN value supplies the process exit code.
		retType = a.types.Integral(32, true)
	}

	if n.Value == nil {
		if _, isVoid := retType.(*types.VoidType); !isVoid && !isImplicitMain {
			a.diags.Fatalf(diag.IncompatibleTypes, n.Range(), "VOID", retType.String())
		}
		return
	}
	n.Value = a.analyzeExpr(n.Value, retType)
}

func (a *Analyzer) analyzeContinuationStmt(n *ast.ContinuationStmt) {
	if len(n.Destination) == 0 {
		a.diags.Fatalf(diag.InternalUnreachable, n.Range(), "ContinuationStmt with no Destination")
		return
	}
	if len(n.Destination) > len(a.loopStack) {
		a.diags.Fatalf(diag.ControlFlowTargetNotFound, n.Range(), continuationName(n.ContKind), frameKindName(n.Destination[len(n.Destination)-1]))
	}
	for i, want := range n.Destination {
		frame := a.loopStack[len(a.loopStack)-1-i]
		if frame.kind != want {
			a.diags.Fatalf(diag.ControlFlowTargetNotFound, n.Range(), continuationName(n.ContKind), frameKindName(want))
		}
	}
	n.Target = a.loopStack[len(a.loopStack)-len(n.Destination)].node
}

func continuationName(k ast.ContinuationKind) string {
	if k == ast.ExitStmt {
		return "EXIT"
	}
	return "CONTINUE"
}

func frameKindName(k ast.LoopFrameKind) string {
	if k == ast.FrameFor {
		return "FOR"
	}
	return "DO"
}

// Scope-stack and loop-stack helpers. Nested block scopes are built by
// the parser with no parent pointer of their own (each IF/FOR/DO body
// is a root SymbolTable), so lookup walks this explicit stack
// innermost-first rather than SymbolTable.Parent.

func (a *Analyzer) pushScope(t *symbols.SymbolTable) {
	a.scopeStack = append(a.scopeStack, t)
}

func (a *Analyzer) popScope() {
	a.scopeStack = a.scopeStack[:len(a.scopeStack)-1]
}

func (a *Analyzer) currentScope() *symbols.SymbolTable {
	return a.scopeStack[len(a.scopeStack)-1]
}

func (a *Analyzer) lookup(name string) (*symbols.Symbol, bool) {
	for i := len(a.scopeStack) - 1; i >= 0; i-- {
		if sym, ok := a.scopeStack[i].FindLocal(name); ok {
			return sym, true
		}
	}
	return nil, false
}

func (a *Analyzer) pushLoop(kind ast.LoopFrameKind, node ast.Node) {
	a.loopStack = append(a.loopStack, loopFrame{kind: kind, node: node})
}

func (a *Analyzer) popLoop() {
	a.loopStack = a.loopStack[:len(a.loopStack)-1]
}
