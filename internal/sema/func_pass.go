package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/types"
)

// funcPass registers every function/sub signature (including DECLARE,
// with parameter and return types resolved and any ALIAS recorded) and
// every top-level variable at module scope. Top-level statements that
// are neither declarations nor type/import constructs have no legal meaning
// unless the module has an implicit main, in which case they become
// its body.
func (a *Analyzer) funcPass(mod *ast.Module) {
	var loose []ast.Stmt
	for _, s := range mod.Statements {
		switch n := s.(type) {
		case *ast.FuncDecl:
			a.declareFunc(n)
		case *ast.FunctionStmt:
			a.declareFunc(n.Decl)
		case *ast.VarDecl:
			a.declareGlobalVar(n)
		case *ast.TypeDecl, *ast.ImportStmt:
			// TypeDecl: already registered by the UDT declarer pass.
			// ImportStmt: its sibling module's declarations are merged
			// into mod.Symbols by the driver before analysis starts,
			// so there is nothing left to do here.
		default:
			loose = append(loose, s)
		}
	}

	if mod.ImplicitMain {
		a.synthesizeImplicitMain(mod, loose)
		return
	}
	for _, s := range loose {
		if _, isReturn := s.(*ast.ReturnStmt); isReturn {
			a.diags.ReportError(diag.UnexpectedReturn, s.Range())
			continue
		}
		a.diags.ReportError(diag.IllegalTopLevelStatement, s.Range(), stmtKindName(s))
	}
}

func (a *Analyzer) declareFunc(d *ast.FuncDecl) {
	paramTypes := make([]types.Type, len(d.Params))
	for i, p := range d.Params {
		paramTypes[i] = a.resolveTypeExpr(p.TypeExpr)
	}
	ret := types.Type(a.types.Void())
	if d.ReturnType != nil {
		ret = a.resolveTypeExpr(d.ReturnType)
	}
	fnType := a.types.Function(ret, paramTypes, d.Variadic)

	alias := attrValue(d.Attributes, "ALIAS")
	if d.Name == "MAIN" && alias == "" {
		alias = "main"
	}

	sym := &symbols.Symbol{
		Alias:           alias,
		Type:            fnType,
		Flags:           symbols.Callable,
		ExternalLinkage: d.IsForwardOnly,
	}
	if err := a.module.Symbols.Insert(d.Name, sym); err != nil {
		a.diags.ReportError(diag.Redefinition, d.Range(), d.Name)
		return
	}
	d.Symbol = sym
}

func (a *Analyzer) declareGlobalVar(d *ast.VarDecl) {
	var t types.Type
	if d.TypeExpr != nil {
		t = a.resolveTypeExpr(d.TypeExpr)
	}
	sym := &symbols.Symbol{Type: t, Flags: symbols.Addressable | symbols.Assignable}
	if err := a.module.Symbols.Insert(d.Name, sym); err != nil {
		a.diags.ReportError(diag.Redefinition, d.Range(), d.Name)
		return
	}
	d.Symbol = sym
}

// synthesizeImplicitMain wraps a module's loose top-level statements
// in a parameterless FUNCTION MAIN declaring a VOID return. The
// toolchain gives the entry point an i32 exit-code convention at the
// codegen ABI boundary; the only place that leaks into analysis is a
// top-level RETURN value, which analyzeReturnStmt coerces to INTEGER.
func (a *Analyzer) synthesizeImplicitMain(mod *ast.Module, loose []ast.Stmt) {
	scope := symbols.New()
	body := ast.NewStmtList(a.arena, mod.Range(), scope)
	body.Stmts = loose

	decl := ast.NewFuncDecl(a.arena, mod.Range(), "MAIN", nil, nil, false)
	decl.Body = body
	decl.BodySymbols = symbols.New()

	sym := &symbols.Symbol{
		Alias: "main",
		Type:  a.types.Function(a.types.Void(), nil, false),
		Flags: symbols.Callable,
	}
	if err := mod.Symbols.Insert("MAIN", sym); err != nil {
		a.diags.ReportError(diag.Redefinition, mod.Range(), "MAIN")
		return
	}
	decl.Symbol = sym
	a.implicitMain = decl
}

func attrValue(attrs []ast.Attribute, name string) string {
	for _, at := range attrs {
		if at.Name == name {
			return at.Value
		}
	}
	return ""
}

func stmtKindName(s ast.Stmt) string {
	switch s.(type) {
	case *ast.AssignStmt:
		return "assignment"
	case *ast.IfStmt:
		return "IF"
	case *ast.ForStmt:
		return "FOR"
	case *ast.DoLoopStmt:
		return "DO"
	case *ast.ReturnStmt:
		return "RETURN"
	case *ast.ContinuationStmt:
		return "EXIT/CONTINUE"
	case *ast.FuncDecl:
		return "DECLARE"
	case *ast.TypeDecl:
		return "TYPE"
	case *ast.ImportStmt:
		return "IMPORT"
	default:
		return "this statement"
	}
}
