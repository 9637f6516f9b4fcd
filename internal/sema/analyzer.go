// Package sema implements LightBASIC's semantic analyzer: a
// four-phase visitor that mutates the parser's AST in place, attaching
// canonical types, resolved symbols, and implicit CAST nodes. One
// Analyzer struct carries the scope stack, the control-flow stack, and
// the per-module registries the phases share, with one *_pass.go file
// per phase and separate files for expressions, FOR, and folding.
package sema

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/types"
)

// loopFrame is one entry of the control-flow stack consulted by
// EXIT/CONTINUE validation during the body pass.
type loopFrame struct {
	kind ast.LoopFrameKind
	node ast.Node // *ast.ForStmt or *ast.DoLoopStmt
}

// Analyzer holds the state shared by the four phases run against one
// module: the diagnostic sink, the type interner, the arena that owns
// any node it synthesizes (implicit CAST wrappers, the implicit-main
// FuncDecl), and the small amount of body-pass context (the function
// currently being analyzed and the open-loop stack).
type Analyzer struct {
	diags *diag.Engine
	types *types.Context
	arena *ast.Arena

	module *ast.Module

	// declaredUDTs tracks which UDT names have a real TYPE declaration,
	// distinct from types.Context's lazily created forward UDTType
	// instances — a name referenced by a TypeExpr before its TYPE
	// declaration is seen is not yet "declared", only forward-named.
	declaredUDTs map[string]*ast.TypeDecl

	// implicitMain is the synthesized FuncDecl wrapping a module's loose
	// top-level statements, built by the function-declarer pass when
	// mod.ImplicitMain is set. nil if the module has no implicit main.
	implicitMain *ast.FuncDecl

	// scopeStack is the per-function symbol-table stack the body pass
	// runs on: name resolution walks it innermost-first rather than
	// following each SymbolTable's own parent pointer, since nested
	// block scopes (IF/FOR/DO bodies) are built by the parser with no
	// parent wiring of their own.
	scopeStack []*symbols.SymbolTable
	loopStack  []loopFrame

	currentFunc *ast.FuncDecl
}

// New creates an Analyzer for one module, reporting to diags and
// interning types through tc. arena owns every node the analyzer
// allocates (implicit casts, the synthesized implicit-main FuncDecl).
func New(diags *diag.Engine, tc *types.Context, arena *ast.Arena) *Analyzer {
	return &Analyzer{
		diags:        diags,
		types:        tc,
		arena:        arena,
		declaredUDTs: make(map[string]*ast.TypeDecl),
	}
}

// Analyze runs the four phases against mod in order, stopping early
// if a phase leaves the diagnostic engine with errors. It returns
// false if analysis failed; the caller should not hand a failed module
// to codegen.
func (a *Analyzer) Analyze(mod *ast.Module) (ok bool) {
	defer func() {
		if diag.RecoverFatal() {
			ok = false
		}
	}()

	a.module = mod

	a.typePass(mod)
	if a.diags.HasErrors() {
		return false
	}

	a.udtPass(mod)
	if a.diags.HasErrors() {
		return false
	}

	a.funcPass(mod)
	if a.diags.HasErrors() {
		return false
	}

	a.bodyPass(mod)
	return !a.diags.HasErrors()
}

// Analyze is the package-level convenience entry point used by the
// driver: construct a fresh Analyzer and run it to completion.
func Analyze(mod *ast.Module, diags *diag.Engine, tc *types.Context, arena *ast.Arena) bool {
	a := New(diags, tc, arena)
	return a.Analyze(mod)
}

// AnalyzeDeclarations runs only the first three phases (type, UDT,
// function declarer) against mod, stopping short of the body pass. The
// driver uses this for an IMPORT target: a sibling module only needs
// its function/type signatures registered in mod.Symbols so the
// importing module can resolve calls into it; the imported module's
// own statement bodies are analyzed separately; when it is itself
// compiled as one of the invocation's input files.
func (a *Analyzer) AnalyzeDeclarations(mod *ast.Module) (ok bool) {
	defer func() {
		if diag.RecoverFatal() {
			ok = false
		}
	}()

	a.module = mod

	a.typePass(mod)
	if a.diags.HasErrors() {
		return false
	}

	a.udtPass(mod)
	if a.diags.HasErrors() {
		return false
	}

	a.funcPass(mod)
	return !a.diags.HasErrors()
}

// ImplicitMain returns the synthesized FUNCTION MAIN wrapping this
// module's loose top-level statements, or nil if the module declared
// its own MAIN (or -no-main suppressed synthesis before parsing, in
// which case mod.ImplicitMain was never set and funcPass never calls
// synthesizeImplicitMain). Codegen needs this because the synthesized
// declaration is never spliced back into mod.Statements — it exists
// only as this field.
func (a *Analyzer) ImplicitMain() *ast.FuncDecl { return a.implicitMain }

// symbolValueCategory converts a Symbol's capability flags into the
// equivalent expression-level ValueCategory flags, computed fresh for
// each expression from whatever symbol it resolves to.
func symbolValueCategory(sym *symbols.Symbol) ast.ValueCategory {
	var v ast.ValueCategory
	if sym.IsAddressable() {
		v |= ast.VCAddressable
	}
	if sym.IsDereferenceable() {
		v |= ast.VCDereferenceable
	}
	if sym.IsAssignable() {
		v |= ast.VCAssignable
	}
	if sym.IsCallable() {
		v |= ast.VCCallable
	}
	return v
}
