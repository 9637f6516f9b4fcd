package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/sema"
	"github.com/lightbasic/lbc/internal/types"
)

// importResolver parses and declares the sibling modules an IMPORT
// statement names, relative to the importing file's directory, and
// merges each target's function declarations into the importing
// module's symbol table before the function-declarer pass runs — so
// a call to an imported function resolves during body analysis the
// same way a call to a same-file function does. TYPE declarations
// need no such merge: they are registered by name in tc, the
// types.Context every module in one invocation shares, so a UDT
// declared in one file is already canonical by the time a sibling
// file's type pass resolves a TypeExpr naming it.
type importResolver struct {
	tc      *types.Context
	cache   map[string]*ast.Module
	pending map[string]bool
}

func newImportResolver(tc *types.Context) *importResolver {
	return &importResolver{
		tc:      tc,
		cache:   make(map[string]*ast.Module),
		pending: make(map[string]bool),
	}
}

// resolve walks mod's IMPORT statements and merges each target's
// function symbols into mod.Symbols, reporting a Redefinition
// diagnostic through diags if an imported name collides with one
// mod already declared at module scope.
func (r *importResolver) resolve(mod *ast.Module, dir string, diags *diag.Engine) error {
	for _, s := range mod.Statements {
		imp, ok := s.(*ast.ImportStmt)
		if !ok {
			continue
		}
		target, err := r.load(filepath.Join(dir, imp.ModuleName+".bas"))
		if err != nil {
			return fmt.Errorf("IMPORT %s: %w", imp.ModuleName, err)
		}
		for _, sym := range target.Symbols.Symbols() {
			if _, isFunc := sym.Type.(*types.FunctionType); !isFunc {
				continue
			}
			if insertErr := mod.Symbols.Insert(sym.Name, sym); insertErr != nil {
				diags.ReportError(diag.Redefinition, imp.Range(), sym.Name)
			}
		}
	}
	return nil
}

// load returns the module at path, parsing and declaration-analyzing
// it on first request and caching the result for any later importer —
// a diamond-shaped import graph parses its shared leaf only once.
func (r *importResolver) load(path string) (*ast.Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if mod, ok := r.cache[abs]; ok {
		return mod, nil
	}
	if r.pending[abs] {
		return nil, fmt.Errorf("import cycle at %s", abs)
	}
	r.pending[abs] = true
	defer delete(r.pending, abs)

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	diags := diag.New(abs, string(src))
	arena := ast.NewArena()
	mod, ok := parseFile(abs, string(src), diags, r.tc, arena)
	if !ok {
		return nil, fmt.Errorf("%s", diags.FormatAll())
	}
	// An imported file is a library: its loose top-level statements,
	// if any, never run as an entry point.
	mod.ImplicitMain = false

	if err := r.resolve(mod, filepath.Dir(abs), diags); err != nil {
		return nil, err
	}

	a := sema.New(diags, r.tc, arena)
	if !a.AnalyzeDeclarations(mod) {
		return nil, fmt.Errorf("%s", diags.FormatAll())
	}

	r.cache[abs] = mod
	return mod, nil
}
