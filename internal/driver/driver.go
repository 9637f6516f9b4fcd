package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/codegen"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/parser"
	"github.com/lightbasic/lbc/internal/sema"
	"github.com/lightbasic/lbc/internal/types"
)

// unit is one input file carried through the pipeline: its own
// diagnostic engine and arena (each translation unit owns both), the
// parsed module, and — once analyzed — the synthesized implicit-main
// declaration, if any.
type unit struct {
	path         string
	diags        *diag.Engine
	arena        *ast.Arena
	mod          *ast.Module
	implicitMain *ast.FuncDecl
}

// Run executes one compiler invocation end to end: validate flags,
// parse and IMPORT-resolve every input against one shared
// types.Context, then either dump the parsed, not yet analyzed AST
// (-ast-dump), or analyze each module and then either print the
// analyzed source (-code-dump) or hand the typed modules to a
// codegen.Backend.
// It returns the process exit code: 0 on success, 1 on any failure,
// matching the CLI's exit-code contract; it never calls os.Exit
// itself so callers (tests, cmd/lbc) can inspect stdout/stderr.
func Run(opts *Options, stdout, stderr io.Writer) int {
	if len(opts.Inputs) == 0 {
		fmt.Fprintln(stderr, "lbc: no input files")
		return 1
	}
	if (opts.ASTDump || opts.CodeDump) && len(opts.Inputs) > 1 {
		fmt.Fprintln(stderr, "lbc: -ast-dump and -code-dump accept exactly one input file")
		return 1
	}
	if opts.Output != "" && len(opts.Inputs) > 1 && (opts.CompileOnly || opts.EmitAssembly) {
		fmt.Fprintln(stderr, "lbc: -o cannot name a single output file for multiple -c/-S inputs")
		return 1
	}

	tc := types.NewContext()
	mainTarget := opts.Inputs[0]
	if opts.MainFile != "" {
		mainTarget = opts.MainFile
	}

	resolver := newImportResolver(tc)
	units := make([]*unit, 0, len(opts.Inputs))
	failed := false

	for _, path := range opts.Inputs {
		if opts.Verbose {
			fmt.Fprintf(stderr, "lbc: compiling %s (%s, %d-bit, debug=%v) -> %s\n",
				path, opts.OptLevel, opts.WordSize(), opts.Debug, opts.PlannedOutput(path))
			if opts.ToolchainDir != "" {
				fmt.Fprintf(stderr, "lbc: toolchain at %s\n", opts.ToolchainDir)
			}
		}

		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "lbc: %v\n", err)
			failed = true
			continue
		}

		diags := diag.New(path, string(src))
		arena := ast.NewArena()
		mod, ok := parseFile(path, string(src), diags, tc, arena)
		if !ok {
			fmt.Fprint(stderr, diags.FormatAll())
			failed = true
			continue
		}

		switch {
		case opts.NoMain:
			mod.ImplicitMain = false
		case path == mainTarget:
			// leave the parser's own determination: true unless this
			// file already declared its own FUNCTION MAIN.
		default:
			mod.ImplicitMain = false
		}

		if err := resolver.resolve(mod, filepath.Dir(path), diags); err != nil {
			fmt.Fprintf(stderr, "lbc: %v\n", err)
			failed = true
			continue
		}
		if diags.HasErrors() {
			fmt.Fprint(stderr, diags.FormatAll())
			failed = true
			continue
		}

		units = append(units, &unit{path: path, diags: diags, arena: arena, mod: mod})
	}
	if failed {
		return 1
	}

	if opts.ASTDump {
		data, err := ast.DumpJSON(units[0].mod)
		if err != nil {
			fmt.Fprintf(stderr, "lbc: %v\n", err)
			return 1
		}
		stdout.Write(data)
		fmt.Fprintln(stdout)
		return 0
	}

	for _, u := range units {
		a := sema.New(u.diags, tc, u.arena)
		if !a.Analyze(u.mod) {
			fmt.Fprint(stderr, u.diags.FormatAll())
			failed = true
			continue
		}
		u.implicitMain = a.ImplicitMain()
	}
	if failed {
		return 1
	}

	if opts.CodeDump {
		for _, u := range units {
			fmt.Fprint(stdout, ast.DebugPrint(u.mod))
		}
		return 0
	}

	backend := codegen.NewNullBackend()
	for _, u := range units {
		codegen.New(backend, tc).Generate(u.mod, u.implicitMain)
	}

	if opts.Verbose {
		fmt.Fprintln(stderr, "lbc: native code emission is delegated to the external LLVM toolchain; this build only exercises the codegen contract")
	}

	return 0
}

// parseFile runs parser.Parse, recovering the fail-fast panic a syntax
// error raises so Run can treat it like any other diagnostic instead
// of crashing.
func parseFile(fileID, src string, diags *diag.Engine, tc *types.Context, arena *ast.Arena) (mod *ast.Module, ok bool) {
	defer func() {
		if diag.RecoverFatal() {
			ok = false
		}
	}()
	mod = parser.Parse(fileID, src, diags, tc, arena)
	return mod, !diags.HasErrors()
}
