// Package driver wires the lexer, parser, semantic analyzer and
// codegen contract into the single-invocation pipeline `cmd/lbc`
// drives: parse every input file into a module sharing one
// types.Context, resolve IMPORTs, then either dump the parsed AST
// before analysis, or run the four-phase analyzer and then either
// pretty-print the analyzed source or hand the typed module to a
// codegen.Backend. CLI flag binding stays one layer up, in
// cmd/lbc, so Run never touches a flag-parsing package directly.
package driver

import (
	"path/filepath"
	"strings"
)

// OptLevel is the `-O0|-OS|-O1|-O2|-O3` optimization level. The driver
// itself never optimizes anything — this is threaded through to the
// external toolchain collaborator once a real Backend exists.
type OptLevel int

const (
	O0 OptLevel = iota
	OS
	O1
	O2
	O3
)

func (o OptLevel) String() string {
	switch o {
	case O0:
		return "-O0"
	case OS:
		return "-OS"
	case O1:
		return "-O1"
	case O2:
		return "-O2"
	case O3:
		return "-O3"
	default:
		return "-O2"
	}
}

// Options binds every flag the command-line surface supports. cmd/lbc
// populates this with pflag; driver.Run never touches a flag package
// directly.
type Options struct {
	Inputs []string

	Output       string
	CompileOnly  bool // -c
	EmitAssembly bool // -S
	EmitLLVM     bool // -emit-llvm
	OptLevel     OptLevel
	Target32     bool // -m32 (false == -m64, the default)
	Debug        bool // -g
	Verbose      bool // -v

	MainFile string // -main <file>
	NoMain   bool   // -no-main

	ToolchainDir string // --toolchain <dir>

	ASTDump  bool // -ast-dump
	CodeDump bool // -code-dump
}

// WordSize returns the target word size in bits.
func (o *Options) WordSize() int {
	if o.Target32 {
		return 32
	}
	return 64
}

// PlannedOutput returns the path the external toolchain would write for
// input under the current -c/-S/-emit-llvm combination: an explicit -o
// wins, otherwise the input's basename with the extension the selected
// emission mode produces (`.o`, `.s`, `.bc`, `.ll`, or no extension for
// a linked executable).
func (o *Options) PlannedOutput(input string) string {
	if o.Output != "" {
		return o.Output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	switch {
	case o.EmitAssembly && o.EmitLLVM:
		return base + ".ll"
	case o.CompileOnly && o.EmitLLVM:
		return base + ".bc"
	case o.EmitAssembly:
		return base + ".s"
	case o.CompileOnly:
		return base + ".o"
	default:
		return base
	}
}
