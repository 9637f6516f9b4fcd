// Package cmd implements the `lbc` command-line surface: flag parsing
// and input classification only. Everything past flag binding is
// delegated to internal/driver.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lightbasic/lbc/internal/driver"
)

var (
	// Version is overwritten by -ldflags at release build time.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var opts driver.Options

var optLevelFlag string

var rootCmd = &cobra.Command{
	Use:   "lbc [flags] <input...>",
	Short: "LightBASIC ahead-of-time compiler",
	Long: `lbc compiles LightBASIC source files to native executables or
object code by lowering through LLVM IR.

Positional arguments are input files, classified by extension:
  .bas  source              .s   assembly
  .o    object               .ll  LLVM IR
  .bc   bitcode`,
	Version:           Version,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	RunE:              runCompile,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "output file")
	flags.BoolVarP(&opts.CompileOnly, "compile-only", "c", false, "compile only, produce a .o")
	flags.BoolVarP(&opts.EmitAssembly, "emit-assembly", "S", false, "emit assembly")
	flags.BoolVar(&opts.EmitLLVM, "emit-llvm", false, "combined with -c/-S, emit .bc/.ll instead of .o/.s")
	// -O0|-OS|-O1|-O2|-O3 is a single GCC-style token (shorthand with
	// the level attached, no space); pflag's short-flag parser supports
	// this for a non-boolean shorthand automatically.
	flags.StringVarP(&optLevelFlag, "opt-level", "O", "2", "optimization level: 0, s, 1, 2, 3")
	flags.BoolVar(&opts.Target32, "m32", false, "target 32-bit word size")
	flags.Bool("m64", true, "target 64-bit word size (default)")
	flags.BoolVarP(&opts.Debug, "debug", "g", false, "debug build")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.MainFile, "main", "", "designate the file whose top-level statements form the implicit MAIN")
	flags.BoolVar(&opts.NoMain, "no-main", false, "disable implicit-main synthesis")
	flags.StringVar(&opts.ToolchainDir, "toolchain", "", "path to the LLVM toolchain (opt, llc, ld)")
	flags.BoolVar(&opts.ASTDump, "ast-dump", false, "dump the JSON AST of a single source file")
	flags.BoolVar(&opts.CodeDump, "code-dump", false, "pretty-print a single source file after analysis")

	rootCmd.SetVersionTemplate(fmt.Sprintf("lbc version {{.Version}}\ncommit: %s\n", GitCommit))
}

// singleDashLongNames collects the multi-character flags the CLI spells
// with a single dash (`-emit-llvm`, `-ast-dump`, ...), clang/GCC style,
// rather than pflag's GNU-style `--long`: every registered long flag
// that has no shorthand letter. preprocessArgs rewrites them so pflag's
// parser — which would otherwise read "-emit-llvm" as the shorthand
// cluster e,m,i,t,... — sees the double-dash form it expects.
func singleDashLongNames() map[string]bool {
	names := make(map[string]bool)
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if len(f.Name) > 1 && f.Shorthand == "" {
			names[f.Name] = true
		}
	})
	return names
}

func preprocessArgs(args []string) []string {
	long := singleDashLongNames()
	out := make([]string, len(args))
	for i, a := range args {
		if len(a) > 1 && a[0] == '-' && a[1] != '-' {
			name, _, _ := cutAny(a[1:], '=')
			if long[name] {
				a = "-" + a
			}
		}
		out[i] = a
	}
	return out
}

func cutAny(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// Execute parses flags, validates them, and runs the compiler
// pipeline. It returns the process exit code rather than
// calling os.Exit itself so main stays a one-liner.
func Execute() int {
	return executeArgs(os.Args[1:])
}

func executeArgs(args []string) int {
	rootCmd.SetArgs(preprocessArgs(args))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "lbc: %v\n", err)
		return 1
	}
	return exitCode
}

// exitCode carries driver.Run's result out of RunE, since cobra's
// RunE signature has no room for an int exit status alongside error.
var exitCode int

func runCompile(cmd *cobra.Command, args []string) error {
	level, err := parseOptLevel(optLevelFlag)
	if err != nil {
		return err
	}
	opts.OptLevel = level

	if len(args) == 0 {
		return fmt.Errorf("no input files")
	}

	var sources []string
	for _, a := range args {
		switch filepath.Ext(a) {
		case ".bas":
			sources = append(sources, a)
		case ".s", ".o", ".ll", ".bc":
			// Assembling/linking these is the external toolchain
			// driver's job; lbc only recognizes the extension so it
			// round-trips through -o.
			if opts.Verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "lbc: %s passed through to the external toolchain\n", a)
			}
		default:
			return fmt.Errorf("%s: unrecognized input file extension", a)
		}
	}
	if len(sources) == 0 {
		return fmt.Errorf("no .bas source files to compile")
	}
	opts.Inputs = sources

	exitCode = driver.Run(&opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	return nil
}

func parseOptLevel(s string) (driver.OptLevel, error) {
	switch s {
	case "0":
		return driver.O0, nil
	case "s", "S":
		return driver.OS, nil
	case "1":
		return driver.O1, nil
	case "2", "":
		return driver.O2, nil
	case "3":
		return driver.O3, nil
	default:
		return driver.O2, fmt.Errorf("invalid optimization level -O%s", s)
	}
}
