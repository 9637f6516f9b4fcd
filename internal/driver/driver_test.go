package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRun_CompilesSingleSource(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bas",
		"DIM X AS INTEGER = 1\nX = X + 1\n")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{path}}, &out, &errOut)
	assert.Equal(t, 0, code, "stderr: %s", errOut.String())
}

func TestRun_SemanticErrorExitsOne(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.bas", "DIM X = Y\n")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{path}}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "undefined identifier")
}

func TestRun_ImportMergesSiblingDeclarations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "MATHLIB.bas",
		"FUNCTION TRIPLE(X AS INTEGER) AS INTEGER\n\tRETURN X * 3\nEND FUNCTION\n")
	path := writeFile(t, dir, "main.bas",
		"IMPORT MATHLIB\nDIM X = TRIPLE(2)\n")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{path}}, &out, &errOut)
	assert.Equal(t, 0, code, "stderr: %s", errOut.String())
}

func TestRun_ImportCycleFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.bas", "IMPORT B\n")
	writeFile(t, dir, "B.bas", "IMPORT A\n")
	path := filepath.Join(dir, "A.bas")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{path}}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "import cycle")
}

func TestRun_MissingImportTargetFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bas", "IMPORT NOWHERE\n")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{path}}, &out, &errOut)
	assert.Equal(t, 1, code)
}

func TestRun_ASTDumpSingleInputOnly(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.bas", "DIM X AS INTEGER = 1\n")
	b := writeFile(t, dir, "b.bas", "DIM Y AS INTEGER = 2\n")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{a, b}, ASTDump: true}, &out, &errOut)
	assert.Equal(t, 1, code)

	out.Reset()
	errOut.Reset()
	code = Run(&Options{Inputs: []string{a}, ASTDump: true}, &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), `"file"`)
}

func TestRun_NoMainRejectsLooseStatements(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.bas", "DIM X AS INTEGER = 1\nRETURN 42\n")

	var out, errOut bytes.Buffer
	code := Run(&Options{Inputs: []string{path}, NoMain: true}, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "RETURN outside of a function body")
}

func TestOptions_PlannedOutput(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"link", Options{}, "prog"},
		{"object", Options{CompileOnly: true}, "prog.o"},
		{"assembly", Options{EmitAssembly: true}, "prog.s"},
		{"bitcode", Options{CompileOnly: true, EmitLLVM: true}, "prog.bc"},
		{"ir", Options{EmitAssembly: true, EmitLLVM: true}, "prog.ll"},
		{"explicit", Options{Output: "out.bin", CompileOnly: true}, "out.bin"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.opts.PlannedOutput("prog.bas"))
		})
	}
}

func TestOptions_WordSize(t *testing.T) {
	assert.Equal(t, 64, (&Options{}).WordSize())
	assert.Equal(t, 32, (&Options{Target32: true}).WordSize())
}
