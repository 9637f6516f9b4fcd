package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightbasic/lbc/internal/driver"
)

// resetFlags resets the package-level vars the root command's flags are
// bound to (opts, optLevelFlag) and gives the command fresh output
// buffers, so state from one test's SetArgs/Execute doesn't leak into
// the next. The flags themselves stay as registered once in init().
func resetFlags(t *testing.T) (out, errOut *bytes.Buffer) {
	t.Helper()
	opts = driver.Options{}
	optLevelFlag = "2"
	out, errOut = &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return out, errOut
}

func TestRootCmd_CompilesSourceFile(t *testing.T) {
	dir := t.TempDir()
	src := "[ ALIAS = \"puts\" ]\n" +
		"DECLARE SUB C_PUTS(S AS ZSTRING)\n" +
		"DIM X AS INTEGER = 5\n" +
		"C_PUTS(\"hi\")\n"
	path := filepath.Join(dir, "main.bas")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	out, errOut := resetFlags(t)

	code := executeArgs([]string{"-code-dump", path})
	assert.Equal(t, 0, code, "stderr: %s", errOut.String())
	assert.Contains(t, out.String(), "C_PUTS")
}

func TestRootCmd_NoInputs(t *testing.T) {
	resetFlags(t)

	code := executeArgs([]string{})
	assert.Equal(t, 1, code)
}

func TestRootCmd_UnrecognizedExtension(t *testing.T) {
	resetFlags(t)

	code := executeArgs([]string{"foo.txt"})
	assert.Equal(t, 1, code)
}

func TestRootCmd_SyntaxErrorExitsNonZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bas")
	require.NoError(t, os.WriteFile(path, []byte("DIM x AS\n"), 0o644))

	_, errOut := resetFlags(t)

	code := executeArgs([]string{path})
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, errOut.String())
}

func TestRootCmd_InvalidOptLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.bas")
	require.NoError(t, os.WriteFile(path, []byte("PRINT 1\n"), 0o644))

	resetFlags(t)

	code := executeArgs([]string{"-O9", path})
	assert.Equal(t, 1, code)
}
