package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/parser"
	"github.com/lightbasic/lbc/internal/sema"
	"github.com/lightbasic/lbc/internal/types"
)

// recordingBackend wraps NullBackend to note which names Generator
// declared and how many blocks it opened, so tests can assert on the
// lowering shape without a real IR builder.
type recordingBackend struct {
	*NullBackend
	globals   []string
	functions []string
	blocks    []string
	phis      int
}

func (b *recordingBackend) DeclareGlobal(name string, t types.Type, external bool) Global {
	b.globals = append(b.globals, name)
	return b.NullBackend.DeclareGlobal(name, t, external)
}

func (b *recordingBackend) DeclareFunction(name string, sig *types.FunctionType, external bool) Function {
	b.functions = append(b.functions, name)
	return b.NullBackend.DeclareFunction(name, sig, external)
}

func (b *recordingBackend) NewBlock(label string) Block {
	b.blocks = append(b.blocks, label)
	return b.NullBackend.NewBlock(label)
}

func (b *recordingBackend) Phi(t types.Type, edges []PhiEdge) Value {
	b.phis++
	return b.NullBackend.Phi(t, edges)
}

func generate(t *testing.T, src string) *recordingBackend {
	t.Helper()
	diags := diag.New("test.bas", src)
	tc := types.NewContext()
	arena := ast.NewArena()

	mod := parser.Parse("test.bas", src, diags, tc, arena)
	require.False(t, diags.HasErrors(), "parse errors: %s", diags.FormatAll())

	a := sema.New(diags, tc, arena)
	require.True(t, a.Analyze(mod), "analysis errors: %s", diags.FormatAll())

	backend := &recordingBackend{NullBackend: NewNullBackend()}
	New(backend, tc).Generate(mod, a.ImplicitMain())
	return backend
}

func TestGenerate_DeclaresGlobalsAndFunctionsUnderIdentifier(t *testing.T) {
	src := "DIM COUNTER AS INTEGER = 0\n" +
		"FUNCTION ADD(A AS INTEGER, B AS INTEGER) AS INTEGER\n" +
		"\tRETURN A + B\n" +
		"END FUNCTION\n" +
		"COUNTER = ADD(1, 2)\n"
	b := generate(t, src)
	assert.Equal(t, []string{"COUNTER"}, b.globals)
	// The implicit entry point is emitted under its lowercase alias.
	assert.Equal(t, []string{"ADD", "main"}, b.functions)
}

func TestGenerate_ShortCircuitAndLowersToPhi(t *testing.T) {
	src := "DIM A AS BOOLEAN = TRUE\n" +
		"DIM B AS BOOLEAN = FALSE\n" +
		"DIM C AS BOOLEAN\n" +
		"C = A AND B\n"
	b := generate(t, src)
	assert.GreaterOrEqual(t, b.phis, 1, "AND must lower through a phi join")
	assert.Contains(t, b.blocks, "logic.rhs")
	assert.Contains(t, b.blocks, "logic.merge")
}

func TestGenerate_SkippedForLoopEmitsNoBody(t *testing.T) {
	src := "FOR I = 1 TO 10 STEP -1\n\tDIM X = I\nNEXT I\n"
	b := generate(t, src)
	assert.NotContains(t, b.blocks, "for.body", "a Skip-direction loop must not emit its body")
}

func TestGenerate_UnknownDirectionForLoopEmitsFullLoop(t *testing.T) {
	src := "DIM N AS INTEGER = 10\n" +
		"FOR I = 1 TO N\n\tDIM X = I\nNEXT I\n"
	b := generate(t, src)
	assert.Contains(t, b.blocks, "for.cond")
	assert.Contains(t, b.blocks, "for.body")
	assert.Contains(t, b.blocks, "for.latch")
	assert.Contains(t, b.blocks, "for.exit")
}

func TestGenerate_DoLoopEmitsHeaderAndLatch(t *testing.T) {
	src := "DIM DONE AS BOOLEAN = FALSE\n" +
		"DO WHILE NOT DONE\n\tDONE = TRUE\nLOOP\n"
	b := generate(t, src)
	assert.Contains(t, b.blocks, "do.header")
	assert.Contains(t, b.blocks, "do.latch")
}

func TestGenerate_ExternalDeclareUsesAlias(t *testing.T) {
	src := "DECLARE SUB PUTS ALIAS \"puts\" (S AS ZSTRING)\nPUTS(\"hi\")\n"
	b := generate(t, src)
	assert.Contains(t, b.functions, "puts")
}
