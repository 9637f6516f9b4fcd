package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/diag"
	"github.com/lightbasic/lbc/internal/parser"
	"github.com/lightbasic/lbc/internal/types"
)

// analyzeOK parses and analyzes src, failing the test on any fatal or
// accumulated error diagnostic.
func analyzeOK(t *testing.T, src string) (*ast.Module, *types.Context) {
	t.Helper()
	diags := diag.New("test.bas", src)
	tc := types.NewContext()
	arena := ast.NewArena()

	var mod *ast.Module
	func() {
		defer func() {
			if diag.RecoverFatal() {
				t.Fatalf("unexpected fatal diagnostic while parsing: %s", diags.FormatAll())
			}
		}()
		mod = parser.Parse("test.bas", src, diags, tc, arena)
	}()
	require.False(t, diags.HasErrors(), "parse errors: %s", diags.FormatAll())

	ok := Analyze(mod, diags, tc, arena)
	require.True(t, ok, "analysis errors: %s", diags.FormatAll())
	return mod, tc
}

// analyzeFails parses (which must succeed) and analyzes src, asserting
// that analysis reports at least one error.
func analyzeFails(t *testing.T, src string) *diag.Engine {
	t.Helper()
	diags := diag.New("test.bas", src)
	tc := types.NewContext()
	arena := ast.NewArena()

	mod := parser.Parse("test.bas", src, diags, tc, arena)
	require.False(t, diags.HasErrors(), "unexpected parse errors: %s", diags.FormatAll())

	ok := Analyze(mod, diags, tc, arena)
	assert.False(t, ok)
	assert.True(t, diags.HasErrors())
	return diags
}

func TestAnalyze_VarDeclTypeFromInit(t *testing.T) {
	mod, tc := analyzeOK(t, "DIM X = 1\n")
	d := mod.Statements[0].(*ast.VarDecl)
	assert.Same(t, tc.Integral(32, true), d.Symbol.Type)
}

func TestAnalyze_VarDeclDeclaredType(t *testing.T) {
	mod, tc := analyzeOK(t, "DIM X AS DOUBLE = 1\n")
	d := mod.Statements[0].(*ast.VarDecl)
	assert.Same(t, tc.FloatingPoint(64), d.Symbol.Type)

	lit, ok := d.Init.(*ast.LiteralExpr)
	require.True(t, ok, "expected the INTEGER literal to fold to a DOUBLE literal")
	assert.Equal(t, ast.LitFloat, lit.LitKind)
	assert.Equal(t, 1.0, lit.F64)
}

func TestAnalyze_UndefinedIdentifier(t *testing.T) {
	analyzeFails(t, "DIM X = Y\n")
}

func TestAnalyze_Redefinition(t *testing.T) {
	analyzeFails(t, "DIM X AS INTEGER\nDIM X AS INTEGER\n")
}

func TestAnalyze_TypeDeclMembers(t *testing.T) {
	src := "TYPE POINT\n\tX AS INTEGER\n\tY AS INTEGER\nEND TYPE\nDIM P AS POINT\n"
	mod, tc := analyzeOK(t, src)
	d := mod.Statements[1].(*ast.VarDecl)
	udt, ok := d.Symbol.Type.(*types.UDTType)
	require.True(t, ok)
	member, found := udt.Member("X")
	require.True(t, found)
	assert.Same(t, tc.Integral(32, true), member.Type)
}

func TestAnalyze_MemberAccessResolvesField(t *testing.T) {
	src := "TYPE POINT\n\tX AS INTEGER\nEND TYPE\nDIM P AS POINT\nP.X = 5\n"
	mod, _ := analyzeOK(t, src)
	assign := mod.Statements[2].(*ast.AssignStmt)
	member := assign.LHS.(*ast.MemberExpr)
	require.NotNil(t, member.Member)
	assert.Equal(t, "X", member.Member.Name)
}

func TestAnalyze_UnknownMemberFails(t *testing.T) {
	src := "TYPE POINT\n\tX AS INTEGER\nEND TYPE\nDIM P AS POINT\nP.Z = 5\n"
	analyzeFails(t, src)
}

func TestAnalyze_FunctionCallArityMismatch(t *testing.T) {
	src := "FUNCTION ADD(A AS INTEGER, B AS INTEGER) AS INTEGER\n\tRETURN A + B\nEND FUNCTION\nDIM X = ADD(1)\n"
	analyzeFails(t, src)
}

func TestAnalyze_FunctionCallResultType(t *testing.T) {
	src := "FUNCTION ADD(A AS INTEGER, B AS INTEGER) AS INTEGER\n\tRETURN A + B\nEND FUNCTION\nDIM X = ADD(1, 2)\n"
	mod, tc := analyzeOK(t, src)
	d := mod.Statements[1].(*ast.VarDecl)
	assert.Same(t, tc.Integral(32, true), d.Symbol.Type)
}

func TestAnalyze_DeclareAliasAppliedToSymbol(t *testing.T) {
	src := `[ ALIAS = "puts" ]
DECLARE FUNCTION C_PUTS(S AS ZSTRING) AS INTEGER
`
	mod, _ := analyzeOK(t, src)
	d := mod.Statements[0].(*ast.FuncDecl)
	assert.Equal(t, "puts", d.Symbol.Alias)
}

func TestAnalyze_VariadicCallPromotesNarrowArgs(t *testing.T) {
	src := `DECLARE FUNCTION PRINTF(FMT AS ZSTRING, ...) AS INTEGER
DIM B AS BYTE = 1
DIM X = PRINTF("%d", B)
`
	mod, tc := analyzeOK(t, src)
	call := mod.Statements[2].(*ast.VarDecl).Init.(*ast.CallExpr)
	cast, ok := call.Args[1].(*ast.CastExpr)
	require.True(t, ok, "expected the BYTE argument wrapped in an implicit CAST, got %T", call.Args[1])
	assert.Same(t, tc.Integral(32, true), cast.GetType())
}

func TestAnalyze_ImplicitMainCollectsLooseStatements(t *testing.T) {
	mod, _ := analyzeOK(t, "DIM X = 1\nX = X + 1\n")
	assert.True(t, mod.ImplicitMain)
}

func TestAnalyze_NoImplicitMainRejectsLooseStatement(t *testing.T) {
	src := "FUNCTION MAIN() AS INTEGER\n\tRETURN 0\nEND FUNCTION\nX = 1\n"
	analyzeFails(t, src)
}

func TestAnalyze_ExplicitMainGetsLowercaseAlias(t *testing.T) {
	src := "FUNCTION MAIN() AS INTEGER\n\tRETURN 0\nEND FUNCTION\n"
	mod, _ := analyzeOK(t, src)
	fn := mod.Statements[0].(*ast.FunctionStmt)
	assert.Equal(t, "main", fn.Decl.Symbol.Alias)
}

func TestAnalyze_ForIteratorNotAssignableInBody(t *testing.T) {
	src := "FOR I = 1 TO 10\n\tI = I + 1\nNEXT I\n"
	analyzeFails(t, src)
}

func TestAnalyze_ForDirectionInferredFromLiteralBounds(t *testing.T) {
	mod, _ := analyzeOK(t, "FOR I = 1 TO 10\n\tDIM X = I\nNEXT I\n")
	forStmt := mod.Statements[0].(*ast.ForStmt)
	assert.Equal(t, ast.DirIncrement, forStmt.Direction)
}

func TestAnalyze_ForDirectionDecrementing(t *testing.T) {
	mod, _ := analyzeOK(t, "FOR I = 10 TO 1 STEP -1\n\tDIM X = I\nNEXT I\n")
	forStmt := mod.Statements[0].(*ast.ForStmt)
	assert.Equal(t, ast.DirDecrement, forStmt.Direction)
}

func TestAnalyze_ForSkippedBodyWarnsButSucceeds(t *testing.T) {
	diags := diag.New("test.bas", "")
	src := "FOR I = 1 TO 10 STEP -1\n\tDIM X = I\nNEXT I\n"
	tc := types.NewContext()
	arena := ast.NewArena()
	mod := parser.Parse("test.bas", src, diags, tc, arena)
	require.False(t, diags.HasErrors())

	ok := Analyze(mod, diags, tc, arena)
	assert.True(t, ok)
	forStmt := mod.Statements[0].(*ast.ForStmt)
	assert.Equal(t, ast.DirSkip, forStmt.Direction)

	warned := false
	for _, d := range diags.Diagnostics() {
		if d.ID == diag.UnreachableForBody {
			warned = true
		}
	}
	assert.True(t, warned, "expected an UnreachableForBody warning, got: %s", diags.FormatAll())
}

func TestAnalyze_ForUnknownDirectionWithNonLiteralBound(t *testing.T) {
	src := "DIM N = 10\nFOR I = 1 TO N\n\tDIM X = I\nNEXT I\n"
	mod, _ := analyzeOK(t, src)
	forStmt := mod.Statements[1].(*ast.ForStmt)
	assert.Equal(t, ast.DirUnknown, forStmt.Direction)
}

func TestAnalyze_ConstantFoldingBinaryAdd(t *testing.T) {
	mod, _ := analyzeOK(t, "DIM X = 1 + 2\n")
	d := mod.Statements[0].(*ast.VarDecl)
	lit, ok := d.Init.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, uint64(3), lit.U64)
}

func TestAnalyze_ConstantFoldingComparison(t *testing.T) {
	mod, _ := analyzeOK(t, "DIM X = 1 < 2\n")
	d := mod.Statements[0].(*ast.VarDecl)
	lit, ok := d.Init.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.True(t, lit.Bool)
}

func TestAnalyze_IifFoldsOneZeroShapeToCondCast(t *testing.T) {
	src := "DIM B AS BOOLEAN = TRUE\nDIM X = IIF(B, 1, 0)\n"
	mod, _ := analyzeOK(t, src)
	d := mod.Statements[1].(*ast.VarDecl)
	_, isCast := d.Init.(*ast.CastExpr)
	_, isLit := d.Init.(*ast.LiteralExpr)
	assert.True(t, isCast || isLit, "expected IIF(cond,1,0) to fold to a cond cast or a folded literal")
}

func TestAnalyze_BinaryMixedWidthsInsertsImplicitCast(t *testing.T) {
	src := "DIM A AS INTEGER = 1\nDIM B AS LONG = 2\nDIM C = B + A\n"
	mod, tc := analyzeOK(t, src)
	c := mod.Statements[2].(*ast.VarDecl)
	bin := c.Init.(*ast.BinaryExpr)

	cast, ok := bin.RHS.(*ast.CastExpr)
	require.True(t, ok, "expected the narrower operand wrapped in an implicit CAST, got %T", bin.RHS)
	assert.True(t, cast.Implicit)
	assert.Same(t, tc.Integral(64, true), cast.GetType())
	assert.Same(t, tc.Integral(64, true), c.Symbol.Type)

	// The already-wide operand must not be wrapped.
	_, wrapped := bin.LHS.(*ast.CastExpr)
	assert.False(t, wrapped)
}

func TestAnalyze_NarrowingConversionWarns(t *testing.T) {
	src := "DIM X AS DOUBLE = 1.5\nDIM Y AS INTEGER = X\n"
	diags := diag.New("test.bas", src)
	tc := types.NewContext()
	arena := ast.NewArena()
	mod := parser.Parse("test.bas", src, diags, tc, arena)
	require.False(t, diags.HasErrors())

	require.True(t, Analyze(mod, diags, tc, arena), "analysis errors: %s", diags.FormatAll())
	d := mod.Statements[1].(*ast.VarDecl)
	assert.Same(t, tc.Integral(32, true), d.Symbol.Type)

	warned := false
	for _, dg := range diags.Diagnostics() {
		if dg.ID == diag.NarrowingConversion {
			warned = true
		}
	}
	assert.True(t, warned, "expected a NarrowingConversion warning, got: %s", diags.FormatAll())
}

func TestAnalyze_IncompatibleTypesFails(t *testing.T) {
	analyzeFails(t, "DIM X AS ZSTRING = 1\nDIM Y AS INTEGER\nY = X\n")
}

func TestAnalyze_IfLocalDeclIsTypedAndScopedToBlock(t *testing.T) {
	src := "IF VAR X = 1, X > 0 THEN\n\tDIM Y AS INTEGER = X\nEND IF\n"
	mod, tc := analyzeOK(t, src)
	ifStmt := mod.Statements[0].(*ast.IfStmt)
	decl := ifStmt.Blocks[0].LocalDecls[0]
	require.NotNil(t, decl.Symbol)
	assert.Same(t, tc.Integral(32, true), decl.Symbol.Type)
	assert.Same(t, tc.Boolean(), ifStmt.Blocks[0].Condition.(ast.TypedExpr).GetType())
}

func TestAnalyze_DereferenceNonPointerFails(t *testing.T) {
	analyzeFails(t, "DIM X AS INTEGER\nDIM Y = *X\n")
}

func TestAnalyze_AddressOfThenDereferenceRoundTrips(t *testing.T) {
	mod, tc := analyzeOK(t, "DIM X AS INTEGER\nDIM P = @X\nDIM Y = *P\n")
	y := mod.Statements[2].(*ast.VarDecl)
	assert.Same(t, tc.Integral(32, true), y.Symbol.Type)
}

func TestAnalyze_PointerPlusIntScalesByElementSize(t *testing.T) {
	src := "DIM X AS INTEGER\nDIM P = @X\nDIM Q = P + 1\n"
	mod, tc := analyzeOK(t, src)
	q := mod.Statements[2].(*ast.VarDecl)
	bin := q.Init.(*ast.BinaryExpr)
	assert.Equal(t, tc.Integral(32, true).Size(), bin.PointerElemSize)
	pt, ok := q.Symbol.Type.(*types.PointerType)
	require.True(t, ok)
	assert.Same(t, tc.Integral(32, true), pt.Base)
}

func TestAnalyze_PointerMinusPointerYieldsIntegral(t *testing.T) {
	src := "DIM X AS INTEGER\nDIM P1 = @X\nDIM P2 = @X\nDIM D = P1 - P2\n"
	mod, tc := analyzeOK(t, src)
	d := mod.Statements[3].(*ast.VarDecl)
	assert.Same(t, tc.Integral(64, true), d.Symbol.Type)
}

func TestAnalyze_DoLoopPreWhileConditionCoercedToBoolean(t *testing.T) {
	mod, tc := analyzeOK(t, "DIM DONE AS BOOLEAN\nDO WHILE NOT DONE\n\tDONE = TRUE\nLOOP\n")
	doStmt := mod.Statements[1].(*ast.DoLoopStmt)
	require.NotNil(t, doStmt.PreCondition)
	assert.Same(t, tc.Boolean(), doStmt.PreCondition.(ast.TypedExpr).GetType())
}

func TestAnalyze_ReturnTypeMismatchFails(t *testing.T) {
	src := "FUNCTION F() AS INTEGER\n\tRETURN \"oops\"\nEND FUNCTION\n"
	analyzeFails(t, src)
}

func TestAnalyze_ReturnAtImplicitMainTopLevelIsExitCode(t *testing.T) {
	mod, tc := analyzeOK(t, "DIM X AS INTEGER = 1\nRETURN X\n")
	require.True(t, mod.ImplicitMain)

	// The loose RETURN lives in the synthesized MAIN's body, typed as the
	// process exit code.
	ret := mod.Statements[1].(*ast.ReturnStmt)
	assert.Same(t, tc.Integral(32, true), ret.Value.(ast.TypedExpr).GetType())
}

func TestAnalyze_ReturnAtModuleLevelWithoutMainIsUnexpectedReturn(t *testing.T) {
	src := "FUNCTION MAIN() AS INTEGER\n\tRETURN 0\nEND FUNCTION\nRETURN 42\n"
	diags := analyzeFails(t, src)

	found := false
	for _, d := range diags.Diagnostics() {
		if d.ID == diag.UnexpectedReturn {
			found = true
		}
	}
	assert.True(t, found, "expected an UnexpectedReturn diagnostic, got: %s", diags.FormatAll())
}

func TestAnalyze_InlineDeclareAliasAppliedToSymbol(t *testing.T) {
	src := "DECLARE SUB PUTS ALIAS \"puts\" (S AS ZSTRING)\nPUTS(\"hi\")\n"
	mod, _ := analyzeOK(t, src)
	d := mod.Statements[0].(*ast.FuncDecl)
	assert.Equal(t, "puts", d.Symbol.Alias)
	assert.Equal(t, "puts", d.Symbol.Identifier())
}

func TestAnalyze_NestedExitDoDoResolvesOuterLoop(t *testing.T) {
	src := "DO\n\tDO\n\t\tEXIT DO DO\n\tLOOP\nLOOP\n"
	mod, _ := analyzeOK(t, src)
	outer := mod.Statements[0].(*ast.DoLoopStmt)
	inner := outer.Body.Stmts[0].(*ast.DoLoopStmt)
	cont := inner.Body.Stmts[0].(*ast.ContinuationStmt)
	assert.Same(t, outer, cont.Target)
}
