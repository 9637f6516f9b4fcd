package ast

import (
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightbasic/lbc/internal/token"
	"github.com/lightbasic/lbc/internal/types"
)

// TestMain lets go-snaps prune snapshots left behind by renamed or
// removed tests — the library's documented entry point for a package
// that owns a `__snapshots__` directory.
func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func rng(beginCol, endCol int) token.Range {
	return token.Range{
		Begin: token.Position{Line: 1, Column: beginCol, Offset: beginCol - 1},
		End:   token.Position{Line: 1, Column: endCol, Offset: endCol - 1},
	}
}

func TestArena_TracksAllocatedNodes(t *testing.T) {
	a := NewArena()
	NewLiteralExpr(a, rng(1, 2), token.Literal{Kind: token.LitUint64, U64: 1})
	NewLiteralExpr(a, rng(3, 4), token.Literal{Kind: token.LitUint64, U64: 2})
	assert.Equal(t, 2, a.Len())
}

func TestRange_Contains(t *testing.T) {
	parent := rng(1, 10)
	child := rng(3, 5)
	assert.True(t, parent.Contains(child))
	assert.False(t, child.Contains(parent))
}

func TestExprBase_GetSetType(t *testing.T) {
	a := NewArena()
	tc := types.NewContext()
	e := NewIdentExpr(a, rng(1, 2), "X")
	assert.Nil(t, e.GetType())
	e.SetType(tc.Integral(32, true))
	assert.Same(t, tc.Integral(32, true), e.GetType())

	var typed TypedExpr = e
	assert.Same(t, tc.Integral(32, true), typed.GetType())
}

func TestBinaryOp_Classify(t *testing.T) {
	assert.Equal(t, KindArithmetic, OpAdd.Classify())
	assert.Equal(t, KindComparison, OpEqual.Classify())
	assert.Equal(t, KindLogical, OpAnd.Classify())
}

func TestCastExpr_ImplicitFlag(t *testing.T) {
	a := NewArena()
	tc := types.NewContext()
	lit := NewLiteralExpr(a, rng(1, 2), token.Literal{Kind: token.LitUint64, U64: 5})
	cast := NewImplicitCastExpr(a, rng(1, 2), lit, tc.Integral(64, true))
	assert.True(t, cast.Implicit)
	assert.Same(t, tc.Integral(64, true), cast.Type)
}

func TestForDirection_String(t *testing.T) {
	assert.Equal(t, "Increment", DirIncrement.String())
	assert.Equal(t, "Skip", DirSkip.String())
	assert.Equal(t, "Unknown", DirUnknown.String())
}

func TestDebugPrint_RendersModuleShape(t *testing.T) {
	a := NewArena()
	mod := NewModule(a, rng(1, 1), "test.bas", false)
	lit := NewLiteralExpr(a, rng(1, 1), token.Literal{Kind: token.LitUint64, U64: 1})
	v := NewVarDecl(a, rng(1, 1), "X", nil, lit)
	mod.Statements = append(mod.Statements, v)

	out := DebugPrint(mod)
	assert.Contains(t, out, "MODULE test.bas")
	assert.Contains(t, out, "VAR X")

	// -code-dump's whole-output shape is golden-tested so a change to
	// the pretty-printer's layout (indentation, node ordering) shows up
	// as a snapshot diff instead of silently passing a substring check.
	snaps.MatchSnapshot(t, out)
}

func TestDumpJSON_RoundTripsStatementCount(t *testing.T) {
	a := NewArena()
	mod := NewModule(a, rng(1, 1), "test.bas", true)
	mod.Statements = append(mod.Statements,
		NewReturnStmt(a, rng(1, 1), nil),
		NewReturnStmt(a, rng(2, 2), nil),
	)

	data, err := DumpJSON(mod)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"implicitMain": true`)
	assert.Contains(t, string(data), "RETURN")

	// -ast-dump's JSON shape is golden-tested the same way.
	snaps.MatchJSON(t, data)
}
