package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightbasic/lbc/internal/types"
)

func TestSymbolTable_InsertAndFind(t *testing.T) {
	tc := types.NewContext()
	root := New()
	require.NoError(t, root.Insert("X", &Symbol{Type: tc.Integral(32, true)}))

	sym, ok := root.Find("X", false)
	require.True(t, ok)
	assert.Equal(t, "X", sym.Name)
}

func TestSymbolTable_RedefinitionInSameScope(t *testing.T) {
	tc := types.NewContext()
	root := New()
	require.NoError(t, root.Insert("X", &Symbol{Type: tc.Integral(32, true)}))
	err := root.Insert("X", &Symbol{Type: tc.Integral(64, true)})
	assert.Error(t, err)
	var redef *RedefinitionError
	assert.ErrorAs(t, err, &redef)
}

func TestSymbolTable_ShadowingAcrossScopesAllowed(t *testing.T) {
	tc := types.NewContext()
	root := New()
	require.NoError(t, root.Insert("X", &Symbol{Type: tc.Integral(32, true)}))

	child := NewChild(root)
	require.NoError(t, child.Insert("X", &Symbol{Type: tc.Integral(64, true)}))

	sym, ok := child.Find("X", true)
	require.True(t, ok)
	assert.Same(t, tc.Integral(64, true), sym.Type)
}

func TestSymbolTable_FindRecursiveWalksParentChain(t *testing.T) {
	tc := types.NewContext()
	root := New()
	require.NoError(t, root.Insert("G", &Symbol{Type: tc.Boolean()}))

	child := NewChild(root)
	_, ok := child.Find("G", false)
	assert.False(t, ok, "non-recursive find must not see the parent scope")

	_, ok = child.Find("G", true)
	assert.True(t, ok)
}

func TestSymbolTable_OrderedIteration(t *testing.T) {
	tc := types.NewContext()
	root := New()
	require.NoError(t, root.Insert("C", &Symbol{Type: tc.Boolean()}))
	require.NoError(t, root.Insert("A", &Symbol{Type: tc.Boolean()}))
	require.NoError(t, root.Insert("B", &Symbol{Type: tc.Boolean()}))

	var names []string
	for _, s := range root.Symbols() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names, "iteration must preserve insertion order")
}

func TestSymbol_Identifier(t *testing.T) {
	s := &Symbol{Name: "MAIN"}
	assert.Equal(t, "MAIN", s.Identifier())

	s.Alias = "main"
	assert.Equal(t, "main", s.Identifier())
}

func TestSymbol_ClearAddressableRemovesAssignableToo(t *testing.T) {
	s := &Symbol{Flags: Addressable | Assignable | Callable}
	s.ClearAddressable()
	assert.False(t, s.IsAddressable())
	assert.False(t, s.IsAssignable())
	assert.True(t, s.IsCallable())
}
