package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_SingletonsArePreallocated(t *testing.T) {
	c := NewContext()
	assert.NotNil(t, c.Void())
	assert.NotNil(t, c.Any())
	assert.NotNil(t, c.Boolean())
	assert.NotNil(t, c.ZString())
}

func TestContext_IntegralCanonicalization(t *testing.T) {
	c := NewContext()
	a := c.Integral(32, true)
	b := c.Integral(32, true)
	assert.Same(t, a, b, "two requests for Integral(32,signed) must return the same instance")
	assert.NotSame(t, a, c.Integral(32, false))
}

func TestContext_TypesDoNotCrossContexts(t *testing.T) {
	c1 := NewContext()
	c2 := NewContext()
	assert.NotSame(t, c1.Integral(32, true), c2.Integral(32, true),
		"types interned in different Contexts must not be pointer-equal")
}

func TestContext_PointerInterning(t *testing.T) {
	c := NewContext()
	p1 := c.Pointer(c.Integral(8, false))
	p2 := c.Pointer(c.Integral(8, false))
	assert.Same(t, p1, p2)

	any1 := c.Pointer(c.Any())
	any2 := c.Pointer(c.Any())
	assert.Same(t, any1, any2)
}

func TestContext_FunctionInterningByShape(t *testing.T) {
	c := NewContext()
	i32 := c.Integral(32, true)
	f1 := c.Function(c.Void(), []Type{i32, i32}, false)
	f2 := c.Function(c.Void(), []Type{i32, i32}, false)
	assert.Same(t, f1, f2)

	f3 := c.Function(c.Void(), []Type{i32, i32}, true)
	assert.NotSame(t, f1, f3)
}

func TestCompare_IntegralUpcast(t *testing.T) {
	c := NewContext()
	i8 := c.Integral(8, true)
	i32 := c.Integral(32, true)
	assert.Equal(t, Upcast, Compare(i8, i32))
	assert.Equal(t, Downcast, Compare(i32, i8))
}

func TestCompare_SignChangeSameBitsIsDowncast(t *testing.T) {
	c := NewContext()
	assert.Equal(t, Downcast, Compare(c.Integral(32, true), c.Integral(32, false)))
}

func TestCompare_IntegralToFloat(t *testing.T) {
	c := NewContext()
	assert.Equal(t, Upcast, Compare(c.Integral(16, true), c.FloatingPoint(32)))
	assert.Equal(t, Downcast, Compare(c.Integral(64, true), c.FloatingPoint(32)))
}

func TestCompare_PointerToAny(t *testing.T) {
	c := NewContext()
	pInt := c.Pointer(c.Integral(8, false))
	pAny := c.Pointer(c.Any())
	assert.Equal(t, Upcast, Compare(pInt, pAny))
	assert.Equal(t, Incompatible, Compare(pAny, pInt))
}

func TestCompare_NullToPointer(t *testing.T) {
	c := NewContext()
	n := &NullType{}
	assert.Equal(t, Upcast, Compare(n, c.Pointer(c.Integral(32, true))))
	assert.Equal(t, Upcast, Compare(n, c.ZString()))
}

func TestCompare_UnrelatedUDTsIncompatible(t *testing.T) {
	c := NewContext()
	a := c.UDT("POINT")
	b := c.UDT("VECTOR")
	assert.Equal(t, Incompatible, Compare(a, b))
}

func TestUDT_MemberOrderingAndIndex(t *testing.T) {
	c := NewContext()
	u := c.UDT("POINT")
	assert.True(t, u.AddMember("X", c.Integral(32, true)))
	assert.True(t, u.AddMember("Y", c.Integral(32, true)))
	assert.False(t, u.AddMember("X", c.Integral(32, true)), "duplicate member name must be rejected")

	x, ok := u.Member("X")
	assert.True(t, ok)
	assert.Equal(t, 0, x.Index)

	y, ok := u.Member("Y")
	assert.True(t, ok)
	assert.Equal(t, 1, y.Index)
}

func TestCommonType(t *testing.T) {
	c := NewContext()
	i8 := c.Integral(8, true)
	i32 := c.Integral(32, true)

	wide, ok := CommonType(i8, i32)
	assert.True(t, ok)
	assert.Same(t, i32, wide)

	wide, ok = CommonType(i32, i8)
	assert.True(t, ok)
	assert.Same(t, i32, wide)

	_, ok = CommonType(c.UDT("A"), c.UDT("B"))
	assert.False(t, ok)
}

func TestLLVMMemo_ComputesOnce(t *testing.T) {
	c := NewContext()
	i32 := c.Integral(32, true)
	calls := 0
	compute := func() any {
		calls++
		return "i32"
	}
	v1 := c.LLVMMemo(i32, compute)
	v2 := c.LLVMMemo(i32, compute)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}
