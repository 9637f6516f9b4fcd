// Package types implements LightBASIC's canonical, interned type
// hierarchy and its compatibility lattice. Every Type is interned
// through a Context value rather than process-wide statics, so two
// independently constructed Contexts never share instances and
// multiple compilations can run in one process without leaking state
// into each other.
package types

import "fmt"

// Type is the sealed interface implemented by every canonical type
// object. Equality of two Types is pointer identity, so callers must
// never construct a Type value directly; all construction goes through
// Context's get-or-create constructors.
type Type interface {
	// String returns the type's LightBASIC source spelling, used in
	// diagnostics and the debug pretty-printer.
	String() string

	// Size returns the type's storage size in bytes, used by codegen
	// for pointer-arithmetic scaling and struct layout.
	Size() int

	sealed()
}

// Context owns one process-confined type interner: every Integral,
// Pointer, Function, and UDT instance constructed through the same
// Context compares equal by pointer identity; instances from different
// Contexts never do. One Context is created per compilation
// invocation, not per source file, so that multiple translation units
// compiled together still share canonical types.
type Context struct {
	voidType    *VoidType
	anyType     *AnyType
	boolType    *BooleanType
	zstringType *ZStringType
	nullType    *NullType

	integrals map[integralKey]*IntegralType
	floats    map[int]*FloatingPointType
	pointers  map[Type]*PointerType
	functions []*FunctionType // linear scan; function shapes are rare enough not to warrant a map key
	udts      map[string]*UDTType

	llvmMemo map[Type]any // codegen's lazily memoized LLVM type handle, keyed by canonical Type
}

type integralKey struct {
	bits   int
	signed bool
}

// NewContext creates a Context with the singletons (Any, Void,
// Boolean, ZString, Null), the eight Integral instances, and the two
// FloatingPoint instances pre-allocated.
func NewContext() *Context {
	c := &Context{
		integrals: make(map[integralKey]*IntegralType),
		floats:    make(map[int]*FloatingPointType),
		pointers:  make(map[Type]*PointerType),
		udts:      make(map[string]*UDTType),
		llvmMemo:  make(map[Type]any),
	}
	c.voidType = &VoidType{}
	c.anyType = &AnyType{}
	c.boolType = &BooleanType{}
	c.zstringType = &ZStringType{}
	c.nullType = &NullType{}
	for _, bits := range [...]int{8, 16, 32, 64} {
		for _, signed := range [...]bool{true, false} {
			c.integrals[integralKey{bits, signed}] = &IntegralType{Bits: bits, Signed: signed}
		}
	}
	for _, bits := range [...]int{32, 64} {
		c.floats[bits] = &FloatingPointType{Bits: bits}
	}
	return c
}

// Void returns the singleton Void type.
func (c *Context) Void() *VoidType { return c.voidType }

// Any returns the singleton Any type, usable only through Pointer.
func (c *Context) Any() *AnyType { return c.anyType }

// Boolean returns the singleton Boolean type.
func (c *Context) Boolean() *BooleanType { return c.boolType }

// ZString returns the singleton zero-terminated string type.
func (c *Context) ZString() *ZStringType { return c.zstringType }

// Null returns the singleton type of the NIL literal.
func (c *Context) Null() *NullType { return c.nullType }

// Integral returns the canonical Integral(bits, signed) instance. bits
// must be one of 8, 16, 32, 64; panics otherwise — callers are
// expected to map bits from a fixed keyword table before reaching
// here, so any other width is an internal error.
func (c *Context) Integral(bits int, signed bool) *IntegralType {
	t, ok := c.integrals[integralKey{bits, signed}]
	if !ok {
		panic(fmt.Sprintf("types: invalid integral width %d", bits))
	}
	return t
}

// FloatingPoint returns the canonical FloatingPoint(bits) instance.
// bits must be 32 or 64.
func (c *Context) FloatingPoint(bits int) *FloatingPointType {
	t, ok := c.floats[bits]
	if !ok {
		panic(fmt.Sprintf("types: invalid floating-point width %d", bits))
	}
	return t
}

// Pointer returns the canonical Pointer(base) instance, creating and
// storing it on first request. Pointer(Any) is the universal opaque
// pointer used for untyped PTR ANY parameters.
func (c *Context) Pointer(base Type) *PointerType {
	if p, ok := c.pointers[base]; ok {
		return p
	}
	p := &PointerType{Base: base}
	c.pointers[base] = p
	return p
}

// Function returns the canonical Function(returnType, paramTypes,
// variadic) instance, interned by structural equality across the
// (small) set of function shapes seen so far.
func (c *Context) Function(ret Type, params []Type, variadic bool) *FunctionType {
	for _, f := range c.functions {
		if f.Equal(ret, params, variadic) {
			return f
		}
	}
	f := &FunctionType{Return: ret, Params: append([]Type(nil), params...), Variadic: variadic}
	c.functions = append(c.functions, f)
	return f
}

// UDT returns the canonical record type for name, creating a forward
// (member-less) declaration if one does not already exist. The UDT
// declarer pass fills in MemberTable and Packed once the full
// declaration has been parsed.
func (c *Context) UDT(name string) *UDTType {
	if u, ok := c.udts[name]; ok {
		return u
	}
	u := &UDTType{Name: name}
	c.udts[name] = u
	return u
}

// LLVMMemo returns the memoized LLVM-lowering handle for t, computing
// it via compute on first request. Lowering is lazy and memoized per
// canonical type instance; keeping the memo here lets a backend cache
// its lowered types without this package importing the codegen package
// (compute is supplied by the caller).
func (c *Context) LLVMMemo(t Type, compute func() any) any {
	if v, ok := c.llvmMemo[t]; ok {
		return v
	}
	v := compute()
	c.llvmMemo[t] = v
	return v
}

// VoidType is the singleton absence-of-value type.
type VoidType struct{}

func (*VoidType) String() string { return "VOID" }
func (*VoidType) Size() int      { return 0 }
func (*VoidType) sealed()        {}

// AnyType is the singleton universal type, only usable through Pointer.
type AnyType struct{}

func (*AnyType) String() string { return "ANY" }
func (*AnyType) Size() int      { return 0 }
func (*AnyType) sealed()        {}

// BooleanType is the singleton boolean type: 1-bit logically, i8-wide
// in memory.
type BooleanType struct{}

func (*BooleanType) String() string { return "BOOLEAN" }
func (*BooleanType) Size() int      { return 1 }
func (*BooleanType) sealed()        {}

// ZStringType is a zero-terminated byte sequence: effectively
// Pointer(UByte) at the IR level but a distinct semantic type so the
// analyzer can apply ZSTRING-specific literal coercion rules.
type ZStringType struct{}

func (*ZStringType) String() string { return "ZSTRING" }
func (*ZStringType) Size() int      { return 8 } // pointer-width
func (*ZStringType) sealed()        {}

// PointerType is Pointer(base), interned per base type.
type PointerType struct {
	Base Type
}

func (p *PointerType) String() string { return "PTR " + p.Base.String() }
func (*PointerType) Size() int        { return 8 }
func (*PointerType) sealed()          {}

// IntegralType is Integral(bits, signed). Eight canonical instances
// exist per Context: bits ∈ {8,16,32,64} × signed ∈ {true,false}.
type IntegralType struct {
	Bits   int
	Signed bool
}

func (i *IntegralType) String() string {
	names := map[integralKey]string{
		{8, true}: "BYTE", {8, false}: "UBYTE",
		{16, true}: "SHORT", {16, false}: "USHORT",
		{32, true}: "INTEGER", {32, false}: "UINTEGER",
		{64, true}: "LONG", {64, false}: "ULONG",
	}
	return names[integralKey{i.Bits, i.Signed}]
}
func (i *IntegralType) Size() int { return i.Bits / 8 }
func (*IntegralType) sealed()     {}

// FloatingPointType is FloatingPoint(bits), bits ∈ {32, 64}.
type FloatingPointType struct {
	Bits int
}

func (f *FloatingPointType) String() string {
	if f.Bits == 32 {
		return "SINGLE"
	}
	return "DOUBLE"
}
func (f *FloatingPointType) Size() int { return f.Bits / 8 }
func (*FloatingPointType) sealed()     {}

// FunctionType is Function(returnType, paramTypes, variadic).
type FunctionType struct {
	Return   Type
	Params   []Type
	Variadic bool
}

func (f *FunctionType) String() string {
	s := "FUNCTION("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	if f.Variadic {
		if len(f.Params) > 0 {
			s += ", "
		}
		s += "..."
	}
	s += ") AS " + f.Return.String()
	return s
}
func (*FunctionType) Size() int { return 8 } // function pointer width
func (*FunctionType) sealed()   {}

// Equal reports whether f has the same structural shape as
// (ret, params, variadic) — used by Context.Function to intern by
// shape rather than by identity of the inputs.
func (f *FunctionType) Equal(ret Type, params []Type, variadic bool) bool {
	if f.Return != ret || f.Variadic != variadic || len(f.Params) != len(params) {
		return false
	}
	for i := range params {
		if f.Params[i] != params[i] {
			return false
		}
	}
	return true
}

// UDTMember is one field of a user-defined record type: its name and
// canonical type, plus the zero-based Index used by codegen to emit a
// member GEP.
type UDTMember struct {
	Name  string
	Type  Type
	Index int
}

// UDTType is a user-defined record (TYPE ... END TYPE). MemberTable
// retains declaration order so IR emission is deterministic for a
// given input.
type UDTType struct {
	Name        string
	MemberTable []UDTMember
	memberIndex map[string]int
	Packed      bool
}

func (u *UDTType) String() string { return u.Name }
func (u *UDTType) Size() int {
	total := 0
	for _, m := range u.MemberTable {
		total += m.Type.Size()
	}
	return total
}
func (*UDTType) sealed() {}

// AddMember appends a field to the UDT, assigning it the next index.
// Returns false without modifying the UDT if name is already a member
// (the UDT declarer pass reports Redefinition in that case).
func (u *UDTType) AddMember(name string, t Type) bool {
	if u.memberIndex == nil {
		u.memberIndex = make(map[string]int)
	}
	if _, exists := u.memberIndex[name]; exists {
		return false
	}
	u.memberIndex[name] = len(u.MemberTable)
	u.MemberTable = append(u.MemberTable, UDTMember{Name: name, Type: t, Index: len(u.MemberTable)})
	return true
}

// Member looks up a field by name, returning (member, true) or
// (zero, false).
func (u *UDTType) Member(name string) (UDTMember, bool) {
	i, ok := u.memberIndex[name]
	if !ok {
		return UDTMember{}, false
	}
	return u.MemberTable[i], true
}
