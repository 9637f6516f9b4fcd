// Package codegen defines the contract a native-code backend plugs
// into once a Module has been fully analyzed: a value-handle
// abstraction over value-vs-address, a block/control-flow vocabulary
// sufficient for short-circuit logical operators and direction-aware
// FOR loops, and a global/function declaration surface that threads
// through the linkage decision (external alias vs. unique internal
// name) the analyzer already recorded on every Symbol.
//
// This package never builds real LLVM IR — that collaborator lives
// outside this repository. Generator, in generator.go, walks a typed
// *ast.Module and drives a Backend; NullBackend, in null_backend.go,
// is the only Backend this repo ships, kept around purely to exercise
// Generator and the interface end to end.
package codegen

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/types"
)

// Value is the handle every analyzed expression evaluates to. Address
// is true when Handle denotes the address of a Type-typed slot (an
// lvalue) rather than its already-loaded value. Generator does not read
// the flag: it loads every identifier reference through its slot's
// address.
// Handle itself is opaque to Generator — a real backend stores
// whatever its IR builder hands back (an `llvm.Value`, typically).
type Value struct {
	Handle  any
	Type    types.Type
	Address bool
}

// Block is an opaque basic-block handle.
type Block struct {
	Handle any
}

// Function is an opaque function handle paired with its canonical
// signature, so Generator can validate arity/variadic-ness without
// asking the backend.
type Function struct {
	Handle any
	Sig    *types.FunctionType
}

// Global is an opaque global-variable handle.
type Global struct {
	Handle any
	Type   types.Type
}

// PhiEdge is one incoming edge of a Phi join: the value produced when
// control arrives via From.
type PhiEdge struct {
	Value Value
	From  Block
}

// Backend is the contract a real code generator implements. Every
// method whose emitted symbol has linkage takes the name Generator has
// already resolved (Symbol.Identifier(), i.e. the ALIAS if one was
// declared, else the canonical name) and an external flag
// (Symbol.ExternalLinkage) — Backend itself never re-derives linkage.
type Backend interface {
	// BeginModule/EndModule bracket one translation unit.
	BeginModule(fileID string)
	EndModule()

	// DeclareGlobal registers a module-scope variable. At most one of
	// GlobalConstInit/GlobalDeferredInit is called on the result
	// afterward, matching the analyzer's constant-vs-runtime
	// initializer split; neither is called for a global declared
	// without an initializer.
	DeclareGlobal(name string, t types.Type, external bool) Global
	// GlobalConstInit attaches a compile-time-constant initial value
	// directly to the global's storage.
	GlobalConstInit(g Global, v Value)
	// GlobalDeferredInit registers emit to run inside the synthesized
	// module constructor function, once EnterModuleConstructor has
	// opened it — used when the initializer isn't foldable to a
	// constant.
	GlobalDeferredInit(g Global, emit func())

	// EnterModuleConstructor opens the synthesized constructor function
	// that runs every deferred global initializer; LeaveModuleConstructor
	// closes it. A module with no deferred initializers never calls
	// either.
	EnterModuleConstructor() Function
	LeaveModuleConstructor()

	// DeclareFunction registers a function signature. BeginFunctionBody
	// opens a definition (never called for a DECLARE-only forward
	// signature) and returns the incoming parameter values in
	// declaration order; EndFunctionBody closes it.
	DeclareFunction(name string, sig *types.FunctionType, external bool) Function
	BeginFunctionBody(f Function) []Value
	EndFunctionBody()

	// Block/control-flow vocabulary.
	NewBlock(label string) Block
	SetInsertPoint(b Block)
	Branch(target Block)
	CondBranch(cond Value, then, els Block)
	Phi(t types.Type, edges []PhiEdge) Value

	// Constants.
	ConstInt(t types.Type, v int64) Value
	ConstFloat(t types.Type, v float64) Value
	ConstBool(v bool) Value
	ConstString(s string) Value
	ConstNull(t types.Type) Value

	// Storage.
	Alloca(name string, t types.Type) Value
	Load(addr Value) Value
	Store(addr, v Value)
	GlobalAddr(g Global) Value

	// UDT member access and pointer arithmetic:
	// GEPMember indexes a struct-typed address by field position;
	// GEPIndex scales idx by elemSize bytes and adds it to a pointer
	// value (ptr+int, ptr-int after Generator negates idx, or a
	// pointer-difference already reduced by the same scale).
	GEPMember(base Value, index int) Value
	GEPIndex(base Value, elemSize int, idx Value) Value

	// Operators.
	UnaryOp(op ast.UnaryOp, x Value, t types.Type) Value
	BinaryOp(op ast.BinaryOp, lhs, rhs Value, t types.Type) Value
	Cast(v Value, to types.Type) Value

	// Calls and returns.
	Call(f Function, args []Value) Value
	CallIndirect(fn Value, sig *types.FunctionType, args []Value) Value
	Return(v *Value)
}
