package codegen

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/types"
)

// NullBackend is a Backend that builds nothing: every handle it hands
// back is a bare sequence number, every constant/operator call is
// recorded as a Value carrying no real payload. Its only job is to let
// Generator run to completion against a real interface implementation,
// proving the contract is actually exercisable end to end without this
// repo constructing LLVM IR.
type NullBackend struct {
	seq int
}

// NewNullBackend creates a NullBackend.
func NewNullBackend() *NullBackend { return &NullBackend{} }

func (b *NullBackend) next() int {
	b.seq++
	return b.seq
}

func (b *NullBackend) BeginModule(fileID string) {}
func (b *NullBackend) EndModule()                {}

func (b *NullBackend) DeclareGlobal(name string, t types.Type, external bool) Global {
	return Global{Handle: b.next(), Type: t}
}

func (b *NullBackend) GlobalConstInit(g Global, v Value)      {}
func (b *NullBackend) GlobalDeferredInit(g Global, emit func()) {}

func (b *NullBackend) EnterModuleConstructor() Function {
	return Function{Handle: b.next(), Sig: &types.FunctionType{}}
}
func (b *NullBackend) LeaveModuleConstructor() {}

func (b *NullBackend) DeclareFunction(name string, sig *types.FunctionType, external bool) Function {
	return Function{Handle: b.next(), Sig: sig}
}

func (b *NullBackend) BeginFunctionBody(f Function) []Value {
	params := make([]Value, len(f.Sig.Params))
	for i, pt := range f.Sig.Params {
		params[i] = Value{Handle: b.next(), Type: pt}
	}
	return params
}
func (b *NullBackend) EndFunctionBody() {}

func (b *NullBackend) NewBlock(label string) Block { return Block{Handle: b.next()} }
func (b *NullBackend) SetInsertPoint(block Block)  {}
func (b *NullBackend) Branch(target Block)         {}
func (b *NullBackend) CondBranch(cond Value, then, els Block) {}

func (b *NullBackend) Phi(t types.Type, edges []PhiEdge) Value {
	return Value{Handle: b.next(), Type: t}
}

func (b *NullBackend) ConstInt(t types.Type, v int64) Value   { return Value{Handle: v, Type: t} }
func (b *NullBackend) ConstFloat(t types.Type, v float64) Value { return Value{Handle: v, Type: t} }
func (b *NullBackend) ConstBool(v bool) Value                 { return Value{Handle: v} }
func (b *NullBackend) ConstString(s string) Value             { return Value{Handle: s} }
func (b *NullBackend) ConstNull(t types.Type) Value           { return Value{Handle: nil, Type: t} }

func (b *NullBackend) Alloca(name string, t types.Type) Value {
	return Value{Handle: b.next(), Type: t, Address: true}
}
func (b *NullBackend) Load(addr Value) Value {
	return Value{Handle: b.next(), Type: addr.Type}
}
func (b *NullBackend) Store(addr, v Value)          {}
func (b *NullBackend) GlobalAddr(g Global) Value {
	return Value{Handle: g.Handle, Type: g.Type, Address: true}
}

func (b *NullBackend) GEPMember(base Value, index int) Value {
	return Value{Handle: b.next(), Address: true}
}
func (b *NullBackend) GEPIndex(base Value, elemSize int, idx Value) Value {
	return Value{Handle: b.next(), Type: base.Type}
}

func (b *NullBackend) UnaryOp(op ast.UnaryOp, x Value, t types.Type) Value {
	return Value{Handle: b.next(), Type: t}
}
func (b *NullBackend) BinaryOp(op ast.BinaryOp, lhs, rhs Value, t types.Type) Value {
	return Value{Handle: b.next(), Type: t}
}
func (b *NullBackend) Cast(v Value, to types.Type) Value {
	return Value{Handle: b.next(), Type: to}
}

func (b *NullBackend) Call(f Function, args []Value) Value {
	return Value{Handle: b.next(), Type: f.Sig.Return}
}
func (b *NullBackend) CallIndirect(fn Value, sig *types.FunctionType, args []Value) Value {
	return Value{Handle: b.next(), Type: sig.Return}
}
func (b *NullBackend) Return(v *Value) {}
