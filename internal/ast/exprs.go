package ast

import (
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/token"
	"github.com/lightbasic/lbc/internal/types"
)

// ValueCategory records the addressability/dereferenceability/
// assignability/callability of one expression. Computed fresh
// per-expression by the semantic analyzer, independent of any Symbol
// it may resolve to.
type ValueCategory uint8

const (
	VCAddressable ValueCategory = 1 << iota
	VCDereferenceable
	VCAssignable
	VCCallable
)

func (v ValueCategory) Has(bit ValueCategory) bool { return v&bit != 0 }

// exprBase is embedded by every expression node: every expression
// carries a Type (nil until semantic analysis assigns it; after
// analysis every expression type is non-nil and canonical) and
// value-category flags.
type exprBase struct {
	base
	Type types.Type
	VCat ValueCategory
}

func (e *exprBase) exprNode() {}

// GetType returns the expression's resolved type (nil pre-analysis).
func (e *exprBase) GetType() types.Type { return e.Type }

// SetType assigns the expression's resolved type — called by the
// semantic analyzer, never by the parser.
func (e *exprBase) SetType(t types.Type) { e.Type = t }

// SetValueCategory assigns the expression's value-category flags.
func (e *exprBase) SetValueCategory(v ValueCategory) { e.VCat = v }

// ValueCategory returns the expression's value-category flags.
func (e *exprBase) ValueCategory() ValueCategory { return e.VCat }

// TypedExpr is implemented by every Expr; the semantic analyzer
// operates against this interface rather than switching on concrete
// node types when it only needs to read/write Type — exhaustive
// Kind-tag switches are reserved for the places shape-specific fields
// matter.
type TypedExpr interface {
	Expr
	GetType() types.Type
	SetType(types.Type)
	ValueCategory() ValueCategory
	SetValueCategory(ValueCategory)
}

// IdentExpr is a bare identifier reference, resolved to Symbol by name
// resolution.
type IdentExpr struct {
	exprBase
	Name   string
	Symbol *symbols.Symbol
}

func NewIdentExpr(a *Arena, rng token.Range, name string) *IdentExpr {
	e := &IdentExpr{Name: name}
	e.kind, e.rng = KindIdentExpr, rng
	a.track(e)
	return e
}

// CallExpr is `callee(args...)` or, at statement position, a
// parenthesis-free call (flagged by WithoutParens).
type CallExpr struct {
	exprBase
	Callee        Expr
	Args          []Expr
	WithoutParens bool
}

func NewCallExpr(a *Arena, rng token.Range, callee Expr, args []Expr, withoutParens bool) *CallExpr {
	e := &CallExpr{Callee: callee, Args: args, WithoutParens: withoutParens}
	e.kind, e.rng = KindCallExpr, rng
	a.track(e)
	return e
}

// LiteralKind enumerates the literal shapes a LiteralExpr can hold.
type LiteralKind int

const (
	LitInteger LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// LiteralExpr is a literal token materialized into an expression node.
type LiteralExpr struct {
	exprBase
	LitKind LiteralKind
	U64     uint64
	F64     float64
	Str     string
	Bool    bool
}

func NewLiteralExpr(a *Arena, rng token.Range, lit token.Literal) *LiteralExpr {
	e := &LiteralExpr{}
	switch lit.Kind {
	case token.LitUint64:
		e.LitKind, e.U64 = LitInteger, lit.U64
	case token.LitFloat64:
		e.LitKind, e.F64 = LitFloat, lit.F64
	case token.LitString:
		e.LitKind, e.Str = LitString, lit.Str
	case token.LitBool:
		e.LitKind, e.Bool = LitBool, lit.Bool
	default:
		e.LitKind = LitNull
	}
	e.kind, e.rng = KindLiteralExpr, rng
	a.track(e)
	return e
}

// UnaryOp enumerates unary operators. Negate is produced by the parser
// rewriting a prefix-position Minus token.
type UnaryOp int

const (
	OpNegate UnaryOp = iota
	OpNot
)

// UnaryExpr is `op X`.
type UnaryExpr struct {
	exprBase
	Op UnaryOp
	X  Expr
}

func NewUnaryExpr(a *Arena, rng token.Range, op UnaryOp, x Expr) *UnaryExpr {
	e := &UnaryExpr{Op: op, X: x}
	e.kind, e.rng = KindUnaryExpr, rng
	a.track(e)
	return e
}

// BinaryOp enumerates binary operators, grouped below by semantic
// kind for the precedence table and the result-type rule.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
)

// BinaryOpKind classifies a BinaryOp for the precedence table and for
// the analyzer's result-type rule: arithmetic yields the operand type,
// comparison and logical yield Boolean.
type BinaryOpKind int

const (
	KindArithmetic BinaryOpKind = iota
	KindComparison
	KindLogical
)

func (op BinaryOp) Classify() BinaryOpKind {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		return KindArithmetic
	case OpAnd, OpOr:
		return KindLogical
	default:
		return KindComparison
	}
}

// BinaryExpr is `lhs op rhs`. PointerElemSize is set by the analyzer
// for pointer arithmetic (`ptr + n`, `ptr - n`, `ptr - ptr`): the
// pointee's size in bytes, so codegen can scale the integer operand
// without re-deriving it from the resolved types. Zero for every
// non-pointer-arithmetic binary expression.
type BinaryExpr struct {
	exprBase
	Op              BinaryOp
	LHS, RHS        Expr
	PointerElemSize int
}

func NewBinaryExpr(a *Arena, rng token.Range, op BinaryOp, lhs, rhs Expr) *BinaryExpr {
	e := &BinaryExpr{Op: op, LHS: lhs, RHS: rhs}
	e.kind, e.rng = KindBinaryExpr, rng
	a.track(e)
	return e
}

// AssignExpr is `lhs = rhs` in expression context; nested assignment
// expressions, e.g. inside an IF condition's VAR declaration, use this
// node directly rather than the statement-position AssignStmt.
type AssignExpr struct {
	exprBase
	LHS, RHS Expr
}

func NewAssignExpr(a *Arena, rng token.Range, lhs, rhs Expr) *AssignExpr {
	e := &AssignExpr{LHS: lhs, RHS: rhs}
	e.kind, e.rng = KindAssignExpr, rng
	a.track(e)
	return e
}

// CastExpr is an explicit `expr AS type` or an implicit conversion
// materialized by the analyzer's coercion algorithm — every implicit
// conversion becomes a CAST node flagged Implicit, so codegen never
// re-derives one. TypeExpr carries the user-written type
// reference for an explicit cast, resolved by the type pass like any
// other TypeExpr; an implicit cast synthesized by the coercion
// algorithm leaves TypeExpr nil and has its Type set directly.
type CastExpr struct {
	exprBase
	X        Expr
	TypeExpr TypeNode
	Implicit bool
}

func NewCastExpr(a *Arena, rng token.Range, x Expr, typeExpr TypeNode, implicit bool) *CastExpr {
	e := &CastExpr{X: x, TypeExpr: typeExpr, Implicit: implicit}
	e.kind, e.rng = KindCastExpr, rng
	a.track(e)
	return e
}

// NewImplicitCastExpr builds an implicit CAST wrapper with its target
// type already known (the coercion algorithm's own output), bypassing
// TypeExpr resolution since the analyzer already holds a canonical
// types.Type.
func NewImplicitCastExpr(a *Arena, rng token.Range, x Expr, target types.Type) *CastExpr {
	e := &CastExpr{X: x, Implicit: true}
	e.kind, e.rng = KindCastExpr, rng
	e.Type = target
	a.track(e)
	return e
}

// IfExpr is the ternary `IIF(cond, then, else)` form.
type IfExpr struct {
	exprBase
	Cond, Then, Else Expr
}

func NewIfExpr(a *Arena, rng token.Range, cond, then, els Expr) *IfExpr {
	e := &IfExpr{Cond: cond, Then: then, Else: els}
	e.kind, e.rng = KindIfExpr, rng
	a.track(e)
	return e
}

// DerefExpr is `*ptrExpr`, dereferencing a pointer value.
type DerefExpr struct {
	exprBase
	X Expr
}

func NewDerefExpr(a *Arena, rng token.Range, x Expr) *DerefExpr {
	e := &DerefExpr{X: x}
	e.kind, e.rng = KindDerefExpr, rng
	a.track(e)
	return e
}

// AddressOfExpr is `@expr`, taking the address of an addressable
// expression.
type AddressOfExpr struct {
	exprBase
	X Expr
}

func NewAddressOfExpr(a *Arena, rng token.Range, x Expr) *AddressOfExpr {
	e := &AddressOfExpr{X: x}
	e.kind, e.rng = KindAddressOfExpr, rng
	a.track(e)
	return e
}

// MemberExpr is `base.member`, resolved to the UDT field (carrying
// its zero-based Index) by the semantic analyzer.
type MemberExpr struct {
	exprBase
	X          Expr
	MemberName string
	Member     *types.UDTMember
}

func NewMemberExpr(a *Arena, rng token.Range, x Expr, member string) *MemberExpr {
	e := &MemberExpr{X: x, MemberName: member}
	e.kind, e.rng = KindMemberExpr, rng
	a.track(e)
	return e
}
