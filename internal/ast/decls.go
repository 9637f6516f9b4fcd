package ast

import (
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/token"
)

// Attribute is one `[ name = value ]` entry attached to the
// declaration that follows it.
type Attribute struct {
	Name  string
	Value string
}

// VarDecl is `DIM|VAR name [AS type] [= expr]`.
type VarDecl struct {
	base
	Attributes []Attribute
	Name       string
	TypeExpr   TypeNode // nil if inferred from Init
	Init       Expr     // nil if no initializer
	Symbol     *symbols.Symbol
}

func (d *VarDecl) stmtNode() {}
func (d *VarDecl) declNode() {}

func NewVarDecl(a *Arena, rng token.Range, name string, typeExpr TypeNode, init Expr) *VarDecl {
	d := &VarDecl{base: base{kind: KindVarDecl, rng: rng}, Name: name, TypeExpr: typeExpr, Init: init}
	a.track(d)
	return d
}

// ParamDecl is one parameter of a function/sub signature.
type ParamDecl struct {
	base
	Name     string
	TypeExpr TypeNode
	ByRef    bool
	Symbol   *symbols.Symbol
}

func (d *ParamDecl) stmtNode() {}
func (d *ParamDecl) declNode() {}

func NewParamDecl(a *Arena, rng token.Range, name string, typeExpr TypeNode, byRef bool) *ParamDecl {
	d := &ParamDecl{base: base{kind: KindParamDecl, rng: rng}, Name: name, TypeExpr: typeExpr, ByRef: byRef}
	a.track(d)
	return d
}

// FuncDecl is `DECLARE (FUNCTION|SUB) name(params) [AS type]` or a
// full `FUNCTION|SUB ... END FUNCTION|SUB` with Body non-nil.
type FuncDecl struct {
	base
	Attributes []Attribute
	Name       string
	Params     []*ParamDecl
	ReturnType TypeNode // nil for SUB
	IsSub      bool
	Variadic   bool
	IsForwardOnly bool // true for a bare DECLARE with no body
	Body       *StmtList // nil for DECLARE / external declarations
	BodySymbols *symbols.SymbolTable
	Symbol     *symbols.Symbol
}

func (d *FuncDecl) stmtNode() {}
func (d *FuncDecl) declNode() {}

func NewFuncDecl(a *Arena, rng token.Range, name string, params []*ParamDecl, ret TypeNode, isSub bool) *FuncDecl {
	d := &FuncDecl{base: base{kind: KindFuncDecl, rng: rng}, Name: name, Params: params, ReturnType: ret, IsSub: isSub}
	a.track(d)
	return d
}

// TypeDecl is `TYPE name ... END TYPE`, a UDT declaration. Members are
// VarDecls with no initializer, sharing the UDTType's member-index
// numbering assigned by the UDT declarer pass.
type TypeDecl struct {
	base
	Name    string
	Members []*VarDecl
	Packed  bool
	Symbol  *symbols.Symbol
}

func (d *TypeDecl) stmtNode() {}
func (d *TypeDecl) declNode() {}

func NewTypeDecl(a *Arena, rng token.Range, name string, members []*VarDecl, packed bool) *TypeDecl {
	d := &TypeDecl{base: base{kind: KindTypeDecl, rng: rng}, Name: name, Members: members, Packed: packed}
	a.track(d)
	return d
}
