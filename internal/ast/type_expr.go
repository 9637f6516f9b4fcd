package ast

import (
	"github.com/lightbasic/lbc/internal/token"
	"github.com/lightbasic/lbc/internal/types"
)

// TypeExpr is a type reference as written in source: a base token kind
// (a built-in type keyword or an identifier naming a UDT) plus a
// dereference (PTR) level, e.g. `PTR PTR INTEGER` is TokenKind=Integer,
// PtrLevel=2. The type pass resolves this to a canonical types.Type,
// stored in Resolved.
type TypeExpr struct {
	base
	TokenKind token.Kind // a Ty* kind, or token.Identifier for a UDT reference
	Name      string     // set when TokenKind == token.Identifier
	PtrLevel  int
	Resolved  types.Type
}

func (t *TypeExpr) typeNode() {}

func NewTypeExpr(a *Arena, rng token.Range, kind token.Kind, name string, ptrLevel int) *TypeExpr {
	t := &TypeExpr{base: base{kind: KindTypeExpr, rng: rng}, TokenKind: kind, Name: name, PtrLevel: ptrLevel}
	a.track(t)
	return t
}
