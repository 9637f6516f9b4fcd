package parser

import (
	"github.com/lightbasic/lbc/internal/ast"
	"github.com/lightbasic/lbc/internal/token"
)

// Associativity records which side a binary operator groups toward.
type Associativity int

const (
	LeftAssoc Associativity = iota
	RightAssoc
)

// opInfo is one entry of the operator table: the operator, its
// precedence, and its associativity. Precedence climbing reads only
// Prec and groups every operator to the left; the analyzer reads
// Op.Classify() for its result-type rule.
type opInfo struct {
	Op    ast.BinaryOp
	Prec  int
	Assoc Associativity
}

// binaryOps maps a token.Kind to its operator-table entry. Every entry
// here is left-associative; LightBASIC has no right-associative binary
// operator. Unary operators (Negate, Not, Deref, AddressOf) and postfix
// member access are handled directly by parseFactor()/parsePostfix() rather than
// through this table, since precedence climbing only drives the binary
// layer.
var binaryOps = map[token.Kind]opInfo{
	token.Or:           {ast.OpOr, 1, LeftAssoc},
	token.And:          {ast.OpAnd, 2, LeftAssoc},
	token.Equal:        {ast.OpEqual, 3, LeftAssoc},
	token.Assign:       {ast.OpEqual, 3, LeftAssoc}, // rewritten: `=` in expression context means Equal
	token.NotEqual:     {ast.OpNotEqual, 3, LeftAssoc},
	token.Less:         {ast.OpLess, 4, LeftAssoc},
	token.LessEqual:    {ast.OpLessEqual, 4, LeftAssoc},
	token.Greater:      {ast.OpGreater, 4, LeftAssoc},
	token.GreaterEqual: {ast.OpGreaterEqual, 4, LeftAssoc},
	token.Plus:         {ast.OpAdd, 5, LeftAssoc},
	token.Minus:        {ast.OpSub, 5, LeftAssoc},
	token.Star:         {ast.OpMul, 6, LeftAssoc},
	token.Slash:        {ast.OpDiv, 6, LeftAssoc},
	token.Mod:          {ast.OpMod, 6, LeftAssoc},
}

func lookupBinaryOp(k token.Kind) (opInfo, bool) {
	info, ok := binaryOps[k]
	return info, ok
}
