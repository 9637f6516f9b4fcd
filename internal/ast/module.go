package ast

import (
	"github.com/lightbasic/lbc/internal/symbols"
	"github.com/lightbasic/lbc/internal/token"
)

// Module is the root of one translation unit's AST: a file ID, the
// implicit-main flag, its top-level statement list, and the module
// symbol table every declaration pass populates.
type Module struct {
	base
	FileID      string
	ImplicitMain bool
	Statements  []Stmt
	Symbols     *symbols.SymbolTable
}

// NewModule allocates a Module node from the arena.
func NewModule(a *Arena, rng token.Range, fileID string, implicitMain bool) *Module {
	m := &Module{base: base{kind: KindModule, rng: rng}, FileID: fileID, ImplicitMain: implicitMain, Symbols: symbols.New()}
	a.track(m)
	return m
}
