// Package symbols implements LightBASIC's Symbol and SymbolTable: a
// case-normalized, insertion-ordered map with an outer-scope pointer,
// binding each name to an alias for external linkage, a parent-table
// back-reference, a UDT member index, and
// addressability/assignability/callability flags.
package symbols

import "github.com/lightbasic/lbc/internal/types"

// Flags records a symbol's value-category capabilities. These live on
// declarations; an expression's own flags are computed fresh by the
// semantic analyzer from the symbol it resolves to.
type Flags uint8

const (
	Addressable Flags = 1 << iota
	Dereferenceable
	Assignable
	Callable
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Symbol is one name bound in a SymbolTable: a variable, function,
// function parameter, or UDT member.
type Symbol struct {
	Name    string // canonical (upper-cased) name
	Alias   string // external linkage name, if ALIAS was supplied; empty otherwise
	Type    types.Type
	Parent  *SymbolTable // the table this symbol is defined in
	Index   int          // UDT member field position; meaningless otherwise
	Flags   Flags

	ExternalLinkage bool

	// ConstValue is a slot for a compile-time constant value, one of
	// uint64, float64, bool, or string — the same shapes token.Literal
	// carries. No pass sets it: the analyzer's constant folding
	// replaces expressions with literal nodes and leaves ConstValue nil.
	ConstValue any
}

// Identifier returns Alias if set, else Name. The MAIN function's
// alias defaults to lowercase "main" by convention applied at the
// function-declarer pass, not here.
func (s *Symbol) Identifier() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.Name
}

// IsAddressable, IsDereferenceable, IsAssignable, IsCallable are
// convenience predicates over Flags.
func (s *Symbol) IsAddressable() bool     { return s.Flags.Has(Addressable) }
func (s *Symbol) IsDereferenceable() bool { return s.Flags.Has(Dereferenceable) }
func (s *Symbol) IsAssignable() bool      { return s.Flags.Has(Assignable) }
func (s *Symbol) IsCallable() bool        { return s.Flags.Has(Callable) }

// ClearAddressable removes the Addressable and Assignable flags — used
// by the FOR statement analyzer to forbid modification of the loop
// iterator inside the loop body.
func (s *Symbol) ClearAddressable() {
	s.Flags &^= Addressable | Assignable
}
