package ast

// Arena owns every node created for one translation unit. Go has no
// placement-new, so Arena does not itself manage node storage (the
// garbage collector does); what it provides is a single allocation
// point — every constructor in this package takes an *Arena, and the
// Arena records nodes in creation order so a translation unit can be
// walked, counted, or dumped without a separate traversal pass.
// Nothing outside the owning Module ever holds the only reference to
// one of its nodes.
type Arena struct {
	nodes []Node
}

// NewArena creates an empty Arena for one translation unit.
func NewArena() *Arena { return &Arena{} }

func (a *Arena) track(n Node) Node {
	a.nodes = append(a.nodes, n)
	return n
}

// Nodes returns every node allocated from this arena, in creation
// order.
func (a *Arena) Nodes() []Node { return a.nodes }

// Len returns the number of nodes allocated so far.
func (a *Arena) Len() int { return len(a.nodes) }
