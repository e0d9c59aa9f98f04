package sapling

import (
	"github.com/jward/sapling/internal/lang"
)

// Genie answers read-only questions about one immutable tree: where a node
// is, what surrounds it, what it declares and what type it has.
//
// A Genie indexes its root once; build a new one after every mutation.
type Genie struct {
	root    CodeNode
	nodes   map[ID]CodeNode
	parents map[ID]CodeNode
	order   []CodeNode
}

// NewGenie indexes root.
func NewGenie(root CodeNode) *Genie {
	g := &Genie{
		root:    root,
		nodes:   make(map[ID]CodeNode),
		parents: make(map[ID]CodeNode),
	}
	g.order = lang.DFS(root)
	for _, n := range g.order {
		g.nodes[n.ID()] = n
		for _, c := range n.Children() {
			g.parents[c.ID()] = n
		}
	}
	return g
}

// Root returns the indexed tree.
func (g *Genie) Root() CodeNode { return g.root }

// AllNodes returns every node in pre-order.
func (g *Genie) AllNodes() []CodeNode { return g.order }

// NodeCount returns the number of nodes in the tree.
func (g *Genie) NodeCount() int { return len(g.order) }

func (g *Genie) FindNode(id ID) (CodeNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func (g *Genie) FindParent(id ID) (CodeNode, bool) {
	p, ok := g.parents[id]
	return p, ok
}

// Ancestors returns the parents of id, innermost first.
func (g *Genie) Ancestors(id ID) []CodeNode {
	var out []CodeNode
	for p, ok := g.parents[id]; ok; p, ok = g.parents[p.ID()] {
		out = append(out, p)
	}
	return out
}

// FindExpressionInsideBlockThatContains walks up from id to the statement
// of the innermost enclosing Block. A node sitting directly in a Block is
// its own statement.
func (g *Genie) FindExpressionInsideBlockThatContains(id ID) (ID, bool) {
	for cur := id; ; {
		parent, ok := g.parents[cur]
		if !ok {
			return NilID, false
		}
		if _, isBlock := parent.(*lang.Block); isBlock {
			return cur, true
		}
		cur = parent.ID()
	}
}

// FindEnclosingBlock returns the Block holding the statement that contains
// id, together with that statement's position.
func (g *Genie) FindEnclosingBlock(id ID) (*lang.Block, int, bool) {
	stmt, ok := g.FindExpressionInsideBlockThatContains(id)
	if !ok {
		return nil, -1, false
	}
	block := g.parents[stmt].(*lang.Block)
	pos, _ := block.Position(stmt)
	return block, pos, true
}

// FindAssignmentsThatComeBeforeCode returns the Assignments visible at id:
// the earlier statements of its innermost Block (including id's own
// statement when inclusive), then the earlier statements of every Block
// further out, innermost first.
//
// Assignments nested inside an earlier statement's own blocks (a branch of
// a previous conditional, say) are not visible.
func (g *Genie) FindAssignmentsThatComeBeforeCode(id ID, inclusive bool) []*lang.Assignment {
	var out []*lang.Assignment
	cur := id
	for {
		block, pos, ok := g.FindEnclosingBlock(cur)
		if !ok {
			return out
		}
		end := pos
		if inclusive {
			end = pos + 1
		}
		for _, stmt := range block.Statements[:end] {
			if a, ok := stmt.(*lang.Assignment); ok {
				out = append(out, a)
			}
		}
		inclusive = false
		cur = block.NodeID
	}
}

// FindAnonFuncParents returns the anonymous functions enclosing id,
// innermost first.
func (g *Genie) FindAnonFuncParents(id ID) []*lang.AnonymousFunction {
	var out []*lang.AnonymousFunction
	for _, a := range g.Ancestors(id) {
		if af, ok := a.(*lang.AnonymousFunction); ok {
			out = append(out, af)
		}
	}
	return out
}

// MatchScope is a match branch enclosing some node.
type MatchScope struct {
	Match  *lang.Match
	Branch lang.MatchBranch
}

// FindMatchBindingsFor returns the match branches whose block
// contains id, innermost first.
func (g *Genie) FindMatchBindingsFor(id ID) []MatchScope {
	var out []MatchScope
	child := id
	for _, a := range g.Ancestors(id) {
		if m, ok := a.(*lang.Match); ok {
			if b, ok := m.BranchFor(child); ok {
				out = append(out, MatchScope{Match: m, Branch: b})
			}
		}
		child = a.ID()
	}
	return out
}

// FindAssignment returns the Assignment with the given id.
func (g *Genie) FindAssignment(id ID) (*lang.Assignment, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	a, ok := n.(*lang.Assignment)
	return a, ok
}

// findMatchBinding locates the match branch that binds id.
func (g *Genie) findMatchBinding(id ID) (MatchScope, bool) {
	for _, n := range g.order {
		m, ok := n.(*lang.Match)
		if !ok {
			continue
		}
		for _, b := range m.Branches {
			if lang.MatchVariantBindingID(m.NodeID, b.VariantID) == id {
				return MatchScope{Match: m, Branch: b}, true
			}
		}
	}
	return MatchScope{}, false
}

// findAnonFuncByArg locates the anonymous function whose argument is id.
func (g *Genie) findAnonFuncByArg(id ID) (*lang.AnonymousFunction, bool) {
	for _, n := range g.order {
		if af, ok := n.(*lang.AnonymousFunction); ok && af.TakesArg.ID == id {
			return af, true
		}
	}
	return nil, false
}

// CurrentBlockStatement is the statement of the innermost Block around id.
// It returns NilID when id is the root or absent.
func (g *Genie) CurrentBlockStatement(id ID) ID {
	stmt, _ := g.FindExpressionInsideBlockThatContains(id)
	return stmt
}
