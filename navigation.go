package sapling

import (
	"github.com/jward/sapling/internal/lang"
)

// Navigation moves a cursor over the navigatable nodes of a tree. Every
// method takes the current selection (NilID for none) and returns the new
// one, or NilID when there is nowhere to go.
type Navigation struct {
	genie *Genie
}

func NewNavigation(g *Genie) *Navigation {
	return &Navigation{genie: g}
}

// NavigateForwardFrom returns the next navigatable node in pre-order. With no
// selection it starts from the root.
func (nav *Navigation) NavigateForwardFrom(id ID) ID {
	var cur CodeNode
	if id == NilID {
		cur = nav.genie.Root()
		if nav.IsNavigatable(cur) {
			return cur.ID()
		}
	} else {
		n, ok := nav.genie.FindNode(id)
		if !ok {
			return NilID
		}
		cur = n
	}
	for range nav.genie.NodeCount() {
		next := nav.nextNodeFrom(cur)
		if next == nil {
			return NilID
		}
		if nav.IsNavigatable(next) {
			return next.ID()
		}
		cur = next
	}
	return NilID
}

// NavigateBackFrom returns the previous navigatable node. Stepping back
// into an earlier sibling lands on its last descendant.
func (nav *Navigation) NavigateBackFrom(id ID) ID {
	if id == NilID {
		return NilID
	}
	cur, ok := nav.genie.FindNode(id)
	if !ok {
		return NilID
	}
	for range nav.genie.NodeCount() {
		prev := nav.prevNodeFrom(cur)
		if prev == nil {
			return NilID
		}
		if nav.IsNavigatable(prev) {
			return prev.ID()
		}
		cur = prev
	}
	return NilID
}

func (nav *Navigation) nextNodeFrom(n CodeNode) CodeNode {
	if children := n.Children(); len(children) > 0 {
		return children[0]
	}
	for cur := n; ; {
		parent, ok := nav.genie.FindParent(cur.ID())
		if !ok {
			return nil
		}
		if sib := nextChild(parent, cur.ID()); sib != nil {
			return sib
		}
		cur = parent
	}
}

func (nav *Navigation) prevNodeFrom(n CodeNode) CodeNode {
	parent, ok := nav.genie.FindParent(n.ID())
	if !ok {
		return nil
	}
	if sib := previousChild(parent, n.ID()); sib != nil {
		return lang.LastDescendant(sib)
	}
	return parent
}

func nextChild(parent CodeNode, id ID) CodeNode {
	children := parent.Children()
	for i, c := range children {
		if c.ID() == id && i+1 < len(children) {
			return children[i+1]
		}
	}
	return nil
}

func previousChild(parent CodeNode, id ID) CodeNode {
	children := parent.Children()
	for i, c := range children {
		if c.ID() == id && i > 0 {
			return children[i-1]
		}
	}
	return nil
}

// NavigateUpFrom moves to the statement above, keeping the selection's
// offset among the navigatable nodes of its statement.
func (nav *Navigation) NavigateUpFrom(id ID) ID {
	return nav.navigateVertically(id, -1)
}

// NavigateDownFrom moves to the statement below. With no selection it
// behaves like NavigateForwardFrom.
func (nav *Navigation) NavigateDownFrom(id ID) ID {
	if id == NilID {
		return nav.NavigateForwardFrom(NilID)
	}
	return nav.navigateVertically(id, 1)
}

func (nav *Navigation) navigateVertically(id ID, step int) ID {
	if id == NilID {
		return NilID
	}
	block, pos, ok := nav.genie.FindEnclosingBlock(id)
	if !ok {
		return NilID
	}
	offset := -1
	for i, n := range nav.navigatablesIn(block.Statements[pos]) {
		if n.ID() == id {
			offset = i
			break
		}
	}
	if offset < 0 {
		return NilID
	}
	for p := pos + step; p >= 0 && p < len(block.Statements); p += step {
		candidates := nav.navigatablesIn(block.Statements[p])
		if len(candidates) == 0 {
			continue
		}
		return candidates[min(offset, len(candidates)-1)].ID()
	}
	return NilID
}

func (nav *Navigation) navigatablesIn(stmt CodeNode) []CodeNode {
	var out []CodeNode
	for _, n := range lang.DFS(stmt) {
		if nav.IsNavigatable(n) {
			out = append(out, n)
		}
	}
	return out
}

// IsNavigatable decides whether the cursor may stop on n. Blocks and whole
// function calls are skipped, as are the holes of calls and struct
// literals; their contents are what the cursor lands on.
func (nav *Navigation) IsNavigatable(n CodeNode) bool {
	switch n.(type) {
	case *lang.Block, *lang.FunctionCall, *lang.Argument, *lang.StructLiteralField:
		return false
	case *lang.Assignment, *lang.FunctionReference:
		return true
	case *lang.StringLiteral, *lang.NumberLiteral, *lang.NullLiteral, *lang.StructLiteral, *lang.ListLiteral:
		return true
	}
	parent, ok := nav.genie.FindParent(n.ID())
	if !ok {
		return false
	}
	switch parent.(type) {
	case *lang.Argument, *lang.StructLiteralField, *lang.ListLiteral:
		return true
	case *lang.Block:
		_, isPlaceholder := n.(*lang.Placeholder)
		return isPlaceholder
	}
	return false
}
