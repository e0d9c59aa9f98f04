package lang

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned by ValidateIDs when two nodes share an id.
var ErrDuplicateID = errors.New("duplicate node id")

// ErrNotInTree is returned by SwapNode when the target id is absent.
var ErrNotInTree = errors.New("node not in tree")

// DFS returns root and all of its descendants in pre-order.
func DFS(root CodeNode) []CodeNode {
	var out []CodeNode
	walk(root, func(n CodeNode) bool {
		out = append(out, n)
		return true
	})
	return out
}

// walk visits nodes in pre-order until visit returns false.
func walk(n CodeNode, visit func(CodeNode) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for _, c := range n.Children() {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// FindNode returns the node with the given id.
func FindNode(root CodeNode, id ID) (CodeNode, bool) {
	var found CodeNode
	walk(root, func(n CodeNode) bool {
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// FindParent returns the parent of the node with the given id.
func FindParent(root CodeNode, id ID) (CodeNode, bool) {
	var found CodeNode
	walk(root, func(n CodeNode) bool {
		for _, c := range n.Children() {
			if c.ID() == id {
				found = n
				return false
			}
		}
		return true
	})
	return found, found != nil
}

// CountNodes returns the number of nodes in the tree.
func CountNodes(root CodeNode) int {
	count := 0
	walk(root, func(CodeNode) bool {
		count++
		return true
	})
	return count
}

// LastDescendant returns the last node of n's pre-order traversal.
func LastDescendant(n CodeNode) CodeNode {
	for {
		children := n.Children()
		if len(children) == 0 {
			return n
		}
		n = children[len(children)-1]
	}
}

// ValidateIDs checks that every id in the tree is unique.
func ValidateIDs(root CodeNode) error {
	seen := make(map[ID]bool)
	var dup ID
	walk(root, func(n CodeNode) bool {
		if seen[n.ID()] {
			dup = n.ID()
			return false
		}
		seen[n.ID()] = true
		return true
	})
	if dup != NilID {
		return fmt.Errorf("%w: %s", ErrDuplicateID, dup)
	}
	return nil
}

// Clone returns a deep copy of n with identical ids.
func Clone(n CodeNode) CodeNode {
	children := n.Children()
	cloned := make([]CodeNode, len(children))
	for i, c := range children {
		cloned[i] = Clone(c)
	}
	out, err := n.withChildren(cloned)
	if err != nil {
		// Children round-trips through withChildren for every variant.
		panic(fmt.Sprintf("lang: clone %s: %v", n.Kind(), err))
	}
	return out
}

// SwapNode returns a new tree in which the node with the given id is
// replaced by replacement. Nodes off the path to the target are shared with
// the input; the input is never modified.
func SwapNode(root CodeNode, id ID, replacement CodeNode) (CodeNode, error) {
	out, found, err := swap(root, id, replacement)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotInTree, id)
	}
	return out, nil
}

func swap(n CodeNode, id ID, replacement CodeNode) (CodeNode, bool, error) {
	if n.ID() == id {
		return replacement, true, nil
	}
	children := n.Children()
	for i, c := range children {
		updated, found, err := swap(c, id, replacement)
		if err != nil {
			return nil, false, err
		}
		if !found {
			continue
		}
		next := append([]CodeNode(nil), children...)
		next[i] = updated
		rebuilt, err := n.withChildren(next)
		if err != nil {
			return nil, false, err
		}
		return rebuilt, true, nil
	}
	return n, false, nil
}

// MatchVariantBindingID names the variable a match branch binds for its
// variant's payload.
func MatchVariantBindingID(matchID, variantID ID) ID {
	return newSHA1(matchID, variantID[:])
}
