package sapling

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jward/sapling/internal/lang"
)

// InsertCode returns a new root with node placed at ip. The tree g indexes
// is not modified.
//
// Insertion points are built by the engine from the tree's shape, so a
// mismatch between ip and the tree is reported as ErrInvalidInsertionPoint
// (wrapping ErrInvariantViolation) rather than handled.
func InsertCode(node CodeNode, ip InsertionPoint, g *Genie) (CodeNode, error) {
	root, err := insertCode(node, ip, g)
	if err != nil {
		return nil, fmt.Errorf("insert %s at %s: %w", node.Kind(), ip, err)
	}
	if err := lang.ValidateIDs(root); err != nil {
		return nil, fmt.Errorf("insert %s at %s: %w: %w", node.Kind(), ip, ErrInvariantViolation, err)
	}
	return root, nil
}

func insertCode(node CodeNode, ip InsertionPoint, g *Genie) (CodeNode, error) {
	switch ip.Kind {
	case InsertBeginningOfBlock:
		block, err := findAs[*lang.Block](g, ip.ID)
		if err != nil {
			return nil, err
		}
		stmts := append([]CodeNode{node}, block.Statements...)
		return swapInto(g, &lang.Block{NodeID: block.NodeID, Statements: stmts})

	case InsertBefore, InsertAfter:
		parent, ok := g.FindParent(ip.ID)
		if !ok {
			return nil, invalidPoint("%s has no parent", ip.ID)
		}
		block, ok := parent.(*lang.Block)
		if !ok {
			return nil, invalidPoint("parent of %s is a %s, not a block", ip.ID, parent.Kind())
		}
		pos, _ := block.Position(ip.ID)
		if ip.Kind == InsertAfter {
			pos++
		}
		stmts := slices.Insert(slices.Clone(block.Statements), pos, node)
		return swapInto(g, &lang.Block{NodeID: block.NodeID, Statements: stmts})

	case InsertArgument:
		arg, err := findAs[*lang.Argument](g, ip.ID)
		if err != nil {
			return nil, err
		}
		return swapInto(g, &lang.Argument{NodeID: arg.NodeID, ArgumentDefinitionID: arg.ArgumentDefinitionID, Expr: node})

	case InsertStructLiteralField:
		field, err := findAs[*lang.StructLiteralField](g, ip.ID)
		if err != nil {
			return nil, err
		}
		return swapInto(g, &lang.StructLiteralField{NodeID: field.NodeID, StructFieldID: field.StructFieldID, Expr: node})

	case InsertListLiteralElement:
		list, err := findAs[*lang.ListLiteral](g, ip.ID)
		if err != nil {
			return nil, err
		}
		if ip.Pos < 0 || ip.Pos > len(list.Elements) {
			return nil, invalidPoint("position %d outside list of %d elements", ip.Pos, len(list.Elements))
		}
		elems := slices.Insert(slices.Clone(list.Elements), ip.Pos, node)
		return swapInto(g, &lang.ListLiteral{NodeID: list.NodeID, ElementType: list.ElementType, Elements: elems})

	case InsertReplace, InsertWrap:
		if _, ok := g.FindNode(ip.ID); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, ip.ID)
		}
		return lang.SwapNode(g.Root(), ip.ID, node)

	case InsertEditing:
		return nil, ErrUnsupportedInsertion
	}
	return nil, invalidPoint("unknown insertion kind %d", int(ip.Kind))
}

func invalidPoint(format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrInvalidInsertionPoint, fmt.Sprintf(format, args...))
}

func findAs[T CodeNode](g *Genie, id ID) (T, error) {
	var zero T
	n, ok := g.FindNode(id)
	if !ok {
		return zero, fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrNodeNotFound, id)
	}
	typed, ok := n.(T)
	if !ok {
		return zero, invalidPoint("%s is a %s", id, n.Kind())
	}
	return typed, nil
}

// swapInto replaces the node sharing updated's id.
func swapInto(g *Genie, updated CodeNode) (CodeNode, error) {
	root, err := lang.SwapNode(g.Root(), updated.ID(), updated)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvariantViolation, err)
	}
	return root, nil
}

// DeletionResult is the outcome of DeleteCode. Deleted is false when the
// node could not be removed on its own and Root is the unchanged tree.
type DeletionResult struct {
	Root    CodeNode
	Cursor  ID
	Deleted bool
}

// DeleteCode removes id from its parent. Only block statements and list
// elements can be deleted; holes are filled rather than removed, so any
// other parent leaves the tree as it is.
//
// The cursor moves to whatever now occupies the deleted position, else the
// element before it. An emptied block leaves no cursor; an emptied list
// selects the list.
func DeleteCode(id ID, g *Genie, cursor ID) (DeletionResult, error) {
	if _, ok := g.FindNode(id); !ok {
		return DeletionResult{}, fmt.Errorf("delete %s: %w", id, ErrNodeNotFound)
	}
	unchanged := DeletionResult{Root: g.Root(), Cursor: cursor}
	parent, ok := g.FindParent(id)
	if !ok {
		return unchanged, nil
	}

	switch p := parent.(type) {
	case *lang.Block:
		pos, _ := p.Position(id)
		stmts := slices.Delete(slices.Clone(p.Statements), pos, pos+1)
		root, err := swapInto(g, &lang.Block{NodeID: p.NodeID, Statements: stmts})
		if err != nil {
			return DeletionResult{}, fmt.Errorf("delete %s: %w", id, err)
		}
		return DeletionResult{Root: root, Cursor: cursorAfterRemoval(stmts, pos, NilID), Deleted: true}, nil

	case *lang.ListLiteral:
		pos, _ := p.Position(id)
		elems := slices.Delete(slices.Clone(p.Elements), pos, pos+1)
		root, err := swapInto(g, &lang.ListLiteral{NodeID: p.NodeID, ElementType: p.ElementType, Elements: elems})
		if err != nil {
			return DeletionResult{}, fmt.Errorf("delete %s: %w", id, err)
		}
		return DeletionResult{Root: root, Cursor: cursorAfterRemoval(elems, pos, p.NodeID), Deleted: true}, nil
	}
	return unchanged, nil
}

func cursorAfterRemoval(remaining []CodeNode, pos int, fallback ID) ID {
	switch {
	case pos < len(remaining):
		return remaining[pos].ID()
	case len(remaining) > 0:
		return remaining[len(remaining)-1].ID()
	}
	return fallback
}

// PostInsertionAction is where focus goes after code is inserted: either
// the node to select, or an insertion point to start editing.
type PostInsertionAction struct {
	Select        ID
	MarkAsEditing *InsertionPoint
}

func selectNode(id ID) PostInsertionAction { return PostInsertionAction{Select: id} }

func markAsEditing(ip InsertionPoint) PostInsertionAction {
	return PostInsertionAction{MarkAsEditing: &ip}
}

// PostInsertionCursor decides where focus goes once node has been inserted
// into the tree g indexes. A new call or struct literal opens its first
// hole. Filling a hole moves on to the next hole when that one still holds
// a placeholder, so a whole argument list is completed without reopening
// the menu by hand.
func PostInsertionCursor(node CodeNode, g *Genie) PostInsertionAction {
	switch n := node.(type) {
	case *lang.FunctionCall:
		if len(n.Args) > 0 {
			return markAsEditing(ArgumentHole(n.Args[0].NodeID))
		}
		return selectNode(n.NodeID)
	case *lang.StructLiteral:
		if len(n.Fields) > 0 {
			return markAsEditing(StructFieldHole(n.Fields[0].NodeID))
		}
		return selectNode(n.NodeID)
	case *lang.Assignment:
		if ph, ok := n.Expr.(*lang.Placeholder); ok {
			return markAsEditing(Replace(ph.NodeID))
		}
	}

	parent, ok := g.FindParent(node.ID())
	if !ok {
		return selectNode(node.ID())
	}
	switch hole := parent.(type) {
	case *lang.Argument:
		if call, ok := g.parentCall(hole.NodeID); ok {
			if next := nextPlaceholderArg(call, hole.NodeID); next != nil {
				return markAsEditing(ArgumentHole(next.NodeID))
			}
		}
	case *lang.StructLiteralField:
		if gp, ok := g.FindParent(hole.NodeID); ok {
			if lit, ok := gp.(*lang.StructLiteral); ok {
				if next := nextPlaceholderField(lit, hole.NodeID); next != nil {
					return markAsEditing(StructFieldHole(next.NodeID))
				}
			}
		}
	}
	return selectNode(node.ID())
}

func nextPlaceholderArg(call *lang.FunctionCall, argID ID) *lang.Argument {
	i := slices.IndexFunc(call.Args, func(a *lang.Argument) bool { return a.NodeID == argID })
	if i < 0 || i+1 >= len(call.Args) {
		return nil
	}
	if _, ok := call.Args[i+1].Expr.(*lang.Placeholder); ok {
		return call.Args[i+1]
	}
	return nil
}

func nextPlaceholderField(lit *lang.StructLiteral, fieldID ID) *lang.StructLiteralField {
	i := slices.IndexFunc(lit.Fields, func(f *lang.StructLiteralField) bool { return f.NodeID == fieldID })
	if i < 0 || i+1 >= len(lit.Fields) {
		return nil
	}
	if _, ok := lit.Fields[i+1].Expr.(*lang.Placeholder); ok {
		return lit.Fields[i+1]
	}
	return nil
}

// IsInvariantViolation reports whether err means the engine asked for an
// edit that does not fit the tree.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
