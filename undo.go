package sapling

// UndoHistoryCell is one snapshot: a whole root and the selection that went
// with it. Roots are immutable, so a cell holds them by reference.
type UndoHistoryCell struct {
	Root   CodeNode
	Cursor ID
}

// UndoHistory is a linear undo log. Recording a new state discards
// anything that could have been redone.
type UndoHistory struct {
	cells []UndoHistoryCell
	index int
}

func NewUndoHistory() *UndoHistory {
	return &UndoHistory{}
}

// RecordPreviousState logs the state as it was before a command changes it.
func (h *UndoHistory) RecordPreviousState(root CodeNode, cursor ID) {
	h.cells = append(h.cells[:h.index], UndoHistoryCell{Root: root, Cursor: cursor})
	h.index = len(h.cells)
}

// Undo steps back one state. The current state is appended first when
// undoing from the newest entry, so Redo can come back to it. It returns
// false when there is nothing to undo.
func (h *UndoHistory) Undo(currentRoot CodeNode, cursor ID) (UndoHistoryCell, bool) {
	if h.index == 0 {
		return UndoHistoryCell{}, false
	}
	if h.index == len(h.cells) {
		h.cells = append(h.cells, UndoHistoryCell{Root: currentRoot, Cursor: cursor})
	}
	h.index--
	return h.cells[h.index], true
}

// Redo steps forward one state, or returns false at the newest one.
func (h *UndoHistory) Redo(currentRoot CodeNode, cursor ID) (UndoHistoryCell, bool) {
	if h.index+1 >= len(h.cells) {
		return UndoHistoryCell{}, false
	}
	h.index++
	return h.cells[h.index], true
}

// Discard steps back one state and forgets it, along with anything that
// could have been redone. It returns false when there is nothing recorded.
func (h *UndoHistory) Discard() (UndoHistoryCell, bool) {
	if h.index == 0 {
		return UndoHistoryCell{}, false
	}
	h.index--
	cell := h.cells[h.index]
	h.cells = h.cells[:h.index]
	return cell, true
}

// Len is the number of cells held, including a saved tip.
func (h *UndoHistory) Len() int { return len(h.cells) }

// CanUndo reports whether Undo would change anything.
func (h *UndoHistory) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether Redo would change anything.
func (h *UndoHistory) CanRedo() bool { return h.index+1 < len(h.cells) }
