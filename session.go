package sapling

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jward/sapling/internal/lang"
)

// Session is the editing state of one code document: its current root, the
// selected node, the open insertion point and the undo history. Each
// command runs to completion before the next; a Session is not safe for
// concurrent use.
type Session struct {
	genie    *Genie
	cat      Catalog
	selected ID
	editing  bool
	menu     *InsertCodeMenu
	leafEdit *InsertionPoint
	history  *UndoHistory
}

// NewSession starts editing root with nothing selected.
func NewSession(root CodeNode, cat Catalog) *Session {
	return &Session{
		genie:   NewGenie(root),
		cat:     cat,
		history: NewUndoHistory(),
	}
}

func (s *Session) Root() CodeNode            { return s.genie.Root() }
func (s *Session) Genie() *Genie             { return s.genie }
func (s *Session) Catalog() Catalog          { return s.cat }
func (s *Session) SelectedNodeID() ID        { return s.selected }
func (s *Session) IsEditing() bool           { return s.editing }
func (s *Session) Menu() *InsertCodeMenu     { return s.menu }
func (s *Session) History() *UndoHistory     { return s.history }
func (s *Session) Navigation() *Navigation   { return NewNavigation(s.genie) }
func (s *Session) replaceRoot(root CodeNode) { s.genie = NewGenie(root) }

// InsertionPoint is the point being edited, if any.
func (s *Session) InsertionPoint() (InsertionPoint, bool) {
	switch {
	case s.menu != nil:
		return s.menu.InsertionPoint(), true
	case s.leafEdit != nil:
		return *s.leafEdit, true
	}
	return InsertionPoint{}, false
}

// MenuOptions lists the open menu's options and the index of the selected
// one. Both are empty when no menu is open.
func (s *Session) MenuOptions() ([]InsertCodeMenuOption, int) {
	if s.menu == nil {
		return nil, -1
	}
	opts := s.menu.ListOptions(s.genie, s.cat)
	return opts, s.menu.SelectedPosition(len(opts))
}

// SelectNode moves the selection. NilID clears it.
func (s *Session) SelectNode(id ID) error {
	if id != NilID {
		if _, ok := s.genie.FindNode(id); !ok {
			return fmt.Errorf("select %s: %w", id, ErrNodeNotFound)
		}
	}
	s.selected = id
	return nil
}

func (s *Session) recordPreviousState() {
	s.history.RecordPreviousState(s.genie.Root(), s.selected)
}

// MarkAsEditing opens ip for editing. The state before editing is recorded
// so cancelling can restore it.
func (s *Session) MarkAsEditing(ip InsertionPoint) {
	s.recordPreviousState()
	s.menu = NewInsertCodeMenu(ip)
	s.leafEdit = nil
	if s.menu == nil {
		s.leafEdit = &ip
	}
	s.selected = ip.NodeIDToSelectWhenMarkingAsEditing()
	s.editing = true
}

// HideMenu stops editing and keeps whatever was done.
func (s *Session) HideMenu() {
	s.menu = nil
	s.leafEdit = nil
	s.editing = false
}

// InsertCode inserts node at ip as a single undoable command.
func (s *Session) InsertCode(node CodeNode, ip InsertionPoint) error {
	root, err := InsertCode(node, ip, s.genie)
	if err != nil {
		return s.fail(err)
	}
	s.recordPreviousState()
	s.applyInsertion(node, root)
	return nil
}

func (s *Session) applyInsertion(node, root CodeNode) {
	s.replaceRoot(root)
	action := PostInsertionCursor(node, s.genie)
	if action.MarkAsEditing != nil {
		s.MarkAsEditing(*action.MarkAsEditing)
		return
	}
	s.selected = action.Select
}

// ConfirmMenu inserts the selected option. With nothing to insert the edit
// is abandoned and the tree restored as if it had been cancelled.
func (s *Session) ConfirmMenu() error {
	if s.leafEdit != nil {
		s.HideMenu()
		return nil
	}
	if s.menu == nil {
		return ErrNotEditing
	}
	opt, ok := s.menu.SelectedOption(s.genie, s.cat)
	ip := s.menu.InsertionPoint()
	if !ok {
		s.abandonEdit()
		return nil
	}
	root, err := InsertCode(opt.Node, ip, s.genie)
	if err != nil {
		s.abandonEdit()
		return s.fail(err)
	}
	s.HideMenu()
	s.applyInsertion(opt.Node, root)
	return nil
}

// Cancel abandons the current edit, restoring the tree from before it.
func (s *Session) Cancel() {
	if s.menu == nil && s.leafEdit == nil {
		s.editing = false
		return
	}
	s.abandonEdit()
}

// abandonEdit closes the open edit and drops the state recorded when it
// began, so the edit leaves nothing behind to redo.
func (s *Session) abandonEdit() {
	s.HideMenu()
	cell, ok := s.history.Discard()
	if !ok {
		return
	}
	s.replaceRoot(cell.Root)
	s.selected = cell.Cursor
}

// Undo restores the previous state and closes any open edit. It reports
// false at the start of history.
func (s *Session) Undo() bool {
	cell, ok := s.history.Undo(s.genie.Root(), s.selected)
	if !ok {
		return false
	}
	s.HideMenu()
	s.replaceRoot(cell.Root)
	s.selected = cell.Cursor
	return true
}

// Redo re-applies an undone state and closes any open edit.
func (s *Session) Redo() bool {
	cell, ok := s.history.Redo(s.genie.Root(), s.selected)
	if !ok {
		return false
	}
	s.HideMenu()
	s.replaceRoot(cell.Root)
	s.selected = cell.Cursor
	return true
}

// DeleteSelectedCode removes the selected statement or list element. Other
// nodes are left alone and nothing is recorded.
func (s *Session) DeleteSelectedCode() error {
	if s.selected == NilID {
		return ErrNothingSelected
	}
	res, err := DeleteCode(s.selected, s.genie, s.selected)
	if err != nil {
		return s.fail(err)
	}
	if !res.Deleted {
		return nil
	}
	s.recordPreviousState()
	s.replaceRoot(res.Root)
	s.selected = res.Cursor
	return nil
}

func (s *Session) moveTo(id ID) {
	if id != NilID {
		s.selected = id
	}
}

func (s *Session) NavigateUp()      { s.moveTo(s.Navigation().NavigateUpFrom(s.selected)) }
func (s *Session) NavigateDown()    { s.moveTo(s.Navigation().NavigateDownFrom(s.selected)) }
func (s *Session) NavigateBack()    { s.moveTo(s.Navigation().NavigateBackFrom(s.selected)) }
func (s *Session) NavigateForward() { s.moveTo(s.Navigation().NavigateForwardFrom(s.selected)) }

// EnterReplaceForNode opens a menu that replaces id. A node sitting in a
// hole refills the hole.
func (s *Session) EnterReplaceForNode(id ID) error {
	parent, ok := s.genie.FindParent(id)
	if !ok {
		return fmt.Errorf("replace %s: %w", id, ErrInvalidInsertionPoint)
	}
	switch p := parent.(type) {
	case *lang.Argument:
		s.MarkAsEditing(ArgumentHole(p.NodeID))
	case *lang.StructLiteralField:
		s.MarkAsEditing(StructFieldHole(p.NodeID))
	default:
		s.MarkAsEditing(Replace(id))
	}
	return nil
}

// EnterWrapForNode opens a menu of code that can take id as an input.
func (s *Session) EnterWrapForNode(id ID) error {
	if _, ok := s.genie.FindParent(id); !ok {
		return fmt.Errorf("wrap %s: %w", id, ErrInvalidInsertionPoint)
	}
	s.MarkAsEditing(Wrap(id))
	return nil
}

// EditSelected starts an in-place edit of the selected leaf.
func (s *Session) EditSelected() error {
	if s.selected == NilID {
		return ErrNothingSelected
	}
	s.MarkAsEditing(Editing(s.selected))
	return nil
}

// AppendInSelected opens a menu adding an element to the selected list, or
// after the selected list element.
func (s *Session) AppendInSelected() error {
	n, ok := s.genie.FindNode(s.selected)
	if !ok {
		return ErrNothingSelected
	}
	if list, ok := n.(*lang.ListLiteral); ok {
		s.MarkAsEditing(ListLiteralElement(list.NodeID, len(list.Elements)))
		return nil
	}
	parent, ok := s.genie.FindParent(n.ID())
	if !ok {
		return nil
	}
	if list, ok := parent.(*lang.ListLiteral); ok {
		pos, _ := list.Position(n.ID())
		s.MarkAsEditing(ListLiteralElement(list.NodeID, pos+1))
	}
	return nil
}

// InsertLine opens a menu for a new statement below (or, with above, above)
// the selected one. With nothing selected the statement goes at the top of
// the document.
func (s *Session) InsertLine(above bool) error {
	if _, ok := s.genie.FindNode(s.selected); !ok {
		root, isBlock := s.genie.Root().(*lang.Block)
		if !isBlock {
			return fmt.Errorf("insert line: root is a %s: %w", s.genie.Root().Kind(), ErrInvalidInsertionPoint)
		}
		s.MarkAsEditing(BeginningOfBlock(root.NodeID))
		return nil
	}
	stmt, ok := s.genie.FindExpressionInsideBlockThatContains(s.selected)
	if !ok {
		s.HideMenu()
		return nil
	}
	if above {
		s.MarkAsEditing(Before(stmt))
	} else {
		s.MarkAsEditing(After(stmt))
	}
	return nil
}

// SetSearch updates the open menu's search text.
func (s *Session) SetSearch(input string) error {
	if s.menu == nil {
		return ErrNotEditing
	}
	s.menu.SetSearch(input)
	return nil
}

func (s *Session) SelectNextOption() error {
	if s.menu == nil {
		return ErrNotEditing
	}
	s.menu.SelectNext()
	return nil
}

func (s *Session) SelectPrevOption() error {
	if s.menu == nil {
		return ErrNotEditing
	}
	s.menu.SelectPrev()
	return nil
}

// UpdateEditedLeaf rewrites the leaf under an in-place edit: the text of a
// string literal, the value of a number literal or the name of an
// assignment. The edit as a whole was recorded when it began, so individual
// updates are not.
func (s *Session) UpdateEditedLeaf(text string) error {
	if s.leafEdit == nil {
		return ErrNotEditing
	}
	n, ok := s.genie.FindNode(s.leafEdit.ID)
	if !ok {
		return s.fail(fmt.Errorf("%w: %w: %s", ErrInvariantViolation, ErrNodeNotFound, s.leafEdit.ID))
	}
	var updated CodeNode
	switch leaf := n.(type) {
	case *lang.StringLiteral:
		updated = &lang.StringLiteral{NodeID: leaf.NodeID, Value: text}
	case *lang.NumberLiteral:
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return fmt.Errorf("edit number: %w", err)
		}
		updated = &lang.NumberLiteral{NodeID: leaf.NodeID, Value: v}
	case *lang.Assignment:
		name := strings.TrimSpace(text)
		if name == "" {
			return fmt.Errorf("edit assignment: empty name")
		}
		updated = &lang.Assignment{NodeID: leaf.NodeID, Name: name, Expr: leaf.Expr}
	default:
		return fmt.Errorf("edit %s: %w", n.Kind(), ErrUnsupportedInsertion)
	}
	root, err := lang.SwapNode(s.genie.Root(), updated.ID(), updated)
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrInvariantViolation, err))
	}
	s.replaceRoot(root)
	return nil
}

// ExtractIntoVariable moves the expression id into a new assignment placed
// before its statement and leaves a reference to that assignment in its
// place. The new assignment is selected.
func (s *Session) ExtractIntoVariable(id ID) error {
	n, ok := s.genie.FindNode(id)
	if !ok {
		return fmt.Errorf("extract %s: %w", id, ErrNodeNotFound)
	}
	switch n.(type) {
	case *lang.Block, *lang.Argument, *lang.StructLiteralField, *lang.FunctionReference, *lang.Assignment:
		return fmt.Errorf("extract %s: %w", n.Kind(), ErrUnsupportedInsertion)
	}
	stmt, ok := s.genie.FindExpressionInsideBlockThatContains(id)
	if !ok || stmt == id {
		return fmt.Errorf("extract %s: not inside a statement: %w", n.Kind(), ErrUnsupportedInsertion)
	}

	assignment := lang.NewAssignment(s.freshName(stmt), n)
	withRef, err := lang.SwapNode(s.genie.Root(), id, lang.NewVariableReference(assignment.NodeID))
	if err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrInvariantViolation, err))
	}
	root, err := InsertCode(assignment, Before(stmt), NewGenie(withRef))
	if err != nil {
		return s.fail(err)
	}
	s.recordPreviousState()
	s.replaceRoot(root)
	s.selected = assignment.NodeID
	return nil
}

// freshName picks a variable name not already visible at stmt.
func (s *Session) freshName(stmt ID) string {
	taken := make(map[string]bool)
	for v := range FindAllLocalsPreceding(SearchPosition{BeforeCodeID: stmt}, s.genie, s.cat) {
		taken[v.Name] = true
	}
	name := "value"
	for i := 2; taken[name]; i++ {
		name = "value" + strconv.Itoa(i)
	}
	return name
}

// SelectCurrentLine selects the statement holding the selection.
func (s *Session) SelectCurrentLine() error {
	if s.selected == NilID {
		return ErrNothingSelected
	}
	stmt, ok := s.genie.FindExpressionInsideBlockThatContains(s.selected)
	if !ok {
		return nil
	}
	s.selected = stmt
	return nil
}

// fail logs an engine error. The session state is whatever it was before
// the command.
func (s *Session) fail(err error) error {
	if IsInvariantViolation(err) {
		log.Printf("warning: %v", err)
	}
	return err
}
