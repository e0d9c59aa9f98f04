package sapling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
)

func TestSession_InsertLineWithNothingSelected(t *testing.T) {
	cat := newTestCatalog(t)
	s := NewSession(lang.NewScript(), cat)

	_, ok := s.InsertionPoint()
	assert.False(t, ok)
	opts, selected := s.MenuOptions()
	assert.Nil(t, opts)
	assert.Equal(t, -1, selected)

	require.NoError(t, s.InsertLine(false))
	assert.True(t, s.IsEditing())
	ip, ok := s.InsertionPoint()
	require.True(t, ok)
	assert.Equal(t, BeginningOfBlock(s.Root().ID()), ip)
	assert.Equal(t, NilID, s.SelectedNodeID())
}

func TestSession_InsertCallThenFillArgument(t *testing.T) {
	cat := newTestCatalog(t)
	s := NewSession(lang.NewScript(), cat)

	require.NoError(t, s.InsertLine(false))
	require.NoError(t, s.SetSearch("Print"))
	require.NoError(t, s.ConfirmMenu())

	stmts := statements(t, s.Root())
	require.Len(t, stmts, 2)
	printCall := stmts[0].(*lang.FunctionCall)
	ip, ok := s.InsertionPoint()
	require.True(t, ok, "the new call's argument is opened")
	assert.Equal(t, ArgumentHole(printCall.Args[0].NodeID), ip)
	assert.Equal(t, printCall.Args[0].NodeID, s.SelectedNodeID())

	require.NoError(t, s.SetSearch("hi"))
	opts, selected := s.MenuOptions()
	require.NotEmpty(t, opts)
	assert.Equal(t, `"hi"`, opts[selected].Label)
	require.NoError(t, s.ConfirmMenu())

	assert.False(t, s.IsEditing())
	printCall = statements(t, s.Root())[0].(*lang.FunctionCall)
	lit := printCall.Args[0].Expr.(*lang.StringLiteral)
	assert.Equal(t, "hi", lit.Value)
	assert.Equal(t, lit.NodeID, s.SelectedNodeID())
}

func TestSession_InsertLineBelowAndAbove(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)
	require.NoError(t, s.SelectNode(tr.ref.NodeID))

	require.NoError(t, s.InsertLine(false))
	ip, _ := s.InsertionPoint()
	assert.Equal(t, After(tr.print.NodeID), ip)
	s.Cancel()

	require.NoError(t, s.InsertLine(true))
	ip, _ = s.InsertionPoint()
	assert.Equal(t, Before(tr.print.NodeID), ip)
}

func TestSession_CancelRestoresTree(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)
	require.NoError(t, s.SelectNode(tr.lit.NodeID))

	require.NoError(t, s.InsertLine(false))
	require.NoError(t, s.SetSearch("Print"))
	require.NoError(t, s.ConfirmMenu())
	assert.True(t, s.IsEditing(), "editing the new call's argument")

	s.Cancel()
	assert.False(t, s.IsEditing())
	assert.Len(t, statements(t, s.Root()), 4, "the call stays; only its argument edit is abandoned")

	require.NoError(t, s.InsertLine(false))
	s.Cancel()
	assert.Len(t, statements(t, s.Root()), 4)

	s.Cancel()
	assert.Len(t, statements(t, s.Root()), 4, "cancel without an edit does nothing")
}

func TestSession_ConfirmWithoutOptionsAbandonsEdit(t *testing.T) {
	cat := newTestCatalog(t)
	root := lang.NewScript()
	s := NewSession(root, cat)

	require.NoError(t, s.InsertLine(false))
	require.NoError(t, s.SetSearch("zzzz"))
	require.NoError(t, s.ConfirmMenu())

	assert.False(t, s.IsEditing())
	assert.Same(t, root, s.Root())
}

func TestSession_MenuCommandsNeedAnOpenMenu(t *testing.T) {
	cat := newTestCatalog(t)
	s := NewSession(lang.NewScript(), cat)

	assert.ErrorIs(t, s.SetSearch("x"), ErrNotEditing)
	assert.ErrorIs(t, s.SelectNextOption(), ErrNotEditing)
	assert.ErrorIs(t, s.SelectPrevOption(), ErrNotEditing)
	assert.ErrorIs(t, s.ConfirmMenu(), ErrNotEditing)
	assert.ErrorIs(t, s.UpdateEditedLeaf("x"), ErrNotEditing)
	assert.ErrorIs(t, s.DeleteSelectedCode(), ErrNothingSelected)
	assert.ErrorIs(t, s.EditSelected(), ErrNothingSelected)
}

func TestSession_EditLeafInPlace(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)
	require.NoError(t, s.SelectNode(tr.lit.NodeID))

	require.NoError(t, s.EditSelected())
	assert.Nil(t, s.Menu(), "leaf edits have no menu")
	require.NoError(t, s.UpdateEditedLeaf("b"))
	require.NoError(t, s.UpdateEditedLeaf("bye"))
	require.NoError(t, s.ConfirmMenu())

	assign := statements(t, s.Root())[0].(*lang.Assignment)
	assert.Equal(t, "bye", assign.Expr.(*lang.StringLiteral).Value)
	assert.Equal(t, tr.lit.NodeID, assign.Expr.ID())

	require.True(t, s.Undo())
	assert.Same(t, tr.root, s.Root(), "the whole edit undoes in one step")
}

func TestSession_EditAssignmentNameAndNumber(t *testing.T) {
	cat := newTestCatalog(t)
	num := lang.NewNumberLiteral(1)
	assign := lang.NewAssignment("n", num)
	s := NewSession(lang.NewBlock(assign), cat)

	require.NoError(t, s.SelectNode(assign.NodeID))
	require.NoError(t, s.EditSelected())
	require.NoError(t, s.UpdateEditedLeaf(" total "))
	assert.Error(t, s.UpdateEditedLeaf(""))
	require.NoError(t, s.ConfirmMenu())

	require.NoError(t, s.SelectNode(num.NodeID))
	require.NoError(t, s.EditSelected())
	assert.Error(t, s.UpdateEditedLeaf("ten"))
	require.NoError(t, s.UpdateEditedLeaf("10"))
	require.NoError(t, s.ConfirmMenu())

	got := statements(t, s.Root())[0].(*lang.Assignment)
	assert.Equal(t, "total", got.Name)
	assert.Equal(t, int64(10), got.Expr.(*lang.NumberLiteral).Value)
}

func TestSession_ExtractIntoVariable(t *testing.T) {
	cat := newTestCatalog(t)
	lit := lang.NewStringLiteral("hi")
	printCall := call(t, cat, catalog.PrintID, lit)
	s := NewSession(lang.NewBlock(printCall), cat)

	require.NoError(t, s.ExtractIntoVariable(lit.NodeID))
	stmts := statements(t, s.Root())
	require.Len(t, stmts, 2)
	assign := stmts[0].(*lang.Assignment)
	assert.Equal(t, "value", assign.Name)
	assert.Equal(t, lit.NodeID, assign.Expr.ID())
	assert.Equal(t, assign.NodeID, s.SelectedNodeID())

	ref := stmts[1].(*lang.FunctionCall).Args[0].Expr.(*lang.VariableReference)
	assert.Equal(t, assign.NodeID, ref.AssignmentID)

	require.NoError(t, s.ExtractIntoVariable(ref.NodeID))
	second := statements(t, s.Root())[1].(*lang.Assignment)
	assert.Equal(t, "value2", second.Name, "names already in scope are skipped")

	err := s.ExtractIntoVariable(assign.NodeID)
	assert.ErrorIs(t, err, ErrUnsupportedInsertion)
	assert.ErrorIs(t, s.ExtractIntoVariable(lang.NewID()), ErrNodeNotFound)
}

func TestSession_SelectCurrentLineAndAppend(t *testing.T) {
	cat := newTestCatalog(t)
	one := lang.NewNumberLiteral(1)
	list := lang.NewListLiteral(lang.NumberType(), one)
	assign := lang.NewAssignment("nums", list)
	s := NewSession(lang.NewBlock(assign), cat)

	require.NoError(t, s.SelectNode(one.NodeID))
	require.NoError(t, s.AppendInSelected())
	ip, _ := s.InsertionPoint()
	assert.Equal(t, ListLiteralElement(list.NodeID, 1), ip, "after the selected element")
	s.Cancel()

	require.NoError(t, s.SelectNode(list.NodeID))
	require.NoError(t, s.AppendInSelected())
	ip, _ = s.InsertionPoint()
	assert.Equal(t, ListLiteralElement(list.NodeID, 1), ip, "at the end of the list")
	require.NoError(t, s.SetSearch("2"))
	require.NoError(t, s.ConfirmMenu())
	got := statements(t, s.Root())[0].(*lang.Assignment).Expr.(*lang.ListLiteral)
	require.Len(t, got.Elements, 2)

	require.NoError(t, s.SelectNode(got.Elements[1].ID()))
	require.NoError(t, s.SelectCurrentLine())
	assert.Equal(t, assign.NodeID, s.SelectedNodeID())
}

func TestSession_ReplaceRefillsHole(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)

	require.NoError(t, s.EnterReplaceForNode(tr.ref.NodeID))
	ip, _ := s.InsertionPoint()
	assert.Equal(t, ArgumentHole(tr.print.Args[0].NodeID), ip)
	s.Cancel()

	require.NoError(t, s.EnterReplaceForNode(tr.lit.NodeID))
	ip, _ = s.InsertionPoint()
	assert.Equal(t, Replace(tr.lit.NodeID), ip)
	s.Cancel()

	assert.ErrorIs(t, s.EnterReplaceForNode(tr.root.NodeID), ErrInvalidInsertionPoint)
	assert.ErrorIs(t, s.EnterWrapForNode(tr.root.NodeID), ErrInvalidInsertionPoint)
}

func TestSession_WrapSelection(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)

	require.NoError(t, s.EnterWrapForNode(tr.ref.NodeID))
	require.NoError(t, s.SetSearch("Capitalize"))
	require.NoError(t, s.ConfirmMenu())

	outer := statements(t, s.Root())[1].(*lang.FunctionCall)
	inner := outer.Args[0].Expr.(*lang.FunctionCall)
	assert.Equal(t, catalog.CapitalizeID, inner.Reference.FunctionID)
	assert.Equal(t, tr.ref.NodeID, inner.Args[0].Expr.ID())
}

func TestSession_NavigationKeepsSelectionAtEdges(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)

	s.NavigateDown()
	assert.Equal(t, tr.assign.NodeID, s.SelectedNodeID())
	s.NavigateUp()
	assert.Equal(t, tr.assign.NodeID, s.SelectedNodeID(), "nothing above, selection stays")
	s.NavigateForward()
	assert.Equal(t, tr.lit.NodeID, s.SelectedNodeID())
	s.NavigateBack()
	assert.Equal(t, tr.assign.NodeID, s.SelectedNodeID())

	assert.ErrorIs(t, s.SelectNode(lang.NewID()), ErrNodeNotFound)
	require.NoError(t, s.SelectNode(NilID))
	assert.Equal(t, NilID, s.SelectedNodeID())
}

func TestSession_InvariantViolationLeavesState(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)

	err := s.InsertCode(lang.NewNumberLiteral(1), Before(tr.lit.NodeID))
	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))
	assert.Same(t, tr.root, s.Root())
	assert.False(t, s.History().CanUndo(), "nothing was recorded")
}

func TestSession_UndoClosesOpenMenu(t *testing.T) {
	cat := newTestCatalog(t)
	s := NewSession(lang.NewScript(), cat)

	second := lang.NewStringLiteral("second")
	require.NoError(t, s.InsertCode(second, BeginningOfBlock(s.Root().ID())))
	kept := s.Root()
	require.NoError(t, s.SelectNode(second.NodeID))

	require.NoError(t, s.InsertLine(false))
	require.NoError(t, s.SetSearch("Capitalize"))
	require.NoError(t, s.ConfirmMenu())
	require.NotNil(t, s.Menu(), "the call's argument is open")

	require.True(t, s.Undo())
	assert.False(t, s.IsEditing())
	assert.Nil(t, s.Menu())
	require.True(t, s.Undo())
	assert.Same(t, kept, s.Root())

	assert.ErrorIs(t, s.ConfirmMenu(), ErrNotEditing)
	assert.Same(t, kept, s.Root(), "confirming afterwards undoes nothing more")
	assert.Len(t, statements(t, s.Root()), 2)

	require.True(t, s.Redo())
	assert.False(t, s.IsEditing())
	assert.Len(t, statements(t, s.Root()), 3)
}

func TestSession_CancelLeavesNothingToRedo(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	s := NewSession(tr.root, cat)
	require.NoError(t, s.SelectNode(tr.lit.NodeID))

	require.NoError(t, s.InsertLine(false))
	s.Cancel()
	assert.Same(t, tr.root, s.Root())
	assert.Equal(t, tr.lit.NodeID, s.SelectedNodeID())
	assert.False(t, s.History().CanRedo())
	assert.False(t, s.History().CanUndo())
	assert.False(t, s.Redo())

	require.NoError(t, s.EditSelected())
	require.NoError(t, s.UpdateEditedLeaf("changed"))
	s.Cancel()
	assert.Same(t, tr.root, s.Root())
	assert.Equal(t, 0, s.History().Len())
}
