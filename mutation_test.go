package sapling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
)

func TestInsertCode_CapitalizeAfterAssignment(t *testing.T) {
	cat := newTestCatalog(t)
	assign := lang.NewAssignment("x", lang.NewStringLiteral("hi"))
	root := lang.NewBlock(assign)
	g := NewGenie(root)

	capitalize := call(t, cat, catalog.CapitalizeID, lang.NewVariableReference(assign.NodeID))
	newRoot, err := InsertCode(capitalize, After(assign.NodeID), g)
	require.NoError(t, err)

	stmts := statements(t, newRoot)
	require.Len(t, stmts, 2)
	got, ok := stmts[1].(*lang.FunctionCall)
	require.True(t, ok)
	require.Len(t, got.Args, 1)
	ref, ok := got.Args[0].Expr.(*lang.VariableReference)
	require.True(t, ok)
	assert.Equal(t, assign.NodeID, ref.AssignmentID)

	assert.Len(t, root.Statements, 1, "the original tree is unchanged")
}

func TestInsertCode_BlockPositions(t *testing.T) {
	a := lang.NewStringLiteral("a")
	b := lang.NewStringLiteral("b")
	root := lang.NewBlock(a, b)
	g := NewGenie(root)

	tests := []struct {
		name string
		ip   InsertionPoint
		want int
	}{
		{"beginning of block", BeginningOfBlock(root.NodeID), 0},
		{"before first", Before(a.NodeID), 0},
		{"after first", After(a.NodeID), 1},
		{"before last", Before(b.NodeID), 1},
		{"after last", After(b.NodeID), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := lang.NewNumberLiteral(7)
			newRoot, err := InsertCode(node, tt.ip, g)
			require.NoError(t, err)
			stmts := statements(t, newRoot)
			require.Len(t, stmts, 3)
			assert.Equal(t, node.NodeID, stmts[tt.want].ID())
		})
	}
}

func TestInsertCode_FillsHoles(t *testing.T) {
	cat := newTestCatalog(t)
	repeat := lang.NewFunctionCallWithPlaceholderArgs(cat.Repeat.ID, cat.Repeat.Args)
	point := lang.NewStructLiteralWithPlaceholders(cat.Point)
	list := lang.NewListLiteral(lang.NumberType(), lang.NewNumberLiteral(1), lang.NewNumberLiteral(3))
	g := NewGenie(lang.NewBlock(repeat, point, list))

	root, err := InsertCode(lang.NewNumberLiteral(2), ArgumentHole(repeat.Args[1].NodeID), g)
	require.NoError(t, err)
	filled := statements(t, root)[0].(*lang.FunctionCall)
	assert.Equal(t, int64(2), filled.Args[1].Expr.(*lang.NumberLiteral).Value)
	assert.Equal(t, repeat.Args[1].NodeID, filled.Args[1].NodeID, "the hole keeps its id")

	root, err = InsertCode(lang.NewNumberLiteral(5), StructFieldHole(point.Fields[0].NodeID), g)
	require.NoError(t, err)
	lit := statements(t, root)[1].(*lang.StructLiteral)
	assert.Equal(t, int64(5), lit.Fields[0].Expr.(*lang.NumberLiteral).Value)

	root, err = InsertCode(lang.NewNumberLiteral(2), ListLiteralElement(list.NodeID, 1), g)
	require.NoError(t, err)
	elems := statements(t, root)[2].(*lang.ListLiteral).Elements
	require.Len(t, elems, 3)
	assert.Equal(t, int64(2), elems[1].(*lang.NumberLiteral).Value)

	root, err = InsertCode(lang.NewNumberLiteral(4), ListLiteralElement(list.NodeID, 2), g)
	require.NoError(t, err)
	elems = statements(t, root)[2].(*lang.ListLiteral).Elements
	assert.Equal(t, int64(4), elems[2].(*lang.NumberLiteral).Value)
}

func TestInsertCode_ReplaceAndWrap(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	g := NewGenie(tr.root)

	replacement := lang.NewStringLiteral("bye")
	root, err := InsertCode(replacement, Replace(tr.lit.NodeID), g)
	require.NoError(t, err)
	assert.Equal(t, "bye", statements(t, root)[0].(*lang.Assignment).Expr.(*lang.StringLiteral).Value)

	wrapped := call(t, cat, catalog.CapitalizeID, tr.lit)
	root, err = InsertCode(wrapped, Wrap(tr.lit.NodeID), g)
	require.NoError(t, err)
	inner := statements(t, root)[0].(*lang.Assignment).Expr.(*lang.FunctionCall)
	assert.Equal(t, tr.lit.NodeID, inner.Args[0].Expr.ID())
}

func TestInsertCode_InvalidPoints(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	list := lang.NewListLiteral(lang.NumberType())
	g := NewGenie(lang.NewBlock(tr.assign, tr.print, list))

	tests := []struct {
		name string
		ip   InsertionPoint
	}{
		{"before a non-statement", Before(tr.lit.NodeID)},
		{"after the root", After(g.Root().ID())},
		{"argument hole on a literal", ArgumentHole(tr.lit.NodeID)},
		{"struct field on an argument", StructFieldHole(tr.print.Args[0].NodeID)},
		{"list position out of range", ListLiteralElement(list.NodeID, 1)},
		{"negative list position", ListLiteralElement(list.NodeID, -1)},
		{"block beginning on a literal", BeginningOfBlock(tr.lit.NodeID)},
		{"missing node", ArgumentHole(lang.NewID())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InsertCode(lang.NewNumberLiteral(1), tt.ip, g)
			require.Error(t, err)
			assert.True(t, IsInvariantViolation(err), "got %v", err)
		})
	}
}

func TestInsertCode_EditingInsertsNothing(t *testing.T) {
	lit := lang.NewStringLiteral("a")
	g := NewGenie(lang.NewBlock(lit))
	_, err := InsertCode(lang.NewNumberLiteral(1), Editing(lit.NodeID), g)
	assert.ErrorIs(t, err, ErrUnsupportedInsertion)
	assert.False(t, IsInvariantViolation(err))
}

func TestInsertCode_RejectsDuplicateIDs(t *testing.T) {
	lit := lang.NewStringLiteral("a")
	g := NewGenie(lang.NewBlock(lit))
	_, err := InsertCode(lit, After(lit.NodeID), g)
	require.Error(t, err)
	assert.True(t, IsInvariantViolation(err))
}

func TestDeleteCode_UndoesInsertCode(t *testing.T) {
	list := lang.NewListLiteral(lang.NumberType(), lang.NewNumberLiteral(1), lang.NewNumberLiteral(3))
	assign := lang.NewAssignment("xs", list)
	last := lang.NewStringLiteral("b")
	root := lang.NewBlock(assign, last)
	want := lang.Clone(root)
	g := NewGenie(root)

	tests := []struct {
		name string
		ip   InsertionPoint
		node CodeNode
	}{
		{"beginning of block", BeginningOfBlock(root.NodeID), lang.NewStringLiteral("new")},
		{"before", Before(last.NodeID), lang.NewStringLiteral("new")},
		{"after first", After(assign.NodeID), lang.NewNullLiteral()},
		{"after last", After(last.NodeID), lang.NewNumberLiteral(9)},
		{"list start", ListLiteralElement(list.NodeID, 0), lang.NewNumberLiteral(0)},
		{"list middle", ListLiteralElement(list.NodeID, 1), lang.NewNumberLiteral(2)},
		{"list end", ListLiteralElement(list.NodeID, 2), lang.NewNumberLiteral(4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inserted, err := InsertCode(tt.node, tt.ip, g)
			require.NoError(t, err)
			require.NotEqual(t, want, inserted)

			res, err := DeleteCode(tt.node.ID(), NewGenie(inserted), tt.node.ID())
			require.NoError(t, err)
			assert.True(t, res.Deleted)
			assert.Equal(t, want, res.Root)
		})
	}
	assert.Equal(t, want, CodeNode(root), "the starting tree is never modified")
}

func TestDeleteCode_OnlyStatement(t *testing.T) {
	only := lang.NewStringLiteral("a")
	g := NewGenie(lang.NewBlock(only))

	res, err := DeleteCode(only.NodeID, g, only.NodeID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, NilID, res.Cursor)
	assert.Empty(t, statements(t, res.Root))
}

func TestDeleteCode_CursorMovesToNeighbor(t *testing.T) {
	a, b, c := lang.NewStringLiteral("a"), lang.NewStringLiteral("b"), lang.NewStringLiteral("c")
	g := NewGenie(lang.NewBlock(a, b, c))

	res, err := DeleteCode(b.NodeID, g, b.NodeID)
	require.NoError(t, err)
	assert.Equal(t, c.NodeID, res.Cursor, "the next statement takes the position")
	assert.Len(t, statements(t, res.Root), 2)

	res, err = DeleteCode(c.NodeID, g, c.NodeID)
	require.NoError(t, err)
	assert.Equal(t, b.NodeID, res.Cursor, "deleting the last selects the one before")
}

func TestDeleteCode_ListElements(t *testing.T) {
	one := lang.NewNumberLiteral(1)
	list := lang.NewListLiteral(lang.NumberType(), one)
	g := NewGenie(lang.NewBlock(list))

	res, err := DeleteCode(one.NodeID, g, one.NodeID)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Equal(t, list.NodeID, res.Cursor, "an emptied list is selected")
	assert.Empty(t, statements(t, res.Root)[0].(*lang.ListLiteral).Elements)
}

func TestDeleteCode_HolesAreNotDeleted(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	g := NewGenie(tr.root)

	res, err := DeleteCode(tr.ref.NodeID, g, tr.ref.NodeID)
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.Same(t, tr.root, res.Root)
	assert.Equal(t, tr.ref.NodeID, res.Cursor)

	res, err = DeleteCode(tr.root.NodeID, g, NilID)
	require.NoError(t, err)
	assert.False(t, res.Deleted, "the root has no parent")

	_, err = DeleteCode(lang.NewID(), g, NilID)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestPostInsertionCursor(t *testing.T) {
	cat := newTestCatalog(t)

	t.Run("call opens its first argument", func(t *testing.T) {
		repeat := lang.NewFunctionCallWithPlaceholderArgs(cat.Repeat.ID, cat.Repeat.Args)
		g := NewGenie(lang.NewBlock(repeat))
		action := PostInsertionCursor(repeat, g)
		require.NotNil(t, action.MarkAsEditing)
		assert.Equal(t, ArgumentHole(repeat.Args[0].NodeID), *action.MarkAsEditing)
	})

	t.Run("call without arguments is selected", func(t *testing.T) {
		noArgs := lang.NewFunctionCall(lang.NewID())
		g := NewGenie(lang.NewBlock(noArgs))
		action := PostInsertionCursor(noArgs, g)
		assert.Nil(t, action.MarkAsEditing)
		assert.Equal(t, noArgs.NodeID, action.Select)
	})

	t.Run("struct literal opens its first field", func(t *testing.T) {
		point := lang.NewStructLiteralWithPlaceholders(cat.Point)
		g := NewGenie(lang.NewBlock(point))
		action := PostInsertionCursor(point, g)
		require.NotNil(t, action.MarkAsEditing)
		assert.Equal(t, StructFieldHole(point.Fields[0].NodeID), *action.MarkAsEditing)
	})

	t.Run("new variable opens its value", func(t *testing.T) {
		assign := lang.NewAssignment("x", lang.NewPlaceholder("x", lang.AnyType()))
		g := NewGenie(lang.NewBlock(assign))
		action := PostInsertionCursor(assign, g)
		require.NotNil(t, action.MarkAsEditing)
		assert.Equal(t, Replace(assign.Expr.ID()), *action.MarkAsEditing)
	})

	t.Run("filled argument moves to the next open one", func(t *testing.T) {
		repeat := lang.NewFunctionCallWithPlaceholderArgs(cat.Repeat.ID, cat.Repeat.Args)
		text := lang.NewStringLiteral("ha")
		repeat.Args[0].Expr = text
		g := NewGenie(lang.NewBlock(repeat))
		action := PostInsertionCursor(text, g)
		require.NotNil(t, action.MarkAsEditing)
		assert.Equal(t, ArgumentHole(repeat.Args[1].NodeID), *action.MarkAsEditing)
	})

	t.Run("filled argument before a filled one is selected", func(t *testing.T) {
		text := lang.NewStringLiteral("ha")
		repeat := call(t, cat, cat.Repeat.ID, text, lang.NewNumberLiteral(3))
		g := NewGenie(lang.NewBlock(repeat))
		action := PostInsertionCursor(text, g)
		assert.Nil(t, action.MarkAsEditing)
		assert.Equal(t, text.NodeID, action.Select)
	})

	t.Run("filled field moves to the next open one", func(t *testing.T) {
		point := lang.NewStructLiteralWithPlaceholders(cat.Point)
		x := lang.NewNumberLiteral(1)
		point.Fields[0].Expr = x
		g := NewGenie(lang.NewBlock(point))
		action := PostInsertionCursor(x, g)
		require.NotNil(t, action.MarkAsEditing)
		assert.Equal(t, StructFieldHole(point.Fields[1].NodeID), *action.MarkAsEditing)
	})

	t.Run("statement is selected", func(t *testing.T) {
		lit := lang.NewStringLiteral("a")
		g := NewGenie(lang.NewBlock(lit))
		assert.Equal(t, lit.NodeID, PostInsertionCursor(lit, g).Select)
	})
}
