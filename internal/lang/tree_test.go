package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleTree builds:
//
//	Block
//	  Assignment x = "hi"
//	  Conditional(Placeholder) { Placeholder }
//	  FunctionCall(ref, Argument(VariableReference x))
func sampleTree(t *testing.T) (*Block, *Assignment, *Conditional, *FunctionCall) {
	t.Helper()
	assign := NewAssignment("x", NewStringLiteral("hi"))
	cond := NewConditional(NewPlaceholder("cond", BooleanType()))
	call := NewFunctionCall(BuiltinID("Capitalize"),
		NewArgument(NewID(), NewVariableReference(assign.NodeID)))
	return NewBlock(assign, cond, call), assign, cond, call
}

func TestDFS_PreOrder(t *testing.T) {
	t.Parallel()
	root, assign, cond, call := sampleTree(t)

	nodes := DFS(root)
	require.Len(t, nodes, 11)
	assert.Equal(t, root.NodeID, nodes[0].ID())
	assert.Equal(t, assign.NodeID, nodes[1].ID())
	assert.Equal(t, KindStringLiteral, nodes[2].Kind())
	assert.Equal(t, cond.NodeID, nodes[3].ID())
	assert.Equal(t, call.NodeID, nodes[7].ID())
	assert.Equal(t, call.Reference.NodeID, nodes[8].ID())
	assert.Equal(t, CountNodes(root), len(nodes))
}

func TestFindNodeAndParent(t *testing.T) {
	t.Parallel()
	root, assign, _, call := sampleTree(t)

	n, ok := FindNode(root, assign.Expr.ID())
	require.True(t, ok)
	assert.Equal(t, KindStringLiteral, n.Kind())

	p, ok := FindParent(root, assign.Expr.ID())
	require.True(t, ok)
	assert.Equal(t, assign.NodeID, p.ID())

	p, ok = FindParent(root, call.Args[0].NodeID)
	require.True(t, ok)
	assert.Equal(t, call.NodeID, p.ID())

	_, ok = FindParent(root, root.NodeID)
	assert.False(t, ok)

	_, ok = FindNode(root, NewID())
	assert.False(t, ok)
}

func TestSwapNode_CopyOnWrite(t *testing.T) {
	t.Parallel()
	root, assign, cond, _ := sampleTree(t)
	replacement := NewStringLiteral("bye")
	replacement.NodeID = assign.Expr.ID()

	out, err := SwapNode(root, assign.Expr.ID(), replacement)
	require.NoError(t, err)

	// Input untouched.
	assert.Equal(t, "hi", assign.Expr.(*StringLiteral).Value)

	newAssign := out.(*Block).Statements[0].(*Assignment)
	assert.Equal(t, "bye", newAssign.Expr.(*StringLiteral).Value)
	assert.NotSame(t, assign, newAssign)
	// Off-path subtrees are shared.
	assert.Same(t, cond, out.(*Block).Statements[1])
}

func TestSwapNode_RejectsShapeMismatch(t *testing.T) {
	t.Parallel()
	root, _, cond, _ := sampleTree(t)

	_, err := SwapNode(root, cond.TrueBranch.NodeID, NewStringLiteral("not a block"))
	require.Error(t, err)

	_, err = SwapNode(root, NewID(), NewNullLiteral())
	require.ErrorIs(t, err, ErrNotInTree)
}

func TestSwapNode_Root(t *testing.T) {
	t.Parallel()
	root, _, _, _ := sampleTree(t)
	other := NewBlock()

	out, err := SwapNode(root, root.NodeID, other)
	require.NoError(t, err)
	assert.Same(t, other, out)
}

func TestClone_DeepAndEqual(t *testing.T) {
	t.Parallel()
	root, assign, _, _ := sampleTree(t)

	cloned := Clone(root).(*Block)
	assert.Equal(t, root, cloned)
	assert.NotSame(t, assign, cloned.Statements[0])
}

func TestValidateIDs(t *testing.T) {
	t.Parallel()
	root, _, _, _ := sampleTree(t)
	require.NoError(t, ValidateIDs(root))

	dup := NewStringLiteral("dup")
	dup.NodeID = root.Statements[0].ID()
	bad := NewBlock(root.Statements[0], dup)
	require.ErrorIs(t, ValidateIDs(bad), ErrDuplicateID)
}

func TestLastDescendant(t *testing.T) {
	t.Parallel()
	root, _, _, call := sampleTree(t)

	last := LastDescendant(root)
	assert.Equal(t, call.Args[0].Expr.ID(), last.ID())
	assert.Equal(t, KindStringLiteral, LastDescendant(NewStringLiteral("a")).Kind())
}

func TestMatchVariantBindingID_Deterministic(t *testing.T) {
	t.Parallel()
	m, v := NewID(), NewID()
	assert.Equal(t, MatchVariantBindingID(m, v), MatchVariantBindingID(m, v))
	assert.NotEqual(t, MatchVariantBindingID(m, v), MatchVariantBindingID(v, m))
}

func TestNewFunctionCallWithPlaceholderArgs(t *testing.T) {
	t.Parallel()
	defs := []ArgumentDefinition{
		{ID: NewID(), Name: "text", Type: StringType()},
		{ID: NewID(), Name: "count", Type: NumberType()},
	}
	call := NewFunctionCallWithPlaceholderArgs(BuiltinID("F"), defs)

	require.Len(t, call.Args, 2)
	for i, arg := range call.Args {
		assert.Equal(t, defs[i].ID, arg.ArgumentDefinitionID)
		ph, ok := arg.Expr.(*Placeholder)
		require.True(t, ok)
		assert.Equal(t, defs[i].Name, ph.Description)
		assert.True(t, defs[i].Type.Equal(ph.Type))
	}
	require.NoError(t, ValidateIDs(call))
}

func TestType_EqualAndContains(t *testing.T) {
	t.Parallel()
	listT := ListOf(NewType(GenericTID))
	assert.True(t, listT.Equal(ListOf(NewType(GenericTID))))
	assert.False(t, listT.Equal(ListOf(StringType())))
	assert.True(t, listT.Contains(GenericTID))
	assert.False(t, ListOf(StringType()).Contains(GenericTID))
}
