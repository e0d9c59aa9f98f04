package sapling

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sapling/internal/lang"
)

func TestResolveNodeRef(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	g := NewGenie(tr.root)

	id, err := ResolveNodeRef(g, cat, tr.lit.NodeID.String())
	require.NoError(t, err)
	assert.Equal(t, tr.lit.NodeID, id)

	id, err = ResolveNodeRef(g, cat, strings.ToUpper(tr.print.NodeID.String()[:13]))
	require.NoError(t, err)
	assert.Equal(t, tr.print.NodeID, id, "prefixes are case-insensitive")

	id, err = ResolveNodeRef(g, cat, "x =")
	require.NoError(t, err)
	assert.Equal(t, tr.assign.NodeID, id)

	id, err = ResolveNodeRef(g, cat, "<End of script>")
	require.NoError(t, err)
	assert.Equal(t, tr.end.NodeID, id)
}

func TestResolveNodeRef_Errors(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	g := NewGenie(tr.root)

	_, err := ResolveNodeRef(g, cat, lang.NewID().String())
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = ResolveNodeRef(g, cat, "nothing here")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = ResolveNodeRef(g, cat, "")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	dup := lang.NewBlock(lang.NewStringLiteral("a"), lang.NewStringLiteral("a"))
	_, err = ResolveNodeRef(NewGenie(dup), cat, `"a"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 nodes")
}

func TestFindByLabel(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	g := NewGenie(tr.root)

	assert.Equal(t, []ID{tr.print.Reference.NodeID}, FindByLabel(g, cat, "Print"))
	assert.Equal(t, []ID{tr.ref.NodeID}, FindByLabel(g, cat, "x"))
	assert.Empty(t, FindByLabel(g, cat, "Concat"))
}

func TestMacroEditor_ReportsSessionState(t *testing.T) {
	cat := newTestCatalog(t)
	tr := newSampleTree(t, cat)
	m := newMacroEditor(NewSession(tr.root, cat))

	assert.Empty(t, m.Selected())
	require.NoError(t, m.Select("Print()"))
	assert.Equal(t, tr.print.NodeID.String(), m.Selected())
	assert.Contains(t, m.Outline(), ">   Print()")

	locals := m.Locals()
	require.Len(t, locals, 1)
	assert.Equal(t, "x", locals[0].Name)

	require.NoError(t, m.Press("o"))
	require.NoError(t, m.Search("cap"))
	opts := m.Options()
	require.NotEmpty(t, opts)
	assert.Equal(t, "Capitalize", opts[0].Label)
	assert.True(t, opts[0].Selected)

	m.Cancel()
	assert.Empty(t, m.Options())
	assert.Error(t, m.Press("alt-q"))
	assert.Len(t, m.Find(`"hi"`), 1)
}
