package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

// insertTestSource is a helper that inserts a source and returns it with ID set.
func insertTestSource(t *testing.T, s *Store, path string) *Source {
	t.Helper()
	src := &Source{Path: path, Hash: "abc123", ImportedAt: time.Now().Truncate(time.Second)}
	id, err := s.InsertSource(src)
	require.NoError(t, err)
	require.Positive(t, id)
	return src
}

func testFunction(id, name string, sourceID *int64) *Function {
	return &Function{
		ID:            id,
		Name:          name,
		Kind:          "external",
		SourceID:      sourceID,
		SignatureHash: ComputeSignatureHash(name, nil, "Null"),
		Body:          `{"name":"` + name + `"}`,
	}
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"documents", "sources", "functions", "type_specs", "metadata"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

// =============================================================================
// Documents
// =============================================================================

func TestSaveDocument_InsertAndLookup(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	d := &Document{ID: "doc-1", Name: "hello", Kind: KindScript, Body: `{"kind":"block"}`}
	changed, err := s.SaveDocument(d)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, ContentHash([]byte(d.Body)), d.Hash)

	got, err := s.DocumentByID("doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.Name)
	assert.Equal(t, KindScript, got.Kind)
	assert.Equal(t, d.Body, got.Body)

	byName, err := s.DocumentByName("hello")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, "doc-1", byName.ID)
}

func TestSaveDocument_UnchangedIsSkipped(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	d := &Document{ID: "doc-1", Name: "hello", Kind: KindScript, Body: `{"kind":"block"}`}
	_, err := s.SaveDocument(d)
	require.NoError(t, err)

	changed, err := s.SaveDocument(&Document{ID: "doc-1", Name: "hello", Kind: KindScript, Body: `{"kind":"block"}`})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.SaveDocument(&Document{ID: "doc-1", Name: "hello", Kind: KindScript, Body: `{"kind":"block","statements":[]}`})
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestDocumentLookup_MissingReturnsNil(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	d, err := s.DocumentByID("nope")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = s.DocumentByName("nope")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestSaveDocument_DuplicateNameFails(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.SaveDocument(&Document{ID: "a", Name: "same", Kind: KindScript, Body: "{}"})
	require.NoError(t, err)
	_, err = s.SaveDocument(&Document{ID: "b", Name: "same", Kind: KindScript, Body: "{}"})
	assert.Error(t, err)
}

func TestListDocuments_FilterByKind(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, d := range []*Document{
		{ID: "1", Name: "zeta", Kind: KindScript, Body: "{}"},
		{ID: "2", Name: "alpha", Kind: KindFunction, Body: "{}"},
		{ID: "3", Name: "beta", Kind: KindScript, Body: "{}"},
	} {
		_, err := s.SaveDocument(d)
		require.NoError(t, err)
	}

	all, err := s.ListDocuments("")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "zeta", all[2].Name)

	scripts, err := s.ListDocuments(KindScript)
	require.NoError(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "beta", scripts[0].Name)
}

func TestDeleteDocument_RemovesUserFunction(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.SaveDocument(&Document{ID: "body-1", Name: "greet", Kind: KindFunction, Body: "{}"})
	require.NoError(t, err)
	fn := testFunction("fn-1", "greet", nil)
	fn.Kind = "user"
	fn.DocumentID = ptr("body-1")
	require.NoError(t, s.UpsertFunction(fn))

	got, err := s.FunctionByDocument("body-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "fn-1", got.ID)

	require.NoError(t, s.DeleteDocument("body-1"))

	d, err := s.DocumentByID("body-1")
	require.NoError(t, err)
	assert.Nil(t, d)
	got, err = s.FunctionByDocument("body-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// =============================================================================
// Sources & Functions
// =============================================================================

func TestSourceByPath(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	src := insertTestSource(t, s, "/lib/strings.go")

	got, err := s.SourceByPath("/lib/strings.go")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, src.ID, got.ID)
	assert.Equal(t, "abc123", got.Hash)

	missing, err := s.SourceByPath("/lib/none.go")
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.UpdateSourceHash(src.ID, "def456", now))
	got, err = s.SourceByPath("/lib/strings.go")
	require.NoError(t, err)
	assert.Equal(t, "def456", got.Hash)

	sources, err := s.ListSources()
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}

func TestUpsertFunction_ReplacesByID(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	src := insertTestSource(t, s, "/lib/strings.go")

	require.NoError(t, s.UpsertFunction(testFunction("fn-1", "Shout", &src.ID)))
	updated := testFunction("fn-1", "Shout", &src.ID)
	updated.Body = `{"name":"Shout","description":"louder"}`
	require.NoError(t, s.UpsertFunction(updated))

	fns, err := s.FunctionsBySource(src.ID)
	require.NoError(t, err)
	require.Len(t, fns, 1)
	assert.Equal(t, updated.Body, fns[0].Body)
	require.NotNil(t, fns[0].SourceID)
	assert.Equal(t, src.ID, *fns[0].SourceID)
	assert.Nil(t, fns[0].DocumentID)
}

func TestDeleteFunctions(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	src := insertTestSource(t, s, "/lib/strings.go")

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, s.UpsertFunction(testFunction("fn-"+name, name, &src.ID)))
	}
	require.NoError(t, s.DeleteFunctions([]string{"fn-A", "fn-C"}))
	require.NoError(t, s.DeleteFunctions(nil))

	fns, err := s.ListFunctions()
	require.NoError(t, err)
	require.Len(t, fns, 1)
	assert.Equal(t, "B", fns[0].Name)
}

func TestDeleteSourceData(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	keep := insertTestSource(t, s, "/lib/keep.go")
	drop := insertTestSource(t, s, "/lib/drop.go")

	require.NoError(t, s.UpsertFunction(testFunction("k", "Keep", &keep.ID)))
	require.NoError(t, s.UpsertFunction(testFunction("d1", "Drop", &drop.ID)))
	require.NoError(t, s.UpsertFunction(testFunction("d2", "DropToo", &drop.ID)))

	require.NoError(t, s.DeleteSourceData(drop.ID))

	fns, err := s.ListFunctions()
	require.NoError(t, err)
	require.Len(t, fns, 1)
	assert.Equal(t, "Keep", fns[0].Name)

	gone, err := s.SourceByPath("/lib/drop.go")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

// =============================================================================
// Type specs & metadata
// =============================================================================

func TestUpsertTypeSpec(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	require.NoError(t, s.UpsertTypeSpec(&TypeSpec{ID: "t1", Name: "Point", Kind: "struct", Body: "{}"}))
	require.NoError(t, s.UpsertTypeSpec(&TypeSpec{ID: "t2", Name: "Color", Kind: "enum", Body: "{}"}))
	require.NoError(t, s.UpsertTypeSpec(&TypeSpec{ID: "t1", Name: "Point", Kind: "struct", Body: `{"fields":[]}`}))

	specs, err := s.ListTypeSpecs()
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "Color", specs[0].Name)
	assert.Equal(t, `{"fields":[]}`, specs[1].Body)
}

func TestMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	v, err := s.GetMetadata("scripts_hash")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMetadata("scripts_hash", "one"))
	require.NoError(t, s.SetMetadata("scripts_hash", "two"))
	v, err = s.GetMetadata("scripts_hash")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestComputeSignatureHash(t *testing.T) {
	t.Parallel()
	base := ComputeSignatureHash("Join", []string{"a String", "b String"}, "String")
	assert.Equal(t, base, ComputeSignatureHash("Join", []string{"a String", "b String"}, "String"))
	assert.NotEqual(t, base, ComputeSignatureHash("Join", []string{"b String", "a String"}, "String"))
	assert.NotEqual(t, base, ComputeSignatureHash("Join", []string{"a String", "b String"}, "Number"))
	assert.Len(t, base, 64)
}
