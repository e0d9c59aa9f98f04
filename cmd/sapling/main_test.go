package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sapling/scripts"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(root)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	deep := filepath.Join(root, "sub", "deep")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	got := findRepoRoot(deep)
	assert.Equal(t, root, got)
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findRepoRoot(dir)
	assert.Equal(t, dir, got)
}

func TestResolveDBPath(t *testing.T) {
	old := flagDB
	t.Cleanup(func() { flagDB = old })

	flagDB = ""
	assert.Equal(t, filepath.Join("/repo", ".sapling", "workspace.db"), resolveDBPath("/repo"))

	flagDB = "custom.db"
	assert.Equal(t, filepath.Join("/repo", "custom.db"), resolveDBPath("/repo"))

	flagDB = "/abs/ws.db"
	assert.Equal(t, "/abs/ws.db", resolveDBPath("/repo"))
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.Error(t, validateFormat("yaml"))
}

func TestParseArgSpec(t *testing.T) {
	t.Parallel()
	name, typ, err := parseArgSpec("items: List<Number>")
	require.NoError(t, err)
	assert.Equal(t, "items", name)
	assert.Equal(t, "List<Number>", typ)

	for _, bad := range []string{"text", ":String", "text:", ""} {
		_, _, err := parseArgSpec(bad)
		assert.Error(t, err, "spec %q", bad)
	}
}

func TestListMacros_Embedded(t *testing.T) {
	t.Parallel()
	names, err := listMacros(scripts.FS)
	require.NoError(t, err)
	assert.Equal(t, []string{"clear", "greet", "hello_world"}, names)
}

func TestListMacros_Dir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "macros"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "macros", "b.risor"), []byte(`press("j")`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "macros", "a.risor"), []byte(`press("k")`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "macros", "notes.txt"), nil, 0o644))

	names, err := listMacros(os.DirFS(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}
