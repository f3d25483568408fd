package filetree

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/doctree"
)

// Test helper building the standard fixture:
//
//	readme.md
//	src/
//	  main.go
//	  util/
//	    path.go
func fixtureTree(t *testing.T) *Folder[*File] {
	t.Helper()
	full, err := FolderFromNested(map[string]any{
		"readme.md": doctree.NewText("# fixture"),
		"src": map[string]any{
			"main.go": doctree.NewText("package main"),
			"util": map[string]any{
				"path.go": doctree.NewText("package util"),
			},
		},
	})
	require.NoError(t, err)
	return full
}

// checkConsistency asserts FileTree invariants: every reachable id has
// exactly one path entry, every reachable file id has a store entry, and
// neither registry holds ids the tree cannot reach.
func checkConsistency(t *testing.T, tree *FileTree) {
	t.Helper()
	reachable := tree.ids()

	pathCount := 0
	tree.paths.Range(func(id uuid.UUID, p string) bool {
		pathCount++
		assert.True(t, reachable[id], "path cache holds unreachable id %s (%q)", id, p)
		return true
	})
	assert.Equal(t, len(reachable), pathCount, "every reachable id has a cached path")

	tree.store.Range(func(id uuid.UUID, _ *File) bool {
		assert.True(t, reachable[id], "store holds unreachable id %s", id)
		return true
	})
	tree.root.Walk(func(p string, item Item[*Proxy]) bool {
		cached, ok := tree.PathOf(item.ID())
		require.True(t, ok)
		assert.Equal(t, p, cached, "path cache disagrees with tree structure")
		if leaf, ok := item.File(); ok {
			_, ok := tree.fileByID(leaf.ItemID())
			assert.True(t, ok, "reachable file %s missing from store", p)
		}
		return true
	})
}

func TestMaterialize_RegistersPathsAndContent(t *testing.T) {
	tree := Materialize(fixtureTree(t))

	rootPath, ok := tree.PathOf(tree.Root().ID())
	require.True(t, ok)
	assert.Equal(t, "", rootPath, "root maps to the empty path")

	item, ok := tree.LookupItem("src/util/path.go")
	require.True(t, ok)
	p, ok := tree.PathOf(item.ID())
	require.True(t, ok)
	assert.Equal(t, "src/util/path.go", p)

	checkConsistency(t, tree)
}

func TestSnapshotRoundTrip(t *testing.T) {
	full := fixtureTree(t)
	tree := Materialize(full)

	snap, err := tree.Snapshot()
	require.NoError(t, err)
	assert.True(t, snap.SameContents(full))
	assert.Equal(t, full.ID(), snap.ID(), "identity survives the round trip")
}

func TestProxy_ResolveAndStaleness(t *testing.T) {
	tree := Materialize(fixtureTree(t))

	item, ok := tree.LookupItem("readme.md")
	require.True(t, ok)
	proxy, ok := item.File()
	require.True(t, ok)

	f, ok := proxy.Resolve()
	require.True(t, ok)
	assert.True(t, f.Contents().Equal(doctree.NewText("# fixture")))

	// deleting the item revokes the handle; it never yields a stale value
	_, removed := tree.Remove(tree.Root(), "readme.md")
	require.True(t, removed)
	_, ok = proxy.Resolve()
	assert.False(t, ok)

	checkConsistency(t, tree)
}

func TestProxyFor(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	item, _ := tree.LookupItem("src/main.go")

	proxy, ok := tree.ProxyFor(item.ID())
	require.True(t, ok)
	f, ok := proxy.Resolve()
	require.True(t, ok)
	assert.Equal(t, item.ID(), f.ItemID())

	_, ok = tree.ProxyFor(uuid.New())
	assert.False(t, ok)
}

func TestFileTree_AddRegistersSubtree(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	src, ok := tree.LookupFolder("src")
	require.True(t, ok)

	sub, err := FolderFromNested(map[string]any{
		"lexer.go":  doctree.NewText("package parser"),
		"parser.go": doctree.NewText("package parser"),
	})
	require.NoError(t, err)

	name, added := tree.Add(src, FolderItem(sub), "parser")
	require.True(t, added)
	assert.Equal(t, "parser", name)

	p, ok := tree.PathOf(sub.ID())
	require.True(t, ok)
	assert.Equal(t, "src/parser", p)

	item, ok := tree.LookupItem("src/parser/lexer.go")
	require.True(t, ok)
	leaf, ok := item.File()
	require.True(t, ok)
	_, ok = leaf.Resolve()
	assert.True(t, ok, "added file content is registered in the store")

	checkConsistency(t, tree)
}

func TestFileTree_AddDeclinedLeavesNoTrace(t *testing.T) {
	full, err := FolderFromNested(map[string]any{"x.txt": doctree.NewText("x")})
	require.NoError(t, err)
	tree := Materialize(full, WithCollisionAttempts(1))

	_, ok := tree.Add(tree.Root(), textFile("y"), "x.txt")
	assert.False(t, ok)
	assert.Equal(t, []string{"x.txt"}, tree.Root().Names())
	checkConsistency(t, tree)
}

func TestFileTree_RenameCascadesPathCache(t *testing.T) {
	tree := Materialize(fixtureTree(t))

	ok := tree.Rename(tree.Root(), "src", "lib", false)
	require.True(t, ok)

	item, ok := tree.LookupItem("lib/util/path.go")
	require.True(t, ok)
	p, ok := tree.PathOf(item.ID())
	require.True(t, ok)
	assert.Equal(t, "lib/util/path.go", p, "descendant paths share the renamed prefix")

	_, ok = tree.LookupItem("src/main.go")
	assert.False(t, ok)

	checkConsistency(t, tree)
}

func TestFileTree_RenameCollisionLeavesCacheIntact(t *testing.T) {
	tree := Materialize(fixtureTree(t))

	ok := tree.Rename(tree.Root(), "src", "readme.md", false)
	assert.False(t, ok)
	checkConsistency(t, tree)
}

func TestFileTree_RemovePurgesSubtree(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	item, ok := tree.LookupItem("src/util/path.go")
	require.True(t, ok)
	fileID := item.ID()

	removed, ok := tree.Remove(tree.Root(), "src")
	require.True(t, ok)
	assert.True(t, removed.IsFolder())

	_, ok = tree.PathOf(fileID)
	assert.False(t, ok, "descendant paths are purged")
	_, ok = tree.fileByID(fileID)
	assert.False(t, ok, "descendant content is purged")

	checkConsistency(t, tree)
}

func TestFileTree_SetContentsReplacesNotMutates(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	item, _ := tree.LookupItem("readme.md")
	before, _ := tree.fileByID(item.ID())

	require.True(t, tree.SetContents(item.ID(), doctree.NewText("# edited")))
	after, ok := tree.fileByID(item.ID())
	require.True(t, ok)
	assert.Equal(t, before.ItemID(), after.ItemID())
	assert.NotSame(t, before, after)
	assert.True(t, before.Contents().Equal(doctree.NewText("# fixture")), "old File is untouched")

	assert.False(t, tree.SetContents(uuid.New(), doctree.NewText("nope")))
}

func TestFileTree_SetFolderGuardsOnID(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	src, ok := tree.LookupFolder("src")
	require.True(t, ok)

	// a replacement carrying the same id is accepted
	repl := NewFolderAs[*Proxy](src.ID())
	assert.True(t, tree.SetFolder("src", repl))
	got, _ := tree.LookupFolder("src")
	assert.Equal(t, 0, got.Len())

	// a different id is rejected (stale path defense)
	assert.False(t, tree.SetFolder("src", NewFolder[*Proxy]()))
	assert.False(t, tree.SetFolder("no/such/path", repl))
}

func TestFileTree_CloneIsIndependent(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	clone := tree.Clone()

	_, ok := tree.Remove(tree.Root(), "src")
	require.True(t, ok)

	// the clone still resolves everything the original dropped
	item, ok := clone.LookupItem("src/main.go")
	require.True(t, ok)
	leaf, _ := item.File()
	_, ok = leaf.Resolve()
	assert.True(t, ok, "clone's proxies resolve against the clone's store")

	checkConsistency(t, tree)
	checkConsistency(t, clone)
}

func TestHistory_UndoRedo(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	hist := NewHistory(tree, 0)

	hist.Checkpoint()
	_, ok := tree.Remove(tree.Root(), "src")
	require.True(t, ok)
	require.Equal(t, []string{"readme.md"}, tree.Root().Names())

	require.True(t, hist.Undo())
	assert.Equal(t, []string{"readme.md", "src"}, tree.Root().Names())
	item, ok := tree.LookupItem("src/util/path.go")
	require.True(t, ok)
	_, ok = tree.PathOf(item.ID())
	assert.True(t, ok)
	checkConsistency(t, tree)

	require.True(t, hist.Redo())
	assert.Equal(t, []string{"readme.md"}, tree.Root().Names())
	checkConsistency(t, tree)

	assert.False(t, hist.Redo())
}

func TestHistory_CheckpointClearsRedo(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	hist := NewHistory(tree, 0)

	hist.Checkpoint()
	tree.Remove(tree.Root(), "readme.md")
	hist.Undo()
	require.True(t, hist.CanRedo())

	hist.Checkpoint()
	tree.Remove(tree.Root(), "src")
	assert.False(t, hist.CanRedo())
}

func TestHistory_Discard(t *testing.T) {
	tree := Materialize(fixtureTree(t))
	hist := NewHistory(tree, 0)

	hist.Checkpoint()
	hist.Discard()
	assert.False(t, hist.CanUndo())
}

func TestSnapshot_DesyncIsInvariantViolation(t *testing.T) {
	tree := Materialize(fixtureTree(t))

	// sabotage: drop a store entry while it is still reachable
	item, _ := tree.LookupItem("readme.md")
	tree.store.Delete(item.ID())

	_, err := tree.Snapshot()
	require.Error(t, err)
	assert.ErrorIs(t, err, doctree.ErrInvariant)
}
