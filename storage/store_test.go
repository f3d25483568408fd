package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/doctree"
	"github.com/brettbedarf/doctree/filetree"
)

func fixtureFull(t *testing.T) *filetree.Folder[*filetree.File] {
	t.Helper()
	full, err := filetree.FolderFromNested(map[string]any{
		"readme.md": doctree.NewText("# fixture"),
		"empty":     map[string]any{},
		"src": map[string]any{
			"main.go": doctree.NewText("package main"),
		},
	})
	require.NoError(t, err)
	return full
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewStore(NewMem())
	full := fixtureFull(t)

	require.NoError(t, s.Save("doc", full))

	loaded, err := s.Load("doc", doctree.DecodeText)
	require.NoError(t, err)
	assert.True(t, loaded.SameContents(full))
}

func TestStore_RoundTripPreservesIdentifiers(t *testing.T) {
	s := NewStore(NewMem())
	full := fixtureFull(t)
	require.NoError(t, s.Save("doc", full))

	loaded, err := s.Load("doc", doctree.DecodeText)
	require.NoError(t, err)

	assert.Equal(t, full.ID(), loaded.ID())
	want := map[string]string{}
	full.Walk(func(p string, item filetree.Item[*filetree.File]) bool {
		want[p] = item.ID().String()
		return true
	})
	loaded.Walk(func(p string, item filetree.Item[*filetree.File]) bool {
		assert.Equal(t, want[p], item.ID().String(), "identifier changed for %s", p)
		return true
	})
}

func TestStore_LoadWithoutIDMapMintsFreshIDs(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	full := fixtureFull(t)
	require.NoError(t, s.Save("doc", full))
	require.NoError(t, mem.Remove("doc/"+DefaultIDMapName))

	loaded, err := s.Load("doc", doctree.DecodeText)
	require.NoError(t, err)
	assert.True(t, loaded.SameContents(full))

	seen := map[string]bool{}
	full.Walk(func(_ string, item filetree.Item[*filetree.File]) bool {
		seen[item.ID().String()] = true
		return true
	})
	loaded.Walk(func(p string, item filetree.Item[*filetree.File]) bool {
		assert.False(t, seen[item.ID().String()], "id at %s should be fresh", p)
		return true
	})
}

func TestStore_ExternallyAddedFileGetsFreshID(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	full := fixtureFull(t)
	require.NoError(t, s.Save("doc", full))

	require.NoError(t, mem.WriteFile("doc/src/extra.go", []byte("package main")))

	loaded, err := s.Load("doc", doctree.DecodeText)
	require.NoError(t, err)
	item, ok := findByPath(loaded, "src/extra.go")
	require.True(t, ok)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", item.ID().String())
}

func findByPath(root *filetree.Folder[*filetree.File], path string) (filetree.Item[*filetree.File], bool) {
	var found filetree.Item[*filetree.File]
	ok := false
	root.Walk(func(p string, item filetree.Item[*filetree.File]) bool {
		if p == path {
			found, ok = item, true
			return false
		}
		return true
	})
	return found, ok
}

func TestStore_UnchangedIDMapNotRewritten(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	full := fixtureFull(t)

	require.NoError(t, s.Save("doc", full))
	writesAfterFirst := mem.writes

	require.NoError(t, s.Save("doc", full))
	// second save rewrites the two content files but not the id map
	assert.Equal(t, writesAfterFirst+2, mem.writes)
}

func TestStore_SaveReflectsRename(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	full := fixtureFull(t)
	require.NoError(t, s.Save("doc", full))

	require.True(t, full.Rename("readme.md", "README.md", false))
	require.NoError(t, s.Save("doc", full))

	ok, err := mem.Exists("doc/README.md")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = mem.Exists("doc/readme.md")
	require.NoError(t, err)
	assert.False(t, ok, "stale entry pruned after rename")
}

func TestStore_SaveReplacesEntryOfChangedKind(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	require.NoError(t, s.Save("doc", fixtureFull(t)))

	// readme.md becomes a folder, src becomes a file
	changed, err := filetree.FolderFromNested(map[string]any{
		"readme.md": map[string]any{
			"index.md": doctree.NewText("# moved"),
		},
		"src": doctree.NewText("flattened"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Save("doc", changed))

	ents, err := mem.ReadDir("doc")
	require.NoError(t, err)
	kinds := map[string]bool{}
	for _, e := range ents {
		kinds[e.Name] = e.Dir
	}
	assert.True(t, kinds["readme.md"], "readme.md is a directory now")
	assert.False(t, kinds["src"], "src is a file now")

	loaded, err := s.Load("doc", doctree.DecodeText)
	require.NoError(t, err)
	assert.True(t, loaded.SameContents(changed))
}

func TestStore_LoadDecodeFailureAbortsWholeLoad(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	require.NoError(t, s.Save("doc", fixtureFull(t)))
	require.NoError(t, mem.WriteFile("doc/src/bin.dat", []byte{0xff, 0xfe, 0x00}))

	_, err := s.Load("doc", doctree.DecodeText)
	require.Error(t, err)
	assert.ErrorIs(t, err, doctree.ErrDecode)
}

func TestStore_CorruptIDMapIsStructuralError(t *testing.T) {
	mem := NewMem()
	s := NewStore(mem)
	require.NoError(t, s.Save("doc", fixtureFull(t)))
	require.NoError(t, mem.WriteFile("doc/"+DefaultIDMapName, []byte("id: not-a-uuid\n")))

	_, err := s.Load("doc", doctree.DecodeText)
	require.Error(t, err)
	assert.ErrorIs(t, err, doctree.ErrStructure)
}

func TestStore_EmptyFolderSurvivesRoundTrip(t *testing.T) {
	s := NewStore(NewMem())
	full := fixtureFull(t)
	require.NoError(t, s.Save("doc", full))

	loaded, err := s.Load("doc", doctree.DecodeText)
	require.NoError(t, err)
	item, ok := loaded.Get("empty")
	require.True(t, ok)
	sub, ok := item.Folder()
	require.True(t, ok)
	assert.Equal(t, 0, sub.Len())
}

func TestMem_ReadDirListsAndSorts(t *testing.T) {
	mem := NewMem()
	require.NoError(t, mem.WriteFile("a/z.txt", []byte("z")))
	require.NoError(t, mem.WriteFile("a/b/c.txt", []byte("c")))
	require.NoError(t, mem.MkdirAll("a/empty"))

	ents, err := mem.ReadDir("a")
	require.NoError(t, err)
	require.Len(t, ents, 3)
	assert.Equal(t, "b", ents[0].Name)
	assert.True(t, ents[0].Dir)
	assert.Equal(t, "empty", ents[1].Name)
	assert.True(t, ents[1].Dir)
	assert.Equal(t, "z.txt", ents[2].Name)
	assert.True(t, ents[2].Regular)
}
