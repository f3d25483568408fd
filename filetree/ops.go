package filetree

import (
	"weak"

	"github.com/google/uuid"
)

// Structural operations on the proxy tree. Each wraps the corresponding
// Folder primitive with the store/cache bookkeeping the registry owes it.
// Every operation is atomic: it either fully succeeds or mutates nothing.

// Add inserts a full item into parent at the lexicographically correct
// position, converting it into proxies registered against t. Name collisions
// are resolved by numbering; when the attempt budget is exhausted the
// operation declines (ok=false) without mutating anything.
//
// parent must belong to this tree.
func (t *FileTree) Add(parent *Folder[*Proxy], item Item[*File], preferred string) (string, bool) {
	return t.add(parent, item, preferred, 0, false)
}

// AddAt is Add with an explicit position, clamped to [0, parent.Len()].
func (t *FileTree) AddAt(parent *Folder[*Proxy], item Item[*File], preferred string, at int) (string, bool) {
	return t.add(parent, item, preferred, at, true)
}

func (t *FileTree) add(parent *Folder[*Proxy], item Item[*File], preferred string, at int, useAt bool) (string, bool) {
	name, ok := parent.pickName(preferred, t.attempts)
	if !ok {
		t.log.Debug().Str("preferred", preferred).Int("attempts", t.attempts).
			Msg("add declined, no free name")
		return "", false
	}
	base, ok := t.paths.Load(parent.ID())
	if !ok {
		t.log.Error().Stringer("folder", parent.ID()).Msg("add into folder with no cached path")
		return "", false
	}
	proxied := t.adoptItem(item, JoinPath(base, name))
	parent.insertNamed(proxied, name, at, useAt)
	return name, true
}

// adoptItem registers a full item's subtree (store entries + paths) and
// returns the proxy-flavored item.
func (t *FileTree) adoptItem(item Item[*File], path string) Item[*Proxy] {
	if f, ok := item.File(); ok {
		t.store.Store(f.ItemID(), f)
		t.paths.Store(f.ItemID(), path)
		return FileItem(&Proxy{id: f.ItemID(), owner: weak.Make(t)})
	}
	sub, _ := item.Folder()
	proxySub := t.adoptFolder(sub, path)
	t.paths.Store(proxySub.ID(), path)
	return FolderItem(proxySub)
}

// Rename moves parent's child oldName to newName, then repairs the path
// cache for the renamed item and all of its descendants (their paths share
// the renamed prefix). Returns false on collision with an existing child,
// leaving the tree untouched. Renaming a name to itself succeeds as a no-op.
func (t *FileTree) Rename(parent *Folder[*Proxy], oldName, newName string, keepPosition bool) bool {
	if !parent.Rename(oldName, newName, keepPosition) {
		return false
	}
	if oldName == newName {
		return true
	}
	item, ok := parent.Get(newName)
	if !ok {
		return true
	}
	base, _ := t.paths.Load(parent.ID())
	t.recachePaths(item, JoinPath(base, newName))
	return true
}

// recachePaths rewrites cache entries for item and its descendants.
func (t *FileTree) recachePaths(item Item[*Proxy], path string) {
	t.paths.Store(item.ID(), path)
	if sub, ok := item.Folder(); ok {
		for i := 0; i < sub.Len(); i++ {
			name, child := sub.At(i)
			t.recachePaths(child, JoinPath(path, name))
		}
	}
}

// Remove deletes parent's named child and purges every id in the removed
// subtree from both the content store and the path cache, so outstanding
// proxies into it stop resolving immediately.
func (t *FileTree) Remove(parent *Folder[*Proxy], name string) (Item[*Proxy], bool) {
	item, ok := parent.Remove(name)
	if !ok {
		return Item[*Proxy]{}, false
	}
	t.purge(item)
	return item, true
}

func (t *FileTree) purge(item Item[*Proxy]) {
	t.paths.Delete(item.ID())
	if leaf, ok := item.File(); ok {
		t.store.Delete(leaf.ItemID())
		return
	}
	if sub, ok := item.Folder(); ok {
		for i := 0; i < sub.Len(); i++ {
			_, child := sub.At(i)
			t.purge(child)
		}
	}
}

// ids returns every id reachable from the proxy tree root, including the
// root's. Exposed for consistency checks in tests.
func (t *FileTree) ids() map[uuid.UUID]bool {
	out := map[uuid.UUID]bool{t.root.ID(): true}
	t.root.Walk(func(_ string, item Item[*Proxy]) bool {
		out[item.ID()] = true
		return true
	})
	return out
}
