package filetree

import "github.com/google/uuid"

// IDMap is the persistence aid that lets reloaded items keep the identifiers
// they had when last saved: a shadow tree shaped exactly like the folder
// hierarchy, carrying an id at every level. It is serialized alongside the
// persisted byte tree (see the storage package) and consulted per child path
// on load, so UI state keyed by identifier survives a save/reload round
// trip.
type IDMap struct {
	ID       uuid.UUID
	Children map[string]*IDMap
}

// Lookup returns the recorded map entry for a child name, or nil.
func (m *IDMap) Lookup(name string) *IDMap {
	if m == nil {
		return nil
	}
	return m.Children[name]
}

// FileIDMap captures the current identifier map of the proxy tree.
func (t *FileTree) FileIDMap() *IDMap {
	return idMapOf(t.root)
}

// IDMapOf captures the identifier map of a full tree.
func IDMapOf(root *Folder[*File]) *IDMap {
	return idMapOf(root)
}

func idMapOf[L Leaf[L]](d *Folder[L]) *IDMap {
	m := &IDMap{ID: d.ID()}
	for i := 0; i < d.Len(); i++ {
		name, item := d.At(i)
		if m.Children == nil {
			m.Children = make(map[string]*IDMap, d.Len())
		}
		if sub, ok := item.Folder(); ok {
			m.Children[name] = idMapOf(sub)
		} else {
			m.Children[name] = &IDMap{ID: item.ID()}
		}
	}
	return m
}
