package filetree

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/brettbedarf/doctree"
	"github.com/google/uuid"
)

// DefaultCollisionAttempts is how many numbered candidates Insert tries
// before giving up and declining the insertion.
const DefaultCollisionAttempts = 100

type childEntry[L Leaf[L]] struct {
	name string
	item Item[L]
}

// Folder is an ordered name→item mapping. Child names are unique within a
// folder; every mutator enforces this. Child order is significant (it is the
// display and iteration order) and is preserved across marshalling.
type Folder[L Leaf[L]] struct {
	id      uuid.UUID
	entries []childEntry[L]
}

// NewFolder creates an empty folder with a fresh identifier.
func NewFolder[L Leaf[L]]() *Folder[L] {
	return NewFolderAs[L](uuid.New())
}

// NewFolderAs creates an empty folder with a caller-supplied (persisted)
// identifier.
func NewFolderAs[L Leaf[L]](id uuid.UUID) *Folder[L] {
	return &Folder[L]{id: id}
}

func (d *Folder[L]) ID() uuid.UUID { return d.id }

func (d *Folder[L]) Len() int { return len(d.entries) }

// Names returns the child names in display order.
func (d *Folder[L]) Names() []string {
	names := make([]string, len(d.entries))
	for i, e := range d.entries {
		names[i] = e.name
	}
	return names
}

// At returns the i-th child. Panics if i is out of range, like a slice.
func (d *Folder[L]) At(i int) (string, Item[L]) {
	e := d.entries[i]
	return e.name, e.item
}

// Get returns the child with the given name.
func (d *Folder[L]) Get(name string) (Item[L], bool) {
	if i := d.indexOf(name); i >= 0 {
		return d.entries[i].item, true
	}
	return Item[L]{}, false
}

// IndexOf returns the child's position, or -1 if absent.
func (d *Folder[L]) IndexOf(name string) int { return d.indexOf(name) }

func (d *Folder[L]) indexOf(name string) int {
	for i, e := range d.entries {
		if e.name == name {
			return i
		}
	}
	return -1
}

// sortedIndex returns the first position whose child name sorts strictly
// after name, or Len() if none does. Ordering is plain byte comparison.
func (d *Folder[L]) sortedIndex(name string) int {
	for i, e := range d.entries {
		if e.name > name {
			return i
		}
	}
	return len(d.entries)
}

// pickName resolves preferred against existing child names by numbering:
// base.ext, base1.ext, base2.ext, ... ok=false when all attempts collide.
func (d *Folder[L]) pickName(preferred string, attempts int) (string, bool) {
	ext := path.Ext(preferred)
	base := strings.TrimSuffix(preferred, ext)
	for i := range attempts {
		name := preferred
		if i > 0 {
			name = fmt.Sprintf("%s%d%s", base, i, ext)
		}
		if d.indexOf(name) < 0 {
			return name, true
		}
	}
	return "", false
}

// insertNamed places item under a name the caller already checked is unique.
// With useAt, at is clamped to [0, Len]; otherwise the position is the
// lexicographic one from sortedIndex.
func (d *Folder[L]) insertNamed(item Item[L], name string, at int, useAt bool) {
	pos := d.sortedIndex(name)
	if useAt {
		pos = min(max(at, 0), len(d.entries))
	}
	d.entries = append(d.entries, childEntry[L]{})
	copy(d.entries[pos+1:], d.entries[pos:])
	d.entries[pos] = childEntry[L]{name: name, item: item}
}

// Insert adds item under preferred (renumbered on collision) at the
// lexicographically correct position. Returns the chosen name; ok is false
// when the attempt budget is exhausted, in which case nothing was mutated.
func (d *Folder[L]) Insert(item Item[L], preferred string) (string, bool) {
	return d.insert(item, preferred, 0, false, DefaultCollisionAttempts)
}

// InsertAt is Insert with an explicit position, clamped to [0, Len].
func (d *Folder[L]) InsertAt(item Item[L], preferred string, at int) (string, bool) {
	return d.insert(item, preferred, at, true, DefaultCollisionAttempts)
}

func (d *Folder[L]) insert(item Item[L], preferred string, at int, useAt bool, attempts int) (string, bool) {
	name, ok := d.pickName(preferred, attempts)
	if !ok {
		return "", false
	}
	d.insertNamed(item, name, at, useAt)
	return name, true
}

// Rename moves the child oldName to newName. It fails (without mutating
// anything) when newName already names a different child; the collision
// check runs before removal so a failed rename never loses the item.
// Renaming a name to itself trivially succeeds. With keepPosition the child
// stays at its index, otherwise it moves to the lexicographic position.
func (d *Folder[L]) Rename(oldName, newName string, keepPosition bool) bool {
	if oldName == newName {
		return true
	}
	idx := d.indexOf(oldName)
	if idx < 0 {
		return false
	}
	if d.indexOf(newName) >= 0 {
		return false
	}
	item := d.entries[idx].item
	d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
	if keepPosition {
		d.insertNamed(item, newName, idx, true)
	} else {
		d.insertNamed(item, newName, 0, false)
	}
	return true
}

// Remove deletes the named child and returns it.
func (d *Folder[L]) Remove(name string) (Item[L], bool) {
	idx := d.indexOf(name)
	if idx < 0 {
		return Item[L]{}, false
	}
	item := d.entries[idx].item
	d.entries = append(d.entries[:idx], d.entries[idx+1:]...)
	return item, true
}

// SameContents reports structural equality: the child name sets must match
// exactly and every shared name must hold SameContents-equal children.
// Child order is deliberately not part of equality.
func (d *Folder[L]) SameContents(other *Folder[L]) bool {
	if other == nil || len(d.entries) != len(other.entries) {
		return false
	}
	for _, e := range d.entries {
		o, ok := other.Get(e.name)
		if !ok || !e.item.SameContents(o) {
			return false
		}
	}
	return true
}

// Walk visits every child depth-first in display order. The callback gets
// the slash path relative to d. Returning false stops the walk.
func (d *Folder[L]) Walk(fn func(path string, item Item[L]) bool) {
	d.walk("", fn)
}

func (d *Folder[L]) walk(prefix string, fn func(string, Item[L]) bool) bool {
	for _, e := range d.entries {
		p := JoinPath(prefix, e.name)
		if !fn(p, e.item) {
			return false
		}
		if sub, ok := e.item.Folder(); ok {
			if !sub.walk(p, fn) {
				return false
			}
		}
	}
	return true
}

// FolderFromNested builds a full-tree folder from a nested name→value map,
// classifying each value as a content leaf or a sub-tree. Used for
// bootstrapping and tests. Children are inserted in sorted name order.
func FolderFromNested(nested map[string]any) (*Folder[*File], error) {
	d := NewFolder[*File]()
	names := make([]string, 0, len(nested))
	for name := range nested {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch v := nested[name].(type) {
		case doctree.Content:
			d.InsertAt(FileItem(NewFile(v)), name, d.Len())
		case map[string]any:
			sub, err := FolderFromNested(v)
			if err != nil {
				return nil, err
			}
			d.InsertAt(FolderItem(sub), name, d.Len())
		default:
			return nil, fmt.Errorf("%w: entry %q is neither content nor a nested map (%T)",
				doctree.ErrStructure, name, v)
		}
	}
	return d, nil
}
