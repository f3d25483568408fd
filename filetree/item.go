// Package filetree models a hierarchical collection of named files and
// folders with stable per-item identity. The same generic Folder/Item shape
// carries two leaf flavors: *File leaves that own content directly (a "full"
// tree, safe to copy and persist) and *Proxy leaves that resolve content
// through the owning [FileTree]'s store (the navigable tree handed to
// callers).
package filetree

import "github.com/google/uuid"

// Leaf is the capability a tree leaf provides: stable identity plus content
// equality against its own kind. Leaves are pointer types, so the comparable
// constraint gives Item a cheap zero check.
type Leaf[L any] interface {
	comparable
	ItemID() uuid.UUID
	SameContents(other L) bool
}

// Item is a file-or-folder sum. The zero Item is neither.
type Item[L Leaf[L]] struct {
	file L
	dir  *Folder[L]
}

// FileItem wraps a leaf as an Item.
func FileItem[L Leaf[L]](f L) Item[L] { return Item[L]{file: f} }

// FolderItem wraps a folder as an Item.
func FolderItem[L Leaf[L]](d *Folder[L]) Item[L] { return Item[L]{dir: d} }

func (it Item[L]) IsFolder() bool { return it.dir != nil }

func (it Item[L]) IsZero() bool {
	var zero L
	return it.dir == nil && it.file == zero
}

// File returns the leaf if the item is a file.
func (it Item[L]) File() (L, bool) {
	var zero L
	if it.dir != nil || it.file == zero {
		return zero, false
	}
	return it.file, true
}

// Folder returns the folder if the item is one.
func (it Item[L]) Folder() (*Folder[L], bool) {
	return it.dir, it.dir != nil
}

// ID delegates to the active variant; uuid.Nil for the zero Item.
func (it Item[L]) ID() uuid.UUID {
	if it.dir != nil {
		return it.dir.ID()
	}
	var zero L
	if it.file == zero {
		return uuid.Nil
	}
	return it.file.ItemID()
}

// SameContents is structural content equality. Items of different variants
// are never equal. Note this is distinct from item equality, which is
// identity (ID) based.
func (it Item[L]) SameContents(other Item[L]) bool {
	if it.dir != nil {
		return other.dir != nil && it.dir.SameContents(other.dir)
	}
	f, ok := it.File()
	if !ok {
		return other.IsZero()
	}
	of, ok := other.File()
	if !ok {
		return false
	}
	return f.SameContents(of)
}
