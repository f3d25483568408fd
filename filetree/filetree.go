package filetree

import (
	"fmt"
	"weak"

	"github.com/brettbedarf/doctree"
	"github.com/brettbedarf/doctree/internal/util"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"
)

// FileTree is the registry that owns one document's state: the navigable
// proxy tree, the canonical content store (id → File), and the derived path
// cache (id → path). The proxy tree is authoritative for structure; the path
// cache must always agree with it.
//
// All mutation is expected to be externally serialized (a single logical
// owner, e.g. a UI event loop); the registries themselves tolerate
// concurrent reads from stale proxies.
type FileTree struct {
	root     *Folder[*Proxy]
	store    *xsync.Map[uuid.UUID, *File]
	paths    *xsync.Map[uuid.UUID, string]
	attempts int
	log      zerolog.Logger
}

// Option is a functional option for configuring a FileTree.
type Option func(*FileTree)

// WithLogger scopes the tree's diagnostic logger to the owning document.
func WithLogger(l zerolog.Logger) Option {
	return func(t *FileTree) { t.log = l }
}

// WithCollisionAttempts overrides the insertion renaming budget.
func WithCollisionAttempts(n int) Option {
	return func(t *FileTree) {
		if n > 0 {
			t.attempts = n
		}
	}
}

// Materialize walks a full tree once, registering every file's content in
// the store and every node's path in the cache, and returns the FileTree
// whose root is the equivalent proxy tree. This is the only place content
// enters the store.
func Materialize(full *Folder[*File], opts ...Option) *FileTree {
	t := &FileTree{
		store:    xsync.NewMap[uuid.UUID, *File](),
		paths:    xsync.NewMap[uuid.UUID, string](),
		attempts: DefaultCollisionAttempts,
		log:      util.GetLogger("FileTree"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.root = t.adoptFolder(full, "")
	t.paths.Store(t.root.ID(), "")
	return t
}

// adoptFolder converts a full subtree rooted at base into proxies registered
// against t, recording paths for every node.
func (t *FileTree) adoptFolder(full *Folder[*File], base string) *Folder[*Proxy] {
	d := NewFolderAs[*Proxy](full.ID())
	for i := 0; i < full.Len(); i++ {
		name, item := full.At(i)
		p := JoinPath(base, name)
		if f, ok := item.File(); ok {
			t.store.Store(f.ItemID(), f)
			t.paths.Store(f.ItemID(), p)
			d.insertNamed(FileItem(&Proxy{id: f.ItemID(), owner: weak.Make(t)}), name, d.Len(), true)
		} else if sub, ok := item.Folder(); ok {
			proxySub := t.adoptFolder(sub, p)
			t.paths.Store(proxySub.ID(), p)
			d.insertNamed(FolderItem(proxySub), name, d.Len(), true)
		}
	}
	return d
}

// Root returns the navigable proxy tree.
func (t *FileTree) Root() *Folder[*Proxy] { return t.root }

func (t *FileTree) fileByID(id uuid.UUID) (*File, bool) {
	return t.store.Load(id)
}

// ProxyFor returns a fresh handle for a registered file id.
func (t *FileTree) ProxyFor(id uuid.UUID) (*Proxy, bool) {
	if _, ok := t.store.Load(id); !ok {
		return nil, false
	}
	return &Proxy{id: id, owner: weak.Make(t)}, true
}

// PathOf is a direct cache lookup; the root maps to the empty path.
func (t *FileTree) PathOf(id uuid.UUID) (string, bool) {
	return t.paths.Load(id)
}

// LookupItem descends from the root one path component at a time through
// the proxy tree. The cache accelerates id→path, not path→item.
func (t *FileTree) LookupItem(path string) (Item[*Proxy], bool) {
	if path == "" {
		return FolderItem(t.root), true
	}
	cur := t.root
	rest := path
	for {
		name, tail := SplitPath(rest)
		item, ok := cur.Get(name)
		if !ok {
			return Item[*Proxy]{}, false
		}
		if tail == "" {
			return item, true
		}
		sub, ok := item.Folder()
		if !ok {
			return Item[*Proxy]{}, false
		}
		cur, rest = sub, tail
	}
}

// LookupFolder is LookupItem restricted to folders.
func (t *FileTree) LookupFolder(path string) (*Folder[*Proxy], bool) {
	item, ok := t.LookupItem(path)
	if !ok {
		return nil, false
	}
	return item.Folder()
}

// SetFolder replaces the folder at path with repl, but only when the folder
// currently there carries the same id. This defends against replacing the
// wrong node from a stale path captured before a concurrent edit.
//
// The id guard is the only check: the caller owns registry consistency and
// must ensure repl's subtree references only ids already registered with
// this tree, with their cached paths still accurate. For structural edits
// prefer Add/Rename/Remove, which do that bookkeeping.
func (t *FileTree) SetFolder(path string, repl *Folder[*Proxy]) bool {
	if path == "" {
		if t.root.ID() != repl.ID() {
			return false
		}
		t.root = repl
		return true
	}
	parentPath, name := ParentPath(path)
	parent, ok := t.LookupFolder(parentPath)
	if !ok {
		return false
	}
	idx := parent.indexOf(name)
	if idx < 0 {
		return false
	}
	cur, ok := parent.entries[idx].item.Folder()
	if !ok || cur.ID() != repl.ID() {
		return false
	}
	parent.entries[idx].item = FolderItem(repl)
	return true
}

// SetContents replaces the stored content for id with a fresh dirty File
// sharing the identifier. Reports false when id is not registered.
func (t *FileTree) SetContents(id uuid.UUID, c doctree.Content) bool {
	f, ok := t.store.Load(id)
	if !ok {
		return false
	}
	t.store.Store(id, f.WithContents(c))
	return true
}

// Flush runs the pre-serialization hook on every stored file.
func (t *FileTree) Flush() error {
	var ferr error
	t.store.Range(func(_ uuid.UUID, f *File) bool {
		if err := f.Flush(); err != nil {
			ferr = err
			return false
		}
		return true
	})
	return ferr
}

// Snapshot flushes the store and performs the inverse of Materialize,
// producing a self-contained full tree. A reachable proxy that fails to
// resolve means the tree and store desynchronized; that is a model bug and
// surfaces loudly as ErrInvariant.
func (t *FileTree) Snapshot() (*Folder[*File], error) {
	if err := t.Flush(); err != nil {
		return nil, err
	}
	return t.snapshotFolder(t.root)
}

func (t *FileTree) snapshotFolder(d *Folder[*Proxy]) (*Folder[*File], error) {
	out := NewFolderAs[*File](d.ID())
	for i := 0; i < d.Len(); i++ {
		name, item := d.At(i)
		if leaf, ok := item.File(); ok {
			f, ok := t.fileByID(leaf.ItemID())
			if !ok {
				t.log.Error().Stringer("id", leaf.ItemID()).Str("name", name).
					Msg("reachable proxy has no store entry")
				return nil, fmt.Errorf("%w: proxy %s (%s) does not resolve",
					doctree.ErrInvariant, leaf.ItemID(), name)
			}
			out.insertNamed(FileItem(f), name, out.Len(), true)
		} else if sub, ok := item.Folder(); ok {
			full, err := t.snapshotFolder(sub)
			if err != nil {
				return nil, err
			}
			out.insertNamed(FolderItem(full), name, out.Len(), true)
		}
	}
	return out, nil
}

// Clone returns an independent FileTree with the same state. The proxy
// skeleton is copied (structure-proportional) and both registries are
// copied entry-wise; File values are shared, which is safe because content
// updates replace them rather than mutate them.
func (t *FileTree) Clone() *FileTree {
	c := &FileTree{
		store:    xsync.NewMap[uuid.UUID, *File](),
		paths:    xsync.NewMap[uuid.UUID, string](),
		attempts: t.attempts,
		log:      t.log,
	}
	t.store.Range(func(id uuid.UUID, f *File) bool {
		c.store.Store(id, f)
		return true
	})
	t.paths.Range(func(id uuid.UUID, p string) bool {
		c.paths.Store(id, p)
		return true
	})
	c.root = c.rebindFolder(t.root)
	return c
}

// Restore replaces t's state with snap's (undo/redo). snap stays usable.
func (t *FileTree) Restore(snap *FileTree) {
	store := xsync.NewMap[uuid.UUID, *File]()
	snap.store.Range(func(id uuid.UUID, f *File) bool {
		store.Store(id, f)
		return true
	})
	paths := xsync.NewMap[uuid.UUID, string]()
	snap.paths.Range(func(id uuid.UUID, p string) bool {
		paths.Store(id, p)
		return true
	})
	t.store = store
	t.paths = paths
	t.root = t.rebindFolder(snap.root)
}

// rebindFolder copies a proxy skeleton with every proxy re-owned by t.
func (t *FileTree) rebindFolder(d *Folder[*Proxy]) *Folder[*Proxy] {
	out := NewFolderAs[*Proxy](d.ID())
	for i := 0; i < d.Len(); i++ {
		name, item := d.At(i)
		if leaf, ok := item.File(); ok {
			p := &Proxy{id: leaf.ItemID(), owner: weak.Make(t)}
			out.insertNamed(FileItem(p), name, out.Len(), true)
		} else if sub, ok := item.Folder(); ok {
			out.insertNamed(FolderItem(t.rebindFolder(sub)), name, out.Len(), true)
		}
	}
	return out
}
