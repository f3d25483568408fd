// Package document ties a storage provider, runtime configuration, and the
// live FileTree together for one opened document directory. It is the
// surface the CLI (or an embedding application) talks to; the model packages
// underneath stay UI-agnostic.
package document

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/brettbedarf/doctree"
	"github.com/brettbedarf/doctree/config"
	"github.com/brettbedarf/doctree/filetree"
	"github.com/brettbedarf/doctree/internal/util"
	"github.com/brettbedarf/doctree/storage"
)

type Document struct {
	cfg   *config.Config
	prov  storage.Provider
	store *storage.Store
	dir   string
	dec   doctree.Decoder
	tree  *filetree.FileTree
	hist  *filetree.History
	log   zerolog.Logger
}

// Open loads the byte tree at dir through prov and materializes it. A nil
// cfg means defaults.
func Open(prov storage.Provider, dir string, dec doctree.Decoder, cfg *config.Config) (*Document, error) {
	d := newDocument(prov, dir, dec, cfg)
	full, err := d.store.Load(dir, dec)
	if err != nil {
		return nil, err
	}
	d.adopt(full)
	return d, nil
}

// New creates a document over an empty tree, without touching storage until
// the first Save.
func New(prov storage.Provider, dir string, dec doctree.Decoder, cfg *config.Config) *Document {
	d := newDocument(prov, dir, dec, cfg)
	d.adopt(filetree.NewFolder[*filetree.File]())
	return d
}

func newDocument(prov storage.Provider, dir string, dec doctree.Decoder, cfg *config.Config) *Document {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	log := util.GetLogger("Document").With().Str("dir", dir).Logger()
	return &Document{
		cfg:  cfg,
		prov: prov,
		store: storage.NewStore(prov,
			storage.WithIDMapName(cfg.IDMapName),
			storage.WithLogger(log)),
		dir: dir,
		dec: dec,
		log: log,
	}
}

func (d *Document) adopt(full *filetree.Folder[*filetree.File]) {
	d.tree = filetree.Materialize(full,
		filetree.WithLogger(d.log),
		filetree.WithCollisionAttempts(d.cfg.CollisionAttempts))
	d.hist = filetree.NewHistory(d.tree, d.cfg.UndoDepth)
}

// Tree exposes the live registry for direct structural access.
func (d *Document) Tree() *filetree.FileTree { return d.tree }

// History exposes the undo/redo stacks.
func (d *Document) History() *filetree.History { return d.hist }

// Save snapshots the tree and writes it back through the provider.
func (d *Document) Save() error {
	snap, err := d.tree.Snapshot()
	if err != nil {
		return err
	}
	return d.store.Save(d.dir, snap)
}

// Reload replaces the live tree with the current storage state. History is
// reset; undo does not cross a reload.
func (d *Document) Reload() error {
	full, err := d.store.Load(d.dir, d.dec)
	if err != nil {
		return err
	}
	d.adopt(full)
	return nil
}

// AddFile inserts new content under parentPath with a checkpoint for undo.
// Returns the actual (possibly renumbered) child name; ok is false when the
// collision budget was exhausted and nothing changed.
func (d *Document) AddFile(parentPath, preferred string, c doctree.Content) (string, bool, error) {
	return d.addItem(parentPath, preferred, filetree.FileItem(filetree.NewFile(c)))
}

// AddFolder inserts a new empty folder under parentPath.
func (d *Document) AddFolder(parentPath, preferred string) (string, bool, error) {
	return d.addItem(parentPath, preferred, filetree.FolderItem(filetree.NewFolder[*filetree.File]()))
}

func (d *Document) addItem(parentPath, preferred string, item filetree.Item[*filetree.File]) (string, bool, error) {
	parent, ok := d.tree.LookupFolder(parentPath)
	if !ok {
		return "", false, fmt.Errorf("no folder at %q", parentPath)
	}
	d.hist.Checkpoint()
	name, ok := d.tree.Add(parent, item, preferred)
	if !ok {
		d.hist.Discard()
		return "", false, nil
	}
	return name, true, nil
}

// Rename renames a child of the folder at parentPath. ok is false on a name
// collision (the tree is untouched).
func (d *Document) Rename(parentPath, oldName, newName string, keepPosition bool) (bool, error) {
	parent, ok := d.tree.LookupFolder(parentPath)
	if !ok {
		return false, fmt.Errorf("no folder at %q", parentPath)
	}
	d.hist.Checkpoint()
	if !d.tree.Rename(parent, oldName, newName, keepPosition) {
		d.hist.Discard()
		return false, nil
	}
	return true, nil
}

// Remove deletes the item at path. ok is false when nothing was there.
func (d *Document) Remove(path string) (bool, error) {
	parentPath, name := filetree.ParentPath(path)
	parent, ok := d.tree.LookupFolder(parentPath)
	if !ok {
		return false, fmt.Errorf("no folder at %q", parentPath)
	}
	d.hist.Checkpoint()
	if _, ok := d.tree.Remove(parent, name); !ok {
		d.hist.Discard()
		return false, nil
	}
	return true, nil
}

// Undo restores the last checkpoint.
func (d *Document) Undo() bool { return d.hist.Undo() }

// Redo reverses the last Undo.
func (d *Document) Redo() bool { return d.hist.Redo() }
