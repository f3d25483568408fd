package storage

import (
	"bytes"
	"fmt"

	"github.com/brettbedarf/doctree"
	"github.com/brettbedarf/doctree/filetree"
	"github.com/brettbedarf/doctree/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultIDMapName is the reserved hidden entry holding the identifier map.
const DefaultIDMapName = ".FileMap"

// Store binds a Provider to the save/load contract for full trees.
type Store struct {
	p         Provider
	idMapName string
	log       zerolog.Logger
}

// StoreOption is a functional option for configuring a Store.
type StoreOption func(*Store)

// WithIDMapName overrides the reserved identifier-map entry name.
func WithIDMapName(name string) StoreOption {
	return func(s *Store) {
		if name != "" {
			s.idMapName = name
		}
	}
}

// WithLogger scopes the store's diagnostic logger.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func NewStore(p Provider, opts ...StoreOption) *Store {
	s := &Store{
		p:         p,
		idMapName: DefaultIDMapName,
		log:       util.GetLogger("Store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save flushes all dirty content, serializes the tree into the byte tree at
// dir (entries named by the current child names, so a prior rename is
// reflected even when content bytes are untouched), and writes the
// identifier map to the reserved entry. The reserved entry is left untouched
// when its serialized bytes are unchanged, to avoid spurious diffs under
// external version control.
func (s *Store) Save(dir string, root *filetree.Folder[*filetree.File]) error {
	var ferr error
	root.Walk(func(p string, item filetree.Item[*filetree.File]) bool {
		if f, ok := item.File(); ok {
			if err := f.Flush(); err != nil {
				ferr = fmt.Errorf("flush %s: %w", p, err)
				return false
			}
		}
		return true
	})
	if ferr != nil {
		return ferr
	}
	if err := s.writeFolder(dir, root, s.idMapName); err != nil {
		return err
	}
	return s.saveIDMap(dir, root)
}

// writeFolder writes one folder level and prunes entries that no longer
// exist in the tree. An on-disk entry whose kind differs from the tree's
// (a directory where a file now lives, or vice versa) is removed before
// the write; files and directories cannot be written over each other.
// reserved names one entry to leave alone (the id map at the document
// root).
func (s *Store) writeFolder(dir string, d *filetree.Folder[*filetree.File], reserved string) error {
	if err := s.p.MkdirAll(dir); err != nil {
		return err
	}
	ents, err := s.p.ReadDir(dir)
	if err != nil {
		return err
	}
	onDisk := make(map[string]Entry, len(ents))
	for _, e := range ents {
		onDisk[e.Name] = e
	}
	names := make(map[string]bool, d.Len())
	for i := 0; i < d.Len(); i++ {
		name, item := d.At(i)
		names[name] = true
		target := filetree.JoinPath(dir, name)
		isFolder := item.IsFolder()
		if e, ok := onDisk[name]; ok && e.Dir != isFolder {
			s.log.Debug().Str("entry", target).Msg("removing entry of changed kind")
			if err := s.p.Remove(target); err != nil {
				return err
			}
		}
		if f, ok := item.File(); ok {
			data, err := f.Serialize()
			if err != nil {
				return fmt.Errorf("serialize %s: %w", target, err)
			}
			if err := s.p.WriteFile(target, data); err != nil {
				return err
			}
		} else if sub, ok := item.Folder(); ok {
			if err := s.writeFolder(target, sub, ""); err != nil {
				return err
			}
		}
	}
	for name := range onDisk {
		if names[name] || name == reserved {
			continue
		}
		s.log.Debug().Str("entry", filetree.JoinPath(dir, name)).Msg("pruning stale entry")
		if err := s.p.Remove(filetree.JoinPath(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) saveIDMap(dir string, root *filetree.Folder[*filetree.File]) error {
	data, err := yaml.Marshal(idMapToDoc(filetree.IDMapOf(root)))
	if err != nil {
		return fmt.Errorf("encode id map: %w", err)
	}
	target := filetree.JoinPath(dir, s.idMapName)
	if prev, err := s.p.ReadFile(target); err == nil && bytes.Equal(prev, data) {
		return nil
	}
	return s.p.WriteFile(target, data)
}

// Load builds a full tree from the byte tree at dir. Identifier map entries
// are consulted per child path so items keep their persisted ids; paths not
// in the map (e.g. files added externally) get freshly minted ones. Any
// decode or shape failure aborts the whole load; no partial tree is
// returned.
func (s *Store) Load(dir string, dec doctree.Decoder) (*filetree.Folder[*filetree.File], error) {
	idm, err := s.loadIDMap(dir)
	if err != nil {
		return nil, err
	}
	return s.loadFolder(dir, idm, dec, true)
}

func (s *Store) loadFolder(dir string, idm *filetree.IDMap, dec doctree.Decoder, root bool) (*filetree.Folder[*filetree.File], error) {
	var d *filetree.Folder[*filetree.File]
	if idm != nil {
		d = filetree.NewFolderAs[*filetree.File](idm.ID)
	} else {
		d = filetree.NewFolder[*filetree.File]()
	}
	ents, err := s.p.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range ents {
		if root && e.Name == s.idMapName {
			continue
		}
		target := filetree.JoinPath(dir, e.Name)
		child := idm.Lookup(e.Name)
		switch {
		case e.Dir:
			sub, err := s.loadFolder(target, child, dec, false)
			if err != nil {
				return nil, err
			}
			d.InsertAt(filetree.FolderItem(sub), e.Name, d.Len())
		case e.Regular:
			data, err := s.p.ReadFile(target)
			if err != nil {
				return nil, err
			}
			var f *filetree.File
			if child != nil {
				f, err = filetree.DecodeFileAs(child.ID, e.Name, data, dec)
			} else {
				f, err = filetree.DecodeFile(e.Name, data, dec)
			}
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", target, err)
			}
			d.InsertAt(filetree.FileItem(f), e.Name, d.Len())
		default:
			return nil, fmt.Errorf("%w: %s is neither a regular file nor a directory",
				doctree.ErrStructure, target)
		}
	}
	return d, nil
}

func (s *Store) loadIDMap(dir string) (*filetree.IDMap, error) {
	target := filetree.JoinPath(dir, s.idMapName)
	ok, err := s.p.Exists(target)
	if err != nil || !ok {
		return nil, err
	}
	data, err := s.p.ReadFile(target)
	if err != nil {
		return nil, err
	}
	var doc idMapDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: id map: %v", doctree.ErrStructure, err)
	}
	m, err := idMapFromDoc(&doc)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// idMapDoc is the serialized shape of the identifier map: a key-value tree
// mirroring the folder structure with {id, children} at every level.
type idMapDoc struct {
	ID       string               `yaml:"id"`
	Children map[string]*idMapDoc `yaml:"children,omitempty"`
}

func idMapToDoc(m *filetree.IDMap) *idMapDoc {
	doc := &idMapDoc{ID: m.ID.String()}
	if len(m.Children) > 0 {
		doc.Children = make(map[string]*idMapDoc, len(m.Children))
		for name, child := range m.Children {
			doc.Children[name] = idMapToDoc(child)
		}
	}
	return doc
}

func idMapFromDoc(doc *idMapDoc) (*filetree.IDMap, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: id map entry %q: %v", doctree.ErrStructure, doc.ID, err)
	}
	m := &filetree.IDMap{ID: id}
	if len(doc.Children) > 0 {
		m.Children = make(map[string]*filetree.IDMap, len(doc.Children))
		for name, child := range doc.Children {
			cm, err := idMapFromDoc(child)
			if err != nil {
				return nil, err
			}
			m.Children[name] = cm
		}
	}
	return m, nil
}
