package filetree

import (
	"bytes"
	"fmt"

	"github.com/brettbedarf/doctree"
	"github.com/google/uuid"
)

// File is a leaf node that owns its content directly. The id is immutable
// for the node's lifetime; content updates go through [File.WithContents] so
// a stored File can be shared between tree clones without aliasing bugs.
type File struct {
	id       uuid.UUID
	contents doctree.Content
	// cached holds the last-known persisted bytes and doubles as the clean
	// flag: nil means dirty (needs re-serialization).
	cached []byte
}

// NewFile mints a fresh identifier for new content. The node starts dirty.
func NewFile(contents doctree.Content) *File {
	return &File{id: uuid.New(), contents: contents}
}

// DecodeFile builds a File from persisted bytes with a fresh identifier.
// The node starts clean: the input bytes are its last-known persisted form.
func DecodeFile(name string, data []byte, dec doctree.Decoder) (*File, error) {
	return DecodeFileAs(uuid.New(), name, data, dec)
}

// DecodeFileAs is DecodeFile with a caller-supplied (persisted) identifier.
func DecodeFileAs(id uuid.UUID, name string, data []byte, dec doctree.Decoder) (*File, error) {
	c, err := dec(name, data)
	if err != nil {
		return nil, err
	}
	return &File{id: id, contents: c, cached: data}, nil
}

func (f *File) ItemID() uuid.UUID { return f.id }

// Contents returns the payload. Callers must not mutate it in place; use
// WithContents to replace it.
func (f *File) Contents() doctree.Content { return f.contents }

// WithContents returns a new dirty File sharing this file's identifier.
func (f *File) WithContents(c doctree.Content) *File {
	return &File{id: f.id, contents: c}
}

// Dirty reports whether the content needs re-serialization.
func (f *File) Dirty() bool { return f.cached == nil }

// Flush runs the content's pre-serialization hook and, if dirty, serializes
// once and caches the result. Idempotent.
func (f *File) Flush() error {
	f.contents.Flush()
	if f.cached != nil {
		return nil
	}
	data, err := f.contents.MarshalBytes()
	if err != nil {
		return fmt.Errorf("%w: flush %s: %v", doctree.ErrEncode, f.id, err)
	}
	f.cached = data
	return nil
}

// Serialize returns the cached bytes if clean, otherwise serializes on
// demand without updating the cache. The result is the caller's to keep;
// mutating it never reaches the cache.
func (f *File) Serialize() ([]byte, error) {
	if f.cached != nil {
		return bytes.Clone(f.cached), nil
	}
	data, err := f.contents.MarshalBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: serialize %s: %v", doctree.ErrEncode, f.id, err)
	}
	return data, nil
}

// SameContents compares payloads only; identifier and cache state are
// ignored.
func (f *File) SameContents(other *File) bool {
	if other == nil {
		return false
	}
	return f.contents.Equal(other.contents)
}
