// Package storage persists full trees to and from a hierarchical
// byte-oriented representation: a directory of directories and files, plus
// one reserved hidden entry carrying the identifier map.
package storage

// Entry describes one child of a byte-tree directory.
type Entry struct {
	Name    string
	Dir     bool
	Regular bool // regular file; loads reject entries that are neither
}

// Provider abstracts the byte tree documents are persisted to. Paths are
// slash-separated and relative to the provider root; "" is the root itself.
// ReadDir results are sorted by name.
type Provider interface {
	ReadDir(path string) ([]Entry, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
	// Remove deletes the entry at path, recursively for directories.
	// Removing a missing entry is not an error.
	Remove(path string) error
	// Exists reports whether any entry is present at path.
	Exists(path string) (bool, error)
}
