package storage

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Mem is an in-memory Provider used as a test double and for scratch
// documents. Directories are tracked explicitly so empty folders survive a
// round trip.
type Mem struct {
	files  map[string][]byte
	dirs   map[string]bool
	writes int // WriteFile calls; inspected by tests
}

func NewMem() *Mem {
	return &Mem{
		files: make(map[string][]byte),
		dirs:  map[string]bool{"": true},
	}
}

func cleanMemPath(path string) string {
	return strings.Trim(path, "/")
}

func (m *Mem) ReadDir(path string) ([]Entry, error) {
	path = cleanMemPath(path)
	if !m.dirs[path] {
		return nil, fmt.Errorf("storage: not a directory: %s", path)
	}
	seen := map[string]Entry{}
	collect := func(p string, dir bool) {
		rel, ok := childOf(path, p)
		if !ok {
			return
		}
		first := rel
		if i := strings.IndexByte(rel, '/'); i >= 0 {
			first = rel[:i]
		}
		if first == "" {
			return
		}
		isDir := dir || strings.ContainsRune(rel, '/')
		if e, ok := seen[first]; !ok || (!e.Dir && isDir) {
			seen[first] = Entry{Name: first, Dir: isDir, Regular: !isDir}
		}
	}
	for p := range m.files {
		collect(p, false)
	}
	for p := range m.dirs {
		collect(p, true)
	}
	out := make([]Entry, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// childOf reports whether p lives under dir and returns the remainder.
func childOf(dir, p string) (string, bool) {
	if dir == "" {
		return p, p != ""
	}
	if strings.HasPrefix(p, dir+"/") {
		return p[len(dir)+1:], true
	}
	return "", false
}

func (m *Mem) ReadFile(path string) ([]byte, error) {
	path = cleanMemPath(path)
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("storage: no such file: %s", path)
	}
	return bytes.Clone(data), nil
}

func (m *Mem) WriteFile(path string, data []byte) error {
	path = cleanMemPath(path)
	if path == "" {
		return fmt.Errorf("storage: empty path")
	}
	m.mkdirs(parentDir(path))
	m.files[path] = bytes.Clone(data)
	m.writes++
	return nil
}

func (m *Mem) MkdirAll(path string) error {
	m.mkdirs(cleanMemPath(path))
	return nil
}

func (m *Mem) mkdirs(path string) {
	for path != "" {
		m.dirs[path] = true
		path = parentDir(path)
	}
}

func parentDir(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

func (m *Mem) Remove(path string) error {
	path = cleanMemPath(path)
	if path == "" {
		return fmt.Errorf("storage: refusing to remove document root")
	}
	delete(m.files, path)
	delete(m.dirs, path)
	for p := range m.files {
		if strings.HasPrefix(p, path+"/") {
			delete(m.files, p)
		}
	}
	for p := range m.dirs {
		if strings.HasPrefix(p, path+"/") {
			delete(m.dirs, p)
		}
	}
	return nil
}

func (m *Mem) Exists(path string) (bool, error) {
	path = cleanMemPath(path)
	if _, ok := m.files[path]; ok {
		return true, nil
	}
	return m.dirs[path], nil
}
