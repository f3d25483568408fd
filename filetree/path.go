package filetree

import "strings"

// Paths are slash-joined child names relative to the tree root. The root
// itself is the empty path.

// JoinPath appends a child name to a parent path.
func JoinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// SplitPath splits off the first component: "a/b/c" -> ("a", "b/c").
// The second result is "" when path has a single component.
func SplitPath(path string) (string, string) {
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}

// ParentPath splits off the last component: "a/b/c" -> ("a/b", "c").
func ParentPath(path string) (string, string) {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return "", path
}
