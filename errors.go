package doctree

import "errors"

// Error taxonomy shared by the model and the persistence layer. All failures
// returned from this module wrap one of these sentinels so callers can
// classify with errors.Is.
var (
	// ErrDecode means content bytes could not be interpreted as the expected
	// payload. A single node failing to decode aborts an entire load.
	ErrDecode = errors.New("cannot decode content")

	// ErrEncode means content could not produce bytes at save time.
	ErrEncode = errors.New("cannot encode content")

	// ErrStructure means an external byte tree does not match the expected
	// file/folder shape (e.g. an entry is neither a regular file nor a
	// directory, or a nested bootstrap value has an unrecognized type).
	ErrStructure = errors.New("unexpected tree structure")

	// ErrInvariant is an internal consistency failure, e.g. a reachable proxy
	// that does not resolve during a snapshot. It indicates a model bug, not
	// a user-facing condition.
	ErrInvariant = errors.New("tree invariant violated")
)
