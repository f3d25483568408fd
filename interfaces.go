package doctree

// Content is the payload capability a host application supplies for file
// nodes. The model never inspects payloads beyond these operations.
type Content interface {
	// Equal reports structural equality of payloads. Implementations should
	// return false for payloads of a different concrete type.
	Equal(other Content) bool

	// Flush lets implementations update any cached derived bytes before
	// serialization. Called once per save; must be idempotent.
	Flush()

	// MarshalBytes serializes the payload. Errors should wrap [ErrEncode].
	MarshalBytes() ([]byte, error)
}

// Decoder constructs a Content from a file name and raw bytes. Errors should
// wrap [ErrDecode]. The name is advisory (e.g. to pick a representation by
// extension); the model never bakes it into the payload, so renames never
// force a re-encode.
type Decoder func(name string, data []byte) (Content, error)
