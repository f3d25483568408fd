package doctree

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Text is a plain UTF-8 text payload. It is the reference Content used by
// the CLI and the test suites.
type Text struct {
	Value string
}

// NewText wraps a string as text content.
func NewText(s string) *Text { return &Text{Value: s} }

// DecodeText is a [Decoder] that rejects bytes which are not valid UTF-8.
func DecodeText(name string, data []byte) (Content, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrDecode, name)
	}
	return &Text{Value: string(data)}, nil
}

func (t *Text) Equal(other Content) bool {
	o, ok := other.(*Text)
	return ok && o.Value == t.Value
}

// Flush is a no-op; text has no derived cache.
func (t *Text) Flush() {}

func (t *Text) MarshalBytes() ([]byte, error) {
	return []byte(t.Value), nil
}

// Blob is an opaque byte payload. Decoding never fails, which makes it the
// fallback for entries no richer decoder claims.
type Blob struct {
	Data []byte
}

// DecodeBlob is a [Decoder] that accepts any bytes.
func DecodeBlob(name string, data []byte) (Content, error) {
	return &Blob{Data: bytes.Clone(data)}, nil
}

func (b *Blob) Equal(other Content) bool {
	o, ok := other.(*Blob)
	return ok && bytes.Equal(o.Data, b.Data)
}

func (b *Blob) Flush() {}

func (b *Blob) MarshalBytes() ([]byte, error) {
	return bytes.Clone(b.Data), nil
}
