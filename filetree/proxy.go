package filetree

import (
	"weak"

	"github.com/google/uuid"
)

// Proxy is a lightweight file handle: an identifier plus a non-owning
// back-reference to the tree whose store holds the real [File]. Proxies are
// what UI layers keep long-lived references to; they stay cheap to copy and
// never dangle, they just stop resolving.
//
// The back-reference is weak so outstanding proxies cannot keep an otherwise
// dropped FileTree reachable.
type Proxy struct {
	id    uuid.UUID
	owner weak.Pointer[FileTree]
}

func (p *Proxy) ItemID() uuid.UUID { return p.id }

// Resolve looks up the current File in the owning tree's content store.
// ok is false once the owner is gone or the id was removed from the tree;
// a stale proxy never yields a stale value.
func (p *Proxy) Resolve() (*File, bool) {
	t := p.owner.Value()
	if t == nil {
		return nil, false
	}
	return t.fileByID(p.id)
}

// SameContents compares the resolved payloads. Proxies with the same id are
// equal without resolving; if either side fails to resolve the answer is
// false.
func (p *Proxy) SameContents(other *Proxy) bool {
	if other == nil {
		return false
	}
	if p.id == other.id {
		return true
	}
	a, ok := p.Resolve()
	if !ok {
		return false
	}
	b, ok := other.Resolve()
	if !ok {
		return false
	}
	return a.SameContents(b)
}
