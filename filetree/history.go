package filetree

// History implements undo/redo as whole-tree snapshot/restore: Checkpoint
// clones the live tree's state before a mutating operation, Undo swaps the
// last clone back in and enqueues a symmetric redo. No diffing or partial
// rollback; operations are individually atomic so every restored state is
// valid by construction.
type History struct {
	target *FileTree
	undo   []*FileTree
	redo   []*FileTree
	limit  int
}

// NewHistory tracks t. limit bounds the undo depth; 0 means unbounded.
func NewHistory(t *FileTree, limit int) *History {
	return &History{target: t, limit: limit}
}

// Checkpoint records the current state as an undo point and clears the redo
// stack. Call it immediately before a mutating operation.
func (h *History) Checkpoint() {
	h.undo = append(h.undo, h.target.Clone())
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

// Discard drops the most recent checkpoint without restoring it. Used when
// the operation the checkpoint was taken for turned out to be a no-op.
func (h *History) Discard() {
	if n := len(h.undo); n > 0 {
		h.undo = h.undo[:n-1]
	}
}

// CanUndo reports whether an undo point exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo point exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo restores the most recent checkpoint.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	h.redo = append(h.redo, h.target.Clone())
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.target.Restore(last)
	return true
}

// Redo reverses the most recent Undo.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	h.undo = append(h.undo, h.target.Clone())
	last := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.target.Restore(last)
	return true
}
