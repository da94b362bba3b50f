package selection

// History is an undo/redo log of polygon snapshots. The current polygon is
// owned by the caller and is never a member of either stack; a nil snapshot
// records the absent-polygon state.
type History struct {
	undo []*Polygon
	redo []*Polygon
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Push records the pre-mutation state and clears the redo stack. Call it
// exactly once before every mutating edit.
func (h *History) Push(current *Polygon) {
	h.undo = append(h.undo, current.Clone())
	h.redo = nil
}

// Undo pops the most recent snapshot, pushing current onto the redo stack.
// Returns false if there is nothing to undo.
func (h *History) Undo(current *Polygon) (*Polygon, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	return top, true
}

// Redo is the exact mirror of Undo.
func (h *History) Redo(current *Polygon) (*Polygon, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	return top, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
