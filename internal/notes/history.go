// Package notes is the clinic's scratch pad: a text buffer with linear
// undo/redo plus saved snapshots.
package notes

// History tracks full-text snapshots of a single buffer.
// It is not safe for concurrent use.
type History struct {
	current string
	undo    []string
	redo    []string
	limit   int
}

// NewHistory creates an empty buffer. A positive limit caps the undo depth;
// the oldest snapshot is dropped once it is exceeded.
func NewHistory(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Record replaces the buffer with text, pushing the previous text onto the
// undo stack and clearing redo. Recording the same text is a no-op.
func (h *History) Record(text string) {
	if text == h.current {
		return
	}
	h.undo = append(h.undo, h.current)
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = h.redo[:0]
	h.current = text
}

// Undo restores the previous text. The bool is false when there is nothing
// to undo, in which case the current text is returned unchanged.
func (h *History) Undo() (string, bool) {
	if len(h.undo) == 0 {
		return h.current, false
	}
	last := len(h.undo) - 1
	h.redo = append(h.redo, h.current)
	h.current = h.undo[last]
	h.undo = h.undo[:last]
	return h.current, true
}

// Redo re-applies the most recently undone text.
func (h *History) Redo() (string, bool) {
	if len(h.redo) == 0 {
		return h.current, false
	}
	last := len(h.redo) - 1
	h.undo = append(h.undo, h.current)
	h.current = h.redo[last]
	h.redo = h.redo[:last]
	return h.current, true
}

// Current is the text in the buffer.
func (h *History) Current() string {
	return h.current
}

// CanUndo reports whether Undo would change the buffer.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would change the buffer.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
