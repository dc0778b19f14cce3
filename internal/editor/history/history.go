// Package history keeps the undo/redo stacks for a single open project.
// Entries are full pre-mutation snapshots; the document store records one
// before every mutation it applies.
package history

import (
	"github.com/arkiform/go-plan-backend/internal/editor/domain"
)

// DefaultDepth bounds how many undo steps are retained. The oldest entry is
// evicted once the stack is full.
const DefaultDepth = 50

type History struct {
	depth int
	undo  []*domain.Project
	redo  []*domain.Project
}

func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth}
}

// RecordBeforeMutation pushes the pre-mutation snapshot onto the undo stack
// and invalidates any forward history. The caller passes a clone; the history
// owns it afterwards.
func (h *History) RecordBeforeMutation(snapshot *domain.Project) {
	if snapshot == nil {
		return
	}
	if len(h.undo) >= h.depth {
		h.undo = h.undo[1:]
	}
	h.undo = append(h.undo, snapshot)
	h.redo = nil
}

// Undo returns the most recent snapshot and moves the current state onto the
// redo stack. ok is false when there is nothing to undo.
func (h *History) Undo(current *domain.Project) (restored *domain.Project, ok bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	restored = h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)
	return restored, true
}

// Redo is the inverse of Undo. ok is false when there is nothing to redo.
func (h *History) Redo(current *domain.Project) (restored *domain.Project, ok bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	restored = h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)
	return restored, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Reset drops both stacks. Used when a different project is loaded.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}
