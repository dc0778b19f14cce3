package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
)

func snap(name string) *domain.Project {
	return &domain.Project{PublicID: "plan-1", Name: name}
}

func TestHistory_UndoRedo(t *testing.T) {
	t.Run("undo returns the last recorded snapshot", func(t *testing.T) {
		h := New(10)
		h.RecordBeforeMutation(snap("v0"))

		restored, ok := h.Undo(snap("v1"))
		require.True(t, ok)
		assert.Equal(t, "v0", restored.Name)
	})

	t.Run("redo is the inverse of undo", func(t *testing.T) {
		h := New(10)
		h.RecordBeforeMutation(snap("v0"))

		restored, ok := h.Undo(snap("v1"))
		require.True(t, ok)
		assert.Equal(t, "v0", restored.Name)

		restored, ok = h.Redo(restored)
		require.True(t, ok)
		assert.Equal(t, "v1", restored.Name)

		// And back again.
		restored, ok = h.Undo(restored)
		require.True(t, ok)
		assert.Equal(t, "v0", restored.Name)
	})

	t.Run("empty stacks report not ok", func(t *testing.T) {
		h := New(10)
		_, ok := h.Undo(snap("cur"))
		assert.False(t, ok)
		_, ok = h.Redo(snap("cur"))
		assert.False(t, ok)
		assert.False(t, h.CanUndo())
		assert.False(t, h.CanRedo())
	})

	t.Run("a new mutation clears the redo stack", func(t *testing.T) {
		h := New(10)
		h.RecordBeforeMutation(snap("v0"))

		_, ok := h.Undo(snap("v1"))
		require.True(t, ok)
		require.True(t, h.CanRedo())

		h.RecordBeforeMutation(snap("v0b"))
		assert.False(t, h.CanRedo())
	})
}

func TestHistory_DepthEviction(t *testing.T) {
	h := New(3)
	for i := 0; i < 5; i++ {
		h.RecordBeforeMutation(snap(fmt.Sprintf("v%d", i)))
	}

	// Only the newest 3 snapshots survive: v4, v3, v2.
	for _, want := range []string{"v4", "v3", "v2"} {
		restored, ok := h.Undo(snap("cur"))
		require.True(t, ok)
		assert.Equal(t, want, restored.Name)
	}
	_, ok := h.Undo(snap("cur"))
	assert.False(t, ok)
}

func TestHistory_Reset(t *testing.T) {
	h := New(10)
	h.RecordBeforeMutation(snap("v0"))
	_, ok := h.Undo(snap("v1"))
	require.True(t, ok)

	h.Reset()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}
