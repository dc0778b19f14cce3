package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.Load(&domain.Project{
		PublicID: "plan-1",
		Name:     "Test House",
		Levels: []domain.Level{
			{
				ID:   "lvl_1",
				Name: "Ground Floor",
				Layers: []domain.Layer{
					{ID: "lay_1", Name: "Default", Visible: true},
				},
				ActiveLayerID: "lay_1",
			},
		},
	})
	return s
}

func testWall() domain.Wall {
	return domain.Wall{
		LayerID:   "lay_1",
		Start:     domain.Point{X: 0, Y: 0},
		End:       domain.Point{X: 5, Y: 0},
		Thickness: 0.2,
		Height:    2.7,
	}
}

func TestStore_MutationAtomicity(t *testing.T) {
	t.Run("rejected mutation changes nothing", func(t *testing.T) {
		s := newTestStore(t)

		// Invalid thickness fails validation.
		w := testWall()
		w.Thickness = 0
		_, err := s.AddWall("lvl_1", w)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))

		snap := s.Snapshot()
		assert.Empty(t, snap.Levels[0].Walls)
		assert.False(t, s.CanUndo(), "rejected mutation must not be recorded")
		assert.False(t, s.HasUnsavedChanges())
	})

	t.Run("mutation against a missing level is rejected", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddWall("lvl_nope", testWall())
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.False(t, s.CanUndo())
	})

	t.Run("no project loaded", func(t *testing.T) {
		s := New()
		_, err := s.AddWall("lvl_1", testWall())
		assert.ErrorIs(t, err, domain.ErrNoProject)
	})
}

func TestStore_LayerGating(t *testing.T) {
	t.Run("locked layer rejects artifact mutations", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.SetLayerLocked("lvl_1", "lay_1", true))

		_, err := s.AddWall("lvl_1", testWall())
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("hidden layer rejects artifact mutations", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.SetLayerVisible("lvl_1", "lay_1", false))

		_, err := s.AddWall("lvl_1", testWall())
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unlocking restores editability", func(t *testing.T) {
		s := newTestStore(t)
		require.NoError(t, s.SetLayerLocked("lvl_1", "lay_1", true))
		require.NoError(t, s.SetLayerLocked("lvl_1", "lay_1", false))

		_, err := s.AddWall("lvl_1", testWall())
		assert.NoError(t, err)
	})
}

func TestStore_LastLayerInvariant(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteLayer("lvl_1", "lay_1", "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	// With a second layer in place the first becomes deletable.
	id, err := s.AddLayer("lvl_1", "Annotations")
	require.NoError(t, err)
	require.NoError(t, s.DeleteLayer("lvl_1", "lay_1", ""))

	snap := s.Snapshot()
	require.Len(t, snap.Levels[0].Layers, 1)
	assert.Equal(t, id, snap.Levels[0].Layers[0].ID)
	assert.Equal(t, id, snap.Levels[0].ActiveLayerID, "active layer falls back after delete")
}

func TestStore_DeleteLayerArtifacts(t *testing.T) {
	t.Run("cascade deletes artifacts with the layer", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddLayer("lvl_1", "Sketch")
		require.NoError(t, err)
		snap := s.Snapshot()
		sketchID := snap.Levels[0].Layers[1].ID

		w := testWall()
		w.LayerID = sketchID
		_, err = s.AddWall("lvl_1", w)
		require.NoError(t, err)

		require.NoError(t, s.DeleteLayer("lvl_1", sketchID, ""))
		assert.Empty(t, s.Snapshot().Levels[0].Walls)
	})

	t.Run("reassign moves artifacts to the target layer", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddLayer("lvl_1", "Sketch")
		require.NoError(t, err)
		sketchID := s.Snapshot().Levels[0].Layers[1].ID

		w := testWall()
		w.LayerID = sketchID
		_, err = s.AddWall("lvl_1", w)
		require.NoError(t, err)

		require.NoError(t, s.DeleteLayer("lvl_1", sketchID, "lay_1"))
		walls := s.Snapshot().Levels[0].Walls
		require.Len(t, walls, 1)
		assert.Equal(t, "lay_1", walls[0].LayerID)
	})

	t.Run("reassign target must exist", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.AddLayer("lvl_1", "Sketch")
		require.NoError(t, err)
		sketchID := s.Snapshot().Levels[0].Layers[1].ID

		err = s.DeleteLayer("lvl_1", sketchID, "lay_nope")
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestStore_UndoRedoWalls(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddWall("lvl_1", testWall())
	require.NoError(t, err)
	require.True(t, s.CanUndo())

	// Undo removes the wall.
	require.True(t, s.Undo())
	assert.Empty(t, s.Snapshot().Levels[0].Walls)
	require.True(t, s.CanRedo())

	// Redo brings it back with the same id.
	require.True(t, s.Redo())
	walls := s.Snapshot().Levels[0].Walls
	require.Len(t, walls, 1)
	assert.Equal(t, id, walls[0].ID)

	// A fresh mutation invalidates redo.
	require.True(t, s.Undo())
	_, err = s.AddRoom("lvl_1", domain.Room{
		LayerID:  "lay_1",
		Name:     "Kitchen",
		Boundary: []domain.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 3}},
	})
	require.NoError(t, err)
	assert.False(t, s.CanRedo())
}

func TestStore_UndoPreservesSelection(t *testing.T) {
	s := newTestStore(t)

	layID, err := s.AddLayer("lvl_1", "Annotations")
	require.NoError(t, err)

	// Select the new layer, then mutate and undo past the selection change.
	require.NoError(t, s.SetActiveLayer("lvl_1", layID))
	_, err = s.AddWall("lvl_1", testWall())
	require.NoError(t, err)

	require.True(t, s.Undo())
	snap := s.Snapshot()
	assert.Equal(t, layID, snap.Levels[0].ActiveLayerID,
		"selection is view state and survives undo")

	// Undoing the layer creation itself drops the selection target; the
	// restored snapshot falls back to its own active layer.
	require.True(t, s.Undo())
	snap = s.Snapshot()
	assert.Equal(t, "lay_1", snap.Levels[0].ActiveLayerID)
}

func TestStore_SelectionNotRecorded(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddLayer("lvl_1", "Annotations")
	require.NoError(t, err)
	layID := s.Snapshot().Levels[0].Layers[1].ID

	before := s.Revision()
	require.NoError(t, s.SetActiveLayer("lvl_1", layID))
	require.NoError(t, s.SetActiveLevel("lvl_1"))

	assert.Equal(t, before, s.Revision(), "selection changes do not bump the revision")
	assert.Equal(t, "lvl_1", s.ActiveLevelID())
}

func TestStore_DirtyAndRevision(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.HasUnsavedChanges())

	r0 := s.Revision()
	_, err := s.AddWall("lvl_1", testWall())
	require.NoError(t, err)
	assert.True(t, s.HasUnsavedChanges())
	assert.Equal(t, r0+1, s.Revision())

	// Undo counts as a change too.
	require.True(t, s.Undo())
	assert.Equal(t, r0+2, s.Revision())
	assert.True(t, s.HasUnsavedChanges())

	// An explicit save clears the flag and stamps the version.
	s.MarkVersioned(7)
	assert.False(t, s.HasUnsavedChanges())
	assert.Equal(t, 7, s.Snapshot().Version)
}

func TestStore_ImportLevels(t *testing.T) {
	t.Run("import lands as one undo step", func(t *testing.T) {
		s := newTestStore(t)
		ids, err := s.ImportLevels([]domain.Level{
			{
				Name:   "First Floor",
				Layers: []domain.Layer{{ID: "l1", Name: "Default", Visible: true}},
				Walls:  []domain.Wall{{ID: "w1", LayerID: "l1", Thickness: 0.2}},
			},
			{
				Name:   "Second Floor",
				Layers: []domain.Layer{{ID: "l2", Name: "Default", Visible: true}},
			},
		})
		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Len(t, s.Snapshot().Levels, 3)

		require.True(t, s.Undo())
		assert.Len(t, s.Snapshot().Levels, 1, "both imported levels undone together")
	})

	t.Run("dangling layer reference rejects the whole batch", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.ImportLevels([]domain.Level{
			{
				Name:   "Broken",
				Layers: []domain.Layer{{ID: "l1", Name: "Default", Visible: true}},
				Walls:  []domain.Wall{{ID: "w1", LayerID: "l_ghost", Thickness: 0.2}},
			},
		})
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Len(t, s.Snapshot().Levels, 1)
	})
}

func TestStore_ApplyFixComments(t *testing.T) {
	s := newTestStore(t)

	ids, err := s.ApplyFixComments("aura", []FixProposal{
		{LevelID: "lvl_1", LayerID: "lay_1", Text: "Wall too thin for load-bearing"},
		{LevelID: "lvl_1", LayerID: "lay_1", Text: "Missing egress window"},
	})
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	comments := s.Snapshot().Levels[0].Comments
	require.Len(t, comments, 2)
	for _, c := range comments {
		assert.Equal(t, "aura", c.Author)
		assert.False(t, c.Resolved)
	}

	// One undo removes the whole batch.
	require.True(t, s.Undo())
	assert.Empty(t, s.Snapshot().Levels[0].Comments)
}

func TestStore_Comments(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddComment("lvl_1", domain.Comment{
		LayerID: "lay_1",
		Author:  "uid-1",
		Text:    "Move this door",
	})
	require.NoError(t, err)

	require.NoError(t, s.ReplyToComment("lvl_1", id, "uid-2", "Agreed"))
	require.NoError(t, s.SetCommentResolved("lvl_1", id, true))

	// Replies still land on resolved comments.
	require.NoError(t, s.ReplyToComment("lvl_1", id, "uid-1", "Done"))

	c := s.Snapshot().Levels[0].FindComment(id)
	require.NotNil(t, c)
	assert.True(t, c.Resolved)
	assert.Len(t, c.Replies, 2)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	snap.Levels[0].Name = "Tampered"

	assert.Equal(t, "Ground Floor", s.Snapshot().Levels[0].Name,
		"snapshots never alias the live document")
}

func TestStore_PlanNorth(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetPlanNorth(45))
	assert.InDelta(t, 45.0, s.Snapshot().PlanNorth, 0.001)

	err := s.SetPlanNorth(360)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
