// Package store owns the live project document. Every structural change goes
// through a named mutation that validates its target, records a pre-mutation
// snapshot into the command history and only then touches the document, so a
// rejected mutation leaves the project byte-identical.
package store

import (
	"sync"
	"time"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/history"
)

type Store struct {
	mu            sync.Mutex
	project       *domain.Project
	hist          *history.History
	dirty         bool
	rev           uint64
	activeLevelID string
}

func New() *Store {
	return &Store{hist: history.New(history.DefaultDepth)}
}

// Load replaces the open project. History and the dirty flag are reset; the
// first level becomes the active one.
func (s *Store) Load(p *domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = p
	s.hist.Reset()
	s.dirty = false
	s.rev = 0
	s.activeLevelID = ""
	if p != nil && len(p.Levels) > 0 {
		s.activeLevelID = p.Levels[0].ID
	}
}

// Unload drops the open project without persisting anything. Callers are
// responsible for flushing unsaved changes first.
func (s *Store) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = nil
	s.hist.Reset()
	s.dirty = false
	s.activeLevelID = ""
}

func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project != nil
}

func (s *Store) PublicID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ""
	}
	return s.project.PublicID
}

// Snapshot returns a deep clone of the current project, or nil when none is
// loaded. The clone never aliases the live document.
func (s *Store) Snapshot() *domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

func (s *Store) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Revision increments on every applied mutation (including undo/redo). The
// autosave service uses it to skip draft writes when nothing changed.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rev
}

// MarkVersioned records a successful explicit save: the project adopts the
// persisted version number and the dirty flag clears.
func (s *Store) MarkVersioned(versionNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project != nil {
		s.project.Version = versionNumber
	}
	s.dirty = false
}

func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// Undo restores the most recent pre-mutation snapshot. It is a no-op when the
// undo stack is empty; availability is reported through CanUndo, not an error.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return false
	}
	restored, ok := s.hist.Undo(s.project)
	if !ok {
		return false
	}
	s.restoreLocked(restored)
	return true
}

// Redo re-applies the most recently undone mutation. No-op on an empty stack.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return false
	}
	restored, ok := s.hist.Redo(s.project)
	if !ok {
		return false
	}
	s.restoreLocked(restored)
	return true
}

// restoreLocked swaps in a snapshot, carrying the current selection over:
// active level/layer are view state and must survive undo/redo.
func (s *Store) restoreLocked(restored *domain.Project) {
	for i := range restored.Levels {
		if cur := s.project.FindLevel(restored.Levels[i].ID); cur != nil {
			if restored.Levels[i].FindLayer(cur.ActiveLayerID) != nil {
				restored.Levels[i].ActiveLayerID = cur.ActiveLayerID
			}
		}
	}
	s.project = restored
	s.dirty = true
	s.rev++
	if s.project.FindLevel(s.activeLevelID) == nil && len(s.project.Levels) > 0 {
		s.activeLevelID = s.project.Levels[0].ID
	}
}

// ActiveLevelID reports the current level selection.
func (s *Store) ActiveLevelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLevelID
}

// SetActiveLevel switches the level selection. Selection is view state: it is
// validated but never recorded into history and never marks the store dirty.
func (s *Store) SetActiveLevel(levelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return domain.ErrNoProject
	}
	if s.project.FindLevel(levelID) == nil {
		return domain.Validationf("level %q does not exist", levelID)
	}
	s.activeLevelID = levelID
	return nil
}

// SetActiveLayer switches the layer selection within a level. Like
// SetActiveLevel it is excluded from undo history.
func (s *Store) SetActiveLayer(levelID, layerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return domain.ErrNoProject
	}
	lvl := s.project.FindLevel(levelID)
	if lvl == nil {
		return domain.Validationf("level %q does not exist", levelID)
	}
	if lvl.FindLayer(layerID) == nil {
		return domain.Validationf("layer %q does not exist in level %q", layerID, levelID)
	}
	lvl.ActiveLayerID = layerID
	return nil
}

// mutate runs one named mutation. op validates against the live project and
// returns an apply closure; when validation fails nothing is recorded and
// nothing changes.
func (s *Store) mutate(op func(p *domain.Project) (apply func(), err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return domain.ErrNoProject
	}
	apply, err := op(s.project)
	if err != nil {
		return err
	}
	s.hist.RecordBeforeMutation(s.project.Clone())
	apply()
	s.project.UpdatedAt = time.Now()
	s.dirty = true
	s.rev++
	return nil
}

// editableLayer checks the layer exists in the level and accepts mutations.
// Locked layers reject all artifact changes; hidden layers are excluded from
// active editing.
func editableLayer(lvl *domain.Level, layerID string) (*domain.Layer, error) {
	layer := lvl.FindLayer(layerID)
	if layer == nil {
		return nil, domain.Validationf("layer %q does not exist in level %q", layerID, lvl.ID)
	}
	if layer.Locked {
		return nil, domain.Validationf("layer %q is locked", layer.Name)
	}
	if !layer.Visible {
		return nil, domain.Validationf("layer %q is hidden", layer.Name)
	}
	return layer, nil
}
