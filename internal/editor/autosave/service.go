// Package autosave persists the open project: periodic working drafts to
// Redis and explicit, commit-messaged versions to Postgres. At most one save
// (auto or explicit) is in flight per session; a save requested while another
// runs waits for it instead of issuing a concurrent write.
package autosave

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/store"
	"github.com/arkiform/go-plan-backend/internal/notify"
)

// VersionStore is the durable, user-visible version history.
type VersionStore interface {
	SaveVersion(ctx context.Context, userUID, projectPublicID, message string, snapshot json.RawMessage) (*domain.ProjectVersion, error)
}

// DraftStore holds working snapshots that are not user-visible versions.
type DraftStore interface {
	Save(ctx context.Context, projectPublicID string, snapshot json.RawMessage) error
	Delete(ctx context.Context, projectPublicID string) error
}

type Service struct {
	store    *store.Store
	versions VersionStore
	drafts   DraftStore
	notes    *notify.Stream

	// saveMu serializes every persistence write for this session.
	saveMu sync.Mutex

	mu            sync.Mutex
	lastDraftRev  uint64
	draftSavedYet bool
}

func New(st *store.Store, versions VersionStore, drafts DraftStore, notes *notify.Stream) *Service {
	return &Service{store: st, versions: versions, drafts: drafts, notes: notes}
}

// Autosave writes a working draft if the project is loaded, dirty, and has
// changed since the last draft. Failures are logged and retried on the next
// tick; the in-memory project stays authoritative.
func (s *Service) Autosave(ctx context.Context) error {
	if !s.store.Loaded() || !s.store.HasUnsavedChanges() {
		return nil
	}
	rev := s.store.Revision()
	s.mu.Lock()
	skip := s.draftSavedYet && rev == s.lastDraftRev
	s.mu.Unlock()
	if skip {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snapshot := s.store.Snapshot()
	if snapshot == nil {
		return nil
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := s.drafts.Save(ctx, snapshot.PublicID, data); err != nil {
		log.Printf("autosave failed for %s (will retry): %v", snapshot.PublicID, err)
		return err
	}
	s.mu.Lock()
	s.lastDraftRev = rev
	s.draftSavedYet = true
	s.mu.Unlock()
	return nil
}

// SaveVersion persists an explicit, immutable version. A non-empty commit
// message is required. On success the dirty flag clears and the redundant
// draft is dropped; on failure the flag stays set so the user can retry.
func (s *Service) SaveVersion(ctx context.Context, userUID, message string) (*domain.ProjectVersion, error) {
	if !s.store.Loaded() {
		return nil, domain.ErrNoProject
	}
	if message == "" {
		return nil, domain.Validationf("commit message required")
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	// Snapshot under the save lock so a deferred save never writes content
	// older than the save that preceded it.
	snapshot := s.store.Snapshot()
	if snapshot == nil {
		return nil, domain.ErrNoProject
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	ver, err := s.versions.SaveVersion(ctx, userUID, snapshot.PublicID, message, data)
	if err != nil {
		s.notes.Error("Saving version failed: " + err.Error())
		return nil, err
	}

	s.store.MarkVersioned(ver.VersionNumber)
	if err := s.drafts.Delete(ctx, snapshot.PublicID); err != nil {
		log.Printf("drop draft for %s: %v", snapshot.PublicID, err)
	}
	s.notes.Success("Version " + ver.ID + " saved")
	return ver, nil
}
