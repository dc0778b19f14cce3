// Package service manages open editor sessions: one per project, shared by
// every collaborator connected to it.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/arkiform/go-plan-backend/internal/editor/autosave"
	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/store"
	"github.com/arkiform/go-plan-backend/internal/notify"
	"github.com/arkiform/go-plan-backend/internal/projects"
	"github.com/arkiform/go-plan-backend/internal/util"
)

// DraftLoader reads back working autosave snapshots.
type DraftLoader interface {
	autosave.DraftStore
	Get(ctx context.Context, projectPublicID string) (json.RawMessage, error)
}

// VersionLoader reads and writes durable versions.
type VersionLoader interface {
	autosave.VersionStore
	Latest(ctx context.Context, projectPublicID string) (*domain.ProjectVersion, error)
}

type Session struct {
	ProjectID string
	OwnerUID  string
	Store     *store.Store
	Saver     *autosave.Service
	Notes     *notify.Stream
}

type Manager struct {
	projects *projects.Repo
	versions VersionLoader
	drafts   DraftLoader

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(repo *projects.Repo, versions VersionLoader, drafts DraftLoader) *Manager {
	return &Manager{
		projects: repo,
		versions: versions,
		drafts:   drafts,
		sessions: make(map[string]*Session),
	}
}

// Open loads a project into an editor session. Resume order: working draft,
// then latest saved version, then a fresh single-level document. Opening an
// already-open project joins the existing session.
func (m *Manager) Open(ctx context.Context, userUID, projectPublicID string) (*Session, error) {
	meta, err := m.projects.Get(ctx, userUID, projectPublicID)
	if err != nil {
		if err == projects.ErrNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load project meta: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[projectPublicID]; ok {
		return sess, nil
	}

	doc, err := m.loadDocument(ctx, meta)
	if err != nil {
		return nil, err
	}

	st := store.New()
	st.Load(doc)
	notes := notify.NewStream(100)
	sess := &Session{
		ProjectID: projectPublicID,
		OwnerUID:  meta.OwnerUID,
		Store:     st,
		Saver:     autosave.New(st, m.versions, m.drafts, notes),
		Notes:     notes,
	}
	m.sessions[projectPublicID] = sess
	return sess, nil
}

func (m *Manager) loadDocument(ctx context.Context, meta *projects.Project) (*domain.Project, error) {
	if draft, err := m.drafts.Get(ctx, meta.PublicID); err != nil {
		log.Printf("read draft for %s: %v", meta.PublicID, err)
	} else if draft != nil {
		var doc domain.Project
		if err := json.Unmarshal(draft, &doc); err == nil {
			return &doc, nil
		}
		log.Printf("corrupt draft for %s, falling back to versions", meta.PublicID)
	}

	ver, err := m.versions.Latest(ctx, meta.PublicID)
	if err == nil {
		var doc domain.Project
		if err := json.Unmarshal(ver.Snapshot, &doc); err != nil {
			return nil, fmt.Errorf("decode version snapshot: %w", err)
		}
		doc.Version = ver.VersionNumber
		return &doc, nil
	}
	if err != domain.ErrNotFound {
		return nil, fmt.Errorf("load latest version: %w", err)
	}

	return newDocument(meta)
}

// newDocument builds the empty starting state for a project that was never
// saved: one level with a single default layer.
func newDocument(meta *projects.Project) (*domain.Project, error) {
	levelID, err := util.NewID("lvl")
	if err != nil {
		return nil, err
	}
	layerID, err := util.NewID("lay")
	if err != nil {
		return nil, err
	}
	return &domain.Project{
		PublicID: meta.PublicID,
		Name:     meta.Name,
		Levels: []domain.Level{
			{
				ID:   levelID,
				Name: "Level 1",
				Layers: []domain.Layer{
					{ID: layerID, Name: "Default", Visible: true},
				},
				ActiveLayerID: layerID,
			},
		},
	}, nil
}

// Get returns the open session for a project, if any.
func (m *Manager) Get(projectPublicID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[projectPublicID]
	return sess, ok
}

// Close tears a session down. Unsaved changes are flushed to the working
// draft first so nothing is lost; the draft write is best-effort.
func (m *Manager) Close(ctx context.Context, projectPublicID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[projectPublicID]
	delete(m.sessions, projectPublicID)
	m.mu.Unlock()
	if !ok {
		return domain.ErrNoProject
	}

	if sess.Store.HasUnsavedChanges() {
		if err := sess.Saver.Autosave(ctx); err != nil {
			log.Printf("final autosave for %s: %v", projectPublicID, err)
		}
	}
	sess.Store.Unload()
	return nil
}

// SweepAutosave runs one autosave pass over every open session. Called by the
// scheduler; errors are logged per session and retried next sweep.
func (m *Manager) SweepAutosave(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		_ = s.Saver.Autosave(ctx)
	}
}
