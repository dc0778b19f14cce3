package store

import (
	"strings"
	"time"

	"github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/util"
)

// ---- levels ----

// AddLevel appends a level with a single default layer and returns its id.
func (s *Store) AddLevel(name string, elevation float64) (string, error) {
	name = strings.TrimSpace(name)
	var levelID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		if name == "" {
			return nil, domain.Validationf("level name required")
		}
		id, err := util.NewID("lvl")
		if err != nil {
			return nil, err
		}
		layerID, err := util.NewID("lay")
		if err != nil {
			return nil, err
		}
		levelID = id
		return func() {
			p.Levels = append(p.Levels, domain.Level{
				ID:        id,
				Name:      name,
				Elevation: elevation,
				Layers: []domain.Layer{
					{ID: layerID, Name: "Default", Visible: true},
				},
				ActiveLayerID: layerID,
			})
		}, nil
	})
	return levelID, err
}

func (s *Store) RenameLevel(levelID, name string) error {
	name = strings.TrimSpace(name)
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if name == "" {
			return nil, domain.Validationf("level name required")
		}
		return func() { lvl.Name = name }, nil
	})
}

func (s *Store) DeleteLevel(levelID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		idx := -1
		for i := range p.Levels {
			if p.Levels[i].ID == levelID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		return func() {
			p.Levels = append(p.Levels[:idx], p.Levels[idx+1:]...)
			if s.activeLevelID == levelID {
				s.activeLevelID = ""
				if len(p.Levels) > 0 {
					s.activeLevelID = p.Levels[0].ID
				}
			}
		}, nil
	})
}

// ---- layers ----

func (s *Store) AddLayer(levelID, name string) (string, error) {
	name = strings.TrimSpace(name)
	var layerID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if name == "" {
			return nil, domain.Validationf("layer name required")
		}
		id, err := util.NewID("lay")
		if err != nil {
			return nil, err
		}
		layerID = id
		return func() {
			lvl.Layers = append(lvl.Layers, domain.Layer{ID: id, Name: name, Visible: true})
		}, nil
	})
	return layerID, err
}

func (s *Store) RenameLayer(levelID, layerID, name string) error {
	name = strings.TrimSpace(name)
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		layer := lvl.FindLayer(layerID)
		if layer == nil {
			return nil, domain.Validationf("layer %q does not exist in level %q", layerID, levelID)
		}
		if name == "" {
			return nil, domain.Validationf("layer name required")
		}
		return func() { layer.Name = name }, nil
	})
}

func (s *Store) SetLayerVisible(levelID, layerID string, visible bool) error {
	return s.setLayerFlag(levelID, layerID, func(l *domain.Layer) { l.Visible = visible })
}

func (s *Store) SetLayerLocked(levelID, layerID string, locked bool) error {
	return s.setLayerFlag(levelID, layerID, func(l *domain.Layer) { l.Locked = locked })
}

func (s *Store) setLayerFlag(levelID, layerID string, set func(*domain.Layer)) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		layer := lvl.FindLayer(layerID)
		if layer == nil {
			return nil, domain.Validationf("layer %q does not exist in level %q", layerID, levelID)
		}
		return func() { set(layer) }, nil
	})
}

// DeleteLayer removes a layer. A level always retains at least one layer.
// Artifacts on the layer are reassigned to reassignTo when given, otherwise
// deleted with the layer.
func (s *Store) DeleteLayer(levelID, layerID, reassignTo string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Layers {
			if lvl.Layers[i].ID == layerID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("layer %q does not exist in level %q", layerID, levelID)
		}
		if len(lvl.Layers) == 1 {
			return nil, domain.Validationf("cannot delete the last layer of level %q", lvl.Name)
		}
		if reassignTo != "" {
			if reassignTo == layerID {
				return nil, domain.Validationf("cannot reassign artifacts to the deleted layer")
			}
			if lvl.FindLayer(reassignTo) == nil {
				return nil, domain.Validationf("target layer %q does not exist in level %q", reassignTo, levelID)
			}
		}
		return func() {
			lvl.Layers = append(lvl.Layers[:idx], lvl.Layers[idx+1:]...)
			if reassignTo != "" {
				reassignArtifacts(lvl, layerID, reassignTo)
			} else {
				dropArtifacts(lvl, layerID)
			}
			if lvl.ActiveLayerID == layerID {
				lvl.ActiveLayerID = lvl.Layers[0].ID
			}
		}, nil
	})
}

func reassignArtifacts(lvl *domain.Level, from, to string) {
	for i := range lvl.Walls {
		if lvl.Walls[i].LayerID == from {
			lvl.Walls[i].LayerID = to
		}
	}
	for i := range lvl.Rooms {
		if lvl.Rooms[i].LayerID == from {
			lvl.Rooms[i].LayerID = to
		}
	}
	for i := range lvl.Placements {
		if lvl.Placements[i].LayerID == from {
			lvl.Placements[i].LayerID = to
		}
	}
	for i := range lvl.Comments {
		if lvl.Comments[i].LayerID == from {
			lvl.Comments[i].LayerID = to
		}
	}
	for i := range lvl.Dimensions {
		if lvl.Dimensions[i].LayerID == from {
			lvl.Dimensions[i].LayerID = to
		}
	}
	for i := range lvl.MEPLines {
		if lvl.MEPLines[i].LayerID == from {
			lvl.MEPLines[i].LayerID = to
		}
	}
}

func dropArtifacts(lvl *domain.Level, layerID string) {
	walls := lvl.Walls[:0]
	for _, w := range lvl.Walls {
		if w.LayerID != layerID {
			walls = append(walls, w)
		}
	}
	lvl.Walls = walls

	rooms := lvl.Rooms[:0]
	for _, r := range lvl.Rooms {
		if r.LayerID != layerID {
			rooms = append(rooms, r)
		}
	}
	lvl.Rooms = rooms

	placements := lvl.Placements[:0]
	for _, pl := range lvl.Placements {
		if pl.LayerID != layerID {
			placements = append(placements, pl)
		}
	}
	lvl.Placements = placements

	comments := lvl.Comments[:0]
	for _, c := range lvl.Comments {
		if c.LayerID != layerID {
			comments = append(comments, c)
		}
	}
	lvl.Comments = comments

	dims := lvl.Dimensions[:0]
	for _, d := range lvl.Dimensions {
		if d.LayerID != layerID {
			dims = append(dims, d)
		}
	}
	lvl.Dimensions = dims

	meps := lvl.MEPLines[:0]
	for _, m := range lvl.MEPLines {
		if m.LayerID != layerID {
			meps = append(meps, m)
		}
	}
	lvl.MEPLines = meps
}

// ---- walls ----

func (s *Store) AddWall(levelID string, w domain.Wall) (string, error) {
	var wallID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if _, err := editableLayer(lvl, w.LayerID); err != nil {
			return nil, err
		}
		if w.Thickness <= 0 {
			return nil, domain.Validationf("wall thickness must be positive")
		}
		id, err := util.NewID("wall")
		if err != nil {
			return nil, err
		}
		wallID = id
		return func() {
			w.ID = id
			lvl.Walls = append(lvl.Walls, w)
		}, nil
	})
	return wallID, err
}

func (s *Store) UpdateWall(levelID string, w domain.Wall) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Walls {
			if lvl.Walls[i].ID == w.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("wall %q does not exist", w.ID)
		}
		if _, err := editableLayer(lvl, lvl.Walls[idx].LayerID); err != nil {
			return nil, err
		}
		target := lvl.Walls[idx].LayerID
		if w.LayerID != "" && w.LayerID != target {
			if _, err := editableLayer(lvl, w.LayerID); err != nil {
				return nil, err
			}
			target = w.LayerID
		}
		if w.Thickness <= 0 {
			return nil, domain.Validationf("wall thickness must be positive")
		}
		return func() {
			w.LayerID = target
			lvl.Walls[idx] = w
		}, nil
	})
}

func (s *Store) DeleteWall(levelID, wallID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Walls {
			if lvl.Walls[i].ID == wallID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("wall %q does not exist", wallID)
		}
		if _, err := editableLayer(lvl, lvl.Walls[idx].LayerID); err != nil {
			return nil, err
		}
		return func() {
			lvl.Walls = append(lvl.Walls[:idx], lvl.Walls[idx+1:]...)
		}, nil
	})
}

// ---- rooms ----

func (s *Store) AddRoom(levelID string, r domain.Room) (string, error) {
	var roomID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if _, err := editableLayer(lvl, r.LayerID); err != nil {
			return nil, err
		}
		if len(r.Boundary) < 3 {
			return nil, domain.Validationf("room boundary needs at least 3 points")
		}
		id, err := util.NewID("room")
		if err != nil {
			return nil, err
		}
		roomID = id
		return func() {
			r.ID = id
			lvl.Rooms = append(lvl.Rooms, r)
		}, nil
	})
	return roomID, err
}

func (s *Store) UpdateRoom(levelID string, r domain.Room) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Rooms {
			if lvl.Rooms[i].ID == r.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("room %q does not exist", r.ID)
		}
		if _, err := editableLayer(lvl, lvl.Rooms[idx].LayerID); err != nil {
			return nil, err
		}
		if len(r.Boundary) < 3 {
			return nil, domain.Validationf("room boundary needs at least 3 points")
		}
		return func() {
			r.LayerID = lvl.Rooms[idx].LayerID
			lvl.Rooms[idx] = r
		}, nil
	})
}

func (s *Store) DeleteRoom(levelID, roomID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Rooms {
			if lvl.Rooms[i].ID == roomID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("room %q does not exist", roomID)
		}
		if _, err := editableLayer(lvl, lvl.Rooms[idx].LayerID); err != nil {
			return nil, err
		}
		return func() {
			lvl.Rooms = append(lvl.Rooms[:idx], lvl.Rooms[idx+1:]...)
		}, nil
	})
}

// ---- placements ----

func (s *Store) AddPlacement(levelID string, pl domain.Placement) (string, error) {
	var placementID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if _, err := editableLayer(lvl, pl.LayerID); err != nil {
			return nil, err
		}
		if strings.TrimSpace(pl.ModelKey) == "" {
			return nil, domain.Validationf("placement model key required")
		}
		id, err := util.NewID("plc")
		if err != nil {
			return nil, err
		}
		placementID = id
		return func() {
			pl.ID = id
			if pl.Scale == 0 {
				pl.Scale = 1
			}
			lvl.Placements = append(lvl.Placements, pl)
		}, nil
	})
	return placementID, err
}

func (s *Store) DeletePlacement(levelID, placementID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Placements {
			if lvl.Placements[i].ID == placementID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("placement %q does not exist", placementID)
		}
		if _, err := editableLayer(lvl, lvl.Placements[idx].LayerID); err != nil {
			return nil, err
		}
		return func() {
			lvl.Placements = append(lvl.Placements[:idx], lvl.Placements[idx+1:]...)
		}, nil
	})
}

// ---- comments ----

func (s *Store) AddComment(levelID string, c domain.Comment) (string, error) {
	var commentID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if _, err := editableLayer(lvl, c.LayerID); err != nil {
			return nil, err
		}
		if strings.TrimSpace(c.Text) == "" {
			return nil, domain.Validationf("comment text required")
		}
		id, err := util.NewID("cmt")
		if err != nil {
			return nil, err
		}
		commentID = id
		return func() {
			c.ID = id
			c.Resolved = false
			lvl.Comments = append(lvl.Comments, c)
		}, nil
	})
	return commentID, err
}

// ReplyToComment appends a threaded reply. Any collaborator may reply,
// including on resolved comments.
func (s *Store) ReplyToComment(levelID, commentID, author, text string) error {
	text = strings.TrimSpace(text)
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		c := lvl.FindComment(commentID)
		if c == nil {
			return nil, domain.Validationf("comment %q does not exist", commentID)
		}
		if text == "" {
			return nil, domain.Validationf("reply text required")
		}
		return func() {
			c.Replies = append(c.Replies, domain.Reply{
				Author:    author,
				Text:      text,
				CreatedAt: time.Now(),
			})
		}, nil
	})
}

func (s *Store) SetCommentResolved(levelID, commentID string, resolved bool) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		c := lvl.FindComment(commentID)
		if c == nil {
			return nil, domain.Validationf("comment %q does not exist", commentID)
		}
		return func() { c.Resolved = resolved }, nil
	})
}

// DeleteComment removes a comment and its replies. Comments are only ever
// deleted by explicit request, never as a side effect.
func (s *Store) DeleteComment(levelID, commentID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Comments {
			if lvl.Comments[i].ID == commentID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("comment %q does not exist", commentID)
		}
		return func() {
			lvl.Comments = append(lvl.Comments[:idx], lvl.Comments[idx+1:]...)
		}, nil
	})
}

// ---- dimensions ----

func (s *Store) AddDimension(levelID string, d domain.Dimension) (string, error) {
	var dimID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if _, err := editableLayer(lvl, d.LayerID); err != nil {
			return nil, err
		}
		id, err := util.NewID("dim")
		if err != nil {
			return nil, err
		}
		dimID = id
		return func() {
			d.ID = id
			lvl.Dimensions = append(lvl.Dimensions, d)
		}, nil
	})
	return dimID, err
}

func (s *Store) DeleteDimension(levelID, dimID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.Dimensions {
			if lvl.Dimensions[i].ID == dimID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("dimension %q does not exist", dimID)
		}
		if _, err := editableLayer(lvl, lvl.Dimensions[idx].LayerID); err != nil {
			return nil, err
		}
		return func() {
			lvl.Dimensions = append(lvl.Dimensions[:idx], lvl.Dimensions[idx+1:]...)
		}, nil
	})
}

// ---- MEP ----

func (s *Store) AddMEPLine(levelID string, m domain.MEPLine) (string, error) {
	var mepID string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		if _, err := editableLayer(lvl, m.LayerID); err != nil {
			return nil, err
		}
		switch m.System {
		case domain.SystemPlumbing, domain.SystemElectrical, domain.SystemHVAC:
		default:
			return nil, domain.Validationf("unknown MEP system %q", m.System)
		}
		if len(m.Path) < 2 {
			return nil, domain.Validationf("MEP line needs at least 2 points")
		}
		id, err := util.NewID("mep")
		if err != nil {
			return nil, err
		}
		mepID = id
		return func() {
			m.ID = id
			lvl.MEPLines = append(lvl.MEPLines, m)
		}, nil
	})
	return mepID, err
}

func (s *Store) DeleteMEPLine(levelID, mepID string) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		lvl := p.FindLevel(levelID)
		if lvl == nil {
			return nil, domain.Validationf("level %q does not exist", levelID)
		}
		idx := -1
		for i := range lvl.MEPLines {
			if lvl.MEPLines[i].ID == mepID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.Validationf("MEP line %q does not exist", mepID)
		}
		if _, err := editableLayer(lvl, lvl.MEPLines[idx].LayerID); err != nil {
			return nil, err
		}
		return func() {
			lvl.MEPLines = append(lvl.MEPLines[:idx], lvl.MEPLines[idx+1:]...)
		}, nil
	})
}

// ---- AI result merges ----

// ImportLevels appends fully-formed levels in one undoable step. Levels come
// from the inference service; every artifact must reference a layer carried
// in the same level and each level needs at least one layer.
func (s *Store) ImportLevels(levels []domain.Level) ([]string, error) {
	var ids []string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		if len(levels) == 0 {
			return nil, domain.Validationf("no levels to import")
		}
		prepared := make([]domain.Level, len(levels))
		for i, lvl := range levels {
			if len(lvl.Layers) == 0 {
				return nil, domain.Validationf("imported level %q has no layers", lvl.Name)
			}
			id, err := util.NewID("lvl")
			if err != nil {
				return nil, err
			}
			lvl = lvl.Clone()
			lvl.ID = id
			if err := checkLayerRefs(&lvl); err != nil {
				return nil, err
			}
			if lvl.FindLayer(lvl.ActiveLayerID) == nil {
				lvl.ActiveLayerID = lvl.Layers[0].ID
			}
			prepared[i] = lvl
			ids = append(ids, id)
		}
		return func() {
			p.Levels = append(p.Levels, prepared...)
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FixProposal is an AI-proposed issue to surface as an unresolved comment.
type FixProposal struct {
	LevelID  string       `json:"level_id"`
	LayerID  string       `json:"layer_id"`
	Position domain.Point `json:"position"`
	Text     string       `json:"text"`
}

// ApplyFixComments lands a batch of fix proposals as unresolved comments in
// one undoable step. The whole batch is rejected if any proposal targets a
// missing level/layer or a locked layer.
func (s *Store) ApplyFixComments(author string, fixes []FixProposal) ([]string, error) {
	var ids []string
	err := s.mutate(func(p *domain.Project) (func(), error) {
		if len(fixes) == 0 {
			return nil, domain.Validationf("no fixes to apply")
		}
		type placed struct {
			lvl *domain.Level
			c   domain.Comment
		}
		prepared := make([]placed, 0, len(fixes))
		for _, f := range fixes {
			lvl := p.FindLevel(f.LevelID)
			if lvl == nil {
				return nil, domain.Validationf("level %q does not exist", f.LevelID)
			}
			if _, err := editableLayer(lvl, f.LayerID); err != nil {
				return nil, err
			}
			if strings.TrimSpace(f.Text) == "" {
				return nil, domain.Validationf("fix text required")
			}
			id, err := util.NewID("cmt")
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
			prepared = append(prepared, placed{
				lvl: lvl,
				c: domain.Comment{
					ID:       id,
					LayerID:  f.LayerID,
					Position: f.Position,
					Author:   author,
					Text:     f.Text,
				},
			})
		}
		return func() {
			for _, pl := range prepared {
				pl.lvl.Comments = append(pl.lvl.Comments, pl.c)
			}
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func checkLayerRefs(lvl *domain.Level) error {
	ok := func(layerID string) bool { return lvl.FindLayer(layerID) != nil }
	for _, w := range lvl.Walls {
		if !ok(w.LayerID) {
			return domain.Validationf("wall %q references unknown layer %q", w.ID, w.LayerID)
		}
	}
	for _, r := range lvl.Rooms {
		if !ok(r.LayerID) {
			return domain.Validationf("room %q references unknown layer %q", r.ID, r.LayerID)
		}
	}
	for _, pl := range lvl.Placements {
		if !ok(pl.LayerID) {
			return domain.Validationf("placement %q references unknown layer %q", pl.ID, pl.LayerID)
		}
	}
	for _, c := range lvl.Comments {
		if !ok(c.LayerID) {
			return domain.Validationf("comment %q references unknown layer %q", c.ID, c.LayerID)
		}
	}
	for _, d := range lvl.Dimensions {
		if !ok(d.LayerID) {
			return domain.Validationf("dimension %q references unknown layer %q", d.ID, d.LayerID)
		}
	}
	for _, m := range lvl.MEPLines {
		if !ok(m.LayerID) {
			return domain.Validationf("MEP line %q references unknown layer %q", m.ID, m.LayerID)
		}
	}
	return nil
}

// ---- project metadata ----

func (s *Store) SetPlanNorth(deg float64) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		if deg < 0 || deg >= 360 {
			return nil, domain.Validationf("plan north must be in [0, 360)")
		}
		return func() { p.PlanNorth = deg }, nil
	})
}

func (s *Store) SetPropertyLines(pts []domain.Point) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		if len(pts) != 0 && len(pts) < 3 {
			return nil, domain.Validationf("property lines need at least 3 points")
		}
		cp := append([]domain.Point(nil), pts...)
		return func() { p.PropertyLines = cp }, nil
	})
}

func (s *Store) SetTerrain(t *domain.Terrain) error {
	return s.mutate(func(p *domain.Project) (func(), error) {
		return func() { p.Terrain = t }, nil
	})
}
