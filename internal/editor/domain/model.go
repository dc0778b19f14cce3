package domain

import "time"

// Project is the canonical in-memory representation of a design project.
// It is owned by the document store and only changes through its mutation API.
type Project struct {
	PublicID      string      `json:"public_id"`
	Name          string      `json:"name"`
	Version       int         `json:"version"`
	Levels        []Level     `json:"levels"`
	PlanNorth     float64     `json:"plan_north_deg"` // degrees clockwise from screen-up
	PropertyLines []Point     `json:"property_lines,omitempty"`
	Terrain       *Terrain    `json:"terrain,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Level is one floor/story of a project.
type Level struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Elevation     float64     `json:"elevation_m"`
	Layers        []Layer     `json:"layers"`
	ActiveLayerID string      `json:"active_layer_id"`
	Walls         []Wall      `json:"walls"`
	Rooms         []Room      `json:"rooms"`
	Placements    []Placement `json:"placements"`
	Comments      []Comment   `json:"comments"`
	Dimensions    []Dimension `json:"dimensions"`
	MEPLines      []MEPLine   `json:"mep_lines"`
}

// Layer groups artifacts within a level. Locked layers reject artifact
// mutations; hidden layers are kept in storage but excluded from active editing.
type Layer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Locked  bool   `json:"locked"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Wall struct {
	ID        string  `json:"id"`
	LayerID   string  `json:"layer_id"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
	Thickness float64 `json:"thickness_m"`
	Height    float64 `json:"height_m"`
}

type Room struct {
	ID       string  `json:"id"`
	LayerID  string  `json:"layer_id"`
	Name     string  `json:"name"`
	Boundary []Point `json:"boundary"`
}

// Placement is a placed 3D model (furniture, fixtures, vegetation).
type Placement struct {
	ID       string  `json:"id"`
	LayerID  string  `json:"layer_id"`
	ModelKey string  `json:"model_key"`
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation_deg"`
	Scale    float64 `json:"scale"`
}

type Comment struct {
	ID       string  `json:"id"`
	LayerID  string  `json:"layer_id"`
	Position Point   `json:"position"`
	Author   string  `json:"author"`
	Text     string  `json:"text"`
	Resolved bool    `json:"resolved"`
	Replies  []Reply `json:"replies"`
}

type Reply struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Dimension struct {
	ID      string `json:"id"`
	LayerID string `json:"layer_id"`
	Start   Point  `json:"start"`
	End     Point  `json:"end"`
	Label   string `json:"label,omitempty"`
}

// MEPLine is a plumbing, electrical or HVAC run on a level.
type MEPLine struct {
	ID      string  `json:"id"`
	LayerID string  `json:"layer_id"`
	System  string  `json:"system"` // plumbing, electrical, hvac
	Path    []Point `json:"path"`
}

// MEP system constants
const (
	SystemPlumbing   = "plumbing"
	SystemElectrical = "electrical"
	SystemHVAC       = "hvac"
)

// Terrain is the site mesh the massing sits on. Stored opaque; the engine
// never interprets the vertices.
type Terrain struct {
	Vertices []float64 `json:"vertices"`
	Indices  []int     `json:"indices"`
}

// FindLevel returns the level with the given id, or nil.
func (p *Project) FindLevel(levelID string) *Level {
	for i := range p.Levels {
		if p.Levels[i].ID == levelID {
			return &p.Levels[i]
		}
	}
	return nil
}

// FindLayer returns the layer with the given id within the level, or nil.
func (l *Level) FindLayer(layerID string) *Layer {
	for i := range l.Layers {
		if l.Layers[i].ID == layerID {
			return &l.Layers[i]
		}
	}
	return nil
}

// FindComment returns the comment with the given id within the level, or nil.
func (l *Level) FindComment(commentID string) *Comment {
	for i := range l.Comments {
		if l.Comments[i].ID == commentID {
			return &l.Comments[i]
		}
	}
	return nil
}
