package domain

// Clone returns a deep copy of the project. Snapshots handed to the command
// history, the autosave service and tool payload builders must never alias
// the live document.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.PropertyLines = clonePoints(p.PropertyLines)
	if p.Terrain != nil {
		t := Terrain{
			Vertices: append([]float64(nil), p.Terrain.Vertices...),
			Indices:  append([]int(nil), p.Terrain.Indices...),
		}
		out.Terrain = &t
	}
	out.Levels = make([]Level, len(p.Levels))
	for i := range p.Levels {
		out.Levels[i] = p.Levels[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of the level.
func (l Level) Clone() Level {
	out := l
	out.Layers = append([]Layer(nil), l.Layers...)
	out.Walls = append([]Wall(nil), l.Walls...)
	out.Placements = append([]Placement(nil), l.Placements...)

	out.Rooms = make([]Room, len(l.Rooms))
	for i, r := range l.Rooms {
		r.Boundary = clonePoints(r.Boundary)
		out.Rooms[i] = r
	}

	out.Comments = make([]Comment, len(l.Comments))
	for i, c := range l.Comments {
		c.Replies = append([]Reply(nil), c.Replies...)
		out.Comments[i] = c
	}

	out.Dimensions = append([]Dimension(nil), l.Dimensions...)

	out.MEPLines = make([]MEPLine, len(l.MEPLines))
	for i, m := range l.MEPLines {
		m.Path = clonePoints(m.Path)
		out.MEPLines[i] = m
	}
	return out
}

func clonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	return append([]Point(nil), pts...)
}
