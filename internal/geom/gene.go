package geom

// Limits are the bounds a reachable gene must respect.
type Limits struct {
	MaxPolygons int
	MinVertices int
	Red         Range
	Green       Range
	Blue        Range
	Alpha       Range
	Vertex      Range
}

// Clone returns a deep copy of g. Cloning an empty gene yields an empty gene.
func (g Gene) Clone() Gene {
	if g == nil {
		return nil
	}
	c := make(Gene, len(g))
	for i := range g {
		c[i] = g[i].Clone()
	}
	return c
}

// Equal reports deep equality.
func (g Gene) Equal(o Gene) bool {
	if len(g) != len(o) {
		return false
	}
	for i := range g {
		if !g[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// VertexCount returns the total number of vertices across all polygons.
func (g Gene) VertexCount() int {
	n := 0
	for _, p := range g {
		n += len(p.Vertices)
	}
	return n
}

// Validate returns the first invariant violation in g, or nil.
func (g Gene) Validate(l Limits) error {
	if len(g) == 0 {
		return &InvariantError{Polygon: -1, Field: "polygons", Wrapped: ErrEmptyGene}
	}
	if l.MaxPolygons > 0 && len(g) > l.MaxPolygons {
		return &InvariantError{Polygon: -1, Field: "polygons", Value: float64(len(g)), Wrapped: ErrTooManyPolygons}
	}
	for i, p := range g {
		if len(p.Vertices) == 0 {
			return &InvariantError{Polygon: i, Field: "vertices", Wrapped: ErrEmptyPolygon}
		}
		if len(p.Vertices) < l.MinVertices {
			return &InvariantError{Polygon: i, Field: "vertices", Value: float64(len(p.Vertices)), Wrapped: ErrOutOfRange}
		}
		channels := []struct {
			name string
			v    float64
			r    Range
		}{
			{"r", p.Color.R, l.Red},
			{"g", p.Color.G, l.Green},
			{"b", p.Color.B, l.Blue},
			{"a", p.Color.A, l.Alpha},
		}
		for _, c := range channels {
			if !c.r.Contains(c.v) {
				return &InvariantError{Polygon: i, Field: c.name, Value: c.v, Wrapped: ErrOutOfRange}
			}
		}
		for _, v := range p.Vertices {
			if !l.Vertex.Contains(v.X) {
				return &InvariantError{Polygon: i, Field: "x", Value: v.X, Wrapped: ErrOutOfRange}
			}
			if !l.Vertex.Contains(v.Y) {
				return &InvariantError{Polygon: i, Field: "y", Value: v.Y, Wrapped: ErrOutOfRange}
			}
		}
	}
	return nil
}
