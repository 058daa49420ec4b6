package geom

// NewPolygon returns a polygon with n vertices scattered within jitter of
// (cx, cy). Coordinates are clamped to the unit square.
func NewPolygon(n int, cx, cy float64, color Color, jitter float64, r Rand) Polygon {
	p := Polygon{
		Color:    color,
		Vertices: make([]Vertex, n),
	}
	for i := range p.Vertices {
		p.Vertices[i] = JitterVertex(cx, cy, jitter, r)
	}
	return p
}

// JitterVertex returns a vertex within jitter of (cx, cy), clamped to the
// unit square.
func JitterVertex(cx, cy, jitter float64, r Rand) Vertex {
	return Vertex{
		X: Unit.Clamp(cx + uniform(r, -jitter, jitter)),
		Y: Unit.Clamp(cy + uniform(r, -jitter, jitter)),
	}
}

// Len returns the vertex count.
func (p Polygon) Len() int { return len(p.Vertices) }

// Clone returns a deep copy of p.
func (p Polygon) Clone() Polygon {
	c := Polygon{Color: p.Color}
	if p.Vertices != nil {
		c.Vertices = make([]Vertex, len(p.Vertices))
		copy(c.Vertices, p.Vertices)
	}
	return c
}

// Centroid returns the arithmetic mean of the vertices. It panics on an empty
// polygon.
func (p Polygon) Centroid() (x, y float64) {
	if len(p.Vertices) == 0 {
		panic(ErrEmptyPolygon)
	}
	for _, v := range p.Vertices {
		x += v.X
		y += v.Y
	}
	n := float64(len(p.Vertices))
	return x / n, y / n
}

// Equal reports whether p and o have the same colour and vertex sequence.
func (p Polygon) Equal(o Polygon) bool {
	if p.Color != o.Color || len(p.Vertices) != len(o.Vertices) {
		return false
	}
	for i := range p.Vertices {
		if p.Vertices[i] != o.Vertices[i] {
			return false
		}
	}
	return true
}
