package mutate

import "github.com/san-kum/vectorize/internal/geom"

// RemoveVertices deletes up to n vertices at uniformly chosen indices,
// stopping at the MinVertices floor. It returns the number removed.
func (e *Engine) RemoveVertices(p *geom.Polygon, n int) int {
	removed := 0
	for ; removed < n && len(p.Vertices) > e.p.MinVertices; removed++ {
		i := e.rnd.Intn(len(p.Vertices))
		p.Vertices = append(p.Vertices[:i], p.Vertices[i+1:]...)
	}
	return removed
}

// AddVertices appends up to n vertices near the polygon's centroid, stopping
// at MaxVertices. The anchor is the centroid before any vertex is added.
func (e *Engine) AddVertices(p *geom.Polygon, n int) int {
	n = min(n, e.p.MaxVertices-len(p.Vertices))
	if n <= 0 {
		return 0
	}
	cx, cy := p.Centroid()
	for i := 0; i < n; i++ {
		p.Vertices = append(p.Vertices, geom.JitterVertex(cx, cy, e.p.VertexJitter, e.rnd))
	}
	return n
}

// SwapVertices exchanges two uniformly chosen vertices. The indices may
// coincide.
func (e *Engine) SwapVertices(p *geom.Polygon) {
	if len(p.Vertices) == 0 {
		return
	}
	i, j := e.rnd.Intn(len(p.Vertices)), e.rnd.Intn(len(p.Vertices))
	p.Vertices[i], p.Vertices[j] = p.Vertices[j], p.Vertices[i]
}

// RemovePolygons deletes up to n polygons at uniformly chosen indices,
// never leaving the gene empty. It returns the number removed.
func (e *Engine) RemovePolygons(g *geom.Gene, n int) int {
	removed := 0
	for ; removed < n && len(*g) > 1; removed++ {
		i := e.rnd.Intn(len(*g))
		*g = append((*g)[:i], (*g)[i+1:]...)
	}
	return removed
}

// AddPolygons appends up to n random polygons, stopping at MaxPolygons.
func (e *Engine) AddPolygons(g *geom.Gene, n int) int {
	n = min(n, e.p.MaxPolygons-len(*g))
	for i := 0; i < n; i++ {
		*g = append(*g, e.RandomPolygon(e.p.NewPolygonVertices))
	}
	return max(n, 0)
}

// SwapPolygons exchanges the paint order of two uniformly chosen polygons.
func (e *Engine) SwapPolygons(g geom.Gene) {
	if len(g) == 0 {
		return
	}
	i, j := e.rnd.Intn(len(g)), e.rnd.Intn(len(g))
	g[i], g[j] = g[j], g[i]
}

// RandomPolygon returns a polygon of n vertices clustered around a uniform
// centre, coloured from the target at that centre with a uniform alpha.
func (e *Engine) RandomPolygon(n int) geom.Polygon {
	cx := e.uniform(e.p.Vertex.Range)
	cy := e.uniform(e.p.Vertex.Range)

	var c geom.Color
	if e.sampler != nil {
		c.R, c.G, c.B = e.sampler.RGB(cx, cy)
	}
	c.R = e.p.Red.Range.Clamp(c.R)
	c.G = e.p.Green.Range.Clamp(c.G)
	c.B = e.p.Blue.Range.Clamp(c.B)
	c.A = e.uniform(e.p.Alpha.Range)

	return geom.NewPolygon(n, cx, cy, c, e.p.VertexJitter, e.rnd)
}

// Seed returns a fresh gene of polygons random polygons with vertices
// vertices each.
func (e *Engine) Seed(polygons, vertices int) geom.Gene {
	polygons = max(1, min(polygons, e.p.MaxPolygons))
	vertices = max(1, min(vertices, e.p.MaxVertices))
	g := make(geom.Gene, polygons)
	for i := range g {
		g[i] = e.RandomPolygon(vertices)
	}
	return g
}
