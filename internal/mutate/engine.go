package mutate

import (
	"math"

	"github.com/san-kum/vectorize/internal/geom"
)

// Source is the randomness an Engine draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	NormFloat64() float64
	Intn(n int) int
}

// Sampler reports the target colour at normalised coordinates.
// imaging.Buffer satisfies it.
type Sampler interface {
	RGB(u, v float64) (r, g, b float64)
}

// Engine applies the mutation cascade. It is not safe for concurrent use.
type Engine struct {
	p       Params
	rnd     Source
	sampler Sampler
}

// NewEngine validates p and returns an engine drawing from rnd and seeding
// new polygon colours from sampler.
func NewEngine(p Params, rnd Source, sampler Sampler) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Engine{p: p, rnd: rnd, sampler: sampler}, nil
}

func (e *Engine) Params() Params { return e.p }

// Mutate applies exactly one gene-level mutation to g. The perturbation
// branch scales every polygon's sigmas and rates by 1-fitness, clamped to
// [0,1], so edits shrink as the candidate improves.
func (e *Engine) Mutate(g *geom.Gene, fitness float64) Kind {
	n := len(*g)
	switch {
	case n > 1 && e.trial(e.p.RemovePolygonRate):
		e.RemovePolygons(g, 1)
		return RemovePolygon
	case n < e.p.MaxPolygons && e.trial(e.p.AddPolygonRate):
		e.AddPolygons(g, 1)
		return AddPolygon
	case n > 1 && e.trial(e.p.SwapPolygonRate):
		e.SwapPolygons(*g)
		return SwapPolygon
	}

	mod := Modifier(fitness)
	for i := range *g {
		e.MutatePolygon(&(*g)[i], mod, mod)
	}
	return PerturbGene
}

// Modifier maps a fitness score to the sigma/rate scale used by the
// perturbation branch.
func Modifier(fitness float64) float64 {
	m := 1 - fitness
	if math.IsNaN(m) {
		return 0
	}
	return math.Min(1, math.Max(0, m))
}

// MutatePolygon applies exactly one polygon-level mutation to p.
func (e *Engine) MutatePolygon(p *geom.Polygon, sigmaMod, rateMod float64) Kind {
	n := len(p.Vertices)
	switch {
	case n > e.p.MinVertices && e.trial(e.p.RemoveVertexRate):
		e.RemoveVertices(p, 1)
		return RemoveVertex
	case n < e.p.MaxVertices && e.trial(e.p.AddVertexRate):
		e.AddVertices(p, 1)
		return AddVertex
	case n > 1 && e.trial(e.p.SwapVertexRate):
		e.SwapVertices(p)
		return SwapVertex
	}

	c := &p.Color
	c.R = e.perturb(c.R, e.p.Red, sigmaMod, rateMod)
	c.G = e.perturb(c.G, e.p.Green, sigmaMod, rateMod)
	c.B = e.perturb(c.B, e.p.Blue, sigmaMod, rateMod)
	c.A = e.perturb(c.A, e.p.Alpha, sigmaMod, rateMod)
	for i := range p.Vertices {
		v := &p.Vertices[i]
		v.X = e.perturb(v.X, e.p.Vertex, sigmaMod, rateMod)
		v.Y = e.perturb(v.Y, e.p.Vertex, sigmaMod, rateMod)
	}
	return PerturbPolygon
}

func (e *Engine) perturb(v float64, c Channel, sigmaMod, rateMod float64) float64 {
	if !e.trial(c.Rate * rateMod) {
		return v
	}
	return c.Range.Clamp(v + e.rnd.NormFloat64()*c.Sigma*sigmaMod)
}

// trial reports whether a uniform draw falls at or below rate. A zero rate
// never fires.
func (e *Engine) trial(rate float64) bool {
	if rate <= 0 {
		return false
	}
	return e.rnd.Float64() <= rate
}

func (e *Engine) uniform(r geom.Range) float64 {
	return r.Min + r.Span()*e.rnd.Float64()
}
