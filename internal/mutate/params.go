package mutate

import (
	"errors"
	"fmt"

	"github.com/san-kum/vectorize/internal/geom"
)

var ErrInvalidParams = errors.New("mutate: invalid parameters")

// Channel configures the perturbation of one colour channel or coordinate
// axis.
type Channel struct {
	Rate  float64    `yaml:"rate"`
	Sigma float64    `yaml:"sigma"`
	Range geom.Range `yaml:"range"`
}

// Params is the immutable tuning of an Engine. Rates are per-call Bernoulli
// probabilities.
type Params struct {
	MaxPolygons        int     `yaml:"max_polygons"`
	MaxVertices        int     `yaml:"max_vertices"`
	MinVertices        int     `yaml:"min_vertices"`
	NewPolygonVertices int     `yaml:"new_polygon_vertices"`
	VertexJitter       float64 `yaml:"vertex_jitter"`

	AddPolygonRate    float64 `yaml:"add_polygon_rate"`
	RemovePolygonRate float64 `yaml:"remove_polygon_rate"`
	SwapPolygonRate   float64 `yaml:"swap_polygon_rate"`

	AddVertexRate    float64 `yaml:"add_vertex_rate"`
	RemoveVertexRate float64 `yaml:"remove_vertex_rate"`
	SwapVertexRate   float64 `yaml:"swap_vertex_rate"`

	Red    Channel `yaml:"red"`
	Green  Channel `yaml:"green"`
	Blue   Channel `yaml:"blue"`
	Alpha  Channel `yaml:"alpha"`
	Vertex Channel `yaml:"vertex"`
}

// DefaultParams returns the reference tuning.
func DefaultParams() Params {
	return Params{
		MaxPolygons:        255,
		MaxVertices:        255,
		MinVertices:        3,
		NewPolygonVertices: 8,
		VertexJitter:       0.001,

		AddPolygonRate:    1.0 / 700,
		RemovePolygonRate: 1.0 / 1500,
		SwapPolygonRate:   1.0 / 1000,

		AddVertexRate:    1.0 / 1000,
		RemoveVertexRate: 1.0 / 1500,
		SwapVertexRate:   1.0 / 1000,

		Red:    Channel{Rate: 1.0 / 750, Sigma: 0.1, Range: geom.Unit},
		Green:  Channel{Rate: 1.0 / 750, Sigma: 0.1, Range: geom.Unit},
		Blue:   Channel{Rate: 1.0 / 750, Sigma: 0.1, Range: geom.Unit},
		Alpha:  Channel{Rate: 1.0 / 750, Sigma: 0.02, Range: geom.Range{Min: 30.0 / 255, Max: 60.0 / 255}},
		Vertex: Channel{Rate: 1.0 / 750, Sigma: 0.1, Range: geom.Unit},
	}
}

// Limits returns the gene bounds implied by p.
func (p Params) Limits() geom.Limits {
	return geom.Limits{
		MaxPolygons: p.MaxPolygons,
		MinVertices: 1,
		Red:         p.Red.Range,
		Green:       p.Green.Range,
		Blue:        p.Blue.Range,
		Alpha:       p.Alpha.Range,
		Vertex:      p.Vertex.Range,
	}
}

// Validate checks p for values the engine cannot honour.
func (p Params) Validate() error {
	if p.MaxPolygons < 1 {
		return fmt.Errorf("%w: max_polygons must be at least 1, got %d", ErrInvalidParams, p.MaxPolygons)
	}
	if p.MinVertices < 1 {
		return fmt.Errorf("%w: min_vertices must be at least 1, got %d", ErrInvalidParams, p.MinVertices)
	}
	if p.MaxVertices < p.MinVertices {
		return fmt.Errorf("%w: max_vertices %d below min_vertices %d", ErrInvalidParams, p.MaxVertices, p.MinVertices)
	}
	if p.NewPolygonVertices < 1 || p.NewPolygonVertices > p.MaxVertices {
		return fmt.Errorf("%w: new_polygon_vertices %d outside [1, %d]", ErrInvalidParams, p.NewPolygonVertices, p.MaxVertices)
	}
	if p.VertexJitter < 0 {
		return fmt.Errorf("%w: vertex_jitter must be non-negative", ErrInvalidParams)
	}

	rates := map[string]float64{
		"add_polygon_rate":    p.AddPolygonRate,
		"remove_polygon_rate": p.RemovePolygonRate,
		"swap_polygon_rate":   p.SwapPolygonRate,
		"add_vertex_rate":     p.AddVertexRate,
		"remove_vertex_rate":  p.RemoveVertexRate,
		"swap_vertex_rate":    p.SwapVertexRate,
	}
	for name, r := range rates {
		if r < 0 || r > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrInvalidParams, name, r)
		}
	}

	channels := map[string]Channel{
		"red":    p.Red,
		"green":  p.Green,
		"blue":   p.Blue,
		"alpha":  p.Alpha,
		"vertex": p.Vertex,
	}
	for name, c := range channels {
		if c.Rate < 0 || c.Rate > 1 {
			return fmt.Errorf("%w: %s.rate must be in [0,1], got %g", ErrInvalidParams, name, c.Rate)
		}
		if c.Sigma < 0 {
			return fmt.Errorf("%w: %s.sigma must be non-negative, got %g", ErrInvalidParams, name, c.Sigma)
		}
		if c.Range.Min > c.Range.Max {
			return fmt.Errorf("%w: %s.range is inverted [%g, %g]", ErrInvalidParams, name, c.Range.Min, c.Range.Max)
		}
	}
	return nil
}
