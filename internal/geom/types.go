package geom

import "math"

// Vertex is a polygon corner in normalised image coordinates.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Color is a straight-alpha fill colour.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Range is a closed interval used to bound channels and coordinates.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Clamp limits v to [r.Min, r.Max].
func (r Range) Clamp(v float64) float64 {
	return math.Min(r.Max, math.Max(r.Min, v))
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Span returns Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Unit is the [0,1] range used for colour channels and coordinates.
var Unit = Range{Min: 0, Max: 1}

// Polygon is an ordered list of vertices with a fill colour. Vertex order is
// the winding used by the renderer.
type Polygon struct {
	Color    Color    `json:"color"`
	Vertices []Vertex `json:"vertices"`
}

// Gene is the ordered polygon list of one candidate. Index 0 is painted first.
type Gene []Polygon

// Rand is the uniform source used to seed new geometry.
type Rand interface {
	Float64() float64
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}
