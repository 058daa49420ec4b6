package anneal

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
)

var (
	// ErrShapeMismatch indicates the target and candidate buffers disagree on
	// width, height or channel count.
	ErrShapeMismatch = errors.New("anneal: target and candidate shapes differ")

	// ErrEmptyTarget indicates a target with no pixels.
	ErrEmptyTarget = errors.New("anneal: empty target image")
)

// Candidate is the single live lineage: a gene, its rendering and its score.
type Candidate struct {
	Gene    geom.Gene
	Pixels  imaging.Buffer
	Fitness float64

	scratch  imaging.Buffer
	rendered bool
}

// Stale reports whether Pixels has never been rendered from Gene.
func (c *Candidate) Stale() bool { return !c.rendered }

// State pairs the target with the live candidate. Both buffers always share
// the target's shape.
type State struct {
	Target    imaging.Buffer
	Candidate *Candidate
}

// Options control how the initial candidate is seeded.
type Options struct {
	InitialPolygons int `yaml:"initial_polygons" json:"initial_polygons"`
	InitialVertices int `yaml:"initial_vertices" json:"initial_vertices"`
}

func DefaultOptions() Options {
	return Options{InitialPolygons: 3, InitialVertices: 8}
}

// NewState seeds a candidate from m and allocates its buffers at the
// target's shape. Fitness starts at +Inf so the first scored step is always
// accepted.
func NewState(target imaging.Buffer, m Mutator, opts Options) (*State, error) {
	if opts.InitialPolygons < 1 || opts.InitialVertices < 1 {
		return nil, fmt.Errorf("anneal: initial polygons and vertices must be positive, got %d and %d",
			opts.InitialPolygons, opts.InitialVertices)
	}
	if target.Width <= 0 || target.Height <= 0 || target.Len() == 0 {
		return nil, ErrEmptyTarget
	}
	if len(target.Data) != target.Len() {
		return nil, fmt.Errorf("%w: target %s holds %d samples", ErrShapeMismatch, target.Shape(), len(target.Data))
	}
	return NewStateFromGene(target, m.Seed(opts.InitialPolygons, opts.InitialVertices))
}

// NewStateFromGene wraps an existing gene, for resuming a stored run.
func NewStateFromGene(target imaging.Buffer, g geom.Gene) (*State, error) {
	if target.Width <= 0 || target.Height <= 0 || target.Len() == 0 {
		return nil, ErrEmptyTarget
	}
	if len(target.Data) != target.Len() {
		return nil, fmt.Errorf("%w: target %s holds %d samples", ErrShapeMismatch, target.Shape(), len(target.Data))
	}
	if len(g) == 0 {
		return nil, geom.ErrEmptyGene
	}
	pixels, err := imaging.NewBuffer(target.Width, target.Height, target.Channels)
	if err != nil {
		return nil, err
	}
	scratch, _ := imaging.NewBuffer(target.Width, target.Height, target.Channels)

	return &State{
		Target: target,
		Candidate: &Candidate{
			Gene:    g,
			Pixels:  pixels,
			Fitness: math.Inf(1),
			scratch: scratch,
		},
	}, nil
}

func (s *State) check() error {
	c := s.Candidate
	if c == nil {
		return fmt.Errorf("anneal: state has no candidate")
	}
	if !s.Target.SameShape(c.Pixels) || !s.Target.SameShape(c.scratch) {
		return fmt.Errorf("%w: target %s, candidate %s", ErrShapeMismatch, s.Target.Shape(), c.Pixels.Shape())
	}
	return nil
}
