package geom

import (
	"errors"
	"fmt"
)

// Invariant violations. None of these are reachable through the mutation
// engine; seeing one means a guard is broken.
var (
	ErrEmptyPolygon    = errors.New("geom: polygon has no vertices")
	ErrEmptyGene       = errors.New("geom: gene has no polygons")
	ErrTooManyPolygons = errors.New("geom: gene exceeds polygon cap")
	ErrOutOfRange      = errors.New("geom: value outside declared range")
)

// InvariantError locates a violation inside a gene.
type InvariantError struct {
	Polygon int
	Field   string
	Value   float64
	Wrapped error
}

func (e *InvariantError) Error() string {
	if e.Polygon < 0 {
		return fmt.Sprintf("%v (%s=%g)", e.Wrapped, e.Field, e.Value)
	}
	return fmt.Sprintf("polygon %d: %v (%s=%g)", e.Polygon, e.Wrapped, e.Field, e.Value)
}

func (e *InvariantError) Unwrap() error {
	return e.Wrapped
}
