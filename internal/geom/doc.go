// Package geom defines the candidate representation evolved by vectorize.
//
// The package defines the value types shared by the mutation engine, the
// renderer and the annealing controller:
//
//   - [Vertex]: a point normalised to [0,1] in both axes
//   - [Color]: straight (non-premultiplied) RGBA in [0,1]
//   - [Polygon]: an ordered vertex list plus a fill colour
//   - [Gene]: an ordered polygon list, painted back to front
//
// Polygons and genes own their storage. [Polygon.Clone] and [Gene.Clone]
// are deep, so a clone can be mutated without touching the original.
package geom
