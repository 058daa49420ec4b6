// Package render rasterises genes into float pixel buffers.
//
// Polygons are converted to coverage masks with golang.org/x/image/vector and
// composited back to front with straight-alpha source-over blending onto an
// opaque background.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
)

// Mode selects how a polygon's vertex list becomes filled area.
type Mode string

const (
	// ModePolygon fills the closed path through the vertices in order.
	ModePolygon Mode = "polygon"
	// ModeStrip fills the triangle strip (v0,v1,v2), (v1,v2,v3), ...
	// Each triangle is blended separately, so overlaps darken.
	ModeStrip Mode = "strip"
)

var ErrUnknownMode = errors.New("render: unknown fill mode")

// ParseMode validates a mode name. The empty string selects ModePolygon.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModePolygon:
		return ModePolygon, nil
	case ModeStrip:
		return ModeStrip, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Options configure a Rasterizer.
type Options struct {
	Mode       Mode       `json:"mode"`
	Background geom.Color `json:"background"`
}

// DefaultOptions fill polygons over opaque black.
func DefaultOptions() Options {
	return Options{
		Mode:       ModePolygon,
		Background: geom.Color{A: 1},
	}
}

// Rasterizer renders genes on the CPU. It reuses its scratch mask between
// calls and is not safe for concurrent use.
type Rasterizer struct {
	opts Options
	z    *vector.Rasterizer
	mask *image.Alpha
}

func New(opts Options) *Rasterizer {
	if opts.Mode == "" {
		opts.Mode = ModePolygon
	}
	return &Rasterizer{opts: opts}
}

func (r *Rasterizer) Options() Options { return r.opts }

// Render clears dst to the background and paints g onto it in order.
func (r *Rasterizer) Render(g geom.Gene, dst *imaging.Buffer) error {
	if dst.Width <= 0 || dst.Height <= 0 || len(dst.Data) != dst.Len() {
		return fmt.Errorf("render: invalid destination %s", dst.Shape())
	}
	r.ensure(dst.Width, dst.Height)

	bg := r.opts.Background
	dst.Fill([4]float64{bg.R, bg.G, bg.B, bg.A})

	w, h := float32(dst.Width), float32(dst.Height)
	for _, p := range g {
		switch r.opts.Mode {
		case ModeStrip:
			for i := 0; i+2 < len(p.Vertices); i++ {
				r.fill(dst, p.Color, p.Vertices[i:i+3], w, h)
			}
		default:
			if len(p.Vertices) >= 3 {
				r.fill(dst, p.Color, p.Vertices, w, h)
			}
		}
	}
	return nil
}

func (r *Rasterizer) ensure(w, h int) {
	if r.mask == nil || r.mask.Rect.Dx() != w || r.mask.Rect.Dy() != h {
		r.mask = image.NewAlpha(image.Rect(0, 0, w, h))
		r.z = vector.NewRasterizer(w, h)
	}
}

// fill rasterises one closed path into the mask and blends c through it.
func (r *Rasterizer) fill(dst *imaging.Buffer, c geom.Color, vs []geom.Vertex, w, h float32) {
	r.z.Reset(dst.Width, dst.Height)
	r.z.DrawOp = draw.Src

	r.z.MoveTo(float32(vs[0].X)*w, float32(vs[0].Y)*h)
	for _, v := range vs[1:] {
		r.z.LineTo(float32(v.X)*w, float32(v.Y)*h)
	}
	r.z.ClosePath()
	r.z.Draw(r.mask, r.mask.Bounds(), image.Opaque, image.Point{})

	box := bounds(vs, dst.Width, dst.Height)
	luma := imaging.Luma(c.R, c.G, c.B)
	for y := box.Min.Y; y < box.Max.Y; y++ {
		row := r.mask.Pix[y*r.mask.Stride:]
		for x := box.Min.X; x < box.Max.X; x++ {
			cov := row[x]
			if cov == 0 {
				continue
			}
			a := c.A * float64(cov) / 255
			i := dst.PixelIndex(x, y)
			d := dst.Data
			switch dst.Channels {
			case 1:
				d[i] = luma*a + d[i]*(1-a)
			case 3:
				d[i] = c.R*a + d[i]*(1-a)
				d[i+1] = c.G*a + d[i+1]*(1-a)
				d[i+2] = c.B*a + d[i+2]*(1-a)
			default:
				d[i] = c.R*a + d[i]*(1-a)
				d[i+1] = c.G*a + d[i+1]*(1-a)
				d[i+2] = c.B*a + d[i+2]*(1-a)
				d[i+3] = a + d[i+3]*(1-a)
			}
		}
	}
}

// bounds returns the pixel rectangle covering vs, clipped to the image.
func bounds(vs []geom.Vertex, w, h int) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vs {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	rect := image.Rect(
		int(math.Floor(minX*float64(w))), int(math.Floor(minY*float64(h))),
		int(math.Ceil(maxX*float64(w))), int(math.Ceil(maxY*float64(h))),
	)
	return rect.Intersect(image.Rect(0, 0, w, h))
}
