package render

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/vectorize/internal/geom"
	"github.com/san-kum/vectorize/internal/imaging"
)

func fullQuad(c geom.Color) geom.Polygon {
	return geom.Polygon{
		Color:    c,
		Vertices: []geom.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
	}
}

func pixel(b imaging.Buffer, x, y int) []float64 {
	i := b.PixelIndex(x, y)
	return b.Data[i : i+b.Channels]
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestRender_Background(t *testing.T) {
	buf, _ := imaging.NewBuffer(3, 3, 4)
	r := New(DefaultOptions())
	if err := r.Render(nil, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			p := pixel(buf, x, y)
			if p[0] != 0 || p[1] != 0 || p[2] != 0 || p[3] != 1 {
				t.Fatalf("pixel (%d,%d) = %v, want opaque black", x, y, p)
			}
		}
	}
}

func TestRender_OpaqueQuad(t *testing.T) {
	buf, _ := imaging.NewBuffer(4, 4, 4)
	r := New(DefaultOptions())
	c := geom.Color{R: 0.2, G: 0.4, B: 0.8, A: 1}

	if err := r.Render(geom.Gene{fullQuad(c)}, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, pt := range [][2]int{{0, 0}, {1, 2}, {3, 3}} {
		p := pixel(buf, pt[0], pt[1])
		if !near(p[0], 0.2) || !near(p[1], 0.4) || !near(p[2], 0.8) {
			t.Errorf("pixel %v = %v, want quad colour", pt, p)
		}
	}
}

func TestRender_SourceOver(t *testing.T) {
	buf, _ := imaging.NewBuffer(2, 2, 4)
	r := New(DefaultOptions())

	if err := r.Render(geom.Gene{fullQuad(geom.Color{R: 1, A: 0.5})}, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	p := pixel(buf, 1, 1)
	if !near(p[0], 0.5) || !near(p[1], 0) || !near(p[3], 1) {
		t.Errorf("half red over black = %v, want [0.5 0 0 1]", p)
	}
}

func TestRender_PaintOrder(t *testing.T) {
	buf, _ := imaging.NewBuffer(2, 2, 3)
	r := New(DefaultOptions())
	g := geom.Gene{
		fullQuad(geom.Color{R: 1, A: 1}),
		fullQuad(geom.Color{B: 1, A: 1}),
	}
	if err := r.Render(g, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if p := pixel(buf, 0, 0); !near(p[0], 0) || !near(p[2], 1) {
		t.Errorf("pixel = %v, want last polygon on top", p)
	}
}

func TestRender_Gray(t *testing.T) {
	buf, _ := imaging.NewBuffer(2, 2, 1)
	r := New(DefaultOptions())
	if err := r.Render(geom.Gene{fullQuad(geom.Color{R: 1, G: 1, B: 1, A: 1})}, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if p := pixel(buf, 1, 0); !near(p[0], 1) {
		t.Errorf("gray pixel = %v, want 1", p)
	}
}

func TestRender_Strip(t *testing.T) {
	buf, _ := imaging.NewBuffer(4, 4, 4)
	r := New(Options{Mode: ModeStrip, Background: geom.Color{A: 1}})
	strip := geom.Polygon{
		Color:    geom.Color{G: 1, A: 1},
		Vertices: []geom.Vertex{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}},
	}
	if err := r.Render(geom.Gene{strip}, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for _, pt := range [][2]int{{0, 0}, {3, 3}} {
		if p := pixel(buf, pt[0], pt[1]); !near(p[1], 1) {
			t.Errorf("pixel %v = %v, want green", pt, p)
		}
	}
}

func TestRender_DegeneratePolygonSkipped(t *testing.T) {
	buf, _ := imaging.NewBuffer(2, 2, 4)
	r := New(DefaultOptions())
	line := geom.Polygon{Color: geom.Color{R: 1, A: 1}, Vertices: []geom.Vertex{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	if err := r.Render(geom.Gene{line}, &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	for i := 0; i < len(buf.Data); i += 4 {
		if buf.Data[i] != 0 {
			t.Fatal("two-vertex polygon painted pixels")
		}
	}
}

func TestRender_InvalidDestination(t *testing.T) {
	r := New(DefaultOptions())
	bad := imaging.Buffer{Width: 2, Height: 2, Channels: 4, Data: make([]float64, 3)}
	if err := r.Render(nil, &bad); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  error
	}{
		{"", ModePolygon, nil},
		{"polygon", ModePolygon, nil},
		{"strip", ModeStrip, nil},
		{"fan", "", ErrUnknownMode},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if !errors.Is(err, tt.err) || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}
