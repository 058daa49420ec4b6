// Package fitness scores a rendered candidate against its target.
package fitness

import (
	"errors"
	"fmt"

	"github.com/san-kum/vectorize/internal/imaging"
)

var ErrShapeMismatch = errors.New("fitness: buffer shapes differ")

// Evaluate returns the mean squared difference over colour samples. In a
// 4-channel buffer the alpha sample of every pixel is skipped; 1- and
// 3-channel buffers count every sample. Lower is better and identical colour
// channels score 0.
func Evaluate(a, b imaging.Buffer) (float64, error) {
	if !a.SameShape(b) || len(a.Data) != a.Len() {
		return 0, fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a.Shape(), b.Shape())
	}
	if a.Width == 0 || a.Height == 0 || a.Channels == 0 {
		return 0, fmt.Errorf("%w: empty buffer", ErrShapeMismatch)
	}
	return sumSquares(a.Data, b.Data, a.Channels) / float64(a.Width*a.Height*ColorChannels(a.Channels)), nil
}

// MustEvaluate is Evaluate for callers that have already checked shapes.
func MustEvaluate(a, b imaging.Buffer) float64 {
	f, err := Evaluate(a, b)
	if err != nil {
		panic(err)
	}
	return f
}

// ColorChannels is the number of samples per pixel that contribute to the
// score.
func ColorChannels(channels int) int {
	if channels == 4 {
		return 3
	}
	return channels
}

func sumSquares(a, b []float64, channels int) float64 {
	sum := 0.0
	if channels != 4 {
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return sum
	}
	for i := 0; i < len(a); i += 4 {
		dr := a[i] - b[i]
		dg := a[i+1] - b[i+1]
		db := a[i+2] - b[i+2]
		sum += dr*dr + dg*dg + db*db
	}
	return sum
}
