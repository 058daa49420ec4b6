package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/vectorize/internal/imaging"
)

var ErrShapeMismatch = errors.New("analysis: buffers differ in shape")

// Spectrum is the power of a residual image by radial spatial frequency.
// Bins[0] holds the lowest band and the last bin reaches the Nyquist
// corner. The mean error is kept apart in DC.
type Spectrum struct {
	Bins  []float64
	DC    float64
	Total float64
}

// HighShare is the fraction of non-DC power in the upper half of the bins.
func (s Spectrum) HighShare() float64 {
	if s.Total == 0 {
		return 0
	}
	var high float64
	for _, p := range s.Bins[len(s.Bins)/2:] {
		high += p
	}
	return high / s.Total
}

// Residual returns the per-pixel luma of candidate minus target, row-major.
func Residual(target, candidate imaging.Buffer) ([]float64, error) {
	if !target.SameShape(candidate) || target.Len() != len(target.Data) {
		return nil, fmt.Errorf("%w: target %s, candidate %s", ErrShapeMismatch, target.Shape(), candidate.Shape())
	}
	out := make([]float64, target.Width*target.Height)
	for i := range out {
		out[i] = luma(candidate, i) - luma(target, i)
	}
	return out, nil
}

func luma(b imaging.Buffer, pixel int) float64 {
	i := pixel * b.Channels
	if b.Channels == 1 {
		return b.Data[i]
	}
	return imaging.Luma(b.Data[i], b.Data[i+1], b.Data[i+2])
}

// ResidualSpectrum bins the residual power into bins radial bands.
func ResidualSpectrum(target, candidate imaging.Buffer, bins int) (Spectrum, error) {
	if bins < 1 {
		return Spectrum{}, fmt.Errorf("analysis: need at least one bin, got %d", bins)
	}
	res, err := Residual(target, candidate)
	if err != nil {
		return Spectrum{}, err
	}

	w, h := target.Width, target.Height
	grid := make([][]float64, h)
	for y := range grid {
		grid[y] = res[y*w : (y+1)*w]
	}
	f := fft.FFT2Real(grid)

	s := Spectrum{Bins: make([]float64, bins)}
	norm := float64(w * h)
	for ky := 0; ky < h; ky++ {
		fy := float64(min(ky, h-ky)) / float64(h)
		for kx := 0; kx < w; kx++ {
			p := cmplx.Abs(f[ky][kx])
			p = p * p / norm
			if kx == 0 && ky == 0 {
				s.DC = p
				continue
			}
			fx := float64(min(kx, w-kx)) / float64(w)
			// Radius 1 is the (1/2, 1/2) corner.
			r := math.Hypot(fx, fy) / math.Sqrt2 * 2
			b := min(int(r*float64(bins)), bins-1)
			s.Bins[b] += p
			s.Total += p
		}
	}
	return s, nil
}
