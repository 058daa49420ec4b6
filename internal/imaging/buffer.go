package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

var (
	ErrChannels = errors.New("imaging: channel count must be 1, 3 or 4")
	ErrBounds   = errors.New("imaging: width and height must be positive")
)

// Buffer is a row-major, channel-interleaved float image with samples in
// [0,1]. Row 0 is the top of the image.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Data     []float64
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height, channels int) (Buffer, error) {
	if width <= 0 || height <= 0 {
		return Buffer{}, fmt.Errorf("%w: %dx%d", ErrBounds, width, height)
	}
	switch channels {
	case 1, 3, 4:
	default:
		return Buffer{}, fmt.Errorf("%w: got %d", ErrChannels, channels)
	}
	return Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Data:     make([]float64, width*height*channels),
	}, nil
}

// Len is the expected sample count for the buffer's shape.
func (b Buffer) Len() int { return b.Width * b.Height * b.Channels }

// SameShape reports whether b and o have identical layout.
func (b Buffer) SameShape(o Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height && b.Channels == o.Channels &&
		len(b.Data) == len(o.Data)
}

// Shape formats the layout for error messages.
func (b Buffer) Shape() string {
	return fmt.Sprintf("%dx%dx%d[%d]", b.Width, b.Height, b.Channels, len(b.Data))
}

// PixelIndex returns the offset of the first sample of pixel (x, y).
func (b Buffer) PixelIndex(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// Clone returns a copy with independent storage.
func (b Buffer) Clone() Buffer {
	c := b
	c.Data = make([]float64, len(b.Data))
	copy(c.Data, b.Data)
	return c
}

// RGB returns the colour at normalised coordinates (u, v). Single-channel
// buffers report the grey level on all three channels.
func (b Buffer) RGB(u, v float64) (r, g, bl float64) {
	x := clampInt(int(u*float64(b.Width)), 0, b.Width-1)
	y := clampInt(int(v*float64(b.Height)), 0, b.Height-1)
	i := b.PixelIndex(x, y)
	if b.Channels == 1 {
		return b.Data[i], b.Data[i], b.Data[i]
	}
	return b.Data[i], b.Data[i+1], b.Data[i+2]
}

// Fill sets every pixel to c. Single-channel buffers receive the luma of c.
func (b Buffer) Fill(c [4]float64) {
	for i := 0; i < len(b.Data); i += b.Channels {
		switch b.Channels {
		case 1:
			b.Data[i] = Luma(c[0], c[1], c[2])
		case 3:
			b.Data[i], b.Data[i+1], b.Data[i+2] = c[0], c[1], c[2]
		default:
			b.Data[i], b.Data[i+1], b.Data[i+2], b.Data[i+3] = c[0], c[1], c[2], c[3]
		}
	}
}

// Luma is the Rec. 601 weighting used for single-channel targets.
func Luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// ToImage converts the buffer to an 8-bit image for display or encoding.
func (b Buffer) ToImage() image.Image {
	rect := image.Rect(0, 0, b.Width, b.Height)
	if b.Channels == 1 {
		img := image.NewGray(rect)
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				img.SetGray(x, y, color.Gray{Y: to8(b.Data[b.PixelIndex(x, y)])})
			}
		}
		return img
	}
	img := image.NewNRGBA(rect)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := b.PixelIndex(x, y)
			a := uint8(255)
			if b.Channels == 4 {
				a = to8(b.Data[i+3])
			}
			img.SetNRGBA(x, y, color.NRGBA{R: to8(b.Data[i]), G: to8(b.Data[i+1]), B: to8(b.Data[i+2]), A: a})
		}
	}
	return img
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Min(1, math.Max(0, v)) * 255))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
