package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Options control how a source image becomes a target buffer.
type Options struct {
	// MaxSize bounds the longer side in pixels; 0 keeps the original size.
	MaxSize int
	// Channels forces the buffer layout; 0 picks it from the colour model.
	Channels int
}

// Load decodes the image at path into a buffer.
func Load(path string, opts Options) (Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return Buffer{}, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return Buffer{}, fmt.Errorf("decode %s: %w", path, err)
	}

	channels := opts.Channels
	if channels == 0 {
		channels = ChannelsFor(img)
	}
	if opts.MaxSize > 0 {
		img = Downscale(img, opts.MaxSize)
	}

	buf, err := FromImage(img, channels)
	if err != nil {
		return Buffer{}, fmt.Errorf("convert %s image: %w", format, err)
	}
	return buf, nil
}

// ChannelsFor picks the buffer layout that matches img's colour model.
func ChannelsFor(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	default:
		return 4
	}
}

// Downscale shrinks img so its longer side is at most maxSize. Smaller
// images are returned unchanged.
func Downscale(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return img
	}
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// FromImage converts img to a buffer with the given channel count.
func FromImage(img image.Image, channels int) (Buffer, error) {
	b := img.Bounds()
	buf, err := NewBuffer(b.Dx(), b.Dy(), channels)
	if err != nil {
		return Buffer{}, err
	}
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			r, g, bl, a := unit16(c.R), unit16(c.G), unit16(c.B), unit16(c.A)
			i := buf.PixelIndex(x, y)
			switch channels {
			case 1:
				buf.Data[i] = Luma(r, g, bl)
			case 3:
				buf.Data[i], buf.Data[i+1], buf.Data[i+2] = r, g, bl
			default:
				buf.Data[i], buf.Data[i+1], buf.Data[i+2], buf.Data[i+3] = r, g, bl, a
			}
		}
	}
	return buf, nil
}

// Upscale resizes the rendered buffer for export.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SavePNG encodes img to path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func unit16(v uint16) float64 { return float64(v) / 0xffff }
