// Package heightmap holds decoded heightmap pixels and answers elevation
// queries in world coordinates.
package heightmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Faultbox/splay-terrain/internal/engine/texture"
)

// channelMax is the largest sum of the three colour channels.
const channelMax = 3 * 255

// ErrEmpty is returned for rasters without pixels.
var ErrEmpty = errors.New("heightmap: empty raster")

// World describes the area a raster is stretched over.
type World struct {
	SizeX        float64
	SizeY        float64
	MaxElevation float64
}

// Raster is a row-major, top row first, 8-bit heightmap. Build it with New,
// FromImage or Load; a literal whose Data is shorter than
// Width*Height*Channels reads as empty past the end of Data.
type Raster struct {
	Width    int
	Height   int
	Channels int // 3 (RGB) or 4 (RGBA)
	Data     []byte
}

// New validates and wraps pixel data.
func New(width, height, channels int, data []byte) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmpty, width, height)
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("heightmap: unsupported channel count %d", channels)
	}
	if want := width * height * channels; len(data) != want {
		return nil, fmt.Errorf("heightmap: expected %d bytes for %dx%dx%d, got %d",
			want, width, height, channels, len(data))
	}
	return &Raster{Width: width, Height: height, Channels: channels, Data: data}, nil
}

// FromImage copies img into an RGBA raster, shrinking it by descale first.
// Colour channels are kept as stored, not scaled by alpha.
func FromImage(img image.Image, descale int) (*Raster, error) {
	if img == nil {
		return nil, ErrEmpty
	}
	n := texture.Downscale(img, descale)
	b := n.Bounds()

	data := make([]byte, b.Dx()*b.Dy()*4)
	for y := 0; y < b.Dy(); y++ {
		row := n.Pix[y*n.Stride : y*n.Stride+b.Dx()*4]
		copy(data[y*b.Dx()*4:], row)
	}
	return New(b.Dx(), b.Dy(), 4, data)
}

// Load decodes an image file into a raster.
func Load(path string, descale int) (*Raster, error) {
	img, err := texture.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load heightmap: %w", err)
	}
	return FromImage(img, descale)
}

// Pixel returns the channels of the pixel at (x, y), or nil when (x, y) is
// out of range or past the end of Data.
func (r *Raster) Pixel(x, y int) []byte {
	if r == nil || r.Channels <= 0 || x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return nil
	}
	i := (y*r.Width + x) * r.Channels
	if i+r.Channels > len(r.Data) {
		return nil
	}
	return r.Data[i : i+r.Channels]
}

// value is the normalised height of the pixel at (x, y), clamped into the raster.
func (r *Raster) value(x, y int) float64 {
	x = min(max(x, 0), r.Width-1)
	y = min(max(y, 0), r.Height-1)
	px := r.Pixel(x, y)
	if len(px) < 3 {
		return 0
	}
	return float64(int(px[0])+int(px[1])+int(px[2])) / channelMax
}

func (r *Raster) inWorld(x, y float64, w World) bool {
	return r != nil && x >= 0 && y >= 0 && x <= w.SizeX && y <= w.SizeY && w.SizeX > 0 && w.SizeY > 0
}

// Elevation returns the height at world position (x, y). The raster's top row
// maps to y = SizeY. Positions outside the world return 0.
func (r *Raster) Elevation(x, y float64, w World) float64 {
	if !r.inWorld(x, y, w) {
		return 0
	}
	px := int(math.Floor(x / w.SizeX * float64(r.Width)))
	py := int(math.Floor((1 - y/w.SizeY) * float64(r.Height)))
	return r.value(px, py) * w.MaxElevation
}

// InterpolatedElevation is Elevation with bilinear filtering between the four
// surrounding pixel centres.
func (r *Raster) InterpolatedElevation(x, y float64, w World) float64 {
	if !r.inWorld(x, y, w) {
		return 0
	}
	fx := x/w.SizeX*float64(r.Width) - 0.5
	fy := (1-y/w.SizeY)*float64(r.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := clamp01(fx - float64(x0))
	ty := clamp01(fy - float64(y0))

	top := r.value(x0, y0)*(1-tx) + r.value(x0+1, y0)*tx
	bottom := r.value(x0, y0+1)*(1-tx) + r.value(x0+1, y0+1)*tx
	return (top*(1-ty) + bottom*ty) * w.MaxElevation
}

// Image returns the raster as an NRGBA image. Three-channel rasters are opaque.
func (r *Raster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			px := r.Pixel(x, y)
			if len(px) < 3 {
				continue
			}
			a := uint8(255)
			if len(px) == 4 {
				a = px[3]
			}
			img.SetNRGBA(x, y, color.NRGBA{R: px[0], G: px[1], B: px[2], A: a})
		}
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
