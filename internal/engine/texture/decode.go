package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // TIFF decoder registration
)

// Decode decodes image data. TGA has no magic number, so it is selected by the
// file extension in name; everything else goes through the registered decoders.
func Decode(name string, data []byte) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return img, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return img, nil
}

// Load reads and decodes an image file.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// ImageToNRGBA converts any image.Image to *image.NRGBA with its origin at
// (0, 0). Colour channels stay unscaled by alpha.
func ImageToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		row := b.Dx() * 4
		for y := 0; y < b.Dy(); y++ {
			s := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+row], src.Pix[s:s+row])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Downscale shrinks img by an integer factor using approximate bilinear
// filtering. Factors below 2 return an NRGBA copy at full size. Dimensions
// never drop below one pixel.
func Downscale(img image.Image, factor int) *image.NRGBA {
	if factor < 2 {
		return ImageToNRGBA(img)
	}
	b := img.Bounds()
	w := max(b.Dx()/factor, 1)
	h := max(b.Dy()/factor, 1)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// FlipVertical returns a copy of img with the row order reversed, so that
// texture coordinate v=0 samples the bottom row.
func FlipVertical(img image.Image) *image.NRGBA {
	src := ImageToNRGBA(img)
	h := src.Bounds().Dy()
	dst := image.NewNRGBA(src.Bounds())
	row := src.Bounds().Dx() * 4
	for y := 0; y < h; y++ {
		s := (h - 1 - y) * src.Stride
		d := y * dst.Stride
		copy(dst.Pix[d:d+row], src.Pix[s:s+row])
	}
	return dst
}
