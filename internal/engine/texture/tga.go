// Package texture decodes heightmap and surface images and prepares them for upload.
package texture

import (
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeRLE          = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

const (
	tgaHeaderSize            = 18
	tgaDescriptorTopToBottom = 0x20
)

// DecodeTGA decodes a TGA image file.
// Grayscale types (3, 11) decode to *image.Gray, which is the usual format for
// 8-bit heightmaps; true-color types (2, 10) at 24 or 32 bpp decode to *image.NRGBA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&tgaDescriptorTopToBottom != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("TGA has empty dimensions %dx%d", width, height)
	}

	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	rle := imageType == TGATypeRLE || imageType == TGATypeGrayRLE
	switch {
	case gray && bpp != 8:
		return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d (only 8 supported)", bpp)
	case !gray && imageType != TGATypeUncompressed && imageType != TGATypeRLE:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	var img pixelSink
	if gray {
		img = graySink{image.NewGray(image.Rect(0, 0, width, height))}
	} else {
		img = nrgbaSink{image.NewNRGBA(image.Rect(0, 0, width, height))}
	}

	d := tgaDecoder{
		src:         data[offset:],
		width:       width,
		height:      height,
		bpp:         bpp / 8,
		topToBottom: topToBottom,
		dst:         img,
	}
	var err error
	if rle {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return img.Image(), nil
}

// pixelSink hides the destination pixel format from the decoder loops.
type pixelSink interface {
	set(x, y int, px []byte)
	Image() image.Image
}

type graySink struct{ img *image.Gray }

func (s graySink) set(x, y int, px []byte) { s.img.SetGray(x, y, color.Gray{Y: px[0]}) }

func (s graySink) Image() image.Image { return s.img }

type nrgbaSink struct{ img *image.NRGBA }

// set stores a BGR(A) TGA pixel. TGA alpha is straight, not premultiplied.
func (s nrgbaSink) set(x, y int, px []byte) {
	a := uint8(255)
	if len(px) == 4 {
		a = px[3]
	}
	s.img.SetNRGBA(x, y, color.NRGBA{R: px[2], G: px[1], B: px[0], A: a})
}

func (s nrgbaSink) Image() image.Image { return s.img }

type tgaDecoder struct {
	src         []byte
	width       int
	height      int
	bpp         int
	topToBottom bool
	dst         pixelSink
}

// put writes the n-th pixel in file order, flipping rows for bottom-up files.
func (d *tgaDecoder) put(n int, px []byte) {
	x := n % d.width
	y := n / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	d.dst.set(x, y, px)
}

func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	if len(d.src) < count*d.bpp {
		return fmt.Errorf("TGA pixel data truncated")
	}
	for n := 0; n < count; n++ {
		d.put(n, d.src[n*d.bpp:(n+1)*d.bpp])
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	count := d.width * d.height
	n, i := 0, 0

	for n < count {
		if i >= len(d.src) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d of %d", n, count)
		}
		packet := d.src[i]
		i++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Repeat one pixel run times.
			if i+d.bpp > len(d.src) {
				return fmt.Errorf("TGA RLE packet truncated")
			}
			px := d.src[i : i+d.bpp]
			i += d.bpp
			for k := 0; k < run && n < count; k++ {
				d.put(n, px)
				n++
			}
			continue
		}

		for k := 0; k < run && n < count; k++ {
			if i+d.bpp > len(d.src) {
				return fmt.Errorf("TGA raw packet truncated")
			}
			d.put(n, d.src[i:i+d.bpp])
			i += d.bpp
			n++
		}
	}
	return nil
}
