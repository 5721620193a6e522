package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestTGA builds a TGA file with the given header fields and payload.
func createTestTGA(imageType byte, width, height int, bpp byte, topToBottom bool, payload []byte) []byte {
	header := make([]byte, 18)
	header[2] = imageType
	header[12] = byte(width)
	header[13] = byte(width >> 8)
	header[14] = byte(height)
	header[15] = byte(height >> 8)
	header[16] = bpp
	if topToBottom {
		header[17] = 0x20
	}
	return append(header, payload...)
}

func TestDecodeTGAGrayscale(t *testing.T) {
	// 2x2, top-to-bottom rows: 10 20 / 30 40
	data := createTestTGA(TGATypeGray, 2, 2, 8, true, []byte{10, 20, 30, 40})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if got := gray.GrayAt(1, 0).Y; got != 20 {
		t.Errorf("expected pixel (1,0)=20, got %d", got)
	}
	if got := gray.GrayAt(0, 1).Y; got != 30 {
		t.Errorf("expected pixel (0,1)=30, got %d", got)
	}
}

func TestDecodeTGABottomUpFlipsRows(t *testing.T) {
	// Bottom-up file: first row in the file is the bottom of the image.
	data := createTestTGA(TGATypeGray, 1, 2, 8, false, []byte{7, 9})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	gray := img.(*image.Gray)
	if gray.GrayAt(0, 1).Y != 7 || gray.GrayAt(0, 0).Y != 9 {
		t.Errorf("rows not flipped: top=%d bottom=%d", gray.GrayAt(0, 0).Y, gray.GrayAt(0, 1).Y)
	}
}

func TestDecodeTGAGrayRLE(t *testing.T) {
	// One run packet of 3 pixels valued 200, then a raw packet of 1 pixel valued 5.
	payload := []byte{0x80 | 2, 200, 0x00, 5}
	data := createTestTGA(TGATypeGrayRLE, 2, 2, 8, true, payload)

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	gray := img.(*image.Gray)
	want := []uint8{200, 200, 200, 5}
	for i, w := range want {
		if got := gray.GrayAt(i%2, i/2).Y; got != w {
			t.Errorf("pixel %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestDecodeTGATrueColor(t *testing.T) {
	// Single BGR pixel.
	data := createTestTGA(TGATypeUncompressed, 1, 1, 24, true, []byte{1, 2, 3})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	c := img.(*image.NRGBA).NRGBAAt(0, 0)
	if c.R != 3 || c.G != 2 || c.B != 1 || c.A != 255 {
		t.Errorf("expected NRGBA(3,2,1,255), got %v", c)
	}
}

func TestDecodeTGAStraightAlpha(t *testing.T) {
	// Single BGRA pixel, white at half alpha.
	data := createTestTGA(TGATypeUncompressed, 1, 1, 32, true, []byte{255, 255, 255, 128})

	img, err := DecodeTGA(data)
	if err != nil {
		t.Fatalf("DecodeTGA failed: %v", err)
	}
	c := img.(*image.NRGBA).NRGBAAt(0, 0)
	if c != (color.NRGBA{R: 255, G: 255, B: 255, A: 128}) {
		t.Errorf("colour should not be scaled by alpha, got %v", c)
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too short", []byte{0, 0, 2}},
		{"color mapped", func() []byte { d := createTestTGA(1, 1, 1, 8, true, []byte{0}); d[1] = 1; return d }()},
		{"bad gray depth", createTestTGA(TGATypeGray, 1, 1, 16, true, []byte{0, 0})},
		{"bad color depth", createTestTGA(TGATypeUncompressed, 1, 1, 16, true, []byte{0, 0})},
		{"truncated pixels", createTestTGA(TGATypeGray, 4, 4, 8, true, []byte{1, 2, 3})},
		{"truncated rle", createTestTGA(TGATypeGrayRLE, 4, 4, 8, true, []byte{0x80 | 1, 9})},
		{"empty", createTestTGA(TGATypeGray, 0, 4, 8, true, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeTGA(tt.data); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDecodeSelectsByExtension(t *testing.T) {
	var buf bytes.Buffer
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	src.SetGray(1, 1, color.Gray{Y: 77})
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png encode: %v", err)
	}

	img, err := Decode("heightmap.png", buf.Bytes())
	if err != nil {
		t.Fatalf("Decode png failed: %v", err)
	}
	r, _, _, _ := img.At(1, 1).RGBA()
	if uint8(r>>8) != 77 {
		t.Errorf("expected 77 at (1,1), got %d", r>>8)
	}

	tga := createTestTGA(TGATypeGray, 1, 1, 8, true, []byte{42})
	if _, err := Decode("HEIGHTMAP.TGA", tga); err != nil {
		t.Errorf("expected upper-case .TGA to decode, got %v", err)
	}
	if _, err := Decode("heightmap.png", tga); err == nil {
		t.Error("expected TGA bytes under a .png name to fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.tga")
	if err := os.WriteFile(path, createTestTGA(TGATypeGray, 1, 1, 8, true, []byte{1}), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("Load failed: %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDownscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for i := range src.Pix {
		src.Pix[i] = 128
	}

	tests := []struct {
		factor int
		w, h   int
	}{
		{1, 8, 6},
		{2, 4, 3},
		{4, 2, 1},
		{100, 1, 1},
	}
	for _, tt := range tests {
		dst := Downscale(src, tt.factor)
		if dst.Bounds().Dx() != tt.w || dst.Bounds().Dy() != tt.h {
			t.Errorf("factor %d: expected %dx%d, got %v", tt.factor, tt.w, tt.h, dst.Bounds())
		}
		if c := dst.NRGBAAt(0, 0); c.R != 128 {
			t.Errorf("factor %d: expected uniform value preserved, got %v", tt.factor, c)
		}
	}
}

func TestImageToNRGBARebasesOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 7, 7))
	src.SetGray(5, 5, color.Gray{Y: 9})

	n := ImageToNRGBA(src)
	if n.Bounds().Min != (image.Point{}) {
		t.Fatalf("expected origin at zero, got %v", n.Bounds())
	}
	if n.NRGBAAt(0, 0).R != 9 {
		t.Errorf("expected 9 at origin, got %v", n.NRGBAAt(0, 0))
	}

	sub := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	sub.SetNRGBA(1, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 64})
	n = ImageToNRGBA(sub.SubImage(image.Rect(1, 1, 3, 3)))
	if got := n.NRGBAAt(0, 1); got != (color.NRGBA{R: 200, G: 100, B: 50, A: 64}) {
		t.Errorf("sub-image pixel = %v, want the source values", got)
	}
}

func TestDownscaleKeepsStraightAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 255, 255, 255, 128
	}
	for _, factor := range []int{1, 2} {
		c := Downscale(src, factor).NRGBAAt(0, 0)
		if c.R < 254 || c.A < 127 || c.A > 128 {
			t.Errorf("factor %d: got %v, want white at half alpha", factor, c)
		}
	}
}

func TestFlipVertical(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(y * 100), G: uint8(x), A: 255})
		}
	}

	flipped := FlipVertical(img)
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			if got, want := flipped.NRGBAAt(x, y), img.RGBAAt(x, 2-y); got.R != want.R || got.G != want.G || got.A != want.A {
				t.Errorf("(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
	if img.RGBAAt(0, 0).R != 0 {
		t.Error("source image must not be modified")
	}

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	translucent.SetNRGBA(0, 1, color.NRGBA{R: 250, G: 250, B: 250, A: 10})
	if got := FlipVertical(translucent).NRGBAAt(0, 0); got != (color.NRGBA{R: 250, G: 250, B: 250, A: 10}) {
		t.Errorf("flip changed a translucent pixel: %v", got)
	}
}
