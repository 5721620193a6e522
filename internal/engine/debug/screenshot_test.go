package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFlipRows(t *testing.T) {
	// Two rows: bottom red, top blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRows(pixels, 1, 2)
	if err != nil {
		t.Fatalf("FlipRows failed: %v", err)
	}
	if c := img.RGBAAt(0, 0); c.B != 255 || c.R != 0 {
		t.Errorf("top row should be blue, got %v", c)
	}
	if c := img.RGBAAt(0, 1); c.R != 255 || c.B != 0 {
		t.Errorf("bottom row should be red, got %v", c)
	}

	if _, err := FlipRows(pixels, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "terrain")
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	pixels := make([]byte, 4*3*4)
	for i := range pixels {
		pixels[i] = 200
	}
	name, err := sc.CaptureFromPixels(pixels, 4, 3)
	if err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if want := filepath.Join(dir, "terrain_2024-05-01_12-30-00.000.png"); name != want {
		t.Errorf("expected %s, got %s", want, name)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatalf("screenshot not written: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("screenshot is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("unexpected size %v", b)
	}
}

func TestGenerateFilenameWithoutDir(t *testing.T) {
	sc := NewScreenshotCapture("", "shot")
	name := sc.GenerateFilename()
	if !strings.HasPrefix(name, "shot_") || !strings.HasSuffix(name, ".png") {
		t.Errorf("unexpected name %s", name)
	}
}
