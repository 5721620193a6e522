package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-5)
}

func TestFlyCameraAxes(t *testing.T) {
	c := NewFlyCamera()
	c.Pitch = 0

	if !near(c.Forward(), mgl32.Vec3{0, 1, 0}) {
		t.Errorf("yaw 0 should look along +Y, got %v", c.Forward())
	}
	if !near(c.Right(), mgl32.Vec3{1, 0, 0}) {
		t.Errorf("yaw 0 right should be +X, got %v", c.Right())
	}

	c.Yaw = math.Pi / 2
	if !near(c.Forward(), mgl32.Vec3{-1, 0, 0}) {
		t.Errorf("yaw 90 should look along -X, got %v", c.Forward())
	}
	if !near(c.Forward().Cross(Up), c.Right()) {
		t.Errorf("right %v is not forward x up", c.Right())
	}
}

func TestFlyCameraMove(t *testing.T) {
	c := NewFlyCamera()
	c.Position = mgl32.Vec3{}
	c.Pitch = 0
	c.Speed = 10

	c.Move(1, 0, 0, 0.5)
	if !near(c.Position, mgl32.Vec3{0, 5, 0}) {
		t.Errorf("forward move: got %v", c.Position)
	}
	c.Move(0, -1, 2, 1)
	if !near(c.Position, mgl32.Vec3{-10, 5, 20}) {
		t.Errorf("strafe and climb: got %v", c.Position)
	}
}

func TestFlyCameraLookClampsPitch(t *testing.T) {
	c := NewFlyCamera()
	c.Pitch = 0
	c.Look(0, -1e6)
	if c.Pitch != c.MaxPitch {
		t.Errorf("pitch should clamp to %v, got %v", c.MaxPitch, c.Pitch)
	}
	c.Look(0, 1e6)
	if c.Pitch != -c.MaxPitch {
		t.Errorf("pitch should clamp to %v, got %v", -c.MaxPitch, c.Pitch)
	}
}

func TestViewMatrixMapsForwardToNegativeZ(t *testing.T) {
	c := NewFlyCamera()
	c.Position = mgl32.Vec3{10, 20, 30}
	c.Pitch = 0
	c.Yaw = 0

	ahead := c.ViewMatrix().Mul4x1(mgl32.Vec4{10, 120, 30, 1})
	if !near(ahead.Vec3(), mgl32.Vec3{0, 0, -100}) {
		t.Errorf("point ahead should map to view -Z, got %v", ahead)
	}
}

func TestClampToGround(t *testing.T) {
	c := NewFlyCamera()
	c.MinHeight = 10
	ground := func(x, y float64) float64 { return 100 }

	c.Position = mgl32.Vec3{0, 0, 50}
	if !c.ClampToGround(ground) {
		t.Fatal("camera below ground should be lifted")
	}
	if c.Position.Z() != 110 {
		t.Errorf("expected height 110, got %v", c.Position.Z())
	}

	c.Position = mgl32.Vec3{0, 0, 500}
	if c.ClampToGround(ground) {
		t.Error("camera above ground should not move")
	}
}

func TestHandleZoomClampsSpeed(t *testing.T) {
	c := NewFlyCamera()
	for i := 0; i < 200; i++ {
		c.HandleZoom(5)
	}
	if c.Speed != 50000 {
		t.Errorf("speed should clamp to 50000, got %v", c.Speed)
	}
	for i := 0; i < 200; i++ {
		c.HandleZoom(-5)
	}
	if c.Speed != 10 {
		t.Errorf("speed should clamp to 10, got %v", c.Speed)
	}
}
