// Package camera provides camera implementations for 3D rendering.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Up is the world up axis. Terrain lies on the XY plane with elevation on Z.
var Up = mgl32.Vec3{0, 0, 1}

// FlyCamera is a free-flying first person camera.
type FlyCamera struct {
	Position mgl32.Vec3

	// Orientation in radians. Yaw 0 looks along +Y.
	Yaw   float32
	Pitch float32

	// Projection
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32

	// Constraints
	MaxPitch  float32
	MinHeight float32 // above ground, see ClampToGround

	// Sensitivity
	Speed           float32 // units per second
	LookSensitivity float32 // radians per pixel
	ZoomSensitivity float32
}

// NewFlyCamera creates a camera above the origin looking along +Y.
func NewFlyCamera() *FlyCamera {
	return &FlyCamera{
		Position:        mgl32.Vec3{0, 0, 300},
		Pitch:           -0.3,
		FOV:             60,
		Near:            1,
		Far:             100000,
		MaxPitch:        1.5,
		MinHeight:       10,
		Speed:           500,
		LookSensitivity: 0.003,
		ZoomSensitivity: 0.1,
	}
}

// Forward returns the unit view direction.
func (c *FlyCamera) Forward() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	return mgl32.Vec3{
		-float32(math.Sin(float64(c.Yaw))) * cp,
		float32(math.Cos(float64(c.Yaw))) * cp,
		float32(math.Sin(float64(c.Pitch))),
	}
}

// Right returns the unit horizontal right direction.
func (c *FlyCamera) Right() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.Cos(float64(c.Yaw))),
		float32(math.Sin(float64(c.Yaw))),
		0,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FlyCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), Up)
}

// ProjectionMatrix returns a perspective projection for the given aspect ratio.
func (c *FlyCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Move translates the camera. forward follows the view direction, right
// stays horizontal and up follows the world axis. dt is in seconds.
func (c *FlyCamera) Move(forward, right, up, dt float32) {
	step := c.Speed * dt
	delta := c.Forward().Mul(forward * step).
		Add(c.Right().Mul(right * step)).
		Add(Up.Mul(up * step))
	c.Position = c.Position.Add(delta)
}

// Look applies a mouse delta in pixels.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw -= dx * c.LookSensitivity
	c.Pitch -= dy * c.LookSensitivity
	c.Pitch = mgl32.Clamp(c.Pitch, -c.MaxPitch, c.MaxPitch)
}

// HandleZoom scales the movement speed by wheel ticks.
func (c *FlyCamera) HandleZoom(delta float32) {
	c.Speed *= 1 + delta*c.ZoomSensitivity
	c.Speed = mgl32.Clamp(c.Speed, 10, 50000)
}

// ClampToGround lifts the camera to MinHeight above the ground returned by
// elevation. It reports whether the position changed.
func (c *FlyCamera) ClampToGround(elevation func(x, y float64) float64) bool {
	ground := float32(elevation(float64(c.Position.X()), float64(c.Position.Y())))
	if floor := ground + c.MinHeight; c.Position.Z() < floor {
		c.Position[2] = floor
		return true
	}
	return false
}
