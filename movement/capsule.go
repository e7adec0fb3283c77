package movement

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is the collision shape of a character. HalfHeight includes the
// hemispherical caps and is never smaller than Radius.
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

// BBox returns the bounding box of the capsule centred on center.
func (c Capsule) BBox(center mgl64.Vec3) cube.BBox {
	return cube.Box(
		center[0]-c.Radius, center[1]-c.HalfHeight, center[2]-c.Radius,
		center[0]+c.Radius, center[1]+c.HalfHeight, center[2]+c.Radius,
	)
}

// IsNearlyZero returns true if the capsule is too small to be swept.
func (c Capsule) IsNearlyZero() bool {
	return c.Radius <= kindaSmallNumber && c.HalfHeight <= kindaSmallNumber
}

// WithHalfHeight returns a copy of the capsule with a different half height,
// clamped so it does not become shorter than its radius.
func (c Capsule) WithHalfHeight(halfHeight float64) Capsule {
	c.HalfHeight = math.Max(halfHeight, c.Radius)
	return c
}
