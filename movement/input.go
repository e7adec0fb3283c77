package movement

import "github.com/go-gl/mathgl/mgl64"

// Input is the per-tick input snapshot consumed by Simulate.
type Input struct {
	// Acceleration is the desired acceleration as a fraction of the maximum
	// acceleration. Its length is clamped to 1.
	Acceleration mgl64.Vec3
	DeltaTime    float64

	Jump          bool
	WantsToCrouch bool
	WantsToLie    bool

	// RootMotionVelocity overrides the computed velocity when HasRootMotion is set.
	RootMotionVelocity mgl64.Vec3
	HasRootMotion      bool
}
