package movement

import "github.com/go-gl/mathgl/mgl64"

const (
	// MinTickTime is the smallest time step the simulation will integrate.
	MinTickTime = 1e-6
	// MinFloorDist and MaxFloorDist bound the gap kept between the capsule and a
	// walkable floor.
	MinFloorDist = 1.9
	MaxFloorDist = 2.4
	// SweepEdgeRejectDistance rejects floor hits this close to the capsule edge.
	SweepEdgeRejectDistance = 0.15
	// BrakeToStopVelocity is the speed below which braking stops the character.
	BrakeToStopVelocity = 10.0
	// MaxStepSideY is the largest normal Y of a step side that is still treated
	// as a vertical face.
	MaxStepSideY = 0.08
	// PenetrationPullback is added to penetration depths when resolving them.
	PenetrationPullback = 0.125

	kindaSmallNumber = 1e-4
	// sweepInflation grows encroachment test shapes slightly to avoid touching hits.
	sweepInflation = kindaSmallNumber * 10

	floorShrinkScale        = 0.9
	floorShrinkScaleOverlap = 0.1
	brakingSubStepTime      = 1.0 / 33
)

var (
	up   = mgl64.Vec3{0, 1, 0}
	down = mgl64.Vec3{0, -1, 0}
)
