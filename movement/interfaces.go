package movement

import "github.com/go-gl/mathgl/mgl64"

// Hit describes the first blocking contact of a sweep or trace.
type Hit struct {
	Blocking bool
	// Time is the fraction of the trace travelled before the contact.
	Time float64
	// Location is where the swept shape stops, pulled back slightly from the contact.
	Location    mgl64.Vec3
	ImpactPoint mgl64.Vec3
	// Normal is the normal of the swept shape at the contact, ImpactNormal is the
	// normal of the surface that was hit.
	Normal       mgl64.Vec3
	ImpactNormal mgl64.Vec3

	StartPenetrating bool
	PenetrationDepth float64

	TraceStart mgl64.Vec3
	TraceEnd   mgl64.Vec3
}

// IsValidBlockingHit returns true for blocking hits that did not start inside
// geometry.
func (h Hit) IsValidBlockingHit() bool {
	return h.Blocking && !h.StartPenetrating
}

// CollisionWorld bridges the collision queries of the host engine.
type CollisionWorld interface {
	// SweepCapsule sweeps shape from start to end and reports the first blocking hit.
	SweepCapsule(start, end mgl64.Vec3, shape Capsule) (Hit, bool)
	// OverlapCapsule returns true if shape centred at center overlaps blocking geometry.
	OverlapCapsule(center mgl64.Vec3, shape Capsule) bool
	// LineTrace traces a ray from start to end and reports the first blocking hit.
	LineTrace(start, end mgl64.Vec3) (Hit, bool)
	// InWater returns true if point is inside a water volume.
	InWater(point mgl64.Vec3) bool
}

// GaitProvider supplies the gait dependent speeds and curves.
type GaitProvider interface {
	MaxWalkSpeed() float64
	MaxWalkSpeedCrouched() float64
	// Sample evaluates a curve channel at the gait amount for speed. ok is false
	// when the curve or channel is missing.
	Sample(channel int, speed float64) (value float64, ok bool)
}
