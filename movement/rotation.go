package movement

import "math"

// Rotator is a pitch, yaw and roll in degrees.
type Rotator struct {
	Pitch, Yaw, Roll float64
}

// NormalizeAxis wraps an angle in degrees into (-180, 180].
func NormalizeAxis(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	if angle > 180 {
		angle -= 360
	}
	return angle
}

// LimitRotation moves previous towards target by at most maxSpeed degrees per
// second on each axis. A non-positive maxSpeed returns target.
func LimitRotation(previous, target Rotator, maxSpeed, dt float64) Rotator {
	if maxSpeed <= 0 || dt <= 0 {
		return target
	}
	step := maxSpeed * dt
	limit := func(from, to float64) float64 {
		delta := NormalizeAxis(to - from)
		if math.Abs(delta) <= step {
			return NormalizeAxis(to)
		}
		return NormalizeAxis(from + math.Copysign(step, delta))
	}
	return Rotator{
		Pitch: limit(previous.Pitch, target.Pitch),
		Yaw:   limit(previous.Yaw, target.Yaw),
		Roll:  limit(previous.Roll, target.Roll),
	}
}
