package utils

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// SmallNumber is the tolerance used for "nearly zero" vector checks.
	SmallNumber = 1e-8
	// KindaSmallNumber is the looser tolerance used by geometric comparisons.
	KindaSmallNumber = 1e-4
)

// ClampFloat clamps the given value to the given range.
func ClampFloat(num, min, max float64) float64 {
	if num < min {
		return min
	}
	return math.Min(num, max)
}

// MapRangeClamped maps value from [inMin, inMax] to [outMin, outMax], clamping to
// the output range. A degenerate input range maps to outMax once value reaches it.
func MapRangeClamped(value, inMin, inMax, outMin, outMax float64) float64 {
	var pct float64
	if d := inMax - inMin; d != 0 {
		pct = (value - inMin) / d
	} else if value >= inMax {
		pct = 1
	}
	pct = ClampFloat(pct, 0, 1)
	return outMin + pct*(outMax-outMin)
}

// FInterpConstantTo moves current toward target at a constant speed without
// overshooting. A speed of zero or less snaps to the target.
func FInterpConstantTo(current, target, dt, speed float64) float64 {
	dist := target - current
	if dist*dist < SmallNumber {
		return target
	}
	if speed <= 0 {
		return target
	}
	step := speed * dt
	return current + ClampFloat(dist, -step, step)
}

// FInterpConstantTo32 is the single precision FInterpConstantTo.
func FInterpConstantTo32(current, target, dt, speed float32) float32 {
	dist := target - current
	if dist*dist < SmallNumber {
		return target
	}
	if speed <= 0 {
		return target
	}
	step := speed * dt
	return current + math32.Max(-step, math32.Min(dist, step))
}

// NearlyZero returns true if every component of v is within tolerance of zero.
func NearlyZero(v mgl64.Vec3, tolerance float64) bool {
	return math.Abs(v[0]) <= tolerance && math.Abs(v[1]) <= tolerance && math.Abs(v[2]) <= tolerance
}

// ContainsNaN returns true if any component of v is NaN or infinite.
func ContainsNaN(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return true
		}
	}
	return false
}

// Horizontal projects v onto the ground plane. Y is up.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0], 0, v[2]}
}

// HorizontalLen returns the length of the horizontal part of v.
func HorizontalLen(v mgl64.Vec3) float64 {
	return math.Hypot(v[0], v[2])
}

// SafeNormal returns v normalized, or the zero vector if v is too short to
// normalize reliably.
func SafeNormal(v mgl64.Vec3) mgl64.Vec3 {
	l := v.LenSqr()
	if l < SmallNumber {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / math.Sqrt(l))
}
