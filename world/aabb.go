package world

import (
	"math"

	"github.com/chewxy/math32"
	df_cube "github.com/df-mc/dragonfly/server/block/cube"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// DFBoxToCubeBox converts a dragonfly bounding box to a float32-cube bounding box.
func DFBoxToCubeBox(b df_cube.BBox) cube.BBox {
	return cube.Box(
		float32(b.Min().X()), float32(b.Min().Y()), float32(b.Min().Z()),
		float32(b.Max().X()), float32(b.Max().Y()), float32(b.Max().Z()),
	)
}

// CubeBoxToDFBox converts a float32-cube bounding box to a dragonfly bounding box.
func CubeBoxToDFBox(b cube.BBox) df_cube.BBox {
	return df_cube.Box(
		float64(b.Min().X()), float64(b.Min().Y()), float64(b.Min().Z()),
		float64(b.Max().X()), float64(b.Max().Y()), float64(b.Max().Z()),
	)
}

// BoxPointDistance calculates the distance between a box and a point.
func BoxPointDistance(a cube.BBox, v mgl32.Vec3) float32 {
	x := math32.Max(a.Min().X()-v.X(), math32.Max(0, v.X()-a.Max().X()))
	y := math32.Max(a.Min().Y()-v.Y(), math32.Max(0, v.Y()-a.Max().Y()))
	z := math32.Max(a.Min().Z()-v.Z(), math32.Max(0, v.Z()-a.Max().Z()))
	return math32.Sqrt(x*x + y*y + z*z)
}

// ClosestPoint returns the point of bb closest to v.
func ClosestPoint(bb df_cube.BBox, v mgl64.Vec3) mgl64.Vec3 {
	lo, hi := bb.Min(), bb.Max()
	return mgl64.Vec3{
		math.Max(lo[0], math.Min(v[0], hi[0])),
		math.Max(lo[1], math.Min(v[1], hi[1])),
		math.Max(lo[2], math.Min(v[2], hi[2])),
	}
}

// faceNormal returns the outward unit normal of a dragonfly face.
func faceNormal(f df_cube.Face) mgl64.Vec3 {
	switch f {
	case df_cube.FaceDown:
		return mgl64.Vec3{0, -1, 0}
	case df_cube.FaceUp:
		return mgl64.Vec3{0, 1, 0}
	case df_cube.FaceNorth:
		return mgl64.Vec3{0, 0, -1}
	case df_cube.FaceSouth:
		return mgl64.Vec3{0, 0, 1}
	case df_cube.FaceWest:
		return mgl64.Vec3{-1, 0, 0}
	default:
		return mgl64.Vec3{1, 0, 0}
	}
}

// faceNormal32 is faceNormal for float32-cube faces.
func faceNormal32(f cube.Face) mgl32.Vec3 {
	switch f {
	case cube.FaceDown:
		return mgl32.Vec3{0, -1, 0}
	case cube.FaceUp:
		return mgl32.Vec3{0, 1, 0}
	case cube.FaceNorth:
		return mgl32.Vec3{0, 0, -1}
	case cube.FaceSouth:
		return mgl32.Vec3{0, 0, 1}
	case cube.FaceWest:
		return mgl32.Vec3{-1, 0, 0}
	default:
		return mgl32.Vec3{1, 0, 0}
	}
}

// expand grows bb by the half extents of a box centred on the origin, turning a
// box sweep into a ray cast against the result.
func expand(bb df_cube.BBox, halfExtents mgl64.Vec3) df_cube.BBox {
	lo, hi := bb.Min(), bb.Max()
	return df_cube.Box(
		lo[0]-halfExtents[0], lo[1]-halfExtents[1], lo[2]-halfExtents[2],
		hi[0]+halfExtents[0], hi[1]+halfExtents[1], hi[2]+halfExtents[2],
	)
}
