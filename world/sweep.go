package world

import (
	"math"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/block/cube/trace"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/movement"
)

const (
	// pullback is the distance a swept shape is stopped before the contact.
	pullback = 0.0125
	// grazeEpsilon rejects contacts that only touch the edge of a face.
	grazeEpsilon = 1e-7
)

func halfExtents(shape movement.Capsule) mgl64.Vec3 {
	return mgl64.Vec3{shape.Radius, shape.HalfHeight, shape.Radius}
}

// SweepCapsule sweeps the bounds of shape from start to end. The capsule is
// approximated by its bounding box.
func (w *World) SweepCapsule(start, end mgl64.Vec3, shape movement.Capsule) (movement.Hit, bool) {
	w.RLock()
	defer w.RUnlock()

	ext := halfExtents(shape)
	startBox := shape.BBox(start)

	var (
		best  movement.Hit
		found bool
	)
	for el := w.boxes.Front(); el != nil; el = el.Next() {
		bb := el.Value
		if startBox.IntersectsWith(bb) {
			hit := penetration(start, ext, bb)
			if !found || !best.StartPenetrating || hit.PenetrationDepth > best.PenetrationDepth {
				best, found = hit, true
			}
			continue
		}
		if found && best.StartPenetrating {
			continue
		}
		hit, ok := sweepBox(start, end, ext, bb)
		if ok && (!found || hit.Time < best.Time) {
			best, found = hit, true
		}
	}
	if found {
		best.Blocking = true
		best.TraceStart, best.TraceEnd = start, end
	}
	return best, found
}

// penetration resolves an initial overlap along the axis of least penetration.
func penetration(center, ext mgl64.Vec3, bb cube.BBox) movement.Hit {
	e := expand(bb, ext)
	lo, hi := e.Min(), e.Max()

	depth := math.MaxFloat64
	var normal mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		if d := center[axis] - lo[axis]; d < depth {
			depth = d
			normal = mgl64.Vec3{}
			normal[axis] = -1
		}
		if d := hi[axis] - center[axis]; d < depth {
			depth = d
			normal = mgl64.Vec3{}
			normal[axis] = 1
		}
	}
	return movement.Hit{
		StartPenetrating: true,
		PenetrationDepth: math.Max(0, depth),
		Location:         center,
		ImpactPoint:      ClosestPoint(bb, center),
		Normal:           normal,
		ImpactNormal:     normal,
	}
}

func sweepBox(start, end, ext mgl64.Vec3, bb cube.BBox) (movement.Hit, bool) {
	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 {
		return movement.Hit{}, false
	}
	e := expand(bb, ext)
	res, ok := trace.BBoxIntercept(e, start, end)
	if !ok {
		return movement.Hit{}, false
	}
	normal := faceNormal(res.Face())
	// Leaving or sliding along the face is not a hit.
	if normal.Dot(dir) >= 0 || grazing(res.Position(), normal, e) {
		return movement.Hit{}, false
	}

	contactDist := res.Position().Sub(start).Len()
	stopDist := math.Max(0, contactDist-pullback)
	contact := res.Position()
	return movement.Hit{
		Time:         stopDist / length,
		Location:     start.Add(dir.Mul(stopDist / length)),
		ImpactPoint:  impactPoint(contact, normal, ext, bb),
		Normal:       normal,
		ImpactNormal: normal,
	}, true
}

// grazing returns true if pos lies on the border of the face it hit.
func grazing(pos, normal mgl64.Vec3, bb cube.BBox) bool {
	lo, hi := bb.Min(), bb.Max()
	for axis := 0; axis < 3; axis++ {
		if normal[axis] != 0 {
			continue
		}
		if pos[axis] <= lo[axis]+grazeEpsilon || pos[axis] >= hi[axis]-grazeEpsilon {
			return true
		}
	}
	return false
}

// impactPoint returns the point of bb touched by a box with half extents ext
// centred on center, hitting the face with normal.
func impactPoint(center, normal, ext mgl64.Vec3, bb cube.BBox) mgl64.Vec3 {
	// Move to the face of the swept box that touches bb.
	surface := center.Sub(mgl64.Vec3{normal[0] * ext[0], normal[1] * ext[1], normal[2] * ext[2]})
	p := ClosestPoint(bb, center)
	for axis := 0; axis < 3; axis++ {
		if normal[axis] != 0 {
			p[axis] = surface[axis]
		}
	}
	return p
}

// OverlapCapsule returns true if the bounds of shape centred on center
// intersect a blocking box.
func (w *World) OverlapCapsule(center mgl64.Vec3, shape movement.Capsule) bool {
	w.RLock()
	defer w.RUnlock()

	bb := shape.BBox(center)
	for el := w.boxes.Front(); el != nil; el = el.Next() {
		if bb.IntersectsWith(el.Value) {
			return true
		}
	}
	return false
}

// LineTrace traces a ray against the blocking boxes.
func (w *World) LineTrace(start, end mgl64.Vec3) (movement.Hit, bool) {
	w.RLock()
	defer w.RUnlock()

	dir := end.Sub(start)
	length := dir.Len()
	if length == 0 {
		return movement.Hit{}, false
	}

	var (
		best  movement.Hit
		found bool
	)
	for el := w.boxes.Front(); el != nil; el = el.Next() {
		res, ok := trace.BBoxIntercept(el.Value, start, end)
		if !ok {
			continue
		}
		normal := faceNormal(res.Face())
		if normal.Dot(dir) >= 0 {
			continue
		}
		t := res.Position().Sub(start).Len() / length
		if found && t >= best.Time {
			continue
		}
		best = movement.Hit{
			Blocking:     true,
			Time:         t,
			Location:     res.Position(),
			ImpactPoint:  res.Position(),
			Normal:       normal,
			ImpactNormal: normal,
			TraceStart:   start,
			TraceEnd:     end,
		}
		found = true
	}
	return best, found
}
