package world

import (
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
)

// TraceGround traces a ray in single precision against the blocking boxes. It
// is used by ragdolls, which simulate in float32.
func (w *World) TraceGround(start, end mgl32.Vec3) (point, normal mgl32.Vec3, ok bool) {
	w.RLock()
	defer w.RUnlock()

	dir := end.Sub(start)
	var bestDist float32
	for el := w.boxes.Front(); el != nil; el = el.Next() {
		res, hit := trace.BBoxIntercept(DFBoxToCubeBox(el.Value), start, end)
		if !hit {
			continue
		}
		n := faceNormal32(res.Face())
		if n.Dot(dir) >= 0 {
			continue
		}
		dist := res.Position().Sub(start).LenSqr()
		if ok && dist >= bestDist {
			continue
		}
		point, normal, bestDist, ok = res.Position(), n, dist, true
	}
	return
}
