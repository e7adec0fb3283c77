package world

import (
	"io"
	"math"
	"sync"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var shape = movement.Capsule{Radius: 35, HalfHeight: 90}

func TestSweepDownHitsFloor(t *testing.T) {
	w := NewFlat(quietLogger(), 0, 1000)

	hit, ok := w.SweepCapsule(mgl64.Vec3{0, 200, 0}, mgl64.Vec3{0, 0, 0}, shape)
	if !ok || hit.StartPenetrating {
		t.Fatalf("expected a blocking hit, got %+v", hit)
	}
	if hit.Normal != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("expected an upward normal, got %v", hit.Normal)
	}
	if want := 90 + pullback; math.Abs(hit.Location.Y()-want) > 1e-9 {
		t.Fatalf("expected to stop at %v, got %v", want, hit.Location.Y())
	}
	if hit.ImpactPoint != (mgl64.Vec3{0, 0, 0}) {
		t.Fatalf("expected the impact point below the centre, got %v", hit.ImpactPoint)
	}
	if math.Abs(hit.Time-(110-pullback)/200) > 1e-9 {
		t.Fatalf("unexpected time %v", hit.Time)
	}
}

func TestSweepAwayFromTouchingFace(t *testing.T) {
	w := NewFlat(quietLogger(), 0, 1000)

	// Resting exactly on the floor and moving up must not hit it.
	if hit, ok := w.SweepCapsule(mgl64.Vec3{0, 90, 0}, mgl64.Vec3{0, 150, 0}, shape); ok {
		t.Fatalf("expected no hit when leaving the floor, got %+v", hit)
	}
}

func TestSweepStartPenetrating(t *testing.T) {
	w := NewFlat(quietLogger(), 0, 1000)

	hit, ok := w.SweepCapsule(mgl64.Vec3{0, 80, 0}, mgl64.Vec3{10, 80, 0}, shape)
	if !ok || !hit.StartPenetrating {
		t.Fatalf("expected a penetrating hit, got %+v", hit)
	}
	if hit.Normal != (mgl64.Vec3{0, 1, 0}) || math.Abs(hit.PenetrationDepth-10) > 1e-9 {
		t.Fatalf("expected to be pushed up by 10, got %v %v", hit.Normal, hit.PenetrationDepth)
	}
}

func TestSweepPicksClosestBox(t *testing.T) {
	w := NewFlat(quietLogger(), 0, 1000)
	w.AddBox(cube.Box(200, 0, -100, 220, 300, 100))
	w.AddBox(cube.Box(100, 0, -100, 120, 300, 100))

	hit, ok := w.SweepCapsule(mgl64.Vec3{0, 100, 0}, mgl64.Vec3{300, 100, 0}, shape)
	if !ok || hit.Normal != (mgl64.Vec3{-1, 0, 0}) {
		t.Fatalf("expected to hit a wall, got %+v", hit)
	}
	if want := 100 - shape.Radius - pullback; math.Abs(hit.Location.X()-want) > 1e-9 {
		t.Fatalf("expected to stop at %v, got %v", want, hit.Location.X())
	}
}

func TestOverlapAndRemove(t *testing.T) {
	w := New(quietLogger())
	id := w.AddBox(cube.Box(-10, -10, -10, 10, 10, 10))

	if !w.OverlapCapsule(mgl64.Vec3{}, shape) {
		t.Fatalf("expected an overlap")
	}
	if !w.RemoveBox(id) || w.OverlapCapsule(mgl64.Vec3{}, shape) {
		t.Fatalf("expected the box to be removed")
	}
	if len(w.Boxes()) != 0 {
		t.Fatalf("expected no boxes left")
	}
}

func TestLineTrace(t *testing.T) {
	w := NewFlat(quietLogger(), 5, 1000)

	hit, ok := w.LineTrace(mgl64.Vec3{0, 100, 0}, mgl64.Vec3{0, -100, 0})
	if !ok || hit.Location != (mgl64.Vec3{0, 5, 0}) {
		t.Fatalf("expected to hit the floor top, got %+v", hit)
	}
	if math.Abs(hit.Time-95.0/200) > 1e-9 {
		t.Fatalf("unexpected time %v", hit.Time)
	}
}

func TestTraceGround(t *testing.T) {
	w := NewFlat(quietLogger(), 0, 1000)

	p, n, ok := w.TraceGround(mgl32.Vec3{0, 50, 0}, mgl32.Vec3{0, -50, 0})
	if !ok || n != (mgl32.Vec3{0, 1, 0}) || p.Y() != 0 {
		t.Fatalf("expected to hit the ground, got %v %v %v", p, n, ok)
	}
}

func TestInWater(t *testing.T) {
	w := New(quietLogger())
	w.AddWater(cube.Box(0, 0, 0, 10, 10, 10))
	if !w.InWater(mgl64.Vec3{5, 5, 5}) || w.InWater(mgl64.Vec3{20, 5, 5}) {
		t.Fatalf("unexpected water test result")
	}
}

func TestConcurrentWorldsGetUniqueIDs(t *testing.T) {
	const n = 64
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- New(nil).ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]struct{}, n)
	for id := range ids {
		if _, ok := seen[id]; ok {
			t.Fatalf("world id %d handed out twice", id)
		}
		seen[id] = struct{}{}
	}
	if len(seen) != n {
		t.Fatalf("expected %d worlds, got %d", n, len(seen))
	}
}
