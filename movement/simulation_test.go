package movement_test

import (
	"io"
	"math"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/gait"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/world"
	"github.com/sirupsen/logrus"
)

const (
	radius     = 35.0
	halfHeight = 90.0
	crouched   = 60.0
	dt         = 1.0 / 60
	restGap    = (movement.MinFloorDist + movement.MaxFloorDist) * 0.5
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newSim(w *world.World) *movement.Simulator {
	log := quietLogger()
	table := gait.DefaultMovementSettings()
	return movement.NewSimulator(w, gait.NewResolver(&table, log), log)
}

func restingState(x float64) *movement.MovementState {
	return movement.NewMovementState(mgl64.Vec3{x, halfHeight + restGap, 0}, radius, halfHeight, crouched)
}

func run(sim *movement.Simulator, st *movement.MovementState, in movement.Input, ticks int) movement.Result {
	in.DeltaTime = dt
	var res movement.Result
	for i := 0; i < ticks; i++ {
		res = sim.Simulate(st, in)
	}
	return res
}

func TestStandingStill(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)
	start := st.Location

	res := run(sim, st, movement.Input{}, 1)
	if !res.OnGround || res.Mode != movement.ModeWalking {
		t.Fatalf("expected to rest on the floor, got %+v", res)
	}
	if res.Outcome != movement.OutcomeZeroDelta {
		t.Fatalf("expected zero delta outcome, got %v", res.Outcome)
	}
	if !res.Location.ApproxEqualThreshold(start, 1e-6) {
		t.Fatalf("expected location %v to be unchanged, got %v", start, res.Location)
	}
	if gap := res.Floor.FloorDist; gap < movement.MinFloorDist || gap > movement.MaxFloorDist {
		t.Fatalf("floor gap %v outside of the allowed range", gap)
	}
}

func TestFallAndLand(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	var modes []movement.Mode
	sim.Hooks.OnMovementModeChanged = func(st *movement.MovementState, prev movement.Mode, _ uint8) {
		modes = append(modes, st.Mode)
	}
	st := movement.NewMovementState(mgl64.Vec3{0, 300, 0}, radius, halfHeight, crouched)

	res := run(sim, st, movement.Input{}, 1)
	if res.Mode != movement.ModeFalling {
		t.Fatalf("expected to start falling, got %v", res.Mode)
	}
	res = run(sim, st, movement.Input{}, 120)
	if res.Mode != movement.ModeWalking || !res.OnGround {
		t.Fatalf("expected to land, got %+v", res)
	}
	base := res.Location.Y() - halfHeight
	if base < movement.MinFloorDist-1e-6 || base > movement.MaxFloorDist+1e-6 {
		t.Fatalf("expected to rest above the floor, base at %v", base)
	}
	if len(modes) != 2 || modes[0] != movement.ModeFalling || modes[1] != movement.ModeWalking {
		t.Fatalf("unexpected mode changes %v", modes)
	}
}

func TestWalkReachesMaxSpeed(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 120)
	speed := res.Velocity.Len()
	if speed < 150 || speed > sim.Gait.MaxWalkSpeed()*1.01 {
		t.Fatalf("expected speed close to %v, got %v", sim.Gait.MaxWalkSpeed(), speed)
	}
	if res.Location.X() <= 0 || math.Abs(res.Location.Z()) > 1e-6 {
		t.Fatalf("expected to move along +X, got %v", res.Location)
	}
	if math.Abs(res.Velocity.Y()) > 1e-9 {
		t.Fatalf("expected horizontal ground velocity, got %v", res.Velocity)
	}
}

func TestBrakingStops(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)
	run(sim, st, movement.Input{Acceleration: mgl64.Vec3{0, 0, 1}}, 60)

	res := run(sim, st, movement.Input{}, 120)
	if res.Velocity.LenSqr() != 0 {
		t.Fatalf("expected to stop, got velocity %v", res.Velocity)
	}
}

func TestWalkOffLedge(t *testing.T) {
	w := world.New(quietLogger())
	w.AddBox(cube.Box(-1000, -100, -1000, 100, 0, 1000))
	sim := newSim(w)
	st := restingState(0)

	var fell bool
	for i := 0; i < 180; i++ {
		res := sim.Simulate(st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}, DeltaTime: dt})
		if res.Mode == movement.ModeFalling {
			fell = true
			break
		}
	}
	if !fell {
		t.Fatalf("expected to fall off the ledge, at %v", st.Location)
	}
	if st.Location.X() < 100 {
		t.Fatalf("expected to fall past the ledge, at %v", st.Location)
	}
}

func TestLedgeCheckWhenCrouched(t *testing.T) {
	w := world.New(quietLogger())
	w.AddBox(cube.Box(-1000, -100, -1000, 100, 0, 1000))
	sim := newSim(w)
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}, WantsToCrouch: true}, 240)
	if res.Mode != movement.ModeWalking {
		t.Fatalf("expected a crouched character to stay on the ledge, got %v at %v", res.Mode, res.Location)
	}
}

func TestWallBlocks(t *testing.T) {
	w := world.NewFlat(quietLogger(), 0, 10000)
	w.AddBox(cube.Box(100, 0, -1000, 120, 300, 1000))
	sim := newSim(w)
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 180)
	if x := res.Location.X(); x > 100-radius || x < 100-radius-1 {
		t.Fatalf("expected to stop in front of the wall, at %v", x)
	}
	if !res.OnGround {
		t.Fatalf("expected to stay on the ground")
	}
}

func TestSlideAlongWall(t *testing.T) {
	w := world.NewFlat(quietLogger(), 0, 10000)
	w.AddBox(cube.Box(100, 0, -1000, 120, 300, 1000))
	sim := newSim(w)
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 1}}, 180)
	if res.Location.X() > 100-radius {
		t.Fatalf("expected the wall to block, at %v", res.Location)
	}
	if res.Location.Z() < 100 {
		t.Fatalf("expected to slide along the wall, at %v", res.Location)
	}
}

func TestStepUp(t *testing.T) {
	w := world.NewFlat(quietLogger(), 0, 10000)
	w.AddBox(cube.Box(100, 0, -1000, 400, 20, 1000))
	sim := newSim(w)
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 180)
	if res.Location.X() < 150 {
		t.Fatalf("expected to step onto the step, at %v", res.Location)
	}
	if base := res.Location.Y() - halfHeight; base < 20 || base > 20+movement.MaxFloorDist+1e-6 {
		t.Fatalf("expected to stand on the step, base at %v", base)
	}
}

func TestStepTooHigh(t *testing.T) {
	w := world.NewFlat(quietLogger(), 0, 10000)
	w.AddBox(cube.Box(100, 0, -1000, 400, 60, 1000))
	sim := newSim(w)
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 180)
	if res.Location.X() > 100-radius {
		t.Fatalf("expected the step to block, at %v", res.Location)
	}
}

func TestJump(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)
	run(sim, st, movement.Input{}, 1)
	startY := st.Location.Y()

	res := run(sim, st, movement.Input{Jump: true}, 1)
	if res.Mode != movement.ModeFalling || res.Location.Y() <= startY {
		t.Fatalf("expected to jump, got %+v", res)
	}
	res = run(sim, st, movement.Input{}, 120)
	if res.Mode != movement.ModeWalking {
		t.Fatalf("expected to land after the jump, got %v", res.Mode)
	}
}

func TestCrouchRoundTrip(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	var crouchEvents []bool
	sim.Hooks.OnCrouchChanged = func(_ *movement.MovementState, c bool, _ float64) {
		crouchEvents = append(crouchEvents, c)
	}
	st := restingState(0)
	run(sim, st, movement.Input{}, 1)
	base := st.Location.Y() - st.Capsule.HalfHeight

	res := run(sim, st, movement.Input{WantsToCrouch: true}, 1)
	if !res.Crouched || res.HalfHeight != crouched {
		t.Fatalf("expected a crouched capsule, got %+v", res)
	}
	if got := res.Location.Y() - res.HalfHeight; math.Abs(got-base) > 1e-9 {
		t.Fatalf("expected the capsule base to stay at %v, got %v", base, got)
	}

	res = run(sim, st, movement.Input{}, 1)
	if res.Crouched || res.HalfHeight != halfHeight {
		t.Fatalf("expected the standing half height to be restored exactly, got %v", res.HalfHeight)
	}
	if len(crouchEvents) != 2 || !crouchEvents[0] || crouchEvents[1] {
		t.Fatalf("unexpected crouch events %v", crouchEvents)
	}
}

func TestCapsuleInterpolation(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	sim.Options.CapsuleInterpSpeed = 300
	st := restingState(0)

	res := run(sim, st, movement.Input{WantsToCrouch: true}, 1)
	if res.HalfHeight != halfHeight-300*dt {
		t.Fatalf("expected one step of interpolation, got %v", res.HalfHeight)
	}
	res = run(sim, st, movement.Input{WantsToCrouch: true}, 60)
	if res.HalfHeight != crouched {
		t.Fatalf("expected to settle at the crouched half height, got %v", res.HalfHeight)
	}
}

func TestUnCrouchBlockedByCeiling(t *testing.T) {
	w := world.NewFlat(quietLogger(), 0, 10000)
	sim := newSim(w)
	st := restingState(0)
	run(sim, st, movement.Input{WantsToCrouch: true}, 2)

	w.AddBox(cube.Box(-1000, 2*crouched+10, -1000, 1000, 400, 1000))
	res := run(sim, st, movement.Input{}, 5)
	if !res.Crouched || res.HalfHeight != crouched {
		t.Fatalf("expected to stay crouched under the ceiling, got %+v", res)
	}
}

func TestLieBlocksJump(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)

	res := run(sim, st, movement.Input{WantsToLie: true, Jump: true}, 1)
	if !res.Lied || res.Mode != movement.ModeWalking {
		t.Fatalf("expected to lie on the ground without jumping, got %+v", res)
	}
	if sim.CanAttemptJump(st) {
		t.Fatalf("jump must not be allowed while lying")
	}
	res = run(sim, st, movement.Input{}, 1)
	if res.Lied || res.HalfHeight != halfHeight {
		t.Fatalf("expected to stand up again, got %+v", res)
	}
}

func TestDegenerateInputs(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)

	if res := sim.Simulate(st, movement.Input{DeltaTime: 1e-9}); res.Outcome != movement.OutcomeSkippedTinyTick {
		t.Fatalf("expected a skipped tick, got %v", res.Outcome)
	}

	st.Velocity = mgl64.Vec3{math.NaN(), 0, 0}
	start := st.Location
	res := sim.Simulate(st, movement.Input{DeltaTime: dt})
	if res.Outcome != movement.OutcomeImmobileOrNotReady || res.Location != start {
		t.Fatalf("expected a NaN velocity to skip the tick, got %+v", res)
	}

	empty := movement.NewMovementState(mgl64.Vec3{}, 0, 0, 0)
	if res := sim.Simulate(empty, movement.Input{DeltaTime: dt}); res.Outcome != movement.OutcomeImmobileOrNotReady {
		t.Fatalf("expected a zero sized capsule to skip the tick, got %v", res.Outcome)
	}
}

func TestMovementModeLock(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	var customTicks int
	sim.Hooks.PhysCustom = func(*movement.MovementState, float64, int) {
		customTicks++
	}
	st := movement.NewMovementState(mgl64.Vec3{0, 300, 0}, radius, halfHeight, crouched)
	st.Velocity = mgl64.Vec3{100, 0, 0}

	sim.LockMovementMode(st, movement.ModeCustom, 1)
	sim.SetMovementMode(st, movement.ModeWalking, 0)
	if st.Mode != movement.ModeCustom {
		t.Fatalf("expected the locked mode to hold, got %v", st.Mode)
	}

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 10)
	if res.Location != (mgl64.Vec3{0, 300, 0}) || res.Velocity.LenSqr() != 0 {
		t.Fatalf("expected custom mode to hold the character in place, got %+v", res)
	}
	if customTicks != 10 {
		t.Fatalf("expected the custom hook to run every tick, ran %d times", customTicks)
	}

	sim.UnlockMovementMode(st)
	sim.SetMovementMode(st, movement.ModeFalling, 0)
	if st.Mode != movement.ModeFalling {
		t.Fatalf("expected the mode to change once unlocked")
	}
}

func TestInputBlocked(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)
	sim.SetInputBlocked(st, true)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 30)
	if res.Velocity.LenSqr() != 0 || st.Acceleration.LenSqr() != 0 {
		t.Fatalf("expected blocked input to keep the character still, got %v", res.Velocity)
	}
}

func TestEnterWaterSwitchesToSwimming(t *testing.T) {
	w := world.NewFlat(quietLogger(), 0, 10000)
	w.AddWater(cube.Box(50, 0, -1000, 1000, 300, 1000))
	sim := newSim(w)
	var swimTicks int
	sim.Hooks.PhysSwimming = func(*movement.MovementState, float64, int) { swimTicks++ }
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 120)
	if res.Mode != movement.ModeSwimming {
		t.Fatalf("expected to swim, got %v at %v", res.Mode, res.Location)
	}
	if swimTicks == 0 {
		t.Fatalf("expected the swimming hook to run")
	}
}

func TestPendingPenetrationAppliedOnAcceptedFloor(t *testing.T) {
	sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
	st := restingState(0)
	start := st.Location
	st.PendingPenetrationAdjustment = mgl64.Vec3{0, 5, 0}

	res := run(sim, st, movement.Input{}, 1)
	if !res.OnGround {
		t.Fatalf("expected to stay on the floor, got %+v", res)
	}
	if st.PendingPenetrationAdjustment != (mgl64.Vec3{}) {
		t.Fatalf("expected the pending adjustment to be consumed, got %v", st.PendingPenetrationAdjustment)
	}
	want := start.Y() + 5 + movement.PenetrationPullback
	if math.Abs(res.Location.Y()-want) > 1e-6 {
		t.Fatalf("expected the adjustment to move the capsule to %v, got %v", want, res.Location.Y())
	}
}

func TestPendingPenetrationKeptOnLedgeRevert(t *testing.T) {
	sim := newSim(world.New(quietLogger()))
	sim.Hooks.CanWalkOffLedges = func(*movement.MovementState) bool { return false }
	st := restingState(0)
	start := st.Location
	st.CurrentFloor.SetFromSweep(movement.Hit{
		Blocking:     true,
		Normal:       mgl64.Vec3{0, 1, 0},
		ImpactNormal: mgl64.Vec3{0, 1, 0},
		Location:     start,
		ImpactPoint:  mgl64.Vec3{0, 0, 0},
	}, restGap, true)
	st.PendingPenetrationAdjustment = mgl64.Vec3{0, 5, 0}

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 1)
	if res.Outcome != movement.OutcomeReverted {
		t.Fatalf("expected the move to be reverted at the ledge, got %v", res.Outcome)
	}
	if res.Location != start {
		t.Fatalf("expected to stay at %v, got %v", start, res.Location)
	}
	if st.PendingPenetrationAdjustment != (mgl64.Vec3{0, 5, 0}) {
		t.Fatalf("expected the pending adjustment to survive a reverted move, got %v", st.PendingPenetrationAdjustment)
	}
}

func TestCatchAirAppliesPenetrationOnlyWhenStillWalking(t *testing.T) {
	tests := map[string]struct {
		hookFalls   bool
		wantPending mgl64.Vec3
	}{
		"hook keeps walking":  {hookFalls: false},
		"hook starts falling": {hookFalls: true, wantPending: mgl64.Vec3{0, 5, 0}},
	}
	for name, tt := range tests {
		sim := newSim(world.NewFlat(quietLogger(), 0, 10000))
		sim.Hooks.ShouldCatchAir = func(*movement.MovementState, movement.FloorResult, movement.FloorResult) bool { return true }
		sim.Hooks.HandleWalkingOffLedge = func(st *movement.MovementState, _, _ mgl64.Vec3, _ float64) {
			if tt.hookFalls {
				sim.SetMovementMode(st, movement.ModeFalling, 0)
			}
		}
		st := restingState(0)
		st.PendingPenetrationAdjustment = mgl64.Vec3{0, 5, 0}

		res := run(sim, st, movement.Input{}, 1)
		if res.Mode != movement.ModeFalling {
			t.Fatalf("%s: expected to catch air, got %v", name, res.Mode)
		}
		if st.PendingPenetrationAdjustment != tt.wantPending {
			t.Fatalf("%s: expected pending adjustment %v, got %v", name, tt.wantPending, st.PendingPenetrationAdjustment)
		}
	}
}

func TestLedgeMoveDoesNotUseAnIteration(t *testing.T) {
	w := world.New(quietLogger())
	w.AddBox(cube.Box(-1000, -100, -1000, 100, 0, 1000))
	sim := newSim(w)
	sim.Options.MaxSimulationIterations = 1
	st := restingState(0)

	res := run(sim, st, movement.Input{Acceleration: mgl64.Vec3{1, 0, 0}, WantsToCrouch: true}, 240)
	if res.Mode != movement.ModeWalking {
		t.Fatalf("expected a crouched character to stay on the ledge, got %v at %v", res.Mode, res.Location)
	}
	if math.Abs(res.Location.Z()) < 1e-3 {
		t.Fatalf("expected the ledge move to step sideways with a single iteration, at %v", res.Location)
	}
}
