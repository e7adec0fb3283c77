package character

import (
	"io"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/world"
	"github.com/sirupsen/logrus"
)

const dt = 1.0 / 60

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newCharacter(mesh *physanim.Mesh) *Character {
	log := quietLogger()
	s := DefaultSettings()
	rest := (movement.MinFloorDist + movement.MaxFloorDist) * 0.5
	return New(world.NewFlat(log, 0, 10000), Config{
		Settings: s,
		PhysAnim: physanim.DefaultSettings(),
		Mesh:     mesh,
		Location: mgl64.Vec3{0, s.HalfHeight + rest, 0},
		Log:      log,
	})
}

func ragdollMesh() *physanim.Mesh {
	mesh := physanim.NewMesh(physanim.NewProfileSet(physanim.Profile{
		Name:   "Grounded",
		Bodies: map[string]physanim.BodyParams{"spine_01": {OrientationStrength: 1000}},
	}))
	mesh.AddBody(&physanim.Body{Bone: "root", Kinematic: true})
	mesh.AddBody(&physanim.Body{Bone: "pelvis", Parent: "root", Location: mgl32.Vec3{0, 20, 0}})
	mesh.AddBody(&physanim.Body{Bone: "spine_01", Parent: "pelvis", Location: mgl32.Vec3{0, 40, 0}})
	return mesh
}

func tickN(c *Character, in Input, n int) movement.Result {
	var res movement.Result
	for range n {
		res = c.Tick(dt, in)
	}
	return res
}

func TestStandingStill(t *testing.T) {
	c := newCharacter(nil)
	tickN(c, Input{}, 2)

	st := c.State()
	if st.Mode != locomotion.ModeGrounded || st.Stance != locomotion.StanceStanding || st.Gait != locomotion.GaitWalking {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRunningReachesRunningGait(t *testing.T) {
	c := newCharacter(nil)
	res := tickN(c, Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 120)

	if speed := res.Velocity.Len(); speed < 200 || speed > 380 {
		t.Fatalf("expected running speed, got %f", speed)
	}
	if c.State().Gait != locomotion.GaitRunning || c.MaxAllowedGait() != locomotion.GaitRunning {
		t.Fatalf("expected running gait, got %s (max %s)", c.State().Gait, c.MaxAllowedGait())
	}
}

func TestSprintNeedsInputAlignedWithView(t *testing.T) {
	tests := []struct {
		name  string
		input mgl64.Vec3
		want  locomotion.Gait
	}{
		{"forward", mgl64.Vec3{1, 0, 0}, locomotion.GaitSprinting},
		{"sideways", mgl64.Vec3{0, 0, 1}, locomotion.GaitRunning},
		{"no input", mgl64.Vec3{}, locomotion.GaitRunning},
	}
	for _, tt := range tests {
		c := newCharacter(nil)
		c.SetDesiredGait(locomotion.GaitSprinting)
		c.SetViewYaw(0)
		c.Tick(dt, Input{Acceleration: tt.input})
		if got := c.MaxAllowedGait(); got != tt.want {
			t.Fatalf("%s: expected max allowed gait %s, got %s", tt.name, tt.want, got)
		}
	}

	c := newCharacter(nil)
	c.SetDesiredGait(locomotion.GaitSprinting)
	c.SetDesiredRotationMode(locomotion.RotationAiming)
	c.Tick(dt, Input{Acceleration: mgl64.Vec3{1, 0, 0}})
	if c.MaxAllowedGait() != locomotion.GaitRunning {
		t.Fatalf("expected aiming to prevent sprinting")
	}
}

func TestCrouchSyncsStance(t *testing.T) {
	c := newCharacter(nil)
	c.SetDesiredStance(locomotion.StanceCrouching)
	c.Tick(dt, Input{})
	if c.Stance() != locomotion.StanceCrouching || c.Gait().Stance() != locomotion.StanceCrouching {
		t.Fatalf("expected crouching stance, got %s", c.Stance())
	}

	c.SetDesiredStance(locomotion.StanceStanding)
	c.Tick(dt, Input{})
	if c.Stance() != locomotion.StanceStanding {
		t.Fatalf("expected standing stance, got %s", c.Stance())
	}
}

func TestJumpMapsModes(t *testing.T) {
	c := newCharacter(nil)
	c.Tick(dt, Input{})
	c.Tick(dt, Input{Jump: true})
	if c.State().Mode != locomotion.ModeInAir {
		t.Fatalf("expected InAir after jumping, got %s", c.State().Mode)
	}
	tickN(c, Input{}, 120)
	if c.State().Mode != locomotion.ModeGrounded {
		t.Fatalf("expected Grounded after landing, got %s", c.State().Mode)
	}

	c.SetDesiredStance(locomotion.StanceCrouching)
	c.Tick(dt, Input{})
	c.Tick(dt, Input{Jump: true})
	if c.State().Mode != locomotion.ModeGrounded {
		t.Fatalf("expected crouched character not to jump")
	}
}

func TestLocomotionModeFor(t *testing.T) {
	tests := []struct {
		mode movement.Mode
		want locomotion.LocomotionMode
	}{
		{movement.ModeWalking, locomotion.ModeGrounded},
		{movement.ModeNavWalking, locomotion.ModeGrounded},
		{movement.ModeFalling, locomotion.ModeInAir},
		{movement.ModeCustom, locomotion.ModeInAir},
		{movement.ModeFlying, locomotion.ModeNone},
	}
	for _, tt := range tests {
		if got := locomotionModeFor(tt.mode, locomotion.ModeInAir); got != tt.want {
			t.Fatalf("%s: expected %s, got %s", tt.mode, tt.want, got)
		}
	}
}

func TestRagdolling(t *testing.T) {
	c := newCharacter(ragdollMesh())
	tickN(c, Input{}, 2)
	if !c.PhysicalAnimation().IsBoneUnderSimulation("spine_01") {
		t.Fatalf("expected grounded profile to simulate spine_01")
	}

	if !c.StartRagdolling() || c.StartRagdolling() {
		t.Fatalf("expected ragdolling to start exactly once")
	}
	if c.Movement().Mode != movement.ModeCustom || !c.Movement().ModeLocked {
		t.Fatalf("expected locked custom movement mode, got %s", c.Movement().Mode)
	}

	res := c.Tick(dt, Input{Acceleration: mgl64.Vec3{1, 0, 0}})
	if c.State().Action != locomotion.ActionRagdolling || !c.PhysicalAnimation().IsRagdolling() {
		t.Fatalf("expected ragdolling action")
	}
	if !c.PhysicalAnimation().IsBoneUnderSimulation("pelvis") || c.PhysicalAnimation().IsBoneUnderSimulation("root") {
		t.Fatalf("expected bodies below the pelvis to simulate")
	}
	if !res.OnGround {
		t.Fatalf("expected ragdoll on the ground")
	}
	if want := c.Movement().Capsule.HalfHeight + movement.MinFloorDist; math.Abs(res.Location[1]-want) > 1e-3 {
		t.Fatalf("expected capsule to rest on the floor under the pelvis, got %v", res.Location)
	}

	c.SetMovementMode(movement.ModeFalling, 0)
	if c.Movement().Mode != movement.ModeCustom {
		t.Fatalf("expected locked mode to ignore mode changes")
	}

	if !c.StopRagdolling() || c.StopRagdolling() {
		t.Fatalf("expected ragdolling to stop exactly once")
	}
	if c.Movement().Mode != movement.ModeWalking || c.State().Mode != locomotion.ModeGrounded {
		t.Fatalf("expected walking after a grounded ragdoll, got %s", c.Movement().Mode)
	}
	c.Tick(dt, Input{})
	if c.PhysicalAnimation().IsRagdolling() || c.PhysicalAnimation().IsBoneUnderSimulation("pelvis") {
		t.Fatalf("expected physical animation to leave ragdolling")
	}
}

func TestRagdollSyncsLocomotionMode(t *testing.T) {
	mesh := ragdollMesh()
	c := newCharacter(mesh)
	c.Tick(dt, Input{})
	if !c.StartRagdolling() {
		t.Fatalf("expected ragdolling to start")
	}

	pelvis, _ := mesh.Body("pelvis")
	pelvis.Location = mgl32.Vec3{0, 2000, 0}
	c.Tick(dt, Input{})
	if c.Ragdoll().State.Grounded || c.State().Mode != locomotion.ModeInAir {
		t.Fatalf("expected a ragdoll high above the floor to be in air, got grounded=%t mode=%s", c.Ragdoll().State.Grounded, c.State().Mode)
	}

	pelvis.Location = mgl32.Vec3{0, 20, 0}
	c.Tick(dt, Input{})
	if !c.Ragdoll().State.Grounded || c.State().Mode != locomotion.ModeGrounded {
		t.Fatalf("expected a ragdoll on the floor to be grounded, got grounded=%t mode=%s", c.Ragdoll().State.Grounded, c.State().Mode)
	}
}

func TestRecordedMovesCombine(t *testing.T) {
	c := newCharacter(nil)
	c.Tick(dt, Input{})

	in := Input{Acceleration: mgl64.Vec3{1, 0, 0}}
	m1 := c.RecordMove(0, dt, in)
	m2 := c.RecordMove(dt, dt, in)
	if !m1.CanCombineWith(m2, c, 0.1) {
		t.Fatalf("expected identical moves to combine")
	}

	c.SetDesiredStance(locomotion.StanceCrouching)
	m3 := c.RecordMove(2*dt, dt, in)
	m4 := c.RecordMove(3*dt, dt, in)
	if m2.CanCombineWith(m3, c, 0.1) {
		t.Fatalf("expected crouch request to split moves")
	}
	if m3.Stance == m4.Stance || m3.CanCombineWith(m4, c, 0.1) {
		t.Fatalf("expected stance change to split moves")
	}
}

func TestReplayMoveIsDeterministic(t *testing.T) {
	c := newCharacter(nil)
	c.Tick(dt, Input{})
	tickN(c, Input{Acceleration: mgl64.Vec3{1, 0, 0}}, 10)

	m := c.RecordMove(0, dt, Input{Acceleration: mgl64.Vec3{1, 0, 1}})

	st := c.Movement()
	st.SetLocation(m.Base.StartLocation)
	st.SetVelocity(m.Base.StartVelocity)
	st.CurrentFloor = m.Base.StartFloor
	c.ReplayMove(m)

	if !st.Location.ApproxEqualThreshold(m.Base.SavedLocation, 1e-6) {
		t.Fatalf("expected replay to end at %v, got %v", m.Base.SavedLocation, st.Location)
	}
}

func TestApplyMoveData(t *testing.T) {
	c := newCharacter(nil)
	c.ApplyMoveData(&prediction.MoveData{
		RotationMode:   locomotion.RotationAiming,
		Stance:         locomotion.StanceCrouching,
		MaxAllowedGait: locomotion.GaitWalking,
	})
	if c.RotationMode() != locomotion.RotationAiming || c.Stance() != locomotion.StanceCrouching {
		t.Fatalf("expected move data to be applied, got %s %s", c.RotationMode(), c.Stance())
	}
	if c.Gait().MaxWalkSpeed() != c.Gait().Settings().WalkSpeed {
		t.Fatalf("expected walk speed to follow the max allowed gait")
	}
}

func TestAsyncStep(t *testing.T) {
	out := AsyncStep(prediction.AsyncInput{DeltaTime: dt, CanEverCrouch: true, WantsToCrouch: true})
	if !out.IsCrouched || out.Stance != locomotion.StanceCrouching || out.IsLied {
		t.Fatalf("expected crouched output, got %+v", out)
	}
	out = AsyncStep(prediction.AsyncInput{DeltaTime: dt, WantsToCrouch: true})
	if out.IsCrouched || out.Stance != locomotion.StanceStanding {
		t.Fatalf("expected character that cannot crouch to stand, got %+v", out)
	}
	out = AsyncStep(prediction.AsyncInput{DeltaTime: dt, Stance: locomotion.StanceLying})
	if out.Stance != locomotion.StanceLying {
		t.Fatalf("expected lying stance to be kept, got %+v", out)
	}

	c := newCharacter(nil)
	c.SetDesiredStance(locomotion.StanceCrouching)
	c.Tick(dt, Input{})
	prediction.ApplyAsyncOutput(AsyncStep(prediction.FillAsyncInput(c, dt)), c, quietLogger())
	if c.Stance() != locomotion.StanceCrouching {
		t.Fatalf("expected async output to keep crouching, got %s", c.Stance())
	}
}
