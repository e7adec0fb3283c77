package character

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/oomph-ac/locomotion/ragdoll"
	"github.com/oomph-ac/locomotion/utils"
)

const (
	// gaitSpeedTolerance is added to the walk and run speeds before the actual
	// gait moves up a step.
	gaitSpeedTolerance = 10.0
	// hasSpeedThreshold is the planar speed below which the character is
	// considered to stand still.
	hasSpeedThreshold = 1.0
)

// Input is the player input of one tick.
type Input struct {
	// Acceleration is the wanted movement direction in world space. Its length
	// is clamped to 1.
	Acceleration mgl64.Vec3
	Jump         bool
	// Curves are the animation curves sampled for the tick. They hold the lock
	// curves of the bone groups.
	Curves physanim.Curves
}

// Tick advances the character by dt. Gait is refreshed first, then movement
// or the ragdoll is simulated, the stance and locomotion mode are synced and
// the physical animation is refreshed last.
func (c *Character) Tick(dt float64, input Input) movement.Result {
	c.refreshInput(input)

	var res movement.Result
	if c.ragdoll.Active() {
		res = c.tickRagdoll(dt)
	} else {
		c.refreshRotationMode()
		c.refreshGait()
		res = c.sim.Simulate(c.move, c.movementInput(dt, input))
		c.syncFromMovement(res)
		c.refreshRotation(dt)
	}

	c.physAnim.Refresh(float32(dt), c.state, input.Curves)
	return res
}

func (c *Character) refreshInput(input Input) {
	accel := utils.Horizontal(input.Acceleration)
	c.hasInput = accel.LenSqr() > 0
	if c.hasInput {
		c.inputYaw = yawOf(accel)
	}
}

func (c *Character) refreshRotationMode() {
	mode := c.desiredRotationMode
	if mode == locomotion.RotationVelocityDirection && c.state.ViewMode == locomotion.ViewFirstPerson {
		mode = locomotion.RotationViewDirection
	}
	if c.settings.RotateToVelocityWhenSprinting && c.state.Gait == locomotion.GaitSprinting && mode != locomotion.RotationAiming {
		mode = locomotion.RotationVelocityDirection
	}
	c.SetRotationMode(mode)
}

// refreshGait limits the desired gait to what the character may do right now
// and derives the actual gait from its speed. It only runs on the ground.
func (c *Character) refreshGait() {
	if c.state.Mode != locomotion.ModeGrounded {
		return
	}
	maxAllowed := c.calculateMaxAllowedGait()
	c.SetMaxAllowedGait(maxAllowed)
	c.state.Gait = c.calculateActualGait(maxAllowed)
}

func (c *Character) calculateMaxAllowedGait() locomotion.Gait {
	if c.desiredGait != locomotion.GaitSprinting {
		return c.desiredGait
	}
	if c.canSprint() {
		return locomotion.GaitSprinting
	}
	return locomotion.GaitRunning
}

// calculateActualGait can differ from the max allowed gait: a character that
// may only walk keeps running until it slowed down to walking speed.
func (c *Character) calculateActualGait(maxAllowed locomotion.Gait) locomotion.Gait {
	speed := utils.HorizontalLen(c.move.Velocity)
	s := c.resolver.Settings()
	if speed < s.WalkSpeed+gaitSpeedTolerance {
		return locomotion.GaitWalking
	}
	if speed < s.RunSpeed+gaitSpeedTolerance || maxAllowed != locomotion.GaitSprinting {
		return locomotion.GaitRunning
	}
	return locomotion.GaitSprinting
}

// canSprint only allows sprinting with input, while standing and, in view
// direction, when the input points roughly where the camera looks.
func (c *Character) canSprint() bool {
	if !c.hasInput || c.state.Stance != locomotion.StanceStanding {
		return false
	}
	if c.state.RotationMode == locomotion.RotationAiming && !c.settings.SprintHasPriorityOverAiming {
		return false
	}
	if c.state.ViewMode != locomotion.ViewFirstPerson &&
		(c.desiredRotationMode == locomotion.RotationVelocityDirection || c.settings.RotateToVelocityWhenSprinting) {
		return true
	}
	return math.Abs(movement.NormalizeAxis(c.inputYaw-c.viewYaw)) < c.settings.ViewRelativeAngleThresholdForSprint
}

// movementInput turns player input into simulation input. Jumping is only
// allowed while standing on the ground without an action.
func (c *Character) movementInput(dt float64, input Input) movement.Input {
	jump := input.Jump &&
		c.state.Stance == locomotion.StanceStanding &&
		c.state.Action == locomotion.ActionNone &&
		c.state.Mode == locomotion.ModeGrounded

	return movement.Input{
		Acceleration:  input.Acceleration,
		DeltaTime:     dt,
		Jump:          jump,
		WantsToCrouch: c.desiredStance == locomotion.StanceCrouching,
		WantsToLie:    c.wantsToLie,
	}
}

func (c *Character) syncFromMovement(res movement.Result) {
	stance := locomotion.StanceStanding
	switch {
	case res.Lied:
		stance = locomotion.StanceLying
	case res.Crouched:
		stance = locomotion.StanceCrouching
	}
	c.SetStance(stance)
	c.state.Mode = locomotionModeFor(res.Mode, c.state.Mode)
}

// refreshRotation turns the actor towards its velocity or the view, depending
// on the rotation mode.
func (c *Character) refreshRotation(dt float64) {
	target := c.move.Rotation
	switch c.state.RotationMode {
	case locomotion.RotationVelocityDirection:
		if v := utils.Horizontal(c.move.Velocity); v.Len() >= hasSpeedThreshold {
			target = yawOf(v)
		}
	default:
		target = c.viewYaw
	}
	rot := movement.LimitRotation(movement.Rotator{Yaw: c.move.Rotation}, movement.Rotator{Yaw: target}, c.settings.RotationSpeed, dt)
	c.move.Rotation = rot.Yaw
}

func (c *Character) tickRagdoll(dt float64) movement.Result {
	mesh := c.physAnim.Mesh()
	ragdoll.ClampBodySpeeds(mesh, c.ragdoll.Settings.MaxBodySpeed)

	sample := ragdoll.PelvisSample{
		ActorLocation: vec32(c.move.Location),
		ActorForward:  vec32(c.forward()),
		Velocity:      vec32(c.move.Velocity),
		HalfHeight:    float32(c.move.Capsule.HalfHeight),
	}
	if pelvis, ok := mesh.Body(physanim.PelvisBoneName); ok {
		sample.Location, sample.Rotation = pelvis.Location, pelvis.Rotation
	}
	sample.MaxBoneSpeed, sample.MaxBoneAngularSpeed = mesh.BoneSpeeds(physanim.PelvisBoneName)

	start := c.move.Location
	res := c.ragdoll.Tick(float32(dt), sample, c.world, c)
	if res.Froze {
		c.physAnim.Freeze()
	}
	if c.ragdoll.State.Grounded {
		c.state.Mode = locomotion.ModeGrounded
	} else {
		c.state.Mode = locomotion.ModeInAir
	}

	loc := vec64(res.ActorLocation)
	if dt > 0 {
		c.move.SetVelocity(loc.Sub(start).Mul(1 / dt))
	}
	c.move.SetLocation(loc)

	return movement.Result{
		Location:      loc,
		Velocity:      c.move.Velocity,
		LocationDelta: loc.Sub(start),
		Mode:          c.move.Mode,
		PrevMode:      c.move.Mode,
		OnGround:      c.ragdoll.State.Grounded,
		Crouched:      c.move.IsCrouched,
		Lied:          c.move.IsLied,
		HalfHeight:    c.move.Capsule.HalfHeight,
	}
}

// forward is the horizontal facing direction of the actor.
func (c *Character) forward() mgl64.Vec3 {
	yaw := mgl64.DegToRad(c.move.Rotation)
	return mgl64.Vec3{math.Cos(yaw), 0, math.Sin(yaw)}
}

// yawOf returns the yaw of a horizontal direction in degrees, with +X at 0.
func yawOf(v mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Atan2(v.Z(), v.X()))
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
