// Package ragdoll tracks the state of a character while its skeletal mesh is
// fully simulated: whether the ragdoll lies on the ground, which way it faces
// and when it came to rest and can be frozen.
package ragdoll

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/sirupsen/logrus"
)

// ChestAxis is the pelvis-local axis pointing out of the chest. The ragdoll
// faces upward when it points up.
var ChestAxis = mgl32.Vec3{0, 0, 1}

var up = mgl32.Vec3{0, 1, 0}

// Settings configure ragdolling.
type Settings struct {
	// StartBlendTime is the time the ragdoll takes to blend in. Facing upward is
	// only re-evaluated from the pelvis once it passed.
	StartBlendTime float32
	// MaxBodySpeed clamps the linear speed of every body. Zero disables it.
	MaxBodySpeed float32
	// WalkableFloorY is the minimum Y of a floor normal the ragdoll can lie on.
	WalkableFloorY float32
	// GroundTraceDistance is the length of the ground trace. Zero uses the
	// capsule half height.
	GroundTraceDistance float32

	AllowFreezing bool
	// TimeAfterGroundedForForceFreezing forces a freeze this long after landing.
	// TimeAfterGroundedAndStoppedForForceFreezing forces a freeze this long after
	// the root came to a stop on the ground. Bone angular speeds are in degrees
	// per second.
	TimeAfterGroundedForForceFreezing           float32
	TimeAfterGroundedAndStoppedForForceFreezing float32
	RootBoneSpeedConsideredAsStopped            float32
	MaxBoneSpeedForFreezing                     float32
	MaxBoneAngularSpeedForFreezing              float32
}

func DefaultSettings() Settings {
	return Settings{
		StartBlendTime: 0.25,
		MaxBodySpeed:   5000,
		WalkableFloorY: 0.71,

		TimeAfterGroundedForForceFreezing:           5,
		TimeAfterGroundedAndStoppedForForceFreezing: 1,
		RootBoneSpeedConsideredAsStopped:            5,
		MaxBoneSpeedForFreezing:                     5,
		MaxBoneAngularSpeedForFreezing:              45,
	}
}

// State is the observable ragdolling state.
type State struct {
	Grounded     bool
	FacingUpward bool
	// LyingDownYawDelta is the yaw, in degrees, the character turns by to lie
	// along its fall direction.
	LyingDownYawDelta float32

	ElapsedTime                 float32
	TimeAfterGrounded           float32
	TimeAfterGroundedAndStopped float32
	Freezing                    bool

	RootBoneSpeed       float32
	MaxBoneSpeed        float32
	MaxBoneAngularSpeed float32
}

// Mover is the part of the character that ragdolling controls.
type Mover interface {
	SetMovementMode(mode movement.Mode, customMode uint8)
	LockMovementMode(mode movement.Mode, customMode uint8)
	UnlockMovementMode()
	Crouch()
	UnCrouch()
}

// GroundTracer traces the ground below a ragdoll.
type GroundTracer interface {
	TraceGround(start, end mgl32.Vec3) (point, normal mgl32.Vec3, ok bool)
}

// PelvisSample is what a tick reads from the simulated mesh and the capsule.
type PelvisSample struct {
	Location mgl32.Vec3
	Rotation mgl32.Quat

	ActorLocation mgl32.Vec3
	ActorForward  mgl32.Vec3
	// Velocity is the velocity of the character, following the pelvis.
	Velocity   mgl32.Vec3
	HalfHeight float32

	MaxBoneSpeed        float32
	MaxBoneAngularSpeed float32
}

// TickResult tells the character where its capsule goes and whether the
// ragdoll froze during the tick.
type TickResult struct {
	ActorLocation mgl32.Vec3
	Froze         bool
}

// Ragdoll runs the ragdolling state of one character.
type Ragdoll struct {
	Settings Settings
	State    State

	log          *logrus.Logger
	active       bool
	prevGrounded bool
}

func New(settings Settings, log *logrus.Logger) *Ragdoll {
	if log == nil {
		log = logrus.New()
	}
	return &Ragdoll{Settings: settings, log: log}
}

func (r *Ragdoll) Active() bool { return r.active }

// IsGroundedAndAged returns true once the ragdoll lies on the ground after
// blending in.
func (r *Ragdoll) IsGroundedAndAged() bool {
	return r.State.Grounded && r.State.ElapsedTime > r.Settings.StartBlendTime
}

// Start resets the state and locks the movement mode of mover to Custom.
// forward and velocity are those of the character when it started falling
// over.
func (r *Ragdoll) Start(forward, velocity mgl32.Vec3, mover Mover) {
	r.State = State{}
	r.active, r.prevGrounded = true, true

	if pole, ok := horizontalDir(velocity); ok {
		r.State.FacingUpward = forward.Dot(pole) < -0.25
		if r.State.FacingUpward {
			pole = pole.Mul(-1)
		}
		r.State.LyingDownYawDelta = yawOf(pole) - yawOf(forward)
	} else {
		r.State.FacingUpward = true
	}

	mover.LockMovementMode(movement.ModeCustom, 0)
	r.log.Debugf("ragdoll started, facing upward: %t", r.State.FacingUpward)
}

// Tick advances the ragdoll by dt.
func (r *Ragdoll) Tick(dt float32, pelvis PelvisSample, tracer GroundTracer, mover Mover) TickResult {
	st := &r.State
	res := TickResult{ActorLocation: pelvis.ActorLocation}
	if st.Freezing || !r.active {
		return res
	}

	res.ActorLocation = r.traceGround(pelvis, tracer)

	if r.IsGroundedAndAged() {
		chestDotUp := pelvis.Rotation.Rotate(ChestAxis).Dot(up)
		if st.FacingUpward && chestDotUp < -0.5 {
			st.FacingUpward = false
		} else if !st.FacingUpward && chestDotUp > 0.5 {
			st.FacingUpward = true
		}
	}

	if r.Settings.AllowFreezing {
		r.updateFreezing(dt, pelvis)
		res.Froze = st.Freezing
	}

	if st.ElapsedTime <= r.Settings.StartBlendTime && st.ElapsedTime+dt > r.Settings.StartBlendTime {
		dir, _ := horizontalDir(pelvis.Velocity)
		st.FacingUpward = pelvis.ActorForward.Dot(dir) <= 0
	}

	if r.prevGrounded != st.Grounded {
		if st.Grounded {
			mover.Crouch()
		} else {
			mover.UnCrouch()
		}
	}
	r.prevGrounded = st.Grounded

	st.ElapsedTime += dt
	return res
}

func (r *Ragdoll) updateFreezing(dt float32, pelvis PelvisSample) {
	st, set := &r.State, r.Settings
	st.RootBoneSpeed = pelvis.Velocity.Len()

	if !st.Grounded {
		st.TimeAfterGrounded, st.TimeAfterGroundedAndStopped = 0, 0
		return
	}

	st.TimeAfterGrounded += dt
	switch {
	case set.TimeAfterGroundedForForceFreezing > 0 && st.TimeAfterGrounded > set.TimeAfterGroundedForForceFreezing:
		st.Freezing = true
	case st.RootBoneSpeed < set.RootBoneSpeedConsideredAsStopped:
		st.TimeAfterGroundedAndStopped += dt
		if set.TimeAfterGroundedAndStoppedForForceFreezing > 0 && st.TimeAfterGroundedAndStopped > set.TimeAfterGroundedAndStoppedForForceFreezing {
			st.Freezing = true
			break
		}
		st.MaxBoneSpeed, st.MaxBoneAngularSpeed = pelvis.MaxBoneSpeed, pelvis.MaxBoneAngularSpeed
		st.Freezing = st.MaxBoneSpeed < set.MaxBoneSpeedForFreezing && st.MaxBoneAngularSpeed < set.MaxBoneAngularSpeedForFreezing
	default:
		st.TimeAfterGroundedAndStopped = 0
	}
	if st.Freezing {
		r.log.Debugf("ragdoll froze after %.2fs on the ground", st.TimeAfterGrounded)
	}
}

// traceGround traces down from the pelvis and returns where the capsule should
// be so that it does not sink into the floor under the ragdoll.
func (r *Ragdoll) traceGround(pelvis PelvisSample, tracer GroundTracer) mgl32.Vec3 {
	start := pelvis.Location
	if start == (mgl32.Vec3{}) {
		start = pelvis.ActorLocation
	}
	dist := r.Settings.GroundTraceDistance
	if dist <= 0 {
		dist = pelvis.HalfHeight
	}

	r.State.Grounded = false
	if tracer != nil {
		point, normal, ok := tracer.TraceGround(start, start.Sub(mgl32.Vec3{0, dist, 0}))
		r.State.Grounded = ok && normal.Y() >= r.Settings.WalkableFloorY
		if r.State.Grounded {
			return mgl32.Vec3{start.X(), point.Y() + pelvis.HalfHeight + movement.MinFloorDist, start.Z()}
		}
	}
	return start
}

// End unlocks the movement mode of mover and lets the character walk if the
// ragdoll lies on the ground, or fall otherwise.
func (r *Ragdoll) End(mover Mover) {
	if !r.active {
		return
	}
	r.active = false
	r.State.Freezing = false

	mover.UnlockMovementMode()
	if r.State.Grounded {
		mover.SetMovementMode(movement.ModeWalking, 0)
	} else {
		mover.SetMovementMode(movement.ModeFalling, 0)
	}
	r.log.Debugf("ragdoll ended after %.2fs, grounded: %t", r.State.ElapsedTime, r.State.Grounded)
}

// ClampBodySpeeds limits the linear speed of every body of mesh.
func ClampBodySpeeds(mesh *physanim.Mesh, maxSpeed float32) {
	if maxSpeed <= 0 {
		return
	}
	mesh.ForEachBody(func(b *physanim.Body) {
		if speed := b.LinearVelocity.Len(); speed > maxSpeed {
			b.LinearVelocity = b.LinearVelocity.Mul(maxSpeed / speed)
		}
	})
}

func horizontalDir(v mgl32.Vec3) (mgl32.Vec3, bool) {
	h := mgl32.Vec3{v.X(), 0, v.Z()}
	if h.LenSqr() < 1e-8 {
		return mgl32.Vec3{}, false
	}
	return h.Normalize(), true
}

// yawOf returns the yaw of a horizontal direction in degrees, with +X at 0.
func yawOf(dir mgl32.Vec3) float32 {
	return mgl32.RadToDeg(math32.Atan2(dir.Z(), dir.X()))
}
