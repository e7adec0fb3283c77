package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/gait"
	"github.com/oomph-ac/locomotion/utils"
)

// sampleGaitCurve samples a gait curve channel at the current planar speed. A
// missing curve is reported once as a soft assertion.
func (s *Simulator) sampleGaitCurve(st *MovementState, channel int) (float64, bool) {
	if s.Gait == nil {
		return 0, false
	}
	v, ok := s.Gait.Sample(channel, utils.HorizontalLen(st.Velocity))
	return v, assert.Ensure(ok, s.Log, "missing gait curve channel %d", channel)
}

// MaxAcceleration reads the acceleration curve while on the ground.
func (s *Simulator) MaxAcceleration(st *MovementState) float64 {
	if st.IsMovingOnGround() {
		if v, ok := s.sampleGaitCurve(st, gait.ChannelAcceleration); ok {
			return v
		}
	}
	return s.Options.MaxAcceleration
}

// MaxBrakingDeceleration reads the braking curve while on the ground.
func (s *Simulator) MaxBrakingDeceleration(st *MovementState) float64 {
	if st.IsMovingOnGround() {
		if v, ok := s.sampleGaitCurve(st, gait.ChannelBrakingDeceleration); ok {
			return v
		}
	}
	switch st.Mode {
	case ModeWalking, ModeNavWalking:
		return s.Options.BrakingDecelerationWalking
	case ModeFalling:
		return s.Options.BrakingDecelerationFalling
	}
	return 0
}

func (s *Simulator) MaxSpeed(st *MovementState) float64 {
	walk, crouched := s.Options.MaxWalkSpeed, s.Options.MaxWalkSpeedCrouched
	if s.Gait != nil {
		walk, crouched = s.Gait.MaxWalkSpeed(), s.Gait.MaxWalkSpeedCrouched()
	}
	switch st.Mode {
	case ModeWalking, ModeNavWalking:
		if st.IsCrouched {
			return crouched
		}
		return walk
	case ModeFalling:
		return walk
	case ModeCustom:
		return s.Options.MaxCustomMovementSpeed
	}
	return 0
}

func isExceedingMaxSpeed(v mgl64.Vec3, maxSpeed float64) bool {
	maxSpeed = math.Max(0, maxSpeed)
	const overVelocityPercent = 1.01
	return v.LenSqr() > (maxSpeed*overVelocityPercent)*(maxSpeed*overVelocityPercent)
}

func clampMaxSize(v mgl64.Vec3, maxSize float64) mgl64.Vec3 {
	if maxSize < kindaSmallNumber {
		return mgl64.Vec3{}
	}
	if l := v.Len(); l > maxSize {
		return v.Mul(maxSize / l)
	}
	return v
}

// CalcVelocity updates the velocity from the current acceleration, applying
// friction or braking.
func (s *Simulator) CalcVelocity(st *MovementState, dt, friction float64, fluid bool, brakingDeceleration float64) {
	if st.HasRootMotion || dt < MinTickTime {
		return
	}
	friction = math.Max(0, friction)
	maxSpeed := s.MaxSpeed(st)

	accel := st.Acceleration
	zeroAccel := accel.LenSqr() == 0
	overMax := isExceedingMaxSpeed(st.Velocity, maxSpeed)

	if zeroAccel || overMax {
		old := st.Velocity
		brakingFriction := friction
		if s.Options.UseSeparateBrakingFriction {
			brakingFriction = s.Options.BrakingFriction
		}
		s.ApplyVelocityBraking(st, dt, brakingFriction, brakingDeceleration)

		// Don't let braking take us below max speed while we keep accelerating
		// in the same direction.
		if overMax && st.Velocity.LenSqr() < maxSpeed*maxSpeed && accel.Dot(old) > 0 {
			st.Velocity = utils.SafeNormal(old).Mul(maxSpeed)
		}
	} else {
		// Friction turns the velocity towards the acceleration direction.
		accelDir := utils.SafeNormal(accel)
		speed := st.Velocity.Len()
		st.Velocity = st.Velocity.Sub(st.Velocity.Sub(accelDir.Mul(speed)).Mul(math.Min(dt*friction, 1)))
	}

	if fluid {
		st.Velocity = st.Velocity.Mul(1 - math.Min(friction*dt, 1))
	}

	if !zeroAccel {
		newMaxInputSpeed := maxSpeed
		if isExceedingMaxSpeed(st.Velocity, maxSpeed) {
			newMaxInputSpeed = st.Velocity.Len()
		}
		st.Velocity = clampMaxSize(st.Velocity.Add(accel.Mul(dt)), newMaxInputSpeed)
	}
}

// ApplyVelocityBraking slows the velocity down with friction and a constant
// deceleration, in substeps for stability.
func (s *Simulator) ApplyVelocityBraking(st *MovementState, dt, friction, brakingDeceleration float64) {
	if st.Velocity.LenSqr() == 0 || dt < MinTickTime {
		return
	}
	friction = math.Max(0, friction*math.Max(0, s.Options.BrakingFrictionFactor))
	brakingDeceleration = math.Max(0, brakingDeceleration)
	zeroFriction, zeroBraking := friction == 0, brakingDeceleration == 0
	if zeroFriction && zeroBraking {
		return
	}

	old := st.Velocity
	maxStep := utils.ClampFloat(brakingSubStepTime, 1.0/75, 1.0/20)
	var revAccel mgl64.Vec3
	if !zeroBraking {
		revAccel = utils.SafeNormal(st.Velocity).Mul(-brakingDeceleration)
	}

	remaining := dt
	for remaining >= MinTickTime {
		step := remaining
		if remaining > maxStep && !zeroFriction {
			step = math.Min(maxStep, remaining*0.5)
		}
		remaining -= step

		st.Velocity = st.Velocity.Add(st.Velocity.Mul(-friction).Add(revAccel).Mul(step))
		// Never reverse direction.
		if st.Velocity.Dot(old) <= 0 {
			st.Velocity = mgl64.Vec3{}
			return
		}
	}

	if st.Velocity.LenSqr() <= kindaSmallNumber || (!zeroBraking && st.Velocity.LenSqr() <= BrakeToStopVelocity*BrakeToStopVelocity) {
		st.Velocity = mgl64.Vec3{}
	}
}
