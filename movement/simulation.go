package movement

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/utils"
)

// Simulate runs a movement simulation tick and returns the resulting state.
func (s *Simulator) Simulate(st *MovementState, input Input) Result {
	if st == nil {
		return Result{}
	}
	prevMode, start := st.Mode, st.Location
	st.LastLocation, st.LastVelocity = st.Location, st.Velocity
	st.outcome, st.iterations = OutcomeNormal, 0

	s.applyInput(st, input)
	if input.DeltaTime < MinTickTime {
		st.outcome = OutcomeSkippedTinyTick
		return s.resultFromState(st, prevMode, start)
	}
	if !s.ready(st) {
		st.outcome = OutcomeImmobileOrNotReady
		return s.resultFromState(st, prevMode, start)
	}

	s.UpdateCharacterStateBeforeMovement(st)
	if input.Jump && s.CanAttemptJump(st) {
		s.DoJump(st)
	}
	s.startNewPhysics(st, input.DeltaTime, 0)
	s.UpdateCharacterStateAfterMovement(st)
	s.UpdateCapsuleSize(st, input.DeltaTime)

	return s.resultFromState(st, prevMode, start)
}

// SimulateState runs only the movement mode dispatch using the current state
// values, without applying input or crouch and capsule updates.
func (s *Simulator) SimulateState(st *MovementState, dt float64) Result {
	if st == nil {
		return Result{}
	}
	prevMode, start := st.Mode, st.Location
	st.outcome, st.iterations = OutcomeNormal, 0
	switch {
	case dt < MinTickTime:
		st.outcome = OutcomeSkippedTinyTick
	case !s.ready(st):
		st.outcome = OutcomeImmobileOrNotReady
	default:
		s.startNewPhysics(st, dt, 0)
	}
	return s.resultFromState(st, prevMode, start)
}

func (s *Simulator) ready(st *MovementState) bool {
	if s.World == nil || st.Capsule.IsNearlyZero() || utils.ContainsNaN(st.Velocity) || utils.ContainsNaN(st.Location) {
		s.debugf("simulation skipped: world=%v capsule=%v velocity=%v", s.World != nil, st.Capsule, st.Velocity)
		return false
	}
	return true
}

func (s *Simulator) applyInput(st *MovementState, input Input) {
	st.WantsToCrouch = input.WantsToCrouch
	st.WantsToLie = input.WantsToLie
	st.HasRootMotion = input.HasRootMotion
	st.RootMotionVelocity = input.RootMotionVelocity

	if st.InputBlocked {
		st.Acceleration = mgl64.Vec3{}
		return
	}
	accel := input.Acceleration
	if accel.LenSqr() > 1 {
		accel = accel.Normalize()
	}
	st.Acceleration = accel.Mul(s.MaxAcceleration(st))
}

func (s *Simulator) resultFromState(st *MovementState, prevMode Mode, start mgl64.Vec3) Result {
	return Result{
		Location:      st.Location,
		Velocity:      st.Velocity,
		LocationDelta: st.Location.Sub(start),
		Mode:          st.Mode,
		PrevMode:      prevMode,
		OnGround:      st.IsMovingOnGround() && st.CurrentFloor.IsWalkableFloor(),
		Floor:         st.CurrentFloor,
		Crouched:      st.IsCrouched,
		Lied:          st.IsLied,
		HalfHeight:    st.Capsule.HalfHeight,
		Outcome:       st.outcome,
		Iterations:    st.iterations,
	}
}

// startNewPhysics dispatches the remaining time to the handler of the current mode.
func (s *Simulator) startNewPhysics(st *MovementState, dt float64, iterations int) {
	if dt < MinTickTime || iterations >= s.Options.MaxSimulationIterations || s.World == nil {
		return
	}
	switch st.Mode {
	case ModeWalking, ModeNavWalking:
		s.PhysWalking(st, dt, iterations)
	case ModeFalling:
		s.PhysFalling(st, dt, iterations)
	case ModeFlying:
		s.PhysFlying(st, dt, iterations)
	case ModeSwimming:
		if s.Hooks.PhysSwimming != nil {
			s.Hooks.PhysSwimming(st, dt, iterations)
		}
	case ModeCustom:
		s.PhysCustom(st, dt, iterations)
	default:
		st.Velocity = mgl64.Vec3{}
	}
}

// SetMovementMode changes the movement mode. It is ignored while the mode is locked.
func (s *Simulator) SetMovementMode(st *MovementState, mode Mode, customMode uint8) {
	if st.ModeLocked {
		return
	}
	if mode != ModeCustom {
		customMode = 0
	}
	if st.Mode == mode && (mode != ModeCustom || st.CustomMode == customMode) {
		return
	}
	prevMode, prevCustom := st.Mode, st.CustomMode
	st.Mode, st.CustomMode = mode, customMode
	s.onMovementModeChanged(st, prevMode, prevCustom)
}

func (s *Simulator) onMovementModeChanged(st *MovementState, prevMode Mode, prevCustom uint8) {
	if st.IsMovingOnGround() {
		st.Velocity[1] = 0
		st.CurrentFloor = s.FindFloor(st, st.Location, false, nil)
		s.AdjustFloorHeight(st)
	} else {
		st.CurrentFloor.Clear()
	}
	st.CrouchMaintainsBaseLocation = true

	if s.Hooks.OnMovementModeChanged != nil {
		s.Hooks.OnMovementModeChanged(st, prevMode, prevCustom)
	}
}

// LockMovementMode switches to mode and keeps it until UnlockMovementMode.
func (s *Simulator) LockMovementMode(st *MovementState, mode Mode, customMode uint8) {
	st.ModeLocked = false
	s.SetMovementMode(st, mode, customMode)
	st.ModeLocked = true
}

func (s *Simulator) UnlockMovementMode(st *MovementState) {
	st.ModeLocked = false
}

// SetInputBlocked zeroes the acceleration of subsequent ticks while blocked.
func (s *Simulator) SetInputBlocked(st *MovementState, blocked bool) {
	st.InputBlocked = blocked
	if blocked {
		st.Acceleration = mgl64.Vec3{}
	}
}

// Teleport moves the character without sweeping and forces a floor check.
func (s *Simulator) Teleport(st *MovementState, location mgl64.Vec3) {
	st.SetLocation(location)
	st.JustTeleported = true
	st.ForceNextFloorCheck = true
}

// CanAttemptJump returns true if a jump may start from the current state.
func (s *Simulator) CanAttemptJump(st *MovementState) bool {
	return !st.WantsToLie && !st.IsLied && !st.WantsToCrouch && st.IsMovingOnGround() && st.CurrentFloor.IsWalkableFloor()
}

// DoJump launches the character into the air.
func (s *Simulator) DoJump(st *MovementState) bool {
	if !st.IsMovingOnGround() {
		return false
	}
	if st.Velocity[1] < s.Options.JumpZVelocity {
		st.Velocity[1] = s.Options.JumpZVelocity
	}
	s.SetMovementMode(st, ModeFalling, 0)
	return true
}
