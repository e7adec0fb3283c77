package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/utils"
)

func (s *Simulator) CanCrouchInCurrentState(st *MovementState) bool {
	return st.CanEverCrouch && (st.IsFalling() || st.IsMovingOnGround()) && !st.SimulatingPhysics
}

func (s *Simulator) CanLieInCurrentState(st *MovementState) bool {
	return st.CanEverLie && (st.IsFalling() || st.IsMovingOnGround()) && !st.SimulatingPhysics
}

// Crouch marks the character as crouched. The capsule is shrunk over time by
// UpdateCapsuleSize.
func (s *Simulator) Crouch(st *MovementState, clientSimulation bool) {
	if !clientSimulation && !s.CanCrouchInCurrentState(st) {
		return
	}
	if st.Capsule.HalfHeight == st.CrouchedHalfHeight {
		if !clientSimulation {
			st.IsCrouched = true
		}
		s.notifyCrouch(st, true, 0)
		return
	}

	target := math.Max(0, math.Max(st.Capsule.Radius, st.CrouchedHalfHeight))
	if !clientSimulation {
		st.IsCrouched = true
	}
	st.ForceNextFloorCheck = true
	s.notifyCrouch(st, true, st.StandingHalfHeight-target)
}

// UnCrouch leaves the crouched state if the standing capsule fits. It returns
// false when the character must stay crouched.
func (s *Simulator) UnCrouch(st *MovementState, clientSimulation bool) bool {
	if st.Capsule.HalfHeight == st.StandingHalfHeight {
		if !clientSimulation {
			st.IsCrouched = false
		}
		s.notifyCrouch(st, false, 0)
		return true
	}

	target := st.StandingHalfHeight
	if st.IsLied {
		target = st.LiedHalfHeight
	}
	if !clientSimulation {
		if !s.canGrowTo(st, target) {
			return false
		}
		st.IsCrouched = false
	}
	st.ForceNextFloorCheck = true
	s.notifyCrouch(st, false, target-st.Capsule.HalfHeight)
	return true
}

// Lie marks the character as lying. The capsule is shrunk over time by
// UpdateCapsuleSize.
func (s *Simulator) Lie(st *MovementState, clientSimulation bool) {
	if !clientSimulation && !s.CanLieInCurrentState(st) {
		return
	}
	if st.Capsule.HalfHeight == st.LiedHalfHeight {
		if !clientSimulation {
			st.IsLied = true
		}
		s.notifyLie(st, true, 0)
		return
	}

	target := math.Max(0, math.Max(st.Capsule.Radius, st.LiedHalfHeight))
	if !clientSimulation {
		st.IsLied = true
	}
	st.ForceNextFloorCheck = true
	s.notifyLie(st, true, st.StandingHalfHeight-target)
}

// UnLie leaves the lying state if the capsule for the remaining stance fits.
func (s *Simulator) UnLie(st *MovementState, clientSimulation bool) bool {
	target := st.StandingHalfHeight
	if st.IsCrouched {
		target = st.CrouchedHalfHeight
	}
	if st.Capsule.HalfHeight == target {
		if !clientSimulation {
			st.IsLied = false
		}
		s.notifyLie(st, false, 0)
		return true
	}

	if !clientSimulation {
		if !s.canGrowTo(st, target) {
			return false
		}
		st.IsLied = false
	}
	st.ForceNextFloorCheck = true
	s.notifyLie(st, false, target-st.Capsule.HalfHeight)
	return true
}

func (s *Simulator) notifyCrouch(st *MovementState, crouched bool, adjust float64) {
	if s.Hooks.OnCrouchChanged != nil {
		s.Hooks.OnCrouchChanged(st, crouched, adjust)
	}
}

func (s *Simulator) notifyLie(st *MovementState, lied bool, adjust float64) {
	if s.Hooks.OnLieChanged != nil {
		s.Hooks.OnLieChanged(st, lied, adjust)
	}
}

// canGrowTo tests whether a capsule with targetHalfHeight fits without
// encroaching on blocking geometry.
func (s *Simulator) canGrowTo(st *MovementState, targetHalfHeight float64) bool {
	if s.World == nil {
		return false
	}
	current := st.Capsule.HalfHeight
	radius := st.Capsule.Radius
	adjust := targetHalfHeight - current
	grown := Capsule{Radius: radius, HalfHeight: targetHalfHeight + sweepInflation}
	loc := st.Location

	if !st.CrouchMaintainsBaseLocation {
		if !s.World.OverlapCapsule(loc, grown) {
			return true
		}
		if adjust <= 0 {
			return false
		}
		// Sweep a short capsule down to find the base, then test the grown capsule
		// resting on it.
		short := Capsule{Radius: radius, HalfHeight: radius}
		traceDist := current - radius
		hit, _ := s.sweep(loc, loc.Add(down.Mul(traceDist)), short)
		if hit.StartPenetrating {
			return false
		}
		distanceToBase := hit.Time*traceDist + short.HalfHeight
		rest := mgl64.Vec3{loc[0], loc[1] - distanceToBase + grown.HalfHeight + sweepInflation + MinFloorDist/2, loc[2]}
		return !s.World.OverlapCapsule(rest, grown)
	}

	// Keep the base of the capsule where it is.
	standing := loc.Add(up.Mul(grown.HalfHeight - current))
	encroached := s.World.OverlapCapsule(standing, grown)
	if encroached && st.IsMovingOnGround() {
		// Try again with the floor gap removed.
		const minFloorDist = kindaSmallNumber * 10
		if st.CurrentFloor.BlockingHit && st.CurrentFloor.FloorDist > minFloorDist {
			standing[1] -= st.CurrentFloor.FloorDist - minFloorDist
			encroached = s.World.OverlapCapsule(standing, grown)
		}
	}
	if !encroached {
		st.ForceNextFloorCheck = true
	}
	return !encroached
}

// UpdateCharacterStateBeforeMovement applies the wanted crouch and lie states.
func (s *Simulator) UpdateCharacterStateBeforeMovement(st *MovementState) {
	if st.ClientSimulation {
		return
	}
	if st.IsCrouched && (!st.WantsToCrouch || !s.CanCrouchInCurrentState(st)) {
		s.UnCrouch(st, false)
	} else if !st.IsCrouched && st.WantsToCrouch && s.CanCrouchInCurrentState(st) {
		s.Crouch(st, false)
	}

	if st.IsLied && (!st.WantsToLie || !s.CanLieInCurrentState(st)) {
		s.UnLie(st, false)
	} else if !st.IsLied && st.WantsToLie && s.CanLieInCurrentState(st) {
		s.Lie(st, false)
	}
}

// UpdateCharacterStateAfterMovement leaves crouch and lie when the new mode no
// longer allows them.
func (s *Simulator) UpdateCharacterStateAfterMovement(st *MovementState) {
	if st.ClientSimulation {
		return
	}
	if st.IsCrouched && !s.CanCrouchInCurrentState(st) {
		s.UnCrouch(st, false)
	}
	if st.IsLied && !s.CanLieInCurrentState(st) {
		s.UnLie(st, false)
	}
}

// TargetHalfHeight returns the half height the capsule is moving towards.
func (st *MovementState) TargetHalfHeight() float64 {
	target := st.StandingHalfHeight
	if st.IsLied {
		target = st.LiedHalfHeight
	} else if st.IsCrouched {
		target = st.CrouchedHalfHeight
	}
	return math.Max(0, math.Max(st.Capsule.Radius, target))
}

// UpdateCapsuleSize moves the capsule half height towards the target for the
// current stance. The capsule base stays in place.
func (s *Simulator) UpdateCapsuleSize(st *MovementState, dt float64) {
	target := st.TargetHalfHeight()
	old := st.Capsule.HalfHeight
	if old == target {
		return
	}
	halfHeight := utils.FInterpConstantTo(old, target, dt, s.Options.CapsuleInterpSpeed)
	st.Capsule.HalfHeight = halfHeight
	st.Location[1] += halfHeight - old
}
