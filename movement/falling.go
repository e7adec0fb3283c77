package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/utils"
)

const (
	airControlBoostVelocityThreshold = 25.0
	airControlBoostMultiplier        = 2.0
)

// fallingLateralAcceleration returns the horizontal acceleration available in
// the air, scaled by air control.
func (s *Simulator) fallingLateralAcceleration(st *MovementState) mgl64.Vec3 {
	accel := utils.Horizontal(st.Acceleration)
	if st.HasRootMotion || accel.LenSqr() == 0 {
		return accel
	}
	airControl := s.Options.AirControl
	if airControl != 0 && utils.Horizontal(st.Velocity).LenSqr() < airControlBoostVelocityThreshold*airControlBoostVelocityThreshold {
		airControl = math.Min(1, airControlBoostMultiplier*airControl)
	}
	return accel.Mul(airControl)
}

func (s *Simulator) gravityY() float64 {
	return s.Options.Gravity * s.Options.GravityScale
}

func (s *Simulator) newFallVelocity(v mgl64.Vec3, dt float64) mgl64.Vec3 {
	v[1] += s.gravityY() * dt
	if terminal := s.Options.TerminalVelocity; terminal > 0 && -v[1] > terminal {
		v[1] = -terminal
	}
	return v
}

// PhysFalling integrates gravity and air control, deflecting off and landing
// on blocking geometry.
func (s *Simulator) PhysFalling(st *MovementState, dt float64, iterations int) {
	if dt < MinTickTime {
		return
	}
	fallAccel := s.fallingLateralAcceleration(st)
	remaining := dt

	for remaining >= MinTickTime && iterations < s.Options.MaxSimulationIterations {
		iterations++
		st.iterations = iterations
		timeTick := s.simulationTimeStep(remaining, iterations)
		remaining -= timeTick

		st.JustTeleported = false
		oldVelocity := st.Velocity

		if !st.HasRootMotion {
			// Only the horizontal part is affected by friction and acceleration.
			vy := st.Velocity[1]
			st.Velocity[1] = 0
			accel := st.Acceleration
			st.Acceleration = fallAccel
			s.CalcVelocity(st, timeTick, s.Options.FallingLateralFriction, false, s.MaxBrakingDeceleration(st))
			st.Acceleration = accel
			st.Velocity[1] = vy

			st.Velocity = s.newFallVelocity(st.Velocity, timeTick)
		} else {
			st.Velocity = st.RootMotionVelocity
		}

		adjusted := oldVelocity.Add(st.Velocity).Mul(0.5 * timeTick)
		if st.HasRootMotion {
			adjusted = st.Velocity.Mul(timeTick)
		}

		hit, blocked := s.safeMoveUpdatedComponent(st, adjusted)
		subTimeTickRemaining := timeTick * (1 - hit.Time)

		if !st.IsFalling() {
			s.startNewPhysics(st, remaining+subTimeTickRemaining, iterations)
			return
		}

		if blocked {
			if s.isValidLandingSpot(st, st.Location, hit) {
				s.processLanded(st, remaining+subTimeTickRemaining, iterations)
				return
			}

			// Deflect using the final velocity rather than the integration step.
			adjusted = st.Velocity.Mul(timeTick)

			if !hit.StartPenetrating && s.shouldCheckForValidLandingSpot(st, hit) {
				floor := s.FindFloor(st, st.Location, false, nil)
				if floor.IsWalkableFloor() && s.isValidLandingSpot(st, st.Location, floor.Hit) {
					s.processLanded(st, remaining+subTimeTickRemaining, iterations)
					return
				}
			}

			oldHitNormal, oldHitImpactNormal := hit.Normal, hit.ImpactNormal
			delta := s.computeSlideVector(st, adjusted, 1-hit.Time, oldHitNormal)
			if subTimeTickRemaining > kindaSmallNumber && !st.JustTeleported {
				st.Velocity = delta.Mul(1 / subTimeTickRemaining)
			}

			if subTimeTickRemaining > kindaSmallNumber && delta.Dot(adjusted) > 0 {
				hit, blocked = s.safeMoveUpdatedComponent(st, delta)
				if blocked {
					subTimeTickRemaining *= 1 - hit.Time
					if s.isValidLandingSpot(st, st.Location, hit) {
						s.processLanded(st, remaining+subTimeTickRemaining, iterations)
						return
					}

					delta = s.twoWallAdjust(st, delta, hit, oldHitNormal)
					if subTimeTickRemaining > kindaSmallNumber && !st.JustTeleported {
						st.Velocity = delta.Mul(1 / subTimeTickRemaining)
					}

					// Falling into a V between two upward facing surfaces.
					ditch := oldHitImpactNormal[1] > 0 && hit.ImpactNormal[1] > 0 &&
						math.Abs(delta[1]) <= kindaSmallNumber && hit.ImpactNormal.Dot(oldHitImpactNormal) < 0

					hit, _ = s.safeMoveUpdatedComponent(st, delta)
					if hit.Time == 0 {
						// Stuck, try to side step.
						side := utils.SafeNormal(utils.Horizontal(oldHitNormal.Add(hit.ImpactNormal)))
						if side.LenSqr() == 0 {
							side = utils.SafeNormal(mgl64.Vec3{oldHitNormal[2], 0, -oldHitNormal[0]})
						}
						hit, _ = s.safeMoveUpdatedComponent(st, side)
					}
					if ditch || s.isValidLandingSpot(st, st.Location, hit) || hit.Time == 0 {
						s.processLanded(st, 0, iterations)
						return
					}
				}
			}
		}

		if utils.Horizontal(st.Velocity).LenSqr() <= kindaSmallNumber*10 {
			st.Velocity[0], st.Velocity[2] = 0, 0
		}
	}
}

func (s *Simulator) shouldCheckForValidLandingSpot(st *MovementState, hit Hit) bool {
	// The capsule hit an edge while its base normal points up, the floor below
	// may still be walkable.
	if hit.Normal[1] > kindaSmallNumber && !hit.Normal.ApproxEqual(hit.ImpactNormal) {
		return isWithinEdgeTolerance(hit.Location, hit.ImpactPoint, st.Capsule.Radius)
	}
	return false
}

func (s *Simulator) isValidLandingSpot(st *MovementState, loc mgl64.Vec3, hit Hit) bool {
	if !hit.IsValidBlockingHit() {
		return false
	}
	if !s.IsWalkable(hit) {
		return false
	}
	radius, halfHeight := st.Capsule.Radius, st.Capsule.HalfHeight
	// Reject hits above the lower hemisphere.
	lowerHemisphereY := hit.Location[1] - halfHeight + radius
	if hit.ImpactPoint[1] >= lowerHemisphereY {
		return false
	}
	if !isWithinEdgeTolerance(hit.Location, hit.ImpactPoint, radius) {
		return false
	}
	floor := s.FindFloor(st, loc, false, &hit)
	return floor.IsWalkableFloor()
}

// processLanded switches a falling character to walking (or swimming) and
// continues the tick.
func (s *Simulator) processLanded(st *MovementState, remaining float64, iterations int) {
	if st.IsFalling() {
		if s.World.InWater(st.Location) {
			s.SetMovementMode(st, ModeSwimming, 0)
		} else {
			s.SetMovementMode(st, ModeWalking, 0)
		}
	}
	s.startNewPhysics(st, remaining, iterations)
}

// PhysFlying moves freely with fluid friction.
func (s *Simulator) PhysFlying(st *MovementState, dt float64, iterations int) {
	if dt < MinTickTime {
		return
	}
	if !st.HasRootMotion {
		s.CalcVelocity(st, dt, s.Options.GroundFriction*0.5, true, 0)
	} else {
		st.Velocity = st.RootMotionVelocity
	}
	st.iterations = iterations + 1

	oldLocation := st.Location
	adjusted := st.Velocity.Mul(dt)
	hit, blocked := s.safeMoveUpdatedComponent(st, adjusted)
	if blocked {
		s.slideAlongSurface(st, adjusted, 1-hit.Time, hit.Normal, hit)
	}
	if !st.JustTeleported && !st.HasRootMotion {
		st.Velocity = st.Location.Sub(oldLocation).Mul(1 / dt)
	}
}

// PhysCustom holds the character in place unless root motion drives it, then
// runs the PhysCustom hook.
func (s *Simulator) PhysCustom(st *MovementState, dt float64, iterations int) {
	if dt >= MinTickTime {
		iterations++
		st.iterations = iterations
		st.JustTeleported = false

		if st.HasRootMotion {
			st.Velocity = st.RootMotionVelocity
		} else {
			st.Velocity = mgl64.Vec3{}
		}
		st.Location = st.Location.Add(st.Velocity.Mul(dt))
	}
	if s.Hooks.PhysCustom != nil {
		s.Hooks.PhysCustom(st, dt, iterations)
	}
}
