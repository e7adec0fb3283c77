package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/gait"
	"github.com/oomph-ac/locomotion/utils"
)

// simulationTimeStep splits large remaining times so no single step exceeds
// MaxSimulationTimeStep while iterations remain.
func (s *Simulator) simulationTimeStep(remaining float64, iterations int) float64 {
	if remaining > s.Options.MaxSimulationTimeStep && iterations < s.Options.MaxSimulationIterations {
		remaining = math.Min(s.Options.MaxSimulationTimeStep, remaining*0.5)
	}
	return math.Max(MinTickTime, remaining)
}

// PhysWalking moves the character along the floor for dt seconds.
func (s *Simulator) PhysWalking(st *MovementState, dt float64, iterations int) {
	if dt < MinTickTime {
		return
	}

	st.JustTeleported = false
	checkedFall, triedLedgeMove := false, false
	remaining := dt

	for remaining >= MinTickTime && iterations < s.Options.MaxSimulationIterations {
		iterations++
		st.iterations = iterations
		st.JustTeleported = false
		timeTick := s.simulationTimeStep(remaining, iterations)
		remaining -= timeTick

		if friction, ok := s.sampleGaitCurve(st, gait.ChannelGroundFriction); ok {
			st.GroundFriction = friction
		}

		oldLocation := st.Location
		oldFloor := st.CurrentFloor

		st.Velocity[1] = 0
		st.Acceleration[1] = 0
		if st.HasRootMotion {
			st.Velocity = utils.Horizontal(st.RootMotionVelocity)
		} else if !triedLedgeMove {
			s.CalcVelocity(st, timeTick, st.GroundFriction, false, s.MaxBrakingDeceleration(st))
		}

		// A hook may have changed the mode during the velocity update.
		if !st.IsMovingOnGround() {
			s.startNewPhysics(st, remaining+timeTick, iterations-1)
			return
		}

		moveVelocity := st.Velocity
		delta := moveVelocity.Mul(timeTick)
		zeroDelta := utils.NearlyZero(delta, 1e-8)

		var stepDown FloorResult
		stepDownComputed := false
		if zeroDelta {
			remaining = 0
		} else {
			stepDown, stepDownComputed = s.moveAlongFloor(st, moveVelocity, timeTick)

			if st.IsFalling() {
				// Refund the time the walking move did not use.
				if desired := delta.Len(); desired > kindaSmallNumber {
					actual := utils.HorizontalLen(st.Location.Sub(oldLocation))
					remaining += timeTick * (1 - math.Min(1, actual/desired))
				}
				s.startNewPhysics(st, remaining, iterations)
				return
			} else if s.World.InWater(st.Location) {
				s.SetMovementMode(st, ModeSwimming, 0)
				s.startNewPhysics(st, remaining, iterations)
				return
			}
		}

		if stepDownComputed {
			st.CurrentFloor = stepDown
		} else {
			st.CurrentFloor = s.FindFloor(st, st.Location, zeroDelta, nil)
		}

		checkLedges := !s.canWalkOffLedges(st)
		if checkLedges && !st.CurrentFloor.IsWalkableFloor() {
			var newDelta mgl64.Vec3
			if !triedLedgeMove {
				newDelta = s.getLedgeMove(st, oldLocation, delta)
			}
			if !utils.NearlyZero(newDelta, 1e-8) {
				s.revertMove(st, oldLocation, oldFloor, false)
				triedLedgeMove = true
				st.Velocity = newDelta.Mul(1 / timeTick)
				remaining += timeTick
				iterations--
				continue
			}

			mustJump := zeroDelta
			if (mustJump || !checkedFall) && s.checkFall(st, oldFloor, delta, oldLocation, remaining, timeTick, iterations, mustJump) {
				return
			}
			checkedFall = true

			s.revertMove(st, oldLocation, oldFloor, true)
			st.outcome = OutcomeReverted
			s.debugf("PhysWalking: reverted move from %v, no floor at ledge", oldLocation)
			break
		}

		if st.CurrentFloor.IsWalkableFloor() {
			if s.shouldCatchAir(st, oldFloor, st.CurrentFloor) {
				s.handleWalkingOffLedge(st, oldFloor.Hit.ImpactNormal, oldLocation, timeTick)
				if st.IsMovingOnGround() {
					s.ApplyPendingPenetrationAdjustment(st)
					s.startFalling(st, iterations, remaining, timeTick, delta, oldLocation)
				}
				return
			}
			// Penetration is only resolved once the floor has been accepted.
			s.ApplyPendingPenetrationAdjustment(st)
			s.AdjustFloorHeight(st)
		} else if st.CurrentFloor.Hit.StartPenetrating && remaining <= 0 {
			// The floor sweep started inside the floor, pop out of it instead of
			// trying to move down.
			hit := st.CurrentFloor.Hit
			hit.TraceEnd = hit.TraceStart.Add(up.Mul(MaxFloorDist))
			s.resolvePenetration(st, penetrationAdjustment(hit))
			st.ForceNextFloorCheck = true
		}

		if s.World.InWater(st.Location) {
			s.SetMovementMode(st, ModeSwimming, 0)
			s.startNewPhysics(st, remaining, iterations)
			return
		}

		if !st.CurrentFloor.IsWalkableFloor() && !st.CurrentFloor.Hit.StartPenetrating {
			mustJump := st.JustTeleported || zeroDelta
			if (mustJump || !checkedFall) && s.checkFall(st, oldFloor, delta, oldLocation, remaining, timeTick, iterations, mustJump) {
				return
			}
			checkedFall = true
		}

		if st.IsMovingOnGround() && !st.JustTeleported && !st.HasRootMotion && timeTick >= MinTickTime {
			st.PrePenetrationAdjustmentVelocity = moveVelocity
			st.PrePenetrationAdjustmentVelocityValid = true
			st.Velocity = st.Location.Sub(oldLocation).Mul(1 / timeTick)
			st.Velocity[1] = 0
		}

		// Later iterations would be stuck as well.
		if st.Location == oldLocation {
			if zeroDelta {
				st.outcome = OutcomeZeroDelta
			} else {
				st.outcome = OutcomeStuck
			}
			break
		}
	}

	if st.IsMovingOnGround() {
		st.Velocity[1] = 0
	}
}

func (s *Simulator) canWalkOffLedges(st *MovementState) bool {
	if s.Hooks.CanWalkOffLedges != nil {
		return s.Hooks.CanWalkOffLedges(st)
	}
	if !s.Options.CanWalkOffLedgesWhenCrouching && st.IsCrouched {
		return false
	}
	return s.Options.CanWalkOffLedges
}

func (s *Simulator) shouldCatchAir(st *MovementState, oldFloor, newFloor FloorResult) bool {
	if s.Hooks.ShouldCatchAir != nil {
		return s.Hooks.ShouldCatchAir(st, oldFloor, newFloor)
	}
	return false
}

func (s *Simulator) handleWalkingOffLedge(st *MovementState, previousFloorNormal, previousLocation mgl64.Vec3, dt float64) {
	if s.Hooks.HandleWalkingOffLedge != nil {
		s.Hooks.HandleWalkingOffLedge(st, previousFloorNormal, previousLocation, dt)
	}
}

// checkFall starts falling if the character may leave the floor. It returns
// true when the walking loop must stop.
func (s *Simulator) checkFall(st *MovementState, oldFloor FloorResult, delta, oldLocation mgl64.Vec3, remaining, timeTick float64, iterations int, mustJump bool) bool {
	if !mustJump && !s.canWalkOffLedges(st) {
		return false
	}
	s.handleWalkingOffLedge(st, oldFloor.Hit.ImpactNormal, oldLocation, timeTick)
	if st.IsMovingOnGround() {
		s.startFalling(st, iterations, remaining, timeTick, delta, oldLocation)
	}
	return true
}

// startFalling switches to falling and continues with the unused time.
func (s *Simulator) startFalling(st *MovementState, iterations int, remaining, timeTick float64, delta, subLocation mgl64.Vec3) {
	desired := delta.Len()
	actual := utils.HorizontalLen(st.Location.Sub(subLocation))
	if desired < kindaSmallNumber {
		remaining = 0
	} else {
		remaining += timeTick * (1 - math.Min(1, actual/desired))
	}

	if st.IsMovingOnGround() {
		s.SetMovementMode(st, ModeFalling, 0)
	}
	st.outcome = OutcomeForcedFall
	s.startNewPhysics(st, remaining, iterations)
}

func (s *Simulator) revertMove(st *MovementState, oldLocation mgl64.Vec3, oldFloor FloorResult, failMove bool) {
	st.Location = oldLocation
	st.JustTeleported = false
	st.CurrentFloor = oldFloor
	if failMove {
		st.Velocity = mgl64.Vec3{}
		st.Acceleration = mgl64.Vec3{}
	}
}

// getLedgeMove looks for a direction perpendicular to delta that keeps the
// character on a walkable floor.
func (s *Simulator) getLedgeMove(st *MovementState, oldLocation, delta mgl64.Vec3) mgl64.Vec3 {
	if delta.LenSqr() == 0 {
		return mgl64.Vec3{}
	}
	side := mgl64.Vec3{delta[2], 0, -delta[0]}
	if s.checkLedgeDirection(st, oldLocation, side) {
		return side
	}
	side = side.Mul(-1)
	if s.checkLedgeDirection(st, oldLocation, side) {
		return side
	}
	return mgl64.Vec3{}
}

func (s *Simulator) checkLedgeDirection(st *MovementState, oldLocation, sideStep mgl64.Vec3) bool {
	sideDest := oldLocation.Add(sideStep)
	hit, blocked := s.sweep(oldLocation, sideDest, st.Capsule)
	if blocked && !s.IsWalkable(hit) {
		return false
	}
	if !blocked {
		hit, blocked = s.sweep(sideDest, sideDest.Add(down.Mul(s.Options.MaxStepHeight+s.Options.LedgeCheckThreshold)), st.Capsule)
	}
	return blocked && hit.Time < 1 && s.IsWalkable(hit)
}

// ComputeGroundMovementDelta projects a horizontal delta onto a walkable ramp
// while keeping its horizontal part.
func (s *Simulator) ComputeGroundMovementDelta(delta mgl64.Vec3, rampHit Hit, hitFromLineTrace bool) mgl64.Vec3 {
	floorNormal, contactNormal := rampHit.ImpactNormal, rampHit.Normal
	if floorNormal[1] < 1-kindaSmallNumber && floorNormal[1] > kindaSmallNumber && contactNormal[1] > kindaSmallNumber && !hitFromLineTrace && s.IsWalkable(rampHit) {
		floorDotDelta := floorNormal.Dot(delta)
		return mgl64.Vec3{delta[0], -floorDotDelta / floorNormal[1], delta[2]}
	}
	return delta
}

func (s *Simulator) canStepUp(st *MovementState, hit Hit) bool {
	return hit.IsValidBlockingHit() && !st.IsFalling()
}

// moveAlongFloor moves horizontally along the current floor, sliding along and
// stepping up onto blocking geometry.
func (s *Simulator) moveAlongFloor(st *MovementState, velocity mgl64.Vec3, dt float64) (stepDown FloorResult, stepDownComputed bool) {
	if !st.CurrentFloor.IsWalkableFloor() {
		return
	}
	delta := utils.Horizontal(velocity).Mul(dt)
	rampVector := s.ComputeGroundMovementDelta(delta, st.CurrentFloor.Hit, st.CurrentFloor.LineTrace)
	hit, _ := s.safeMoveUpdatedComponent(st, rampVector)

	if hit.StartPenetrating {
		s.slideAlongSurface(st, delta, 1, hit.Normal, hit)
		return
	}
	if !hit.IsValidBlockingHit() {
		return
	}

	percentTimeApplied := hit.Time
	if hit.Time > 0 && hit.Normal[1] > kindaSmallNumber && s.IsWalkable(hit) {
		// Hit a ramp, continue along it.
		initialPercentRemaining := 1 - percentTimeApplied
		rampVector = s.ComputeGroundMovementDelta(delta.Mul(initialPercentRemaining), hit, false)
		hit, _ = s.safeMoveUpdatedComponent(st, rampVector)
		percentTimeApplied = utils.ClampFloat(percentTimeApplied+hit.Time*initialPercentRemaining, 0, 1)
	}

	if hit.IsValidBlockingHit() && s.canStepUp(st, hit) {
		res, computed, ok := s.stepUp(st, delta.Mul(1-percentTimeApplied), hit)
		if !ok {
			s.slideAlongSurface(st, delta, 1-percentTimeApplied, hit.Normal, hit)
		} else if computed {
			stepDown, stepDownComputed = res, true
		}
	}
	return
}

// stepUp tries to move up and over the obstacle in hit. The move is reverted
// when it fails.
func (s *Simulator) stepUp(st *MovementState, delta mgl64.Vec3, inHit Hit) (stepDown FloorResult, computedFloor, ok bool) {
	if !s.canStepUp(st, inHit) || s.Options.MaxStepHeight <= 0 {
		return
	}
	oldLocation := st.Location
	oldFloor := st.CurrentFloor
	halfHeight, radius := st.Capsule.HalfHeight, st.Capsule.Radius

	// Don't step up if the top of the capsule is what hit.
	initialImpactY := inHit.ImpactPoint[1]
	if initialImpactY > oldLocation[1]+(halfHeight-radius) {
		return
	}

	stepTravelUpHeight := s.Options.MaxStepHeight
	stepTravelDownHeight := stepTravelUpHeight
	stepSideY := inHit.ImpactNormal[1]
	initialFloorBaseY := oldLocation[1] - halfHeight
	floorPointY := initialFloorBaseY

	if st.IsMovingOnGround() && st.CurrentFloor.IsWalkableFloor() {
		floorDist := math.Max(0, st.CurrentFloor.DistanceToFloor())
		initialFloorBaseY -= floorDist
		stepTravelUpHeight = math.Max(stepTravelUpHeight-floorDist, 0)
		stepTravelDownHeight = s.Options.MaxStepHeight + MaxFloorDist*2

		hitVerticalFace := !isWithinEdgeTolerance(inHit.Location, inHit.ImpactPoint, radius)
		if !st.CurrentFloor.LineTrace && !hitVerticalFace {
			floorPointY = st.CurrentFloor.Hit.ImpactPoint[1]
		} else {
			floorPointY -= st.CurrentFloor.FloorDist
		}
	}

	// Don't step up if the impact is below us.
	if initialImpactY <= initialFloorBaseY {
		return
	}

	revert := func() {
		st.Location = oldLocation
		st.CurrentFloor = oldFloor
	}

	// Up.
	if hit, blocked := s.moveUpdatedComponent(st, up.Mul(stepTravelUpHeight)); blocked && hit.StartPenetrating {
		revert()
		return
	}

	// Forward.
	hit, blocked := s.moveUpdatedComponent(st, delta)
	if blocked {
		if hit.StartPenetrating {
			revert()
			return
		}
		forwardHitTime := hit.Time
		forwardSlide := s.slideAlongSurface(st, delta, 1-hit.Time, hit.Normal, hit)
		if st.IsFalling() {
			revert()
			return
		}
		if forwardHitTime == 0 && forwardSlide == 0 {
			revert()
			return
		}
	}

	// Down.
	hit, blocked = s.moveUpdatedComponent(st, down.Mul(stepTravelDownHeight))
	if blocked && hit.StartPenetrating {
		revert()
		return
	}
	if blocked {
		deltaY := hit.ImpactPoint[1] - floorPointY
		if deltaY > s.Options.MaxStepHeight {
			s.debugf("stepUp: step height %v exceeds max step height", deltaY)
			revert()
			return
		}
		if !s.IsWalkable(hit) {
			if delta.Dot(hit.ImpactNormal) < 0 {
				revert()
				return
			}
			if hit.Location[1] > oldLocation[1] {
				revert()
				return
			}
		}
		if !isWithinEdgeTolerance(hit.Location, hit.ImpactPoint, radius) {
			revert()
			return
		}

		stepDown = s.FindFloor(st, st.Location, false, &hit)
		// Reject unwalkable normals if we end up higher than our initial height.
		if hit.Location[1] > oldLocation[1] && !stepDown.BlockingHit && stepSideY < MaxStepSideY {
			revert()
			return
		}
		computedFloor = true
	}
	ok = true
	return
}

// slideAlongSurface slides the remaining delta along the surface with normal,
// returning the fraction of time applied.
func (s *Simulator) slideAlongSurface(st *MovementState, delta mgl64.Vec3, time float64, normal mgl64.Vec3, hit Hit) float64 {
	if !hit.Blocking {
		return 0
	}
	if st.IsMovingOnGround() {
		if normal[1] > 0 {
			// Unwalkable slopes act as walls.
			if !s.IsWalkable(hit) {
				normal = utils.SafeNormal(utils.Horizontal(normal))
			}
		} else if normal[1] < -kindaSmallNumber {
			// Don't push down into the floor when hitting a ceiling.
			if st.CurrentFloor.FloorDist < MinFloorDist && st.CurrentFloor.BlockingHit {
				floorNormal := st.CurrentFloor.Hit.Normal
				if delta.Dot(floorNormal) < 0 && floorNormal[1] < 1-1e-5 {
					normal = floorNormal
				}
				normal = utils.SafeNormal(utils.Horizontal(normal))
			}
		}
	}

	oldNormal := normal
	slideDelta := s.computeSlideVector(st, delta, time, normal)
	if slideDelta.Dot(delta) <= 0 {
		return 0
	}
	hit, blocked := s.safeMoveUpdatedComponent(st, slideDelta)
	percentTimeApplied := hit.Time
	if blocked {
		slideDelta = s.twoWallAdjust(st, slideDelta, hit, oldNormal)
		if !utils.NearlyZero(slideDelta, 1e-3) && slideDelta.Dot(delta) > 0 {
			second, _ := s.safeMoveUpdatedComponent(st, slideDelta)
			percentTimeApplied += second.Time * (1 - percentTimeApplied)
		}
	}
	return utils.ClampFloat(percentTimeApplied, 0, 1)
}

func (s *Simulator) computeSlideVector(st *MovementState, delta mgl64.Vec3, time float64, normal mgl64.Vec3) mgl64.Vec3 {
	result := delta.Sub(normal.Mul(delta.Dot(normal))).Mul(time)
	// Don't let a falling slide boost us up slopes.
	if st.IsFalling() && result[1] > 0 {
		result[1] = math.Min(result[1], math.Max(delta[1]*time, 0))
	}
	return result
}

// twoWallAdjust adjusts a slide that hit a second wall.
func (s *Simulator) twoWallAdjust(st *MovementState, delta mgl64.Vec3, hit Hit, oldNormal mgl64.Vec3) mgl64.Vec3 {
	desired := delta
	normal := hit.Normal
	if oldNormal.Dot(normal) <= 0 {
		// Corner of 90 degrees or less, move along the crease.
		crease := utils.SafeNormal(normal.Cross(oldNormal))
		delta = crease.Mul(delta.Dot(crease) * (1 - hit.Time))
		if desired.Dot(delta) < 0 {
			delta = delta.Mul(-1)
		}
	} else {
		delta = s.computeSlideVector(st, delta, 1-hit.Time, normal)
		if delta.Dot(desired) <= 0 {
			delta = mgl64.Vec3{}
		} else if math.Abs(normal.Dot(oldNormal)-1) < kindaSmallNumber {
			// Same wall again, nudge away from it.
			delta = delta.Add(normal.Mul(0.01))
		}
	}
	if st.IsMovingOnGround() && delta[1] > 0 {
		delta[1] = 0
	}
	return delta
}
