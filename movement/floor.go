package movement

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/utils"
)

// FloorResult is the outcome of a floor query below the capsule.
type FloorResult struct {
	BlockingHit   bool
	WalkableFloor bool
	// LineTrace is set when the result came from the fallback line trace.
	LineTrace bool
	FloorDist float64
	LineDist  float64
	Hit       Hit
}

func (f *FloorResult) Clear() {
	*f = FloorResult{}
}

func (f FloorResult) IsWalkableFloor() bool {
	return f.BlockingHit && f.WalkableFloor
}

// DistanceToFloor returns the line distance for line trace results and the
// sweep distance otherwise.
func (f FloorResult) DistanceToFloor() float64 {
	if f.LineTrace {
		return f.LineDist
	}
	return f.FloorDist
}

func (f *FloorResult) SetFromSweep(hit Hit, sweepFloorDist float64, walkable bool) {
	f.BlockingHit = hit.IsValidBlockingHit()
	f.WalkableFloor = walkable
	f.LineTrace = false
	f.FloorDist = sweepFloorDist
	f.LineDist = 0
	f.Hit = hit
}

// SetFromLineTrace replaces the hit with a line trace result. A sweep hit is
// required, the sweep's time and locations are kept.
func (f *FloorResult) SetFromLineTrace(hit Hit, sweepFloorDist, lineDist float64, walkable bool) {
	if !f.Hit.Blocking || !hit.Blocking {
		return
	}
	old := f.Hit
	f.Hit = hit
	f.Hit.Time = old.Time
	f.Hit.ImpactPoint = old.ImpactPoint
	f.Hit.Location = old.Location
	f.Hit.TraceStart = old.TraceStart
	f.Hit.TraceEnd = old.TraceEnd

	f.LineTrace = true
	f.FloorDist = sweepFloorDist
	f.LineDist = lineDist
	f.WalkableFloor = walkable
}

// IsWalkable returns true if the hit surface can be stood on.
func (s *Simulator) IsWalkable(hit Hit) bool {
	if !hit.IsValidBlockingHit() {
		return false
	}
	// Vertical or facing down.
	if hit.ImpactNormal[1] < kindaSmallNumber {
		return false
	}
	return hit.ImpactNormal[1] >= s.Options.WalkableFloorY
}

func isWithinEdgeTolerance(capsuleLocation, testImpactPoint mgl64.Vec3, capsuleRadius float64) bool {
	distFromCenterSq := utils.Horizontal(testImpactPoint.Sub(capsuleLocation)).LenSqr()
	reducedRadius := math.Max(SweepEdgeRejectDistance+kindaSmallNumber, capsuleRadius-SweepEdgeRejectDistance)
	return distFromCenterSq < reducedRadius*reducedRadius
}

// sweep wraps the world sweep and normalises missed sweeps to a full-time hit.
func (s *Simulator) sweep(start, end mgl64.Vec3, shape Capsule) (Hit, bool) {
	hit, blocking := s.World.SweepCapsule(start, end, shape)
	if !blocking {
		return Hit{Time: 1, Location: end, TraceStart: start, TraceEnd: end}, false
	}
	hit.Blocking = true
	hit.TraceStart, hit.TraceEnd = start, end
	return hit, true
}

// ComputeFloorDist sweeps and traces below loc. downwardSweep may carry a
// vertical sweep result that is reused when it is acceptable.
func (s *Simulator) ComputeFloorDist(st *MovementState, loc mgl64.Vec3, lineDistance, sweepDistance, sweepRadius float64, downwardSweep *Hit) (floor FloorResult) {
	radius, halfHeight := st.Capsule.Radius, st.Capsule.HalfHeight

	skipSweep := false
	if downwardSweep != nil && downwardSweep.IsValidBlockingHit() {
		d := downwardSweep.TraceStart.Sub(downwardSweep.TraceEnd)
		if d[1] > 0 && utils.Horizontal(d).LenSqr() <= kindaSmallNumber {
			if isWithinEdgeTolerance(downwardSweep.Location, downwardSweep.ImpactPoint, radius) {
				skipSweep = true
				walkable := s.IsWalkable(*downwardSweep)
				floor.SetFromSweep(*downwardSweep, loc[1]-downwardSweep.Location[1], walkable)
				if walkable {
					return floor
				}
			}
		}
	}

	if sweepDistance < lineDistance {
		s.debugf("ComputeFloorDist: sweep distance %v is below line distance %v", sweepDistance, lineDistance)
		return floor
	}

	maxPenetrationAdjust := math.Max(MaxFloorDist, radius)
	if !skipSweep && sweepDistance > 0 && sweepRadius > 0 {
		shrinkHeight := (halfHeight - radius) * (1 - floorShrinkScale)
		traceDist := sweepDistance + shrinkHeight
		shape := Capsule{Radius: sweepRadius, HalfHeight: halfHeight - shrinkHeight}

		hit, blocking := s.sweep(loc, loc.Add(down.Mul(traceDist)), shape)
		if blocking {
			st.savePenetrationAdjustment(hit)

			// Hits near the edge of the capsule are retried with a narrower shape
			// so we don't perch on the very edge of a ledge.
			if hit.StartPenetrating || !isWithinEdgeTolerance(loc, hit.ImpactPoint, shape.Radius) {
				shape.Radius = math.Max(0, shape.Radius-SweepEdgeRejectDistance-kindaSmallNumber)
				if !shape.IsNearlyZero() {
					shrinkHeight = (halfHeight - radius) * (1 - floorShrinkScaleOverlap)
					traceDist = sweepDistance + shrinkHeight
					shape.HalfHeight = math.Max(halfHeight-shrinkHeight, shape.Radius)
					hit, _ = s.sweep(loc, loc.Add(down.Mul(traceDist)), shape)
				}
			}

			sweepResult := math.Max(-maxPenetrationAdjust, hit.Time*traceDist-shrinkHeight)
			floor.SetFromSweep(hit, sweepResult, false)
			if hit.IsValidBlockingHit() && s.IsWalkable(hit) && sweepResult <= sweepDistance {
				floor.WalkableFloor = true
				return floor
			}
		}
	}

	// The line trace only adds something when the sweep hit.
	if !floor.BlockingHit && !floor.Hit.StartPenetrating {
		floor.FloorDist = sweepDistance
		return floor
	}

	if lineDistance > 0 {
		shrinkHeight := halfHeight
		traceDist := lineDistance + shrinkHeight
		hit, blocking := s.World.LineTrace(loc, loc.Add(down.Mul(traceDist)))
		if blocking && hit.Time > 0 {
			hit.Blocking = true
			lineResult := math.Max(-maxPenetrationAdjust, hit.Time*traceDist-shrinkHeight)
			floor.BlockingHit = true
			if lineResult <= lineDistance && s.IsWalkable(hit) {
				floor.SetFromLineTrace(hit, floor.FloorDist, lineResult, true)
				return floor
			}
		}
	}

	floor.WalkableFloor = false
	return floor
}

// FindFloor looks for a floor below loc. The current floor is reused for zero
// delta moves unless AlwaysCheckFloor is set or a check is forced.
func (s *Simulator) FindFloor(st *MovementState, loc mgl64.Vec3, zeroDelta bool, downwardSweep *Hit) FloorResult {
	var floor FloorResult
	if s.World == nil {
		return floor
	}

	heightCheckAdjust := -MaxFloorDist
	if st.IsMovingOnGround() {
		heightCheckAdjust = MaxFloorDist + kindaSmallNumber
	}
	floorSweepTraceDist := math.Max(MaxFloorDist, s.Options.MaxStepHeight+heightCheckAdjust)
	floorLineTraceDist := floorSweepTraceDist

	reuse := zeroDelta && !s.Options.AlwaysCheckFloor && !st.ForceNextFloorCheck && !st.JustTeleported && st.IsMovingOnGround()
	if reuse {
		floor = st.CurrentFloor
	} else {
		st.ForceNextFloorCheck = false
		floor = s.ComputeFloorDist(st, loc, floorLineTraceDist, floorSweepTraceDist, st.Capsule.Radius, downwardSweep)
	}

	// Perching on the edge of a ledge is accepted when a narrower capsule still
	// finds a floor.
	if floor.BlockingHit && !floor.LineTrace && s.shouldComputePerchResult(st, floor.Hit) {
		maxPerchFloorDist := math.Max(MaxFloorDist, s.Options.MaxStepHeight+heightCheckAdjust)
		if st.IsMovingOnGround() {
			maxPerchFloorDist += math.Max(0, s.Options.PerchAdditionalHeight)
		}

		perch, ok := s.computePerchResult(st, s.validPerchRadius(st), floor.Hit, maxPerchFloorDist)
		if ok {
			avgFloorDist := (MinFloorDist + MaxFloorDist) * 0.5
			moveUpDist := avgFloorDist - floor.FloorDist
			if moveUpDist+perch.FloorDist >= maxPerchFloorDist {
				floor.FloorDist = avgFloorDist
			}
			if !floor.WalkableFloor {
				floor.SetFromLineTrace(perch.Hit, floor.FloorDist, math.Max(floor.FloorDist, MinFloorDist), true)
			}
		} else {
			floor.WalkableFloor = false
		}
	}
	return floor
}

func (s *Simulator) validPerchRadius(st *MovementState) float64 {
	r := st.Capsule.Radius
	return utils.ClampFloat(r-s.Options.PerchRadiusThreshold, 0.11, r)
}

func (s *Simulator) shouldComputePerchResult(st *MovementState, hit Hit) bool {
	if !hit.IsValidBlockingHit() {
		return false
	}
	if math.Max(0, s.Options.PerchRadiusThreshold) <= SweepEdgeRejectDistance {
		return false
	}
	distSq := utils.Horizontal(hit.ImpactPoint.Sub(hit.Location)).LenSqr()
	perchRadius := s.validPerchRadius(st)
	return distSq > perchRadius*perchRadius
}

func (s *Simulator) computePerchResult(st *MovementState, testRadius float64, hit Hit, maxFloorDist float64) (FloorResult, bool) {
	if maxFloorDist <= 0 {
		return FloorResult{}, false
	}
	halfHeight, radius := st.Capsule.HalfHeight, st.Capsule.Radius

	hitAboveBase := math.Max(0, hit.ImpactPoint[1]-(hit.Location[1]-halfHeight))
	perchLineDist := math.Max(0, maxFloorDist-hitAboveBase)
	perchSweepDist := math.Max(0, maxFloorDist)

	res := s.ComputeFloorDist(st, hit.Location, perchLineDist, perchSweepDist+radius, testRadius, nil)
	if !res.IsWalkableFloor() {
		return res, false
	}
	if hitAboveBase+res.FloorDist > maxFloorDist {
		res.WalkableFloor = false
		return res, false
	}
	return res, true
}

// AdjustFloorHeight moves the capsule so the floor gap lies within
// [MinFloorDist, MaxFloorDist].
func (s *Simulator) AdjustFloorHeight(st *MovementState) {
	if !st.CurrentFloor.IsWalkableFloor() {
		return
	}
	oldFloorDist := st.CurrentFloor.FloorDist
	if st.CurrentFloor.LineTrace {
		if oldFloorDist < MinFloorDist && st.CurrentFloor.LineDist >= MinFloorDist {
			return
		}
		oldFloorDist = st.CurrentFloor.LineDist
	}

	if oldFloorDist >= MinFloorDist && oldFloorDist <= MaxFloorDist {
		return
	}
	initialY := st.Location[1]
	avgFloorDist := (MinFloorDist + MaxFloorDist) * 0.5
	moveDist := avgFloorDist - oldFloorDist

	hit, blocked := s.moveUpdatedComponent(st, mgl64.Vec3{0, moveDist, 0})
	if !blocked {
		st.CurrentFloor.FloorDist += moveDist
	} else if moveDist > 0 {
		st.CurrentFloor.FloorDist += st.Location[1] - initialY
	} else {
		st.CurrentFloor.FloorDist = st.Location[1] - hit.Location[1]
		if s.IsWalkable(hit) {
			st.CurrentFloor.SetFromSweep(hit, st.CurrentFloor.FloorDist, true)
		}
	}
	st.JustTeleported = false
}

// ApplyPendingPenetrationAdjustment resolves the penetration stored by the last
// floor query and clears it.
func (s *Simulator) ApplyPendingPenetrationAdjustment(st *MovementState) {
	if utils.NearlyZero(st.PendingPenetrationAdjustment, kindaSmallNumber) {
		return
	}
	adjustment := st.PendingPenetrationAdjustment.Add(st.PendingPenetrationAdjustment.Normalize().Mul(PenetrationPullback))
	s.resolvePenetration(st, adjustment)
	st.PendingPenetrationAdjustment = mgl64.Vec3{}
}

func penetrationAdjustment(hit Hit) mgl64.Vec3 {
	if !hit.StartPenetrating {
		return mgl64.Vec3{}
	}
	return hit.Normal.Mul(hit.PenetrationDepth + PenetrationPullback)
}

// resolvePenetration pushes the capsule out of geometry, first by teleporting
// and then by sweeping towards the adjusted location.
func (s *Simulator) resolvePenetration(st *MovementState, adjustment mgl64.Vec3) bool {
	if utils.NearlyZero(adjustment, kindaSmallNumber) {
		return false
	}
	target := st.Location.Add(adjustment)
	if !s.World.OverlapCapsule(target, st.Capsule) {
		s.debugf("resolvePenetration: teleported by %v", adjustment)
		st.Location = target
		return true
	}

	hit, blocked := s.moveUpdatedComponent(st, adjustment)
	if blocked && hit.StartPenetrating {
		// Try the combined direction of both penetrations.
		combined := adjustment.Add(penetrationAdjustment(hit))
		if combined.ApproxEqual(adjustment) {
			return false
		}
		hit, blocked = s.moveUpdatedComponent(st, combined)
	}
	return !blocked || !hit.StartPenetrating
}

// moveUpdatedComponent sweeps the capsule by delta and moves it to the end of
// the sweep. A sweep that starts penetrating does not move the capsule.
func (s *Simulator) moveUpdatedComponent(st *MovementState, delta mgl64.Vec3) (Hit, bool) {
	start := st.Location
	if utils.NearlyZero(delta, 1e-8) {
		return Hit{Time: 1, Location: start, TraceStart: start, TraceEnd: start}, false
	}
	hit, blocked := s.sweep(start, start.Add(delta), st.Capsule)
	if !blocked {
		st.Location = start.Add(delta)
	} else if !hit.StartPenetrating {
		st.Location = hit.Location
	}
	return hit, blocked
}

// safeMoveUpdatedComponent moves like moveUpdatedComponent but resolves an
// initial penetration and retries the move once.
func (s *Simulator) safeMoveUpdatedComponent(st *MovementState, delta mgl64.Vec3) (Hit, bool) {
	hit, blocked := s.moveUpdatedComponent(st, delta)
	if blocked && hit.StartPenetrating {
		if s.resolvePenetration(st, penetrationAdjustment(hit)) {
			hit, blocked = s.moveUpdatedComponent(st, delta)
		}
	}
	return hit, blocked
}
