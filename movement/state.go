package movement

import "github.com/go-gl/mathgl/mgl64"

// MovementState holds the simulated movement state of one character.
type MovementState struct {
	Location, LastLocation mgl64.Vec3
	Velocity, LastVelocity mgl64.Vec3
	Acceleration           mgl64.Vec3

	// Rotation is the actor yaw in degrees.
	Rotation float64

	Mode       Mode
	CustomMode uint8
	ModeLocked bool

	InputBlocked bool

	Capsule            Capsule
	StandingHalfHeight float64
	CrouchedHalfHeight float64
	LiedHalfHeight     float64

	CanEverCrouch bool
	CanEverLie    bool
	WantsToCrouch bool
	IsCrouched    bool
	WantsToLie    bool
	IsLied        bool

	CrouchMaintainsBaseLocation bool
	// ClientSimulation is set on simulated proxies, which trust replicated
	// crouch and lie state instead of running encroachment checks.
	ClientSimulation  bool
	SimulatingPhysics bool

	CurrentFloor        FloorResult
	ForceNextFloorCheck bool
	JustTeleported      bool

	PendingPenetrationAdjustment          mgl64.Vec3
	PrePenetrationAdjustmentVelocity      mgl64.Vec3
	PrePenetrationAdjustmentVelocityValid bool

	RootMotionVelocity mgl64.Vec3
	HasRootMotion      bool

	GroundFriction float64

	outcome    Outcome
	iterations int
}

// NewMovementState returns a walking state at location with a standing capsule.
func NewMovementState(location mgl64.Vec3, radius, halfHeight, crouchedHalfHeight float64) *MovementState {
	return &MovementState{
		Location:                    location,
		LastLocation:                location,
		Mode:                        ModeWalking,
		Capsule:                     Capsule{Radius: radius, HalfHeight: halfHeight},
		StandingHalfHeight:          halfHeight,
		CrouchedHalfHeight:          crouchedHalfHeight,
		LiedHalfHeight:              crouchedHalfHeight,
		CanEverCrouch:               true,
		CanEverLie:                  true,
		CrouchMaintainsBaseLocation: true,
		ForceNextFloorCheck:         true,
	}
}

func (s *MovementState) SetLocation(loc mgl64.Vec3) {
	s.LastLocation = s.Location
	s.Location = loc
}

func (s *MovementState) SetVelocity(vel mgl64.Vec3) {
	s.LastVelocity = s.Velocity
	s.Velocity = vel
}

func (s *MovementState) IsMovingOnGround() bool {
	return s.Mode.Grounded()
}

func (s *MovementState) IsFalling() bool {
	return s.Mode == ModeFalling
}

// TryConsumePrePenetrationAdjustmentVelocity returns the velocity the character
// had before the last penetration adjustment, once.
func (s *MovementState) TryConsumePrePenetrationAdjustmentVelocity() (mgl64.Vec3, bool) {
	if !s.PrePenetrationAdjustmentVelocityValid {
		return mgl64.Vec3{}, false
	}
	v := s.PrePenetrationAdjustmentVelocity
	s.PrePenetrationAdjustmentVelocity = mgl64.Vec3{}
	s.PrePenetrationAdjustmentVelocityValid = false
	return v, true
}

func (s *MovementState) savePenetrationAdjustment(hit Hit) {
	if hit.StartPenetrating {
		s.PendingPenetrationAdjustment = hit.Normal.Mul(hit.PenetrationDepth)
	}
}
