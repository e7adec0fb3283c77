package movement

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// SimulationOptions define simulator behaviour. The zero value is not useful,
// start from DefaultSimulationOptions.
type SimulationOptions struct {
	MaxSimulationIterations int
	MaxSimulationTimeStep   float64

	MaxStepHeight float64
	// WalkableFloorY is the minimum Y component of a walkable floor normal.
	WalkableFloorY float64

	PerchRadiusThreshold  float64
	PerchAdditionalHeight float64
	AlwaysCheckFloor      bool

	CanWalkOffLedges              bool
	CanWalkOffLedgesWhenCrouching bool
	LedgeCheckThreshold           float64

	MaxAcceleration            float64
	BrakingDecelerationWalking float64
	BrakingDecelerationFalling float64
	BrakingFrictionFactor      float64
	BrakingFriction            float64
	UseSeparateBrakingFriction bool
	GroundFriction             float64
	FallingLateralFriction     float64
	MaxWalkSpeed               float64
	MaxWalkSpeedCrouched       float64
	MaxCustomMovementSpeed     float64

	Gravity          float64
	GravityScale     float64
	TerminalVelocity float64
	AirControl       float64
	JumpZVelocity    float64

	// CapsuleInterpSpeed is the half height change per second applied when the
	// capsule is resized. Zero snaps to the target.
	CapsuleInterpSpeed float64

	// Debugf receives internal simulation trace logs for callers that need deep diagnostics.
	Debugf func(format string, args ...any)
}

// DefaultSimulationOptions returns the stock character movement configuration.
func DefaultSimulationOptions() SimulationOptions {
	return SimulationOptions{
		MaxSimulationIterations: 8,
		MaxSimulationTimeStep:   0.05,

		MaxStepHeight:        45,
		WalkableFloorY:       0.71,
		PerchRadiusThreshold: 0,
		AlwaysCheckFloor:     true,

		CanWalkOffLedges:              true,
		CanWalkOffLedgesWhenCrouching: false,
		LedgeCheckThreshold:           4,

		MaxAcceleration:            2048,
		BrakingDecelerationWalking: 2048,
		BrakingDecelerationFalling: 0,
		BrakingFrictionFactor:      2,
		GroundFriction:             8,
		MaxWalkSpeed:               600,
		MaxWalkSpeedCrouched:       300,
		MaxCustomMovementSpeed:     600,

		Gravity:          -980,
		GravityScale:     1,
		TerminalVelocity: 4000,
		AirControl:       0.35,
		JumpZVelocity:    420,

		CapsuleInterpSpeed: 0,
	}
}

// Hooks hold optional policy callbacks. Nil hooks fall back to the stock behaviour.
type Hooks struct {
	PhysCustom   func(st *MovementState, dt float64, iterations int)
	PhysSwimming func(st *MovementState, dt float64, iterations int)

	CanWalkOffLedges      func(st *MovementState) bool
	ShouldCatchAir        func(st *MovementState, oldFloor, newFloor FloorResult) bool
	HandleWalkingOffLedge func(st *MovementState, previousFloorNormal mgl64.Vec3, previousLocation mgl64.Vec3, dt float64)

	OnMovementModeChanged func(st *MovementState, prevMode Mode, prevCustomMode uint8)
	OnCrouchChanged       func(st *MovementState, crouched bool, halfHeightAdjust float64)
	OnLieChanged          func(st *MovementState, lied bool, halfHeightAdjust float64)
}

// Simulator orchestrates movement simulation using the provided adapters.
type Simulator struct {
	World   CollisionWorld
	Gait    GaitProvider
	Hooks   Hooks
	Options SimulationOptions
	Log     *logrus.Logger
}

// NewSimulator returns a simulator with the default options.
func NewSimulator(w CollisionWorld, g GaitProvider, log *logrus.Logger) *Simulator {
	return &Simulator{World: w, Gait: g, Options: DefaultSimulationOptions(), Log: log}
}

func (s *Simulator) debugf(format string, args ...any) {
	if s.Options.Debugf != nil {
		s.Options.Debugf(format, args...)
	}
}
