// Package character drives one locomotion character: it owns the
// classification vector and runs movement, ragdolling and physical animation
// in a fixed order every tick.
package character

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/gait"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/oomph-ac/locomotion/ragdoll"
	"github.com/sirupsen/logrus"
)

// World is the collision world a character moves and ragdolls in.
type World interface {
	movement.CollisionWorld
	ragdoll.GroundTracer
}

// Settings configure a character.
type Settings struct {
	Radius             float64
	HalfHeight         float64
	CrouchedHalfHeight float64
	LiedHalfHeight     float64

	// ViewRelativeAngleThresholdForSprint is the largest angle, in degrees,
	// between input and view that still allows sprinting in view direction.
	ViewRelativeAngleThresholdForSprint float64
	SprintHasPriorityOverAiming         bool
	RotateToVelocityWhenSprinting       bool
	// RotationSpeed limits how fast the actor turns, in degrees per second.
	// Zero turns instantly.
	RotationSpeed float64
}

func DefaultSettings() Settings {
	return Settings{
		Radius:             35,
		HalfHeight:         90,
		CrouchedHalfHeight: 60,
		LiedHalfHeight:     35,

		ViewRelativeAngleThresholdForSprint: 50,
		RotationSpeed:                       720,
	}
}

// Config holds everything New needs besides the world.
type Config struct {
	Settings   Settings
	Simulation movement.SimulationOptions
	Gait       *gait.MovementSettings
	PhysAnim   physanim.Settings
	BoneGroups *physanim.BoneGroups
	Ragdolling ragdoll.Settings
	Mesh       *physanim.Mesh
	Location   mgl64.Vec3
	Log        *logrus.Logger
}

// Character is a single simulated character.
type Character struct {
	settings Settings
	log      *logrus.Logger

	world    World
	sim      *movement.Simulator
	move     *movement.MovementState
	resolver *gait.Resolver

	state locomotion.State

	desiredStance       locomotion.Stance
	desiredGait         locomotion.Gait
	desiredRotationMode locomotion.RotationMode
	wantsToLie          bool

	viewYaw          float64
	relativeRotation movement.Rotator
	hasInput         bool
	inputYaw         float64

	physAnim *physanim.Component
	ragdoll  *ragdoll.Ragdoll
}

// New returns a walking character standing at conf.Location in w.
func New(w World, conf Config) *Character {
	log := conf.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	table := conf.Gait
	if table == nil {
		def := gait.DefaultMovementSettings()
		table = &def
	}
	mesh := conf.Mesh
	if mesh == nil {
		mesh = physanim.NewMesh(nil)
	}
	if conf.Settings == (Settings{}) {
		conf.Settings = DefaultSettings()
	}
	if conf.Simulation.MaxSimulationIterations == 0 {
		conf.Simulation = movement.DefaultSimulationOptions()
	}
	if conf.Ragdolling == (ragdoll.Settings{}) {
		conf.Ragdolling = ragdoll.DefaultSettings()
	}

	c := &Character{
		settings:            conf.Settings,
		log:                 log,
		world:               w,
		resolver:            gait.NewResolver(table, log),
		desiredGait:         locomotion.GaitRunning,
		desiredRotationMode: locomotion.RotationViewDirection,
		physAnim:            physanim.NewComponent(mesh, conf.BoneGroups, conf.PhysAnim, log),
		ragdoll:             ragdoll.New(conf.Ragdolling, log),
	}

	s := conf.Settings
	c.move = movement.NewMovementState(conf.Location, s.Radius, s.HalfHeight, s.CrouchedHalfHeight)
	if s.LiedHalfHeight > 0 {
		c.move.LiedHalfHeight = s.LiedHalfHeight
	}

	c.sim = movement.NewSimulator(w, c.resolver, log)
	c.sim.Options = conf.Simulation
	if c.sim.Options.Debugf == nil {
		c.sim.Options.Debugf = log.Debugf
	}
	c.sim.Hooks.OnMovementModeChanged = c.onMovementModeChanged

	c.resolver.Restore(c.state.RotationMode, c.state.Stance, locomotion.GaitRunning)
	c.state.Mode = locomotionModeFor(c.move.Mode, c.state.Mode)
	return c
}

// State returns the classification vector after the last tick.
func (c *Character) State() locomotion.State { return c.state }

func (c *Character) Simulator() *movement.Simulator { return c.sim }

func (c *Character) Gait() *gait.Resolver { return c.resolver }

func (c *Character) PhysicalAnimation() *physanim.Component { return c.physAnim }

func (c *Character) Ragdoll() *ragdoll.Ragdoll { return c.ragdoll }

func (c *Character) Location() mgl64.Vec3 { return c.move.Location }

func (c *Character) Velocity() mgl64.Vec3 { return c.move.Velocity }

// locomotionModeFor maps a movement mode onto the locomotion mode axis. Custom
// modes keep the current locomotion mode.
func locomotionModeFor(mode movement.Mode, current locomotion.LocomotionMode) locomotion.LocomotionMode {
	switch mode {
	case movement.ModeWalking, movement.ModeNavWalking:
		return locomotion.ModeGrounded
	case movement.ModeFalling:
		return locomotion.ModeInAir
	case movement.ModeCustom:
		return current
	}
	return locomotion.ModeNone
}

func (c *Character) onMovementModeChanged(st *movement.MovementState, prev movement.Mode, _ uint8) {
	mode := locomotionModeFor(st.Mode, c.state.Mode)
	if mode != c.state.Mode {
		c.log.Debugf("locomotion mode %s -> %s (movement %s -> %s)", c.state.Mode, mode, prev, st.Mode)
	}
	c.state.Mode = mode
}
