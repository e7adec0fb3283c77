package character

import (
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/prediction"
	"github.com/oomph-ac/locomotion/ragdoll"
)

var (
	_ prediction.Character = (*Character)(nil)
	_ ragdoll.Mover        = (*Character)(nil)
)

func (c *Character) Movement() *movement.MovementState { return c.move }

func (c *Character) RotationMode() locomotion.RotationMode { return c.state.RotationMode }
func (c *Character) Stance() locomotion.Stance             { return c.state.Stance }
func (c *Character) MaxAllowedGait() locomotion.Gait       { return c.resolver.MaxAllowedGait() }
func (c *Character) WantsToLie() bool                      { return c.wantsToLie }

func (c *Character) SetRotationMode(mode locomotion.RotationMode) {
	c.state.RotationMode = mode
	c.resolver.SetRotationMode(mode)
}

func (c *Character) SetStance(stance locomotion.Stance) {
	c.state.Stance = stance
	c.resolver.SetStance(stance)
}

func (c *Character) SetMaxAllowedGait(g locomotion.Gait) {
	c.resolver.SetMaxAllowedGait(g)
}

func (c *Character) SetWantsToLie(wants bool) {
	c.wantsToLie = wants
}

func (c *Character) RefreshGaitSettings() {
	c.resolver.RefreshGaitSettings()
}

func (c *Character) Rotation() movement.Rotator {
	return movement.Rotator{Yaw: c.move.Rotation}
}

// RelativeRotation is the rotation relative to the movement base. Characters
// never stand on moving bases, so it stays zero unless set.
func (c *Character) RelativeRotation() movement.Rotator {
	return c.relativeRotation
}

func (c *Character) SetRotation(rot movement.Rotator) {
	c.move.Rotation = rot.Yaw
}

func (c *Character) SetMovementMode(mode movement.Mode, customMode uint8) {
	c.sim.SetMovementMode(c.move, mode, customMode)
}

func (c *Character) LockMovementMode(mode movement.Mode, customMode uint8) {
	c.sim.LockMovementMode(c.move, mode, customMode)
}

func (c *Character) UnlockMovementMode() {
	c.sim.UnlockMovementMode(c.move)
}

// Crouch requests crouching. The capsule shrinks once the movement mode allows it.
func (c *Character) Crouch() {
	c.desiredStance = locomotion.StanceCrouching
}

func (c *Character) UnCrouch() {
	if c.desiredStance == locomotion.StanceCrouching {
		c.desiredStance = locomotion.StanceStanding
	}
}

// RecordMove runs one tick and returns it as a saved move that can be sent to
// the server or replayed after a correction.
func (c *Character) RecordMove(timestamp, dt float64, input Input) *prediction.SavedMove {
	m := prediction.NewSavedMove()
	c.move.WantsToCrouch = c.desiredStance == locomotion.StanceCrouching
	m.SetMoveFor(c, timestamp, dt, input.Acceleration, input.Jump)
	c.Tick(dt, input)
	m.PostUpdate(c)
	return m
}

// ReplayMove restores the locomotion tags of m and simulates its movement
// again. Only the movement simulation runs: gait and rotation mode stay as the
// move recorded them.
func (c *Character) ReplayMove(m *prediction.SavedMove) movement.Result {
	m.PrepMoveFor(c)
	res := c.sim.Simulate(c.move, movement.Input{
		Acceleration:  m.Base.Acceleration,
		DeltaTime:     m.Base.DeltaTime,
		Jump:          m.Base.PressedJump,
		WantsToCrouch: m.Base.WantsToCrouch,
		WantsToLie:    m.WantsToLie,
	})
	c.syncFromMovement(res)
	m.PostUpdate(c)
	return res
}

// ApplyMoveData applies the locomotion tags a client sent along with a move.
func (c *Character) ApplyMoveData(d *prediction.MoveData) {
	prediction.MoveAutonomous(d, c)
}

// AsyncStep is the physics thread part of a sub-step. The crouch state
// follows the crouch request when the character can crouch at all, and the
// stance follows the crouch state unless the character lies.
func AsyncStep(in prediction.AsyncInput) prediction.AsyncOutput {
	out := prediction.OutputFromInput(in)
	out.IsCrouched = in.CanEverCrouch && in.WantsToCrouch
	if out.Stance != locomotion.StanceLying {
		out.Stance = locomotion.StanceStanding
		if out.IsCrouched {
			out.Stance = locomotion.StanceCrouching
		}
	}
	return out
}
