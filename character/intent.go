package character

import (
	"github.com/oomph-ac/locomotion/locomotion"
)

// SetDesiredStance requests a stance. Crouching is applied by the movement
// simulation on the next tick, lying is requested through SetWantsToLie.
func (c *Character) SetDesiredStance(stance locomotion.Stance) {
	c.desiredStance = stance
	c.wantsToLie = stance == locomotion.StanceLying
}

func (c *Character) DesiredStance() locomotion.Stance { return c.desiredStance }

// SetDesiredGait requests a gait. The gait actually reached depends on the
// speed of the character, and sprinting on its input direction.
func (c *Character) SetDesiredGait(g locomotion.Gait) {
	c.desiredGait = g
}

func (c *Character) DesiredGait() locomotion.Gait { return c.desiredGait }

func (c *Character) SetDesiredRotationMode(mode locomotion.RotationMode) {
	c.desiredRotationMode = mode
}

func (c *Character) DesiredRotationMode() locomotion.RotationMode { return c.desiredRotationMode }

func (c *Character) SetOverlayMode(mode locomotion.OverlayMode) {
	c.state.Overlay = mode
}

func (c *Character) SetViewMode(mode locomotion.ViewMode) {
	c.state.ViewMode = mode
}

// SetViewYaw sets the yaw of the camera, in degrees.
func (c *Character) SetViewYaw(yaw float64) {
	c.viewYaw = yaw
}

// StartRagdolling hands the character over to physics. It returns false if the
// character is already ragdolling.
func (c *Character) StartRagdolling() bool {
	if c.state.Ragdolling() {
		return false
	}
	c.state.Action = locomotion.ActionRagdolling
	c.ragdoll.Start(vec32(c.forward()), vec32(c.move.Velocity), c)
	return true
}

// StopRagdolling returns control to the movement simulation. It returns false
// if the character is not ragdolling.
func (c *Character) StopRagdolling() bool {
	if !c.state.Ragdolling() {
		return false
	}
	c.ragdoll.End(c)
	c.state.Action = locomotion.ActionNone
	return true
}
