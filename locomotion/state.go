package locomotion

// ProfileAxisCount is the number of axes that participate in physical animation
// profile names.
const ProfileAxisCount = 5

// State is the classification vector of a character. Fields are independent
// axes; the character is the only writer and everything else reads it after
// movement has run for the tick.
type State struct {
	Action       LocomotionAction
	Mode         LocomotionMode
	Stance       Stance
	Gait         Gait
	RotationMode RotationMode
	Overlay      OverlayMode
	ViewMode     ViewMode
}

// ProfileAxes returns the simple names of the profile axes in the order
// Action, Mode, Stance, Gait, Overlay. An empty name means the axis is unset.
func (s State) ProfileAxes() [ProfileAxisCount]string {
	return [ProfileAxisCount]string{
		s.Action.Name(),
		s.Mode.Name(),
		s.Stance.Name(),
		s.Gait.Name(),
		s.Overlay.Name(),
	}
}

// Ragdolling returns true if the current locomotion action is ragdolling.
func (s State) Ragdolling() bool {
	return s.Action == ActionRagdolling
}
