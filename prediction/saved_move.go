package prediction

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movement"
)

const (
	// accelDotThresholdCombine is the minimum cosine between the accelerations
	// of two moves for them to be combined.
	accelDotThresholdCombine = 0.996
	// accelMagThresholdCombine is the maximum difference in acceleration
	// magnitude between two combinable moves.
	accelMagThresholdCombine = 1.0
)

// Character is the part of a character that saved moves snapshot and restore.
type Character interface {
	Movement() *movement.MovementState

	RotationMode() locomotion.RotationMode
	Stance() locomotion.Stance
	MaxAllowedGait() locomotion.Gait
	WantsToLie() bool

	SetRotationMode(mode locomotion.RotationMode)
	SetStance(stance locomotion.Stance)
	SetMaxAllowedGait(gait locomotion.Gait)
	SetWantsToLie(wants bool)
	RefreshGaitSettings()

	Rotation() movement.Rotator
	RelativeRotation() movement.Rotator
	SetRotation(rot movement.Rotator)
	SetMovementMode(mode movement.Mode, customMode uint8)
}

// BaseMove is the movement state every client move records regardless of the
// locomotion tags.
type BaseMove struct {
	Timestamp    float64
	DeltaTime    float64
	Acceleration mgl64.Vec3

	StartLocation mgl64.Vec3
	SavedLocation mgl64.Vec3
	StartVelocity mgl64.Vec3
	SavedVelocity mgl64.Vec3
	StartFloor    movement.FloorResult

	StartRotation               movement.Rotator
	SavedRotation               movement.Rotator
	StartAttachRelativeRotation movement.Rotator

	StartMode       movement.Mode
	StartCustomMode uint8
	EndMode         movement.Mode

	WantsToCrouch bool
	PressedJump   bool
}

// SavedMove is one client predicted tick.
type SavedMove struct {
	Base BaseMove

	RotationMode   locomotion.RotationMode
	Stance         locomotion.Stance
	MaxAllowedGait locomotion.Gait
	WantsToLie     bool
}

// NewSavedMove returns a cleared move.
func NewSavedMove() *SavedMove {
	m := &SavedMove{}
	m.Clear()
	return m
}

// Clear resets the move to the well-known default tags.
func (m *SavedMove) Clear() {
	m.Base = BaseMove{}
	m.RotationMode = locomotion.RotationViewDirection
	m.Stance = locomotion.StanceStanding
	m.MaxAllowedGait = locomotion.GaitWalking
	m.WantsToLie = false
}

// SetMoveFor records the start of a move of length dt for the character.
func (m *SavedMove) SetMoveFor(c Character, timestamp, dt float64, accel mgl64.Vec3, pressedJump bool) {
	st := c.Movement()

	m.Base = BaseMove{
		Timestamp:                   timestamp,
		DeltaTime:                   dt,
		Acceleration:                accel,
		StartLocation:               st.Location,
		StartVelocity:               st.Velocity,
		StartFloor:                  st.CurrentFloor,
		StartRotation:               c.Rotation(),
		StartAttachRelativeRotation: c.RelativeRotation(),
		StartMode:                   st.Mode,
		StartCustomMode:             st.CustomMode,
		WantsToCrouch:               st.WantsToCrouch,
		PressedJump:                 pressedJump,
	}

	m.RotationMode = c.RotationMode()
	m.Stance = c.Stance()
	m.MaxAllowedGait = c.MaxAllowedGait()
	m.WantsToLie = c.WantsToLie()
}

// PostUpdate records the state the move ended in.
func (m *SavedMove) PostUpdate(c Character) {
	st := c.Movement()
	m.Base.SavedLocation = st.Location
	m.Base.SavedVelocity = st.Velocity
	m.Base.SavedRotation = c.Rotation()
	m.Base.EndMode = st.Mode
}

// PrepMoveFor restores the tags of the move onto the character before it is
// replayed.
func (m *SavedMove) PrepMoveFor(c Character) {
	c.SetRotationMode(m.RotationMode)
	c.SetStance(m.Stance)
	c.SetMaxAllowedGait(m.MaxAllowedGait)
	c.SetWantsToLie(m.WantsToLie)

	c.RefreshGaitSettings()
}

// CanCombineWith returns true if next can be merged into this move. Moves are
// never combined across a change of any locomotion tag, so a stance or gait
// change always reaches the server as its own move.
func (m *SavedMove) CanCombineWith(next *SavedMove, c Character, maxDelta float64) bool {
	if m.RotationMode != next.RotationMode ||
		m.Stance != next.Stance ||
		m.MaxAllowedGait != next.MaxAllowedGait ||
		m.WantsToLie != next.WantsToLie {
		return false
	}
	return m.Base.canCombineWith(&next.Base, maxDelta)
}

func (b *BaseMove) canCombineWith(next *BaseMove, maxDelta float64) bool {
	zero, nextZero := b.Acceleration.Len() == 0, next.Acceleration.Len() == 0
	if zero != nextZero {
		return false
	}
	if !zero {
		if b.Acceleration.Normalize().Dot(next.Acceleration.Normalize()) < accelDotThresholdCombine {
			return false
		}
		if math.Abs(b.Acceleration.Len()-next.Acceleration.Len()) > accelMagThresholdCombine {
			return false
		}
	}
	if b.DeltaTime+next.DeltaTime >= maxDelta {
		return false
	}
	if b.PressedJump || next.PressedJump {
		return false
	}
	if b.WantsToCrouch != next.WantsToCrouch {
		return false
	}
	return b.StartMode == next.StartMode && b.EndMode == next.StartMode && b.StartCustomMode == next.StartCustomMode
}

// CombineWith merges prev into this move and rewinds the character to the start
// of prev so the combined move can be replayed over both delta times. The
// character keeps its current rotation: the rotation prev would rewind to is
// swapped for the current one for the duration of the merge.
func (m *SavedMove) CombineWith(prev *SavedMove, c Character) {
	originalRotation := prev.Base.StartRotation
	originalRelativeRotation := prev.Base.StartAttachRelativeRotation
	defer func() {
		prev.Base.StartRotation = originalRotation
		prev.Base.StartAttachRelativeRotation = originalRelativeRotation
	}()

	prev.Base.StartRotation = c.Rotation()
	prev.Base.StartAttachRelativeRotation = c.RelativeRotation()

	m.Base.combineWith(&prev.Base, c)
}

func (b *BaseMove) combineWith(prev *BaseMove, c Character) {
	st := c.Movement()

	st.SetLocation(prev.StartLocation)
	c.SetRotation(prev.StartRotation)
	st.SetVelocity(prev.StartVelocity)
	st.CurrentFloor = prev.StartFloor
	c.SetMovementMode(prev.StartMode, prev.StartCustomMode)

	b.DeltaTime += prev.DeltaTime
	b.StartLocation = prev.StartLocation
	b.StartVelocity = prev.StartVelocity
	b.StartFloor = prev.StartFloor
	b.StartRotation = prev.StartRotation
	b.StartAttachRelativeRotation = prev.StartAttachRelativeRotation
	b.StartMode = prev.StartMode
	b.StartCustomMode = prev.StartCustomMode
}
