package gait

import "github.com/oomph-ac/locomotion/locomotion"

// Settings is the speed and acceleration profile used for one rotation mode and
// stance combination.
type Settings struct {
	WalkSpeed   float64
	RunSpeed    float64
	SprintSpeed float64

	// Curves holds the acceleration, braking deceleration and ground friction
	// channels sampled by gait amount. A nil set means the curve asset is missing.
	Curves *CurveSet
}

// SpeedForGait returns the configured speed for g.
func (s Settings) SpeedForGait(g locomotion.Gait) float64 {
	switch g {
	case locomotion.GaitRunning:
		return s.RunSpeed
	case locomotion.GaitSprinting:
		return s.SprintSpeed
	default:
		return s.WalkSpeed
	}
}

// StanceSettings maps each stance to its gait settings.
type StanceSettings struct {
	Stances map[locomotion.Stance]Settings
}

// MovementSettings is the two level lookup table of gait settings. It is not
// modified once loaded.
type MovementSettings struct {
	RotationModes map[locomotion.RotationMode]StanceSettings
}

// DefaultMovementSettings returns the built-in table used when no settings file
// provides one.
func DefaultMovementSettings() MovementSettings {
	curves := &CurveSet{Channels: []Curve{
		NewCurve(Key{0, 2000}, Key{1, 1000}, Key{2, 1000}, Key{3, 800}),
		NewCurve(Key{0, 1000}, Key{1, 800}, Key{3, 1200}),
		NewCurve(Key{0, 8}, Key{3, 6}),
	}}
	standing := Settings{WalkSpeed: 175, RunSpeed: 375, SprintSpeed: 650, Curves: curves}
	crouching := Settings{WalkSpeed: 150, RunSpeed: 200, SprintSpeed: 300, Curves: curves}
	lying := Settings{WalkSpeed: 50, RunSpeed: 80, SprintSpeed: 100, Curves: curves}
	aiming := Settings{WalkSpeed: 150, RunSpeed: 250, SprintSpeed: 250, Curves: curves}

	table := MovementSettings{RotationModes: map[locomotion.RotationMode]StanceSettings{}}
	for _, mode := range []locomotion.RotationMode{locomotion.RotationViewDirection, locomotion.RotationVelocityDirection} {
		table.RotationModes[mode] = StanceSettings{Stances: map[locomotion.Stance]Settings{
			locomotion.StanceStanding:  standing,
			locomotion.StanceCrouching: crouching,
			locomotion.StanceLying:     lying,
		}}
	}
	table.RotationModes[locomotion.RotationAiming] = StanceSettings{Stances: map[locomotion.Stance]Settings{
		locomotion.StanceStanding:  aiming,
		locomotion.StanceCrouching: crouching,
		locomotion.StanceLying:     lying,
	}}
	return table
}
