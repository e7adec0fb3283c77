package gait

import (
	"math"

	"github.com/oomph-ac/locomotion/assert"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/utils"
	"github.com/sirupsen/logrus"
)

// Resolver caches the gait settings that apply to the current rotation mode and
// stance, and the maximum walk speed derived from the max allowed gait.
type Resolver struct {
	table *MovementSettings
	log   *logrus.Logger

	rotationMode   locomotion.RotationMode
	stance         locomotion.Stance
	maxAllowedGait locomotion.Gait

	settings             Settings
	maxWalkSpeed         float64
	maxWalkSpeedCrouched float64
}

// NewResolver returns a resolver over table and refreshes its settings.
func NewResolver(table *MovementSettings, log *logrus.Logger) *Resolver {
	r := &Resolver{table: table, log: log}
	r.RefreshGaitSettings()
	return r
}

// RefreshGaitSettings looks the gait settings up again. A missing entry is
// reported as a soft assertion and replaced by zero settings.
func (r *Resolver) RefreshGaitSettings() {
	r.settings = Settings{}
	if assert.Ensure(r.table != nil, r.log, "gait resolver has no movement settings") {
		stances, ok := r.table.RotationModes[r.rotationMode]
		if assert.Ensure(ok, r.log, "no gait settings for rotation mode %s", r.rotationMode) {
			s, ok := stances.Stances[r.stance]
			if assert.Ensure(ok, r.log, "no gait settings for %s in rotation mode %s", r.stance, r.rotationMode) {
				r.settings = s
			}
		}
	}
	r.RefreshMaxWalkSpeed()
}

// RefreshMaxWalkSpeed updates the max walk speed from the max allowed gait.
func (r *Resolver) RefreshMaxWalkSpeed() {
	r.maxWalkSpeed = r.settings.SpeedForGait(r.maxAllowedGait)
	r.maxWalkSpeedCrouched = r.maxWalkSpeed
}

func (r *Resolver) SetMovementSettings(table *MovementSettings) {
	r.table = table
	r.RefreshGaitSettings()
}

func (r *Resolver) SetRotationMode(mode locomotion.RotationMode) {
	if r.rotationMode != mode {
		r.rotationMode = mode
		r.RefreshGaitSettings()
	}
}

func (r *Resolver) SetStance(stance locomotion.Stance) {
	if r.stance != stance {
		r.stance = stance
		r.RefreshGaitSettings()
	}
}

func (r *Resolver) SetMaxAllowedGait(g locomotion.Gait) {
	if r.maxAllowedGait != g {
		r.maxAllowedGait = g
		r.RefreshMaxWalkSpeed()
	}
}

// Restore sets all three keys at once without the change checks and refreshes.
// It is used when replaying or receiving network moves.
func (r *Resolver) Restore(mode locomotion.RotationMode, stance locomotion.Stance, maxAllowedGait locomotion.Gait) {
	r.rotationMode, r.stance, r.maxAllowedGait = mode, stance, maxAllowedGait
	r.RefreshGaitSettings()
}

func (r *Resolver) RotationMode() locomotion.RotationMode { return r.rotationMode }
func (r *Resolver) Stance() locomotion.Stance             { return r.stance }
func (r *Resolver) MaxAllowedGait() locomotion.Gait       { return r.maxAllowedGait }
func (r *Resolver) Settings() Settings                    { return r.settings }
func (r *Resolver) MaxWalkSpeed() float64                 { return r.maxWalkSpeed }
func (r *Resolver) MaxWalkSpeedCrouched() float64         { return r.maxWalkSpeedCrouched }

// CalculateGaitAmount maps a planar speed onto [0, 3] where 1, 2 and 3 are the
// walk, run and sprint speeds.
func (r *Resolver) CalculateGaitAmount(speed float64) float64 {
	return GaitAmount(r.settings, speed)
}

// Sample evaluates a curve channel at the gait amount for speed.
func (r *Resolver) Sample(channel int, speed float64) (float64, bool) {
	return r.settings.Curves.Eval(channel, r.CalculateGaitAmount(speed))
}

// GaitAmount is the stateless form of Resolver.CalculateGaitAmount.
func GaitAmount(s Settings, speed float64) float64 {
	speed = math.Max(0, speed)
	switch {
	case speed <= s.WalkSpeed:
		return utils.MapRangeClamped(speed, 0, s.WalkSpeed, 0, 1)
	case speed <= s.RunSpeed:
		return utils.MapRangeClamped(speed, s.WalkSpeed, s.RunSpeed, 1, 2)
	default:
		return utils.MapRangeClamped(speed, s.RunSpeed, s.SprintSpeed, 2, 3)
	}
}
