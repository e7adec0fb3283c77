package gait

import (
	"io"
	"math"
	"testing"

	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestGaitAmountBreakpoints(t *testing.T) {
	s := Settings{WalkSpeed: 175, RunSpeed: 375, SprintSpeed: 650}
	cases := []struct{ speed, want float64 }{
		{0, 0}, {87.5, 0.5}, {175, 1}, {275, 1.5}, {375, 2}, {650, 3}, {1000, 3}, {-5, 0},
	}
	for _, c := range cases {
		if got := GaitAmount(s, c.speed); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("speed %f: expected %f, got %f", c.speed, c.want, got)
		}
	}
}

func TestGaitAmountMonotonic(t *testing.T) {
	s := Settings{WalkSpeed: 150, RunSpeed: 200, SprintSpeed: 300}
	prev := -1.0
	for speed := 0.0; speed <= s.SprintSpeed; speed += 0.5 {
		got := GaitAmount(s, speed)
		if got < prev {
			t.Fatalf("gait amount decreased at %f: %f < %f", speed, got, prev)
		}
		prev = got
	}
}

func TestResolverRefreshesOnChange(t *testing.T) {
	table := DefaultMovementSettings()
	r := NewResolver(&table, quietLogger())

	if r.MaxWalkSpeed() != 175 {
		t.Fatalf("expected standing walk speed 175, got %f", r.MaxWalkSpeed())
	}
	r.SetMaxAllowedGait(locomotion.GaitSprinting)
	if r.MaxWalkSpeed() != 650 || r.MaxWalkSpeedCrouched() != 650 {
		t.Fatalf("expected sprint speed 650, got %f/%f", r.MaxWalkSpeed(), r.MaxWalkSpeedCrouched())
	}
	r.SetStance(locomotion.StanceCrouching)
	if r.MaxWalkSpeed() != 300 {
		t.Fatalf("expected crouched sprint speed 300, got %f", r.MaxWalkSpeed())
	}
	r.SetRotationMode(locomotion.RotationAiming)
	if r.Settings().WalkSpeed != 150 {
		t.Fatalf("expected aiming crouched settings, got %+v", r.Settings())
	}
}

func TestResolverMissingEntryFallsBackToZero(t *testing.T) {
	table := MovementSettings{RotationModes: map[locomotion.RotationMode]StanceSettings{
		locomotion.RotationViewDirection: {Stances: map[locomotion.Stance]Settings{
			locomotion.StanceStanding: {WalkSpeed: 100, RunSpeed: 200, SprintSpeed: 300},
		}},
	}}
	r := NewResolver(&table, quietLogger())
	r.SetRotationMode(locomotion.RotationAiming)
	if r.Settings() != (Settings{}) || r.MaxWalkSpeed() != 0 {
		t.Fatalf("expected zero settings, got %+v", r.Settings())
	}
	if _, ok := r.Sample(ChannelAcceleration, 10); ok {
		t.Fatalf("missing curves must not sample")
	}
	r.SetRotationMode(locomotion.RotationViewDirection)
	if r.MaxWalkSpeed() != 100 {
		t.Fatalf("expected recovery to 100, got %f", r.MaxWalkSpeed())
	}
}

func TestCurveEval(t *testing.T) {
	c := NewCurve(Key{2, 20}, Key{0, 0}, Key{3, 0})
	cases := []struct{ t, want float64 }{{-1, 0}, {1, 10}, {2, 20}, {2.5, 10}, {9, 0}}
	for _, cs := range cases {
		if got := c.Eval(cs.t); math.Abs(got-cs.want) > 1e-9 {
			t.Errorf("eval %f: expected %f, got %f", cs.t, cs.want, got)
		}
	}
	set := &CurveSet{Channels: []Curve{c}}
	if _, ok := set.Eval(ChannelGroundFriction, 1); ok {
		t.Fatalf("out of range channel must not sample")
	}
}
