package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/physanim"
)

func TestSaveDefaultAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locomotion.toml")
	if err := SaveDefault(path); err != nil {
		t.Fatalf("save default: %v", err)
	}
	if err := SaveDefault(path); err == nil {
		t.Fatalf("expected an error when the settings file exists")
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := DefaultSettings()
	if s.Movement != def.Movement {
		t.Fatalf("expected default movement settings, got %+v", s.Movement)
	}
	if s.Ragdolling != def.Ragdolling || s.Character != def.Character {
		t.Fatalf("expected default ragdoll and character settings")
	}
	if got := s.Gait["Aiming"]["Standing"].WalkSpeed; got != 150 {
		t.Fatalf("expected aiming walk speed 150, got %f", got)
	}
	if len(s.Gait["ViewDirection"]["Standing"].Acceleration) != 4 {
		t.Fatalf("expected acceleration curve keys to survive, got %+v", s.Gait["ViewDirection"]["Standing"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestDecodeKeepsMissingGaitEntries(t *testing.T) {
	s, err := Decode([]byte(`
[Movement]
MaxSimulationIterations = 4

[Gait.Aiming.Standing]
WalkSpeed = 100.0
RunSpeed = 120.0
SprintSpeed = 120.0
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Movement.MaxSimulationIterations != 4 {
		t.Fatalf("expected 4 iterations, got %d", s.Movement.MaxSimulationIterations)
	}
	if s.Gait["Aiming"]["Standing"].WalkSpeed != 100 {
		t.Fatalf("expected overridden aiming walk speed")
	}
	if s.Gait["Aiming"]["Crouching"].WalkSpeed != 150 || s.Gait["ViewDirection"]["Standing"].RunSpeed != 375 {
		t.Fatalf("expected missing gait entries to keep their defaults, got %+v", s.Gait)
	}

	table, err := s.GaitTable()
	if err != nil {
		t.Fatalf("gait table: %v", err)
	}
	aiming := table.RotationModes[locomotion.RotationAiming].Stances[locomotion.StanceStanding]
	if aiming.WalkSpeed != 100 || aiming.Curves != nil {
		t.Fatalf("expected aiming gait without curves, got %+v", aiming)
	}
	view := table.RotationModes[locomotion.RotationViewDirection].Stances[locomotion.StanceStanding]
	if v, ok := view.Curves.Eval(0, 0); !ok || v != 2000 {
		t.Fatalf("expected default acceleration curve, got %f %t", v, ok)
	}
}

func TestGaitTableRejectsUnknownNames(t *testing.T) {
	s := DefaultSettings()
	s.Gait["Strafing"] = map[string]Gait{"Standing": {WalkSpeed: 1}}
	if _, err := s.GaitTable(); err == nil {
		t.Fatalf("expected an error for an unknown rotation mode")
	}

	s = DefaultSettings()
	s.Gait["Aiming"]["Kneeling"] = Gait{WalkSpeed: 1}
	if _, err := s.GaitTable(); err == nil {
		t.Fatalf("expected an error for an unknown stance")
	}
}

func TestApplyEnv(t *testing.T) {
	s := DefaultSettings()
	err := applyEnv(&s, map[string]string{
		"LOCOMOTION_MAX_SIMULATION_ITERATIONS": "3",
		"LOCOMOTION_BLEND_TIME_ON_ACTIVATE":    "0.5",
		"MAX_STEP_HEIGHT":                      "1",
	})
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if s.Movement.MaxSimulationIterations != 3 || s.PhysicalAnimation.BlendTimeOnActivate != 0.5 {
		t.Fatalf("expected env overrides, got %+v %+v", s.Movement, s.PhysicalAnimation)
	}
	if s.Movement.MaxStepHeight != DefaultSettings().Movement.MaxStepHeight {
		t.Fatalf("expected unprefixed variables to be ignored")
	}

	s = DefaultSettings()
	if err := applyEnv(&s, map[string]string{"LOCOMOTION_MAX_SIMULATION_ITERATIONS": "many"}); err == nil {
		t.Fatalf("expected an error for an invalid value")
	}
}

func TestMovementOptions(t *testing.T) {
	m := DefaultSettings().Movement
	m.JumpZVelocity = 600
	opts := m.Options()
	if opts.JumpZVelocity != 600 || opts.MaxSimulationIterations != m.MaxSimulationIterations {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestParseBoneGroups(t *testing.T) {
	groups, err := ParseBoneGroups([]byte(`
[LeftArm]
bones = clavicle_l, upperarm_l , lowerarm_l
curve = LockLeftArm

[rightfoot]
bones = foot_r
curve = LockRightFoot
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if groups.Group("upperarm_l") != physanim.BoneGroupLeftArm || groups.Curve(physanim.BoneGroupLeftArm) != "LockLeftArm" {
		t.Fatalf("expected upperarm_l in LeftArm")
	}
	if groups.Group("foot_r") != physanim.BoneGroupRightFoot {
		t.Fatalf("expected section names to be case insensitive")
	}
	if groups.Group("hand_l") != physanim.BoneGroupNone {
		t.Fatalf("expected unlisted bones outside any group")
	}

	if _, err := ParseBoneGroups([]byte("[Tail]\nbones = tail_01\n")); err == nil {
		t.Fatalf("expected an error for an unknown group")
	}
}

func TestBoneGroupFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	if err := SaveBoneGroups(filepath.Join(dir, "bones.ini"), physanim.DefaultBoneGroups()); err != nil {
		t.Fatalf("save bone groups: %v", err)
	}

	path := filepath.Join(dir, "locomotion.toml")
	if err := os.WriteFile(path, []byte("[PhysicalAnimation]\nBoneGroupFile = \"bones.ini\"\n"), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	conf, err := s.CharacterConfig(nil)
	if err != nil {
		t.Fatalf("character config: %v", err)
	}

	def := physanim.DefaultBoneGroups()
	for _, g := range physanim.AllBoneGroups() {
		if got, want := conf.BoneGroups.Bones(g), def.Bones(g); len(got) != len(want) || conf.BoneGroups.Curve(g) != def.Curve(g) {
			t.Fatalf("%s: expected %v, got %v", g, want, got)
		}
	}
	if conf.Gait == nil || conf.Simulation.MaxSimulationIterations != s.Movement.MaxSimulationIterations {
		t.Fatalf("expected gait table and simulation options in the config")
	}
}
