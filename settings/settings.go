package settings

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/gait"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/movement"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/oomph-ac/locomotion/ragdoll"
	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

// Settings contains everything that can be configured for a character.
type Settings struct {
	Movement  Movement
	Character character.Settings
	// Gait is keyed by rotation mode, then by stance, e.g. Gait.ViewDirection.Standing.
	Gait              map[string]map[string]Gait
	PhysicalAnimation PhysicalAnimation
	Ragdolling        ragdoll.Settings
}

// Movement are the options of the movement simulation.
type Movement struct {
	MaxSimulationIterations int     `env:"MAX_SIMULATION_ITERATIONS"`
	MaxSimulationTimeStep   float64 `env:"MAX_SIMULATION_TIME_STEP"`

	MaxStepHeight        float64 `env:"MAX_STEP_HEIGHT"`
	WalkableFloorY       float64 `env:"WALKABLE_FLOOR_Y"`
	PerchRadiusThreshold float64 `env:"PERCH_RADIUS_THRESHOLD"`
	AlwaysCheckFloor     bool    `env:"ALWAYS_CHECK_FLOOR"`

	CanWalkOffLedges              bool    `env:"CAN_WALK_OFF_LEDGES"`
	CanWalkOffLedgesWhenCrouching bool    `env:"CAN_WALK_OFF_LEDGES_WHEN_CROUCHING"`
	LedgeCheckThreshold           float64 `env:"LEDGE_CHECK_THRESHOLD"`

	MaxAcceleration            float64 `env:"MAX_ACCELERATION"`
	BrakingDecelerationWalking float64 `env:"BRAKING_DECELERATION_WALKING"`
	BrakingDecelerationFalling float64 `env:"BRAKING_DECELERATION_FALLING"`
	BrakingFrictionFactor      float64 `env:"BRAKING_FRICTION_FACTOR"`
	GroundFriction             float64 `env:"GROUND_FRICTION"`
	MaxCustomMovementSpeed     float64 `env:"MAX_CUSTOM_MOVEMENT_SPEED"`

	Gravity          float64 `env:"GRAVITY"`
	GravityScale     float64 `env:"GRAVITY_SCALE"`
	TerminalVelocity float64 `env:"TERMINAL_VELOCITY"`
	AirControl       float64 `env:"AIR_CONTROL"`
	JumpZVelocity    float64 `env:"JUMP_Z_VELOCITY"`

	CapsuleInterpSpeed float64 `env:"CAPSULE_INTERP_SPEED"`
}

// Gait is the speed profile of one rotation mode and stance.
type Gait struct {
	WalkSpeed   float64
	RunSpeed    float64
	SprintSpeed float64

	// The curves are sampled by gait amount, 1, 2 and 3 being walk, run and
	// sprint speed. A gait without any curve keys uses the movement options.
	Acceleration        []CurveKey
	BrakingDeceleration []CurveKey
	GroundFriction      []CurveKey
}

type CurveKey struct {
	Time  float64
	Value float64
}

// PhysicalAnimation configures the physical animation of the skeletal mesh.
type PhysicalAnimation struct {
	BlendTimeOnActivate   float32 `env:"BLEND_TIME_ON_ACTIVATE"`
	BlendTimeOnDeactivate float32 `env:"BLEND_TIME_ON_DEACTIVATE"`
	MinimumBlendWeight    float32 `env:"MINIMUM_BLEND_WEIGHT"`
	MultiplyProfileNames  []string
	// BoneGroupFile is an INI file mapping bones to lock curves, relative to
	// the settings file. The built-in humanoid groups are used when it is empty.
	BoneGroupFile string `env:"BONE_GROUP_FILE"`
}

// DefaultSettings returns the default settings for a humanoid character.
func DefaultSettings() Settings {
	opts := movement.DefaultSimulationOptions()
	s := Settings{
		Movement: Movement{
			MaxSimulationIterations: opts.MaxSimulationIterations,
			MaxSimulationTimeStep:   opts.MaxSimulationTimeStep,

			MaxStepHeight:        opts.MaxStepHeight,
			WalkableFloorY:       opts.WalkableFloorY,
			PerchRadiusThreshold: opts.PerchRadiusThreshold,
			AlwaysCheckFloor:     opts.AlwaysCheckFloor,

			CanWalkOffLedges:              opts.CanWalkOffLedges,
			CanWalkOffLedgesWhenCrouching: opts.CanWalkOffLedgesWhenCrouching,
			LedgeCheckThreshold:           opts.LedgeCheckThreshold,

			MaxAcceleration:            opts.MaxAcceleration,
			BrakingDecelerationWalking: opts.BrakingDecelerationWalking,
			BrakingDecelerationFalling: opts.BrakingDecelerationFalling,
			BrakingFrictionFactor:      opts.BrakingFrictionFactor,
			GroundFriction:             opts.GroundFriction,
			MaxCustomMovementSpeed:     opts.MaxCustomMovementSpeed,

			Gravity:          opts.Gravity,
			GravityScale:     opts.GravityScale,
			TerminalVelocity: opts.TerminalVelocity,
			AirControl:       opts.AirControl,
			JumpZVelocity:    opts.JumpZVelocity,

			CapsuleInterpSpeed: opts.CapsuleInterpSpeed,
		},
		Character:  character.DefaultSettings(),
		Gait:       map[string]map[string]Gait{},
		Ragdolling: ragdoll.DefaultSettings(),
	}

	anim := physanim.DefaultSettings()
	s.PhysicalAnimation = PhysicalAnimation{
		BlendTimeOnActivate:   anim.BlendTimeOnActivate,
		BlendTimeOnDeactivate: anim.BlendTimeOnDeactivate,
		MinimumBlendWeight:    anim.MinimumBlendWeight,
	}

	for mode, stances := range gait.DefaultMovementSettings().RotationModes {
		entries := map[string]Gait{}
		for stance, g := range stances.Stances {
			entries[stance.Name()] = gaitFromTable(g)
		}
		s.Gait[mode.Name()] = entries
	}
	return s
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return oerror.New("settings file %s already exists", path)
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return oerror.Wrap(err, "failed encoding default settings")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oerror.Wrap(err, "failed creating settings file")
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
// Values missing from the file keep their defaults. Environment overrides are
// applied last.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, oerror.Wrap(err, "error reading settings")
	}
	s, err := Decode(data)
	if err != nil {
		return Settings{}, err
	}
	if s.PhysicalAnimation.BoneGroupFile != "" && !filepath.IsAbs(s.PhysicalAnimation.BoneGroupFile) {
		s.PhysicalAnimation.BoneGroupFile = filepath.Join(filepath.Dir(path), s.PhysicalAnimation.BoneGroupFile)
	}
	return s, ApplyEnv(&s)
}

// Decode decodes a TOML settings document on top of the default settings.
// Gait entries missing from the document keep their defaults.
func Decode(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, oerror.Wrap(err, "error decoding settings")
	}
	if s.Gait == nil {
		s.Gait = map[string]map[string]Gait{}
	}
	for mode, stances := range DefaultSettings().Gait {
		if s.Gait[mode] == nil {
			s.Gait[mode] = stances
			continue
		}
		for stance, g := range stances {
			if _, ok := s.Gait[mode][stance]; !ok {
				s.Gait[mode][stance] = g
			}
		}
	}
	return s, nil
}

// Options returns the movement simulation options.
func (m Movement) Options() movement.SimulationOptions {
	opts := movement.DefaultSimulationOptions()
	opts.MaxSimulationIterations = m.MaxSimulationIterations
	opts.MaxSimulationTimeStep = m.MaxSimulationTimeStep
	opts.MaxStepHeight = m.MaxStepHeight
	opts.WalkableFloorY = m.WalkableFloorY
	opts.PerchRadiusThreshold = m.PerchRadiusThreshold
	opts.AlwaysCheckFloor = m.AlwaysCheckFloor
	opts.CanWalkOffLedges = m.CanWalkOffLedges
	opts.CanWalkOffLedgesWhenCrouching = m.CanWalkOffLedgesWhenCrouching
	opts.LedgeCheckThreshold = m.LedgeCheckThreshold
	opts.MaxAcceleration = m.MaxAcceleration
	opts.BrakingDecelerationWalking = m.BrakingDecelerationWalking
	opts.BrakingDecelerationFalling = m.BrakingDecelerationFalling
	opts.BrakingFrictionFactor = m.BrakingFrictionFactor
	opts.GroundFriction = m.GroundFriction
	opts.MaxCustomMovementSpeed = m.MaxCustomMovementSpeed
	opts.Gravity = m.Gravity
	opts.GravityScale = m.GravityScale
	opts.TerminalVelocity = m.TerminalVelocity
	opts.AirControl = m.AirControl
	opts.JumpZVelocity = m.JumpZVelocity
	opts.CapsuleInterpSpeed = m.CapsuleInterpSpeed
	return opts
}

// GaitTable builds the gait lookup table. Unknown rotation mode or stance
// names are an error.
func (s Settings) GaitTable() (*gait.MovementSettings, error) {
	table := &gait.MovementSettings{RotationModes: map[locomotion.RotationMode]gait.StanceSettings{}}
	for _, modeName := range sortedKeys(s.Gait) {
		mode, err := locomotion.ParseRotationMode(modeName)
		if err != nil {
			return nil, oerror.Wrap(err, "invalid gait settings")
		}
		stances := gait.StanceSettings{Stances: map[locomotion.Stance]gait.Settings{}}
		for _, stanceName := range sortedKeys(s.Gait[modeName]) {
			stance, err := locomotion.ParseStance(stanceName)
			if err != nil {
				return nil, oerror.Wrap(err, "invalid gait settings for %s", modeName)
			}
			stances.Stances[stance] = s.Gait[modeName][stanceName].table()
		}
		table.RotationModes[mode] = stances
	}
	return table, nil
}

// Settings returns the physical animation settings.
func (p PhysicalAnimation) Settings() physanim.Settings {
	return physanim.Settings{
		BlendTimeOnActivate:   p.BlendTimeOnActivate,
		BlendTimeOnDeactivate: p.BlendTimeOnDeactivate,
		MinimumBlendWeight:    p.MinimumBlendWeight,
		MultiplyProfileNames:  p.MultiplyProfileNames,
	}
}

// CharacterConfig assembles the configuration of a character. The bone groups
// are read from the bone group file if one is set.
func (s Settings) CharacterConfig(log *logrus.Logger) (character.Config, error) {
	table, err := s.GaitTable()
	if err != nil {
		return character.Config{}, err
	}
	groups := physanim.DefaultBoneGroups()
	if s.PhysicalAnimation.BoneGroupFile != "" {
		if groups, err = LoadBoneGroups(s.PhysicalAnimation.BoneGroupFile); err != nil {
			return character.Config{}, err
		}
	}
	return character.Config{
		Settings:   s.Character,
		Simulation: s.Movement.Options(),
		Gait:       table,
		PhysAnim:   s.PhysicalAnimation.Settings(),
		BoneGroups: groups,
		Ragdolling: s.Ragdolling,
		Log:        log,
	}, nil
}

func (g Gait) table() gait.Settings {
	s := gait.Settings{WalkSpeed: g.WalkSpeed, RunSpeed: g.RunSpeed, SprintSpeed: g.SprintSpeed}
	if len(g.Acceleration) == 0 && len(g.BrakingDeceleration) == 0 && len(g.GroundFriction) == 0 {
		return s
	}
	s.Curves = &gait.CurveSet{Channels: []gait.Curve{
		curveFromKeys(g.Acceleration),
		curveFromKeys(g.BrakingDeceleration),
		curveFromKeys(g.GroundFriction),
	}}
	return s
}

func gaitFromTable(s gait.Settings) Gait {
	g := Gait{WalkSpeed: s.WalkSpeed, RunSpeed: s.RunSpeed, SprintSpeed: s.SprintSpeed}
	if s.Curves == nil {
		return g
	}
	for i, c := range s.Curves.Channels {
		keys := make([]CurveKey, 0, len(c.Keys))
		for _, k := range c.Keys {
			keys = append(keys, CurveKey{Time: k.Time, Value: k.Value})
		}
		switch i {
		case gait.ChannelAcceleration:
			g.Acceleration = keys
		case gait.ChannelBrakingDeceleration:
			g.BrakingDeceleration = keys
		case gait.ChannelGroundFriction:
			g.GroundFriction = keys
		}
	}
	return g
}

func curveFromKeys(keys []CurveKey) gait.Curve {
	k := make([]gait.Key, 0, len(keys))
	for _, key := range keys {
		k = append(k, gait.Key{Time: key.Time, Value: key.Value})
	}
	return gait.NewCurve(k...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
