// Package locomotion holds the discrete tags that classify what a character is
// currently doing. Every axis is a small closed enum whose zero value is a valid
// sentinel, so a State never contains an unset axis.
package locomotion

import (
	"strings"

	"github.com/oomph-ac/locomotion/oerror"
)

// tagPrefix is prepended to every qualified tag name.
const tagPrefix = "Als."

// LocomotionAction is a transient action that supersedes regular locomotion.
type LocomotionAction uint8

const (
	ActionNone LocomotionAction = iota
	ActionMantling
	ActionRagdolling
	ActionGettingUp
	ActionRolling
)

var actionNames = [...]string{"", "Mantling", "Ragdolling", "GettingUp", "Rolling"}

// Name returns the simple tag name, or an empty string for ActionNone.
func (a LocomotionAction) Name() string { return nameOf(actionNames[:], int(a)) }

func (a LocomotionAction) String() string { return qualified("LocomotionAction", a.Name()) }

// LocomotionMode is derived from the movement mode of the character.
type LocomotionMode uint8

const (
	ModeNone LocomotionMode = iota
	ModeGrounded
	ModeInAir
)

var modeNames = [...]string{"", "Grounded", "InAir"}

func (m LocomotionMode) Name() string { return nameOf(modeNames[:], int(m)) }

func (m LocomotionMode) String() string { return qualified("LocomotionMode", m.Name()) }

// Stance is the posture axis.
type Stance uint8

const (
	StanceStanding Stance = iota
	StanceCrouching
	StanceLying
)

var stanceNames = [...]string{"Standing", "Crouching", "Lying"}

func (s Stance) Name() string { return nameOf(stanceNames[:], int(s)) }

func (s Stance) String() string { return qualified("Stance", s.Name()) }

// Gait is the movement intensity axis.
type Gait uint8

const (
	GaitWalking Gait = iota
	GaitRunning
	GaitSprinting
)

var gaitNames = [...]string{"Walking", "Running", "Sprinting"}

func (g Gait) Name() string { return nameOf(gaitNames[:], int(g)) }

func (g Gait) String() string { return qualified("Gait", g.Name()) }

// RotationMode decides what the character rotates towards.
type RotationMode uint8

const (
	RotationViewDirection RotationMode = iota
	RotationVelocityDirection
	RotationAiming
)

var rotationNames = [...]string{"ViewDirection", "VelocityDirection", "Aiming"}

func (r RotationMode) Name() string { return nameOf(rotationNames[:], int(r)) }

func (r RotationMode) String() string { return qualified("RotationMode", r.Name()) }

// OverlayMode selects the animation overlay layered on top of the base pose.
type OverlayMode uint8

const (
	OverlayDefault OverlayMode = iota
	OverlayMasculine
	OverlayFeminine
	OverlayInjured
	OverlayHandsTied
	OverlayRifle
	OverlayPistolOneHanded
	OverlayPistolTwoHanded
	OverlayBow
	OverlayTorch
	OverlayBinoculars
	OverlayBox
	OverlayBarrel
)

var overlayNames = [...]string{
	"Default", "Masculine", "Feminine", "Injured", "HandsTied", "Rifle", "PistolOneHanded",
	"PistolTwoHanded", "Bow", "Torch", "Binoculars", "Box", "Barrel",
}

func (o OverlayMode) Name() string { return nameOf(overlayNames[:], int(o)) }

func (o OverlayMode) String() string { return qualified("OverlayMode", o.Name()) }

// ViewMode is the camera perspective the character is controlled from.
type ViewMode uint8

const (
	ViewThirdPerson ViewMode = iota
	ViewFirstPerson
)

var viewNames = [...]string{"ThirdPerson", "FirstPerson"}

func (v ViewMode) Name() string { return nameOf(viewNames[:], int(v)) }

func (v ViewMode) String() string { return qualified("ViewMode", v.Name()) }

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return ""
	}
	return names[i]
}

func qualified(axis, name string) string {
	if name == "" {
		return tagPrefix + axis + ".None"
	}
	return tagPrefix + axis + "." + name
}

// parse looks a tag up by its simple or fully qualified name.
func parse(axis string, names []string, s string) (int, error) {
	s = strings.TrimPrefix(s, tagPrefix+axis+".")
	if s == "None" {
		s = ""
	}
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return i, nil
		}
	}
	return 0, oerror.New("unknown %s tag %q", axis, s)
}

func ParseLocomotionAction(s string) (LocomotionAction, error) {
	i, err := parse("LocomotionAction", actionNames[:], s)
	return LocomotionAction(i), err
}

func ParseLocomotionMode(s string) (LocomotionMode, error) {
	i, err := parse("LocomotionMode", modeNames[:], s)
	return LocomotionMode(i), err
}

func ParseStance(s string) (Stance, error) {
	i, err := parse("Stance", stanceNames[:], s)
	return Stance(i), err
}

func ParseGait(s string) (Gait, error) {
	i, err := parse("Gait", gaitNames[:], s)
	return Gait(i), err
}

func ParseRotationMode(s string) (RotationMode, error) {
	i, err := parse("RotationMode", rotationNames[:], s)
	return RotationMode(i), err
}

func ParseOverlayMode(s string) (OverlayMode, error) {
	i, err := parse("OverlayMode", overlayNames[:], s)
	return OverlayMode(i), err
}

// MarshalText implements encoding.TextMarshaler so tags can be used as keys in
// settings files.
func (s Stance) MarshalText() ([]byte, error) { return []byte(s.Name()), nil }

func (s *Stance) UnmarshalText(b []byte) (err error) {
	*s, err = ParseStance(string(b))
	return err
}

func (r RotationMode) MarshalText() ([]byte, error) { return []byte(r.Name()), nil }

func (r *RotationMode) UnmarshalText(b []byte) (err error) {
	*r, err = ParseRotationMode(string(b))
	return err
}

func (g Gait) MarshalText() ([]byte, error) { return []byte(g.Name()), nil }

func (g *Gait) UnmarshalText(b []byte) (err error) {
	*g, err = ParseGait(string(b))
	return err
}

// Valid reports whether the value is a known tag. Values decoded from the
// network are checked with it.
func (s Stance) Valid() bool { return int(s) < len(stanceNames) }

func (g Gait) Valid() bool { return int(g) < len(gaitNames) }

func (r RotationMode) Valid() bool { return int(r) < len(rotationNames) }
