package physanim

import (
	"github.com/elliotchance/orderedmap/v2"
)

// DefaultProfileName is used when no profile matches the current state.
const DefaultProfileName = "Default"

// BodyParams are the physical animation parameters a profile sets on one body.
type BodyParams struct {
	OrientationStrength     float32
	AngularVelocityStrength float32
	PositionStrength        float32
	VelocityStrength        float32
	MaxLinearForce          float32
	MaxAngularForce         float32
	IsLocalSimulation       bool
}

// Profile is a named physical animation profile of a skeletal mesh. Only the
// bodies listed in Bodies take part in it.
type Profile struct {
	Name   string
	Bodies map[string]BodyParams
}

// Touches returns true if the profile sets parameters for bone.
func (p Profile) Touches(bone string) bool {
	_, ok := p.Bodies[bone]
	return ok
}

// ProfileSet is the set of profiles configured on a skeletal mesh, in the order
// they were declared.
type ProfileSet struct {
	profiles *orderedmap.OrderedMap[string, Profile]
}

func NewProfileSet(profiles ...Profile) *ProfileSet {
	s := &ProfileSet{profiles: orderedmap.NewOrderedMap[string, Profile]()}
	for _, p := range profiles {
		s.Add(p)
	}
	return s
}

// Add adds p, replacing any profile with the same name.
func (s *ProfileSet) Add(p Profile) {
	if p.Bodies == nil {
		p.Bodies = map[string]BodyParams{}
	}
	s.profiles.Set(p.Name, p)
}

// HasProfile returns true if a profile named exactly name exists.
func (s *ProfileSet) HasProfile(name string) bool {
	if s == nil || name == "" {
		return false
	}
	_, ok := s.profiles.Get(name)
	return ok
}

func (s *ProfileSet) Profile(name string) (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	return s.profiles.Get(name)
}

// BodyInProfile returns true if the named profile exists and touches bone.
func (s *ProfileSet) BodyInProfile(name, bone string) bool {
	p, ok := s.Profile(name)
	return ok && p.Touches(bone)
}

// Names returns the profile names in declaration order.
func (s *ProfileSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, s.profiles.Len())
	for el := s.profiles.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

func (s *ProfileSet) Len() int {
	if s == nil {
		return 0
	}
	return s.profiles.Len()
}
