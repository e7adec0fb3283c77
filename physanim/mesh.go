package physanim

import (
	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// PelvisBoneName is the root of the bodies that simulate while ragdolling.
const PelvisBoneName = "pelvis"

// CollisionChannel is the object type of the mesh collision.
type CollisionChannel uint8

const (
	ChannelPawn CollisionChannel = iota
	ChannelPhysicsBody
	ChannelWorldDynamic
)

// CollisionEnabled is the kind of collision the mesh takes part in.
type CollisionEnabled uint8

const (
	CollisionNone CollisionEnabled = iota
	CollisionQueryOnly
	CollisionPhysicsOnly
	CollisionQueryAndPhysics
)

// CollisionSettings are the component level collision settings of a mesh.
type CollisionSettings struct {
	ObjectType CollisionChannel
	Enabled    CollisionEnabled
}

// Body is one physics body of a skeletal mesh.
type Body struct {
	Bone   string
	Parent string
	// Kinematic bodies are never simulated while ragdolling without a profile.
	Kinematic bool

	Simulating  bool
	BlendWeight float32
	Params      BodyParams

	Location        mgl32.Vec3
	Rotation        mgl32.Quat
	LinearVelocity  mgl32.Vec3
	AngularVelocity mgl32.Vec3 // radians per second
}

// Mesh is the body table of a skeletal mesh together with its configured
// profiles. Bodies are kept in skeleton order, parents before children.
type Mesh struct {
	bodies   *orderedmap.OrderedMap[string, *Body]
	profiles *ProfileSet

	Collision         CollisionSettings
	ConstraintProfile string
}

func NewMesh(profiles *ProfileSet) *Mesh {
	if profiles == nil {
		profiles = NewProfileSet()
	}
	return &Mesh{
		bodies:    orderedmap.NewOrderedMap[string, *Body](),
		profiles:  profiles,
		Collision: CollisionSettings{ObjectType: ChannelPawn, Enabled: CollisionQueryOnly},
	}
}

// AddBody adds a body. Its rotation defaults to identity.
func (m *Mesh) AddBody(b *Body) {
	if b.Rotation == (mgl32.Quat{}) {
		b.Rotation = mgl32.QuatIdent()
	}
	m.bodies.Set(b.Bone, b)
}

func (m *Mesh) Body(bone string) (*Body, bool) {
	return m.bodies.Get(bone)
}

func (m *Mesh) Profiles() *ProfileSet {
	return m.profiles
}

func (m *Mesh) Len() int {
	return m.bodies.Len()
}

// ForEachBody calls f for every body in skeleton order.
func (m *Mesh) ForEachBody(f func(b *Body)) {
	for el := m.bodies.Front(); el != nil; el = el.Next() {
		f(el.Value)
	}
}

// IsBelow returns true if bone is root or one of its descendants.
func (m *Mesh) IsBelow(bone, root string) bool {
	for seen := 0; bone != "" && seen <= m.bodies.Len(); seen++ {
		if bone == root {
			return true
		}
		b, ok := m.bodies.Get(bone)
		if !ok {
			return false
		}
		bone = b.Parent
	}
	return false
}

// ForEachBodyBelow calls f for root and every body below it.
func (m *Mesh) ForEachBodyBelow(root string, f func(b *Body)) {
	m.ForEachBody(func(b *Body) {
		if m.IsBelow(b.Bone, root) {
			f(b)
		}
	})
}

// SetAllBodiesBelowSimulatePhysics toggles simulation on root and its descendants.
func (m *Mesh) SetAllBodiesBelowSimulatePhysics(root string, simulate bool) {
	m.ForEachBodyBelow(root, func(b *Body) { b.Simulating = simulate })
}

func (m *Mesh) SetAllBodiesSimulatePhysics(simulate bool) {
	m.ForEachBody(func(b *Body) { b.Simulating = simulate })
}

func (m *Mesh) SetAllBodiesPhysicsBlendWeight(weight float32) {
	m.ForEachBody(func(b *Body) { b.BlendWeight = weight })
}

// ResetProfileParams clears the physical animation parameters of every body.
func (m *Mesh) ResetProfileParams() {
	m.ForEachBody(func(b *Body) { b.Params = BodyParams{} })
}

// ApplyProfile writes the parameters of the named profile onto the bodies it
// touches. Parameters from later profiles overwrite earlier ones. It returns
// false if the profile does not exist.
func (m *Mesh) ApplyProfile(name string) bool {
	p, ok := m.profiles.Profile(name)
	if !ok {
		return false
	}
	m.ForEachBody(func(b *Body) {
		if params, ok := p.Bodies[b.Bone]; ok {
			b.Params = params
		}
	})
	return true
}

// SetConstraintProfile switches the constraint profile of every body. When
// defaultIfNotFound is set an unknown name resets it.
func (m *Mesh) SetConstraintProfile(name string, defaultIfNotFound bool) {
	if m.profiles.HasProfile(name) {
		m.ConstraintProfile = name
	} else if defaultIfNotFound {
		m.ConstraintProfile = ""
	}
}

// AnySimulating returns true if at least one body simulates.
func (m *Mesh) AnySimulating() bool {
	for el := m.bodies.Front(); el != nil; el = el.Next() {
		if el.Value.Simulating {
			return true
		}
	}
	return false
}

// BoneSpeeds returns the largest linear speed and angular speed, in degrees per
// second, of root and the bodies below it.
func (m *Mesh) BoneSpeeds(root string) (maxSpeed, maxAngularSpeed float32) {
	m.ForEachBodyBelow(root, func(b *Body) {
		maxSpeed = math32.Max(maxSpeed, b.LinearVelocity.Len())
		maxAngularSpeed = math32.Max(maxAngularSpeed, mgl32.RadToDeg(b.AngularVelocity.Len()))
	})
	return maxSpeed, maxAngularSpeed
}
