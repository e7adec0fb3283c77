package physanim

import (
	"slices"
	"strings"

	"github.com/chewxy/math32"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/utils"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

// lockedBlendSpeed is the rate, per second, at which a locked body blends
// towards its locked weight.
const lockedBlendSpeed = 15

// Settings configure the body blend of a Component.
type Settings struct {
	// BlendTimeOnActivate is the time a body takes to blend from animation to
	// physics. Ragdolling skips it and starts at weight 1.
	BlendTimeOnActivate float32
	// BlendTimeOnDeactivate is the time a body takes to blend back to
	// animation. Leaving ragdolling skips it.
	BlendTimeOnDeactivate float32
	// MinimumBlendWeight is the weight a body settles on when it is not part of
	// any active profile.
	MinimumBlendWeight float32

	// MultiplyProfileNames are always appended to the multiplicative tier.
	MultiplyProfileNames []string
	// OverrideProfileNames, when not empty, replace profile selection.
	OverrideProfileNames []string
}

func DefaultSettings() Settings {
	return Settings{BlendTimeOnActivate: 0.1, BlendTimeOnDeactivate: 0.1}
}

// Component drives the physical animation of one skeletal mesh from the
// classification vector of its character.
type Component struct {
	Settings Settings

	mesh     *Mesh
	groups   *BoneGroups
	selector *Selector
	log      *logrus.Logger

	profileNames         []string
	multiplyProfileNames []string

	tags      locomotion.State
	tagsHash  uint64
	tagsValid bool

	active        bool
	prevCollision CollisionSettings

	ragdolling bool
	frozen     bool
}

// NewComponent returns a component for mesh. A nil groups uses the default
// humanoid bone groups.
func NewComponent(mesh *Mesh, groups *BoneGroups, settings Settings, log *logrus.Logger) *Component {
	if groups == nil {
		groups = DefaultBoneGroups()
	}
	if log == nil {
		log = logrus.New()
	}
	return &Component{
		Settings: settings,
		mesh:     mesh,
		groups:   groups,
		selector: NewSelector(log),
		log:      log,
	}
}

func (c *Component) Mesh() *Mesh { return c.mesh }

// ProfileNames returns the applied base and additive profiles.
func (c *Component) ProfileNames() []string { return slices.Clone(c.profileNames) }

// MultiplyProfileNames returns the applied multiplicative profiles.
func (c *Component) MultiplyProfileNames() []string { return slices.Clone(c.multiplyProfileNames) }

// Active returns true while at least one body blends in physics.
func (c *Component) Active() bool { return c.active }

func (c *Component) IsRagdolling() bool { return c.ragdolling }

// IsBoneUnderSimulation returns true if the body of bone simulates.
func (c *Component) IsBoneUnderSimulation(bone string) bool {
	b, ok := c.mesh.Body(bone)
	return ok && b.Simulating
}

// Freeze stops simulating every body of a ragdoll that came to rest. Refresh
// leaves the bodies alone until ragdolling ends.
func (c *Component) Freeze() {
	if !c.ragdolling || c.frozen {
		return
	}
	c.frozen = true
	c.mesh.SetAllBodiesSimulatePhysics(false)
}

// Refresh runs one tick: it reacts to ragdolling transitions, re-selects
// profiles when the classification vector changed and blends every body
// towards its target weight.
func (c *Component) Refresh(dt float32, state locomotion.State, curves Curves) {
	ragdolling := state.Ragdolling()
	if ragdolling && !c.ragdolling {
		c.startRagdolling()
		return
	}
	if !ragdolling && c.ragdolling {
		c.stopRagdolling()
		return
	}

	if len(c.Settings.OverrideProfileNames) > 0 {
		if !slices.Equal(c.profileNames, c.Settings.OverrideProfileNames) || !slices.Equal(c.multiplyProfileNames, c.Settings.MultiplyProfileNames) {
			c.apply(Selection{
				ProfileNames:         slices.Clone(c.Settings.OverrideProfileNames),
				MultiplyProfileNames: slices.Clone(c.Settings.MultiplyProfileNames),
			})
			c.clearTags()
		}
	} else if c.NeedsProfileChange(state) {
		sel := c.selector.Select(state, c.mesh.Profiles(), c.Settings.MultiplyProfileNames)
		if !sel.Equal(Selection{ProfileNames: c.profileNames, MultiplyProfileNames: c.multiplyProfileNames}) {
			c.apply(sel)
		}
	}

	if !c.ragdolling || !c.frozen {
		c.refreshBodies(dt, curves)
	}
}

// NeedsProfileChange records the profile axes of state and the multiply list,
// and returns true if either differs from the previous call.
func (c *Component) NeedsProfileChange(state locomotion.State) bool {
	h := tagsHash(state, c.Settings.MultiplyProfileNames)
	changed := !c.tagsValid || h != c.tagsHash
	c.tags, c.tagsHash, c.tagsValid = state, h, true
	return changed
}

func tagsHash(state locomotion.State, multiply []string) uint64 {
	axes := state.ProfileAxes()
	var sb strings.Builder
	for _, a := range axes {
		sb.WriteString(a)
		sb.WriteByte(0)
	}
	sb.WriteByte(0)
	for _, m := range multiply {
		sb.WriteString(m)
		sb.WriteByte(0)
	}
	return xxh3.HashString(sb.String())
}

func (c *Component) clearTags() {
	c.tags, c.tagsHash, c.tagsValid = locomotion.State{}, 0, false
}

func (c *Component) apply(sel Selection) {
	first := true
	for _, name := range sel.ProfileNames {
		c.mesh.ApplyProfile(name)
		c.mesh.SetConstraintProfile(name, first)
		first = false
	}
	c.profileNames = sel.ProfileNames

	for _, name := range sel.MultiplyProfileNames {
		c.mesh.ApplyProfile(name)
		c.mesh.SetConstraintProfile(name, false)
	}
	c.multiplyProfileNames = sel.MultiplyProfileNames

	c.log.Debugf("physical animation profiles %v, multiply %v", c.profileNames, c.multiplyProfileNames)
}

func (c *Component) startRagdolling() {
	c.ragdolling, c.frozen = true, false
	c.profileNames, c.multiplyProfileNames = nil, nil
	c.clearTags()

	c.mesh.SetAllBodiesBelowSimulatePhysics(PelvisBoneName, true)
	c.mesh.SetAllBodiesPhysicsBlendWeight(1)
	c.mesh.ResetProfileParams()
	c.log.Debugf("physical animation: ragdolling started")
}

func (c *Component) stopRagdolling() {
	c.ragdolling, c.frozen = false, false
	c.profileNames, c.multiplyProfileNames = nil, nil
	c.clearTags()

	c.mesh.SetAllBodiesSimulatePhysics(false)
	c.mesh.SetAllBodiesPhysicsBlendWeight(0)
	c.mesh.SetConstraintProfile("", true)

	if c.active {
		c.mesh.Collision = c.prevCollision
		c.active = false
	}
	c.log.Debugf("physical animation: ragdolling stopped")
}

// hasAnyProfile returns true if b belongs to one of the applied profiles. With
// no profile applied only a ragdoll simulates, and only its non-kinematic
// bodies.
func (c *Component) hasAnyProfile(b *Body) bool {
	if len(c.profileNames) == 0 {
		return c.ragdolling && !b.Kinematic
	}
	for _, name := range c.profileNames {
		if c.mesh.Profiles().BodyInProfile(name, b.Bone) {
			return true
		}
	}
	return false
}

func (c *Component) refreshBodies(dt float32, curves Curves) {
	needUpdate := c.active
	if !c.active && (len(c.profileNames) > 0 || c.ragdolling) {
		c.mesh.ForEachBody(func(b *Body) {
			if !needUpdate && c.groups.LockValue(b.Bone, curves) <= 0 && c.hasAnyProfile(b) {
				needUpdate = true
			}
		})
	}

	activeAny := false
	if needUpdate {
		c.mesh.ForEachBody(func(b *Body) {
			if c.refreshBody(b, dt, c.groups.LockValue(b.Bone, curves)) {
				activeAny = true
			}
		})
	}

	if activeAny && !c.active {
		c.prevCollision = c.mesh.Collision
		c.mesh.Collision = CollisionSettings{ObjectType: ChannelPhysicsBody, Enabled: CollisionQueryAndPhysics}
		c.active = true
	}
	if !activeAny && c.active {
		c.mesh.Collision = c.prevCollision
		c.active = false
	}
}

// refreshBody blends one body and returns true if it still takes part in
// physics.
func (c *Component) refreshBody(b *Body, dt, lock float32) bool {
	locked := lock > 0
	if !locked && c.hasAnyProfile(b) {
		if b.Simulating {
			speed := 1 / math32.Max(1e-6, c.Settings.BlendTimeOnActivate)
			b.BlendWeight = math32.Min(1, utils.FInterpConstantTo32(b.BlendWeight, 1, dt, speed))
		} else {
			b.Simulating = true
			b.BlendWeight = 0
		}
		return true
	}

	if locked {
		if b.Simulating {
			target := math32.Max(c.Settings.MinimumBlendWeight, 1-lock)
			b.BlendWeight = utils.FInterpConstantTo32(b.BlendWeight, target, dt, lockedBlendSpeed)
		} else {
			if lock < 1 {
				b.Simulating = true
			}
			b.BlendWeight = 0
		}
	} else {
		speed := 1 / math32.Max(1e-6, c.Settings.BlendTimeOnDeactivate)
		b.BlendWeight = utils.FInterpConstantTo32(b.BlendWeight, c.Settings.MinimumBlendWeight, dt, speed)
	}

	if b.BlendWeight == 0 {
		b.Simulating = false
		return false
	}
	return true
}
