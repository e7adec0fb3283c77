package physanim

import (
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"github.com/oomph-ac/locomotion/oerror"
)

// BoneGroup is a set of bones that share one lock curve.
type BoneGroup uint8

const (
	BoneGroupNone BoneGroup = iota
	BoneGroupLeftArm
	BoneGroupRightArm
	BoneGroupLeftHand
	BoneGroupRightHand
	BoneGroupLeftLeg
	BoneGroupRightLeg
	BoneGroupLeftFoot
	BoneGroupRightFoot

	boneGroupCount
)

var boneGroupNames = [boneGroupCount]string{
	"None", "LeftArm", "RightArm", "LeftHand", "RightHand", "LeftLeg", "RightLeg", "LeftFoot", "RightFoot",
}

// AllBoneGroups returns every group except BoneGroupNone.
func AllBoneGroups() []BoneGroup {
	groups := make([]BoneGroup, 0, boneGroupCount-1)
	for g := BoneGroupNone + 1; g < boneGroupCount; g++ {
		groups = append(groups, g)
	}
	return groups
}

func (g BoneGroup) String() string {
	if g >= boneGroupCount {
		return "None"
	}
	return boneGroupNames[g]
}

// ParseBoneGroup parses a group name such as "LeftArm".
func ParseBoneGroup(s string) (BoneGroup, error) {
	for i, name := range boneGroupNames {
		if i != 0 && strings.EqualFold(name, s) {
			return BoneGroup(i), nil
		}
	}
	return BoneGroupNone, oerror.New("unknown bone group %q", s)
}

// Curves holds the animation curve values sampled for a tick.
type Curves map[string]float32

// Value returns the curve value, or 0 if the curve is missing.
func (c Curves) Value(name string) float32 {
	if name == "" {
		return 0
	}
	return c[name]
}

// BoneGroups maps bones to their group and groups to their lock curve.
type BoneGroups struct {
	bones  map[string]BoneGroup
	curves [boneGroupCount]string
}

func NewBoneGroups() *BoneGroups {
	return &BoneGroups{bones: map[string]BoneGroup{}}
}

// Set assigns curve and bones to group. Bones already in another group move to
// this one.
func (g *BoneGroups) Set(group BoneGroup, curve string, bones ...string) {
	if group == BoneGroupNone || group >= boneGroupCount {
		return
	}
	g.curves[group] = curve
	for _, bone := range bones {
		g.bones[bone] = group
	}
}

func (g *BoneGroups) Group(bone string) BoneGroup {
	if g == nil {
		return BoneGroupNone
	}
	return g.bones[bone]
}

func (g *BoneGroups) Curve(group BoneGroup) string {
	if g == nil || group >= boneGroupCount {
		return ""
	}
	return g.curves[group]
}

// Bones returns the bones of group, sorted by name.
func (g *BoneGroups) Bones(group BoneGroup) []string {
	var bones []string
	for bone, bg := range g.bones {
		if bg == group {
			bones = append(bones, bone)
		}
	}
	sort.Strings(bones)
	return bones
}

// LockValue returns the lock curve value of the group bone belongs to, clamped
// to [0, 1]. Bones outside any group are never locked.
func (g *BoneGroups) LockValue(bone string, curves Curves) float32 {
	v := curves.Value(g.Curve(g.Group(bone)))
	return math32.Max(0, math32.Min(1, v))
}

// DefaultBoneGroups returns the groups of the standard humanoid skeleton.
func DefaultBoneGroups() *BoneGroups {
	g := NewBoneGroups()
	g.Set(BoneGroupLeftArm, "LockLeftArm", "clavicle_l", "upperarm_l", "lowerarm_l")
	g.Set(BoneGroupRightArm, "LockRightArm", "clavicle_r", "upperarm_r", "lowerarm_r")
	g.Set(BoneGroupLeftHand, "LockLeftHand", "hand_l")
	g.Set(BoneGroupRightHand, "LockRightHand", "hand_r")
	g.Set(BoneGroupLeftLeg, "LockLeftLeg", "thigh_l", "calf_l")
	g.Set(BoneGroupRightLeg, "LockRightLeg", "thigh_r", "calf_r")
	g.Set(BoneGroupLeftFoot, "LockLeftFoot", "foot_l", "ball_l")
	g.Set(BoneGroupRightFoot, "LockRightFoot", "foot_r", "ball_r")
	return g
}
