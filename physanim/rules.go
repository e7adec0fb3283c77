package physanim

import (
	"math/bits"
	"sort"
	"strings"

	"github.com/oomph-ac/locomotion/locomotion"
)

// Profile axes in name order. The bit of an axis in a rule mask is
// 1 << (ProfileAxisCount - 1 - axis), so Action is the most significant bit.
const (
	AxisAction = iota
	AxisMode
	AxisStance
	AxisGait
	AxisOverlay
)

var axisNames = [locomotion.ProfileAxisCount]string{"Action", "Mode", "Stance", "Gait", "Overlay"}

func axisBit(axis int) uint8 {
	return 1 << (locomotion.ProfileAxisCount - 1 - axis)
}

// Rule names a subset of the profile axes. The profile name of a rule is the
// colon-joined names of its axes in axis order.
type Rule struct {
	Mask     uint8
	Priority int
}

// Has returns true if the rule names axis.
func (r Rule) Has(axis int) bool {
	return r.Mask&axisBit(axis) != 0
}

// Template returns a readable form of the rule, e.g. "Action:Stance:Gait".
func (r Rule) Template() string {
	parts := make([]string, 0, locomotion.ProfileAxisCount)
	for axis := range locomotion.ProfileAxisCount {
		if r.Has(axis) {
			parts = append(parts, axisNames[axis])
		}
	}
	return strings.Join(parts, ":")
}

// Name fills the template with axes. It returns false if the rule names an axis
// whose tag is unset.
func (r Rule) Name(axes [locomotion.ProfileAxisCount]string) (string, bool) {
	var sb strings.Builder
	for axis := range locomotion.ProfileAxisCount {
		if !r.Has(axis) {
			continue
		}
		if axes[axis] == "" {
			return "", false
		}
		if sb.Len() > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(axes[axis])
	}
	return sb.String(), true
}

// RuleTable is the list of rules ordered from most to least specific. The first
// rule has priority 0.
type RuleTable []Rule

// NewRuleTable returns every non-empty axis subset, larger subsets first and,
// within a size, in descending mask order.
func NewRuleTable() RuleTable {
	const full = 1<<locomotion.ProfileAxisCount - 1

	masks := make([]uint8, 0, full)
	for m := uint8(full); m > 0; m-- {
		masks = append(masks, m)
	}
	sort.SliceStable(masks, func(i, j int) bool {
		return bits.OnesCount8(masks[i]) > bits.OnesCount8(masks[j])
	})

	table := make(RuleTable, len(masks))
	for i, m := range masks {
		table[i] = Rule{Mask: m, Priority: i}
	}
	return table
}

// Candidates returns the profile names of the rules in table order. Rules for
// which skip returns true are left out.
func (t RuleTable) Candidates(axes [locomotion.ProfileAxisCount]string, skip func(Rule) bool) []string {
	names := make([]string, 0, len(t))
	for _, r := range t {
		if skip != nil && skip(r) {
			continue
		}
		if name, ok := r.Name(axes); ok {
			names = append(names, name)
		}
	}
	return names
}
