package physanim

import (
	"slices"

	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/sirupsen/logrus"
)

const (
	additivePrefix = "+"
	multiplyPrefix = "*"
)

// Selection is the result of profile selection.
type Selection struct {
	// Base is the most specific existing profile, or an empty string.
	Base string
	// ProfileNames is the base profile followed by the additive profiles in
	// specificity order. Bodies outside these profiles do not simulate.
	ProfileNames []string
	// MultiplyProfileNames only change body parameters, never whether a body
	// simulates.
	MultiplyProfileNames []string
}

// Equal returns true if both selections apply the same profiles.
func (s Selection) Equal(o Selection) bool {
	return slices.Equal(s.ProfileNames, o.ProfileNames) && slices.Equal(s.MultiplyProfileNames, o.MultiplyProfileNames)
}

// Selector picks the physical animation profiles matching a classification
// vector.
type Selector struct {
	Rules RuleTable
	Log   *logrus.Logger
}

func NewSelector(log *logrus.Logger) *Selector {
	return &Selector{Rules: NewRuleTable(), Log: log}
}

// Select resolves the profiles for state against profiles. The base tier takes
// the first existing candidate and falls back to "Default" outside of
// ragdolling. The additive and multiplicative tiers take every existing "+" and
// "*" candidate, whether or not a base profile matched. multiply is appended to
// the multiplicative tier.
//
// While ragdolling the additive and multiplicative tiers skip candidates naming
// the locomotion mode. The base tier does not.
func (s *Selector) Select(state locomotion.State, profiles *ProfileSet, multiply []string) Selection {
	axes := state.ProfileAxes()
	ragdolling := state.Ragdolling()

	var sel Selection
	for _, name := range s.Rules.Candidates(axes, nil) {
		if s.Log != nil {
			s.Log.Tracef("try physical animation profile %q", name)
		}
		if profiles.HasProfile(name) {
			sel.Base = name
			break
		}
	}
	if sel.Base == "" && !ragdolling && profiles.HasProfile(DefaultProfileName) {
		sel.Base = DefaultProfileName
	}

	var skip func(Rule) bool
	if ragdolling {
		skip = func(r Rule) bool { return r.Has(AxisMode) }
	}
	var additive, multiplicative []string
	for _, name := range s.Rules.Candidates(axes, skip) {
		if profiles.HasProfile(additivePrefix + name) {
			additive = append(additive, additivePrefix+name)
		}
		if profiles.HasProfile(multiplyPrefix + name) {
			multiplicative = append(multiplicative, multiplyPrefix+name)
		}
	}

	if sel.Base != "" {
		sel.ProfileNames = append(sel.ProfileNames, sel.Base)
	}
	sel.ProfileNames = append(sel.ProfileNames, additive...)
	sel.MultiplyProfileNames = append(multiplicative, multiply...)
	return sel
}
