package settings

import (
	"os"
	"strings"

	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/physanim"
	"gopkg.in/ini.v1"
)

var iniOptions = ini.LoadOptions{
	Insensitive:         false,
	InsensitiveSections: true,
	InsensitiveKeys:     true,
}

// LoadBoneGroups reads a bone group file. Each section names a group and holds
// its bones and lock curve:
//
//	[LeftArm]
//	bones = clavicle_l, upperarm_l, lowerarm_l
//	curve = LockLeftArm
func LoadBoneGroups(path string) (*physanim.BoneGroups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerror.Wrap(err, "error reading bone groups")
	}
	return ParseBoneGroups(data)
}

// ParseBoneGroups parses the contents of a bone group file.
func ParseBoneGroups(data []byte) (*physanim.BoneGroups, error) {
	f, err := ini.LoadSources(iniOptions, data)
	if err != nil {
		return nil, oerror.Wrap(err, "error decoding bone groups")
	}
	groups := physanim.NewBoneGroups()
	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), ini.DefaultSection) {
			continue
		}
		group, err := physanim.ParseBoneGroup(sec.Name())
		if err != nil {
			return nil, oerror.Wrap(err, "invalid bone group section")
		}
		var bones []string
		for _, bone := range sec.Key("bones").Strings(",") {
			if bone = strings.TrimSpace(bone); bone != "" {
				bones = append(bones, bone)
			}
		}
		groups.Set(group, sec.Key("curve").String(), bones...)
	}
	return groups, nil
}

// SaveBoneGroups writes groups to a bone group file.
func SaveBoneGroups(path string, groups *physanim.BoneGroups) error {
	f := ini.Empty()
	for _, g := range physanim.AllBoneGroups() {
		bones := groups.Bones(g)
		if len(bones) == 0 {
			continue
		}
		sec, err := f.NewSection(g.String())
		if err != nil {
			return oerror.Wrap(err, "failed encoding bone group %s", g)
		}
		sec.Key("bones").SetValue(strings.Join(bones, ", "))
		sec.Key("curve").SetValue(groups.Curve(g))
	}
	if err := f.SaveTo(path); err != nil {
		return oerror.Wrap(err, "failed creating bone group file")
	}
	return nil
}
