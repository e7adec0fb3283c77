// Package asset loads skeletal mesh metadata: the physics bodies of a mesh and
// the physical animation profiles configured on it.
//
// A mesh file is a JSON document:
//
//	{
//	  "name": "SK_Mannequin",
//	  "bodies": [
//	    {"bone": "root", "kinematic": true},
//	    {"bone": "pelvis", "parent": "root", "location": [0, 90, 0]}
//	  ],
//	  "profiles": [
//	    {"name": "Grounded", "bodies": {"spine_01": {"orientationStrength": 1000}}}
//	  ]
//	}
package asset

import (
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/tidwall/gjson"
)

// Mesh is a loaded skeletal mesh.
type Mesh struct {
	Name string
	*physanim.Mesh
}

// LoadMesh reads a mesh file.
func LoadMesh(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oerror.Wrap(err, "error reading mesh %s", path)
	}
	return ParseMesh(data)
}

// ParseMesh parses the contents of a mesh file. Bodies must be listed parents
// first.
func ParseMesh(data []byte) (*Mesh, error) {
	if !gjson.ValidBytes(data) {
		return nil, oerror.New("mesh metadata is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	profiles, err := parseProfiles(doc.Get("profiles"))
	if err != nil {
		return nil, err
	}
	m := &Mesh{Name: doc.Get("name").String(), Mesh: physanim.NewMesh(profiles)}

	bodies := doc.Get("bodies")
	if !bodies.IsArray() || len(bodies.Array()) == 0 {
		return nil, oerror.New("mesh %q has no bodies", m.Name)
	}
	for i, b := range bodies.Array() {
		bone := b.Get("bone").String()
		if bone == "" {
			return nil, oerror.New("body %d of mesh %q has no bone", i, m.Name)
		}
		if _, ok := m.Body(bone); ok {
			return nil, oerror.New("bone %q of mesh %q is listed twice", bone, m.Name)
		}
		parent := b.Get("parent").String()
		if _, ok := m.Body(parent); parent != "" && !ok {
			return nil, oerror.New("bone %q of mesh %q is listed before its parent %q", bone, m.Name, parent)
		}
		body := &physanim.Body{
			Bone:      bone,
			Parent:    parent,
			Kinematic: b.Get("kinematic").Bool(),
			Location:  vec3(b.Get("location")),
		}
		if r := b.Get("rotation"); r.IsArray() && len(r.Array()) == 4 {
			a := r.Array()
			body.Rotation = mgl32.Quat{W: float32(a[0].Float()), V: mgl32.Vec3{float32(a[1].Float()), float32(a[2].Float()), float32(a[3].Float())}}.Normalize()
		}
		m.AddBody(body)
	}
	return m, nil
}

func parseProfiles(res gjson.Result) (*physanim.ProfileSet, error) {
	set := physanim.NewProfileSet()
	if !res.Exists() {
		return set, nil
	}
	if !res.IsArray() {
		return nil, oerror.New("profiles must be an array")
	}
	var err error
	res.ForEach(func(_, p gjson.Result) bool {
		name := p.Get("name").String()
		if name == "" {
			err = oerror.New("profile without a name")
			return false
		}
		profile := physanim.Profile{Name: name, Bodies: map[string]physanim.BodyParams{}}
		p.Get("bodies").ForEach(func(bone, params gjson.Result) bool {
			profile.Bodies[bone.String()] = bodyParams(params)
			return true
		})
		set.Add(profile)
		return true
	})
	return set, err
}

func bodyParams(p gjson.Result) physanim.BodyParams {
	return physanim.BodyParams{
		OrientationStrength:     float32(p.Get("orientationStrength").Float()),
		AngularVelocityStrength: float32(p.Get("angularVelocityStrength").Float()),
		PositionStrength:        float32(p.Get("positionStrength").Float()),
		VelocityStrength:        float32(p.Get("velocityStrength").Float()),
		MaxLinearForce:          float32(p.Get("maxLinearForce").Float()),
		MaxAngularForce:         float32(p.Get("maxAngularForce").Float()),
		IsLocalSimulation:       p.Get("isLocalSimulation").Bool(),
	}
}

func vec3(res gjson.Result) mgl32.Vec3 {
	var v mgl32.Vec3
	for i, c := range res.Array() {
		if i > 2 {
			break
		}
		v[i] = float32(c.Float())
	}
	return v
}
