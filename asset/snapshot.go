package asset

import (
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/tidwall/sjson"
)

// Snapshot writes the classification vector of a character and the physical
// animation state of its mesh as JSON. Debug tools diff consecutive snapshots.
func Snapshot(state locomotion.State, anim *physanim.Component) (data []byte, err error) {
	data = []byte(`{}`)
	set := func(path string, value any) (err error) {
		data, err = sjson.SetBytes(data, path, value)
		return err
	}

	for _, axis := range [][2]string{
		{"action", state.Action.Name()},
		{"mode", state.Mode.Name()},
		{"stance", state.Stance.Name()},
		{"gait", state.Gait.Name()},
		{"rotationMode", state.RotationMode.Name()},
		{"overlay", state.Overlay.Name()},
		{"viewMode", state.ViewMode.Name()},
	} {
		if err := set("state."+axis[0], axis[1]); err != nil {
			return nil, oerror.Wrap(err, "failed encoding snapshot")
		}
	}

	if err := set("physicalAnimation.active", anim.Active()); err != nil {
		return nil, oerror.Wrap(err, "failed encoding snapshot")
	}
	if err := set("physicalAnimation.ragdolling", anim.IsRagdolling()); err != nil {
		return nil, oerror.Wrap(err, "failed encoding snapshot")
	}
	if err := set("physicalAnimation.profiles", anim.ProfileNames()); err != nil {
		return nil, oerror.Wrap(err, "failed encoding snapshot")
	}
	if err := set("physicalAnimation.multiplyProfiles", anim.MultiplyProfileNames()); err != nil {
		return nil, oerror.Wrap(err, "failed encoding snapshot")
	}

	if data, err = sjson.SetRawBytes(data, "bodies", []byte(`[]`)); err != nil {
		return nil, oerror.Wrap(err, "failed encoding snapshot")
	}
	anim.Mesh().ForEachBody(func(b *physanim.Body) {
		if err != nil {
			return
		}
		body := []byte(`{}`)
		if body, err = sjson.SetBytes(body, "bone", b.Bone); err != nil {
			return
		}
		if body, err = sjson.SetBytes(body, "simulating", b.Simulating); err != nil {
			return
		}
		if body, err = sjson.SetBytes(body, "blendWeight", b.BlendWeight); err != nil {
			return
		}
		if body, err = sjson.SetBytes(body, "location", []float32{b.Location[0], b.Location[1], b.Location[2]}); err != nil {
			return
		}
		data, err = sjson.SetRawBytes(data, "bodies.-1", body)
	})
	if err != nil {
		return nil, oerror.Wrap(err, "failed encoding snapshot")
	}
	return data, nil
}
