package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/physanim"
	"github.com/tidwall/gjson"
)

const mannequin = `{
  "name": "SK_Mannequin",
  "bodies": [
    {"bone": "root", "kinematic": true},
    {"bone": "pelvis", "parent": "root", "location": [0, 90, 0]},
    {"bone": "spine_01", "parent": "pelvis", "location": [0, 110, 0], "rotation": [1, 0, 0, 0]}
  ],
  "profiles": [
    {"name": "Grounded", "bodies": {"spine_01": {"orientationStrength": 1000, "isLocalSimulation": true}}},
    {"name": "Ragdolling"}
  ]
}`

func TestParseMesh(t *testing.T) {
	m, err := ParseMesh([]byte(mannequin))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Name != "SK_Mannequin" || m.Len() != 3 {
		t.Fatalf("expected 3 bodies of SK_Mannequin, got %d of %q", m.Len(), m.Name)
	}
	pelvis, ok := m.Body("pelvis")
	if !ok || pelvis.Parent != "root" || pelvis.Location.Y() != 90 {
		t.Fatalf("unexpected pelvis %+v", pelvis)
	}
	if root, _ := m.Body("root"); !root.Kinematic {
		t.Fatalf("expected kinematic root")
	}
	if !m.IsBelow("spine_01", "pelvis") {
		t.Fatalf("expected spine_01 below the pelvis")
	}

	profiles := m.Profiles()
	if profiles.Len() != 2 || !profiles.BodyInProfile("Grounded", "spine_01") || profiles.BodyInProfile("Ragdolling", "spine_01") {
		t.Fatalf("unexpected profiles %v", profiles.Names())
	}
	p, _ := profiles.Profile("Grounded")
	if params := p.Bodies["spine_01"]; params.OrientationStrength != 1000 || !params.IsLocalSimulation {
		t.Fatalf("unexpected body params %+v", params)
	}
}

func TestParseMeshErrors(t *testing.T) {
	tests := map[string]string{
		"invalid json":     `{"bodies": [`,
		"no bodies":        `{"name": "empty", "bodies": []}`,
		"missing bone":     `{"bodies": [{"parent": "root"}]}`,
		"duplicate bone":   `{"bodies": [{"bone": "root"}, {"bone": "root"}]}`,
		"child first":      `{"bodies": [{"bone": "pelvis", "parent": "root"}, {"bone": "root"}]}`,
		"unnamed profile":  `{"bodies": [{"bone": "root"}], "profiles": [{"bodies": {}}]}`,
		"profiles no list": `{"bodies": [{"bone": "root"}], "profiles": {"name": "Grounded"}}`,
	}
	for name, doc := range tests {
		if _, err := ParseMesh([]byte(doc)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestLoadMesh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mannequin.json")
	if err := os.WriteFile(path, []byte(mannequin), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := LoadMesh(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 bodies, got %d", m.Len())
	}
	if _, err := LoadMesh(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestSnapshot(t *testing.T) {
	m, err := ParseMesh([]byte(mannequin))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	anim := physanim.NewComponent(m.Mesh, nil, physanim.DefaultSettings(), nil)
	state := locomotion.State{Mode: locomotion.ModeGrounded, Overlay: locomotion.OverlayInjured}
	anim.Refresh(1.0/60, state, nil)

	data, err := Snapshot(state, anim)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !gjson.ValidBytes(data) {
		t.Fatalf("invalid snapshot %s", data)
	}
	if got := gjson.GetBytes(data, "state.mode").String(); got != "Grounded" {
		t.Fatalf("expected Grounded mode, got %q", got)
	}
	if got := gjson.GetBytes(data, "physicalAnimation.profiles.0").String(); got != "Grounded" {
		t.Fatalf("expected Grounded profile, got %s", data)
	}
	if n := gjson.GetBytes(data, "bodies.#").Int(); n != 3 {
		t.Fatalf("expected 3 bodies, got %d", n)
	}
	if !gjson.GetBytes(data, "bodies.2.simulating").Bool() || gjson.GetBytes(data, "bodies.0.simulating").Bool() {
		t.Fatalf("expected only spine_01 to simulate, got %s", data)
	}
	if y := gjson.GetBytes(data, "bodies.1.location.1").Float(); y != 90 {
		t.Fatalf("expected pelvis location in the snapshot, got %f", y)
	}
}
