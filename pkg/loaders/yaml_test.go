package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

const marblesYAML = `
name: marbles
camera:
  look_from: [13, 2, 3]
  look_at: [0, 0, 0]
  up: [0, 1, 0]
  vfov: 20
  aperture: 0.1
  focus_distance: 10
render:
  width: 300
  height: 150
  samples: 16
split_axes: [x, z]
materials:
  ground:
    type: lambertian
    albedo: [0.5, 0.5, 0.5]
  gold:
    type: metal
    albedo: [0.8, 0.6, 0.2]
    fuzz: 0.3
  glass:
    type: dielectric
    index: 1.5
spheres:
  - {center: [0, -1000, 0], radius: 1000, material: ground}
  - {center: [0, 1, 0], radius: 1, material: glass}
  - {center: [0, 1, 0], radius: -0.9, material: glass}
  - {center: [4, 1, 0], radius: 1, material: gold}
`

func TestParseSceneYAML(t *testing.T) {
	s, err := ParseSceneYAML(strings.NewReader(marblesYAML))
	if err != nil {
		t.Fatalf("ParseSceneYAML failed: %v", err)
	}

	if s.Name != "marbles" {
		t.Errorf("Expected name marbles, got %q", s.Name)
	}
	if s.GetPrimitiveCount() != 4 {
		t.Fatalf("Expected 4 spheres, got %d", s.GetPrimitiveCount())
	}
	if diff := cmp.Diff([]core.Axis{core.AxisX, core.AxisZ}, s.SplitAxes); diff != "" {
		t.Errorf("Split axes mismatch (-want +got):\n%s", diff)
	}

	// Zero max_depth keeps the default
	if s.SamplingConfig.Width != 300 || s.SamplingConfig.Height != 150 ||
		s.SamplingConfig.SamplesPerPixel != 16 || s.SamplingConfig.MaxDepth != 50 {
		t.Errorf("Unexpected sampling config %+v", s.SamplingConfig)
	}

	if s.CameraConfig.Center != core.NewVec3(13, 2, 3) || s.CameraConfig.VFov != 20 ||
		s.CameraConfig.Aperture != 0.1 || s.CameraConfig.FocusDistance != 10 {
		t.Errorf("Unexpected camera config %+v", s.CameraConfig)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio 2 from render size, got %f", s.CameraConfig.AspectRatio)
	}
	if s.Camera == nil {
		t.Error("Expected camera to be built")
	}
}

func TestParseSceneYAML_SharedMaterials(t *testing.T) {
	s, err := ParseSceneYAML(strings.NewReader(marblesYAML))
	if err != nil {
		t.Fatalf("ParseSceneYAML failed: %v", err)
	}

	outer := s.Entities[1].(*geometry.Entity)
	inner := s.Entities[2].(*geometry.Entity)
	if outer.Material != inner.Material {
		t.Error("Expected spheres naming the same material to share it")
	}
	if inner.Shape.(*geometry.Sphere).Radius != -0.9 {
		t.Errorf("Expected negative radius to be kept, got %f", inner.Shape.(*geometry.Sphere).Radius)
	}

	gold, ok := s.Entities[3].(*geometry.Entity).Material.(*material.Metal)
	if !ok {
		t.Fatalf("Expected *material.Metal, got %T", s.Entities[3].(*geometry.Entity).Material)
	}
	if gold.Fuzzness != 0.3 || gold.Albedo != core.NewColor(0.8, 0.6, 0.2) {
		t.Errorf("Unexpected metal %+v", gold)
	}
}

func TestParseSceneYAML_Preprocess(t *testing.T) {
	s, err := ParseSceneYAML(strings.NewReader(marblesYAML))
	if err != nil {
		t.Fatalf("ParseSceneYAML failed: %v", err)
	}
	if err := s.Preprocess(core.NewRandomSampler(1)); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if s.World == nil {
		t.Error("Expected world to be built")
	}
}

func TestParseSceneYAML_Defaults(t *testing.T) {
	s, err := ParseSceneYAML(strings.NewReader(`
materials:
  white: {type: lambertian, albedo: [1, 1, 1]}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: white}
`))
	if err != nil {
		t.Fatalf("ParseSceneYAML failed: %v", err)
	}

	if s.SamplingConfig.Width != 400 || s.SamplingConfig.Height != 200 {
		t.Errorf("Expected default 400x200, got %dx%d", s.SamplingConfig.Width, s.SamplingConfig.Height)
	}
	if s.CameraConfig.VFov != 90 {
		t.Errorf("Expected default vfov 90, got %f", s.CameraConfig.VFov)
	}
	if s.CameraConfig.LookAt != core.NewVec3(0, 0, -1) {
		t.Errorf("Expected camera to look down -z, got %v", s.CameraConfig.LookAt)
	}
	if len(s.SplitAxes) != 0 {
		t.Errorf("Expected no split axes, got %v", s.SplitAxes)
	}
}

func TestParseSceneYAML_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{
			name:    "empty document",
			content: "",
			errText: "empty scene description",
		},
		{
			name:    "no spheres",
			content: "materials:\n  a: {type: lambertian}\n",
			errText: "no spheres",
		},
		{
			name:    "unknown key",
			content: "sphere: []\n",
			errText: "decoding scene",
		},
		{
			name: "unknown material reference",
			content: `
materials:
  a: {type: lambertian}
spheres:
  - {center: [0, 0, 0], radius: 1, material: b}
`,
			errText: `unknown material "b"`,
		},
		{
			name: "unknown material type",
			content: `
materials:
  a: {type: plastic}
spheres:
  - {center: [0, 0, 0], radius: 1, material: a}
`,
			errText: `unknown type "plastic"`,
		},
		{
			name: "dielectric without index",
			content: `
materials:
  a: {type: dielectric}
spheres:
  - {center: [0, 0, 0], radius: 1, material: a}
`,
			errText: "refractive index must be positive",
		},
		{
			name: "zero radius",
			content: `
materials:
  a: {type: lambertian}
spheres:
  - {center: [0, 0, 0], radius: 0, material: a}
`,
			errText: "radius must be non-zero",
		},
		{
			name: "bad split axis",
			content: `
split_axes: [w]
materials:
  a: {type: lambertian}
spheres:
  - {center: [0, 0, 0], radius: 1, material: a}
`,
			errText: `unknown split axis "w"`,
		},
		{
			name: "looking straight down",
			content: `
camera: {look_from: [0, 5, 0], look_at: [0, 0, 0]}
materials:
  a: {type: lambertian}
spheres:
  - {center: [0, 0, 0], radius: 1, material: a}
`,
			errText: "parallel to up",
		},
		{
			name: "view along explicit up",
			content: `
camera: {look_from: [0, 0, 3], look_at: [0, 0, 0], up: [0, 0, -2]}
materials:
  a: {type: lambertian}
spheres:
  - {center: [0, 0, 0], radius: 1, material: a}
`,
			errText: "parallel to up",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSceneYAML(strings.NewReader(tt.content))
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing %q, got %q", tt.errText, err.Error())
			}
		})
	}
}

func TestLoadSceneYAML(t *testing.T) {
	dir := t.TempDir()

	t.Run("name from file", func(t *testing.T) {
		path := filepath.Join(dir, "single.yml")
		content := "materials:\n  a: {type: lambertian}\nspheres:\n  - {center: [0, 0, -1], radius: 0.5, material: a}\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write scene: %v", err)
		}
		s, err := LoadSceneYAML(path)
		if err != nil {
			t.Fatalf("LoadSceneYAML failed: %v", err)
		}
		if s.Name != "single" {
			t.Errorf("Expected name single, got %q", s.Name)
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		if _, err := LoadSceneYAML(filepath.Join(dir, "scene.pbrt")); err == nil {
			t.Error("Expected error for non-YAML file")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSceneYAML(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := LoadSceneYAML(""); err == nil {
			t.Error("Expected error for empty path")
		}
	})
}
