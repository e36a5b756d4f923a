package loaders

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
)

// SceneFile is the YAML form of a scene
type SceneFile struct {
	Name      string                  `yaml:"name"`
	Camera    CameraSpec              `yaml:"camera"`
	Render    RenderSpec              `yaml:"render"`
	SplitAxes []string                `yaml:"split_axes"`
	Materials map[string]MaterialSpec `yaml:"materials"`
	Spheres   []SphereSpec            `yaml:"spheres"`
}

// CameraSpec mirrors geometry.CameraConfig
type CameraSpec struct {
	LookFrom      [3]float64 `yaml:"look_from"`
	LookAt        [3]float64 `yaml:"look_at"`
	Up            [3]float64 `yaml:"up"`
	VFov          float64    `yaml:"vfov"`
	Aperture      float64    `yaml:"aperture"`
	FocusDistance float64    `yaml:"focus_distance"`
}

// RenderSpec overrides the default sampling settings. Zero fields keep the defaults.
type RenderSpec struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	SamplesPerPixel int `yaml:"samples"`
	MaxDepth        int `yaml:"max_depth"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type   string     `yaml:"type"` // lambertian, metal or dielectric
	Albedo [3]float64 `yaml:"albedo"`
	Fuzz   float64    `yaml:"fuzz"`
	Index  float64    `yaml:"index"`
}

// SphereSpec places a sphere using a material by name
type SphereSpec struct {
	Center   [3]float64 `yaml:"center"`
	Radius   float64    `yaml:"radius"`
	Material string     `yaml:"material"`
}

// LoadSceneYAML loads a scene from a .yaml or .yml file. The scene name defaults to
// the file name without its extension.
func LoadSceneYAML(filename string) (*scene.Scene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open scene file")
	}
	defer file.Close()

	s, err := ParseSceneYAML(file)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", filename)
	}
	if s.Name == "" {
		base := filepath.Base(filename)
		s.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return s, nil
}

// ParseSceneYAML decodes a scene description and builds the scene. Unknown keys are
// rejected. Materials are created once and shared by every sphere that names them.
func ParseSceneYAML(r io.Reader) (*scene.Scene, error) {
	var file SceneFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, errors.New("empty scene description")
		}
		return nil, errors.Wrap(err, "decoding scene")
	}
	return file.Build()
}

// Build converts the description into a scene ready for Preprocess
func (f *SceneFile) Build() (*scene.Scene, error) {
	if len(f.Spheres) == 0 {
		return nil, errors.New("scene has no spheres")
	}

	sampling := scene.DefaultSamplingConfig()
	if f.Render.Width > 0 {
		sampling.Width = f.Render.Width
	}
	if f.Render.Height > 0 {
		sampling.Height = f.Render.Height
	}
	if f.Render.SamplesPerPixel > 0 {
		sampling.SamplesPerPixel = f.Render.SamplesPerPixel
	}
	if f.Render.MaxDepth > 0 {
		sampling.MaxDepth = f.Render.MaxDepth
	}

	s := &scene.Scene{Name: f.Name, SamplingConfig: sampling}

	for _, name := range f.SplitAxes {
		axis, ok := core.ParseAxis(name)
		if !ok {
			return nil, errors.Errorf("unknown split axis %q", name)
		}
		s.SplitAxes = append(s.SplitAxes, axis)
	}

	materials := make(map[string]material.Material, len(f.Materials))
	for name, spec := range f.Materials {
		mat, err := spec.build()
		if err != nil {
			return nil, errors.Wrapf(err, "material %q", name)
		}
		materials[name] = mat
	}

	for i, sp := range f.Spheres {
		if sp.Radius == 0 {
			return nil, errors.Errorf("sphere %d: radius must be non-zero", i)
		}
		mat, ok := materials[sp.Material]
		if !ok {
			return nil, errors.Errorf("sphere %d: unknown material %q", i, sp.Material)
		}
		s.AddSphere(vec(sp.Center), sp.Radius, mat)
	}

	cam := f.Camera
	if cam.VFov <= 0 {
		cam.VFov = 90
	}
	if vec(cam.LookFrom) == vec(cam.LookAt) {
		cam.LookAt[2] = cam.LookFrom[2] - 1
	}
	// The camera basis is built from up × view, which vanishes when they are parallel
	up, view := vec(cam.Up), vec(cam.LookFrom).Subtract(vec(cam.LookAt))
	if up == (core.Vec3{}) {
		up = core.NewVec3(0, 1, 0)
	}
	if up.Cross(view).LengthSquared() <= 1e-12*up.LengthSquared()*view.LengthSquared() {
		return nil, errors.Errorf("camera view direction %v is parallel to up %v", view, up)
	}
	s.SetCamera(geometry.CameraConfig{
		Center:        vec(cam.LookFrom),
		LookAt:        vec(cam.LookAt),
		Up:            vec(cam.Up),
		VFov:          cam.VFov,
		Aperture:      cam.Aperture,
		FocusDistance: cam.FocusDistance,
	})

	return s, nil
}

func (m MaterialSpec) build() (material.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(color(m.Albedo)), nil
	case "metal":
		return material.NewMetal(color(m.Albedo), m.Fuzz), nil
	case "dielectric", "glass":
		if m.Index <= 0 {
			return nil, errors.Errorf("refractive index must be positive, got %g", m.Index)
		}
		return material.NewDielectric(m.Index), nil
	case "":
		return nil, errors.New("missing type")
	default:
		return nil, errors.Errorf("unknown type %q", m.Type)
	}
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func color(c [3]float64) core.Color {
	return core.NewColor(c[0], c[1], c[2])
}

// validateFilePath rejects paths that cannot name a scene file
func validateFilePath(filename string) error {
	if filename == "" {
		return errors.New("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return errors.New("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return errors.New("file path too long: maximum 512 characters allowed")
	}
	switch strings.ToLower(filepath.Ext(cleanPath)) {
	case ".yaml", ".yml":
	default:
		return errors.Errorf("invalid file type %q: only .yaml and .yml files are allowed", filepath.Ext(cleanPath))
	}
	return nil
}
