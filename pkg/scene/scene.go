package scene

import (
	"fmt"
	"sort"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Entities       []geometry.Hittable // Objects in the scene
	SplitAxes      []core.Axis         // Candidate BVH split axes, all three when empty
	SamplingConfig SamplingConfig
	World          geometry.Hittable // Acceleration structure, set by Preprocess
}

// SamplingConfig contains the scene's preferred render settings
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of frames to accumulate
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns the settings used when a scene does not override them
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          200,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// AddSphere adds a sphere with the given material to the scene and returns it
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius)
	s.Entities = append(s.Entities, geometry.NewEntity(sphere, mat))
	return sphere
}

// SetCamera builds the camera from config, filling the aspect ratio from the
// sampling config when it is unset
func (s *Scene) SetCamera(config geometry.CameraConfig) {
	if config.AspectRatio <= 0 && s.SamplingConfig.Height > 0 {
		config.AspectRatio = float64(s.SamplingConfig.Width) / float64(s.SamplingConfig.Height)
	}
	s.CameraConfig = config
	s.Camera = geometry.NewCamera(config)
}

// Preprocess builds the BVH over the scene's entities
func (s *Scene) Preprocess(sampler core.Sampler) error {
	world, err := geometry.BuildBVH(s.Entities, s.SplitAxes, sampler)
	if err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	s.World = world
	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Entities)
}

// builder creates a built-in scene from a seed for its random placement
type builder func(seed uint64) *Scene

var builtins = map[string]builder{
	"simple": func(uint64) *Scene { return NewSimpleScene() },
	"random": NewRandomSpheresScene,
	"glass":  func(uint64) *Scene { return NewDefaultScene() },
	"grid":   func(uint64) *Scene { return NewSphereGridScene() },
}

// BuiltinNames returns the names accepted by NewBuiltin, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBuiltin creates the named built-in scene
func NewBuiltin(name string, seed uint64) (*Scene, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (available: %v)", name, BuiltinNames())
	}
	return build(seed), nil
}
