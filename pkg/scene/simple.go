package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewSimpleScene creates a diffuse sphere resting on a huge ground sphere, seen by
// a camera at the origin looking down -Z with a 4x2 image plane one unit away
func NewSimpleScene() *Scene {
	s := &Scene{
		Name:           "simple",
		SamplingConfig: DefaultSamplingConfig(),
	}

	// 90 degree vertical field of view with a 2:1 aspect gives the image plane
	// lower-left (-2,-1,-1), horizontal (4,0,0), vertical (0,2,0)
	s.SetCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewColor(0.8, 0.8, 0.0)))
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewColor(0.1, 0.2, 0.5)))
	return s
}
