package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// NewRandomSpheresScene creates the cover scene: a field of small random spheres
// around three large ones, all resting on a huge ground sphere. Placement and
// materials are drawn from seed; small spheres that would overlap a sphere already
// placed are skipped.
func NewRandomSpheresScene(seed uint64) *Scene {
	s := &Scene{
		Name: "random",
		SamplingConfig: SamplingConfig{
			Width:           600,
			Height:          400,
			SamplesPerPixel: 100,
			MaxDepth:        50,
		},
		// Everything sits on the ground, so the Y extent carries no information
		SplitAxes: []core.Axis{core.AxisX, core.AxisZ},
	}

	s.SetCamera(geometry.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		Aperture:      0.1,
		FocusDistance: 10,
	})

	random := core.NewRandomSampler(seed)

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))

	placed := []*geometry.Sphere{
		s.AddSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)),
		s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewColor(0.4, 0.2, 0.1))),
		s.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewColor(0.7, 0.6, 0.5), 0.0)),
	}

	// Small glass spheres share one material
	glass := material.NewDielectric(1.5)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			center := core.NewVec3(
				float64(a)+0.9*random.Get1D(),
				0.2,
				float64(b)+0.9*random.Get1D(),
			)
			candidate := geometry.NewSphere(center, 0.2)
			if overlapsAny(candidate, placed) {
				continue
			}

			var mat material.Material
			switch choose := random.Get1D(); {
			case choose < 0.8:
				mat = material.NewLambertian(core.NewColor(
					random.Get1D()*random.Get1D(),
					random.Get1D()*random.Get1D(),
					random.Get1D()*random.Get1D(),
				))
			case choose < 0.95:
				mat = material.NewMetal(core.NewColor(
					0.5*(1+random.Get1D()),
					0.5*(1+random.Get1D()),
					0.5*(1+random.Get1D()),
				), 0.5*random.Get1D())
			default:
				mat = glass
			}

			placed = append(placed, s.AddSphere(center, candidate.Radius, mat))
		}
	}

	return s
}

func overlapsAny(candidate *geometry.Sphere, placed []*geometry.Sphere) bool {
	for _, p := range placed {
		if candidate.Intersects(p) {
			return true
		}
	}
	return false
}
