package material

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Material decides what happens to a ray at a surface. Implementations are immutable
// after construction and shared by pointer across entities and render workers.
type Material interface {
	// Scatter returns the attenuation and the scattered ray, or false if the ray is absorbed.
	// hit.Normal is the raw geometric normal and may face away from the ray.
	Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray, starting at the hit point
	Attenuation core.Color // Color attenuation
}
