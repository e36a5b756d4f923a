package integrator

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// Config controls the random walk
type Config struct {
	MaxDepth int     // Maximum number of bounces before the path is dropped
	MinT     float64 // Lower bound of the hit interval, avoids shadow acne
}

// DefaultConfig returns the standard walk settings
func DefaultConfig() Config {
	return Config{
		MaxDepth: 50,
		MinT:     1e-3,
	}
}

var skyColor = core.NewColor(0.5, 0.7, 1.0)

// PathTracingIntegrator implements unidirectional path tracing as an iterative walk
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator.
// Zero fields in config fall back to DefaultConfig.
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	defaults := DefaultConfig()
	if config.MaxDepth <= 0 {
		config.MaxDepth = defaults.MaxDepth
	}
	if config.MinT <= 0 {
		config.MinT = defaults.MinT
	}
	return &PathTracingIntegrator{config: config}
}

// RayColor follows the ray through the world, multiplying attenuation at every scatter.
// A miss returns the sky seen through the accumulated attenuation; absorption and
// running out of bounces both return black.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler) core.Color {
	attenuation := core.White

	for depth := 0; depth < pt.config.MaxDepth; depth++ {
		hit, isHit := world.Hit(ray, pt.config.MinT, math.Inf(1))
		if !isHit {
			return attenuation.MultiplyColor(BackgroundGradient(ray))
		}

		scatter, didScatter := hit.Material.Scatter(ray, hit.HitRecord, sampler)
		if !didScatter {
			return core.Black
		}

		attenuation = attenuation.MultiplyColor(scatter.Attenuation)
		ray = scatter.Scattered
	}

	return core.Black
}

// BackgroundGradient blends white at the nadir to light blue at the zenith
// using the normalized vertical component of the ray direction
func BackgroundGradient(ray core.Ray) core.Color {
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return core.White.Lerp(skyColor, t)
}
