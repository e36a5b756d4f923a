package scene

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Color {
	// Convert hue from degrees to radians
	hRad := h * math.Pi / 180.0

	// Convert from OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// Convert from OKLAB to linear RGB
	// Using simplified approximation for OKLAB to RGB conversion
	// This is not perfectly accurate but good enough for our purposes

	// First convert to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	// Cube the values
	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// Convert LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	// Clamp to [0, 1] range
	r = math.Max(0, math.Min(1, r))
	g = math.Max(0, math.Min(1, g))
	blue = math.Max(0, math.Min(1, blue))

	return core.NewColor(r, g, blue)
}

// NewSphereGridScene creates a scene with a grid of metal spheres on a gray ground,
// hue varying along X and chroma along Z
func NewSphereGridScene(cameraOverrides ...geometry.CameraConfig) *Scene {
	s := &Scene{
		Name: "grid",
		SamplingConfig: SamplingConfig{
			Width:           800,
			Height:          450,
			SamplesPerPixel: 100,
			MaxDepth:        40,
		},
		// The grid lies flat, so only split across the ground plane
		SplitAxes: []core.Axis{core.AxisX, core.AxisZ},
	}

	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(4.5, 6, 18),    // Position camera farther back and slightly lower
		LookAt:        core.NewVec3(4.5, 0.8, 4.5), // Look at center of grid, slightly lower
		Up:            core.NewVec3(0, 1, 0),       // Standard up direction
		VFov:          40.0,                        // Narrow enough to frame the grid
		Aperture:      0.02,                        // Small depth of field for some focus variation
		FocusDistance: 0.0,                         // Auto-calculate focus distance
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = mergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	s.SetCamera(cameraConfig)

	// Ground sphere large enough to look flat under the grid
	s.AddSphere(core.NewVec3(4.5, -10000, 4.5), 10000, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))

	// 20x20 spheres scaled to fill the same view as a coarser grid would
	gridSize := 20

	// Fit the grid in roughly 9x9 units around the look-at point
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)

	// Radius follows the spacing, within visible bounds
	sphereRadius := spacing * 0.35 // 35% of spacing
	minRadius := 0.02              // Smallest radius still visible from the camera
	maxRadius := 0.35              // Radius used by a 10x10 grid
	sphereRadius = math.Max(minRadius, math.Min(maxRadius, sphereRadius))

	// OKLCH parameters for color variation
	baseLightness := 0.65 // Near constant so hue and chroma dominate
	minChroma := 0.05     // Almost gray
	maxChroma := 0.25     // Vivid

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5 // Center around x=4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5 // Center around z=4.5
			y := sphereRadius                              // Sphere sits on the ground

			// Hue sweeps the full circle along X
			hue := (float64(i) / float64(gridSize-1)) * 360.0

			// Chroma rises from gray to vivid along Z
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)

			// Small diagonal ripple in lightness
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			// Three roughness levels repeating across the diagonals
			roughness := 0.05 + 0.1*float64((i+j)%3)/2.0
			s.AddSphere(core.NewVec3(x, y, z), sphereRadius,
				material.NewMetal(oklchToRGB(lightness, chroma, hue), roughness))
		}
	}

	return s
}
