package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// fixedMaterial scatters into a fixed direction, or absorbs when absorb is set
type fixedMaterial struct {
	attenuation core.Color
	direction   func(hit core.HitRecord) core.Vec3
	absorb      bool
	calls       *int
}

func (m fixedMaterial) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	if m.calls != nil {
		*m.calls++
	}
	if m.absorb {
		return material.ScatterResult{}, false
	}
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, m.direction(hit)),
		Attenuation: m.attenuation,
	}, true
}

func colorNear(a, b core.Color, tolerance float64) bool {
	return math.Abs(a.R-b.R) <= tolerance &&
		math.Abs(a.G-b.G) <= tolerance &&
		math.Abs(a.B-b.B) <= tolerance
}

func TestPathTracingMissedRay(t *testing.T) {
	integrator := NewPathTracingIntegrator(DefaultConfig())
	empty := geometry.NewHittableList()
	sampler := core.NewRandomSampler(42)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Color
	}{
		{"straight down is white", core.NewVec3(0, -1, 0), core.White},
		{"straight up is sky blue", core.NewVec3(0, 3, 0), core.NewColor(0.5, 0.7, 1.0)},
		{"horizon is halfway", core.NewVec3(1, 0, 0), core.NewColor(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), tt.direction), empty, sampler)
			if !colorNear(got, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}

	if got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0)), empty, sampler); got != core.White {
		t.Errorf("Expected exactly white for a straight-down miss, got %v", got)
	}
}

func TestPathTracingAbsorption(t *testing.T) {
	calls := 0
	world := geometry.NewEntity(
		geometry.NewSphere(core.NewVec3(0, 0, -2), 1),
		fixedMaterial{absorb: true, calls: &calls},
	)
	integrator := NewPathTracingIntegrator(DefaultConfig())

	got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, core.NewRandomSampler(1))
	if got != core.Black {
		t.Errorf("Expected black for absorbed ray, got %v", got)
	}
	if calls != 1 {
		t.Errorf("Expected one scatter call, got %d", calls)
	}
}

func TestPathTracingDepthTermination(t *testing.T) {
	// A ray trapped inside a sphere bounces back and forth forever
	calls := 0
	trap := fixedMaterial{
		attenuation: core.White,
		direction:   func(hit core.HitRecord) core.Vec3 { return hit.Normal.Negate() },
		calls:       &calls,
	}
	world := geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, 0), 1), trap)

	integrator := NewPathTracingIntegrator(Config{MaxDepth: 7})
	got := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, core.NewRandomSampler(1))
	if got != core.Black {
		t.Errorf("Expected black after exhausting depth, got %v", got)
	}
	if calls != 7 {
		t.Errorf("Expected 7 bounces, got %d", calls)
	}
}

func TestPathTracingAttenuationAccumulates(t *testing.T) {
	// One bounce off the floor at half attenuation, then the sky straight up
	up := func(hit core.HitRecord) core.Vec3 { return core.NewVec3(0, 1, 0) }
	floor := geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, -100, 0), 99),
		fixedMaterial{attenuation: core.NewColor(0.5, 0.5, 0.5), direction: up})
	world := geometry.NewHittableList(floor)

	integrator := NewPathTracingIntegrator(DefaultConfig())
	got := integrator.RayColor(core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), world, core.NewRandomSampler(1))

	expected := core.NewColor(0.25, 0.35, 0.5)
	if !colorNear(got, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestPathTracingSimpleScene(t *testing.T) {
	ground := material.NewLambertian(core.NewColor(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewColor(0.1, 0.2, 0.5))
	world := geometry.NewHittableList(
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100), ground),
		geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5), center),
	)
	camera := geometry.NewAxisAlignedCamera(
		core.NewVec3(0, 0, 0),
		core.NewVec3(-2, -1, -1),
		core.NewVec3(4, 0, 0),
		core.NewVec3(0, 2, 0),
	)
	integrator := NewPathTracingIntegrator(DefaultConfig())
	sampler := core.NewRandomSampler(7)

	var sum core.Color
	const samples = 500
	for i := 0; i < samples; i++ {
		sum = sum.Add(integrator.RayColor(camera.GetRay(0.5, 0.5, sampler), world, sampler))
	}
	avg := sum.Divide(samples)

	// The blue sphere can never reflect more than its albedo
	if avg.R > 0.1+1e-9 || avg.G > 0.2+1e-9 || avg.B > 0.5+1e-9 {
		t.Errorf("Average %v exceeds sphere albedo", avg)
	}
	if avg.B <= 0 {
		t.Errorf("Expected some sky light to reach the camera, got %v", avg)
	}
}

func TestPathTracingDeterministic(t *testing.T) {
	world := geometry.NewEntity(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5), material.NewMetal(core.NewColor(0.8, 0.6, 0.2), 0.3))
	integrator := NewPathTracingIntegrator(DefaultConfig())
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0.1, 0.05, -1))

	a := integrator.RayColor(ray, world, core.NewRandomSampler(99))
	b := integrator.RayColor(ray, world, core.NewRandomSampler(99))
	if a != b {
		t.Errorf("Expected equal colors for equal seeds, got %v and %v", a, b)
	}
}
