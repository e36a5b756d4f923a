package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering
func (d *Dielectric) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := rayIn.Direction
	dirDotNormal := direction.Dot(hit.Normal)

	// Leaving the surface when the ray travels along the normal
	var outwardNormal core.Vec3
	var ratio, cosine float64
	if dirDotNormal > 0 {
		outwardNormal = hit.Normal.Negate()
		ratio = d.RefractiveIndex
		cosine = d.RefractiveIndex * dirDotNormal / direction.Length()
	} else {
		outwardNormal = hit.Normal
		ratio = 1.0 / d.RefractiveIndex
		cosine = -dirDotNormal / direction.Length()
	}

	reflectProb := 1.0
	refracted, ok := Refract(direction, outwardNormal, ratio)
	if ok {
		reflectProb = Schlick(cosine, d.RefractiveIndex)
	}

	scatteredDir := refracted
	if sampler.Get1D() < reflectProb {
		scatteredDir = Reflect(direction, hit.Normal)
	}

	// Glass does not absorb
	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatteredDir),
		Attenuation: core.White,
	}, true
}

// Reflect mirrors v about the surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends v through a surface with normal n using Snell's law, where ratio is
// the incident over the transmitted refractive index. It returns false on total
// internal reflection.
func Refract(v, n core.Vec3, ratio float64) (core.Vec3, bool) {
	uv := v.Normalize()
	dt := uv.Dot(n)
	discriminant := 1.0 - ratio*ratio*(1-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return uv.Subtract(n.Multiply(dt)).Multiply(ratio).Subtract(n.Multiply(math.Sqrt(discriminant))), true
}

// Schlick approximates Fresnel reflectance for a cosine of incidence and a refractive index
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
