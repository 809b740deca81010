package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// Exactly one of reflection or refraction is chosen per hit.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass does not absorb
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	direction := rayIn.Direction
	dirDotNormal := direction.Dot(hit.Normal)
	length := direction.Length()

	// Entering the medium: air to glass
	outwardNormal := hit.Normal
	niOverNt := 1.0 / d.RefractiveIndex
	cosine := -dirDotNormal / length

	if dirDotNormal > 0 {
		// Exiting the medium: glass to air
		outwardNormal = hit.Normal.Negate()
		niOverNt = d.RefractiveIndex
		cosine = d.RefractiveIndex * dirDotNormal / length
	}

	reflected := Reflect(direction.Normalize(), hit.Normal)

	// One draw per scatter, taken even under total internal reflection
	draw := sampler.Get1D()

	refracted, canRefract := Refract(direction, outwardNormal, niOverNt)
	if canRefract && draw >= Schlick(cosine, d.RefractiveIndex) {
		return ScatterResult{
			Scattered:   core.NewRay(hit.Point, refracted),
			Attenuation: attenuation,
		}, true
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, reflected),
		Attenuation: attenuation,
	}, true
}
