package material

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo    core.Vec3 // Metal color
	Roughness float64   // 0.0 = perfect mirror, 1.0 = very rough
}

// NewMetal creates a new metal material, clamping roughness to [0, 1]
func NewMetal(albedo core.Vec3, roughness float64) *Metal {
	return &Metal{Albedo: albedo, Roughness: mgl64.Clamp(roughness, 0, 1)}
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)

	// Perturb the mirror direction (one sphere sample per scatter, even at zero roughness)
	perturbation := core.RandomInUnitSphere(sampler).Multiply(m.Roughness)
	scattered := core.NewRay(hit.Point, reflected.Add(perturbation))

	// Rays perturbed below the surface are absorbed
	if scattered.Direction.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, true
}
