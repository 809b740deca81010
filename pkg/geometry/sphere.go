package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// Sphere represents a sphere shape. A negative radius flips the normal
// inward, which is how hollow glass shells are modelled.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Hit tests if a ray intersects with the sphere within the open interval (tMin, tMax)
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	if a <= 0 {
		return nil, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	// Tangent rays count as misses
	discriminant := halfB*halfB - a*c
	if discriminant <= 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	for _, root := range [2]float64{(-halfB - sqrtD) / a, (-halfB + sqrtD) / a} {
		if root > tMin && root < tMax {
			point := ray.At(root)
			return &material.HitRecord{
				T:        root,
				Point:    point,
				Normal:   point.Subtract(s.Center).Divide(s.Radius),
				Material: s.Material,
			}, true
		}
	}

	return nil, false
}

// Validate rejects spheres that would divide by zero or carry no material
func (s *Sphere) Validate() error {
	if s.Radius == 0 || math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("%w: radius %v", ErrDegenerateSphere, s.Radius)
	}
	if !s.Center.IsFinite() {
		return fmt.Errorf("%w: center %v", ErrDegenerateSphere, s.Center)
	}
	if s.Material == nil {
		return fmt.Errorf("%w: no material", ErrDegenerateSphere)
	}
	return nil
}
