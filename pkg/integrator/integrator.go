package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the linear RGB radiance carried back along ray
	RayColor(ray core.Ray, world geometry.Shape, background Background, sampler core.Sampler) core.Vec3
}

// Background supplies the radiance of rays that escape the scene
type Background interface {
	Color(ray core.Ray) core.Vec3
}

// GradientBackground is a vertical sky gradient independent of horizontal direction
type GradientBackground struct {
	Top    core.Vec3 // Color for rays pointing straight up
	Bottom core.Vec3 // Color for rays pointing straight down
}

// NewGradientBackground creates a gradient background
func NewGradientBackground(top, bottom core.Vec3) *GradientBackground {
	return &GradientBackground{Top: top, Bottom: bottom}
}

// NewSkyBackground returns the white-to-sky-blue gradient
func NewSkyBackground() *GradientBackground {
	return NewGradientBackground(core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1.0, 1.0, 1.0))
}

// Color implements Background
func (g *GradientBackground) Color(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return g.Bottom.Lerp(g.Top, t)
}
