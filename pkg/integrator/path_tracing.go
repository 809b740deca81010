package integrator

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

const (
	// DefaultMaxBounces is the default number of scatter events per path
	DefaultMaxBounces = 12

	// ShadowEpsilon keeps scattered rays from re-hitting the surface they left
	ShadowEpsilon = 0.001
)

// PathTracingIntegrator implements single-sample-path unidirectional path tracing
type PathTracingIntegrator struct {
	MaxDepth int // Scatter events allowed before a path is cut to black
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{MaxDepth: maxDepth}
}

// RayColor walks the scattering chain until the ray escapes to the background,
// is absorbed, or exhausts the bounce budget. Hitting a surface with the budget
// spent returns black; the lost energy is an accepted bias.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, background Background, sampler core.Sampler) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)

	for depth := 0; ; depth++ {
		hit, isHit := world.Hit(ray, ShadowEpsilon, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(background.Color(ray))
		}

		if depth >= pt.MaxDepth {
			return core.Vec3{}
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}
}
