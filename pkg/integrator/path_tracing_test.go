package integrator

import (
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// countingMaterial always scatters back toward the origin and counts calls
type countingMaterial struct {
	calls  int
	absorb bool
}

func (m *countingMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	m.calls++
	if m.absorb {
		return material.ScatterResult{}, false
	}
	return material.ScatterResult{
		Scattered:   core.NewRay(hit.Point, hit.Point.Negate()),
		Attenuation: core.NewVec3(1, 1, 1),
	}, true
}

func TestGradientBackground_Exactness(t *testing.T) {
	sky := NewSkyBackground()

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight up unnormalized", core.NewVec3(0, 42, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -1, 0), core.NewVec3(1, 1, 1)},
		{"horizontal", core.NewVec3(1, 0, 0), core.NewVec3(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sky.Color(core.NewRay(core.NewVec3(0, 0, 0), tt.direction))
			if tt.name == "horizontal" {
				if !got.ApproxEquals(tt.expected, 1e-12) {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
				return
			}
			if !got.Equals(tt.expected) {
				t.Errorf("Expected exactly %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestGradientBackground_HorizontalIndependence(t *testing.T) {
	sky := NewSkyBackground()
	a := sky.Color(core.NewRay(core.Vec3{}, core.NewVec3(1, 0.3, 0).Normalize()))
	b := sky.Color(core.NewRay(core.Vec3{}, core.NewVec3(0, 0.3, -1).Normalize()))
	if !a.ApproxEquals(b, 1e-12) {
		t.Errorf("Gradient should only depend on y: %v vs %v", a, b)
	}
}

func TestPathTracing_MissReturnsBackground(t *testing.T) {
	pt := NewPathTracingIntegrator(DefaultMaxBounces)
	world := geometry.NewShapeList()
	sampler := core.NewSeededSampler(42)

	up := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), world, NewSkyBackground(), sampler)
	if !up.Equals(core.NewVec3(0.5, 0.7, 1.0)) {
		t.Errorf("Expected sky top color, got %v", up)
	}

	down := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0)), world, NewSkyBackground(), sampler)
	if !down.Equals(core.NewVec3(1, 1, 1)) {
		t.Errorf("Expected white, got %v", down)
	}
}

func TestPathTracing_AbsorbedIsBlack(t *testing.T) {
	mat := &countingMaterial{absorb: true}
	world := geometry.NewShapeList(geometry.NewSphere(core.NewVec3(0, 0, -2), 0.5, mat))
	pt := NewPathTracingIntegrator(DefaultMaxBounces)

	color := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, NewSkyBackground(), core.NewSeededSampler(1))
	if !color.Equals(core.Vec3{}) {
		t.Errorf("Expected black for absorbed ray, got %v", color)
	}
	if mat.calls != 1 {
		t.Errorf("Expected one scatter call, got %d", mat.calls)
	}
}

func TestPathTracing_BounceBudget(t *testing.T) {
	tests := []struct {
		name     string
		maxDepth int
	}{
		{"zero budget", 0},
		{"one bounce", 1},
		{"default budget", DefaultMaxBounces},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Camera inside a closed sphere whose material never lets the ray escape
			mat := &countingMaterial{}
			world := geometry.NewShapeList(geometry.NewSphere(core.NewVec3(0, 0, 0), 10, mat))
			pt := NewPathTracingIntegrator(tt.maxDepth)

			color := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, NewSkyBackground(), core.NewSeededSampler(1))
			if !color.Equals(core.Vec3{}) {
				t.Errorf("Expected black once the budget is exhausted, got %v", color)
			}
			if mat.calls != tt.maxDepth {
				t.Errorf("Expected %d scatter calls, got %d", tt.maxDepth, mat.calls)
			}
		})
	}
}

func TestPathTracing_LambertianEnergyBound(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.4, 0.3)
	world := geometry.NewShapeList(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(albedo)))
	pt := NewPathTracingIntegrator(DefaultMaxBounces)
	sampler := core.NewSeededSampler(42)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	const samples = 20000
	sum := core.Vec3{}
	for i := 0; i < samples; i++ {
		sum = sum.Add(pt.RayColor(ray, world, NewSkyBackground(), sampler))
	}
	mean := sum.Divide(samples)

	// The sky never exceeds 1, so each sample is bounded by the albedo
	const tolerance = 1e-9
	if mean.X > albedo.X+tolerance || mean.Y > albedo.Y+tolerance || mean.Z > albedo.Z+tolerance {
		t.Errorf("Mean radiance %v exceeds albedo %v", mean, albedo)
	}
	if mean.X <= 0 || mean.Y <= 0 || mean.Z <= 0 {
		t.Errorf("Lit diffuse sphere should not be black, got %v", mean)
	}
}

// recursiveColor is the textbook recursive formulation used as a reference
func recursiveColor(ray core.Ray, world geometry.Shape, background Background, sampler core.Sampler, depth, maxDepth int) core.Vec3 {
	hit, isHit := world.Hit(ray, ShadowEpsilon, math.Inf(1))
	if !isHit {
		return background.Color(ray)
	}
	if depth >= maxDepth {
		return core.Vec3{}
	}
	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}
	return scatter.Attenuation.MultiplyVec(recursiveColor(scatter.Scattered, world, background, sampler, depth+1, maxDepth))
}

func TestPathTracing_MatchesRecursiveFormulation(t *testing.T) {
	world := geometry.NewShapeList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, material.NewDielectric(1.5)),
	)
	background := NewSkyBackground()

	for _, maxDepth := range []int{0, 1, 3, DefaultMaxBounces} {
		pt := NewPathTracingIntegrator(maxDepth)
		iterSampler := core.NewSeededSampler(7)
		recSampler := core.NewSeededSampler(7)
		dirSampler := core.NewSeededSampler(3)

		for i := 0; i < 500; i++ {
			d := dirSampler.Get2D()
			ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(2*d.X-1, d.Y-0.5, -1))

			got := pt.RayColor(ray, world, background, iterSampler)
			want := recursiveColor(ray, world, background, recSampler, 0, maxDepth)
			if !got.ApproxEquals(want, 1e-12) {
				t.Fatalf("maxDepth %d ray %d: iterative %v != recursive %v", maxDepth, i, got, want)
			}
		}
	}
}
