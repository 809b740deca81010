package material

import (
	"math/rand"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

func TestNewMetal_RoughnessClamp(t *testing.T) {
	tests := []struct {
		name              string
		inputRoughness    float64
		expectedRoughness float64
	}{
		{"Valid roughness 0.0", 0.0, 0.0},
		{"Valid roughness 0.5", 0.5, 0.5},
		{"Valid roughness 1.0", 1.0, 1.0},
		{"Clamp above 1.0", 1.5, 1.0},
		{"Clamp below 0.0", -0.5, 0.0},
		{"Clamp large positive", 10.0, 1.0},
		{"Clamp large negative", -10.0, 0.0},
	}

	albedo := core.NewVec3(0.8, 0.8, 0.8)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(albedo, tt.inputRoughness)
			if metal.Roughness != tt.expectedRoughness {
				t.Errorf("Expected roughness %f, got %f", tt.expectedRoughness, metal.Roughness)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewVec3(0.9, 0.9, 0.9)
	metal := NewMetal(albedo, 0.0)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	// Ray hitting surface at 45 degrees
	rayIn := core.NewRay(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1))
	hit := HitRecord{
		Point:  core.NewVec3(0, 0, 0),
		Normal: core.NewVec3(0, 0, 1),
	}

	scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
	if !didScatter {
		t.Fatal("Metal should scatter")
	}

	// Incident (0, -1, -1) normalized reflects to (0, -0.707, 0.707)
	expected := core.NewVec3(0, -1, 1).Normalize()
	actual := scatter.Scattered.Direction

	tolerance := 1e-10
	if actual.Subtract(expected).Length() > tolerance {
		t.Errorf("Perfect reflection failed: expected %v, got %v", expected, actual)
	}

	if !scatter.Attenuation.Equals(albedo) {
		t.Errorf("Attenuation should equal albedo: expected %v, got %v", albedo, scatter.Attenuation)
	}
}

func TestMetal_RoughReflectionStaysAboveSurface(t *testing.T) {
	metal := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.5)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	rayIn := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1)}

	absorbed := 0
	for i := 0; i < 1000; i++ {
		scatter, didScatter := metal.Scatter(rayIn, hit, sampler)
		if !didScatter {
			absorbed++
			continue
		}
		if scatter.Scattered.Direction.Dot(hit.Normal) <= 0 {
			t.Fatalf("Scattered direction %v points into the surface", scatter.Scattered.Direction)
		}
	}

	// Head-on reflection with roughness 0.5 can never dip below the surface
	if absorbed != 0 {
		t.Errorf("Expected no absorption for head-on rough reflection, got %d", absorbed)
	}
}

func TestMetal_AbsorbsPerturbationIntoSurface(t *testing.T) {
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 0, 1)}
	// Grazing ray: the mirror direction is barely above the surface
	rayIn := core.NewRay(core.NewVec3(-1, 0, 0.01), core.NewVec3(1, 0, -0.01))

	// (0.5, 0.5, 0.05) maps to the unit-sphere point (0, 0, -0.9)
	perturbation := []float64{0.5, 0.5, 0.05}

	mirror := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	if _, didScatter := mirror.Scatter(rayIn, hit, core.NewSequenceSampler(perturbation...)); !didScatter {
		t.Fatal("Unperturbed grazing reflection should scatter")
	}

	rough := NewMetal(core.NewVec3(0.8, 0.8, 0.8), 1.0)
	if scatter, didScatter := rough.Scatter(rayIn, hit, core.NewSequenceSampler(perturbation...)); didScatter {
		t.Errorf("Expected absorption when perturbation points into surface, got %v", scatter.Scattered.Direction)
	}
}
