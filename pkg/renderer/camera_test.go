package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

const cameraTolerance = 1e-9

func testCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 2.0,
		VFov:        90.0,
	}
}

func TestCamera_ImagePlane(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	if !camera.lowerLeftCorner.ApproxEquals(core.NewVec3(-2, -1, -1), cameraTolerance) {
		t.Errorf("lower left corner = %v, want (-2,-1,-1)", camera.lowerLeftCorner)
	}
	if !camera.horizontal.ApproxEquals(core.NewVec3(4, 0, 0), cameraTolerance) {
		t.Errorf("horizontal = %v, want (4,0,0)", camera.horizontal)
	}
	if !camera.vertical.ApproxEquals(core.NewVec3(0, 2, 0), cameraTolerance) {
		t.Errorf("vertical = %v, want (0,2,0)", camera.vertical)
	}
	if math.Abs(camera.FocusDistance()-1.0) > cameraTolerance {
		t.Errorf("auto focus distance = %v, want 1", camera.FocusDistance())
	}
}

func TestCamera_BasisOrthonormal(t *testing.T) {
	configs := []CameraConfig{
		testCameraConfig(),
		{
			Center:      core.NewVec3(13, 2, 3),
			LookAt:      core.NewVec3(0, 0, 0),
			Up:          core.NewVec3(0, 1, 0),
			AspectRatio: 1.5,
			VFov:        20,
		},
		{
			Center:      core.NewVec3(-2, 2, 1),
			LookAt:      core.NewVec3(0, 0, -1),
			Up:          core.NewVec3(0, 3, 0), // Non-unit up
			AspectRatio: 1,
			VFov:        40,
		},
	}

	for i, config := range configs {
		u, v, w := NewCamera(config).Basis()

		for name, vec := range map[string]core.Vec3{"u": u, "v": v, "w": w} {
			if math.Abs(vec.Length()-1) > cameraTolerance {
				t.Errorf("config %d: |%s| = %v, want 1", i, name, vec.Length())
			}
		}
		if math.Abs(u.Dot(v)) > cameraTolerance || math.Abs(u.Dot(w)) > cameraTolerance || math.Abs(v.Dot(w)) > cameraTolerance {
			t.Errorf("config %d: basis not orthogonal: u=%v v=%v w=%v", i, u, v, w)
		}

		// w points from the target back towards the camera
		back := config.Center.Subtract(config.LookAt).Normalize()
		if !w.ApproxEquals(back, cameraTolerance) {
			t.Errorf("config %d: w = %v, want %v", i, w, back)
		}
		// u is right-handed with respect to up
		if !u.ApproxEquals(config.Up.Cross(w).Normalize(), cameraTolerance) {
			t.Errorf("config %d: u = %v, want normalize(up x w)", i, u)
		}
	}
}

func TestCamera_GetRay(t *testing.T) {
	camera := NewCamera(testCameraConfig())
	sampler := core.NewSeededSampler(42)

	tests := []struct {
		name     string
		s, t     float64
		expected core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-2, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(2, 1, -1)},
		{"top center", 0.5, 1, core.NewVec3(0, 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t, sampler)
			if !ray.Origin.Equals(core.NewVec3(0, 0, 0)) {
				t.Errorf("pinhole origin = %v, want origin", ray.Origin)
			}
			if !ray.Direction.ApproxEquals(tt.expected, cameraTolerance) {
				t.Errorf("direction = %v, want %v", ray.Direction, tt.expected)
			}
		})
	}
}

func TestCamera_ThinLensFocusPlane(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 1.0
	config.FocusDistance = 2.0
	camera := NewCamera(config)

	// Different lens samples must converge on the same focal plane point
	a := camera.GetRay(0.3, 0.7, core.NewSequenceSampler(0.9, 0.5))
	b := camera.GetRay(0.3, 0.7, core.NewSequenceSampler(0.2, 0.4))

	if a.Origin.Equals(b.Origin) {
		t.Fatalf("lens samples should produce different origins, both %v", a.Origin)
	}
	if !a.At(1).ApproxEquals(b.At(1), cameraTolerance) {
		t.Errorf("focal points differ: %v vs %v", a.At(1), b.At(1))
	}
	if math.Abs(a.At(1).Z+2) > cameraTolerance {
		t.Errorf("focal point z = %v, want -2", a.At(1).Z)
	}

	// Lens offsets stay within the aperture radius
	sampler := core.NewSeededSampler(7)
	for i := 0; i < 1000; i++ {
		ray := camera.GetRay(0.5, 0.5, sampler)
		if ray.Origin.Length() >= 0.5 {
			t.Fatalf("lens origin %v outside radius 0.5", ray.Origin)
		}
		if ray.Origin.Z != 0 {
			t.Fatalf("lens origin %v left the lens plane", ray.Origin)
		}
	}
}

func TestCameraConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*CameraConfig)
		wantErr bool
	}{
		{"valid", func(c *CameraConfig) {}, false},
		{"zero fov", func(c *CameraConfig) { c.VFov = 0 }, true},
		{"straight fov", func(c *CameraConfig) { c.VFov = 180 }, true},
		{"zero aspect", func(c *CameraConfig) { c.AspectRatio = 0 }, true},
		{"negative aperture", func(c *CameraConfig) { c.Aperture = -1 }, true},
		{"coincident look-at", func(c *CameraConfig) { c.LookAt = c.Center }, true},
		{"up parallel to view", func(c *CameraConfig) { c.Up = core.NewVec3(0, 0, 1) }, true},
		{"zero up", func(c *CameraConfig) { c.Up = core.Vec3{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testCameraConfig()
			tt.modify(&config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCamera) {
				t.Errorf("error %v does not wrap ErrInvalidCamera", err)
			}
		})
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := testCameraConfig()
	merged := MergeCameraConfig(base, CameraConfig{VFov: 30, Aperture: 0.2})

	if merged.VFov != 30 || merged.Aperture != 0.2 {
		t.Errorf("override fields not applied: %+v", merged)
	}
	if !merged.Center.Equals(base.Center) || merged.AspectRatio != base.AspectRatio {
		t.Errorf("base fields not preserved: %+v", merged)
	}
}
