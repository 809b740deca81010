package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned for camera configurations that cannot form a view basis
var ErrInvalidCamera = errors.New("invalid camera")

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	AspectRatio   float64   // Width / height ratio
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter, 0 = pinhole
	FocusDistance float64   // Distance to the sharp plane, 0 = auto (distance to LookAt)
}

// MergeCameraConfig overlays the non-zero fields of override on base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if !override.Center.Equals(zero) {
		result.Center = override.Center
	}
	if !override.LookAt.Equals(zero) {
		result.LookAt = override.LookAt
	}
	if !override.Up.Equals(zero) {
		result.Up = override.Up
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Validate rejects configurations with no well-defined view basis
func (c CameraConfig) Validate() error {
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("%w: vertical fov %v out of (0, 180)", ErrInvalidCamera, c.VFov)
	}
	if c.AspectRatio <= 0 {
		return fmt.Errorf("%w: aspect ratio %v", ErrInvalidCamera, c.AspectRatio)
	}
	if c.Aperture < 0 {
		return fmt.Errorf("%w: negative aperture %v", ErrInvalidCamera, c.Aperture)
	}
	if c.Up.LengthSquared() == 0 {
		return fmt.Errorf("%w: zero up vector", ErrInvalidCamera)
	}
	view := c.Center.Subtract(c.LookAt)
	if view.LengthSquared() == 0 {
		return fmt.Errorf("%w: center and look-at coincide", ErrInvalidCamera)
	}
	if c.Up.Cross(view).LengthSquared() < 1e-12*c.Up.LengthSquared()*view.LengthSquared() {
		return fmt.Errorf("%w: up vector parallel to view direction", ErrInvalidCamera)
	}
	return nil
}

// Camera generates rays for rendering with thin-lens depth of field
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Orthonormal basis: right, up, backward
	lensRadius      float64
	focusDistance   float64
}

// NewCamera creates a camera from the configuration. The configuration is
// expected to have passed Validate.
func NewCamera(config CameraConfig) *Camera {
	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = config.Center.Subtract(config.LookAt).Length()
	}

	// The rotation rows of a look-at view matrix are the camera basis
	view := mgl64.LookAtV(config.Center.Mgl(), config.LookAt.Mgl(), config.Up.Mgl())
	u := core.FromMgl(view.Row(0).Vec3())
	v := core.FromMgl(view.Row(1).Vec3())
	w := core.FromMgl(view.Row(2).Vec3())

	theta := mgl64.DegToRad(config.VFov)
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	origin := config.Center
	lowerLeftCorner := origin.
		Subtract(u.Multiply(halfWidth * focusDistance)).
		Subtract(v.Multiply(halfHeight * focusDistance)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		config:          config,
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      u.Multiply(2 * halfWidth * focusDistance),
		vertical:        v.Multiply(2 * halfHeight * focusDistance),
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		focusDistance:   focusDistance,
	}
}

// GetRay generates a ray for normalized image coordinates (s, t) where 0 <= s,t <= 1.
// t = 0 is the bottom edge of the image.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))

	origin := c.origin.Add(offset)
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// Basis returns the camera's right, up and backward unit vectors
func (c *Camera) Basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}

// FocusDistance returns the resolved focus distance
func (c *Camera) FocusDistance() float64 {
	return c.focusDistance
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
