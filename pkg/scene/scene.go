package scene

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.ShapeList   // Objects in the scene
	Background     integrator.Background // Radiance of escaping rays
	SamplingConfig renderer.SamplingConfig
}

// newScene assembles a scene whose camera aspect ratio follows the image size
func newScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) *Scene {
	s := &Scene{
		CameraConfig: cameraConfig,
		World:        geometry.NewShapeList(),
		Background:   integrator.NewSkyBackground(),
	}
	s.SetSamplingConfig(samplingConfig)
	return s
}

// GetCamera implements renderer.Scene
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld implements renderer.Scene
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackground implements renderer.Scene
func (s *Scene) GetBackground() integrator.Background {
	return s.Background
}

// SetSamplingConfig replaces the sampling configuration and rebuilds the
// camera so its aspect ratio matches the new image size
func (s *Scene) SetSamplingConfig(config renderer.SamplingConfig) {
	s.SamplingConfig = config
	if config.Width > 0 && config.Height > 0 {
		s.CameraConfig.AspectRatio = float64(config.Width) / float64(config.Height)
	}
	s.Camera = renderer.NewCamera(s.CameraConfig)
}

// SetCameraConfig overlays the non-zero fields of override on the camera configuration
func (s *Scene) SetCameraConfig(override renderer.CameraConfig) {
	s.CameraConfig = renderer.MergeCameraConfig(s.CameraConfig, override)
	s.Camera = renderer.NewCamera(s.CameraConfig)
}

// Validate checks the camera, the sampling configuration and every shape.
// Rendering an unvalidated scene may produce non-finite colors.
func (s *Scene) Validate() error {
	if err := s.CameraConfig.Validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if err := s.SamplingConfig.Validate(); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if err := s.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
