package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ErrUnknownScene is returned when no built-in scene has the requested name
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string // Name accepted by New
	DisplayName string // Human readable name
	Description string
}

type builtinScene struct {
	info    SceneInfo
	factory func(cameraOverrides ...renderer.CameraConfig) *Scene
}

var builtinScenes = map[string]builtinScene{
	"default": {
		info: SceneInfo{
			ID:          "default",
			DisplayName: "Default Scene",
			Description: "Diffuse sphere on a diffuse ground sphere",
		},
		factory: NewDefaultScene,
	},
	"materials": {
		info: SceneInfo{
			ID:          "materials",
			DisplayName: "Materials",
			Description: "Diffuse, metal and glass spheres with a hollow glass bubble",
		},
		factory: NewMaterialsScene,
	},
	"spheregrid": {
		info: SceneInfo{
			ID:          "spheregrid",
			DisplayName: "Sphere Grid",
			Description: "Field of random spheres with depth of field",
		},
		factory: NewSphereGridScene,
	},
}

// New creates the built-in scene with the given name
func New(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	builtin, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownScene, name, Names())
	}
	return builtin.factory(cameraOverrides...), nil
}

// Names returns the sorted names of all built-in scenes
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for name := range builtinScenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListScenes returns metadata for all built-in scenes sorted by display name
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for _, builtin := range builtinScenes {
		scenes = append(scenes, builtin.info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes
}
