package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// ErrInvalidSampling is returned for sampling configurations that cannot produce an image
var ErrInvalidSampling = errors.New("invalid sampling config")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	Seed            int64 // Base seed for all tile generators
	TileSize        int   // Tile edge length in pixels
	NumWorkers      int   // Parallel workers, 0 = one per CPU
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 100,
		MaxDepth:        integrator.DefaultMaxBounces,
		Seed:            42,
		TileSize:        32,
		NumWorkers:      0,
	}
}

// MergeSamplingConfig overlays the non-zero fields of override on base
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Seed != 0 {
		result.Seed = override.Seed
	}
	if override.TileSize != 0 {
		result.TileSize = override.TileSize
	}
	if override.NumWorkers != 0 {
		result.NumWorkers = override.NumWorkers
	}
	return result
}

// Validate rejects configurations that cannot produce an image
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidSampling, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidSampling, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidSampling, c.MaxDepth)
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidSampling, c.TileSize)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidSampling, c.NumWorkers)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetBackground() integrator.Background
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	config     SamplingConfig
	integrator integrator.Integrator
	logger     core.Logger
}

// NewRaytracer creates a new raytracer using a path tracing integrator bounded by config.MaxDepth
func NewRaytracer(scene Scene, config SamplingConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Raytracer{
		scene:      scene,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// RenderPass renders every tile in order on the calling goroutine
func (rt *Raytracer) RenderPass() (*Framebuffer, RenderStats) {
	start := time.Now()
	fb := NewFramebuffer(rt.config.Width, rt.config.Height)
	tileRenderer := NewTileRenderer(rt.scene, rt.integrator, fb, rt.config.SamplesPerPixel)

	var stats RenderStats
	for _, tile := range NewTileGrid(rt.config.Width, rt.config.Height, rt.config.TileSize, rt.config.Seed) {
		stats.Merge(tileRenderer.RenderTile(tile))
	}
	stats.Duration = time.Since(start)

	rt.logStats(stats)
	return fb, stats
}

// Render renders all tiles on a worker pool. The framebuffer is identical to
// RenderPass for the same seed regardless of the number of workers.
// If ctx is cancelled the partially rendered framebuffer is returned with the context error.
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	fb := NewFramebuffer(rt.config.Width, rt.config.Height)
	tileRenderer := NewTileRenderer(rt.scene, rt.integrator, fb, rt.config.SamplesPerPixel)
	tiles := NewTileGrid(rt.config.Width, rt.config.Height, rt.config.TileSize, rt.config.Seed)

	pool := NewWorkerPool(tileRenderer, len(tiles), rt.config.NumWorkers)
	pool.Start(ctx)

	rt.logger.Printf("Rendering %dx%d, %d spp, %d tiles on %d workers\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, len(tiles), pool.GetNumWorkers())

	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i})
	}

	var stats RenderStats
	var renderErr error
	progressStep := max(len(tiles)/10, 1)
	for completed := 1; completed <= len(tiles); completed++ {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}
		stats.Merge(result.Stats)
		if completed%progressStep == 0 || completed == len(tiles) {
			rt.logger.Printf("Rendered %d/%d tiles\n", completed, len(tiles))
		}
	}
	pool.Stop()
	stats.Duration = time.Since(start)

	if renderErr != nil {
		return fb, stats, fmt.Errorf("render interrupted: %w", renderErr)
	}

	rt.logStats(stats)
	return fb, stats, nil
}

func (rt *Raytracer) logStats(stats RenderStats) {
	rt.logger.Printf("Render complete: %d pixels, %.1f spp, %v\n",
		stats.TotalPixels, stats.AverageSamples, stats.Duration)
	if stats.NonFiniteSamples > 0 {
		rt.logger.Printf("Discarded %d non-finite samples\n", stats.NonFiniteSamples)
	}
}
