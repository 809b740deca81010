package renderer

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// TileRenderer renders individual tiles into a shared framebuffer using an integrator.
// Tiles never overlap, so concurrent calls on distinct tiles are safe.
type TileRenderer struct {
	scene           Scene
	integrator      integrator.Integrator
	framebuffer     *Framebuffer
	samplesPerPixel int
}

// NewTileRenderer creates a new tile renderer writing into framebuffer
func NewTileRenderer(scene Scene, integratorInst integrator.Integrator, framebuffer *Framebuffer, samplesPerPixel int) *TileRenderer {
	return &TileRenderer{
		scene:           scene,
		integrator:      integratorInst,
		framebuffer:     framebuffer,
		samplesPerPixel: samplesPerPixel,
	}
}

// RenderTile renders every pixel of the tile with the tile's own generator
func (tr *TileRenderer) RenderTile(tile *Tile) RenderStats {
	sampler := core.NewRandomSampler(tile.Random)
	bounds := tile.Bounds

	stats := RenderStats{TotalPixels: bounds.Dx() * bounds.Dy()}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var ps PixelStats
			stats.NonFiniteSamples += tr.samplePixel(x, y, &ps, sampler)
			stats.TotalSamples += ps.SampleCount
			tr.framebuffer.Set(x, y, ps.GetColor())
		}
	}

	stats.finalize()
	return stats
}

// samplePixel takes jittered samples for pixel (x, y) and returns the number of
// non-finite samples that were replaced with black
func (tr *TileRenderer) samplePixel(x, y int, ps *PixelStats, sampler core.Sampler) int {
	camera := tr.scene.GetCamera()
	world := tr.scene.GetWorld()
	background := tr.scene.GetBackground()

	width := float64(tr.framebuffer.Width)
	height := float64(tr.framebuffer.Height)

	// Framebuffer row 0 is the top of the image, camera t = 0 is the bottom
	j := tr.framebuffer.Height - 1 - y

	nonFinite := 0
	for sample := 0; sample < tr.samplesPerPixel; sample++ {
		s := (float64(x) + sampler.Get1D()) / width
		t := (float64(j) + sampler.Get1D()) / height

		ray := camera.GetRay(s, t, sampler)
		color := tr.integrator.RayColor(ray, world, background, sampler)
		if !color.IsFinite() {
			nonFinite++
			color = core.Vec3{}
		}
		ps.AddSample(color)
	}
	return nonFinite
}
