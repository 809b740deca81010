package renderer

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Framebuffer is a flat row-major buffer of averaged linear colors.
// Row 0 is the top of the image.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// At returns the linear color at (x, y)
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[y*fb.Width+x]
}

// Set stores the linear color at (x, y)
func (fb *Framebuffer) Set(x, y int, color core.Vec3) {
	fb.Pixels[y*fb.Width+x] = color
}

// Quantize converts every pixel to 8-bit gamma-corrected color in the same order
func (fb *Framebuffer) Quantize() []core.RGB8 {
	out := make([]core.RGB8, len(fb.Pixels))
	for i, c := range fb.Pixels {
		out[i] = core.ToRGB8(c)
	}
	return out
}
