package output

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ToImage converts quantized pixels (top row first) to an opaque image
func ToImage(width, height int, pixels []core.RGB8) (*image.NRGBA, error) {
	if width < 0 || height < 0 || len(pixels) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d image", ErrInvalidPPM, len(pixels), width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pixels[y*width+x]
			img.SetNRGBA(x, y, color.NRGBA{R: p.R, G: p.G, B: p.B, A: 255})
		}
	}
	return img, nil
}

// SaveImage encodes img to path, choosing the format from the file extension
func SaveImage(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// EncodeImage writes img to w in the format implied by name's extension
func EncodeImage(w io.Writer, name string, img image.Image) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return imaging.Encode(w, img, format)
}

// Save writes a rendered image to path. ".ppm" files are written as plain P3,
// every other extension is encoded through the image library.
func Save(path string, width, height int, pixels []core.RGB8) error {
	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := WritePPM(file, width, height, pixels); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}
	img, err := ToImage(width, height, pixels)
	if err != nil {
		return err
	}
	return SaveImage(path, img)
}
