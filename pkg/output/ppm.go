package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ErrInvalidPPM is returned when a PPM stream cannot be parsed
var ErrInvalidPPM = errors.New("invalid ppm")

// WritePPM writes pixels as a plain-text P3 image: a header followed by one
// "r g b" line per pixel, top row first
func WritePPM(w io.Writer, width, height int, pixels []core.RGB8) error {
	if len(pixels) != width*height {
		return fmt.Errorf("%w: %d pixels for %dx%d image", ErrInvalidPPM, len(pixels), width, height)
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", width, height); err != nil {
		return fmt.Errorf("failed to write ppm header: %w", err)
	}
	for _, p := range pixels {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", p.R, p.G, p.B); err != nil {
			return fmt.Errorf("failed to write ppm pixels: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write ppm: %w", err)
	}
	return nil
}

// ReadPPM parses a P3 image with a max value of 255
func ReadPPM(r io.Reader) (width, height int, pixels []core.RGB8, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	next := func(what string) (int, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, fmt.Errorf("failed to read ppm: %w", err)
			}
			return 0, fmt.Errorf("%w: unexpected end of data reading %s", ErrInvalidPPM, what)
		}
		v, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return 0, fmt.Errorf("%w: bad %s %q", ErrInvalidPPM, what, scanner.Text())
		}
		return v, nil
	}

	if !scanner.Scan() || scanner.Text() != "P3" {
		return 0, 0, nil, fmt.Errorf("%w: missing P3 magic", ErrInvalidPPM)
	}
	if width, err = next("width"); err != nil {
		return 0, 0, nil, err
	}
	if height, err = next("height"); err != nil {
		return 0, 0, nil, err
	}
	if width <= 0 || height <= 0 {
		return 0, 0, nil, fmt.Errorf("%w: image size %dx%d", ErrInvalidPPM, width, height)
	}
	maxVal, err := next("max value")
	if err != nil {
		return 0, 0, nil, err
	}
	if maxVal != 255 {
		return 0, 0, nil, fmt.Errorf("%w: unsupported max value %d", ErrInvalidPPM, maxVal)
	}

	pixels = make([]core.RGB8, width*height)
	for i := range pixels {
		var channels [3]uint8
		for c := range channels {
			v, err := next("channel")
			if err != nil {
				return 0, 0, nil, err
			}
			if v < 0 || v > 255 {
				return 0, 0, nil, fmt.Errorf("%w: channel value %d out of range", ErrInvalidPPM, v)
			}
			channels[c] = uint8(v)
		}
		pixels[i] = core.RGB8{R: channels[0], G: channels[1], B: channels[2]}
	}

	return width, height, pixels, nil
}
