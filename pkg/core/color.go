package core

import "math"

// DisplayGamma is the gamma applied when converting linear color to 8-bit
const DisplayGamma = 2.0

// RGB8 is a display-space 8-bit color
type RGB8 struct {
	R, G, B uint8
}

// ToRGB8 converts a linear color to 8-bit display space: clamp to [0,1],
// gamma 2, then floor(255.999*c). NaN channels map to 0.
func ToRGB8(c Vec3) RGB8 {
	display := c.Clamp(0, 1).GammaCorrect(DisplayGamma)
	return RGB8{
		R: quantizeChannel(display.X),
		G: quantizeChannel(display.Y),
		B: quantizeChannel(display.Z),
	}
}

// quantizeChannel maps a display-space value in [0,1] to a byte
func quantizeChannel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Floor(255.999 * v))
}
