package stage

import (
	"fmt"
	"image/color"
	"math"
)

// Color is a display color with components in [0,1].
type Color struct {
	R, G, B float64
}

// Common part colors.
var (
	DefaultColor = Color{0.8, 0.8, 0.8} // light neutral
	Orange       = Color{1, 0.5, 0}
	Yellow       = Color{1, 1, 0}
	Green        = Color{0.2, 0.7, 0.2}
	Blue         = Color{0.2, 0.4, 0.9}
	Red          = Color{0.9, 0.1, 0.1}
	Gray         = Color{0.5, 0.5, 0.5}
	Black        = Color{0.1, 0.1, 0.1}
)

// Valid returns an error if any component lies outside [0,1].
func (c Color) Valid() error {
	for _, v := range [3]float64{c.R, c.G, c.B} {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: color component %g outside [0,1]", ErrBadGeometry, v)
		}
	}
	return nil
}

// NRGBA converts c to an opaque 8 bit color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 0xff}
}

// Hex returns c formatted as "#rrggbb".
func (c Color) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

func to8(v float64) uint8 {
	return uint8(math.Round(255 * math.Max(0, math.Min(1, v))))
}
