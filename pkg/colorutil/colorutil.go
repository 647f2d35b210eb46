// Package colorutil provides shared color utilities for inspection overlays.
package colorutil

import (
	"fmt"
	"image/color"
)

// Overlay colors used throughout the application. The hex forms are the
// color hints carried on spacing segments for web renderers.
var (
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Green  = color.RGBA{R: 0, G: 230, B: 118, A: 255} // #00e676 pass
	Cyan   = color.RGBA{R: 0, G: 229, B: 255, A: 255} // #00e5ff dense-zone pass
	Red    = color.RGBA{R: 255, G: 23, B: 68, A: 255} // #ff1744 fail
	Yellow = color.RGBA{R: 255, G: 234, B: 0, A: 255} // #ffea00 hoop path
)

// ParseHex parses a "#rrggbb" hex color string into an opaque RGBA color.
func ParseHex(s string) (color.RGBA, error) {
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("parse hex color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats an RGBA color as a "#rrggbb" hex string, discarding alpha.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
