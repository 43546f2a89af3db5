// Package palette maps escape-time intensity to colors and converts between
// hex strings and RGB triples.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"regexp"
	"strconv"
)

var ErrInvalidHex = errors.New("invalid hex color")

// hexPattern accepts six hex digits with an optional leading '#', in any case.
var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{2})([0-9a-fA-F]{2})([0-9a-fA-F]{2})$`)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Black is the fallback for malformed hex input.
var Black = RGB{0, 0, 0}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex is shorthand for RGBToHex(c).
func (c RGB) Hex() string {
	return RGBToHex(c)
}

// ColorAt linearly interpolates each channel from outside (intensity 0) to
// inside (intensity 1). Channels are rounded and clamped to [0, 255].
func ColorAt(intensity float64, outside, inside RGB) RGB {
	return RGB{
		R: lerp(outside.R, inside.R, intensity),
		G: lerp(outside.G, inside.G, intensity),
		B: lerp(outside.B, inside.B, intensity),
	}
}

func lerp(from, to uint8, t float64) uint8 {
	v := float64(from) + (float64(to)-float64(from))*t
	return uint8(math.Round(min(max(v, 0), 255)))
}

// ParseHex parses "#rrggbb" or "rrggbb".
func ParseHex(s string) (RGB, error) {
	m := hexPattern.FindStringSubmatch(s)
	if m == nil {
		return Black, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}

	var channels [3]uint8
	for i := range channels {
		// The pattern guarantees two hex digits.
		v, _ := strconv.ParseUint(m[i+1], 16, 8)
		channels[i] = uint8(v)
	}

	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// HexToRGB is ParseHex with a silent fallback: malformed input yields Black.
func HexToRGB(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		return Black
	}

	return c
}

// RGBToHex formats c as "#rrggbb" in lowercase.
func RGBToHex(c RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Invert returns the complement of a hex color. Malformed input is treated as
// black and so inverts to white.
func Invert(s string) string {
	c := HexToRGB(s)
	return RGBToHex(RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B})
}
