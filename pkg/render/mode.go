package render

import (
	"fmt"
	"strings"

	"github.com/willbeason/multibrot/pkg/cplx"
)

// Mode selects which operand of the iteration varies with the pixel.
type Mode int

const (
	// Mandelbrot iterates from z0 = 0 with the pixel as c.
	Mandelbrot Mode = iota
	// Julia iterates from the pixel with a fixed c.
	Julia
)

func (m Mode) String() string {
	switch m {
	case Mandelbrot:
		return "mandelbrot"
	case Julia:
		return "julia"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "mandelbrot" or "julia" in any case. An empty string is Mandelbrot.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mandelbrot", "multibrot":
		return Mandelbrot, nil
	case "julia":
		return Julia, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParams, s)
	}
}

// Seed returns the starting point and additive constant for a pixel mapped to point.
// fixed is the Julia parameter and is ignored in Mandelbrot mode.
func (m Mode) Seed(point, fixed cplx.Complex) (z0, c cplx.Complex) {
	if m == Julia {
		return point, fixed
	}

	return cplx.Zero, point
}

// Caps holds the iteration cap for each mode.
type Caps struct {
	Mandelbrot int `yaml:"mandelbrot" json:"mandelbrot"`
	Julia      int `yaml:"julia" json:"julia"`
}

// DefaultCaps are the caps used when none are configured.
var DefaultCaps = Caps{Mandelbrot: 100, Julia: 75}

// For returns the cap for m.
func (c Caps) For(m Mode) int {
	if m == Julia {
		return c.Julia
	}

	return c.Mandelbrot
}
