// Package plane maps between normalized screen coordinates and the complex plane.
package plane

import (
	"fmt"

	"github.com/willbeason/multibrot/pkg/cplx"
)

// Bounds is the visible window of the complex plane.
type Bounds struct {
	ReMin float64 `yaml:"remin" json:"remin"`
	ReMax float64 `yaml:"remax" json:"remax"`
	ImMin float64 `yaml:"immin" json:"immin"`
	ImMax float64 `yaml:"immax" json:"immax"`
}

// Default is the square window [-2, 2] x [-2, 2], which contains the whole Mandelbrot set.
var Default = Bounds{
	ReMin: -2.0,
	ReMax: 2.0,
	ImMin: -2.0,
	ImMax: 2.0,
}

// MapToPlane maps normalized screen coordinates u, v in [0, 1] to a point in b.
//
// Screen y grows downward while the imaginary axis grows upward, so v is flipped:
// (0, 0) is the top-left corner (ReMin, ImMax) and (1, 1) is (ReMax, ImMin).
// Values outside [0, 1] are not clamped and extrapolate beyond b.
func MapToPlane(u, v float64, b Bounds) cplx.Complex {
	return cplx.Complex{
		R: u*(b.ReMax-b.ReMin) + b.ReMin,
		I: (1-v)*(b.ImMax-b.ImMin) + b.ImMin,
	}
}

// Pixel maps pixel (x, y) of a width x height raster into b.
func (b Bounds) Pixel(x, y, width, height int) cplx.Complex {
	return MapToPlane(float64(x)/float64(width), float64(y)/float64(height), b)
}

// Label formats z the way the cursor read-out shows it, with three decimals.
func Label(z cplx.Complex) string {
	return fmt.Sprintf("%.3f%+.3fi", z.R, z.I)
}
