// Package escape implements the escape-time divergence test.
package escape

import (
	"context"

	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/transforms"
)

// Radius is the escape threshold. Once |z| exceeds it the orbit diverges for exponent 2.
// It is not adjusted for other exponents.
const Radius = 2.0

// Result reports whether an orbit escaped and after how many iterations.
type Result struct {
	Escaped    bool
	Iterations int
}

// checkInterval is the number of iterations EvaluateContext runs between context checks.
const checkInterval = 1 << 14

// Evaluate iterates z -> z^exponent + c starting from z0 while |z| <= Radius
// and fewer than maxIterations steps have been taken.
//
// Mandelbrot sets pass z0 = 0 and the pixel as c; Julia sets pass the pixel as z0
// and a fixed c.
func Evaluate(z0, c cplx.Complex, exponent, maxIterations int) Result {
	result, _ := EvaluateContext(context.Background(), z0, c, exponent, maxIterations)
	return result
}

// EvaluateContext is Evaluate for long orbits. Every checkInterval iterations it
// checks ctx and, once ctx is done, stops with ctx.Err().
func EvaluateContext(ctx context.Context, z0, c cplx.Complex, exponent, maxIterations int) (Result, error) {
	step := transforms.Multibrot{Exponent: exponent, C: c}

	z := z0
	iterations := 0
	for z.Modulus() <= Radius && iterations < maxIterations {
		if iterations%checkInterval == checkInterval-1 {
			if err := ctx.Err(); err != nil {
				return Result{Iterations: iterations}, err
			}
		}

		z = step.Next(z)
		iterations++
	}

	return Result{
		Escaped:    iterations < maxIterations,
		Iterations: iterations,
	}, nil
}

// Intensity normalizes the iteration count into [0, 1].
func (r Result) Intensity(maxIterations int) float64 {
	if maxIterations <= 0 {
		return 0
	}

	return float64(r.Iterations) / float64(maxIterations)
}
