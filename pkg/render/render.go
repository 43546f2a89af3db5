// Package render drives the escape-time evaluation over every pixel of a raster target.
package render

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/escape"
	"github.com/willbeason/multibrot/pkg/palette"
	"github.com/willbeason/multibrot/pkg/plane"
)

var ErrInvalidParams = errors.New("invalid render parameters")

// Target is a raster the driver writes into.
//
// SetPixel is called concurrently for distinct pixels and must be safe for that.
type Target interface {
	Width() int
	Height() int
	SetPixel(x, y int, c palette.RGB)
}

// Params is everything a single render pass needs. The caller owns it.
type Params struct {
	Bounds   plane.Bounds
	Exponent int
	Colors   palette.Pair
	Mode     Mode

	// C is the fixed Julia parameter. Unused in Mandelbrot mode.
	C cplx.Complex

	// MaxIterations caps the iteration. Zero selects DefaultCaps for Mode.
	MaxIterations int

	// Workers bounds the number of rows computed concurrently. Zero or less uses GOMAXPROCS.
	Workers int
}

// DefaultParams renders mode over the default window with exponent 2 and default colors.
func DefaultParams(mode Mode) Params {
	return Params{
		Bounds:   plane.Default,
		Exponent: 2,
		Colors:   palette.Default,
		Mode:     mode,
	}
}

// Iterations is the effective iteration cap.
func (p Params) Iterations() int {
	if p.MaxIterations > 0 {
		return p.MaxIterations
	}

	return DefaultCaps.For(p.Mode)
}

func (p Params) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}

	return runtime.GOMAXPROCS(0)
}

func (p Params) Validate() error {
	if p.Mode != Mandelbrot && p.Mode != Julia {
		return fmt.Errorf("%w: unknown mode %v", ErrInvalidParams, p.Mode)
	}
	if p.Exponent < 0 {
		return fmt.Errorf("%w: exponent %d is negative", ErrInvalidParams, p.Exponent)
	}
	if p.MaxIterations < 0 {
		return fmt.Errorf("%w: max iterations %d is negative", ErrInvalidParams, p.MaxIterations)
	}

	return nil
}

// Color evaluates the single point and returns its color.
// Orbits long enough to outlive ctx are abandoned with ctx.Err().
func (p Params) Color(ctx context.Context, point cplx.Complex) (palette.RGB, error) {
	maxIterations := p.Iterations()
	z0, c := p.Mode.Seed(point, p.C)

	result, err := escape.EvaluateContext(ctx, z0, c, p.Exponent, maxIterations)
	if err != nil {
		return palette.RGB{}, err
	}

	return p.Colors.At(result.Intensity(maxIterations)), nil
}

// Render colors every pixel of target.
//
// Rows are computed in parallel. ctx is checked before each row and periodically
// during very long orbits; once it is done no further rows start and ctx.Err() is
// returned, leaving target partially written.
// A target with zero width or height is left untouched.
func Render(ctx context.Context, target Target, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	width, height := target.Width(), target.Height()
	if width <= 0 || height <= 0 {
		return nil
	}

	log := Logger().With(
		"mode", p.Mode.String(),
		"width", width,
		"height", height,
		"exponent", p.Exponent,
		"max_iterations", p.Iterations(),
	)
	log.Debug("render started")
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers())

	for y := 0; y < height; y++ {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			for x := 0; x < width; x++ {
				c, err := p.Color(gctx, p.Bounds.Pixel(x, y, width, height))
				if err != nil {
					return err
				}
				target.SetPixel(x, y, c)
			}

			return nil
		})
	}

	// Rows only fail once ctx is done.
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		log.Info("render cancelled", "error", err, "elapsed", time.Since(start))
		return err
	}

	log.Debug("render finished", "elapsed", time.Since(start))

	return nil
}
