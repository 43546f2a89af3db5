package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/willbeason/multibrot/pkg/config"
	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/plane"
	"github.com/willbeason/multibrot/pkg/render"
)

var errBadRequest = errors.New("bad request")

// RenderRequest is what a client may change between renders. Zero values fall
// back to the server configuration.
type RenderRequest struct {
	Mode       string        `json:"mode"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	Exponent   *int          `json:"exponent,omitempty"`
	Iterations int           `json:"iterations,omitempty"`
	Outside    string        `json:"outside,omitempty"`
	Inside     string        `json:"inside,omitempty"`
	Region     string        `json:"region,omitempty"`
	Bounds     *plane.Bounds `json:"bounds,omitempty"`

	// Re and Im set the Julia parameter directly.
	Re *float64 `json:"re,omitempty"`
	Im *float64 `json:"im,omitempty"`

	// U and V are a normalized click position, mapped through the bounds to
	// pick the Julia parameter.
	U *float64 `json:"u,omitempty"`
	V *float64 `json:"v,omitempty"`
}

// job is a fully resolved request.
type job struct {
	params render.Params
	width  int
	height int
}

// config applies the request's overrides to base.
func (r RenderRequest) config(base config.Config) (config.Config, error) {
	cfg := base

	if r.Width != 0 {
		cfg.Width = r.Width
	}
	if r.Height != 0 {
		cfg.Height = r.Height
	}
	if r.Exponent != nil {
		cfg.Exponent = *r.Exponent
	}
	if r.Outside != "" {
		cfg.Outside = r.Outside
	}
	if r.Inside != "" {
		cfg.Inside = r.Inside
	}

	if r.Region != "" {
		b, err := plane.Lookup(r.Region)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: %w", errBadRequest, err)
		}
		cfg.Bounds = b
	}
	if r.Bounds != nil {
		cfg.Bounds = *r.Bounds
	}

	return cfg, nil
}

func (r RenderRequest) resolve(base config.Config) (job, error) {
	mode, err := render.ParseMode(r.Mode)
	if err != nil {
		return job{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	cfg, err := r.config(base)
	if err != nil {
		return job{}, err
	}

	if r.Iterations < 0 {
		return job{}, fmt.Errorf("%w: iterations %d is negative", errBadRequest, r.Iterations)
	}
	if r.Iterations > 0 {
		switch mode {
		case render.Julia:
			cfg.Iterations.Julia = r.Iterations
		default:
			cfg.Iterations.Mandelbrot = r.Iterations
		}
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return job{}, fmt.Errorf("%w: dimensions %dx%d must be positive", errBadRequest, cfg.Width, cfg.Height)
	}

	c, err := r.juliaParameter(mode, cfg.Bounds)
	if err != nil {
		return job{}, err
	}

	params, err := cfg.Params(mode, c)
	if err != nil {
		return job{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if err := cfg.CheckLimits(); err != nil {
		return job{}, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return job{params: params, width: cfg.Width, height: cfg.Height}, nil
}

func (r RenderRequest) juliaParameter(mode render.Mode, bounds plane.Bounds) (cplx.Complex, error) {
	switch {
	case r.Re != nil && r.Im != nil:
		return cplx.New(*r.Re, *r.Im), nil
	case r.U != nil && r.V != nil:
		return plane.MapToPlane(*r.U, *r.V, bounds), nil
	case mode == render.Julia:
		return cplx.Zero, fmt.Errorf("%w: julia mode needs re and im, or u and v", errBadRequest)
	default:
		return cplx.Zero, nil
	}
}

// parseQuery reads a RenderRequest from URL parameters.
func parseQuery(q url.Values) (RenderRequest, error) {
	req := RenderRequest{
		Mode:    q.Get("mode"),
		Outside: q.Get("outside"),
		Inside:  q.Get("inside"),
		Region:  q.Get("region"),
	}

	var err error
	ints := map[string]*int{
		"width":      &req.Width,
		"height":     &req.Height,
		"iterations": &req.Iterations,
	}
	for key, dst := range ints {
		if *dst, err = intParam(q, key); err != nil {
			return RenderRequest{}, err
		}
	}

	if q.Has("exponent") {
		e, err := intParam(q, "exponent")
		if err != nil {
			return RenderRequest{}, err
		}
		req.Exponent = &e
	}

	floats := map[string]**float64{"re": &req.Re, "im": &req.Im, "u": &req.U, "v": &req.V}
	for key, dst := range floats {
		if *dst, err = floatParam(q, key); err != nil {
			return RenderRequest{}, err
		}
	}

	req.Bounds, err = boundsParam(q)
	if err != nil {
		return RenderRequest{}, err
	}

	return req, nil
}

func intParam(q url.Values, key string) (int, error) {
	s := q.Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", errBadRequest, key, s)
	}

	return n, nil
}

func floatParam(q url.Values, key string) (*float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q is not a number", errBadRequest, key, s)
	}

	return &f, nil
}

// boundsParam reads remin, remax, immin and immax. Either all four or none must be given.
func boundsParam(q url.Values) (*plane.Bounds, error) {
	keys := []string{"remin", "remax", "immin", "immax"}

	var values []float64
	for _, key := range keys {
		f, err := floatParam(q, key)
		if err != nil {
			return nil, err
		}
		if f != nil {
			values = append(values, *f)
		}
	}

	switch len(values) {
	case 0:
		return nil, nil
	case len(keys):
		return &plane.Bounds{ReMin: values[0], ReMax: values[1], ImMin: values[2], ImMax: values[3]}, nil
	default:
		return nil, fmt.Errorf("%w: bounds need all of remin, remax, immin, immax", errBadRequest)
	}
}
