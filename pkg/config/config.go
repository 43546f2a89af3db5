// Package config loads render and server settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/palette"
	"github.com/willbeason/multibrot/pkg/plane"
	"github.com/willbeason/multibrot/pkg/render"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Config holds the settings shared by the command line tools and the server.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Bounds   plane.Bounds `yaml:"bounds"`
	Exponent int          `yaml:"exponent"`

	// Outside and Inside are hex colors, "#rrggbb".
	Outside string `yaml:"outside"`
	Inside  string `yaml:"inside"`

	Iterations render.Caps `yaml:"iterations"`
	Workers    int         `yaml:"workers"`

	// OutDir is where the command line tools write images.
	OutDir string `yaml:"out_dir"`

	Addr string `yaml:"addr"`

	// Limits on what a server request may ask for, checked by CheckLimits.
	// Zero means unlimited. The command line tools ignore them.
	MaxDimension  int `yaml:"max_dimension"`
	MaxIterations int `yaml:"max_iterations"`
	MaxExponent   int `yaml:"max_exponent"`
}

func Default() Config {
	return Config{
		Width:         800,
		Height:        800,
		Bounds:        plane.Default,
		Exponent:      2,
		Outside:       palette.DefaultOutside,
		Inside:        palette.DefaultInside,
		Iterations:    render.DefaultCaps,
		Workers:       0,
		OutDir:        "out",
		Addr:          ":8080",
		MaxDimension:  4096,
		MaxIterations: 100000,
		MaxExponent:   32,
	}
}

// Load reads path over Default, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}

		err = yaml.Unmarshal(bytes, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
		}
	}

	err := cfg.applyEnv()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyEnv lets deployments override the server address and worker count.
func (c *Config) applyEnv() error {
	if addr := os.Getenv("MULTIBROT_ADDR"); addr != "" {
		c.Addr = addr
	}

	if workers := os.Getenv("MULTIBROT_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("%w: MULTIBROT_WORKERS=%q: %v", ErrInvalidConfig, workers, err)
		}
		c.Workers = n
	}

	return nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("dimensions %dx%d must be positive", c.Width, c.Height))
	}
	if c.Exponent < 0 {
		errs = append(errs, fmt.Errorf("exponent %d is negative", c.Exponent))
	}
	if c.Iterations.Mandelbrot <= 0 || c.Iterations.Julia <= 0 {
		errs = append(errs, fmt.Errorf("iteration caps %+v must be positive", c.Iterations))
	}
	if _, err := palette.NewPair(c.Outside, c.Inside); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// CheckLimits reports every setting above MaxDimension, MaxIterations or MaxExponent.
func (c Config) CheckLimits() error {
	var errs []error

	if c.MaxDimension > 0 && (c.Width > c.MaxDimension || c.Height > c.MaxDimension) {
		errs = append(errs, fmt.Errorf("dimensions %dx%d exceed %d", c.Width, c.Height, c.MaxDimension))
	}
	if c.MaxIterations > 0 && (c.Iterations.Mandelbrot > c.MaxIterations || c.Iterations.Julia > c.MaxIterations) {
		errs = append(errs, fmt.Errorf("iteration caps %+v exceed %d", c.Iterations, c.MaxIterations))
	}
	if c.MaxExponent > 0 && c.Exponent > c.MaxExponent {
		errs = append(errs, fmt.Errorf("exponent %d exceeds %d", c.Exponent, c.MaxExponent))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrLimitExceeded, errors.Join(errs...))
	}

	return nil
}

// Params converts c into render parameters for mode. c is the Julia parameter.
func (c Config) Params(mode render.Mode, julia cplx.Complex) (render.Params, error) {
	if err := c.Validate(); err != nil {
		return render.Params{}, err
	}

	colors, err := palette.NewPair(c.Outside, c.Inside)
	if err != nil {
		return render.Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	p := render.DefaultParams(mode)
	p.Bounds = c.Bounds
	p.Exponent = c.Exponent
	p.Colors = colors
	p.C = julia
	p.MaxIterations = c.Iterations.For(mode)
	p.Workers = c.Workers

	return p, nil
}
