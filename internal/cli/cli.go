// Package cli holds the flag wiring shared by the command line tools.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/multibrot/pkg/config"
	"github.com/willbeason/multibrot/pkg/plane"
	"github.com/willbeason/multibrot/pkg/render"
)

const (
	FlagConfig     = "config"
	FlagVerbose    = "verbose"
	FlagWidth      = "width"
	FlagHeight     = "height"
	FlagExponent   = "exponent"
	FlagIterations = "iterations"
	FlagOutside    = "outside"
	FlagInside     = "inside"
	FlagRegion     = "region"
	FlagWorkers    = "workers"
	FlagOut        = "out"
)

// AddCommonFlags registers the flags every tool accepts.
func AddCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagConfig, "", "path to a YAML config file")
	cmd.Flags().BoolP(FlagVerbose, "v", false, "log debug output")
}

// AddRenderFlags registers the flags of the image-producing tools.
// Defaults come from config.Default; flags only apply when set explicitly.
func AddRenderFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)

	d := config.Default()
	cmd.Flags().Int(FlagWidth, d.Width, "image width in pixels")
	cmd.Flags().Int(FlagHeight, d.Height, "image height in pixels")
	cmd.Flags().Int(FlagExponent, d.Exponent, "exponent e in z -> z^e + c")
	cmd.Flags().Int(FlagIterations, 0, "iteration cap (default depends on the fractal)")
	cmd.Flags().String(FlagOutside, d.Outside, "color of points that escape immediately")
	cmd.Flags().String(FlagInside, d.Inside, "color of points that never escape")
	cmd.Flags().String(FlagRegion, "", fmt.Sprintf("named window to render, one of %v", plane.Regions()))
	cmd.Flags().Int(FlagWorkers, d.Workers, "rows rendered concurrently (0 for one per CPU)")
	cmd.Flags().String(FlagOut, "", "output PNG path (default out/<timestamp>.png)")
}

// Logger builds a stderr logger honoring --verbose and installs it for the renderer.
func Logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool(FlagVerbose); verbose {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	render.SetLogger(log)

	return log
}

// LoadConfig reads --config and applies every render flag set on the command line.
func LoadConfig(cmd *cobra.Command, mode render.Mode) (config.Config, error) {
	flags := cmd.Flags()

	path, _ := flags.GetString(FlagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	ints := map[string]*int{
		FlagWidth:    &cfg.Width,
		FlagHeight:   &cfg.Height,
		FlagExponent: &cfg.Exponent,
		FlagWorkers:  &cfg.Workers,
	}
	for name, dst := range ints {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	if flags.Changed(FlagIterations) {
		n, _ := flags.GetInt(FlagIterations)
		switch mode {
		case render.Julia:
			cfg.Iterations.Julia = n
		default:
			cfg.Iterations.Mandelbrot = n
		}
	}

	if flags.Changed(FlagOutside) {
		cfg.Outside, _ = flags.GetString(FlagOutside)
	}
	if flags.Changed(FlagInside) {
		cfg.Inside, _ = flags.GetString(FlagInside)
	}

	if flags.Changed(FlagRegion) {
		name, _ := flags.GetString(FlagRegion)
		cfg.Bounds, err = plane.Lookup(name)
		if err != nil {
			return config.Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// OutputPath is --out, or a timestamped file under cfg.OutDir.
// The parent directory is created.
func OutputPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	path, _ := cmd.Flags().GetString(FlagOut)
	if path == "" {
		path = filepath.Join(cfg.OutDir, fmt.Sprintf("%s.png", time.Now().Format("20060102150405")))
	}

	err := os.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		return "", err
	}

	return path, nil
}

// RenderPNG renders a width x height image and saves it at path.
func RenderPNG(ctx context.Context, p render.Params, width, height int, path string) error {
	pm := render.NewPixmap(width, height)

	err := render.Render(ctx, pm, p)
	if err != nil {
		return err
	}

	return pm.SavePNG(path)
}
