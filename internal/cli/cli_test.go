package cli

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/willbeason/multibrot/pkg/config"
	"github.com/willbeason/multibrot/pkg/plane"
	"github.com/willbeason/multibrot/pkg/render"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	t.Setenv("MULTIBROT_WORKERS", "")
	t.Setenv("MULTIBROT_ADDR", "")

	cmd := &cobra.Command{Use: "test"}
	AddRenderFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))

	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(newCmd(t), render.Mandelbrot)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("width: 100\nheight: 50\nexponent: 4\n"), 0o600))

	cmd := newCmd(t,
		"--config", path,
		"--height", "60",
		"--iterations", "30",
		"--inside", "#ff0000",
		"--region", "seahorse-valley",
	)

	cfg, err := LoadConfig(cmd, render.Julia)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
	assert.Equal(t, 4, cfg.Exponent)
	assert.Equal(t, 30, cfg.Iterations.Julia)
	assert.Equal(t, 100, cfg.Iterations.Mandelbrot)
	assert.Equal(t, "#ff0000", cfg.Inside)
	assert.Equal(t, plane.SeahorseValley, cfg.Bounds)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	_, err := LoadConfig(newCmd(t, "--outside", "dark"), render.Mandelbrot)
	require.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = LoadConfig(newCmd(t, "--region", "nowhere"), render.Mandelbrot)
	require.ErrorIs(t, err, plane.ErrUnknownRegion)

	_, err = LoadConfig(newCmd(t, "--width", "0"), render.Mandelbrot)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.ErrorContains(t, err, "must be positive")
}

func TestLoadConfigIgnoresServerLimits(t *testing.T) {
	cfg, err := LoadConfig(newCmd(t, "--width", "5000", "--iterations", "200000", "--exponent", "40"), render.Mandelbrot)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Width)
	assert.Equal(t, 200000, cfg.Iterations.Mandelbrot)
	assert.Equal(t, 40, cfg.Exponent)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.OutDir = filepath.Join(dir, "images")

	path, err := OutputPath(newCmd(t), cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.OutDir, filepath.Dir(path))
	assert.DirExists(t, cfg.OutDir)

	explicit := filepath.Join(dir, "nested", "x.png")
	path, err = OutputPath(newCmd(t, "--out", explicit), cfg)
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
	assert.DirExists(t, filepath.Dir(explicit))
}

func TestRenderPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.png")

	require.NoError(t, RenderPNG(context.Background(), render.DefaultParams(render.Mandelbrot), 9, 7, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 9, img.Bounds().Dx())
	assert.Equal(t, 7, img.Bounds().Dy())
}
