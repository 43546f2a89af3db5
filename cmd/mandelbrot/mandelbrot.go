package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/willbeason/multibrot/internal/cli"
	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/render"
)

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mandelbrot",
		Short: "Render the Mandelbrot set, or a Multibrot set with --exponent, to a PNG",
		Args:  cobra.ExactArgs(0),
		RunE:  runCmd,
	}

	cli.AddRenderFlags(cmd)

	return cmd
}

func runCmd(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	log := cli.Logger(cmd)

	cfg, err := cli.LoadConfig(cmd, render.Mandelbrot)
	if err != nil {
		return err
	}

	params, err := cfg.Params(render.Mandelbrot, cplx.Zero)
	if err != nil {
		return err
	}

	path, err := cli.OutputPath(cmd, cfg)
	if err != nil {
		return err
	}

	err = cli.RenderPNG(cmd.Context(), params, cfg.Width, cfg.Height, path)
	if err != nil {
		return err
	}

	log.Info("saved", "path", path, "width", cfg.Width, "height", cfg.Height, "exponent", params.Exponent)

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := mainCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
