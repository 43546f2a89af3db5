package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/willbeason/multibrot/internal/cli"
	"github.com/willbeason/multibrot/pkg/cplx"
	"github.com/willbeason/multibrot/pkg/plane"
	"github.com/willbeason/multibrot/pkg/render"
)

const (
	flagCRe = "c-re"
	flagCIm = "c-im"
	flagU   = "u"
	flagV   = "v"
)

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "julia",
		Short: "Render the Julia set of a fixed parameter c to a PNG",
		Long: `Render the Julia set of c.

c is given either directly with --c-re and --c-im, or as a position on the
Mandelbrot image with --u and --v (0..1 from the top-left corner), which is
mapped through the current bounds the same way a click on the image would be.`,
		Args: cobra.ExactArgs(0),
		RunE: runCmd,
	}

	cli.AddRenderFlags(cmd)
	cmd.Flags().Float64(flagCRe, -0.8, "real part of c")
	cmd.Flags().Float64(flagCIm, 0.156, "imaginary part of c")
	cmd.Flags().Float64(flagU, 0, "horizontal click position in [0, 1]")
	cmd.Flags().Float64(flagV, 0, "vertical click position in [0, 1]")
	cmd.MarkFlagsRequiredTogether(flagU, flagV)
	cmd.MarkFlagsMutuallyExclusive(flagCRe, flagU)
	cmd.MarkFlagsMutuallyExclusive(flagCIm, flagV)

	return cmd
}

func parameter(cmd *cobra.Command, bounds plane.Bounds) cplx.Complex {
	flags := cmd.Flags()

	if flags.Changed(flagU) {
		u, _ := flags.GetFloat64(flagU)
		v, _ := flags.GetFloat64(flagV)
		return plane.MapToPlane(u, v, bounds)
	}

	re, _ := flags.GetFloat64(flagCRe)
	im, _ := flags.GetFloat64(flagCIm)

	return cplx.New(re, im)
}

func runCmd(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	log := cli.Logger(cmd)

	cfg, err := cli.LoadConfig(cmd, render.Julia)
	if err != nil {
		return err
	}

	c := parameter(cmd, cfg.Bounds)

	params, err := cfg.Params(render.Julia, c)
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

	log.Info("saved", "path", path, "c", plane.Label(c), "width", cfg.Width, "height", cfg.Height)

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
