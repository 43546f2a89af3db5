package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/multibrot/internal/cli"
	"github.com/willbeason/multibrot/internal/server"
	"github.com/willbeason/multibrot/pkg/config"
)

const (
	flagAddr        = "addr"
	flagAllowOrigin = "allow-origin"

	shutdownTimeout = 10 * time.Second
)

func mainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve fractal renders over HTTP and interactive sessions over websocket",
		Args:  cobra.ExactArgs(0),
		RunE:  runCmd,
	}

	cli.AddCommonFlags(cmd)
	cmd.Flags().String(flagAddr, "", "listen address (default from config, :8080)")
	cmd.Flags().StringSlice(flagAllowOrigin, nil, "cross-origin host patterns allowed to open websocket sessions")

	return cmd
}

func runCmd(cmd *cobra.Command, _ []string) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	log := cli.Logger(cmd)

	path, _ := cmd.Flags().GetString(cli.FlagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	err = cfg.Validate()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed(flagAddr) {
		cfg.Addr, _ = cmd.Flags().GetString(flagAddr)
	}

	srv := server.New(cfg, log)
	srv.OriginPatterns, _ = cmd.Flags().GetStringSlice(flagAllowOrigin)

	httpServer := srv.NewHTTPServer()

	errs := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", httpServer.Addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-cmd.Context().Done():
	}

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = httpServer.Shutdown(ctx)
	if err != nil {
		return err
	}

	err = <-errs
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := mainCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
