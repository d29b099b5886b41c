package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/api"
	"github.com/bnema/webpage/internal/cli"
	"github.com/bnema/webpage/internal/cli/styles"
	"github.com/bnema/webpage/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve thumbnails and headless captures over HTTP",
	Long: `Start an HTTP API over the thumbnail cache. POST /api/v1/captures renders
pages with the headless engine configured in [headless]; new tab ids continue
after the highest cached thumbnail.

OpenAPI docs are served at /docs.

Examples:
  webpage serve
  webpage serve --addr :9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from [server] addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	addr := app.Config.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr = serveAddr
	}
	log := logging.FromContext(app.Ctx())

	ctx, stop := signal.NotifyContext(app.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := app.Config.Headless
	capturer, closeBrowser, err := startCapturer(ctx, app, settings)
	if err != nil {
		return err
	}
	defer closeBrowser()

	svc := cli.NewAPIService(app.Thumbnails, capturer, captureRequest(settings))
	handler := api.NewServer(svc, *log, buildInfo.Version)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	bound := ln.Addr().String()
	log.Info().Str("addr", bound).Msg("api listening")
	fmt.Fprint(cmd.OutOrStdout(), styles.NewCaptureRenderer(app.Theme).RenderListening(bound, "http://"+bound+"/docs"))

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(app.Config.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("api stopped")
	return nil
}
