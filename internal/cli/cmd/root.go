// Package cmd provides Cobra CLI commands for webpage.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/cli"
	"github.com/bnema/webpage/internal/domain/build"
)

var (
	app            *cli.App
	buildInfo      build.Info
	coreDumpLogger func(context.Context)
	rootCmd        = &cobra.Command{
		Use:   "webpage",
		Short: "Render web pages and keep tab thumbnails",
		Long: `webpage renders web pages in a browser engine and writes a JPEG
thumbnail per tab to the XDG cache directory.

Pages can be rendered headlessly with Chromium ('webpage capture') or shown
in a WebKitGTK window ('webpage browse', requires a webkit_cgo build).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip initialization for commands that don't need app context
			switch cmd.Name() {
			case "help", "completion", "gen-docs":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			if coreDumpLogger != nil {
				coreDumpLogger(app.Ctx())
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
	rootCmd.Version = info.String()
}

// SetCoreDumpLogger registers a hook that logs crash dump limits once the
// logger is configured.
func SetCoreDumpLogger(fn func(context.Context)) {
	coreDumpLogger = fn
}

func requireApp() (*cli.App, error) {
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}
