package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/cli"
	"github.com/bnema/webpage/internal/cli/styles"
	"github.com/bnema/webpage/internal/infrastructure/config"
	"github.com/bnema/webpage/internal/infrastructure/deps"
	"github.com/bnema/webpage/internal/logging"
	"github.com/bnema/webpage/internal/ui/window"
)

var browseCapture bool

var browseCmd = &cobra.Command{
	Use:   "browse [url]",
	Short: "Open a page in a WebKitGTK window",
	Long: `Open a page in a GTK4 window backed by WebKitGTK.

Requires a binary built with -tags webkit_cgo. The config file is watched
while the window is open.

Examples:
  webpage browse                    # Open about:blank
  webpage browse example.com        # Open a URL
  webpage browse --capture go.dev   # Write a thumbnail on every page load`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().BoolVarP(&browseCapture, "capture", "c", false, "write a thumbnail each time the page loads")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	target := ""
	if len(args) == 1 {
		if target, err = cli.NormalizeURL(args[0]); err != nil {
			return err
		}
	}

	renderer := styles.NewConfigRenderer(app.Theme)
	if err := app.WatchConfig(func(*config.Config) {
		fmt.Fprint(cmd.ErrOrStderr(), renderer.RenderReloaded(app.Manager.GetConfigFile()))
	}); err != nil {
		logging.FromContext(app.Ctx()).Warn().Err(err).Msg("config watching disabled")
	}

	deps.ApplyPrefixEnv(app.Config.Runtime.Prefix)

	win := app.Config.Window
	return window.Run(app.Ctx(), window.Options{
		URL:           target,
		Width:         win.Width,
		Height:        win.Height,
		ToolbarHeight: win.ToolbarHeight,
		Saver:         app.SaveThumbnailUC,
		CaptureOnLoad: browseCapture,
	})
}
