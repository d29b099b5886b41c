package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/cli"
	"github.com/bnema/webpage/internal/cli/styles"
	"github.com/bnema/webpage/internal/infrastructure/config"
	"github.com/bnema/webpage/internal/infrastructure/headless"
)

var captureFlags struct {
	width       int
	height      int
	concurrency int
	timeout     time.Duration
	execPath    string
	remoteURL   string
}

var captureCmd = &cobra.Command{
	Use:   "capture <url>...",
	Short: "Render pages headlessly and write their thumbnails",
	Long: `Load each URL in its own headless Chromium tab and write a JPEG thumbnail
once the page's root document has loaded.

Flags override the [headless] section of the config file.

Examples:
  webpage capture example.com
  webpage capture --concurrency 8 example.com go.dev
  webpage capture --remote-url ws://127.0.0.1:9222 example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	f := captureCmd.Flags()
	f.IntVar(&captureFlags.width, "width", 0, "viewport width in CSS pixels")
	f.IntVar(&captureFlags.height, "height", 0, "viewport height in CSS pixels")
	f.IntVarP(&captureFlags.concurrency, "concurrency", "j", 0, "pages rendered in parallel")
	f.DurationVar(&captureFlags.timeout, "timeout", 0, "per-page load and capture timeout")
	f.StringVar(&captureFlags.execPath, "exec-path", "", "Chromium binary to launch")
	f.StringVar(&captureFlags.remoteURL, "remote-url", "", "DevTools websocket of an already running browser")
}

// headlessSettings merges explicitly set flags over the config values.
func headlessSettings(cmd *cobra.Command, cfg config.HeadlessConfig) config.HeadlessConfig {
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = captureFlags.width
	}
	if flags.Changed("height") {
		cfg.Height = captureFlags.height
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = captureFlags.concurrency
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = int(captureFlags.timeout.Round(time.Second) / time.Second)
	}
	if flags.Changed("exec-path") {
		cfg.ExecPath = captureFlags.execPath
	}
	if flags.Changed("remote-url") {
		cfg.RemoteURL = captureFlags.remoteURL
	}
	return cfg
}

// startCapturer launches or attaches to Chromium and returns a capturer
// whose tabs live in it. The returned func releases the browser.
func startCapturer(ctx context.Context, app *cli.App, settings config.HeadlessConfig) (*cli.Capturer, func(), error) {
	browser, err := headless.NewBrowser(ctx, headless.Options{
		ExecPath:  settings.ExecPath,
		RemoteURL: settings.RemoteURL,
		Width:     settings.Width,
		Height:    settings.Height,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("start browser: %w", err)
	}

	capturer := cli.NewCapturer(func(ctx context.Context, d port.Dispatcher) (port.PageEngine, error) {
		engine, err := browser.NewEngine(ctx, d)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}, app.SaveThumbnailUC)
	return capturer, func() { _ = browser.Close() }, nil
}

func captureRequest(settings config.HeadlessConfig) cli.CaptureRequest {
	return cli.CaptureRequest{
		Timeout:        time.Duration(settings.TimeoutSeconds) * time.Second,
		Concurrency:    settings.Concurrency,
		ViewportHeight: settings.Height,
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	settings := headlessSettings(cmd, app.Config.Headless)
	if settings.Width <= 0 || settings.Height <= 0 || settings.Concurrency <= 0 || settings.TimeoutSeconds <= 0 {
		return fmt.Errorf("width, height, concurrency and timeout must be positive")
	}

	urls := make([]string, 0, len(args))
	for _, arg := range args {
		u, err := cli.NormalizeURL(arg)
		if err != nil {
			return err
		}
		urls = append(urls, u)
	}

	ctx, stop := signal.NotifyContext(app.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	capturer, closeBrowser, err := startCapturer(ctx, app, settings)
	if err != nil {
		return err
	}
	defer closeBrowser()

	req := captureRequest(settings)
	req.URLs = urls
	results, err := capturer.Capture(ctx, req)

	rows := make([]styles.CaptureRow, 0, len(results))
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
		rows = append(rows, styles.CaptureRow{TabID: res.TabID.String(), URL: res.URL, Path: res.Path, Err: res.Err})
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.NewCaptureRenderer(app.Theme).RenderResults(rows))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d captures failed", failed, len(results))
	}
	return nil
}
