// Package headless implements the page engine on top of a headless Chromium
// driven through the DevTools protocol.
package headless

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/logging"
)

// Options configures the browser process.
type Options struct {
	// ExecPath is the Chromium binary; empty lets chromedp search PATH.
	ExecPath string
	// RemoteURL attaches to an already running browser instead of
	// spawning one (ws://host:port or http://host:port).
	RemoteURL string
	Width     int
	Height    int
}

// Browser owns one Chromium process (or remote connection). Each engine is
// a tab inside it.
type Browser struct {
	opts Options

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewBrowser starts (or connects to) the browser. ctx carries the logger and
// bounds the browser lifetime.
func NewBrowser(ctx context.Context, opts Options) (*Browser, error) {
	log := logging.FromContext(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.RemoteURL != "" {
		log.Info().Str("url", opts.RemoteURL).Msg("connecting to Chromium")
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOptions(opts)...)
	}

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug().Msgf("cdp: "+format, args...)
		}),
	)

	// The first Run launches the process and opens the initial tab.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Browser{
		opts:          opts,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

func execOptions(opts Options) []chromedp.ExecAllocatorOption {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	options = append(options, chromedp.Flag("hide-scrollbars", true))
	if opts.Width > 0 && opts.Height > 0 {
		options = append(options, chromedp.WindowSize(opts.Width, opts.Height))
	}
	if opts.ExecPath != "" {
		options = append(options, chromedp.ExecPath(opts.ExecPath))
	}
	if os.Geteuid() == 0 {
		options = append(options, chromedp.NoSandbox)
	}
	return options
}

// NewEngine opens a new tab. Engine callbacks are posted on dispatcher.
func (b *Browser) NewEngine(ctx context.Context, dispatcher port.Dispatcher) (*Engine, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("browser closed")
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	e := newEngine(logging.WithComponent(ctx, "headless"), tabCtx, tabCancel, dispatcher, b.opts.Width, b.opts.Height)
	if err := e.attach(); err != nil {
		tabCancel()
		return nil, err
	}
	return e, nil
}

// Close shuts the browser down. Engines opened from it stop working.
func (b *Browser) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	err := chromedp.Cancel(b.browserCtx)
	b.browserCancel()
	b.allocCancel()
	if err != nil && b.opts.RemoteURL == "" {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
