package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/logging"
	"github.com/bnema/webpage/internal/ui/component"
	"github.com/bnema/webpage/internal/ui/mainloop"
)

// ErrThumbnailUnavailable is reported when a page loaded but no thumbnail
// could be produced.
var ErrThumbnailUnavailable = errors.New("thumbnail unavailable")

var errControlQueueClosed = errors.New("control queue closed")

// EngineFactory opens a page engine whose callbacks run on dispatcher.
type EngineFactory func(ctx context.Context, dispatcher port.Dispatcher) (port.PageEngine, error)

// CaptureRequest describes a batch of pages to capture.
type CaptureRequest struct {
	URLs []string
	// Timeout bounds load plus capture of a single page.
	Timeout time.Duration
	// Concurrency is the number of pages in flight.
	Concurrency int
	// ViewportHeight is the window height handed to the tab container.
	ViewportHeight int
	// AfterTabID makes assigned tab ids start above it, so earlier
	// thumbnails are kept.
	AfterTabID entity.TabID
}

// CaptureResult is the outcome for one URL.
type CaptureResult struct {
	TabID entity.TabID
	URL   string
	Path  string
	Err   error
}

// Capturer loads pages into tabs of one container and writes a thumbnail
// for each once its root document has loaded.
type Capturer struct {
	newEngine EngineFactory
	saver     component.ThumbnailSaver
}

// NewCapturer creates a capturer.
func NewCapturer(newEngine EngineFactory, saver component.ThumbnailSaver) *Capturer {
	return &Capturer{newEngine: newEngine, saver: saver}
}

// Capture processes every URL and returns results in request order.
// Per-page failures are reported in the results, not as an error.
func (c *Capturer) Capture(ctx context.Context, req CaptureRequest) ([]CaptureResult, error) {
	if len(req.URLs) == 0 {
		return nil, nil
	}
	if req.Timeout <= 0 {
		return nil, fmt.Errorf("capture timeout must be positive")
	}
	concurrency := max(req.Concurrency, 1)

	queue := mainloop.NewQueue()
	queueCtx, stopQueue := context.WithCancel(ctx)
	go queue.Run(queueCtx)
	defer func() {
		queue.Close()
		stopQueue()
		<-queue.Done()
	}()

	container := component.NewTabContainer(queue, req.ViewportHeight, 0)
	container.ReserveTabIDs(req.AfterTabID)
	defer queue.Call(container.CloseAll)

	results := make([]CaptureResult, len(req.URLs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, url := range req.URLs {
		g.Go(func() error {
			results[i] = c.captureOne(gctx, queue, container, url, req.Timeout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (c *Capturer) captureOne(
	ctx context.Context,
	queue *mainloop.Queue,
	container *component.TabContainer,
	url string,
	timeout time.Duration,
) CaptureResult {
	result := CaptureResult{URL: url}
	ctx = logging.WithURL(ctx, url)
	log := logging.FromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	engine, err := c.newEngine(ctx, queue)
	if err != nil {
		result.Err = fmt.Errorf("open engine: %w", err)
		return result
	}

	ready := make(chan struct{})
	thumb := make(chan string, 1)
	var armed, requested atomic.Bool

	var (
		page   *component.WebPage
		addErr error
	)
	if !queue.Call(func() {
		page = component.NewWebPage(ctx, engine, c.saver, queue)
		page.SetCallbacks(component.WebPageCallbacks{
			OnViewReady: func() { close(ready) },
			OnDOMContentLoadedChanged: func(loaded bool) {
				if loaded && armed.Load() && requested.CompareAndSwap(false, true) {
					page.CaptureThumbnail()
				}
			},
			OnThumbnailResult: func(path string) {
				select {
				case thumb <- path:
				default:
				}
			},
		})
		result.TabID, addErr = container.AddPage(page)
	}) {
		_ = engine.Close()
		result.Err = errControlQueueClosed
		return result
	}
	if addErr != nil {
		result.Err = addErr
		queue.Call(page.Destroy)
		return result
	}
	defer queue.Call(func() { _ = container.Close(result.TabID) })

	select {
	case <-ready:
	case <-ctx.Done():
		result.Err = fmt.Errorf("view not ready: %w", ctx.Err())
		return result
	}

	armed.Store(true)
	if err := page.LoadTab(ctx, url, true); err != nil {
		result.Err = err
		return result
	}
	// The root document may have loaded before LoadTab returned.
	if page.DOMContentLoaded() && requested.CompareAndSwap(false, true) {
		queue.Dispatch(page.CaptureThumbnail)
	}

	select {
	case path := <-thumb:
		if path == "" {
			result.Err = ErrThumbnailUnavailable
			return result
		}
		result.Path = path
		log.Debug().Str("path", path).Msg("page captured")
	case <-ctx.Done():
		result.Err = fmt.Errorf("capture: %w", ctx.Err())
	}
	return result
}
