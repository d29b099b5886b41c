package headless

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/infrastructure/bridge"
	"github.com/bnema/webpage/internal/logging"
)

// BindingName is the CDP runtime binding the bridge script posts through.
const BindingName = "__webpagePost"

const blankURL = "about:blank"

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("headless engine closed")

// Engine is a Chromium tab implementing port.PageEngine.
type Engine struct {
	logCtx     context.Context
	tabCtx     context.Context
	tabCancel  context.CancelFunc
	dispatcher port.Dispatcher
	listeners  *bridge.Listeners
	width      int
	height     int

	mu          sync.Mutex
	callbacks   *port.EngineCallbacks
	url         string
	chrome      bool
	attached    bool
	initialized bool
	closed      bool
}

func newEngine(logCtx, tabCtx context.Context, tabCancel context.CancelFunc, dispatcher port.Dispatcher, width, height int) *Engine {
	if dispatcher == nil {
		panic("headless: dispatcher cannot be nil")
	}
	return &Engine{
		logCtx:     logCtx,
		tabCtx:     tabCtx,
		tabCancel:  tabCancel,
		dispatcher: dispatcher,
		listeners:  bridge.NewListeners(),
		width:      width,
		height:     height,
		url:        blankURL,
	}
}

// attach opens the tab, installs the bridge and starts listening.
func (e *Engine) attach() error {
	actions := chromedp.Tasks{
		runtime.AddBinding(BindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(bridge.BindingScript(BindingName)).Do(ctx)
			return err
		}),
	}
	if e.width > 0 && e.height > 0 {
		actions = append(chromedp.Tasks{chromedp.EmulateViewport(int64(e.width), int64(e.height))}, actions...)
	}

	if err := chromedp.Run(e.tabCtx, actions); err != nil {
		return fmt.Errorf("failed to attach tab: %w", err)
	}

	chromedp.ListenTarget(e.tabCtx, e.handleEvent)
	e.markAttached()
	return nil
}

func (e *Engine) markAttached() {
	e.mu.Lock()
	e.attached = true
	e.mu.Unlock()
	e.maybeSignalInitialized()
}

// maybeSignalInitialized posts OnViewInitialized once the tab is attached
// and someone is listening.
func (e *Engine) maybeSignalInitialized() {
	e.mu.Lock()
	if e.initialized || !e.attached || e.closed || e.callbacks == nil {
		e.mu.Unlock()
		return
	}
	e.initialized = true
	e.mu.Unlock()

	e.dispatcher.Dispatch(func() {
		if cb := e.currentCallbacks(); cb != nil && cb.OnViewInitialized != nil {
			cb.OnViewInitialized()
		}
	})
}

func (e *Engine) currentCallbacks() *port.EngineCallbacks {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	return e.callbacks
}

func (e *Engine) handleEvent(ev any) {
	switch ev := ev.(type) {
	case *runtime.EventBindingCalled:
		if ev.Name != BindingName {
			return
		}
		e.deliver([]byte(ev.Payload))
	case *page.EventFrameNavigated:
		if ev.Frame == nil || ev.Frame.ParentID != "" {
			return
		}
		e.mu.Lock()
		e.url = ev.Frame.URL
		e.mu.Unlock()
	case *page.EventNavigatedWithinDocument:
		e.mu.Lock()
		e.url = ev.URL
		e.mu.Unlock()
	}
}

func (e *Engine) deliver(raw []byte) {
	env, err := bridge.Decode(raw)
	if err != nil {
		logging.FromContext(e.logCtx).Debug().Err(err).Msg("dropping bridge message")
		return
	}
	if !e.listeners.Accepts(env.Type) {
		return
	}

	name, payload := env.Type, env.Payload
	e.dispatcher.Dispatch(func() {
		if cb := e.currentCallbacks(); cb != nil && cb.OnMessage != nil {
			cb.OnMessage(name, payload)
		}
	})
}

// URL returns the top frame URL.
func (e *Engine) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

// Load navigates the tab and waits for the load event.
func (e *Engine) Load(ctx context.Context, url string) error {
	if e.isClosed() {
		return ErrClosed
	}
	if url == "" {
		url = blankURL
	}

	runCtx, cancel := context.WithCancel(e.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	logging.FromContext(e.logCtx).Debug().Str("url", url).Msg("navigating")
	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	e.mu.Lock()
	e.url = url
	e.mu.Unlock()
	return nil
}

// SetChrome records whether browser chrome should be shown. Headless tabs
// have none.
func (e *Engine) SetChrome(visible bool) {
	e.mu.Lock()
	e.chrome = visible
	e.mu.Unlock()
}

// ChromeVisible returns the last SetChrome value.
func (e *Engine) ChromeVisible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chrome
}

// AddMessageListener lets bridge messages called name through.
func (e *Engine) AddMessageListener(name string) {
	e.listeners.Add(name)
}

// Size returns the emulated viewport.
func (e *Engine) Size() (int, int) {
	return e.width, e.height
}

// Snapshot captures the viewport off the control thread and posts the
// decoded image back through the dispatcher.
func (e *Engine) Snapshot(ctx context.Context, done port.SnapshotFunc) {
	if done == nil {
		return
	}
	if e.isClosed() {
		e.dispatcher.Dispatch(func() { done(nil, ErrClosed) })
		return
	}

	go func() {
		snap, err := e.capture(ctx)
		e.dispatcher.Dispatch(func() { done(snap, err) })
	}()
}

func (e *Engine) capture(ctx context.Context) (port.Snapshot, error) {
	runCtx, cancel := context.WithCancel(e.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var buf []byte
	if err := chromedp.Run(runCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return &port.ImageSnapshot{Img: img}, nil
}

// SetCallbacks installs the page callbacks; nil detaches them.
func (e *Engine) SetCallbacks(callbacks *port.EngineCallbacks) {
	e.mu.Lock()
	e.callbacks = callbacks
	e.mu.Unlock()
	e.maybeSignalInitialized()
}

// Close closes the tab.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.callbacks = nil
	e.mu.Unlock()

	err := chromedp.Cancel(e.tabCtx)
	e.tabCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close tab: %w", err)
	}
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

var _ port.PageEngine = (*Engine)(nil)
