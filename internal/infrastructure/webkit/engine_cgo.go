//go:build webkit_cgo

package webkit

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"sync"

	"github.com/diamondburned/gotk4-webkitgtk/pkg/javascriptcore/v6"
	webkit "github.com/diamondburned/gotk4-webkitgtk/pkg/webkit/v6"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/infrastructure/bridge"
	"github.com/bnema/webpage/internal/logging"
)

// IsNativeAvailable reports whether WebKitGTK support was compiled in.
func IsNativeAvailable() bool {
	return true
}

// IdleDispatcher posts work onto the GTK main loop.
type IdleDispatcher struct{}

// Dispatch schedules fn as a one-shot idle callback.
func (IdleDispatcher) Dispatch(fn func()) {
	glib.IdleAdd(func() bool {
		fn()
		return false
	})
}

// Engine wraps a WebKitGTK WebView. All methods must run on the GTK main
// thread.
type Engine struct {
	logCtx     context.Context
	view       *webkit.WebView
	ucm        *webkit.UserContentManager
	dispatcher port.Dispatcher
	listeners  *bridge.Listeners
	chrome     gtk.Widgetter

	mu          sync.Mutex
	callbacks   *port.EngineCallbacks
	realized    bool
	initialized bool
	closed      bool
}

// NewEngine creates the WebView, injects the bridge script and connects the
// engine signals.
func NewEngine(ctx context.Context, dispatcher port.Dispatcher) (*Engine, error) {
	if dispatcher == nil {
		dispatcher = IdleDispatcher{}
	}

	view := webkit.NewWebView()
	if view == nil {
		return nil, fmt.Errorf("webkit: failed to create WebView")
	}
	ucm := view.UserContentManager()
	if ucm == nil {
		return nil, fmt.Errorf("webkit: WebView has no UserContentManager")
	}

	e := &Engine{
		logCtx:     logging.WithComponent(ctx, "webkit"),
		view:       view,
		ucm:        ucm,
		dispatcher: dispatcher,
		listeners:  bridge.NewListeners(),
	}

	ucm.AddScript(webkit.NewUserScript(
		bridge.WebKitScript(HandlerName),
		webkit.UserContentInjectAllFrames,
		webkit.UserScriptInjectAtDocumentStart,
		nil,
		nil,
	))
	if !ucm.RegisterScriptMessageHandler(HandlerName, "") {
		return nil, fmt.Errorf("webkit: failed to register %q script message handler", HandlerName)
	}
	ucm.ConnectScriptMessageReceived(func(value *javascriptcore.Value) {
		if value == nil {
			return
		}
		e.onScriptMessage(value.ToJSON(0))
	})

	// Native signals complement the page-side fullscreenchange event.
	view.ConnectEnterFullscreen(func() bool {
		e.emit(entity.MessageFullscreenChanged, fullscreenMessage(true))
		return false
	})
	view.ConnectLeaveFullscreen(func() bool {
		e.emit(entity.MessageFullscreenChanged, fullscreenMessage(false))
		return false
	})

	view.ConnectRealize(e.markRealized)
	if view.Realized() {
		e.markRealized()
	}

	return e, nil
}

// Widget returns the WebView for embedding in a container.
func (e *Engine) Widget() *webkit.WebView {
	return e.view
}

// SetChromeWidget sets the widget toggled by SetChrome.
func (e *Engine) SetChromeWidget(chrome gtk.Widgetter) {
	e.chrome = chrome
}

func (e *Engine) markRealized() {
	e.mu.Lock()
	e.realized = true
	e.mu.Unlock()
	e.maybeSignalInitialized()
}

func (e *Engine) maybeSignalInitialized() {
	e.mu.Lock()
	if e.initialized || !e.realized || e.closed || e.callbacks == nil {
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

func (e *Engine) onScriptMessage(raw string) {
	name, payload, ok := decodeScriptMessage(raw, e.listeners)
	if !ok {
		logging.FromContext(e.logCtx).Trace().Msg("dropping script message")
		return
	}
	e.emit(name, payload)
}

func (e *Engine) emit(name string, payload []byte) {
	if !e.listeners.Accepts(name) {
		return
	}
	e.dispatcher.Dispatch(func() {
		if cb := e.currentCallbacks(); cb != nil && cb.OnMessage != nil {
			cb.OnMessage(name, payload)
		}
	})
}

// URL returns the URI the WebView is showing.
func (e *Engine) URL() string {
	return e.view.URI()
}

// Load starts a navigation. WebKit reports progress asynchronously.
func (e *Engine) Load(_ context.Context, url string) error {
	if e.isClosed() {
		return fmt.Errorf("webkit: engine closed")
	}
	if url == "" {
		url = "about:blank"
	}
	e.view.LoadURI(url)
	return nil
}

// SetChrome shows or hides the chrome widget, if any.
func (e *Engine) SetChrome(visible bool) {
	if e.chrome == nil {
		return
	}
	gtk.BaseWidget(e.chrome).SetVisible(visible)
}

// AddMessageListener lets messages called name through.
func (e *Engine) AddMessageListener(name string) {
	e.listeners.Add(name)
}

// Size returns the allocated widget size.
func (e *Engine) Size() (int, int) {
	return e.view.Width(), e.view.Height()
}

// Snapshot renders the visible region to a texture and decodes it.
// done runs on the GTK main thread.
func (e *Engine) Snapshot(ctx context.Context, done port.SnapshotFunc) {
	if done == nil {
		return
	}
	if e.isClosed() {
		e.dispatcher.Dispatch(func() { done(nil, fmt.Errorf("webkit: engine closed")) })
		return
	}

	e.view.Snapshot(ctx, webkit.SnapshotRegionVisible, webkit.SnapshotOptionsNone, func(res gio.AsyncResulter) {
		texture, err := e.view.SnapshotFinish(res)
		if err != nil {
			done(nil, fmt.Errorf("webkit snapshot: %w", err))
			return
		}
		snap, err := textureSnapshot(texture)
		done(snap, err)
	})
}

func textureSnapshot(texture gdk.Texturer) (port.Snapshot, error) {
	if texture == nil {
		return nil, fmt.Errorf("webkit snapshot: no texture")
	}
	pngBytes := gdk.BaseTexture(texture).SaveToPNGBytes()
	if pngBytes == nil {
		return nil, fmt.Errorf("webkit snapshot: texture encode failed")
	}
	img, err := png.Decode(bytes.NewReader(pngBytes.Data()))
	if err != nil {
		return nil, fmt.Errorf("webkit snapshot: %w", err)
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

// Close detaches the message handler and asks the web process to close.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.callbacks = nil
	e.mu.Unlock()

	e.ucm.UnregisterScriptMessageHandler(HandlerName, "")
	e.view.TryClose()
	return nil
}

func (e *Engine) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

var _ port.PageEngine = (*Engine)(nil)
