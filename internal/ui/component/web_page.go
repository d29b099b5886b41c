package component

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"sync"
	"weak"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/application/usecase"
	"github.com/bnema/webpage/internal/async"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/logging"
)

// ErrDestroyed is returned by operations on a destroyed page.
var ErrDestroyed = errors.New("web page destroyed")

// ThumbnailSaver performs the crop/encode/write step off the control thread.
type ThumbnailSaver interface {
	Execute(ctx context.Context, input usecase.SaveThumbnailInput) (*usecase.SaveThumbnailOutput, error)
}

// WebPageCallbacks are the observable signals of a WebPage.
// They are invoked on the control thread, outside the page lock.
type WebPageCallbacks struct {
	OnContainerChanged              func()
	OnViewReady                     func()
	OnDOMContentLoadedChanged       func(loaded bool)
	OnFullscreenChanged             func(fullscreen bool)
	OnResurrectedContentRectChanged func(rect *entity.ContentRect)
	// OnThumbnailCleared precedes every new capture; consumers drop the
	// previous preview.
	OnThumbnailCleared func()
	// OnThumbnailResult carries the written file path, or "" when the
	// thumbnail is unavailable.
	OnThumbnailResult func(path string)
}

type messageHandler func(payload json.RawMessage) error

// WebPage is the view item of one tab: it relays engine lifecycle messages
// into page state, starts navigations and captures thumbnails.
type WebPage struct {
	engine     port.PageEngine
	saver      ThumbnailSaver
	dispatcher port.Dispatcher

	ctx    context.Context
	cancel context.CancelFunc

	// handlers is keyed by engine message name; fixed after construction.
	handlers     map[string]messageHandler
	messageOrder []string

	mu                     sync.Mutex
	container              weak.Pointer[TabContainer]
	tabID                  entity.TabID
	viewReady              bool
	domContentLoaded       bool
	fullscreen             bool
	urlHasChanged          bool
	backForwardNavigation  bool
	resurrectedContentRect *entity.ContentRect
	callbacks              WebPageCallbacks
	destroyed              bool

	// captureGen identifies the latest capture request; older requests are
	// superseded and never deliver a result.
	captureGen       uint64
	pendingThumbnail *async.Task[string]
	inflight         map[*async.Task[string]]struct{}
}

// NewWebPage wraps engine and subscribes to its lifecycle callbacks.
// dispatcher must post onto the same thread the engine calls back on.
func NewWebPage(ctx context.Context, engine port.PageEngine, saver ThumbnailSaver, dispatcher port.Dispatcher) *WebPage {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithComponent(ctx, "web-page")
	pageCtx, cancel := context.WithCancel(ctx)

	p := &WebPage{
		engine:     engine,
		saver:      saver,
		dispatcher: dispatcher,
		ctx:        pageCtx,
		cancel:     cancel,
		inflight:   make(map[*async.Task[string]]struct{}),
	}

	p.handlers = map[string]messageHandler{
		entity.MessageFullscreenChanged: p.handleFullscreenMessage,
		entity.MessageDOMContentLoaded:  p.handleDOMContentLoadedMessage,
	}
	p.messageOrder = []string{entity.MessageFullscreenChanged, entity.MessageDOMContentLoaded}

	engine.SetCallbacks(&port.EngineCallbacks{
		OnViewInitialized: p.onViewInitialized,
		OnMessage:         p.onMessage,
	})

	return p
}

// SetCallbacks replaces the page signal handlers.
func (p *WebPage) SetCallbacks(callbacks WebPageCallbacks) {
	p.mu.Lock()
	p.callbacks = callbacks
	p.mu.Unlock()
}

// Engine returns the wrapped engine.
func (p *WebPage) Engine() port.PageEngine {
	return p.engine
}

// --- Properties ---

// Container returns the enclosing container, or nil once it is gone.
func (p *WebPage) Container() *TabContainer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.container.Value()
}

// SetContainer records the enclosing container without keeping it alive.
func (p *WebPage) SetContainer(container *TabContainer) {
	p.mu.Lock()
	ref := weak.Make(container)
	if ref == p.container {
		p.mu.Unlock()
		return
	}
	p.container = ref
	cb := p.callbacks.OnContainerChanged
	p.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// TabID returns the tab identifier.
func (p *WebPage) TabID() entity.TabID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tabID
}

// SetTabID sets the tab identifier used for the thumbnail file name.
func (p *WebPage) SetTabID(id entity.TabID) {
	p.mu.Lock()
	p.tabID = id
	p.mu.Unlock()
}

// ViewReady reports whether the engine finished initializing the view.
func (p *WebPage) ViewReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewReady
}

// DOMContentLoaded reports whether the top-level document of the current
// navigation has been parsed.
func (p *WebPage) DOMContentLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.domContentLoaded
}

// Fullscreen reports the engine full-screen state.
func (p *WebPage) Fullscreen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fullscreen
}

// URLHasChanged returns the flag maintained by navigation logic.
func (p *WebPage) URLHasChanged() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.urlHasChanged
}

// SetURLHasChanged sets the flag maintained by navigation logic.
func (p *WebPage) SetURLHasChanged(changed bool) {
	p.mu.Lock()
	p.urlHasChanged = changed
	p.mu.Unlock()
}

// BackForwardNavigation returns the flag maintained by navigation logic.
func (p *WebPage) BackForwardNavigation() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.backForwardNavigation
}

// SetBackForwardNavigation sets the flag maintained by navigation logic.
func (p *WebPage) SetBackForwardNavigation(backForward bool) {
	p.mu.Lock()
	p.backForwardNavigation = backForward
	p.mu.Unlock()
}

// ResurrectedContentRect returns the content rectangle restored for this tab.
func (p *WebPage) ResurrectedContentRect() *entity.ContentRect {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resurrectedContentRect == nil {
		return nil
	}
	rect := *p.resurrectedContentRect
	return &rect
}

// SetResurrectedContentRect stores rect; a change signal fires only when
// the value differs.
func (p *WebPage) SetResurrectedContentRect(rect *entity.ContentRect) {
	p.mu.Lock()
	if sameRect(p.resurrectedContentRect, rect) {
		p.mu.Unlock()
		return
	}
	var stored *entity.ContentRect
	if rect != nil {
		copied := *rect
		stored = &copied
	}
	p.resurrectedContentRect = stored
	cb := p.callbacks.OnResurrectedContentRectChanged
	p.mu.Unlock()

	if cb != nil {
		cb(stored)
	}
}

func sameRect(a, b *entity.ContentRect) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetFullscreen updates the full-screen state. A real transition asks the
// container to recompute its height before the change is signalled.
func (p *WebPage) SetFullscreen(fullscreen bool) {
	p.mu.Lock()
	if p.destroyed || p.fullscreen == fullscreen {
		p.mu.Unlock()
		return
	}
	p.fullscreen = fullscreen
	container := p.container.Value()
	cb := p.callbacks.OnFullscreenChanged
	p.mu.Unlock()

	if container != nil {
		container.ResetHeight()
	}
	if cb != nil {
		cb(fullscreen)
	}
}

// --- Engine relay ---

func (p *WebPage) onViewInitialized() {
	p.mu.Lock()
	if p.destroyed || p.viewReady {
		p.mu.Unlock()
		return
	}
	p.viewReady = true
	cb := p.callbacks.OnViewReady
	p.mu.Unlock()

	for _, name := range p.messageOrder {
		p.engine.AddMessageListener(name)
	}

	logging.FromContext(p.ctx).Debug().Msg("view initialized")

	if cb != nil {
		cb()
	}
}

func (p *WebPage) onMessage(name string, payload json.RawMessage) {
	p.mu.Lock()
	destroyed := p.destroyed
	p.mu.Unlock()
	if destroyed {
		return
	}

	handler, ok := p.handlers[name]
	if !ok {
		return
	}
	if err := handler(payload); err != nil {
		logging.FromContext(p.ctx).Debug().Err(err).Str("message", name).Msg("ignoring malformed engine message")
	}
}

func (p *WebPage) handleFullscreenMessage(payload json.RawMessage) error {
	var msg entity.FullscreenPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode fullscreen payload: %w", err)
	}
	p.SetFullscreen(msg.Fullscreen)
	return nil
}

func (p *WebPage) handleDOMContentLoadedMessage(payload json.RawMessage) error {
	var msg entity.DOMContentLoadedPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode domcontentloaded payload: %w", err)
	}
	if !msg.RootFrame {
		return nil
	}

	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return nil
	}
	p.domContentLoaded = true
	cb := p.callbacks.OnDOMContentLoadedChanged
	p.mu.Unlock()

	if cb != nil {
		cb(true)
	}
	return nil
}

// --- Navigation ---

// LoadTab shows the chrome and navigates to targetURL when it differs from
// the current URL, or unconditionally when force is set.
//
// LoadTab may be called from any goroutine the engine accepts: the
// headless engine blocks until the load event and is safe off the control
// thread, WebKit must be driven from the GTK thread. The loaded=false
// signal is posted to the control thread either way.
func (p *WebPage) LoadTab(ctx context.Context, targetURL string, force bool) error {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return ErrDestroyed
	}
	p.mu.Unlock()

	p.engine.SetChrome(true)

	current := p.engine.URL()
	if !force && (targetURL == "" || targetURL == current) {
		return nil
	}

	p.mu.Lock()
	p.domContentLoaded = false
	cb := p.callbacks.OnDOMContentLoadedChanged
	p.mu.Unlock()

	if cb != nil {
		p.dispatcher.Dispatch(func() { cb(false) })
	}

	logging.FromContext(p.ctx).Debug().
		Str("url", targetURL).
		Bool("force", force).
		Msg("loading tab")

	if err := p.engine.Load(ctx, targetURL); err != nil {
		return fmt.Errorf("load %q: %w", targetURL, err)
	}
	return nil
}

// --- Thumbnail ---

// CaptureThumbnail signals that the previous thumbnail is stale, then
// requests a snapshot. The result arrives through OnThumbnailResult.
// A capture started while another is pending supersedes it.
func (p *WebPage) CaptureThumbnail() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.captureGen++
	gen := p.captureGen
	if p.pendingThumbnail != nil {
		p.pendingThumbnail.Cancel()
		p.pendingThumbnail = nil
	}
	cleared := p.callbacks.OnThumbnailCleared
	p.mu.Unlock()

	if cleared != nil {
		cleared()
	}

	p.engine.Snapshot(p.ctx, func(snap port.Snapshot, err error) {
		p.onSnapshotReady(gen, snap, err)
	})
}

func (p *WebPage) onSnapshotReady(gen uint64, snap port.Snapshot, snapErr error) {
	var img image.Image
	if snap != nil {
		img = snap.Image()
		snap.Release()
	}

	p.mu.Lock()
	if p.destroyed || gen != p.captureGen {
		p.mu.Unlock()
		return
	}
	tabID := p.tabID
	p.mu.Unlock()

	ctx := logging.WithTabID(p.ctx, tabID.String())
	log := logging.FromContext(ctx)

	if snapErr != nil {
		log.Warn().Err(snapErr).Msg("page snapshot failed")
		p.dispatcher.Dispatch(func() { p.deliverThumbnail(gen, nil, "") })
		return
	}

	width, height := p.engine.Size()
	input := usecase.SaveThumbnailInput{
		TabID: tabID,
		Image: img,
		Crop:  entity.ThumbnailCrop(width, height),
	}

	task := async.Run(ctx, func(ctx context.Context) string {
		out, err := p.saver.Execute(ctx, input)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Msg("thumbnail save failed")
			}
			return ""
		}
		return out.Path
	})

	p.mu.Lock()
	if p.destroyed || gen != p.captureGen {
		p.mu.Unlock()
		task.Cancel()
		task.Wait()
		return
	}
	p.pendingThumbnail = task
	p.inflight[task] = struct{}{}
	p.mu.Unlock()

	go func() {
		path := task.Wait()
		if err := task.Err(); err != nil {
			log.Error().Err(err).Msg("thumbnail worker crashed")
		}

		p.mu.Lock()
		delete(p.inflight, task)
		p.mu.Unlock()

		if task.Cancelled() {
			return
		}
		p.dispatcher.Dispatch(func() { p.deliverThumbnail(gen, task, path) })
	}()
}

func (p *WebPage) deliverThumbnail(gen uint64, task *async.Task[string], path string) {
	p.mu.Lock()
	if p.destroyed || gen != p.captureGen || (task != nil && task.Cancelled()) {
		p.mu.Unlock()
		return
	}
	if p.pendingThumbnail == task {
		p.pendingThumbnail = nil
	}
	cb := p.callbacks.OnThumbnailResult
	p.mu.Unlock()

	if cb != nil {
		cb(path)
	}
}

// HasPendingThumbnail reports whether a save job is in flight.
func (p *WebPage) HasPendingThumbnail() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pendingThumbnail != nil
}

// --- Lifecycle ---

// Destroy cancels in-flight thumbnail jobs, waits for them to return and
// releases the engine. No signal is emitted once Destroy has started.
func (p *WebPage) Destroy() {
	p.mu.Lock()
	if p.destroyed {
		p.mu.Unlock()
		return
	}
	p.destroyed = true
	p.callbacks = WebPageCallbacks{}
	tasks := make([]*async.Task[string], 0, len(p.inflight))
	for task := range p.inflight {
		tasks = append(tasks, task)
	}
	p.pendingThumbnail = nil
	p.mu.Unlock()

	p.cancel()
	for _, task := range tasks {
		task.Cancel()
		task.Wait()
	}

	p.engine.SetCallbacks(nil)
	if err := p.engine.Close(); err != nil {
		logging.FromContext(p.ctx).Warn().Err(err).Msg("engine close failed")
	}
}

// IsDestroyed reports whether Destroy has been called.
func (p *WebPage) IsDestroyed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroyed
}
