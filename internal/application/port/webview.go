// Package port defines application-layer interfaces for external capabilities.
// Ports abstract infrastructure concerns, allowing the application layer to
// remain independent of specific implementations (WebKit, Chromium, GTK).
package port

import (
	"context"
	"encoding/json"
	"image"
)

// Snapshot is a single-use handle on a rendered page image.
// Release must be called once the image has been taken.
type Snapshot interface {
	// Image returns the rendered image, or nil when the engine produced none.
	Image() image.Image
	// Release frees the engine-side resources held by the snapshot.
	Release()
}

// SnapshotFunc receives the outcome of PageEngine.Snapshot.
// Engines invoke it on the control thread.
type SnapshotFunc func(snap Snapshot, err error)

// EngineCallbacks defines the handlers an engine invokes for lifecycle events.
// Implementations invoke these on the control thread.
type EngineCallbacks struct {
	// OnViewInitialized is called once the rendering surface is ready.
	OnViewInitialized func()
	// OnMessage is called for every message whose name was registered
	// through AddMessageListener.
	OnMessage func(name string, payload json.RawMessage)
}

// PageEngine abstracts the embedded browser engine that renders one tab.
type PageEngine interface {
	// URL returns the URL currently loaded (empty before the first load).
	URL() string

	// Load starts navigation to url.
	Load(ctx context.Context, url string) error

	// SetChrome shows or hides the browser chrome overlay for this page.
	SetChrome(visible bool)

	// AddMessageListener asks the engine to forward messages named name.
	AddMessageListener(name string)

	// Size returns the current view size in pixels.
	Size() (width, height int)

	// Snapshot requests an asynchronous image of the rendered surface.
	// done is invoked exactly once unless ctx is cancelled first.
	Snapshot(ctx context.Context, done SnapshotFunc)

	// SetCallbacks registers the lifecycle handlers. Pass nil to clear them.
	SetCallbacks(callbacks *EngineCallbacks)

	// Close releases the engine resources.
	Close() error
}

// Dispatcher posts work onto the control thread (GTK main loop or an
// equivalent serial queue). Dispatch must not block.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) {
	f(fn)
}

// ImageSnapshot is a Snapshot backed by an in-memory image.
type ImageSnapshot struct {
	Img       image.Image
	OnRelease func()
}

// Image returns the wrapped image.
func (s *ImageSnapshot) Image() image.Image {
	if s == nil {
		return nil
	}
	return s.Img
}

// Release drops the image and runs OnRelease once.
func (s *ImageSnapshot) Release() {
	if s == nil {
		return
	}
	s.Img = nil
	if s.OnRelease != nil {
		fn := s.OnRelease
		s.OnRelease = nil
		fn()
	}
}
