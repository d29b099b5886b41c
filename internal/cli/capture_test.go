package cli

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/application/usecase"
	"github.com/bnema/webpage/internal/domain/entity"
)

type tempPaths struct{ dir string }

func (p tempPaths) ConfigDir() (string, error) { return p.dir, nil }
func (p tempPaths) CacheDir() (string, error)  { return p.dir, nil }

// scriptedEngine answers through the dispatcher it was opened with, the way
// a real engine calls back on the control thread.
type scriptedEngine struct {
	dispatcher port.Dispatcher
	loadErr    error
	snapErr    error
	silent     bool // never reports DOMContentLoaded

	mu        sync.Mutex
	url       string
	callbacks *port.EngineCallbacks
	listeners map[string]bool
	closed    bool
}

func (e *scriptedEngine) current() *port.EngineCallbacks {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	return e.callbacks
}

func (e *scriptedEngine) URL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.url
}

func (e *scriptedEngine) Load(_ context.Context, url string) error {
	if e.loadErr != nil {
		return e.loadErr
	}
	e.mu.Lock()
	e.url = url
	listening := e.listeners[entity.MessageDOMContentLoaded]
	e.mu.Unlock()

	if e.silent || !listening {
		return nil
	}
	e.dispatcher.Dispatch(func() {
		if cb := e.current(); cb != nil && cb.OnMessage != nil {
			cb.OnMessage(entity.MessageDOMContentLoaded, []byte(`{"rootFrame":false}`))
			cb.OnMessage(entity.MessageDOMContentLoaded, []byte(`{"rootFrame":true}`))
		}
	})
	return nil
}

func (e *scriptedEngine) SetChrome(bool) {}

func (e *scriptedEngine) AddMessageListener(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string]bool)
	}
	e.listeners[name] = true
}

func (e *scriptedEngine) Size() (int, int) { return 200, 100 }

func (e *scriptedEngine) Snapshot(_ context.Context, done port.SnapshotFunc) {
	e.dispatcher.Dispatch(func() {
		if e.snapErr != nil {
			done(nil, e.snapErr)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 200, 100))
		for x := 0; x < 200; x++ {
			img.Set(x, 10, color.RGBA{R: 255, A: 255})
		}
		done(&port.ImageSnapshot{Img: img}, nil)
	})
}

func (e *scriptedEngine) SetCallbacks(callbacks *port.EngineCallbacks) {
	e.mu.Lock()
	e.callbacks = callbacks
	e.mu.Unlock()
	if callbacks == nil {
		return
	}
	e.dispatcher.Dispatch(func() {
		if cb := e.current(); cb != nil && cb.OnViewInitialized != nil {
			cb.OnViewInitialized()
		}
	})
}

func (e *scriptedEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// engineFarm hands out scripted engines, configured per URL by tweak.
type engineFarm struct {
	mu      sync.Mutex
	engines []*scriptedEngine
	tweak   func(n int, e *scriptedEngine)
	openErr error
}

func (f *engineFarm) factory(_ context.Context, dispatcher port.Dispatcher) (port.PageEngine, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &scriptedEngine{dispatcher: dispatcher}
	if f.tweak != nil {
		f.tweak(len(f.engines), e)
	}
	f.engines = append(f.engines, e)
	return e, nil
}

func (f *engineFarm) allClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.engines {
		e.mu.Lock()
		closed := e.closed
		e.mu.Unlock()
		if !closed {
			return false
		}
	}
	return true
}

func newTestCapturer(t *testing.T, farm *engineFarm) (*Capturer, string) {
	t.Helper()
	dir := t.TempDir()
	saver := usecase.NewSaveThumbnailUseCase(tempPaths{dir: dir}, entity.ThumbnailQuality)
	return NewCapturer(farm.factory, saver), dir
}

func TestCapturer_CapturesEveryURL(t *testing.T) {
	farm := &engineFarm{}
	capturer, dir := newTestCapturer(t, farm)

	urls := []string{"https://a.test/", "https://b.test/", "https://c.test/"}
	results, err := capturer.Capture(context.Background(), CaptureRequest{
		URLs:           urls,
		Timeout:        5 * time.Second,
		Concurrency:    2,
		ViewportHeight: 100,
	})
	require.NoError(t, err)
	require.Len(t, results, len(urls))

	seen := make(map[entity.TabID]bool)
	for i, res := range results {
		require.NoError(t, res.Err, res.URL)
		assert.Equal(t, urls[i], res.URL)
		assert.False(t, seen[res.TabID], "tab ids are unique")
		seen[res.TabID] = true
		assert.Equal(t, filepath.Join(dir, entity.ThumbnailFileName(res.TabID)), res.Path)
		assert.FileExists(t, res.Path)
	}
	assert.True(t, farm.allClosed(), "every engine is released")
}

func TestCapturer_AfterTabID(t *testing.T) {
	capturer, dir := newTestCapturer(t, &engineFarm{})

	results, err := capturer.Capture(context.Background(), CaptureRequest{
		URLs:        []string{"https://a.test/"},
		Timeout:     5 * time.Second,
		Concurrency: 1,
		AfterTabID:  9,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, entity.TabID(10), results[0].TabID)
	assert.FileExists(t, filepath.Join(dir, entity.ThumbnailFileName(10)))
}

func TestCapturer_ReportsPerPageFailures(t *testing.T) {
	loadErr := errors.New("dns failure")
	// Concurrency 1 opens engines in URL order.
	farm := &engineFarm{tweak: func(n int, e *scriptedEngine) {
		switch n {
		case 0:
			e.loadErr = loadErr
		case 1:
			e.snapErr = errors.New("gpu lost")
		}
	}}
	capturer, _ := newTestCapturer(t, farm)

	results, err := capturer.Capture(context.Background(), CaptureRequest{
		URLs:        []string{"https://down.test/", "https://blank.test/", "https://ok.test/"},
		Timeout:     5 * time.Second,
		Concurrency: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.ErrorIs(t, results[0].Err, loadErr)
	assert.ErrorIs(t, results[1].Err, ErrThumbnailUnavailable)
	assert.NoError(t, results[2].Err)
	assert.NotEmpty(t, results[2].Path)
	assert.True(t, farm.allClosed())
}

func TestCapturer_Timeout(t *testing.T) {
	farm := &engineFarm{tweak: func(_ int, e *scriptedEngine) { e.silent = true }}
	capturer, _ := newTestCapturer(t, farm)

	results, err := capturer.Capture(context.Background(), CaptureRequest{
		URLs:        []string{"https://slow.test/"},
		Timeout:     100 * time.Millisecond,
		Concurrency: 1,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.Empty(t, results[0].Path)
	assert.True(t, farm.allClosed())
}

func TestCapturer_EngineOpenFailure(t *testing.T) {
	farm := &engineFarm{openErr: errors.New("no chromium")}
	capturer, _ := newTestCapturer(t, farm)

	results, err := capturer.Capture(context.Background(), CaptureRequest{
		URLs:    []string{"https://a.test/"},
		Timeout: time.Second,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorContains(t, results[0].Err, "no chromium")
}

func TestCapturer_RequestValidation(t *testing.T) {
	capturer, _ := newTestCapturer(t, &engineFarm{})

	results, err := capturer.Capture(context.Background(), CaptureRequest{})
	assert.NoError(t, err)
	assert.Empty(t, results)

	_, err = capturer.Capture(context.Background(), CaptureRequest{URLs: []string{"https://a.test/"}})
	assert.Error(t, err)
}
