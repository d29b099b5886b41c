package headless

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/domain/entity"
)

type recordingDispatcher struct {
	queue []func()
}

func (d *recordingDispatcher) Dispatch(fn func()) {
	d.queue = append(d.queue, fn)
}

func (d *recordingDispatcher) drain() {
	for len(d.queue) > 0 {
		fn := d.queue[0]
		d.queue = d.queue[1:]
		fn()
	}
}

type received struct {
	name    string
	payload string
}

func newDetachedEngine(t *testing.T) (*Engine, *recordingDispatcher) {
	t.Helper()
	d := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return newEngine(ctx, ctx, cancel, d, 640, 480), d
}

func bindingCall(t *testing.T, name, msgType string, payload any) *runtime.EventBindingCalled {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"type": msgType, "payload": payload})
	require.NoError(t, err)
	return &runtime.EventBindingCalled{Name: name, Payload: string(raw)}
}

func TestEngine_ViewInitializedAfterAttachAndCallbacks(t *testing.T) {
	e, d := newDetachedEngine(t)

	initialized := 0
	e.SetCallbacks(&port.EngineCallbacks{OnViewInitialized: func() { initialized++ }})
	d.drain()
	assert.Zero(t, initialized, "not attached yet")

	e.markAttached()
	d.drain()
	assert.Equal(t, 1, initialized)

	e.SetCallbacks(&port.EngineCallbacks{OnViewInitialized: func() { initialized++ }})
	e.markAttached()
	d.drain()
	assert.Equal(t, 1, initialized, "signalled once")
}

func TestEngine_ViewInitializedWaitsForCallbacks(t *testing.T) {
	e, d := newDetachedEngine(t)
	e.markAttached()
	assert.Empty(t, d.queue)

	initialized := false
	e.SetCallbacks(&port.EngineCallbacks{OnViewInitialized: func() { initialized = true }})
	d.drain()
	assert.True(t, initialized)
}

func TestEngine_BindingMessagesFilteredByListener(t *testing.T) {
	e, d := newDetachedEngine(t)

	var got []received
	e.SetCallbacks(&port.EngineCallbacks{OnMessage: func(name string, payload json.RawMessage) {
		got = append(got, received{name: name, payload: string(payload)})
	}})

	e.handleEvent(bindingCall(t, BindingName, entity.MessageDOMContentLoaded, map[string]bool{"rootFrame": true}))
	d.drain()
	assert.Empty(t, got, "no listener registered yet")

	e.AddMessageListener(entity.MessageDOMContentLoaded)
	e.handleEvent(bindingCall(t, BindingName, entity.MessageDOMContentLoaded, map[string]bool{"rootFrame": true}))
	e.handleEvent(bindingCall(t, "otherBinding", entity.MessageDOMContentLoaded, map[string]bool{"rootFrame": true}))
	e.handleEvent(bindingCall(t, BindingName, entity.MessageFullscreenChanged, map[string]bool{"fullscreen": true}))
	e.handleEvent(&runtime.EventBindingCalled{Name: BindingName, Payload: "not json"})
	d.drain()

	require.Len(t, got, 1)
	assert.Equal(t, entity.MessageDOMContentLoaded, got[0].name)
	assert.JSONEq(t, `{"rootFrame":true}`, got[0].payload)
}

func TestEngine_TracksTopFrameURL(t *testing.T) {
	e, _ := newDetachedEngine(t)
	assert.Equal(t, blankURL, e.URL())

	e.handleEvent(&page.EventFrameNavigated{Frame: &cdp.Frame{ID: "child", ParentID: "top", URL: "https://ads.example"}})
	assert.Equal(t, blankURL, e.URL())

	e.handleEvent(&page.EventFrameNavigated{Frame: &cdp.Frame{ID: "top", URL: "https://site.example/"}})
	assert.Equal(t, "https://site.example/", e.URL())

	e.handleEvent(&page.EventNavigatedWithinDocument{URL: "https://site.example/#a"})
	assert.Equal(t, "https://site.example/#a", e.URL())
}

func TestEngine_SizeAndChrome(t *testing.T) {
	e, _ := newDetachedEngine(t)

	w, h := e.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	assert.False(t, e.ChromeVisible())
	e.SetChrome(true)
	assert.True(t, e.ChromeVisible())
}

func TestEngine_DetachedCallbacksAreSilent(t *testing.T) {
	e, d := newDetachedEngine(t)
	e.AddMessageListener(entity.MessageFullscreenChanged)

	called := false
	e.SetCallbacks(&port.EngineCallbacks{OnMessage: func(string, json.RawMessage) { called = true }})
	e.handleEvent(bindingCall(t, BindingName, entity.MessageFullscreenChanged, map[string]bool{"fullscreen": true}))
	e.SetCallbacks(nil)
	d.drain()

	assert.False(t, called)
}

func TestNewEngine_PanicsWithoutDispatcher(t *testing.T) {
	assert.Panics(t, func() {
		newEngine(context.Background(), context.Background(), func() {}, nil, 1, 1)
	})
}

func TestExecOptions(t *testing.T) {
	base := len(execOptions(Options{}))
	assert.Equal(t, base+2, len(execOptions(Options{ExecPath: "/usr/bin/chromium", Width: 800, Height: 600})))
	assert.Equal(t, base, len(execOptions(Options{Width: 800})), "partial size ignored")
}
