// Package bridge builds the page-side script that reports document lifecycle
// events to the host, and decodes the messages it posts.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/webpage/internal/domain/entity"
)

// ErrEmptyType is returned for envelopes without a message type.
var ErrEmptyType = errors.New("bridge message type is empty")

// Envelope is the JS -> Go message shape posted by the bridge script.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a posted envelope. A missing payload decodes as "{}".
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode bridge message: %w", err)
	}
	env.Type = strings.TrimSpace(env.Type)
	if env.Type == "" {
		return Envelope{}, ErrEmptyType
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		env.Payload = json.RawMessage("{}")
	}
	return env, nil
}

// bridgeScript is injected at document start into every frame.
// %[1]s is the JS body of post(type, payload); %[2]s and %[3]s are the
// JSON-quoted message names.
const bridgeScript = `(function() {
  if (window.__webpageBridgeInstalled) return;
  window.__webpageBridgeInstalled = true;

  var post = function(type, payload) {
    try {
      %[1]s
    } catch (e) {}
  };

  document.addEventListener('DOMContentLoaded', function() {
    post(%[3]s, { rootFrame: window === window.top });
  });

  if (window === window.top) {
    document.addEventListener('fullscreenchange', function() {
      post(%[2]s, { fullscreen: document.fullscreenElement !== null });
    });
  }
})();`

// WebKitScript returns the bridge posting through the WebKit script message
// handler called handlerName.
func WebKitScript(handlerName string) string {
	body := fmt.Sprintf(
		"window.webkit.messageHandlers[%s].postMessage({ type: type, payload: payload });",
		quote(handlerName),
	)
	return build(body)
}

// BindingScript returns the bridge posting through a CDP runtime binding
// called bindingName. Bindings only accept strings.
func BindingScript(bindingName string) string {
	body := fmt.Sprintf(
		"window[%s](JSON.stringify({ type: type, payload: payload }));",
		quote(bindingName),
	)
	return build(body)
}

func build(postBody string) string {
	return fmt.Sprintf(bridgeScript,
		postBody,
		quote(entity.MessageFullscreenChanged),
		quote(entity.MessageDOMContentLoaded),
	)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// Listeners tracks the message names the page asked to receive. Engines
// drop everything else.
type Listeners struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

// NewListeners creates an empty listener set.
func NewListeners() *Listeners {
	return &Listeners{names: make(map[string]struct{})}
}

// Add registers name. It reports false when name was already present.
func (l *Listeners) Add(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.names[name]; ok {
		return false
	}
	l.names[name] = struct{}{}
	return true
}

// Accepts reports whether name has a listener.
func (l *Listeners) Accepts(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.names[name]
	return ok
}
