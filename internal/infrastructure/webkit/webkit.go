// Package webkit adapts a WebKitGTK WebView to the page engine port.
// The GTK implementation needs the webkit_cgo build tag.
package webkit

import (
	"encoding/json"
	"errors"

	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/infrastructure/bridge"
)

// HandlerName is the script message handler the bridge posts to.
const HandlerName = "webpage"

// ErrNativeUnavailable is returned when the binary was built without
// WebKitGTK support.
var ErrNativeUnavailable = errors.New("webkit: built without webkit_cgo; rebuild with -tags webkit_cgo")

// decodeScriptMessage turns the JSON form of a posted JS value into an
// engine message. Messages without a registered listener are dropped.
func decodeScriptMessage(raw string, listeners *bridge.Listeners) (string, json.RawMessage, bool) {
	env, err := bridge.Decode([]byte(raw))
	if err != nil {
		return "", nil, false
	}
	if !listeners.Accepts(env.Type) {
		return "", nil, false
	}
	return env.Type, env.Payload, true
}

// fullscreenMessage builds the message for a native full-screen signal.
func fullscreenMessage(fullscreen bool) json.RawMessage {
	payload, _ := json.Marshal(entity.FullscreenPayload{Fullscreen: fullscreen})
	return payload
}
