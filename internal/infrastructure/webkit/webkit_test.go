package webkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/infrastructure/bridge"
)

func TestDecodeScriptMessage(t *testing.T) {
	listeners := bridge.NewListeners()
	listeners.Add(entity.MessageDOMContentLoaded)

	tests := []struct {
		name        string
		raw         string
		wantOK      bool
		wantName    string
		wantPayload string
	}{
		{
			name:        "registered message",
			raw:         `{"type":"embed:domcontentloaded","payload":{"rootFrame":false}}`,
			wantOK:      true,
			wantName:    entity.MessageDOMContentLoaded,
			wantPayload: `{"rootFrame":false}`,
		},
		{name: "unregistered message", raw: `{"type":"embed:fullscreenchanged","payload":{"fullscreen":true}}`},
		{name: "not json", raw: `[object Object]`},
		{name: "no type", raw: `{"payload":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, payload, ok := decodeScriptMessage(tt.raw, listeners)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantName, name)
			assert.JSONEq(t, tt.wantPayload, string(payload))
		})
	}
}

func TestFullscreenMessage(t *testing.T) {
	assert.JSONEq(t, `{"fullscreen":true}`, string(fullscreenMessage(true)))
	assert.JSONEq(t, `{"fullscreen":false}`, string(fullscreenMessage(false)))
}

func TestErrNativeUnavailableMentionsTag(t *testing.T) {
	assert.Contains(t, ErrNativeUnavailable.Error(), "webkit_cgo")
}
