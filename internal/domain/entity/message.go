package entity

// Engine message names relayed into page state.
const (
	MessageFullscreenChanged = "embed:fullscreenchanged"
	MessageDOMContentLoaded  = "embed:domcontentloaded"
)

// FullscreenPayload is carried by MessageFullscreenChanged.
type FullscreenPayload struct {
	Fullscreen bool `json:"fullscreen"`
}

// DOMContentLoadedPayload is carried by MessageDOMContentLoaded.
// RootFrame is false for events raised by nested frames.
type DOMContentLoadedPayload struct {
	RootFrame bool `json:"rootFrame"`
}

// ContentRect is a page content rectangle restored from a previous session.
type ContentRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
