// Package window runs the single-page GTK browse window.
package window

import (
	"github.com/bnema/webpage/internal/ui/component"
)

const (
	applicationID = "io.github.bnema.webpage"
	windowTitle   = "webpage"
	blankURL      = "about:blank"
)

// Options configures the browse window.
type Options struct {
	// URL is loaded once the view is ready; empty opens about:blank.
	URL           string
	Width         int
	Height        int
	ToolbarHeight int
	// Saver writes thumbnails; nil disables capture.
	Saver component.ThumbnailSaver
	// CaptureOnLoad captures a thumbnail each time the root document loads.
	CaptureOnLoad bool
}

func (o Options) normalized() Options {
	if o.URL == "" {
		o.URL = blankURL
	}
	if o.Saver == nil {
		o.CaptureOnLoad = false
	}
	return o
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0:
		return ErrInvalidOptions("width must be positive")
	case o.Height <= 0:
		return ErrInvalidOptions("height must be positive")
	case o.ToolbarHeight < 0 || o.ToolbarHeight >= o.Height:
		return ErrInvalidOptions("toolbar height must be within the window height")
	}
	return nil
}

// toolbarText is the toolbar label for the current page state.
func toolbarText(url string, loaded bool) string {
	if url == "" {
		url = blankURL
	}
	if !loaded {
		return url + " (loading)"
	}
	return url
}

// WindowError represents a window-related error.
type WindowError struct {
	Message string
}

func (e WindowError) Error() string {
	return e.Message
}

// Error constants.
var (
	ErrWindowCreationFailed = WindowError{Message: "failed to create application window"}
)

// ErrWidgetCreationFailed creates an error for widget creation failure.
func ErrWidgetCreationFailed(name string) error {
	return WindowError{Message: "failed to create widget: " + name}
}

// ErrInvalidOptions creates an error for unusable window options.
func ErrInvalidOptions(reason string) error {
	return WindowError{Message: "invalid window options: " + reason}
}
