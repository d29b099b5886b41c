//go:build webkit_cgo

package window

import (
	"context"
	"fmt"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/bnema/webpage/internal/infrastructure/webkit"
	"github.com/bnema/webpage/internal/logging"
	"github.com/bnema/webpage/internal/ui/component"
)

// Run opens the browse window and blocks until it is closed.
// It must be called from the main goroutine.
func Run(ctx context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	opts = opts.normalized()

	app := gtk.NewApplication(applicationID, gio.ApplicationNonUnique)
	if app == nil {
		return ErrWindowCreationFailed
	}

	var runErr error
	app.ConnectActivate(func() {
		if err := activate(ctx, app, opts); err != nil {
			runErr = err
			app.Quit()
		}
	})

	if code := app.Run(nil); code != 0 && runErr == nil {
		runErr = fmt.Errorf("gtk application exited with status %d", code)
	}
	return runErr
}

func activate(ctx context.Context, app *gtk.Application, opts Options) error {
	ctx = logging.WithComponent(ctx, "window")
	log := logging.FromContext(ctx)
	dispatcher := webkit.IdleDispatcher{}

	win := gtk.NewApplicationWindow(app)
	if win == nil {
		return ErrWindowCreationFailed
	}
	win.SetTitle(windowTitle)
	win.SetDefaultSize(opts.Width, opts.Height)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)
	if rootBox == nil {
		return ErrWidgetCreationFailed("rootBox")
	}
	toolbar := gtk.NewLabel(toolbarText(opts.URL, false))
	if toolbar == nil {
		return ErrWidgetCreationFailed("toolbar")
	}
	toolbar.SetSizeRequest(-1, opts.ToolbarHeight)
	toolbar.SetXAlign(0)

	engine, err := webkit.NewEngine(ctx, dispatcher)
	if err != nil {
		return err
	}
	engine.SetChromeWidget(toolbar)
	view := engine.Widget()
	view.SetHExpand(true)
	view.SetVExpand(true)

	rootBox.Append(toolbar)
	rootBox.Append(view)
	win.SetChild(rootBox)

	container := component.NewTabContainer(dispatcher, opts.Height, opts.ToolbarHeight)
	container.SetCallbacks(component.TabContainerCallbacks{
		OnHeightChanged: func(height int) {
			view.SetSizeRequest(-1, height)
		},
	})

	page := component.NewWebPage(ctx, engine, opts.Saver, dispatcher)
	page.SetCallbacks(component.WebPageCallbacks{
		OnViewReady: func() {
			if err := page.LoadTab(ctx, opts.URL, true); err != nil {
				log.Error().Err(err).Str("url", opts.URL).Msg("initial load failed")
			}
		},
		OnDOMContentLoadedChanged: func(loaded bool) {
			toolbar.SetText(toolbarText(engine.URL(), loaded))
			if loaded && opts.CaptureOnLoad {
				page.CaptureThumbnail()
			}
		},
		OnFullscreenChanged: func(fullscreen bool) {
			if fullscreen {
				win.Fullscreen()
			} else {
				win.Unfullscreen()
			}
		},
		OnThumbnailResult: func(path string) {
			if path == "" {
				log.Warn().Msg("thumbnail unavailable")
				return
			}
			log.Info().Str("path", path).Msg("thumbnail written")
		},
	})

	tabID, err := container.AddPage(page)
	if err != nil {
		return err
	}
	log.Debug().Str("tab_id", tabID.String()).Msg("page attached")

	win.NotifyProperty("default-height", func() {
		_, height := win.DefaultSize()
		container.SetWindowHeight(height)
	})
	win.ConnectCloseRequest(func() bool {
		container.CloseAll()
		return false
	})

	win.Present()
	return nil
}
