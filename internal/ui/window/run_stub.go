//go:build !webkit_cgo

package window

import (
	"context"

	"github.com/bnema/webpage/internal/infrastructure/webkit"
)

// Run reports that the GTK window is not compiled in.
func Run(_ context.Context, opts Options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	return webkit.ErrNativeUnavailable
}
