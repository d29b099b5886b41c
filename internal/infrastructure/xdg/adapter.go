package xdg

import (
	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/infrastructure/config"
)

// Adapter implements port.XDGPaths using config.GetXDGDirs().
type Adapter struct {
	cacheDir string
}

// New creates a new XDG paths adapter.
func New() *Adapter {
	return &Adapter{}
}

// NewWithCacheDir creates an adapter whose cache dir is pinned to dir.
// An empty dir keeps the XDG default.
func NewWithCacheDir(dir string) *Adapter {
	return &Adapter{cacheDir: dir}
}

func (a *Adapter) ConfigDir() (string, error) {
	return config.GetConfigDir()
}

func (a *Adapter) CacheDir() (string, error) {
	if a.cacheDir != "" {
		return a.cacheDir, nil
	}
	return config.GetCacheDir()
}

var _ port.XDGPaths = (*Adapter)(nil)
