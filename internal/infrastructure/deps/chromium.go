package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/bnema/webpage/internal/application/port"
)

const versionTimeout = 5 * time.Second

// chromiumNames mirrors the binaries chromedp tries when no exec path is set.
var chromiumNames = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
}

var versionPattern = regexp.MustCompile(`\d+(\.\d+)+`)

// ChromiumLocator locates a Chromium binary and asks it for its version.
type ChromiumLocator struct {
	lookPath func(string) (string, error)
	names    []string
}

// NewChromiumLocator creates a locator that searches PATH.
func NewChromiumLocator() *ChromiumLocator {
	return &ChromiumLocator{lookPath: exec.LookPath, names: chromiumNames}
}

// LocateBrowser implements port.BrowserLocator.
func (p *ChromiumLocator) LocateBrowser(ctx context.Context, execPath string) (string, string, error) {
	path, err := p.resolve(execPath)
	if err != nil {
		return "", "", err
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return path, "", fmt.Errorf("%s --version: %w", path, err)
	}
	version := versionPattern.FindString(string(out))
	if version == "" {
		return path, "", fmt.Errorf("unrecognized version output %q", strings.TrimSpace(string(out)))
	}
	return path, version, nil
}

func (p *ChromiumLocator) resolve(execPath string) (string, error) {
	if execPath = strings.TrimSpace(execPath); execPath != "" {
		path, err := p.lookPath(execPath)
		if err != nil {
			return "", fmt.Errorf("%w: %s", port.ErrBrowserNotFound, execPath)
		}
		return path, nil
	}
	for _, name := range p.names {
		if path, err := p.lookPath(name); err == nil {
			return path, nil
		}
	}
	return "", port.ErrBrowserNotFound
}
