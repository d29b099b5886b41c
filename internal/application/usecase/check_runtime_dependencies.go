// Package usecase contains application business logic.
package usecase

import (
	"context"
	"strings"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/logging"
)

const (
	defaultMinGTK4Version      = "4.20"
	defaultMinWebKitGTKVersion = "2.50"
	defaultMinGLibVersion      = "2.84"
	defaultMinChromiumVersion  = "120"
)

type RuntimeDependencyID string

const (
	RuntimeDependencyGTK4      RuntimeDependencyID = "gtk4"
	RuntimeDependencyWebKitGTK RuntimeDependencyID = "webkitgtk-6.0"
	RuntimeDependencyGLib      RuntimeDependencyID = "glib-2.0"
	RuntimeDependencyChromium  RuntimeDependencyID = "chromium"
)

// RuntimeDependencyStatus contains the result of checking a runtime dependency.
type RuntimeDependencyStatus struct {
	ID          RuntimeDependencyID
	DisplayName string
	// Source is the pkg-config package or the binary path that was checked.
	Source string

	Installed bool
	Version   string

	RequiredVersion  string
	MeetsRequirement bool

	Error string
}

// CheckRuntimeDependenciesUseCase validates the native runtimes of both
// rendering backends: GTK/WebKitGTK for browse and Chromium for capture.
type CheckRuntimeDependenciesUseCase struct {
	checker port.RuntimeVersionSource
	browser port.BrowserLocator
}

// NewCheckRuntimeDependenciesUseCase creates a new use case.
func NewCheckRuntimeDependenciesUseCase(checker port.RuntimeVersionSource, browser port.BrowserLocator) *CheckRuntimeDependenciesUseCase {
	return &CheckRuntimeDependenciesUseCase{checker: checker, browser: browser}
}

// CheckRuntimeDependenciesInput contains options for runtime dependency checks.
type CheckRuntimeDependenciesInput struct {
	// Prefix optionally points to a custom runtime prefix (e.g. /opt/webkitgtk).
	Prefix string
	// ExecPath is the configured Chromium binary; empty searches PATH.
	ExecPath string
	// RemoteURL skips the Chromium lookup when capture attaches to a running browser.
	RemoteURL string

	SkipWebKit   bool
	SkipChromium bool

	// Min versions. If empty, defaults are used.
	MinGTK4Version      string
	MinWebKitGTKVersion string
	MinGLibVersion      string
	MinChromiumVersion  string
}

// CheckRuntimeDependenciesOutput contains the result of the runtime dependency checks.
type CheckRuntimeDependenciesOutput struct {
	Prefix string
	OK     bool
	Checks []RuntimeDependencyStatus
}

// Execute checks the GTK stack and the Chromium binary.
func (uc *CheckRuntimeDependenciesUseCase) Execute(ctx context.Context, input CheckRuntimeDependenciesInput) (*CheckRuntimeDependenciesOutput, error) {
	log := logging.FromContext(ctx).With().Str("component", "runtime-check").Logger()

	checks := make([]RuntimeDependencyStatus, 0, 4)
	if !input.SkipWebKit {
		checks = append(checks, uc.checkPkgConfig(ctx, input)...)
	}
	if !input.SkipChromium {
		checks = append(checks, uc.checkChromium(ctx, input))
	}

	allOK := true
	for _, c := range checks {
		if !c.MeetsRequirement {
			allOK = false
		}
	}

	log.Debug().Bool("ok", allOK).Str("prefix", input.Prefix).Int("checks", len(checks)).Msg("runtime dependency check complete")
	return &CheckRuntimeDependenciesOutput{Prefix: input.Prefix, OK: allOK, Checks: checks}, nil
}

func (uc *CheckRuntimeDependenciesUseCase) checkPkgConfig(ctx context.Context, input CheckRuntimeDependenciesInput) []RuntimeDependencyStatus {
	minGLib := orDefault(input.MinGLibVersion, defaultMinGLibVersion)
	checks := []RuntimeDependencyStatus{
		{
			ID:              RuntimeDependencyGTK4,
			Source:          "gtk4",
			DisplayName:     "GTK4",
			RequiredVersion: orDefault(input.MinGTK4Version, defaultMinGTK4Version),
		},
		{
			ID:              RuntimeDependencyWebKitGTK,
			Source:          "webkitgtk-6.0",
			DisplayName:     "WebKitGTK 6.0",
			RequiredVersion: orDefault(input.MinWebKitGTKVersion, defaultMinWebKitGTKVersion),
		},
		{
			ID:              RuntimeDependencyGLib,
			Source:          "glib-2.0",
			DisplayName:     "GLib",
			RequiredVersion: minGLib,
		},
	}

	for i := range checks {
		status := &checks[i]
		if uc.checker == nil {
			status.Error = "no pkg-config client"
			continue
		}
		version, err := uc.checker.PkgConfigModVersion(ctx, status.Source, input.Prefix)
		if err != nil {
			status.Error = err.Error()
			continue
		}
		status.Installed = true
		status.Version = strings.TrimSpace(version)
		status.evaluate()
	}
	return checks
}

func (uc *CheckRuntimeDependenciesUseCase) checkChromium(ctx context.Context, input CheckRuntimeDependenciesInput) RuntimeDependencyStatus {
	status := RuntimeDependencyStatus{
		ID:              RuntimeDependencyChromium,
		DisplayName:     "Chromium",
		RequiredVersion: orDefault(input.MinChromiumVersion, defaultMinChromiumVersion),
	}

	if remote := strings.TrimSpace(input.RemoteURL); remote != "" {
		// The remote browser is not checked; capture fails fast if it is gone.
		status.Source = remote
		status.Installed = true
		status.Version = "remote"
		status.MeetsRequirement = true
		return status
	}
	if uc.browser == nil {
		status.Error = "no browser locator"
		return status
	}

	path, version, err := uc.browser.LocateBrowser(ctx, input.ExecPath)
	status.Source = path
	if err != nil {
		status.Installed = path != ""
		status.Error = err.Error()
		return status
	}
	status.Installed = true
	status.Version = version
	status.evaluate()
	return status
}

func (s *RuntimeDependencyStatus) evaluate() {
	cmp, ok := compareVersion(s.Version, s.RequiredVersion)
	if !ok {
		s.MeetsRequirement = false
		s.Error = "could not parse version"
		return
	}
	s.MeetsRequirement = cmp >= 0
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// compareVersion compares two version strings.
// Returns 1 if a > b, 0 if a == b, -1 if a < b. ok is false if either cannot be parsed.
func compareVersion(a, b string) (cmp int, ok bool) {
	av, ok := parseVersionPrefix(a)
	if !ok {
		return 0, false
	}
	bv, ok := parseVersionPrefix(b)
	if !ok {
		return 0, false
	}

	max := len(av)
	if len(bv) > max {
		max = len(bv)
	}

	for i := 0; i < max; i++ {
		x := 0
		if i < len(av) {
			x = av[i]
		}
		y := 0
		if i < len(bv) {
			y = bv[i]
		}
		switch {
		case x > y:
			return 1, true
		case x < y:
			return -1, true
		}
	}
	return 0, true
}

// parseVersionPrefix parses a dotted numeric version prefix (e.g. 4.20.3).
// It stops at the first non-digit/dot after a numeric segment.
func parseVersionPrefix(s string) ([]int, bool) {
	var parts []int
	cur := 0
	inNum := false

loop:
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			inNum = true
			cur = cur*10 + int(c-'0')
		case c == '.':
			if !inNum {
				return nil, false
			}
			parts = append(parts, cur)
			cur = 0
			inNum = false
		default:
			break loop
		}
	}

	if inNum {
		parts = append(parts, cur)
	}
	if len(parts) == 0 {
		return nil, false
	}
	return parts, true
}
