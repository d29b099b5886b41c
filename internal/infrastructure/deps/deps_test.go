package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webpage/internal/application/port"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestPrependPathList(t *testing.T) {
	got := prependPathList("/usr/lib:/opt/lib", "/opt/lib", " ", "/x/lib")
	assert.Equal(t, "/opt/lib:/x/lib:/usr/lib", got)
	assert.Equal(t, "/a", prependPathList("", "/a"))
}

func TestCommandEnvWithPrefix(t *testing.T) {
	t.Setenv("PKG_CONFIG_PATH", "/usr/share/pkgconfig")

	env := CommandEnvWithPrefix("/opt/webkit/")
	var pkgPath string
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PKG_CONFIG_PATH="); ok {
			pkgPath = v
		}
	}
	parts := strings.Split(pkgPath, ":")
	require.NotEmpty(t, parts)
	assert.Equal(t, "/opt/webkit/lib/pkgconfig", parts[0])
	assert.Equal(t, "/usr/share/pkgconfig", parts[len(parts)-1])

	assert.ElementsMatch(t, os.Environ(), CommandEnvWithPrefix("  "))
}

func TestPrefixEnv_Multiarch(t *testing.T) {
	env := prefixEnv("/opt/webkit", "arm64")
	assert.Contains(t, env["LD_LIBRARY_PATH"], "/opt/webkit/lib/aarch64-linux-gnu")
	assert.Contains(t, env["GI_TYPELIB_PATH"], "/opt/webkit/lib64/girepository-1.0")
	assert.Equal(t, []string{"/opt/webkit/share"}, env["XDG_DATA_DIRS"])

	plain := prefixEnv("/opt/webkit", "mips")
	assert.Len(t, plain["LD_LIBRARY_PATH"], 2)
}

func TestApplyPrefixEnv(t *testing.T) {
	for _, key := range []string{"PKG_CONFIG_PATH", "LD_LIBRARY_PATH", "GI_TYPELIB_PATH"} {
		t.Setenv(key, "")
	}
	t.Setenv("XDG_DATA_DIRS", "/usr/share")
	ApplyPrefixEnv("/opt/webkit")
	assert.Equal(t, "/opt/webkit/share:/usr/share", os.Getenv("XDG_DATA_DIRS"))
}

func TestPkgConfigClient_CommandMissing(t *testing.T) {
	checker := &PkgConfigClient{lookPath: func(string) (string, error) { return "", errors.New("nope") }}

	_, err := checker.PkgConfigModVersion(context.Background(), "gtk4", "")
	var pcErr *port.PkgConfigError
	require.ErrorAs(t, err, &pcErr)
	assert.Equal(t, port.PkgConfigErrorKindCommandMissing, pcErr.Kind)
	assert.ErrorIs(t, err, port.ErrPkgConfigMissing)

	var nilClient *PkgConfigClient
	_, err = nilClient.PkgConfigModVersion(context.Background(), "gtk4", "")
	assert.ErrorIs(t, err, port.ErrPkgConfigMissing)
}

func TestPkgConfigClient_Version(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "pkg-config", `
if [ "$2" = "gtk4" ]; then echo "4.20.1"; exit 0; fi
echo "Package $2 was not found" >&2; exit 1`)
	checker := &PkgConfigClient{lookPath: func(string) (string, error) { return script, nil }}

	version, err := checker.PkgConfigModVersion(context.Background(), "gtk4", "")
	require.NoError(t, err)
	assert.Equal(t, "4.20.1", version)

	_, err = checker.PkgConfigModVersion(context.Background(), "webkitgtk-6.0", "")
	var pcErr *port.PkgConfigError
	require.ErrorAs(t, err, &pcErr)
	assert.Equal(t, port.PkgConfigErrorKindPackageMissing, pcErr.Kind)
	assert.Contains(t, pcErr.Output, "was not found")
}

func TestChromiumLocator_SearchesKnownNames(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "chromium", `echo "Chromium 131.0.6778.85 built on Debian"`)

	var tried []string
	checker := &ChromiumLocator{
		names: []string{"headless-shell", "chromium"},
		lookPath: func(name string) (string, error) {
			tried = append(tried, name)
			if name == "chromium" {
				return script, nil
			}
			return "", errors.New("not found")
		},
	}

	path, version, err := checker.LocateBrowser(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, script, path)
	assert.Equal(t, "131.0.6778.85", version)
	assert.Equal(t, []string{"headless-shell", "chromium"}, tried)
}

func TestChromiumLocator_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "my-chrome", `echo "garbage"`)
	checker := &ChromiumLocator{lookPath: func(name string) (string, error) { return name, nil }}

	path, _, err := checker.LocateBrowser(context.Background(), script)
	assert.Equal(t, script, path)
	assert.ErrorContains(t, err, "unrecognized version output")
}

func TestChromiumLocator_NotFound(t *testing.T) {
	checker := &ChromiumLocator{
		names:    chromiumNames,
		lookPath: func(string) (string, error) { return "", errors.New("not found") },
	}

	_, _, err := checker.LocateBrowser(context.Background(), "")
	assert.ErrorIs(t, err, port.ErrBrowserNotFound)

	_, _, err = checker.LocateBrowser(context.Background(), "/no/such/chrome")
	assert.ErrorIs(t, err, port.ErrBrowserNotFound)
	assert.ErrorContains(t, err, "/no/such/chrome")
}
