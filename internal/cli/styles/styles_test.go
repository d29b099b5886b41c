package styles_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webpage/internal/cli/styles"
)

func TestCaptureRenderer_RenderResults(t *testing.T) {
	r := styles.NewCaptureRenderer(styles.NewTheme())

	out := r.RenderResults([]styles.CaptureRow{
		{TabID: "1", URL: "https://example.com", Path: "/cache/tab-1-thumb.jpg"},
		{TabID: "2", URL: "https://broken.test", Err: errors.New("navigation timed out")},
	})

	require.Contains(t, out, "https://example.com")
	require.Contains(t, out, "tab-1-thumb.jpg")
	require.Contains(t, out, "navigation timed out")
	assert.Contains(t, out, "of 2 pages captured")
	assert.Contains(t, out, "1 failed")
}

func TestCaptureRenderer_AllSucceeded(t *testing.T) {
	r := styles.NewCaptureRenderer(styles.NewTheme())

	out := r.RenderResults([]styles.CaptureRow{{TabID: "1", URL: "https://example.com", Path: "/x.jpg"}})
	assert.NotContains(t, out, "failed")
}

func TestThumbnailRenderer_RenderList(t *testing.T) {
	r := styles.NewThumbnailRenderer(styles.NewTheme())

	empty := r.RenderList("/cache/webpage", nil)
	assert.Contains(t, empty, "/cache/webpage")
	assert.Contains(t, empty, "No thumbnails cached.")

	out := r.RenderList("/cache/webpage", []styles.ThumbnailRow{
		{TabID: "3", Path: "/cache/webpage/tab-3-thumb.jpg", Size: 2048, Modified: time.Now()},
	})
	assert.Contains(t, out, "tab-3-thumb.jpg")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "just now")
}

func TestThumbnailRenderer_RenderPurged(t *testing.T) {
	r := styles.NewThumbnailRenderer(styles.NewTheme())
	out := r.RenderPurged("/cache/webpage", 4)
	assert.Contains(t, out, "Removed")
	assert.Contains(t, out, "/cache/webpage")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", styles.FormatSize(512))
	assert.Equal(t, "1.5 KB", styles.FormatSize(1536))
	assert.Equal(t, "1.0 MB", styles.FormatSize(1<<20))
}

func TestConfigRenderer(t *testing.T) {
	r := styles.NewConfigRenderer(styles.NewTheme())

	info := r.RenderConfigInfo("/home/u/.config/webpage/config.toml", "/home/u/.config/webpage/schema.json")
	assert.Contains(t, info, "config.toml")
	assert.Contains(t, info, "schema.json")

	assert.Contains(t, r.RenderError(errors.New("boom")), "boom")
	assert.Contains(t, r.RenderReloaded("/tmp/config.toml"), "config.toml")
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "just now", styles.RelativeTime(time.Now()))
	assert.Equal(t, "2h ago", styles.RelativeTime(time.Now().Add(-2*time.Hour-time.Minute)))
}

func TestDoctorRenderer_Render(t *testing.T) {
	r := styles.NewDoctorRenderer(styles.NewTheme())

	out := r.Render(styles.DoctorReport{
		Prefix: "/opt/webkit",
		Checks: []styles.DoctorCheck{
			{Name: "GTK4", Source: "gtk4", Installed: true, Version: "4.20.1", RequiredVersion: "4.20", OK: true},
			{Name: "WebKitGTK 6.0", Source: "webkitgtk-6.0", Installed: true, Version: "2.48.0", RequiredVersion: "2.50"},
			{Name: "Chromium", Error: "chromium not found"},
		},
	})

	assert.Contains(t, out, "Needs attention")
	assert.Contains(t, out, "/opt/webkit")
	assert.Contains(t, out, "4.20.1 (>= 4.20)")
	assert.Contains(t, out, "have 2.48.0, need >= 2.50")
	assert.Contains(t, out, "Missing")
	assert.Contains(t, out, "chromium not found")

	ok := r.Render(styles.DoctorReport{OverallOK: true})
	assert.Contains(t, ok, "OK")
	assert.NotContains(t, ok, "Prefix")
}

func TestCaptureRenderer_RenderListening(t *testing.T) {
	out := styles.NewCaptureRenderer(styles.NewTheme()).RenderListening("127.0.0.1:8787", "http://127.0.0.1:8787/docs")
	assert.Contains(t, out, "127.0.0.1:8787")
	assert.Contains(t, out, "/docs")
}

func TestCaptureRenderer_RenderSaved(t *testing.T) {
	out := styles.NewCaptureRenderer(styles.NewTheme()).RenderSaved("9", "/cache/tab-9-thumb.jpg")
	assert.Contains(t, out, "tab 9")
	assert.Contains(t, out, "/cache/tab-9-thumb.jpg")
}
