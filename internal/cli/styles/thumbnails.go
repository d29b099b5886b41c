package styles

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ThumbnailRow is one cached thumbnail.
type ThumbnailRow struct {
	TabID    string
	Path     string
	Size     int64
	Modified time.Time
}

// ThumbnailRenderer renders the thumbnail cache listing.
type ThumbnailRenderer struct {
	theme *Theme
}

// NewThumbnailRenderer creates a new thumbnail renderer with the given theme.
func NewThumbnailRenderer(theme *Theme) *ThumbnailRenderer {
	return &ThumbnailRenderer{theme: theme}
}

// RenderList renders the cache directory and its thumbnails.
func (r *ThumbnailRenderer) RenderList(dir string, rows []ThumbnailRow) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n  %s Cache %s\n", iconStyle.Render(IconFolder), r.theme.Subtle.Render(dir)))
	if len(rows) == 0 {
		sb.WriteString(fmt.Sprintf("  %s\n", r.theme.Subtle.Render("No thumbnails cached.")))
		return sb.String()
	}

	var total int64
	tableRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		total += row.Size
		tableRows = append(tableRows, []string{row.TabID, FormatSize(row.Size), RelativeTime(row.Modified), row.Path})
	}

	sb.WriteString(NewStyledTable(r.theme, []string{"Tab", "Size", "Modified", "Path"}, tableRows).Render())
	sb.WriteString(fmt.Sprintf("\n  %s thumbnails, %s\n",
		r.theme.Highlight.Render(fmt.Sprintf("%d", len(rows))),
		FormatSize(total),
	))
	return sb.String()
}

// RenderPurged renders the result of a cache purge.
func (r *ThumbnailRenderer) RenderPurged(dir string, removed int) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Success)
	return fmt.Sprintf("\n  %s Removed %s thumbnails from %s\n",
		iconStyle.Render(IconTrash),
		r.theme.Highlight.Render(fmt.Sprintf("%d", removed)),
		r.theme.Subtle.Render(dir),
	)
}

// FormatSize formats a byte count with a binary unit.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
