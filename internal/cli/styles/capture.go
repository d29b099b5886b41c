package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CaptureRow is one line of the capture summary.
type CaptureRow struct {
	TabID string
	URL   string
	Path  string
	Err   error
}

// CaptureRenderer renders capture results.
type CaptureRenderer struct {
	theme *Theme
}

// NewCaptureRenderer creates a new capture renderer with the given theme.
func NewCaptureRenderer(theme *Theme) *CaptureRenderer {
	return &CaptureRenderer{theme: theme}
}

// RenderResults renders a table of captures followed by a count line.
func (r *CaptureRenderer) RenderResults(rows []CaptureRow) string {
	okStyle := lipgloss.NewStyle().Foreground(r.theme.Success)
	errStyle := lipgloss.NewStyle().Foreground(r.theme.Error)

	tableRows := make([][]string, 0, len(rows))
	failed := 0
	for _, row := range rows {
		status := okStyle.Render(IconCheck)
		output := row.Path
		if row.Err != nil {
			failed++
			status = errStyle.Render(IconX)
			output = row.Err.Error()
		}
		tableRows = append(tableRows, []string{status, row.TabID, row.URL, output})
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(NewStyledTable(r.theme, []string{"", "Tab", "URL", "Thumbnail"}, tableRows).Render())
	sb.WriteString("\n")
	sb.WriteString(r.renderSummary(len(rows), failed))
	return sb.String()
}

func (r *CaptureRenderer) renderSummary(total, failed int) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	countStyle := r.theme.Highlight

	summary := fmt.Sprintf("  %s %s of %d pages captured\n",
		iconStyle.Render(IconImage),
		countStyle.Render(fmt.Sprintf("%d", total-failed)),
		total,
	)
	if failed > 0 {
		summary += fmt.Sprintf("  %s %s\n",
			lipgloss.NewStyle().Foreground(r.theme.Warning).Render(IconWarning),
			r.theme.WarningStyle.Render(fmt.Sprintf("%d failed", failed)),
		)
	}
	return summary
}

// RenderSaved renders the path of a single written thumbnail.
// RenderListening announces the HTTP API address.
func (r *CaptureRenderer) RenderListening(addr, docsURL string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Accent)
	return fmt.Sprintf("\n  %s Serving on %s %s\n",
		iconStyle.Render(IconGlobe), r.theme.Highlight.Render(addr), r.theme.Subtle.Render("docs "+docsURL))
}

func (r *CaptureRenderer) RenderSaved(tabID, path string) string {
	iconStyle := lipgloss.NewStyle().Foreground(r.theme.Success)
	return fmt.Sprintf("\n  %s Thumbnail %s %s\n", iconStyle.Render(IconCheck), r.theme.TabBadge(tabID), r.theme.Subtle.Render(path))
}
