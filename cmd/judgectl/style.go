package main

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#2C4A54")
)

type styles struct {
	title   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// newStyles binds the styles to the color profile of w,
// plain text is produced when w is not a terminal
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		success: r.NewStyle().Foreground(colorSuccess),
		failure: r.NewStyle().Foreground(colorError),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// report colors each line of a rendered judge report
func (s styles) report(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		switch {
		case l == "":
		case i == 0:
			lines[i] = s.title.Render(l)
		case strings.HasPrefix(l, "✓"):
			lines[i] = s.success.Render(l)
		case strings.HasPrefix(l, "✗"):
			lines[i] = s.failure.Render(l)
		default:
			lines[i] = s.muted.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
