package play

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	ink     = lipgloss.Color("#2b2118")
	parch   = lipgloss.Color("#f7f3ea")
	blood   = lipgloss.Color("#8b1e1e")
	brass   = lipgloss.Color("#b08d57")
	fogGrey = lipgloss.Color("#7a7a7a")
)

// styles render with the color profile of the writer they print to, so plain writers get plain text.
type styles struct {
	banner  lipgloss.Style
	prompt  lipgloss.Style
	speaker lipgloss.Style
	notice  lipgloss.Style
	failure lipgloss.Style
	verdict lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		banner:  r.NewStyle().Bold(true).Foreground(parch).Background(ink).Padding(0, 1),
		prompt:  r.NewStyle().Foreground(brass),
		speaker: r.NewStyle().Bold(true),
		notice:  r.NewStyle().Italic(true).Foreground(fogGrey),
		failure: r.NewStyle().Foreground(blood),
		verdict: r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(brass).Padding(0, 1),
	}
}
