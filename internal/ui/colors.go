package ui

import "github.com/charmbracelet/lipgloss"

var styles = newPalette(palette{
	title:  "#7D56F4",
	served: "#04B575",
	failed: "#FF0000",
	urgent: "#FFA500",
	muted:  "#626262",
})

// palette names the console's colors by role.
type palette struct {
	title, served, failed, urgent, muted string
}

// stylesheet holds the rendered [lipgloss.Style] for each role.
type stylesheet struct {
	title  lipgloss.Style // view headings
	served lipgloss.Style // successful command status
	failed lipgloss.Style // failed command status
	urgent lipgloss.Style // urgent request heading
	muted  lipgloss.Style // totals and hints
}

func newPalette(p palette) stylesheet {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return stylesheet{
		title:  fg(p.title).Bold(true).MarginBottom(1),
		served: fg(p.served).Bold(true),
		failed: fg(p.failed).Bold(true),
		urgent: fg(p.urgent).Bold(true).MarginBottom(1),
		muted:  fg(p.muted).Italic(true),
	}
}
