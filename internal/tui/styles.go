package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	title     lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	on        lipgloss.Style
	pad       lipgloss.Style
	padHit    lipgloss.Style
	padHeld   lipgloss.Style
	meter     lipgloss.Style
	rec       lipgloss.Style
	status    lipgloss.Style
	seq       lipgloss.Style
	seqActive lipgloss.Style
	help      lipgloss.Style
}

func newTheme(dark bool) theme {
	fg, dim, border := lipgloss.Color("#1A1A1A"), lipgloss.Color("#888888"), lipgloss.Color("#BBBBBB")
	if dark {
		fg, dim, border = lipgloss.Color("#FAFAFA"), lipgloss.Color("#626262"), lipgloss.Color("#444444")
	}
	accent := lipgloss.Color("#7D56F4")

	pad := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(fg).
		Width(padWidth).
		Align(lipgloss.Center)

	return theme{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(accent).
			Padding(0, 1),
		label:     lipgloss.NewStyle().Foreground(dim),
		value:     lipgloss.NewStyle().Foreground(fg).Bold(true),
		on:        lipgloss.NewStyle().Foreground(lipgloss.Color("#00CC00")).Bold(true),
		pad:       pad,
		padHit:    pad.BorderForeground(lipgloss.Color("#FFD700")),
		padHeld:   pad.BorderForeground(accent),
		meter:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		rec:       lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
		status:    lipgloss.NewStyle().Foreground(accent).Bold(true),
		seq:       lipgloss.NewStyle().Foreground(dim),
		seqActive: lipgloss.NewStyle().Foreground(lipgloss.Color("#00CC00")).Bold(true),
		help:      lipgloss.NewStyle().Foreground(dim),
	}
}
