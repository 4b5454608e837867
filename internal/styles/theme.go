package styles

import "github.com/charmbracelet/lipgloss"

// Theme holds the colors that change with the terminal background
type Theme struct {
	Primary   lipgloss.Color
	TextMuted lipgloss.Color
	Border    lipgloss.Color

	// Toggle badges in the bottom bar
	ToggleOn  lipgloss.Color
	ToggleOff lipgloss.Color
}

var DarkTheme = Theme{
	Primary:   lipgloss.Color("#F48FB1"), // Pink 200
	TextMuted: lipgloss.Color("#64748B"), // Slate 500
	Border:    lipgloss.Color("#333333"),
	ToggleOn:  lipgloss.Color("#34D399"), // Emerald 400
	ToggleOff: lipgloss.Color("#52525B"), // Zinc 600
}

var LightTheme = Theme{
	Primary:   lipgloss.Color("#D81B60"), // Pink 600
	TextMuted: lipgloss.Color("#A1A1AA"), // Zinc 400
	Border:    lipgloss.Color("#E4E4E7"),
	ToggleOn:  lipgloss.Color("#10B981"), // Emerald 500
	ToggleOff: lipgloss.Color("#A1A1AA"), // Zinc 400
}

// CurrentTheme holds the active theme (set at runtime based on terminal)
var CurrentTheme = DarkTheme

// InitTheme sets the current theme based on terminal background
func InitTheme() {
	if lipgloss.HasDarkBackground() {
		CurrentTheme = DarkTheme
	} else {
		CurrentTheme = LightTheme
	}
}
