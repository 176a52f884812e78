package display

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const background = "#111827"

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	EmptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262"))
)

// fade mixes hex towards the terminal background. Opacity 1 returns hex
// unchanged.
func fade(hex string, opacity float64) string {
	fg, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	bg, _ := colorful.Hex(background)
	return bg.BlendRgb(fg, max(0, min(opacity, 1))).Clamped().Hex()
}

// swatch paints text on a background colour.
func swatch(hex, text string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(hex)).
		Render(text)
}
