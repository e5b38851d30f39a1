package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/hnreader/internal/config"
)

// Palette is the set of colors for one theme.
type Palette struct {
	Background lipgloss.Color
	Surface    lipgloss.Color // status bar, selection
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Accent     lipgloss.Color // HN orange
	Highlight  lipgloss.Color
	Favorite   lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
}

// Gruvbox palettes.
var (
	darkPalette = Palette{
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#928374"),
		Accent:     lipgloss.Color("#fe8019"),
		Highlight:  lipgloss.Color("#83a598"),
		Favorite:   lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
		Success:    lipgloss.Color("#b8bb26"),
	}

	lightPalette = Palette{
		Background: lipgloss.Color("#fbf1c7"),
		Surface:    lipgloss.Color("#ebdbb2"),
		Foreground: lipgloss.Color("#3c3836"),
		Muted:      lipgloss.Color("#928374"),
		Accent:     lipgloss.Color("#af3a03"),
		Highlight:  lipgloss.Color("#076678"),
		Favorite:   lipgloss.Color("#b57614"),
		Error:      lipgloss.Color("#9d0006"),
		Success:    lipgloss.Color("#79740e"),
	}
)

// PaletteFor returns the palette for theme.
func PaletteFor(theme config.Theme) Palette {
	if theme == config.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

// Styles holds every style used by a render pass.
type Styles struct {
	Header        lipgloss.Style
	Tab           lipgloss.Style
	ActiveTab     lipgloss.Style
	SelectedItem  lipgloss.Style
	NormalItem    lipgloss.Style
	Rank          lipgloss.Style
	Meta          lipgloss.Style
	Domain        lipgloss.Style
	FavoriteMark  lipgloss.Style
	StatusBar     lipgloss.Style
	StatusBarText lipgloss.Style
	WorkDone      lipgloss.Style
	WorkFailed    lipgloss.Style
	ErrorStyle    lipgloss.Style
	HelpStyle     lipgloss.Style
	Spinner       lipgloss.Style
}

// NewStyles builds the styles for a palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Background).
			Background(p.Accent).
			Padding(0, 1),
		SelectedItem: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Foreground).
			Background(p.Surface),
		NormalItem: lipgloss.NewStyle().
			Foreground(p.Foreground),
		Rank: lipgloss.NewStyle().
			Foreground(p.Muted).
			Width(4).
			Align(lipgloss.Right),
		Meta: lipgloss.NewStyle().
			Foreground(p.Muted),
		Domain: lipgloss.NewStyle().
			Foreground(p.Highlight),
		FavoriteMark: lipgloss.NewStyle().
			Foreground(p.Favorite).
			Bold(true),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Foreground).
			Background(p.Surface).
			Padding(0, 1),
		StatusBarText: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Surface),
		WorkDone: lipgloss.NewStyle().
			Foreground(p.Success).
			Background(p.Surface),
		WorkFailed: lipgloss.NewStyle().
			Foreground(p.Error).
			Background(p.Surface),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(p.Error).
			Bold(true).
			Padding(1, 2),
		HelpStyle: lipgloss.NewStyle().
			Foreground(p.Muted).
			Padding(1, 2),
		Spinner: lipgloss.NewStyle().
			Foreground(p.Accent),
	}
}
