package shell

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a screen is drawn with.
type Palette struct {
	Name           string
	Surface        lipgloss.Color
	SurfaceVariant lipgloss.Color
	OnSurface      lipgloss.Color
	Primary        lipgloss.Color
	OnPrimary      lipgloss.Color
	Outline        lipgloss.Color
	Error          lipgloss.Color
}

var (
	DarkPalette = Palette{
		Name:           "dark",
		Surface:        lipgloss.Color("#1C1B1F"),
		SurfaceVariant: lipgloss.Color("#2B2930"),
		OnSurface:      lipgloss.Color("#E6E1E5"),
		Primary:        lipgloss.Color("#D0BCFF"),
		OnPrimary:      lipgloss.Color("#381E72"),
		Outline:        lipgloss.Color("#49454F"),
		Error:          lipgloss.Color("#F2B8B5"),
	}

	LightPalette = Palette{
		Name:           "light",
		Surface:        lipgloss.Color("#FFFBFE"),
		SurfaceVariant: lipgloss.Color("#F3EDF7"),
		OnSurface:      lipgloss.Color("#1C1B1F"),
		Primary:        lipgloss.Color("#6750A4"),
		OnPrimary:      lipgloss.Color("#FFFFFF"),
		Outline:        lipgloss.Color("#79747E"),
		Error:          lipgloss.Color("#B3261E"),
	}
)

// ResolvePalette maps a theme preference to a palette. "auto" picks by the
// terminal background.
func ResolvePalette(pref string, darkBackground bool) Palette {
	switch pref {
	case "dark":
		return DarkPalette
	case "light":
		return LightPalette
	default:
		if darkBackground {
			return DarkPalette
		}
		return LightPalette
	}
}

type styles struct {
	title     lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	banner    lipgloss.Style
	muted     lipgloss.Style
	errorText lipgloss.Style
	help      lipgloss.Style
}

func newStyles(p Palette) styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		tab: lipgloss.NewStyle().
			Foreground(p.OnSurface).
			Background(p.SurfaceVariant).
			Padding(0, 2),
		activeTab: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.OnPrimary).
			Background(p.Primary).
			Padding(0, 2),
		label: lipgloss.NewStyle().
			Foreground(p.Outline).
			Width(18),
		value: lipgloss.NewStyle().
			Foreground(p.OnSurface),
		banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.OnPrimary).
			Background(p.Primary).
			Padding(0, 1),
		muted: lipgloss.NewStyle().
			Foreground(p.Outline),
		errorText: lipgloss.NewStyle().
			Foreground(p.Error),
		help: lipgloss.NewStyle().
			Foreground(p.Outline).
			Italic(true),
	}
}
