package ui

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	Surface   lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	AccentAlt lipgloss.Color
	Border    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
}

var palettes = map[string]palette{
	"catppuccin": {
		Surface:   lipgloss.Color("#313244"),
		Text:      lipgloss.Color("#cdd6f4"),
		Muted:     lipgloss.Color("#a6adc8"),
		Accent:    lipgloss.Color("#cba6f7"),
		AccentAlt: lipgloss.Color("#f38ba8"),
		Border:    lipgloss.Color("#585b70"),
		Success:   lipgloss.Color("#94e2d5"),
		Warning:   lipgloss.Color("#f9e2af"),
	},
	"dracula": {
		Surface:   lipgloss.Color("#343746"),
		Text:      lipgloss.Color("#f8f8f2"),
		Muted:     lipgloss.Color("#6272a4"),
		Accent:    lipgloss.Color("#ff79c6"),
		AccentAlt: lipgloss.Color("#bd93f9"),
		Border:    lipgloss.Color("#44475a"),
		Success:   lipgloss.Color("#50fa7b"),
		Warning:   lipgloss.Color("#f1fa8c"),
	},
	"gruvbox": {
		Surface:   lipgloss.Color("#3c3836"),
		Text:      lipgloss.Color("#ebdbb2"),
		Muted:     lipgloss.Color("#a89984"),
		Accent:    lipgloss.Color("#fabd2f"),
		AccentAlt: lipgloss.Color("#d3869b"),
		Border:    lipgloss.Color("#665c54"),
		Success:   lipgloss.Color("#b8bb26"),
		Warning:   lipgloss.Color("#fe8019"),
	},
	"solarized_dark": {
		Surface:   lipgloss.Color("#073642"),
		Text:      lipgloss.Color("#fdf6e3"),
		Muted:     lipgloss.Color("#93a1a1"),
		Accent:    lipgloss.Color("#b58900"),
		AccentAlt: lipgloss.Color("#268bd2"),
		Border:    lipgloss.Color("#586e75"),
		Success:   lipgloss.Color("#859900"),
		Warning:   lipgloss.Color("#cb4b16"),
	},
}

type styles struct {
	title    lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
	index    lipgloss.Style
	host     lipgloss.Style
	key      lipgloss.Style
	value    lipgloss.Style
	panel    lipgloss.Style
	help     lipgloss.Style
	errorMsg lipgloss.Style
}

func newStyles(p palette) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		tab:      lipgloss.NewStyle().Padding(0, 1).Foreground(p.Muted),
		tabOn:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(p.Text).Background(p.Surface),
		index:    lipgloss.NewStyle().Foreground(p.Muted).Width(4).Align(lipgloss.Right),
		host:     lipgloss.NewStyle().Foreground(p.Success),
		key:      lipgloss.NewStyle().Foreground(p.AccentAlt).Width(24),
		value:    lipgloss.NewStyle().Foreground(p.Warning),
		panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		help:     lipgloss.NewStyle().Foreground(p.Muted),
		errorMsg: lipgloss.NewStyle().Foreground(p.AccentAlt).Bold(true),
	}
}

func paletteFor(name string) palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return palettes["catppuccin"]
}

func themeNames() []string {
	names := make([]string, 0, len(palettes))
	for k := range palettes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func nextThemeName(current string, step int) string {
	names := themeNames()
	idx := 0
	for i, name := range names {
		if name == current {
			idx = i
			break
		}
	}
	idx = (idx + step) % len(names)
	if idx < 0 {
		idx += len(names)
	}
	return names[idx]
}
