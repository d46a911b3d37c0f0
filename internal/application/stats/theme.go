// Package stats reshapes list records into dashboard figures and chart series.
// Every presentation function takes the theme explicitly.
package stats

import (
	"fmt"
	"strings"
)

// Theme selects the chart palette
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name; blank means light
func ParseTheme(raw string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q", raw)
	}
}

// Palette holds the colors a chart renderer needs
type Palette struct {
	Text       string   `json:"text"`
	Grid       string   `json:"grid"`
	Background string   `json:"background"`
	Series     []string `json:"series"`
}

var palettes = map[Theme]Palette{
	ThemeLight: {
		Text:       "#1f2937",
		Grid:       "#e5e7eb",
		Background: "#ffffff",
		Series:     []string{"#2563eb", "#16a34a", "#f59e0b", "#dc2626", "#7c3aed", "#0891b2"},
	},
	ThemeDark: {
		Text:       "#e5e7eb",
		Grid:       "#374151",
		Background: "#111827",
		Series:     []string{"#60a5fa", "#4ade80", "#fbbf24", "#f87171", "#a78bfa", "#22d3ee"},
	},
}

// PaletteFor returns the palette of theme, light for unknown themes
func PaletteFor(theme Theme) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[ThemeLight]
}

// SeriesColor cycles through the series colors of p
func (p Palette) SeriesColor(i int) string {
	return p.Series[i%len(p.Series)]
}
