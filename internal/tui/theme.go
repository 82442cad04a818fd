package tui

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines customizable colors for rendering.
type Theme struct {
	AddColor     string `json:"addColor"`
	DelColor     string `json:"delColor"`
	MetaColor    string `json:"metaColor"`
	DividerColor string `json:"dividerColor"`
	MarkColor    string `json:"markColor"`
}

func darkTheme() Theme {
	return Theme{
		AddColor:     "34",
		DelColor:     "196",
		MetaColor:    "63",
		DividerColor: "240",
		MarkColor:    "214",
	}
}

func lightTheme() Theme {
	return Theme{
		AddColor:     "22",
		DelColor:     "9",
		MetaColor:    "27",
		DividerColor: "244",
		MarkColor:    "130",
	}
}

// GetTheme returns the requested base theme; anything but "light" is dark.
func GetTheme(name string) Theme {
	if name == "light" {
		return lightTheme()
	}
	return darkTheme()
}

// LoadTheme starts from the named base theme and overlays
// .hunkslice/theme.json at repoRoot when present.
func LoadTheme(repoRoot, base string) Theme {
	t := GetTheme(base)
	b, err := os.ReadFile(filepath.Join(repoRoot, ".hunkslice", "theme.json"))
	if err != nil {
		return t
	}
	var u Theme
	if err := json.Unmarshal(b, &u); err != nil {
		return t
	}
	// Merge, keeping defaults for empty fields
	if u.AddColor != "" {
		t.AddColor = u.AddColor
	}
	if u.DelColor != "" {
		t.DelColor = u.DelColor
	}
	if u.MetaColor != "" {
		t.MetaColor = u.MetaColor
	}
	if u.DividerColor != "" {
		t.DividerColor = u.DividerColor
	}
	if u.MarkColor != "" {
		t.MarkColor = u.MarkColor
	}
	return t
}

func (t Theme) AddText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.AddColor)).Render(s)
}

func (t Theme) DelText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DelColor)).Render(s)
}

func (t Theme) MetaText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MetaColor)).Render(s)
}

func (t Theme) DividerText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.DividerColor)).Render(s)
}

func (t Theme) MarkText(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.MarkColor)).Bold(true).Render(s)
}
