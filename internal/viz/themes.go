package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spinlattice/internal/physics"
)

// Theme is a color scheme for lattice sites and the surrounding UI.
type Theme struct {
	Name        string
	Up          lipgloss.Color
	Down        lipgloss.Color
	Susceptible lipgloss.Color
	Infected    lipgloss.Color
	Recovered   lipgloss.Color
	Immune      lipgloss.Color
	Accent      lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:        "classic",
		Up:          lipgloss.Color("#f0f0f0"),
		Down:        lipgloss.Color("#1a1a4a"),
		Susceptible: lipgloss.Color("#3a3a3a"),
		Infected:    lipgloss.Color("#ff3030"),
		Recovered:   lipgloss.Color("#30c050"),
		Immune:      lipgloss.Color("#3070ff"),
		Accent:      lipgloss.Color("#00ffff"),
	}

	ThemeOcean = Theme{
		Name:        "ocean",
		Up:          lipgloss.Color("#00a8cc"),
		Down:        lipgloss.Color("#001a33"),
		Susceptible: lipgloss.Color("#0077be"),
		Infected:    lipgloss.Color("#ffd700"),
		Recovered:   lipgloss.Color("#00ff88"),
		Immune:      lipgloss.Color("#e0f0ff"),
		Accent:      lipgloss.Color("#ffd700"),
	}

	ThemeSunset = Theme{
		Name:        "sunset",
		Up:          lipgloss.Color("#feca57"),
		Down:        lipgloss.Color("#2d1b2e"),
		Susceptible: lipgloss.Color("#8b6b8c"),
		Infected:    lipgloss.Color("#ff4757"),
		Recovered:   lipgloss.Color("#5fd068"),
		Immune:      lipgloss.Color("#ff9ff3"),
		Accent:      lipgloss.Color("#ff6b6b"),
	}

	ThemeMono = Theme{
		Name:        "mono",
		Up:          lipgloss.Color("#ffffff"),
		Down:        lipgloss.Color("#000000"),
		Susceptible: lipgloss.Color("#000000"),
		Infected:    lipgloss.Color("#ffffff"),
		Recovered:   lipgloss.Color("#888888"),
		Immune:      lipgloss.Color("#444444"),
		Accent:      lipgloss.Color("#cccccc"),
	}

	Themes = []Theme{ThemeClassic, ThemeOcean, ThemeSunset, ThemeMono}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after t in Themes.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// States lists the site values drawn for a lattice family, in palette order.
func States(epidemic bool) []int {
	if epidemic {
		return physics.EpidemicStates
	}
	return []int{physics.SpinUp, physics.SpinDown}
}

// Color returns the color of site value v.
func (t Theme) Color(epidemic bool, v int) lipgloss.Color {
	if epidemic {
		switch v {
		case physics.Infected:
			return t.Infected
		case physics.Recovered:
			return t.Recovered
		case physics.Immune:
			return t.Immune
		default:
			return t.Susceptible
		}
	}
	if v == physics.SpinUp {
		return t.Up
	}
	return t.Down
}
