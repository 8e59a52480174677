package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spinlattice/internal/physics"
)

// PlainGrid renders one character per site without color: '#' and '.' for
// up and down spins, '.', '#', 'o' and 'x' for S, I, R and Im.
func PlainGrid(rows [][]int, epidemic bool) string {
	var b strings.Builder
	for _, row := range rows {
		for _, v := range row {
			b.WriteByte(glyph(epidemic, v))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func glyph(epidemic bool, v int) byte {
	if !epidemic {
		if v == physics.SpinUp {
			return '#'
		}
		return '.'
	}
	switch v {
	case physics.Infected:
		return '#'
	case physics.Recovered:
		return 'o'
	case physics.Immune:
		return 'x'
	default:
		return '.'
	}
}

// RenderGrid renders each site as a two-cell colored block.
func RenderGrid(rows [][]int, epidemic bool, theme Theme) string {
	styles := make(map[int]lipgloss.Style)
	for _, v := range States(epidemic) {
		styles[v] = lipgloss.NewStyle().Foreground(theme.Color(epidemic, v))
	}

	var b strings.Builder
	for _, row := range rows {
		for _, v := range row {
			st, ok := styles[v]
			if !ok {
				st = lipgloss.NewStyle().Foreground(theme.Color(epidemic, v))
			}
			b.WriteString(st.Render("██"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Occupied reports whether a site is drawn as a lit braille dot: up spins,
// or infected sites in the epidemic view.
func Occupied(epidemic bool) func(v int) bool {
	if epidemic {
		return func(v int) bool { return v == physics.Infected }
	}
	return func(v int) bool { return v == physics.SpinUp }
}
