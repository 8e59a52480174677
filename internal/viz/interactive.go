package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spinlattice/internal/config"
	"github.com/san-kum/spinlattice/internal/experiment"
)

var (
	cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dim  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var presetInfo = map[string]string{
	"ising/cold":       "ordered phase, domains coarsen",
	"ising/critical":   "near the Onsager temperature",
	"ising/hot":        "disordered phase from a uniform start",
	"ising/demix":      "conserved dynamics, phase separation",
	"ising/interface":  "conserved dynamics from a split lattice",
	"sirs/absorbing":   "infection dies out",
	"sirs/equilibrium": "dynamic equilibrium",
	"sirs/waves":       "travelling infection waves",
	"sirs/herd":        "30% immune population",
}

// Menu lists the presets and opens a live view of the chosen one.
type Menu struct {
	reg     *experiment.Registry
	base    *config.Config
	entries []string
	cursor  int
	live    *Model
	err     error
}

// NewMenu builds the preset picker. Seed and lattice width come from base
// when set.
func NewMenu(reg *experiment.Registry, base *config.Config) Menu {
	var entries []string
	for _, model := range config.Models() {
		for _, name := range config.ListPresets(model) {
			entries = append(entries, model+"/"+name)
		}
	}
	return Menu{reg: reg, base: base, entries: entries}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		live, err := m.open(m.entries[m.cursor])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) open(entry string) (Model, error) {
	model, name, _ := strings.Cut(entry, "/")
	cfg := config.GetPreset(model, name)
	if cfg == nil {
		return Model{}, fmt.Errorf("unknown preset: %s", entry)
	}
	if m.base != nil {
		cfg.Seed = m.base.Seed
		if m.base.Width > 0 {
			cfg.Width = m.base.Width
			cfg.Height = m.base.Height
		}
	}
	exp, err := experiment.New(cfg, m.reg)
	if err != nil {
		return Model{}, err
	}
	return NewModel(exp.Simulator(), cfg.Label, exp.Family() == experiment.Epidemic, cfg.TCorr, cfg.Sweeps), nil
}

// Live returns the open live view, if any.
func (m Menu) Live() (Model, bool) {
	if m.live == nil {
		return Model{}, false
	}
	return *m.live, true
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render("SPIN LATTICE PRESETS") + "\n\n")
	for i, entry := range m.entries {
		line := fmt.Sprintf("%-18s %s", entry, dim.Render(presetInfo[entry]))
		if i == m.cursor {
			s.WriteString(Selected.Render("> "+entry) + strings.Repeat(" ", max(17-len(entry), 0)) + " " + cyan.Render(presetInfo[entry]) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusStopped.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("↑↓:Select Enter:Run Esc:Back Q:Quit"))
	return s.String()
}
