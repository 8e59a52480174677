package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/spinlattice/internal/sim"
)

const (
	historyCapacity = 600
	frameRate       = time.Second / 30
	// Lattices wider than this switch to the braille view automatically.
	blockLimit = 60
)

var (
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(44)
	gridStyle  = lipgloss.NewStyle().Padding(0, 1)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Model animates a simulator, advancing tCorr sweeps per frame until tMax
// sweeps have run or the dynamics stop on their own.
type Model struct {
	sim       *sim.Simulator
	label     string
	epidemic  bool
	tCorr     int
	tMax      int
	running   bool
	done      bool
	theme     Theme
	braille   bool
	history   []float64
	recorder  *Recorder
	recording bool
	gifPath   string
	status    string
	err       error
	showHelp  bool
}

// NewModel prepares a live view of s.
func NewModel(s *sim.Simulator, label string, epidemic bool, tCorr, tMax int) Model {
	w, _ := s.Grid().Dims()
	m := Model{
		sim:      s,
		label:    label,
		epidemic: epidemic,
		tCorr:    max(tCorr, 1),
		tMax:     tMax,
		running:  true,
		theme:    ThemeClassic,
		braille:  w > blockLimit,
		history:  make([]float64, 0, historyCapacity),
		recorder: NewRecorder(4),
		gifPath:  label + ".gif",
	}
	m.observe()
	return m
}

func (m Model) Init() tea.Cmd { return nextFrame() }

// Done reports whether the animation has reached tMax or absorption.
func (m Model) Done() bool { return m.done }

func (m Model) Err() error { return m.err }

// Update handles input events and advances the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done {
				m.running = !m.running
				if m.running {
					return m, nextFrame()
				}
			}
		case "t":
			m.theme = NextTheme(m.theme)
		case "b":
			m.braille = !m.braille
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case frameMsg:
		if !m.running || m.done {
			return m, nil
		}
		m.advance()
		if m.done {
			m.running = false
			if m.recording {
				m.toggleRecording()
			}
			return m, nil
		}
		return m, nextFrame()
	}
	return m, nil
}

// advance runs one frame worth of sweeps.
func (m *Model) advance() {
	n := m.tCorr
	if m.tMax > 0 {
		n = min(n, m.tMax-m.sim.T())
	}
	if n > 0 && !m.sim.Stopped() {
		if _, err := m.sim.Run(context.Background(), n); err != nil {
			m.err = err
			m.done = true
			return
		}
		m.observe()
		if m.recording {
			m.recorder.Add(GridImage(m.sim.Snapshot(), m.epidemic, m.theme, 4))
		}
	}
	if m.sim.Stopped() || (m.tMax > 0 && m.sim.T() >= m.tMax) {
		m.done = true
	}
}

func (m *Model) observe() {
	obs := m.sim.Observables()
	v := obs.Magnetisation
	if m.epidemic {
		v = float64(obs.Infected)
	}
	m.history = append(m.history, v)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.recorder.Reset()
		m.status = "recording"
		return
	}
	m.recording = false
	if m.recorder.Len() == 0 {
		m.status = "nothing recorded"
		return
	}
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.status = "gif: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %s (%d frames)", m.gifPath, m.recorder.Len())
}

// View renders the lattice beside a stats panel.
func (m Model) View() string {
	rows := m.sim.Snapshot()
	var grid string
	if m.braille {
		grid = GridCanvas(rows, Occupied(m.epidemic)).String()
	} else {
		grid = RenderGrid(rows, m.epidemic, m.theme)
	}

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.label)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(StatusStopped.Render("ERROR: "+m.err.Error()) + "\n")
	case m.sim.Stopped():
		s.WriteString(StatusStopped.Render("ABSORBED") + "\n")
	case m.done:
		s.WriteString(StatusStopped.Render("FINISHED") + "\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}
	if m.tMax > 0 {
		s.WriteString(ProgressBar(float64(m.sim.T())/float64(m.tMax), 30) + "\n")
	}
	s.WriteString("\n")

	obs := m.sim.Observables()
	size := float64(m.sim.Size())
	s.WriteString(MetricLabel.Render("Sweep") + MetricValue.Render(fmt.Sprintf("%d", m.sim.T())) + "\n")
	caption := "Magnetisation"
	if m.epidemic {
		caption = "Infected"
		s.WriteString(MetricLabel.Render("Infected") + MetricValue.Render(fmt.Sprintf("%d", obs.Infected)) + "\n")
		s.WriteString(MetricLabel.Render("Psi") + MetricValue.Render(fmt.Sprintf("%.4f", float64(obs.Infected)/size)) + "\n")
	} else {
		s.WriteString(MetricLabel.Render("Energy") + MetricValue.Render(fmt.Sprintf("%.1f", obs.Energy)) + "\n")
		s.WriteString(MetricLabel.Render("Magnetisation") + MetricValue.Render(fmt.Sprintf("%.1f", obs.Magnetisation)) + "\n")
	}
	c := m.sim.Counters()
	if c.Proposals > 0 {
		s.WriteString(MetricLabel.Render("Acceptance") + MetricValue.Render(fmt.Sprintf("%.3f", float64(c.Accepted)/float64(c.Proposals))) + "\n")
	}
	s.WriteString(MetricLabel.Render("Theme") + MetricValue.Render(m.theme.Name) + "\n")

	if len(m.history) > 1 {
		s.WriteString(graphStyle.Render(Plot(m.history, caption, 30, 5)) + "\n")
	}
	if m.status != "" {
		s.WriteString(KeyHint.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause Q:Quit T:Theme\nB:Braille G:Record ?:Help"))

	view := lipgloss.JoinHorizontal(lipgloss.Top, gridStyle.Render(grid), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n" + view
	}
	return view
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  T        - Cycle themes             ║
║  B        - Toggle braille view      ║
║  G        - Toggle GIF recording     ║
║  Esc      - Back to presets          ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
