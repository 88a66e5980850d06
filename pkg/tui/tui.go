// Package tui provides the interactive terminal front end: a status view of
// the loop engine plus the hotkeys for toggling playback, clearing the
// buffer and adjusting playback settings.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/video-system/go-replay-loop/pkg/loop"
)

// Controller is the engine surface the TUI drives.
type Controller interface {
	Status() loop.Status
	Toggle() error
	Clear()
	Config() loop.BufferConfig
	SetConfig(cfg loop.BufferConfig)
}

// refreshInterval is how often the status view is re-read from the engine.
const refreshInterval = 200 * time.Millisecond

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	playingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	captureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barFill      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	barEmpty     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

type tickMsg time.Time

// Model is the bubbletea model for the replay loop console.
type Model struct {
	ctrl    Controller
	status  loop.Status
	warning string
	warnAt  time.Time
}

// New creates the TUI model around an engine controller.
func New(ctrl Controller) Model {
	return Model{ctrl: ctrl, status: ctrl.Status()}
}

// Run starts the interactive program and blocks until the user quits.
func Run(ctrl Controller) error {
	_, err := tea.NewProgram(New(ctrl), tea.WithAltScreen()).Run()
	return err
}

// Init schedules the first status refresh.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses and periodic refreshes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.status = m.ctrl.Status()
		if m.warning != "" && time.Since(m.warnAt) > 3*time.Second {
			m.warning = ""
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if err := m.ctrl.Toggle(); err != nil {
				if errors.Is(err, loop.ErrEmptyBuffer) {
					m.warning = "nothing buffered yet"
				} else {
					m.warning = err.Error()
				}
				m.warnAt = time.Now()
			}
		case "c":
			m.ctrl.Clear()
		case "p":
			cfg := m.ctrl.Config()
			cfg.PingPong = !cfg.PingPong
			m.ctrl.SetConfig(cfg)
		case "+", "=":
			cfg := m.ctrl.Config()
			cfg.PlaybackSpeed += 0.1
			m.ctrl.SetConfig(cfg)
		case "-", "_":
			cfg := m.ctrl.Config()
			cfg.PlaybackSpeed -= 0.1
			m.ctrl.SetConfig(cfg)
		}
		m.status = m.ctrl.Status()
	}
	return m, nil
}

// View renders the status console.
func (m Model) View() string {
	st := m.status

	var b strings.Builder
	b.WriteString(titleStyle.Render("replay loop"))
	b.WriteString("\n\n")

	mode := captureStyle.Render("CAPTURING")
	if st.Mode == "playing" {
		mode = playingStyle.Render("PLAYING")
	}
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("mode:"), mode))

	b.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render("buffer:"),
		valueStyle.Render(fmt.Sprintf("%d/%d frames (%ds window)", st.FrameCount, st.Capacity, st.BufferSeconds))))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("fill:"), fillBar(st.FrameCount, st.Capacity, 30)))

	if st.Width > 0 {
		b.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("source:"),
			valueStyle.Render(fmt.Sprintf("%dx%d @ %.1f fps", st.Width, st.Height, st.SourceFPS))))
	}

	b.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render("playback:"),
		valueStyle.Render(fmt.Sprintf("%.1fx, ping-pong=%v", st.PlaybackSpeed, st.PingPong))))

	if st.Mode == "playing" {
		b.WriteString(fmt.Sprintf("%s %s\n",
			labelStyle.Render("cursor:"),
			valueStyle.Render(fmt.Sprintf("frame %d, %s, loop %d", st.PlayIndex, st.Direction, st.LoopCount))))
	}

	if m.warning != "" {
		b.WriteString("\n" + warnStyle.Render("! "+m.warning) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("space toggle · c clear · p ping-pong · +/- speed · q quit") + "\n")
	return b.String()
}

// fillBar renders a proportional buffer-fill gauge.
func fillBar(n, capacity, width int) string {
	if capacity <= 0 {
		capacity = 1
	}
	filled := n * width / capacity
	if filled > width {
		filled = width
	}
	return barFill.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", width-filled))
}
