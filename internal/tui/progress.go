package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bow-simulation/virtualbow-sub001/internal/model"
	"github.com/bow-simulation/virtualbow-sub001/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const barWidth = 40

type (
	tickMsg     time.Time
	progressMsg struct {
		phase    string
		fraction float64
	}
	doneMsg struct {
		out *model.Output
		err error
	}
)

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type progressModel struct {
	title    string
	phase    string
	fraction float64
	finished []string

	frame     int
	start     time.Time
	elapsed   time.Duration
	canceling bool
	cancel    context.CancelFunc

	done bool
	out  *model.Output
	err  error
}

func newProgressModel(title string, cancel context.CancelFunc) progressModel {
	return progressModel{title: title, cancel: cancel, start: time.Now()}
}

func (m progressModel) Init() tea.Cmd { return tick() }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			// the run returns once it observes the cancellation
			if !m.canceling && m.cancel != nil {
				m.cancel()
			}
			m.canceling = true
		}
		return m, nil

	case progressMsg:
		if msg.phase != m.phase && m.phase != "" {
			m.finished = append(m.finished, m.phase)
		}
		m.phase, m.fraction = msg.phase, msg.fraction
		return m, nil

	case doneMsg:
		m.done = true
		m.out, m.err = msg.out, msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.frame++
		m.elapsed = time.Since(m.start)
		return m, tick()
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(cyan.Bold(true).Render(m.title))
	b.WriteString("\n\n")

	for _, p := range m.finished {
		b.WriteString(green.Render("✓ ") + dim.Render(p) + "\n")
	}

	switch {
	case m.done && m.err != nil:
		b.WriteString(viz.Failure.Render("✗ "+m.phase) + " " + m.err.Error() + "\n")
	case m.done:
		b.WriteString(green.Render("✓ ") + dim.Render(m.phase) + "\n")
	case m.phase != "":
		fmt.Fprintf(&b, "%s %-8s %s %s\n",
			yellow.Render(viz.Spinner(m.frame)),
			white.Render(m.phase),
			viz.ProgressBar(m.fraction, barWidth),
			white.Render(fmt.Sprintf("%3.0f%%", 100*m.fraction)))
	}

	b.WriteString("\n")
	status := fmt.Sprintf("%.1fs", m.elapsed.Seconds())
	if m.canceling && !m.done {
		status += "  canceling..."
	} else if !m.done {
		status += "  q to cancel"
	}
	b.WriteString(dim.Render(status) + "\n")
	return b.String()
}

// throttle drops progress reports that would not change the displayed
// percentage.
func throttle(send func(tea.Msg)) model.Progress {
	last := progressMsg{fraction: -1}
	return func(phase string, fraction float64) {
		if phase == last.phase && fraction < 1 && fraction-last.fraction < 0.005 {
			return
		}
		last = progressMsg{phase, fraction}
		send(last)
	}
}

// RunWithProgress runs a simulation while showing its phases and progress
// in the terminal. Pressing q cancels the context passed to run.
func RunWithProgress(title string, run func(context.Context, model.Progress) (*model.Output, error)) (*model.Output, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(newProgressModel(title, cancel))
	go func() {
		out, err := run(ctx, throttle(p.Send))
		p.Send(doneMsg{out, err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m := final.(progressModel)
	return m.out, m.err
}
