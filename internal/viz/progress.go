package viz

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/solctra/internal/tracer"
)

const (
	barWidth   = 40
	sparkWidth = 40
	tickRate   = time.Second / 10
)

// StepMsg reports driver progress after a step.
type StepMsg struct {
	Step   int
	Active int
	Total  int
}

// DoneMsg is sent once the run returns.
type DoneMsg struct {
	Result *tracer.Result
	Err    error
}

type tickMsg time.Time

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Feed is a tracer.Observer forwarding progress to a running program every
// few steps.
type Feed struct {
	sender Sender
	every  int
}

func NewFeed(s Sender, every int) *Feed {
	if every <= 0 {
		every = 1
	}
	return &Feed{sender: s, every: every}
}

func (f *Feed) OnStep(step int, particles tracer.ParticleSet) {
	if step%f.every != 0 {
		return
	}
	f.sender.Send(StepMsg{Step: step, Active: particles.ActiveCount(), Total: len(particles)})
}

// Progress is the bubbletea model behind `run --live`.
type Progress struct {
	title   string
	steps   int
	step    int
	active  int
	total   int
	history []float64

	start  time.Time
	now    time.Time
	done   bool
	err    error
	result *tracer.Result
	cancel context.CancelFunc
}

// NewProgress builds the model for a run of steps steps over particles
// particles. cancel is invoked when the user quits.
func NewProgress(title string, steps, particles int, cancel context.CancelFunc) Progress {
	now := time.Now()
	return Progress{
		title:  title,
		steps:  steps,
		active: particles,
		total:  particles,
		start:  now,
		now:    now,
		cancel: cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Progress) Init() tea.Cmd { return tick() }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case StepMsg:
		m.step = msg.Step
		m.active = msg.Active
		m.total = msg.Total
		if msg.Total > 0 {
			m.history = append(m.history, float64(msg.Active)/float64(msg.Total))
		}

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		m.result = msg.Result
		if msg.Result != nil {
			m.step = msg.Result.StepsTaken
			m.active = msg.Result.Active
		}
		return m, tea.Quit

	case tickMsg:
		m.now = time.Time(msg)
		if m.done {
			return m, nil
		}
		return m, tick()
	}
	return m, nil
}

func (m Progress) fraction() float64 {
	if m.steps == 0 {
		return 1
	}
	return float64(m.step) / float64(m.steps)
}

func (m Progress) throughput() float64 {
	elapsed := m.now.Sub(m.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(m.step) / elapsed
}

func (m Progress) View() string {
	var b strings.Builder

	status := StatusRunning.Render("● TRACING")
	switch {
	case m.done && m.err != nil:
		status = StatusFailed.Render("✕ " + m.err.Error())
	case m.done:
		status = StatusDone.Render("✓ DONE")
	}

	b.WriteString(Title.Render(m.title) + "  " + status + "\n\n")
	b.WriteString(ProgressBar(m.fraction(), barWidth))
	b.WriteString(fmt.Sprintf(" %5.1f%%\n\n", 100*m.fraction()))

	metric := func(label, value string) {
		b.WriteString(MetricLabel.Render(fmt.Sprintf("%-10s", label)) + MetricValue.Render(value) + "\n")
	}
	metric("step", fmt.Sprintf("%d / %d", m.step, m.steps))
	metric("active", fmt.Sprintf("%d / %d", m.active, m.total))
	metric("diverged", fmt.Sprintf("%d", m.total-m.active))
	metric("rate", fmt.Sprintf("%.1f steps/s", m.throughput()))

	b.WriteString("\n" + Sparkline(m.history, 0, 1, sparkWidth) + "\n\n")
	b.WriteString(Subtle.Render("q: stop"))

	return Panel.Render(b.String())
}

// Err returns the error the run finished with, if any.
func (m Progress) Err() error { return m.err }

func (m Progress) Done() bool { return m.done }
