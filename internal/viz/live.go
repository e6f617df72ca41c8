package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/seamount/internal/ocean"
)

// StepMsg reports progress after one model step.
type StepMsg struct {
	Step    int
	Total   int
	Day     float64
	MeanSST float64
	Misfit  float64
}

// DoneMsg ends the live view.
type DoneMsg struct {
	Result *ocean.Result
	Err    error
}

// ProgressObserver forwards runner progress into a bubbletea program.
type ProgressObserver struct {
	send   func(tea.Msg)
	total  int
	sst    ocean.Metric
	misfit ocean.Metric
}

func NewProgressObserver(send func(tea.Msg), total int, sst, misfit ocean.Metric) *ProgressObserver {
	return &ProgressObserver{send: send, total: total, sst: sst, misfit: misfit}
}

func (p *ProgressObserver) OnStep(s *ocean.State) {
	p.send(StepMsg{
		Step:    s.Itt,
		Total:   p.total,
		Day:     s.Time / 86400,
		MeanSST: p.sst.Value(),
		Misfit:  p.misfit.Value(),
	})
}

// LiveModel is the bubbletea model for `seamount live`.
type LiveModel struct {
	title   string
	cancel  func()
	last    StepMsg
	history []float64
	result  *ocean.Result
	err     error
	done    bool
	width   int
}

func NewLiveModel(title string, cancel func()) LiveModel {
	return LiveModel{title: title, cancel: cancel, width: 60}
}

func (m LiveModel) Init() tea.Cmd { return nil }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if !m.done && m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = min(max(msg.Width-10, 20), 100)
	case StepMsg:
		m.last = msg
		m.history = append(m.history, msg.MeanSST)
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
	}
	return m, nil
}

func (m LiveModel) View() string {
	var b strings.Builder
	b.WriteString(Title.Render(m.title))
	b.WriteString("\n\n")

	pct := 0.0
	if m.last.Total > 0 {
		pct = float64(m.last.Step) / float64(m.last.Total)
	}
	b.WriteString(ProgressBar(pct, m.width))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", pct*100))

	b.WriteString(MetricLabel.Render("day       "))
	b.WriteString(MetricValue.Render(fmt.Sprintf("%.1f", m.last.Day)))
	b.WriteString("\n")
	b.WriteString(MetricLabel.Render("mean sst  "))
	b.WriteString(MetricValue.Render(fmt.Sprintf("%.3f °C", m.last.MeanSST)))
	b.WriteString("\n")
	b.WriteString(MetricLabel.Render("misfit    "))
	b.WriteString(MetricValue.Render(fmt.Sprintf("%.3f °C", m.last.Misfit)))
	b.WriteString("\n\n")
	b.WriteString(Sparkline(m.history, m.width))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(StatusFailed.Render("failed: " + m.err.Error()))
	case m.done:
		b.WriteString(StatusDone.Render(fmt.Sprintf("done: %d steps", m.result.Steps)))
	default:
		b.WriteString(StatusRunning.Render("running"))
	}
	b.WriteString("\n")
	b.WriteString(KeyHint.Render("q to quit"))
	return Panel.Render(b.String())
}

// Result is the finished run, or nil while running.
func (m LiveModel) Result() (*ocean.Result, error) { return m.result, m.err }
