package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/secular/internal/farm"
	"github.com/san-kum/secular/internal/sim"
)

const recentTasks = 6

// OutcomeMsg carries one finished task into the program.
type OutcomeMsg farm.Outcome

// DoneMsg ends the program once the farm returns.
type DoneMsg struct {
	Summary farm.Summary
	Err     error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Progress is a bubbletea model that follows a running farm.
type Progress struct {
	total   int
	done    int
	counts  map[sim.Status]int
	recent  []farm.Outcome
	drifts  map[string]float64
	started time.Time
	now     time.Time
	width   int

	cancel   func()
	finished bool
	summary  farm.Summary
	err      error
}

// NewProgress returns a model expecting at most total tasks. cancel is
// invoked when the user quits early.
func NewProgress(total int, cancel func()) Progress {
	now := time.Now()
	return Progress{
		total:   total,
		counts:  make(map[sim.Status]int),
		drifts:  make(map[string]float64),
		started: now,
		now:     now,
		width:   40,
		cancel:  cancel,
	}
}

func (m Progress) Init() tea.Cmd { return tick() }

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = max(10, min(60, msg.Width-30))
	case tickMsg:
		m.now = time.Time(msg)
		if m.finished {
			return m, nil
		}
		return m, tick()
	case OutcomeMsg:
		m.record(farm.Outcome(msg))
	case DoneMsg:
		m.finished = true
		m.summary = msg.Summary
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Progress) record(o farm.Outcome) {
	m.done++
	m.counts[o.Status]++
	for k, v := range o.Metrics {
		m.drifts[k] = max(m.drifts[k], v)
	}
	m.recent = append(m.recent, o)
	if len(m.recent) > recentTasks {
		m.recent = m.recent[len(m.recent)-recentTasks:]
	}
}

// Done reports how many outcomes the model has seen.
func (m Progress) Done() int { return m.done }

func (m Progress) View() string {
	var b strings.Builder

	b.WriteString(Title.Render("secular") + "  " + Subtle.Render(m.now.Sub(m.started).Round(time.Second).String()) + "\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n",
		MetricValue.Render(ProgressBar(m.done, m.total, m.width)),
		MetricLabel.Render(fmt.Sprintf("%d/%d", m.done, m.total))))

	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n\n",
		MetricLabel.Render("finished"), StatusFinished.Render(fmt.Sprint(m.counts[sim.Finished])),
		MetricLabel.Render("max-iter"), StatusAborted.Render(fmt.Sprint(m.counts[sim.MaxIterationAborted])),
		MetricLabel.Render("failed"), StatusFailed.Render(fmt.Sprint(m.failed()))))

	for _, o := range m.recent {
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			statusStyle(o.Status).Render(fmt.Sprintf("%-13s", o.Status)),
			o.Title,
			Subtle.Render(fmt.Sprintf("t=%.4g steps=%d", o.Time, o.Steps))))
	}

	if len(m.drifts) > 0 {
		b.WriteString("\n")
		names := make([]string, 0, len(m.drifts))
		for k := range m.drifts {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			b.WriteString(fmt.Sprintf("  %s %s\n", MetricLabel.Render(fmt.Sprintf("%-26s", k)), MetricValue.Render(fmt.Sprintf("%.3e", m.drifts[k]))))
		}
	}

	if m.err != nil {
		b.WriteString("\n" + StatusFailed.Render("error: "+m.err.Error()) + "\n")
	}
	if !m.finished {
		b.WriteString("\n" + KeyHint.Render("q quit") + "\n")
	}
	return Panel.Render(b.String())
}

func (m Progress) failed() int {
	n := 0
	for s, c := range m.counts {
		if s != sim.Finished && s != sim.MaxIterationAborted {
			n += c
		}
	}
	return n
}

func statusStyle(s sim.Status) lipgloss.Style {
	switch s {
	case sim.Finished:
		return StatusFinished
	case sim.MaxIterationAborted:
		return StatusAborted
	default:
		return StatusFailed
	}
}
