package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

// maxLogLines bounds the log tail shown under the step list.
const maxLogLines = 5

// StepRow is one step of the sequence as displayed.
type StepRow struct {
	Name   string
	Status provisioning.StepStatus
	Active bool
	Reason string
	Err    string
	Remedy string
}

// Model is the Bubble Tea model for the apply progress view.
type Model struct {
	Target string
	Domain string
	DryRun bool

	Steps   []StepRow
	Current int
	Logs    []string

	StartTime    time.Time
	SpinnerFrame int

	Width  int
	Height int
	Err    error
	Done   bool
	Report *provisioning.Report
}

// NewApplyModel creates a model listing steps in sequence order.
func NewApplyModel(target, domain string, steps []string, dryRun bool) Model {
	rows := make([]StepRow, len(steps))
	for i, name := range steps {
		rows[i] = StepRow{Name: name}
	}
	return Model{
		Target:    target,
		Domain:    domain,
		DryRun:    dryRun,
		Steps:     rows,
		StartTime: time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case StepStartedMsg:
		m.startStep(msg)

	case StepResultMsg:
		m.finishStep(msg)

	case LogMsg:
		m.Logs = append(m.Logs, msg.Line)
		if len(m.Logs) > maxLogLines {
			m.Logs = m.Logs[len(m.Logs)-maxLogLines:]
		}

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		m.Done = true
		return m, tea.Quit

	case DoneMsg:
		m.Report = msg.Report
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) index(step string) int {
	for i, row := range m.Steps {
		if row.Name == step {
			return i
		}
	}
	return -1
}

func (m *Model) startStep(msg StepStartedMsg) {
	idx := m.index(msg.Step)
	if idx < 0 {
		return
	}
	m.Current = msg.Current
	m.Steps[idx].Active = true
}

func (m *Model) finishStep(msg StepResultMsg) {
	idx := m.index(msg.Step)
	if idx < 0 {
		return
	}
	row := &m.Steps[idx]
	row.Active = false
	row.Status = msg.Status
	row.Reason = msg.Reason
	row.Err = msg.Err
	row.Remedy = msg.Remedy
}

// Progress returns the share of steps with an outcome.
func (m Model) Progress() float64 {
	if m.Done && m.Err == nil {
		return 1.0
	}
	if len(m.Steps) == 0 {
		return 0
	}
	finished := 0
	for _, row := range m.Steps {
		if row.Status != "" {
			finished++
		}
	}
	return float64(finished) / float64(len(m.Steps))
}

func tickCmd() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
