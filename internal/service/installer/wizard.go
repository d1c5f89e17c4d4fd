package installer

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

var ErrInterrupted = errors.New("setup interrupted")

// Step is one screen of the wizard. Update returns nil when the step is done.
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState) (Step, tea.Cmd)
	View(state *InstallState) string
	// Skip reports whether the step does not apply to the answers so far.
	Skip(state *InstallState) bool
}

type errMsg error

// model drives the steps in order.
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	err         error
}

func newModel(steps []Step) model {
	m := model{
		steps: steps,
		state: NewInstallState(),
	}
	m.currentStep = m.nextApplicable(0)
	return m
}

func (m model) nextApplicable(from int) int {
	for from < len(m.steps) && m.steps[from].Skip(m.state) {
		from++
	}
	return from
}

func (m model) done() bool {
	return m.currentStep >= len(m.steps)
}

func (m model) Init() tea.Cmd {
	if m.done() {
		return tea.Quit
	}
	return m.steps[m.currentStep].Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case errMsg:
		m.err = msg
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.done() {
		return m, tea.Quit
	}

	next, cmd := m.steps[m.currentStep].Update(msg, m.state)
	if next != nil {
		m.steps[m.currentStep] = next
		return m, cmd
	}

	m.currentStep = m.nextApplicable(m.currentStep + 1)
	if m.done() {
		return m, tea.Quit
	}
	return m, m.steps[m.currentStep].Init()
}

func (m model) View() string {
	if m.quitting {
		return "Setup cancelled.\n"
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + hintStyle.Render("(press ctrl+c to quit)") + "\n"
	}
	if m.done() {
		return "Configuration complete!\n"
	}
	return titleStyle.Render("MedRAG setup") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard asks the questions and returns the answers. Nothing is written.
func RunWizard() (*InstallState, error) {
	p := tea.NewProgram(newModel(Steps()), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	final := m.(model)
	if final.quitting {
		return nil, ErrInterrupted
	}
	if final.err != nil {
		return nil, final.err
	}
	return final.state, nil
}
