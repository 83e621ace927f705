package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	stageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

type stageMsg string

type doneMsg struct{ err error }

// progressModel shows a spinner and the current install stage until the
// install reports completion.
type progressModel struct {
	spinner spinner.Model
	title   string
	stage   string
	done    bool
	err     error
}

func newProgressModel(title string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return progressModel{spinner: s, title: title, stage: "starting"}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stageMsg:
		m.stage = string(msg)
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		if m.err != nil {
			return failureStyle.Render("✗ "+m.title) + "\n"
		}
		return successStyle.Render("✓ "+m.title) + "\n"
	}
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.title, stageStyle.Render(m.stage))
}

// runWithProgress runs fn on its own goroutine while a spinner renders to
// out. fn reports stages through the callback it is given.
func runWithProgress(out io.Writer, title string, fn func(progress func(string)) error) error {
	p := tea.NewProgram(newProgressModel(title),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	finished := make(chan error, 1)
	go func() {
		err := fn(func(stage string) { p.Send(stageMsg(stage)) })
		finished <- err
		p.Send(doneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		// The view failed; the install itself still has to finish.
		if installErr := <-finished; installErr != nil {
			return installErr
		}
		return fmt.Errorf("progress view: %w", err)
	}
	return <-finished
}
