package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// editorProgram runs an Editor on its own, quitting when it closes
type editorProgram struct {
	editor *Editor
}

func (p editorProgram) Init() tea.Cmd { return nil }

func (p editorProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return p, tea.Quit
	}
	cmd := p.editor.Update(msg)
	if p.editor.Closed() {
		return p, tea.Quit
	}
	return p, cmd
}

func (p editorProgram) View() string {
	return TitleStyle.Render("pdfremix settings") + "\n\n" + p.editor.View()
}

// Run opens the settings editor
func Run(opts Options) error {
	_, err := tea.NewProgram(editorProgram{editor: NewEditor(opts)}, tea.WithAltScreen()).Run()
	return err
}

// RunRemix walks the user through a remix session interactively
func RunRemix(opts StepperOptions) error {
	_, err := tea.NewProgram(NewStepper(opts), tea.WithAltScreen()).Run()
	return err
}
