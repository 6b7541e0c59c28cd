package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/quantmind-br/pdfremix/internal/config"
)

type editorState int

const (
	editorMenu editorState = iota
	editorForm
	editorConfirm
	editorSaved
	editorFailed
)

// Options configures the settings editor
type Options struct {
	Config     *config.Config
	SaveFunc   func(*config.Config) error
	Accessible bool
}

// Editor edits the configuration one category at a time. It is a component
// rather than a program: the stepper embeds it, and Run wraps it for
// `pdfremix config`. Closed reports when the user is done with it.
type Editor struct {
	state      editorState
	values     *ConfigValues
	cursor     int
	category   string
	form       *huh.Form
	dirty      bool
	closed     bool
	saved      *config.Config
	err        error
	save       func(*config.Config) error
	accessible bool
}

// NewEditor creates an editor over opts.Config, or the defaults
func NewEditor(opts Options) *Editor {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Editor{
		values:     FromConfig(cfg),
		save:       opts.SaveFunc,
		accessible: opts.Accessible,
	}
}

// Closed reports whether the user has left the editor
func (e *Editor) Closed() bool { return e.closed }

// Saved returns the last configuration written, or nil
func (e *Editor) Saved() *config.Config { return e.saved }

// Update handles one message and returns the follow-up command
func (e *Editor) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch e.state {
		case editorMenu:
			return e.updateMenu(key)
		case editorConfirm:
			return e.updateConfirm(key)
		case editorSaved:
			e.closed = true
			return nil
		case editorFailed:
			e.state = editorMenu
			e.err = nil
			return nil
		case editorForm:
			if key.String() == "esc" {
				e.closeForm()
				return nil
			}
		}
	}
	if e.state == editorForm {
		return e.updateForm(msg)
	}
	return nil
}

func (e *Editor) updateMenu(key tea.KeyMsg) tea.Cmd {
	// the row after the categories is "Save"
	last := len(Categories)

	switch key.String() {
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < last {
			e.cursor++
		}
	case "s":
		e.commit()
	case "enter":
		if e.cursor == last {
			e.commit()
			return nil
		}
		return e.openForm(Categories[e.cursor].ID)
	case "q", "esc":
		if e.dirty {
			e.state = editorConfirm
			return nil
		}
		e.closed = true
	}
	return nil
}

func (e *Editor) updateConfirm(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "y", "Y":
		e.commit()
	case "n", "N":
		e.closed = true
	case "c", "esc":
		e.state = editorMenu
	}
	return nil
}

func (e *Editor) openForm(category string) tea.Cmd {
	form := GetFormForCategory(category, e.values)
	if form == nil {
		return nil
	}
	if e.accessible {
		form = form.WithAccessible(true)
	}
	e.form = form
	e.category = category
	e.state = editorForm
	return form.Init()
}

func (e *Editor) updateForm(msg tea.Msg) tea.Cmd {
	model, cmd := e.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		e.form = f
	}
	if e.form.State == huh.StateCompleted {
		e.dirty = true
		e.closeForm()
		return nil
	}
	return cmd
}

func (e *Editor) closeForm() {
	e.form = nil
	e.category = ""
	e.state = editorMenu
}

// commit converts, validates and saves the edited values
func (e *Editor) commit() {
	cfg, err := e.values.ToConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil && e.save != nil {
		err = e.save(cfg)
	}
	if err != nil {
		e.err = err
		e.state = editorFailed
		return
	}
	e.saved = cfg
	e.dirty = false
	e.state = editorSaved
}

// View renders the editor body
func (e *Editor) View() string {
	switch e.state {
	case editorForm:
		var b strings.Builder
		if cat := GetCategoryByID(e.category); cat != nil {
			b.WriteString(SelectedStyle.Render(cat.Name))
			b.WriteString("\n\n")
		}
		b.WriteString(e.form.View())
		b.WriteString(HelpStyle.Render("esc back to settings"))
		return b.String()
	case editorConfirm:
		return SummaryStyle.Render("Settings changed but not saved.\n\nSave them now?\n\n[y] save  [n] discard  [c] keep editing")
	case editorSaved:
		return SuccessStyle.Render("Settings saved.") + "\n\n" + DescriptionStyle.Render("Press any key to continue.")
	case editorFailed:
		return ErrorStyle.Render(fmt.Sprintf("Could not save settings: %v", e.err)) + "\n\n" +
			DescriptionStyle.Render("Press any key to keep editing.")
	}
	return e.renderMenu()
}

func (e *Editor) renderMenu() string {
	var b strings.Builder
	for i, cat := range Categories {
		if i == e.cursor {
			b.WriteString(SelectedStyle.Render("› " + cat.Name))
			b.WriteString(DescriptionStyle.Render("  " + cat.Description))
		} else {
			b.WriteString(UnselectedStyle.Render("  " + cat.Name))
		}
		b.WriteString("\n")
	}

	save := "Save settings"
	if e.dirty {
		save += " (unsaved changes)"
	}
	b.WriteString("\n")
	if e.cursor == len(Categories) {
		b.WriteString(SelectedStyle.Render("› " + save))
	} else {
		b.WriteString(UnselectedStyle.Render("  " + save))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ move • enter open • s save • q done"))
	return b.String()
}
