package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/quantmind-br/pdfremix/internal/app"
	"github.com/quantmind-br/pdfremix/internal/config"
	"github.com/quantmind-br/pdfremix/internal/remix"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
)

var steps = []app.Step{app.StepSelectBundle, app.StepSelectSources, app.StepSelectStyle, app.StepRemix}

// StepperOptions configures an interactive remix
type StepperOptions struct {
	Context context.Context
	Session *app.Session
	Config  *config.Config

	// SaveResult writes a finished remix and returns the path written.
	// It receives the settings in effect, which the embedded editor may
	// have changed.
	SaveResult func(*remix.Result, *config.Config) (string, error)
	SaveConfig func(*config.Config) error
	ReadFile   func(path string) (*upload.File, error)
	Accessible bool
}

// stepInput holds the values bound to the step forms
type stepInput struct {
	bundlePath  string
	sourcePaths string
	styleSheet  string
}

type remixDoneMsg struct {
	result *remix.Result
	err    error
}

// Stepper is the bubbletea front end of an app.Session: one screen per
// step, with the settings editor reachable from any of them.
type Stepper struct {
	ctx        context.Context
	session    *app.Session
	cfg        *config.Config
	saveResult func(*remix.Result, *config.Config) (string, error)
	saveConfig func(*config.Config) error
	readFile   func(string) (*upload.File, error)
	accessible bool

	input    *stepInput
	form     *huh.Form
	editor   *Editor
	remixing bool
	output   string
	notice   string
	err      error
}

// NewStepper creates a stepper positioned at the session's current step
func NewStepper(opts StepperOptions) *Stepper {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	readFile := opts.ReadFile
	if readFile == nil {
		readFile = upload.ReadFile
	}
	return &Stepper{
		ctx:        ctx,
		session:    opts.Session,
		cfg:        cfg,
		saveResult: opts.SaveResult,
		saveConfig: opts.SaveConfig,
		readFile:   readFile,
		accessible: opts.Accessible,
		input:      &stepInput{},
	}
}

func (s *Stepper) Init() tea.Cmd {
	return s.openForm()
}

// openForm builds the form for the current step. The remix step has none.
func (s *Stepper) openForm() tea.Cmd {
	s.form = s.formFor(s.session.Step())
	if s.form == nil {
		if s.session.Step() == app.StepSelectStyle {
			s.err = ErrNoStyles
		}
		return nil
	}
	if s.accessible {
		s.form = s.form.WithAccessible(true)
	}
	return s.form.Init()
}

func (s *Stepper) formFor(step app.Step) *huh.Form {
	switch step {
	case app.StepSelectBundle:
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Key("bundle").
				Title("Bundle").
				Description("Path to the remix bundle (.zip)").
				Value(&s.input.bundlePath).
				Validate(ValidateExistingFile),
		)).WithTheme(GetTheme())

	case app.StepSelectSources:
		s.input.sourcePaths = ""
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Key("sources").
				Title("Source PDFs").
				Description("Comma-separated paths; names must match the list above").
				Value(&s.input.sourcePaths).
				Validate(ValidateRequired),
		)).WithTheme(GetTheme())

	case app.StepSelectStyle:
		styles := s.session.Bundle().Manifest.Styles
		if len(styles) == 0 {
			return nil
		}
		s.input.styleSheet = s.session.StyleSheet()
		if s.input.styleSheet == "" {
			s.input.styleSheet = styles[0].StyleSheet
		}
		return SelectStyleForm(styles, &s.input.styleSheet)
	}
	return nil
}

func (s *Stepper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(remixDoneMsg); ok {
		s.finishRemix(done)
		return s, nil
	}

	key, isKey := msg.(tea.KeyMsg)
	if isKey && key.String() == "ctrl+c" {
		return s, tea.Quit
	}

	if s.editor != nil {
		cmd := s.editor.Update(msg)
		if s.editor.Closed() {
			if saved := s.editor.Saved(); saved != nil {
				s.cfg = saved
			}
			s.editor = nil
			return s, s.openForm()
		}
		return s, cmd
	}

	if isKey {
		switch key.String() {
		case "ctrl+e":
			s.editor = NewEditor(Options{Config: s.cfg, SaveFunc: s.saveConfig, Accessible: s.accessible})
			return s, nil
		case "ctrl+r":
			s.session.Reset()
			s.input = &stepInput{}
			s.clearStatus()
			return s, s.openForm()
		case "esc":
			if s.session.Step() == app.StepSelectBundle {
				return s, tea.Quit
			}
			s.session.Back()
			s.clearStatus()
			return s, s.openForm()
		}

		if s.session.Step() == app.StepRemix {
			switch key.String() {
			case "enter", "r":
				return s, s.startRemix()
			case "q":
				if !s.remixing {
					return s, tea.Quit
				}
			}
			return s, nil
		}
	}

	if s.form == nil {
		return s, nil
	}
	model, cmd := s.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		return s, s.submit()
	}
	return s, cmd
}

func (s *Stepper) clearStatus() {
	s.err = nil
	s.notice = ""
	s.output = ""
}

// submit applies the completed form to the session and advances when the
// step is satisfied. On error the step's form is shown again.
func (s *Stepper) submit() tea.Cmd {
	s.err = nil
	s.notice = ""

	switch s.session.Step() {
	case app.StepSelectBundle:
		s.err = s.loadBundle(strings.TrimSpace(s.input.bundlePath))
	case app.StepSelectSources:
		s.err = s.addSources(SplitPaths(s.input.sourcePaths))
	case app.StepSelectStyle:
		s.err = s.session.SelectStyle(s.input.styleSheet)
	}

	if s.err == nil && s.session.IsStepComplete(s.session.Step()) {
		s.err = s.session.Next()
	}
	return s.openForm()
}

func (s *Stepper) loadBundle(path string) error {
	file, err := s.readFile(utils.ExpandPath(path))
	if err != nil {
		return err
	}
	return s.session.LoadBundle(file)
}

func (s *Stepper) addSources(paths []string) error {
	files := make([]*upload.File, 0, len(paths))
	var odd []string
	for _, p := range paths {
		f, err := s.readFile(p)
		if err != nil {
			return err
		}
		if app.DetectInput(f.Data) != app.InputPDF {
			odd = append(odd, f.Name)
		}
		files = append(files, f)
	}
	if err := s.session.AddFiles(files...); err != nil {
		return err
	}

	if len(odd) > 0 {
		s.notice = fmt.Sprintf("%s does not look like a PDF", strings.Join(odd, ", "))
	} else if missing := s.session.Uploads().Missing(); len(missing) > 0 {
		s.notice = fmt.Sprintf("Still missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// startRemix submits in the background; the outcome arrives as remixDoneMsg
func (s *Stepper) startRemix() tea.Cmd {
	if s.remixing {
		return nil
	}
	s.remixing = true
	s.clearStatus()

	session, ctx := s.session, s.ctx
	return func() tea.Msg {
		result, err := session.Remix(ctx)
		return remixDoneMsg{result: result, err: err}
	}
}

func (s *Stepper) finishRemix(done remixDoneMsg) {
	s.remixing = false
	if done.err != nil {
		s.err = done.err
		return
	}
	// a reset or edit while in flight leaves nothing to save
	if s.session.Result() != done.result {
		return
	}
	if s.saveResult == nil {
		s.output = done.result.FileName
		return
	}
	path, err := s.saveResult(done.result, s.cfg)
	if err != nil {
		s.err = err
		return
	}
	s.output = path
}

func (s *Stepper) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("pdfremix"))
	b.WriteString("   ")
	b.WriteString(s.renderTrail())
	b.WriteString("\n\n")

	if s.editor != nil {
		b.WriteString(s.editor.View())
		return b.String()
	}

	switch step := s.session.Step(); step {
	case app.StepSelectSources:
		b.WriteString(s.renderChecklist())
		b.WriteString("\n")
	case app.StepRemix:
		b.WriteString(s.renderSummary())
		b.WriteString("\n")
	}

	if s.form != nil {
		b.WriteString(s.form.View())
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(DescriptionStyle.Render(s.notice))
	}
	if s.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", s.err)))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(s.help()))
	return b.String()
}

func (s *Stepper) renderTrail() string {
	current := s.session.Step()
	parts := make([]string, len(steps))
	for i, step := range steps {
		switch {
		case step == current:
			parts[i] = StepActiveStyle.Render(step.String())
		case step < current:
			parts[i] = StepDoneStyle.Render("✓ " + step.String())
		default:
			parts[i] = StepPendingStyle.Render(step.String())
		}
	}
	return strings.Join(parts, StepPendingStyle.Render(" › "))
}

func (s *Stepper) renderChecklist() string {
	uploads := s.session.Uploads()
	if uploads == nil {
		return ""
	}
	var b strings.Builder
	for _, name := range uploads.FileNames() {
		present, _ := uploads.IsFilePresent(name)
		if present {
			b.WriteString(PresentStyle.Render("  ✓ " + name))
		} else {
			b.WriteString(MissingStyle.Render("  · " + name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Stepper) renderSummary() string {
	var lines []string
	if b := s.session.Bundle(); b != nil {
		lines = append(lines,
			fmt.Sprintf("Bundle  %s", b.File.Name),
			fmt.Sprintf("Sources %d file(s)", len(b.Manifest.Sources)))
		if style, err := b.Manifest.Style(s.session.StyleSheet()); err == nil {
			lines = append(lines, fmt.Sprintf("Style   %s (%s)", style.Name, style.StyleSheet))
		}
	}

	switch {
	case s.remixing:
		lines = append(lines, "", "Remixing, waiting for the patch service...")
	case s.output != "":
		lines = append(lines, "", SuccessStyle.Render("Saved "+s.output))
	}
	return SummaryStyle.Render(strings.Join(lines, "\n"))
}

func (s *Stepper) help() string {
	switch {
	case s.session.Step() == app.StepRemix && s.output != "":
		return "r remix again • esc back • ctrl+r start over • q quit"
	case s.session.Step() == app.StepRemix:
		return "enter remix • esc back • ctrl+r start over • ctrl+e settings • ctrl+c quit"
	case s.session.Step() == app.StepSelectBundle:
		return "enter continue • ctrl+e settings • esc quit"
	}
	return "enter continue • esc back • ctrl+r start over • ctrl+e settings • ctrl+c quit"
}
