package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quantmind-br/pdfremix/internal/bundle"
	"github.com/quantmind-br/pdfremix/internal/remix"
	"github.com/quantmind-br/pdfremix/internal/upload"
	"github.com/quantmind-br/pdfremix/internal/utils"
)

// Step is a stage of the remix workflow
type Step int

const (
	StepSelectBundle Step = iota
	StepSelectSources
	StepSelectStyle
	StepRemix
)

// String returns the step name
func (s Step) String() string {
	switch s {
	case StepSelectBundle:
		return "select bundle"
	case StepSelectSources:
		return "select source PDFs"
	case StepSelectStyle:
		return "select style"
	case StepRemix:
		return "remix"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Sentinel errors for the session
var (
	ErrRemixInFlight  = errors.New("a remix is already in progress")
	ErrNoBundle       = errors.New("no bundle loaded")
	ErrStepIncomplete = errors.New("current step is not complete")
	ErrLastStep       = errors.New("already at the last step")
	ErrNoStyle        = errors.New("no style selected")
)

// Submitter sends a remix request to the patch service
type Submitter interface {
	Submit(ctx context.Context, req remix.Request) (*remix.Result, error)
}

// Session drives one remix from bundle selection to download.
//
// The upload set is never mutated in place: every change builds a new set
// and swaps it in, so a set handed out earlier keeps its contents.
type Session struct {
	mu        sync.Mutex
	submitter Submitter
	bundles   *bundle.Reader
	logger    *utils.Logger

	step       Step
	bundle     *bundle.Bundle
	uploads    *upload.Set
	styleSheet string
	result     *remix.Result

	inFlight   bool
	generation uint64
}

// NewSession creates a session at the first step
func NewSession(submitter Submitter, logger *utils.Logger) *Session {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Session{
		submitter: submitter,
		bundles:   bundle.NewReader(logger),
		logger:    logger.WithComponent("session"),
	}
}

// Step returns the current step
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Bundle returns the loaded bundle, or nil
func (s *Session) Bundle() *bundle.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bundle
}

// Uploads returns the current upload set, or nil before a bundle is loaded
func (s *Session) Uploads() *upload.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

// StyleSheet returns the selected style sheet, or ""
func (s *Session) StyleSheet() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.styleSheet
}

// Result returns the last successful remix, or nil
func (s *Session) Result() *remix.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LoadBundle opens file as the session's bundle. A new bundle replaces the
// previous one together with its uploads, style and result. On error the
// session is left as it was.
func (s *Session) LoadBundle(file *upload.File) error {
	if file == nil {
		return upload.ErrNilFile
	}
	b, err := s.bundles.Open(file)
	if err != nil {
		s.logger.Debug().Err(err).Str("bundle", file.Name).Msg("Bundle rejected")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bundle = b
	s.uploads = upload.NewSet(b.Manifest.Sources)
	s.styleSheet = ""
	s.result = nil
	s.generation++

	s.logger.Info().
		Str("bundle", file.Name).
		Int("sources", len(b.Manifest.Sources)).
		Int("styles", len(b.Manifest.Styles)).
		Msg("Bundle loaded")
	return nil
}

// AddFiles binds files to the required sources. Either every file is
// accepted or the uploads are left unchanged and all failures are returned.
func (s *Session) AddFiles(files ...*upload.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploads == nil {
		return ErrNoBundle
	}

	next, err := s.uploads.WithFiles(files...)
	if err != nil {
		return err
	}
	s.uploads = next
	s.result = nil
	s.generation++

	s.logger.Debug().
		Int("added", len(files)).
		Int("missing", len(next.Missing())).
		Msg("Source files added")
	return nil
}

// SelectStyle selects one of the bundle's style sheets
func (s *Session) SelectStyle(styleSheet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return ErrNoBundle
	}
	style, err := s.bundle.Manifest.Style(styleSheet)
	if err != nil {
		return err
	}
	s.styleSheet = style.StyleSheet
	s.result = nil
	s.generation++

	s.logger.Debug().Str("style", style.Name).Str("style_sheet", style.StyleSheet).Msg("Style selected")
	return nil
}

// IsStepComplete reports whether step's requirement is met
func (s *Session) IsStepComplete(step Step) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isStepComplete(step)
}

func (s *Session) isStepComplete(step Step) bool {
	switch step {
	case StepSelectBundle:
		return s.bundle != nil
	case StepSelectSources:
		return s.uploads != nil && s.uploads.AreAllFilesPresent()
	case StepSelectStyle:
		return s.styleSheet != ""
	case StepRemix:
		return s.result != nil
	default:
		return false
	}
}

// Next advances to the following step once the current one is complete
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step == StepRemix {
		return ErrLastStep
	}
	if !s.isStepComplete(s.step) {
		return fmt.Errorf("%w: %s", ErrStepIncomplete, s.step)
	}
	s.step++
	return nil
}

// Back returns to the previous step. It does nothing at the first step.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step > StepSelectBundle {
		s.step--
	}
}

// Reset clears the session back to the first step. A remix still in
// flight completes but its result is discarded, as it is after any change
// to the bundle, uploads or style.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step = StepSelectBundle
	s.bundle = nil
	s.uploads = nil
	s.styleSheet = ""
	s.result = nil
	s.generation++
}

// Remix submits the bundle, the source files and the selected style sheet.
// Exactly one of the result and the error is non-nil. On failure the
// bundle, uploads and style are kept so Remix can be called again.
func (s *Session) Remix(ctx context.Context) (*remix.Result, error) {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRemixInFlight
	}
	req, err := s.request()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.inFlight = true
	generation := s.generation
	s.mu.Unlock()

	s.logger.Info().
		Str("bundle", req.Bundle.Name).
		Str("style_sheet", req.StyleSheet).
		Int("sources", len(req.Sources)).
		Msg("Submitting remix")

	result, err := s.submitter.Submit(ctx, req)
	if err == nil && result == nil {
		err = errors.New("remix returned no result")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		s.logger.Error().Err(err).Msg("Remix failed")
		return nil, err
	}
	if generation == s.generation {
		s.result = result
	}
	s.logger.Info().Int("bytes", len(result.Data)).Msg("Remix completed")
	return result, nil
}

func (s *Session) request() (remix.Request, error) {
	if s.bundle == nil {
		return remix.Request{}, ErrNoBundle
	}
	sources, err := s.uploads.Files()
	if err != nil {
		return remix.Request{}, err
	}
	if s.styleSheet == "" {
		return remix.Request{}, ErrNoStyle
	}
	return remix.Request{
		StyleSheet: s.styleSheet,
		Bundle:     s.bundle.File,
		Sources:    sources,
	}, nil
}
