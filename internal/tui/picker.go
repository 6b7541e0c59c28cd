package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/quantmind-br/pdfremix/internal/manifest"
)

// ErrNoStyles indicates a bundle with nothing to choose from
var ErrNoStyles = errors.New("bundle defines no styles")

// StyleOptions builds one select option per style, keyed by style sheet
func StyleOptions(styles []manifest.Style) []huh.Option[string] {
	options := make([]huh.Option[string], len(styles))
	for i, s := range styles {
		label := s.Name
		if s.Description != "" {
			label = fmt.Sprintf("%s: %s", s.Name, s.Description)
		}
		options[i] = huh.NewOption(label, s.StyleSheet)
	}
	return options
}

// SelectStyleForm asks the user to pick one of the bundle's styles
func SelectStyleForm(styles []manifest.Style, styleSheet *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("style").
				Title("Style").
				Description("How the remixed PDF should look").
				Options(StyleOptions(styles)...).
				Value(styleSheet),
		),
	).WithTheme(GetTheme())
}

// PickStyle runs SelectStyleForm and returns the chosen style sheet
func PickStyle(styles []manifest.Style) (string, error) {
	if len(styles) == 0 {
		return "", ErrNoStyles
	}

	styleSheet := styles[0].StyleSheet
	if err := SelectStyleForm(styles, &styleSheet).Run(); err != nil {
		return "", err
	}
	return styleSheet, nil
}
