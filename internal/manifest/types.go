package manifest

// Manifest is the validated content of a bundle's manifest.yml
type Manifest struct {
	Sources []Source `json:"sources" yaml:"sources"`
	Styles  []Style  `json:"styles" yaml:"styles"`
}

// Source describes one required input file. FileName is the key used to
// match user-supplied files.
type Source struct {
	URL      string `json:"url" yaml:"url"`
	FileName string `json:"fileName" yaml:"file_name"`
	MD5Sum   string `json:"md5sum" yaml:"md5sum"`
}

// Style is a user-selectable rendering option. StyleSheet is the value sent
// to the remote patch service.
type Style struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	StyleSheet  string `json:"styleSheet" yaml:"style_sheet"`
}

// SourceFileNames returns the required file names in manifest order
func (m *Manifest) SourceFileNames() []string {
	names := make([]string, len(m.Sources))
	for i, src := range m.Sources {
		names[i] = src.FileName
	}
	return names
}

// Style returns the style whose StyleSheet matches styleSheet
func (m *Manifest) Style(styleSheet string) (Style, error) {
	for _, style := range m.Styles {
		if style.StyleSheet == styleSheet {
			return style, nil
		}
	}
	return Style{}, &UnknownStyleError{StyleSheet: styleSheet}
}
