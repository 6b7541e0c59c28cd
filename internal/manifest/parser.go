package manifest

import (
	"encoding/json"
	"fmt"
)

// Parse validates an untyped decoded document into a Manifest.
//
// Fields of each entry are checked in declared order and the first failure
// is the one reported. Any failure aborts the whole parse.
func Parse(raw any) (*Manifest, error) {
	doc, ok := asObject(raw)
	if !ok {
		return nil, ErrNotObject
	}

	rawSources, ok := doc["sources"].([]any)
	if !ok {
		return nil, ErrMissingSources
	}
	rawStyles, ok := doc["styles"].([]any)
	if !ok {
		return nil, ErrMissingStyles
	}

	m := &Manifest{
		Sources: make([]Source, 0, len(rawSources)),
		Styles:  make([]Style, 0, len(rawStyles)),
	}

	for _, entry := range rawSources {
		src, err := parseSource(entry)
		if err != nil {
			return nil, err
		}
		m.Sources = append(m.Sources, src)
	}

	for _, entry := range rawStyles {
		style, err := parseStyle(entry)
		if err != nil {
			return nil, err
		}
		m.Styles = append(m.Styles, style)
	}

	return m, nil
}

func parseSource(raw any) (Source, error) {
	var src Source
	obj, _ := asObject(raw)

	fileName, err := stringField(obj, "file_name")
	if err != nil {
		return src, &FieldError{Context: describe(raw), Field: "file_name", Err: err}
	}
	src.FileName = fileName

	if src.URL, err = stringField(obj, "url"); err != nil {
		return src, &FieldError{Context: fileName, Field: "url", Err: err}
	}
	if src.MD5Sum, err = stringField(obj, "md5sum"); err != nil {
		return src, &FieldError{Context: fileName, Field: "md5sum", Err: err}
	}
	return src, nil
}

func parseStyle(raw any) (Style, error) {
	var style Style
	obj, _ := asObject(raw)

	name, err := stringField(obj, "name")
	if err != nil {
		return style, &FieldError{Context: describe(raw), Field: "name", Err: err}
	}
	style.Name = name

	if style.Description, err = stringField(obj, "description"); err != nil {
		return style, &FieldError{Context: name, Field: "description", Err: err}
	}
	if style.StyleSheet, err = stringField(obj, "style_sheet"); err != nil {
		return style, &FieldError{Context: name, Field: "style_sheet", Err: err}
	}
	return style, nil
}

// stringField returns obj[key] when it holds a string. A nil obj behaves
// like an empty mapping.
func stringField(obj map[string]any, key string) (string, error) {
	value := obj[key]
	s, ok := value.(string)
	if !ok {
		return "", &NotStringError{Value: value}
	}
	return s, nil
}

// asObject accepts both mapping shapes a YAML decoder can produce.
func asObject(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		obj := make(map[string]any, len(v))
		for k, val := range v {
			obj[fmt.Sprint(k)] = val
		}
		return obj, true
	default:
		return nil, false
	}
}

// describe serializes a raw entry for error context
func describe(raw any) string {
	if obj, ok := asObject(raw); ok {
		raw = obj
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw)
	}
	return string(data)
}
