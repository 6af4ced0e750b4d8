package operators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Facet is a backend-defined operator applicable to one datatype.
type Facet struct {
	ID                   int      `json:"id" yaml:"id"`
	DatatypeID           string   `json:"datatype_id" yaml:"datatype_id"`
	Operator             string   `json:"operator" yaml:"operator"`
	Label                Label    `json:"label" yaml:"label"`
	Arity                int      `json:"arity" yaml:"arity"`
	ParamFormats         []string `json:"param_formats" yaml:"param_formats"`
	SortOrder            int      `json:"sortorder" yaml:"sortorder"`
	IsORMTemplateNegated bool     `json:"is_orm_template_negated" yaml:"is_orm_template_negated"`
}

// FacetsByDatatype maps a datatype identifier to its facets in sortorder.
type FacetsByDatatype map[string][]Facet

// Datatypes returns the datatype keys in lexical order.
func (f FacetsByDatatype) Datatypes() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Translation is one language entry of a localised label.
type Translation struct {
	Language string
	Text     string
}

// Label is either a plain string or a language-keyed map. Translations
// keep wire order because "first value" is part of label extraction.
type Label struct {
	Text         string
	Translations []Translation
}

// PlainLabel creates a Label from a plain string.
func PlainLabel(text string) Label {
	return Label{Text: text}
}

// LocalizedLabel creates a Label from ordered translations.
func LocalizedLabel(translations ...Translation) Label {
	if translations == nil {
		translations = []Translation{}
	}
	return Label{Translations: translations}
}

// IsLocalized reports whether the label arrived as a language map.
func (l Label) IsLocalized() bool {
	return l.Translations != nil
}

// Extract returns the plain string, or the first translation of a
// language map. Returns "" when neither exists.
func (l Label) Extract() string {
	if !l.IsLocalized() {
		return l.Text
	}
	if len(l.Translations) == 0 {
		return ""
	}
	return l.Translations[0].Text
}

// For returns the translation for lang, then fallback, then the first
// translation. Plain labels ignore both languages.
func (l Label) For(lang, fallback string) string {
	if !l.IsLocalized() {
		return l.Text
	}
	for _, want := range []string{lang, fallback} {
		for _, tr := range l.Translations {
			if want != "" && tr.Language == want {
				return tr.Text
			}
		}
	}
	return l.Extract()
}

// MarshalJSON writes a string for plain labels and an object, in
// translation order, for localised ones.
func (l Label) MarshalJSON() ([]byte, error) {
	if !l.IsLocalized() {
		return json.Marshal(l.Text)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tr := range l.Translations {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(tr.Language)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(tr.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a string, null, or an object. Object entries whose
// values are not strings are skipped.
func (l *Label) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		*l = Label{}
		return nil
	case string:
		*l = PlainLabel(t)
		return nil
	case json.Delim:
		if t != '{' {
			return fmt.Errorf("label: expected string or object, got %q", t)
		}
	default:
		return fmt.Errorf("label: expected string or object, got %T", tok)
	}

	translations := []Translation{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("label: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("label %q: %w", key, err)
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			continue
		}
		translations = append(translations, Translation{Language: key, Text: text})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return fmt.Errorf("label: %w", err)
	}

	*l = Label{Translations: translations}
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for fixture files, keeping mapping
// order.
func (l *Label) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = Label{}
			return nil
		}
		*l = PlainLabel(node.Value)
		return nil
	case yaml.MappingNode:
		translations := []Translation{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if val.Kind != yaml.ScalarNode || val.Tag == "!!null" {
				continue
			}
			translations = append(translations, Translation{Language: key.Value, Text: val.Value})
		}
		*l = Label{Translations: translations}
		return nil
	default:
		return fmt.Errorf("label: line %d: expected string or mapping", node.Line)
	}
}
