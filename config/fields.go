package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/cardpress/dsl"
	"github.com/ByLCY/cardpress/layout"
)

// FieldEntry is one field as written in a YAML or JSON field file. The keys
// follow the browser editor's export format.
type FieldEntry struct {
	Column            string       `yaml:"column" json:"column"`
	Rect              *layout.Rect `yaml:"rect" json:"rect"`
	FontFamily        string       `yaml:"fontFamily,omitempty" json:"fontFamily,omitempty"`
	FontSize          float64      `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	Color             string       `yaml:"color,omitempty" json:"color,omitempty"`
	Alignment         string       `yaml:"alignment,omitempty" json:"alignment,omitempty"`
	VerticalAlignment string       `yaml:"verticalAlignment,omitempty" json:"verticalAlignment,omitempty"`
	LineHeight        float64      `yaml:"lineHeight,omitempty" json:"lineHeight,omitempty"`
	Bold              Flag         `yaml:"bold,omitempty" json:"bold,omitempty"`
	Text              string       `yaml:"text,omitempty" json:"text,omitempty"`
}

// FieldFile is the mapping form of a field file. A bare list of entries is
// accepted as well.
type FieldFile struct {
	Template string       `yaml:"template,omitempty" json:"template,omitempty"`
	Fonts    []FontConfig `yaml:"fonts,omitempty" json:"fonts,omitempty"`
	Fields   []FieldEntry `yaml:"fields" json:"fields"`
}

// LoadCard reads a field file. Files ending in .card or .cards use the card
// DSL; anything else is parsed as YAML, which also covers JSON.
func LoadCard(path string) (*layout.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read field file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".card", ".cards":
		doc, err := dsl.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse card DSL: %w", err)
		}
		return layout.BuildCard(doc)
	default:
		return ParseFields(bytes.NewReader(data))
	}
}

// ParseFields decodes a YAML/JSON field file into validated fields.
func ParseFields(r io.Reader) (*layout.Card, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return &layout.Card{}, nil
		}
		return nil, fmt.Errorf("failed to parse field file: %w", err)
	}

	var file FieldFile
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&file.Fields); err != nil {
			return nil, fmt.Errorf("failed to parse field file: %w", err)
		}
	case yaml.MappingNode:
		if err := doc.Decode(&file); err != nil {
			return nil, fmt.Errorf("failed to parse field file: %w", err)
		}
	default:
		return nil, NewConfigError("", "field file must be a list or a mapping")
	}
	return file.Card()
}

// Card validates every entry and converts the file into a layout.Card.
func (f FieldFile) Card() (*layout.Card, error) {
	card := &layout.Card{Template: f.Template}
	for i, font := range f.Fonts {
		if font.Family == "" || font.Src == "" {
			return nil, &ConfigError{Field: fmt.Sprintf("fonts[%d]", i), Message: "family and src are required", Err: ErrMissingRequiredField}
		}
		weight := layout.WeightNormal
		if font.Bold.Bool() {
			weight = layout.WeightBold
		}
		card.Fonts = append(card.Fonts, layout.FontSource{Family: font.Family, Weight: weight, Src: font.Src})
	}

	seen := map[string]bool{}
	for i, e := range f.Fields {
		column := strings.TrimSpace(e.Column)
		if column == "" {
			return nil, &ConfigError{Field: fmt.Sprintf("fields[%d].column", i), Message: "required field is missing", Err: ErrMissingRequiredField}
		}
		if seen[column] {
			return nil, &ConfigError{Field: fmt.Sprintf("fields[%d].column", i), Message: fmt.Sprintf("duplicate column %q", column), Err: ErrInvalidValue}
		}
		seen[column] = true

		field, err := e.Field()
		if err != nil {
			return nil, &ConfigError{Field: fmt.Sprintf("fields[%d]", i), Message: err.Error(), Err: err}
		}
		card.Fields = append(card.Fields, field)
	}
	return card, nil
}

// Field converts one entry. Zero-area rectangles are treated as unset.
func (e FieldEntry) Field() (layout.Field, error) {
	style, err := layout.NewStyle(layout.StyleSpec{
		FontFamily:        e.FontFamily,
		FontSize:          e.FontSize,
		Color:             e.Color,
		Alignment:         e.Alignment,
		VerticalAlignment: e.VerticalAlignment,
		LineHeight:        e.LineHeight,
		Bold:              string(e.Bold),
	})
	if err != nil {
		return layout.Field{}, err
	}
	field := layout.Field{Column: strings.TrimSpace(e.Column), Style: style, Template: e.Text}
	if e.Rect != nil && !e.Rect.Empty() {
		rect := *e.Rect
		field.Rect = &rect
	}
	return field, nil
}

// EntryFromField is the inverse of FieldEntry.Field.
func EntryFromField(f layout.Field) FieldEntry {
	spec := f.Style.Spec()
	return FieldEntry{
		Column:            f.Column,
		Rect:              f.Rect,
		FontFamily:        spec.FontFamily,
		FontSize:          spec.FontSize,
		Color:             spec.Color,
		Alignment:         spec.Alignment,
		VerticalAlignment: spec.VerticalAlignment,
		LineHeight:        spec.LineHeight,
		Bold:              Flag(spec.Bold),
		Text:              f.Template,
	}
}

// WriteFields writes fields as a YAML field file.
func WriteFields(w io.Writer, template string, fields []layout.Field) error {
	file := FieldFile{Template: template}
	for _, f := range fields {
		file.Fields = append(file.Fields, EntryFromField(f))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to write field file: %w", err)
	}
	return enc.Close()
}
