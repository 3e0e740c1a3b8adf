package model

import "strings"

// FieldType enumerates the input kinds a form definition may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextArea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTel      FieldType = "tel"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeFile     FieldType = "file"
	FieldTypeImage    FieldType = "image"
	FieldTypeAudio    FieldType = "audio"
	FieldTypeVideo    FieldType = "video"
)

// FieldTypes lists every supported kind in declaration order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextArea,
	FieldTypeNumber,
	FieldTypeEmail,
	FieldTypeTel,
	FieldTypeDate,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeCheckbox,
	FieldTypeFile,
	FieldTypeImage,
	FieldTypeAudio,
	FieldTypeVideo,
}

// Valid reports whether t is one of the supported kinds.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsChoice reports whether the field picks from an option list.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldTypeSelect, FieldTypeRadio, FieldTypeCheckbox:
		return true
	}
	return false
}

// IsMedia reports whether the field value comes from a capture collaborator.
func (t FieldType) IsMedia() bool {
	switch t {
	case FieldTypeFile, FieldTypeImage, FieldTypeAudio, FieldTypeVideo:
		return true
	}
	return false
}

// IsTextual reports whether the field holds free text.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldTypeText, FieldTypeTextArea, FieldTypeEmail, FieldTypeTel:
		return true
	}
	return false
}

// ValidationRule holds the declarative constraints of one field. Absent
// bounds are nil so a zero bound stays distinguishable from "no bound".
type ValidationRule struct {
	Required  bool     `json:"required,omitempty"`
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	YearOnly  bool     `json:"yearOnly,omitempty"`
}

// IsZero reports whether the rule carries no constraint at all.
func (r ValidationRule) IsZero() bool {
	return !r.Required && r.MinLength == nil && r.MaxLength == nil &&
		r.Min == nil && r.Max == nil && r.Pattern == "" && !r.YearOnly
}

// Option is one entry of a choice field.
type Option struct {
	ID    int    `json:"id"`
	Value string `json:"value"`
}

// Dependency declares that the options of DependentField are fetched from a
// URL derived from the current value of ParentField.
type Dependency struct {
	DependentField          string `json:"dependentField"`
	ParentField             string `json:"parentField"`
	FetchOptionsURLTemplate string `json:"fetchOptionsUrlTemplate,omitempty"`
}

// Field is a single input inside a step.
type Field struct {
	ID              int            `json:"id,omitempty"`
	Type            FieldType      `json:"type"`
	Label           string         `json:"label"`
	Name            string         `json:"name"`
	Validation      ValidationRule `json:"validation"`
	Options         []Option       `json:"options,omitempty"`
	FetchOptionsURL string         `json:"fetchOptionsUrl,omitempty"`
	MultiSelect     bool           `json:"multiSelect,omitempty"`
	DefaultValue    any            `json:"value,omitempty"`
}

// HasPlaceholderURL reports whether FetchOptionsURL is a template that needs
// a parent value before it can be fetched.
func (f Field) HasPlaceholderURL() bool {
	return HasPlaceholder(f.FetchOptionsURL)
}

// Option returns the option with the given id.
func (f Field) Option(id int) (Option, bool) {
	for _, opt := range f.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// Step is an ordered group of fields shown together.
type Step struct {
	ID     int     `json:"id,omitempty"`
	Name   string  `json:"name"`
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field returns the field with the given name.
func (s Step) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// FieldNames returns the names of the step's fields in order.
func (s Step) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		names = append(names, field.Name)
	}
	return names
}

// FormDefinition is the parsed, immutable description of a multi-step form.
type FormDefinition struct {
	FormName      string         `json:"formName"`
	DefaultValues map[string]any `json:"defaultValues,omitempty"`
	Steps         []Step         `json:"steps"`
	Dependencies  []Dependency   `json:"dependencies,omitempty"`
}

// FieldRef locates a field inside a definition.
type FieldRef struct {
	Step  string
	Index int
	Field Field
}

// Step returns the step with the given name and its position.
func (d FormDefinition) Step(name string) (Step, int, bool) {
	for i, step := range d.Steps {
		if step.Name == name {
			return step, i, true
		}
	}
	return Step{}, -1, false
}

// Lookup returns every step/field pair carrying the given field name, in
// declaration order.
func (d FormDefinition) Lookup(fieldName string) []FieldRef {
	var refs []FieldRef
	for _, step := range d.Steps {
		for i, field := range step.Fields {
			if field.Name == fieldName {
				refs = append(refs, FieldRef{Step: step.Name, Index: i, Field: field})
			}
		}
	}
	return refs
}

// Default returns the initial value of a field: its own declared value
// first, then the form-wide default registered under the same name.
func (d FormDefinition) Default(field Field) (any, bool) {
	if field.DefaultValue != nil {
		return field.DefaultValue, true
	}
	if value, ok := d.DefaultValues[field.Name]; ok && value != nil {
		return value, true
	}
	return nil, false
}

// HasPlaceholder reports whether s contains a {...} substitution token.
func HasPlaceholder(s string) bool {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return false
	}
	return strings.IndexByte(s[open+1:], '}') >= 0
}
