package parser

import (
	"fmt"
	"strings"
)

// MalformedJSONError reports a document that could not be decoded at all.
type MalformedJSONError struct {
	Format string
	Err    error
}

func (e *MalformedJSONError) Error() string {
	format := e.Format
	if format == "" {
		format = "json"
	}
	return fmt.Sprintf("parser: malformed %s document: %v", format, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// MissingFieldError reports the first required key absent from the document.
// Path uses the dotted/indexed form "steps[1].fields[0].label".
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("parser: missing required key %q", e.Path)
}

// ConfigurationError reports a key holding the wrong kind of value or a
// definition that violates a structural invariant.
type ConfigurationError struct {
	Path   string
	Detail string
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return "parser: " + e.Detail
	}
	return fmt.Sprintf("parser: %s: %s", e.Path, e.Detail)
}

// UnknownFieldReferenceError reports a dependency naming a field the
// definition does not declare. FieldID is set when the reference was made by
// numeric id instead of by name.
type UnknownFieldReferenceError struct {
	FieldName string
	FieldID   int
}

func (e *UnknownFieldReferenceError) Error() string {
	if e.FieldName == "" && e.FieldID != 0 {
		return fmt.Sprintf("parser: unknown field id %d", e.FieldID)
	}
	return fmt.Sprintf("parser: unknown field reference %q", e.FieldName)
}

// Issue codes reported by the structural checks.
const (
	CodeEmptySteps      = "empty_steps"
	CodeEmptyFields     = "empty_fields"
	CodeEmptyName       = "empty_name"
	CodeDuplicateStep   = "duplicate_step"
	CodeDuplicateField  = "duplicate_field"
	CodeInvalidType     = "invalid_type"
	CodeDuplicateOption = "duplicate_option"
	CodeInvalidPattern  = "invalid_pattern"
	CodeInvalidLength   = "invalid_length"
	CodeInvalidRange    = "invalid_range"
	CodeUnknownField    = "unknown_field"
	CodeAmbiguousField  = "ambiguous_field"
	CodeSelfDependency  = "self_dependency"
	CodeDependencyCycle = "dependency_cycle"
	CodeInvalidTemplate = "invalid_template"
)

// Issue is one structural violation found after decoding.
type Issue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// DefinitionError aggregates every structural violation of a definition.
type DefinitionError struct {
	Issues []Issue
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parser: definition has %d issue(s)", len(e.Issues))
	for _, issue := range e.Issues {
		b.WriteString("; ")
		if issue.Path != "" {
			b.WriteString(issue.Path)
			b.WriteString(": ")
		}
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Unwrap exposes the typed error behind each issue to errors.As.
func (e *DefinitionError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Err != nil {
			errs = append(errs, issue.Err)
		}
	}
	return errs
}

// Codes returns the issue codes in report order.
func (e *DefinitionError) Codes() []string {
	codes := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}
