package dependency

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/validation"
)

// Update instructs a dependent field to refetch its options from URL. When
// Clear is set the parent has no value and the dependent should drop its
// options instead.
type Update struct {
	DependentField string `json:"dependentField"`
	ParentField    string `json:"parentField"`
	URL            string `json:"url,omitempty"`
	Clear          bool   `json:"clear,omitempty"`
}

// Resolver answers dependency questions for one definition.
type Resolver struct {
	deps   []model.Dependency
	fields map[string]struct{}
}

// NewResolver indexes the fields and dependencies of def.
func NewResolver(def model.FormDefinition) *Resolver {
	r := &Resolver{
		deps:   append([]model.Dependency(nil), def.Dependencies...),
		fields: make(map[string]struct{}),
	}
	for _, step := range def.Steps {
		for _, field := range step.Fields {
			r.fields[field.Name] = struct{}{}
		}
	}
	return r
}

// Resolve returns the refetch instructions caused by fieldName taking value.
// Unknown field names are configuration errors.
func (r *Resolver) Resolve(fieldName string, value any) ([]Update, error) {
	if _, ok := r.fields[fieldName]; !ok {
		return nil, &parser.UnknownFieldReferenceError{FieldName: fieldName}
	}
	for _, dep := range r.deps {
		if dep.ParentField != fieldName {
			continue
		}
		if _, ok := r.fields[dep.DependentField]; !ok {
			return nil, &parser.UnknownFieldReferenceError{FieldName: dep.DependentField}
		}
	}
	return Resolve(r.deps, fieldName, value)
}

// Dependents lists the fields whose options follow fieldName.
func (r *Resolver) Dependents(fieldName string) []string {
	var out []string
	for _, dep := range r.deps {
		if dep.ParentField == fieldName && !contains(out, dep.DependentField) {
			out = append(out, dep.DependentField)
		}
	}
	return out
}

// Parents lists the fields fieldName depends on.
func (r *Resolver) Parents(fieldName string) []string {
	var out []string
	for _, dep := range r.deps {
		if dep.DependentField == fieldName && !contains(out, dep.ParentField) {
			out = append(out, dep.ParentField)
		}
	}
	return out
}

// Resolve substitutes value into the template of every dependency whose
// parent is fieldName. Each dependent gets at most one update, from its
// first declaration; dependencies without a template produce none.
func Resolve(deps []model.Dependency, fieldName string, value any) ([]Update, error) {
	var updates []Update
	seen := make(map[string]struct{})
	empty := validation.IsEmpty(value)

	for _, dep := range deps {
		if dep.ParentField != fieldName {
			continue
		}
		if _, dup := seen[dep.DependentField]; dup {
			continue
		}
		seen[dep.DependentField] = struct{}{}
		if dep.FetchOptionsURLTemplate == "" {
			continue
		}

		update := Update{DependentField: dep.DependentField, ParentField: dep.ParentField}
		if empty {
			update.Clear = true
			updates = append(updates, update)
			continue
		}
		resolved, err := Expand(dep.FetchOptionsURLTemplate, value)
		if err != nil {
			return nil, fmt.Errorf("dependency: %s -> %s: %w", dep.ParentField, dep.DependentField, err)
		}
		update.URL = resolved
		updates = append(updates, update)
	}
	return updates, nil
}

// Expand replaces the first {placeholder} of template with value. The value
// is query-escaped after a '?' and path-escaped before it.
func Expand(template string, value any) (string, error) {
	open := strings.IndexByte(template, '{')
	if open < 0 {
		return "", fmt.Errorf("template %q has no placeholder", template)
	}
	end := strings.IndexByte(template[open:], '}')
	if end < 0 {
		return "", fmt.Errorf("template %q has an unterminated placeholder", template)
	}
	end += open

	text := Stringify(value)
	if q := strings.IndexByte(template, '?'); q >= 0 && q < open {
		text = url.QueryEscape(text)
	} else {
		text = url.PathEscape(text)
	}
	return template[:open] + text + template[end+1:], nil
}

// Stringify renders a field value the way it is substituted into URLs.
// Lists are comma separated.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(v, ",")
	case []int:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, strconv.Itoa(item))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(value)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
