package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

// Parse decodes a form definition document. Decoding stops at the first
// missing required key; once the whole document is decoded every structural
// violation is reported together as a *DefinitionError.
func Parse(raw []byte, opts ...Option) (model.FormDefinition, error) {
	cfg := newConfig(opts)

	doc, err := decodeJSON(raw)
	if err != nil {
		return model.FormDefinition{}, err
	}

	w := walker{cfg: cfg}
	def, links, err := w.definition(doc)
	if err != nil {
		return model.FormDefinition{}, err
	}

	def.Dependencies, err = check(&def, links)
	if err != nil {
		return model.FormDefinition{}, err
	}

	warnEmptyChoices(cfg, def)
	return def, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &MalformedJSONError{Format: "json", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedJSONError{Format: "json", Err: errors.New("unexpected data after top-level value")}
	}
	return doc, nil
}

// link is a dependency as written in the document, before references are
// resolved against the decoded steps.
type link struct {
	path string

	byID             bool
	fieldID          int
	dependsOnFieldID int
	stepID           int

	fromField bool
	dep       model.Dependency
}

type walker struct {
	cfg config
}

func (w walker) definition(doc any) (model.FormDefinition, []link, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return model.FormDefinition{}, nil, &ConfigurationError{Detail: "document must be a JSON object"}
	}

	var def model.FormDefinition
	var err error
	if def.FormName, _, err = optionalString(root, "formName", ""); err != nil {
		return def, nil, err
	}

	if rawConfig, ok := root["formConfig"]; ok && rawConfig != nil {
		formConfig, ok := rawConfig.(map[string]any)
		if !ok {
			return def, nil, wrongKind("formConfig", "an object")
		}
		if rawDefaults, ok := formConfig["defaultValues"]; ok && rawDefaults != nil {
			defaults, ok := rawDefaults.(map[string]any)
			if !ok {
				return def, nil, wrongKind("formConfig.defaultValues", "an object")
			}
			if len(defaults) > 0 {
				def.DefaultValues = normalizeValue(defaults).(map[string]any)
			}
		}
	}

	steps, err := requireArray(root, "steps", "")
	if err != nil {
		return def, nil, err
	}

	var links []link
	for i, rawStep := range steps {
		path := fmt.Sprintf("steps[%d]", i)
		step, stepLinks, err := w.step(rawStep, path)
		if err != nil {
			return def, nil, err
		}
		def.Steps = append(def.Steps, step)
		links = append(links, stepLinks...)
	}

	deps, err := optionalArray(root, "dependencies", "")
	if err != nil {
		return def, nil, err
	}
	for i, rawDep := range deps {
		l, err := dependencyLink(rawDep, fmt.Sprintf("dependencies[%d]", i))
		if err != nil {
			return def, nil, err
		}
		links = append(links, l)
	}

	return def, links, nil
}

func (w walker) step(raw any, path string) (model.Step, []link, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Step{}, nil, wrongKind(path, "an object")
	}

	var step model.Step
	var err error
	if step.ID, _, err = optionalInt(obj, "id", path); err != nil {
		return step, nil, err
	}
	if step.Name, err = requireString(obj, "name", path); err != nil {
		return step, nil, err
	}
	if step.Title, err = requireString(obj, "title", path); err != nil {
		return step, nil, err
	}
	step.Title = w.cfg.sanitize(step.Title)

	fields, err := requireArray(obj, "fields", path)
	if err != nil {
		return step, nil, err
	}

	var links []link
	for i, rawField := range fields {
		fieldPath := fmt.Sprintf("%s.fields[%d]", path, i)
		field, fieldLinks, err := w.field(rawField, fieldPath)
		if err != nil {
			return step, nil, err
		}
		step.Fields = append(step.Fields, field)
		links = append(links, fieldLinks...)
	}
	return step, links, nil
}

func (w walker) field(raw any, path string) (model.Field, []link, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Field{}, nil, wrongKind(path, "an object")
	}

	var field model.Field
	var err error
	if field.ID, _, err = optionalInt(obj, "id", path); err != nil {
		return field, nil, err
	}
	kind, err := requireString(obj, "type", path)
	if err != nil {
		return field, nil, err
	}
	field.Type = model.FieldType(kind)
	if field.Label, err = requireString(obj, "label", path); err != nil {
		return field, nil, err
	}
	field.Label = w.cfg.sanitize(field.Label)
	if field.Name, err = requireString(obj, "name", path); err != nil {
		return field, nil, err
	}

	if field.Validation, err = validationRule(obj, path); err != nil {
		return field, nil, err
	}

	options, err := optionalArray(obj, "options", path)
	if err != nil {
		return field, nil, err
	}
	for i, rawOption := range options {
		option, err := w.option(rawOption, fmt.Sprintf("%s.options[%d]", path, i))
		if err != nil {
			return field, nil, err
		}
		field.Options = append(field.Options, option)
	}

	if field.FetchOptionsURL, _, err = optionalString(obj, "fetchOptionsUrl", path); err != nil {
		return field, nil, err
	}
	if field.MultiSelect, _, err = optionalBool(obj, "multiSelect", path); err != nil {
		return field, nil, err
	}
	if value, ok := obj["value"]; ok {
		field.DefaultValue = normalizeValue(value)
	}

	parents, err := optionalArray(obj, "dependencies", path)
	if err != nil {
		return field, nil, err
	}
	var links []link
	for i, rawParent := range parents {
		parentPath := fmt.Sprintf("%s.dependencies[%d]", path, i)
		parent, ok := rawParent.(string)
		if !ok {
			return field, nil, wrongKind(parentPath, "a field name")
		}
		l := link{path: parentPath, fromField: true, dep: model.Dependency{
			DependentField: field.Name,
			ParentField:    parent,
		}}
		if field.HasPlaceholderURL() {
			l.dep.FetchOptionsURLTemplate = field.FetchOptionsURL
		}
		links = append(links, l)
	}

	return field, links, nil
}

func (w walker) option(raw any, path string) (model.Option, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Option{}, wrongKind(path, "an object")
	}
	id, present, err := optionalInt(obj, "id", path)
	if err != nil {
		return model.Option{}, err
	}
	if !present {
		return model.Option{}, &MissingFieldError{Path: join(path, "id")}
	}
	value, err := requireString(obj, "value", path)
	if err != nil {
		return model.Option{}, err
	}
	return model.Option{ID: id, Value: w.cfg.sanitize(value)}, nil
}

func validationRule(obj map[string]any, path string) (model.ValidationRule, error) {
	var rule model.ValidationRule
	raw, ok := obj["validation"]
	if !ok || raw == nil {
		return rule, nil
	}
	path = join(path, "validation")
	v, ok := raw.(map[string]any)
	if !ok {
		return rule, wrongKind(path, "an object")
	}

	var err error
	if rule.Required, _, err = optionalBool(v, "required", path); err != nil {
		return rule, err
	}
	if rule.YearOnly, _, err = optionalBool(v, "yearOnly", path); err != nil {
		return rule, err
	}
	if rule.Pattern, _, err = optionalString(v, "pattern", path); err != nil {
		return rule, err
	}
	if n, ok, err := optionalInt(v, "minLength", path); err != nil {
		return rule, err
	} else if ok {
		rule.MinLength = &n
	}
	if n, ok, err := optionalInt(v, "maxLength", path); err != nil {
		return rule, err
	} else if ok {
		rule.MaxLength = &n
	}
	if f, ok, err := optionalFloat(v, "min", path); err != nil {
		return rule, err
	} else if ok {
		rule.Min = &f
	}
	if f, ok, err := optionalFloat(v, "max", path); err != nil {
		return rule, err
	} else if ok {
		rule.Max = &f
	}
	return rule, nil
}

func dependencyLink(raw any, path string) (link, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return link{}, wrongKind(path, "an object")
	}

	if _, byName := obj["dependentField"]; byName {
		var dep model.Dependency
		var err error
		if dep.DependentField, err = requireString(obj, "dependentField", path); err != nil {
			return link{}, err
		}
		if dep.ParentField, err = requireString(obj, "parentField", path); err != nil {
			return link{}, err
		}
		if dep.FetchOptionsURLTemplate, _, err = optionalString(obj, "fetchOptionsUrlTemplate", path); err != nil {
			return link{}, err
		}
		return link{path: path, dep: dep}, nil
	}

	if _, byID := obj["fieldId"]; !byID {
		return link{}, &MissingFieldError{Path: join(path, "dependentField")}
	}
	l := link{path: path, byID: true}
	var present bool
	var err error
	if l.fieldID, _, err = optionalInt(obj, "fieldId", path); err != nil {
		return link{}, err
	}
	if l.dependsOnFieldID, present, err = optionalInt(obj, "dependsOnFieldId", path); err != nil {
		return link{}, err
	} else if !present {
		return link{}, &MissingFieldError{Path: join(path, "dependsOnFieldId")}
	}
	if l.stepID, _, err = optionalInt(obj, "stepId", path); err != nil {
		return link{}, err
	}
	return l, nil
}

func warnEmptyChoices(cfg config, def model.FormDefinition) {
	for _, step := range def.Steps {
		for _, field := range step.Fields {
			if field.Type.IsChoice() && len(field.Options) == 0 && field.FetchOptionsURL == "" {
				cfg.logger.Warn("choice field has no option source",
					zap.String("step", step.Name), zap.String("field", field.Name))
			}
		}
	}
}

// normalizeValue converts decoded numbers into int64 when they are integral
// and float64 otherwise, recursing into maps and lists. "2" and "2.0" both
// become int64(2).
func normalizeValue(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return integralFloat(f)
	case float64:
		return integralFloat(v)
	case int:
		return int64(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func integralFloat(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}
