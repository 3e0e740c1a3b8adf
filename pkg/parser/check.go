package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

type checker struct {
	issues []Issue
}

func (c *checker) add(path, code string, err error) {
	message := err.Error()
	message = strings.TrimPrefix(message, "parser: ")
	if path != "" {
		message = strings.TrimPrefix(message, path+": ")
	}
	c.issues = append(c.issues, Issue{Path: path, Code: code, Message: message, Err: err})
}

func (c *checker) config(path, code, format string, args ...any) {
	c.add(path, code, &ConfigurationError{Path: path, Detail: fmt.Sprintf(format, args...)})
}

// check walks the decoded definition, resolves dependency links and returns
// the final dependency list or a *DefinitionError listing every violation.
func check(def *model.FormDefinition, links []link) ([]model.Dependency, error) {
	c := &checker{}

	if len(def.Steps) == 0 {
		c.config("steps", CodeEmptySteps, "a form needs at least one step")
	}

	stepNames := make(map[string]int)
	for i, step := range def.Steps {
		path := fmt.Sprintf("steps[%d]", i)
		if strings.TrimSpace(step.Name) == "" {
			c.config(path+".name", CodeEmptyName, "step name must not be empty")
		} else if first, dup := stepNames[step.Name]; dup {
			c.config(path+".name", CodeDuplicateStep, "step name %q already used by steps[%d]", step.Name, first)
		} else {
			stepNames[step.Name] = i
		}
		c.checkStep(step, path)
	}

	deps, paths := c.resolveLinks(def, links)
	c.checkDependencies(def, deps, paths)

	if len(c.issues) > 0 {
		return nil, &DefinitionError{Issues: c.issues}
	}
	return deps, nil
}

func (c *checker) checkStep(step model.Step, path string) {
	if len(step.Fields) == 0 {
		c.config(path+".fields", CodeEmptyFields, "step %q has no fields", step.Name)
	}
	names := make(map[string]int)
	for i, field := range step.Fields {
		fieldPath := fmt.Sprintf("%s.fields[%d]", path, i)
		if strings.TrimSpace(field.Name) == "" {
			c.config(fieldPath+".name", CodeEmptyName, "field name must not be empty")
		} else if first, dup := names[field.Name]; dup {
			c.config(fieldPath+".name", CodeDuplicateField, "field name %q already used by fields[%d] of step %q", field.Name, first, step.Name)
		} else {
			names[field.Name] = i
		}
		c.checkField(field, fieldPath)
	}
}

func (c *checker) checkField(field model.Field, path string) {
	if !field.Type.Valid() {
		c.config(path+".type", CodeInvalidType, "unsupported field type %q", field.Type)
	}

	ids := make(map[int]struct{}, len(field.Options))
	for i, opt := range field.Options {
		if _, dup := ids[opt.ID]; dup {
			c.config(fmt.Sprintf("%s.options[%d].id", path, i), CodeDuplicateOption, "option id %d is not unique", opt.ID)
			continue
		}
		ids[opt.ID] = struct{}{}
	}

	rule := field.Validation
	rulePath := path + ".validation"
	if rule.Pattern != "" {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			c.config(rulePath+".pattern", CodeInvalidPattern, "pattern does not compile: %v", err)
		}
	}
	if rule.MinLength != nil && *rule.MinLength < 0 {
		c.config(rulePath+".minLength", CodeInvalidLength, "minLength must not be negative")
	}
	if rule.MaxLength != nil && *rule.MaxLength < 0 {
		c.config(rulePath+".maxLength", CodeInvalidLength, "maxLength must not be negative")
	}
	if rule.MinLength != nil && rule.MaxLength != nil && *rule.MinLength > *rule.MaxLength {
		c.config(rulePath, CodeInvalidLength, "minLength %d exceeds maxLength %d", *rule.MinLength, *rule.MaxLength)
	}
	if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
		c.config(rulePath, CodeInvalidRange, "min %v exceeds max %v", *rule.Min, *rule.Max)
	}
}

// resolveLinks turns the document's dependency declarations into name based
// dependencies. Id references are resolved here because they need the whole
// decoded tree. Repeated (dependent, parent) pairs keep the first declaration.
func (c *checker) resolveLinks(def *model.FormDefinition, links []link) ([]model.Dependency, []string) {
	var deps []model.Dependency
	var paths []string
	seen := make(map[[2]string]struct{})

	for _, l := range links {
		dep := l.dep
		if l.byID {
			dependent, ok := fieldByID(def, l.fieldID, l.stepID)
			if !ok {
				c.add(l.path+".fieldId", CodeUnknownField, &UnknownFieldReferenceError{FieldID: l.fieldID})
				continue
			}
			parent, ok := fieldByID(def, l.dependsOnFieldID, 0)
			if !ok {
				c.add(l.path+".dependsOnFieldId", CodeUnknownField, &UnknownFieldReferenceError{FieldID: l.dependsOnFieldID})
				continue
			}
			dep = model.Dependency{DependentField: dependent.Name, ParentField: parent.Name}
			if dependent.HasPlaceholderURL() {
				dep.FetchOptionsURLTemplate = dependent.FetchOptionsURL
			}
		} else if dep.FetchOptionsURLTemplate != "" && !model.HasPlaceholder(dep.FetchOptionsURLTemplate) {
			c.config(l.path+".fetchOptionsUrlTemplate", CodeInvalidTemplate, "template %q has no {placeholder}", dep.FetchOptionsURLTemplate)
		}

		key := [2]string{dep.DependentField, dep.ParentField}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		deps = append(deps, dep)
		paths = append(paths, l.path)
	}
	return deps, paths
}

func (c *checker) checkDependencies(def *model.FormDefinition, deps []model.Dependency, paths []string) {
	for i, dep := range deps {
		path := paths[i]
		for _, name := range []string{dep.DependentField, dep.ParentField} {
			refs := def.Lookup(name)
			switch {
			case len(refs) == 0:
				c.add(path, CodeUnknownField, &UnknownFieldReferenceError{FieldName: name})
			case len(refs) > 1:
				c.config(path, CodeAmbiguousField, "field %q is declared in %d steps", name, len(refs))
			}
		}
		if dep.DependentField == dep.ParentField {
			c.config(path, CodeSelfDependency, "field %q depends on itself", dep.DependentField)
		}
	}
	if cycle := model.FindCycle(deps); cycle != nil {
		c.config("dependencies", CodeDependencyCycle, "dependency cycle %s", strings.Join(cycle, " -> "))
	}
}

// fieldByID finds a field by numeric id, inside the step with stepID when
// stepID is set.
func fieldByID(def *model.FormDefinition, id, stepID int) (model.Field, bool) {
	if id == 0 {
		return model.Field{}, false
	}
	for _, step := range def.Steps {
		if stepID != 0 && step.ID != stepID {
			continue
		}
		for _, field := range step.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return model.Field{}, false
}
