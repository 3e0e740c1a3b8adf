package parser_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/microcosm-cc/bluemonday"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/parser"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/testsupport"
)

func TestParseRegistrationExample(t *testing.T) {
	def := testsupport.MustLoadDefinition(t, filepath.Join("testdata", "registration.json"))

	if len(def.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(def.Steps))
	}
	if got := len(def.Steps[0].Fields); got != 2 {
		t.Fatalf("expected 2 fields in first step, got %d", got)
	}
	if got := len(def.Steps[1].Fields); got != 1 {
		t.Fatalf("expected 1 field in second step, got %d", got)
	}
	minLength := def.Steps[0].Fields[0].Validation.MinLength
	if minLength == nil || *minLength != 2 {
		t.Fatalf("expected minLength 2 on first field, got %v", minLength)
	}

	var names []string
	for _, step := range def.Steps {
		names = append(names, step.FieldNames()...)
	}
	if diff := cmp.Diff([]string{"first_name", "last_name", "phone_number"}, names); diff != "" {
		t.Fatalf("field names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"last_name": "Doe"}, def.DefaultValues); diff != "" {
		t.Fatalf("default values mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResolvesIDDependencies(t *testing.T) {
	def := testsupport.MustLoadDefinition(t, filepath.Join("testdata", "vehicle.json"))

	want := []model.Dependency{{
		DependentField:          "model",
		ParentField:             "make",
		FetchOptionsURLTemplate: "http://x/models?make={parentValue}",
	}}
	if diff := cmp.Diff(want, def.Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
	if got := def.DefaultValues["year"]; got != int64(2020) {
		t.Fatalf("expected integral default to decode as int64, got %#v", got)
	}
	extras, ok := def.Steps[1].Field("extras")
	if !ok || !extras.MultiSelect || len(extras.Options) != 3 {
		t.Fatalf("unexpected extras field: %+v", extras)
	}
	price, _ := def.Steps[1].Field("price")
	if price.Validation.Min == nil || *price.Validation.Min != 100 {
		t.Fatalf("expected min 100 on price, got %v", price.Validation.Min)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	for _, name := range []string{"registration.json", "vehicle.json"} {
		t.Run(name, func(t *testing.T) {
			def := testsupport.MustLoadDefinition(t, filepath.Join("testdata", name))

			data, err := parser.Serialize(def)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			again, err := parser.Parse(data)
			if err != nil {
				t.Fatalf("parse serialized definition: %v", err)
			}
			if diff := testsupport.CompareDefinitions(def, again); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSerializeRoundTripIntegralFloats(t *testing.T) {
	raw := []byte(`{
  "formName": "Numbers",
  "formConfig": {"defaultValues": {"count": 2.0, "ratio": 1.5, "sizes": [3.0, 1e2]}},
  "steps": [{"id": 1, "name": "n", "title": "N", "fields": [
    {"id": 1, "type": "number", "label": "Count", "name": "count", "validation": {}},
    {"id": 2, "type": "number", "label": "Quantity", "name": "quantity", "value": 2.0, "validation": {}},
    {"id": 3, "type": "number", "label": "Ratio", "name": "ratio", "validation": {}},
    {"id": 4, "type": "text", "label": "Sizes", "name": "sizes", "validation": {}}
  ]}]
}`)
	def, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := def.Steps[0].Fields[1].DefaultValue; got != int64(2) {
		t.Fatalf("expected 2.0 to parse as int64(2), got %#v", got)
	}
	wantDefaults := map[string]any{"count": int64(2), "ratio": 1.5, "sizes": []any{int64(3), int64(100)}}
	if diff := cmp.Diff(wantDefaults, def.DefaultValues); diff != "" {
		t.Fatalf("default values mismatch (-want +got):\n%s", diff)
	}

	data, err := parser.Serialize(def)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	again, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("parse serialized definition: %v", err)
	}
	if diff := testsupport.CompareDefinitions(def, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMalformedJSON(t *testing.T) {
	for _, raw := range []string{`{"steps": [`, `{} {}`, ``} {
		_, err := parser.Parse([]byte(raw))
		var malformed *parser.MalformedJSONError
		if !errors.As(err, &malformed) {
			t.Fatalf("%q: expected MalformedJSONError, got %v", raw, err)
		}
	}
}

func TestParseReportsFirstMissingKey(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		path string
	}{
		{
			name: "steps",
			raw:  `{"formName": "x"}`,
			path: "steps",
		},
		{
			name: "step title before later label",
			raw: `{"steps": [
				{"name": "a", "fields": [{"type": "text", "label": "A", "name": "a"}]},
				{"name": "b", "title": "B", "fields": [{"type": "text", "name": "b"}]}
			]}`,
			path: "steps[0].title",
		},
		{
			name: "field label",
			raw: `{"steps": [
				{"name": "a", "title": "A", "fields": [{"type": "text", "label": "A", "name": "a"}]},
				{"name": "b", "title": "B", "fields": [{"type": "text", "name": "b"}]}
			]}`,
			path: "steps[1].fields[0].label",
		},
		{
			name: "option value",
			raw: `{"steps": [{"name": "a", "title": "A", "fields": [
				{"type": "select", "label": "A", "name": "a", "options": [{"id": 1}]}
			]}]}`,
			path: "steps[0].fields[0].options[0].value",
		},
		{
			name: "dependency parent",
			raw: `{"steps": [{"name": "a", "title": "A", "fields": [{"type": "text", "label": "A", "name": "a"}]}],
				"dependencies": [{"dependentField": "a"}]}`,
			path: "dependencies[0].parentField",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tc.raw))
			var missing *parser.MissingFieldError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldError, got %v", err)
			}
			if missing.Path != tc.path {
				t.Fatalf("expected path %q, got %q", tc.path, missing.Path)
			}
		})
	}
}

func TestParseRejectsWrongKinds(t *testing.T) {
	raw := `{"steps": [{"name": "a", "title": "A", "fields": [
		{"type": "checkbox", "label": "A", "name": "a", "multiSelect": "yes"}
	]}]}`
	_, err := parser.Parse([]byte(raw))
	var cfgErr *parser.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Path != "steps[0].fields[0].multiSelect" {
		t.Fatalf("unexpected path %q", cfgErr.Path)
	}

	raw = `{"steps": [{"name": "a", "title": "A", "fields": [
		{"type": "text", "label": "A", "name": "a", "validation": {"minLength": 2.5}}
	]}]}`
	if _, err := parser.Parse([]byte(raw)); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for fractional minLength, got %v", err)
	}
}

func TestParseAggregatesStructuralIssues(t *testing.T) {
	raw := `{
		"steps": [
			{"name": "a", "title": "A", "fields": [
				{"type": "text", "label": "X", "name": "x"},
				{"type": "slider", "label": "X", "name": "x",
				 "validation": {"pattern": "(", "minLength": 5, "maxLength": 2}}
			]},
			{"name": "a", "title": "Again", "fields": [
				{"type": "text", "label": "Y", "name": "y"}
			]}
		],
		"dependencies": [{"dependentField": "y", "parentField": "ghost"}]
	}`

	_, err := parser.Parse([]byte(raw))
	var defErr *parser.DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("expected DefinitionError, got %v", err)
	}
	want := []string{
		parser.CodeDuplicateField,
		parser.CodeInvalidType,
		parser.CodeInvalidPattern,
		parser.CodeInvalidLength,
		parser.CodeDuplicateStep,
		parser.CodeUnknownField,
	}
	if diff := cmp.Diff(want, defErr.Codes()); diff != "" {
		t.Fatalf("issue codes mismatch (-want +got):\n%s", diff)
	}

	var unknown *parser.UnknownFieldReferenceError
	if !errors.As(err, &unknown) || unknown.FieldName != "ghost" {
		t.Fatalf("expected unknown reference to ghost, got %v", unknown)
	}
}

func TestParseRejectsDependencyCycles(t *testing.T) {
	raw := `{
		"steps": [{"name": "s", "title": "S", "fields": [
			{"type": "select", "label": "A", "name": "a", "dependencies": ["b"]},
			{"type": "select", "label": "B", "name": "b", "dependencies": ["a"]},
			{"type": "select", "label": "C", "name": "c", "dependencies": ["c"]}
		]}]
	}`
	_, err := parser.Parse([]byte(raw))
	var defErr *parser.DefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("expected DefinitionError, got %v", err)
	}
	want := []string{parser.CodeSelfDependency, parser.CodeDependencyCycle}
	if diff := cmp.Diff(want, defErr.Codes()); diff != "" {
		t.Fatalf("issue codes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseUnknownDependencyID(t *testing.T) {
	raw := `{
		"steps": [{"id": 1, "name": "s", "title": "S", "fields": [
			{"id": 1, "type": "text", "label": "A", "name": "a"}
		]}],
		"dependencies": [{"fieldId": 1, "dependsOnFieldId": 99}]
	}`
	_, err := parser.Parse([]byte(raw))
	var unknown *parser.UnknownFieldReferenceError
	if !errors.As(err, &unknown) || unknown.FieldID != 99 {
		t.Fatalf("expected unknown field id 99, got %v", err)
	}
}

func TestParseFieldLevelDependencies(t *testing.T) {
	raw := `{
		"formName": "Cars",
		"steps": [{"name": "car", "title": "Car", "fields": [
			{"type": "select", "label": "Make", "name": "make", "options": [{"id": 1, "value": "Toyota"}]},
			{"type": "select", "label": "Model", "name": "model",
			 "fetchOptionsUrl": "http://x/models?make={make}", "dependencies": ["make", "make"]}
		]}]
	}`
	def, err := parser.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.Dependency{{
		DependentField:          "model",
		ParentField:             "make",
		FetchOptionsURLTemplate: "http://x/models?make={make}",
	}}
	if diff := cmp.Diff(want, def.Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAML(t *testing.T) {
	raw := `
formName: Registration
steps:
  - name: personal
    title: Personal
    fields:
      - type: text
        label: First Name
        name: first_name
        validation:
          required: true
          minLength: 2
`
	def, err := parser.ParseYAML([]byte(raw))
	if err != nil {
		t.Fatalf("parse yaml: %v", err)
	}
	field := def.Steps[0].Fields[0]
	if !field.Validation.Required || field.Validation.MinLength == nil || *field.Validation.MinLength != 2 {
		t.Fatalf("unexpected validation rule: %+v", field.Validation)
	}

	_, err = parser.ParseYAML([]byte("steps: [\n"))
	var malformed *parser.MalformedJSONError
	if !errors.As(err, &malformed) || malformed.Format != "yaml" {
		t.Fatalf("expected yaml MalformedJSONError, got %v", err)
	}
}

func TestParseSanitizesLabels(t *testing.T) {
	raw := `{"steps": [{"name": "a", "title": "<i>About</i> you", "fields": [
		{"type": "radio", "label": "<b>First</b> Name", "name": "a",
		 "options": [{"id": 1, "value": "<script>x</script>Yes"}]}
	]}]}`
	def, err := parser.Parse([]byte(raw), parser.WithLabelPolicy(bluemonday.StrictPolicy()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	step := def.Steps[0]
	got := []string{step.Title, step.Fields[0].Label, step.Fields[0].Options[0].Value}
	if diff := cmp.Diff([]string{"About you", "First Name", "Yes"}, got); diff != "" {
		t.Fatalf("sanitized text mismatch (-want +got):\n%s", diff)
	}
}
