package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

func TestFieldTypeClassification(t *testing.T) {
	cases := []struct {
		kind    model.FieldType
		valid   bool
		choice  bool
		media   bool
		textual bool
	}{
		{model.FieldTypeText, true, false, false, true},
		{model.FieldTypeTel, true, false, false, true},
		{model.FieldTypeNumber, true, false, false, false},
		{model.FieldTypeSelect, true, true, false, false},
		{model.FieldTypeCheckbox, true, true, false, false},
		{model.FieldTypeVideo, true, false, true, false},
		{model.FieldType("slider"), false, false, false, false},
	}
	for _, tc := range cases {
		if got := tc.kind.Valid(); got != tc.valid {
			t.Fatalf("%s: Valid() = %v, want %v", tc.kind, got, tc.valid)
		}
		if got := tc.kind.IsChoice(); got != tc.choice {
			t.Fatalf("%s: IsChoice() = %v, want %v", tc.kind, got, tc.choice)
		}
		if got := tc.kind.IsMedia(); got != tc.media {
			t.Fatalf("%s: IsMedia() = %v, want %v", tc.kind, got, tc.media)
		}
		if got := tc.kind.IsTextual(); got != tc.textual {
			t.Fatalf("%s: IsTextual() = %v, want %v", tc.kind, got, tc.textual)
		}
	}
}

func TestFormDefinitionLookupAndDefaults(t *testing.T) {
	def := model.FormDefinition{
		FormName:      "Vehicle",
		DefaultValues: map[string]any{"make": "Honda", "color": "red"},
		Steps: []model.Step{
			{Name: "vehicle", Fields: []model.Field{
				{Name: "make", Type: model.FieldTypeSelect},
				{Name: "model", Type: model.FieldTypeSelect, FetchOptionsURL: "http://x/models?make={make}"},
			}},
			{Name: "review", Fields: []model.Field{
				{Name: "color", Type: model.FieldTypeText, DefaultValue: "blue"},
				{Name: "make", Type: model.FieldTypeText},
			}},
		},
	}

	refs := def.Lookup("make")
	got := []string{}
	for _, ref := range refs {
		got = append(got, ref.Step)
	}
	if diff := cmp.Diff([]string{"vehicle", "review"}, got); diff != "" {
		t.Fatalf("lookup mismatch (-want +got):\n%s", diff)
	}

	step, index, ok := def.Step("review")
	if !ok || index != 1 {
		t.Fatalf("expected review at index 1, got %d (ok=%v)", index, ok)
	}
	color, _ := step.Field("color")
	if value, _ := def.Default(color); value != "blue" {
		t.Fatalf("field default should win over form default, got %v", value)
	}
	makeField, _ := step.Field("make")
	if value, _ := def.Default(makeField); value != "Honda" {
		t.Fatalf("form default should apply, got %v", value)
	}

	vehicle, _, _ := def.Step("vehicle")
	modelField, _ := vehicle.Field("model")
	if !modelField.HasPlaceholderURL() {
		t.Fatalf("expected placeholder url to be detected")
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"first_name":   "First Name",
		"vehicle-make": "Vehicle Make",
		"phoneNumber":  "Phone Number",
		"owner_id":     "Owner ID",
		"address2":     "Address 2",
		"":             "",
	}
	for input, want := range cases {
		if got := model.DefaultLabeler(input); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
	}
}
