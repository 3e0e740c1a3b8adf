package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/openapi"
)

const signupDocument = `
openapi: 3.0.3
info:
  title: Member Signup
  version: 1.0.0
paths:
  /members:
    post:
      operationId: createMember
      summary: Create member
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [email, full_name, country]
              properties:
                email:
                  type: string
                  format: email
                full_name:
                  type: string
                  title: Full name
                  minLength: 2
                  maxLength: 80
                age:
                  type: integer
                  minimum: 18
                  maximum: 120
                role:
                  type: string
                  enum: [admin, member]
                  default: member
                interests:
                  type: array
                  items:
                    type: string
                    enum: [cars, bikes, boats]
                newsletter:
                  type: boolean
                country:
                  type: string
                  x-endpoint:
                    url: https://geo.example.com/countries
                city:
                  type: string
                  x-endpoint:
                    url: https://geo.example.com/cities?country={country}
                    dependsOn: country
                address:
                  type: object
                  properties:
                    line1:
                      type: string
  /members/{id}/avatar:
    put:
      operationId: uploadAvatar
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              properties:
                avatar:
                  type: string
                  format: binary
                  x-media: image/png
    get:
      operationId: getAvatar
`

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestImportBuildsOneStepPerOperation(t *testing.T) {
	def, err := openapi.Import(context.Background(), []byte(signupDocument), openapi.ImportOptions{})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if def.FormName != "Member Signup" {
		t.Fatalf("expected form name from info.title, got %q", def.FormName)
	}
	if len(def.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(def.Steps))
	}
	if def.Steps[0].Name != "createMember" || def.Steps[0].Title != "Create member" {
		t.Fatalf("unexpected first step %s %q", def.Steps[0].Name, def.Steps[0].Title)
	}
	if got := def.Steps[1].Title; got != "Upload Avatar" {
		t.Fatalf("expected labeled title for step without summary, got %q", got)
	}

	want := []model.Field{
		{ID: 1, Type: model.FieldTypeNumber, Label: "Age", Name: "age", Validation: model.ValidationRule{Min: floatPtr(18), Max: floatPtr(120)}},
		{ID: 2, Type: model.FieldTypeSelect, Label: "City", Name: "city", FetchOptionsURL: "https://geo.example.com/cities?country={country}"},
		{ID: 3, Type: model.FieldTypeSelect, Label: "Country", Name: "country", Validation: model.ValidationRule{Required: true}, FetchOptionsURL: "https://geo.example.com/countries"},
		{ID: 4, Type: model.FieldTypeEmail, Label: "Email", Name: "email", Validation: model.ValidationRule{Required: true}},
		{ID: 5, Type: model.FieldTypeText, Label: "Full name", Name: "full_name", Validation: model.ValidationRule{Required: true, MinLength: intPtr(2), MaxLength: intPtr(80)}},
		{
			ID: 6, Type: model.FieldTypeCheckbox, Label: "Interests", Name: "interests", MultiSelect: true,
			Options: []model.Option{{ID: 1, Value: "cars"}, {ID: 2, Value: "bikes"}, {ID: 3, Value: "boats"}},
		},
		{ID: 7, Type: model.FieldTypeCheckbox, Label: "Newsletter", Name: "newsletter"},
		{
			ID: 8, Type: model.FieldTypeSelect, Label: "Role", Name: "role",
			Options:      []model.Option{{ID: 1, Value: "admin"}, {ID: 2, Value: "member"}},
			DefaultValue: int64(2),
		},
	}
	if diff := cmp.Diff(want, def.Steps[0].Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}

	if got := def.Steps[1].Fields[0].Type; got != model.FieldTypeImage {
		t.Fatalf("expected image field for binary image property, got %s", got)
	}

	wantDeps := []model.Dependency{{DependentField: "city", ParentField: "country", FetchOptionsURLTemplate: "https://geo.example.com/cities?country={country}"}}
	if diff := cmp.Diff(wantDeps, def.Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestImportSelectedOperations(t *testing.T) {
	def, err := openapi.Import(context.Background(), []byte(signupDocument), openapi.ImportOptions{
		FormName:   "Avatar",
		Operations: []string{"uploadAvatar"},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if def.FormName != "Avatar" || len(def.Steps) != 1 || def.Steps[0].Name != "uploadAvatar" {
		t.Fatalf("unexpected definition %+v", def)
	}

	if _, err := openapi.Import(context.Background(), []byte(signupDocument), openapi.ImportOptions{Operations: []string{"getAvatar"}}); err == nil {
		t.Fatalf("expected error for operation without a request body")
	}
}

func TestImportRejectsDocumentsWithoutBodies(t *testing.T) {
	const doc = `{"openapi": "3.0.0", "info": {"title": "Empty", "version": "1"}, "paths": {}}`
	_, err := openapi.Import(context.Background(), []byte(doc), openapi.ImportOptions{})
	if !errors.Is(err, openapi.ErrNoOperations) {
		t.Fatalf("expected ErrNoOperations, got %v", err)
	}
	if _, err := openapi.Import(context.Background(), []byte("not: [valid"), openapi.ImportOptions{}); err == nil {
		t.Fatalf("expected load error")
	}
}
