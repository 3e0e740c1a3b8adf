package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/renderers/tui"
)

// scriptedDriver answers text prompts from a list and accepts defaults for
// blank answers.
type scriptedDriver struct {
	t      *testing.T
	inputs []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		d.t.Fatalf("unexpected prompt %q", cfg.Message)
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	if answer == "" {
		answer = cfg.Default
	}
	return answer, nil
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	d.t.Fatalf("unexpected confirm prompt")
	return false, nil
}

func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	d.t.Fatalf("unexpected select prompt")
	return 0, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	d.t.Fatalf("unexpected multi select prompt")
	return nil, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.Input(ctx, tui.InputConfig{Message: cfg.Message, Default: cfg.Default})
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func runCommand(t *testing.T, driver tui.PromptDriver, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("FORMSTEWARD_LOG__LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(driver)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--env-file="}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeDefinition(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write definition: %v", err)
	}
	return path
}

func TestInspectExample(t *testing.T) {
	out, _, err := runCommand(t, nil, "inspect", "--example", "registration")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Form: Registration", "Personal Details", "first_name", "text-input", "phone_number"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestInspectJSON(t *testing.T) {
	out, _, err := runCommand(t, nil, "inspect", "--json", "--example", "vehicle")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var doc struct {
		FormName     string           `json:"formName"`
		Steps        []map[string]any `json:"steps"`
		Dependencies []map[string]any `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if doc.FormName != "Vehicle Listing" || len(doc.Steps) != 2 || len(doc.Dependencies) != 1 {
		t.Fatalf("unexpected definition %+v", doc)
	}
}

func TestInspectRejectsUnknownExample(t *testing.T) {
	_, _, err := runCommand(t, nil, "inspect", "--example", "nope")
	if err == nil || !strings.Contains(err.Error(), "registration") {
		t.Fatalf("expected unknown example error listing names, got %v", err)
	}
}

func TestCheckReportsIssues(t *testing.T) {
	path := writeDefinition(t, `{
  "formName": "Broken",
  "steps": [
    {"id": 1, "name": "s", "title": "S", "fields": [
      {"id": 1, "type": "text", "label": "A", "name": "a", "validation": {}}
    ]}
  ],
  "dependencies": [
    {"dependentField": "a", "parentField": "ghost", "fetchOptionsUrlTemplate": "http://x/{v}"},
    {"dependentField": "a", "parentField": "a"}
  ]
}`)
	out, _, err := runCommand(t, nil, "check", path)
	if err == nil || !strings.Contains(err.Error(), "issue(s)") {
		t.Fatalf("expected issue count error, got %v", err)
	}
	for _, want := range []string{"unknown_field", "self_dependency"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCheckExample(t *testing.T) {
	out, _, err := runCommand(t, nil, "check", "--example", "vehicle")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "ok (2 steps, 8 fields, 1 dependencies)") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestResolveSubstitutesOptionLabel(t *testing.T) {
	out, _, err := runCommand(t, nil, "resolve", "--example", "vehicle", "--field", "make", "--value", "3")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "https://vehicles.example.com/api/models?make=Land+Rover") {
		t.Fatalf("expected resolved URL in output:\n%s", out)
	}

	out, _, err = runCommand(t, nil, "resolve", "--example", "vehicle", "--field", "make")
	if err != nil {
		t.Fatalf("resolve empty: %v", err)
	}
	if !strings.Contains(out, "clear") {
		t.Fatalf("expected clear action for an empty value:\n%s", out)
	}
}

func TestResolveFetchesOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("make") != "Acme" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 7, "value": "Roadster"}]`))
	}))
	defer srv.Close()

	path := writeDefinition(t, `{
  "formName": "Cars",
  "steps": [
    {"id": 1, "name": "car", "title": "Car", "fields": [
      {"id": 1, "type": "select", "label": "Make", "name": "make", "validation": {},
       "options": [{"id": 1, "value": "Acme"}]},
      {"id": 2, "type": "select", "label": "Model", "name": "model", "validation": {},
       "fetchOptionsUrl": "`+srv.URL+`/models?make={make}"}
    ]}
  ],
  "dependencies": [{"fieldId": 2, "dependsOnFieldId": 1}]
}`)

	out, _, err := runCommand(t, nil, "resolve", path, "--field", "make", "--value", "1", "--fetch")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	for _, want := range []string{srv.URL + "/models?make=Acme", "Roadster"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFillWithScriptedDriver(t *testing.T) {
	driver := &scriptedDriver{t: t, inputs: []string{"Jane", "", "+254712345678"}}
	out, _, err := runCommand(t, driver, "fill", "--example", "registration")
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	var got map[string]map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode submission: %v\n%s", err, out)
	}
	want := map[string]map[string]any{
		"personal": {"first_name": "Jane", "last_name": "Doe"},
		"contact":  {"phone_number": "+254712345678"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submission mismatch (-want +got):\n%s", diff)
	}
}

func TestFillPrintsProgressWhenGivingUp(t *testing.T) {
	driver := &scriptedDriver{t: t, inputs: []string{"J"}}
	_, stderr, err := runCommand(t, driver, "fill", "--example", "registration", "--max-attempts", "1")
	if err == nil || !strings.Contains(err.Error(), "first_name") {
		t.Fatalf("expected too many attempts error, got %v", err)
	}
	if !strings.Contains(stderr, "Progress: invalid") {
		t.Fatalf("expected progress table on stderr:\n%s", stderr)
	}
}

func TestImportOpenAPIAsYAML(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "pets.yaml")
	if err := os.WriteFile(doc, []byte(`openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths:
  /pets:
    post:
      operationId: createPet
      summary: Create pet
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
      responses:
        "201":
          description: created
`), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	out, _, err := runCommand(t, nil, "import-openapi", doc, "--format", "yaml")
	if err != nil {
		t.Fatalf("import-openapi: %v", err)
	}
	for _, want := range []string{"formName: Pets", "title: Create pet", "label: Name"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExamplesListsBundledForms(t *testing.T) {
	out, _, err := runCommand(t, nil, "examples")
	if err != nil {
		t.Fatalf("examples: %v", err)
	}
	for _, want := range []string{"registration", "vehicle", "Vehicle Listing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
