package parser

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

type wireFormConfig struct {
	DefaultValues map[string]any `json:"defaultValues,omitempty"`
}

type wireDefinition struct {
	FormName     string             `json:"formName"`
	FormConfig   *wireFormConfig    `json:"formConfig,omitempty"`
	Steps        []model.Step       `json:"steps"`
	Dependencies []model.Dependency `json:"dependencies,omitempty"`
}

// Serialize writes def in the canonical document shape accepted by Parse.
// Dependencies are always written in their name based form.
func Serialize(def model.FormDefinition) ([]byte, error) {
	wire := wireDefinition{
		FormName:     def.FormName,
		Steps:        def.Steps,
		Dependencies: def.Dependencies,
	}
	if len(def.DefaultValues) > 0 {
		wire.FormConfig = &wireFormConfig{DefaultValues: def.DefaultValues}
	}
	if wire.Steps == nil {
		wire.Steps = []model.Step{}
	}
	data, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("parser: serialize definition: %w", err)
	}
	return data, nil
}

// ParseYAML accepts the same document shape written as YAML.
func ParseYAML(raw []byte, opts ...Option) (model.FormDefinition, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return model.FormDefinition{}, &MalformedJSONError{Format: "yaml", Err: err}
	}
	if doc == nil {
		return model.FormDefinition{}, &MalformedJSONError{Format: "yaml", Err: fmt.Errorf("document is empty")}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return model.FormDefinition{}, &MalformedJSONError{Format: "yaml", Err: err}
	}
	return Parse(data, opts...)
}
