package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

// endpointExtension carries a remote option source on a property:
//
//	x-endpoint:
//	  url: https://geo.example.com/cities?country={country}
//	  dependsOn: country
const endpointExtension = "x-endpoint"

// longTextThreshold turns string properties with a larger maxLength into
// textareas.
const longTextThreshold = 255

type builder struct {
	labeler model.Labeler
	logger  *zap.Logger
	nextID  int
	deps    []model.Dependency
}

// fields maps the properties of an object schema, sorted by name.
func (b *builder) fields(schema *openapi3.Schema) []model.Field {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	var out []model.Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := b.field(name, ref.Value, required[name])
		if !ok {
			b.logger.Debug("skipping property", zap.String("property", name))
			continue
		}
		out = append(out, field)
	}
	return out
}

func (b *builder) field(name string, prop *openapi3.Schema, required bool) (model.Field, bool) {
	field := model.Field{
		Name:       name,
		Label:      prop.Title,
		Validation: model.ValidationRule{Required: required},
	}
	if field.Label == "" {
		field.Label = b.labeler(name)
	}

	switch {
	case isType(prop, openapi3.TypeString):
		field.Type = stringType(prop)
		b.applyLength(&field.Validation, prop)
		field.Validation.Pattern = prop.Pattern
		if field.Type == model.FieldTypeDate && strings.EqualFold(prop.Format, "year") {
			field.Validation.YearOnly = true
		}
	case isType(prop, openapi3.TypeInteger), isType(prop, openapi3.TypeNumber):
		field.Type = model.FieldTypeNumber
		field.Validation.Min = copyFloat(prop.Min)
		field.Validation.Max = copyFloat(prop.Max)
	case isType(prop, openapi3.TypeBoolean):
		field.Type = model.FieldTypeCheckbox
	case isType(prop, openapi3.TypeArray):
		if prop.Items == nil || prop.Items.Value == nil || len(prop.Items.Value.Enum) == 0 {
			return model.Field{}, false
		}
		field.Type = model.FieldTypeCheckbox
		field.MultiSelect = true
		field.Options = enumOptions(prop.Items.Value.Enum)
		field.DefaultValue = defaultChoices(prop.Default, field.Options)
	default:
		return model.Field{}, false
	}

	if len(prop.Enum) > 0 && !field.MultiSelect {
		field.Type = model.FieldTypeSelect
		field.Options = enumOptions(prop.Enum)
		field.Validation = model.ValidationRule{Required: required}
		if opt, ok := optionFor(prop.Default, field.Options); ok {
			field.DefaultValue = opt.ID
		}
	} else if field.DefaultValue == nil && prop.Default != nil {
		field.DefaultValue = prop.Default
	}

	if url, parent := endpoint(prop.Extensions); url != "" {
		field.Type = model.FieldTypeSelect
		field.FetchOptionsURL = url
		field.Validation = model.ValidationRule{Required: required}
		if parent != "" {
			b.deps = append(b.deps, model.Dependency{
				DependentField:          name,
				ParentField:             parent,
				FetchOptionsURLTemplate: url,
			})
		}
	}

	field.ID = b.nextID
	b.nextID++
	return field, true
}

func (b *builder) applyLength(rule *model.ValidationRule, prop *openapi3.Schema) {
	if prop.MinLength > 0 {
		n := int(prop.MinLength)
		rule.MinLength = &n
	}
	if prop.MaxLength != nil {
		n := int(*prop.MaxLength)
		rule.MaxLength = &n
	}
}

func stringType(prop *openapi3.Schema) model.FieldType {
	switch strings.ToLower(prop.Format) {
	case "email":
		return model.FieldTypeEmail
	case "date", "date-time", "year":
		return model.FieldTypeDate
	case "tel", "phone":
		return model.FieldTypeTel
	case "textarea":
		return model.FieldTypeTextArea
	case "binary", "byte":
		media, _ := prop.Extensions["x-media"].(string)
		switch {
		case strings.HasPrefix(media, "image"):
			return model.FieldTypeImage
		case strings.HasPrefix(media, "audio"):
			return model.FieldTypeAudio
		case strings.HasPrefix(media, "video"):
			return model.FieldTypeVideo
		}
		return model.FieldTypeFile
	}
	if prop.MaxLength != nil && *prop.MaxLength > longTextThreshold {
		return model.FieldTypeTextArea
	}
	return model.FieldTypeText
}

func isType(schema *openapi3.Schema, typ string) bool {
	return schema.Type != nil && schema.Type.Is(typ)
}

func enumOptions(values []any) []model.Option {
	opts := make([]model.Option, 0, len(values))
	for i, v := range values {
		opts = append(opts, model.Option{ID: i + 1, Value: fmt.Sprint(v)})
	}
	return opts
}

func optionFor(value any, opts []model.Option) (model.Option, bool) {
	if value == nil {
		return model.Option{}, false
	}
	text := fmt.Sprint(value)
	for _, opt := range opts {
		if opt.Value == text {
			return opt, true
		}
	}
	return model.Option{}, false
}

func defaultChoices(value any, opts []model.Option) any {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	ids := make([]any, 0, len(list))
	for _, v := range list {
		if opt, ok := optionFor(v, opts); ok {
			ids = append(ids, opt.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func endpoint(ext map[string]any) (url, parent string) {
	raw, ok := ext[endpointExtension].(map[string]any)
	if !ok {
		return "", ""
	}
	url, _ = raw["url"].(string)
	parent, _ = raw["dependsOn"].(string)
	return url, parent
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}
