package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/session"
)

// OutputFormat controls how a submission is serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one step.field=value line per value.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat validates a user supplied format name.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(raw))); format {
	case "", OutputFormatJSON:
		return OutputFormatJSON, nil
	case OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return format, nil
	default:
		return "", fmt.Errorf("tui: unknown output format %q", raw)
	}
}

// Encode serializes submitted values keyed by step then field.
func Encode(values map[string]map[string]any, format OutputFormat) ([]byte, error) {
	switch format {
	case OutputFormatFormURLEncoded:
		out := url.Values{}
		for step, fields := range values {
			for name, value := range fields {
				flatten(step+"."+name, value, out)
			}
		}
		return []byte(out.Encode()), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flatten(key string, value any, out url.Values) {
	switch v := value.(type) {
	case nil:
		out.Set(key, "")
	case []any:
		for _, item := range v {
			out.Add(key+"[]", scalar(item))
		}
	default:
		out.Set(key, scalar(v))
	}
}

func prettyPrint(values map[string]map[string]any) string {
	var b strings.Builder
	for _, step := range sortedKeys(values) {
		fields := values[step]
		for _, name := range sortedKeys(fields) {
			switch v := fields[name].(type) {
			case []any:
				for idx, item := range v {
					fmt.Fprintf(&b, "%s.%s[%d]=%s\n", step, name, idx, scalar(item))
				}
			case nil:
				fmt.Fprintf(&b, "%s.%s=\n", step, name)
			default:
				fmt.Fprintf(&b, "%s.%s=%s\n", step, name, scalar(v))
			}
		}
	}
	return b.String()
}

func scalar(value any) string {
	if res, ok := value.(*session.Resource); ok {
		if !res.Present() {
			return ""
		}
		return res.Path
	}
	return fmt.Sprint(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
