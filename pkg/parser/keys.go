package parser

import (
	"encoding/json"
	"math"
)

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func wrongKind(path, want string) error {
	return &ConfigurationError{Path: path, Detail: "must be " + want}
}

func lookup(obj map[string]any, key string) (any, bool) {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func requireString(obj map[string]any, key, path string) (string, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return "", &MissingFieldError{Path: join(path, key)}
	}
	s, ok := value.(string)
	if !ok {
		return "", wrongKind(join(path, key), "a string")
	}
	return s, nil
}

func optionalString(obj map[string]any, key, path string) (string, bool, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return "", false, nil
	}
	s, ok := value.(string)
	if !ok {
		return "", false, wrongKind(join(path, key), "a string")
	}
	return s, true, nil
}

func optionalBool(obj map[string]any, key, path string) (bool, bool, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return false, false, nil
	}
	b, ok := value.(bool)
	if !ok {
		return false, false, wrongKind(join(path, key), "a boolean")
	}
	return b, true, nil
}

func optionalInt(obj map[string]any, key, path string) (int, bool, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return 0, false, nil
	}
	f, ok := number(value)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false, wrongKind(join(path, key), "an integer")
	}
	return int(f), true, nil
}

func optionalFloat(obj map[string]any, key, path string) (float64, bool, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return 0, false, nil
	}
	f, ok := number(value)
	if !ok {
		return 0, false, wrongKind(join(path, key), "a number")
	}
	return f, true, nil
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func requireArray(obj map[string]any, key, path string) ([]any, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return nil, &MissingFieldError{Path: join(path, key)}
	}
	list, ok := value.([]any)
	if !ok {
		return nil, wrongKind(join(path, key), "an array")
	}
	return list, nil
}

func optionalArray(obj map[string]any, key, path string) ([]any, error) {
	value, ok := lookup(obj, key)
	if !ok {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, wrongKind(join(path, key), "an array")
	}
	return list, nil
}
