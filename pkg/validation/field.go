package validation

import (
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

var (
	telPattern  = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,18}[0-9]$`)
	yearPattern = regexp.MustCompile(`^[0-9]{4}$`)
)

// DateLayouts are the accepted full-date input formats, tried in order.
var DateLayouts = []string{"2006-01-02", time.RFC3339}

// EvaluateField runs Evaluate with the adapters a field kind needs before
// the shared rule applies. options are the choices currently known for the
// field; pass nil when they are not loaded yet.
func EvaluateField(field model.Field, value any, options []model.Option) Result {
	label := field.Label
	rule := field.Validation

	switch {
	case field.Type.IsMedia():
		// present or absent is all the capture collaborator reports
		return Evaluate(model.ValidationRule{Required: rule.Required}, mediaValue(value), label)
	case field.Type == model.FieldTypeCheckbox && !field.MultiSelect && len(options) == 0:
		if checked, ok := value.(bool); ok && !checked {
			value = nil
		}
		return Evaluate(model.ValidationRule{Required: rule.Required}, value, label)
	}

	if IsEmpty(value) {
		return Evaluate(rule, value, label)
	}

	switch field.Type {
	case model.FieldTypeNumber:
		n, ok := Coerce(value)
		if !ok {
			return Fail("Invalid %s", label)
		}
		value = n
	case model.FieldTypeDate:
		if !validDate(value, rule.YearOnly) {
			return Fail("Invalid %s", label)
		}
	case model.FieldTypeSelect, model.FieldTypeRadio, model.FieldTypeCheckbox:
		if len(options) > 0 && !chosen(value, options) {
			return Fail("Invalid %s", label)
		}
	}

	result := Evaluate(rule, value, label)
	if !result.Valid || rule.Pattern != "" {
		return result
	}

	s, _ := value.(string)
	switch field.Type {
	case model.FieldTypeEmail:
		if !validEmail(s) {
			return Fail("Invalid %s", label)
		}
	case model.FieldTypeTel:
		if !telPattern.MatchString(strings.TrimSpace(s)) {
			return Fail("Invalid %s", label)
		}
	}
	return result
}

// Coerce converts numbers and numeric strings to float64.
func Coerce(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return f, err == nil
	}
	return numeric(value)
}

// OptionID converts an option reference to its integer id.
func OptionID(value any) (int, bool) {
	f, ok := Coerce(value)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func chosen(value any, options []model.Option) bool {
	known := func(v any) bool {
		id, ok := OptionID(v)
		if !ok {
			return false
		}
		for _, opt := range options {
			if opt.ID == id {
				return true
			}
		}
		return false
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if !known(item) {
				return false
			}
		}
		return true
	case []int:
		for _, item := range v {
			if !known(item) {
				return false
			}
		}
		return true
	}
	return known(value)
}

func mediaValue(value any) any {
	switch v := value.(type) {
	case bool:
		if !v {
			return nil
		}
	case interface{ Present() bool }:
		if !v.Present() {
			return nil
		}
	}
	return value
}

func validDate(value any, yearOnly bool) bool {
	switch v := value.(type) {
	case time.Time:
		return !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if yearOnly {
			return yearPattern.MatchString(s)
		}
		for _, layout := range DateLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	}
	if yearOnly {
		id, ok := OptionID(value)
		return ok && id >= 1000 && id <= 9999
	}
	return false
}

func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
