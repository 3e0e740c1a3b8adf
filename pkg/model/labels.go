package model

import (
	"strings"
	"unicode"
)

// Labeler turns a machine name into display text.
type Labeler func(string) string

var initialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"api":  "API",
	"dob":  "DOB",
	"vin":  "VIN",
	"uuid": "UUID",
}

// DefaultLabeler converts a field or step name such as "first_name",
// "vehicle-make" or "phoneNumber" into "First Name", "Vehicle Make" and
// "Phone Number". Known initialisms are upper-cased.
func DefaultLabeler(name string) string {
	words := strings.FieldsFunc(splitCamel(name), func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || unicode.IsSpace(r)
	})
	for i, word := range words {
		lower := strings.ToLower(word)
		if upper, ok := initialisms[lower]; ok {
			words[i] = upper
			continue
		}
		runes := []rune(lower)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func splitCamel(input string) string {
	runes := []rune(input)
	var out strings.Builder
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			if (unicode.IsLower(prev) && unicode.IsUpper(r)) ||
				(unicode.IsLetter(prev) && unicode.IsDigit(r)) ||
				(unicode.IsDigit(prev) && unicode.IsLetter(r)) {
				out.WriteRune(' ')
			}
		}
		out.WriteRune(r)
	}
	return out.String()
}
