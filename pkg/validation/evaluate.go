package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

// Result is the verdict for one value. Message is empty when Valid is true.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Pass is the result of a value that satisfies every constraint.
var Pass = Result{Valid: true}

// Fail builds a failing result.
func Fail(format string, args ...any) Result {
	return Result{Message: fmt.Sprintf(format, args...)}
}

// Evaluate checks value against rule. The required check runs first and
// short-circuits; an empty optional value passes without further checks.
// Length bounds apply to strings (in characters) and lists, numeric bounds
// to numbers and pattern to non-empty strings.
func Evaluate(rule model.ValidationRule, value any, label string) Result {
	if IsEmpty(value) {
		if rule.Required {
			return Fail("%s is required", label)
		}
		return Pass
	}

	if n, ok := length(value); ok {
		if rule.MinLength != nil && n < *rule.MinLength {
			return Fail("%s must be at least %d characters", label, *rule.MinLength)
		}
		if rule.MaxLength != nil && n > *rule.MaxLength {
			return Fail("%s cannot exceed %d characters", label, *rule.MaxLength)
		}
	}

	if f, ok := numeric(value); ok {
		if rule.Min != nil && f < *rule.Min {
			return Fail("%s must be at least %s", label, formatNumber(*rule.Min))
		}
		if rule.Max != nil && f > *rule.Max {
			return Fail("%s cannot exceed %s", label, formatNumber(*rule.Max))
		}
	}

	if s, ok := value.(string); ok && rule.Pattern != "" {
		re := compile(rule.Pattern)
		if re == nil || !re.MatchString(s) {
			return Fail("Invalid %s", label)
		}
	}

	return Pass
}

// IsEmpty reports whether value counts as absent: nil, a blank string or an
// empty list.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func length(value any) (int, bool) {
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

func numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const patternCacheSize = 256

var patterns = sync.OnceValue(func() *lru.Cache[string, *regexp.Regexp] {
	return mustPatternCache(patternCacheSize)
})

// mustPatternCache builds the compiled pattern cache and panics when size is
// rejected, like regexp.MustCompile does for a bad expression.
func mustPatternCache(size int) *lru.Cache[string, *regexp.Regexp] {
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(fmt.Sprintf("validation: pattern cache: %v", err))
	}
	return cache
}

// compile returns the cached expression, or nil when it does not compile.
func compile(pattern string) *regexp.Regexp {
	cache := patterns()
	if re, ok := cache.Get(pattern); ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	cache.Add(pattern, re)
	return re
}
