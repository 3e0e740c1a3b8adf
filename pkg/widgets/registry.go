// Package widgets maps form fields to the input widgets a renderer should
// use. Renderers ask the registry instead of switching on field types so new
// widgets can be added without touching them.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
)

// Built-in widget identifiers.
const (
	WidgetTextInput   = "text-input"
	WidgetTextarea    = "textarea"
	WidgetNumber      = "number"
	WidgetSelect      = "select"
	WidgetMultiSelect = "multi-select"
	WidgetConfirm     = "confirm"
	WidgetDate        = "date"
	WidgetYear        = "year"
	WidgetMediaPath   = "media-path"
)

// Matcher decides whether a widget handles the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields. Higher priority wins; ties fall back
// to registration order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher. Later registrations with the same priority lose
// to earlier ones.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget for field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetMediaPath, 100, func(field model.Field) bool {
		return field.Type.IsMedia()
	})

	r.Register(WidgetMultiSelect, 90, func(field model.Field) bool {
		return field.Type.IsChoice() && field.MultiSelect
	})

	r.Register(WidgetConfirm, 85, func(field model.Field) bool {
		return field.Type == model.FieldTypeCheckbox && len(field.Options) == 0 && field.FetchOptionsURL == ""
	})

	r.Register(WidgetSelect, 80, func(field model.Field) bool {
		return field.Type.IsChoice()
	})

	r.Register(WidgetYear, 70, func(field model.Field) bool {
		return field.Type == model.FieldTypeDate && field.Validation.YearOnly
	})

	r.Register(WidgetDate, 60, func(field model.Field) bool {
		return field.Type == model.FieldTypeDate
	})

	r.Register(WidgetNumber, 50, func(field model.Field) bool {
		return field.Type == model.FieldTypeNumber
	})

	r.Register(WidgetTextarea, 40, func(field model.Field) bool {
		return field.Type == model.FieldTypeTextArea
	})

	r.Register(WidgetTextInput, 0, func(field model.Field) bool {
		return field.Type.IsTextual()
	})
}
