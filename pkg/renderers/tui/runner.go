// Package tui walks a form session in the terminal. Each mounted field is
// prompted with the widget the registry picks for it, every answer is
// reported to the field's owner as a finished edit and a step is left only
// when the session accepts the transition.
package tui

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/session"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/validation"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/widgets"
)

// DefaultMaxAttempts bounds prompts per field and per step.
const DefaultMaxAttempts = 3

// Runner drives a session through a PromptDriver.
type Runner struct {
	driver      PromptDriver
	widgets     *widgets.Registry
	theme       Theme
	maxAttempts int
	logger      *zap.Logger
}

// New constructs a runner. Without options it prompts on the terminal.
func New(opts ...Option) *Runner {
	r := &Runner{
		driver:      NewSurveyDriver(nil),
		widgets:     widgets.NewRegistry(),
		theme:       DefaultTheme,
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Run starts s, prompts every step and returns the submitted values once the
// last step is accepted.
func (r *Runner) Run(ctx context.Context, s *session.Session) (map[string]map[string]any, error) {
	pending, err := s.Start(ctx)
	if err != nil {
		return nil, err
	}

	attempts := 0
	for {
		step := s.CurrentStep()
		if err := r.driver.Info(ctx, r.theme.StepPrefix+step.Title); err != nil {
			return nil, err
		}
		for _, owner := range pending {
			if err := r.promptField(ctx, owner); err != nil {
				return nil, err
			}
		}

		tr, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !tr.Advanced && !tr.Complete {
			attempts++
			r.logger.Debug("step blocked", zap.String("step", tr.From), zap.Strings("invalid", tr.Invalid))
			if r.maxAttempts > 0 && attempts >= r.maxAttempts {
				return nil, fmt.Errorf("%w: step %s", ErrTooManyAttempts, tr.From)
			}
			pending = blockedOwners(s, tr)
			continue
		}
		attempts = 0
		if tr.Complete {
			return s.Submit(ctx)
		}
		pending = s.Owners(tr.To)
	}
}

// blockedOwners returns the owners to prompt again after a blocked
// transition: the fields reported invalid, or the whole step when none were
// named.
func blockedOwners(s *session.Session, tr session.Transition) []*session.FieldOwner {
	var owners []*session.FieldOwner
	for _, name := range tr.Invalid {
		if owner, ok := s.Owner(tr.From, name); ok {
			owners = append(owners, owner)
		}
	}
	if len(owners) == 0 {
		return s.Owners(tr.From)
	}
	return owners
}

// promptField asks for one value until the owner accepts it.
func (r *Runner) promptField(ctx context.Context, owner *session.FieldOwner) error {
	field := owner.Field()
	widget, ok := r.widgets.Resolve(field)
	if !ok {
		widget = widgets.WidgetTextInput
	}

	for attempt := 1; ; attempt++ {
		value, err := r.ask(ctx, owner, widget)
		if err != nil {
			var invalid *inputError
			if !errors.As(err, &invalid) {
				return err
			}
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+invalid.Error()); err != nil {
				return err
			}
		} else {
			if _, done := value.(skipped); !done {
				if err := owner.Change(ctx, value, true); err != nil {
					return err
				}
			}
			if owner.Valid() {
				return nil
			}
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+owner.Message()); err != nil {
				return err
			}
		}
		if r.maxAttempts > 0 && attempt >= r.maxAttempts {
			return fmt.Errorf("%w: field %s", ErrTooManyAttempts, field.Name)
		}
	}
}

// skipped marks answers already recorded on the owner, such as captured media.
type skipped struct{}

// inputError reports an answer that could not be turned into a value.
type inputError struct{ msg string }

func (e *inputError) Error() string { return e.msg }

func (r *Runner) ask(ctx context.Context, owner *session.FieldOwner, widget string) (any, error) {
	field := owner.Field()
	message := displayLabel(field)
	help := displayHelp(field)

	switch widget {
	case widgets.WidgetConfirm:
		current, _ := owner.Value().(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current, Help: help})

	case widgets.WidgetSelect, widgets.WidgetMultiSelect:
		return r.askChoice(ctx, owner, widget == widgets.WidgetMultiSelect, message, help)

	case widgets.WidgetNumber:
		raw, err := r.driver.Input(ctx, InputConfig{Message: message, Default: stringValue(owner.Value()), Help: help})
		if err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &inputError{msg: "Invalid " + field.Label}
		}
		return n, nil

	case widgets.WidgetTextarea:
		raw, err := r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: stringValue(owner.Value()), Help: help})
		if err != nil {
			return nil, err
		}
		return blankToNil(raw), nil

	case widgets.WidgetMediaPath:
		_, err := owner.Capture(ctx)
		if !errors.Is(err, session.ErrNoCapturer) {
			// capture failures leave the field empty and surface as its message
			return skipped{}, nil
		}
		res, err := r.askPath(ctx, field)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, nil
		}
		return res, nil

	default:
		raw, err := r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: stringValue(owner.Value()),
			Help:    help,
		})
		if err != nil {
			return nil, err
		}
		return blankToNil(raw), nil
	}
}

func (r *Runner) askChoice(ctx context.Context, owner *session.FieldOwner, multi bool, message, help string) (any, error) {
	field := owner.Field()
	opts := owner.Options()
	if len(opts) == 0 {
		if err := r.driver.Info(ctx, fmt.Sprintf("%sNo options available for %s", r.theme.InfoPrefix, field.Label)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	labels := make([]string, len(opts))
	for i, opt := range opts {
		labels[i] = opt.Value
	}

	if multi {
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  labels,
			Defaults: selectedIndices(opts, owner.Value()),
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		if len(indices) == 0 {
			return nil, nil
		}
		ids := make([]any, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(opts) {
				ids = append(ids, opts[idx].ID)
			}
		}
		return ids, nil
	}

	current := -1
	if selected := selectedIndices(opts, owner.Value()); len(selected) == 1 {
		current = selected[0]
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      labels,
		DefaultIndex: current,
		Help:         help,
	})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(opts) {
		return nil, nil
	}
	return opts[idx].ID, nil
}

// askPath prompts for a file path. A blank answer cancels the capture.
func (r *Runner) askPath(ctx context.Context, field model.Field) (*session.Resource, error) {
	raw, err := r.driver.Input(ctx, InputConfig{
		Message: displayLabel(field) + " (path)",
		Help:    fmt.Sprintf("Path to a %s file, leave blank to skip", field.Type),
		Validator: func(s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil
			}
			info, err := os.Stat(s)
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", s)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(raw)
	if path == "" {
		return nil, nil
	}
	return &session.Resource{Path: path, MimeType: mime.TypeByExtension(filepath.Ext(path))}, nil
}

// Capturer returns a session.Capturer that asks for media paths through the
// runner's driver.
func (r *Runner) Capturer() session.Capturer {
	return session.CapturerFunc(func(ctx context.Context, field model.Field) (*session.Resource, error) {
		return r.askPath(ctx, field)
	})
}

func displayLabel(field model.Field) string {
	label := field.Label
	if field.Validation.Required {
		label += " *"
	}
	return label
}

func displayHelp(field model.Field) string {
	rule := field.Validation
	var parts []string
	if rule.MinLength != nil {
		parts = append(parts, fmt.Sprintf("at least %d characters", *rule.MinLength))
	}
	if rule.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("at most %d characters", *rule.MaxLength))
	}
	if rule.Min != nil {
		parts = append(parts, "min "+strconv.FormatFloat(*rule.Min, 'f', -1, 64))
	}
	if rule.Max != nil {
		parts = append(parts, "max "+strconv.FormatFloat(*rule.Max, 'f', -1, 64))
	}
	if field.Type == model.FieldTypeDate {
		if rule.YearOnly {
			parts = append(parts, "YYYY")
		} else {
			parts = append(parts, "YYYY-MM-DD")
		}
	}
	return strings.Join(parts, ", ")
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func blankToNil(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return raw
}

func selectedIndices(opts []model.Option, value any) []int {
	values := []any{value}
	if list, ok := value.([]any); ok {
		values = list
	}
	var out []int
	for _, v := range values {
		id, ok := validation.OptionID(v)
		if !ok {
			continue
		}
		for i, opt := range opts {
			if opt.ID == id {
				out = append(out, i)
				break
			}
		}
	}
	return out
}
