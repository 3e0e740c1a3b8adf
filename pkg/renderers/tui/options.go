package tui

import (
	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/widgets"
)

// Theme captures optional message prefixes.
type Theme struct {
	StepPrefix  string
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{StepPrefix: "== ", InfoPrefix: "", ErrorPrefix: "! "}

// Option configures a Runner.
type Option func(*Runner)

// WithPromptDriver overrides the survey driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithWidgets replaces the widget registry used to pick prompts.
func WithWidgets(reg *widgets.Registry) Option {
	return func(r *Runner) {
		if reg != nil {
			r.widgets = reg
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithMaxAttempts bounds how often one field or step is prompted while it
// stays invalid. Zero means no bound.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		r.maxAttempts = n
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}
