package parser

import (
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Option configures parsing.
type Option func(*config)

type config struct {
	policy *bluemonday.Policy
	logger *zap.Logger
}

func newConfig(opts []Option) config {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLabelPolicy sanitizes step titles, field labels and option values with
// the given policy. Use bluemonday.StrictPolicy() to strip all markup.
func WithLabelPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.policy = policy
	}
}

// WithLogger reports non-fatal findings, such as a choice field with no
// option source.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

func (cfg config) sanitize(text string) string {
	if cfg.policy == nil {
		return text
	}
	return cfg.policy.Sanitize(text)
}
