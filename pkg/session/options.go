package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/options"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/trigger"
)

// Resource is a picked or recorded media item.
type Resource struct {
	Path     string `json:"path"`
	MimeType string `json:"mimeType,omitempty"`
}

// Present reports whether the resource points at something.
func (r *Resource) Present() bool {
	return r != nil && r.Path != ""
}

// Capturer picks or records media for a field. A nil resource with a nil
// error means the user cancelled.
type Capturer interface {
	Capture(ctx context.Context, field model.Field) (*Resource, error)
}

// CapturerFunc adapts a function into a Capturer.
type CapturerFunc func(ctx context.Context, field model.Field) (*Resource, error)

// Capture calls fn.
func (fn CapturerFunc) Capture(ctx context.Context, field model.Field) (*Resource, error) {
	return fn(ctx, field)
}

// Option configures a Session.
type Option func(*Session)

// WithFetcher sets the collaborator used to load remote option lists.
// Without one, fields relying on remote options stay empty.
func WithFetcher(fetcher options.Fetcher) Option {
	return func(s *Session) {
		s.fetcher = fetcher
	}
}

// WithCapturer sets the media capture collaborator.
func WithCapturer(capturer Capturer) Option {
	return func(s *Session) {
		s.capturer = capturer
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTriggerOptions configures the session's trigger channel.
func WithTriggerOptions(opts ...trigger.Option) Option {
	return func(s *Session) {
		s.triggerOpts = append(s.triggerOpts, opts...)
	}
}
