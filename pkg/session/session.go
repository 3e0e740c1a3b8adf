package session

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/dependency"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/metrics"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/options"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/state"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/trigger"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/validation"
)

type fieldKey struct {
	step  string
	field string
}

// Session runs one fill of a form definition. It owns the state store, the
// trigger channel and the mounted field owners.
type Session struct {
	id       string
	def      model.FormDefinition
	store    *state.Store
	channel  *trigger.Channel
	resolver *dependency.Resolver

	fetcher     options.Fetcher
	capturer    Capturer
	logger      *zap.Logger
	triggerOpts []trigger.Option

	mu      sync.Mutex
	current int
	closed  bool
	mounted map[string][]*FieldOwner
	options map[fieldKey][]model.Option
	checked map[string]bool
}

// New starts a session for def. def is expected to have passed the parser's
// structural checks.
func New(def model.FormDefinition, opts ...Option) *Session {
	s := &Session{
		id:       uuid.NewString(),
		def:      def,
		resolver: dependency.NewResolver(def),
		logger:   zap.NewNop(),
		mounted:  make(map[string][]*FieldOwner),
		options:  make(map[fieldKey][]model.Option),
		checked:  make(map[string]bool),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.With(zap.String("session", s.id), zap.String("form", def.FormName))
	s.store = state.New(state.WithLogger(s.logger))
	triggerOpts := append([]trigger.Option{
		trigger.WithLogger(s.logger),
		trigger.WithObserver(func(string) { metrics.ValidationTriggersTotal.Inc() }),
	}, s.triggerOpts...)
	s.channel = trigger.New(triggerOpts...)

	for _, step := range def.Steps {
		for _, field := range step.Fields {
			if len(field.Options) > 0 {
				s.options[fieldKey{step.Name, field.Name}] = field.Options
			}
		}
	}

	metrics.ActiveSessions.Inc()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Definition returns the form being filled.
func (s *Session) Definition() model.FormDefinition { return s.def }

// Store exposes the session's state store for observers.
func (s *Session) Store() *state.Store { return s.store }

// Trigger exposes the session's validation trigger channel.
func (s *Session) Trigger() *trigger.Channel { return s.channel }

// Start mounts the first step.
func (s *Session) Start(ctx context.Context) ([]*FieldOwner, error) {
	if len(s.def.Steps) == 0 {
		return nil, fmt.Errorf("%w: form has no steps", ErrUnknownStep)
	}
	s.mu.Lock()
	s.current = 0
	s.mu.Unlock()
	return s.MountStep(ctx, s.def.Steps[0].Name)
}

// CurrentStep returns the step the session is on.
func (s *Session) CurrentStep() model.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def.Steps[s.current]
}

// Owners returns the owners of a mounted step in field order.
func (s *Session) Owners(step string) []*FieldOwner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*FieldOwner(nil), s.mounted[step]...)
}

// Owner returns the owner of one mounted field.
func (s *Session) Owner(step, field string) (*FieldOwner, bool) {
	for _, owner := range s.Owners(step) {
		if owner.field.Name == field {
			return owner, true
		}
	}
	return nil, false
}

// Change forwards a finished edit to the owner of a mounted field.
func (s *Session) Change(ctx context.Context, step, field string, value any) error {
	owner, ok := s.Owner(step, field)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, step, field)
	}
	return owner.Change(ctx, value, true)
}

// MountStep prepares a step for input: validity entries are initialized,
// defaults seeded, options loaded and one owner per field subscribed to the
// trigger channel. Mounting a mounted step returns its existing owners.
func (s *Session) MountStep(ctx context.Context, name string) ([]*FieldOwner, error) {
	step, _, ok := s.def.Step(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	if owners, ok := s.mounted[name]; ok {
		s.mu.Unlock()
		return append([]*FieldOwner(nil), owners...), nil
	}
	s.mu.Unlock()

	s.store.InitializeStepValidity(name, step.FieldNames()...)

	defaults := make(map[string]any)
	for _, field := range step.Fields {
		if value, ok := s.def.Default(field); ok {
			defaults[field.Name] = value
		}
	}
	s.store.Seed(name, defaults)

	for _, field := range step.Fields {
		s.loadOptions(ctx, name, field)
	}

	owners := make([]*FieldOwner, 0, len(step.Fields))
	for _, field := range step.Fields {
		owner := &FieldOwner{session: s, step: name, field: field}
		owner.raw, _ = s.store.Value(name, field.Name)
		owners = append(owners, owner)
	}

	for _, owner := range owners {
		owner.unsubscribe = s.channel.Subscribe(owner.react)
	}

	s.mu.Lock()
	if existing, ok := s.mounted[name]; ok {
		s.mu.Unlock()
		for _, owner := range owners {
			owner.unsubscribe()
		}
		return append([]*FieldOwner(nil), existing...), nil
	}
	s.mounted[name] = owners
	s.mu.Unlock()

	if cue, ok := s.channel.Current(); ok && cue == name {
		for _, owner := range owners {
			owner.Validate(ctx)
		}
	}

	s.logger.Debug("step mounted", zap.String("step", name), zap.Int("fields", len(owners)))
	return append([]*FieldOwner(nil), owners...), nil
}

// UnmountStep unsubscribes the owners of a step. Values and validity stay in
// the store.
func (s *Session) UnmountStep(name string) {
	s.mu.Lock()
	owners := s.mounted[name]
	delete(s.mounted, name)
	s.mu.Unlock()

	for _, owner := range owners {
		if owner.unsubscribe != nil {
			owner.unsubscribe()
		}
	}
}

// ValidateStep asks every mounted owner of step to validate, waits until all
// of them reported, reads the step validity and clears the cue.
func (s *Session) ValidateStep(ctx context.Context, name string) (bool, error) {
	if _, _, ok := s.def.Step(name); !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}
	err := s.channel.Trigger(ctx, name)
	valid := s.store.IsStepValid(name)
	s.channel.Reset()
	if err != nil {
		return false, err
	}
	s.markChecked(name)
	return valid, nil
}

// revalidate evaluates the stored values of an unmounted step against its
// rules and records any validity that changed. Steps without validity
// entries were never visited and are left alone.
func (s *Session) revalidate(step model.Step) {
	validity := s.store.Validity(step.Name)
	if len(validity) == 0 {
		return
	}
	for _, field := range step.Fields {
		value, _ := s.store.Value(step.Name, field.Name)
		result := validation.EvaluateField(field, value, s.Options(step.Name, field.Name))
		if known, ok := validity[field.Name]; ok && known == result.Valid {
			continue
		}
		s.store.UpdateField(step.Name, field.Name, value, result.Valid)
		metrics.FieldUpdatesTotal.Inc()
	}
	s.markChecked(step.Name)
}

func (s *Session) markChecked(step string) {
	s.mu.Lock()
	s.checked[step] = true
	s.mu.Unlock()
}

// isChecked reports whether every field of step has been evaluated since it
// was first mounted, as opposed to carrying the optimistic initial validity.
func (s *Session) isChecked(step string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checked[step]
}

// Options returns the currently known options of a field.
func (s *Session) Options(step, field string) []model.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Option(nil), s.options[fieldKey{step, field}]...)
}

func (s *Session) setOptions(step, field string, opts []model.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(opts) == 0 {
		delete(s.options, fieldKey{step, field})
		return
	}
	s.options[fieldKey{step, field}] = opts
}

// loadOptions fetches the options of a field at mount time: a plain URL is
// fetched directly and a template is resolved from its parents' values.
func (s *Session) loadOptions(ctx context.Context, step string, field model.Field) {
	if field.FetchOptionsURL == "" || len(s.Options(step, field.Name)) > 0 {
		return
	}
	if !field.HasPlaceholderURL() {
		s.setOptions(step, field.Name, s.fetch(ctx, field.FetchOptionsURL))
		return
	}
	for _, parent := range s.resolver.Parents(field.Name) {
		value, ok := s.valueOf(parent)
		if !ok {
			continue
		}
		updates, err := s.resolver.Resolve(parent, s.substitution(parent, value))
		if err != nil {
			s.logger.Error("dependency resolution failed", zap.String("field", parent), zap.Error(err))
			continue
		}
		for _, update := range updates {
			if update.DependentField == field.Name && !update.Clear {
				s.setOptions(step, field.Name, s.fetch(ctx, update.URL))
				return
			}
		}
	}
}

// fetch loads options, treating every failure as an empty list.
func (s *Session) fetch(ctx context.Context, url string) []model.Option {
	if s.fetcher == nil {
		s.logger.Debug("no option fetcher configured", zap.String("url", url))
		return nil
	}
	opts, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("option fetch failed, continuing without options", zap.String("url", url), zap.Error(err))
		return nil
	}
	return opts
}

// valueOf finds the stored value of a field by name across steps.
func (s *Session) valueOf(name string) (any, bool) {
	for _, ref := range s.def.Lookup(name) {
		if value, ok := s.store.Value(ref.Step, name); ok && !validation.IsEmpty(value) {
			return value, true
		}
	}
	return nil, false
}

// substitution is the text a parent value contributes to a dependent URL:
// the option label when the value picks one of the parent's options, the raw
// value otherwise.
func (s *Session) substitution(parent string, value any) any {
	refs := s.def.Lookup(parent)
	if len(refs) == 0 || !refs[0].Field.Type.IsChoice() {
		return value
	}
	opts := s.Options(refs[0].Step, parent)
	if id, ok := validation.OptionID(value); ok {
		for _, opt := range opts {
			if opt.ID == id {
				return opt.Value
			}
		}
	}
	return value
}

// propagate refreshes the options of fields depending on parent and resets
// dependent values that are no longer among their options.
func (s *Session) propagate(ctx context.Context, parent string, value any) error {
	updates, err := s.resolver.Resolve(parent, s.substitution(parent, value))
	if err != nil {
		return err
	}
	for _, update := range updates {
		for _, ref := range s.def.Lookup(update.DependentField) {
			var opts []model.Option
			if !update.Clear {
				opts = s.fetch(ctx, update.URL)
			}
			s.setOptions(ref.Step, ref.Field.Name, opts)

			current, ok := s.store.Value(ref.Step, ref.Field.Name)
			if !ok || validation.IsEmpty(current) || offered(current, opts) {
				continue
			}
			if owner, mounted := s.Owner(ref.Step, ref.Field.Name); mounted {
				if err := owner.clear(ctx); err != nil {
					return err
				}
				continue
			}
			result := validation.EvaluateField(ref.Field, nil, opts)
			s.store.UpdateField(ref.Step, ref.Field.Name, nil, result.Valid)
			metrics.FieldUpdatesTotal.Inc()
			if err := s.propagate(ctx, ref.Field.Name, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func offered(value any, opts []model.Option) bool {
	if len(opts) == 0 {
		return false
	}
	ids := []any{value}
	if list, ok := value.([]any); ok {
		ids = list
	}
	for _, item := range ids {
		id, ok := validation.OptionID(item)
		if !ok {
			return false
		}
		found := false
		for _, opt := range opts {
			if opt.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Close unmounts every step. The store stays readable.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	names := make([]string, 0, len(s.mounted))
	for name := range s.mounted {
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		s.UnmountStep(name)
	}
	metrics.ActiveSessions.Dec()
}

func sameValue(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
