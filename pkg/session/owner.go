package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/metrics"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/model"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/trigger"
	"github.com/Dun-Njuguna/form-steward-sub000/pkg/validation"
)

// FieldOwner holds the raw input of one mounted field. It writes only its own
// store entry and validates itself when the trigger channel names its step.
type FieldOwner struct {
	session *Session
	step    string
	field   model.Field

	mu          sync.Mutex
	raw         any
	result      validation.Result
	evaluated   bool
	unsubscribe func()
}

// Step returns the name of the owning step.
func (o *FieldOwner) Step() string { return o.step }

// Field returns the field definition.
func (o *FieldOwner) Field() model.Field { return o.field }

// Value returns the current raw value.
func (o *FieldOwner) Value() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.raw
}

// Result returns the latest evaluation and whether one ran yet.
func (o *FieldOwner) Result() (validation.Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result, o.evaluated
}

// Valid reports the latest evaluation. Fields not evaluated yet count as valid.
func (o *FieldOwner) Valid() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.evaluated || o.result.Valid
}

// Message returns the user facing error of the latest evaluation, if any.
func (o *FieldOwner) Message() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.evaluated || o.result.Valid {
		return ""
	}
	return o.result.Message
}

// Options returns the options currently offered for the field.
func (o *FieldOwner) Options() []model.Option {
	return o.session.Options(o.step, o.field.Name)
}

// Change records new input. While the user is still editing (finished false)
// the value is stored next to the previous validity. A finished edit is
// evaluated, stored together with its validity and, when the value differs
// from the stored one, propagated to dependent fields.
func (o *FieldOwner) Change(ctx context.Context, value any, finished bool) error {
	s := o.session
	previous, _ := s.store.Value(o.step, o.field.Name)

	o.mu.Lock()
	o.raw = value
	if !finished {
		valid := s.store.Validity(o.step)[o.field.Name]
		o.mu.Unlock()
		s.store.UpdateField(o.step, o.field.Name, value, valid)
		return nil
	}
	result := o.evaluateLocked()
	o.mu.Unlock()

	s.store.UpdateField(o.step, o.field.Name, value, result.Valid)
	metrics.FieldUpdatesTotal.Inc()

	if sameValue(previous, value) {
		return nil
	}
	if err := s.propagate(ctx, o.field.Name, value); err != nil {
		return fmt.Errorf("session: propagate %s: %w", o.field.Name, err)
	}
	return nil
}

// Validate evaluates the current raw value and reports it to the store.
func (o *FieldOwner) Validate(ctx context.Context) validation.Result {
	o.mu.Lock()
	value := o.raw
	result := o.evaluateLocked()
	o.mu.Unlock()

	o.session.store.UpdateField(o.step, o.field.Name, value, result.Valid)
	metrics.FieldUpdatesTotal.Inc()
	return result
}

// Capture asks the configured capturer for media and records the outcome.
// A cancelled or failed capture leaves the field empty.
func (o *FieldOwner) Capture(ctx context.Context) (*Resource, error) {
	s := o.session
	if !o.field.Type.IsMedia() {
		return nil, fmt.Errorf("%w: %s", ErrNotMediaField, o.field.Name)
	}
	if s.capturer == nil {
		return nil, ErrNoCapturer
	}

	res, err := s.capturer.Capture(ctx, o.field)
	if err != nil {
		s.logger.Warn("media capture failed", zap.String("field", o.field.Name), zap.Error(err))
		res = nil
	}
	var value any
	if res.Present() {
		value = res
	}
	if cerr := o.Change(ctx, value, true); cerr != nil {
		return res, cerr
	}
	return res, err
}

// clear drops a value that is no longer among the field's options.
func (o *FieldOwner) clear(ctx context.Context) error {
	o.session.logger.Debug("resetting stale dependent value",
		zap.String("step", o.step), zap.String("field", o.field.Name))
	return o.Change(ctx, nil, true)
}

func (o *FieldOwner) react(ctx context.Context, sig trigger.Signal) error {
	if sig.Reset || sig.Step != o.step {
		return nil
	}
	o.Validate(ctx)
	return nil
}

func (o *FieldOwner) evaluateLocked() validation.Result {
	opts := o.session.Options(o.step, o.field.Name)
	o.result = validation.EvaluateField(o.field, o.raw, opts)
	o.evaluated = true
	return o.result
}
