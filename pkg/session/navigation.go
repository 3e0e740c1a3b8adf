package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/Dun-Njuguna/form-steward-sub000/pkg/metrics"
)

// Transition describes the outcome of a navigation request.
type Transition struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Advanced bool     `json:"advanced"`
	Complete bool     `json:"complete,omitempty"`
	Invalid  []string `json:"invalid,omitempty"`
}

// Next validates the current step and moves to the following one when every
// field of the step is valid. On the last step a valid result sets Complete
// and the session stays where it is.
func (s *Session) Next(ctx context.Context) (Transition, error) {
	from := s.CurrentStep()
	tr := Transition{From: from.Name, To: from.Name}

	valid, err := s.ValidateStep(ctx, from.Name)
	if err != nil {
		return tr, err
	}
	if !valid {
		tr.Invalid = s.invalidFields(from.Name)
		metrics.StepTransitionsTotal.WithLabelValues(metrics.ResultBlocked).Inc()
		s.logger.Debug("step blocked", zap.String("step", from.Name), zap.Strings("invalid", tr.Invalid))
		return tr, nil
	}

	s.mu.Lock()
	index := s.current
	last := index == len(s.def.Steps)-1
	if !last {
		s.current = index + 1
	}
	s.mu.Unlock()

	if last {
		tr.Complete = true
		return tr, nil
	}

	to := s.def.Steps[index+1]
	s.UnmountStep(from.Name)
	if _, err := s.MountStep(ctx, to.Name); err != nil {
		return tr, err
	}
	tr.To, tr.Advanced = to.Name, true
	metrics.StepTransitionsTotal.WithLabelValues(metrics.ResultAdvanced).Inc()
	s.logger.Debug("step advanced", zap.String("from", from.Name), zap.String("to", to.Name))
	return tr, nil
}

// Previous moves back one step without validating. Values entered on the
// step being left stay in the store.
func (s *Session) Previous(ctx context.Context) (Transition, error) {
	s.mu.Lock()
	index := s.current
	if index > 0 {
		s.current = index - 1
	}
	s.mu.Unlock()

	from := s.def.Steps[index]
	tr := Transition{From: from.Name, To: from.Name}
	if index == 0 {
		return tr, nil
	}

	to := s.def.Steps[index-1]
	s.UnmountStep(from.Name)
	if _, err := s.MountStep(ctx, to.Name); err != nil {
		return tr, err
	}
	tr.To, tr.Advanced = to.Name, true
	metrics.StepTransitionsTotal.WithLabelValues(metrics.ResultBack).Inc()
	return tr, nil
}

// Submit validates the current step, re-evaluates the stored values of every
// other visited step and returns every step's values when the whole form is
// valid. Steps never visited count as invalid.
func (s *Session) Submit(ctx context.Context) (map[string]map[string]any, error) {
	current := s.CurrentStep()
	if _, err := s.ValidateStep(ctx, current.Name); err != nil {
		return nil, err
	}

	var invalid []string
	for _, step := range s.def.Steps {
		if step.Name != current.Name {
			s.revalidate(step)
		}
		if !s.store.IsStepValid(step.Name) {
			invalid = append(invalid, step.Name)
		}
	}
	if len(invalid) > 0 {
		metrics.StepTransitionsTotal.WithLabelValues(metrics.ResultBlocked).Inc()
		return nil, &IncompleteError{Steps: invalid}
	}

	metrics.StepTransitionsTotal.WithLabelValues(metrics.ResultSubmitted).Inc()
	s.logger.Info("form submitted", zap.Int("steps", len(s.def.Steps)))
	return s.store.AllData(), nil
}

// invalidFields lists the fields of step currently reported invalid, in
// declaration order.
func (s *Session) invalidFields(name string) []string {
	step, _, ok := s.def.Step(name)
	if !ok {
		return nil
	}
	validity := s.store.Validity(name)
	var out []string
	for _, field := range step.Fields {
		if valid, ok := validity[field.Name]; ok && !valid {
			out = append(out, field.Name)
		}
	}
	return out
}
