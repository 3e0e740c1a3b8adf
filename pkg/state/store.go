package state

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ChangeKind names the mutation that produced a Change.
type ChangeKind string

const (
	ChangeInitialize ChangeKind = "initialize"
	ChangeUpdate     ChangeKind = "update"
	ChangeSeed       ChangeKind = "seed"
)

// Change describes one completed mutation. Subscribers read the store again
// for the new values; the mutation is fully applied before they run.
type Change struct {
	Kind   ChangeKind
	Step   string
	Fields []string
}

// Snapshot is a deep copy of the whole store.
type Snapshot struct {
	Values   map[string]map[string]any  `json:"values"`
	Validity map[string]map[string]bool `json:"validity"`
}

// Store tracks per-step field values and validity for one form session. A
// single mutex guards both maps so a value and its validity are always
// observed together.
type Store struct {
	mu       sync.RWMutex
	values   map[string]map[string]any
	validity map[string]map[string]bool

	subMu  sync.Mutex
	nextID uint64
	subs   map[uint64]func(Change)

	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger logs every mutation at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		values:   make(map[string]map[string]any),
		validity: make(map[string]map[string]bool),
		subs:     make(map[uint64]func(Change)),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it. Subscribers run synchronously on the mutating goroutine
// after the store lock is released, in subscription order.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(change Change) {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

// InitializeStepValidity marks every named field of step as valid unless it
// already has an entry. Existing entries are never overwritten, so mounting
// a step twice is harmless. Subscribers are notified only when an entry was
// added.
func (s *Store) InitializeStepValidity(step string, fields ...string) {
	s.mu.Lock()
	entries, ok := s.validity[step]
	if !ok {
		entries = make(map[string]bool, len(fields))
		s.validity[step] = entries
	}
	var added []string
	for _, field := range fields {
		if _, exists := entries[field]; exists {
			continue
		}
		entries[field] = true
		added = append(added, field)
	}
	s.mu.Unlock()

	if len(added) == 0 {
		return
	}
	s.logger.Debug("step validity initialized", zap.String("step", step), zap.Strings("fields", added))
	s.notify(Change{Kind: ChangeInitialize, Step: step, Fields: added})
}

// UpdateField stores value and validity for one field as a single mutation
// and notifies subscribers exactly once.
func (s *Store) UpdateField(step, field string, value any, valid bool) {
	s.mu.Lock()
	values, ok := s.values[step]
	if !ok {
		values = make(map[string]any)
		s.values[step] = values
	}
	entries, ok := s.validity[step]
	if !ok {
		entries = make(map[string]bool)
		s.validity[step] = entries
	}
	values[field] = deepCopy(value)
	entries[field] = valid
	s.mu.Unlock()

	s.logger.Debug("field updated", zap.String("step", step), zap.String("field", field), zap.Bool("valid", valid))
	s.notify(Change{Kind: ChangeUpdate, Step: step, Fields: []string{field}})
}

// Seed writes initial values for fields that have no value yet. Validity is
// left untouched.
func (s *Store) Seed(step string, defaults map[string]any) {
	s.mu.Lock()
	values, ok := s.values[step]
	if !ok {
		values = make(map[string]any, len(defaults))
	}
	var seeded []string
	for field, value := range defaults {
		if _, exists := values[field]; exists {
			continue
		}
		values[field] = deepCopy(value)
		seeded = append(seeded, field)
	}
	if len(seeded) > 0 {
		s.values[step] = values
	}
	s.mu.Unlock()

	if len(seeded) == 0 {
		return
	}
	sort.Strings(seeded)
	s.notify(Change{Kind: ChangeSeed, Step: step, Fields: seeded})
}

// IsStepValid reports whether step has at least one validity entry and all
// of them are true. Unknown steps are not valid.
func (s *Store) IsStepValid(step string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.validity[step]
	if len(entries) == 0 {
		return false
	}
	for _, valid := range entries {
		if !valid {
			return false
		}
	}
	return true
}

// Validity returns a copy of the validity entries of step.
func (s *Store) Validity(step string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.validity[step]
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(entries))
	for field, valid := range entries {
		out[field] = valid
	}
	return out
}

// Value returns the stored value of one field.
func (s *Store) Value(step, field string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[step][field]
	if !ok {
		return nil, false
	}
	return deepCopy(value), true
}

// StepData returns a copy of the values of step, or false when the step was
// never written.
func (s *Store) StepData(step string) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.values[step]
	if !ok {
		return nil, false
	}
	return cloneValues(values), true
}

// AllData returns a copy of every step's values.
func (s *Store) AllData() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]any, len(s.values))
	for step, values := range s.values {
		out[step] = cloneValues(values)
	}
	return out
}

// Snapshot returns a deep copy of values and validity.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Values:   make(map[string]map[string]any, len(s.values)),
		Validity: make(map[string]map[string]bool, len(s.validity)),
	}
	for step, values := range s.values {
		snap.Values[step] = cloneValues(values)
	}
	for step, entries := range s.validity {
		copied := make(map[string]bool, len(entries))
		for field, valid := range entries {
			copied[field] = valid
		}
		snap.Validity[step] = copied
	}
	return snap
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []int:
		return append([]int(nil), typed...)
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}
