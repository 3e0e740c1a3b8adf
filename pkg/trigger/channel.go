package trigger

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Signal is delivered to every subscriber on Trigger and Reset. Reset
// signals carry an empty Step.
type Signal struct {
	Step  string
	Reset bool
}

// Reaction handles one signal. Field owners compare Signal.Step with their
// own step and ignore everything else.
type Reaction func(ctx context.Context, sig Signal) error

// Channel broadcasts "validate now" cues addressed by step name.
type Channel struct {
	mu      sync.Mutex
	current string
	active  bool
	nextID  uint64
	subs    map[uint64]Reaction

	limit      int
	sequential bool
	logger     *zap.Logger
	observe    func(step string)
}

// Option configures a Channel.
type Option func(*Channel)

// WithConcurrency caps how many reactions run at once during one dispatch.
// Zero or negative means no cap.
func WithConcurrency(n int) Option {
	return func(c *Channel) {
		c.limit = n
	}
}

// WithSequentialDispatch runs reactions one after another on the calling
// goroutine, in subscription order.
func WithSequentialDispatch() Option {
	return func(c *Channel) {
		c.sequential = true
	}
}

// WithLogger logs dispatches and reaction failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver is called with the step name of every Trigger before
// dispatch.
func WithObserver(fn func(step string)) Option {
	return func(c *Channel) {
		c.observe = fn
	}
}

// New returns a channel with no pending cue.
func New(opts ...Option) *Channel {
	c := &Channel{
		subs:   make(map[uint64]Reaction),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Subscribe registers fn and returns a function removing it. Signals
// dispatched after removal no longer reach fn.
func (c *Channel) Subscribe(fn Reaction) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Current returns the pending step cue, if any.
func (c *Channel) Current() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.active
}

// Trigger sets the cue to step, dispatches it to every subscriber and
// returns once all reactions have finished. Reaction errors are joined.
func (c *Channel) Trigger(ctx context.Context, step string) error {
	if step == "" {
		return errors.New("trigger: step name is required")
	}
	c.mu.Lock()
	c.current, c.active = step, true
	reactions := c.snapshot()
	c.mu.Unlock()

	if c.observe != nil {
		c.observe(step)
	}
	c.logger.Debug("validation triggered", zap.String("step", step), zap.Int("subscribers", len(reactions)))
	return c.dispatch(ctx, Signal{Step: step}, reactions)
}

// Reset clears the cue and notifies subscribers. It does not undo updates
// already applied by earlier reactions.
func (c *Channel) Reset() {
	c.mu.Lock()
	c.current, c.active = "", false
	reactions := c.snapshot()
	c.mu.Unlock()

	if err := c.dispatch(context.Background(), Signal{Reset: true}, reactions); err != nil {
		c.logger.Warn("reset reaction failed", zap.Error(err))
	}
}

func (c *Channel) snapshot() []Reaction {
	ids := make([]uint64, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	reactions := make([]Reaction, 0, len(ids))
	for _, id := range ids {
		reactions = append(reactions, c.subs[id])
	}
	return reactions
}

func (c *Channel) dispatch(ctx context.Context, sig Signal, reactions []Reaction) error {
	if len(reactions) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	collect := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	if c.sequential {
		for _, react := range reactions {
			if err := ctx.Err(); err != nil {
				return err
			}
			collect(react(ctx, sig))
		}
		return errors.Join(errs...)
	}

	// counted barrier; errors are collected so siblings keep running
	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for _, react := range reactions {
		g.Go(func() error {
			collect(react(ctx, sig))
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		c.logger.Warn("validation reactions failed", zap.String("step", sig.Step), zap.Int("failures", len(errs)))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	return ctx.Err()
}
