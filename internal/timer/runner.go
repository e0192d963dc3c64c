package timer

import (
	"context"
	"errors"
	"time"
)

// ErrRunnerStopped is returned by commands issued after Run has returned.
var ErrRunnerStopped = errors.New("timer runner stopped")

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithClock replaces the system clock.
func WithClock(clock Clock) RunnerOption {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithTickInterval sets the wall-clock period of one tick.
func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// Runner is the clock source for one Engine. It owns the engine on the
// goroutine executing Run; ticks and commands are processed one at a time,
// and a ticker only exists while the engine is running.
type Runner struct {
	engine   *Engine
	clock    Clock
	interval time.Duration
	commands chan command
	done     chan struct{}
}

type command struct {
	apply func(*Engine)
	reply chan State
}

func NewRunner(engine *Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:   engine,
		clock:    SystemClock(),
		interval: time.Second,
		commands: make(chan command),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes ticks and commands until ctx is cancelled. It must be
// called exactly once.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	var ticker Ticker
	var ticks <-chan time.Time
	syncTicker := func() {
		running := r.engine.State().Running
		switch {
		case running && ticker == nil:
			ticker = r.clock.NewTicker(r.interval)
			ticks = ticker.C()
		case !running && ticker != nil:
			ticker.Stop()
			ticker, ticks = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	syncTicker()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			r.engine.Tick()
			syncTicker()
		case cmd := <-r.commands:
			if cmd.apply != nil {
				cmd.apply(r.engine)
			}
			syncTicker()
			cmd.reply <- r.engine.State()
		}
	}
}

// Done is closed once Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) State(ctx context.Context) (State, error) {
	return r.do(ctx, nil)
}

func (r *Runner) Settings(ctx context.Context) (Settings, error) {
	var settings Settings
	_, err := r.do(ctx, func(e *Engine) {
		settings = e.Settings()
	})
	return settings, err
}

func (r *Runner) Start(ctx context.Context) (State, error) {
	return r.do(ctx, (*Engine).Start)
}

func (r *Runner) Pause(ctx context.Context) (State, error) {
	return r.do(ctx, (*Engine).Pause)
}

func (r *Runner) Reset(ctx context.Context) (State, error) {
	return r.do(ctx, (*Engine).Reset)
}

func (r *Runner) SkipToMode(ctx context.Context, mode Mode) (State, error) {
	return r.do(ctx, func(e *Engine) {
		e.SkipToMode(mode)
	})
}

func (r *Runner) ApplySettings(ctx context.Context, settings Settings) (State, error) {
	return r.do(ctx, func(e *Engine) {
		e.ApplySettings(settings)
	})
}

func (r *Runner) do(ctx context.Context, apply func(*Engine)) (State, error) {
	cmd := command{apply: apply, reply: make(chan State, 1)}
	select {
	case r.commands <- cmd:
	case <-r.done:
		return State{}, ErrRunnerStopped
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
	// An accepted command is always answered before Run can return.
	return <-cmd.reply, nil
}
