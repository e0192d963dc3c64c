package timer

import "time"

const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusPaused  = "paused"
)

// State is the engine's observable state.
type State struct {
	Mode                Mode `json:"mode"`
	RemainingSeconds    int  `json:"remainingSeconds"`
	Running             bool `json:"running"`
	CompletedFocusCount int  `json:"completedFocusCount"`
	// IntervalSeconds is the length the current interval started with.
	IntervalSeconds int `json:"intervalSeconds"`
}

// Status reports idle for an untouched interval, paused for a partially
// elapsed one.
func (s State) Status() string {
	switch {
	case s.Running:
		return StatusRunning
	case s.RemainingSeconds == s.IntervalSeconds:
		return StatusIdle
	default:
		return StatusPaused
	}
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithNow sets the source of completion timestamps handed to the recorder.
func WithNow(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine converts ticks into countdown progress and mode transitions.
type Engine struct {
	settings Settings
	state    State
	recorder SessionRecorder
	notifier Notifier
	now      func() time.Time
}

// NewEngine creates an idle engine in focus mode. recorder and notifier may
// be nil.
func NewEngine(settings Settings, recorder SessionRecorder, notifier Notifier, opts ...EngineOption) *Engine {
	e := &Engine{
		settings: settings,
		recorder: recorder,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state.Mode = ModeFocus
	e.load(ModeFocus)
	return e
}

func (e *Engine) State() State {
	return e.state
}

func (e *Engine) Settings() Settings {
	return e.settings
}

func (e *Engine) Start() {
	e.state.Running = true
}

func (e *Engine) Pause() {
	e.state.Running = false
}

// Reset stops the countdown and refills the current mode. The completed
// focus count is kept.
func (e *Engine) Reset() {
	e.state.Running = false
	e.load(e.state.Mode)
}

// SkipToMode switches modes manually without counting a completed interval.
func (e *Engine) SkipToMode(mode Mode) {
	e.state.Running = false
	e.state.Mode = mode
	e.load(mode)
}

// ApplySettings replaces the settings snapshot. A stopped countdown is
// refilled immediately; a running one keeps its remaining time until the
// next transition or reset.
func (e *Engine) ApplySettings(settings Settings) {
	e.settings = settings
	if !e.state.Running {
		e.load(e.state.Mode)
	}
}

// Tick advances the countdown by one second. It is a no-op while stopped.
func (e *Engine) Tick() State {
	if !e.state.Running {
		return e.state
	}
	if e.state.RemainingSeconds > 1 {
		e.state.RemainingSeconds--
		return e.state
	}

	e.state.Running = false
	if e.state.Mode == ModeFocus {
		e.completeFocus()
	} else {
		e.enter(ModeFocus)
		e.state.Running = e.settings.AutoStartFocus
	}
	return e.state
}

func (e *Engine) completeFocus() {
	e.state.CompletedFocusCount++
	if e.recorder != nil {
		e.recorder.RecordFocusSession(e.state.IntervalSeconds, e.now())
	}

	next := ModeShortBreak
	if interval := e.settings.LongBreakInterval; interval > 0 && e.state.CompletedFocusCount%interval == 0 {
		next = ModeLongBreak
	}
	e.enter(next)
	e.state.Running = e.settings.AutoStartBreaks
}

func (e *Engine) enter(mode Mode) {
	e.state.Mode = mode
	e.load(mode)
	if e.notifier != nil {
		e.notifier.Notify(EventKindFor(mode))
	}
}

func (e *Engine) load(mode Mode) {
	duration := e.settings.DurationFor(mode)
	if duration < 0 {
		duration = 0
	}
	e.state.RemainingSeconds = duration
	e.state.IntervalSeconds = duration
}
