// Package timer contains the Pomodoro state machine and the plumbing that
// delivers one-second ticks to it.
//
// An Engine is single-owner and not safe for concurrent use. Hosts that need
// to drive an Engine from several goroutines wrap it in a Runner, which
// serializes every command and tick onto one goroutine.
package timer

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidSettings is wrapped by Settings.Validate.
var ErrInvalidSettings = errors.New("invalid timer settings")

// Mode is the interval the timer is currently counting down.
type Mode string

const (
	ModeFocus      Mode = "focus"
	ModeShortBreak Mode = "short_break"
	ModeLongBreak  Mode = "long_break"
)

const (
	DefaultFocusSeconds      = 25 * 60
	DefaultShortBreakSeconds = 5 * 60
	DefaultLongBreakSeconds  = 15 * 60
	DefaultLongBreakInterval = 4
)

// ParseMode converts a wire value into a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeFocus, ModeShortBreak, ModeLongBreak:
		return Mode(raw), nil
	}
	return "", fmt.Errorf("unknown mode %q", raw)
}

// Settings is an immutable snapshot of the durations and auto-continue
// flags the engine runs with.
type Settings struct {
	FocusSeconds      int  `json:"focusSeconds"`
	ShortBreakSeconds int  `json:"shortBreakSeconds"`
	LongBreakSeconds  int  `json:"longBreakSeconds"`
	LongBreakInterval int  `json:"longBreakInterval"`
	AutoStartBreaks   bool `json:"autoStartBreaks"`
	AutoStartFocus    bool `json:"autoStartFocus"`
}

// DefaultSettings returns the classic 25/5/15 schedule with a long break
// after every fourth focus interval.
func DefaultSettings() Settings {
	return Settings{
		FocusSeconds:      DefaultFocusSeconds,
		ShortBreakSeconds: DefaultShortBreakSeconds,
		LongBreakSeconds:  DefaultLongBreakSeconds,
		LongBreakInterval: DefaultLongBreakInterval,
	}
}

// Validate reports whether all durations are positive and the long break
// interval is at least one. The engine itself never calls it.
func (s Settings) Validate() error {
	switch {
	case s.FocusSeconds <= 0:
		return fmt.Errorf("%w: focus duration must be positive", ErrInvalidSettings)
	case s.ShortBreakSeconds <= 0:
		return fmt.Errorf("%w: short break duration must be positive", ErrInvalidSettings)
	case s.LongBreakSeconds <= 0:
		return fmt.Errorf("%w: long break duration must be positive", ErrInvalidSettings)
	case s.LongBreakInterval < 1:
		return fmt.Errorf("%w: long break interval must be at least 1", ErrInvalidSettings)
	}
	return nil
}

// DurationFor returns the configured length of mode in seconds.
func (s Settings) DurationFor(mode Mode) int {
	switch mode {
	case ModeShortBreak:
		return s.ShortBreakSeconds
	case ModeLongBreak:
		return s.LongBreakSeconds
	default:
		return s.FocusSeconds
	}
}

// SettingsFeed is an in-memory SettingsProvider. Publish replaces the
// current snapshot and signals Changes; a reader that falls behind only
// ever sees the latest value.
type SettingsFeed struct {
	mu      sync.Mutex
	current Settings
	changes chan Settings
}

// NewSettingsFeed creates a feed holding initial.
func NewSettingsFeed(initial Settings) *SettingsFeed {
	return &SettingsFeed{
		current: initial,
		changes: make(chan Settings, 1),
	}
}

// CurrentSettings returns the latest published snapshot.
func (f *SettingsFeed) CurrentSettings() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Changes delivers each newly published snapshot.
func (f *SettingsFeed) Changes() <-chan Settings {
	return f.changes
}

// Publish validates settings and makes them current.
func (f *SettingsFeed) Publish(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = settings
	select {
	case <-f.changes:
	default:
	}
	f.changes <- settings
	return nil
}
