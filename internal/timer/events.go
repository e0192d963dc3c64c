package timer

import "time"

// EventKind identifies a mode transition surfaced through a Notifier.
type EventKind string

const (
	EventFocusStarted      EventKind = "focus-started"
	EventShortBreakStarted EventKind = "short-break-started"
	EventLongBreakStarted  EventKind = "long-break-started"
)

// EventKindFor returns the notification emitted when mode begins.
func EventKindFor(mode Mode) EventKind {
	switch mode {
	case ModeShortBreak:
		return EventShortBreakStarted
	case ModeLongBreak:
		return EventLongBreakStarted
	default:
		return EventFocusStarted
	}
}

//go:generate mockgen -source=events.go -destination=mock_events_test.go -package=timer

// SessionRecorder persists completed focus intervals. Implementations must
// not block; the engine never learns whether recording succeeded.
type SessionRecorder interface {
	RecordFocusSession(durationSeconds int, completedAt time.Time)
}

// Notifier surfaces mode transitions to the user.
type Notifier interface {
	Notify(kind EventKind)
}

// SettingsProvider supplies settings snapshots and announces replacements.
type SettingsProvider interface {
	CurrentSettings() Settings
	Changes() <-chan Settings
}

// RecorderFunc adapts a function to SessionRecorder.
type RecorderFunc func(durationSeconds int, completedAt time.Time)

func (f RecorderFunc) RecordFocusSession(durationSeconds int, completedAt time.Time) {
	f(durationSeconds, completedAt)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind EventKind)

func (f NotifierFunc) Notify(kind EventKind) {
	f(kind)
}
