package timer

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
)

func scenarioSettings() Settings {
	return Settings{
		FocusSeconds:      1500,
		ShortBreakSeconds: 300,
		LongBreakSeconds:  900,
		LongBreakInterval: 4,
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
}

func TestNewEngineStartsIdleInFocus(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)

	state := e.State()
	if state.Mode != ModeFocus {
		t.Fatalf("expected focus mode, got %s", state.Mode)
	}
	if state.RemainingSeconds != 1500 || state.IntervalSeconds != 1500 {
		t.Fatalf("expected 1500 remaining, got %+v", state)
	}
	if state.Running || state.CompletedFocusCount != 0 {
		t.Fatalf("expected stopped engine with no completions, got %+v", state)
	}
	if state.Status() != StatusIdle {
		t.Fatalf("expected idle status, got %s", state.Status())
	}
}

func TestTickCountsDownByOne(t *testing.T) {
	for _, mode := range []Mode{ModeFocus, ModeShortBreak, ModeLongBreak} {
		e := NewEngine(scenarioSettings(), nil, nil)
		e.SkipToMode(mode)
		e.Start()

		for remaining := e.State().RemainingSeconds; remaining > 1; remaining-- {
			state := e.Tick()
			if state.RemainingSeconds != remaining-1 {
				t.Fatalf("%s: expected %d remaining, got %d", mode, remaining-1, state.RemainingSeconds)
			}
			if state.Mode != mode {
				t.Fatalf("%s: mode changed mid-interval to %s", mode, state.Mode)
			}
		}
	}
}

func TestFocusCompletionPicksBreakByInterval(t *testing.T) {
	for _, interval := range []int{1, 2, 3, 4} {
		for completed := 0; completed < 9; completed++ {
			settings := scenarioSettings()
			settings.LongBreakInterval = interval

			recorded := 0
			e := NewEngine(settings, RecorderFunc(func(int, time.Time) { recorded++ }), nil)
			e.state.CompletedFocusCount = completed
			e.state.RemainingSeconds = 1
			e.Start()

			state := e.Tick()

			if state.CompletedFocusCount != completed+1 {
				t.Fatalf("interval %d, count %d: expected count %d, got %d", interval, completed, completed+1, state.CompletedFocusCount)
			}
			wantMode, wantRemaining := ModeShortBreak, 300
			if (completed+1)%interval == 0 {
				wantMode, wantRemaining = ModeLongBreak, 900
			}
			if state.Mode != wantMode || state.RemainingSeconds != wantRemaining {
				t.Fatalf("interval %d, count %d: expected %s/%d, got %s/%d",
					interval, completed, wantMode, wantRemaining, state.Mode, state.RemainingSeconds)
			}
			if recorded != 1 {
				t.Fatalf("expected exactly one recorded session, got %d", recorded)
			}
		}
	}
}

func TestTickWhileStoppedLeavesStateUntouched(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)
	e.Start()
	e.Tick()
	e.Tick()
	e.Pause()

	before := e.State()
	after := e.Tick()
	if after != before {
		t.Fatalf("expected %+v, got %+v", before, after)
	}

	e.state.RemainingSeconds = 1
	before = e.State()
	if after := e.Tick(); after != before {
		t.Fatalf("paused engine completed an interval: %+v", after)
	}
}

func TestResetTwiceMatchesResetOnce(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)
	e.Start()
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	e.state.CompletedFocusCount = 2

	e.Reset()
	once := e.State()
	e.Reset()
	twice := e.State()

	if once != twice {
		t.Fatalf("expected %+v after second reset, got %+v", once, twice)
	}
	if once.RemainingSeconds != 1500 || once.Running {
		t.Fatalf("unexpected reset state %+v", once)
	}
	if once.CompletedFocusCount != 2 {
		t.Fatalf("reset must keep completed count, got %d", once.CompletedFocusCount)
	}
}

func TestAutoStartBreaks(t *testing.T) {
	for _, auto := range []bool{true, false} {
		settings := scenarioSettings()
		settings.AutoStartBreaks = auto
		e := NewEngine(settings, nil, nil)
		e.state.RemainingSeconds = 1
		e.Start()

		state := e.Tick()
		if state.Running != auto {
			t.Fatalf("autoStartBreaks=%v: expected running=%v, got %v", auto, auto, state.Running)
		}
	}
}

func TestBreakCompletionReturnsToFocus(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := NewMockNotifier(ctrl)
	recorder := NewMockSessionRecorder(ctrl)
	notifier.EXPECT().Notify(EventFocusStarted).Times(2)
	recorder.EXPECT().RecordFocusSession(gomock.Any(), gomock.Any()).Times(0)

	for _, auto := range []bool{true, false} {
		settings := scenarioSettings()
		settings.AutoStartFocus = auto
		e := NewEngine(settings, recorder, notifier)
		e.SkipToMode(ModeLongBreak)
		e.state.RemainingSeconds = 1
		e.Start()

		state := e.Tick()
		if state.Mode != ModeFocus || state.RemainingSeconds != 1500 {
			t.Fatalf("expected fresh focus interval, got %+v", state)
		}
		if state.Running != auto {
			t.Fatalf("autoStartFocus=%v: expected running=%v", auto, auto)
		}
		if state.CompletedFocusCount != 0 {
			t.Fatalf("break completion must not count as focus, got %d", state.CompletedFocusCount)
		}
	}
}

func TestScenarioFirstFocusCompletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := NewMockSessionRecorder(ctrl)
	notifier := NewMockNotifier(ctrl)
	gomock.InOrder(
		recorder.EXPECT().RecordFocusSession(1500, fixedNow()),
		notifier.EXPECT().Notify(EventShortBreakStarted),
	)

	e := NewEngine(scenarioSettings(), recorder, notifier, WithNow(fixedNow))
	e.state.RemainingSeconds = 1
	e.Start()

	state := e.Tick()
	if state.Mode != ModeShortBreak || state.RemainingSeconds != 300 || state.CompletedFocusCount != 1 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestScenarioFourthFocusEarnsLongBreak(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := NewMockSessionRecorder(ctrl)
	notifier := NewMockNotifier(ctrl)
	recorder.EXPECT().RecordFocusSession(1500, gomock.Any())
	notifier.EXPECT().Notify(EventLongBreakStarted)

	e := NewEngine(scenarioSettings(), recorder, notifier)
	e.state.CompletedFocusCount = 3
	e.state.RemainingSeconds = 1
	e.Start()

	state := e.Tick()
	if state.Mode != ModeLongBreak || state.RemainingSeconds != 900 || state.CompletedFocusCount != 4 {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestScenarioSkipToShortBreak(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).Times(0)

	e := NewEngine(scenarioSettings(), nil, notifier)
	e.state.RemainingSeconds = 1200
	e.state.CompletedFocusCount = 2
	e.Start()

	e.SkipToMode(ModeShortBreak)
	state := e.State()
	if state.Mode != ModeShortBreak || state.RemainingSeconds != 300 || state.Running {
		t.Fatalf("unexpected state %+v", state)
	}
	if state.CompletedFocusCount != 2 {
		t.Fatalf("skip must not change completed count, got %d", state.CompletedFocusCount)
	}
}

func TestScenarioApplySettingsWhileStopped(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)

	settings := scenarioSettings()
	settings.FocusSeconds = 1800
	e.ApplySettings(settings)

	if got := e.State().RemainingSeconds; got != 1800 {
		t.Fatalf("expected 1800 remaining, got %d", got)
	}
}

func TestScenarioApplySettingsWhileRunning(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)
	e.Start()
	e.Tick()

	settings := scenarioSettings()
	settings.FocusSeconds = 1800
	settings.ShortBreakSeconds = 120
	e.ApplySettings(settings)

	if got := e.State().RemainingSeconds; got != 1499 {
		t.Fatalf("running countdown changed to %d", got)
	}

	e.state.RemainingSeconds = 1
	state := e.Tick()
	if state.Mode != ModeShortBreak || state.RemainingSeconds != 120 {
		t.Fatalf("new settings should apply at the transition, got %+v", state)
	}
}

func TestApplySettingsWhilePausedRefillsInterval(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)
	e.Start()
	e.Tick()
	e.Pause()

	settings := scenarioSettings()
	settings.FocusSeconds = 600
	e.ApplySettings(settings)

	state := e.State()
	if state.RemainingSeconds != 600 || state.IntervalSeconds != 600 {
		t.Fatalf("expected refilled 600s interval, got %+v", state)
	}
}

func TestStartAndPauseAreIdempotent(t *testing.T) {
	e := NewEngine(scenarioSettings(), nil, nil)
	e.Start()
	e.Tick()
	e.Start()
	if state := e.State(); !state.Running || state.RemainingSeconds != 1499 {
		t.Fatalf("second start must not reset the countdown, got %+v", state)
	}

	e.Pause()
	e.Pause()
	if state := e.State(); state.Running || state.Status() != StatusPaused {
		t.Fatalf("expected paused engine, got %+v", state)
	}
}

func TestZeroLengthFocusCompletesOnFirstTick(t *testing.T) {
	settings := scenarioSettings()
	settings.FocusSeconds = 0
	var got int
	e := NewEngine(settings, RecorderFunc(func(d int, _ time.Time) { got = d }), nil)
	e.Start()

	state := e.Tick()
	if state.Mode != ModeShortBreak || state.CompletedFocusCount != 1 {
		t.Fatalf("expected completed focus, got %+v", state)
	}
	if got != 0 {
		t.Fatalf("expected zero-length session recorded, got %d", got)
	}
}

func TestLongBreakCountsSinceSessionStart(t *testing.T) {
	settings := Settings{
		FocusSeconds:      2,
		ShortBreakSeconds: 1,
		LongBreakSeconds:  1,
		LongBreakInterval: 4,
		AutoStartBreaks:   true,
		AutoStartFocus:    true,
	}
	var kinds []EventKind
	e := NewEngine(settings, nil, NotifierFunc(func(kind EventKind) {
		kinds = append(kinds, kind)
	}))
	e.Start()

	for e.State().CompletedFocusCount < 8 || e.State().Mode != ModeFocus {
		e.Tick()
	}

	want := []EventKind{
		EventShortBreakStarted, EventFocusStarted,
		EventShortBreakStarted, EventFocusStarted,
		EventShortBreakStarted, EventFocusStarted,
		EventLongBreakStarted, EventFocusStarted,
		EventShortBreakStarted, EventFocusStarted,
		EventShortBreakStarted, EventFocusStarted,
		EventShortBreakStarted, EventFocusStarted,
		EventLongBreakStarted, EventFocusStarted,
	}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], kinds[i])
		}
	}
}
