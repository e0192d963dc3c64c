// Package tui is a terminal view over a single timer.Engine.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"studyhub/internal/notify"
	"studyhub/internal/timer"
)

const (
	defaultProgressWidth = 40
	helpLine             = "[space]start/pause [r]reset [1]focus [2]short [3]long [e]edit [q]quit"
)

// TickMsg is one clock tick. ID identifies the tick chain that produced it;
// ticks from a superseded chain are dropped.
type TickMsg struct {
	ID int
	At time.Time
}

// SettingsMsg carries a settings replacement from the provider.
type SettingsMsg timer.Settings

type Options struct {
	Settings timer.SettingsProvider
	Recorder timer.SessionRecorder
	// SaveSettings persists settings edited in the view. Optional.
	SaveSettings func(timer.Settings) error
	TickInterval time.Duration
	Now          func() time.Time
}

// inbox collects engine notifications raised during one Update.
type inbox struct {
	kinds []timer.EventKind
}

func (b *inbox) Notify(kind timer.EventKind) {
	b.kinds = append(b.kinds, kind)
}

func (b *inbox) drain() []timer.EventKind {
	kinds := b.kinds
	b.kinds = nil
	return kinds
}

type Model struct {
	engine       *timer.Engine
	notes        *inbox
	provider     timer.SettingsProvider
	saveSettings func(timer.Settings) error
	interval     time.Duration
	now          func() time.Time

	tickID   int
	progress progress.Model
	input    textinput.Model
	editing  bool
	message  string
	failure  string
	width    int
	quitting bool
}

func New(opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	settings := timer.DefaultSettings()
	if opts.Settings != nil {
		settings = opts.Settings.CurrentSettings()
	}

	notes := &inbox{}
	input := textinput.New()
	input.Placeholder = "25"
	input.CharLimit = 3
	input.Prompt = "Focus minutes: "

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = defaultProgressWidth

	return Model{
		engine:       timer.NewEngine(settings, opts.Recorder, notes, timer.WithNow(opts.Now)),
		notes:        notes,
		provider:     opts.Settings,
		saveSettings: opts.SaveSettings,
		interval:     opts.TickInterval,
		now:          opts.Now,
		progress:     bar,
		input:        input,
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSettings(m.provider)
}

// State exposes the engine state for callers that render outside the view.
func (m Model) State() timer.State {
	return m.engine.State()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		target := msg.Width - 12
		if target > defaultProgressWidth {
			target = defaultProgressWidth
		}
		if target < 10 {
			target = 10
		}
		m.progress.Width = target
		return m, nil

	case TickMsg:
		return m.handleTick(msg)

	case SettingsMsg:
		m.engine.ApplySettings(timer.Settings(msg))
		m.message = "Settings reloaded."
		return m, waitForSettings(m.provider)

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleTick(msg TickMsg) (Model, tea.Cmd) {
	if msg.ID != m.tickID || !m.engine.State().Running {
		return m, nil
	}
	state := m.engine.Tick()
	m.collectNotes()
	if !state.Running {
		return m, nil
	}
	return m, m.scheduleTick()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "s":
		if m.engine.State().Running {
			m.engine.Pause()
		} else {
			m.engine.Start()
		}
	case "r":
		m.engine.Reset()
	case "1":
		m.engine.SkipToMode(timer.ModeFocus)
	case "2":
		m.engine.SkipToMode(timer.ModeShortBreak)
	case "3":
		m.engine.SkipToMode(timer.ModeLongBreak)
	case "e":
		m.editing = true
		m.failure = ""
		m.input.SetValue(strconv.Itoa(m.engine.Settings().FocusSeconds / 60))
		return m, m.input.Focus()
	default:
		return m, nil
	}
	m.failure = ""
	return m, m.restartTicks()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		minutes, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil || minutes <= 0 {
			m.failure = "Focus length must be a positive number of minutes."
			return m, nil
		}
		settings := m.engine.Settings()
		settings.FocusSeconds = minutes * 60
		if m.saveSettings != nil {
			if err := m.saveSettings(settings); err != nil {
				m.failure = fmt.Sprintf("Could not save settings: %v", err)
				return m, nil
			}
		}
		m.engine.ApplySettings(settings)
		m.message = fmt.Sprintf("Focus length set to %d minutes.", minutes)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// restartTicks supersedes any pending tick chain and starts a new one when
// the engine is running, so exactly one chain is ever live.
func (m *Model) restartTicks() tea.Cmd {
	m.tickID++
	if !m.engine.State().Running {
		return nil
	}
	return m.scheduleTick()
}

func (m Model) scheduleTick() tea.Cmd {
	id := m.tickID
	return tea.Tick(m.interval, func(at time.Time) tea.Msg {
		return TickMsg{ID: id, At: at}
	})
}

func (m *Model) collectNotes() {
	for _, kind := range m.notes.drain() {
		m.message = notify.MessageFor(kind)
	}
}

func waitForSettings(provider timer.SettingsProvider) tea.Cmd {
	if provider == nil {
		return nil
	}
	changes := provider.Changes()
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		settings, ok := <-changes
		if !ok {
			return nil
		}
		return SettingsMsg(settings)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	state := m.engine.State()
	color := modeColor(state.Mode)

	lines := []string{
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(modeLabel(state.Mode)),
		"",
		clockStyle.Foreground(color).Render(formatClock(state.RemainingSeconds)),
		m.progress.ViewAs(elapsedFraction(state)),
		statusStyle.Render(fmt.Sprintf("%s  %s", state.Status(), cycleDots(state.CompletedFocusCount, m.engine.Settings().LongBreakInterval))),
	}
	if m.editing {
		lines = append(lines, "", m.input.View())
	}
	if m.message != "" {
		lines = append(lines, "", messageStyle.Render(m.message))
	}
	if m.failure != "" {
		lines = append(lines, errorStyle.Render(m.failure))
	}
	lines = append(lines, "", helpStyle.Render(helpLine))

	if m.width > 0 {
		limit := m.width - 8
		if limit < 10 {
			limit = 10
		}
		for i, line := range lines {
			if ansi.StringWidth(line) > limit {
				lines[i] = ansi.Truncate(line, limit, "…")
			}
		}
	}
	return frameStyle.BorderForeground(color).Render(strings.Join(lines, "\n")) + "\n"
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func elapsedFraction(state timer.State) float64 {
	if state.IntervalSeconds <= 0 {
		return 1
	}
	elapsed := state.IntervalSeconds - state.RemainingSeconds
	return float64(elapsed) / float64(state.IntervalSeconds)
}

// cycleDots shows progress towards the next long break.
func cycleDots(completed, interval int) string {
	if interval <= 0 {
		return ""
	}
	filled := completed % interval
	if completed > 0 && filled == 0 {
		filled = interval
	}
	return strings.Repeat("●", filled) + strings.Repeat("○", interval-filled)
}
