package service

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "studyhub/internal/errors"
	"studyhub/internal/model"
	"studyhub/internal/notify"
	"studyhub/internal/repository"
	"studyhub/internal/timer"
)

const (
	defaultIdleTTL         = time.Hour
	defaultCleanupInterval = 5 * time.Minute
	eventBuffer            = 8
)

// TimerServiceOption customizes a TimerService.
type TimerServiceOption func(*TimerService)

// WithTimerClock drives runners and idle eviction from clock.
func WithTimerClock(clock timer.Clock) TimerServiceOption {
	return func(s *TimerService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIdleTTL sets how long a stopped timer stays in memory after its last
// command.
func WithIdleTTL(ttl time.Duration) TimerServiceOption {
	return func(s *TimerService) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithCleanupInterval sets how often idle timers are evicted.
func WithCleanupInterval(d time.Duration) TimerServiceOption {
	return func(s *TimerService) {
		if d > 0 {
			s.cleanupInterval = d
		}
	}
}

// TimerService hosts one engine per user, each owned by its own Runner.
// Users without stored settings start from the defaults provider's current
// snapshot.
type TimerService struct {
	settingsRepo    *repository.SettingsRepository
	writer          *SessionWriter
	broker          *notify.Broker
	defaults        timer.SettingsProvider
	clock           timer.Clock
	idleTTL         time.Duration
	cleanupInterval time.Duration

	mu      sync.Mutex
	runners map[string]*hostedRunner
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type hostedRunner struct {
	runner   *timer.Runner
	cancel   context.CancelFunc
	lastUsed time.Time
}

type StateView struct {
	Mode                timer.Mode `json:"mode"`
	Status              string     `json:"status"`
	Running             bool       `json:"running"`
	RemainingSeconds    int        `json:"remainingSeconds"`
	IntervalSeconds     int        `json:"intervalSeconds"`
	CompletedFocusCount int        `json:"completedFocusCount"`
	ServerTime          time.Time  `json:"serverTime"`
}

func NewTimerService(
	settingsRepo *repository.SettingsRepository,
	writer *SessionWriter,
	broker *notify.Broker,
	defaults timer.SettingsProvider,
	opts ...TimerServiceOption,
) *TimerService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &TimerService{
		settingsRepo:    settingsRepo,
		writer:          writer,
		broker:          broker,
		defaults:        defaults,
		clock:           timer.SystemClock(),
		idleTTL:         defaultIdleTTL,
		cleanupInterval: defaultCleanupInterval,
		runners:         make(map[string]*hostedRunner),
		ctx:             ctx,
		cancel:          cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

func (s *TimerService) GetState(ctx context.Context, userID string) (*StateView, *apperrors.APIError) {
	return s.command(ctx, userID, func(r *timer.Runner) (timer.State, error) {
		return r.State(ctx)
	})
}

func (s *TimerService) Start(ctx context.Context, userID string) (*StateView, *apperrors.APIError) {
	return s.command(ctx, userID, func(r *timer.Runner) (timer.State, error) {
		return r.Start(ctx)
	})
}

func (s *TimerService) Pause(ctx context.Context, userID string) (*StateView, *apperrors.APIError) {
	return s.command(ctx, userID, func(r *timer.Runner) (timer.State, error) {
		return r.Pause(ctx)
	})
}

func (s *TimerService) Reset(ctx context.Context, userID string) (*StateView, *apperrors.APIError) {
	return s.command(ctx, userID, func(r *timer.Runner) (timer.State, error) {
		return r.Reset(ctx)
	})
}

func (s *TimerService) SwitchMode(ctx context.Context, userID, rawMode string) (*StateView, *apperrors.APIError) {
	mode, err := timer.ParseMode(rawMode)
	if err != nil {
		return nil, apperrors.BadRequest("invalid_mode", "mode must be one of focus, short_break, long_break")
	}
	return s.command(ctx, userID, func(r *timer.Runner) (timer.State, error) {
		return r.SkipToMode(ctx, mode)
	})
}

func (s *TimerService) GetSettings(ctx context.Context, userID string) (*timer.Settings, *apperrors.APIError) {
	var settings timer.Settings
	apiErr := s.withRunner(ctx, userID, func(r *timer.Runner) error {
		var err error
		settings, err = r.Settings(ctx)
		return err
	})
	if apiErr != nil {
		return nil, apiErr
	}
	return &settings, nil
}

// UpdateSettings validates and stores settings, then hands them to the live
// engine. A running countdown keeps its remaining time.
func (s *TimerService) UpdateSettings(ctx context.Context, userID string, settings timer.Settings) (*StateView, *apperrors.APIError) {
	if err := settings.Validate(); err != nil {
		return nil, apperrors.FromTimer(err)
	}

	record := model.TimerSettings{
		UserID:    userID,
		Settings:  settings,
		UpdatedAt: s.clock.Now().UTC(),
	}
	if err := s.settingsRepo.Upsert(ctx, &record); err != nil {
		return nil, apperrors.Internal("failed to save settings")
	}

	return s.command(ctx, userID, func(r *timer.Runner) (timer.State, error) {
		return r.ApplySettings(ctx, settings)
	})
}

// Subscribe streams the user's timer notifications until cancel is called.
func (s *TimerService) Subscribe(userID string) (<-chan notify.Event, func()) {
	return s.broker.Subscribe(userID, eventBuffer)
}

// EvictIdle stops runners that are not counting down and have not received
// a command within the idle TTL. It returns the number evicted.
func (s *TimerService) EvictIdle(ctx context.Context) int {
	cutoff := s.clock.Now().Add(-s.idleTTL)

	s.mu.Lock()
	candidates := make(map[string]*hostedRunner)
	for userID, hosted := range s.runners {
		if hosted.lastUsed.Before(cutoff) {
			candidates[userID] = hosted
		}
	}
	s.mu.Unlock()

	evicted := 0
	for userID, hosted := range candidates {
		state, err := hosted.runner.State(ctx)
		if err == nil && state.Running {
			continue
		}

		s.mu.Lock()
		current, ok := s.runners[userID]
		if ok && current == hosted && hosted.lastUsed.Before(cutoff) {
			delete(s.runners, userID)
			hosted.cancel()
			evicted++
		}
		s.mu.Unlock()
	}
	return evicted
}

// ActiveTimers reports how many users currently have an engine in memory.
func (s *TimerService) ActiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runners)
}

// Close stops every runner and the cleanup loop.
func (s *TimerService) Close() {
	s.mu.Lock()
	s.closed = true
	s.runners = make(map[string]*hostedRunner)
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *TimerService) cleanupLoop() {
	defer s.wg.Done()
	ticker := s.clock.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C():
			s.EvictIdle(s.ctx)
		}
	}
}

func (s *TimerService) command(
	ctx context.Context,
	userID string,
	fn func(*timer.Runner) (timer.State, error),
) (*StateView, *apperrors.APIError) {
	var state timer.State
	apiErr := s.withRunner(ctx, userID, func(r *timer.Runner) error {
		var err error
		state, err = fn(r)
		return err
	})
	if apiErr != nil {
		return nil, apiErr
	}
	view := s.toStateView(state)
	return &view, nil
}

// withRunner calls fn with the user's runner. A runner evicted between
// lookup and use is replaced once.
func (s *TimerService) withRunner(ctx context.Context, userID string, fn func(*timer.Runner) error) *apperrors.APIError {
	for attempt := 0; ; attempt++ {
		runner, apiErr := s.runnerFor(ctx, userID)
		if apiErr != nil {
			return apiErr
		}
		err := fn(runner)
		if errors.Is(err, timer.ErrRunnerStopped) && attempt == 0 {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Unavailable("timer_unavailable", "request cancelled")
		}
		return apperrors.FromTimer(err)
	}
}

func (s *TimerService) runnerFor(ctx context.Context, userID string) (*timer.Runner, *apperrors.APIError) {
	if runner, ok, apiErr := s.lookup(userID); apiErr != nil || ok {
		return runner, apiErr
	}

	settings, err := s.settingsRepo.GetOrDefault(ctx, userID, s.defaults.CurrentSettings())
	if err != nil {
		return nil, apperrors.Internal("failed to load settings")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, apperrors.Unavailable("timer_unavailable", "timer is shutting down")
	}
	if hosted, ok := s.runners[userID]; ok {
		hosted.lastUsed = s.clock.Now()
		return hosted.runner, nil
	}

	engine := timer.NewEngine(
		settings,
		s.writer.RecorderFor(userID),
		s.broker.NotifierFor(userID),
		timer.WithNow(s.clock.Now),
	)
	runner := timer.NewRunner(engine, timer.WithClock(s.clock))
	runCtx, cancel := context.WithCancel(s.ctx)
	s.runners[userID] = &hostedRunner{runner: runner, cancel: cancel, lastUsed: s.clock.Now()}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = runner.Run(runCtx)
	}()
	return runner, nil
}

func (s *TimerService) lookup(userID string) (*timer.Runner, bool, *apperrors.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, apperrors.Unavailable("timer_unavailable", "timer is shutting down")
	}
	hosted, ok := s.runners[userID]
	if !ok {
		return nil, false, nil
	}
	hosted.lastUsed = s.clock.Now()
	return hosted.runner, true, nil
}

func (s *TimerService) toStateView(state timer.State) StateView {
	return StateView{
		Mode:                state.Mode,
		Status:              state.Status(),
		Running:             state.Running,
		RemainingSeconds:    state.RemainingSeconds,
		IntervalSeconds:     state.IntervalSeconds,
		CompletedFocusCount: state.CompletedFocusCount,
		ServerTime:          s.clock.Now().UTC(),
	}
}
