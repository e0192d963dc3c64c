package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyhub/internal/model"
	"studyhub/internal/timer"
)

const sessionWriteTimeout = 5 * time.Second

// SessionStore persists completed focus sessions.
type SessionStore interface {
	Insert(ctx context.Context, session *model.StudySession) error
}

// SessionWriter records focus sessions asynchronously. Engines hand sessions
// over without waiting; a full queue or a failed insert is only logged.
type SessionWriter struct {
	store  SessionStore
	logger *log.Logger
	queue  chan model.StudySession
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewSessionWriter starts the writer goroutine. A nil logger uses the
// standard logger.
func NewSessionWriter(store SessionStore, buffer int, logger *log.Logger) *SessionWriter {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	w := &SessionWriter{
		store:  store,
		logger: logger,
		queue:  make(chan model.StudySession, buffer),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

// RecorderFor returns the timer.SessionRecorder for one user.
func (w *SessionWriter) RecorderFor(userID string) timer.SessionRecorder {
	return timer.RecorderFunc(func(durationSeconds int, completedAt time.Time) {
		w.enqueue(model.StudySession{
			ID:              uuid.NewString(),
			UserID:          userID,
			DurationSeconds: durationSeconds,
			CompletedAt:     completedAt.UTC(),
			CreatedAt:       time.Now().UTC(),
		})
	})
}

func (w *SessionWriter) enqueue(session model.StudySession) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.logger.Printf("session writer closed, dropping session for user %s", session.UserID)
		return
	}
	select {
	case w.queue <- session:
	default:
		w.logger.Printf("session queue full, dropping session for user %s", session.UserID)
	}
}

func (w *SessionWriter) loop() {
	defer close(w.done)
	for session := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sessionWriteTimeout)
		if err := w.store.Insert(ctx, &session); err != nil {
			w.logger.Printf("record focus session for user %s: %v", session.UserID, err)
		}
		cancel()
	}
}

// Close stops accepting sessions and waits until queued ones are written.
func (w *SessionWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}
