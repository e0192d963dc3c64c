// Package notify fans timer notifications out to per-user subscribers.
package notify

import (
	"sync"
	"time"

	"studyhub/internal/timer"
)

// Event is a user-facing timer notification.
type Event struct {
	Kind    timer.EventKind `json:"kind"`
	Mode    timer.Mode      `json:"mode"`
	Message string          `json:"message"`
	At      time.Time       `json:"at"`
}

// MessageFor returns the text shown for kind.
func MessageFor(kind timer.EventKind) string {
	switch kind {
	case timer.EventShortBreakStarted:
		return "Focus session complete. Take a short break."
	case timer.EventLongBreakStarted:
		return "Great streak! Time for a long break."
	default:
		return "Break is over. Back to focus."
	}
}

func modeFor(kind timer.EventKind) timer.Mode {
	switch kind {
	case timer.EventShortBreakStarted:
		return timer.ModeShortBreak
	case timer.EventLongBreakStarted:
		return timer.ModeLongBreak
	default:
		return timer.ModeFocus
	}
}

// NewEvent builds the Event for kind.
func NewEvent(kind timer.EventKind, at time.Time) Event {
	return Event{
		Kind:    kind,
		Mode:    modeFor(kind),
		Message: MessageFor(kind),
		At:      at,
	}
}

// Broker delivers events to subscribers of a user. Delivery never blocks:
// a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	topics map[string]map[chan Event]struct{}
	now    func() time.Time
}

func NewBroker(now func() time.Time) *Broker {
	if now == nil {
		now = time.Now
	}
	return &Broker{
		topics: make(map[string]map[chan Event]struct{}),
		now:    now,
	}
}

// Subscribe registers a channel for userID. The returned func unsubscribes
// and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(userID string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	subs, ok := b.topics[userID]
	if !ok {
		subs = make(map[chan Event]struct{})
		b.topics[userID] = subs
	}
	subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.topics[userID], ch)
			if len(b.topics[userID]) == 0 {
				delete(b.topics, userID)
			}
			close(ch)
		})
	}
}

func (b *Broker) Publish(userID string, event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.topics[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports the number of live subscriptions for userID.
func (b *Broker) Subscribers(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[userID])
}

// NotifierFor adapts the broker to a timer.Notifier for one user.
func (b *Broker) NotifierFor(userID string) timer.Notifier {
	return timer.NotifierFunc(func(kind timer.EventKind) {
		b.Publish(userID, NewEvent(kind, b.now()))
	})
}
