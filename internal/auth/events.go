package auth

import (
	"context"
	"sync"
	"time"

	"github.com/learnhub/backend/internal/models"
)

// EventKind names a change in a viewer's session state.
type EventKind string

const (
	EventSignedUp  EventKind = "signed_up"
	EventSignedIn  EventKind = "signed_in"
	EventRefreshed EventKind = "refreshed"
	EventSignedOut EventKind = "signed_out"
)

// Event describes one identity change.
type Event struct {
	Kind     EventKind
	Identity models.Identity
	At       time.Time
}

// Handler reacts to an identity change. It runs on the caller's goroutine.
type Handler func(ctx context.Context, event Event)

// Events fans identity changes out to subscribers in subscription order.
type Events struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription
}

type subscription struct {
	id      int
	handler Handler
}

// NewEvents returns an empty dispatcher.
func NewEvents() *Events {
	return &Events{}
}

// Subscribe adds handler and returns a func that removes it. Calling the
// returned func more than once is a no-op.
func (e *Events) Subscribe(handler Handler) func() {
	if handler == nil {
		return func() {}
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.handlers = append(e.handlers, subscription{id: id, handler: handler})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, sub := range e.handlers {
				if sub.id == id {
					e.handlers = append(e.handlers[:i:i], e.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers event to every current subscriber synchronously.
func (e *Events) Publish(ctx context.Context, event Event) {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.handlers))
	for _, sub := range e.handlers {
		handlers = append(handlers, sub.handler)
	}
	e.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
