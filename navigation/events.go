package navigation

import (
	"context"
	"sync"
)

// Decision is the answer of a closing hook.
type Decision struct {
	Cancel bool
	Reason string
}

// Proceed lets the application close.
func Proceed() Decision {
	return Decision{}
}

// Cancel keeps the application open.
func Cancel(reason string) Decision {
	return Decision{Cancel: true, Reason: reason}
}

// ClosingHook runs before the main window is closed and may cancel it.
type ClosingHook func(ctx context.Context) Decision

// ClosedListener runs after the main window was closed.
type ClosedListener func()

type Events struct {
	mu      sync.Mutex
	closing []ClosingHook
	closed  []ClosedListener
}

func (e *Events) OnClosing(f ClosingHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closing = append(e.closing, f)
}

func (e *Events) OnClosed(f ClosedListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = append(e.closed, f)
}

// TriggerClosing runs the closing hooks in registration order and stops at
// the first one that cancels.
func (e *Events) TriggerClosing(ctx context.Context) Decision {
	e.mu.Lock()
	hooks := append([]ClosingHook(nil), e.closing...)
	e.mu.Unlock()

	for _, f := range hooks {
		if d := f(ctx); d.Cancel {
			return d
		}
	}
	return Proceed()
}

func (e *Events) TriggerClosed() {
	e.mu.Lock()
	listeners := append([]ClosedListener(nil), e.closed...)
	e.mu.Unlock()

	for _, f := range listeners {
		f()
	}
}
