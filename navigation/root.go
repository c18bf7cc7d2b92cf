package navigation

import (
	"context"
	"maps"
	"sync"
)

// Root is the platform capability the navigation service drives.
// One implementation exists per target and is chosen when the application
// is composed.
type Root interface {
	CanGoBack() bool
	CanGoForward() bool

	GoBack(ctx context.Context) error
	GoForward(ctx context.Context) error

	// Navigate shows the view at uri with the given parameters.
	Navigate(ctx context.Context, uri string, params map[string]any) error

	// CloseMainWindow closes the application window. It is irreversible.
	CloseMainWindow(ctx context.Context) error
}

// Entry is a page in the history of a HistoryRoot.
type Entry struct {
	URI    string
	Params map[string]any
}

// HistoryRoot is a Root that keeps back and forward history in memory.
// It serves headless targets and tests.
//
// Multiple goroutines may invoke methods on a HistoryRoot simultaneously.
type HistoryRoot struct {
	mu      sync.Mutex
	back    []Entry
	forward []Entry
	current *Entry
	closed  bool
}

var _ Root = (*HistoryRoot)(nil)

func NewHistoryRoot() *HistoryRoot {
	return &HistoryRoot{}
}

func (r *HistoryRoot) CanGoBack() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && len(r.back) > 0
}

func (r *HistoryRoot) CanGoForward() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && len(r.forward) > 0
}

func (r *HistoryRoot) GoBack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	n := len(r.back)
	if n == 0 {
		return ErrNoHistory
	}
	if r.current != nil {
		r.forward = append(r.forward, *r.current)
	}
	entry := r.back[n-1]
	r.back = r.back[:n-1]
	r.current = &entry
	return nil
}

func (r *HistoryRoot) GoForward(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	n := len(r.forward)
	if n == 0 {
		return ErrNoHistory
	}
	if r.current != nil {
		r.back = append(r.back, *r.current)
	}
	entry := r.forward[n-1]
	r.forward = r.forward[:n-1]
	r.current = &entry
	return nil
}

func (r *HistoryRoot) Navigate(ctx context.Context, uri string, params map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if r.current != nil {
		r.back = append(r.back, *r.current)
	}
	r.forward = nil
	r.current = &Entry{URI: uri, Params: maps.Clone(params)}
	return nil
}

func (r *HistoryRoot) CloseMainWindow(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Current returns the page being shown.
func (r *HistoryRoot) Current() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return Entry{}, false
	}
	return *r.current, true
}

// Closed reports whether the main window was closed.
func (r *HistoryRoot) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
