package playback

import (
	"context"
	"sync"
)

// State is the engine's position in its load lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Engine owns one playback surface: at most one backend instance is
// attached at any time. Load tears down the previous backend before
// attaching a new one; Dispose is idempotent.
type Engine struct {
	factory BackendFactory

	mu         sync.Mutex
	backend    Backend
	state      State
	currentURL string
	lastErr    error
}

// NewEngine creates an engine using the given backend factory.
func NewEngine(factory BackendFactory) *Engine {
	return &Engine{
		factory: factory,
		state:   StateIdle,
	}
}

// Load attempts the URL and blocks until the backend reports ready or a
// fatal failure. A previous backend, if attached, is disposed first.
func (e *Engine) Load(ctx context.Context, url string) error {
	e.mu.Lock()
	e.detachLocked()
	backend := e.factory(url)
	e.backend = backend
	e.state = StateLoading
	e.currentURL = url
	e.lastErr = nil
	e.mu.Unlock()

	err := backend.Load(ctx, url)

	e.mu.Lock()
	defer e.mu.Unlock()

	// A Dispose racing with the load already detached this backend; its
	// outcome no longer belongs to the engine.
	if e.backend != backend {
		if err == nil {
			backend.Dispose()
		}
		return err
	}

	if err != nil {
		e.state = StateFailed
		e.lastErr = err
		return err
	}

	e.state = StateReady
	return nil
}

// Dispose detaches and disposes the current backend, if any. Safe to call
// repeatedly and when nothing is attached.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.detachLocked()
	e.state = StateIdle
	e.currentURL = ""
	e.lastErr = nil
}

func (e *Engine) detachLocked() {
	if e.backend != nil {
		e.backend.Dispose()
		e.backend = nil
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentURL returns the URL of the last Load, or empty after Dispose.
func (e *Engine) CurrentURL() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentURL
}

// LastError returns the failure from the last Load, if it failed.
func (e *Engine) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}
