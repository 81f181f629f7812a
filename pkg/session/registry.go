package session

import (
	"log/slog"
	"sync"
)

// OnLoadSource yields the on-first-load callbacks of a session.
type OnLoadSource interface {
	Callbacks(sessionID string) []func()
}

// Registry maps session IDs to their on-first-load callbacks.
type Registry struct {
	mu     sync.RWMutex
	onload map[string][]func()
	logger *slog.Logger
}

var _ OnLoadSource = (*Registry)(nil)

// NewRegistry creates an empty registry. A nil logger uses slog.Default().
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		onload: make(map[string][]func()),
		logger: logger,
	}
}

// OnLoad registers fn to run when sessionID first loads.
func (r *Registry) OnLoad(sessionID string, fn func()) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.onload[sessionID] = append(r.onload[sessionID], fn)
	r.mu.Unlock()
}

// Callbacks returns a copy of the callbacks registered for sessionID.
func (r *Registry) Callbacks(sessionID string) []func() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cbs := r.onload[sessionID]
	out := make([]func(), len(cbs))
	copy(out, cbs)
	return out
}

// Run invokes every callback of sessionID in registration order and returns
// how many completed. A panicking callback is logged and skipped.
func (r *Registry) Run(sessionID string) int {
	return RunCallbacks(r.logger, sessionID, r.Callbacks(sessionID))
}

// Forget drops all callbacks of sessionID, typically when the session ends.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	delete(r.onload, sessionID)
	r.mu.Unlock()
}

// Len returns the number of sessions with registered callbacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.onload)
}

// RunCallbacks invokes cbs in order, recovering and logging panics, and
// returns how many completed.
func RunCallbacks(logger *slog.Logger, sessionID string, cbs []func()) int {
	if logger == nil {
		logger = slog.Default()
	}
	done := 0
	for i, cb := range cbs {
		if runOne(logger, sessionID, i, cb) {
			done++
		}
	}
	return done
}

func runOne(logger *slog.Logger, sessionID string, index int, cb func()) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("onload callback panicked",
				"session_id", sessionID,
				"index", index,
				"panic", p,
			)
			ok = false
		}
	}()
	cb()
	return true
}
