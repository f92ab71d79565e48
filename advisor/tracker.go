package advisor

import (
	"context"
	"sync"
)

// Tracker discards out-of-order responses. Each request takes a token; only
// the holder of the latest token may apply its result. Starting a request
// cancels the one before it.
type Tracker struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

// Begin issues the next token and a context that is cancelled when a newer
// request begins.
func (t *Tracker) Begin(ctx context.Context) (context.Context, uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.latest++
	return ctx, t.latest
}

// Commit runs apply if token is still the latest and reports whether it ran.
func (t *Tracker) Commit(token uint64, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token != t.latest {
		return false
	}
	if apply != nil {
		apply()
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	return true
}

// Latest is the most recently issued token.
func (t *Tracker) Latest() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Run performs fn as a tracked request and applies its result only if no
// newer request began meanwhile. The value is returned either way.
func Run[T any](ctx context.Context, t *Tracker, fn func(context.Context) T, apply func(T)) (T, bool) {
	ctx, token := t.Begin(ctx)
	v := fn(ctx)
	ok := t.Commit(token, func() {
		if apply != nil {
			apply(v)
		}
	})
	return v, ok
}
