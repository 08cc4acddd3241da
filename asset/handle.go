package asset

import (
	"context"
	"sync"

	"github.com/milk9111/tiledmap/tiled"
	"github.com/milk9111/tiledmap/world"
)

// State is the load state of a Handle.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	}
	return "failed"
}

// Handle is the result of an asynchronous load. A reload keeps the
// previous value readable until the new one is ready, even when it fails.
// Version counts successful loads and Failures failed ones, so a consumer
// polling both sees every outcome.
type Handle[T any] struct {
	path string

	mu      sync.RWMutex
	state   State
	value   *T
	err     error
	version  uint64
	failures uint64
	seq      uint64
	done    chan struct{}
}

type (
	MapHandle   = Handle[tiled.MapDocument]
	WorldHandle = Handle[world.Document]
)

func newHandle[T any](path string) *Handle[T] {
	return &Handle[T]{path: path, done: make(chan struct{})}
}

func (h *Handle[T]) Path() string {
	return h.path
}

func (h *Handle[T]) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Get returns the latest successfully loaded value.
func (h *Handle[T]) Get() (*T, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.value, h.value != nil
}

// Err returns the error of the last failed load.
func (h *Handle[T]) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

func (h *Handle[T]) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Failures counts loads that ended in an error.
func (h *Handle[T]) Failures() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.failures
}

// Wait blocks until no load is in flight or ctx is done.
func (h *Handle[T]) Wait(ctx context.Context) error {
	for {
		h.mu.RLock()
		state, done := h.state, h.done
		h.mu.RUnlock()
		if state != StateLoading {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// begin starts a new load and returns its sequence number.
func (h *Handle[T]) begin() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	if h.state != StateLoading {
		h.done = make(chan struct{})
	}
	h.state = StateLoading
	return h.seq
}

// finish records the outcome of load seq. Outcomes of superseded loads are
// dropped.
func (h *Handle[T]) finish(seq uint64, v *T, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if seq != h.seq {
		return false
	}
	if err != nil {
		h.state = StateFailed
		h.err = err
		h.failures++
	} else {
		h.state = StateLoaded
		h.value = v
		h.err = nil
		h.version++
	}
	close(h.done)
	return true
}
