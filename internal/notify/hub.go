package notify

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"
)

// Listener reacts to a broadcast payload.
// Implementations must be comparable values (pointers are the usual
// choice) since the hub tests membership with ==.
type Listener[T any] interface {
	Act(payload T) error
}

// Hub keeps an ordered, duplicate-free set of listeners and fans payloads
// out to them. It holds references only: removing a listener never
// affects the listener itself.
//
// Membership changes are copy-on-write, so a Broadcast in flight keeps
// iterating the snapshot it started with.
type Hub[T any] struct {
	mu        sync.RWMutex
	listeners []Listener[T]
}

// NewHub creates a Hub with the given initial listeners. Duplicates are
// dropped, keeping the first occurrence.
func NewHub[T any](listeners ...Listener[T]) *Hub[T] {
	h := &Hub[T]{}
	for _, l := range listeners {
		h.Register(l)
	}
	return h
}

// Register appends l unless it is already present.
func (h *Hub[T]) Register(l Listener[T]) {
	if !comparableListener(l) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if slices.Contains(h.listeners, l) {
		return
	}

	next := make([]Listener[T], len(h.listeners), len(h.listeners)+1)
	copy(next, h.listeners)
	h.listeners = append(next, l)

	slog.Debug("listener registered", "listener", listenerName(l), "count", len(h.listeners))
}

// Deregister removes l if present.
func (h *Hub[T]) Deregister(l Listener[T]) {
	if !comparableListener(l) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	i := slices.Index(h.listeners, l)
	if i < 0 {
		return
	}

	h.listeners = slices.Delete(slices.Clone(h.listeners), i, i+1)

	slog.Debug("listener deregistered", "listener", listenerName(l), "count", len(h.listeners))
}

// Listeners returns a copy of the registered listeners in broadcast order.
func (h *Hub[T]) Listeners() []Listener[T] {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.listeners)
}

// Len returns the number of registered listeners.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Broadcast delivers payload to every listener registered at call time, in
// registration order. Delivery is best-effort: a failing listener (error or
// panic) does not stop the others. All failures are combined into the
// returned error; use multierr.Errors to inspect them one by one.
func (h *Hub[T]) Broadcast(payload T) error {
	_, err := h.Deliver(payload)
	return err
}

// Deliver behaves like Broadcast and also reports how many listeners were
// invoked, counted from the same snapshot the delivery iterated.
func (h *Hub[T]) Deliver(payload T) (int, error) {
	h.mu.RLock()
	snapshot := h.listeners
	h.mu.RUnlock()

	var errs error
	for i, l := range snapshot {
		if err := invoke(l, payload); err != nil {
			slog.Warn("listener failed",
				"position", i,
				"listener", listenerName(l),
				"error", err)
			errs = multierr.Append(errs, fmt.Errorf("listener %d (%s): %w", i, listenerName(l), err))
		}
	}
	return len(snapshot), errs
}

func invoke[T any](l Listener[T], payload T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return l.Act(payload)
}

func comparableListener(l any) bool {
	if l == nil {
		return false
	}
	// A comparable struct type can still hold a slice behind an interface
	// field, so the value is checked rather than the type.
	if !reflect.ValueOf(l).Comparable() {
		slog.Warn("ignoring non-comparable listener", "type", fmt.Sprintf("%T", l))
		return false
	}
	return true
}

// listenerName prefers a Name method and falls back to the dynamic type.
func listenerName(l any) string {
	if n, ok := l.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", l)
}
