package notify

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// recorder appends every payload it sees, tagged with its name, to a shared log.
type recorder struct {
	name string
	log  *callLog
	err  error
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(s string) {
	c.mu.Lock()
	c.calls = append(c.calls, s)
	c.mu.Unlock()
}

func (c *callLog) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (r *recorder) Act(payload string) error {
	r.log.add(r.name + ":" + payload)
	return r.err
}

func (r *recorder) Name() string { return r.name }

type panicker struct{}

func (*panicker) Act(string) error { panic("boom") }

// funcListener has a non-comparable dynamic type.
type funcListener func(string) error

func (f funcListener) Act(p string) error { return f(p) }

// tagged has a comparable type whose values may still hold a slice.
type tagged struct{ tag any }

func (tagged) Act(string) error { return nil }

// joiner registers extra on its first call.
type joiner struct {
	hub   *Hub[string]
	extra Listener[string]
}

func (j *joiner) Act(string) error {
	j.hub.Register(j.extra)
	return nil
}

func newRecorders(log *callLog, names ...string) []*recorder {
	out := make([]*recorder, len(names))
	for i, n := range names {
		out[i] = &recorder{name: n, log: log}
	}
	return out
}

func TestHub_Broadcast_VisitsListenersInRegistrationOrder(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b", "c")
	h := NewHub[string](rs[0], rs[1], rs[2])

	require.NoError(t, h.Broadcast("evt"))
	assert.Equal(t, []string{"a:evt", "b:evt", "c:evt"}, log.get())
}

func TestHub_Register_IsIdempotent(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b")
	h := NewHub[string]()

	h.Register(rs[0])
	h.Register(rs[0])
	h.Register(rs[1])
	h.Register(rs[0])

	assert.Equal(t, []Listener[string]{rs[0], rs[1]}, h.Listeners())
	assert.Equal(t, 2, h.Len())
}

func TestNewHub_DropsDuplicates_KeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b")
	h := NewHub[string](rs[0], rs[1], rs[0])

	assert.Equal(t, []Listener[string]{rs[0], rs[1]}, h.Listeners())
}

func TestHub_Deregister_AbsentListener_IsNoOp(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b", "c")
	h := NewHub[string](rs[0], rs[1])

	h.Deregister(rs[2])

	assert.Equal(t, []Listener[string]{rs[0], rs[1]}, h.Listeners())
}

func TestHub_Deregister_RemovesOnlyTarget(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b", "c")
	h := NewHub[string](rs[0], rs[1], rs[2])

	h.Deregister(rs[1])

	assert.Equal(t, []Listener[string]{rs[0], rs[2]}, h.Listeners())
}

func TestHub_Reregister_MovesListenerToEnd(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b", "c")
	h := NewHub[string](rs[0], rs[1], rs[2])

	h.Deregister(rs[0])
	h.Register(rs[0])

	require.NoError(t, h.Broadcast("x"))
	assert.Equal(t, []string{"b:x", "c:x", "a:x"}, log.get())
}

func TestHub_Broadcast_Empty_DoesNothing(t *testing.T) {
	t.Parallel()

	h := NewHub[string]()
	assert.NoError(t, h.Broadcast("nobody"))
	assert.Empty(t, h.Listeners())
}

func TestHub_Listeners_ReturnsCopy(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b")
	h := NewHub[string](rs[0])

	got := h.Listeners()
	got[0] = rs[1]
	_ = append(got, rs[1])

	assert.Equal(t, []Listener[string]{rs[0]}, h.Listeners())
}

func TestHub_Register_IgnoresNilAndNonComparable(t *testing.T) {
	t.Parallel()

	h := NewHub[string]()
	h.Register(nil)
	h.Register(funcListener(func(string) error { return nil }))
	h.Deregister(funcListener(func(string) error { return nil }))

	assert.Equal(t, 0, h.Len())
}

func TestHub_Register_IgnoresComparableTypeHoldingSlice(t *testing.T) {
	t.Parallel()

	h := NewHub[string]()
	l := tagged{tag: []string{"x"}}

	assert.NotPanics(t, func() {
		h.Register(l)
		h.Register(l)
		h.Deregister(l)
	})
	assert.Equal(t, 0, h.Len())

	ok := tagged{tag: "plain"}
	h.Register(ok)
	h.Register(ok)
	assert.Equal(t, 1, h.Len())
}

func TestHub_Deliver_CountsSnapshotListeners(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "late")
	h := NewHub[string]()
	j := &joiner{hub: h, extra: rs[1]}
	h.Register(j)
	h.Register(rs[0])

	n, err := h.Deliver("evt")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []string{"a:evt"}, log.get())

	n, err = h.Deliver("again")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHub_Broadcast_BestEffort_AggregatesFailures(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "a", "b", "c")
	errA := errors.New("smtp down")
	errC := errors.New("bank closed")
	rs[0].err = errA
	rs[2].err = errC
	h := NewHub[string](rs[0], rs[1], rs[2])

	err := h.Broadcast("pay")
	require.Error(t, err)

	assert.Equal(t, []string{"a:pay", "b:pay", "c:pay"}, log.get(), "every listener must be invoked")
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)

	errs := multierr.Errors(err)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "listener 0 (a)")
	assert.Contains(t, errs[1].Error(), "listener 2 (c)")
}

func TestHub_Broadcast_RecoversPanickingListener(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "after")
	h := NewHub[string](&panicker{}, rs[0])

	err := h.Broadcast("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic: boom")
	assert.Equal(t, []string{"after:x"}, log.get())
}

// selfRemover deregisters itself on its first call.
type selfRemover struct {
	hub   *Hub[string]
	calls int
}

func (s *selfRemover) Act(string) error {
	s.calls++
	s.hub.Deregister(s)
	return nil
}

func TestHub_Broadcast_ListenerMayDeregisterItself(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "tail")
	h := NewHub[string]()
	sr := &selfRemover{hub: h}
	h.Register(sr)
	h.Register(rs[0])

	require.NoError(t, h.Broadcast("first"))
	require.NoError(t, h.Broadcast("second"))

	assert.Equal(t, 1, sr.calls)
	assert.Equal(t, []string{"tail:first", "tail:second"}, log.get())
}

func TestHub_ObserverScenario(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	rs := newRecorders(log, "email", "notify", "money")
	email, notify, money := rs[0], rs[1], rs[2]

	h := NewHub[string](email, notify)
	require.NoError(t, h.Broadcast("sign in"))

	h.Deregister(email)
	h.Deregister(notify)
	require.NoError(t, h.Broadcast("logout"))

	h.Register(money)
	require.NoError(t, h.Broadcast("anniversary"))

	assert.Equal(t, []string{
		"email:sign in",
		"notify:sign in",
		"money:anniversary",
	}, log.get())
}

func TestHub_ConcurrentUse(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	h := NewHub[string]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		r := &recorder{name: fmt.Sprintf("r%d", i), log: log}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Register(r)
				_ = h.Broadcast("tick")
				h.Deregister(r)
			}
			h.Register(r)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, h.Len())
	seen := make(map[Listener[string]]bool)
	for _, l := range h.Listeners() {
		assert.False(t, seen[l], "duplicate listener in hub")
		seen[l] = true
	}
}
