package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder collects every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []*Event
}

func (r *recorder) HandleEvent(e *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// TestAddRemoveListener tests listener registration rules.
func TestAddRemoveListener(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	r := &recorder{}

	assert.ErrorIs(t, m.AddListener(nil), ErrNilListener)

	require.NoError(t, m.AddListener(r))
	assert.Equal(t, 1, m.ListenerCount())

	assert.ErrorIs(t, m.AddListener(r), ErrListenerExists)

	require.NoError(t, m.RemoveListener(r))
	assert.Equal(t, 0, m.ListenerCount())
	assert.ErrorIs(t, m.RemoveListener(r), ErrListenerNotFound)
}

// TestPublishNotifiesAllListeners tests fan-out.
func TestPublishNotifiesAllListeners(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	a, b := &recorder{}, &recorder{}
	require.NoError(t, m.AddListener(a))
	require.NoError(t, m.AddListener(b))

	require.NoError(t, m.Publish(NewEvent(1, "boot", TypeSystem)))

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
	assert.Equal(t, 1, m.EventCount())

	assert.ErrorIs(t, m.Publish(nil), ErrNilEvent)
}

// TestProcessEventsRunsCallbacks tests draining custom events in order.
func TestProcessEventsRunsCallbacks(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))

	var order []int
	require.NoError(t, m.Publish(NewCustomEvent(1, "first", func() { order = append(order, 1) })))
	require.NoError(t, m.Publish(NewCustomEvent(2, "second", func() { order = append(order, 2) })))

	m.ProcessEvents()

	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 0, m.EventCount())
}

// TestQueueBound tests oldest-first eviction on overflow.
func TestQueueBound(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))

	for i := 0; i < MaxQueued+5; i++ {
		require.NoError(t, m.Publish(NewEvent(i, "e", TypeGeneric)))
	}

	assert.Equal(t, MaxQueued, m.EventCount())
}

// TestReset tests that Reset drops queue and listeners.
func TestReset(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t))
	r := &recorder{}
	require.NoError(t, m.AddListener(r))
	require.NoError(t, m.Publish(NewEvent(1, "e", TypeGeneric)))

	m.Reset()

	assert.Equal(t, 0, m.EventCount())
	assert.Equal(t, 0, m.ListenerCount())
}

// TestExecuteWithoutCallback tests that plain events execute as no-ops.
func TestExecuteWithoutCallback(t *testing.T) {
	e := NewEvent(1, "plain", TypeUser)
	e.Execute()
}
