package event

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// MaxQueued bounds the pending-event queue. Publishing beyond the bound
// drops the oldest pending event.
const MaxQueued = 256

// Manager errors.
var (
	// ErrNilListener is returned when registering or removing a nil listener.
	ErrNilListener = errors.New("nil event listener")
	// ErrListenerExists is returned when a listener is registered twice.
	ErrListenerExists = errors.New("listener already registered")
	// ErrListenerNotFound is returned when removing an unknown listener.
	ErrListenerNotFound = errors.New("listener not registered")
	// ErrNilEvent is returned when publishing a nil event.
	ErrNilEvent = errors.New("nil event")
)

// Manager fans kernel events out to registered listeners.
type Manager struct {
	logger *zap.Logger

	mu        sync.Mutex
	queue     []*Event
	listeners []Listener
}

// NewManager creates an empty event manager. A nil logger disables
// diagnostic output.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{logger: logger}
}

// AddListener registers a listener for all future events.
func (m *Manager) AddListener(l Listener) error {
	if l == nil {
		return ErrNilListener
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.listeners {
		if existing == l {
			return ErrListenerExists
		}
	}
	m.listeners = append(m.listeners, l)
	return nil
}

// RemoveListener deregisters a listener.
func (m *Manager) RemoveListener(l Listener) error {
	if l == nil {
		return ErrNilListener
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.listeners {
		if existing == l {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return nil
		}
	}
	return ErrListenerNotFound
}

// Publish enqueues the event and notifies every listener immediately. When
// the queue is full, the oldest pending event is dropped.
func (m *Manager) Publish(e *Event) error {
	if e == nil {
		return ErrNilEvent
	}

	m.mu.Lock()
	if len(m.queue) >= MaxQueued {
		m.queue = m.queue[1:]
	}
	m.queue = append(m.queue, e)
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger.Debug("event published",
		zap.Int("id", e.ID),
		zap.String("name", e.Name),
	)
	for _, l := range listeners {
		l.HandleEvent(e)
	}
	return nil
}

// ProcessEvents drains the queue, executing each pending event in publish
// order.
func (m *Manager) ProcessEvents() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return
		}
		e := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		e.Execute()
	}
}

// Reset drops all pending events and listeners.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = nil
	m.listeners = nil
}

// EventCount returns the number of pending events.
func (m *Manager) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// ListenerCount returns the number of registered listeners.
func (m *Manager) ListenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}
