// Package events implements the UI event bus: the one-way channel by
// which the core reports status changes, streaming session updates,
// permission requests, and terminal output back to whatever is
// consuming it through Bus.Subscribe. This package provides the thinnest implementation that lets the
// rest of the core depend on an interface rather than a concrete
// transport.
package events

import "sync"

// Name enumerates the UI event names agentcore's command-dispatch
// boundary emits.
type Name string

const (
	AgentStatusChanged    Name = "agent/status_changed"
	AcpSessionUpdate      Name = "acp/session_update"
	AcpPermissionRequested Name = "acp/permission_requested"
	AcpPluginStatusChanged Name = "acp/plugin_status_changed"
	TerminalOutput        Name = "terminal/output"
	TerminalExited        Name = "terminal/exited"
)

// Event is one emitted UI event.
type Event struct {
	Name    Name
	Payload any
}

// Emitter is the capability the core depends on to publish events.
// Satisfied by *Bus, and by test doubles.
type Emitter interface {
	Emit(name Name, payload any) error
}

// Bus is an in-process fan-out event bus: every Subscribe call gets its
// own buffered channel fed in publish order. A slow or absent consumer
// never blocks Emit: a full subscriber channel simply drops the event
// for that subscriber (events are for UI presentation, not for
// correctness; the core never depends on every subscriber seeing every
// event).
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]chan Event)}
}

// Emit publishes an event to every current subscriber.
func (b *Bus) Emit(name Name, payload any) error {
	ev := Event{Name: name, Payload: payload}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop for this slow subscriber rather than block emitters.
		}
	}
	return nil
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is buffered; callers should drain it
// promptly and call unsubscribe when done.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, unsubscribe
}
