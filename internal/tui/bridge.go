package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/scanwalk/internal/walkengine"
)

// bridgeBuffer is how many events can queue before new ones are dropped.
const bridgeBuffer = 256

// EngineEventMsg wraps a walkengine.Event for use as a tea.Msg.
type EngineEventMsg struct {
	Event walkengine.Event
}

// EventBridge adapts walkengine events to bubble tea messages.
// It implements walkengine.EventEmitter and provides a channel for TUI consumption.
type EventBridge struct {
	mu        sync.Mutex
	eventChan chan tea.Msg
	closed    bool
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		eventChan: make(chan tea.Msg, bridgeBuffer),
	}
}

// Emit implements walkengine.EventEmitter.
//
// Events are dropped when the TUI falls behind; the next WalkProgress
// carries the totals anyway, and the final result reaches the model through
// a WalkDoneMsg rather than the bridge.
func (b *EventBridge) Emit(event walkengine.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	select {
	case b.eventChan <- EngineEventMsg{Event: event}:
	default:
	}
}

// Subscribe returns the event channel for receiving events.
func (b *EventBridge) Subscribe() <-chan tea.Msg {
	return b.eventChan
}

// ListenCmd returns a tea.Cmd that blocks until an event is received.
// Use this in Init() or after processing an event to continue listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.eventChan
		if !ok {
			return nil // Channel closed
		}

		return msg
	}
}

// Close closes the event channel.
func (b *EventBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.eventChan)
	}
}
