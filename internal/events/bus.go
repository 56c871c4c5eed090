package events

import (
	"sync"
	"time"
)

// Event identifies a lifecycle transition published on the bus.
type Event string

const (
	ClientConnected    Event = "client-connected"
	ClientDisconnected Event = "client-disconnected"
	RoomCreated        Event = "room-created"
	RoomDeleted        Event = "room-deleted"
	UserJoinedRoom     Event = "user-joined-room"
	UserLeftRoom       Event = "user-left-room"
	MessageSent        Event = "message-sent"
)

// Payload carries the fields relevant to a lifecycle event; unused fields
// stay zero.
type Payload struct {
	ClientID        string
	Namespace       string
	RoomID          string
	RoomName        string
	ParticipantName string
	MessageID       string
	Timestamp       time.Time
}

type Handler func(Payload)

// Bus is an in-process pub/sub decoupling lifecycle emitters from their
// observers. Delivery is synchronous and at-most-once; handlers must not
// block.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Event][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Event][]Handler)}
}

func (b *Bus) Subscribe(event Event, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) Publish(event Event, payload Payload) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

// Reset drops every subscription. Used on shutdown and between tests.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[Event][]Handler)
}
