package metrics

import (
	"sync"
	"time"

	"github.com/augustos0204/room-stream-api/internal/events"
)

// RoomMetrics is the per-room slice of a snapshot.
type RoomMetrics struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Messages    int    `json:"messages"`
	Connections int    `json:"connections"`
	CreatedAt   string `json:"createdAt"`
	Uptime      string `json:"uptime"`
}

// Snapshot is derived on demand from process-lifetime counters. Nothing
// here is persisted; a restart resets everything.
type Snapshot struct {
	TotalClients           int            `json:"totalClients"`
	TotalRooms             int            `json:"totalRooms"`
	TotalMessages          int            `json:"totalMessages"`
	UptimeMs               int64          `json:"uptime"`
	Timestamp              string         `json:"timestamp"`
	ConnectionsByNamespace map[string]int `json:"connectionsByNamespace"`
	Rooms                  []RoomMetrics  `json:"rooms"`
}

type roomCounters struct {
	name        string
	messages    int
	connections int
	createdAt   time.Time
}

// Aggregator subscribes to the lifecycle event set and keeps running
// counters. Delivery is observational; a missed event skews a counter but
// never affects room state.
type Aggregator struct {
	mu        sync.Mutex
	startTime time.Time

	connectedClients int
	byNamespace      map[string]int
	rooms            map[string]*roomCounters
	totalMessages    int
}

func NewAggregator(bus *events.Bus) *Aggregator {
	a := &Aggregator{
		startTime:   time.Now(),
		byNamespace: make(map[string]int),
		rooms:       make(map[string]*roomCounters),
	}

	bus.Subscribe(events.ClientConnected, a.onClientConnected)
	bus.Subscribe(events.ClientDisconnected, a.onClientDisconnected)
	bus.Subscribe(events.RoomCreated, a.onRoomCreated)
	bus.Subscribe(events.RoomDeleted, a.onRoomDeleted)
	bus.Subscribe(events.UserJoinedRoom, a.onUserJoined)
	bus.Subscribe(events.UserLeftRoom, a.onUserLeft)
	bus.Subscribe(events.MessageSent, a.onMessageSent)

	return a
}

func (a *Aggregator) onClientConnected(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.connectedClients++
	a.byNamespace[namespaceOf(p)]++
}

func (a *Aggregator) onClientDisconnected(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.connectedClients > 0 {
		a.connectedClients--
	}
	ns := namespaceOf(p)
	if a.byNamespace[ns] > 0 {
		a.byNamespace[ns]--
	}
}

func (a *Aggregator) onRoomCreated(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rooms[p.RoomID] = &roomCounters{name: p.RoomName, createdAt: p.Timestamp}
}

func (a *Aggregator) onRoomDeleted(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.rooms, p.RoomID)
}

func (a *Aggregator) onUserJoined(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if room, ok := a.rooms[p.RoomID]; ok {
		room.connections++
	}
}

func (a *Aggregator) onUserLeft(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if room, ok := a.rooms[p.RoomID]; ok && room.connections > 0 {
		room.connections--
	}
}

func (a *Aggregator) onMessageSent(p events.Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalMessages++
	if room, ok := a.rooms[p.RoomID]; ok {
		room.messages++
	}
}

// Snapshot computes the current metrics view.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	byNamespace := make(map[string]int, len(a.byNamespace))
	for ns, n := range a.byNamespace {
		byNamespace[ns] = n
	}

	rooms := make([]RoomMetrics, 0, len(a.rooms))
	for id, room := range a.rooms {
		rooms = append(rooms, RoomMetrics{
			ID:          id,
			Name:        room.name,
			Messages:    room.messages,
			Connections: room.connections,
			CreatedAt:   room.createdAt.Format(time.RFC3339),
			Uptime:      now.Sub(room.createdAt).Round(time.Second).String(),
		})
	}

	return Snapshot{
		TotalClients:           a.connectedClients,
		TotalRooms:             len(a.rooms),
		TotalMessages:          a.totalMessages,
		UptimeMs:               now.Sub(a.startTime).Milliseconds(),
		Timestamp:              now.Format(time.RFC3339),
		ConnectionsByNamespace: byNamespace,
		Rooms:                  rooms,
	}
}

// ConnectedClients is used by the health endpoint.
func (a *Aggregator) ConnectedClients() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connectedClients
}

func namespaceOf(p events.Payload) string {
	if p.Namespace == "" {
		return "default"
	}
	return p.Namespace
}
