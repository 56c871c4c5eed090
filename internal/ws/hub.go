package ws

import (
	"log"
	"sync"
)

// Hub tracks which connections belong to which room's delivery group.
// Membership here is transport-level only; the repository is the source of
// truth for participant state.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

func (h *Hub) Add(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	log.Printf("ws: client %s joined delivery group %s (total: %d)", c.ID, roomID, len(h.rooms[roomID]))
}

func (h *Hub) Remove(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if group, ok := h.rooms[roomID]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// RemoveEverywhere drops the connection from every delivery group and
// returns the room ids it was part of.
func (h *Hub) RemoveEverywhere(c *Client) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var roomIDs []string
	for roomID, group := range h.rooms {
		if group[c] {
			delete(group, c)
			roomIDs = append(roomIDs, roomID)
			if len(group) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	return roomIDs
}

// Close disbands a room's delivery group and returns its members.
func (h *Hub) Close(roomID string) []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	delete(h.rooms, roomID)

	members := make([]*Client, 0, len(group))
	for c := range group {
		members = append(members, c)
	}
	return members
}

func (h *Hub) Broadcast(roomID, event string, data interface{}) {
	for _, c := range h.members(roomID) {
		c.Send(event, data)
	}
}

// BroadcastExcept notifies every group member but the sender.
func (h *Hub) BroadcastExcept(roomID string, sender *Client, event string, data interface{}) {
	for _, c := range h.members(roomID) {
		if c != sender {
			c.Send(event, data)
		}
	}
}

func (h *Hub) members(roomID string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	group := h.rooms[roomID]
	members := make([]*Client, 0, len(group))
	for c := range group {
		members = append(members, c)
	}
	return members
}
