package storage

import (
	"context"
	"sync"
	"time"

	"github.com/augustos0204/room-stream-api/internal/models"
)

// MemoryRepository keeps all room state in process memory. Everything is
// lost on restart by design. Participant order is join order.
type MemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]*memoryRoom
}

type memoryRoom struct {
	id           string
	name         string
	createdAt    time.Time
	participants []string
	names        map[string]string
	users        map[string]*models.AuthUser
	messages     []models.RoomMessage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rooms: make(map[string]*memoryRoom)}
}

func (r *MemoryRepository) SetRoom(_ context.Context, room *models.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mr := &memoryRoom{
		id:           room.ID,
		name:         room.Name,
		createdAt:    room.CreatedAt,
		participants: append([]string(nil), room.Participants...),
		names:        make(map[string]string),
		users:        make(map[string]*models.AuthUser),
		messages:     append([]models.RoomMessage(nil), room.Messages...),
	}
	for k, v := range room.Names {
		mr.names[k] = v
	}
	for k, v := range room.Users {
		mr.users[k] = v
	}
	r.rooms[room.ID] = mr
}

func (r *MemoryRepository) GetRoom(_ context.Context, roomID string) *models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return mr.snapshot()
}

func (r *MemoryRepository) DeleteRoom(_ context.Context, roomID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[roomID]; !ok {
		return false
	}
	delete(r.rooms, roomID)
	return true
}

func (r *MemoryRepository) AllRooms(_ context.Context) []*models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(r.rooms))
	for _, mr := range r.rooms {
		rooms = append(rooms, mr.snapshot())
	}
	return rooms
}

func (r *MemoryRepository) AddParticipant(_ context.Context, roomID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return
	}
	for _, p := range mr.participants {
		if p == key {
			return
		}
	}
	mr.participants = append(mr.participants, key)
}

func (r *MemoryRepository) RemoveParticipant(_ context.Context, roomID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return
	}
	for i, p := range mr.participants {
		if p == key {
			mr.participants = append(mr.participants[:i], mr.participants[i+1:]...)
			break
		}
	}
	delete(mr.names, key)
	delete(mr.users, key)
}

func (r *MemoryRepository) Participants(_ context.Context, roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return []string{}
	}
	return append([]string(nil), mr.participants...)
}

func (r *MemoryRepository) HasParticipant(_ context.Context, roomID, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	for _, p := range mr.participants {
		if p == key {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) SetParticipantName(_ context.Context, roomID, key, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mr, ok := r.rooms[roomID]; ok {
		mr.names[key] = name
	}
}

func (r *MemoryRepository) ParticipantName(_ context.Context, roomID, key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return "", false
	}
	name, ok := mr.names[key]
	return name, ok
}

func (r *MemoryRepository) DeleteParticipantName(_ context.Context, roomID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mr, ok := r.rooms[roomID]; ok {
		delete(mr.names, key)
	}
}

func (r *MemoryRepository) AllParticipantNames(_ context.Context, roomID string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]string)
	if mr, ok := r.rooms[roomID]; ok {
		for k, v := range mr.names {
			names[k] = v
		}
	}
	return names
}

func (r *MemoryRepository) SetParticipantUser(_ context.Context, roomID, key string, user *models.AuthUser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mr, ok := r.rooms[roomID]; ok {
		if user == nil {
			delete(mr.users, key)
		} else {
			mr.users[key] = user
		}
	}
}

func (r *MemoryRepository) ParticipantUser(_ context.Context, roomID, key string) *models.AuthUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mr, ok := r.rooms[roomID]; ok {
		return mr.users[key]
	}
	return nil
}

func (r *MemoryRepository) DeleteParticipantUser(_ context.Context, roomID, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mr, ok := r.rooms[roomID]; ok {
		delete(mr.users, key)
	}
}

func (r *MemoryRepository) AllParticipantUsers(_ context.Context, roomID string) map[string]*models.AuthUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make(map[string]*models.AuthUser)
	if mr, ok := r.rooms[roomID]; ok {
		for k, v := range mr.users {
			users[k] = v
		}
	}
	return users
}

func (r *MemoryRepository) AddMessage(_ context.Context, roomID string, msg models.RoomMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mr, ok := r.rooms[roomID]; ok {
		mr.messages = append(mr.messages, msg)
	}
}

func (r *MemoryRepository) Messages(_ context.Context, roomID string) []models.RoomMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mr, ok := r.rooms[roomID]
	if !ok {
		return []models.RoomMessage{}
	}
	return append([]models.RoomMessage(nil), mr.messages...)
}

func (r *MemoryRepository) Name() string { return "memory" }

func (r *MemoryRepository) Close() error { return nil }

func (mr *memoryRoom) snapshot() *models.Room {
	room := &models.Room{
		ID:           mr.id,
		Name:         mr.name,
		Participants: append([]string(nil), mr.participants...),
		Names:        make(map[string]string, len(mr.names)),
		Users:        make(map[string]*models.AuthUser, len(mr.users)),
		CreatedAt:    mr.createdAt,
		Messages:     append([]models.RoomMessage(nil), mr.messages...),
	}
	for k, v := range mr.names {
		room.Names[k] = v
	}
	for k, v := range mr.users {
		room.Users[k] = v
	}
	return room
}
