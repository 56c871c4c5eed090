package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augustos0204/room-stream-api/internal/models"
)

func newTestRoom(id, name string) *models.Room {
	return &models.Room{
		ID:           id,
		Name:         name,
		Participants: []string{},
		Names:        map[string]string{},
		Users:        map[string]*models.AuthUser{},
		CreatedAt:    time.Now(),
		Messages:     []models.RoomMessage{},
	}
}

func TestMemoryRoomLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	repo.SetRoom(ctx, newTestRoom("room_1", "general"))

	room := repo.GetRoom(ctx, "room_1")
	require.NotNil(t, room)
	assert.Equal(t, "general", room.Name)

	assert.Nil(t, repo.GetRoom(ctx, "room_missing"))

	assert.True(t, repo.DeleteRoom(ctx, "room_1"))
	assert.False(t, repo.DeleteRoom(ctx, "room_1"))
	assert.Nil(t, repo.GetRoom(ctx, "room_1"))
}

func TestMemoryParticipants(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.SetRoom(ctx, newTestRoom("room_1", "general"))

	repo.AddParticipant(ctx, "room_1", "u1")
	repo.AddParticipant(ctx, "room_1", "u2")
	repo.AddParticipant(ctx, "room_1", "u1") // idempotent

	assert.Equal(t, []string{"u1", "u2"}, repo.Participants(ctx, "room_1"))
	assert.True(t, repo.HasParticipant(ctx, "room_1", "u1"))
	assert.False(t, repo.HasParticipant(ctx, "room_1", "u3"))

	repo.SetParticipantName(ctx, "room_1", "u1", "Ana")
	name, ok := repo.ParticipantName(ctx, "room_1", "u1")
	assert.True(t, ok)
	assert.Equal(t, "Ana", name)

	repo.SetParticipantUser(ctx, "room_1", "u1", &models.AuthUser{ID: "uid-1", Email: "ana@example.com"})

	// Removing a participant also clears its name and identity snapshot.
	repo.RemoveParticipant(ctx, "room_1", "u1")
	assert.Equal(t, []string{"u2"}, repo.Participants(ctx, "room_1"))
	_, ok = repo.ParticipantName(ctx, "room_1", "u1")
	assert.False(t, ok)
	assert.Nil(t, repo.ParticipantUser(ctx, "room_1", "u1"))
}

func TestMemoryMissingRoomDegrades(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	assert.Equal(t, []string{}, repo.Participants(ctx, "nope"))
	assert.False(t, repo.HasParticipant(ctx, "nope", "u1"))
	assert.Empty(t, repo.Messages(ctx, "nope"))
	assert.Empty(t, repo.AllRooms(ctx))

	// Writes against a missing room are silently dropped.
	repo.AddParticipant(ctx, "nope", "u1")
	repo.AddMessage(ctx, "nope", models.RoomMessage{ID: "msg_1"})
	assert.Nil(t, repo.GetRoom(ctx, "nope"))
}

func TestMemoryMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.SetRoom(ctx, newTestRoom("room_1", "general"))

	repo.AddMessage(ctx, "room_1", models.RoomMessage{ID: "msg_1", ClientID: "u1", Event: "message", Message: "hi"})
	repo.AddMessage(ctx, "room_1", models.RoomMessage{ID: "msg_2", ClientID: "u2", Event: "score", Message: "42"})

	msgs := repo.Messages(ctx, "room_1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg_1", msgs[0].ID)
	assert.Equal(t, "score", msgs[1].Event)
}

func TestMemorySnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.SetRoom(ctx, newTestRoom("room_1", "general"))
	repo.AddParticipant(ctx, "room_1", "u1")

	room := repo.GetRoom(ctx, "room_1")
	require.NotNil(t, room)
	room.Participants = append(room.Participants, "intruder")
	room.Name = "changed"

	fresh := repo.GetRoom(ctx, "room_1")
	assert.Equal(t, "general", fresh.Name)
	assert.Equal(t, []string{"u1"}, fresh.Participants)
}

func TestMemoryNameAndAdapter(t *testing.T) {
	repo := NewMemoryRepository()
	assert.Equal(t, "memory", repo.Name())
	assert.NoError(t, repo.Close())
}
