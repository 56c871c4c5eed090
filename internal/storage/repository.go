package storage

import (
	"context"

	"github.com/augustos0204/room-stream-api/internal/models"
)

// RoomRepository is the room-state contract shared by the volatile and
// durable backends. Every participant, name and message operation mutates a
// narrow key on its own so a shared backend never needs a whole-document
// read-modify-write.
//
// Backend failures are logged inside the adapter and degrade to zero values:
// callers cannot distinguish "not found" from "backend unavailable". That
// trade (availability over consistency) is deliberate and tests rely on it.
type RoomRepository interface {
	SetRoom(ctx context.Context, room *models.Room)
	GetRoom(ctx context.Context, roomID string) *models.Room
	DeleteRoom(ctx context.Context, roomID string) bool
	AllRooms(ctx context.Context) []*models.Room

	// AddParticipant is idempotent: re-adding an existing key is a no-op.
	AddParticipant(ctx context.Context, roomID, key string)
	// RemoveParticipant also removes the key's name and identity snapshot.
	RemoveParticipant(ctx context.Context, roomID, key string)
	Participants(ctx context.Context, roomID string) []string
	HasParticipant(ctx context.Context, roomID, key string) bool

	SetParticipantName(ctx context.Context, roomID, key, name string)
	ParticipantName(ctx context.Context, roomID, key string) (string, bool)
	DeleteParticipantName(ctx context.Context, roomID, key string)
	AllParticipantNames(ctx context.Context, roomID string) map[string]string

	SetParticipantUser(ctx context.Context, roomID, key string, user *models.AuthUser)
	ParticipantUser(ctx context.Context, roomID, key string) *models.AuthUser
	DeleteParticipantUser(ctx context.Context, roomID, key string)
	AllParticipantUsers(ctx context.Context, roomID string) map[string]*models.AuthUser

	AddMessage(ctx context.Context, roomID string, msg models.RoomMessage)
	Messages(ctx context.Context, roomID string) []models.RoomMessage

	Name() string
	Close() error
}
