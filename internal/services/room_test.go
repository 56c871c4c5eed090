package services

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/augustos0204/room-stream-api/internal/events"
	"github.com/augustos0204/room-stream-api/internal/models"
	"github.com/augustos0204/room-stream-api/internal/storage"
)

func newRoomTestService() (*RoomService, *events.Bus) {
	bus := events.NewBus()
	return NewRoomService(storage.NewMemoryRepository(), bus), bus
}

func TestCreateRoomIDFormat(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoomTestService()

	room := svc.CreateRoom(ctx, "general")
	require.NotNil(t, room)
	assert.Regexp(t, regexp.MustCompile(`^room_\d+_[0-9a-z]{9}$`), room.ID)
	assert.Equal(t, "general", room.Name)
	assert.Empty(t, room.Participants)

	other := svc.CreateRoom(ctx, "general")
	assert.NotEqual(t, room.ID, other.ID)
}

func TestCreateRoomPublishesEvent(t *testing.T) {
	ctx := context.Background()
	svc, bus := newRoomTestService()

	var got []events.Payload
	bus.Subscribe(events.RoomCreated, func(p events.Payload) { got = append(got, p) })

	room := svc.CreateRoom(ctx, "general")
	require.Len(t, got, 1)
	assert.Equal(t, room.ID, got[0].RoomID)
	assert.Equal(t, "general", got[0].RoomName)
}

func TestDeleteRoom(t *testing.T) {
	ctx := context.Background()
	svc, bus := newRoomTestService()

	var deleted []events.Payload
	bus.Subscribe(events.RoomDeleted, func(p events.Payload) { deleted = append(deleted, p) })

	room := svc.CreateRoom(ctx, "general")
	assert.True(t, svc.DeleteRoom(ctx, room.ID))
	assert.False(t, svc.DeleteRoom(ctx, room.ID))
	assert.Nil(t, svc.GetRoom(ctx, room.ID))

	require.Len(t, deleted, 1)
	assert.Equal(t, room.ID, deleted[0].RoomID)
	assert.Equal(t, "general", deleted[0].RoomName)
}

func TestJoinRoomIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, bus := newRoomTestService()

	joins := 0
	bus.Subscribe(events.UserJoinedRoom, func(events.Payload) { joins++ })

	room := svc.CreateRoom(ctx, "general")
	require.True(t, svc.JoinRoom(ctx, room.ID, "u1", "Ana", nil))
	require.True(t, svc.JoinRoom(ctx, room.ID, "u1", "Ana Maria", nil))

	// Re-joining refreshes the name but announces nothing.
	assert.Equal(t, 1, joins)

	participants := svc.ParticipantsWithNames(ctx, room.ID)
	require.Len(t, participants, 1)
	assert.Equal(t, "u1", participants[0].Key)
	require.NotNil(t, participants[0].Name)
	assert.Equal(t, "Ana Maria", *participants[0].Name)
}

func TestJoinRoomMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoomTestService()
	assert.False(t, svc.JoinRoom(ctx, "room_missing", "u1", "Ana", nil))
}

func TestJoinRoomWithoutName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoomTestService()

	room := svc.CreateRoom(ctx, "general")
	require.True(t, svc.JoinRoom(ctx, room.ID, "u1", "", nil))

	participants := svc.ParticipantsWithNames(ctx, room.ID)
	require.Len(t, participants, 1)
	assert.Nil(t, participants[0].Name)
}

func TestLeaveRoom(t *testing.T) {
	ctx := context.Background()
	svc, bus := newRoomTestService()

	var left []events.Payload
	bus.Subscribe(events.UserLeftRoom, func(p events.Payload) { left = append(left, p) })

	room := svc.CreateRoom(ctx, "general")
	svc.JoinRoom(ctx, room.ID, "u1", "Ana", nil)

	require.True(t, svc.LeaveRoom(ctx, room.ID, "u1"))
	assert.False(t, svc.HasParticipant(ctx, room.ID, "u1"))
	require.Len(t, left, 1)
	assert.Equal(t, "Ana", left[0].ParticipantName)

	// Leaving again is a no-op against an existing room.
	require.True(t, svc.LeaveRoom(ctx, room.ID, "u1"))
	assert.Len(t, left, 1)

	assert.False(t, svc.LeaveRoom(ctx, "room_missing", "u1"))
}

func TestAddMessage(t *testing.T) {
	ctx := context.Background()
	svc, bus := newRoomTestService()

	var sent []events.Payload
	bus.Subscribe(events.MessageSent, func(p events.Payload) { sent = append(sent, p) })

	room := svc.CreateRoom(ctx, "general")
	user := &models.AuthUser{ID: "uid-1", Email: "ana@example.com"}

	msg := svc.AddMessage(ctx, room.ID, "uid-1", "message", "hello", user)
	require.NotNil(t, msg)
	assert.Regexp(t, regexp.MustCompile(`^msg_\d+_[0-9a-z]{9}$`), msg.ID)
	assert.Equal(t, "uid-1", msg.ClientID)
	assert.Equal(t, "uid-1", msg.UserID)
	assert.Equal(t, "hello", msg.Message)

	require.Len(t, sent, 1)
	assert.Equal(t, msg.ID, sent[0].MessageID)

	stored := svc.Messages(ctx, room.ID)
	require.Len(t, stored, 1)
	assert.Equal(t, msg.ID, stored[0].ID)
}

func TestAddMessageMissingRoom(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoomTestService()
	assert.Nil(t, svc.AddMessage(ctx, "room_missing", "u1", "message", "hi", nil))
}

func TestRecentMessagesWindow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoomTestService()

	room := svc.CreateRoom(ctx, "general")
	for i := 0; i < RecentMessageWindow+5; i++ {
		svc.AddMessage(ctx, room.ID, "u1", "message", fmt.Sprintf("m%d", i), nil)
	}

	recent := svc.RecentMessages(ctx, room.ID)
	require.Len(t, recent, RecentMessageWindow)
	// The window keeps the newest messages in send order.
	assert.Equal(t, "m5", recent[0].Message)
	assert.Equal(t, fmt.Sprintf("m%d", RecentMessageWindow+4), recent[len(recent)-1].Message)
}

func TestUpdateParticipantName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRoomTestService()

	room := svc.CreateRoom(ctx, "general")
	svc.JoinRoom(ctx, room.ID, "u1", "Ana", nil)

	require.True(t, svc.UpdateParticipantName(ctx, room.ID, "u1", "Ana Maria"))
	name, ok := svc.ParticipantName(ctx, room.ID, "u1")
	assert.True(t, ok)
	assert.Equal(t, "Ana Maria", name)

	// Clearing the name drops it entirely.
	require.True(t, svc.UpdateParticipantName(ctx, room.ID, "u1", ""))
	_, ok = svc.ParticipantName(ctx, room.ID, "u1")
	assert.False(t, ok)

	// Renaming can never create a membership.
	assert.False(t, svc.UpdateParticipantName(ctx, room.ID, "u2", "Bo"))
}
