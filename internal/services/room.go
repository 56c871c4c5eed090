package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/augustos0204/room-stream-api/internal/events"
	"github.com/augustos0204/room-stream-api/internal/models"
	"github.com/augustos0204/room-stream-api/internal/storage"
)

// RecentMessageWindow is how many trailing messages a joiner receives.
const RecentMessageWindow = 10

// RoomService owns room lifecycle and message append. It never talks to the
// gateway directly: deletion is announced on the event bus and the gateway
// broadcasts from its own subscription.
type RoomService struct {
	repo storage.RoomRepository
	bus  *events.Bus
}

func NewRoomService(repo storage.RoomRepository, bus *events.Bus) *RoomService {
	return &RoomService{repo: repo, bus: bus}
}

func (s *RoomService) CreateRoom(ctx context.Context, name string) *models.Room {
	room := &models.Room{
		ID:           generateRoomID(),
		Name:         name,
		Participants: []string{},
		Names:        map[string]string{},
		Users:        map[string]*models.AuthUser{},
		CreatedAt:    time.Now(),
		Messages:     []models.RoomMessage{},
	}
	s.repo.SetRoom(ctx, room)
	log.Printf("room: created %s (%s)", room.ID, name)

	s.bus.Publish(events.RoomCreated, events.Payload{
		RoomID:    room.ID,
		RoomName:  name,
		Timestamp: room.CreatedAt,
	})
	return room
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) *models.Room {
	return s.repo.GetRoom(ctx, roomID)
}

func (s *RoomService) AllRooms(ctx context.Context) []*models.Room {
	return s.repo.AllRooms(ctx)
}

// DeleteRoom removes the room and announces the deletion. The gateway picks
// the event up and force-closes every member's membership.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) bool {
	room := s.repo.GetRoom(ctx, roomID)
	if !s.repo.DeleteRoom(ctx, roomID) {
		return false
	}

	name := ""
	if room != nil {
		name = room.Name
	}
	log.Printf("room: deleted %s", roomID)
	s.bus.Publish(events.RoomDeleted, events.Payload{
		RoomID:    roomID,
		RoomName:  name,
		Timestamp: time.Now(),
	})
	return true
}

// JoinRoom upserts the participant under its canonical key. Re-joining only
// refreshes the display name and identity snapshot.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, key, displayName string, user *models.AuthUser) bool {
	room := s.repo.GetRoom(ctx, roomID)
	if room == nil {
		log.Printf("room: join attempt on missing room %s", roomID)
		return false
	}

	already := s.repo.HasParticipant(ctx, roomID, key)
	s.repo.AddParticipant(ctx, roomID, key)
	if displayName != "" {
		s.repo.SetParticipantName(ctx, roomID, key, displayName)
	} else {
		s.repo.DeleteParticipantName(ctx, roomID, key)
	}
	s.repo.SetParticipantUser(ctx, roomID, key, user)

	if !already {
		s.bus.Publish(events.UserJoinedRoom, events.Payload{
			ClientID:        key,
			RoomID:          roomID,
			RoomName:        room.Name,
			ParticipantName: displayName,
			Timestamp:       time.Now(),
		})
	}
	return true
}

// LeaveRoom removes the participant and its name/snapshot atomically.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, key string) bool {
	room := s.repo.GetRoom(ctx, roomID)
	if room == nil {
		return false
	}

	if s.repo.HasParticipant(ctx, roomID, key) {
		name, _ := s.repo.ParticipantName(ctx, roomID, key)
		s.repo.RemoveParticipant(ctx, roomID, key)
		s.bus.Publish(events.UserLeftRoom, events.Payload{
			ClientID:        key,
			RoomID:          roomID,
			RoomName:        room.Name,
			ParticipantName: name,
			Timestamp:       time.Now(),
		})
	}
	return true
}

// AddMessage appends an event record, stamping the author with the
// authenticated snapshot when one exists.
func (s *RoomService) AddMessage(ctx context.Context, roomID, key, event, payload string, user *models.AuthUser) *models.RoomMessage {
	room := s.repo.GetRoom(ctx, roomID)
	if room == nil {
		log.Printf("room: message for missing room %s", roomID)
		return nil
	}

	msg := models.RoomMessage{
		ID:        generateMessageID(),
		ClientID:  key,
		Event:     event,
		Message:   payload,
		Timestamp: time.Now(),
		User:      user,
	}
	if user != nil {
		msg.UserID = user.ID
	}
	s.repo.AddMessage(ctx, roomID, msg)

	s.bus.Publish(events.MessageSent, events.Payload{
		ClientID:  key,
		RoomID:    roomID,
		RoomName:  room.Name,
		MessageID: msg.ID,
		Timestamp: msg.Timestamp,
	})
	return &msg
}

// ParticipantsWithNames projects the room's membership in stored order.
func (s *RoomService) ParticipantsWithNames(ctx context.Context, roomID string) []models.RoomParticipant {
	keys := s.repo.Participants(ctx, roomID)
	names := s.repo.AllParticipantNames(ctx, roomID)

	participants := make([]models.RoomParticipant, 0, len(keys))
	for _, key := range keys {
		p := models.RoomParticipant{Key: key}
		if name, ok := names[key]; ok {
			p.Name = &name
		}
		participants = append(participants, p)
	}
	return participants
}

func (s *RoomService) ParticipantName(ctx context.Context, roomID, key string) (string, bool) {
	return s.repo.ParticipantName(ctx, roomID, key)
}

func (s *RoomService) ParticipantUser(ctx context.Context, roomID, key string) *models.AuthUser {
	return s.repo.ParticipantUser(ctx, roomID, key)
}

func (s *RoomService) HasParticipant(ctx context.Context, roomID, key string) bool {
	return s.repo.HasParticipant(ctx, roomID, key)
}

// UpdateParticipantName renames an existing member; joining is the only way
// to create one.
func (s *RoomService) UpdateParticipantName(ctx context.Context, roomID, key, name string) bool {
	if !s.repo.HasParticipant(ctx, roomID, key) {
		return false
	}
	if name == "" {
		s.repo.DeleteParticipantName(ctx, roomID, key)
	} else {
		s.repo.SetParticipantName(ctx, roomID, key, name)
	}
	log.Printf("room: participant %s renamed in %s", key, roomID)
	return true
}

func (s *RoomService) Messages(ctx context.Context, roomID string) []models.RoomMessage {
	return s.repo.Messages(ctx, roomID)
}

// RecentMessages returns the bounded trailing window exposed on join.
func (s *RoomService) RecentMessages(ctx context.Context, roomID string) []models.RoomMessage {
	msgs := s.repo.Messages(ctx, roomID)
	if len(msgs) > RecentMessageWindow {
		msgs = msgs[len(msgs)-RecentMessageWindow:]
	}
	return msgs
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}

func generateRoomID() string {
	return fmt.Sprintf("room_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

func generateMessageID() string {
	return fmt.Sprintf("msg_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}
