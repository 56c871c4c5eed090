package storage

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/augustos0204/room-stream-api/internal/models"
)

// RedisRepository stores room state in a shared redis instance so several
// gateway processes can serve the same rooms.
//
// Key layout:
//
//	rooms                                 set of room ids
//	room:{id}                             room metadata (JSON)
//	room:{id}:participants                set of participant keys
//	room:{id}:participant:{key}:name      display name
//	room:{id}:participant:{key}:user      identity snapshot (JSON)
//	room:{id}:messages                    list of messages (JSON)
//
// The store is treated as dumb: no transactions, every mutation is an
// independently idempotent command.
type RedisRepository struct {
	client *redis.Client
}

type redisRoomMeta struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewRedisRepository(url string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisRepository{client: redis.NewClient(opts)}, nil
}

// NewRedisRepositoryWithClient is used by tests to inject a prepared client.
func NewRedisRepositoryWithClient(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) SetRoom(ctx context.Context, room *models.Room) {
	meta, err := json.Marshal(redisRoomMeta{ID: room.ID, Name: room.Name, CreatedAt: room.CreatedAt})
	if err != nil {
		log.Printf("storage: marshal room %s: %v", room.ID, err)
		return
	}
	if err := r.client.Set(ctx, roomKey(room.ID), meta, 0).Err(); err != nil {
		log.Printf("storage: set room %s: %v", room.ID, err)
		return
	}
	if err := r.client.SAdd(ctx, "rooms", room.ID).Err(); err != nil {
		log.Printf("storage: register room %s: %v", room.ID, err)
	}
	for _, key := range room.Participants {
		r.AddParticipant(ctx, room.ID, key)
	}
	for key, name := range room.Names {
		r.SetParticipantName(ctx, room.ID, key, name)
	}
	for key, user := range room.Users {
		r.SetParticipantUser(ctx, room.ID, key, user)
	}
	for _, msg := range room.Messages {
		r.AddMessage(ctx, room.ID, msg)
	}
}

func (r *RedisRepository) GetRoom(ctx context.Context, roomID string) *models.Room {
	data, err := r.client.Get(ctx, roomKey(roomID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("storage: get room %s: %v", roomID, err)
		}
		return nil
	}

	var meta redisRoomMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		log.Printf("storage: unmarshal room %s: %v", roomID, err)
		return nil
	}

	room := &models.Room{
		ID:           meta.ID,
		Name:         meta.Name,
		CreatedAt:    meta.CreatedAt,
		Participants: r.Participants(ctx, roomID),
		Names:        r.AllParticipantNames(ctx, roomID),
		Users:        r.AllParticipantUsers(ctx, roomID),
		Messages:     r.Messages(ctx, roomID),
	}
	return room
}

func (r *RedisRepository) DeleteRoom(ctx context.Context, roomID string) bool {
	exists, err := r.client.Exists(ctx, roomKey(roomID)).Result()
	if err != nil {
		log.Printf("storage: delete room %s: %v", roomID, err)
		return false
	}
	if exists == 0 {
		return false
	}

	keys := []string{
		roomKey(roomID),
		participantsKey(roomID),
		messagesKey(roomID),
	}
	participants, err := r.client.SMembers(ctx, participantsKey(roomID)).Result()
	if err != nil {
		log.Printf("storage: list participants of %s: %v", roomID, err)
	}
	for _, key := range participants {
		keys = append(keys, nameKey(roomID, key), userKey(roomID, key))
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("storage: delete room keys %s: %v", roomID, err)
		return false
	}
	if err := r.client.SRem(ctx, "rooms", roomID).Err(); err != nil {
		log.Printf("storage: unregister room %s: %v", roomID, err)
	}
	return true
}

func (r *RedisRepository) AllRooms(ctx context.Context) []*models.Room {
	ids, err := r.client.SMembers(ctx, "rooms").Result()
	if err != nil {
		log.Printf("storage: list rooms: %v", err)
		return []*models.Room{}
	}

	rooms := make([]*models.Room, 0, len(ids))
	for _, id := range ids {
		if room := r.GetRoom(ctx, id); room != nil {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

func (r *RedisRepository) AddParticipant(ctx context.Context, roomID, key string) {
	if err := r.client.SAdd(ctx, participantsKey(roomID), key).Err(); err != nil {
		log.Printf("storage: add participant %s to %s: %v", key, roomID, err)
	}
}

func (r *RedisRepository) RemoveParticipant(ctx context.Context, roomID, key string) {
	if err := r.client.SRem(ctx, participantsKey(roomID), key).Err(); err != nil {
		log.Printf("storage: remove participant %s from %s: %v", key, roomID, err)
	}
	if err := r.client.Del(ctx, nameKey(roomID, key), userKey(roomID, key)).Err(); err != nil {
		log.Printf("storage: clean participant %s in %s: %v", key, roomID, err)
	}
}

func (r *RedisRepository) Participants(ctx context.Context, roomID string) []string {
	members, err := r.client.SMembers(ctx, participantsKey(roomID)).Result()
	if err != nil {
		log.Printf("storage: list participants of %s: %v", roomID, err)
		return []string{}
	}
	return members
}

func (r *RedisRepository) HasParticipant(ctx context.Context, roomID, key string) bool {
	ok, err := r.client.SIsMember(ctx, participantsKey(roomID), key).Result()
	if err != nil {
		log.Printf("storage: check participant %s in %s: %v", key, roomID, err)
		return false
	}
	return ok
}

func (r *RedisRepository) SetParticipantName(ctx context.Context, roomID, key, name string) {
	if err := r.client.Set(ctx, nameKey(roomID, key), name, 0).Err(); err != nil {
		log.Printf("storage: set name for %s in %s: %v", key, roomID, err)
	}
}

func (r *RedisRepository) ParticipantName(ctx context.Context, roomID, key string) (string, bool) {
	name, err := r.client.Get(ctx, nameKey(roomID, key)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("storage: get name for %s in %s: %v", key, roomID, err)
		}
		return "", false
	}
	return name, true
}

func (r *RedisRepository) DeleteParticipantName(ctx context.Context, roomID, key string) {
	if err := r.client.Del(ctx, nameKey(roomID, key)).Err(); err != nil {
		log.Printf("storage: delete name for %s in %s: %v", key, roomID, err)
	}
}

func (r *RedisRepository) AllParticipantNames(ctx context.Context, roomID string) map[string]string {
	names := make(map[string]string)
	for _, key := range r.Participants(ctx, roomID) {
		if name, ok := r.ParticipantName(ctx, roomID, key); ok {
			names[key] = name
		}
	}
	return names
}

func (r *RedisRepository) SetParticipantUser(ctx context.Context, roomID, key string, user *models.AuthUser) {
	if user == nil {
		r.DeleteParticipantUser(ctx, roomID, key)
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		log.Printf("storage: marshal user for %s in %s: %v", key, roomID, err)
		return
	}
	if err := r.client.Set(ctx, userKey(roomID, key), data, 0).Err(); err != nil {
		log.Printf("storage: set user for %s in %s: %v", key, roomID, err)
	}
}

func (r *RedisRepository) ParticipantUser(ctx context.Context, roomID, key string) *models.AuthUser {
	data, err := r.client.Get(ctx, userKey(roomID, key)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("storage: get user for %s in %s: %v", key, roomID, err)
		}
		return nil
	}
	var user models.AuthUser
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		log.Printf("storage: unmarshal user for %s in %s: %v", key, roomID, err)
		return nil
	}
	return &user
}

func (r *RedisRepository) DeleteParticipantUser(ctx context.Context, roomID, key string) {
	if err := r.client.Del(ctx, userKey(roomID, key)).Err(); err != nil {
		log.Printf("storage: delete user for %s in %s: %v", key, roomID, err)
	}
}

func (r *RedisRepository) AllParticipantUsers(ctx context.Context, roomID string) map[string]*models.AuthUser {
	users := make(map[string]*models.AuthUser)
	for _, key := range r.Participants(ctx, roomID) {
		if user := r.ParticipantUser(ctx, roomID, key); user != nil {
			users[key] = user
		}
	}
	return users
}

func (r *RedisRepository) AddMessage(ctx context.Context, roomID string, msg models.RoomMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("storage: marshal message for %s: %v", roomID, err)
		return
	}
	if err := r.client.RPush(ctx, messagesKey(roomID), data).Err(); err != nil {
		log.Printf("storage: add message to %s: %v", roomID, err)
	}
}

func (r *RedisRepository) Messages(ctx context.Context, roomID string) []models.RoomMessage {
	raw, err := r.client.LRange(ctx, messagesKey(roomID), 0, -1).Result()
	if err != nil {
		log.Printf("storage: list messages of %s: %v", roomID, err)
		return []models.RoomMessage{}
	}

	messages := make([]models.RoomMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.RoomMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			log.Printf("storage: unmarshal message in %s: %v", roomID, err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

func (r *RedisRepository) Name() string { return "redis" }

func (r *RedisRepository) Close() error { return r.client.Close() }

func roomKey(roomID string) string         { return "room:" + roomID }
func participantsKey(roomID string) string { return "room:" + roomID + ":participants" }
func messagesKey(roomID string) string     { return "room:" + roomID + ":messages" }

func nameKey(roomID, key string) string {
	return "room:" + roomID + ":participant:" + key + ":name"
}

func userKey(roomID, key string) string {
	return "room:" + roomID + ":participant:" + key + ":user"
}
