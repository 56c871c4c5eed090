package models

import "time"

// Room is the aggregate tracked by the repository. Participants holds
// participant keys in join order; Names and Users are keyed by the same
// participant keys and may be missing for a given key.
type Room struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Participants []string             `json:"participants"`
	Names        map[string]string    `json:"participantNames,omitempty"`
	Users        map[string]*AuthUser `json:"participantUsers,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	Messages     []RoomMessage        `json:"messages"`
}

// RoomMessage is a single event appended to a room's history.
type RoomMessage struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	UserID    string    `json:"userId,omitempty"`
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	User      *AuthUser `json:"user,omitempty"`
}

// RoomParticipant is the list-view projection of a room member.
// Name is null for participants that never provided one.
type RoomParticipant struct {
	Key  string  `json:"clientId"`
	Name *string `json:"name"`
}
