package ws

import (
	"encoding/json"
	"errors"
	"regexp"
)

// Message is the wire frame: a named event with a JSON payload.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DefaultEmitEvent is used when an emit carries no event name.
const DefaultEmitEvent = "message"

// Gateway-level event names that application events must not collide with.
var reservedEvents = map[string]bool{
	"connect":                true,
	"disconnect":             true,
	"error":                  true,
	"joinedRoom":             true,
	"leftRoom":               true,
	"userJoined":             true,
	"userLeft":               true,
	"roomInfo":               true,
	"roomDeleted":            true,
	"participantNameUpdated": true,
	"tokenExpired":           true,
}

var eventNameRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.:-]*$`)

var (
	errEventNameInvalid  = errors.New("invalid event name")
	errEventNameReserved = errors.New("event name is reserved")
)

// validateEventName enforces the identifier grammar and keeps application
// events out of the reserved gateway namespace.
func validateEventName(name string) error {
	if len(name) == 0 || len(name) > 64 || !eventNameRe.MatchString(name) {
		return errEventNameInvalid
	}
	if reservedEvents[name] {
		return errEventNameReserved
	}
	return nil
}

type joinRoomPayload struct {
	RoomID          string `json:"roomId"`
	ParticipantName string `json:"participantName"`
}

type leaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

type emitPayload struct {
	RoomID  string `json:"roomId"`
	Event   string `json:"event"`
	Message string `json:"message"`
}

type getRoomInfoPayload struct {
	RoomID string `json:"roomId"`
}

type updateNamePayload struct {
	RoomID          string `json:"roomId"`
	ParticipantName string `json:"participantName"`
}
