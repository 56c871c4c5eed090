package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/augustos0204/room-stream-api/internal/config"
	"github.com/augustos0204/room-stream-api/internal/events"
	"github.com/augustos0204/room-stream-api/internal/identity"
	"github.com/augustos0204/room-stream-api/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway terminates the realtime protocol: it authenticates connections,
// drives join/leave/emit and keeps per-connection token revalidation alive.
// Room deletion reaches it through the event bus, never by direct call.
type Gateway struct {
	hub      *Hub
	rooms    *services.RoomService
	apps     *services.ApplicationService
	provider *identity.Provider
	bus      *events.Bus

	apiKey             string
	namespace          string
	validationInterval time.Duration
}

func NewGateway(
	cfg *config.Config,
	hub *Hub,
	rooms *services.RoomService,
	apps *services.ApplicationService,
	provider *identity.Provider,
	bus *events.Bus,
) *Gateway {
	g := &Gateway{
		hub:                hub,
		rooms:              rooms,
		apps:               apps,
		provider:           provider,
		bus:                bus,
		apiKey:             cfg.APIKey,
		namespace:          cfg.WSNamespace,
		validationInterval: cfg.TokenValidationInterval,
	}
	bus.Subscribe(events.RoomDeleted, g.onRoomDeleted)
	return g
}

// credentials presented during the upgrade handshake. Each value can arrive
// through the auth payload (`auth` query parameter carrying JSON), a
// dedicated header, or a plain query parameter, in that precedence order.
type credentials struct {
	appKey string
	apiKey string
	token  string
}

func extractCredentials(r *http.Request) credentials {
	q := r.URL.Query()

	var auth struct {
		AppKey string `json:"appKey"`
		APIKey string `json:"apiKey"`
		Token  string `json:"token"`
	}
	if raw := q.Get("auth"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &auth); err != nil {
			log.Printf("ws: malformed auth payload: %v", err)
		}
	}

	bearer := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		bearer = strings.TrimPrefix(header, "Bearer ")
	}

	return credentials{
		appKey: firstNonEmpty(auth.AppKey, r.Header.Get("X-App-Key"), q.Get("appKey")),
		apiKey: firstNonEmpty(auth.APIKey, r.Header.Get("X-Api-Key"), q.Get("apiKey")),
		token:  firstNonEmpty(auth.Token, bearer, q.Get("token")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HandleWebSocket upgrades the connection, authenticates it and runs the
// protocol loop until the transport closes.
func (g *Gateway) HandleWebSocket(c *gin.Context) {
	creds := extractCredentials(c.Request)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade error: %v", err)
		return
	}

	client := newClient(uuid.NewString(), conn)
	if !g.authenticate(client, creds) {
		client.close()
		return
	}

	g.bus.Publish(events.ClientConnected, events.Payload{
		ClientID:  client.ID,
		Namespace: g.namespace,
		Timestamp: time.Now(),
	})

	g.run(client)
}

// authenticate applies the scheme precedence: application key, then global
// shared key, then bearer token. With no global key configured and no other
// scheme resolving, the connection is accepted anonymously.
func (g *Gateway) authenticate(client *Client, creds credentials) bool {
	if creds.appKey != "" {
		app := g.apps.ValidateKey(creds.appKey)
		if app == nil {
			log.Printf("ws: rejected %s: invalid application key", client.ID)
			client.Send("error", gin.H{"message": "Authentication failed: invalid or inactive application key."})
			return false
		}
		client.Identity = identity.FromApplication(client.ID, app)
		log.Printf("ws: application connected: %s (%s)", app.Name, app.ID)
		return true
	}

	if g.apiKey != "" && creds.apiKey == g.apiKey {
		client.Identity = identity.Anonymous(client.ID)
		log.Printf("ws: client connected with shared key: %s", client.ID)
		return true
	}

	if g.provider.Enabled() {
		if creds.token == "" {
			log.Printf("ws: rejected %s: missing token", client.ID)
			client.Send("error", gin.H{"message": "Authentication failed: missing token. Provide it via auth.token, Authorization header or token query parameter."})
			return false
		}

		user, err := g.provider.ValidateToken(context.Background(), creds.token)
		if err != nil {
			log.Printf("ws: token validation for %s: %v", client.ID, err)
		}
		if user == nil {
			log.Printf("ws: rejected %s: invalid token", client.ID)
			client.Send("error", gin.H{"message": "Authentication failed: invalid or expired token."})
			return false
		}

		client.Identity = identity.Authenticated(client.ID, user)
		client.token = creds.token
		g.startTokenValidation(client)
		log.Printf("ws: user authenticated: %s (%s)", user.ID, user.Email)
		return true
	}

	if g.apiKey != "" {
		log.Printf("ws: rejected %s: invalid or missing API key", client.ID)
		client.Send("error", gin.H{"message": "Authentication failed: invalid or missing API key. Provide it via auth.apiKey, X-Api-Key header or apiKey query parameter."})
		return false
	}

	// No scheme configured: development default.
	client.Identity = identity.Anonymous(client.ID)
	log.Printf("ws: client connected: %s", client.ID)
	return true
}

func (g *Gateway) run(client *Client) {
	defer g.cleanup(client)

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			client.Send("error", gin.H{"message": "malformed frame"})
			continue
		}
		g.dispatch(client, frame)
	}
}

func (g *Gateway) dispatch(client *Client, frame inboundFrame) {
	ctx := context.Background()

	switch frame.Event {
	case "joinRoom":
		var p joinRoomPayload
		if !decode(client, frame.Data, &p) {
			return
		}
		g.handleJoinRoom(ctx, client, p)
	case "leaveRoom":
		var p leaveRoomPayload
		if !decode(client, frame.Data, &p) {
			return
		}
		g.handleLeaveRoom(ctx, client, p.RoomID)
	case "emit", "sendMessage":
		var p emitPayload
		if !decode(client, frame.Data, &p) {
			return
		}
		g.handleEmit(ctx, client, p)
	case "getRoomInfo":
		var p getRoomInfoPayload
		if !decode(client, frame.Data, &p) {
			return
		}
		g.handleGetRoomInfo(ctx, client, p.RoomID)
	case "updateParticipantName":
		var p updateNamePayload
		if !decode(client, frame.Data, &p) {
			return
		}
		g.handleUpdateParticipantName(ctx, client, p)
	default:
		client.Send("error", gin.H{"message": "unknown event: " + frame.Event})
	}
}

func decode(client *Client, raw json.RawMessage, dst interface{}) bool {
	if err := json.Unmarshal(raw, dst); err != nil {
		client.Send("error", gin.H{"message": "invalid payload"})
		return false
	}
	return true
}

func (g *Gateway) handleJoinRoom(ctx context.Context, client *Client, p joinRoomPayload) {
	room := g.rooms.GetRoom(ctx, p.RoomID)
	if room == nil {
		client.Send("error", gin.H{"message": "room not found"})
		return
	}
	if len(p.ParticipantName) > 100 {
		client.Send("error", gin.H{"message": "participant name too long"})
		return
	}

	displayName := client.Identity.DisplayName(p.ParticipantName)
	key := client.Identity.Key()

	g.hub.Add(p.RoomID, client)
	g.rooms.JoinRoom(ctx, p.RoomID, key, displayName, client.Identity.User)

	participants := g.rooms.ParticipantsWithNames(ctx, p.RoomID)

	g.hub.BroadcastExcept(p.RoomID, client, "userJoined", gin.H{
		"clientId":         key,
		"participantName":  nullable(displayName),
		"roomId":           room.ID,
		"roomName":         room.Name,
		"participantCount": len(participants),
		"user":             client.Identity.User,
		"application":      client.Identity.App,
		"isApplication":    client.Identity.App != nil,
	})

	client.Send("joinedRoom", gin.H{
		"roomId":         room.ID,
		"roomName":       room.Name,
		"participants":   participants,
		"recentMessages": g.rooms.RecentMessages(ctx, p.RoomID),
	})

	log.Printf("ws: client %s (%s) joined room %s", client.ID, client.Identity.Kind, p.RoomID)
}

func (g *Gateway) handleLeaveRoom(ctx context.Context, client *Client, roomID string) {
	key := client.Identity.Key()

	name, _ := g.rooms.ParticipantName(ctx, roomID, key)
	displayName := client.Identity.DisplayName(name)

	g.hub.Remove(roomID, client)
	if !g.rooms.LeaveRoom(ctx, roomID, key) {
		client.Send("error", gin.H{"message": "room not found"})
		return
	}

	count := len(g.rooms.ParticipantsWithNames(ctx, roomID))
	room := g.rooms.GetRoom(ctx, roomID)
	roomName := ""
	if room != nil {
		roomName = room.Name
	}

	g.hub.Broadcast(roomID, "userLeft", gin.H{
		"clientId":         key,
		"participantName":  nullable(displayName),
		"roomId":           roomID,
		"roomName":         roomName,
		"participantCount": count,
		"isApplication":    client.Identity.App != nil,
	})
	client.Send("leftRoom", gin.H{"roomId": roomID})

	log.Printf("ws: client %s left room %s", client.ID, roomID)
}

func (g *Gateway) handleEmit(ctx context.Context, client *Client, p emitPayload) {
	event := p.Event
	if event == "" {
		event = DefaultEmitEvent
	}
	if err := validateEventName(event); err != nil {
		client.Send("error", gin.H{"message": err.Error()})
		return
	}

	key := client.Identity.Key()
	msg := g.rooms.AddMessage(ctx, p.RoomID, key, event, p.Message, client.Identity.User)
	if msg == nil {
		client.Send("error", gin.H{"message": "could not send the event"})
		return
	}

	g.hub.Broadcast(p.RoomID, event, gin.H{
		"id":            msg.ID,
		"clientId":      msg.ClientID,
		"userId":        msg.UserID,
		"event":         msg.Event,
		"message":       msg.Message,
		"timestamp":     msg.Timestamp,
		"roomId":        p.RoomID,
		"user":          msg.User,
		"application":   client.Identity.App,
		"isApplication": client.Identity.App != nil,
	})

	log.Printf("ws: event [%s] emitted in room %s by %s", event, p.RoomID, key)
}

func (g *Gateway) handleGetRoomInfo(ctx context.Context, client *Client, roomID string) {
	room := g.rooms.GetRoom(ctx, roomID)
	if room == nil {
		client.Send("error", gin.H{"message": "room not found"})
		return
	}

	participants := g.rooms.ParticipantsWithNames(ctx, roomID)
	client.Send("roomInfo", gin.H{
		"id":               room.ID,
		"name":             room.Name,
		"participantCount": len(participants),
		"participants":     participants,
		"messageCount":     len(room.Messages),
		"createdAt":        room.CreatedAt,
	})
}

func (g *Gateway) handleUpdateParticipantName(ctx context.Context, client *Client, p updateNamePayload) {
	// Only anonymous connections own their display name.
	if client.Identity.App != nil {
		client.Send("error", gin.H{"message": "applications cannot update their name"})
		return
	}
	if client.Identity.User != nil {
		client.Send("error", gin.H{"message": "authenticated users cannot update their name"})
		return
	}
	if len(p.ParticipantName) > 100 {
		client.Send("error", gin.H{"message": "participant name too long"})
		return
	}

	key := client.Identity.Key()
	if !g.rooms.UpdateParticipantName(ctx, p.RoomID, key, p.ParticipantName) {
		client.Send("error", gin.H{"message": "could not update the name"})
		return
	}

	payload := gin.H{
		"clientId":        key,
		"participantName": p.ParticipantName,
		"roomId":          p.RoomID,
	}
	g.hub.BroadcastExcept(p.RoomID, client, "participantNameUpdated", payload)
	client.Send("participantNameUpdated", payload)
}

// cleanup is the single teardown path for a connection: it cancels the
// revalidation timer, announces the disconnect and sweeps every room for
// the connection's participant key. A failure in one room must not stop
// the sweep; a missed room would leave a ghost participant forever.
func (g *Gateway) cleanup(client *Client) {
	client.stopValidation()
	client.close()

	g.bus.Publish(events.ClientDisconnected, events.Payload{
		ClientID:  client.ID,
		Namespace: g.namespace,
		Timestamp: time.Now(),
	})

	ctx := context.Background()
	key := client.Identity.Key()

	for _, room := range g.rooms.AllRooms(ctx) {
		if !containsKey(room.Participants, key) {
			continue
		}

		name, _ := g.rooms.ParticipantName(ctx, room.ID, key)
		displayName := client.Identity.DisplayName(name)

		g.rooms.LeaveRoom(ctx, room.ID, key)
		g.hub.Remove(room.ID, client)

		count := len(g.rooms.ParticipantsWithNames(ctx, room.ID))
		g.hub.Broadcast(room.ID, "userLeft", gin.H{
			"clientId":         key,
			"participantName":  nullable(displayName),
			"roomId":           room.ID,
			"roomName":         room.Name,
			"participantCount": count,
			"isApplication":    client.Identity.App != nil,
		})
	}

	g.hub.RemoveEverywhere(client)
	log.Printf("ws: client disconnected: %s", client.ID)
}

// startTokenValidation arms the recurring introspection check for a
// bearer-authenticated connection.
func (g *Gateway) startTokenValidation(client *Client) {
	ctx, cancel := context.WithCancel(context.Background())
	client.setValidationCancel(cancel)

	go func() {
		ticker := time.NewTicker(g.validationInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				user, err := g.provider.ValidateToken(ctx, client.token)
				if err != nil {
					log.Printf("ws: revalidation for %s: %v", client.ID, err)
				}
				if user == nil {
					userID := client.Identity.SubjectID()
					log.Printf("ws: token expired for user %s, disconnecting", userID)
					client.Send("tokenExpired", gin.H{
						"message": "Your session has expired. Please log in again.",
						"userId":  userID,
					})
					client.close()
					client.stopValidation()
					return
				}
			}
		}
	}()
}

// onRoomDeleted broadcasts termination to the deleted room's members and
// disbands the delivery group. Subscribing here keeps the coordinator from
// ever referencing the gateway.
func (g *Gateway) onRoomDeleted(p events.Payload) {
	members := g.hub.Close(p.RoomID)
	for _, c := range members {
		c.Send("roomDeleted", gin.H{
			"roomId":   p.RoomID,
			"roomName": p.RoomName,
			"message":  "room \"" + p.RoomName + "\" was deleted",
		})
	}
	if len(members) > 0 {
		log.Printf("ws: deletion broadcast sent to %d members of room %s", len(members), p.RoomID)
	}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// nullable maps an empty display name to JSON null, matching the wire
// contract for unnamed participants.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
