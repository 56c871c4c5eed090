package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/augustos0204/room-stream-api/internal/services"
)

type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

type CreateRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	room := h.roomService.CreateRoom(c.Request.Context(), req.Name)
	c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms := h.roomService.AllRooms(c.Request.Context())
	c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room := h.roomService.GetRoom(c.Request.Context(), c.Param("id"))
	if room == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom tears the room down. Connected members are notified through
// the gateway's deletion subscription, not from here.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	if !h.roomService.DeleteRoom(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "room deleted"})
}

func (h *RoomHandler) ListMessages(c *gin.Context) {
	roomID := c.Param("id")
	if h.roomService.GetRoom(c.Request.Context(), roomID) == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, h.roomService.Messages(c.Request.Context(), roomID))
}

func (h *RoomHandler) ListParticipants(c *gin.Context) {
	roomID := c.Param("id")
	if h.roomService.GetRoom(c.Request.Context(), roomID) == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, h.roomService.ParticipantsWithNames(c.Request.Context(), roomID))
}
