package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/augustos0204/room-stream-api/internal/services"
)

type ApplicationHandler struct {
	appService *services.ApplicationService
}

func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

type CreateApplicationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateApplicationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// CreateApplication returns the full key exactly once; every later read
// sees the masked preview.
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required"})
		return
	}

	app, err := h.appService.Create(c.GetString("user_id"), req.Name, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	items, err := h.appService.List(c.GetString("user_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.appService.Get(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          app.ID,
		"name":        app.Name,
		"description": app.Description,
		"keyPreview":  services.MaskAPIKey(app.Key),
		"isActive":    app.IsActive,
		"createdAt":   app.CreatedAt,
		"updatedAt":   app.UpdatedAt,
	})
}

func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	var req UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	app, err := h.appService.Update(c.GetString("user_id"), c.Param("id"), services.UpdateApplicationParams{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          app.ID,
		"name":        app.Name,
		"description": app.Description,
		"keyPreview":  services.MaskAPIKey(app.Key),
		"isActive":    app.IsActive,
		"updatedAt":   app.UpdatedAt,
	})
}

func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	if err := h.appService.Delete(c.GetString("user_id"), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "application deleted"})
}

// RegenerateKey rotates the secret and returns the new value in full. The
// old key stops working immediately.
func (h *ApplicationHandler) RegenerateKey(c *gin.Context) {
	app, err := h.appService.RegenerateKey(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

func (h *ApplicationHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrStoreDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrApplicationOwner):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
