package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/service"
)

// EventIDKey is the context key set by ExtractUintParam on event routes.
const EventIDKey = "eventID"

// EventHandler serves the campaign calendar.
type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /api/events.
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.eventService.List(c.Request.Context())
	if err != nil {
		respondError(c, "list_events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// Create handles POST /api/admin/events.
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	event, err := h.eventService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "create_event", err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Update handles PUT /api/admin/events/:id.
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	event, err := h.eventService.Update(c.Request.Context(), c.MustGet(EventIDKey).(uint), &req)
	if err != nil {
		respondError(c, "update_event", err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /api/admin/events/:id.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.Delete(c.Request.Context(), c.MustGet(EventIDKey).(uint)); err != nil {
		respondError(c, "delete_event", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Événement supprimé"})
}
