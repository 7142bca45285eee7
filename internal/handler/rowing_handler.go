package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/service"
)

// RegistrationIDKey is the context key set by ExtractUintParam on Rowing
// Care Cup routes.
const RegistrationIDKey = "registrationID"

type RowingCareCupHandler struct {
	rowingService *service.RowingCareCupService
}

func NewRowingCareCupHandler(rowingService *service.RowingCareCupService) *RowingCareCupHandler {
	return &RowingCareCupHandler{rowingService: rowingService}
}

// Register handles POST /api/rowing-care-cup.
func (h *RowingCareCupHandler) Register(c *gin.Context) {
	var req dto.RowingRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	reg, err := h.rowingService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "register_rowing_care_cup", err)
		return
	}
	c.JSON(http.StatusCreated, dto.RowingRegistrationResponse{Success: true, Registration: reg})
}

// Stats handles GET /api/rowing-care-cup/stats.
func (h *RowingCareCupHandler) Stats(c *gin.Context) {
	stats, err := h.rowingService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "rowing_care_cup_stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// List handles GET /api/admin/rowing-care-cup.
func (h *RowingCareCupHandler) List(c *gin.Context) {
	regs, err := h.rowingService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "list_rowing_registrations", err)
		return
	}
	c.JSON(http.StatusOK, regs)
}

// MarkPaid handles PUT /api/admin/rowing-care-cup/:id/paid.
func (h *RowingCareCupHandler) MarkPaid(c *gin.Context) {
	reg, err := h.rowingService.MarkPaid(c.Request.Context(), c.MustGet(RegistrationIDKey).(uint))
	if err != nil {
		respondError(c, "mark_rowing_registration_paid", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "registration": reg})
}
