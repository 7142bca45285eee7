package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/service"
)

// KilometerHandler serves Défi Rose declarations and club totals.
type KilometerHandler struct {
	kilometerService *service.KilometerService
}

func NewKilometerHandler(kilometerService *service.KilometerService) *KilometerHandler {
	return &KilometerHandler{kilometerService: kilometerService}
}

// Submit handles POST /api/defi-rose/submit.
func (h *KilometerHandler) Submit(c *gin.Context) {
	var req dto.DefiRoseSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	entry, participant, err := h.kilometerService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "submit_kilometers", err)
		return
	}
	c.JSON(http.StatusCreated, dto.DefiRoseSubmitResponse{
		Success:     true,
		Entry:       entry,
		Participant: participant,
	})
}

// ListValidated handles GET /api/kilometers/validated.
func (h *KilometerHandler) ListValidated(c *gin.Context) {
	entries, err := h.kilometerService.ListValidated(c.Request.Context())
	if err != nil {
		respondError(c, "list_validated_kilometers", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicKilometerEntries(entries))
}

// ListByParticipant handles GET /api/kilometers/participant/:id.
func (h *KilometerHandler) ListByParticipant(c *gin.Context) {
	entries, err := h.kilometerService.ListByParticipant(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "list_participant_kilometers", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicKilometerEntries(entries))
}

// ListAll handles GET /api/admin/kilometers.
func (h *KilometerHandler) ListAll(c *gin.Context) {
	entries, err := h.kilometerService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "list_kilometers", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// EntryIDKey is the context key set by ExtractUintParam on validation routes.
const EntryIDKey = "entryID"

// Validate handles PUT /api/admin/kilometers/:id/validate. The route must be
// guarded by middleware.ExtractUintParam("id", EntryIDKey).
func (h *KilometerHandler) Validate(c *gin.Context) {
	id := c.MustGet(EntryIDKey).(uint)

	entry, err := h.kilometerService.Validate(c.Request.Context(), id)
	if err != nil {
		respondError(c, "validate_kilometers", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entry": entry})
}

// Clubs handles GET /api/clubs.
func (h *KilometerHandler) Clubs(c *gin.Context) {
	clubs, err := h.kilometerService.Clubs(c.Request.Context())
	if err != nil {
		respondError(c, "list_clubs", err)
		return
	}
	c.JSON(http.StatusOK, clubs)
}
