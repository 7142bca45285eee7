package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/service"
)

// ParticipantHandler serves the participant directory and public counters.
type ParticipantHandler struct {
	participantService *service.ParticipantService
	statsService       *service.StatsService
}

func NewParticipantHandler(participantService *service.ParticipantService, statsService *service.StatsService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		statsService:       statsService,
	}
}

// Register handles POST /api/participants. Registering an existing email
// returns the stored participant.
func (h *ParticipantHandler) Register(c *gin.Context) {
	var req dto.RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	participant, err := h.participantService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "register_participant", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "participant": participant})
}

// List handles GET /api/admin/participants.
func (h *ParticipantHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if err != nil || pageSize < 1 {
		pageSize = 50
	}

	resp, err := h.participantService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, "list_participants", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/participants/:id.
func (h *ParticipantHandler) Get(c *gin.Context) {
	participant, err := h.participantService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "get_participant", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPublicParticipant(participant))
}

// Stats handles GET /api/participants/stats.
func (h *ParticipantHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Campaign(c.Request.Context())
	if err != nil {
		respondError(c, "campaign_stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
