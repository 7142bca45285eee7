package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/service"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

const exportSheetName = "Participants"

// AdminHandler serves the back-office login, dashboard and exports.
type AdminHandler struct {
	adminService       *service.AdminService
	participantService *service.ParticipantService
	kilometerService   *service.KilometerService
	statsService       *service.StatsService
}

func NewAdminHandler(
	adminService *service.AdminService,
	participantService *service.ParticipantService,
	kilometerService *service.KilometerService,
	statsService *service.StatsService,
) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		participantService: participantService,
		kilometerService:   kilometerService,
		statsService:       statsService,
	}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	resp, err := h.adminService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondMessage(c, http.StatusUnauthorized, "invalid_credentials", "Email ou mot de passe incorrect")
			return
		}
		respondError(c, "admin_login", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.statsService.Admin(c.Request.Context())
	if err != nil {
		respondError(c, "admin_stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportParticipants handles GET /api/admin/export/participants.xlsx and
// streams every participant with their validated kilometers.
func (h *AdminHandler) ExportParticipants(c *gin.Context) {
	ctx := c.Request.Context()

	participants, err := h.participantService.All(ctx)
	if err != nil {
		respondError(c, "export_participants", err)
		return
	}
	totals, err := h.kilometerService.ValidatedTotals(ctx)
	if err != nil {
		respondError(c, "export_participants", err)
		return
	}

	f, err := buildParticipantsWorkbook(participants, totals)
	if err != nil {
		logger.Error(ctx, "failed to build participants workbook", zap.Error(err))
		respondMessage(c, http.StatusInternalServerError, errorTypeInternal, "Impossible de générer le fichier Excel")
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("participants_defi_rose_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error(ctx, "failed to write participants workbook", zap.Error(err))
	}
}

func buildParticipantsWorkbook(participants []entity.Participant, totals map[string]float64) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		f.Close()
		return nil, err
	}

	sw, err := f.NewStreamWriter(exportSheetName)
	if err != nil {
		f.Close()
		return nil, err
	}

	headers := []interface{}{"Prénom", "Nom", "Email", "Club", "Type", "Structure", "Ville", "Km validés", "Inscrit le"}
	if err := sw.SetRow("A1", headers); err != nil {
		f.Close()
		return nil, err
	}

	for i, p := range participants {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{
			sanitizeForExcel(p.FirstName),
			sanitizeForExcel(p.LastName),
			sanitizeForExcel(p.Email),
			sanitizeForExcel(p.Club),
			p.ParticipantType,
			sanitizeForExcel(p.OrganizationName),
			sanitizeForExcel(p.City),
			totals[p.ID],
			p.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := sw.SetRow(cell, row); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// sanitizeForExcel neutralises values that spreadsheet software would
// evaluate as formulas.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
