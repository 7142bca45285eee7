package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	"github.com/ffaviron/defirose-api/internal/service"
)

// PhotoIDKey is the context key set by ExtractUintParam on photo routes.
const PhotoIDKey = "photoID"

// PhotoHandler serves the photo gallery and its moderation queue.
type PhotoHandler struct {
	photoService *service.PhotoService
}

func NewPhotoHandler(photoService *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// ListApproved handles GET /api/photos and GET /api/photos/approved.
func (h *PhotoHandler) ListApproved(c *gin.Context) {
	photos, err := h.photoService.ListApproved(c.Request.Context())
	if err != nil {
		respondError(c, "list_approved_photos", err)
		return
	}
	c.JSON(http.StatusOK, photos)
}

// Submit handles POST /api/photos.
func (h *PhotoHandler) Submit(c *gin.Context) {
	var req dto.SubmitPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	photo, err := h.photoService.Submit(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "submit_photo", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "photo": photo})
}

// List handles GET /api/admin/photos?status=all|approved|pending.
func (h *PhotoHandler) List(c *gin.Context) {
	photos, err := h.photoService.List(c.Request.Context(), c.DefaultQuery("status", dto.PhotoFilterAll))
	if err != nil {
		respondError(c, "list_photos", err)
		return
	}
	c.JSON(http.StatusOK, photos)
}

// Approve handles POST /api/admin/photos/:id/approve.
func (h *PhotoHandler) Approve(c *gin.Context) {
	photo, err := h.photoService.Approve(c.Request.Context(), c.MustGet(PhotoIDKey).(uint))
	if err != nil {
		respondError(c, "approve_photo", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "photo": photo})
}

// Delete handles DELETE /api/admin/photos/:id.
func (h *PhotoHandler) Delete(c *gin.Context) {
	if err := h.photoService.Delete(c.Request.Context(), c.MustGet(PhotoIDKey).(uint)); err != nil {
		respondError(c, "delete_photo", err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Photo supprimée"})
}
