package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

// Stable error_type values returned to clients.
const (
	errorTypeInvalidRequest = "invalid_request"
	errorTypeValidation     = "validation_error"
	errorTypeNotFound       = "not_found"
	errorTypeConflict       = "conflict"
	errorTypeUnauthorized   = "unauthorized"
	errorTypeForbidden      = "forbidden"
	errorTypeInternal       = "internal_error"
)

const internalErrorMessage = "Erreur technique. Veuillez réessayer plus tard."

func respondMessage(c *gin.Context, status int, errorType, message string) {
	c.JSON(status, dto.MessageResponse{
		Success:   false,
		Message:   message,
		ErrorType: errorType,
	})
}

func respondBadRequest(c *gin.Context, err error) {
	respondMessage(c, http.StatusBadRequest, errorTypeInvalidRequest, "Données de requête invalides: "+err.Error())
}

// respondError maps shared sentinel errors to an HTTP status. Anything
// unrecognised is logged and answered with a generic 500.
func respondError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		respondMessage(c, http.StatusBadRequest, errorTypeValidation, err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		respondMessage(c, http.StatusNotFound, errorTypeNotFound, "Ressource introuvable")
	case errors.Is(err, apperrors.ErrConflict):
		respondMessage(c, http.StatusConflict, errorTypeConflict, err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondMessage(c, http.StatusUnauthorized, errorTypeUnauthorized, "Authentification requise")
	case errors.Is(err, apperrors.ErrForbidden):
		respondMessage(c, http.StatusForbidden, errorTypeForbidden, "Accès refusé")
	default:
		logger.Error(c.Request.Context(), "request failed",
			zap.String("operation", operation),
			zap.Error(err),
		)
		respondMessage(c, http.StatusInternalServerError, errorTypeInternal, internalErrorMessage)
	}
}
