package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ffaviron/defirose-api/internal/handler/dto"
	apperrors "github.com/ffaviron/defirose-api/internal/pkg/errors"
	"github.com/ffaviron/defirose-api/internal/service"
	"github.com/ffaviron/defirose-api/pkg/logger"
)

const (
	errorTypeThrottled      = "throttled"
	errorTypeDeliveryFailed = "delivery_failed"
	errorTypeInvalidCode    = "invalid_or_expired_code"
)

// OTPHandler exposes the passwordless login endpoints.
type OTPHandler struct {
	otpService *service.OTPService
}

func NewOTPHandler(otpService *service.OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

// SendCode handles POST /api/otp/send.
func (h *OTPHandler) SendCode(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	err := h.otpService.RequestCode(c.Request.Context(), req.Email)
	if err != nil {
		var throttle *service.ThrottleError
		switch {
		case errors.As(err, &throttle):
			seconds := int(math.Ceil(throttle.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			respondMessage(c, http.StatusTooManyRequests, errorTypeThrottled,
				"Un code a déjà été envoyé. Veuillez attendre "+strconv.Itoa(seconds)+" secondes avant de redemander.")
		case errors.Is(err, service.ErrOTPDelivery):
			respondMessage(c, http.StatusInternalServerError, errorTypeDeliveryFailed,
				"Erreur lors de l'envoi de l'email. Veuillez réessayer.")
		case errors.Is(err, apperrors.ErrValidation):
			respondMessage(c, http.StatusBadRequest, errorTypeValidation, "Format d'email invalide")
		default:
			logger.Error(c.Request.Context(), "otp send failed",
				zap.String("email", req.Email),
				zap.Time("at", time.Now().UTC()),
				zap.Error(err),
			)
			respondMessage(c, http.StatusInternalServerError, errorTypeInternal, internalErrorMessage)
		}
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Code envoyé avec succès !"})
}

// VerifyCode handles POST /api/otp/verify.
func (h *OTPHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	participant, err := h.otpService.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalidOrExpired):
			respondMessage(c, http.StatusUnauthorized, errorTypeInvalidCode, "Code invalide ou expiré")
		case errors.Is(err, service.ErrInvalidCodeFormat):
			respondMessage(c, http.StatusBadRequest, errorTypeValidation, "Code OTP invalide (6 chiffres requis)")
		case errors.Is(err, apperrors.ErrValidation):
			respondMessage(c, http.StatusBadRequest, errorTypeValidation, "Format d'email invalide")
		default:
			logger.Error(c.Request.Context(), "otp verify failed",
				zap.String("email", req.Email),
				zap.Time("at", time.Now().UTC()),
				zap.Error(err),
			)
			respondMessage(c, http.StatusInternalServerError, errorTypeInternal, internalErrorMessage)
		}
		return
	}

	c.JSON(http.StatusOK, dto.VerifyOTPResponse{Success: true, Participant: participant})
}
