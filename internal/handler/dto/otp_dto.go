package dto

import "github.com/ffaviron/defirose-api/internal/domain/entity"

// SendOTPRequest is the body of POST /api/otp/send.
type SendOTPRequest struct {
	Email string `json:"email"`
}

// VerifyOTPRequest is the body of POST /api/otp/verify.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// VerifyOTPResponse is returned when a code grants access.
type VerifyOTPResponse struct {
	Success     bool                `json:"success"`
	Participant *entity.Participant `json:"participant"`
}

// MessageResponse is the generic success / failure envelope.
type MessageResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type,omitempty"`
}
