package dto

import "github.com/ffaviron/defirose-api/internal/domain/entity"

// RowingRegistrationRequest is the body of POST /api/rowing-care-cup. The
// fee is derived from Distance, never taken from the client.
type RowingRegistrationRequest struct {
	ParticipantID string `json:"participantId" binding:"required,max=36"`
	Category      string `json:"category" binding:"omitempty,oneof=individual team"`
	Distance      string `json:"distance" binding:"required"`
	TeamName      string `json:"teamName" binding:"omitempty,max=150"`
}

// RowingRegistrationResponse is returned after a registration.
type RowingRegistrationResponse struct {
	Success      bool                       `json:"success"`
	Registration *entity.RowingRegistration `json:"registration"`
}

// RowingStats are the public Rowing Care Cup counters. TotalAmount only
// counts paid registrations, in euros.
type RowingStats struct {
	Total              int64 `json:"total"`
	TotalRegistrations int64 `json:"totalRegistrations"`
	TotalAmount        int64 `json:"totalAmount"`
}
