package dto

import (
	"time"

	"github.com/ffaviron/defirose-api/internal/domain/entity"
)

// RegisterParticipantRequest is the body of POST /api/participants.
type RegisterParticipantRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"omitempty,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Club      string `json:"club" binding:"omitempty,max=150"`
}

// PaginatedParticipantsResponse is one page of the participant directory.
type PaginatedParticipantsResponse struct {
	Participants []entity.Participant `json:"participants"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	PerPage      int                  `json:"per_page"`
}

// PublicParticipant is the participant view served on unauthenticated
// routes. It carries no contact details.
type PublicParticipant struct {
	ID               string    `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Club             string    `json:"club"`
	ParticipantType  string    `json:"participantType"`
	OrganizationName string    `json:"organizationName,omitempty"`
	City             string    `json:"city,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

func NewPublicParticipant(p *entity.Participant) *PublicParticipant {
	if p == nil {
		return nil
	}
	return &PublicParticipant{
		ID:               p.ID,
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Club:             p.Club,
		ParticipantType:  p.ParticipantType,
		OrganizationName: p.OrganizationName,
		City:             p.City,
		CreatedAt:        p.CreatedAt,
	}
}

// CampaignStats are the public campaign counters.
type CampaignStats struct {
	TotalParticipants int64   `json:"totalParticipants"`
	TotalKilometers   float64 `json:"totalKilometers"`
	TotalClubs        int64   `json:"totalClubs"`
}

// AdminStats extends CampaignStats with moderation counters.
type AdminStats struct {
	CampaignStats
	PendingEntries      int64 `json:"pendingEntries"`
	TotalEvents         int64 `json:"totalEvents"`
	PendingPhotos       int64 `json:"pendingPhotos"`
	RowingRegistrations int64 `json:"rowingRegistrations"`
}
