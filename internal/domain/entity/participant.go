package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ParticipantTypeIndividual = "INDIVIDUAL"
	ParticipantTypeClub       = "CLUB"
)

// PlaceholderLastName is assigned to participants created by a first OTP login.
const PlaceholderLastName = "Participant"

// Participant is a person or structure taking part in the campaign.
type Participant struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName        string    `gorm:"size:100;not null" json:"firstName"`
	LastName         string    `gorm:"size:100;not null;default:''" json:"lastName"`
	Email            string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Club             string    `gorm:"size:150;not null;default:''" json:"club"`
	ParticipantType  string    `gorm:"size:20;not null;default:'INDIVIDUAL'" json:"participantType"`
	OrganizationName string    `gorm:"size:150;not null;default:''" json:"organizationName,omitempty"`
	City             string    `gorm:"size:100;not null;default:''" json:"city,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Participant) TableName() string {
	return "participants"
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// NewPlaceholderParticipant builds the participant created on the first
// successful OTP verification for an unknown email.
func NewPlaceholderParticipant(email string) *Participant {
	firstName := email
	if at := strings.Index(email, "@"); at > 0 {
		firstName = email[:at]
	}
	return &Participant{
		FirstName:       firstName,
		LastName:        PlaceholderLastName,
		Email:           email,
		ParticipantType: ParticipantTypeIndividual,
	}
}
