package entity

import "time"

// Photo is a picture shared by a participant. It is only shown publicly
// once an admin approved it.
type Photo struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ParticipantID string       `gorm:"type:varchar(36);not null;index" json:"participantId"`
	Participant   *Participant `gorm:"foreignKey:ParticipantID" json:"-"`
	URL           string       `gorm:"size:500;not null" json:"url"`
	Caption       string       `gorm:"size:500;not null;default:''" json:"caption,omitempty"`
	Approved      bool         `gorm:"not null;default:false;index" json:"approved"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func (Photo) TableName() string {
	return "photos"
}
