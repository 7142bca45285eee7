package entity

import "time"

const (
	ActivityIndoor  = "INDOOR"
	ActivityOutdoor = "OUTDOOR"
	ActivityAvifit  = "AVIFIT"

	ParticipationIndividual = "INDIVIDUAL"
	ParticipationCollective = "COLLECTIVE"
)

// KilometerEntry is a distance declared by a participant for the Défi Rose.
// Entries only count towards campaign totals once validated by an admin.
type KilometerEntry struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	ParticipantID     string       `gorm:"type:varchar(36);not null;index" json:"participantId"`
	Participant       *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Date              time.Time    `gorm:"type:date;not null" json:"date"`
	ActivityType      string       `gorm:"size:20;not null" json:"activityType"`
	Kilometers        float64      `gorm:"not null" json:"kilometers"`
	Duration          string       `gorm:"size:50;not null;default:''" json:"duration,omitempty"`
	Location          string       `gorm:"size:150;not null;default:''" json:"location,omitempty"`
	ParticipationType string       `gorm:"size:20;not null" json:"participationType"`
	ParticipantCount  int          `gorm:"not null;default:1" json:"participantCount"`
	Description       string       `gorm:"type:text;not null;default:''" json:"description,omitempty"`
	PhotoURL          string       `gorm:"size:500;not null;default:''" json:"photoUrl,omitempty"`
	Validated         bool         `gorm:"not null;default:false;index" json:"validated"`
	CreatedAt         time.Time    `json:"createdAt"`
}

func (KilometerEntry) TableName() string {
	return "kilometer_entries"
}

// IsValidActivityType reports whether t is one of the supported activities.
func IsValidActivityType(t string) bool {
	switch t {
	case ActivityIndoor, ActivityOutdoor, ActivityAvifit:
		return true
	}
	return false
}
