package entity

import "time"

const (
	EventStatusUpcoming  = "UPCOMING"
	EventStatusActive    = "ACTIVE"
	EventStatusCompleted = "COMPLETED"
	EventStatusFeatured  = "FEATURED"
)

// Event is an entry of the campaign calendar.
type Event struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null;default:''" json:"description"`
	DateStart   time.Time  `gorm:"type:date;not null;index" json:"dateStart"`
	DateEnd     *time.Time `gorm:"type:date" json:"dateEnd,omitempty"`
	TimeInfo    string     `gorm:"size:150;not null;default:''" json:"timeInfo,omitempty"`
	EventType   string     `gorm:"size:50;not null;default:'CHALLENGE'" json:"eventType"`
	Color       string     `gorm:"size:100;not null;default:''" json:"color"`
	Activities  []string   `gorm:"serializer:json;type:text" json:"activities"`
	Status      string     `gorm:"size:20;not null;default:'UPCOMING'" json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Event) TableName() string {
	return "events"
}

// IsValidEventStatus reports whether s is a known calendar status.
func IsValidEventStatus(s string) bool {
	switch s {
	case EventStatusUpcoming, EventStatusActive, EventStatusCompleted, EventStatusFeatured:
		return true
	}
	return false
}
