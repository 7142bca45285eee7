package entity

import "time"

// Club is a rowing club; TotalKm accumulates the kilometers declared at it.
type Club struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;uniqueIndex" json:"name"`
	TotalKm   float64   `gorm:"not null;default:0" json:"totalKm"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Club) TableName() string {
	return "clubs"
}
