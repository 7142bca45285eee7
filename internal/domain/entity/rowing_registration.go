package entity

import "time"

const (
	RowingCategoryIndividual = "individual"
	RowingCategoryTeam       = "team"
)

// RowingRace is one race of the Rowing Care Cup and its entry fee in euros.
type RowingRace struct {
	Distance string
	Category string
	Label    string
	Price    int
}

// RowingRaces lists the races open for registration, keyed by distance id.
var RowingRaces = map[string]RowingRace{
	"500m-femmes":        {Distance: "500m-femmes", Category: RowingCategoryIndividual, Label: "500m Femmes", Price: 5},
	"500m-hommes":        {Distance: "500m-hommes", Category: RowingCategoryIndividual, Label: "500m Hommes", Price: 5},
	"500m-femmes-cancer": {Distance: "500m-femmes-cancer", Category: RowingCategoryIndividual, Label: "500m Femmes atteintes d'un cancer", Price: 5},
	"4x500-femmes":       {Distance: "4x500-femmes", Category: RowingCategoryTeam, Label: "4x500m Relais Féminin (dont 2 femmes atteintes d'un cancer)", Price: 16},
	"4x500-mixte":        {Distance: "4x500-mixte", Category: RowingCategoryTeam, Label: "4x500m Relais Mixte (dont 2 femmes atteintes d'un cancer)", Price: 16},
}

// RowingRegistration is a paid entry to the Rowing Care Cup indoor race.
type RowingRegistration struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ParticipantID string       `gorm:"type:varchar(36);not null;index" json:"participantId"`
	Participant   *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Category      string       `gorm:"size:20;not null" json:"category"`
	Distance      string       `gorm:"size:50;not null" json:"distance"`
	Gender        string       `gorm:"size:150;not null;default:''" json:"gender,omitempty"`
	TeamType      string       `gorm:"size:150;not null;default:''" json:"teamType,omitempty"`
	TeamName      string       `gorm:"size:150;not null;default:''" json:"teamName,omitempty"`
	Price         int          `gorm:"not null" json:"price"`
	Paid          bool         `gorm:"not null;default:false" json:"paid"`
	CreatedAt     time.Time    `json:"createdAt"`
}

func (RowingRegistration) TableName() string {
	return "rowing_care_cup_registrations"
}
