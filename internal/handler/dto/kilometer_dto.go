package dto

import "github.com/ffaviron/defirose-api/internal/domain/entity"

// Défi Rose submitter kinds.
const (
	SubmitterIndividual = "individual"
	SubmitterStructure  = "structure"
)

// DefiRoseSubmitRequest is the body of POST /api/defi-rose/submit. An
// individual is identified by Email, a structure (club, company, school)
// by StructureEmail.
type DefiRoseSubmitRequest struct {
	TypeParticipant  string  `json:"typeParticipant" binding:"required,oneof=individual structure"`
	FirstName        string  `json:"firstName" binding:"omitempty,max=100"`
	LastName         string  `json:"lastName" binding:"omitempty,max=100"`
	Email            string  `json:"email" binding:"omitempty,email"`
	StructureName    string  `json:"structureName" binding:"omitempty,max=150"`
	StructureEmail   string  `json:"structureEmail" binding:"omitempty,email"`
	Country          string  `json:"pays" binding:"omitempty,max=100"`
	Kilometers       float64 `json:"kilometers" binding:"required,gt=0"`
	Date             string  `json:"date" binding:"required"`
	ActivityType     string  `json:"activityType" binding:"omitempty"`
	Duration         string  `json:"duration" binding:"omitempty,max=50"`
	Location         string  `json:"location" binding:"omitempty,max=150"`
	Description      string  `json:"description" binding:"omitempty,max=2000"`
	ParticipantCount int     `json:"participantCount" binding:"omitempty,min=0"`
	PhotoURL         string  `json:"photoUrl" binding:"omitempty,max=500"`
}

// DefiRoseSubmitResponse is returned after a successful submission.
type DefiRoseSubmitResponse struct {
	Success     bool                   `json:"success"`
	Entry       *entity.KilometerEntry `json:"entry"`
	Participant *entity.Participant    `json:"participant"`
}

// PublicKilometerEntry is a kilometer entry whose participant is reduced
// to its public view.
type PublicKilometerEntry struct {
	entity.KilometerEntry
	Participant *PublicParticipant `json:"participant,omitempty"`
}

func NewPublicKilometerEntries(entries []entity.KilometerEntry) []PublicKilometerEntry {
	out := make([]PublicKilometerEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, PublicKilometerEntry{
			KilometerEntry: e,
			Participant:    NewPublicParticipant(e.Participant),
		})
	}
	return out
}
