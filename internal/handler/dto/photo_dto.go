package dto

// SubmitPhotoRequest is the body of POST /api/photos.
type SubmitPhotoRequest struct {
	ParticipantID string `json:"participantId" binding:"required,max=36"`
	URL           string `json:"url" binding:"required,max=500"`
	Caption       string `json:"caption" binding:"omitempty,max=500"`
}

// Photo moderation filters for GET /api/admin/photos.
const (
	PhotoFilterAll      = "all"
	PhotoFilterApproved = "approved"
	PhotoFilterPending  = "pending"
)
