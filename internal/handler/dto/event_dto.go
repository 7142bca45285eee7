package dto

// EventRequest is the body of POST /api/admin/events and
// PUT /api/admin/events/:id. Dates are YYYY-MM-DD.
type EventRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"omitempty,max=5000"`
	DateStart   string   `json:"dateStart" binding:"required"`
	DateEnd     string   `json:"dateEnd" binding:"omitempty"`
	TimeInfo    string   `json:"timeInfo" binding:"omitempty,max=150"`
	EventType   string   `json:"eventType" binding:"omitempty,max=50"`
	Color       string   `json:"color" binding:"omitempty,max=100"`
	Activities  []string `json:"activities" binding:"omitempty,max=20,dive,max=300"`
	Status      string   `json:"status" binding:"omitempty"`
}
