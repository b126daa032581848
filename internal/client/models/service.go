package models

// Service is an offering from the studio catalog.
type Service struct {
	ID              ID      `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"durationMinutes"`
	Category        string  `json:"category,omitempty"`
	Description     string  `json:"description,omitempty"`
}
