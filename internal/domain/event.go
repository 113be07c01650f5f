package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a listed tech event (hackathon, conference, meetup).
type Event struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Location    string    `json:"location" db:"location"`
	Category    string    `json:"category" db:"category"`
	Date        time.Time `json:"date" db:"date"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewEvent creates an event owned by the given user.
func NewEvent(title, description, location, category string, date time.Time, createdBy string) *Event {
	now := time.Now().UTC()
	return &Event{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Location:    location,
		Category:    category,
		Date:        date,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
