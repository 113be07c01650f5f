package service

import (
	"context"
	"time"

	"github.com/eventlens/api/internal/domain"
)

// EventService handles the event catalog.
type EventService struct {
	events EventStore
}

// NewEventService creates a new EventService.
func NewEventService(events EventStore) *EventService {
	return &EventService{events: events}
}

// List returns all events ordered by date.
func (s *EventService) List(ctx context.Context) ([]domain.Event, error) {
	return s.events.List(ctx)
}

// Get retrieves one event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.FindByID(ctx, id)
}

// Create adds an event owned by the given user.
func (s *EventService) Create(ctx context.Context, userID, title, description, location, category string, date time.Time) (*domain.Event, error) {
	event := domain.NewEvent(title, description, location, category, date, userID)
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Update replaces the mutable fields of an event.
func (s *EventService) Update(ctx context.Context, id, title, description, location, category string, date time.Time) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = title
	event.Description = description
	event.Location = location
	event.Category = category
	event.Date = date

	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}
