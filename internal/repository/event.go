package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eventlens/api/internal/domain"
)

const eventColumns = `id, title, description, location, category, date, created_by, created_at, updated_at`

// EventRepository handles event data access operations.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns all events ordered by date.
func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	events := []domain.Event{}
	err := r.db.SelectContext(ctx, &events,
		`SELECT `+eventColumns+` FROM events ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID retrieves an event by ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	err := r.db.GetContext(ctx, &event,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find event by id %s: %w", id, err)
	}
	return &event, nil
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO events (id, title, description, location, category, date,
		                     created_by, created_at, updated_at)
		 VALUES (:id, :title, :description, :location, :category, :date,
		         :created_by, :created_at, :updated_at)`,
		event)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update persists the mutable fields of the event.
func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	res, err := r.db.NamedExecContext(ctx,
		`UPDATE events
		 SET title = :title,
		     description = :description,
		     location = :location,
		     category = :category,
		     date = :date,
		     updated_at = NOW()
		 WHERE id = :id`,
		event)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an event by ID.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
