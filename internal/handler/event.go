package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eventlens/api/internal/domain"
	"github.com/eventlens/api/internal/service"
)

// EventHandler handles the protected event CRUD endpoints.
type EventHandler struct {
	events   *service.EventService
	validate *AppValidator
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(events *service.EventService, validate *AppValidator) *EventHandler {
	return &EventHandler{events: events, validate: validate}
}

type eventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date" validate:"required"`
}

// List returns all events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, events)
}

// Create adds an event owned by the authenticated user.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	if err := h.validate.Validate(req); err != nil {
		WriteError(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), userID, req.Title, req.Description, req.Location, req.Category, req.Date)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, event)
}

// Update replaces an event's fields.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	if err := h.validate.Validate(req); err != nil {
		WriteError(w, err)
		return
	}

	event, err := h.events.Update(r.Context(), id, req.Title, req.Description, req.Location, req.Category, req.Date)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, event)
}

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.events.Delete(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}
