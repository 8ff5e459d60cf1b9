package event_api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"boxoffice/internal/events"
	"boxoffice/internal/models"
	"boxoffice/internal/utils"
)

type EventService interface {
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, eventID string) (*models.Event, error)
	Create(ctx context.Context, event models.Event) (*models.Event, error)
	Update(ctx context.Context, event models.Event) (*models.Event, error)
	Delete(ctx context.Context, eventID string) error
}

type Handler struct {
	Events EventService
}

// RegisterPublic mounts the unauthenticated read routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/events", h.ListEvents)
	r.Get("/events/{eventID}", h.GetEvent)
}

// RegisterAdmin mounts the mutating routes; wrap with auth.RequireAdmin.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/events", h.CreateEvent)
	r.Put("/events/{eventID}", h.UpdateEvent)
	r.Delete("/events/{eventID}", h.DeleteEvent)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.Events.List(r.Context())
	if err != nil {
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.Events.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			utils.WriteMessage(w, http.StatusNotFound, "Event not found")
			return
		}
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to fetch event")
		return
	}
	utils.WriteJSON(w, http.StatusOK, event)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Events.Create(r.Context(), event)
	if err != nil {
		h.writeEventError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	event.ID = chi.URLParam(r, "eventID")

	updated, err := h.Events.Update(r.Context(), event)
	if err != nil {
		h.writeEventError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.Events.Delete(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		h.writeEventError(w, err)
		return
	}
	utils.WriteMessage(w, http.StatusOK, "Event deleted")
}

func (h *Handler) writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, events.ErrNotFound):
		utils.WriteMessage(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, events.ErrCapacityBelowSold):
		utils.WriteMessage(w, http.StatusBadRequest, "Cannot reduce capacity below tickets already sold")
	case errors.Is(err, events.ErrInvalidEvent):
		utils.WriteMessage(w, http.StatusBadRequest, err.Error())
	default:
		utils.WriteMessage(w, http.StatusInternalServerError, "Failed to save event")
	}
}
