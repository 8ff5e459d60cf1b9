package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"boxoffice/internal/events/db"
	"boxoffice/internal/models"
)

var (
	ErrNotFound = db.ErrEventNotFound
	// ErrCapacityBelowSold rejects capacity edits that would drop
	// totalTickets under the number of tickets already issued. The ticket
	// subsystem relies on this never happening.
	ErrCapacityBelowSold = errors.New("cannot reduce capacity below tickets already sold")
	ErrInvalidEvent      = errors.New("invalid event")
)

type EventDBLayer interface {
	EventByID(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreateEvent(ctx context.Context, event models.Event) error
	UpdateEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, eventID string) error
	CountSold(ctx context.Context, eventID string) (int, error)
}

type EventService struct {
	DB EventDBLayer
}

func NewEventService(dbLayer EventDBLayer) *EventService {
	return &EventService{DB: dbLayer}
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

func (s *EventService) Get(ctx context.Context, eventID string) (*models.Event, error) {
	return s.DB.EventByID(ctx, eventID)
}

func (s *EventService) Create(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := validate(event); err != nil {
		return nil, err
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

// Update rewrites an event. Capacity may only shrink down to the sold count:
// outstanding tickets keep their own snapshots, but the admission check must
// never see totalTickets below sold.
func (s *EventService) Update(ctx context.Context, event models.Event) (*models.Event, error) {
	if err := validate(event); err != nil {
		return nil, err
	}

	existing, err := s.DB.EventByID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	if event.TotalTickets < existing.TotalTickets {
		sold, err := s.DB.CountSold(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count sold tickets: %w", err)
		}
		if event.TotalTickets < sold {
			return nil, ErrCapacityBelowSold
		}
	}

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	return &event, nil
}

func (s *EventService) Delete(ctx context.Context, eventID string) error {
	return s.DB.DeleteEvent(ctx, eventID)
}

func validate(event models.Event) error {
	if event.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if event.TotalTickets < 0 {
		return fmt.Errorf("%w: totalTickets must not be negative", ErrInvalidEvent)
	}
	if event.TicketPrice < 0 {
		return fmt.Errorf("%w: ticketPrice must not be negative", ErrInvalidEvent)
	}
	return nil
}
