package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"boxoffice/internal/models"
	"boxoffice/internal/tickets/db"
	"boxoffice/internal/tickets/qr"
)

// Sentinel errors surfaced to the API layer.
var (
	ErrEventNotFound    = db.ErrEventNotFound
	ErrNotEnoughTickets = db.ErrNotEnoughTickets
	ErrInvalidQuantity  = errors.New("quantity must be a positive integer")
	ErrEventBusy        = errors.New("another purchase for this event is in progress")
)

// Lock acquisition retries before giving up with ErrEventBusy.
var (
	lockAttempts   = 20
	lockRetryDelay = 25 * time.Millisecond
)

type TicketDBLayer interface {
	IssueTickets(ctx context.Context, eventID string, quantity int, mint func(event models.Event) models.Ticket) ([]models.Ticket, error)
	EventByID(ctx context.Context, eventID string) (*models.Event, error)
	TicketByID(ctx context.Context, ticketID string) (*models.Ticket, error)
	TicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	AllTickets(ctx context.Context) ([]models.Ticket, error)
}

type EventLocker interface {
	LockEvent(ctx context.Context, eventID, token string) (bool, error)
	UnlockEvent(ctx context.Context, eventID, token string) error
}

type BatchPublisher interface {
	PublishTicketsIssued(ctx context.Context, batch models.TicketBatch) error
}

type TicketService struct {
	DB    TicketDBLayer
	Locks EventLocker    // optional, nil skips the distributed lock
	Kafka BatchPublisher // optional, nil skips publishing
	QR    *qr.Generator
}

func NewTicketService(dbLayer TicketDBLayer, locks EventLocker, kafka BatchPublisher, qrGen *qr.Generator) *TicketService {
	if qrGen == nil {
		qrGen = qr.NewGenerator("")
	}
	return &TicketService{DB: dbLayer, Locks: locks, Kafka: kafka, QR: qrGen}
}

// Purchase admits and issues a batch of tickets. Either all quantity tickets
// are created or none are. The capacity check and the inserts run in one
// atomic unit in the DB layer; the optional event lock serializes buyers of
// the same event across processes.
func (s *TicketService) Purchase(ctx context.Context, eventID string, quantity int, userID, userEmail string) ([]models.Ticket, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if s.Locks != nil {
		token := uuid.New().String()
		acquired := false
		for attempt := 0; attempt < lockAttempts; attempt++ {
			ok, err := s.Locks.LockEvent(ctx, eventID, token)
			if err != nil {
				return nil, fmt.Errorf("event lock: %w", err)
			}
			if ok {
				acquired = true
				break
			}
			time.Sleep(lockRetryDelay)
		}
		if !acquired {
			return nil, ErrEventBusy
		}
		defer func() {
			if err := s.Locks.UnlockEvent(ctx, eventID, token); err != nil {
				fmt.Printf("failed to release purchase lock for event %s: %v\n", eventID, err)
			}
		}()
	}

	purchasedAt := time.Now().UTC()
	issued, err := s.DB.IssueTickets(ctx, eventID, quantity, func(event models.Event) models.Ticket {
		ticketID := uuid.New().String()
		return models.Ticket{
			ID:           ticketID,
			EventID:      event.ID,
			UserID:       userID,
			UserEmail:    userEmail,
			PurchaseDate: purchasedAt,
			Price:        event.TicketPrice,
			QRCodeURL:    s.QR.VerificationURL(ticketID),
			EventName:    event.Title,
			EventDate:    event.Date,
		}
	})
	if err != nil {
		return nil, err
	}

	if s.Kafka != nil {
		ticketIDs := make([]string, len(issued))
		for i, t := range issued {
			ticketIDs[i] = t.ID
		}
		batch := models.TicketBatch{
			EventID:   eventID,
			UserID:    userID,
			Quantity:  quantity,
			TicketIDs: ticketIDs,
			IssuedAt:  purchasedAt,
		}
		// Publishing is best-effort: the tickets are already committed.
		if err := s.Kafka.PublishTicketsIssued(ctx, batch); err != nil {
			fmt.Printf("kafka publish error (tickets issued): %v\n", err)
		}
	}

	return issued, nil
}

func (s *TicketService) TicketsForUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	tickets, err := s.DB.TicketsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets for user %s: %w", userID, err)
	}
	return tickets, nil
}

func (s *TicketService) AllTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets, err := s.DB.AllTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tickets: %w", err)
	}
	return tickets, nil
}

func (s *TicketService) Ticket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	ticket, err := s.DB.TicketByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("ticket %s not found: %w", ticketID, err)
	}
	return ticket, nil
}
