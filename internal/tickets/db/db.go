package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"boxoffice/internal/models"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrNotEnoughTickets = errors.New("not enough tickets available")
)

type DB struct {
	Bun *bun.DB
}

// IssueTickets runs the admission check and the batch insert in one
// transaction. The event row is locked before counting so two concurrent
// purchases against the same event cannot jointly oversell it. mint is called
// once per ticket inside the transaction, against the locked event row, so the
// price/name/date snapshots can never be stale.
//
// On ErrEventNotFound or ErrNotEnoughTickets nothing is written; an insert
// failure rolls back the whole batch.
func (d *DB) IssueTickets(ctx context.Context, eventID string, quantity int, mint func(event models.Event) models.Ticket) ([]models.Ticket, error) {
	var issued []models.Ticket

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var event models.Event
		q := tx.NewSelect().
			Model(&event).
			Where("id = ?", eventID)
		// SQLite has no FOR UPDATE; its single-writer transactions already
		// serialize the check-and-insert.
		if d.Bun.Dialect().Name() != dialect.SQLite {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEventNotFound
			}
			return fmt.Errorf("load event %s: %w", eventID, err)
		}

		sold, err := tx.NewSelect().
			Model((*models.Ticket)(nil)).
			Where("event_id = ?", eventID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count sold tickets: %w", err)
		}

		if sold+quantity > event.TotalTickets {
			return ErrNotEnoughTickets
		}

		issued = issued[:0]
		for i := 0; i < quantity; i++ {
			issued = append(issued, mint(event))
		}

		if _, err := tx.NewInsert().Model(&issued).Exec(ctx); err != nil {
			return fmt.Errorf("insert tickets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func (d *DB) EventByID(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (d *DB) TicketByID(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("id = ?", ticketID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) TicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0)
	err := d.Bun.NewSelect().
		Model(&tickets).
		Where("user_id = ?", userID).
		Order("purchase_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (d *DB) AllTickets(ctx context.Context) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0)
	err := d.Bun.NewSelect().
		Model(&tickets).
		Order("purchase_date DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return tickets, nil
}
