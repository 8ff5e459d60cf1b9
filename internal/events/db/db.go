package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"boxoffice/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

type DB struct {
	Bun *bun.DB
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

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := d.Bun.NewSelect().
		Model(&events).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	res, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "date", "location", "image", "total_tickets", "ticket_price").
		Where("id = ?", event.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

// CountSold returns the number of tickets already issued for an event.
func (d *DB) CountSold(ctx context.Context, eventID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
}
