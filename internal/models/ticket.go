package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Ticket is immutable once issued. Price, EventName and EventDate are
// snapshots taken at purchase time so later event edits don't rewrite
// what the buyer paid for.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID           string    `bun:"id,pk" json:"id"`
	EventID      string    `bun:"event_id,notnull" json:"eventId"`
	UserID       string    `bun:"user_id,notnull" json:"userId"`
	PurchaseDate time.Time `bun:"purchase_date,notnull" json:"purchaseDate"`
	Price        float64   `bun:"price,notnull" json:"price"`
	QRCodeURL    string    `bun:"qr_code_url,nullzero" json:"qrCodeUrl"`
	UserEmail    string    `bun:"user_email,nullzero" json:"userEmail"`
	EventName    string    `bun:"event_name,nullzero" json:"eventName"`
	EventDate    time.Time `bun:"event_date,nullzero" json:"eventDate"`
}

// TicketBatch describes one accepted purchase, published to Kafka after the
// tickets are committed.
type TicketBatch struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Quantity  int       `json:"quantity"`
	TicketIDs []string  `json:"ticket_ids"`
	IssuedAt  time.Time `json:"issued_at"`
}
